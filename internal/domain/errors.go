package domain

import "errors"

// Errores de dominio (sin dependencias externas). Toda operación rechazada deja el
// ledger y los saldos intactos: no hay escrituras parciales que limpiar.
var (
	ErrNotFound             = errors.New("recurso no encontrado")
	ErrUserNotFound         = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists   = errors.New("el email ya está registrado")
	ErrInvalidInput         = errors.New("entrada inválida")
	ErrDuplicate            = errors.New("recurso duplicado")
	ErrUnauthorized         = errors.New("no autorizado")
	ErrForbidden            = errors.New("acceso denegado")
	ErrConflict             = errors.New("conflicto con el estado actual")
	ErrInsufficientStock    = errors.New("stock insuficiente")
	ErrConfirmationRequired = errors.New("la operación requiere confirmación explícita")
	ErrDedupAlreadyRunning  = errors.New("la deduplicación ya está en ejecución")
	ErrReservedDestination  = errors.New("destino reservado: no admite stock nuevo")
)
