package repository

import "github.com/fieldops/stock-ledger-api/internal/domain/entity"

// LocationRepository define el puerto de persistencia para ubicaciones canónicas.
// Sustituye al despacho dinámico por nombre de entidad: un repositorio tipado por
// entidad, elegido en compilación.
type LocationRepository interface {
	Create(loc *entity.Location) error
	GetByID(id string) (*entity.Location, error)
	GetByCode(code string) (*entity.Location, error)
	// GetActiveByIdentity devuelve la ubicación activa de (tipo, clave de identidad),
	// o nil si no existe.
	GetActiveByIdentity(locType, identityKey string) (*entity.Location, error)
	// ListActive lista ubicaciones activas; locType vacío = todos los tipos.
	ListActive(locType string) ([]*entity.Location, error)
	// ListAll incluye desactivadas (para auditoría del historial).
	ListAll() ([]*entity.Location, error)
	// Deactivate marca la ubicación como inactiva con una nota de auditoría.
	// Nunca hay borrado físico: el historial de movimientos queda adherido al ID.
	Deactivate(id, reasonNote string) error
}
