package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin    = "admin"    // acceso total: dedup, auditoría, ajustes
	RoleOperador = "operador" // traslados, siembras y consultas
)

// User representa un operador del ledger. Su ID viaja como identidad de actor
// en cada movimiento que registra.
type User struct {
	ID           string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Name         string
	Role         string // admin, operador
	Status       string // active, inactive, suspended
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
