package repository

import "github.com/fieldops/stock-ledger-api/internal/domain/entity"

// UserRepository define el puerto de persistencia para User (DIP).
type UserRepository interface {
	Create(user *entity.User) error
	GetByID(id string) (*entity.User, error)
	// FindByEmail devuelve nil si no existe (sin error).
	FindByEmail(email string) (*entity.User, error)
}
