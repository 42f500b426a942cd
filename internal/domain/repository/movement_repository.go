package repository

import (
	"time"

	"github.com/fieldops/stock-ledger-api/internal/domain/entity"
)

// MovementRepository define el puerto de persistencia del ledger append-only de
// movimientos. No hay Update ni Delete: el ledger es inmutable.
type MovementRepository interface {
	// Create persiste un movimiento. Devuelve domain.ErrDuplicate si la clave de
	// idempotencia ya existe en el ledger.
	Create(movement *entity.MovementRecord) error
	GetByID(id string) (*entity.MovementRecord, error)
	// GetByIdempotencyKey devuelve el movimiento registrado con esa clave, o nil.
	GetByIdempotencyKey(key string) (*entity.MovementRecord, error)
	// FirstSeed devuelve la primera siembra (source=initial_seed) registrada para
	// (artículo, ubicación), o nil si nunca se ha sembrado.
	FirstSeed(itemID, locationID string) (*entity.MovementRecord, error)
	ListByLocation(locationID string, from, to *time.Time, limit, offset int) ([]*entity.MovementRecord, error)
	ListByItem(itemID string, from, to *time.Time, limit, offset int) ([]*entity.MovementRecord, error)
	ListAll(limit, offset int) ([]*entity.MovementRecord, error)
}
