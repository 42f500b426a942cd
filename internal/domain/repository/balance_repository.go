package repository

import "github.com/fieldops/stock-ledger-api/internal/domain/entity"

// BalanceRepository define el puerto para consultar/actualizar saldos por
// (artículo, ubicación). Usado dentro de transacciones para garantizar consistencia.
type BalanceRepository interface {
	// Get devuelve el saldo actual; si la fila no existe devuelve un saldo en cero
	// con Version 0 (la fila se materializa en la primera escritura).
	Get(itemID, locationID string) (*entity.Balance, error)
	// GetForUpdate bloquea la fila para update (SELECT FOR UPDATE). Serializa
	// traslados concurrentes que tocan el mismo (artículo, ubicación).
	GetForUpdate(itemID, locationID string) (*entity.Balance, error)
	// Upsert inserta o actualiza la cantidad e incrementa Version en uno.
	Upsert(balance *entity.Balance) error
	// Exists indica si hay fila materializada (sin semántica de saldo cero).
	Exists(itemID, locationID string) (bool, error)
	ListByItem(itemID string) ([]*entity.Balance, error)
	ListAll() ([]*entity.Balance, error)
}
