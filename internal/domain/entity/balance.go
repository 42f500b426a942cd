package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Balance representa la existencia actual de un artículo en una ubicación.
// Fila derivada del ledger de movimientos; los llamadores nunca la editan directo.
// Una cantidad cero es un estado terminal válido, no una ausencia: la fila no se borra.
type Balance struct {
	ItemID      string
	LocationID  string
	Quantity    decimal.Decimal
	MinQuantity *decimal.Decimal // umbral opcional de reposición
	Version     int64            // concurrencia optimista; se incrementa en cada escritura
	UpdatedAt   time.Time
}
