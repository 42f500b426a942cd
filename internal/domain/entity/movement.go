package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Orígenes reconocidos de un movimiento de stock.
const (
	SourcePurchaseOrderReceipt = "purchase_order_receipt" // recepción de orden de compra
	SourceLogisticsTransfer    = "logistics_transfer"     // traslado logístico programado
	SourceJobUsage             = "job_usage"              // consumo en un trabajo
	SourceTransfer             = "transfer"               // traslado manual
	SourceAdjustment           = "adjustment"             // ajuste de inventario
	SourceInitialSeed          = "initial_seed"           // siembra de stock inicial
	SourceLegacy               = "legacy"                 // migrado del sistema anterior
)

// Canales de escritura que produjeron un movimiento.
const (
	WriteSourceInteractive    = "interactive"     // operador vía UI/API
	WriteSourceBackgroundSync = "background_sync" // sincronización en segundo plano
	WriteSourceMigration      = "migration"       // migración de datos
)

// MovementRecord es una entrada append-only del ledger de movimientos: un cambio de
// cantidad entre ubicaciones (o hacia/desde el exterior). Nunca se reescribe ni borra;
// todo saldo actual debe poder explicarse recorriendo estos registros.
//
// FromLocationID nil = fuente externa/ilimitada (proveedor, siembra inicial).
// ToLocationID nil = sumidero externo (consumo). Ambos no-nil = traslado.
type MovementRecord struct {
	ID             string
	ItemID         string
	Quantity       decimal.Decimal // siempre positiva; el signo lo dan los extremos
	FromLocationID *string
	ToLocationID   *string
	Source         string
	IdempotencyKey string // única en todo el ledger
	Actor          string
	WriteSource    string
	Note           string
	ReferenceID    string // trabajo, orden de compra, recibo...
	ReferenceType  string
	CreatedAt      time.Time
}

// ValidSource indica si el origen del movimiento es reconocido.
func ValidSource(s string) bool {
	switch s {
	case SourcePurchaseOrderReceipt, SourceLogisticsTransfer, SourceJobUsage,
		SourceTransfer, SourceAdjustment, SourceInitialSeed, SourceLegacy:
		return true
	}
	return false
}

// ValidWriteSource indica si el canal de escritura es reconocido.
func ValidWriteSource(ws string) bool {
	switch ws {
	case WriteSourceInteractive, WriteSourceBackgroundSync, WriteSourceMigration:
		return true
	}
	return false
}

// IsTransfer indica si el movimiento tiene ambos extremos (traslado interno).
func (m *MovementRecord) IsTransfer() bool {
	return m.FromLocationID != nil && m.ToLocationID != nil
}

// IsInflow indica si el movimiento es una entrada externa (recepción, siembra).
func (m *MovementRecord) IsInflow() bool {
	return m.FromLocationID == nil && m.ToLocationID != nil
}

// IsOutflow indica si el movimiento es una salida externa (consumo).
func (m *MovementRecord) IsOutflow() bool {
	return m.FromLocationID != nil && m.ToLocationID == nil
}
