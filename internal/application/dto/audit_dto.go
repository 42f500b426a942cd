package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrphanedBalanceDTO fila de saldo que referencia un artículo o ubicación inexistente.
type OrphanedBalanceDTO struct {
	ItemID     string          `json:"item_id"`
	LocationID string          `json:"location_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	Missing    string          `json:"missing"` // "item" | "location"
}

// NeverStockedDTO artículo rastreable sin ninguna fila de saldo en todo el sistema.
type NeverStockedDTO struct {
	ItemID string `json:"item_id"`
	SKU    string `json:"sku"`
	Name   string `json:"name"`
}

// BrokenMovementDTO movimiento que referencia un artículo o ubicación desconocidos.
type BrokenMovementDTO struct {
	MovementID string `json:"movement_id"`
	ItemID     string `json:"item_id"`
	Missing    string `json:"missing"` // "item" | "from_location" | "to_location"
}

// PartMismatchDTO pieza cuyo estado implica una ubicación almacenada pero no
// corresponde con el tipo de su ubicación actual (o carece de saldo asociado).
type PartMismatchDTO struct {
	PartID       string `json:"part_id"`
	Status       string `json:"status"`
	LocationID   string `json:"location_id"`
	LocationType string `json:"location_type,omitempty"`
	Detail       string `json:"detail"`
}

// BalanceDriftDTO saldo almacenado que no coincide con el neto recalculado del ledger.
type BalanceDriftDTO struct {
	ItemID     string          `json:"item_id"`
	LocationID string          `json:"location_id"`
	Stored     decimal.Decimal `json:"stored"`
	Computed   decimal.Decimal `json:"computed"`
}

// AuditSummaryDTO resumen del informe de conciliación.
type AuditSummaryDTO struct {
	Matched     int     `json:"matched"`
	Discrepant  int     `json:"discrepant"`
	HealthScore float64 `json:"health_score"` // matched / (matched + discrepant)
}

// AuditReportResponse informe completo de la auditoría de conciliación. Es
// consultivo: no corrige nada; la remediación es un paso separado revisado por
// un operador.
type AuditReportResponse struct {
	GeneratedAt      time.Time            `json:"generated_at"`
	Summary          AuditSummaryDTO      `json:"summary"`
	OrphanedBalances []OrphanedBalanceDTO `json:"orphaned_balances"`
	NeverStocked     []NeverStockedDTO    `json:"never_stocked"`
	BrokenMovements  []BrokenMovementDTO  `json:"broken_movements"`
	Mismatches       []PartMismatchDTO    `json:"mismatches"`
	BalanceDrift     []BalanceDriftDTO    `json:"balance_drift"`
}
