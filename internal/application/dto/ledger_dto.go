package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferRequest body para POST /api/ledger/transfers.
// from_location_id nil = fuente externa (proveedor, siembra); to_location_id nil =
// sumidero externo (consumo). Al menos uno debe venir.
type TransferRequest struct {
	ItemID          string          `json:"item_id" validate:"required"`
	FromLocationID  *string         `json:"from_location_id,omitempty"`
	ToLocationID    *string         `json:"to_location_id,omitempty"`
	Quantity        decimal.Decimal `json:"quantity" validate:"required"`
	Source          string          `json:"source" validate:"required"`
	IdempotencyKey  string          `json:"idempotency_key,omitempty"`
	WriteSource     string          `json:"write_source,omitempty"` // default interactive
	Note            string          `json:"note,omitempty"`
	ReferenceID     string          `json:"reference_id,omitempty"`
	ReferenceType   string          `json:"reference_type,omitempty"`
	ExpectedVersion *int64          `json:"expected_version,omitempty"`
	Force           bool            `json:"force,omitempty"`
}

// TransferResponse resultado de un traslado.
type TransferResponse struct {
	MovementID   string           `json:"movement_id"`
	FromBalance  *decimal.Decimal `json:"from_balance,omitempty"`
	ToBalance    *decimal.Decimal `json:"to_balance,omitempty"`
	Deduplicated bool             `json:"deduplicated"`
}

// SeedRequest body para POST /api/ledger/seed.
type SeedRequest struct {
	ItemID       string          `json:"item_id" validate:"required"`
	Quantity     decimal.Decimal `json:"quantity" validate:"required"`
	ToLocationID string          `json:"to_location_id" validate:"required"`
	Note         string          `json:"note,omitempty"`
	Force        bool            `json:"force,omitempty"`
}

// SeedResponse resultado de una siembra de stock inicial.
type SeedResponse struct {
	MovementID string           `json:"movement_id"`
	Balance    *decimal.Decimal `json:"balance,omitempty"`
}

// BalanceResponse saldo de un artículo en una ubicación.
type BalanceResponse struct {
	ItemID     string          `json:"item_id"`
	LocationID string          `json:"location_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	Version    int64           `json:"version"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// MovementResponse un registro del ledger de movimientos.
type MovementResponse struct {
	ID             string          `json:"id"`
	ItemID         string          `json:"item_id"`
	Quantity       decimal.Decimal `json:"quantity"`
	FromLocationID *string         `json:"from_location_id,omitempty"`
	ToLocationID   *string         `json:"to_location_id,omitempty"`
	Source         string          `json:"source"`
	IdempotencyKey string          `json:"idempotency_key"`
	Actor          string          `json:"actor"`
	WriteSource    string          `json:"write_source"`
	Note           string          `json:"note,omitempty"`
	ReferenceID    string          `json:"reference_id,omitempty"`
	ReferenceType  string          `json:"reference_type,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// MovementListResponse lista paginada de movimientos.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}
