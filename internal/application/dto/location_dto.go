package dto

import "time"

// EnsureLocationRequest body para PUT /api/locations/ensure (get-or-create idempotente).
// identity_key: ID del vehículo para vehicle, "primary" para la bodega principal,
// el código fijo para loading_bay/virtual/supplier.
type EnsureLocationRequest struct {
	Type        string `json:"type" validate:"required"`
	IdentityKey string `json:"identity_key" validate:"required"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
}

// DeactivateLocationRequest body para desactivar una ubicación.
type DeactivateLocationRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// LocationResponse salida de una ubicación canónica.
type LocationResponse struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Code        string    `json:"code"`
	VehicleID   string    `json:"vehicle_id,omitempty"`
	IsPrimary   bool      `json:"is_primary,omitempty"`
	IsActive    bool      `json:"is_active"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DedupRequest body para POST /api/locations/dedup.
type DedupRequest struct {
	Type string `json:"type,omitempty"` // vacío = todos los tipos
}

// DedupResponse resultado de la pasada de deduplicación.
type DedupResponse struct {
	Winners     []LocationResponse `json:"winners"`
	Deactivated []LocationResponse `json:"deactivated"`
}
