package ledger

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fieldops/stock-ledger-api/internal/domain"
	"github.com/fieldops/stock-ledger-api/internal/domain/entity"
	domledger "github.com/fieldops/stock-ledger-api/internal/domain/ledger"
	"github.com/fieldops/stock-ledger-api/internal/domain/repository"
)

// RegistryUseCase es el registro de ubicaciones canónicas: get-or-create idempotente
// por (tipo, clave de identidad) y la pasada de deduplicación que colapsa registros
// duplicados en uno canónico.
type RegistryUseCase struct {
	locationRepo repository.LocationRepository
	// dedupMu: la pasada de dedup es una operación de mantenimiento exclusiva
	// consigo misma (single-flight). Puede correr junto a traslados ordinarios
	// porque solo desactiva duplicados y nunca toca saldos.
	dedupMu sync.Mutex
}

// NewRegistryUseCase construye el registro.
func NewRegistryUseCase(locationRepo repository.LocationRepository) *RegistryUseCase {
	return &RegistryUseCase{locationRepo: locationRepo}
}

// Ensure resuelve la ubicación activa de (tipo, clave de identidad), creándola con
// código y nombre canónicos si no existe. Idempotente: llamadas repetidas devuelven
// el mismo registro.
func (uc *RegistryUseCase) Ensure(locType, identityKey, name, description string) (*entity.Location, error) {
	if !entity.ValidLocationType(locType) {
		return nil, fmt.Errorf("tipo de ubicación desconocido %q: %w", locType, domain.ErrInvalidInput)
	}
	if identityKey == "" {
		return nil, fmt.Errorf("clave de identidad requerida: %w", domain.ErrInvalidInput)
	}

	existing, err := uc.locationRepo.GetActiveByIdentity(locType, identityKey)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	now := time.Now()
	loc := &entity.Location{
		ID:          uuid.New().String(),
		Type:        locType,
		Code:        domledger.CanonicalCode(locType, identityKey),
		IsActive:    true,
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	switch locType {
	case entity.LocationTypeVehicle:
		loc.VehicleID = identityKey
	case entity.LocationTypeWarehouse:
		loc.IsPrimary = identityKey == entity.IdentityKeyPrimary
	}
	if loc.Name == "" {
		loc.Name = canonicalName(loc)
	}

	if err := uc.locationRepo.Create(loc); err != nil {
		// Carrera de creación: otro llamador insertó primero la misma identidad.
		if errors.Is(err, domain.ErrDuplicate) {
			return uc.locationRepo.GetActiveByIdentity(locType, identityKey)
		}
		return nil, err
	}
	return loc, nil
}

// ListActive lista ubicaciones activas; locType vacío = todos los tipos.
func (uc *RegistryUseCase) ListActive(locType string) ([]*entity.Location, error) {
	if locType != "" && !entity.ValidLocationType(locType) {
		return nil, fmt.Errorf("tipo de ubicación desconocido %q: %w", locType, domain.ErrInvalidInput)
	}
	return uc.locationRepo.ListActive(locType)
}

// Deactivate desactiva una ubicación con nota de auditoría. El historial de
// movimientos queda adherido al ID desactivado.
func (uc *RegistryUseCase) Deactivate(id, reasonNote string) error {
	loc, err := uc.locationRepo.GetByID(id)
	if err != nil {
		return err
	}
	if loc == nil {
		return fmt.Errorf("ubicación %s: %w", id, domain.ErrNotFound)
	}
	return uc.locationRepo.Deactivate(id, reasonNote)
}

// DedupReport resultado de la pasada de deduplicación.
type DedupReport struct {
	Winners     []*entity.Location
	Deactivated []*entity.Location
}

// RunDedup agrupa las ubicaciones activas por (tipo, clave de identidad), elige un
// ganador determinista por grupo (domledger.SelectWinner) y desactiva al resto con
// una nota que referencia al ganador. Los movimientos históricos de los perdedores
// NO se reescriben: el ledger es inmutable. locType vacío = todos los tipos.
//
// Single-flight: una segunda invocación concurrente devuelve ErrDedupAlreadyRunning.
func (uc *RegistryUseCase) RunDedup(locType string) (*DedupReport, error) {
	if locType != "" && !entity.ValidLocationType(locType) {
		return nil, fmt.Errorf("tipo de ubicación desconocido %q: %w", locType, domain.ErrInvalidInput)
	}
	if !uc.dedupMu.TryLock() {
		return nil, domain.ErrDedupAlreadyRunning
	}
	defer uc.dedupMu.Unlock()

	active, err := uc.locationRepo.ListActive(locType)
	if err != nil {
		return nil, err
	}

	groups := make(map[string][]*entity.Location)
	for _, loc := range active {
		key := loc.Type + "|" + loc.IdentityKey()
		groups[key] = append(groups[key], loc)
	}

	report := &DedupReport{}
	for _, group := range groups {
		if len(group) < 2 {
			continue
		}
		winner := domledger.SelectWinner(group)
		report.Winners = append(report.Winners, winner)
		for _, loser := range group {
			if loser.ID == winner.ID {
				continue
			}
			note := fmt.Sprintf("duplicado de %s (%s); deduplicación %s",
				winner.ID, winner.Code, time.Now().Format(time.RFC3339))
			if err := uc.locationRepo.Deactivate(loser.ID, note); err != nil {
				return nil, err
			}
			loser.IsActive = false
			report.Deactivated = append(report.Deactivated, loser)
		}
	}
	return report, nil
}

// canonicalName nombre visible por defecto de una ubicación canónica.
func canonicalName(loc *entity.Location) string {
	switch loc.Type {
	case entity.LocationTypeVehicle:
		return "Vehicle: " + loc.VehicleID
	case entity.LocationTypeWarehouse:
		if loc.IsPrimary {
			return "Warehouse: Main"
		}
		return "Warehouse: " + loc.Code
	case entity.LocationTypeSupplier:
		return "Supplier: " + strings.TrimPrefix(loc.Code, "SUPPLIER_")
	case entity.LocationTypeLoadingBay:
		return "Loading Bay"
	case entity.LocationTypeVirtual:
		return "Consumed"
	}
	return loc.Code
}
