package ledger

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fieldops/stock-ledger-api/internal/domain"
	"github.com/fieldops/stock-ledger-api/internal/domain/entity"
	"github.com/fieldops/stock-ledger-api/internal/domain/repository"
)

// SeedUseCase crea el primer movimiento de un par (artículo, ubicación): la siembra
// de stock inicial. Punto de entrada administrativo, sujeto a los mismos
// guardarraíles que cualquier traslado.
type SeedUseCase struct {
	locationRepo repository.LocationRepository
	movementRepo repository.MovementRepository
	transferUC   *TransferUseCase
}

// NewSeedUseCase construye el caso de uso.
func NewSeedUseCase(
	locationRepo repository.LocationRepository,
	movementRepo repository.MovementRepository,
	transferUC *TransferUseCase,
) *SeedUseCase {
	return &SeedUseCase{
		locationRepo: locationRepo,
		movementRepo: movementRepo,
		transferUC:   transferUC,
	}
}

// SeedInput entrada para sembrar stock inicial.
type SeedInput struct {
	ItemID       string
	Quantity     decimal.Decimal
	ToLocationID string
	Note         string
	Actor        string
	WriteSource  string
	Force        bool
}

// Seed valida el destino y delega el cambio de cantidad a TransferUseCase con
// source=initial_seed y origen externo (from nil). Una siembra previa para el mismo
// par exige force=true: protege contra la doble siembra accidental.
func (uc *SeedUseCase) Seed(ctx context.Context, in SeedInput) (*TransferResult, error) {
	loc, err := uc.locationRepo.GetByID(in.ToLocationID)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, fmt.Errorf("ubicación %s: %w", in.ToLocationID, domain.ErrNotFound)
	}
	if entity.IsReservedCode(loc.Code) {
		return nil, fmt.Errorf("siembra hacia %s: %w", loc.Code, domain.ErrReservedDestination)
	}
	if loc.Type != entity.LocationTypeWarehouse && loc.Type != entity.LocationTypeVehicle {
		return nil, fmt.Errorf("siembra hacia tipo %s: %w", loc.Type, domain.ErrInvalidInput)
	}

	prior, err := uc.movementRepo.FirstSeed(in.ItemID, in.ToLocationID)
	if err != nil {
		return nil, err
	}
	if prior != nil && !in.Force {
		return nil, fmt.Errorf("ya existe siembra %s para el par: %w", prior.ID, domain.ErrConfirmationRequired)
	}

	return uc.transferUC.Transfer(ctx, TransferInput{
		ItemID:       in.ItemID,
		ToLocationID: &in.ToLocationID,
		Quantity:     in.Quantity,
		Source:       entity.SourceInitialSeed,
		Actor:        in.Actor,
		WriteSource:  in.WriteSource,
		Note:         in.Note,
		Force:        in.Force,
	})
}
