package ledger

import (
	"fmt"
	"time"

	"github.com/fieldops/stock-ledger-api/internal/domain"
	"github.com/fieldops/stock-ledger-api/internal/domain/entity"
	"github.com/fieldops/stock-ledger-api/internal/domain/repository"
)

// QueryUseCase consultas de solo lectura sobre saldos y movimientos.
type QueryUseCase struct {
	balanceRepo  repository.BalanceRepository
	movementRepo repository.MovementRepository
	locationRepo repository.LocationRepository
}

// NewQueryUseCase construye el caso de uso de consulta.
func NewQueryUseCase(
	balanceRepo repository.BalanceRepository,
	movementRepo repository.MovementRepository,
	locationRepo repository.LocationRepository,
) *QueryUseCase {
	return &QueryUseCase{
		balanceRepo:  balanceRepo,
		movementRepo: movementRepo,
		locationRepo: locationRepo,
	}
}

// GetBalance devuelve el saldo actual de (artículo, ubicación). Un par nunca movido
// responde cero. Las ubicaciones supplier no rastrean saldos: consultar una es
// error de entrada, no un cero.
func (uc *QueryUseCase) GetBalance(itemID, locationID string) (*entity.Balance, error) {
	loc, err := uc.locationRepo.GetByID(locationID)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, fmt.Errorf("ubicación %s: %w", locationID, domain.ErrNotFound)
	}
	if loc.Type == entity.LocationTypeSupplier {
		return nil, fmt.Errorf("los proveedores no rastrean saldos: %w", domain.ErrInvalidInput)
	}
	return uc.balanceRepo.Get(itemID, locationID)
}

// ListMovements historial del ledger filtrado por ubicación o artículo y rango de
// fechas, paginado en orden descendente de fecha.
func (uc *QueryUseCase) ListMovements(locationID, itemID string, from, to *time.Time, limit, offset int) ([]*entity.MovementRecord, error) {
	switch {
	case locationID != "":
		return uc.movementRepo.ListByLocation(locationID, from, to, limit, offset)
	case itemID != "":
		return uc.movementRepo.ListByItem(itemID, from, to, limit, offset)
	default:
		return uc.movementRepo.ListAll(limit, offset)
	}
}
