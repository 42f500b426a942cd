package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fieldops/stock-ledger-api/internal/domain/entity"
	"github.com/fieldops/stock-ledger-api/internal/domain/repository"
)

// AuditUseCase es la auditoría de conciliación: un barrido de solo lectura que
// compara BalanceStore contra el ledger de movimientos y contra las relaciones
// Part/catálogo para detectar deriva. Consultivo: no corrige nada; la remediación
// es un paso separado invocado y revisado por un operador.
type AuditUseCase struct {
	balanceRepo  repository.BalanceRepository
	movementRepo repository.MovementRepository
	locationRepo repository.LocationRepository
	partRepo     repository.PartRepository
	catalogRepo  repository.CatalogRepository
}

// NewAuditUseCase construye el auditor.
func NewAuditUseCase(
	balanceRepo repository.BalanceRepository,
	movementRepo repository.MovementRepository,
	locationRepo repository.LocationRepository,
	partRepo repository.PartRepository,
	catalogRepo repository.CatalogRepository,
) *AuditUseCase {
	return &AuditUseCase{
		balanceRepo:  balanceRepo,
		movementRepo: movementRepo,
		locationRepo: locationRepo,
		partRepo:     partRepo,
		catalogRepo:  catalogRepo,
	}
}

// OrphanedBalance fila de saldo que referencia un artículo o ubicación inexistente.
type OrphanedBalance struct {
	ItemID     string
	LocationID string
	Quantity   decimal.Decimal
	Missing    string // "item" | "location"
}

// BrokenMovement movimiento que referencia IDs desconocidos.
type BrokenMovement struct {
	MovementID string
	ItemID     string
	Missing    string // "item" | "from_location" | "to_location"
}

// PartMismatch pieza cuyo estado no corresponde con su ubicación.
type PartMismatch struct {
	PartID       string
	Status       string
	LocationID   string
	LocationType string
	Detail       string
}

// BalanceDrift saldo almacenado que difiere del neto recalculado del ledger.
type BalanceDrift struct {
	ItemID     string
	LocationID string
	Stored     decimal.Decimal
	Computed   decimal.Decimal
}

// AuditReport informe completo de conciliación.
type AuditReport struct {
	GeneratedAt      time.Time
	OrphanedBalances []OrphanedBalance
	NeverStocked     []*entity.CatalogItem
	BrokenMovements  []BrokenMovement
	Mismatches       []PartMismatch
	BalanceDrift     []BalanceDrift
	Matched          int
	Discrepant       int
}

// HealthScore = coincidentes / (coincidentes + discrepantes). 1.0 con ledger vacío.
func (r *AuditReport) HealthScore() float64 {
	total := r.Matched + r.Discrepant
	if total == 0 {
		return 1.0
	}
	return float64(r.Matched) / float64(total)
}

// RunAudit ejecuta el barrido completo. Nunca devuelve errores de dominio de
// escritura: solo reporta hallazgos para remediación humana.
func (uc *AuditUseCase) RunAudit(_ context.Context) (*AuditReport, error) {
	report := &AuditReport{GeneratedAt: time.Now()}

	locations, err := uc.locationRepo.ListAll()
	if err != nil {
		return nil, err
	}
	locByID := make(map[string]*entity.Location, len(locations))
	for _, l := range locations {
		locByID[l.ID] = l
	}

	trackable, err := uc.catalogRepo.ListTrackable()
	if err != nil {
		return nil, err
	}
	trackableByID := make(map[string]*entity.CatalogItem, len(trackable))
	for _, it := range trackable {
		trackableByID[it.ID] = it
	}

	balances, err := uc.balanceRepo.ListAll()
	if err != nil {
		return nil, err
	}
	movements, err := uc.listAllMovements()
	if err != nil {
		return nil, err
	}

	uc.checkBalances(report, balances, locByID, trackableByID)
	uc.checkNeverStocked(report, balances, trackable)
	uc.checkMovements(report, movements, locByID, trackableByID)
	uc.checkDrift(report, balances, movements, locByID)
	if err := uc.checkParts(report, locByID); err != nil {
		return nil, err
	}
	return report, nil
}

// checkBalances detecta saldos huérfanos: filas que apuntan a artículos o
// ubicaciones que nadie conoce.
func (uc *AuditUseCase) checkBalances(
	report *AuditReport,
	balances []*entity.Balance,
	locByID map[string]*entity.Location,
	trackableByID map[string]*entity.CatalogItem,
) {
	for _, b := range balances {
		switch {
		case locByID[b.LocationID] == nil:
			report.OrphanedBalances = append(report.OrphanedBalances, OrphanedBalance{
				ItemID: b.ItemID, LocationID: b.LocationID, Quantity: b.Quantity, Missing: "location",
			})
			report.Discrepant++
		case trackableByID[b.ItemID] == nil:
			report.OrphanedBalances = append(report.OrphanedBalances, OrphanedBalance{
				ItemID: b.ItemID, LocationID: b.LocationID, Quantity: b.Quantity, Missing: "item",
			})
			report.Discrepant++
		default:
			report.Matched++
		}
	}
}

// checkNeverStocked detecta artículos rastreables sin ninguna fila de saldo.
func (uc *AuditUseCase) checkNeverStocked(
	report *AuditReport,
	balances []*entity.Balance,
	trackable []*entity.CatalogItem,
) {
	stocked := make(map[string]bool, len(balances))
	for _, b := range balances {
		stocked[b.ItemID] = true
	}
	for _, it := range trackable {
		if stocked[it.ID] {
			report.Matched++
			continue
		}
		report.NeverStocked = append(report.NeverStocked, it)
		report.Discrepant++
	}
}

// checkMovements detecta registros del ledger con referencias rotas.
func (uc *AuditUseCase) checkMovements(
	report *AuditReport,
	movements []*entity.MovementRecord,
	locByID map[string]*entity.Location,
	trackableByID map[string]*entity.CatalogItem,
) {
	for _, m := range movements {
		broken := false
		if trackableByID[m.ItemID] == nil {
			report.BrokenMovements = append(report.BrokenMovements, BrokenMovement{
				MovementID: m.ID, ItemID: m.ItemID, Missing: "item",
			})
			broken = true
		}
		if m.FromLocationID != nil && locByID[*m.FromLocationID] == nil {
			report.BrokenMovements = append(report.BrokenMovements, BrokenMovement{
				MovementID: m.ID, ItemID: m.ItemID, Missing: "from_location",
			})
			broken = true
		}
		if m.ToLocationID != nil && locByID[*m.ToLocationID] == nil {
			report.BrokenMovements = append(report.BrokenMovements, BrokenMovement{
				MovementID: m.ID, ItemID: m.ItemID, Missing: "to_location",
			})
			broken = true
		}
		if broken {
			report.Discrepant++
		} else {
			report.Matched++
		}
	}
}

// checkDrift recalcula el neto por (artículo, ubicación) desde el ledger y lo
// compara con el saldo almacenado. Los extremos supplier no se rastrean.
func (uc *AuditUseCase) checkDrift(
	report *AuditReport,
	balances []*entity.Balance,
	movements []*entity.MovementRecord,
	locByID map[string]*entity.Location,
) {
	type pairKey struct{ item, loc string }
	computed := make(map[pairKey]decimal.Decimal)
	tracked := func(locID string) bool {
		l := locByID[locID]
		return l != nil && l.Type != entity.LocationTypeSupplier
	}
	for _, m := range movements {
		if m.FromLocationID != nil && tracked(*m.FromLocationID) {
			k := pairKey{m.ItemID, *m.FromLocationID}
			computed[k] = computed[k].Sub(m.Quantity)
		}
		if m.ToLocationID != nil && tracked(*m.ToLocationID) {
			k := pairKey{m.ItemID, *m.ToLocationID}
			computed[k] = computed[k].Add(m.Quantity)
		}
	}
	for _, b := range balances {
		want := computed[pairKey{b.ItemID, b.LocationID}]
		if b.Quantity.Equal(want) {
			report.Matched++
			continue
		}
		report.BalanceDrift = append(report.BalanceDrift, BalanceDrift{
			ItemID: b.ItemID, LocationID: b.LocationID, Stored: b.Quantity, Computed: want,
		})
		report.Discrepant++
	}
}

// checkParts verifica la correlación estado-ubicación de las piezas y que una pieza
// almacenada tenga fila de saldo en su ubicación.
func (uc *AuditUseCase) checkParts(report *AuditReport, locByID map[string]*entity.Location) error {
	parts, err := uc.partRepo.ListAll()
	if err != nil {
		return err
	}
	for _, p := range parts {
		loc := locByID[p.LocationID]
		if loc == nil {
			report.Mismatches = append(report.Mismatches, PartMismatch{
				PartID: p.ID, Status: p.Status, LocationID: p.LocationID,
				Detail: "ubicación desconocida",
			})
			report.Discrepant++
			continue
		}
		expected := p.ExpectedLocationType()
		if expected != "" && loc.Type != expected {
			report.Mismatches = append(report.Mismatches, PartMismatch{
				PartID: p.ID, Status: p.Status, LocationID: p.LocationID,
				LocationType: loc.Type,
				Detail:       "estado implica tipo " + expected,
			})
			report.Discrepant++
			continue
		}
		if expected == entity.LocationTypeWarehouse || expected == entity.LocationTypeVehicle {
			exists, err := uc.balanceRepo.Exists(p.ItemID, p.LocationID)
			if err != nil {
				return err
			}
			if !exists {
				report.Mismatches = append(report.Mismatches, PartMismatch{
					PartID: p.ID, Status: p.Status, LocationID: p.LocationID,
					LocationType: loc.Type,
					Detail:       "sin fila de saldo en la ubicación",
				})
				report.Discrepant++
				continue
			}
		}
		report.Matched++
	}
	return nil
}

// listAllMovements pagina el ledger completo.
func (uc *AuditUseCase) listAllMovements() ([]*entity.MovementRecord, error) {
	const page = 500
	var all []*entity.MovementRecord
	for offset := 0; ; offset += page {
		batch, err := uc.movementRepo.ListAll(page, offset)
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if len(batch) < page {
			return all, nil
		}
	}
}
