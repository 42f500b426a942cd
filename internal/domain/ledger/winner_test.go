package ledger_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldops/stock-ledger-api/internal/domain/entity"
	"github.com/fieldops/stock-ledger-api/internal/domain/ledger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

var baseTime = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func vehicleLoc(id, vehicleID, code, name string, created, updated time.Time) *entity.Location {
	return &entity.Location{
		ID:        id,
		Type:      entity.LocationTypeVehicle,
		Code:      code,
		VehicleID: vehicleID,
		IsActive:  true,
		Name:      name,
		CreatedAt: created,
		UpdatedAt: updated,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests CanonicalCode
// ──────────────────────────────────────────────────────────────────────────────

func TestCanonicalCode_PorTipo(t *testing.T) {
	assert.Equal(t, "VEHICLE_veh-7", ledger.CanonicalCode(entity.LocationTypeVehicle, "veh-7"))
	assert.Equal(t, "WAREHOUSE_MAIN", ledger.CanonicalCode(entity.LocationTypeWarehouse, "primary"))
	assert.Equal(t, "BODEGA_NORTE", ledger.CanonicalCode(entity.LocationTypeWarehouse, "BODEGA_NORTE"))
	assert.Equal(t, "LOADING_BAY", ledger.CanonicalCode(entity.LocationTypeLoadingBay, "cualquiera"))
	assert.Equal(t, "CONSUMED", ledger.CanonicalCode(entity.LocationTypeVirtual, "cualquiera"))
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests HasCleanName
// ──────────────────────────────────────────────────────────────────────────────

func TestHasCleanName_PrefijoUnico(t *testing.T) {
	loc := vehicleLoc("a", "veh-1", "VEHICLE_veh-1", "Vehicle: veh-1", baseTime, baseTime)
	assert.True(t, ledger.HasCleanName(loc))
}

func TestHasCleanName_PrefijoDoblado_Descalifica(t *testing.T) {
	// Un registro creado a partir de otro ya prefijado arrastra el prefijo doblado.
	loc := vehicleLoc("a", "veh-1", "VEHICLE_veh-1", "Vehicle: Vehicle: veh-1", baseTime, baseTime)
	assert.False(t, ledger.HasCleanName(loc))
}

func TestHasCleanName_SinPrefijo_Descalifica(t *testing.T) {
	loc := vehicleLoc("a", "veh-1", "VEHICLE_veh-1", "camioneta de Juan", baseTime, baseTime)
	assert.False(t, ledger.HasCleanName(loc))
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests SelectWinner — orden total de selección
// ──────────────────────────────────────────────────────────────────────────────

// El código canónico exacto gana sobre cualquier otro criterio.
func TestSelectWinner_CodigoCanonicoGana(t *testing.T) {
	canonical := vehicleLoc("loc-b", "veh-1", "VEHICLE_veh-1", "lo que sea", baseTime, baseTime)
	other := vehicleLoc("loc-a", "veh-1", "VEH-1-LEGACY", "Vehicle: veh-1",
		baseTime.Add(-time.Hour), baseTime.Add(time.Hour))

	winner := ledger.SelectWinner([]*entity.Location{other, canonical})
	require.NotNil(t, winner)
	assert.Equal(t, "loc-b", winner.ID)
}

// A igualdad de código, gana el nombre con prefijo único.
func TestSelectWinner_NombreLimpioGana(t *testing.T) {
	clean := vehicleLoc("loc-b", "veh-1", "OLD_1", "Vehicle: veh-1", baseTime, baseTime)
	doubled := vehicleLoc("loc-a", "veh-1", "OLD_2", "Vehicle: Vehicle: veh-1", baseTime, baseTime)

	winner := ledger.SelectWinner([]*entity.Location{doubled, clean})
	assert.Equal(t, "loc-b", winner.ID)
}

// A igualdad de código y nombre, gana la actualizada más recientemente.
func TestSelectWinner_MasRecienteGana(t *testing.T) {
	older := vehicleLoc("loc-a", "veh-1", "OLD_1", "Vehicle: veh-1", baseTime, baseTime)
	newer := vehicleLoc("loc-b", "veh-1", "OLD_2", "Vehicle: veh-1", baseTime, baseTime.Add(time.Minute))

	winner := ledger.SelectWinner([]*entity.Location{older, newer})
	assert.Equal(t, "loc-b", winner.ID)
}

// Mismo UpdatedAt: gana la creada más temprano.
func TestSelectWinner_CreadaMasTempranoDesempata(t *testing.T) {
	early := vehicleLoc("loc-b", "veh-1", "OLD_1", "Vehicle: veh-1", baseTime.Add(-time.Hour), baseTime)
	late := vehicleLoc("loc-a", "veh-1", "OLD_2", "Vehicle: veh-1", baseTime, baseTime)

	winner := ledger.SelectWinner([]*entity.Location{late, early})
	assert.Equal(t, "loc-b", winner.ID)
}

// Empate total: el ID menor da un desempate estable.
func TestSelectWinner_IDMenorDesempataEstable(t *testing.T) {
	a := vehicleLoc("loc-a", "veh-1", "OLD_1", "Vehicle: veh-1", baseTime, baseTime)
	b := vehicleLoc("loc-b", "veh-1", "OLD_2", "Vehicle: veh-1", baseTime, baseTime)

	winner := ledger.SelectWinner([]*entity.Location{b, a})
	assert.Equal(t, "loc-a", winner.ID)
}

// El ganador no depende del orden de entrada: con cualquier permutación el
// resultado es el mismo, lo que hace la deduplicación idempotente.
func TestSelectWinner_DeterministaAnteOrden(t *testing.T) {
	locs := []*entity.Location{
		vehicleLoc("loc-1", "veh-1", "VEH_LEGACY", "Vehicle: Vehicle: veh-1", baseTime, baseTime.Add(time.Hour)),
		vehicleLoc("loc-2", "veh-1", "VEHICLE_veh-1", "Vehicle: veh-1", baseTime, baseTime),
		vehicleLoc("loc-3", "veh-1", "ANTIGUO", "Vehicle: veh-1", baseTime.Add(-time.Hour), baseTime.Add(2*time.Hour)),
	}
	perms := [][]*entity.Location{
		{locs[0], locs[1], locs[2]},
		{locs[2], locs[0], locs[1]},
		{locs[1], locs[2], locs[0]},
	}
	for _, p := range perms {
		assert.Equal(t, "loc-2", ledger.SelectWinner(p).ID,
			"el código canónico debe ganar sin importar el orden de entrada")
	}
}

func TestSelectWinner_GrupoVacio(t *testing.T) {
	assert.Nil(t, ledger.SelectWinner(nil))
}
