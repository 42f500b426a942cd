package ledger_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appledger "github.com/fieldops/stock-ledger-api/internal/application/ledger"
	"github.com/fieldops/stock-ledger-api/internal/domain"
	"github.com/fieldops/stock-ledger-api/internal/domain/entity"
)

func newSeedUC(f *fixture) *appledger.SeedUseCase {
	return appledger.NewSeedUseCase(f.store.Locations(), f.store.Movements(), f.transferUC)
}

// ──────────────────────────────────────────────────────────────────────────────
// Siembra de stock inicial
// ──────────────────────────────────────────────────────────────────────────────

func TestSeed_CreaSaldoYMovimiento(t *testing.T) {
	f := newFixture(t)
	uc := newSeedUC(f)

	result, err := uc.Seed(context.Background(), appledger.SeedInput{
		ItemID:       testItemID,
		Quantity:     qty(25),
		ToLocationID: f.warehouse.ID,
		Actor:        "admin",
		Note:         "conteo físico inicial",
	})
	require.NoError(t, err)
	require.NotNil(t, result.Movement)
	assert.Equal(t, entity.SourceInitialSeed, result.Movement.Source)
	assert.True(t, result.Movement.IsInflow(), "la siembra es una entrada externa")
	assert.True(t, qty(25).Equal(f.balance(t, f.warehouse.ID)))
}

func TestSeed_HaciaVehiculo_Permitida(t *testing.T) {
	f := newFixture(t)
	uc := newSeedUC(f)

	_, err := uc.Seed(context.Background(), appledger.SeedInput{
		ItemID:       testItemID,
		Quantity:     qty(3),
		ToLocationID: f.vehicle.ID,
	})
	require.NoError(t, err)
	assert.True(t, qty(3).Equal(f.balance(t, f.vehicle.ID)))
}

func TestSeed_DestinoReservado_Rechazada(t *testing.T) {
	f := newFixture(t)
	uc := newSeedUC(f)

	for _, dest := range []*entity.Location{f.bay, f.consumed} {
		_, err := uc.Seed(context.Background(), appledger.SeedInput{
			ItemID:       testItemID,
			Quantity:     qty(1),
			ToLocationID: dest.ID,
		})
		assert.ErrorIs(t, err, domain.ErrReservedDestination, dest.Code)
	}
}

func TestSeed_HaciaProveedor_Rechazada(t *testing.T) {
	f := newFixture(t)
	uc := newSeedUC(f)

	_, err := uc.Seed(context.Background(), appledger.SeedInput{
		ItemID:       testItemID,
		Quantity:     qty(1),
		ToLocationID: f.supplier.ID,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSeed_UbicacionDesconocida(t *testing.T) {
	f := newFixture(t)
	uc := newSeedUC(f)

	_, err := uc.Seed(context.Background(), appledger.SeedInput{
		ItemID:       testItemID,
		Quantity:     qty(1),
		ToLocationID: "loc-fantasma",
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// Doble siembra accidental del mismo par: el segundo intento exige force.
func TestSeed_DobleSiembra_ExigeForce(t *testing.T) {
	f := newFixture(t)
	uc := newSeedUC(f)
	ctx := context.Background()

	_, err := uc.Seed(ctx, appledger.SeedInput{
		ItemID: testItemID, Quantity: qty(10), ToLocationID: f.warehouse.ID,
	})
	require.NoError(t, err)

	_, err = uc.Seed(ctx, appledger.SeedInput{
		ItemID: testItemID, Quantity: qty(10), ToLocationID: f.warehouse.ID,
	})
	require.ErrorIs(t, err, domain.ErrConfirmationRequired)
	assert.True(t, qty(10).Equal(f.balance(t, f.warehouse.ID)), "la segunda siembra no debe aplicarse")

	// Con force la resiembra se acepta y se suma como una entrada más del ledger.
	result, err := uc.Seed(ctx, appledger.SeedInput{
		ItemID: testItemID, Quantity: qty(5), ToLocationID: f.warehouse.ID, Force: true,
	})
	require.NoError(t, err)
	assert.False(t, result.Deduplicated)
	assert.True(t, qty(15).Equal(f.balance(t, f.warehouse.ID)))
}

// La siembra hereda los guardarraíles del traslado: umbral y enteros.
func TestSeed_GuardarrailesDelTraslado(t *testing.T) {
	f := newFixture(t)
	uc := newSeedUC(f)
	ctx := context.Background()

	_, err := uc.Seed(ctx, appledger.SeedInput{
		ItemID: testItemID, Quantity: qty(5000), ToLocationID: f.warehouse.ID,
	})
	assert.ErrorIs(t, err, domain.ErrConfirmationRequired)

	_, err = uc.Seed(ctx, appledger.SeedInput{
		ItemID: testItemID, Quantity: qty(-3), ToLocationID: f.warehouse.ID,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
