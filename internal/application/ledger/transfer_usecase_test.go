package ledger_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appledger "github.com/fieldops/stock-ledger-api/internal/application/ledger"
	"github.com/fieldops/stock-ledger-api/internal/domain"
	"github.com/fieldops/stock-ledger-api/internal/domain/entity"
	"github.com/fieldops/stock-ledger-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const testItemID = "item-valvula"

func strptr(s string) *string { return &s }

func qty(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

// fixture almacén en memoria con un artículo, bodega principal, vehículo,
// proveedor, muelle y sumidero ya registrados.
type fixture struct {
	store      *memory.Store
	transferUC *appledger.TransferUseCase

	warehouse *entity.Location
	vehicle   *entity.Location
	supplier  *entity.Location
	bay       *entity.Location
	consumed  *entity.Location
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	store.AddCatalogItem(&entity.CatalogItem{ID: testItemID, Name: "Válvula 3/4", SKU: "VAL-34", Trackable: true})

	now := time.Now()
	mk := func(id, locType, code string, extra func(*entity.Location)) *entity.Location {
		loc := &entity.Location{
			ID: id, Type: locType, Code: code, IsActive: true,
			CreatedAt: now, UpdatedAt: now,
		}
		if extra != nil {
			extra(loc)
		}
		require.NoError(t, store.Locations().Create(loc))
		return loc
	}

	f := &fixture{store: store}
	f.warehouse = mk("loc-wh", entity.LocationTypeWarehouse, entity.CodeWarehouseMain, func(l *entity.Location) {
		l.IsPrimary = true
		l.Name = "Warehouse: Main"
	})
	f.vehicle = mk("loc-veh", entity.LocationTypeVehicle, entity.VehicleCode("veh-7"), func(l *entity.Location) {
		l.VehicleID = "veh-7"
		l.Name = "Vehicle: veh-7"
	})
	f.supplier = mk("loc-sup", entity.LocationTypeSupplier, entity.SupplierCode("acme"), nil)
	f.bay = mk("loc-bay", entity.LocationTypeLoadingBay, entity.CodeLoadingBay, nil)
	f.consumed = mk("loc-consumed", entity.LocationTypeVirtual, entity.CodeConsumed, nil)

	guard := appledger.NewGuardrailValidator(appledger.PolicyFlags{
		AllowBackgroundWrites: false,
		MaxUnconfirmedQty:     qty(1000),
	})
	f.transferUC = appledger.NewTransferUseCase(
		store, store.Locations(), store.Catalog(), store.Movements(), guard,
	)
	return f
}

// seedWarehouse siembra stock inicial en la bodega principal vía el caso de uso.
func (f *fixture) seedWarehouse(t *testing.T, n int64) {
	t.Helper()
	_, err := f.transferUC.Transfer(context.Background(), appledger.TransferInput{
		ItemID:       testItemID,
		ToLocationID: &f.warehouse.ID,
		Quantity:     qty(n),
		Source:       entity.SourceInitialSeed,
		Actor:        "test",
		ReferenceID:  "seed-inicial",
	})
	require.NoError(t, err)
}

func (f *fixture) balance(t *testing.T, locationID string) decimal.Decimal {
	t.Helper()
	b, err := f.store.Balances().Get(testItemID, locationID)
	require.NoError(t, err)
	return b.Quantity
}

// ──────────────────────────────────────────────────────────────────────────────
// Traslados: atomicidad y conservación
// ──────────────────────────────────────────────────────────────────────────────

func TestTransfer_ActualizaAmbosSaldos(t *testing.T) {
	f := newFixture(t)
	f.seedWarehouse(t, 40)

	result, err := f.transferUC.Transfer(context.Background(), appledger.TransferInput{
		ItemID:         testItemID,
		FromLocationID: &f.warehouse.ID,
		ToLocationID:   &f.vehicle.ID,
		Quantity:       qty(5),
		Source:         entity.SourceLogisticsTransfer,
		Actor:          "operador-1",
		ReferenceID:    "job-9",
	})
	require.NoError(t, err)
	require.NotNil(t, result.Movement)
	assert.False(t, result.Deduplicated)

	assert.True(t, qty(35).Equal(f.balance(t, f.warehouse.ID)), "la bodega debe quedar en 35")
	assert.True(t, qty(5).Equal(f.balance(t, f.vehicle.ID)), "el vehículo debe quedar en 5")
	require.NotNil(t, result.FromBalance)
	require.NotNil(t, result.ToBalance)
	assert.True(t, qty(35).Equal(*result.FromBalance))
	assert.True(t, qty(5).Equal(*result.ToBalance))
}

// Conservación: la suma de saldos internos solo cambia por entradas/salidas externas.
func TestTransfer_Conservacion(t *testing.T) {
	f := newFixture(t)
	f.seedWarehouse(t, 40)

	for i, n := range []int64{5, 3, 7} {
		_, err := f.transferUC.Transfer(context.Background(), appledger.TransferInput{
			ItemID:         testItemID,
			FromLocationID: &f.warehouse.ID,
			ToLocationID:   &f.vehicle.ID,
			Quantity:       qty(n),
			Source:         entity.SourceLogisticsTransfer,
			ReferenceID:    "job-" + string(rune('a'+i)),
		})
		require.NoError(t, err)
	}

	total := f.balance(t, f.warehouse.ID).Add(f.balance(t, f.vehicle.ID))
	assert.True(t, qty(40).Equal(total), "ningún traslado interno altera el total")
}

// Dos traslados concurrentes que estrenan la misma fila de saldo: ambos créditos
// deben sumarse. Si la serialización por fila fallara en la primera materialización,
// el segundo commit pisaría al primero y el total divergiría del ledger.
func TestTransfer_EstrenoConcurrenteDelMismoPar_Conserva(t *testing.T) {
	f := newFixture(t)
	f.seedWarehouse(t, 20)

	var wg sync.WaitGroup
	for _, ref := range []string{"po-a", "po-b"} {
		wg.Add(1)
		go func(ref string) {
			defer wg.Done()
			_, err := f.transferUC.Transfer(context.Background(), appledger.TransferInput{
				ItemID:         testItemID,
				FromLocationID: &f.warehouse.ID,
				ToLocationID:   &f.vehicle.ID,
				Quantity:       qty(5),
				Source:         entity.SourceLogisticsTransfer,
				ReferenceID:    ref,
			})
			assert.NoError(t, err)
		}(ref)
	}
	wg.Wait()

	assert.True(t, qty(10).Equal(f.balance(t, f.vehicle.ID)), "los dos créditos deben sumarse")
	assert.True(t, qty(10).Equal(f.balance(t, f.warehouse.ID)))

	total := f.balance(t, f.warehouse.ID).Add(f.balance(t, f.vehicle.ID))
	assert.True(t, qty(20).Equal(total), "el total debe coincidir con el neto del ledger")
}

func TestTransfer_ConsumoHaciaSumideroExterno(t *testing.T) {
	f := newFixture(t)
	f.seedWarehouse(t, 10)

	result, err := f.transferUC.Transfer(context.Background(), appledger.TransferInput{
		ItemID:         testItemID,
		FromLocationID: &f.warehouse.ID,
		Quantity:       qty(4),
		Source:         entity.SourceJobUsage,
		ReferenceID:    "job-77",
	})
	require.NoError(t, err)
	assert.Nil(t, result.ToBalance, "una salida externa no tiene saldo destino")
	assert.True(t, qty(6).Equal(f.balance(t, f.warehouse.ID)))
	assert.True(t, result.Movement.IsOutflow())
}

// ──────────────────────────────────────────────────────────────────────────────
// Idempotencia
// ──────────────────────────────────────────────────────────────────────────────

// Escenario: la misma intención se envía dos veces (reentrega de webhook, doble
// submit). La segunda es un no-op exitoso que devuelve el registro original.
func TestTransfer_ReintentoMismaClave_NoOp(t *testing.T) {
	f := newFixture(t)
	f.seedWarehouse(t, 40)

	input := appledger.TransferInput{
		ItemID:         testItemID,
		FromLocationID: &f.warehouse.ID,
		ToLocationID:   &f.vehicle.ID,
		Quantity:       qty(5),
		Source:         entity.SourceLogisticsTransfer,
		ReferenceID:    "job-9",
	}
	first, err := f.transferUC.Transfer(context.Background(), input)
	require.NoError(t, err)

	second, err := f.transferUC.Transfer(context.Background(), input)
	require.NoError(t, err)

	assert.True(t, second.Deduplicated, "el reintento debe marcarse deduplicado")
	assert.Equal(t, first.Movement.ID, second.Movement.ID, "debe devolver el registro original")
	assert.True(t, qty(35).Equal(f.balance(t, f.warehouse.ID)), "el saldo no debe moverse dos veces")
	assert.True(t, qty(5).Equal(f.balance(t, f.vehicle.ID)))

	movements, err := f.store.Movements().ListByItem(testItemID, nil, nil, 100, 0)
	require.NoError(t, err)
	assert.Len(t, movements, 2, "siembra + un solo traslado en el ledger")
}

// Una clave explícita del llamador manda sobre la derivada.
func TestTransfer_ClaveExplicitaDelLlamador(t *testing.T) {
	f := newFixture(t)
	f.seedWarehouse(t, 40)

	input := appledger.TransferInput{
		ItemID:         testItemID,
		FromLocationID: &f.warehouse.ID,
		ToLocationID:   &f.vehicle.ID,
		Quantity:       qty(5),
		Source:         entity.SourceTransfer,
		IdempotencyKey: "clave-del-cliente-1",
	}
	first, err := f.transferUC.Transfer(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, "clave-del-cliente-1", first.Movement.IdempotencyKey)

	second, err := f.transferUC.Transfer(context.Background(), input)
	require.NoError(t, err)
	assert.True(t, second.Deduplicated)
}

// Sin ReferenceID ni clave explícita cada llamada es un movimiento nuevo: no hay
// entradas de negocio estables sobre las cuales deduplicar.
func TestTransfer_SinReferencias_CadaLlamadaEsNueva(t *testing.T) {
	f := newFixture(t)
	f.seedWarehouse(t, 40)

	input := appledger.TransferInput{
		ItemID:         testItemID,
		FromLocationID: &f.warehouse.ID,
		ToLocationID:   &f.vehicle.ID,
		Quantity:       qty(5),
		Source:         entity.SourceTransfer,
	}
	_, err := f.transferUC.Transfer(context.Background(), input)
	require.NoError(t, err)
	second, err := f.transferUC.Transfer(context.Background(), input)
	require.NoError(t, err)

	assert.False(t, second.Deduplicated)
	assert.True(t, qty(10).Equal(f.balance(t, f.vehicle.ID)))
}

// ──────────────────────────────────────────────────────────────────────────────
// Rechazos: sin escrituras parciales
// ──────────────────────────────────────────────────────────────────────────────

func TestTransfer_StockInsuficiente_SinEscrituras(t *testing.T) {
	f := newFixture(t)
	f.seedWarehouse(t, 3)

	_, err := f.transferUC.Transfer(context.Background(), appledger.TransferInput{
		ItemID:         testItemID,
		FromLocationID: &f.warehouse.ID,
		ToLocationID:   &f.vehicle.ID,
		Quantity:       qty(5),
		Source:         entity.SourceTransfer,
		ReferenceID:    "job-1",
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.True(t, qty(3).Equal(f.balance(t, f.warehouse.ID)), "el débito debe revertirse")
	assert.True(t, decimal.Zero.Equal(f.balance(t, f.vehicle.ID)))
	movements, err := f.store.Movements().ListByItem(testItemID, nil, nil, 100, 0)
	require.NoError(t, err)
	assert.Len(t, movements, 1, "solo la siembra queda en el ledger")
}

func TestTransfer_UbicacionDesconocida(t *testing.T) {
	f := newFixture(t)
	f.seedWarehouse(t, 10)

	_, err := f.transferUC.Transfer(context.Background(), appledger.TransferInput{
		ItemID:         testItemID,
		FromLocationID: &f.warehouse.ID,
		ToLocationID:   strptr("loc-fantasma"),
		Quantity:       qty(1),
		Source:         entity.SourceTransfer,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTransfer_ArticuloDesconocido(t *testing.T) {
	f := newFixture(t)

	_, err := f.transferUC.Transfer(context.Background(), appledger.TransferInput{
		ItemID:       "item-fantasma",
		ToLocationID: &f.warehouse.ID,
		Quantity:     qty(1),
		Source:       entity.SourceInitialSeed,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTransfer_MismoOrigenYDestino(t *testing.T) {
	f := newFixture(t)

	_, err := f.transferUC.Transfer(context.Background(), appledger.TransferInput{
		ItemID:         testItemID,
		FromLocationID: &f.warehouse.ID,
		ToLocationID:   &f.warehouse.ID,
		Quantity:       qty(1),
		Source:         entity.SourceTransfer,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestTransfer_SinExtremos(t *testing.T) {
	f := newFixture(t)

	_, err := f.transferUC.Transfer(context.Background(), appledger.TransferInput{
		ItemID:   testItemID,
		Quantity: qty(1),
		Source:   entity.SourceTransfer,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestTransfer_OrigenDesconocido_Rechaza(t *testing.T) {
	f := newFixture(t)

	_, err := f.transferUC.Transfer(context.Background(), appledger.TransferInput{
		ItemID:       testItemID,
		ToLocationID: &f.warehouse.ID,
		Quantity:     qty(1),
		Source:       "teleport",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// Entrada externa directo a un código reservado: jamás.
func TestTransfer_EntradaExternaADestinoReservado(t *testing.T) {
	f := newFixture(t)

	for _, dest := range []*entity.Location{f.bay, f.consumed} {
		_, err := f.transferUC.Transfer(context.Background(), appledger.TransferInput{
			ItemID:       testItemID,
			ToLocationID: &dest.ID,
			Quantity:     qty(1),
			Source:       entity.SourcePurchaseOrderReceipt,
			ReferenceID:  "po-1",
		})
		assert.ErrorIs(t, err, domain.ErrReservedDestination, dest.Code)
	}
}

// Un traslado interno hacia el muelle sí es legítimo (punto transitorio).
func TestTransfer_TrasladoInternoAlMuelle_Permitido(t *testing.T) {
	f := newFixture(t)
	f.seedWarehouse(t, 10)

	_, err := f.transferUC.Transfer(context.Background(), appledger.TransferInput{
		ItemID:         testItemID,
		FromLocationID: &f.warehouse.ID,
		ToLocationID:   &f.bay.ID,
		Quantity:       qty(2),
		Source:         entity.SourceLogisticsTransfer,
	})
	assert.NoError(t, err)
}

// ──────────────────────────────────────────────────────────────────────────────
// Proveedores: stock nocional ilimitado, nunca rastreado
// ──────────────────────────────────────────────────────────────────────────────

func TestTransfer_ProveedorComoOrigen_SinDebitoNiSaldo(t *testing.T) {
	f := newFixture(t)

	result, err := f.transferUC.Transfer(context.Background(), appledger.TransferInput{
		ItemID:         testItemID,
		FromLocationID: &f.supplier.ID,
		ToLocationID:   &f.warehouse.ID,
		Quantity:       qty(100),
		Source:         entity.SourcePurchaseOrderReceipt,
		ReferenceID:    "po-55",
	})
	require.NoError(t, err)
	assert.Nil(t, result.FromBalance, "el proveedor no lleva saldo")
	assert.True(t, qty(100).Equal(f.balance(t, f.warehouse.ID)))

	exists, err := f.store.Balances().Exists(testItemID, f.supplier.ID)
	require.NoError(t, err)
	assert.False(t, exists, "jamás se materializa fila de saldo para un proveedor")
}

// ──────────────────────────────────────────────────────────────────────────────
// Guardarraíles
// ──────────────────────────────────────────────────────────────────────────────

func TestTransfer_VersionObsoleta_Conflict(t *testing.T) {
	f := newFixture(t)
	f.seedWarehouse(t, 40)

	current, err := f.store.Balances().Get(testItemID, f.warehouse.ID)
	require.NoError(t, err)
	stale := current.Version - 1

	_, err = f.transferUC.Transfer(context.Background(), appledger.TransferInput{
		ItemID:          testItemID,
		FromLocationID:  &f.warehouse.ID,
		ToLocationID:    &f.vehicle.ID,
		Quantity:        qty(5),
		Source:          entity.SourceTransfer,
		ExpectedVersion: &stale,
	})
	require.ErrorIs(t, err, domain.ErrConflict)
	assert.True(t, qty(40).Equal(f.balance(t, f.warehouse.ID)), "un rechazo por versión no escribe nada")
}

func TestTransfer_VersionVigente_Pasa(t *testing.T) {
	f := newFixture(t)
	f.seedWarehouse(t, 40)

	current, err := f.store.Balances().Get(testItemID, f.warehouse.ID)
	require.NoError(t, err)

	_, err = f.transferUC.Transfer(context.Background(), appledger.TransferInput{
		ItemID:          testItemID,
		FromLocationID:  &f.warehouse.ID,
		ToLocationID:    &f.vehicle.ID,
		Quantity:        qty(5),
		Source:          entity.SourceTransfer,
		ExpectedVersion: &current.Version,
	})
	assert.NoError(t, err)
}

func TestTransfer_BackgroundSyncDeshabilitado(t *testing.T) {
	f := newFixture(t)
	f.seedWarehouse(t, 40)

	_, err := f.transferUC.Transfer(context.Background(), appledger.TransferInput{
		ItemID:         testItemID,
		FromLocationID: &f.warehouse.ID,
		ToLocationID:   &f.vehicle.ID,
		Quantity:       qty(5),
		Source:         entity.SourceTransfer,
		WriteSource:    entity.WriteSourceBackgroundSync,
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestTransfer_CantidadFraccionaria_Rechazada(t *testing.T) {
	f := newFixture(t)

	_, err := f.transferUC.Transfer(context.Background(), appledger.TransferInput{
		ItemID:       testItemID,
		ToLocationID: &f.warehouse.ID,
		Quantity:     decimal.RequireFromString("2.5"),
		Source:       entity.SourceInitialSeed,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestTransfer_SiembraSobreUmbralSinForce(t *testing.T) {
	f := newFixture(t)

	_, err := f.transferUC.Transfer(context.Background(), appledger.TransferInput{
		ItemID:       testItemID,
		ToLocationID: &f.warehouse.ID,
		Quantity:     qty(5000),
		Source:       entity.SourceInitialSeed,
	})
	require.ErrorIs(t, err, domain.ErrConfirmationRequired)

	// Con force la misma siembra pasa.
	_, err = f.transferUC.Transfer(context.Background(), appledger.TransferInput{
		ItemID:       testItemID,
		ToLocationID: &f.warehouse.ID,
		Quantity:     qty(5000),
		Source:       entity.SourceInitialSeed,
		Force:        true,
	})
	assert.NoError(t, err)
}
