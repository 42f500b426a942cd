package ledger_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	appledger "github.com/fieldops/stock-ledger-api/internal/application/ledger"
	"github.com/fieldops/stock-ledger-api/internal/domain"
	"github.com/fieldops/stock-ledger-api/internal/domain/entity"
)

func newGuard(allowBackground bool) *appledger.GuardrailValidator {
	return appledger.NewGuardrailValidator(appledger.PolicyFlags{
		AllowBackgroundWrites: allowBackground,
		MaxUnconfirmedQty:     qty(1000),
	})
}

func TestGuardrail_CantidadPositivaYEntera(t *testing.T) {
	g := newGuard(false)

	cases := []struct {
		nombre   string
		cantidad decimal.Decimal
		ok       bool
	}{
		{"entera positiva", qty(5), true},
		{"cero", decimal.Zero, false},
		{"negativa", qty(-3), false},
		{"fraccionaria", decimal.RequireFromString("2.5"), false},
	}
	for _, tc := range cases {
		t.Run(tc.nombre, func(t *testing.T) {
			err := g.Check(appledger.GuardrailInput{
				Source:      entity.SourceTransfer,
				WriteSource: entity.WriteSourceInteractive,
				Quantity:    tc.cantidad,
			})
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, domain.ErrInvalidInput)
			}
		})
	}
}

func TestGuardrail_EnumsDesconocidos(t *testing.T) {
	g := newGuard(false)

	err := g.Check(appledger.GuardrailInput{
		Source: "teleport", WriteSource: entity.WriteSourceInteractive, Quantity: qty(1),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	err = g.Check(appledger.GuardrailInput{
		Source: entity.SourceTransfer, WriteSource: "carrier-pigeon", Quantity: qty(1),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGuardrail_PoliticaBackground(t *testing.T) {
	in := appledger.GuardrailInput{
		Source:      entity.SourceTransfer,
		WriteSource: entity.WriteSourceBackgroundSync,
		Quantity:    qty(1),
	}

	assert.ErrorIs(t, newGuard(false).Check(in), domain.ErrForbidden,
		"background_sync bloqueado por defecto")
	assert.NoError(t, newGuard(true).Check(in),
		"con la política habilitada el mismo movimiento pasa")
}

// El umbral solo aplica a siembras y ajustes: los puntos de entrada donde un error
// de tipeo crea stock masivo. Los traslados mueven stock ya validado.
func TestGuardrail_UmbralSoloParaSiembrasYAjustes(t *testing.T) {
	g := newGuard(false)
	big := qty(100000)

	for _, source := range []string{entity.SourceInitialSeed, entity.SourceAdjustment} {
		err := g.Check(appledger.GuardrailInput{
			Source: source, WriteSource: entity.WriteSourceInteractive, Quantity: big,
		})
		assert.ErrorIs(t, err, domain.ErrConfirmationRequired, source)

		err = g.Check(appledger.GuardrailInput{
			Source: source, WriteSource: entity.WriteSourceInteractive, Quantity: big, Force: true,
		})
		assert.NoError(t, err, "%s con force pasa", source)
	}

	err := g.Check(appledger.GuardrailInput{
		Source: entity.SourceTransfer, WriteSource: entity.WriteSourceInteractive, Quantity: big,
	})
	assert.NoError(t, err, "un traslado grande no exige confirmación")
}

func TestGuardrail_UmbralExacto_Pasa(t *testing.T) {
	err := newGuard(false).Check(appledger.GuardrailInput{
		Source: entity.SourceInitialSeed, WriteSource: entity.WriteSourceInteractive, Quantity: qty(1000),
	})
	assert.NoError(t, err, "el umbral es inclusivo")
}

func TestGuardrail_NormalizeCanalPorDefecto(t *testing.T) {
	g := newGuard(false)

	in := appledger.GuardrailInput{Source: entity.SourceTransfer, Quantity: qty(1)}
	g.Normalize(&in)
	assert.Equal(t, entity.WriteSourceInteractive, in.WriteSource)

	in = appledger.GuardrailInput{WriteSource: entity.WriteSourceMigration}
	g.Normalize(&in)
	assert.Equal(t, entity.WriteSourceMigration, in.WriteSource, "un canal explícito no se pisa")
}

func TestGuardrail_CheckVersion(t *testing.T) {
	g := newGuard(false)

	assert.NoError(t, g.CheckVersion(nil, 7), "nil = sin concurrencia optimista")

	v := int64(7)
	assert.NoError(t, g.CheckVersion(&v, 7))

	stale := int64(6)
	assert.ErrorIs(t, g.CheckVersion(&stale, 7), domain.ErrConflict)
}
