package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fieldops/stock-ledger-api/internal/domain"
	"github.com/fieldops/stock-ledger-api/internal/domain/entity"
)

// PolicyFlags políticas globales de escritura del ledger.
type PolicyFlags struct {
	// AllowBackgroundWrites en false rechaza todo movimiento con write source
	// background_sync; las escrituras interactivas siguen habilitadas.
	AllowBackgroundWrites bool
	// MaxUnconfirmedQty umbral por encima del cual una siembra o ajuste exige
	// force=true (previene mutaciones masivas por error de tipeo).
	MaxUnconfirmedQty decimal.Decimal
}

// GuardrailValidator capa de política pre-commit: enums, canal de escritura,
// umbral de cantidad y concurrencia optimista. No escribe nada; solo decide.
type GuardrailValidator struct {
	flags PolicyFlags
}

// NewGuardrailValidator construye el validador con las políticas dadas.
func NewGuardrailValidator(flags PolicyFlags) *GuardrailValidator {
	return &GuardrailValidator{flags: flags}
}

// GuardrailInput datos del movimiento propuesto que las políticas evalúan.
type GuardrailInput struct {
	Source      string
	WriteSource string
	Quantity    decimal.Decimal
	Force       bool
}

// Normalize aplica valores por defecto al canal de escritura.
func (g *GuardrailValidator) Normalize(in *GuardrailInput) {
	if in.WriteSource == "" {
		in.WriteSource = entity.WriteSourceInteractive
	}
}

// Check evalúa las políticas estáticas sobre el movimiento propuesto. Devuelve un
// error de dominio envuelto con el motivo; nil si la escritura está permitida.
func (g *GuardrailValidator) Check(in GuardrailInput) error {
	if !in.Quantity.IsPositive() {
		return fmt.Errorf("cantidad debe ser positiva: %w", domain.ErrInvalidInput)
	}
	if !in.Quantity.IsInteger() {
		return fmt.Errorf("cantidad debe ser entera: %w", domain.ErrInvalidInput)
	}
	if !entity.ValidSource(in.Source) {
		return fmt.Errorf("origen de movimiento desconocido %q: %w", in.Source, domain.ErrInvalidInput)
	}
	if !entity.ValidWriteSource(in.WriteSource) {
		return fmt.Errorf("canal de escritura desconocido %q: %w", in.WriteSource, domain.ErrInvalidInput)
	}
	if in.WriteSource == entity.WriteSourceBackgroundSync && !g.flags.AllowBackgroundWrites {
		return fmt.Errorf("escrituras background_sync deshabilitadas por política: %w", domain.ErrForbidden)
	}
	if requiresConfirmation(in.Source) && in.Quantity.GreaterThan(g.flags.MaxUnconfirmedQty) && !in.Force {
		return fmt.Errorf("cantidad %s supera el umbral %s sin force: %w",
			in.Quantity, g.flags.MaxUnconfirmedQty, domain.ErrConfirmationRequired)
	}
	return nil
}

// CheckVersion compara la versión conocida por el llamador contra la almacenada.
// expected nil = el llamador no exige concurrencia optimista.
func (g *GuardrailValidator) CheckVersion(expected *int64, current int64) error {
	if expected == nil {
		return nil
	}
	if *expected != current {
		return fmt.Errorf("versión conocida %d, almacenada %d: %w", *expected, current, domain.ErrConflict)
	}
	return nil
}

// requiresConfirmation indica los orígenes sujetos al umbral de cantidad: solo
// siembras y ajustes, los puntos de entrada donde un dedo gordo crea stock masivo.
func requiresConfirmation(source string) bool {
	return source == entity.SourceInitialSeed || source == entity.SourceAdjustment
}
