package ledger

import (
	"context"

	"github.com/fieldops/stock-ledger-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios
// atados a esa tx. Garantiza que un movimiento y sus dos filas de saldo se escriban
// juntos o no se escriba nada.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.MovementRepository,
		balanceRepo repository.BalanceRepository,
		locationRepo repository.LocationRepository,
	) error) error
}

// AuditPDFGenerator renderiza el informe de conciliación como PDF.
type AuditPDFGenerator interface {
	GenerateAuditPDF(ctx context.Context, report *AuditReport) ([]byte, error)
}
