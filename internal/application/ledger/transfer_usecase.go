package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fieldops/stock-ledger-api/internal/domain"
	"github.com/fieldops/stock-ledger-api/internal/domain/entity"
	domledger "github.com/fieldops/stock-ledger-api/internal/domain/ledger"
	"github.com/fieldops/stock-ledger-api/internal/domain/repository"
)

// TransferUseCase orquesta un traslado: valida la intención, consulta guardarraíles,
// escribe un MovementRecord y actualiza atómicamente las dos filas de saldo afectadas
// dentro de una transacción con bloqueo de fila (SELECT FOR UPDATE).
type TransferUseCase struct {
	txRunner     TxRunner
	locationRepo repository.LocationRepository
	catalogRepo  repository.CatalogRepository
	movementRepo repository.MovementRepository
	guard        *GuardrailValidator
}

// NewTransferUseCase construye el caso de uso.
func NewTransferUseCase(
	txRunner TxRunner,
	locationRepo repository.LocationRepository,
	catalogRepo repository.CatalogRepository,
	movementRepo repository.MovementRepository,
	guard *GuardrailValidator,
) *TransferUseCase {
	return &TransferUseCase{
		txRunner:     txRunner,
		locationRepo: locationRepo,
		catalogRepo:  catalogRepo,
		movementRepo: movementRepo,
		guard:        guard,
	}
}

// TransferInput intención lógica de traslado. FromLocationID nil = fuente externa
// ilimitada (proveedor, siembra); ToLocationID nil = sumidero externo (consumo).
type TransferInput struct {
	ItemID          string
	FromLocationID  *string
	ToLocationID    *string
	Quantity        decimal.Decimal
	Source          string
	IdempotencyKey  string // vacío = se calcula/genera
	Actor           string
	WriteSource     string
	Note            string
	ReferenceID     string
	ReferenceType   string
	ExpectedVersion *int64
	Force           bool
}

// TransferResult movimiento registrado más los saldos resultantes. Los extremos de
// tipo supplier no llevan saldo (política: los proveedores nunca se rastrean).
type TransferResult struct {
	Movement     *entity.MovementRecord
	FromBalance  *decimal.Decimal
	ToBalance    *decimal.Decimal
	Deduplicated bool
}

// Transfer ejecuta el traslado como una unidad atómica: o se registra el movimiento
// y ambos saldos quedan actualizados, o no se escribe nada. Un reintento con la
// misma clave de idempotencia es un no-op exitoso que devuelve el registro original.
func (uc *TransferUseCase) Transfer(ctx context.Context, input TransferInput) (*TransferResult, error) {
	if input.FromLocationID == nil && input.ToLocationID == nil {
		return nil, fmt.Errorf("traslado sin extremos: %w", domain.ErrInvalidInput)
	}
	if input.FromLocationID != nil && input.ToLocationID != nil &&
		*input.FromLocationID == *input.ToLocationID {
		return nil, fmt.Errorf("origen y destino idénticos: %w", domain.ErrInvalidInput)
	}
	if input.ItemID == "" {
		return nil, fmt.Errorf("item_id requerido: %w", domain.ErrInvalidInput)
	}

	gin := GuardrailInput{
		Source:      input.Source,
		WriteSource: input.WriteSource,
		Quantity:    input.Quantity,
		Force:       input.Force,
	}
	uc.guard.Normalize(&gin)
	input.WriteSource = gin.WriteSource
	if err := uc.guard.Check(gin); err != nil {
		return nil, err
	}

	item, err := uc.catalogRepo.GetItem(input.ItemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("artículo %s: %w", input.ItemID, domain.ErrNotFound)
	}

	fromLoc, toLoc, err := uc.resolveEndpoints(input)
	if err != nil {
		return nil, err
	}

	key := input.IdempotencyKey
	if key == "" {
		if input.ReferenceID != "" {
			key = domledger.IdempotencyKey(input.Source, input.ItemID,
				input.FromLocationID, input.ToLocationID, input.Quantity, input.ReferenceID)
		} else {
			// Sin documentos de referencia no hay entradas de negocio estables:
			// la clave es aleatoria y el reintento seguro queda a cargo del llamador.
			key = uuid.New().String()
		}
	}

	result := &TransferResult{}
	runErr := uc.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		balanceRepo repository.BalanceRepository,
		_ repository.LocationRepository,
	) error {
		existing, err := movRepo.GetByIdempotencyKey(key)
		if err != nil {
			return err
		}
		if existing != nil {
			return uc.fillDeduplicated(result, existing, fromLoc, toLoc, balanceRepo)
		}
		return uc.apply(result, movRepo, balanceRepo, input, fromLoc, toLoc, key)
	})
	if runErr != nil {
		// Carrera entre el chequeo de clave y el insert: otro traslado ganó con la
		// misma clave. Responder con su registro, sin segundo débito/crédito.
		if errors.Is(runErr, domain.ErrDuplicate) {
			return uc.deduplicatedResult(ctx, key, fromLoc, toLoc)
		}
		return nil, runErr
	}
	return result, nil
}

// resolveEndpoints valida existencia y estado de los extremos del traslado.
func (uc *TransferUseCase) resolveEndpoints(input TransferInput) (fromLoc, toLoc *entity.Location, err error) {
	if input.FromLocationID != nil {
		fromLoc, err = uc.locationRepo.GetByID(*input.FromLocationID)
		if err != nil {
			return nil, nil, err
		}
		if fromLoc == nil {
			return nil, nil, fmt.Errorf("ubicación origen %s: %w", *input.FromLocationID, domain.ErrNotFound)
		}
		if !fromLoc.IsActive && fromLoc.Type != entity.LocationTypeSupplier {
			return nil, nil, fmt.Errorf("ubicación origen %s inactiva: %w", fromLoc.Code, domain.ErrInvalidInput)
		}
	}
	if input.ToLocationID != nil {
		toLoc, err = uc.locationRepo.GetByID(*input.ToLocationID)
		if err != nil {
			return nil, nil, err
		}
		if toLoc == nil {
			return nil, nil, fmt.Errorf("ubicación destino %s: %w", *input.ToLocationID, domain.ErrNotFound)
		}
		// Los códigos reservados solo existen como puntos transitorios/virtuales:
		// jamás reciben stock nuevo desde el exterior.
		if input.FromLocationID == nil && entity.IsReservedCode(toLoc.Code) {
			return nil, nil, fmt.Errorf("destino %s: %w", toLoc.Code, domain.ErrReservedDestination)
		}
	}
	return fromLoc, toLoc, nil
}

// apply ejecuta débito, crédito y registro dentro de la transacción.
func (uc *TransferUseCase) apply(
	result *TransferResult,
	movRepo repository.MovementRepository,
	balanceRepo repository.BalanceRepository,
	input TransferInput,
	fromLoc, toLoc *entity.Location,
	key string,
) error {
	now := time.Now()
	versionChecked := false

	if fromLoc != nil && fromLoc.Type != entity.LocationTypeSupplier {
		bal, err := balanceRepo.GetForUpdate(input.ItemID, fromLoc.ID)
		if err != nil {
			return err
		}
		if err := uc.guard.CheckVersion(input.ExpectedVersion, bal.Version); err != nil {
			return err
		}
		versionChecked = true
		if bal.Quantity.LessThan(input.Quantity) {
			return fmt.Errorf("saldo %s en %s, se piden %s: %w",
				bal.Quantity, fromLoc.Code, input.Quantity, domain.ErrInsufficientStock)
		}
		bal.Quantity = bal.Quantity.Sub(input.Quantity)
		bal.UpdatedAt = now
		if err := balanceRepo.Upsert(bal); err != nil {
			return err
		}
		q := bal.Quantity
		result.FromBalance = &q
	}

	if toLoc != nil && toLoc.Type != entity.LocationTypeSupplier {
		bal, err := balanceRepo.GetForUpdate(input.ItemID, toLoc.ID)
		if err != nil {
			return err
		}
		if !versionChecked {
			if err := uc.guard.CheckVersion(input.ExpectedVersion, bal.Version); err != nil {
				return err
			}
		}
		bal.Quantity = bal.Quantity.Add(input.Quantity)
		bal.UpdatedAt = now
		if err := balanceRepo.Upsert(bal); err != nil {
			return err
		}
		q := bal.Quantity
		result.ToBalance = &q
	}

	mov := &entity.MovementRecord{
		ID:             uuid.New().String(),
		ItemID:         input.ItemID,
		Quantity:       input.Quantity,
		FromLocationID: input.FromLocationID,
		ToLocationID:   input.ToLocationID,
		Source:         input.Source,
		IdempotencyKey: key,
		Actor:          input.Actor,
		WriteSource:    input.WriteSource,
		Note:           input.Note,
		ReferenceID:    input.ReferenceID,
		ReferenceType:  input.ReferenceType,
		CreatedAt:      now,
	}
	if err := movRepo.Create(mov); err != nil {
		return err
	}
	result.Movement = mov
	return nil
}

// fillDeduplicated completa el resultado de un reintento: registro original más los
// saldos actuales, sin tocar nada.
func (uc *TransferUseCase) fillDeduplicated(
	result *TransferResult,
	existing *entity.MovementRecord,
	fromLoc, toLoc *entity.Location,
	balanceRepo repository.BalanceRepository,
) error {
	result.Movement = existing
	result.Deduplicated = true
	if fromLoc != nil && fromLoc.Type != entity.LocationTypeSupplier {
		bal, err := balanceRepo.Get(existing.ItemID, fromLoc.ID)
		if err != nil {
			return err
		}
		q := bal.Quantity
		result.FromBalance = &q
	}
	if toLoc != nil && toLoc.Type != entity.LocationTypeSupplier {
		bal, err := balanceRepo.Get(existing.ItemID, toLoc.ID)
		if err != nil {
			return err
		}
		q := bal.Quantity
		result.ToBalance = &q
	}
	return nil
}

// deduplicatedResult resuelve el resultado tras perder la carrera del insert.
func (uc *TransferUseCase) deduplicatedResult(ctx context.Context, key string, fromLoc, toLoc *entity.Location) (*TransferResult, error) {
	existing, err := uc.movementRepo.GetByIdempotencyKey(key)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, domain.ErrConflict
	}
	result := &TransferResult{Movement: existing, Deduplicated: true}
	txErr := uc.txRunner.Run(ctx, func(
		_ repository.MovementRepository,
		balanceRepo repository.BalanceRepository,
		_ repository.LocationRepository,
	) error {
		return uc.fillDeduplicated(result, existing, fromLoc, toLoc, balanceRepo)
	})
	if txErr != nil {
		return nil, txErr
	}
	return result, nil
}
