package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/fieldops/stock-ledger-api/internal/application/dto"
	"github.com/fieldops/stock-ledger-api/internal/application/ledger"
	"github.com/fieldops/stock-ledger-api/internal/domain"
	"github.com/fieldops/stock-ledger-api/internal/domain/entity"
)

// LedgerHandler maneja traslados, siembras y consultas del ledger (protegido).
type LedgerHandler struct {
	transferUC *ledger.TransferUseCase
	seedUC     *ledger.SeedUseCase
	queryUC    *ledger.QueryUseCase
}

// NewLedgerHandler construye el handler.
func NewLedgerHandler(
	transferUC *ledger.TransferUseCase,
	seedUC *ledger.SeedUseCase,
	queryUC *ledger.QueryUseCase,
) *LedgerHandler {
	return &LedgerHandler{transferUC: transferUC, seedUC: seedUC, queryUC: queryUC}
}

// Transfer godoc
// @Summary      Registrar traslado de stock
// @Description  Escribe un movimiento y actualiza atómicamente los saldos de ambos
//
//	extremos. Un reintento con la misma clave de idempotencia es un no-op
//	exitoso que devuelve el registro original con deduplicated=true.
//
// @Tags         ledger
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TransferRequest  true  "item_id, from/to, quantity, source"
// @Success      201   {object}  dto.TransferResponse
// @Success      200   {object}  dto.TransferResponse  "reintento deduplicado"
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/ledger/transfers [post]
func (h *LedgerHandler) Transfer(c *fiber.Ctx) error {
	var in dto.TransferRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	result, err := h.transferUC.Transfer(c.Context(), ledger.TransferInput{
		ItemID:          in.ItemID,
		FromLocationID:  in.FromLocationID,
		ToLocationID:    in.ToLocationID,
		Quantity:        in.Quantity,
		Source:          in.Source,
		IdempotencyKey:  in.IdempotencyKey,
		Actor:           GetUserID(c),
		WriteSource:     in.WriteSource,
		Note:            in.Note,
		ReferenceID:     in.ReferenceID,
		ReferenceType:   in.ReferenceType,
		ExpectedVersion: in.ExpectedVersion,
		Force:           in.Force,
	})
	if err != nil {
		return writeDomainError(c, err)
	}
	status := fiber.StatusCreated
	if result.Deduplicated {
		status = fiber.StatusOK
	}
	return c.Status(status).JSON(dto.TransferResponse{
		MovementID:   result.Movement.ID,
		FromBalance:  result.FromBalance,
		ToBalance:    result.ToBalance,
		Deduplicated: result.Deduplicated,
	})
}

// Seed godoc
// @Summary      Sembrar stock inicial
// @Description  Crea el primer movimiento de un par (artículo, ubicación) con origen
//
//	externo. Una siembra previa para el mismo par exige force=true.
//
// @Tags         ledger
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SeedRequest  true  "item_id, to_location_id, quantity"
// @Success      201   {object}  dto.SeedResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/ledger/seed [post]
func (h *LedgerHandler) Seed(c *fiber.Ctx) error {
	var in dto.SeedRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	result, err := h.seedUC.Seed(c.Context(), ledger.SeedInput{
		ItemID:       in.ItemID,
		Quantity:     in.Quantity,
		ToLocationID: in.ToLocationID,
		Note:         in.Note,
		Actor:        GetUserID(c),
		Force:        in.Force,
	})
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SeedResponse{
		MovementID: result.Movement.ID,
		Balance:    result.ToBalance,
	})
}

// GetBalance godoc
// @Summary      Consultar saldo de un artículo en una ubicación
// @Description  Un par nunca movido responde cero. Las ubicaciones supplier no
//
//	rastrean saldos y responden 400.
//
// @Tags         ledger
// @Security     Bearer
// @Produce      json
// @Param        itemID      path  string  true  "ID del artículo"
// @Param        locationID  path  string  true  "ID de la ubicación"
// @Success      200  {object}  dto.BalanceResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/ledger/balances/{itemID}/{locationID} [get]
func (h *LedgerHandler) GetBalance(c *fiber.Ctx) error {
	bal, err := h.queryUC.GetBalance(c.Params("itemID"), c.Params("locationID"))
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(dto.BalanceResponse{
		ItemID:     bal.ItemID,
		LocationID: bal.LocationID,
		Quantity:   bal.Quantity,
		Version:    bal.Version,
		UpdatedAt:  bal.UpdatedAt,
	})
}

// ListMovements godoc
// @Summary      Historial del ledger de movimientos
// @Tags         ledger
// @Security     Bearer
// @Produce      json
// @Param        location_id  query  string  false  "Filtrar por ubicación (cualquier extremo)"
// @Param        item_id      query  string  false  "Filtrar por artículo"
// @Param        from         query  string  false  "Fecha inicial (RFC3339)"
// @Param        to           query  string  false  "Fecha final (RFC3339)"
// @Param        limit        query  int     false  "Tamaño de página (default 50)"
// @Param        offset       query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.MovementListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/ledger/movements [get]
func (h *LedgerHandler) ListMovements(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()

	from, err := parseTimeQuery(c.Query("from"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from debe ser RFC3339"})
	}
	to, err := parseTimeQuery(c.Query("to"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to debe ser RFC3339"})
	}

	movements, err := h.queryUC.ListMovements(
		c.Query("location_id"), c.Query("item_id"), from, to, page.Limit, page.Offset,
	)
	if err != nil {
		return writeDomainError(c, err)
	}

	items := make([]dto.MovementResponse, 0, len(movements))
	for _, m := range movements {
		items = append(items, toMovementResponse(m))
	}
	return c.JSON(dto.MovementListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	})
}

func toMovementResponse(m *entity.MovementRecord) dto.MovementResponse {
	return dto.MovementResponse{
		ID:             m.ID,
		ItemID:         m.ItemID,
		Quantity:       m.Quantity,
		FromLocationID: m.FromLocationID,
		ToLocationID:   m.ToLocationID,
		Source:         m.Source,
		IdempotencyKey: m.IdempotencyKey,
		Actor:          m.Actor,
		WriteSource:    m.WriteSource,
		Note:           m.Note,
		ReferenceID:    m.ReferenceID,
		ReferenceType:  m.ReferenceType,
		CreatedAt:      m.CreatedAt,
	}
}

func parseTimeQuery(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// writeDomainError mapea errores de dominio a códigos HTTP. Reason lleva el motivo
// legible por máquina en rechazos de guardarraíl para que el llamador pueda
// re-leer y reintentar o re-confirmar.
func writeDomainError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrReservedDestination):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "RESERVED_DESTINATION", Message: err.Error(), Reason: "reserved_destination"})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: err.Error(), Reason: "policy"})
	case errors.Is(err, domain.ErrInsufficientStock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: err.Error(), Reason: "insufficient_stock"})
	case errors.Is(err, domain.ErrConfirmationRequired):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFIRMATION_REQUIRED", Message: err.Error(), Reason: "force_required"})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "STALE_VERSION", Message: err.Error(), Reason: "stale_version"})
	case errors.Is(err, domain.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
