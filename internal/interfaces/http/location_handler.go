package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/fieldops/stock-ledger-api/internal/application/dto"
	"github.com/fieldops/stock-ledger-api/internal/application/ledger"
	"github.com/fieldops/stock-ledger-api/internal/domain"
	"github.com/fieldops/stock-ledger-api/internal/domain/entity"
)

// LocationHandler maneja el registro de ubicaciones canónicas (protegido).
type LocationHandler struct {
	registry *ledger.RegistryUseCase
}

// NewLocationHandler construye el handler.
func NewLocationHandler(registry *ledger.RegistryUseCase) *LocationHandler {
	return &LocationHandler{registry: registry}
}

// Ensure godoc
// @Summary      Resolver o crear ubicación canónica (idempotente)
// @Description  Get-or-create por (type, identity_key). Llamadas repetidas devuelven
//
//	el mismo registro; nunca crea duplicados.
//
// @Tags         locations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.EnsureLocationRequest  true  "type, identity_key, name opcional"
// @Success      200   {object}  dto.LocationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/locations/ensure [put]
func (h *LocationHandler) Ensure(c *fiber.Ctx) error {
	var in dto.EnsureLocationRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	loc, err := h.registry.Ensure(in.Type, in.IdentityKey, in.Name, in.Description)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(toLocationResponse(loc))
}

// List godoc
// @Summary      Listar ubicaciones activas
// @Tags         locations
// @Security     Bearer
// @Produce      json
// @Param        type  query  string  false  "Filtrar por tipo (warehouse, vehicle, supplier, loading_bay, virtual)"
// @Success      200   {array}   dto.LocationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/locations [get]
func (h *LocationHandler) List(c *fiber.Ctx) error {
	locs, err := h.registry.ListActive(c.Query("type"))
	if err != nil {
		return writeDomainError(c, err)
	}
	out := make([]dto.LocationResponse, 0, len(locs))
	for _, l := range locs {
		out = append(out, toLocationResponse(l))
	}
	return c.JSON(out)
}

// Deactivate godoc
// @Summary      Desactivar ubicación
// @Description  Marca la ubicación como inactiva con nota de auditoría. El historial
//
//	de movimientos queda adherido al ID; no hay borrado físico.
//
// @Tags         locations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la ubicación"
// @Param        body  body  dto.DeactivateLocationRequest  true  "reason"
// @Success      200   {object}  map[string]string
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/locations/{id}/deactivate [post]
func (h *LocationHandler) Deactivate(c *fiber.Ctx) error {
	var in dto.DeactivateLocationRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.Reason == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "reason es requerido"})
	}
	if err := h.registry.Deactivate(c.Params("id"), in.Reason); err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(fiber.Map{"message": "ubicación desactivada"})
}

// Dedup godoc
// @Summary      Ejecutar pasada de deduplicación
// @Description  Agrupa las ubicaciones activas por identidad, elige un ganador
//
//	determinista por grupo y desactiva al resto. Solo admin. Una segunda
//	invocación concurrente recibe 409.
//
// @Tags         locations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.DedupRequest  false  "type opcional: restringe la pasada a un tipo"
// @Success      200   {object}  dto.DedupResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/locations/dedup [post]
func (h *LocationHandler) Dedup(c *fiber.Ctx) error {
	var in dto.DedupRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
		}
	}
	report, err := h.registry.RunDedup(in.Type)
	if err != nil {
		if errors.Is(err, domain.ErrDedupAlreadyRunning) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Code: "DEDUP_RUNNING", Message: "la deduplicación ya está en ejecución", Reason: "already_running",
			})
		}
		return writeDomainError(c, err)
	}
	out := dto.DedupResponse{
		Winners:     make([]dto.LocationResponse, 0, len(report.Winners)),
		Deactivated: make([]dto.LocationResponse, 0, len(report.Deactivated)),
	}
	for _, w := range report.Winners {
		out.Winners = append(out.Winners, toLocationResponse(w))
	}
	for _, d := range report.Deactivated {
		out.Deactivated = append(out.Deactivated, toLocationResponse(d))
	}
	return c.JSON(out)
}

func toLocationResponse(l *entity.Location) dto.LocationResponse {
	return dto.LocationResponse{
		ID:          l.ID,
		Type:        l.Type,
		Code:        l.Code,
		VehicleID:   l.VehicleID,
		IsPrimary:   l.IsPrimary,
		IsActive:    l.IsActive,
		Name:        l.Name,
		Description: l.Description,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
}
