package http

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/fieldops/stock-ledger-api/internal/application/dto"
	"github.com/fieldops/stock-ledger-api/internal/application/ledger"
)

// AuditHandler expone la auditoría de conciliación (protegido, solo admin).
type AuditHandler struct {
	auditUC *ledger.AuditUseCase
	pdfGen  ledger.AuditPDFGenerator
}

// NewAuditHandler construye el handler.
func NewAuditHandler(auditUC *ledger.AuditUseCase, pdfGen ledger.AuditPDFGenerator) *AuditHandler {
	return &AuditHandler{auditUC: auditUC, pdfGen: pdfGen}
}

// Run godoc
// @Summary      Ejecutar auditoría de conciliación
// @Description  Barrido de solo lectura: saldos huérfanos, deriva contra el ledger,
//
//	movimientos con referencias rotas, piezas inconsistentes y artículos
//	nunca sembrados. No corrige nada.
//
// @Tags         audit
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.AuditReportResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/audit [get]
func (h *AuditHandler) Run(c *fiber.Ctx) error {
	report, err := h.auditUC.RunAudit(c.Context())
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(toAuditResponse(report))
}

// RunPDF godoc
// @Summary      Informe de auditoría en PDF
// @Tags         audit
// @Security     Bearer
// @Produce      application/pdf
// @Success      200  {file}    binary
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/audit/pdf [get]
func (h *AuditHandler) RunPDF(c *fiber.Ctx) error {
	report, err := h.auditUC.RunAudit(c.Context())
	if err != nil {
		return writeDomainError(c, err)
	}
	pdfBytes, err := h.pdfGen.GenerateAuditPDF(c.Context(), report)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	filename := fmt.Sprintf("auditoria-%s.pdf", report.GeneratedAt.Format("20060102-150405"))
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(pdfBytes)
}

func toAuditResponse(report *ledger.AuditReport) dto.AuditReportResponse {
	out := dto.AuditReportResponse{
		GeneratedAt: report.GeneratedAt.Truncate(time.Second),
		Summary: dto.AuditSummaryDTO{
			Matched:     report.Matched,
			Discrepant:  report.Discrepant,
			HealthScore: report.HealthScore(),
		},
		OrphanedBalances: make([]dto.OrphanedBalanceDTO, 0, len(report.OrphanedBalances)),
		NeverStocked:     make([]dto.NeverStockedDTO, 0, len(report.NeverStocked)),
		BrokenMovements:  make([]dto.BrokenMovementDTO, 0, len(report.BrokenMovements)),
		Mismatches:       make([]dto.PartMismatchDTO, 0, len(report.Mismatches)),
		BalanceDrift:     make([]dto.BalanceDriftDTO, 0, len(report.BalanceDrift)),
	}
	for _, o := range report.OrphanedBalances {
		out.OrphanedBalances = append(out.OrphanedBalances, dto.OrphanedBalanceDTO{
			ItemID: o.ItemID, LocationID: o.LocationID, Quantity: o.Quantity, Missing: o.Missing,
		})
	}
	for _, it := range report.NeverStocked {
		out.NeverStocked = append(out.NeverStocked, dto.NeverStockedDTO{
			ItemID: it.ID, SKU: it.SKU, Name: it.Name,
		})
	}
	for _, b := range report.BrokenMovements {
		out.BrokenMovements = append(out.BrokenMovements, dto.BrokenMovementDTO{
			MovementID: b.MovementID, ItemID: b.ItemID, Missing: b.Missing,
		})
	}
	for _, m := range report.Mismatches {
		out.Mismatches = append(out.Mismatches, dto.PartMismatchDTO{
			PartID: m.PartID, Status: m.Status, LocationID: m.LocationID,
			LocationType: m.LocationType, Detail: m.Detail,
		})
	}
	for _, d := range report.BalanceDrift {
		out.BalanceDrift = append(out.BalanceDrift, dto.BalanceDriftDTO{
			ItemID: d.ItemID, LocationID: d.LocationID, Stored: d.Stored, Computed: d.Computed,
		})
	}
	return out
}
