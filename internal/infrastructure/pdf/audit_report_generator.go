// Package pdf implementa la representación imprimible del informe de auditoría
// de conciliación, pensada para revisión y archivo por el operador.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título + fecha de generación │ Puntaje de salud     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESUMEN: coincidentes / discrepantes por categoría          │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLAS: saldos huérfanos, deriva, movimientos rotos,        │
//	│          piezas inconsistentes, artículos nunca sembrados    │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	appledger "github.com/fieldops/stock-ledger-api/internal/application/ledger"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorAlert   = &props.Color{Red: 170, Green: 40, Blue: 40}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoReportGenerator implementa ledger.AuditPDFGenerator usando Maroto v2.
type MarotoReportGenerator struct{}

// NewMarotoReportGenerator construye el generador.
func NewMarotoReportGenerator() *MarotoReportGenerator { return &MarotoReportGenerator{} }

// GenerateAuditPDF genera el PDF del informe y devuelve sus bytes.
func (g *MarotoReportGenerator) GenerateAuditPDF(_ context.Context, report *appledger.AuditReport) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Auditoría de Conciliación de Inventario", true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(report))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(summaryRow(report))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(sectionRows("SALDOS HUÉRFANOS",
		[]string{"Artículo", "Ubicación", "Cantidad", "Falta"},
		[]int{3, 4, 2, 3},
		orphanCells(report))...)
	m.AddRows(sectionRows("DERIVA DE SALDOS (almacenado vs. recalculado)",
		[]string{"Artículo", "Ubicación", "Almacenado", "Recalculado"},
		[]int{3, 4, 2, 3},
		driftCells(report))...)
	m.AddRows(sectionRows("MOVIMIENTOS CON REFERENCIAS ROTAS",
		[]string{"Movimiento", "Artículo", "Referencia rota"},
		[]int{5, 3, 4},
		brokenCells(report))...)
	m.AddRows(sectionRows("PIEZAS INCONSISTENTES",
		[]string{"Pieza", "Estado", "Ubicación", "Detalle"},
		[]int{3, 2, 3, 4},
		mismatchCells(report))...)
	m.AddRows(sectionRows("ARTÍCULOS RASTREABLES NUNCA SEMBRADOS",
		[]string{"Artículo", "Nombre", "SKU"},
		[]int{3, 6, 3},
		neverStockedCells(report))...)

	m.AddRows(line.NewRow(3))
	m.AddRows(row.New(8).Add(col.New(12).Add(
		text.New(
			"Informe consultivo: ninguna discrepancia se corrige automáticamente. "+
				"La remediación la ejecuta y revisa un operador.",
			props.Text{Size: 6.5, Color: colorGray, Top: 2},
		),
	)))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar informe: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: título + fecha (izq) y puntaje de salud (der).
func headerRow(report *appledger.AuditReport) core.Row {
	scoreColor := colorPrimary
	if report.Discrepant > 0 {
		scoreColor = colorAlert
	}
	return row.New(18).Add(
		col.New(7).Add(
			text.New("AUDITORÍA DE CONCILIACIÓN", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Generado: "+report.GeneratedAt.Format("02/01/2006 15:04 MST"), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("PUNTAJE DE SALUD", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("%.1f%%", report.HealthScore()*100), props.Text{
				Style: fontstyle.Bold, Size: 14, Align: align.Right,
				Color: scoreColor, Top: 7,
			}),
		),
	)
}

// summaryRow: totales de verificación.
func summaryRow(report *appledger.AuditReport) core.Row {
	return row.New(12).Add(
		col.New(12).Add(
			text.New("RESUMEN", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf(
				"Verificaciones coincidentes: %d   |   Discrepancias: %d   |   "+
					"Huérfanos: %d   Deriva: %d   Mov. rotos: %d   Piezas: %d   Sin siembra: %d",
				report.Matched, report.Discrepant,
				len(report.OrphanedBalances), len(report.BalanceDrift),
				len(report.BrokenMovements), len(report.Mismatches), len(report.NeverStocked),
			), props.Text{Size: 8, Top: 7, Color: colorGray}),
		),
	)
}

// sectionRows arma el título, la cabecera y las filas de una tabla de hallazgos.
// Con cero hallazgos emite una sola línea "sin hallazgos".
func sectionRows(title string, headers []string, widths []int, cells [][]string) []core.Row {
	rows := []core.Row{
		row.New(8).Add(col.New(12).Add(
			text.New(title, props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 2,
			}),
		)),
	}
	if len(cells) == 0 {
		rows = append(rows, row.New(5).Add(col.New(12).Add(
			text.New("Sin hallazgos.", props.Text{Size: 8, Color: colorGray, Left: 2, Top: 1}),
		)))
		return rows
	}

	headerCols := make([]core.Col, 0, len(headers))
	for i, h := range headers {
		headerCols = append(headerCols, col.New(widths[i]).Add(
			text.New(h, props.Text{Style: fontstyle.Bold, Size: 7.5, Top: 1, Left: 1}),
		))
	}
	rows = append(rows, row.New(6).Add(headerCols...))

	for _, cellRow := range cells {
		cols := make([]core.Col, 0, len(cellRow))
		for i, c := range cellRow {
			cols = append(cols, col.New(widths[i]).Add(
				text.New(c, props.Text{Size: 7.5, Top: 1, Left: 1, Color: colorGray}),
			))
		}
		rows = append(rows, row.New(5).Add(cols...))
	}
	return rows
}

// ── Celdas por categoría ──────────────────────────────────────────────────────

func orphanCells(report *appledger.AuditReport) [][]string {
	cells := make([][]string, 0, len(report.OrphanedBalances))
	for _, o := range report.OrphanedBalances {
		cells = append(cells, []string{o.ItemID, o.LocationID, o.Quantity.String(), o.Missing})
	}
	return cells
}

func driftCells(report *appledger.AuditReport) [][]string {
	cells := make([][]string, 0, len(report.BalanceDrift))
	for _, d := range report.BalanceDrift {
		cells = append(cells, []string{d.ItemID, d.LocationID, d.Stored.String(), d.Computed.String()})
	}
	return cells
}

func brokenCells(report *appledger.AuditReport) [][]string {
	cells := make([][]string, 0, len(report.BrokenMovements))
	for _, b := range report.BrokenMovements {
		cells = append(cells, []string{b.MovementID, b.ItemID, b.Missing})
	}
	return cells
}

func mismatchCells(report *appledger.AuditReport) [][]string {
	cells := make([][]string, 0, len(report.Mismatches))
	for _, m := range report.Mismatches {
		cells = append(cells, []string{m.PartID, m.Status, m.LocationID, m.Detail})
	}
	return cells
}

func neverStockedCells(report *appledger.AuditReport) [][]string {
	cells := make([][]string, 0, len(report.NeverStocked))
	for _, it := range report.NeverStocked {
		cells = append(cells, []string{it.ID, it.Name, it.SKU})
	}
	return cells
}
