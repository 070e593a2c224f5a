// Package pdf genera la tarjeta de stock (kardex) de un producto.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Producto          │  TARJETA DE STOCK + Fecha      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESUMEN: Inicial / Actual / Umbral / Estado                 │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Fecha | Tipo | Cambio | Saldo | Usuario | Notas      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: Conciliación + QR del producto                      │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strconv"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
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

	"github.com/jhoicas/storefront-inventory/internal/application/inventory"
	"github.com/jhoicas/storefront-inventory/internal/domain/entity"
	"github.com/jhoicas/storefront-inventory/internal/domain/ledger"
)

var _ inventory.StockReportGenerator = (*MarotoStockCardGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorAlert   = &props.Color{Red: 180, Green: 30, Blue: 30}
)

var kindLabels = map[string]string{
	entity.LedgerKindRestock:    "Reposición",
	entity.LedgerKindPurchase:   "Compra",
	entity.LedgerKindAdjustment: "Ajuste",
}

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoStockCardGenerator implementa inventory.StockReportGenerator usando Maroto v2.
type MarotoStockCardGenerator struct {
	now func() time.Time
}

// NewMarotoStockCardGenerator construye el generador.
func NewMarotoStockCardGenerator() *MarotoStockCardGenerator {
	return &MarotoStockCardGenerator{now: time.Now}
}

// GenerateStockCard genera el PDF y devuelve sus bytes. entries va del más antiguo al más reciente.
func (g *MarotoStockCardGenerator) GenerateStockCard(
	_ context.Context,
	stock *entity.StockRecord,
	entries []*entity.LedgerEntry,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Tarjeta de stock "+stock.ProductID, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(stock, g.now()))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(summaryRow(stock))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(tableEntryRows(stock.InitialQuantity, entries)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(footerRow(stock, entries))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(stock *entity.StockRecord, now time.Time) core.Row {
	return row.New(16).Add(
		col.New(7).Add(
			text.New("Producto", props.Text{Size: 8, Top: 1, Color: colorGray}),
			text.New(stock.ProductID, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 6,
			}),
		),
		col.New(5).Add(
			text.New("TARJETA DE STOCK", props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New("Generada: "+now.UTC().Format("02/01/2006 15:04 MST"), props.Text{
				Size: 8, Align: align.Right, Top: 8, Color: colorGray,
			}),
		),
	)
}

func summaryRow(stock *entity.StockRecord) core.Row {
	status, statusColor := "En stock", colorPrimary
	if ledger.StatusOf(stock) == ledger.StatusLowStock {
		status, statusColor = "Bajo stock", colorAlert
	}
	cell := func(label, value string, c *props.Color) core.Col {
		return col.New(3).Add(
			text.New(label, props.Text{Size: 7, Top: 1, Color: colorGray, Align: align.Center}),
			text.New(value, props.Text{Style: fontstyle.Bold, Size: 11, Top: 5, Color: c, Align: align.Center}),
		)
	}
	return row.New(13).Add(
		cell("Cantidad inicial", formatQty(stock.InitialQuantity), colorPrimary),
		cell("Cantidad actual", formatQty(stock.Quantity), colorPrimary),
		cell("Umbral bajo stock", formatQty(stock.LowStockThreshold), colorPrimary),
		cell("Estado", status, statusColor),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Fecha", 2, align.Left),
		h("Tipo", 2, align.Left),
		h("Cambio", 1, align.Right),
		h("Saldo", 1, align.Right),
		h("Usuario", 2, align.Left),
		h("Notas", 4, align.Left),
	)
}

// tableEntryRows una fila por entrada con el saldo acumulado desde la cantidad inicial.
func tableEntryRows(initial int, entries []*entity.LedgerEntry) []core.Row {
	if len(entries) == 0 {
		return []core.Row{row.New(8).Add(col.New(12).Add(
			text.New("Sin movimientos registrados", props.Text{Size: 8, Top: 2, Align: align.Center, Color: colorGray}),
		))}
	}
	balance := initial
	rows := make([]core.Row, 0, len(entries))
	for _, e := range entries {
		balance += e.QuantityChange
		rows = append(rows, row.New(6).Add(
			col.New(2).Add(text.New(e.CreatedAt.UTC().Format("02/01/2006 15:04"), props.Text{Size: 7.5, Top: 1, Left: 1})),
			col.New(2).Add(text.New(nonEmpty(kindLabels[e.Kind], e.Kind), props.Text{Size: 7.5, Top: 1, Left: 1})),
			col.New(1).Add(text.New(formatChange(e.QuantityChange), props.Text{Size: 7.5, Top: 1, Align: align.Right, Right: 1})),
			col.New(1).Add(text.New(formatQty(balance), props.Text{Style: fontstyle.Bold, Size: 7.5, Top: 1, Align: align.Right, Right: 1})),
			col.New(2).Add(text.New(nonEmpty(e.CreatedBy, "-"), props.Text{Size: 7, Top: 1, Left: 1, Color: colorGray})),
			col.New(4).Add(text.New(nonEmpty(e.Notes, "-"), props.Text{Size: 7, Top: 1, Left: 1, Color: colorGray})),
		))
	}
	return rows
}

func footerRow(stock *entity.StockRecord, entries []*entity.LedgerEntry) core.Row {
	sum := 0
	for _, e := range entries {
		sum += e.QuantityChange
	}
	rec := ledger.Reconcile(stock, sum)
	msg, c := "Conciliado: la suma del ledger coincide con el contador.", colorGray
	if !rec.Consistent {
		msg = fmt.Sprintf("DESCUADRE: ledger %s, contador - inicial %s.",
			formatChange(rec.LedgerSum), formatChange(rec.Quantity-rec.InitialQuantity))
		c = colorAlert
	}
	return row.New(30).Add(
		col.New(9).Add(
			text.New(fmt.Sprintf("Movimientos: %d", len(entries)), props.Text{Size: 8, Top: 3}),
			text.New(msg, props.Text{Style: fontstyle.Bold, Size: 8, Top: 9, Color: c}),
		),
		col.New(3).Add(code.NewQr(stock.ProductID, props.Rect{Percent: 90, Center: true})),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatQty inserta puntos de miles. Ej: 25000 → "25.000", -1500 → "-1.500".
func formatQty(n int) string {
	s := strconv.Itoa(n)
	sign := ""
	if n < 0 {
		sign, s = "-", s[1:]
	}
	l := len(s)
	if l <= 3 {
		return sign + s
	}
	buf := make([]byte, 0, l+l/3)
	for i, c := range []byte(s) {
		if i > 0 && (l-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return sign + string(buf)
}

func formatChange(n int) string {
	if n > 0 {
		return "+" + formatQty(n)
	}
	return formatQty(n)
}
