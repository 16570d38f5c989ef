// Package pdf genera el recibo (nota de venta) de una factura confirmada.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Empresa + Teléfono  │  Folio + Fecha               │
//	│  CLIENTE                                                     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Cant | Producto | Unidad | P.Unit | Subtotal         │
//	│         (un título por sección cuando se capturó con ellas)  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTAL + estado de la deuda                                  │
//	│  FOOTER: QR con folio y total                                │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

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
	"github.com/shopspring/decimal"

	"github.com/disfruleg/disfruleg-api/internal/application/reports"
	"github.com/disfruleg/disfruleg-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 34, Green: 110, Blue: 52}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorRed     = &props.Color{Red: 170, Green: 30, Blue: 30}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoReceiptGenerator implementa reports.ReceiptRenderer usando Maroto v2.
type MarotoReceiptGenerator struct{}

// NewMarotoReceiptGenerator construye el generador.
func NewMarotoReceiptGenerator() *MarotoReceiptGenerator { return &MarotoReceiptGenerator{} }

// RenderReceipt genera el PDF y devuelve sus bytes.
func (g *MarotoReceiptGenerator) RenderReceipt(_ context.Context, data reports.ReceiptData) ([]byte, error) {
	f := data.Factura
	if f == nil {
		return nil, fmt.Errorf("pdf: factura requerida")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(fmt.Sprintf("Nota de venta %d", f.Folio), true).
		WithAuthor(data.Empresa.Nombre, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(data.Empresa, f))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(clientRow(f))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(detailRows(f)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(f))

	m.AddRows(line.NewRow(3))
	m.AddRows(footerRow(f))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: empresa (izq) y folio + fecha (der).
func headerRow(e reports.Empresa, f *entity.FacturaCompleta) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(nonEmpty(e.Nombre, "DISFRULEG"), props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Tel: "+nonEmpty(e.Telefono, "-"), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("NOTA DE VENTA", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("Folio %d", f.Folio), props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Fecha: "+f.Fecha.Format("02/01/2006"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

func clientRow(f *entity.FacturaCompleta) core.Row {
	return row.New(12).Add(
		col.New(12).Add(
			text.New("CLIENTE", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(f.NombreCliente, props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Cant.", 2, align.Center),
		h("Producto", 4, align.Left),
		h("Unidad", 1, align.Center),
		h("Precio Unit.", 2, align.Right),
		h("Subtotal", 3, align.Right),
	)
}

// detailRows líneas en orden; con secciones, agrupadas bajo el nombre de cada una.
func detailRows(f *entity.FacturaCompleta) []core.Row {
	if !f.UsaSecciones || len(f.Secciones) == 0 {
		return itemRows(f.Detalles)
	}
	var out []core.Row
	for _, s := range f.Secciones {
		var lines []entity.DetalleFactura
		subtotal := decimal.Zero
		for _, d := range f.Detalles {
			if d.SeccionID != nil && *d.SeccionID == s.ID {
				lines = append(lines, d)
				subtotal = subtotal.Add(d.Subtotal())
			}
		}
		if len(lines) == 0 {
			continue
		}
		out = append(out, row.New(7).Add(
			col.New(9).Add(text.New(strings.ToUpper(s.Nombre), props.Text{
				Style: fontstyle.Bold, Size: 8, Top: 2, Left: 1, Color: colorPrimary,
			})),
			col.New(3).Add(text.New(formatMoney(subtotal), props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Top: 2, Right: 1, Color: colorPrimary,
			})),
		))
		out = append(out, itemRows(lines)...)
	}
	return out
}

func itemRows(details []entity.DetalleFactura) []core.Row {
	result := make([]core.Row, 0, len(details))
	for _, d := range details {
		result = append(result, row.New(7).Add(
			col.New(2).Add(text.New(
				d.Cantidad.String(),
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(4).Add(text.New(
				d.NombreProducto,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(1).Add(text.New(
				d.Unidad,
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(2).Add(text.New(
				formatMoney(d.PrecioUnitarioVenta),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(3).Add(text.New(
				formatMoney(d.Subtotal()),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
		))
	}
	return result
}

// totalsRow total de la nota y situación de la deuda.
func totalsRow(f *entity.FacturaCompleta) core.Row {
	status, color := "Sin deuda registrada", colorGray
	if d := f.Deuda; d != nil {
		if d.Pagado {
			status, color = "PAGADO", colorPrimary
			if d.FechaPago != nil {
				status += " el " + d.FechaPago.Format("02/01/2006")
			}
		} else {
			status, color = "Saldo pendiente: "+formatMoney(d.Saldo()), colorRed
		}
	}
	return row.New(16).Add(
		col.New(6).Add(text.New(status, props.Text{
			Style: fontstyle.Bold, Size: 9, Color: color, Top: 2, Left: 1,
		})),
		col.New(3).Add(text.New("TOTAL:", props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Top: 2, Right: 2,
		})),
		col.New(3).Add(text.New(formatMoney(f.Total()), props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Top: 2, Right: 1,
		})),
	)
}

// footerRow QR para identificar la nota al cobrar.
func footerRow(f *entity.FacturaCompleta) core.Row {
	payload := fmt.Sprintf("DISFRULEG|folio=%d|factura=%d|total=%s", f.Folio, f.ID, f.Total().StringFixed(2))
	return row.New(35).Add(
		col.New(3).Add(code.NewQr(payload, props.Rect{Percent: 95, Center: true})),
		col.New(9).Add(
			text.New("Conserve esta nota para cualquier aclaración o abono.", props.Text{
				Size: 8, Top: 4, Left: 3, Color: colorGray,
			}),
			text.New(fmt.Sprintf("Folio %d", f.Folio), props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 14, Left: 3, Color: colorPrimary,
			}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatMoney "$" con comas de miles y 2 decimales. Ej: 1234.5 → "$1,234.50".
func formatMoney(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	s := d.StringFixed(2)
	intPart, frac := s[:len(s)-3], s[len(s)-3:]
	n := len(intPart)
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, ',')
		}
		buf = append(buf, c)
	}
	return sign + "$" + string(buf) + frac
}
