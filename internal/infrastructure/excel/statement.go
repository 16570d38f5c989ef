// Package excel exporta el estado de cuenta de un cliente a una hoja de cálculo.
package excel

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/disfruleg/disfruleg-api/internal/application/reports"
)

const (
	sheetDebts    = "Deudas"
	sheetPayments = "Pagos"
	dateLayout    = "2006-01-02"
)

// StatementExporter implementa reports.StatementRenderer con excelize.
type StatementExporter struct{}

func NewStatementExporter() *StatementExporter { return &StatementExporter{} }

// RenderStatement dos hojas: deudas del cliente con su saldo y abonos registrados.
func (e *StatementExporter) RenderStatement(_ context.Context, data reports.StatementData) ([]byte, error) {
	if data.Cliente == nil {
		return nil, fmt.Errorf("excel: cliente requerido")
	}
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheetDebts); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(sheetPayments); err != nil {
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return nil, err
	}

	// Encabezado
	set(f, sheetDebts, "A1", data.Empresa.Nombre)
	set(f, sheetDebts, "A2", "Estado de cuenta de "+data.Cliente.Nombre)
	set(f, sheetDebts, "A3", "Generado: "+data.Generado.Format("2006-01-02 15:04"))
	_ = f.SetCellStyle(sheetDebts, "A1", "A2", bold)

	headers := []string{"Folio", "Fecha", "Monto", "Pagado", "Saldo", "Estado", "Fecha de pago", "Método"}
	writeHeaders(f, sheetDebts, 5, headers)
	_ = f.SetCellStyle(sheetDebts, "A5", cell(len(headers), 5), bold)

	r := 6
	var total, pagado, saldo float64
	for _, d := range data.Deudas {
		estado := "Pendiente"
		fechaPago := ""
		if d.Pagado {
			estado = "Pagada"
		}
		if d.FechaPago != nil {
			fechaPago = d.FechaPago.Format(dateLayout)
		}
		m, _ := d.Monto.Float64()
		p, _ := d.MontoPagado.Float64()
		s, _ := d.Saldo.Float64()
		total += m
		pagado += p
		saldo += s
		writeRow(f, sheetDebts, r, d.Folio, d.FechaGenerada.Format(dateLayout), m, p, s, estado, fechaPago, d.MetodoPago)
		r++
	}
	if r > 6 {
		_ = f.SetCellStyle(sheetDebts, "C6", cell(5, r-1), money)
	}
	writeRow(f, sheetDebts, r, "TOTAL", "", total, pagado, saldo)
	_ = f.SetCellStyle(sheetDebts, cell(1, r), cell(5, r), bold)
	_ = f.SetColWidth(sheetDebts, "A", "H", 16)

	payHeaders := []string{"Folio", "Fecha", "Monto", "Método", "Referencia", "Operador"}
	writeHeaders(f, sheetPayments, 1, payHeaders)
	_ = f.SetCellStyle(sheetPayments, "A1", cell(len(payHeaders), 1), bold)
	r = 2
	for _, h := range data.Pagos {
		for _, ev := range h.Eventos {
			m, _ := ev.Monto.Float64()
			writeRow(f, sheetPayments, r, h.Folio, ev.Fecha.Format("2006-01-02 15:04"), m, ev.Metodo, ev.Referencia, ev.Operador)
			r++
		}
	}
	if r > 2 {
		_ = f.SetCellStyle(sheetPayments, "C2", cell(3, r-1), money)
	}
	_ = f.SetColWidth(sheetPayments, "A", "F", 18)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("excel: escribir libro: %w", err)
	}
	return buf.Bytes(), nil
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func set(f *excelize.File, sheet, axis string, v any) {
	_ = f.SetCellValue(sheet, axis, v)
}

func writeHeaders(f *excelize.File, sheet string, row int, headers []string) {
	for i, h := range headers {
		set(f, sheet, cell(i+1, row), h)
	}
}

func writeRow(f *excelize.File, sheet string, row int, values ...any) {
	for i, v := range values {
		set(f, sheet, cell(i+1, row), v)
	}
}
