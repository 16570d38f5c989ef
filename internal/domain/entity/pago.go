package entity

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentTimeLayout formato de fecha en la bitácora de pagos.
const PaymentTimeLayout = "2006-01-02 15:04:05"

// PaymentEvent un abono registrado en Deuda.Descripcion. No tiene fila propia.
type PaymentEvent struct {
	Monto      decimal.Decimal
	Metodo     string
	Referencia string
	Operador   string
	Fecha      time.Time
}

// Line renderiza el evento como línea de bitácora:
// "Pago: <monto> via <método>[ Ref:<ref>] Operador:<usuario> Fecha:<ts>".
func (e PaymentEvent) Line() string {
	var b strings.Builder
	b.WriteString("Pago: ")
	b.WriteString(e.Monto.StringFixed(2))
	b.WriteString(" via ")
	b.WriteString(e.Metodo)
	if e.Referencia != "" {
		b.WriteString(" Ref:")
		b.WriteString(e.Referencia)
	}
	b.WriteString(" Operador:")
	b.WriteString(e.Operador)
	b.WriteString(" Fecha:")
	b.WriteString(e.Fecha.Format(PaymentTimeLayout))
	return b.String()
}

// AppendPaymentLine agrega la línea al final de la descripción existente.
func AppendPaymentLine(descripcion string, e PaymentEvent) string {
	if strings.TrimSpace(descripcion) == "" {
		return e.Line()
	}
	return strings.TrimRight(descripcion, "\n") + "\n" + e.Line()
}

var paymentLineRe = regexp.MustCompile(`^Pago: (\S+) via (.+?)(?: Ref:(.+?))? Operador:(.*?) Fecha:(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2})$`)

// ParsePaymentLog recupera los abonos de una descripción. Ignora líneas que no son pagos
// (notas manuales, la línea de generación de la deuda).
func ParsePaymentLog(descripcion string, loc *time.Location) []PaymentEvent {
	if loc == nil {
		loc = time.Local
	}
	var out []PaymentEvent
	for _, line := range strings.Split(descripcion, "\n") {
		m := paymentLineRe.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		monto, err := decimal.NewFromString(m[1])
		if err != nil {
			continue
		}
		fecha, err := time.ParseInLocation(PaymentTimeLayout, m[5], loc)
		if err != nil {
			continue
		}
		out = append(out, PaymentEvent{
			Monto:      monto,
			Metodo:     m[2],
			Referencia: m[3],
			Operador:   m[4],
			Fecha:      fecha,
		})
	}
	return out
}
