package entity_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/disfruleg/disfruleg-api/internal/domain/entity"
)

func TestPaymentEvent_Line(t *testing.T) {
	ts := time.Date(2026, 3, 4, 9, 30, 0, 0, time.UTC)
	e := entity.PaymentEvent{Monto: decimal.NewFromInt(10), Metodo: "Efectivo", Operador: "caja1", Fecha: ts}
	assert.Equal(t, "Pago: 10.00 via Efectivo Operador:caja1 Fecha:2026-03-04 09:30:00", e.Line())

	e.Referencia = "TRF-991"
	assert.Equal(t, "Pago: 10.00 via Efectivo Ref:TRF-991 Operador:caja1 Fecha:2026-03-04 09:30:00", e.Line())
}

func TestParsePaymentLog_IdaYVuelta(t *testing.T) {
	ts := time.Date(2026, 3, 4, 9, 30, 0, 0, time.UTC)
	desc := "Deuda generada por factura 7"
	desc = entity.AppendPaymentLine(desc, entity.PaymentEvent{Monto: decimal.NewFromInt(10), Metodo: "Efectivo", Operador: "caja1", Fecha: ts})
	desc = entity.AppendPaymentLine(desc, entity.PaymentEvent{Monto: decimal.RequireFromString("20.5"), Metodo: "Transferencia bancaria", Referencia: "ABC 12", Operador: "admin", Fecha: ts.Add(time.Hour)})

	events := entity.ParsePaymentLog(desc, time.UTC)
	require.Len(t, events, 2)
	assert.Equal(t, "10.00", events[0].Monto.StringFixed(2))
	assert.Equal(t, "Efectivo", events[0].Metodo)
	assert.Equal(t, "", events[0].Referencia)
	assert.Equal(t, "Transferencia bancaria", events[1].Metodo)
	assert.Equal(t, "ABC 12", events[1].Referencia)
	assert.Equal(t, "admin", events[1].Operador)
	assert.True(t, events[1].Fecha.Equal(ts.Add(time.Hour)))
}

func TestDeuda_Saldo(t *testing.T) {
	d := entity.Deuda{Monto: decimal.NewFromInt(30), MontoPagado: decimal.NewFromInt(10)}
	assert.Equal(t, "20", d.Saldo().String())
}
