package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Deuda cuenta por cobrar generada por una factura.
// Invariantes: 0 ≤ MontoPagado ≤ Monto; Pagado ⇔ Monto − MontoPagado ≤ 0.01.
type Deuda struct {
	ID             int64
	ClienteID      int64
	FacturaID      int64
	Monto          decimal.Decimal
	MontoPagado    decimal.Decimal
	Pagado         bool
	FechaGenerada  time.Time
	FechaPago      *time.Time
	MetodoPago     string
	ReferenciaPago string
	Descripcion    string
}

// Saldo monto pendiente.
func (d *Deuda) Saldo() decimal.Decimal {
	return d.Monto.Sub(d.MontoPagado)
}
