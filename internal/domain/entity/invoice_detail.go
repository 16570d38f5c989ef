package entity

import "github.com/shopspring/decimal"

// DetalleFactura línea de factura. PrecioUnitarioVenta se captura al confirmar y no se actualiza después.
type DetalleFactura struct {
	ID                  int64
	FacturaID           int64
	ProductoID          int64
	NombreProducto      string
	Unidad              string
	Cantidad            decimal.Decimal
	PrecioUnitarioVenta decimal.Decimal
	SeccionID           *int64
}

// Subtotal cantidad × precio exacto; el redondeo se aplica al total o al mostrarlo.
func (d DetalleFactura) Subtotal() decimal.Decimal {
	return d.Cantidad.Mul(d.PrecioUnitarioVenta)
}
