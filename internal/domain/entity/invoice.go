package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Factura cabecera inmutable de una venta. Folio enlaza con la orden guardada que la originó.
type Factura struct {
	ID        int64
	Folio     int64
	Fecha     time.Time
	ClienteID int64
}

// SeccionFactura agrupación opcional de líneas dentro de una factura.
type SeccionFactura struct {
	ID        int64
	FacturaID int64
	Nombre    string
	Orden     int
}

// FacturaMetadata indica si la factura se capturó con secciones.
type FacturaMetadata struct {
	FacturaID    int64
	UsaSecciones bool
}

// FacturaCompleta factura con sus líneas, secciones, cliente y deuda (recibo PDF).
type FacturaCompleta struct {
	Factura
	NombreCliente string
	UsaSecciones  bool
	Secciones     []SeccionFactura
	Detalles      []DetalleFactura
	Deuda         *Deuda
}

// Total suma exacta de cantidad × precio de todas las líneas, redondeada una sola vez.
func (f *FacturaCompleta) Total() decimal.Decimal {
	total := decimal.Zero
	for _, d := range f.Detalles {
		total = total.Add(d.Subtotal())
	}
	return total.Round(2)
}
