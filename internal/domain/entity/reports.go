package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Filas de las vistas de reportes (vista_estado_cuenta_cliente, vista_deudas_detalladas,
// vista_historial_pagos). El núcleo solo las lee.

// EstadoCuentaCliente resumen por cliente con deuda.
type EstadoCuentaCliente struct {
	ClienteID       int64
	NombreCliente   string
	Telefono        string
	DeudasAbiertas  int
	TotalDeuda      decimal.Decimal
	TotalPagado     decimal.Decimal
	SaldoPendiente  decimal.Decimal
	DeudaMasAntigua *time.Time
}

// DeudaDetallada deuda con folio y cliente.
type DeudaDetallada struct {
	Deuda
	Folio         int64
	NombreCliente string
	FechaFactura  time.Time
	Saldo         decimal.Decimal
}

// PagoHistorial deuda que ha recibido al menos un pago. Eventos son los abonos
// leídos de Descripcion dentro del rango consultado.
type PagoHistorial struct {
	DeudaID        int64
	ClienteID      int64
	NombreCliente  string
	FacturaID      int64
	Folio          int64
	Monto          decimal.Decimal
	MontoPagado    decimal.Decimal
	Pagado         bool
	FechaPago      *time.Time
	MetodoPago     string
	ReferenciaPago string
	Descripcion    string
	Eventos        []PaymentEvent
}

// FiltroHistorialPagos filtro de payment_history; campos cero no filtran.
type FiltroHistorialPagos struct {
	ClienteID int64
	Desde     *time.Time
	Hasta     *time.Time
	Limit     int
}

// EstadisticasDeuda agregados del libro de deudas.
type EstadisticasDeuda struct {
	TotalPendiente   decimal.Decimal
	TotalCobrado     decimal.Decimal
	ClientesConDeuda int
	DeudasAbiertas   int
	DeudasPagadas    int
	DeudaPromedio    decimal.Decimal
}
