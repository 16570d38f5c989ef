package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentRequest abono a una deuda o a las deudas de un cliente.
type PaymentRequest struct {
	Monto      decimal.Decimal `json:"monto"`
	Metodo     string          `json:"metodo_pago" validate:"required,max=50"`
	Referencia string          `json:"referencia" validate:"omitempty,max=100"`
}

// PaymentResponse estado de la deuda tras un abono.
type PaymentResponse struct {
	DeudaID     int64           `json:"id_deuda"`
	Abonado     decimal.Decimal `json:"abonado"`
	MontoPagado decimal.Decimal `json:"monto_pagado"`
	Saldo       decimal.Decimal `json:"saldo"`
	Pagado      bool            `json:"pagado"`
}

// PaymentHistoryQuery filtros de GET /debts/history. Fechas en formato YYYY-MM-DD.
type PaymentHistoryQuery struct {
	ClienteID int64  `query:"client" validate:"min=0"`
	Desde     string `query:"from" validate:"omitempty,datetime=2006-01-02"`
	Hasta     string `query:"to" validate:"omitempty,datetime=2006-01-02"`
	Limit     int    `query:"limit" validate:"omitempty,min=1,max=1000"`
}

// DebtResponse deuda con folio y cliente.
type DebtResponse struct {
	ID             int64           `json:"id_deuda"`
	ClienteID      int64           `json:"id_cliente"`
	NombreCliente  string          `json:"nombre_cliente"`
	FacturaID      int64           `json:"id_factura"`
	Folio          int64           `json:"folio"`
	Monto          decimal.Decimal `json:"monto"`
	MontoPagado    decimal.Decimal `json:"monto_pagado"`
	Saldo          decimal.Decimal `json:"saldo"`
	Pagado         bool            `json:"pagado"`
	FechaGenerada  time.Time       `json:"fecha_generada"`
	FechaPago      *time.Time      `json:"fecha_pago,omitempty"`
	MetodoPago     string          `json:"metodo_pago,omitempty"`
	ReferenciaPago string          `json:"referencia_pago,omitempty"`
	Pagos          []PaymentEvent  `json:"pagos,omitempty"`
}

// PaymentEvent abono leído de la bitácora de la deuda.
type PaymentEvent struct {
	Monto      decimal.Decimal `json:"monto"`
	Metodo     string          `json:"metodo_pago"`
	Referencia string          `json:"referencia,omitempty"`
	Operador   string          `json:"operador"`
	Fecha      time.Time       `json:"fecha"`
}

// ClientBalanceResponse estado de cuenta de un cliente con deuda.
type ClientBalanceResponse struct {
	ClienteID       int64           `json:"id_cliente"`
	NombreCliente   string          `json:"nombre_cliente"`
	Telefono        string          `json:"telefono"`
	DeudasAbiertas  int             `json:"deudas_abiertas"`
	TotalDeuda      decimal.Decimal `json:"total_deuda"`
	TotalPagado     decimal.Decimal `json:"total_pagado"`
	SaldoPendiente  decimal.Decimal `json:"saldo_pendiente"`
	DeudaMasAntigua *time.Time      `json:"deuda_mas_antigua,omitempty"`
}

// PaymentHistoryResponse deuda con los abonos del rango consultado.
type PaymentHistoryResponse struct {
	DeudaID       int64           `json:"id_deuda"`
	ClienteID     int64           `json:"id_cliente"`
	NombreCliente string          `json:"nombre_cliente"`
	Folio         int64           `json:"folio"`
	Monto         decimal.Decimal `json:"monto"`
	MontoPagado   decimal.Decimal `json:"monto_pagado"`
	Pagado        bool            `json:"pagado"`
	FechaPago     *time.Time      `json:"fecha_pago,omitempty"`
	Pagos         []PaymentEvent  `json:"pagos"`
}

// DebtStatsResponse agregados de cobranza.
type DebtStatsResponse struct {
	TotalPendiente   decimal.Decimal `json:"total_pendiente"`
	TotalCobrado     decimal.Decimal `json:"total_cobrado"`
	ClientesConDeuda int             `json:"clientes_con_deuda"`
	DeudasAbiertas   int             `json:"deudas_abiertas"`
	DeudasPagadas    int             `json:"deudas_pagadas"`
	DeudaPromedio    decimal.Decimal `json:"deuda_promedio"`
}
