package repository

import (
	"context"

	"github.com/disfruleg/disfruleg-api/internal/domain/entity"
)

// DebtRepository puerto de deuda y de las vistas de cobranza.
type DebtRepository interface {
	// Create inserta la deuda y asigna d.ID.
	Create(ctx context.Context, d *entity.Deuda) error
	// GetByID nil, nil si no existe.
	GetByID(ctx context.Context, id int64) (*entity.Deuda, error)
	// GetForUpdate lee la deuda bloqueando la fila hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id int64) (*entity.Deuda, error)
	// OpenByClientForUpdate deudas sin pagar del cliente, de la más antigua a la más reciente, bloqueadas.
	OpenByClientForUpdate(ctx context.Context, clientID int64) ([]*entity.Deuda, error)
	// ApplyPayment escribe monto_pagado, pagado, fecha_pago, método, referencia y descripción.
	ApplyPayment(ctx context.Context, d *entity.Deuda) error

	ClientsWithDebt(ctx context.Context) ([]*entity.EstadoCuentaCliente, error)
	ClientDebts(ctx context.Context, clientID int64) ([]*entity.DeudaDetallada, error)
	Detailed(ctx context.Context, id int64) (*entity.DeudaDetallada, error)
	PaymentHistory(ctx context.Context, f entity.FiltroHistorialPagos) ([]*entity.PagoHistorial, error)
	Stats(ctx context.Context) (*entity.EstadisticasDeuda, error)
}
