package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/disfruleg/disfruleg-api/internal/domain/entity"
	"github.com/disfruleg/disfruleg-api/internal/domain/repository"
)

var _ repository.DebtRepository = (*DebtRepo)(nil)

// DebtRepo implementación de DebtRepository (usable con pool o tx). Las lecturas de cobranza
// salen de las vistas vista_estado_cuenta_cliente, vista_deudas_detalladas y vista_historial_pagos.
type DebtRepo struct {
	q Querier
}

// NewDebtRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDebtRepository(q Querier) *DebtRepo {
	return &DebtRepo{q: q}
}

const deudaColumns = `id_deuda, id_cliente, id_factura, monto, monto_pagado, pagado, fecha_generada,
	fecha_pago, metodo_pago, referencia_pago, descripcion`

func scanDeuda(row pgx.Row) (*entity.Deuda, error) {
	var d entity.Deuda
	var metodo, ref *string
	if err := row.Scan(&d.ID, &d.ClienteID, &d.FacturaID, &d.Monto, &d.MontoPagado, &d.Pagado,
		&d.FechaGenerada, &d.FechaPago, &metodo, &ref, &d.Descripcion); err != nil {
		return nil, err
	}
	d.MetodoPago = derefString(metodo)
	d.ReferenciaPago = derefString(ref)
	return &d, nil
}

// Create inserta la deuda generada por una factura.
func (r *DebtRepo) Create(ctx context.Context, d *entity.Deuda) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO deuda (id_cliente, id_factura, monto, monto_pagado, pagado, fecha_generada, descripcion)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id_deuda`,
		d.ClienteID, d.FacturaID, d.Monto, d.MontoPagado, d.Pagado, d.FechaGenerada, d.Descripcion,
	).Scan(&d.ID)
	if err != nil {
		return mapError("insert deuda", err)
	}
	return nil
}

// GetByID obtiene una deuda por ID.
func (r *DebtRepo) GetByID(ctx context.Context, id int64) (*entity.Deuda, error) {
	d, err := scanDeuda(r.q.QueryRow(ctx, `SELECT `+deudaColumns+` FROM deuda WHERE id_deuda = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("get deuda", err)
	}
	return d, nil
}

// GetForUpdate lee la deuda con FOR UPDATE; los pagos concurrentes sobre la misma deuda se serializan.
func (r *DebtRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Deuda, error) {
	d, err := scanDeuda(r.q.QueryRow(ctx, `SELECT `+deudaColumns+` FROM deuda WHERE id_deuda = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("lock deuda", err)
	}
	return d, nil
}

// OpenByClientForUpdate bloquea las deudas abiertas del cliente, la más antigua primero.
func (r *DebtRepo) OpenByClientForUpdate(ctx context.Context, clientID int64) ([]*entity.Deuda, error) {
	rows, err := r.q.Query(ctx, `SELECT `+deudaColumns+` FROM deuda
		WHERE id_cliente = $1 AND NOT pagado
		ORDER BY fecha_generada, id_deuda
		FOR UPDATE`, clientID)
	if err != nil {
		return nil, mapError("lock deudas de cliente", err)
	}
	defer rows.Close()
	var list []*entity.Deuda
	for rows.Next() {
		d, err := scanDeuda(rows)
		if err != nil {
			return nil, fmt.Errorf("scan deuda: %w", err)
		}
		list = append(list, d)
	}
	return list, mapError("lock deudas de cliente", rows.Err())
}

// ApplyPayment escribe el nuevo estado de pago de la deuda.
func (r *DebtRepo) ApplyPayment(ctx context.Context, d *entity.Deuda) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE deuda
		SET monto_pagado = $2, pagado = $3, fecha_pago = $4, metodo_pago = $5,
		    referencia_pago = $6, descripcion = $7
		WHERE id_deuda = $1`,
		d.ID, d.MontoPagado, d.Pagado, d.FechaPago, nullIfEmpty(d.MetodoPago),
		nullIfEmpty(d.ReferenciaPago), d.Descripcion,
	)
	if err != nil {
		return mapError("update deuda", err)
	}
	if cmd.RowsAffected() != 1 {
		return fmt.Errorf("update deuda %d: fila no encontrada", d.ID)
	}
	return nil
}

// ClientsWithDebt clientes con saldo pendiente, mayor saldo primero.
func (r *DebtRepo) ClientsWithDebt(ctx context.Context) ([]*entity.EstadoCuentaCliente, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id_cliente, nombre_cliente, telefono, deudas_abiertas, total_deuda, total_pagado,
		       saldo_pendiente, deuda_mas_antigua
		FROM vista_estado_cuenta_cliente
		ORDER BY saldo_pendiente DESC, nombre_cliente`)
	if err != nil {
		return nil, mapError("list clientes con deuda", err)
	}
	defer rows.Close()
	var list []*entity.EstadoCuentaCliente
	for rows.Next() {
		var e entity.EstadoCuentaCliente
		if err := rows.Scan(&e.ClienteID, &e.NombreCliente, &e.Telefono, &e.DeudasAbiertas, &e.TotalDeuda,
			&e.TotalPagado, &e.SaldoPendiente, &e.DeudaMasAntigua); err != nil {
			return nil, fmt.Errorf("scan estado de cuenta: %w", err)
		}
		list = append(list, &e)
	}
	return list, mapError("list clientes con deuda", rows.Err())
}

const deudaDetalladaSelect = `
	SELECT id_deuda, id_cliente, id_factura, monto, monto_pagado, pagado, fecha_generada,
	       fecha_pago, metodo_pago, referencia_pago, descripcion,
	       folio_numero, nombre_cliente, fecha_factura, saldo
	FROM vista_deudas_detalladas`

func scanDeudaDetallada(row pgx.Row) (*entity.DeudaDetallada, error) {
	var d entity.DeudaDetallada
	var metodo, ref *string
	if err := row.Scan(&d.ID, &d.ClienteID, &d.FacturaID, &d.Monto, &d.MontoPagado, &d.Pagado,
		&d.FechaGenerada, &d.FechaPago, &metodo, &ref, &d.Descripcion,
		&d.Folio, &d.NombreCliente, &d.FechaFactura, &d.Saldo); err != nil {
		return nil, err
	}
	d.MetodoPago = derefString(metodo)
	d.ReferenciaPago = derefString(ref)
	return &d, nil
}

// ClientDebts todas las deudas del cliente, la más antigua primero.
func (r *DebtRepo) ClientDebts(ctx context.Context, clientID int64) ([]*entity.DeudaDetallada, error) {
	rows, err := r.q.Query(ctx, deudaDetalladaSelect+`
		WHERE id_cliente = $1 ORDER BY fecha_generada, id_deuda`, clientID)
	if err != nil {
		return nil, mapError("list deudas de cliente", err)
	}
	defer rows.Close()
	var list []*entity.DeudaDetallada
	for rows.Next() {
		d, err := scanDeudaDetallada(rows)
		if err != nil {
			return nil, fmt.Errorf("scan deuda detallada: %w", err)
		}
		list = append(list, d)
	}
	return list, mapError("list deudas de cliente", rows.Err())
}

// Detailed una deuda con folio y cliente; nil, nil si no existe.
func (r *DebtRepo) Detailed(ctx context.Context, id int64) (*entity.DeudaDetallada, error) {
	d, err := scanDeudaDetallada(r.q.QueryRow(ctx, deudaDetalladaSelect+` WHERE id_deuda = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("get deuda detallada", err)
	}
	return d, nil
}

// PaymentHistory deudas con abonos, filtradas por cliente y por Hasta (una deuda generada después
// no puede tener abonos anteriores). El rango exacto por abono se aplica al leer la bitácora.
func (r *DebtRepo) PaymentHistory(ctx context.Context, f entity.FiltroHistorialPagos) ([]*entity.PagoHistorial, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id_deuda, id_cliente, nombre_cliente, id_factura, folio_numero, monto, monto_pagado,
		       pagado, fecha_pago, metodo_pago, referencia_pago, descripcion
		FROM vista_historial_pagos
		WHERE ($1::int = 0 OR id_cliente = $1)
		  AND ($2::date IS NULL OR fecha_generada <= $2)
		ORDER BY COALESCE(fecha_pago, fecha_generada) DESC, id_deuda DESC`,
		f.ClienteID, f.Hasta,
	)
	if err != nil {
		return nil, mapError("list historial de pagos", err)
	}
	defer rows.Close()
	var list []*entity.PagoHistorial
	for rows.Next() {
		var p entity.PagoHistorial
		if err := rows.Scan(&p.DeudaID, &p.ClienteID, &p.NombreCliente, &p.FacturaID, &p.Folio, &p.Monto,
			&p.MontoPagado, &p.Pagado, &p.FechaPago, &p.MetodoPago, &p.ReferenciaPago, &p.Descripcion); err != nil {
			return nil, fmt.Errorf("scan historial: %w", err)
		}
		list = append(list, &p)
	}
	return list, mapError("list historial de pagos", rows.Err())
}

// Stats agregados de cobranza.
func (r *DebtRepo) Stats(ctx context.Context) (*entity.EstadisticasDeuda, error) {
	var s entity.EstadisticasDeuda
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(saldo) FILTER (WHERE NOT pagado), 0),
		       COALESCE(SUM(monto_pagado), 0),
		       COUNT(DISTINCT id_cliente) FILTER (WHERE NOT pagado),
		       COUNT(*) FILTER (WHERE NOT pagado),
		       COUNT(*) FILTER (WHERE pagado),
		       COALESCE(ROUND(AVG(saldo) FILTER (WHERE NOT pagado), 2), 0)
		FROM vista_deudas_detalladas`,
	).Scan(&s.TotalPendiente, &s.TotalCobrado, &s.ClientesConDeuda, &s.DeudasAbiertas, &s.DeudasPagadas, &s.DeudaPromedio)
	if err != nil {
		return nil, mapError("estadisticas de deuda", err)
	}
	return &s, nil
}
