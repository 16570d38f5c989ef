package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/disfruleg/disfruleg-api/internal/domain/entity"
	"github.com/disfruleg/disfruleg-api/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementación de InvoiceRepository (usable con pool o tx).
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

// Create persiste la cabecera de la factura.
func (r *InvoiceRepo) Create(ctx context.Context, f *entity.Factura) error {
	var folio *int64
	if f.Folio > 0 {
		folio = &f.Folio
	}
	err := r.q.QueryRow(ctx, `
		INSERT INTO factura (folio_numero, fecha_factura, id_cliente)
		VALUES ($1, $2, $3)
		RETURNING id_factura`,
		folio, f.Fecha, f.ClienteID,
	).Scan(&f.ID)
	if err != nil {
		return mapError("insert factura", err)
	}
	return nil
}

// CreateSection persiste una sección de la factura.
func (r *InvoiceRepo) CreateSection(ctx context.Context, s *entity.SeccionFactura) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO seccion_factura (id_factura, nombre_seccion, orden_seccion)
		VALUES ($1, $2, $3)
		RETURNING id_seccion`,
		s.FacturaID, s.Nombre, s.Orden,
	).Scan(&s.ID)
	if err != nil {
		return mapError("insert seccion_factura", err)
	}
	return nil
}

// CreateDetail persiste una línea de detalle.
func (r *InvoiceRepo) CreateDetail(ctx context.Context, d *entity.DetalleFactura) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO detalle_factura (id_factura, id_producto, cantidad_factura, precio_unitario_venta, id_seccion)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id_detalle`,
		d.FacturaID, d.ProductoID, d.Cantidad, d.PrecioUnitarioVenta, d.SeccionID,
	).Scan(&d.ID)
	if err != nil {
		return mapError("insert detalle_factura", err)
	}
	return nil
}

// SetMetadata guarda si la factura usa secciones.
func (r *InvoiceRepo) SetMetadata(ctx context.Context, m entity.FacturaMetadata) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO factura_metadata (id_factura, usa_secciones) VALUES ($1, $2)
		ON CONFLICT (id_factura) DO UPDATE SET usa_secciones = EXCLUDED.usa_secciones`,
		m.FacturaID, m.UsaSecciones,
	)
	if err != nil {
		return mapError("upsert factura_metadata", err)
	}
	return nil
}

// GetCompleta devuelve la factura con cliente, secciones (en orden), líneas y deuda.
func (r *InvoiceRepo) GetCompleta(ctx context.Context, id int64) (*entity.FacturaCompleta, error) {
	var f entity.FacturaCompleta
	var folio *int64
	err := r.q.QueryRow(ctx, `
		SELECT f.id_factura, f.folio_numero, f.fecha_factura, f.id_cliente, c.nombre_cliente,
		       COALESCE(m.usa_secciones, FALSE)
		FROM factura f
		JOIN cliente c ON c.id_cliente = f.id_cliente
		LEFT JOIN factura_metadata m ON m.id_factura = f.id_factura
		WHERE f.id_factura = $1`, id,
	).Scan(&f.ID, &folio, &f.Fecha, &f.ClienteID, &f.NombreCliente, &f.UsaSecciones)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("get factura", err)
	}
	if folio != nil {
		f.Folio = *folio
	}

	secRows, err := r.q.Query(ctx, `
		SELECT id_seccion, id_factura, nombre_seccion, orden_seccion
		FROM seccion_factura WHERE id_factura = $1 ORDER BY orden_seccion, id_seccion`, id)
	if err != nil {
		return nil, mapError("list secciones", err)
	}
	for secRows.Next() {
		var s entity.SeccionFactura
		if err := secRows.Scan(&s.ID, &s.FacturaID, &s.Nombre, &s.Orden); err != nil {
			secRows.Close()
			return nil, fmt.Errorf("scan seccion: %w", err)
		}
		f.Secciones = append(f.Secciones, s)
	}
	secRows.Close()
	if err := secRows.Err(); err != nil {
		return nil, mapError("list secciones", err)
	}

	detRows, err := r.q.Query(ctx, `
		SELECT d.id_detalle, d.id_factura, d.id_producto, p.nombre_producto, p.unidad_producto,
		       d.cantidad_factura, d.precio_unitario_venta, d.id_seccion
		FROM detalle_factura d
		JOIN producto p ON p.id_producto = d.id_producto
		WHERE d.id_factura = $1 ORDER BY d.id_detalle`, id)
	if err != nil {
		return nil, mapError("list detalle", err)
	}
	for detRows.Next() {
		var d entity.DetalleFactura
		if err := detRows.Scan(&d.ID, &d.FacturaID, &d.ProductoID, &d.NombreProducto, &d.Unidad,
			&d.Cantidad, &d.PrecioUnitarioVenta, &d.SeccionID); err != nil {
			detRows.Close()
			return nil, fmt.Errorf("scan detalle: %w", err)
		}
		f.Detalles = append(f.Detalles, d)
	}
	detRows.Close()
	if err := detRows.Err(); err != nil {
		return nil, mapError("list detalle", err)
	}

	deuda, err := scanDeuda(r.q.QueryRow(ctx, `SELECT `+deudaColumns+` FROM deuda WHERE id_factura = $1`, id))
	switch {
	case errors.Is(err, pgx.ErrNoRows):
	case err != nil:
		return nil, mapError("get deuda de factura", err)
	default:
		f.Deuda = deuda
	}
	return &f, nil
}
