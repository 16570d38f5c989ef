package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/disfruleg/disfruleg-api/internal/domain/entity"
	"github.com/disfruleg/disfruleg-api/internal/domain/repository"
)

var _ repository.SavedOrderRepository = (*SavedOrderRepo)(nil)

// SavedOrderRepo implementación de SavedOrderRepository (usable con pool o tx).
type SavedOrderRepo struct {
	q Querier
}

// NewSavedOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSavedOrderRepository(q Querier) *SavedOrderRepo {
	return &SavedOrderRepo{q: q}
}

const savedOrderViewSelect = `
	SELECT o.folio_numero, o.id_cliente, o.usuario_creador, o.datos_carrito, o.total_estimado,
	       o.estado, o.activo, o.id_factura, o.fecha_creacion, o.fecha_modificacion,
	       c.nombre_cliente, c.id_grupo, c.id_tipo_cliente, t.nombre_tipo, t.descuento
	FROM ordenes_guardadas o
	JOIN cliente c      ON c.id_cliente = o.id_cliente
	JOIN tipo_cliente t ON t.id_tipo_cliente = c.id_tipo_cliente`

// Create inserta la orden. Un folio con orden activa viola ux_ordenes_guardadas_folio_activo.
func (r *SavedOrderRepo) Create(ctx context.Context, o *entity.SavedOrder) error {
	query := `
		INSERT INTO ordenes_guardadas (folio_numero, id_cliente, usuario_creador, datos_carrito, total_estimado, estado, activo)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING fecha_creacion, fecha_modificacion`
	err := r.q.QueryRow(ctx, query,
		o.Folio, o.ClienteID, o.UsuarioCreador, string(o.DatosCarrito), o.TotalEstimado, o.Estado, o.Activo,
	).Scan(&o.FechaCreacion, &o.FechaModificacion)
	if err != nil {
		return mapError("insert saved order", err)
	}
	return nil
}

// GetByFolio fila activa del folio.
func (r *SavedOrderRepo) GetByFolio(ctx context.Context, folio int64) (*entity.SavedOrder, error) {
	query := `
		SELECT folio_numero, id_cliente, usuario_creador, datos_carrito, total_estimado,
		       estado, activo, id_factura, fecha_creacion, fecha_modificacion
		FROM ordenes_guardadas WHERE folio_numero = $1 AND activo`
	var o entity.SavedOrder
	var doc []byte
	err := r.q.QueryRow(ctx, query, folio).Scan(
		&o.Folio, &o.ClienteID, &o.UsuarioCreador, &doc, &o.TotalEstimado,
		&o.Estado, &o.Activo, &o.FacturaID, &o.FechaCreacion, &o.FechaModificacion,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("get saved order", err)
	}
	o.DatosCarrito = json.RawMessage(doc)
	return &o, nil
}

// GetView fila activa del folio con cliente y tipo.
func (r *SavedOrderRepo) GetView(ctx context.Context, folio int64) (*entity.SavedOrderView, error) {
	v, err := scanSavedOrderView(r.q.QueryRow(ctx, savedOrderViewSelect+` WHERE o.folio_numero = $1 AND o.activo`, folio))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("get saved order view", err)
	}
	return v, nil
}

// UpdateCart reemplaza el carrito si la orden sigue guardada y activa. Última escritura gana.
func (r *SavedOrderRepo) UpdateCart(ctx context.Context, folio int64, doc json.RawMessage, total decimal.Decimal) (bool, error) {
	cmd, err := r.q.Exec(ctx, `
		UPDATE ordenes_guardadas
		SET datos_carrito = $2, total_estimado = $3, fecha_modificacion = NOW()
		WHERE folio_numero = $1 AND activo AND estado = 'guardada'`,
		folio, string(doc), total,
	)
	if err != nil {
		return false, mapError("update saved order", err)
	}
	return cmd.RowsAffected() == 1, nil
}

// Deactivate libera el folio (borrado lógico) de una orden guardada.
func (r *SavedOrderRepo) Deactivate(ctx context.Context, folio int64) (bool, error) {
	cmd, err := r.q.Exec(ctx, `
		UPDATE ordenes_guardadas
		SET activo = FALSE, fecha_modificacion = NOW()
		WHERE folio_numero = $1 AND activo AND estado = 'guardada'`, folio)
	if err != nil {
		return false, mapError("deactivate saved order", err)
	}
	return cmd.RowsAffected() == 1, nil
}

// ListByEstado lista órdenes activas en estado; creator vacío devuelve las de todos.
// Las guardadas salen por folio; el historial, de la más reciente a la más antigua.
func (r *SavedOrderRepo) ListByEstado(ctx context.Context, estado, creator string, limit int) ([]*entity.SavedOrderView, error) {
	order := ` ORDER BY o.folio_numero`
	if estado == entity.EstadoRegistrada {
		order = ` ORDER BY o.fecha_modificacion DESC, o.folio_numero DESC`
	}
	var lim any
	if limit > 0 {
		lim = limit
	}
	query := savedOrderViewSelect + `
		WHERE o.activo AND o.estado = $1 AND ($2::text = '' OR o.usuario_creador = $2)` + order + ` LIMIT $3`
	rows, err := r.q.Query(ctx, query, estado, creator, lim)
	if err != nil {
		return nil, mapError("list saved orders", err)
	}
	defer rows.Close()
	var list []*entity.SavedOrderView
	for rows.Next() {
		v, err := scanSavedOrderView(rows)
		if err != nil {
			return nil, fmt.Errorf("scan saved order: %w", err)
		}
		list = append(list, v)
	}
	return list, mapError("list saved orders", rows.Err())
}

// MarkRegistered pasa la orden de guardada a registrada enlazando la factura.
func (r *SavedOrderRepo) MarkRegistered(ctx context.Context, folio, invoiceID int64) (bool, error) {
	cmd, err := r.q.Exec(ctx, `
		UPDATE ordenes_guardadas
		SET estado = 'registrada', id_factura = $2, fecha_modificacion = NOW()
		WHERE folio_numero = $1 AND activo AND estado = 'guardada'`, folio, invoiceID)
	if err != nil {
		return false, mapError("mark saved order registered", err)
	}
	return cmd.RowsAffected() == 1, nil
}

func scanSavedOrderView(row pgx.Row) (*entity.SavedOrderView, error) {
	var v entity.SavedOrderView
	var doc []byte
	if err := row.Scan(
		&v.Folio, &v.ClienteID, &v.UsuarioCreador, &doc, &v.TotalEstimado,
		&v.Estado, &v.Activo, &v.FacturaID, &v.FechaCreacion, &v.FechaModificacion,
		&v.NombreCliente, &v.GrupoID, &v.TipoClienteID, &v.TipoNombre, &v.Descuento,
	); err != nil {
		return nil, err
	}
	v.DatosCarrito = json.RawMessage(doc)
	return &v, nil
}
