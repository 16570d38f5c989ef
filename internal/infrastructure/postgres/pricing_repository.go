package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/disfruleg/disfruleg-api/internal/domain"
	"github.com/disfruleg/disfruleg-api/internal/domain/entity"
	"github.com/disfruleg/disfruleg-api/internal/domain/repository"
)

var _ repository.PricingRepository = (*PricingRepo)(nil)

// PricingRepo precio_por_grupo y descuentos de tipo_cliente.
type PricingRepo struct {
	q Querier
}

// NewPricingRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPricingRepository(q Querier) *PricingRepo {
	return &PricingRepo{q: q}
}

// GroupPrice precio base del producto para el grupo.
func (r *PricingRepo) GroupPrice(ctx context.Context, groupID, productID int64) (decimal.Decimal, bool, error) {
	var price decimal.Decimal
	err := r.q.QueryRow(ctx,
		`SELECT precio_base FROM precio_por_grupo WHERE id_grupo = $1 AND id_producto = $2`,
		groupID, productID,
	).Scan(&price)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, false, nil
		}
		return decimal.Zero, false, mapError("get precio de grupo", err)
	}
	return price, true, nil
}

// TypeDiscount porcentaje de descuento del tipo de cliente.
func (r *PricingRepo) TypeDiscount(ctx context.Context, typeID int64) (decimal.Decimal, error) {
	var pct decimal.Decimal
	err := r.q.QueryRow(ctx, `SELECT descuento FROM tipo_cliente WHERE id_tipo_cliente = $1`, typeID).Scan(&pct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, fmt.Errorf("tipo de cliente %d: %w", typeID, domain.ErrNotFound)
		}
		return decimal.Zero, mapError("get descuento", err)
	}
	return pct, nil
}

// GroupPrices lista de precios del grupo.
func (r *PricingRepo) GroupPrices(ctx context.Context, groupID int64) ([]entity.PrecioGrupo, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id_grupo, id_producto, precio_base FROM precio_por_grupo
		WHERE id_grupo = $1 ORDER BY id_producto`, groupID)
	if err != nil {
		return nil, mapError("list precios de grupo", err)
	}
	defer rows.Close()
	var list []entity.PrecioGrupo
	for rows.Next() {
		var p entity.PrecioGrupo
		if err := rows.Scan(&p.GrupoID, &p.ProductoID, &p.PrecioBase); err != nil {
			return nil, fmt.Errorf("scan precio: %w", err)
		}
		list = append(list, p)
	}
	return list, mapError("list precios de grupo", rows.Err())
}

// SetGroupPrice inserta o reemplaza el precio base del producto en el grupo.
func (r *PricingRepo) SetGroupPrice(ctx context.Context, p entity.PrecioGrupo) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO precio_por_grupo (id_grupo, id_producto, precio_base) VALUES ($1, $2, $3)
		ON CONFLICT (id_grupo, id_producto) DO UPDATE SET precio_base = EXCLUDED.precio_base`,
		p.GrupoID, p.ProductoID, p.PrecioBase,
	)
	if err != nil {
		return mapError("upsert precio de grupo", err)
	}
	return nil
}
