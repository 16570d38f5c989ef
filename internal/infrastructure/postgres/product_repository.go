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

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

const productColumns = `id_producto, nombre_producto, unidad_producto, stock, es_especial`

// Create persiste un nuevo producto.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Producto) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO producto (nombre_producto, unidad_producto, stock, es_especial)
		VALUES ($1, $2, $3, $4)
		RETURNING id_producto`,
		p.Nombre, p.Unidad, p.Stock, p.EsEspecial,
	).Scan(&p.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return mapError("insert producto", err)
	}
	return nil
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id int64) (*entity.Producto, error) {
	var p entity.Producto
	err := r.q.QueryRow(ctx, `SELECT `+productColumns+` FROM producto WHERE id_producto = $1`, id).
		Scan(&p.ID, &p.Nombre, &p.Unidad, &p.Stock, &p.EsEspecial)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("get producto", err)
	}
	return &p, nil
}

// Update actualiza nombre, unidad y bandera especial. El stock solo cambia por ventas.
func (r *ProductRepo) Update(ctx context.Context, p *entity.Producto) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE producto SET nombre_producto = $2, unidad_producto = $3, es_especial = $4
		WHERE id_producto = $1`,
		p.ID, p.Nombre, p.Unidad, p.EsEspecial,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return mapError("update producto", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista productos por nombre con paginación.
func (r *ProductRepo) List(ctx context.Context, search string, limit, offset int) ([]*entity.Producto, error) {
	rows, err := r.q.Query(ctx, `SELECT `+productColumns+` FROM producto
		WHERE ($1::text = '' OR nombre_producto ILIKE '%' || $1 || '%')
		ORDER BY nombre_producto LIMIT $2 OFFSET $3`, search, limit, offset)
	if err != nil {
		return nil, mapError("list productos", err)
	}
	defer rows.Close()
	var list []*entity.Producto
	for rows.Next() {
		var p entity.Producto
		if err := rows.Scan(&p.ID, &p.Nombre, &p.Unidad, &p.Stock, &p.EsEspecial); err != nil {
			return nil, fmt.Errorf("scan producto: %w", err)
		}
		list = append(list, &p)
	}
	return list, mapError("list productos", rows.Err())
}

// DecrementStock descuenta lo vendido. No valida existencias: el stock puede quedar negativo.
func (r *ProductRepo) DecrementStock(ctx context.Context, id int64, qty decimal.Decimal) error {
	cmd, err := r.q.Exec(ctx, `UPDATE producto SET stock = stock - $2 WHERE id_producto = $1`, id, qty)
	if err != nil {
		return mapError("decrement stock", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("decrement stock %d: %w", id, domain.ErrNotFound)
	}
	return nil
}
