package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/disfruleg/disfruleg-api/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Producto (DIP).
type ProductRepository interface {
	Create(ctx context.Context, p *entity.Producto) error
	// GetByID nil, nil si no existe.
	GetByID(ctx context.Context, id int64) (*entity.Producto, error)
	Update(ctx context.Context, p *entity.Producto) error
	List(ctx context.Context, search string, limit, offset int) ([]*entity.Producto, error)
	// DecrementStock resta qty del stock del producto (puede quedar negativo).
	DecrementStock(ctx context.Context, id int64, qty decimal.Decimal) error
}
