package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/disfruleg/disfruleg-api/internal/domain/entity"
)

// PricingRepository puerto de precio_por_grupo y tipo_cliente.
type PricingRepository interface {
	// GroupPrice precio base; ok=false si el grupo no tiene precio para el producto.
	GroupPrice(ctx context.Context, groupID, productID int64) (price decimal.Decimal, ok bool, err error)
	// TypeDiscount porcentaje de descuento del tipo; domain.ErrNotFound si el tipo no existe.
	TypeDiscount(ctx context.Context, typeID int64) (decimal.Decimal, error)
	// GroupPrices precios del grupo ordenados por producto.
	GroupPrices(ctx context.Context, groupID int64) ([]entity.PrecioGrupo, error)
	// SetGroupPrice inserta o reemplaza el precio base.
	SetGroupPrice(ctx context.Context, p entity.PrecioGrupo) error
}
