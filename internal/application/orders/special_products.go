package orders

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/disfruleg/disfruleg-api/internal/domain"
	"github.com/disfruleg/disfruleg-api/internal/domain/authz"
	"github.com/disfruleg/disfruleg-api/internal/domain/cart"
	"github.com/disfruleg/disfruleg-api/internal/domain/repository"
)

// authorizeSpecials aplica sell_product a los productos que after agrega o aumenta respecto
// de before (nil = carrito vacío). Un no-admin necesita elevated si alguno es especial.
func authorizeSpecials(
	ctx context.Context,
	gate authz.Gate,
	products repository.ProductRepository,
	p authz.Principal,
	before, after *cart.Cart,
	elevated bool,
) error {
	if p.IsAdmin() || after == nil {
		return nil
	}
	prev := quantities(before)
	for id, qty := range quantities(after) {
		if !qty.GreaterThan(prev[id]) {
			continue
		}
		prod, err := products.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if prod == nil {
			return fmt.Errorf("producto %d: %w", id, domain.ErrNotFound)
		}
		d := gate.May(p, authz.OpSellProduct, authz.Context{ProductSpecial: prod.EsEspecial, AdminChallengePassed: elevated})
		if !d.Allowed {
			return d.Err()
		}
	}
	return nil
}

// quantities cantidad total por producto, sumando todas las secciones.
func quantities(c *cart.Cart) map[int64]decimal.Decimal {
	out := make(map[int64]decimal.Decimal)
	if c == nil {
		return out
	}
	for _, it := range c.Items() {
		out[it.ProductoID] = out[it.ProductoID].Add(it.Cantidad)
	}
	return out
}
