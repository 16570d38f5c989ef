// Package pricing resuelve el precio de venta de un producto para un cliente a partir de
// precio_por_grupo y del descuento de tipo_cliente, con caché opcional.
package pricing

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/disfruleg/disfruleg-api/internal/domain"
	"github.com/disfruleg/disfruleg-api/internal/domain/entity"
	dpricing "github.com/disfruleg/disfruleg-api/internal/domain/pricing"
	"github.com/disfruleg/disfruleg-api/internal/domain/repository"
	"github.com/disfruleg/disfruleg-api/pkg/logger"
)

// Cache caché JSON versionada (infrastructure/cache.Cache).
type Cache interface {
	BuildKey(ctx context.Context, parts ...string) (string, error)
	FetchJSON(ctx context.Context, key string, dest any, loader func(context.Context) (any, error)) error
	Bump(ctx context.Context) error
}

// PriceLine precio de un producto en la lista de un cliente.
type PriceLine struct {
	ProductoID int64          `json:"id_producto"`
	Quote      dpricing.Quote `json:"precio"`
}

// Resolver calcula precios por grupo y tipo de cliente.
type Resolver struct {
	prices  repository.PricingRepository
	clients repository.ClientRepository
	cache   Cache
	log     *logger.Logger
}

// NewResolver crea el resolver. cache puede ser nil.
func NewResolver(prices repository.PricingRepository, clients repository.ClientRepository, cache Cache, log *logger.Logger) *Resolver {
	return &Resolver{prices: prices, clients: clients, cache: cache, log: log}
}

// PriceFor precio del producto para el grupo y tipo dados. Sin precio en el grupo devuelve una
// cotización con base 0 (Sellable false).
func (r *Resolver) PriceFor(ctx context.Context, productID, groupID, typeID int64) (dpricing.Quote, error) {
	if r.cache == nil {
		return r.load(ctx, productID, groupID, typeID)
	}
	key, err := r.cache.BuildKey(ctx, "precios", "quote", fmtID(groupID), fmtID(typeID), fmtID(productID))
	if err != nil {
		r.log.Warn().Err(err).Msg("caché de precios no disponible")
		return r.load(ctx, productID, groupID, typeID)
	}
	var (
		q       dpricing.Quote
		loadErr error
	)
	err = r.cache.FetchJSON(ctx, key, &q, func(ctx context.Context) (any, error) {
		v, err := r.load(ctx, productID, groupID, typeID)
		loadErr = err
		return v, err
	})
	if loadErr != nil {
		return dpricing.Quote{}, loadErr
	}
	if err != nil {
		r.log.Warn().Err(err).Str("key", key).Msg("caché de precios no disponible")
		return r.load(ctx, productID, groupID, typeID)
	}
	return q, nil
}

// QuoteForClient precio del producto para el cliente.
func (r *Resolver) QuoteForClient(ctx context.Context, productID, clientID int64) (dpricing.Quote, error) {
	c, err := r.client(ctx, clientID)
	if err != nil {
		return dpricing.Quote{}, err
	}
	return r.PriceFor(ctx, productID, c.GrupoID, c.TipoClienteID)
}

// PriceListForClient todos los productos con precio en el grupo del cliente, con su descuento.
func (r *Resolver) PriceListForClient(ctx context.Context, clientID int64) ([]PriceLine, error) {
	c, err := r.client(ctx, clientID)
	if err != nil {
		return nil, err
	}
	rows, err := r.prices.GroupPrices(ctx, c.GrupoID)
	if err != nil {
		return nil, err
	}
	out := make([]PriceLine, 0, len(rows))
	for _, p := range rows {
		q, err := compute(p.PrecioBase, c.Descuento)
		if err != nil {
			return nil, err
		}
		out = append(out, PriceLine{ProductoID: p.ProductoID, Quote: q})
	}
	return out, nil
}

// SetGroupPrice guarda el precio base e invalida la caché.
func (r *Resolver) SetGroupPrice(ctx context.Context, p entity.PrecioGrupo) error {
	if p.PrecioBase.IsNegative() {
		return fmt.Errorf("%w: precio negativo", domain.ErrInvalidInput)
	}
	if err := r.prices.SetGroupPrice(ctx, p); err != nil {
		return err
	}
	return r.Invalidate(ctx)
}

// Invalidate descarta todos los precios en caché.
func (r *Resolver) Invalidate(ctx context.Context) error {
	if r.cache == nil {
		return nil
	}
	if err := r.cache.Bump(ctx); err != nil {
		return fmt.Errorf("invalidar caché de precios: %w", err)
	}
	return nil
}

func (r *Resolver) load(ctx context.Context, productID, groupID, typeID int64) (dpricing.Quote, error) {
	base, ok, err := r.prices.GroupPrice(ctx, groupID, productID)
	if err != nil {
		return dpricing.Quote{}, err
	}
	if !ok {
		base = decimal.Zero
	}
	pct, err := r.prices.TypeDiscount(ctx, typeID)
	if err != nil {
		return dpricing.Quote{}, err
	}
	return compute(base, pct)
}

func (r *Resolver) client(ctx context.Context, clientID int64) (*entity.ClienteDetalle, error) {
	c, err := r.clients.GetByID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("cliente %d: %w", clientID, domain.ErrNotFound)
	}
	return c, nil
}

func compute(base, pct decimal.Decimal) (dpricing.Quote, error) {
	q, err := dpricing.Compute(base, pct)
	if errors.Is(err, dpricing.ErrInvalidDiscount) {
		return dpricing.Quote{}, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return q, err
}

func fmtID(id int64) string {
	return strconv.FormatInt(id, 10)
}
