package pricing_test

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/disfruleg/disfruleg-api/internal/application/pricing"
	"github.com/disfruleg/disfruleg-api/internal/domain"
	"github.com/disfruleg/disfruleg-api/internal/domain/entity"
	"github.com/disfruleg/disfruleg-api/internal/infrastructure/cache"
	"github.com/disfruleg/disfruleg-api/pkg/logger"
)

type mockPrices struct {
	base      map[[2]int64]decimal.Decimal // {grupo, producto}
	discounts map[int64]decimal.Decimal
	calls     int
}

func (m *mockPrices) GroupPrice(ctx context.Context, groupID, productID int64) (decimal.Decimal, bool, error) {
	m.calls++
	p, ok := m.base[[2]int64{groupID, productID}]
	return p, ok, nil
}

func (m *mockPrices) TypeDiscount(ctx context.Context, typeID int64) (decimal.Decimal, error) {
	d, ok := m.discounts[typeID]
	if !ok {
		return decimal.Zero, domain.ErrNotFound
	}
	return d, nil
}

func (m *mockPrices) GroupPrices(ctx context.Context, groupID int64) ([]entity.PrecioGrupo, error) {
	var out []entity.PrecioGrupo
	for _, id := range []int64{1, 2, 3} {
		if p, ok := m.base[[2]int64{groupID, id}]; ok {
			out = append(out, entity.PrecioGrupo{GrupoID: groupID, ProductoID: id, PrecioBase: p})
		}
	}
	return out, nil
}

func (m *mockPrices) SetGroupPrice(ctx context.Context, p entity.PrecioGrupo) error {
	m.base[[2]int64{p.GrupoID, p.ProductoID}] = p.PrecioBase
	return nil
}

type mockClients map[int64]*entity.ClienteDetalle

func (m mockClients) GetByID(ctx context.Context, id int64) (*entity.ClienteDetalle, error) {
	return m[id], nil
}

func (m mockClients) List(ctx context.Context, search string, limit, offset int) ([]*entity.ClienteDetalle, error) {
	return nil, nil
}

func fixtures() (*mockPrices, mockClients) {
	prices := &mockPrices{
		base: map[[2]int64]decimal.Decimal{
			{1, 1}: decimal.RequireFromString("33.33"),
			{1, 2}: decimal.RequireFromString("10.00"),
		},
		discounts: map[int64]decimal.Decimal{
			1: decimal.NewFromInt(15),
			2: decimal.Zero,
			3: decimal.NewFromInt(120),
		},
	}
	clients := mockClients{
		7: {Cliente: entity.Cliente{ID: 7, GrupoID: 1, TipoClienteID: 1}, Descuento: decimal.NewFromInt(15)},
	}
	return prices, clients
}

func TestPriceFor_AplicaDescuento(t *testing.T) {
	prices, clients := fixtures()
	r := pricing.NewResolver(prices, clients, nil, logger.Nop())

	q, err := r.PriceFor(context.Background(), 1, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, "33.33", q.Base.StringFixed(2))
	assert.Equal(t, "5.00", q.DiscountAmt.StringFixed(2))
	assert.Equal(t, "28.33", q.Final.StringFixed(2))
	assert.True(t, q.Sellable())
}

func TestPriceFor_SinPrecioNoSeVende(t *testing.T) {
	prices, clients := fixtures()
	r := pricing.NewResolver(prices, clients, nil, logger.Nop())

	q, err := r.PriceFor(context.Background(), 3, 1, 2)
	require.NoError(t, err)
	assert.True(t, q.Base.IsZero())
	assert.False(t, q.Sellable())
}

func TestPriceFor_DescuentoFueraDeRango(t *testing.T) {
	prices, clients := fixtures()
	r := pricing.NewResolver(prices, clients, nil, logger.Nop())

	_, err := r.PriceFor(context.Background(), 1, 1, 3)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = r.PriceFor(context.Background(), 1, 1, 99)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestPriceFor_UsaCacheHastaInvalidar(t *testing.T) {
	prices, clients := fixtures()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	r := pricing.NewResolver(prices, clients, cache.NewCache(client, time.Minute), logger.Nop())
	ctx := context.Background()

	q1, err := r.PriceFor(ctx, 2, 1, 1)
	require.NoError(t, err)
	q2, err := r.PriceFor(ctx, 2, 1, 1)
	require.NoError(t, err)
	assert.True(t, q1.Final.Equal(q2.Final))
	assert.Equal(t, 1, prices.calls)

	require.NoError(t, r.SetGroupPrice(ctx, entity.PrecioGrupo{GrupoID: 1, ProductoID: 2, PrecioBase: decimal.NewFromInt(20)}))
	q3, err := r.PriceFor(ctx, 2, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, "17.00", q3.Final.StringFixed(2))
	assert.Equal(t, 2, prices.calls)
}

func TestPriceFor_RedisCaidoCalculaDirecto(t *testing.T) {
	prices, clients := fixtures()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	r := pricing.NewResolver(prices, clients, cache.NewCache(client, time.Minute), logger.Nop())
	mr.Close()

	q, err := r.PriceFor(context.Background(), 2, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, "8.50", q.Final.StringFixed(2))
}

func TestPriceListForClient(t *testing.T) {
	prices, clients := fixtures()
	r := pricing.NewResolver(prices, clients, nil, logger.Nop())

	list, err := r.PriceListForClient(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, int64(1), list[0].ProductoID)
	assert.Equal(t, "28.33", list[0].Quote.Final.StringFixed(2))
	assert.Equal(t, "8.50", list[1].Quote.Final.StringFixed(2))

	_, err = r.PriceListForClient(context.Background(), 404)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	q, err := r.QuoteForClient(context.Background(), 1, 7)
	require.NoError(t, err)
	assert.Equal(t, "28.33", q.Final.StringFixed(2))
}

func TestSetGroupPrice_RechazaNegativo(t *testing.T) {
	prices, clients := fixtures()
	r := pricing.NewResolver(prices, clients, nil, logger.Nop())
	err := r.SetGroupPrice(context.Background(), entity.PrecioGrupo{GrupoID: 1, ProductoID: 1, PrecioBase: decimal.NewFromInt(-1)})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}
