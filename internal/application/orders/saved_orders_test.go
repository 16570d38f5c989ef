package orders_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/disfruleg/disfruleg-api/internal/application/orders"
	"github.com/disfruleg/disfruleg-api/internal/domain"
	"github.com/disfruleg/disfruleg-api/internal/domain/cart"
	"github.com/disfruleg/disfruleg-api/internal/domain/entity"
	"github.com/disfruleg/disfruleg-api/pkg/logger"
)

func newService(m *memStore) *orders.SavedOrderService {
	prices := fixedPrices{
		base:     map[int64]decimal.Decimal{1: dec("20.00"), 9: dec("50.00")},
		discount: decimal.NewFromInt(10),
	}
	return orders.NewSavedOrderService(memOrders{m}, memProducts{m}, newAllocator(m), prices, logger.Nop(), 0)
}

func seededStore(t *testing.T) *memStore {
	t.Helper()
	m := newMemStore()
	m.addClient(42, 1, 2)
	m.addProduct(1, "Manzana", false)
	m.addProduct(2, "Sin precio", false)
	m.addProduct(9, "Azafrán", true)
	reserveWithCart(t, m, 1, "u1", func(c *cart.Cart) {})
	reserveWithCart(t, m, 2, "u2", func(c *cart.Cart) {})
	return m
}

func TestAddItem_UsaPrecioDelCliente(t *testing.T) {
	ctx := context.Background()
	m := seededStore(t)
	svc := newService(m)

	res, err := svc.AddItem(ctx, u1, 1, orders.AddItemInput{ProductoID: 1, Cantidad: dec("2")}, false)
	require.NoError(t, err)
	assert.Equal(t, "18.00", res.PrecioUnitario.StringFixed(2), "20.00 menos 10%")
	assert.Equal(t, "36.00", res.Total.StringFixed(2))

	res, err = svc.AddItem(ctx, u1, 1, orders.AddItemInput{ProductoID: 1, Cantidad: dec("1")}, false)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Count, "mismo producto suma cantidades")
	assert.Equal(t, "54.00", res.Total.StringFixed(2))

	o := m.activeOrder(1)
	assert.Equal(t, "54.00", o.TotalEstimado.StringFixed(2))
	c, err := cart.Unmarshal(o.DatosCarrito)
	require.NoError(t, err)
	assert.Equal(t, "3", c.Items()[0].Cantidad.String())
}

func TestAddItem_PrecioManualYSinPrecio(t *testing.T) {
	ctx := context.Background()
	svc := newService(seededStore(t))

	manual := dec("12.5")
	res, err := svc.AddItem(ctx, u1, 1, orders.AddItemInput{ProductoID: 2, Cantidad: dec("2"), PrecioUnitario: &manual}, false)
	require.NoError(t, err)
	assert.Equal(t, "25.00", res.Total.StringFixed(2))

	_, err = svc.AddItem(ctx, u1, 1, orders.AddItemInput{ProductoID: 2, Cantidad: dec("1")}, false)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.AddItem(ctx, u1, 1, orders.AddItemInput{ProductoID: 77, Cantidad: dec("1")}, false)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.AddItem(ctx, u1, 1, orders.AddItemInput{ProductoID: 1, Cantidad: dec("0")}, false)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// Un vendedor no puede vender un producto especial hasta que un admin se re-autentica.
func TestAddItem_ProductoEspecial(t *testing.T) {
	ctx := context.Background()
	svc := newService(seededStore(t))

	_, err := svc.AddItem(ctx, u1, 1, orders.AddItemInput{ProductoID: 9, Cantidad: dec("1")}, false)
	require.ErrorIs(t, err, domain.ErrPermissionDenied)
	assert.Equal(t, domain.ReasonSpecialRequiresAdmin, domain.PermissionReason(err))

	_, err = svc.AddItem(ctx, u1, 1, orders.AddItemInput{ProductoID: 9, Cantidad: dec("1")}, true)
	require.NoError(t, err)
}

func TestUpdate_ReglasDeEstado(t *testing.T) {
	ctx := context.Background()
	m := seededStore(t)
	svc := newService(m)

	c := cart.New()
	_, _ = c.Add(cart.Product{ID: 1, Nombre: "Manzana", Unidad: "kg"}, dec("4"), dec("10"), "")
	doc, err := c.Marshal(fixedNow)
	require.NoError(t, err)

	require.NoError(t, svc.Update(ctx, u1, 1, doc, decimal.Zero, false))
	assert.Equal(t, "40.00", m.activeOrder(1).TotalEstimado.StringFixed(2), "total cero se calcula del carrito")

	err = svc.Update(ctx, u2, 1, doc, decimal.Zero, false)
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)

	require.NoError(t, svc.Update(ctx, admin, 1, doc, dec("41"), false), "admin edita órdenes ajenas")

	err = svc.Update(ctx, u1, 99, doc, decimal.Zero, false)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = svc.Update(ctx, u1, 1, []byte(`{"secciones": []}`), decimal.Zero, false)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	m.activeOrder(1).Estado = entity.EstadoRegistrada
	err = svc.Update(ctx, u1, 1, doc, decimal.Zero, false)
	assert.ErrorIs(t, err, domain.ErrIllegalState)
}

func TestListados_VisibilidadPorUsuario(t *testing.T) {
	ctx := context.Background()
	m := seededStore(t)
	svc := newService(m)

	mine, err := svc.ListActive(ctx, u1)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, int64(1), mine[0].Folio)
	assert.Equal(t, "Cliente 42", mine[0].NombreCliente)

	all, err := svc.ListActive(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	m.activeOrder(2).Estado = entity.EstadoRegistrada
	hist, err := svc.ListHistory(ctx, u1, 0)
	require.NoError(t, err)
	assert.Empty(t, hist)
	hist, err = svc.ListHistory(ctx, u2, 0)
	require.NoError(t, err)
	assert.Len(t, hist, 1)
}

func TestSoftDelete(t *testing.T) {
	ctx := context.Background()
	m := seededStore(t)
	svc := newService(m)

	_, err := svc.SoftDelete(ctx, u2, 1)
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)

	ok, err := svc.SoftDelete(ctx, u1, 1)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = svc.SoftDelete(ctx, u1, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = svc.Load(ctx, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDuplicate_CopiaElCarritoEnFolioNuevo(t *testing.T) {
	ctx := context.Background()
	m := seededStore(t)
	svc := newService(m)
	_, err := svc.AddItem(ctx, u2, 2, orders.AddItemInput{ProductoID: 1, Cantidad: dec("2")}, false)
	require.NoError(t, err)

	nuevo, err := svc.Duplicate(ctx, u1, 2, false)
	require.NoError(t, err)
	assert.Equal(t, int64(3), nuevo)

	v, err := svc.Load(ctx, nuevo)
	require.NoError(t, err)
	assert.Equal(t, "u1", v.UsuarioCreador)
	assert.Equal(t, int64(42), v.ClienteID)
	assert.Equal(t, "36.00", v.TotalEstimado.StringFixed(2))
	assert.Equal(t, entity.EstadoGuardada, v.Estado)
}

// Meter un producto especial reemplazando el carrito exige la misma re-autenticación que AddItem.
func TestUpdate_ProductoEspecialRequiereElevacion(t *testing.T) {
	ctx := context.Background()
	m := seededStore(t)
	svc := newService(m)

	c := cart.New()
	_, _ = c.Add(cart.Product{ID: 9, Nombre: "Azafrán", Unidad: "g"}, dec("1"), dec("50"), "")
	doc, err := c.Marshal(fixedNow)
	require.NoError(t, err)

	err = svc.Update(ctx, u1, 1, doc, decimal.Zero, false)
	require.ErrorIs(t, err, domain.ErrPermissionDenied)
	assert.Equal(t, domain.ReasonSpecialRequiresAdmin, domain.PermissionReason(err))
	assert.True(t, m.activeOrder(1).TotalEstimado.IsZero(), "el carrito no cambia")

	require.NoError(t, svc.Update(ctx, u1, 1, doc, decimal.Zero, true))

	// Bajar la cantidad o editar otra línea no vuelve a pedir elevación.
	c2 := cart.New()
	_, _ = c2.Add(cart.Product{ID: 9, Nombre: "Azafrán", Unidad: "g"}, dec("0.5"), dec("50"), "")
	_, _ = c2.Add(cart.Product{ID: 1, Nombre: "Manzana", Unidad: "kg"}, dec("1"), dec("18"), "")
	doc, err = c2.Marshal(fixedNow)
	require.NoError(t, err)
	require.NoError(t, svc.Update(ctx, u1, 1, doc, decimal.Zero, false))

	c2 = cart.New()
	_, _ = c2.Add(cart.Product{ID: 9, Nombre: "Azafrán", Unidad: "g"}, dec("2"), dec("50"), "")
	doc, err = c2.Marshal(fixedNow)
	require.NoError(t, err)
	err = svc.Update(ctx, u1, 1, doc, decimal.Zero, false)
	assert.ErrorIs(t, err, domain.ErrPermissionDenied, "aumentar la cantidad cuenta como vender más")

	require.NoError(t, svc.Update(ctx, admin, 1, doc, decimal.Zero, false))
}

func TestReserve_ProductoEspecialRequiereElevacion(t *testing.T) {
	ctx := context.Background()
	m := seededStore(t)
	svc := newService(m)

	c := cart.New()
	_, _ = c.Add(cart.Product{ID: 9, Nombre: "Azafrán", Unidad: "g"}, dec("1"), dec("50"), "")
	doc, err := c.Marshal(fixedNow)
	require.NoError(t, err)
	in := orders.ReserveInput{ClienteID: 42, Doc: doc}

	_, err = svc.ReserveNext(ctx, u1, in, false)
	require.ErrorIs(t, err, domain.ErrPermissionDenied)
	in.Folio = 10
	_, err = svc.Reserve(ctx, u1, in, false)
	require.ErrorIs(t, err, domain.ErrPermissionDenied)
	assert.Nil(t, m.activeOrder(10))

	ok, err := svc.Reserve(ctx, u1, in, true)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "u1", m.activeOrder(10).UsuarioCreador)

	folio, err := svc.ReserveNext(ctx, admin, orders.ReserveInput{ClienteID: 42, Doc: doc}, false)
	require.NoError(t, err)
	assert.Equal(t, int64(3), folio)

	_, err = svc.Duplicate(ctx, u2, 10, false)
	assert.ErrorIs(t, err, domain.ErrPermissionDenied, "duplicar copia la venta del especial")
}

// Un documento vacío o null deja la orden con un carrito vacío válido.
func TestUpdate_DocumentoVacio(t *testing.T) {
	ctx := context.Background()
	m := seededStore(t)
	svc := newService(m)

	for _, raw := range []string{"", "null", "  "} {
		require.NoError(t, svc.Update(ctx, u1, 1, []byte(raw), decimal.Zero, false))
		o := m.activeOrder(1)
		assert.NotEqual(t, "null", string(o.DatosCarrito))
		assert.NotEmpty(t, o.DatosCarrito)
		c, err := cart.Unmarshal(o.DatosCarrito)
		require.NoError(t, err)
		assert.Equal(t, 0, c.Count())
		assert.True(t, o.TotalEstimado.IsZero())
	}
}
