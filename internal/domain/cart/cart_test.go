package cart_test

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/disfruleg/disfruleg-api/internal/domain/cart"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

var (
	manzana = cart.Product{ID: 1, Nombre: "Manzana roja", Unidad: "kg"}
	platano = cart.Product{ID: 2, Nombre: "Plátano", Unidad: "kg"}
	lechuga = cart.Product{ID: 3, Nombre: "Lechuga", Unidad: "pza"}
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertDec(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, got.Equal(d(want)), "se esperaba %s, se obtuvo %s", want, got)
}

// assertSameCart compara dos carritos salvo la marca de tiempo.
func assertSameCart(t *testing.T, want, got *cart.Cart) {
	t.Helper()
	assert.Equal(t, want.SectioningEnabled(), got.SectioningEnabled())
	assert.Equal(t, want.Sections(), got.Sections())
	wi, gi := want.Items(), got.Items()
	require.Len(t, gi, len(wi))
	for i := range wi {
		assert.Equal(t, wi[i].Key, gi[i].Key)
		assert.Equal(t, wi[i].ProductoID, gi[i].ProductoID)
		assert.Equal(t, wi[i].NombreProducto, gi[i].NombreProducto)
		assert.Equal(t, wi[i].Unidad, gi[i].Unidad)
		assert.Equal(t, wi[i].SeccionID, gi[i].SeccionID)
		assert.True(t, wi[i].Cantidad.Equal(gi[i].Cantidad), "cantidad de %s", wi[i].Key)
		assert.True(t, wi[i].PrecioUnitario.Equal(gi[i].PrecioUnitario), "precio de %s", wi[i].Key)
		assert.True(t, wi[i].Subtotal.Equal(gi[i].Subtotal), "subtotal de %s", wi[i].Key)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Operaciones
// ──────────────────────────────────────────────────────────────────────────────

func TestAdd_MismoProductoSumaCantidades(t *testing.T) {
	c := cart.New()
	k1, err := c.Add(manzana, d("2"), d("15.00"), "")
	require.NoError(t, err)
	k2, err := c.Add(manzana, d("1.5"), d("99.00"), "")
	require.NoError(t, err)

	assert.Equal(t, k1, k2)
	assert.Equal(t, 1, c.Count())
	it, ok := c.Get(k1)
	require.True(t, ok)
	assertDec(t, "3.5", it.Cantidad)
	assertDec(t, "15.00", it.PrecioUnitario)
	assertDec(t, "52.50", it.Subtotal)
}

func TestAdd_Validaciones(t *testing.T) {
	c := cart.New()
	_, err := c.Add(manzana, d("0"), d("1"), "")
	assert.ErrorIs(t, err, cart.ErrInvalidQuantity)
	_, err = c.Add(manzana, d("1"), d("-1"), "")
	assert.ErrorIs(t, err, cart.ErrInvalidPrice)

	c.EnableSections(true)
	_, err = c.Add(manzana, d("1"), d("1"), "seccion_99")
	assert.ErrorIs(t, err, cart.ErrUnknownSection)
}

func TestUpdateQty_CeroElimina(t *testing.T) {
	c := cart.New()
	k, _ := c.Add(manzana, d("2"), d("10"), "")
	require.NoError(t, c.UpdateQty(k, d("4")))
	assertDec(t, "40", c.Total())

	require.NoError(t, c.UpdateQty(k, decimal.Zero))
	assert.Equal(t, 0, c.Count())
	assert.ErrorIs(t, c.UpdateQty(k, d("1")), cart.ErrItemNotFound)
}

func TestTotalYClear(t *testing.T) {
	c := cart.New()
	_, _ = c.Add(manzana, d("2"), d("15.00"), "")
	_, _ = c.Add(platano, d("0.333"), d("10.00"), "")
	assertDec(t, "33.33", c.Total())

	assert.True(t, c.Remove("2"))
	assert.False(t, c.Remove("2"))
	c.Clear()
	assert.Equal(t, 0, c.Count())
	assertDec(t, "0", c.Total())
}

// ──────────────────────────────────────────────────────────────────────────────
// Secciones
// ──────────────────────────────────────────────────────────────────────────────

func TestEnableSections_NoPierdeLineas(t *testing.T) {
	c := cart.New()
	_, _ = c.Add(manzana, d("2"), d("15"), "")
	_, _ = c.Add(lechuga, d("3"), d("8"), "")

	c.EnableSections(true)
	require.Len(t, c.Sections(), 1)
	assert.Equal(t, cart.DefaultSectionName, c.Sections()[0].Nombre)
	first := c.Sections()[0].ID
	for _, it := range c.Items() {
		assert.Equal(t, first, it.SeccionID)
		assert.Equal(t, cart.ItemKey(it.ProductoID, first), it.Key)
	}

	c.EnableSections(false)
	assert.Equal(t, 2, c.Count())
	for _, it := range c.Items() {
		assert.Empty(t, it.SeccionID)
	}
	assertDec(t, "54", c.Total())
}

func TestEnableSections_DesactivarFusionaMismoProducto(t *testing.T) {
	c := cart.New()
	c.EnableSections(true)
	frutas := c.Sections()[0].ID
	verduras, err := c.AddSection("Verduras")
	require.NoError(t, err)
	_, _ = c.Add(manzana, d("2"), d("15"), frutas)
	_, _ = c.Add(manzana, d("1"), d("15"), verduras)

	c.EnableSections(false)
	require.Equal(t, 1, c.Count())
	assertDec(t, "3", c.Items()[0].Cantidad)
}

func TestRemoveSection_ReglasYModos(t *testing.T) {
	c := cart.New()
	c.EnableSections(true)
	frutas := c.Sections()[0].ID
	verduras, _ := c.AddSection("Verduras")
	_, _ = c.Add(manzana, d("2"), d("15"), frutas)
	_, _ = c.Add(lechuga, d("1"), d("8"), verduras)
	_, _ = c.Add(manzana, d("1"), d("15"), verduras)

	assert.ErrorIs(t, c.RemoveSection(verduras, cart.RequireEmpty, ""), cart.ErrSectionNotEmpty)
	assert.ErrorIs(t, c.RemoveSection(verduras, cart.MoveItems, verduras), cart.ErrUnknownSection)

	require.NoError(t, c.RemoveSection(verduras, cart.MoveItems, frutas))
	require.Len(t, c.Sections(), 1)
	assert.Equal(t, 2, c.Count())
	it, ok := c.Get(cart.ItemKey(manzana.ID, frutas))
	require.True(t, ok)
	assertDec(t, "3", it.Cantidad)

	assert.ErrorIs(t, c.RemoveSection(frutas, cart.DeleteItems, ""), cart.ErrLastSection)
}

func TestRemoveSection_BorrarLineas(t *testing.T) {
	c := cart.New()
	c.EnableSections(true)
	verduras, _ := c.AddSection("Verduras")
	_, _ = c.Add(lechuga, d("1"), d("8"), verduras)
	_, _ = c.Add(manzana, d("1"), d("15"), "")

	require.NoError(t, c.RemoveSection(verduras, cart.DeleteItems, ""))
	assert.Equal(t, 1, c.Count())
	assertDec(t, "15", c.Total())
}

func TestItems_OrdenPorSeccion(t *testing.T) {
	c := cart.New()
	c.EnableSections(true)
	primera := c.Sections()[0].ID
	segunda, _ := c.AddSection("Segunda")
	_, _ = c.Add(lechuga, d("1"), d("8"), segunda)
	_, _ = c.Add(manzana, d("1"), d("15"), primera)

	items := c.Items()
	require.Len(t, items, 2)
	assert.Equal(t, primera, items[0].SeccionID)
	assert.Equal(t, segunda, items[1].SeccionID)
	assert.Len(t, c.ItemsBySection(segunda), 1)
}

// ──────────────────────────────────────────────────────────────────────────────
// Documento JSON
// ──────────────────────────────────────────────────────────────────────────────

func TestDocumento_IdaYVuelta(t *testing.T) {
	now := time.Date(2026, 10, 17, 10, 0, 0, 0, time.UTC)

	sinSecciones := cart.New()
	_, _ = sinSecciones.Add(manzana, d("2"), d("15.00"), "")
	_, _ = sinSecciones.Add(platano, d("1.125"), d("12.40"), "")

	conSecciones := cart.New()
	conSecciones.EnableSections(true)
	_ = conSecciones.RenameSection(conSecciones.Sections()[0].ID, "Frutas")
	verduras, _ := conSecciones.AddSection("Verduras")
	_, _ = conSecciones.Add(lechuga, d("4"), d("7.5"), verduras)
	_, _ = conSecciones.Add(manzana, d("2"), d("15"), "")

	for name, c := range map[string]*cart.Cart{"vacío": cart.New(), "sin secciones": sinSecciones, "con secciones": conSecciones} {
		t.Run(name, func(t *testing.T) {
			raw, err := c.Marshal(now)
			require.NoError(t, err)
			back, err := cart.Unmarshal(raw)
			require.NoError(t, err)
			assertSameCart(t, c, back)
			assertDec(t, c.Total().String(), back.Total())
		})
	}
}

func TestDocumento_FormaJSON(t *testing.T) {
	c := cart.New()
	c.EnableSections(true)
	first := c.Sections()[0].ID
	_, _ = c.Add(manzana, d("2"), d("15"), "")

	raw, err := c.Marshal(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	require.NoError(t, err)

	var generic map[string]interface{}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	require.NoError(t, dec.Decode(&generic))

	assert.Equal(t, true, generic["sectioning_enabled"])
	assert.Equal(t, "2026-01-02T03:04:05Z", generic["timestamp"])
	items := generic["items"].(map[string]interface{})
	item := items[cart.ItemKey(1, first)].(map[string]interface{})
	assert.Equal(t, json.Number("2"), item["cantidad"])
	assert.Equal(t, json.Number("15.00"), item["precio_unitario"])
	assert.Equal(t, json.Number("30.00"), item["subtotal"])
	assert.Equal(t, first, item["seccion_id"])
	secciones := generic["secciones"].(map[string]interface{})
	assert.Contains(t, secciones, first)
}

func TestDocumento_ConservaOrdenDeSecciones(t *testing.T) {
	raw := []byte(`{"sectioning_enabled":true,
		"secciones":{"seccion_9":{"id":"seccion_9","nombre":"Zeta"},"seccion_2":{"id":"seccion_2","nombre":"Alfa"}},
		"items":{},"timestamp":"2026-01-01T00:00:00Z"}`)
	c, err := cart.Unmarshal(raw)
	require.NoError(t, err)
	secs := c.Sections()
	require.Len(t, secs, 2)
	assert.Equal(t, "Zeta", secs[0].Nombre)
	assert.Equal(t, "Alfa", secs[1].Nombre)

	id, err := c.AddSection("Nueva")
	require.NoError(t, err)
	assert.Equal(t, "seccion_10", id)
}

func TestDocumento_AceptaImportesComoTexto(t *testing.T) {
	raw := []byte(`{"sectioning_enabled":false,"secciones":{},
		"items":{"5":{"id_producto":5,"nombre_producto":"Uva","cantidad":"1.5","precio_unitario":"40","unidad_producto":"kg","seccion_id":null,"subtotal":"0"}},
		"timestamp":"2026-01-01T00:00:00Z"}`)
	c, err := cart.Unmarshal(raw)
	require.NoError(t, err)
	assertDec(t, "60", c.Total())
}

func TestDocumento_InvariantesRechazados(t *testing.T) {
	cases := map[string]string{
		"sección inexistente": `{"sectioning_enabled":true,"secciones":{"seccion_1":{"id":"seccion_1","nombre":"A"}},
			"items":{"1_x":{"id_producto":1,"nombre_producto":"A","cantidad":1,"precio_unitario":1,"unidad_producto":"kg","seccion_id":"x","subtotal":1}}}`,
		"cantidad cero": `{"sectioning_enabled":false,"secciones":{},
			"items":{"1":{"id_producto":1,"nombre_producto":"A","cantidad":0,"precio_unitario":1,"unidad_producto":"kg","seccion_id":null,"subtotal":0}}}`,
		"secciones activas sin secciones": `{"sectioning_enabled":true,"secciones":{},"items":{}}`,
		"no es objeto":                    `[1,2]`,
	}
	for name, raw := range cases {
		_, err := cart.Unmarshal([]byte(raw))
		assert.Error(t, err, name)
	}
}

func TestUnmarshal_VacioEsCarritoVacio(t *testing.T) {
	for _, raw := range []string{"", "null", "  "} {
		c, err := cart.Unmarshal([]byte(raw))
		require.NoError(t, err)
		assert.Equal(t, 0, c.Count())
	}
}

// El subtotal de cada línea es exacto; sólo el total se redondea.
func TestTotal_RedondeaSoloLaSuma(t *testing.T) {
	c := cart.New()
	for _, p := range []cart.Product{manzana, platano, lechuga} {
		_, err := c.Add(p, d("0.3333"), d("1.00"), "")
		require.NoError(t, err)
	}
	for _, it := range c.Items() {
		assertDec(t, "0.3333", it.Subtotal)
	}
	assertDec(t, "1.00", c.Total())
}
