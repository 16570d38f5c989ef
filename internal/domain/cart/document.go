package cart

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/disfruleg/disfruleg-api/internal/domain/money"
)

// Document forma JSON del carrito guardada tal cual en ordenes_guardadas.datos_carrito.
// Los importes van como números JSON (json.Number), nunca como float.
type Document struct {
	SectioningEnabled bool                `json:"sectioning_enabled"`
	Secciones         Ordered[SectionDoc] `json:"secciones"`
	Items             Ordered[ItemDoc]    `json:"items"`
	Timestamp         string              `json:"timestamp"`
}

// SectionDoc sección en el documento.
type SectionDoc struct {
	ID     string `json:"id"`
	Nombre string `json:"nombre"`
}

// ItemDoc línea en el documento.
type ItemDoc struct {
	IDProducto     int64       `json:"id_producto"`
	NombreProducto string      `json:"nombre_producto"`
	Cantidad       json.Number `json:"cantidad"`
	PrecioUnitario json.Number `json:"precio_unitario"`
	UnidadProducto string      `json:"unidad_producto"`
	SeccionID      *string     `json:"seccion_id"`
	Subtotal       json.Number `json:"subtotal"`
}

// ToDocument serializa el carrito con la marca de tiempo now (ISO-8601).
func (c *Cart) ToDocument(now time.Time) Document {
	doc := Document{
		SectioningEnabled: c.sectioning,
		Timestamp:         now.Format(time.RFC3339),
	}
	for _, s := range c.sections {
		doc.Secciones.Set(s.ID, SectionDoc{ID: s.ID, Nombre: s.Nombre})
	}
	for _, it := range c.items {
		var sid *string
		if it.SeccionID != "" {
			v := it.SeccionID
			sid = &v
		}
		doc.Items.Set(it.Key, ItemDoc{
			IDProducto:     it.ProductoID,
			NombreProducto: it.NombreProducto,
			Cantidad:       json.Number(it.Cantidad.String()),
			PrecioUnitario: json.Number(it.PrecioUnitario.StringFixed(money.MoneyScale)),
			UnidadProducto: it.Unidad,
			SeccionID:      sid,
			Subtotal:       json.Number(it.Subtotal.StringFixed(money.MoneyScale)),
		})
	}
	return doc
}

// FromDocument reconstruye el carrito validando sus invariantes. Los subtotales se recalculan;
// las claves se derivan de (producto, sección) y las líneas repetidas se fusionan.
func FromDocument(doc Document) (*Cart, error) {
	c := New()
	c.sectioning = doc.SectioningEnabled
	for _, k := range doc.Secciones.Keys() {
		s, _ := doc.Secciones.Get(k)
		id := s.ID
		if id == "" {
			id = k
		}
		if c.sectionIndex(id) >= 0 {
			return nil, fmt.Errorf("cart: sección duplicada %q", id)
		}
		c.sections = append(c.sections, Section{ID: id, Nombre: s.Nombre})
	}
	c.nextSection = nextSectionCounter(c.sections)
	if c.sectioning && len(c.sections) == 0 {
		return nil, fmt.Errorf("%w: secciones activas sin secciones definidas", ErrUnknownSection)
	}

	for _, k := range doc.Items.Keys() {
		d, _ := doc.Items.Get(k)
		qty, err := decimal.NewFromString(string(d.Cantidad))
		if err != nil {
			return nil, fmt.Errorf("cart: cantidad de %q: %w", k, err)
		}
		price, err := decimal.NewFromString(string(d.PrecioUnitario))
		if err != nil {
			return nil, fmt.Errorf("cart: precio de %q: %w", k, err)
		}
		sid := ""
		if c.sectioning {
			if d.SeccionID == nil || c.sectionIndex(*d.SeccionID) < 0 {
				return nil, fmt.Errorf("%w: línea %q", ErrUnknownSection, k)
			}
			sid = *d.SeccionID
		}
		p := Product{ID: d.IDProducto, Nombre: d.NombreProducto, Unidad: d.UnidadProducto}
		if _, err := c.Add(p, qty, price, sid); err != nil {
			return nil, fmt.Errorf("línea %q: %w", k, err)
		}
	}
	return c, nil
}

// Marshal serializa el carrito a JSON.
func (c *Cart) Marshal(now time.Time) ([]byte, error) {
	return json.Marshal(c.ToDocument(now))
}

// Unmarshal reconstruye un carrito desde datos_carrito. Vacío o null es un carrito vacío.
func Unmarshal(data []byte) (*Cart, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		return New(), nil
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("cart: documento inválido: %w", err)
	}
	return FromDocument(doc)
}

func nextSectionCounter(sections []Section) int {
	next := 1
	for _, s := range sections {
		if n, err := strconv.Atoi(strings.TrimPrefix(s.ID, "seccion_")); err == nil && n >= next {
			next = n + 1
		}
	}
	return next
}
