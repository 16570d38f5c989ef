// Package cart modela el recibo en captura: líneas por producto (y sección, si se usan),
// con cantidades y precios decimales, y su documento JSON guardado en datos_carrito.
package cart

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/disfruleg/disfruleg-api/internal/domain/money"
)

// DefaultSectionName nombre de la sección creada al activar secciones sin ninguna definida.
const DefaultSectionName = "General"

var (
	ErrInvalidQuantity = errors.New("cart: la cantidad debe ser mayor a cero")
	ErrInvalidPrice    = errors.New("cart: el precio no puede ser negativo")
	ErrItemNotFound    = errors.New("cart: línea no encontrada")
	ErrUnknownSection  = errors.New("cart: sección inexistente")
	ErrSectionNotEmpty = errors.New("cart: la sección tiene productos")
	ErrLastSection     = errors.New("cart: no se puede eliminar la última sección")
	ErrInvalidSection  = errors.New("cart: nombre de sección vacío")
)

// Product datos mínimos del producto para agregarlo al carrito.
type Product struct {
	ID     int64
	Nombre string
	Unidad string
}

// Section agrupación con nombre dentro del recibo.
type Section struct {
	ID     string
	Nombre string
}

// Item línea del carrito. Subtotal = Cantidad × PrecioUnitario, sin redondear.
type Item struct {
	Key            string
	ProductoID     int64
	NombreProducto string
	Unidad         string
	Cantidad       decimal.Decimal
	PrecioUnitario decimal.Decimal
	SeccionID      string // "" sin sección
	Subtotal       decimal.Decimal
}

// RemoveMode qué hacer con las líneas de una sección que se elimina.
type RemoveMode int

const (
	// RequireEmpty falla con ErrSectionNotEmpty si la sección tiene líneas.
	RequireEmpty RemoveMode = iota
	// MoveItems mueve las líneas a la sección destino (sumando cantidades si ya existen).
	MoveItems
	// DeleteItems elimina las líneas junto con la sección.
	DeleteItems
)

// Cart carrito en memoria. No es seguro para uso concurrente.
type Cart struct {
	sectioning  bool
	sections    []Section
	items       []*Item
	nextSection int
}

// New carrito vacío sin secciones.
func New() *Cart {
	return &Cart{nextSection: 1}
}

// ItemKey clave de la línea: producto, o producto_sección cuando se usan secciones.
func ItemKey(productID int64, sectionID string) string {
	if sectionID == "" {
		return strconv.FormatInt(productID, 10)
	}
	return strconv.FormatInt(productID, 10) + "_" + sectionID
}

// SectioningEnabled indica si el carrito usa secciones.
func (c *Cart) SectioningEnabled() bool { return c.sectioning }

// Sections secciones en orden.
func (c *Cart) Sections() []Section {
	out := make([]Section, len(c.sections))
	copy(out, c.sections)
	return out
}

// Add agrega cantidad del producto. Si la línea ya existe suma la cantidad y conserva su precio.
// Con secciones activas, sectionID vacío usa la primera sección.
func (c *Cart) Add(p Product, qty, unitPrice decimal.Decimal, sectionID string) (string, error) {
	if !qty.IsPositive() {
		return "", ErrInvalidQuantity
	}
	if unitPrice.IsNegative() {
		return "", ErrInvalidPrice
	}
	sid := ""
	if c.sectioning {
		if sectionID == "" {
			sid = c.sections[0].ID
		} else if c.sectionIndex(sectionID) < 0 {
			return "", ErrUnknownSection
		} else {
			sid = sectionID
		}
	}
	key := ItemKey(p.ID, sid)
	if it := c.find(key); it != nil {
		it.Cantidad = money.RoundQty(it.Cantidad.Add(qty))
		it.recompute()
		return key, nil
	}
	it := &Item{
		Key:            key,
		ProductoID:     p.ID,
		NombreProducto: p.Nombre,
		Unidad:         p.Unidad,
		Cantidad:       money.RoundQty(qty),
		PrecioUnitario: money.Round(unitPrice),
		SeccionID:      sid,
	}
	it.recompute()
	c.items = append(c.items, it)
	return key, nil
}

// UpdateQty fija la cantidad de una línea; qty ≤ 0 la elimina.
func (c *Cart) UpdateQty(key string, qty decimal.Decimal) error {
	it := c.find(key)
	if it == nil {
		return ErrItemNotFound
	}
	if !qty.IsPositive() {
		c.Remove(key)
		return nil
	}
	it.Cantidad = money.RoundQty(qty)
	it.recompute()
	return nil
}

// UpdatePrice fija el precio unitario de una línea.
func (c *Cart) UpdatePrice(key string, price decimal.Decimal) error {
	if price.IsNegative() {
		return ErrInvalidPrice
	}
	it := c.find(key)
	if it == nil {
		return ErrItemNotFound
	}
	it.PrecioUnitario = money.Round(price)
	it.recompute()
	return nil
}

// Remove elimina una línea; false si no existía.
func (c *Cart) Remove(key string) bool {
	for i, it := range c.items {
		if it.Key == key {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return true
		}
	}
	return false
}

// Clear elimina todas las líneas; conserva las secciones.
func (c *Cart) Clear() {
	c.items = nil
}

// EnableSections activa o desactiva secciones sin perder líneas.
// Al activar crea una sección por defecto si no hay y asigna todas las líneas a la primera.
// Al desactivar quita la sección de cada línea; líneas del mismo producto se fusionan.
func (c *Cart) EnableSections(on bool) {
	if on == c.sectioning {
		return
	}
	c.sectioning = on
	if on {
		if len(c.sections) == 0 {
			_, _ = c.AddSection(DefaultSectionName)
		}
		first := c.sections[0].ID
		c.reassign(func(*Item) string { return first })
		return
	}
	c.reassign(func(*Item) string { return "" })
}

// AddSection crea una sección al final y devuelve su id.
func (c *Cart) AddSection(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrInvalidSection
	}
	id := c.newSectionID()
	c.sections = append(c.sections, Section{ID: id, Nombre: name})
	return id, nil
}

// RenameSection cambia el nombre de una sección.
func (c *Cart) RenameSection(id, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrInvalidSection
	}
	i := c.sectionIndex(id)
	if i < 0 {
		return ErrUnknownSection
	}
	c.sections[i].Nombre = name
	return nil
}

// RemoveSection elimina una sección. Si tiene líneas, mode decide: moverlas a target o borrarlas.
// Nunca elimina la última sección.
func (c *Cart) RemoveSection(id string, mode RemoveMode, target string) error {
	i := c.sectionIndex(id)
	if i < 0 {
		return ErrUnknownSection
	}
	if len(c.sections) == 1 {
		return ErrLastSection
	}
	if c.countIn(id) > 0 {
		switch mode {
		case MoveItems:
			if target == id || c.sectionIndex(target) < 0 {
				return ErrUnknownSection
			}
			c.reassign(func(it *Item) string {
				if it.SeccionID == id {
					return target
				}
				return it.SeccionID
			})
		case DeleteItems:
			kept := c.items[:0]
			for _, it := range c.items {
				if it.SeccionID != id {
					kept = append(kept, it)
				}
			}
			c.items = kept
		default:
			return ErrSectionNotEmpty
		}
	}
	c.sections = append(c.sections[:i], c.sections[i+1:]...)
	return nil
}

// Total suma exacta de subtotales, redondeada a 2 decimales al final.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.items {
		total = total.Add(it.Subtotal)
	}
	return money.Round(total)
}

// Count número de líneas.
func (c *Cart) Count() int { return len(c.items) }

// Get copia de la línea con esa clave.
func (c *Cart) Get(key string) (Item, bool) {
	if it := c.find(key); it != nil {
		return *it, true
	}
	return Item{}, false
}

// Items copia de las líneas: por orden de sección y luego de inserción.
func (c *Cart) Items() []Item {
	out := make([]Item, 0, len(c.items))
	for _, it := range c.items {
		out = append(out, *it)
	}
	if c.sectioning {
		order := make(map[string]int, len(c.sections))
		for i, s := range c.sections {
			order[s.ID] = i
		}
		sort.SliceStable(out, func(a, b int) bool {
			return order[out[a].SeccionID] < order[out[b].SeccionID]
		})
	}
	return out
}

// ItemsBySection líneas de una sección en orden de inserción.
func (c *Cart) ItemsBySection(id string) []Item {
	var out []Item
	for _, it := range c.items {
		if it.SeccionID == id {
			out = append(out, *it)
		}
	}
	return out
}

func (it *Item) recompute() {
	it.Subtotal = it.Cantidad.Mul(it.PrecioUnitario)
}

func (c *Cart) find(key string) *Item {
	for _, it := range c.items {
		if it.Key == key {
			return it
		}
	}
	return nil
}

func (c *Cart) sectionIndex(id string) int {
	for i, s := range c.sections {
		if s.ID == id {
			return i
		}
	}
	return -1
}

func (c *Cart) countIn(id string) int {
	n := 0
	for _, it := range c.items {
		if it.SeccionID == id {
			n++
		}
	}
	return n
}

func (c *Cart) newSectionID() string {
	for {
		id := fmt.Sprintf("seccion_%d", c.nextSection)
		c.nextSection++
		if c.sectionIndex(id) < 0 {
			return id
		}
	}
}

// reassign cambia la sección de las líneas y recalcula claves, fusionando colisiones
// (la primera línea conserva su precio y posición).
func (c *Cart) reassign(to func(*Item) string) {
	merged := make([]*Item, 0, len(c.items))
	byKey := make(map[string]*Item, len(c.items))
	for _, it := range c.items {
		sid := to(it)
		it.SeccionID = sid
		it.Key = ItemKey(it.ProductoID, sid)
		if prev, ok := byKey[it.Key]; ok {
			prev.Cantidad = money.RoundQty(prev.Cantidad.Add(it.Cantidad))
			prev.recompute()
			continue
		}
		byKey[it.Key] = it
		merged = append(merged, it)
	}
	c.items = merged
}
