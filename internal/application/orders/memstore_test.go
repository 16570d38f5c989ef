package orders_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/disfruleg/disfruleg-api/internal/domain"
	"github.com/disfruleg/disfruleg-api/internal/domain/entity"
	"github.com/disfruleg/disfruleg-api/internal/domain/pricing"
	"github.com/disfruleg/disfruleg-api/internal/domain/repository"
)

// ============================================================================
// MEMORY STORE
// ============================================================================

// memStore base en memoria con transacciones por copia: Run guarda una instantánea y la
// restaura si fn falla.
type memStore struct {
	seq       int64 // 0 = fila inexistente
	orders    []entity.SavedOrder
	facturas  map[int64]entity.Factura
	secciones []entity.SeccionFactura
	detalles  []entity.DetalleFactura
	metadata  map[int64]bool
	deudas    map[int64]entity.Deuda
	productos map[int64]entity.Producto
	clientes  map[int64]entity.ClienteDetalle
	nextID    int64

	// Error injection
	failDebtCreate error
	failStock      error
}

func newMemStore() *memStore {
	return &memStore{
		facturas:  make(map[int64]entity.Factura),
		metadata:  make(map[int64]bool),
		deudas:    make(map[int64]entity.Deuda),
		productos: make(map[int64]entity.Producto),
		clientes:  make(map[int64]entity.ClienteDetalle),
		nextID:    100,
	}
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memStore) snapshot() *memStore {
	c := *m
	c.orders = append([]entity.SavedOrder(nil), m.orders...)
	c.secciones = append([]entity.SeccionFactura(nil), m.secciones...)
	c.detalles = append([]entity.DetalleFactura(nil), m.detalles...)
	c.facturas = cloneMap(m.facturas)
	c.metadata = cloneMap(m.metadata)
	c.deudas = cloneMap(m.deudas)
	c.productos = cloneMap(m.productos)
	c.clientes = cloneMap(m.clientes)
	return &c
}

func cloneMap[K comparable, V any](in map[K]V) map[K]V {
	out := make(map[K]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// Run implementa repository.TxRunner.
func (m *memStore) Run(ctx context.Context, fn func(tx repository.Tx) error) error {
	snap := m.snapshot()
	if err := fn(m); err != nil {
		failDebt, failStock := m.failDebtCreate, m.failStock
		*m = *snap
		m.failDebtCreate, m.failStock = failDebt, failStock
		return err
	}
	return nil
}

func (m *memStore) Folios() repository.FolioRepository           { return memFolios{m} }
func (m *memStore) SavedOrders() repository.SavedOrderRepository { return memOrders{m} }
func (m *memStore) Invoices() repository.InvoiceRepository       { return memInvoices{m} }
func (m *memStore) Debts() repository.DebtRepository             { return memDebts{m} }
func (m *memStore) Products() repository.ProductRepository       { return memProducts{m} }

func (m *memStore) activeOrder(folio int64) *entity.SavedOrder {
	for i := range m.orders {
		if m.orders[i].Folio == folio && m.orders[i].Activo {
			return &m.orders[i]
		}
	}
	return nil
}

func (m *memStore) addProduct(id int64, nombre string, especial bool) {
	m.productos[id] = entity.Producto{ID: id, Nombre: nombre, Unidad: "kg", Stock: decimal.NewFromInt(100), EsEspecial: especial}
}

func (m *memStore) addClient(id, grupo, tipo int64) {
	m.clientes[id] = entity.ClienteDetalle{
		Cliente:    entity.Cliente{ID: id, Nombre: fmt.Sprintf("Cliente %d", id), GrupoID: grupo, TipoClienteID: tipo},
		GrupoClave: "G", TipoNombre: "Mayoreo", Descuento: decimal.NewFromInt(10),
	}
}

func (m *memStore) debtByInvoice(invoiceID int64) (entity.Deuda, bool) {
	for _, d := range m.deudas {
		if d.FacturaID == invoiceID {
			return d, true
		}
	}
	return entity.Deuda{}, false
}

// ── folios ──

type memFolios struct{ m *memStore }

func (r memFolios) LockSequence(ctx context.Context) (int64, error) {
	if r.m.seq == 0 {
		r.m.seq = 1
	}
	return r.m.seq, nil
}

func (r memFolios) LowestFreeFolio(ctx context.Context, below int64) (int64, bool, error) {
	for f := int64(1); f < below; f++ {
		if r.m.activeOrder(f) != nil {
			continue
		}
		if inv, _ := r.Invoiced(ctx, f); inv {
			continue
		}
		return f, true, nil
	}
	return 0, false, nil
}

func (r memFolios) SetNext(ctx context.Context, next int64) error {
	r.m.seq = next
	return nil
}

func (r memFolios) Invoiced(ctx context.Context, folio int64) (bool, error) {
	for _, f := range r.m.facturas {
		if f.Folio == folio {
			return true, nil
		}
	}
	return false, nil
}

func (r memFolios) InUse(ctx context.Context, folio int64) (bool, error) {
	if r.m.activeOrder(folio) != nil {
		return true, nil
	}
	return r.Invoiced(ctx, folio)
}

// ── ordenes_guardadas ──

type memOrders struct{ m *memStore }

func (r memOrders) Create(ctx context.Context, o *entity.SavedOrder) error {
	if o.Activo && r.m.activeOrder(o.Folio) != nil {
		return fmt.Errorf("insert saved order: %w", domain.ErrIntegrityViolation)
	}
	r.m.orders = append(r.m.orders, *o)
	return nil
}

func (r memOrders) GetByFolio(ctx context.Context, folio int64) (*entity.SavedOrder, error) {
	o := r.m.activeOrder(folio)
	if o == nil {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (r memOrders) GetView(ctx context.Context, folio int64) (*entity.SavedOrderView, error) {
	o := r.m.activeOrder(folio)
	if o == nil {
		return nil, nil
	}
	return r.view(*o), nil
}

func (r memOrders) view(o entity.SavedOrder) *entity.SavedOrderView {
	c := r.m.clientes[o.ClienteID]
	return &entity.SavedOrderView{
		SavedOrder: o, NombreCliente: c.Nombre, GrupoID: c.GrupoID,
		TipoClienteID: c.TipoClienteID, TipoNombre: c.TipoNombre, Descuento: c.Descuento,
	}
}

func (r memOrders) UpdateCart(ctx context.Context, folio int64, doc json.RawMessage, total decimal.Decimal) (bool, error) {
	o := r.m.activeOrder(folio)
	if o == nil || o.Estado != entity.EstadoGuardada {
		return false, nil
	}
	o.DatosCarrito = append(json.RawMessage(nil), doc...)
	o.TotalEstimado = total
	return true, nil
}

func (r memOrders) Deactivate(ctx context.Context, folio int64) (bool, error) {
	o := r.m.activeOrder(folio)
	if o == nil || o.Estado != entity.EstadoGuardada {
		return false, nil
	}
	o.Activo = false
	return true, nil
}

func (r memOrders) ListByEstado(ctx context.Context, estado, creator string, limit int) ([]*entity.SavedOrderView, error) {
	var out []*entity.SavedOrderView
	for _, o := range r.m.orders {
		if !o.Activo || o.Estado != estado || (creator != "" && o.UsuarioCreador != creator) {
			continue
		}
		out = append(out, r.view(o))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Folio < out[j].Folio })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r memOrders) MarkRegistered(ctx context.Context, folio, invoiceID int64) (bool, error) {
	o := r.m.activeOrder(folio)
	if o == nil || o.Estado != entity.EstadoGuardada {
		return false, nil
	}
	o.Estado = entity.EstadoRegistrada
	o.FacturaID = &invoiceID
	return true, nil
}

// ── factura ──

type memInvoices struct{ m *memStore }

func (r memInvoices) Create(ctx context.Context, f *entity.Factura) error {
	for _, existing := range r.m.facturas {
		if existing.Folio == f.Folio {
			return fmt.Errorf("insert factura: %w", domain.ErrIntegrityViolation)
		}
	}
	f.ID = r.m.id()
	r.m.facturas[f.ID] = *f
	return nil
}

func (r memInvoices) CreateSection(ctx context.Context, s *entity.SeccionFactura) error {
	s.ID = r.m.id()
	r.m.secciones = append(r.m.secciones, *s)
	return nil
}

func (r memInvoices) CreateDetail(ctx context.Context, d *entity.DetalleFactura) error {
	d.ID = r.m.id()
	r.m.detalles = append(r.m.detalles, *d)
	return nil
}

func (r memInvoices) SetMetadata(ctx context.Context, md entity.FacturaMetadata) error {
	r.m.metadata[md.FacturaID] = md.UsaSecciones
	return nil
}

func (r memInvoices) GetCompleta(ctx context.Context, id int64) (*entity.FacturaCompleta, error) {
	f, ok := r.m.facturas[id]
	if !ok {
		return nil, nil
	}
	out := &entity.FacturaCompleta{Factura: f, UsaSecciones: r.m.metadata[id]}
	for _, s := range r.m.secciones {
		if s.FacturaID == id {
			out.Secciones = append(out.Secciones, s)
		}
	}
	for _, d := range r.m.detalles {
		if d.FacturaID == id {
			out.Detalles = append(out.Detalles, d)
		}
	}
	if d, ok := r.m.debtByInvoice(id); ok {
		out.Deuda = &d
	}
	return out, nil
}

// ── deuda ──

type memDebts struct{ m *memStore }

var errNotUsed = errors.New("memstore: no usado en estas pruebas")

func (r memDebts) Create(ctx context.Context, d *entity.Deuda) error {
	if r.m.failDebtCreate != nil {
		return r.m.failDebtCreate
	}
	d.ID = r.m.id()
	r.m.deudas[d.ID] = *d
	return nil
}

func (r memDebts) GetByID(ctx context.Context, id int64) (*entity.Deuda, error) {
	d, ok := r.m.deudas[id]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (r memDebts) GetForUpdate(ctx context.Context, id int64) (*entity.Deuda, error) {
	return r.GetByID(ctx, id)
}

func (r memDebts) OpenByClientForUpdate(ctx context.Context, clientID int64) ([]*entity.Deuda, error) {
	return nil, errNotUsed
}

func (r memDebts) ApplyPayment(ctx context.Context, d *entity.Deuda) error { return errNotUsed }

func (r memDebts) ClientsWithDebt(ctx context.Context) ([]*entity.EstadoCuentaCliente, error) {
	return nil, errNotUsed
}

func (r memDebts) ClientDebts(ctx context.Context, clientID int64) ([]*entity.DeudaDetallada, error) {
	return nil, errNotUsed
}

func (r memDebts) Detailed(ctx context.Context, id int64) (*entity.DeudaDetallada, error) {
	return nil, errNotUsed
}

func (r memDebts) PaymentHistory(ctx context.Context, f entity.FiltroHistorialPagos) ([]*entity.PagoHistorial, error) {
	return nil, errNotUsed
}

func (r memDebts) Stats(ctx context.Context) (*entity.EstadisticasDeuda, error) {
	return nil, errNotUsed
}

// ── producto ──

type memProducts struct{ m *memStore }

func (r memProducts) Create(ctx context.Context, p *entity.Producto) error {
	p.ID = r.m.id()
	r.m.productos[p.ID] = *p
	return nil
}

func (r memProducts) GetByID(ctx context.Context, id int64) (*entity.Producto, error) {
	p, ok := r.m.productos[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r memProducts) Update(ctx context.Context, p *entity.Producto) error {
	r.m.productos[p.ID] = *p
	return nil
}

func (r memProducts) List(ctx context.Context, search string, limit, offset int) ([]*entity.Producto, error) {
	return nil, errNotUsed
}

func (r memProducts) DecrementStock(ctx context.Context, id int64, qty decimal.Decimal) error {
	if r.m.failStock != nil {
		return r.m.failStock
	}
	p, ok := r.m.productos[id]
	if !ok {
		return fmt.Errorf("decrement stock %d: %w", id, domain.ErrNotFound)
	}
	p.Stock = p.Stock.Sub(qty)
	r.m.productos[id] = p
	return nil
}

// ── precios ──

// fixedPrices precio base por producto con el descuento del tipo de cliente.
type fixedPrices struct {
	base     map[int64]decimal.Decimal
	discount decimal.Decimal
}

func (f fixedPrices) PriceFor(ctx context.Context, productID, groupID, typeID int64) (pricing.Quote, error) {
	return pricing.Compute(f.base[productID], f.discount)
}
