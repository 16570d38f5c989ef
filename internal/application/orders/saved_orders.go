package orders

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/disfruleg/disfruleg-api/internal/domain"
	"github.com/disfruleg/disfruleg-api/internal/domain/authz"
	"github.com/disfruleg/disfruleg-api/internal/domain/cart"
	"github.com/disfruleg/disfruleg-api/internal/domain/entity"
	"github.com/disfruleg/disfruleg-api/internal/domain/money"
	"github.com/disfruleg/disfruleg-api/internal/domain/pricing"
	"github.com/disfruleg/disfruleg-api/internal/domain/repository"
	"github.com/disfruleg/disfruleg-api/pkg/logger"
)

// DefaultHistoryLimit filas del historial cuando no se indica límite.
const DefaultHistoryLimit = 50

// PriceQuoter resuelve el precio de venta de un producto para un grupo y tipo de cliente.
type PriceQuoter interface {
	PriceFor(ctx context.Context, productID, groupID, typeID int64) (pricing.Quote, error)
}

// AddItemInput línea que se agrega a una orden guardada. PrecioUnitario nil toma el precio del cliente.
type AddItemInput struct {
	ProductoID     int64
	Cantidad       decimal.Decimal
	PrecioUnitario *decimal.Decimal
	SeccionID      string
}

// AddItemResult estado de la orden tras agregar la línea.
type AddItemResult struct {
	Key            string
	PrecioUnitario decimal.Decimal
	Total          decimal.Decimal
	Count          int
}

// SavedOrderService operaciones sobre órdenes guardadas para un usuario autenticado.
type SavedOrderService struct {
	orders       repository.SavedOrderRepository
	products     repository.ProductRepository
	folios       *FolioAllocator
	prices       PriceQuoter
	gate         authz.Gate
	log          *logger.Logger
	historyLimit int
	now          func() time.Time
}

// NewSavedOrderService construye el servicio. orders y products operan fuera de transacción (pool).
func NewSavedOrderService(
	orders repository.SavedOrderRepository,
	products repository.ProductRepository,
	folios *FolioAllocator,
	prices PriceQuoter,
	log *logger.Logger,
	historyLimit int,
) *SavedOrderService {
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	return &SavedOrderService{
		orders:       orders,
		products:     products,
		folios:       folios,
		prices:       prices,
		log:          log,
		historyLimit: historyLimit,
		now:          time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (s *SavedOrderService) WithClock(now func() time.Time) *SavedOrderService {
	s.now = now
	return s
}

// Load devuelve la orden activa del folio con datos de cliente y tipo.
func (s *SavedOrderService) Load(ctx context.Context, folio int64) (*entity.SavedOrderView, error) {
	v, err := s.orders.GetView(ctx, folio)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, fmt.Errorf("orden %d: %w", folio, domain.ErrNotFound)
	}
	return v, nil
}

// Update reemplaza el carrito de una orden guardada. Última escritura gana.
// Las líneas nuevas o con más cantidad de un producto especial pasan por sell_product.
func (s *SavedOrderService) Update(ctx context.Context, p authz.Principal, folio int64, doc json.RawMessage, total decimal.Decimal, elevated bool) error {
	o, err := s.editable(ctx, p, folio)
	if err != nil {
		return err
	}
	c, err := cart.Unmarshal(doc)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if total.IsNegative() {
		return fmt.Errorf("%w: total negativo", domain.ErrInvalidInput)
	}
	before, err := cart.Unmarshal(o.DatosCarrito)
	if err != nil {
		return fmt.Errorf("orden %d: %w", folio, err)
	}
	if err := authorizeSpecials(ctx, s.gate, s.products, p, before, c, elevated); err != nil {
		return err
	}
	if emptyDoc(doc) {
		if doc, err = c.Marshal(s.now()); err != nil {
			return err
		}
	}
	if total.IsZero() {
		total = c.Total()
	}
	return s.write(ctx, folio, doc, money.Round(total))
}

// Reserve guarda una orden nueva en el folio indicado a nombre de p. false si el folio está ocupado.
func (s *SavedOrderService) Reserve(ctx context.Context, p authz.Principal, in ReserveInput, elevated bool) (bool, error) {
	in.Usuario = p.Username
	if err := s.authorizeNew(ctx, p, in.Doc, elevated); err != nil {
		return false, err
	}
	return s.folios.Reserve(ctx, in)
}

// ReserveNext guarda una orden nueva en el siguiente folio libre a nombre de p.
func (s *SavedOrderService) ReserveNext(ctx context.Context, p authz.Principal, in ReserveInput, elevated bool) (int64, error) {
	in.Usuario = p.Username
	if err := s.authorizeNew(ctx, p, in.Doc, elevated); err != nil {
		return 0, err
	}
	return s.folios.ReserveNext(ctx, in)
}

// authorizeNew revisa los productos especiales de un carrito que todavía no tiene orden.
func (s *SavedOrderService) authorizeNew(ctx context.Context, p authz.Principal, doc json.RawMessage, elevated bool) error {
	c, err := cart.Unmarshal(doc)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return authorizeSpecials(ctx, s.gate, s.products, p, nil, c, elevated)
}

// AddItem agrega una línea al carrito guardado con el precio del cliente. Un producto especial
// exige admin o re-autenticación de admin (elevated).
func (s *SavedOrderService) AddItem(ctx context.Context, p authz.Principal, folio int64, in AddItemInput, elevated bool) (*AddItemResult, error) {
	o, err := s.editable(ctx, p, folio)
	if err != nil {
		return nil, err
	}
	prod, err := s.products.GetByID(ctx, in.ProductoID)
	if err != nil {
		return nil, err
	}
	if prod == nil {
		return nil, fmt.Errorf("producto %d: %w", in.ProductoID, domain.ErrNotFound)
	}
	if d := s.gate.May(p, authz.OpSellProduct, authz.Context{ProductSpecial: prod.EsEspecial, AdminChallengePassed: elevated}); !d.Allowed {
		return nil, d.Err()
	}

	var price decimal.Decimal
	if in.PrecioUnitario != nil {
		price = *in.PrecioUnitario
	} else {
		q, err := s.prices.PriceFor(ctx, prod.ID, o.GrupoID, o.TipoClienteID)
		if err != nil {
			return nil, err
		}
		if !q.Sellable() {
			return nil, fmt.Errorf("%w: %s no tiene precio para el grupo del cliente", domain.ErrInvalidInput, prod.Nombre)
		}
		price = q.Final
	}

	c, err := cart.Unmarshal(o.DatosCarrito)
	if err != nil {
		return nil, fmt.Errorf("orden %d: %w", folio, err)
	}
	key, err := c.Add(cart.Product{ID: prod.ID, Nombre: prod.Nombre, Unidad: prod.Unidad}, in.Cantidad, price, in.SeccionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	doc, err := c.Marshal(s.now())
	if err != nil {
		return nil, err
	}
	if err := s.write(ctx, folio, doc, c.Total()); err != nil {
		return nil, err
	}
	it, _ := c.Get(key)
	return &AddItemResult{Key: key, PrecioUnitario: it.PrecioUnitario, Total: c.Total(), Count: c.Count()}, nil
}

// SoftDelete libera el folio de una orden guardada; false si no había orden activa.
func (s *SavedOrderService) SoftDelete(ctx context.Context, p authz.Principal, folio int64) (bool, error) {
	o, err := s.orders.GetByFolio(ctx, folio)
	if err != nil {
		return false, err
	}
	if o == nil {
		return false, nil
	}
	if d := s.gate.May(p, authz.OpEditOrder, authz.Context{Owner: o.UsuarioCreador}); !d.Allowed {
		return false, d.Err()
	}
	return s.folios.Release(ctx, folio)
}

// ListActive órdenes guardadas visibles para p: las propias, o todas si es admin.
func (s *SavedOrderService) ListActive(ctx context.Context, p authz.Principal) ([]*entity.SavedOrderView, error) {
	return s.orders.ListByEstado(ctx, entity.EstadoGuardada, visibleCreator(p), 0)
}

// ListHistory órdenes registradas visibles para p, más recientes primero.
func (s *SavedOrderService) ListHistory(ctx context.Context, p authz.Principal, limit int) ([]*entity.SavedOrderView, error) {
	if limit <= 0 {
		limit = s.historyLimit
	}
	return s.orders.ListByEstado(ctx, entity.EstadoRegistrada, visibleCreator(p), limit)
}

// Duplicate copia el carrito de una orden (guardada o registrada) a un folio nuevo
// para el mismo cliente, a nombre de p. Copiar productos especiales cuenta como venderlos.
func (s *SavedOrderService) Duplicate(ctx context.Context, p authz.Principal, folio int64, elevated bool) (int64, error) {
	src, err := s.Load(ctx, folio)
	if err != nil {
		return 0, err
	}
	c, err := cart.Unmarshal(src.DatosCarrito)
	if err != nil {
		return 0, fmt.Errorf("orden %d: %w", folio, err)
	}
	if err := authorizeSpecials(ctx, s.gate, s.products, p, nil, c, elevated); err != nil {
		return 0, err
	}
	doc, err := c.Marshal(s.now())
	if err != nil {
		return 0, err
	}
	nuevo, err := s.folios.ReserveNext(ctx, ReserveInput{
		ClienteID: src.ClienteID,
		Usuario:   p.Username,
		Doc:       doc,
		Total:     c.Total(),
	})
	if err != nil {
		return 0, err
	}
	s.log.Info().Int64("folio", nuevo).Int64("origen", folio).Str("usuario", p.Username).Msg("orden duplicada")
	return nuevo, nil
}

// editable carga la orden y verifica que admita cambios y que p pueda hacerlos.
func (s *SavedOrderService) editable(ctx context.Context, p authz.Principal, folio int64) (*entity.SavedOrderView, error) {
	o, err := s.orders.GetView(ctx, folio)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, fmt.Errorf("orden %d: %w", folio, domain.ErrNotFound)
	}
	if !o.Editable() {
		return nil, fmt.Errorf("%w: la orden %d está %s", domain.ErrIllegalState, folio, o.Estado)
	}
	if d := s.gate.May(p, authz.OpEditOrder, authz.Context{Owner: o.UsuarioCreador}); !d.Allowed {
		return nil, d.Err()
	}
	return o, nil
}

// write persiste el carrito; si la orden cambió de estado entre la lectura y la escritura
// (confirmada o liberada por otro usuario) lo reporta como tal.
func (s *SavedOrderService) write(ctx context.Context, folio int64, doc json.RawMessage, total decimal.Decimal) error {
	ok, err := s.orders.UpdateCart(ctx, folio, doc, total)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	o, err := s.orders.GetByFolio(ctx, folio)
	if err != nil {
		return err
	}
	if o == nil {
		return fmt.Errorf("orden %d: %w", folio, domain.ErrNotFound)
	}
	return fmt.Errorf("%w: la orden %d está %s", domain.ErrIllegalState, folio, o.Estado)
}

// emptyDoc true si el documento viene vacío o null; se guarda como carrito vacío.
func emptyDoc(doc json.RawMessage) bool {
	t := strings.TrimSpace(string(doc))
	return t == "" || t == "null"
}

func visibleCreator(p authz.Principal) string {
	if p.IsAdmin() {
		return ""
	}
	return p.Username
}
