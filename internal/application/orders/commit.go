package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/disfruleg/disfruleg-api/internal/domain"
	"github.com/disfruleg/disfruleg-api/internal/domain/authz"
	"github.com/disfruleg/disfruleg-api/internal/domain/cart"
	"github.com/disfruleg/disfruleg-api/internal/domain/entity"
	"github.com/disfruleg/disfruleg-api/internal/domain/money"
	"github.com/disfruleg/disfruleg-api/internal/domain/repository"
	"github.com/disfruleg/disfruleg-api/pkg/logger"
)

// CommitResult factura creada a partir de una orden guardada.
type CommitResult struct {
	InvoiceID int64
	Folio     int64
	DebtID    int64
	Total     decimal.Decimal
}

// InvoiceCommitter convierte una orden guardada en factura inmutable con su deuda.
type InvoiceCommitter struct {
	tx   repository.TxRunner
	gate authz.Gate
	log  *logger.Logger
	now  func() time.Time
}

// NewInvoiceCommitter construye el caso de uso.
func NewInvoiceCommitter(tx repository.TxRunner, log *logger.Logger) *InvoiceCommitter {
	return &InvoiceCommitter{tx: tx, log: log, now: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (uc *InvoiceCommitter) WithClock(now func() time.Time) *InvoiceCommitter {
	uc.now = now
	return uc
}

// Commit confirma la orden del folio en una sola transacción, en este orden:
// factura → secciones → líneas (con descuento de stock) → metadata → deuda → orden registrada.
// Cualquier error deshace todo y la orden sigue guardada y editable.
// Las líneas llevan el precio guardado en el carrito, no se vuelve a resolver.
// Confirmar es vender: si el carrito tiene productos especiales, un no-admin necesita elevated.
func (uc *InvoiceCommitter) Commit(ctx context.Context, p authz.Principal, folio int64, elevated bool) (*CommitResult, error) {
	today := dateOnly(uc.now())
	var res CommitResult
	err := uc.tx.Run(ctx, func(tx repository.Tx) error {
		o, err := tx.SavedOrders().GetByFolio(ctx, folio)
		if err != nil {
			return err
		}
		if o == nil {
			return fmt.Errorf("orden %d: %w", folio, domain.ErrNotFound)
		}
		if !o.Editable() {
			return fmt.Errorf("%w: la orden %d está %s", domain.ErrIllegalState, folio, o.Estado)
		}
		if d := uc.gate.May(p, authz.OpCommitOrder, authz.Context{Owner: o.UsuarioCreador}); !d.Allowed {
			return d.Err()
		}
		c, err := cart.Unmarshal(o.DatosCarrito)
		if err != nil {
			return fmt.Errorf("%w: orden %d: %v", domain.ErrInvalidInput, folio, err)
		}
		if c.Count() == 0 {
			return fmt.Errorf("%w: la orden %d no tiene productos", domain.ErrInvalidInput, folio)
		}
		if err := authorizeSpecials(ctx, uc.gate, tx.Products(), p, nil, c, elevated); err != nil {
			return err
		}

		factura := &entity.Factura{Folio: folio, Fecha: today, ClienteID: o.ClienteID}
		if err := tx.Invoices().Create(ctx, factura); err != nil {
			return err
		}

		sectionIDs := make(map[string]int64)
		if c.SectioningEnabled() {
			for i, s := range c.Sections() {
				sec := &entity.SeccionFactura{FacturaID: factura.ID, Nombre: s.Nombre, Orden: i + 1}
				if err := tx.Invoices().CreateSection(ctx, sec); err != nil {
					return err
				}
				sectionIDs[s.ID] = sec.ID
			}
		}

		for _, it := range c.Items() {
			det := &entity.DetalleFactura{
				FacturaID:           factura.ID,
				ProductoID:          it.ProductoID,
				NombreProducto:      it.NombreProducto,
				Unidad:              it.Unidad,
				Cantidad:            it.Cantidad,
				PrecioUnitarioVenta: it.PrecioUnitario,
			}
			if id, ok := sectionIDs[it.SeccionID]; ok {
				det.SeccionID = &id
			}
			if err := tx.Invoices().CreateDetail(ctx, det); err != nil {
				return err
			}
			if err := tx.Products().DecrementStock(ctx, it.ProductoID, it.Cantidad); err != nil {
				return err
			}
		}

		if err := tx.Invoices().SetMetadata(ctx, entity.FacturaMetadata{
			FacturaID:    factura.ID,
			UsaSecciones: c.SectioningEnabled(),
		}); err != nil {
			return err
		}

		total := c.Total()
		deuda := &entity.Deuda{
			ClienteID:     o.ClienteID,
			FacturaID:     factura.ID,
			Monto:         total,
			MontoPagado:   decimal.Zero,
			Pagado:        money.Settled(total),
			FechaGenerada: today,
			Descripcion:   fmt.Sprintf("Deuda generada por folio %d", folio),
		}
		if deuda.Pagado {
			deuda.FechaPago = &today
		}
		if err := tx.Debts().Create(ctx, deuda); err != nil {
			return err
		}

		ok, err := tx.SavedOrders().MarkRegistered(ctx, folio, factura.ID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: la orden %d cambió de estado durante la confirmación", domain.ErrIllegalState, folio)
		}

		res = CommitResult{InvoiceID: factura.ID, Folio: folio, DebtID: deuda.ID, Total: total}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("commit folio %d: %w", folio, err)
	}
	uc.log.Info().
		Int64("folio", folio).
		Int64("id_factura", res.InvoiceID).
		Int64("id_deuda", res.DebtID).
		Str("total", res.Total.StringFixed(money.MoneyScale)).
		Str("usuario", p.Username).
		Msg("orden confirmada")
	return &res, nil
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
