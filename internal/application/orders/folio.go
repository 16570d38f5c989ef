// Package orders reúne la asignación de folios, las órdenes guardadas y la confirmación
// de una orden en factura con su deuda.
package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/disfruleg/disfruleg-api/internal/domain"
	"github.com/disfruleg/disfruleg-api/internal/domain/cart"
	"github.com/disfruleg/disfruleg-api/internal/domain/entity"
	"github.com/disfruleg/disfruleg-api/internal/domain/money"
	"github.com/disfruleg/disfruleg-api/internal/domain/repository"
	"github.com/disfruleg/disfruleg-api/pkg/logger"
)

// reserveAttempts intentos de ReserveNext antes de rendirse ante carreras por el mismo hueco.
const reserveAttempts = 5

// ReserveInput datos de la orden que se guarda al reservar un folio.
type ReserveInput struct {
	Folio     int64
	ClienteID int64
	Usuario   string
	Doc       json.RawMessage
	Total     decimal.Decimal
}

// FolioAllocator entrega folios densos: reutiliza huecos liberados y si no hay, avanza la secuencia.
type FolioAllocator struct {
	tx  repository.TxRunner
	log *logger.Logger
	now func() time.Time
}

// NewFolioAllocator construye el asignador.
func NewFolioAllocator(tx repository.TxRunner, log *logger.Logger) *FolioAllocator {
	return &FolioAllocator{tx: tx, log: log, now: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (a *FolioAllocator) WithClock(now func() time.Time) *FolioAllocator {
	a.now = now
	return a
}

// NextFolio devuelve el menor folio libre por debajo de la secuencia o, si no hay hueco,
// el primer folio libre desde la secuencia (que queda justo después del entregado). La fila de la secuencia queda bloqueada
// durante la transacción, así que los asignadores concurrentes se serializan.
func (a *FolioAllocator) NextFolio(ctx context.Context) (int64, error) {
	var folio int64
	err := a.tx.Run(ctx, func(tx repository.Tx) error {
		next, err := tx.Folios().LockSequence(ctx)
		if err != nil {
			return err
		}
		hole, ok, err := tx.Folios().LowestFreeFolio(ctx, next)
		if err != nil {
			return err
		}
		if ok {
			folio = hole
			return nil
		}
		// Un folio reservado a mano puede estar por encima de la secuencia.
		for {
			used, err := tx.Folios().InUse(ctx, next)
			if err != nil {
				return err
			}
			if !used {
				break
			}
			next++
		}
		folio = next
		return tx.Folios().SetNext(ctx, next+1)
	})
	if err != nil {
		return 0, fmt.Errorf("next folio: %w", err)
	}
	return folio, nil
}

// Reserve guarda la orden (guardada, activa) contra el folio. Devuelve false si el folio ya
// tiene una orden activa o ya lo usa una factura.
func (a *FolioAllocator) Reserve(ctx context.Context, in ReserveInput) (bool, error) {
	in, err := normalizeReserve(in, a.now())
	if err != nil {
		return false, err
	}
	taken := false
	err = a.tx.Run(ctx, func(tx repository.Tx) error {
		invoiced, err := tx.Folios().Invoiced(ctx, in.Folio)
		if err != nil {
			return err
		}
		if invoiced {
			taken = true
			return nil
		}
		return tx.SavedOrders().Create(ctx, &entity.SavedOrder{
			Folio:          in.Folio,
			ClienteID:      in.ClienteID,
			UsuarioCreador: in.Usuario,
			DatosCarrito:   in.Doc,
			TotalEstimado:  in.Total,
			Estado:         entity.EstadoGuardada,
			Activo:         true,
		})
	})
	if errors.Is(err, domain.ErrIntegrityViolation) || (err == nil && taken) {
		a.log.Debug().Int64("folio", in.Folio).Msg("folio ocupado")
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reserve folio %d: %w", in.Folio, err)
	}
	a.log.Info().Int64("folio", in.Folio).Int64("id_cliente", in.ClienteID).Str("usuario", in.Usuario).Msg("folio reservado")
	return true, nil
}

// ReserveNext pide un folio y lo reserva; si otro usuario gana el mismo hueco vuelve a intentar.
func (a *FolioAllocator) ReserveNext(ctx context.Context, in ReserveInput) (int64, error) {
	for attempt := 0; attempt < reserveAttempts; attempt++ {
		folio, err := a.NextFolio(ctx)
		if err != nil {
			return 0, err
		}
		in.Folio = folio
		ok, err := a.Reserve(ctx, in)
		if err != nil {
			return 0, err
		}
		if ok {
			return folio, nil
		}
	}
	return 0, fmt.Errorf("%w: no se pudo reservar un folio tras %d intentos", domain.ErrConflict, reserveAttempts)
}

// Release desactiva la orden guardada del folio y lo deja libre para reutilizarse.
// Devuelve false si no hay orden activa; un folio registrado no se libera.
func (a *FolioAllocator) Release(ctx context.Context, folio int64) (bool, error) {
	released := false
	err := a.tx.Run(ctx, func(tx repository.Tx) error {
		o, err := tx.SavedOrders().GetByFolio(ctx, folio)
		if err != nil || o == nil {
			return err
		}
		if o.Estado == entity.EstadoRegistrada {
			return fmt.Errorf("%w: el folio %d ya está registrado", domain.ErrIllegalState, folio)
		}
		released, err = tx.SavedOrders().Deactivate(ctx, folio)
		return err
	})
	if err != nil {
		return false, fmt.Errorf("release folio %d: %w", folio, err)
	}
	if released {
		a.log.Info().Int64("folio", folio).Msg("folio liberado")
	}
	return released, nil
}

// normalizeReserve valida la entrada. Un documento vacío se guarda como carrito vacío y
// un total en cero se toma del carrito.
func normalizeReserve(in ReserveInput, now time.Time) (ReserveInput, error) {
	in.Usuario = strings.TrimSpace(in.Usuario)
	if in.Folio < 1 || in.ClienteID < 1 || in.Usuario == "" {
		return in, fmt.Errorf("%w: folio, cliente y usuario son obligatorios", domain.ErrInvalidInput)
	}
	if in.Total.IsNegative() {
		return in, fmt.Errorf("%w: total negativo", domain.ErrInvalidInput)
	}
	c, err := cart.Unmarshal(in.Doc)
	if err != nil {
		return in, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if emptyDoc(in.Doc) {
		in.Doc, err = c.Marshal(now)
		if err != nil {
			return in, err
		}
	}
	if in.Total.IsZero() {
		in.Total = c.Total()
	}
	in.Total = money.Round(in.Total)
	return in, nil
}
