// Package debts aplica abonos a las deudas generadas por las facturas y expone la cobranza.
package debts

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/disfruleg/disfruleg-api/internal/domain"
	"github.com/disfruleg/disfruleg-api/internal/domain/entity"
	"github.com/disfruleg/disfruleg-api/internal/domain/money"
	"github.com/disfruleg/disfruleg-api/internal/domain/repository"
	"github.com/disfruleg/disfruleg-api/pkg/logger"
)

// DefaultHistoryLimit filas del historial de pagos cuando no se indica límite.
const DefaultHistoryLimit = 100

// PaymentInput abono a una deuda.
type PaymentInput struct {
	DebtID    int64
	Amount    decimal.Decimal
	Method    string
	Reference string
	Operator  string
}

// PaymentResult estado de la deuda tras el abono.
type PaymentResult struct {
	DebtID      int64
	Applied     decimal.Decimal
	MontoPagado decimal.Decimal
	Saldo       decimal.Decimal
	Pagado      bool
}

// ClientPaymentInput abono general a las deudas abiertas de un cliente.
type ClientPaymentInput struct {
	ClientID  int64
	Amount    decimal.Decimal
	Method    string
	Reference string
	Operator  string
}

// Ledger libro de deudas.
type Ledger struct {
	tx    repository.TxRunner
	debts repository.DebtRepository
	log   *logger.Logger
	now   func() time.Time
}

// NewLedger construye el libro. debts atiende las lecturas fuera de transacción (pool).
func NewLedger(tx repository.TxRunner, debts repository.DebtRepository, log *logger.Logger) *Ledger {
	return &Ledger{tx: tx, debts: debts, log: log, now: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (l *Ledger) WithClock(now func() time.Time) *Ledger {
	l.now = now
	return l
}

// RecordPayment aplica un abono con la fila de la deuda bloqueada. Si el monto excede el saldo
// devuelve domain.ErrOverpayment sin modificar nada.
func (l *Ledger) RecordPayment(ctx context.Context, in PaymentInput) (*PaymentResult, error) {
	amount, err := validatePayment(in.Amount, in.Method)
	if err != nil {
		return nil, err
	}
	now := l.now()
	var res *PaymentResult
	err = l.tx.Run(ctx, func(tx repository.Tx) error {
		d, err := tx.Debts().GetForUpdate(ctx, in.DebtID)
		if err != nil {
			return err
		}
		if d == nil {
			return fmt.Errorf("deuda %d: %w", in.DebtID, domain.ErrNotFound)
		}
		res, err = apply(ctx, tx.Debts(), d, amount, in.Method, in.Reference, in.Operator, now)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("record payment: %w", err)
	}
	l.log.Info().
		Int64("id_deuda", res.DebtID).
		Str("monto", res.Applied.StringFixed(money.MoneyScale)).
		Str("metodo", in.Method).
		Str("usuario", in.Operator).
		Bool("pagado", res.Pagado).
		Msg("pago registrado")
	return res, nil
}

// PayClientDebts reparte un abono entre las deudas abiertas del cliente, de la más antigua a la
// más reciente, en una sola transacción. Si el monto excede el saldo total no aplica nada.
func (l *Ledger) PayClientDebts(ctx context.Context, in ClientPaymentInput) ([]PaymentResult, error) {
	amount, err := validatePayment(in.Amount, in.Method)
	if err != nil {
		return nil, err
	}
	now := l.now()
	var results []PaymentResult
	err = l.tx.Run(ctx, func(tx repository.Tx) error {
		results = nil
		open, err := tx.Debts().OpenByClientForUpdate(ctx, in.ClientID)
		if err != nil {
			return err
		}
		pending := decimal.Zero
		for _, d := range open {
			pending = pending.Add(d.Saldo())
		}
		if amount.GreaterThan(pending) {
			return fmt.Errorf("%w: abono %s, saldo del cliente %s", domain.ErrOverpayment,
				amount.StringFixed(money.MoneyScale), pending.StringFixed(money.MoneyScale))
		}
		remaining := amount
		for _, d := range open {
			if !remaining.IsPositive() {
				break
			}
			part := decimal.Min(remaining, d.Saldo())
			if !part.IsPositive() {
				continue
			}
			r, err := apply(ctx, tx.Debts(), d, part, in.Method, in.Reference, in.Operator, now)
			if err != nil {
				return err
			}
			results = append(results, *r)
			remaining = remaining.Sub(part)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("pay client debts: %w", err)
	}
	l.log.Info().
		Int64("id_cliente", in.ClientID).
		Str("monto", amount.StringFixed(money.MoneyScale)).
		Int("deudas", len(results)).
		Str("usuario", in.Operator).
		Msg("abono general registrado")
	return results, nil
}

// apply valida el saldo y escribe el nuevo estado de d. d debe estar bloqueada.
func apply(ctx context.Context, repo repository.DebtRepository, d *entity.Deuda, amount decimal.Decimal,
	method, reference, operator string, now time.Time) (*PaymentResult, error) {
	balance := d.Saldo()
	if amount.GreaterThan(balance) {
		return nil, fmt.Errorf("%w: deuda %d, abono %s, saldo %s", domain.ErrOverpayment, d.ID,
			amount.StringFixed(money.MoneyScale), balance.StringFixed(money.MoneyScale))
	}
	d.MontoPagado = d.MontoPagado.Add(amount)
	newBalance := d.Monto.Sub(d.MontoPagado)
	d.Pagado = money.Settled(newBalance)
	if d.Pagado {
		today := dateOnly(now)
		d.FechaPago = &today
	}
	d.MetodoPago = method
	d.ReferenciaPago = reference
	d.Descripcion = entity.AppendPaymentLine(d.Descripcion, entity.PaymentEvent{
		Monto:      amount,
		Metodo:     method,
		Referencia: reference,
		Operador:   operator,
		Fecha:      now,
	})
	if err := repo.ApplyPayment(ctx, d); err != nil {
		return nil, err
	}
	return &PaymentResult{
		DebtID:      d.ID,
		Applied:     amount,
		MontoPagado: d.MontoPagado,
		Saldo:       newBalance,
		Pagado:      d.Pagado,
	}, nil
}

// validatePayment redondea el abono a centavos y lo valida ya redondeado.
func validatePayment(amount decimal.Decimal, method string) (decimal.Decimal, error) {
	amount = money.Round(amount)
	if !amount.IsPositive() {
		return amount, fmt.Errorf("%w: el abono debe ser mayor a cero", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(method) == "" {
		return amount, fmt.Errorf("%w: método de pago obligatorio", domain.ErrInvalidInput)
	}
	return amount, nil
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
