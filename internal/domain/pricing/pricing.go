// Package pricing calcula el precio de venta: precio base del grupo menos el descuento del tipo de cliente.
package pricing

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/disfruleg/disfruleg-api/internal/domain/money"
)

// ErrInvalidDiscount descuento fuera de [0, 100].
var ErrInvalidDiscount = errors.New("pricing: descuento fuera de rango")

var hundred = decimal.NewFromInt(100)

// Quote desglose del precio de un producto para un cliente.
type Quote struct {
	Base        decimal.Decimal `json:"base"`
	DiscountPct decimal.Decimal `json:"discount_pct"`
	DiscountAmt decimal.Decimal `json:"discount_amt"`
	Final       decimal.Decimal `json:"final"`
}

// Sellable false cuando el grupo no tiene precio para el producto (base 0).
func (q Quote) Sellable() bool {
	return q.Base.IsPositive()
}

// Compute aplica el descuento: discount_amt = round(base * pct / 100, 2), final = base - discount_amt.
func Compute(base, discountPct decimal.Decimal) (Quote, error) {
	if discountPct.IsNegative() || discountPct.GreaterThan(hundred) {
		return Quote{}, ErrInvalidDiscount
	}
	base = money.Round(base)
	amt := money.Percent(base, discountPct)
	return Quote{
		Base:        base,
		DiscountPct: discountPct,
		DiscountAmt: amt,
		Final:       base.Sub(amt),
	}, nil
}
