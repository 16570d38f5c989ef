// Package money concentra la aritmética de importes y cantidades: escala 2 para dinero,
// hasta 4 para cantidades, y un único parser de texto a decimal.
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	MoneyScale    int32 = 2
	QuantityScale int32 = 4
)

// Epsilon tolerancia para considerar saldada una deuda.
var Epsilon = decimal.New(1, -2)

var hundred = decimal.NewFromInt(100)

// Round redondea un importe a 2 decimales, mitad hacia arriba.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyScale)
}

// RoundQty redondea una cantidad a 4 decimales.
func RoundQty(d decimal.Decimal) decimal.Decimal {
	return d.Round(QuantityScale)
}

// Percent devuelve round(base * pct / 100, 2).
func Percent(base, pct decimal.Decimal) decimal.Decimal {
	return Round(base.Mul(pct).Div(hundred))
}

// Settled indica si un saldo está dentro de la tolerancia de pago completo.
func Settled(balance decimal.Decimal) bool {
	return balance.LessThanOrEqual(Epsilon)
}

// Parse convierte texto capturado por el usuario a decimal sin pasar por float.
// Acepta "$1,234.50", "1234,5" (coma decimal) y espacios; rechaza todo lo demás.
func Parse(s string) (decimal.Decimal, error) {
	clean := strings.TrimSpace(s)
	clean = strings.TrimPrefix(clean, "$")
	clean = strings.ReplaceAll(clean, " ", "")
	if clean == "" {
		return decimal.Zero, fmt.Errorf("money: valor vacío")
	}
	switch {
	case strings.Contains(clean, ".") && strings.Contains(clean, ","):
		// separador de miles con coma
		clean = strings.ReplaceAll(clean, ",", "")
	case strings.Count(clean, ",") == 1:
		clean = strings.Replace(clean, ",", ".", 1)
	}
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("money: %q no es un número válido", s)
	}
	return d, nil
}

// ParseAmount como Parse pero exige un importe > 0 y lo redondea a 2 decimales.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := Parse(s)
	if err != nil {
		return decimal.Zero, err
	}
	if !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("money: el importe debe ser mayor a cero")
	}
	return Round(d), nil
}
