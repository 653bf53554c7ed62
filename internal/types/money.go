// README: Common money value object used across modules.
package types

import (
	"fmt"
	"math"
)

// MinorUnitsPerMajor is the number of minor units (piastres, cents) in one major unit.
const MinorUnitsPerMajor = 100

// Money is an amount in integer minor units.
type Money struct {
	Amount   int64
	Currency string
}

// FromMajor rounds a major-unit amount to the nearest minor unit (half away from zero).
func FromMajor(v float64, currency string) Money {
	return Money{Amount: int64(math.Round(v * MinorUnitsPerMajor)), Currency: currency}
}

// Major returns the amount in major units, for display.
func (m Money) Major() float64 {
	return float64(m.Amount) / MinorUnitsPerMajor
}

func (m Money) Add(o Money) Money {
	return Money{Amount: m.Amount + o.Amount, Currency: m.Currency}
}

func (m Money) Sub(o Money) Money {
	return Money{Amount: m.Amount - o.Amount, Currency: m.Currency}
}

func (m Money) String() string {
	return fmt.Sprintf("%.2f %s", m.Major(), m.Currency)
}
