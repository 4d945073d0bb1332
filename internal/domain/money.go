package domain

import (
	"fmt"
	"math"
	"strings"
)

// MaxAmount is the largest absolute amount, in minor units, that Money may
// hold. It keeps every price times MaxRangeDays inside int64.
const MaxAmount int64 = 100_000_000_000_000

// Money represents a monetary value with currency.
// Immutable value object - all operations return new instances.
type Money struct {
	amount   int64  // amount in minor units (cents)
	currency string // ISO 4217 code, upper case
}

// NewMoney builds Money from an amount in minor units.
// Only the currency is validated; callers that use Money as a price check
// positivity themselves.
func NewMoney(amount int64, currency string) (Money, error) {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if len(currency) != 3 {
		return Money{}, fmt.Errorf("%w: currency must be a 3-letter ISO code", ErrValidation)
	}
	for _, c := range currency {
		if c < 'A' || c > 'Z' {
			return Money{}, fmt.Errorf("%w: currency must be a 3-letter ISO code", ErrValidation)
		}
	}
	if amount > MaxAmount || amount < -MaxAmount {
		return Money{}, fmt.Errorf("%w: amount exceeds the supported maximum", ErrValidation)
	}
	return Money{amount: amount, currency: currency}, nil
}

// NewMoneyFromMajor builds Money from a decimal amount in major units
// (e.g. 99.95 dollars), rounding to the nearest cent.
func NewMoneyFromMajor(amount float64, currency string) (Money, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return Money{}, fmt.Errorf("%w: amount must be a finite number", ErrValidation)
	}
	if math.Abs(amount) > float64(MaxAmount/100) {
		return Money{}, fmt.Errorf("%w: amount exceeds the supported maximum", ErrValidation)
	}
	return NewMoney(int64(math.Round(amount*100)), currency)
}

// MustNewMoney is NewMoney for trusted constants; it panics on a bad currency.
func MustNewMoney(amount int64, currency string) Money {
	m, err := NewMoney(amount, currency)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Money) Amount() int64    { return m.amount }
func (m Money) Currency() string { return m.currency }
func (m Money) IsZero() bool     { return m.amount == 0 }
func (m Money) IsPositive() bool { return m.amount > 0 }

// Major returns the amount in major units, e.g. 30000 cents -> 300.0.
func (m Money) Major() float64 { return float64(m.amount) / 100 }

func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("cannot add different currencies: %s and %s", m.currency, other.currency)
	}
	return Money{amount: m.amount + other.amount, currency: m.currency}, nil
}

// Multiply scales m by a non-negative factor. The product must stay within
// MaxAmount.
func (m Money) Multiply(factor int64) (Money, error) {
	if factor < 0 {
		return Money{}, fmt.Errorf("%w: cannot multiply by a negative factor", ErrValidation)
	}
	if factor > 0 && (m.amount > MaxAmount/factor || m.amount < -MaxAmount/factor) {
		return Money{}, fmt.Errorf("%w: amount exceeds the supported maximum", ErrValidation)
	}
	return Money{amount: m.amount * factor, currency: m.currency}, nil
}

func (m Money) Equals(other Money) bool {
	return m.amount == other.amount && m.currency == other.currency
}

func (m Money) String() string {
	sign := ""
	a := m.amount
	if a < 0 {
		sign = "-"
		a = -a
	}
	return fmt.Sprintf("%s%d.%02d %s", sign, a/100, a%100, m.currency)
}
