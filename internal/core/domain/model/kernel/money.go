package kernel

import (
	"fmt"

	"kapgel/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// moneyExponent is the number of fractional digits a monetary amount carries.
const moneyExponent = 2

// Money is a non-negative fixed-point monetary amount with two fractional
// digits. Money is immutable; arithmetic returns new values.
type Money struct {
	amount decimal.Decimal
}

// ZeroMoney returns the zero amount.
func ZeroMoney() Money {
	return Money{amount: decimal.Zero}
}

// NewMoney creates a Money value from a decimal amount.
// The amount must be non-negative and must not carry more than two fractional
// digits; monetary rounding is the caller's decision, never implicit.
func NewMoney(amount decimal.Decimal) (Money, error) {
	if amount.IsNegative() {
		return Money{}, errs.NewValueIsInvalidErrorWithCause("amount",
			fmt.Errorf("%s is negative", amount))
	}
	if !amount.Equal(amount.Round(moneyExponent)) {
		return Money{}, errs.NewValueIsInvalidErrorWithCause("amount",
			fmt.Errorf("%s has more than %d fractional digits", amount, moneyExponent))
	}
	return Money{amount: amount}, nil
}

// MoneyFromString parses a Money value from its decimal string form.
func MoneyFromString(s string) (Money, error) {
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, errs.NewValueIsInvalidErrorWithCause("amount", err)
	}
	return NewMoney(amount)
}

// Add returns the sum of two amounts.
func (m Money) Add(other Money) Money {
	return Money{amount: m.amount.Add(other.amount)}
}

// MulInt returns the amount multiplied by a whole quantity.
func (m Money) MulInt(n int) Money {
	return Money{amount: m.amount.Mul(decimal.NewFromInt(int64(n)))}
}

// Decimal returns the underlying decimal value.
func (m Money) Decimal() decimal.Decimal {
	return m.amount
}

// IsEqual compares two amounts numerically.
func (m Money) IsEqual(other Money) bool {
	return m.amount.Equal(other.amount)
}

// String returns the amount with exactly two fractional digits.
func (m Money) String() string {
	return m.amount.StringFixed(moneyExponent)
}
