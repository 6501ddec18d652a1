package valueobject

import (
	"database/sql/driver"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// MaxAmount is the largest monetary amount the system accepts, in minor
// currency units.
const MaxAmount int64 = 999_999_999_999

// Money is a value object for monetary amounts stored as integer minor
// currency units (cents). It is immutable - operations return new instances.
type Money struct {
	amount int64
}

// NewMoney creates Money from an amount in minor units
func NewMoney(minorUnits int64) (Money, error) {
	if minorUnits < 0 {
		return Money{}, errors.New("amount cannot be negative")
	}
	if minorUnits > MaxAmount {
		return Money{}, fmt.Errorf("amount %d exceeds maximum %d", minorUnits, MaxAmount)
	}
	return Money{amount: minorUnits}, nil
}

// MustMoney creates Money from minor units, panicking on invalid input.
// Intended for constants and tests.
func MustMoney(minorUnits int64) Money {
	m, err := NewMoney(minorUnits)
	if err != nil {
		panic(err)
	}
	return m
}

// ParseMoney parses a major-unit string ("123.45") into Money
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount string: %w", err)
	}
	return MoneyFromDecimal(d)
}

// MoneyFromDecimal converts a major-unit decimal into Money. The decimal must
// not carry sub-minor-unit precision.
func MoneyFromDecimal(d decimal.Decimal) (Money, error) {
	minor := d.Mul(decimal.NewFromInt(100))
	if !minor.IsInteger() {
		return Money{}, fmt.Errorf("amount %s has sub-cent precision", d.String())
	}
	return NewMoney(minor.IntPart())
}

// Zero returns a zero-value Money
func Zero() Money {
	return Money{}
}

// Amount returns the amount in minor units
func (m Money) Amount() int64 {
	return m.amount
}

// Decimal returns the amount in major units as a decimal
func (m Money) Decimal() decimal.Decimal {
	return decimal.NewFromInt(m.amount).Div(decimal.NewFromInt(100))
}

// Add returns the sum of two amounts
func (m Money) Add(other Money) Money {
	return Money{amount: m.amount + other.amount}
}

// Sub returns the difference of two amounts; it may be negative, which callers
// must treat as invalid before persisting.
func (m Money) Sub(other Money) Money {
	return Money{amount: m.amount - other.amount}
}

// IsZero reports whether the amount is zero
func (m Money) IsZero() bool {
	return m.amount == 0
}

// GreaterThan reports whether m > other
func (m Money) GreaterThan(other Money) bool {
	return m.amount > other.amount
}

// String returns the major-unit representation ("123.45")
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// Value implements driver.Valuer so Money can be stored as a bigint column
func (m Money) Value() (driver.Value, error) {
	return m.amount, nil
}

// Scan implements sql.Scanner
func (m *Money) Scan(value interface{}) error {
	switch v := value.(type) {
	case int64:
		m.amount = v
		return nil
	case nil:
		m.amount = 0
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Money", value)
	}
}
