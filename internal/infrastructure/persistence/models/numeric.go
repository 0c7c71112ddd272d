package models

import (
	"database/sql/driver"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Numeric is a decimal column that never fails to scan
type Numeric struct {
	decimal.Decimal
}

// NewNumeric wraps d
func NewNumeric(d decimal.Decimal) Numeric {
	return Numeric{Decimal: d}
}

// Scan implements sql.Scanner
func (n *Numeric) Scan(value any) error {
	n.Decimal = ParseDecimalOr(value, decimal.Zero)
	return nil
}

// Value implements driver.Valuer
func (n Numeric) Value() (driver.Value, error) {
	return n.Decimal.String(), nil
}

// Integer is an integer column that never fails to scan
type Integer int

// Scan implements sql.Scanner
func (i *Integer) Scan(value any) error {
	*i = Integer(ParseIntOr(value, 0))
	return nil
}

// Value implements driver.Valuer
func (i Integer) Value() (driver.Value, error) {
	return int64(i), nil
}

// ParseDecimalOr converts a raw column value to a decimal, returning
// fallback for NULL, NaN, infinities and unparseable text.
func ParseDecimalOr(value any, fallback decimal.Decimal) decimal.Decimal {
	switch v := value.(type) {
	case nil:
		return fallback
	case decimal.Decimal:
		return v
	case int64:
		return decimal.NewFromInt(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fallback
		}
		return decimal.NewFromFloat(v)
	case float32:
		return ParseDecimalOr(float64(v), fallback)
	case []byte:
		return ParseDecimalOr(string(v), fallback)
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(v))
		if err != nil {
			return fallback
		}
		return d
	default:
		return fallback
	}
}

// ParseIntOr converts a raw column value to an int, returning fallback for
// NULL and unparseable text. Fractional values are truncated.
func ParseIntOr(value any, fallback int) int {
	switch v := value.(type) {
	case nil:
		return fallback
	case int64:
		return int(v)
	case int:
		return v
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fallback
		}
		return int(v)
	case []byte:
		return ParseIntOr(string(v), fallback)
	case string:
		s := strings.TrimSpace(v)
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return ParseIntOr(f, fallback)
		}
		return fallback
	default:
		return fallback
	}
}
