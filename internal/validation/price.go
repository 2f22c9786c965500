package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"whatsapp-catalog-service/internal/models"
)

// ErrInvalidPriceFormat is returned when a price cannot be read as a number.
var ErrInvalidPriceFormat = errors.New("invalid price format")

// ErrPriceOutOfRange is returned when a price does not fit in minor units.
var ErrPriceOutOfRange = errors.New("price out of range")

var (
	hundred  = decimal.NewFromInt(100)
	maxMinor = decimal.NewFromInt(math.MaxInt64)
	minMinor = decimal.NewFromInt(math.MinInt64)
)

// ParsePrice reads a price in major units. Strings are stripped of everything
// except digits and separators, and a comma is read as the
// decimal separator, so "€ 12,50" parses as 12.50.
func ParsePrice(v interface{}) (decimal.Decimal, error) {
	switch p := v.(type) {
	case models.MinorUnits:
		return decimal.New(int64(p), -2), nil
	case string:
		return parsePriceString(p)
	case json.Number:
		return parsePriceString(p.String())
	case float64:
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return decimal.Zero, fmt.Errorf("%w: %v", ErrInvalidPriceFormat, p)
		}
		return decimal.NewFromFloat(p), nil
	case float32:
		if math.IsNaN(float64(p)) || math.IsInf(float64(p), 0) {
			return decimal.Zero, fmt.Errorf("%w: %v", ErrInvalidPriceFormat, p)
		}
		return decimal.NewFromFloat32(p), nil
	case int:
		return decimal.NewFromInt(int64(p)), nil
	case int32:
		return decimal.NewFromInt32(p), nil
	case int64:
		return decimal.NewFromInt(p), nil
	}
	return decimal.Zero, fmt.Errorf("%w: %v", ErrInvalidPriceFormat, v)
}

func parsePriceString(raw string) (decimal.Decimal, error) {
	var b strings.Builder
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9', r == '.':
			b.WriteRune(r)
		case r == ',':
			b.WriteRune('.')
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidPriceFormat, raw)
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidPriceFormat, raw)
	}
	return d, nil
}

// ToMinorUnits converts a major-unit amount to minor units (x100), rounding
// anything past the second decimal. Amounts beyond int64 return ErrPriceOutOfRange.
func ToMinorUnits(d decimal.Decimal) (models.MinorUnits, error) {
	minor := d.Mul(hundred).Round(0)
	if minor.GreaterThan(maxMinor) || minor.LessThan(minMinor) {
		return 0, fmt.Errorf("%w: %s", ErrPriceOutOfRange, d.String())
	}
	return models.MinorUnits(minor.IntPart()), nil
}

// checkPrice returns the validation message for a price value, or "".
func checkPrice(field string, v interface{}) (decimal.Decimal, string) {
	d, err := ParsePrice(v)
	if err != nil {
		return d, fmt.Sprintf("invalid %s format: %v", field, v)
	}
	if !d.IsPositive() {
		return d, fmt.Sprintf("%s must be greater than 0: %v", field, v)
	}
	if _, err := ToMinorUnits(d); err != nil {
		return d, fmt.Sprintf("%s is too large: %v", field, v)
	}
	return d, ""
}
