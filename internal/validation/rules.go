// Package validation checks and normalizes catalog records before they are
// sent to the Graph API. Everything here is pure: no I/O, no shared state.
package validation

import (
	"strings"

	"whatsapp-catalog-service/internal/models"
)

const (
	MaxNameLength        = 150
	MaxDescriptionLength = 9999
)

// RequiredFields must be present and non-empty on every product.
var RequiredFields = []string{
	models.FieldRetailerID,
	models.FieldName,
	models.FieldDescription,
	models.FieldPrice,
	models.FieldCurrency,
	models.FieldAvailability,
	models.FieldCondition,
}

// SupportedCurrencies are matched case-insensitively.
var SupportedCurrencies = []string{"EUR", "USD", "GBP", "JPY", "CNY", "CAD", "AUD"}

var SupportedAvailability = []string{
	"in stock",
	"out of stock",
	"preorder",
	"available for order",
	"discontinued",
}

var SupportedConditions = []string{"new", "refurbished", "used", "open_box"}

// Defaults are filled in by Normalize for keys that are entirely absent.
type Defaults struct {
	Currency     string
	Availability string
	Condition    string
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// IsSupportedCurrency reports whether code is an accepted currency, ignoring case.
func IsSupportedCurrency(code string) bool {
	return contains(SupportedCurrencies, strings.ToUpper(strings.TrimSpace(code)))
}
