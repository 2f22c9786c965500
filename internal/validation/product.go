package validation

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"whatsapp-catalog-service/internal/apierrors"
	"whatsapp-catalog-service/internal/models"
)

var fieldValidator = validator.New()

// Validate checks a product record and returns every violation found.
// It never stops at the first error.
func Validate(record models.ProductRecord) (bool, []string) {
	return validate(record, true)
}

// placeholder supplies valid values for every required field so a partial
// update can be checked with the full rule set.
func placeholder(retailerID string) models.ProductRecord {
	return models.ProductRecord{
		models.FieldRetailerID:   retailerID,
		models.FieldName:         "placeholder",
		models.FieldDescription:  "placeholder",
		models.FieldPrice:        "1.00",
		models.FieldCurrency:     "EUR",
		models.FieldAvailability: "in stock",
		models.FieldCondition:    "new",
	}
}

// MergeUpdate overlays the supplied fields on a valid placeholder record.
func MergeUpdate(retailerID string, fields models.ProductRecord) models.ProductRecord {
	merged := placeholder(retailerID)
	for k, v := range fields {
		merged[k] = v
	}
	return merged
}

// ValidateUpdate checks only the supplied fields of a partial update.
// Errors can only come from keys present in fields.
func ValidateUpdate(retailerID string, fields models.ProductRecord) (bool, []string) {
	var errs []string
	if v, ok := fields[models.FieldRetailerID]; ok {
		if s, isString := v.(string); !isString || s != retailerID {
			errs = append(errs, fmt.Sprintf("%s cannot be changed: %v", models.FieldRetailerID, v))
		}
	}
	// the placeholder price is not real, so compare sale_price only against a supplied price
	_, ok := fields[models.FieldPrice]
	_, more := validate(MergeUpdate(retailerID, fields), ok)
	errs = append(errs, more...)
	return len(errs) == 0, errs
}

func validate(record models.ProductRecord, crossField bool) (bool, []string) {
	var errs []string

	for _, field := range RequiredFields {
		if isEmpty(record[field]) {
			errs = append(errs, fmt.Sprintf("missing required field: %s", field))
		}
	}

	errs = append(errs, checkLength(record, models.FieldName, MaxNameLength)...)
	errs = append(errs, checkLength(record, models.FieldDescription, MaxDescriptionLength)...)

	if v := record[models.FieldCurrency]; !isEmpty(v) {
		if s, ok := v.(string); !ok || !IsSupportedCurrency(s) {
			errs = append(errs, fmt.Sprintf("unsupported currency: %v (supported: %s)",
				v, strings.Join(SupportedCurrencies, ", ")))
		}
	}
	if v := record[models.FieldAvailability]; !isEmpty(v) {
		if s, ok := v.(string); !ok || !contains(SupportedAvailability, s) {
			errs = append(errs, fmt.Sprintf("invalid availability: %v (allowed: %s)",
				v, strings.Join(SupportedAvailability, ", ")))
		}
	}
	if v := record[models.FieldCondition]; !isEmpty(v) {
		if s, ok := v.(string); !ok || !contains(SupportedConditions, s) {
			errs = append(errs, fmt.Sprintf("invalid condition: %v (allowed: %s)",
				v, strings.Join(SupportedConditions, ", ")))
		}
	}

	if v := record[models.FieldPrice]; !isEmpty(v) {
		if _, msg := checkPrice(models.FieldPrice, v); msg != "" {
			errs = append(errs, msg)
		}
	}

	errs = append(errs, validateOptional(record, crossField)...)

	return len(errs) == 0, errs
}

// AsError wraps violations in a ValidationError, or returns nil when there are none.
func AsError(errs []string) error {
	if len(errs) == 0 {
		return nil
	}
	return &apierrors.ValidationError{Errors: errs}
}

// Normalize returns a copy of record ready for the wire: prices in minor
// units, currency upper-cased, defaults filled for absent keys.
// Call it once, after Validate succeeded.
func Normalize(record models.ProductRecord, defaults Defaults) (models.ProductRecord, error) {
	out := record.Clone()

	for _, field := range []string{models.FieldPrice, models.FieldSalePrice} {
		v, ok := out[field]
		if !ok || isEmpty(v) {
			continue
		}
		if _, done := v.(models.MinorUnits); done {
			continue
		}
		d, err := ParsePrice(v)
		if err != nil {
			return nil, fmt.Errorf("normalize %s: %w", field, err)
		}
		minor, err := ToMinorUnits(d)
		if err != nil {
			return nil, fmt.Errorf("normalize %s: %w", field, err)
		}
		out[field] = minor
	}

	if v, ok := out[models.FieldCurrency]; ok {
		if s, isString := v.(string); isString {
			out[models.FieldCurrency] = strings.ToUpper(strings.TrimSpace(s))
		}
	} else if defaults.Currency != "" {
		out[models.FieldCurrency] = strings.ToUpper(defaults.Currency)
	}
	if _, ok := out[models.FieldAvailability]; !ok && defaults.Availability != "" {
		out[models.FieldAvailability] = defaults.Availability
	}
	if _, ok := out[models.FieldCondition]; !ok && defaults.Condition != "" {
		out[models.FieldCondition] = defaults.Condition
	}

	return out, nil
}

func checkLength(record models.ProductRecord, field string, max int) []string {
	v, ok := record[field]
	if !ok || v == nil {
		return nil
	}
	s, isString := v.(string)
	if !isString {
		return []string{fmt.Sprintf("%s must be a string", field)}
	}
	if n := utf8.RuneCountInString(s); n > max {
		return []string{fmt.Sprintf("%s too long: %d characters (max %d)", field, n, max)}
	}
	return nil
}

func validateOptional(record models.ProductRecord, crossField bool) []string {
	var errs []string

	for _, field := range []string{models.FieldImageURL, models.FieldURL} {
		if v := record[field]; !isEmpty(v) && !isHTTPURL(v) {
			errs = append(errs, fmt.Sprintf("%s must be an http(s) URL: %v", field, v))
		}
	}

	if v, ok := record[models.FieldAdditionalImageURLs]; ok && v != nil {
		urls, isList := toStringSlice(v)
		if !isList {
			errs = append(errs, fmt.Sprintf("%s must be a list of URLs", models.FieldAdditionalImageURLs))
		}
		for _, u := range urls {
			if !isHTTPURL(u) {
				errs = append(errs, fmt.Sprintf("%s contains an invalid URL: %s", models.FieldAdditionalImageURLs, u))
			}
		}
	}

	if v := record[models.FieldInventory]; !isEmpty(v) {
		if n, ok := toInt(v); !ok || n < 0 {
			errs = append(errs, fmt.Sprintf("inventory must be a non-negative integer: %v", v))
		}
	}

	if v := record[models.FieldSalePrice]; !isEmpty(v) {
		sale, msg := checkPrice(models.FieldSalePrice, v)
		if msg != "" {
			errs = append(errs, msg)
		} else if crossField {
			price, err := ParsePrice(record[models.FieldPrice])
			if err == nil && price.IsPositive() && sale.GreaterThan(price) {
				errs = append(errs, fmt.Sprintf("sale_price %v exceeds price %v", v, record[models.FieldPrice]))
			}
		}
	}

	if v := record[models.FieldSalePriceEffectiveDate]; !isEmpty(v) {
		if s, ok := v.(string); !ok || !isDateInterval(s) {
			errs = append(errs, fmt.Sprintf("sale_price_effective_date must be an ISO-8601 interval start/end: %v", v))
		}
	}

	return errs
}

// isEmpty treats nil, blank strings and empty collections as missing.
func isEmpty(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case []interface{}:
		return len(t) == 0
	case []string:
		return len(t) == 0
	case map[string]interface{}:
		return len(t) == 0
	}
	return false
}

func isHTTPURL(v interface{}) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	return fieldValidator.Var(s, "required,http_url") == nil
}

func toStringSlice(v interface{}) ([]string, bool) {
	switch t := v.(type) {
	case []string:
		return t, true
	case []interface{}:
		out := make([]string, 0, len(t))
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}

func toInt(v interface{}) (int64, bool) {
	switch t := v.(type) {
	case int:
		return int64(t), true
	case int64:
		return t, true
	case int32:
		return int64(t), true
	case float64:
		// float64(math.MaxInt64) rounds up to 2^63, which is itself out of range.
		if t != math.Trunc(t) || t >= float64(math.MaxInt64) || t < float64(math.MinInt64) {
			return 0, false
		}
		return int64(t), true
	case json.Number:
		n, err := t.Int64()
		return n, err == nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		return n, err == nil
	}
	return 0, false
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func isDateInterval(s string) bool {
	parts := strings.Split(s, "/")
	if len(parts) != 2 {
		return false
	}
	var bounds [2]time.Time
	for i, p := range parts {
		t, ok := parseDate(strings.TrimSpace(p))
		if !ok {
			return false
		}
		bounds[i] = t
	}
	return !bounds[1].Before(bounds[0])
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
