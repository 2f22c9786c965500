package validation

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"whatsapp-catalog-service/internal/models"
)

// ValidateHomeListing checks a record for the home_listings catalog vertical.
func ValidateHomeListing(record models.ProductRecord) (bool, []string) {
	var errs []string

	for _, field := range models.HomeListingRequiredFields {
		if isEmpty(record[field]) {
			errs = append(errs, fmt.Sprintf("missing required field: %s", field))
		}
	}

	if v, ok := record["address"]; ok && !isEmpty(v) {
		address, isMap := v.(map[string]interface{})
		if !isMap {
			errs = append(errs, "address must be an object")
		} else {
			errs = append(errs, validateAddress(address)...)
		}
	}

	if v := record[models.FieldPrice]; !isEmpty(v) {
		if n, ok := toInt(v); !ok || n <= 0 {
			errs = append(errs, fmt.Sprintf("price must be a positive integer: %v", v))
		}
	}

	if v := record[models.FieldCurrency]; !isEmpty(v) {
		if s, ok := v.(string); !ok || len(strings.TrimSpace(s)) != 3 {
			errs = append(errs, fmt.Sprintf("currency must be an ISO 4217 code: %v", v))
		}
	}

	if v := record[models.FieldURL]; !isEmpty(v) && !isHTTPURL(v) {
		errs = append(errs, fmt.Sprintf("url must be an http(s) URL: %v", v))
	}

	if v, ok := record["images"]; ok && !isEmpty(v) {
		if _, isList := v.([]interface{}); !isList {
			errs = append(errs, "images must be a list")
		}
	}

	if v := record["year_built"]; !isEmpty(v) {
		if n, ok := toInt(v); !ok || n < 1000 || n > 9999 {
			errs = append(errs, fmt.Sprintf("year_built must be a four-digit year: %v", v))
		}
	}

	return len(errs) == 0, errs
}

// NormalizeHomeListing returns a copy with an integer price and an upper-case currency.
func NormalizeHomeListing(record models.ProductRecord) models.ProductRecord {
	out := record.Clone()
	if n, ok := toInt(out[models.FieldPrice]); ok {
		out[models.FieldPrice] = n
	}
	if s, ok := out[models.FieldCurrency].(string); ok {
		out[models.FieldCurrency] = strings.ToUpper(strings.TrimSpace(s))
	}
	return out
}

func validateAddress(address map[string]interface{}) []string {
	var missing []string
	for _, field := range models.AddressRequiredFields {
		if isEmpty(address[field]) {
			missing = append(missing, field)
		}
	}

	var errs []string
	if len(missing) > 0 {
		errs = append(errs, fmt.Sprintf("missing required address fields: %s", strings.Join(missing, ", ")))
	}
	if v, ok := address["latitude"]; ok && !isEmpty(v) {
		if f, isNum := toFloat(v); !isNum || f < -90 || f > 90 {
			errs = append(errs, fmt.Sprintf("latitude out of range: %v", v))
		}
	}
	if v, ok := address["longitude"]; ok && !isEmpty(v) {
		if f, isNum := toFloat(v); !isNum || f < -180 || f > 180 {
			errs = append(errs, fmt.Sprintf("longitude out of range: %v", v))
		}
	}
	return errs
}

// toFloat reads a coordinate. Unlike prices, the sign is significant.
func toFloat(v interface{}) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case json.Number:
		n, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = n
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		f = n
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
