package validation

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whatsapp-catalog-service/internal/apierrors"
	"whatsapp-catalog-service/internal/models"
)

func validProduct() models.ProductRecord {
	return models.ProductRecord{
		"retailer_id":  "SKU-001",
		"name":         "Espresso Cup",
		"description":  "Porcelain cup, 80ml",
		"price":        "29.99",
		"currency":     "eur",
		"availability": "in stock",
		"condition":    "new",
	}
}

var testDefaults = Defaults{Currency: "EUR", Availability: "in stock", Condition: "new"}

func TestValidate_ValidProduct(t *testing.T) {
	ok, errs := Validate(validProduct())

	assert.True(t, ok)
	assert.Empty(t, errs)
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	record := models.ProductRecord{
		"retailer_id":  "SKU-001",
		"name":         strings.Repeat("n", 151),
		"description":  "ok",
		"price":        "abc",
		"currency":     "XYZ",
		"availability": "soon",
	}

	ok, errs := Validate(record)

	assert.False(t, ok)
	require.Len(t, errs, 5)
	assert.Contains(t, errs, "missing required field: condition")
	assert.Contains(t, errs, "name too long: 151 characters (max 150)")
	assert.Contains(t, errs[2], "unsupported currency: XYZ")
	assert.Contains(t, errs[3], "invalid availability: soon")
	assert.Equal(t, "invalid price format: abc", errs[4])
}

func TestValidate_MissingFieldsAreNamed(t *testing.T) {
	ok, errs := Validate(models.ProductRecord{})

	assert.False(t, ok)
	require.Len(t, errs, len(RequiredFields))
	for i, field := range RequiredFields {
		assert.Equal(t, "missing required field: "+field, errs[i])
	}
}

func TestValidate_BlankStringCountsAsMissing(t *testing.T) {
	record := validProduct()
	record["name"] = "   "

	_, errs := Validate(record)

	assert.Equal(t, []string{"missing required field: name"}, errs)
}

func TestValidate_NameLengthBoundary(t *testing.T) {
	record := validProduct()
	record["name"] = strings.Repeat("è", MaxNameLength)

	ok, _ := Validate(record)
	assert.True(t, ok, "150 multi-byte characters are within the limit")

	record["name"] = strings.Repeat("è", MaxNameLength+1)
	ok, errs := Validate(record)
	assert.False(t, ok)
	assert.Equal(t, []string{"name too long: 151 characters (max 150)"}, errs)
}

func TestValidate_DescriptionTooLong(t *testing.T) {
	record := validProduct()
	record["description"] = strings.Repeat("d", MaxDescriptionLength+1)

	_, errs := Validate(record)

	assert.Equal(t, []string{"description too long: 10000 characters (max 9999)"}, errs)
}

func TestValidate_Price(t *testing.T) {
	tests := []struct {
		name    string
		price   interface{}
		wantErr string
	}{
		{"decimal string", "29.99", ""},
		{"comma separator", "12,50", ""},
		{"currency symbol", "€ 15.00", ""},
		{"float", 9.5, ""},
		{"int", 10, ""},
		{"zero", "0", "price must be greater than 0: 0"},
		{"zero number", 0, "price must be greater than 0: 0"},
		{"sign is stripped", "-5.00", ""},
		{"hyphen inside", "10-20", ""},
		{"negative number", -5, "price must be greater than 0: -5"},
		{"not a number", math.NaN(), "invalid price format: NaN"},
		{"infinity", math.Inf(1), "invalid price format: +Inf"},
		{"float32 infinity", float32(math.Inf(-1)), "invalid price format: -Inf"},
		{"too large", "100000000000000000", "price is too large: 100000000000000000"},
		{"letters", "free", "invalid price format: free"},
		{"double separator", "1.234,56", "invalid price format: 1.234,56"},
		{"wrong type", true, "invalid price format: true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := validProduct()
			record["price"] = tt.price

			ok, errs := Validate(record)

			if tt.wantErr == "" {
				assert.True(t, ok, "errors: %v", errs)
				return
			}
			assert.False(t, ok)
			assert.Equal(t, []string{tt.wantErr}, errs)
		})
	}
}

func TestValidate_AllowLists(t *testing.T) {
	for _, currency := range []string{"usd", "Gbp", "JPY", "cny", "CAD", "aud"} {
		record := validProduct()
		record["currency"] = currency
		ok, errs := Validate(record)
		assert.True(t, ok, "%s: %v", currency, errs)
	}
	for _, availability := range SupportedAvailability {
		record := validProduct()
		record["availability"] = availability
		ok, _ := Validate(record)
		assert.True(t, ok, availability)
	}
	for _, condition := range SupportedConditions {
		record := validProduct()
		record["condition"] = condition
		ok, _ := Validate(record)
		assert.True(t, ok, condition)
	}

	record := validProduct()
	record["condition"] = "broken"
	_, errs := Validate(record)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "invalid condition: broken")
}

func TestValidate_OptionalFields(t *testing.T) {
	record := validProduct()
	record["image_url"] = "not a url"
	record["additional_image_urls"] = []interface{}{"https://cdn.example.com/a.jpg", "ftp://x"}
	record["inventory"] = -1
	record["sale_price"] = "40.00"
	record["sale_price_effective_date"] = "yesterday"

	ok, errs := Validate(record)

	assert.False(t, ok)
	assert.Len(t, errs, 5)
	assert.Contains(t, errs[0], "image_url must be an http(s) URL")
	assert.Contains(t, errs[1], "additional_image_urls contains an invalid URL: ftp://x")
	assert.Contains(t, errs[2], "inventory must be a non-negative integer")
	assert.Contains(t, errs[3], "exceeds price")
	assert.Contains(t, errs[4], "sale_price_effective_date")
}

func TestValidate_ValidOptionalFields(t *testing.T) {
	record := validProduct()
	record["image_url"] = "https://cdn.example.com/cup.jpg"
	record["url"] = "https://shop.example.com/cup"
	record["inventory"] = float64(12)
	record["sale_price"] = "19.99"
	record["sale_price_effective_date"] = "2024-01-01T00:00:00+01:00/2024-01-31T23:59:59+01:00"
	record["brand"] = "Acme"

	ok, errs := Validate(record)

	assert.True(t, ok, "errors: %v", errs)
}

func TestAsError(t *testing.T) {
	assert.NoError(t, AsError(nil))

	err := AsError([]string{"a", "b"})
	var validationErr *apierrors.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, []string{"a", "b"}, validationErr.Errors)
	assert.Equal(t, apierrors.KindValidation, apierrors.KindOf(err))
}

func TestNormalize_ConvertsPriceAndCurrency(t *testing.T) {
	record := validProduct()

	out, err := Normalize(record, testDefaults)

	require.NoError(t, err)
	assert.Equal(t, models.MinorUnits(2999), out["price"])
	assert.Equal(t, "EUR", out["currency"])
	assert.Equal(t, "29.99", record["price"], "input must not be modified")
	assert.Equal(t, "eur", record["currency"], "input must not be modified")
}

func TestNormalize_PriceConversions(t *testing.T) {
	tests := []struct {
		in   interface{}
		want models.MinorUnits
	}{
		{"29.99", 2999},
		{"12,50", 1250},
		{"1", 100},
		{19.99, 1999},
		{0.1, 10},
		{7, 700},
		{"10.005", 1001},
		{"-5.00", 500},
		{"10-20", 102000},
		{"92233720368547758.07", math.MaxInt64},
	}

	for _, tt := range tests {
		out, err := Normalize(models.ProductRecord{"price": tt.in}, Defaults{})
		require.NoError(t, err)
		assert.Equal(t, tt.want, out["price"], "input %v", tt.in)
	}
}

func TestNormalize_IsIdempotentOnItsOwnOutput(t *testing.T) {
	once, err := Normalize(validProduct(), testDefaults)
	require.NoError(t, err)

	twice, err := Normalize(once, testDefaults)
	require.NoError(t, err)

	assert.Equal(t, once, twice)
}

func TestNormalize_DefaultsOnlyForAbsentKeys(t *testing.T) {
	out, err := Normalize(models.ProductRecord{"retailer_id": "x", "condition": "used"}, testDefaults)
	require.NoError(t, err)

	assert.Equal(t, "EUR", out["currency"])
	assert.Equal(t, "in stock", out["availability"])
	assert.Equal(t, "used", out["condition"])

	out, err = Normalize(models.ProductRecord{"availability": ""}, testDefaults)
	require.NoError(t, err)
	assert.Equal(t, "", out["availability"], "present keys are never replaced")
}

func TestNormalize_PassesUnknownFieldsThrough(t *testing.T) {
	record := validProduct()
	record["custom_label_0"] = "summer"

	out, err := Normalize(record, testDefaults)

	require.NoError(t, err)
	assert.Equal(t, "summer", out["custom_label_0"])
}

func TestNormalize_InvalidPrice(t *testing.T) {
	_, err := Normalize(models.ProductRecord{"price": "n/a"}, testDefaults)

	assert.ErrorIs(t, err, ErrInvalidPriceFormat)
}

func TestNormalize_PriceOutOfRange(t *testing.T) {
	_, err := Normalize(models.ProductRecord{"price": "92233720368547758.08"}, testDefaults)

	assert.ErrorIs(t, err, ErrPriceOutOfRange)
}

func TestValidate_InventoryOutOfRange(t *testing.T) {
	for _, inventory := range []interface{}{1e19, math.Inf(1), math.NaN(), float64(math.MaxInt64)} {
		record := validProduct()
		record["inventory"] = inventory

		ok, errs := Validate(record)

		assert.False(t, ok, "inventory %v", inventory)
		require.Len(t, errs, 1)
		assert.Contains(t, errs[0], "inventory must be a non-negative integer")
	}
}

func TestValidate_NaNPriceDoesNotPanic(t *testing.T) {
	record := validProduct()
	record["price"] = math.NaN()
	record["sale_price"] = math.Inf(1)

	assert.NotPanics(t, func() {
		ok, errs := Validate(record)
		assert.False(t, ok)
		assert.Len(t, errs, 2)
	})
}

func TestValidateUpdate_ScopesErrorsToSuppliedFields(t *testing.T) {
	ok, errs := ValidateUpdate("SKU-001", models.ProductRecord{"price": "19.99"})
	assert.True(t, ok, "errors: %v", errs)

	ok, errs = ValidateUpdate("SKU-001", models.ProductRecord{"currency": "BTC", "name": ""})
	assert.False(t, ok)
	require.Len(t, errs, 2)
	assert.Equal(t, "missing required field: name", errs[0])
	assert.Contains(t, errs[1], "unsupported currency: BTC")
}

func TestValidateUpdate_SalePriceWithoutPrice(t *testing.T) {
	ok, errs := ValidateUpdate("SKU-001", models.ProductRecord{"sale_price": "50.00"})

	assert.True(t, ok, "placeholder price must not be compared: %v", errs)
}

func TestValidateUpdate_RetailerIDIsImmutable(t *testing.T) {
	ok, errs := ValidateUpdate("SKU-001", models.ProductRecord{"retailer_id": "SKU-002"})

	assert.False(t, ok)
	assert.Contains(t, errs, "retailer_id cannot be changed: SKU-002")

	ok, _ = ValidateUpdate("SKU-001", models.ProductRecord{"retailer_id": "SKU-001"})
	assert.True(t, ok)
}

func TestValidateUpdate_MissingRetailerID(t *testing.T) {
	ok, errs := ValidateUpdate("", models.ProductRecord{"name": "x"})

	assert.False(t, ok)
	assert.Contains(t, errs, "missing required field: retailer_id")
}
