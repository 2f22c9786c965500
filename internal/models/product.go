package models

import (
	"encoding/json"
	"strconv"
)

// Product field names as the Graph API expects them.
const (
	FieldRetailerID             = "retailer_id"
	FieldName                   = "name"
	FieldDescription            = "description"
	FieldPrice                  = "price"
	FieldCurrency               = "currency"
	FieldAvailability           = "availability"
	FieldCondition              = "condition"
	FieldBrand                  = "brand"
	FieldCategory               = "category"
	FieldImageURL               = "image_url"
	FieldAdditionalImageURLs    = "additional_image_urls"
	FieldURL                    = "url"
	FieldSize                   = "size"
	FieldColor                  = "color"
	FieldMaterial               = "material"
	FieldPattern                = "pattern"
	FieldGender                 = "gender"
	FieldAgeGroup               = "age_group"
	FieldInventory              = "inventory"
	FieldSalePrice              = "sale_price"
	FieldSalePriceEffectiveDate = "sale_price_effective_date"
)

// ProductRecord is a catalog item keyed by Graph field name. Unknown fields
// are passed through to the API untouched.
type ProductRecord map[string]interface{}

// Clone returns a shallow copy.
func (r ProductRecord) Clone() ProductRecord {
	out := make(ProductRecord, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// RetailerID returns the caller-assigned identifier, or "" if absent.
func (r ProductRecord) RetailerID() string {
	return r.String(FieldRetailerID)
}

// String returns the field as a string. Numbers are formatted; other types yield "".
func (r ProductRecord) String(field string) string {
	switch v := r[field].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case MinorUnits:
		return strconv.FormatInt(int64(v), 10)
	}
	return ""
}

// Has reports whether the key is present, even with an empty value.
func (r ProductRecord) Has(field string) bool {
	_, ok := r[field]
	return ok
}

// MinorUnits is a price already converted to the smallest currency unit
// (cents for EUR/USD). Normalization leaves values of this type alone.
type MinorUnits int64

// Vertical is the catalog type reported by the Graph API.
type Vertical string

const (
	VerticalCommerce     Vertical = "commerce"
	VerticalHomeListings Vertical = "home_listings"
)

// ItemType selects the record kind on the typed item endpoint.
type ItemType string

const (
	ItemTypeCommerceProduct ItemType = "commerce_product"
	ItemTypeHomeListing     ItemType = "home_listing"
)

// BatchResult is the outcome of one record in a batch create.
type BatchResult struct {
	RetailerID string                 `json:"retailer_id"`
	Success    bool                   `json:"success"`
	Result     map[string]interface{} `json:"result,omitempty"`
	Error      string                 `json:"error,omitempty"`
	StatusCode int                    `json:"statusCode,omitempty"`
}

// WriteResult is the response envelope for write operations.
type WriteResult struct {
	Success    bool   `json:"success"`
	ID         string `json:"id,omitempty"`
	Error      string `json:"error,omitempty"`
	StatusCode int    `json:"statusCode,omitempty"`
}

// ProductPage is one page of a product listing.
type ProductPage struct {
	Products []ProductRecord `json:"data"`
	After    string          `json:"after,omitempty"`
	Before   string          `json:"before,omitempty"`
	HasMore  bool            `json:"hasMore"`
}

// CatalogInfo is the catalog metadata returned by the info endpoint.
type CatalogInfo struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ProductCount int    `json:"product_count"`
	Vertical     string `json:"vertical,omitempty"`
}
