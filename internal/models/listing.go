package models

// HomeListingRequiredFields must be present and non-empty on a home listing.
var HomeListingRequiredFields = []string{
	"home_listing_id",
	"name",
	"description",
	"price",
	"currency",
	"url",
	"address",
	"images",
	"availability",
	"year_built",
}

// AddressRequiredFields must be present inside a home listing's address.
var AddressRequiredFields = []string{
	"street_address",
	"city",
	"region",
	"country",
	"postal_code",
	"latitude",
	"longitude",
}

// ItemRequest is the body of the typed item endpoint.
type ItemRequest struct {
	Type ItemType      `json:"type" binding:"required"`
	Data ProductRecord `json:"data" binding:"required"`
}
