package models

// MessageText holds the optional texts of an interactive message.
type MessageText struct {
	Body   string `json:"body,omitempty"`
	Header string `json:"header,omitempty"`
	Footer string `json:"footer,omitempty"`
	// ThumbnailRetailerID picks the product shown on a catalog message.
	ThumbnailRetailerID string `json:"thumbnailRetailerId,omitempty"`
}

// InteractiveMessage is the Cloud API payload for interactive messages.
type InteractiveMessage struct {
	MessagingProduct string      `json:"messaging_product"`
	RecipientType    string      `json:"recipient_type,omitempty"`
	To               string      `json:"to"`
	Type             string      `json:"type"`
	Interactive      Interactive `json:"interactive"`
}

type Interactive struct {
	Type   string             `json:"type"`
	Header *InteractiveHeader `json:"header,omitempty"`
	Body   InteractiveText    `json:"body"`
	Footer *InteractiveText   `json:"footer,omitempty"`
	Action InteractiveAction  `json:"action"`
}

type InteractiveHeader struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type InteractiveText struct {
	Text string `json:"text"`
}

// InteractiveAction covers both single-product and catalog messages.
type InteractiveAction struct {
	Name              string             `json:"name,omitempty"`
	CatalogID         string             `json:"catalog_id,omitempty"`
	ProductRetailerID string             `json:"product_retailer_id,omitempty"`
	Parameters        *CatalogParameters `json:"parameters,omitempty"`
}

type CatalogParameters struct {
	ThumbnailProductRetailerID string `json:"thumbnail_product_retailer_id"`
}

// MessageResult is the Cloud API answer to a send.
type MessageResult struct {
	MessagingProduct string `json:"messaging_product"`
	Contacts         []struct {
		Input string `json:"input"`
		WaID  string `json:"wa_id"`
	} `json:"contacts"`
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

// MessageID returns the id of the first accepted message.
func (r *MessageResult) MessageID() string {
	if r == nil || len(r.Messages) == 0 {
		return ""
	}
	return r.Messages[0].ID
}
