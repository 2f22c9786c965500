package catalog

import (
	"context"
	"net/http"
	"net/url"

	"github.com/sirupsen/logrus"

	"whatsapp-catalog-service/internal/clients"
	"whatsapp-catalog-service/internal/models"
	"whatsapp-catalog-service/internal/validation"
)

// CreateHomeListing adds a listing to a home_listings catalog.
func (m *Manager) CreateHomeListing(ctx context.Context, listing models.ProductRecord) (*models.WriteResult, error) {
	if err := m.require("add home listings", needCatalog); err != nil {
		return nil, err
	}
	if ok, errs := validation.ValidateHomeListing(listing); !ok {
		return nil, validation.AsError(errs)
	}
	payload := validation.NormalizeHomeListing(listing)

	endpoint := m.cfg.BaseURL() + "/" + url.PathEscape(m.cfg.CatalogID) + "/home_listings"
	resp, err := m.exec.Execute(ctx, http.MethodPost, endpoint, &clients.RequestOptions{Body: payload})
	if err != nil {
		m.logger.WithError(err).WithField("home_listing_id", payload["home_listing_id"]).Error("Failed to add home listing")
		return nil, err
	}

	data := decodeObject(resp)
	id, _ := data["id"].(string)
	m.logger.WithFields(logrus.Fields{
		"home_listing_id": payload["home_listing_id"],
		"listing_id":      id,
	}).Info("Home listing added")
	return &models.WriteResult{Success: true, ID: id}, nil
}
