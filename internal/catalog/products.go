package catalog

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sirupsen/logrus"

	"whatsapp-catalog-service/internal/apierrors"
	"whatsapp-catalog-service/internal/clients"
	"whatsapp-catalog-service/internal/models"
	"whatsapp-catalog-service/internal/validation"
)

const (
	MaxListLimit = 100

	productFields = "id,retailer_id,name,description,price,currency,availability,condition,brand,category,image_url,url,inventory,sale_price"
)

// Create validates, normalizes and adds a product. It is not idempotent:
// calling it twice with the same retailer_id is rejected or duplicated by the
// remote service.
func (m *Manager) Create(ctx context.Context, record models.ProductRecord) (*models.WriteResult, error) {
	if err := m.require("add products", needCatalog); err != nil {
		return nil, err
	}
	data, err := m.create(ctx, record)
	if err != nil {
		return nil, err
	}
	id, _ := data["id"].(string)
	return &models.WriteResult{Success: true, ID: id}, nil
}

func (m *Manager) create(ctx context.Context, record models.ProductRecord) (map[string]interface{}, error) {
	if ok, errs := validation.Validate(record); !ok {
		return nil, validation.AsError(errs)
	}
	payload, err := validation.Normalize(record, m.defaults)
	if err != nil {
		return nil, &apierrors.ValidationError{Errors: []string{err.Error()}}
	}

	retailerID := payload.RetailerID()
	resp, err := m.exec.Execute(ctx, http.MethodPost, m.cfg.CatalogURL(), &clients.RequestOptions{Body: payload})
	if err != nil {
		m.logger.WithError(err).WithField("retailer_id", retailerID).Error("Failed to add product")
		return nil, err
	}

	data := decodeObject(resp)
	m.logger.WithFields(logrus.Fields{
		"retailer_id": retailerID,
		"product_id":  data["id"],
	}).Info("Product added to catalog")
	return data, nil
}

// Update sends a partial update. Only the supplied keys are transmitted,
// validated and normalized as they would be on create.
func (m *Manager) Update(ctx context.Context, retailerID string, fields models.ProductRecord) (*models.WriteResult, error) {
	if err := m.require("update products", needCatalog); err != nil {
		return nil, err
	}
	if ok, errs := validation.ValidateUpdate(retailerID, fields); !ok {
		return nil, validation.AsError(errs)
	}
	normalized, err := validation.Normalize(validation.MergeUpdate(retailerID, fields), m.defaults)
	if err != nil {
		return nil, &apierrors.ValidationError{Errors: []string{err.Error()}}
	}
	payload := models.ProductRecord{}
	for k := range fields {
		payload[k] = normalized[k]
	}

	resp, err := m.exec.Execute(ctx, http.MethodPost, m.productURL(retailerID), &clients.RequestOptions{Body: payload})
	if err != nil {
		m.logger.WithError(err).WithField("retailer_id", retailerID).Error("Failed to update product")
		return nil, err
	}

	data := decodeObject(resp)
	success := true
	if v, ok := data["success"].(bool); ok {
		success = v
	}
	m.logger.WithField("retailer_id", retailerID).Info("Product updated")
	return &models.WriteResult{Success: success, ID: retailerID}, nil
}

// Get fetches one product. A missing product yields an error matching
// apierrors.ErrNotFound.
func (m *Manager) Get(ctx context.Context, retailerID string) (models.ProductRecord, error) {
	if err := m.require("read products", needCatalog); err != nil {
		return nil, err
	}
	if retailerID == "" {
		return nil, &apierrors.ValidationError{Errors: []string{"missing required field: retailer_id"}}
	}

	resp, err := m.exec.Execute(ctx, http.MethodGet, m.productURL(retailerID), &clients.RequestOptions{
		Query: url.Values{"fields": {productFields}},
	})
	if err != nil {
		if apierrors.IsNotFound(err) {
			return nil, fmt.Errorf("product %s: %w", retailerID, err)
		}
		m.logger.WithError(err).WithField("retailer_id", retailerID).Error("Failed to get product")
		return nil, err
	}

	var product models.ProductRecord
	if err := resp.Decode(&product); err != nil {
		return nil, fmt.Errorf("decode product %s: %w", retailerID, err)
	}
	m.logger.WithField("retailer_id", retailerID).Debug("Product fetched")
	return product, nil
}

type listResponse struct {
	Data   []models.ProductRecord `json:"data"`
	Paging struct {
		Cursors struct {
			Before string `json:"before"`
			After  string `json:"after"`
		} `json:"cursors"`
		Next string `json:"next"`
	} `json:"paging"`
}

// List returns one page of products. limit is clamped to 1..100; after is the
// cursor returned by the previous page.
func (m *Manager) List(ctx context.Context, limit int, after string) (*models.ProductPage, error) {
	if err := m.require("list products", needCatalog); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > MaxListLimit {
		limit = MaxListLimit
	}
	query := url.Values{
		"limit":  {strconv.Itoa(limit)},
		"fields": {productFields},
	}
	if after != "" {
		query.Set("after", after)
	}

	resp, err := m.exec.Execute(ctx, http.MethodGet, m.cfg.CatalogURL(), &clients.RequestOptions{Query: query})
	if err != nil {
		m.logger.WithError(err).Error("Failed to list products")
		return nil, err
	}

	var body listResponse
	if err := resp.Decode(&body); err != nil {
		return nil, fmt.Errorf("decode product list: %w", err)
	}
	page := &models.ProductPage{
		Products: body.Data,
		After:    body.Paging.Cursors.After,
		Before:   body.Paging.Cursors.Before,
		HasMore:  body.Paging.Next != "",
	}
	if page.Products == nil {
		page.Products = []models.ProductRecord{}
	}
	m.logger.WithField("count", len(page.Products)).Debug("Products listed")
	return page, nil
}

// Delete removes a product and reports true on success.
func (m *Manager) Delete(ctx context.Context, retailerID string) (bool, error) {
	if err := m.require("delete products", needCatalog); err != nil {
		return false, err
	}
	if retailerID == "" {
		return false, &apierrors.ValidationError{Errors: []string{"missing required field: retailer_id"}}
	}

	if _, err := m.exec.Execute(ctx, http.MethodDelete, m.productURL(retailerID), nil); err != nil {
		m.logger.WithError(err).WithField("retailer_id", retailerID).Error("Failed to delete product")
		return false, err
	}
	m.logger.WithField("retailer_id", retailerID).Info("Product deleted")
	return true, nil
}

func (m *Manager) productURL(retailerID string) string {
	return m.cfg.CatalogURL() + "/" + url.PathEscape(retailerID)
}
