package catalog

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"whatsapp-catalog-service/internal/clients"
	"whatsapp-catalog-service/internal/models"
)

const (
	catalogInfoFields = "id,name,product_count,vertical"
	detectTimeout     = 10 * time.Second
)

// GetCatalogInfo returns the catalog's id, name, product count and vertical.
func (m *Manager) GetCatalogInfo(ctx context.Context) (*models.CatalogInfo, error) {
	return m.catalogInfo(ctx, nil)
}

func (m *Manager) catalogInfo(ctx context.Context, opts *clients.RequestOptions) (*models.CatalogInfo, error) {
	if err := m.require("read catalog info", needCatalog); err != nil {
		return nil, err
	}
	if opts == nil {
		opts = &clients.RequestOptions{}
	}
	opts.Query = url.Values{"fields": {catalogInfoFields}}

	resp, err := m.exec.Execute(ctx, http.MethodGet, m.cfg.BaseURL()+"/"+url.PathEscape(m.cfg.CatalogID), opts)
	if err != nil {
		m.logger.WithError(err).Error("Failed to get catalog info")
		return nil, err
	}
	info := &models.CatalogInfo{}
	if err := resp.Decode(info); err != nil {
		return nil, fmt.Errorf("decode catalog info: %w", err)
	}
	return info, nil
}

// DetectVertical reports the catalog vertical. It never fails: when the
// catalog cannot be read or reports no vertical, it falls back to commerce.
func (m *Manager) DetectVertical(ctx context.Context) models.Vertical {
	info, err := m.catalogInfo(ctx, &clients.RequestOptions{Timeout: detectTimeout})
	if err != nil {
		return m.fallbackVertical(err.Error())
	}
	if info.Vertical == "" {
		return m.fallbackVertical("catalog reported no vertical")
	}
	m.logger.WithField("vertical", info.Vertical).Info("Catalog vertical detected")
	return models.Vertical(info.Vertical)
}

// fallbackVertical is the single place where detection failures are absorbed.
func (m *Manager) fallbackVertical(reason string) models.Vertical {
	m.logger.WithField("reason", reason).Warn("Catalog vertical detection failed, assuming commerce")
	return models.VerticalCommerce
}
