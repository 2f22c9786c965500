package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"whatsapp-catalog-service/internal/apierrors"
	"whatsapp-catalog-service/internal/catalog"
	"whatsapp-catalog-service/internal/models"
)

// CatalogService handles catalog operations and emits their events
type CatalogService struct {
	manager   CatalogManager
	publisher EventPublisher
	logger    *logrus.Entry
}

// NewCatalogService creates a new catalog service. publisher may be nil.
func NewCatalogService(manager CatalogManager, publisher EventPublisher, logger *logrus.Logger) *CatalogService {
	return &CatalogService{
		manager:   manager,
		publisher: publisher,
		logger:    logger.WithField("component", "catalog_service"),
	}
}

func (s *CatalogService) catalogID() string {
	return s.manager.Config().CatalogID
}

// GetCatalogInfo returns the catalog's metadata
func (s *CatalogService) GetCatalogInfo(ctx context.Context) (*models.CatalogInfo, error) {
	return s.manager.GetCatalogInfo(ctx)
}

// DetectVertical returns the catalog vertical, commerce when unknown
func (s *CatalogService) DetectVertical(ctx context.Context) models.Vertical {
	return s.manager.DetectVertical(ctx)
}

// CreateProduct adds a product to the catalog
func (s *CatalogService) CreateProduct(ctx context.Context, record models.ProductRecord) (*models.WriteResult, error) {
	result, err := s.manager.Create(ctx, record)
	if err != nil {
		return nil, err
	}
	s.publish("product_created", func(ctx context.Context) error {
		return s.publisher.PublishProductCreated(ctx, s.catalogID(), record.RetailerID(), result.ID)
	})
	return result, nil
}

// UpdateProduct applies a partial update
func (s *CatalogService) UpdateProduct(ctx context.Context, retailerID string, fields models.ProductRecord) (*models.WriteResult, error) {
	result, err := s.manager.Update(ctx, retailerID, fields)
	if err != nil {
		return nil, err
	}
	s.publish("product_updated", func(ctx context.Context) error {
		return s.publisher.PublishProductUpdated(ctx, s.catalogID(), retailerID)
	})
	return result, nil
}

// GetProduct fetches one product
func (s *CatalogService) GetProduct(ctx context.Context, retailerID string) (models.ProductRecord, error) {
	return s.manager.Get(ctx, retailerID)
}

// ListProducts returns one page of products
func (s *CatalogService) ListProducts(ctx context.Context, limit int, after string) (*models.ProductPage, error) {
	return s.manager.List(ctx, limit, after)
}

// DeleteProduct removes a product
func (s *CatalogService) DeleteProduct(ctx context.Context, retailerID string) (bool, error) {
	ok, err := s.manager.Delete(ctx, retailerID)
	if err != nil {
		return false, err
	}
	s.publish("product_deleted", func(ctx context.Context) error {
		return s.publisher.PublishProductDeleted(ctx, s.catalogID(), retailerID)
	})
	return ok, nil
}

// BatchCreateProducts adds records synchronously and returns one result per record
func (s *CatalogService) BatchCreateProducts(ctx context.Context, records []models.ProductRecord) ([]models.BatchResult, error) {
	results, err := s.manager.BatchCreate(ctx, records)
	for _, r := range results {
		if !r.Success {
			continue
		}
		r := r
		id, _ := r.Result["id"].(string)
		s.publish("product_created", func(ctx context.Context) error {
			return s.publisher.PublishProductCreated(ctx, s.catalogID(), r.RetailerID, id)
		})
	}
	return results, err
}

// CreateHomeListing adds a home listing
func (s *CatalogService) CreateHomeListing(ctx context.Context, listing models.ProductRecord) (*models.WriteResult, error) {
	result, err := s.manager.CreateHomeListing(ctx, listing)
	if err != nil {
		return nil, err
	}
	listingID, _ := listing["home_listing_id"].(string)
	s.publish("product_created", func(ctx context.Context) error {
		return s.publisher.PublishProductCreated(ctx, s.catalogID(), listingID, result.ID)
	})
	return result, nil
}

// CreateItem dispatches a typed item to the matching create operation
func (s *CatalogService) CreateItem(ctx context.Context, req *models.ItemRequest) (*models.WriteResult, error) {
	switch req.Type {
	case models.ItemTypeHomeListing:
		return s.CreateHomeListing(ctx, req.Data)
	case models.ItemTypeCommerceProduct:
		return s.CreateProduct(ctx, req.Data)
	}
	return nil, &apierrors.ValidationError{Errors: []string{
		fmt.Sprintf("unsupported item type: %s (use %q or %q)", req.Type, models.ItemTypeHomeListing, models.ItemTypeCommerceProduct),
	}}
}

// SendProductMessage sends a single-product message
func (s *CatalogService) SendProductMessage(ctx context.Context, phone, retailerID string, text models.MessageText) (*models.MessageResult, error) {
	result, err := s.manager.SendProductMessage(ctx, phone, retailerID, text)
	if err != nil {
		return nil, err
	}
	s.publishMessageSent("product", phone, result)
	return result, nil
}

// SendCatalogMessage sends a whole-catalog message
func (s *CatalogService) SendCatalogMessage(ctx context.Context, phone string, text models.MessageText) (*models.MessageResult, error) {
	result, err := s.manager.SendCatalogMessage(ctx, phone, text)
	if err != nil {
		return nil, err
	}
	s.publishMessageSent("catalog_message", phone, result)
	return result, nil
}

func (s *CatalogService) publishMessageSent(messageType, phone string, result *models.MessageResult) {
	recipient := catalog.MaskPhone(catalog.NormalizePhone(phone))
	s.publish("message_sent", func(ctx context.Context) error {
		return s.publisher.PublishMessageSent(ctx, s.catalogID(), messageType, result.MessageID(), recipient)
	})
}

func (s *CatalogService) publish(event string, fn func(ctx context.Context) error) {
	publishEvent(s.publisher, s.logger, event, fn)
}
