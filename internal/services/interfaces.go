package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"whatsapp-catalog-service/internal/catalog"
	"whatsapp-catalog-service/internal/config"
	"whatsapp-catalog-service/internal/models"
)

// CatalogManager is the subset of *catalog.Manager the services use.
type CatalogManager interface {
	Config() *config.Config
	Create(ctx context.Context, record models.ProductRecord) (*models.WriteResult, error)
	Update(ctx context.Context, retailerID string, fields models.ProductRecord) (*models.WriteResult, error)
	Get(ctx context.Context, retailerID string) (models.ProductRecord, error)
	List(ctx context.Context, limit int, after string) (*models.ProductPage, error)
	Delete(ctx context.Context, retailerID string) (bool, error)
	BatchCreate(ctx context.Context, records []models.ProductRecord, opts ...catalog.BatchOption) ([]models.BatchResult, error)
	GetCatalogInfo(ctx context.Context) (*models.CatalogInfo, error)
	DetectVertical(ctx context.Context) models.Vertical
	CreateHomeListing(ctx context.Context, listing models.ProductRecord) (*models.WriteResult, error)
	SendProductMessage(ctx context.Context, phone, retailerID string, text models.MessageText) (*models.MessageResult, error)
	SendCatalogMessage(ctx context.Context, phone string, text models.MessageText) (*models.MessageResult, error)
}

var _ CatalogManager = (*catalog.Manager)(nil)

// EventPublisher emits catalog events. A nil EventPublisher disables events.
type EventPublisher interface {
	PublishProductCreated(ctx context.Context, catalogID, retailerID, productID string) error
	PublishProductUpdated(ctx context.Context, catalogID, retailerID string) error
	PublishProductDeleted(ctx context.Context, catalogID, retailerID string) error
	PublishMessageSent(ctx context.Context, catalogID, messageType, messageID, recipient string) error
	PublishImportCompleted(ctx context.Context, catalogID, jobID, status string, total, succeeded, failed int) error
}

const publishTimeout = 5 * time.Second

// publishEvent emits an event on a context detached from the request.
// Failures are logged and never reach the caller.
func publishEvent(publisher EventPublisher, logger *logrus.Entry, event string, fn func(ctx context.Context) error) {
	if publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		logger.WithError(err).WithField("event", event).Warn("Failed to publish catalog event")
	}
}
