package events

import (
	"context"
	"time"

	"github.com/Tesseract-Nexus/go-shared/events"
	"github.com/sirupsen/logrus"
)

// Catalog event types
const (
	ProductCreated  = "catalog.product_created"
	ProductUpdated  = "catalog.product_updated"
	ProductDeleted  = "catalog.product_deleted"
	MessageSent     = "catalog.message_sent"
	ImportCompleted = "catalog.import_completed"

	StreamCatalog = "CATALOG_EVENTS"
)

// CatalogEvent represents a catalog-related event
type CatalogEvent struct {
	events.BaseEvent
	CatalogID   string `json:"catalogId"`
	RetailerID  string `json:"retailerId,omitempty"`
	ProductID   string `json:"productId,omitempty"`
	MessageType string `json:"messageType,omitempty"`
	MessageID   string `json:"messageId,omitempty"`
	Recipient   string `json:"recipient,omitempty"`
	JobID       string `json:"jobId,omitempty"`
	Status      string `json:"status,omitempty"`
	Total       int    `json:"total,omitempty"`
	Succeeded   int    `json:"succeeded,omitempty"`
	Failed      int    `json:"failed,omitempty"`
}

func (e *CatalogEvent) GetSubject() string {
	return e.EventType
}

func (e *CatalogEvent) GetStream() string {
	return StreamCatalog
}

// Publisher wraps the shared events publisher for catalog events
type Publisher struct {
	publisher *events.Publisher
	tenantID  string
	logger    *logrus.Entry
}

// NewPublisher connects to NATS and makes sure the catalog stream exists.
// tenantID is stamped on every event; the business account id is used.
func NewPublisher(natsURL, tenantID string, logger *logrus.Logger) (*Publisher, error) {
	config := events.DefaultPublisherConfig(natsURL)
	config.Name = "whatsapp-catalog-service"

	publisher, err := events.NewPublisher(config, logger)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	if err := publisher.EnsureStream(ctx, StreamCatalog, []string{"catalog.>"}); err != nil {
		logger.WithError(err).Warn("Failed to ensure CATALOG_EVENTS stream")
	}

	return &Publisher{
		publisher: publisher,
		tenantID:  tenantID,
		logger:    logger.WithField("component", "events.publisher"),
	}, nil
}

func (p *Publisher) newEvent(eventType, catalogID, sourceID string) *CatalogEvent {
	return &CatalogEvent{
		BaseEvent: events.BaseEvent{
			EventType: eventType,
			TenantID:  p.tenantID,
			SourceID:  sourceID,
			Timestamp: time.Now().UTC(),
		},
		CatalogID: catalogID,
	}
}

// PublishProductCreated publishes a product created event
func (p *Publisher) PublishProductCreated(ctx context.Context, catalogID, retailerID, productID string) error {
	event := p.newEvent(ProductCreated, catalogID, retailerID)
	event.RetailerID = retailerID
	event.ProductID = productID
	return p.publisher.Publish(ctx, event)
}

// PublishProductUpdated publishes a product updated event
func (p *Publisher) PublishProductUpdated(ctx context.Context, catalogID, retailerID string) error {
	event := p.newEvent(ProductUpdated, catalogID, retailerID)
	event.RetailerID = retailerID
	return p.publisher.Publish(ctx, event)
}

// PublishProductDeleted publishes a product deleted event
func (p *Publisher) PublishProductDeleted(ctx context.Context, catalogID, retailerID string) error {
	event := p.newEvent(ProductDeleted, catalogID, retailerID)
	event.RetailerID = retailerID
	event.Status = "DELETED"
	return p.publisher.Publish(ctx, event)
}

// PublishMessageSent publishes a message sent event. recipient must already be masked.
func (p *Publisher) PublishMessageSent(ctx context.Context, catalogID, messageType, messageID, recipient string) error {
	event := p.newEvent(MessageSent, catalogID, messageID)
	event.MessageType = messageType
	event.MessageID = messageID
	event.Recipient = recipient
	return p.publisher.Publish(ctx, event)
}

// PublishImportCompleted publishes the final state of an import job
func (p *Publisher) PublishImportCompleted(ctx context.Context, catalogID, jobID, status string, total, succeeded, failed int) error {
	event := p.newEvent(ImportCompleted, catalogID, jobID)
	event.JobID = jobID
	event.Status = status
	event.Total = total
	event.Succeeded = succeeded
	event.Failed = failed
	return p.publisher.Publish(ctx, event)
}

// IsConnected returns true if connected to NATS
func (p *Publisher) IsConnected() bool {
	return p.publisher.IsConnected()
}

// Close closes the publisher connection
func (p *Publisher) Close() {
	p.publisher.Close()
}
