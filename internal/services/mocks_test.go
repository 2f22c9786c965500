package services

import (
	"context"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"

	"whatsapp-catalog-service/internal/catalog"
	"whatsapp-catalog-service/internal/config"
	"whatsapp-catalog-service/internal/models"
)

// MockCatalogManager is a mock implementation of CatalogManager
type MockCatalogManager struct {
	mock.Mock
	cfg *config.Config
}

var _ CatalogManager = (*MockCatalogManager)(nil)

func newMockManager() *MockCatalogManager {
	return &MockCatalogManager{cfg: config.New(config.WithAccessToken("t"), config.WithCatalogID("cat-1"))}
}

func (m *MockCatalogManager) Config() *config.Config { return m.cfg }

func (m *MockCatalogManager) Create(ctx context.Context, record models.ProductRecord) (*models.WriteResult, error) {
	args := m.Called(ctx, record)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WriteResult), args.Error(1)
}

func (m *MockCatalogManager) Update(ctx context.Context, retailerID string, fields models.ProductRecord) (*models.WriteResult, error) {
	args := m.Called(ctx, retailerID, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WriteResult), args.Error(1)
}

func (m *MockCatalogManager) Get(ctx context.Context, retailerID string) (models.ProductRecord, error) {
	args := m.Called(ctx, retailerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(models.ProductRecord), args.Error(1)
}

func (m *MockCatalogManager) List(ctx context.Context, limit int, after string) (*models.ProductPage, error) {
	args := m.Called(ctx, limit, after)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProductPage), args.Error(1)
}

func (m *MockCatalogManager) Delete(ctx context.Context, retailerID string) (bool, error) {
	args := m.Called(ctx, retailerID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCatalogManager) BatchCreate(ctx context.Context, records []models.ProductRecord, _ ...catalog.BatchOption) ([]models.BatchResult, error) {
	args := m.Called(ctx, records)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.BatchResult), args.Error(1)
}

func (m *MockCatalogManager) GetCatalogInfo(ctx context.Context) (*models.CatalogInfo, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CatalogInfo), args.Error(1)
}

func (m *MockCatalogManager) DetectVertical(ctx context.Context) models.Vertical {
	args := m.Called(ctx)
	return args.Get(0).(models.Vertical)
}

func (m *MockCatalogManager) CreateHomeListing(ctx context.Context, listing models.ProductRecord) (*models.WriteResult, error) {
	args := m.Called(ctx, listing)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WriteResult), args.Error(1)
}

func (m *MockCatalogManager) SendProductMessage(ctx context.Context, phone, retailerID string, text models.MessageText) (*models.MessageResult, error) {
	args := m.Called(ctx, phone, retailerID, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MessageResult), args.Error(1)
}

func (m *MockCatalogManager) SendCatalogMessage(ctx context.Context, phone string, text models.MessageText) (*models.MessageResult, error) {
	args := m.Called(ctx, phone, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MessageResult), args.Error(1)
}

// MockPublisher is a mock implementation of EventPublisher
type MockPublisher struct {
	mock.Mock
}

var _ EventPublisher = (*MockPublisher)(nil)

func (m *MockPublisher) PublishProductCreated(ctx context.Context, catalogID, retailerID, productID string) error {
	return m.Called(ctx, catalogID, retailerID, productID).Error(0)
}

func (m *MockPublisher) PublishProductUpdated(ctx context.Context, catalogID, retailerID string) error {
	return m.Called(ctx, catalogID, retailerID).Error(0)
}

func (m *MockPublisher) PublishProductDeleted(ctx context.Context, catalogID, retailerID string) error {
	return m.Called(ctx, catalogID, retailerID).Error(0)
}

func (m *MockPublisher) PublishMessageSent(ctx context.Context, catalogID, messageType, messageID, recipient string) error {
	return m.Called(ctx, catalogID, messageType, messageID, recipient).Error(0)
}

func (m *MockPublisher) PublishImportCompleted(ctx context.Context, catalogID, jobID, status string, total, succeeded, failed int) error {
	return m.Called(ctx, catalogID, jobID, status, total, succeeded, failed).Error(0)
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
