package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"whatsapp-catalog-service/internal/models"
	"whatsapp-catalog-service/internal/repository"
	"whatsapp-catalog-service/internal/services"
)

// MockCatalogAPI is a mock implementation of CatalogAPI
type MockCatalogAPI struct {
	mock.Mock
}

var _ CatalogAPI = (*MockCatalogAPI)(nil)

func (m *MockCatalogAPI) GetCatalogInfo(ctx context.Context) (*models.CatalogInfo, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CatalogInfo), args.Error(1)
}

func (m *MockCatalogAPI) DetectVertical(ctx context.Context) models.Vertical {
	return m.Called(ctx).Get(0).(models.Vertical)
}

func (m *MockCatalogAPI) CreateProduct(ctx context.Context, record models.ProductRecord) (*models.WriteResult, error) {
	args := m.Called(ctx, record)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WriteResult), args.Error(1)
}

func (m *MockCatalogAPI) UpdateProduct(ctx context.Context, retailerID string, fields models.ProductRecord) (*models.WriteResult, error) {
	args := m.Called(ctx, retailerID, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WriteResult), args.Error(1)
}

func (m *MockCatalogAPI) GetProduct(ctx context.Context, retailerID string) (models.ProductRecord, error) {
	args := m.Called(ctx, retailerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(models.ProductRecord), args.Error(1)
}

func (m *MockCatalogAPI) ListProducts(ctx context.Context, limit int, after string) (*models.ProductPage, error) {
	args := m.Called(ctx, limit, after)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProductPage), args.Error(1)
}

func (m *MockCatalogAPI) DeleteProduct(ctx context.Context, retailerID string) (bool, error) {
	args := m.Called(ctx, retailerID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCatalogAPI) BatchCreateProducts(ctx context.Context, records []models.ProductRecord) ([]models.BatchResult, error) {
	args := m.Called(ctx, records)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.BatchResult), args.Error(1)
}

func (m *MockCatalogAPI) CreateHomeListing(ctx context.Context, listing models.ProductRecord) (*models.WriteResult, error) {
	args := m.Called(ctx, listing)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WriteResult), args.Error(1)
}

func (m *MockCatalogAPI) CreateItem(ctx context.Context, req *models.ItemRequest) (*models.WriteResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WriteResult), args.Error(1)
}

// MockMessageAPI is a mock implementation of MessageAPI
type MockMessageAPI struct {
	mock.Mock
}

var _ MessageAPI = (*MockMessageAPI)(nil)

func (m *MockMessageAPI) SendProductMessage(ctx context.Context, phone, retailerID string, text models.MessageText) (*models.MessageResult, error) {
	args := m.Called(ctx, phone, retailerID, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MessageResult), args.Error(1)
}

func (m *MockMessageAPI) SendCatalogMessage(ctx context.Context, phone string, text models.MessageText) (*models.MessageResult, error) {
	args := m.Called(ctx, phone, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MessageResult), args.Error(1)
}

// MockImportAPI is a mock implementation of ImportAPI
type MockImportAPI struct {
	mock.Mock
}

var _ ImportAPI = (*MockImportAPI)(nil)

func (m *MockImportAPI) CreateJob(ctx context.Context, req *services.CreateImportRequest) (*models.ImportJob, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ImportJob), args.Error(1)
}

func (m *MockImportAPI) GetJob(ctx context.Context, id uuid.UUID) (*models.ImportJob, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ImportJob), args.Error(1)
}

func (m *MockImportAPI) ListJobs(ctx context.Context, opts *repository.ImportListOptions) ([]models.ImportJob, int64, error) {
	args := m.Called(ctx, opts)
	return args.Get(0).([]models.ImportJob), args.Get(1).(int64), args.Error(2)
}

func (m *MockImportAPI) ListItems(ctx context.Context, jobID uuid.UUID, opts *repository.ItemListOptions) ([]models.ImportJobItem, int64, error) {
	args := m.Called(ctx, jobID, opts)
	return args.Get(0).([]models.ImportJobItem), args.Get(1).(int64), args.Error(2)
}

func (m *MockImportAPI) CancelJob(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type testMocks struct {
	catalog  *MockCatalogAPI
	messages *MockMessageAPI
	imports  *MockImportAPI
}

// Helper to setup test router
func setupTestRouter() (*gin.Engine, *testMocks) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	mocks := &testMocks{
		catalog:  new(MockCatalogAPI),
		messages: new(MockMessageAPI),
		imports:  new(MockImportAPI),
	}
	RegisterRoutes(r, &Handlers{
		Health:   NewHealthHandler(nil),
		Catalog:  NewCatalogHandler(mocks.catalog),
		Messages: NewMessageHandler(mocks.messages),
		Imports:  NewImportHandler(mocks.imports),
	})
	return r, mocks
}
