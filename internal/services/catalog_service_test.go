package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"whatsapp-catalog-service/internal/apierrors"
	"whatsapp-catalog-service/internal/models"
)

func TestCatalogService_CreateProductPublishesEvent(t *testing.T) {
	manager := newMockManager()
	publisher := new(MockPublisher)
	record := models.ProductRecord{"retailer_id": "SKU-1"}

	manager.On("Create", mock.Anything, record).Return(&models.WriteResult{Success: true, ID: "42"}, nil)
	publisher.On("PublishProductCreated", mock.Anything, "cat-1", "SKU-1", "42").Return(nil)

	svc := NewCatalogService(manager, publisher, testLogger())
	result, err := svc.CreateProduct(context.Background(), record)

	require.NoError(t, err)
	assert.Equal(t, "42", result.ID)
	manager.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestCatalogService_PublishFailureDoesNotFailOperation(t *testing.T) {
	manager := newMockManager()
	publisher := new(MockPublisher)

	manager.On("Delete", mock.Anything, "SKU-1").Return(true, nil)
	publisher.On("PublishProductDeleted", mock.Anything, "cat-1", "SKU-1").Return(errors.New("nats down"))

	svc := NewCatalogService(manager, publisher, testLogger())
	ok, err := svc.DeleteProduct(context.Background(), "SKU-1")

	require.NoError(t, err)
	assert.True(t, ok)
	publisher.AssertExpectations(t)
}

func TestCatalogService_NoEventOnFailure(t *testing.T) {
	manager := newMockManager()
	publisher := new(MockPublisher)

	manager.On("Update", mock.Anything, "SKU-1", mock.Anything).Return(nil, apierrors.NewRemoteAPIError(500, nil))

	svc := NewCatalogService(manager, publisher, testLogger())
	_, err := svc.UpdateProduct(context.Background(), "SKU-1", models.ProductRecord{"price": 10})

	assert.Equal(t, apierrors.KindRemote, apierrors.KindOf(err))
	publisher.AssertNotCalled(t, "PublishProductUpdated", mock.Anything, mock.Anything, mock.Anything)
}

func TestCatalogService_NilPublisher(t *testing.T) {
	manager := newMockManager()
	manager.On("Update", mock.Anything, "SKU-1", mock.Anything).Return(&models.WriteResult{Success: true, ID: "SKU-1"}, nil)

	svc := NewCatalogService(manager, nil, testLogger())
	result, err := svc.UpdateProduct(context.Background(), "SKU-1", models.ProductRecord{"price": 10})

	require.NoError(t, err)
	assert.True(t, result.Success)
}

func TestCatalogService_BatchPublishesSuccessesOnly(t *testing.T) {
	manager := newMockManager()
	publisher := new(MockPublisher)
	records := []models.ProductRecord{{"retailer_id": "A"}, {"retailer_id": "B"}}

	manager.On("BatchCreate", mock.Anything, records).Return([]models.BatchResult{
		{RetailerID: "A", Success: true, Result: map[string]interface{}{"id": "1"}},
		{RetailerID: "B", Success: false, Error: "boom"},
	}, nil)
	publisher.On("PublishProductCreated", mock.Anything, "cat-1", "A", "1").Return(nil).Once()

	svc := NewCatalogService(manager, publisher, testLogger())
	results, err := svc.BatchCreateProducts(context.Background(), records)

	require.NoError(t, err)
	assert.Len(t, results, 2)
	publisher.AssertExpectations(t)
	publisher.AssertNumberOfCalls(t, "PublishProductCreated", 1)
}

func TestCatalogService_CreateItemDispatch(t *testing.T) {
	manager := newMockManager()
	listing := models.ProductRecord{"home_listing_id": "HL-1"}
	product := models.ProductRecord{"retailer_id": "SKU-1"}

	manager.On("CreateHomeListing", mock.Anything, listing).Return(&models.WriteResult{Success: true, ID: "h1"}, nil)
	manager.On("Create", mock.Anything, product).Return(&models.WriteResult{Success: true, ID: "p1"}, nil)

	svc := NewCatalogService(manager, nil, testLogger())

	result, err := svc.CreateItem(context.Background(), &models.ItemRequest{Type: models.ItemTypeHomeListing, Data: listing})
	require.NoError(t, err)
	assert.Equal(t, "h1", result.ID)

	result, err = svc.CreateItem(context.Background(), &models.ItemRequest{Type: models.ItemTypeCommerceProduct, Data: product})
	require.NoError(t, err)
	assert.Equal(t, "p1", result.ID)

	_, err = svc.CreateItem(context.Background(), &models.ItemRequest{Type: "vehicle", Data: product})
	var validationErr *apierrors.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Errors[0], "unsupported item type: vehicle")
}

func TestCatalogService_MessageEventMasksRecipient(t *testing.T) {
	manager := newMockManager()
	publisher := new(MockPublisher)
	result := &models.MessageResult{}
	result.Messages = append(result.Messages, struct {
		ID string `json:"id"`
	}{ID: "wamid.1"})

	manager.On("SendCatalogMessage", mock.Anything, "+39 333 1234567", models.MessageText{}).Return(result, nil)
	publisher.On("PublishMessageSent", mock.Anything, "cat-1", "catalog_message", "wamid.1", "********4567").Return(nil)

	svc := NewCatalogService(manager, publisher, testLogger())
	_, err := svc.SendCatalogMessage(context.Background(), "+39 333 1234567", models.MessageText{})

	require.NoError(t, err)
	publisher.AssertExpectations(t)
}
