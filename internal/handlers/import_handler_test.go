package handlers

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"whatsapp-catalog-service/internal/models"
	"whatsapp-catalog-service/internal/repository"
	"whatsapp-catalog-service/internal/services"
)

func TestImportHandler_CreateJob(t *testing.T) {
	router, mocks := setupTestRouter()
	job := &models.ImportJob{ID: uuid.New(), CatalogID: "cat-1", Status: models.ImportStatusPending}
	mocks.imports.On("CreateJob", mock.Anything, mock.MatchedBy(func(req *services.CreateImportRequest) bool {
		return len(req.Products) == 2 && req.IdempotencyKey == "upload-7"
	})).Return(job, nil)

	req := map[string]interface{}{
		"products": []map[string]string{{"retailer_id": "A"}, {"retailer_id": "B"}},
	}
	w := doRequestWithHeader(router, http.MethodPost, "/api/v1/catalog/imports", req, "Idempotency-Key", "upload-7")

	assert.Equal(t, http.StatusAccepted, w.Code)
	data := decodeBody(t, w)["data"].(map[string]interface{})
	assert.Equal(t, job.ID.String(), data["id"])
	mocks.imports.AssertExpectations(t)
}

func TestImportHandler_CreateJobConflict(t *testing.T) {
	router, mocks := setupTestRouter()
	mocks.imports.On("CreateJob", mock.Anything, mock.Anything).Return(nil, services.ErrImportRunning)

	w := doRequest(router, http.MethodPost, "/api/v1/catalog/imports", map[string]interface{}{
		"products": []map[string]string{{"retailer_id": "A"}},
	})

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestImportHandler_GetJob(t *testing.T) {
	router, mocks := setupTestRouter()
	id := uuid.New()
	mocks.imports.On("GetJob", mock.Anything, id).Return(nil, services.ErrJobNotFound)

	w := doRequest(router, http.MethodGet, "/api/v1/catalog/imports/"+id.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(router, http.MethodGet, "/api/v1/catalog/imports/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestImportHandler_ListJobs(t *testing.T) {
	router, mocks := setupTestRouter()
	jobs := []models.ImportJob{{ID: uuid.New(), Status: models.ImportStatusCompleted}}
	mocks.imports.On("ListJobs", mock.Anything, &repository.ImportListOptions{
		Status: "COMPLETED", Limit: 5, Offset: 0,
	}).Return(jobs, int64(1), nil)

	w := doRequest(router, http.MethodGet, "/api/v1/catalog/imports?status=COMPLETED&limit=5", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decodeBody(t, w)["total"])
}

func TestImportHandler_CancelJob(t *testing.T) {
	router, mocks := setupTestRouter()
	running, finished := uuid.New(), uuid.New()
	mocks.imports.On("CancelJob", mock.Anything, running).Return(nil)
	mocks.imports.On("CancelJob", mock.Anything, finished).Return(services.ErrJobNotRunning)

	w := doRequest(router, http.MethodPost, "/api/v1/catalog/imports/"+running.String()+"/cancel", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, http.MethodPost, "/api/v1/catalog/imports/"+finished.String()+"/cancel", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestImportHandler_ListItems(t *testing.T) {
	router, mocks := setupTestRouter()
	id := uuid.New()
	items := []models.ImportJobItem{{ImportJobID: id, Position: 1, RetailerID: "B", Error: "rejected"}}
	mocks.imports.On("ListItems", mock.Anything, id, &repository.ItemListOptions{
		FailedOnly: true, Limit: 100, Offset: 0,
	}).Return(items, int64(1), nil)

	w := doRequest(router, http.MethodGet, "/api/v1/catalog/imports/"+id.String()+"/items?failedOnly=true", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeBody(t, w)["data"], 1)
}
