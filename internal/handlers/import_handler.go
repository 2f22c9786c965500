package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"whatsapp-catalog-service/internal/models"
	"whatsapp-catalog-service/internal/repository"
	"whatsapp-catalog-service/internal/services"
)

// ImportAPI runs and inspects asynchronous import jobs.
type ImportAPI interface {
	CreateJob(ctx context.Context, req *services.CreateImportRequest) (*models.ImportJob, error)
	GetJob(ctx context.Context, id uuid.UUID) (*models.ImportJob, error)
	ListJobs(ctx context.Context, opts *repository.ImportListOptions) ([]models.ImportJob, int64, error)
	ListItems(ctx context.Context, jobID uuid.UUID, opts *repository.ItemListOptions) ([]models.ImportJobItem, int64, error)
	CancelJob(ctx context.Context, id uuid.UUID) error
}

// ImportHandler handles import job endpoints
type ImportHandler struct {
	service ImportAPI
}

// NewImportHandler creates a new import handler
func NewImportHandler(service ImportAPI) *ImportHandler {
	return &ImportHandler{service: service}
}

// ListJobs returns the import jobs of the catalog
func (h *ImportHandler) ListJobs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	jobs, total, err := h.service.ListJobs(c.Request.Context(), &repository.ImportListOptions{
		Status: c.Query("status"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  jobs,
		"total": total,
	})
}

// CreateJob starts a new import job
func (h *ImportHandler) CreateJob(c *gin.Context) {
	var req services.CreateImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if req.IdempotencyKey == "" {
		req.IdempotencyKey = c.GetHeader("Idempotency-Key")
	}

	job, err := h.service.CreateJob(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"data": job})
}

// GetJob returns a single import job
func (h *ImportHandler) GetJob(c *gin.Context) {
	id, ok := parseJobID(c)
	if !ok {
		return
	}

	job, err := h.service.GetJob(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": job})
}

// CancelJob cancels a running import job
func (h *ImportHandler) CancelJob(c *gin.Context) {
	id, ok := parseJobID(c)
	if !ok {
		return
	}

	if err := h.service.CancelJob(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "job cancelled"})
}

// ListItems returns the per-product outcomes of an import job
func (h *ImportHandler) ListItems(c *gin.Context) {
	id, ok := parseJobID(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	items, total, err := h.service.ListItems(c.Request.Context(), id, &repository.ItemListOptions{
		FailedOnly: c.Query("failedOnly") == "true",
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  items,
		"total": total,
	})
}

func parseJobID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}
