package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"whatsapp-catalog-service/internal/models"
)

// CatalogAPI is the catalog surface used by CatalogHandler.
type CatalogAPI interface {
	GetCatalogInfo(ctx context.Context) (*models.CatalogInfo, error)
	DetectVertical(ctx context.Context) models.Vertical
	CreateProduct(ctx context.Context, record models.ProductRecord) (*models.WriteResult, error)
	UpdateProduct(ctx context.Context, retailerID string, fields models.ProductRecord) (*models.WriteResult, error)
	GetProduct(ctx context.Context, retailerID string) (models.ProductRecord, error)
	ListProducts(ctx context.Context, limit int, after string) (*models.ProductPage, error)
	DeleteProduct(ctx context.Context, retailerID string) (bool, error)
	BatchCreateProducts(ctx context.Context, records []models.ProductRecord) ([]models.BatchResult, error)
	CreateHomeListing(ctx context.Context, listing models.ProductRecord) (*models.WriteResult, error)
	CreateItem(ctx context.Context, req *models.ItemRequest) (*models.WriteResult, error)
}

// CatalogHandler handles catalog-related HTTP requests
type CatalogHandler struct {
	catalogService CatalogAPI
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalogService CatalogAPI) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
	}
}

// BatchRequest is the body of the synchronous batch endpoint.
type BatchRequest struct {
	Products []models.ProductRecord `json:"products" binding:"required"`
}

// GetInfo returns the catalog metadata
func (h *CatalogHandler) GetInfo(c *gin.Context) {
	info, err := h.catalogService.GetCatalogInfo(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": info})
}

// GetVertical returns the detected catalog vertical
func (h *CatalogHandler) GetVertical(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"vertical": h.catalogService.DetectVertical(c.Request.Context())})
}

// CreateProduct adds a product
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var record models.ProductRecord
	if err := c.ShouldBindJSON(&record); err != nil {
		badRequest(c, err.Error())
		return
	}

	result, err := h.catalogService.CreateProduct(c.Request.Context(), record)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// ListProducts returns one page of products
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "25"))
	if err != nil {
		badRequest(c, "invalid limit")
		return
	}

	page, err := h.catalogService.ListProducts(c.Request.Context(), limit, c.Query("after"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetProduct returns a product by retailer id
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	product, err := h.catalogService.GetProduct(c.Request.Context(), c.Param("retailerId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": product})
}

// UpdateProduct applies a partial update
func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	var fields models.ProductRecord
	if err := c.ShouldBindJSON(&fields); err != nil {
		badRequest(c, err.Error())
		return
	}

	result, err := h.catalogService.UpdateProduct(c.Request.Context(), c.Param("retailerId"), fields)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// DeleteProduct removes a product
func (h *CatalogHandler) DeleteProduct(c *gin.Context) {
	ok, err := h.catalogService.DeleteProduct(c.Request.Context(), c.Param("retailerId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": ok})
}

// BatchCreate adds products synchronously, one result per product
func (h *CatalogHandler) BatchCreate(c *gin.Context) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	results, err := h.catalogService.BatchCreateProducts(c.Request.Context(), req.Products)
	if err != nil && results == nil {
		respondError(c, err)
		return
	}

	succeeded := 0
	for _, r := range results {
		if r.Success {
			succeeded++
		}
	}
	body := gin.H{
		"data":      results,
		"total":     len(results),
		"succeeded": succeeded,
		"failed":    len(results) - succeeded,
	}
	if err != nil {
		body["error"] = err.Error()
	}
	c.JSON(http.StatusOK, body)
}

// CreateItem creates a typed item (commerce product or home listing)
func (h *CatalogHandler) CreateItem(c *gin.Context) {
	var req models.ItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	result, err := h.catalogService.CreateItem(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// CreateHomeListing adds a home listing
func (h *CatalogHandler) CreateHomeListing(c *gin.Context) {
	var listing models.ProductRecord
	if err := c.ShouldBindJSON(&listing); err != nil {
		badRequest(c, err.Error())
		return
	}

	result, err := h.catalogService.CreateHomeListing(c.Request.Context(), listing)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}
