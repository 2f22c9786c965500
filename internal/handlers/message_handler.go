package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"whatsapp-catalog-service/internal/models"
)

// MessageAPI sends catalog messages.
type MessageAPI interface {
	SendProductMessage(ctx context.Context, phone, retailerID string, text models.MessageText) (*models.MessageResult, error)
	SendCatalogMessage(ctx context.Context, phone string, text models.MessageText) (*models.MessageResult, error)
}

// MessageHandler handles WhatsApp message endpoints
type MessageHandler struct {
	service MessageAPI
}

// NewMessageHandler creates a new message handler
func NewMessageHandler(service MessageAPI) *MessageHandler {
	return &MessageHandler{service: service}
}

// ProductMessageRequest is the body of a single-product message
type ProductMessageRequest struct {
	Phone      string `json:"phone" binding:"required"`
	RetailerID string `json:"retailerId" binding:"required"`
	models.MessageText
}

// CatalogMessageRequest is the body of a catalog message
type CatalogMessageRequest struct {
	Phone string `json:"phone" binding:"required"`
	models.MessageText
}

// SendProduct sends an interactive single-product message
func (h *MessageHandler) SendProduct(c *gin.Context) {
	var req ProductMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	result, err := h.service.SendProductMessage(c.Request.Context(), req.Phone, req.RetailerID, req.MessageText)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"messageId": result.MessageID(),
		"data":      result,
	})
}

// SendCatalog sends an interactive catalog message
func (h *MessageHandler) SendCatalog(c *gin.Context) {
	var req CatalogMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	result, err := h.service.SendCatalogMessage(c.Request.Context(), req.Phone, req.MessageText)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"messageId": result.MessageID(),
		"data":      result,
	})
}
