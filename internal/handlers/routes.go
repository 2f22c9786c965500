package handlers

import (
	"github.com/gin-gonic/gin"

	"whatsapp-catalog-service/internal/metrics"
)

// Handlers groups every handler mounted by RegisterRoutes. Imports may be nil
// when job storage is unavailable.
type Handlers struct {
	Health   *HealthHandler
	Catalog  *CatalogHandler
	Messages *MessageHandler
	Imports  *ImportHandler
}

// RegisterRoutes mounts the service endpoints on router.
func RegisterRoutes(router *gin.Engine, h *Handlers) {
	router.GET("/health", h.Health.Health)
	router.GET("/ready", h.Health.Ready)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	v1 := router.Group("/api/v1")
	{
		catalog := v1.Group("/catalog")
		{
			catalog.GET("", h.Catalog.GetInfo)
			catalog.GET("/vertical", h.Catalog.GetVertical)

			// Products
			catalog.GET("/products", h.Catalog.ListProducts)
			catalog.POST("/products", h.Catalog.CreateProduct)
			catalog.POST("/products/batch", h.Catalog.BatchCreate)
			catalog.GET("/products/:retailerId", h.Catalog.GetProduct)
			catalog.PATCH("/products/:retailerId", h.Catalog.UpdateProduct)
			catalog.DELETE("/products/:retailerId", h.Catalog.DeleteProduct)

			// Typed items and home listings
			catalog.POST("/items", h.Catalog.CreateItem)
			catalog.POST("/home-listings", h.Catalog.CreateHomeListing)

			// Import jobs
			if h.Imports != nil {
				imports := catalog.Group("/imports")
				imports.GET("", h.Imports.ListJobs)
				imports.POST("", h.Imports.CreateJob)
				imports.GET("/:id", h.Imports.GetJob)
				imports.POST("/:id/cancel", h.Imports.CancelJob)
				imports.GET("/:id/items", h.Imports.ListItems)
			}
		}

		messages := v1.Group("/messages")
		{
			messages.POST("/product", h.Messages.SendProduct)
			messages.POST("/catalog", h.Messages.SendCatalog)
		}
	}
}
