// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/nexpoint/nexpoint-backend/internal/config"
	"github.com/nexpoint/nexpoint-backend/internal/handlers"
	"github.com/nexpoint/nexpoint-backend/internal/middleware"
	"github.com/nexpoint/nexpoint-backend/internal/services"
	"github.com/nexpoint/nexpoint-backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) (*gin.Engine, *services.DispatchService, error) {
	// Initialize services
	storageService, err := services.NewStorageService(cfg)
	if err != nil {
		return nil, nil, err
	}
	invoiceService := services.NewInvoiceService(storageService)
	notificationService := services.NewNotificationService(cfg)
	dispatchService := services.NewDispatchService(db, invoiceService, storageService, notificationService)

	catalogService := services.NewCatalogService(db)
	inventoryService := services.NewInventoryService(db)
	orderService := services.NewOrderService(db, catalogService, inventoryService, dispatchService)
	authService := services.NewAuthService(cfg)

	// Initialize handlers
	catalogHandler := handlers.NewCatalogHandler(catalogService, inventoryService)
	orderHandler := handlers.NewOrderHandler(orderService)
	authHandler := handlers.NewAuthHandler(authService)
	invoiceHandler := handlers.NewInvoiceHandler(dispatchService, storageService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS())
	r.Use(middleware.GeneralRateLimit())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/login", authHandler.Login)
		}

		// Catalog routes (public)
		products := v1.Group("/products")
		{
			products.GET("", catalogHandler.GetProducts)
			products.GET("/:id", catalogHandler.GetProduct)
		}

		v1.GET("/categories", catalogHandler.GetCategories)

		// Order submission (public)
		orders := v1.Group("/orders")
		orders.Use(middleware.OrderRateLimit())
		{
			orders.POST("", orderHandler.SubmitOrder)
		}

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(middleware.AdminRequired())
		{
			admin.GET("/orders", orderHandler.GetOrders)

			adminProducts := admin.Group("/products")
			{
				adminProducts.POST("", catalogHandler.CreateProduct)
				adminProducts.PUT("/:id", catalogHandler.UpdateProduct)
				adminProducts.DELETE("/:id", catalogHandler.DeleteProduct)
				adminProducts.PUT("/:id/stock", catalogHandler.AdjustStock)
			}

			adminInvoices := admin.Group("/invoices")
			{
				adminInvoices.GET("/:orderNumber", invoiceHandler.DownloadInvoice)
				adminInvoices.GET("/:orderNumber/status", invoiceHandler.GetDeliveryStatus)
				adminInvoices.POST("/:orderNumber/redeliver", invoiceHandler.RedeliverInvoice)
			}
		}
	}

	return r, dispatchService, nil
}
