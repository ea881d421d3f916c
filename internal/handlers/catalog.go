// internal/handlers/catalog.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/nexpoint/nexpoint-backend/internal/services"
	"github.com/nexpoint/nexpoint-backend/internal/utils"
)

type CatalogHandler struct {
	catalogService   *services.CatalogService
	inventoryService services.StockAdjuster
}

func NewCatalogHandler(catalogService *services.CatalogService, inventoryService services.StockAdjuster) *CatalogHandler {
	return &CatalogHandler{
		catalogService:   catalogService,
		inventoryService: inventoryService,
	}
}

// GET /products
func (h *CatalogHandler) GetProducts(c *gin.Context) {
	filter := services.ProductFilter{
		Category: c.Query("category"),
		Strength: c.Query("strength"),
		Search:   c.Query("search"),
	}

	products, err := h.catalogService.ListProducts(c.Request.Context(), filter)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"products": products})
}

// GET /categories
func (h *CatalogHandler) GetCategories(c *gin.Context) {
	categories, err := h.catalogService.ListCategories(c.Request.Context())
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"categories": categories})
}

// GET /products/:id
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	product, err := h.catalogService.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			utils.NotFoundResponse(c, "Product")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"product": product})
}

// POST /admin/products
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var req services.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	product, err := h.catalogService.CreateProduct(c.Request.Context(), &req)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, gin.H{"product": product})
}

// PUT /admin/products/:id
func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	var req services.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}

	product, err := h.catalogService.UpdateProduct(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			utils.NotFoundResponse(c, "Product")
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{"product": product})
}

// DELETE /admin/products/:id
func (h *CatalogHandler) DeleteProduct(c *gin.Context) {
	if err := h.catalogService.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			utils.NotFoundResponse(c, "Product")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"deleted": true})
}

// PUT /admin/products/:id/stock
// Manual stock reduction goes through the same ledger as order commits, so
// the clamp-at-zero and serialization guarantees hold here too.
func (h *CatalogHandler) AdjustStock(c *gin.Context) {
	var req struct {
		Quantity int `json:"quantity" validate:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	applied, err := h.inventoryService.ApplyDecrements(c.Request.Context(), []services.StockDecrement{
		{ProductID: c.Param("id"), Quantity: req.Quantity},
	})
	if err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			utils.NotFoundResponse(c, "Product")
			return
		}
		utils.ServiceUnavailableResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"applied": applied[0]})
}
