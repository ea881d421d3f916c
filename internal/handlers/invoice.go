// internal/handlers/invoice.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/nexpoint/nexpoint-backend/internal/services"
	"github.com/nexpoint/nexpoint-backend/internal/utils"
)

type InvoiceHandler struct {
	dispatchService *services.DispatchService
	storageService  *services.StorageService
}

func NewInvoiceHandler(dispatchService *services.DispatchService, storageService *services.StorageService) *InvoiceHandler {
	return &InvoiceHandler{
		dispatchService: dispatchService,
		storageService:  storageService,
	}
}

// GET /admin/invoices/:orderNumber
func (h *InvoiceHandler) DownloadInvoice(c *gin.Context) {
	orderNumber := c.Param("orderNumber")

	document, err := h.storageService.LoadInvoice(orderNumber)
	if err != nil {
		if errors.Is(err, services.ErrInvoiceNotFound) {
			utils.NotFoundResponse(c, "Invoice")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+orderNumber+".pdf")
	c.Data(200, "application/pdf", document)
}

// GET /admin/invoices/:orderNumber/status
func (h *InvoiceHandler) GetDeliveryStatus(c *gin.Context) {
	record, err := h.dispatchService.GetRecord(c.Request.Context(), c.Param("orderNumber"))
	if err != nil {
		if errors.Is(err, services.ErrInvoiceNotFound) {
			utils.NotFoundResponse(c, "Invoice")
			return
		}
		utils.ServiceUnavailableResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"invoice": record})
}

// POST /admin/invoices/:orderNumber/redeliver
// Operator retry for a failed or skipped delivery, re-run from the retained
// document.
func (h *InvoiceHandler) RedeliverInvoice(c *gin.Context) {
	result, err := h.dispatchService.Redeliver(c.Request.Context(), c.Param("orderNumber"))
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"status":     result.Status,
		"recipients": result.Recipients,
	})
}
