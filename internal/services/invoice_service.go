// internal/services/invoice_service.go
package services

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/nexpoint/nexpoint-backend/internal/models"
)

// InvoiceService renders a confirmed order into a PDF invoice and retains it
// through the storage service. Rendering is deterministic in content: every
// order field appears in a fixed layout of header, customer block, itemized
// list and footer.
type InvoiceService struct {
	storage *StorageService
}

func NewInvoiceService(storage *StorageService) *InvoiceService {
	return &InvoiceService{storage: storage}
}

// Render produces the invoice document for an order.
func (s *InvoiceService) Render(order *models.Order) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	// Header
	pdf.SetFont("Helvetica", "B", 24)
	pdf.CellFormat(0, 12, "ORDER INVOICE", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 8, "Order Number: "+order.OrderNumber, "", 1, "C", false, 0, "")
	pdf.Ln(6)

	// Customer block
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, "Customer Information", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 7, "Name: "+order.CustomerName, "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 7, "Store Name: "+order.StoreName, "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 7, "Email: "+order.Email, "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 7, "Phone: "+order.Phone, "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 7, "Date: "+order.Timestamp, "", 1, "L", false, 0, "")
	pdf.Ln(6)

	// Itemized list
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, "Order Items", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 12)
	for _, item := range order.Items {
		line := fmt.Sprintf("- %s (%s) - Quantity: %d", item.Name, item.Strength, item.Quantity)
		pdf.SetX(pdf.GetX() + 8)
		pdf.CellFormat(0, 7, line, "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	// Footer
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 7, "Thank you for your order!", "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render invoice for %s: %w", order.OrderNumber, err)
	}

	return buf.Bytes(), nil
}

// Generate renders and retains the invoice, returning its storage key.
func (s *InvoiceService) Generate(order *models.Order) (string, error) {
	document, err := s.Render(order)
	if err != nil {
		return "", err
	}

	key, err := s.storage.SaveInvoice(order.OrderNumber, document)
	if err != nil {
		return "", err
	}

	return key, nil
}
