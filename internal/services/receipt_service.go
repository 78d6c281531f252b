package services

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"

	"github.com/example/etailor/internal/models"
)

// ReceiptService renders order receipts as PDF.
type ReceiptService struct {
	shopName string
}

// NewReceiptService constructs ReceiptService.
func NewReceiptService(shopName string) *ReceiptService {
	if shopName == "" {
		shopName = "eTailor"
	}
	return &ReceiptService{shopName: shopName}
}

// TrackingReference is the payload of the receipt's QR code.
func TrackingReference(order models.Order) string {
	return "etailor:order:" + order.OrderNumber
}

// Render builds a one-page receipt with the customer snapshot, each item
// with its style choices and a QR code for order tracking.
func (s *ReceiptService) Render(order models.Order) ([]byte, error) {
	qrPNG, err := qrcode.Encode(TrackingReference(order), qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("encode tracking code: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(fmt.Sprintf("%s receipt %s", s.shopName, order.OrderNumber), true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(0, 10, tr(s.shopName+" - Order Receipt"))
	pdf.Ln(14)

	pdf.SetFont("Arial", "", 11)
	lines := []string{
		"Order: " + order.OrderNumber,
		"Status: " + string(order.Status),
		"Order date: " + order.OrderDate.Format("02 Jan 2006"),
		"Estimated delivery: " + formatDate(order.EstimatedDelivery),
	}
	if order.ActualDelivery != nil {
		lines = append(lines, "Delivered: "+formatDate(order.ActualDelivery))
	}
	lines = append(lines, "",
		"Customer: "+order.CustomerName,
		"Email: "+order.CustomerEmail,
		"Phone: "+order.CustomerPhone,
		"Ship to: "+order.ShippingAddress,
	)
	for _, line := range lines {
		pdf.Cell(0, 6, tr(line))
		pdf.Ln(6)
	}

	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("tracking", imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("tracking", 155, 20, 40, 40, false, imageOpts, 0, "")

	pdf.Ln(6)
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(80, 8, "Item", "B", 0, "L", false, 0, "")
	pdf.CellFormat(20, 8, "Qty", "B", 0, "R", false, 0, "")
	pdf.CellFormat(40, 8, "Unit price", "B", 0, "R", false, 0, "")
	pdf.CellFormat(40, 8, "Total", "B", 1, "R", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	for _, item := range order.Items {
		name := item.ProductName
		if item.FabricName != "" {
			name += " (" + item.FabricName + ")"
		}
		pdf.CellFormat(80, 7, tr(name), "", 0, "L", false, 0, "")
		pdf.CellFormat(20, 7, fmt.Sprintf("%d", item.Quantity), "", 0, "R", false, 0, "")
		pdf.CellFormat(40, 7, receiptAmount(item.UnitPrice), "", 0, "R", false, 0, "")
		pdf.CellFormat(40, 7, receiptAmount(item.TotalPrice), "", 1, "R", false, 0, "")

		if styles := describeStyles(item.Customizations); styles != "" {
			pdf.SetFont("Arial", "I", 9)
			pdf.MultiCell(180, 5, tr(styles), "", "L", false)
			pdf.SetFont("Arial", "", 10)
		}
	}

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(140, 9, "Total", "T", 0, "R", false, 0, "")
	pdf.CellFormat(40, 9, receiptAmount(order.TotalAmount), "T", 1, "R", false, 0, "")

	if order.Notes != "" {
		pdf.Ln(4)
		pdf.SetFont("Arial", "", 10)
		pdf.MultiCell(180, 5, tr("Notes: "+order.Notes), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render receipt: %w", err)
	}
	return buf.Bytes(), nil
}

// receiptAmount avoids the rupee sign, which the core PDF fonts lack.
func receiptAmount(amount int64) string {
	return "Rs. " + strings.TrimPrefix(FormatPrice(amount), "₹")
}

func describeStyles(opts models.StyleOptions) string {
	if len(opts) == 0 {
		return ""
	}
	parts := make([]string, 0, len(opts))
	for category, value := range opts {
		parts = append(parts, fmt.Sprintf("%s: %s", category, value))
	}
	sort.Strings(parts)
	return strings.Join(parts, ", ")
}
