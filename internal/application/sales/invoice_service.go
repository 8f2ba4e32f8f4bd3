package sales

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/stockroute/backend/internal/domain/sales"
	"go.uber.org/zap"
)

// InvoiceContentType is the MIME type of rendered invoices
const InvoiceContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// InvoiceRenderer renders one sale as an invoice document
type InvoiceRenderer interface {
	WriteInvoice(w io.Writer, sale *sales.Sale) error
}

// ObjectUploader stores a document and returns its public URL
type ObjectUploader interface {
	Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
}

// InvoiceService renders, uploads and links sale invoices
type InvoiceService struct {
	saleRepo sales.Repository
	renderer InvoiceRenderer
	uploader ObjectUploader
	logger   *zap.Logger
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(saleRepo sales.Repository, renderer InvoiceRenderer, uploader ObjectUploader, logger *zap.Logger) *InvoiceService {
	return &InvoiceService{
		saleRepo: saleRepo,
		renderer: renderer,
		uploader: uploader,
		logger:   logger,
	}
}

// Generate renders the invoice of a sale, uploads it under
// invoices/<sale number>.xlsx and stores the link on the sale. The sale
// version is left unchanged.
func (s *InvoiceService) Generate(ctx context.Context, saleID uuid.UUID) (string, error) {
	sale, err := s.saleRepo.FindByID(ctx, saleID)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := s.renderer.WriteInvoice(&buf, sale); err != nil {
		return "", fmt.Errorf("render invoice %s: %w", sale.SaleNumber, err)
	}

	key := InvoiceKey(sale.SaleNumber)
	url, err := s.uploader.Upload(ctx, key, &buf, int64(buf.Len()), InvoiceContentType)
	if err != nil {
		return "", fmt.Errorf("upload invoice %s: %w", key, err)
	}

	if err := s.saleRepo.SetInvoiceURL(ctx, sale.ID, url); err != nil {
		return "", err
	}

	s.logger.Info("invoice generated",
		zap.String("sale_id", sale.ID.String()),
		zap.String("sale_number", sale.SaleNumber),
		zap.String("url", url),
	)
	return url, nil
}

// InvoiceKey is the object key of a sale's invoice
func InvoiceKey(saleNumber string) string {
	return "invoices/" + saleNumber + ".xlsx"
}
