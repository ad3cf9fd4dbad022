package services

import (
	"context"
	"fmt"

	"sales_backend/internal/models"
)

const (
	invoiceTable       = "invoice"
	invoiceDetailTable = "invoice_detail"
	invoiceView        = "invoice_seller_products"
)

// InvoiceStore is the slice of the query executor invoices need.
type InvoiceStore interface {
	CreateLinked(ctx context.Context, parentTable string, parent any, childTable string, children []any) (models.Record, []models.Record, error)
	Read(ctx context.Context, table, filterColumn string, filterValue any) ([]models.Record, error)
}

type SalesService struct {
	store InvoiceStore
}

func NewSalesService(store InvoiceStore) *SalesService {
	return &SalesService{store: store}
}

// CreatedInvoice is an invoice header with its detail lines as stored.
type CreatedInvoice struct {
	Invoice models.Record   `json:"factura"`
	Details []models.Record `json:"detalle_factura"`
}

// CreateInvoice stores the header and every line in one transaction. The
// lines receive the invoice number generated for the header.
func (s *SalesService) CreateInvoice(ctx context.Context, inv models.Invoice) (*CreatedInvoice, error) {
	lines := make([]any, len(inv.Details))
	for i, d := range inv.Details {
		d.InvoiceNumber = nil
		lines[i] = d
	}
	header, details, err := s.store.CreateLinked(ctx, invoiceTable, inv.Header(), invoiceDetailTable, lines)
	if err != nil {
		return nil, fmt.Errorf("failed to create invoice: %w", err)
	}
	return &CreatedInvoice{Invoice: header, Details: details}, nil
}

// ListInvoices reads the invoice view, optionally for one invoice number.
func (s *SalesService) ListInvoices(ctx context.Context, number *int64) ([]models.Record, error) {
	if number == nil {
		return s.store.Read(ctx, invoiceView, "", nil)
	}
	return s.store.Read(ctx, invoiceView, "num_fac", *number)
}
