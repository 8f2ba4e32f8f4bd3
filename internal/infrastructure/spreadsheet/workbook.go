// Package spreadsheet renders sales as xlsx workbooks.
package spreadsheet

import (
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	salesapp "github.com/stockroute/backend/internal/application/sales"
	"github.com/stockroute/backend/internal/domain/sales"
	"github.com/xuri/excelize/v2"
)

const (
	salesSheet   = "Sales"
	invoiceSheet = "Invoice"
	dateLayout   = "2006-01-02"
)

var salesHeader = []any{
	"Sale number", "Date", "Client", "Seller", "Delivery man", "Status",
	"Total", "Returns", "Net", "Paid", "Payment method",
}

var (
	_ salesapp.SalesSheetWriter = (*Writer)(nil)
	_ salesapp.InvoiceRenderer  = (*Writer)(nil)
)

// Writer renders the sales export and per-sale invoices
type Writer struct{}

// NewWriter creates a new Writer
func NewWriter() *Writer {
	return &Writer{}
}

// WriteSales writes one row per sale, in the given order
func (w *Writer) WriteSales(out io.Writer, list []sales.Sale) error {
	f, err := newWorkbook(salesSheet)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := writeRow(f, salesSheet, 1, salesHeader); err != nil {
		return err
	}
	if err := boldRow(f, salesSheet, 1, len(salesHeader)); err != nil {
		return err
	}
	for i := range list {
		s := &list[i]
		row := []any{
			s.SaleNumber,
			s.Date.Format(dateLayout),
			optionalID(s.ClientID),
			s.SellerID.String(),
			optionalID(s.DeliveryManID),
			s.DeliveryStatus.String(),
			amount(s.TotalAmount),
			amount(s.Return.Total.Add(s.ReturnGlobal)),
			amount(s.NetAmount),
			amount(s.AmountPaid),
			string(s.PaymentMethod),
		}
		if err := writeRow(f, salesSheet, i+2, row); err != nil {
			return err
		}
	}
	return f.Write(out)
}

// WriteInvoice writes a single-sheet invoice: a header block, the line items
// and the settlement totals
func (w *Writer) WriteInvoice(out io.Writer, sale *sales.Sale) error {
	f, err := newWorkbook(invoiceSheet)
	if err != nil {
		return err
	}
	defer f.Close()

	rows := [][]any{
		{"Invoice", sale.SaleNumber},
		{"Date", sale.Date.Format(dateLayout)},
		{"Client", optionalID(sale.ClientID)},
		{"Seller", sale.SellerID.String()},
		{"Status", sale.DeliveryStatus.String()},
		{},
		{"Product", "Sold by", "Quantity", "Unit price", "Discount %", "Total"},
	}
	itemHeader := len(rows)
	for _, item := range sale.Items {
		rows = append(rows, []any{
			item.ProductID.String(),
			string(item.SoldBy),
			item.Quantity,
			amount(item.UnitPrice),
			amount(item.DiscountPercent),
			amount(item.Total),
		})
	}
	rows = append(rows,
		[]any{},
		[]any{"Total", amount(sale.TotalAmount)},
		[]any{"Returns", amount(sale.Return.Total.Add(sale.ReturnGlobal))},
		[]any{"Net", amount(sale.NetAmount)},
		[]any{"Paid", amount(sale.AmountPaid)},
		[]any{"Outstanding", amount(sale.Outstanding())},
	)

	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		if err := writeRow(f, invoiceSheet, i+1, row); err != nil {
			return err
		}
	}
	if err := boldRow(f, invoiceSheet, itemHeader, 6); err != nil {
		return err
	}
	return f.Write(out)
}

func newWorkbook(sheet string) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	return f, nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}
	return nil
}

func boldRow(f *excelize.File, sheet string, row, cols int) error {
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	first, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(cols, row)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, first, last, style)
}

func optionalID(id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	return id.String()
}

func amount(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
