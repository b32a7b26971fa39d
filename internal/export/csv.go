package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"invoicepipe/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// Columns is the header row shared by the CSV and XLSX exports.
var Columns = []string{
	"File Name",
	"File ID",
	"Extraction Status",
	"Extraction Model",
	"Needs Review",
	"Vendor Name",
	"Vendor Address",
	"Vendor Tax ID",
	"Invoice Number",
	"Invoice Date",
	"Currency",
	"Subtotal",
	"Tax Percent",
	"Total",
	"PO Number",
	"PO Date",
	"Line Item Count",
	"Page Count",
	"Created At",
}

// Writer wraps csv.Writer for exporting invoices as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(Columns)
}

// WriteInvoices converts a batch of invoices to CSV rows and writes them.
func (w *Writer) WriteInvoices(invoices []domain.Invoice) error {
	for i := range invoices {
		if err := w.csv.Write(Row(&invoices[i])); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

// Row converts one invoice to a row aligned with Columns. Invoice columns
// are left empty until extraction has completed.
func Row(inv *domain.Invoice) []string {
	row := make([]string, len(Columns))

	row[0] = inv.FileName
	row[1] = inv.FileID
	row[2] = string(inv.ExtractionStatus)
	if inv.ExtractionModel != nil {
		row[3] = *inv.ExtractionModel
	}
	row[4] = formatBool(needsReview(inv))
	row[16] = strconv.Itoa(len(inv.InvoiceData.LineItems))
	row[17] = strconv.Itoa(inv.PageCount)
	row[18] = inv.CreatedAt.Format(time.RFC3339)

	if inv.ExtractionStatus != domain.ExtractionStatusCompleted {
		return row
	}

	row[5] = inv.Vendor.Name
	row[6] = inv.Vendor.Address
	row[7] = inv.Vendor.TaxID
	row[8] = inv.InvoiceData.Number
	row[9] = inv.InvoiceData.Date
	row[10] = inv.InvoiceData.Currency
	row[11] = formatMoney(inv.InvoiceData.Subtotal)
	row[12] = formatMoney(inv.InvoiceData.TaxPercent)
	row[13] = formatMoney(inv.InvoiceData.Total)
	row[14] = inv.InvoiceData.PONumber
	row[15] = inv.InvoiceData.PODate

	return row
}

func needsReview(inv *domain.Invoice) bool {
	if inv.ExtractionStatus == domain.ExtractionStatusFailed {
		return true
	}
	return inv.ExtractionModel != nil && *inv.ExtractionModel == domain.ExtractionModelMock
}

func formatMoney(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}

func formatBool(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a name for use in Content-Disposition.
// Replaces non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns {sanitized_name}_{YYYY-MM-DD}.{ext} for a Content-Disposition header.
func BuildFilename(name, ext string, now time.Time) string {
	sanitized := SanitizeFilename(name)
	if sanitized == "" {
		sanitized = "invoices"
	}
	return fmt.Sprintf("%s_%s.%s", sanitized, now.Format("2006-01-02"), ext)
}
