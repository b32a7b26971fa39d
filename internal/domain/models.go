package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Vendor identifies the party that issued an invoice.
type Vendor struct {
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	TaxID   string `json:"taxId,omitempty"`
}

// Value implements driver.Valuer so Vendor is stored as JSONB.
func (v Vendor) Value() (driver.Value, error) {
	return json.Marshal(v)
}

// Scan implements sql.Scanner for JSONB columns.
func (v *Vendor) Scan(src interface{}) error {
	return scanJSON(src, v)
}

// LineItem is one row of an invoice. Slice order is presentation order.
type LineItem struct {
	Description string  `json:"description"`
	UnitPrice   float64 `json:"unitPrice"`
	Quantity    float64 `json:"quantity"`
	Total       float64 `json:"total"`
}

// InvoiceData holds the header, totals and line items of an invoice.
type InvoiceData struct {
	Number     string     `json:"number"`
	Date       string     `json:"date"`
	Currency   string     `json:"currency"`
	Subtotal   *float64   `json:"subtotal,omitempty"`
	TaxPercent *float64   `json:"taxPercent,omitempty"`
	Total      *float64   `json:"total,omitempty"`
	PONumber   string     `json:"poNumber,omitempty"`
	PODate     string     `json:"poDate,omitempty"`
	LineItems  []LineItem `json:"lineItems"`
}

// Value implements driver.Valuer so InvoiceData is stored as JSONB.
func (d InvoiceData) Value() (driver.Value, error) {
	if d.LineItems == nil {
		d.LineItems = []LineItem{}
	}
	return json.Marshal(d)
}

// Scan implements sql.Scanner for JSONB columns.
func (d *InvoiceData) Scan(src interface{}) error {
	return scanJSON(src, d)
}

// ExtractedData is a structured invoice payload produced by extraction (a candidate).
type ExtractedData struct {
	Vendor  Vendor      `json:"vendor"`
	Invoice InvoiceData `json:"invoice"`
}

// Invoice is the persisted record for one uploaded file.
type Invoice struct {
	ID               uuid.UUID        `db:"id" json:"id"`
	FileID           string           `db:"file_id" json:"fileId"`
	FileName         string           `db:"file_name" json:"fileName"`
	FileURL          string           `db:"file_url" json:"fileUrl,omitempty"`
	FilePath         string           `db:"file_path" json:"filePath,omitempty"`
	StorageKey       string           `db:"storage_key" json:"-"`
	FileSize         *int64           `db:"file_size" json:"fileSize,omitempty"`
	PageCount        int              `db:"page_count" json:"pageCount"`
	Vendor           Vendor           `db:"vendor" json:"vendor"`
	InvoiceData      InvoiceData      `db:"invoice_data" json:"invoiceData"`
	ExtractionStatus ExtractionStatus `db:"extraction_status" json:"extractionStatus"`
	ExtractionModel  *string          `db:"extraction_model" json:"extractionModel"`
	ExtractionError  string           `db:"extraction_error" json:"extractionError,omitempty"`
	CreatedAt        time.Time        `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time        `db:"updated_at" json:"updatedAt"`
}

// MarkCompleted stores extracted data and the model that produced it.
func (inv *Invoice) MarkCompleted(data ExtractedData, model string) {
	inv.Vendor = data.Vendor
	inv.InvoiceData = data.Invoice
	inv.ExtractionStatus = ExtractionStatusCompleted
	inv.ExtractionModel = &model
	inv.ExtractionError = ""
}

// MarkFailed records a pre-extraction validation failure. The model is cleared.
func (inv *Invoice) MarkFailed(reason string) {
	inv.ExtractionStatus = ExtractionStatusFailed
	inv.ExtractionModel = nil
	inv.ExtractionError = reason
}

// ExtractedData returns the record's stored candidate.
func (inv *Invoice) ExtractedData() ExtractedData {
	return ExtractedData{Vendor: inv.Vendor, Invoice: inv.InvoiceData}
}

// InvoiceFilter carries list query parameters.
type InvoiceFilter struct {
	Page      int
	Limit     int
	Query     string
	Status    ExtractionStatus
	SortBy    string
	SortOrder string
}

// List paging bounds.
const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// Normalize clamps paging values and drops unknown sort or status values.
func (f *InvoiceFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	switch {
	case f.Limit <= 0:
		f.Limit = DefaultPageLimit
	case f.Limit > MaxPageLimit:
		f.Limit = MaxPageLimit
	}
	if !ValidSortFields[f.SortBy] {
		f.SortBy = "createdAt"
	}
	if f.SortOrder = strings.ToLower(f.SortOrder); f.SortOrder != "asc" {
		f.SortOrder = "desc"
	}
	if f.Status != "" && !ValidExtractionStatuses[f.Status] {
		f.Status = ""
	}
	f.Query = strings.TrimSpace(f.Query)
}

// Offset returns the row offset for the filter's page.
func (f InvoiceFilter) Offset() int {
	if f.Page <= 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}

// ValidSortFields lists the sortBy values accepted by list endpoints.
var ValidSortFields = map[string]bool{
	"createdAt":   true,
	"updatedAt":   true,
	"fileName":    true,
	"vendorName":  true,
	"invoiceDate": true,
	"total":       true,
}

func scanJSON(src interface{}, dst interface{}) error {
	var b []byte
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("unsupported JSONB source type %T", src)
	}
	if len(b) == 0 {
		return nil
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return errors.Join(ErrInvalidInvoiceData, err)
	}
	return nil
}
