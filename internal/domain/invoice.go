package domain

import (
	"math"
	"strings"
	"time"
)

// MockVendorName is the vendor name of the placeholder candidate stored when
// no provider produced data.
const MockVendorName = "Mock Vendor (AI Extraction Failed)"

// DateLayout is the ISO calendar date format of invoice and PO dates.
const DateLayout = "2006-01-02"

// IsMockVendor reports whether a vendor name is the placeholder vendor.
func IsMockVendor(name string) bool {
	return name == MockVendorName
}

// RecomputeTotals derives every line total, the subtotal and the grand total
// from unit prices, quantities and the tax percentage. A missing tax
// percentage is treated as zero.
func RecomputeTotals(d *InvoiceData) {
	var subtotal float64
	for i := range d.LineItems {
		d.LineItems[i].Total = finite(d.LineItems[i].UnitPrice * d.LineItems[i].Quantity)
		subtotal += d.LineItems[i].Total
	}
	subtotal = finite(subtotal)
	tax := 0.0
	if d.TaxPercent != nil {
		tax = *d.TaxPercent
	}
	total := finite(subtotal * (1 + tax/100))
	d.Subtotal = &subtotal
	d.Total = &total
}

// ApplyLineItemEdits recomputes the total of each edited line item whose unit
// price or quantity differs from the previous version at the same position,
// then refreshes the subtotal. The grand total entered by the editor is kept.
func ApplyLineItemEdits(prev, next *InvoiceData) {
	var subtotal float64
	for i := range next.LineItems {
		item := &next.LineItems[i]
		changed := i >= len(prev.LineItems) ||
			prev.LineItems[i].UnitPrice != item.UnitPrice ||
			prev.LineItems[i].Quantity != item.Quantity
		if changed {
			item.Total = finite(item.UnitPrice * item.Quantity)
		}
		subtotal += item.Total
	}
	subtotal = finite(subtotal)
	next.Subtotal = &subtotal
}

// Validate checks the structural invariants of a candidate.
func (d ExtractedData) Validate() error {
	if strings.TrimSpace(d.Vendor.Name) == "" ||
		strings.TrimSpace(d.Invoice.Number) == "" ||
		strings.TrimSpace(d.Invoice.Date) == "" ||
		len(d.Invoice.LineItems) == 0 {
		return ErrInvalidInvoiceData
	}
	return d.ValidateDraft()
}

// ValidateDraft checks the fields that are present: dates must be ISO
// calendar dates and every numeric field finite and non-negative.
func (d ExtractedData) ValidateDraft() error {
	for _, date := range []string{d.Invoice.Date, d.Invoice.PODate} {
		if date == "" {
			continue
		}
		if _, err := time.Parse(DateLayout, date); err != nil {
			return ErrInvalidInvoiceData
		}
	}
	for _, p := range []*float64{d.Invoice.Subtotal, d.Invoice.TaxPercent, d.Invoice.Total} {
		if p != nil && !nonNegative(*p) {
			return ErrInvalidInvoiceData
		}
	}
	for _, li := range d.Invoice.LineItems {
		if !nonNegative(li.UnitPrice) || !nonNegative(li.Quantity) || !nonNegative(li.Total) {
			return ErrInvalidInvoiceData
		}
	}
	return nil
}

func nonNegative(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0) && f >= 0
}

func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return f
}
