package parser

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"invoicepipe/internal/domain"
)

// Defaults substituted by Sanitize.
const (
	DefaultVendorName     = "Unknown Vendor"
	DefaultCurrency       = "USD"
	UnknownItem           = "Unknown Item"
	PlaceholderLineItem   = "Unable to extract line items"
	invoiceNumberTemplate = "INV-%d"
	isoDate               = "2006-01-02"
)

var dateLayouts = []string{
	isoDate,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"01/02/2006",
	"02/01/2006",
	"1/2/2006",
	"01-02-2006",
	"02-01-2006",
	"02.01.2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"Jan 2 2006",
	"January 2 2006",
	"2 Jan 2006",
	"2 January 2006",
	"02-Jan-2006",
	"2-Jan-2006",
	"Mon, Jan 2, 2006",
}

var nonNumeric = regexp.MustCompile(`[^0-9.\-]`)

// Sanitize coerces decoded provider JSON into the canonical candidate shape.
// It is idempotent: sanitising its own output yields the same candidate.
func Sanitize(raw map[string]interface{}, now time.Time) domain.ExtractedData {
	vendor := asMap(raw["vendor"])
	inv := asMap(raw["invoice"])

	out := domain.ExtractedData{
		Vendor: domain.Vendor{
			Name:    stringOr(vendor["name"], DefaultVendorName),
			Address: stringOr(vendor["address"], ""),
			TaxID:   stringOr(vendor["taxId"], ""),
		},
		Invoice: domain.InvoiceData{
			Number:     stringOr(inv["number"], fmt.Sprintf(invoiceNumberTemplate, now.UnixMilli())),
			Currency:   stringOr(inv["currency"], DefaultCurrency),
			Subtotal:   optionalNumber(inv["subtotal"]),
			TaxPercent: optionalNumber(inv["taxPercent"]),
			Total:      optionalNumber(inv["total"]),
			PONumber:   stringOr(inv["poNumber"], ""),
		},
	}

	if d, ok := parseDate(inv["date"]); ok {
		out.Invoice.Date = d
	} else {
		out.Invoice.Date = now.Format(isoDate)
	}
	if d, ok := parseDate(inv["poDate"]); ok {
		out.Invoice.PODate = d
	}

	items, _ := inv["lineItems"].([]interface{})
	for _, it := range items {
		li := sanitizeLineItem(asMap(it))
		if li.Description == UnknownItem {
			continue
		}
		out.Invoice.LineItems = append(out.Invoice.LineItems, li)
	}
	if len(out.Invoice.LineItems) == 0 {
		out.Invoice.LineItems = []domain.LineItem{PlaceholderItem()}
	}
	return out
}

// SanitizeCandidate re-applies Sanitize to an already structured candidate.
func SanitizeCandidate(d domain.ExtractedData, now time.Time) domain.ExtractedData {
	b, err := json.Marshal(d)
	if err != nil {
		return Sanitize(nil, now)
	}
	var raw map[string]interface{}
	if err := json.Unmarshal(b, &raw); err != nil {
		return Sanitize(nil, now)
	}
	return Sanitize(raw, now)
}

// PlaceholderItem is substituted when no line item survives sanitising.
func PlaceholderItem() domain.LineItem {
	return domain.LineItem{Description: PlaceholderLineItem, UnitPrice: 0, Quantity: 1, Total: 0}
}

func sanitizeLineItem(m map[string]interface{}) domain.LineItem {
	return domain.LineItem{
		Description: stringOr(m["description"], UnknownItem),
		UnitPrice:   numberOr(m["unitPrice"], 0),
		Quantity:    numberOr(m["quantity"], 1),
		Total:       numberOr(m["total"], 0),
	}
}

func asMap(v interface{}) map[string]interface{} {
	if m, ok := v.(map[string]interface{}); ok {
		return m
	}
	return map[string]interface{}{}
}

// stringOr returns the trimmed string form of v, or def when blank.
func stringOr(v interface{}, def string) string {
	var s string
	switch t := v.(type) {
	case string:
		s = t
	case float64:
		if !math.IsNaN(t) && !math.IsInf(t, 0) {
			s = strconv.FormatFloat(t, 'f', -1, 64)
		}
	case json.Number:
		s = t.String()
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	return s
}

// parseNumber reads a finite, non-negative number from a JSON value. Strings
// may carry currency symbols, thousands separators or a percent sign.
func parseNumber(v interface{}) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case json.Number:
		var err error
		if f, err = t.Float64(); err != nil {
			return 0, false
		}
	case string:
		s := nonNumeric.ReplaceAllString(strings.TrimSpace(t), "")
		if s == "" {
			return 0, false
		}
		var err error
		if f, err = strconv.ParseFloat(s, 64); err != nil {
			return 0, false
		}
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0, false
	}
	return f, true
}

func optionalNumber(v interface{}) *float64 {
	f, ok := parseNumber(v)
	if !ok {
		return nil
	}
	return &f
}

func numberOr(v interface{}, def float64) float64 {
	if f, ok := parseNumber(v); ok {
		return f
	}
	return def
}

func parseDate(v interface{}) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(isoDate), true
		}
	}
	return "", false
}
