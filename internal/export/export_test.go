package export_test

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"invoicepipe/internal/domain"
	"invoicepipe/internal/export"
)

func ptr(f float64) *float64 { return &f }

func strPtr(s string) *string { return &s }

var created = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func sampleInvoices() []domain.Invoice {
	return []domain.Invoice{
		{
			ID:               uuid.New(),
			FileID:           "file-1",
			FileName:         "acme.pdf",
			PageCount:        2,
			ExtractionStatus: domain.ExtractionStatusCompleted,
			ExtractionModel:  strPtr("gemini"),
			Vendor:           domain.Vendor{Name: "Acme, Inc.", TaxID: "TX-1"},
			InvoiceData: domain.InvoiceData{
				Number:     "INV-1",
				Date:       "2024-04-30",
				Currency:   "USD",
				Subtotal:   ptr(100),
				TaxPercent: ptr(8.5),
				Total:      ptr(108.5),
				LineItems:  []domain.LineItem{{Description: "A", UnitPrice: 50, Quantity: 2, Total: 100}},
			},
			CreatedAt: created,
		},
		{
			ID:               uuid.New(),
			FileID:           "file-2",
			FileName:         "pending.pdf",
			ExtractionStatus: domain.ExtractionStatusPending,
			Vendor:           domain.Vendor{Name: "ignored"},
			CreatedAt:        created,
		},
		{
			ID:               uuid.New(),
			FileID:           "file-3",
			FileName:         "mock.pdf",
			ExtractionStatus: domain.ExtractionStatusCompleted,
			ExtractionModel:  strPtr(domain.ExtractionModelMock),
			Vendor:           domain.Vendor{Name: "Mock Vendor (AI Extraction Failed)"},
			InvoiceData:      domain.InvoiceData{Number: "MOCK-INVOICE", Date: "2024-05-01", Currency: "USD"},
			CreatedAt:        created,
		},
	}
}

func TestWriter_CSV(t *testing.T) {
	var buf bytes.Buffer
	w := export.NewWriter(&buf)
	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.WriteInvoices(sampleInvoices()))
	w.Flush()
	require.NoError(t, w.Error())

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, export.Columns, rows[0])

	acme := rows[1]
	assert.Equal(t, "acme.pdf", acme[0])
	assert.Equal(t, "gemini", acme[3])
	assert.Equal(t, "No", acme[4])
	assert.Equal(t, "Acme, Inc.", acme[5])
	assert.Equal(t, "INV-1", acme[8])
	assert.Equal(t, "100.00", acme[11])
	assert.Equal(t, "8.50", acme[12])
	assert.Equal(t, "108.50", acme[13])
	assert.Equal(t, "1", acme[16])
	assert.Equal(t, "2", acme[17])
	assert.Equal(t, "2024-05-01T12:00:00Z", acme[18])

	pending := rows[2]
	assert.Equal(t, "pending", pending[2])
	assert.Equal(t, "", pending[3])
	assert.Equal(t, "", pending[5], "vendor hidden until extraction completes")

	mocked := rows[3]
	assert.Equal(t, "Yes", mocked[4])
	assert.Equal(t, "", mocked[13])
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteXLSX(&buf, sampleInvoices()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, "Invoices", f.GetSheetName(0))

	rows, err := f.GetRows("Invoices")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "File Name", rows[0][0])
	assert.Equal(t, "Created At", rows[0][len(export.Columns)-1])
	assert.Equal(t, "acme.pdf", rows[1][0])
	assert.Equal(t, "108.5", rows[1][13])

	typ, err := f.GetCellType("Invoices", "N2")
	require.NoError(t, err)
	assert.NotEqual(t, excelize.CellTypeSharedString, typ)
	assert.NotEqual(t, excelize.CellTypeInlineString, typ)
}

func TestBuildFilename(t *testing.T) {
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "invoices_2024-05-01.csv", export.BuildFilename("invoices", "csv", now))
	assert.Equal(t, "Q1_2024_Acme_2024-05-01.xlsx", export.BuildFilename("Q1 2024 / Acme!", "xlsx", now))
	assert.Equal(t, "invoices_2024-05-01.csv", export.BuildFilename("///", "csv", now))
}
