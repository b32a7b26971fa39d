package handler_test

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"invoicepipe/internal/domain"
	"invoicepipe/internal/export"
	"invoicepipe/internal/handler"
	"invoicepipe/mocks"
)

func pageOf(n int, prefix string) []domain.Invoice {
	out := make([]domain.Invoice, n)
	for i := range out {
		out[i] = domain.Invoice{ID: uuid.New(), FileID: prefix, FileName: prefix + ".pdf", ExtractionStatus: domain.ExtractionStatusPending}
	}
	return out
}

func TestExportHandler_CSV_PagesThroughAll(t *testing.T) {
	svc := new(mocks.MockInvoiceService)
	h := handler.NewExportHandler(svc)

	svc.On("List", mock.Anything, mock.MatchedBy(func(f domain.InvoiceFilter) bool {
		return f.Page == 1 && f.Limit == 100 && f.Status == domain.ExtractionStatusPending && f.Query == "acme"
	})).Return(pageOf(100, "a"), 101, nil)
	svc.On("List", mock.Anything, mock.MatchedBy(func(f domain.InvoiceFilter) bool {
		return f.Page == 2
	})).Return(pageOf(1, "b"), 101, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/export/invoices?status=pending&q=acme", http.NoBody)

	h.Invoices(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), `attachment; filename="invoices_`)
	assert.Contains(t, w.Header().Get("Content-Disposition"), `.csv"`)

	body := w.Body.Bytes()
	require.True(t, bytes.HasPrefix(body, export.BOM))
	rows, err := csv.NewReader(bytes.NewReader(body[len(export.BOM):])).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 102)
	assert.Equal(t, "b.pdf", rows[101][0])
	svc.AssertNumberOfCalls(t, "List", 2)
}

func TestExportHandler_XLSX(t *testing.T) {
	svc := new(mocks.MockInvoiceService)
	h := handler.NewExportHandler(svc)
	svc.On("List", mock.Anything, mock.Anything).Return(pageOf(2, "x"), 2, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/export/invoices?format=XLSX", http.NoBody)

	h.Invoices(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, export.ContentTypeXLSX, w.Header().Get("Content-Type"))

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	rows, err := f.GetRows("Invoices")
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestExportHandler_BadFormat(t *testing.T) {
	svc := new(mocks.MockInvoiceService)
	h := handler.NewExportHandler(svc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/export/invoices?format=pdf", http.NoBody)

	h.Invoices(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_FORMAT", decode(t, w).Code)
	svc.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}
