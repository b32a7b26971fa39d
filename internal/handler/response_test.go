package handler_test

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"invoicepipe/internal/domain"
	"invoicepipe/internal/handler"
)

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{domain.ErrInvoiceNotFound, http.StatusNotFound, "INVOICE_NOT_FOUND"},
		{domain.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{domain.ErrDuplicateFileID, http.StatusConflict, "DUPLICATE_FILE_ID"},
		{domain.ErrUnsupportedFileType, http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE"},
		{domain.ErrFileTooLarge, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE"},
		{domain.ErrUploadFailed, http.StatusInternalServerError, "UPLOAD_FAILED"},
		{domain.ErrMissingFileID, http.StatusBadRequest, "MISSING_FILE_ID"},
		{domain.ErrUnsupportedProvider, http.StatusBadRequest, "UNSUPPORTED_MODEL"},
		{domain.ErrEmptyText, http.StatusBadRequest, "EMPTY_TEXT"},
		{domain.ErrInvalidInvoiceData, http.StatusBadRequest, "INVALID_INVOICE_DATA"},
		{domain.ErrStorageUnavailable, http.StatusBadGateway, "STORAGE_UNAVAILABLE"},
		{fmt.Errorf("invoiceRepo.GetByFileID: %w", domain.ErrInvoiceNotFound), http.StatusNotFound, "INVOICE_NOT_FOUND"},
		{errors.Join(domain.ErrStorageUnavailable, errors.New("timeout")), http.StatusBadGateway, "STORAGE_UNAVAILABLE"},
		{errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			status, code, msg := handler.MapDomainError(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantCode, code)
			assert.NotEmpty(t, msg)
		})
	}
}

func TestNewPagination(t *testing.T) {
	p := handler.NewPagination(3, 10, 25)
	assert.Equal(t, 3, p.TotalPages)
	assert.False(t, p.HasNext)
	assert.True(t, p.HasPrev)

	p = handler.NewPagination(1, 20, 0)
	assert.Equal(t, 0, p.TotalPages)
	assert.False(t, p.HasNext)
	assert.False(t, p.HasPrev)
}

func TestHandleError_Details(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantDetails string
	}{
		{
			name:        "client error carries detail",
			err:         domain.WithDetail(domain.ErrEmptyText, "no text found in PDF after 2 strategies (layout: bad xref; heuristic: no runs)"),
			wantStatus:  http.StatusBadRequest,
			wantDetails: "no text found in PDF after 2 strategies (layout: bad xref; heuristic: no runs)",
		},
		{
			name:       "plain sentinel has no detail",
			err:        domain.ErrEmptyText,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "server error hides detail",
			err:        domain.WithDetail(domain.ErrUploadFailed, "bucket credentials expired"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			handler.HandleError(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			env := decode(t, w)
			assert.Equal(t, tt.wantDetails, env.Details)
		})
	}
}
