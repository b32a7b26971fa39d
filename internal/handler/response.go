package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"invoicepipe/internal/domain"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Code    string      `json:"code,omitempty"`
	Details string      `json:"details,omitempty"`
}

// Pagination describes one page of a list response.
type Pagination struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

// NewPagination derives page counts from the normalised page, limit and total.
func NewPagination(page, limit, total int) Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondCreated sends a 201 success response.
func RespondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{Success: true, Data: data})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{Success: false, Error: msg, Code: code})
}

// RespondErrorDetails sends an error response carrying a details string.
func RespondErrorDetails(c *gin.Context, status int, code, msg, details string) {
	c.JSON(status, APIResponse{Success: false, Error: msg, Code: code, Details: details})
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
func MapDomainError(err error) (status int, code, msg string) {
	switch {
	case errors.Is(err, domain.ErrInvoiceNotFound):
		return http.StatusNotFound, "INVOICE_NOT_FOUND", "invoice not found"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", "resource not found"
	case errors.Is(err, domain.ErrDuplicateFileID):
		return http.StatusConflict, "DUPLICATE_FILE_ID", "an invoice already exists for this file"
	case errors.Is(err, domain.ErrUnsupportedFileType):
		return http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE", "unsupported file type; only PDF files are accepted"
	case errors.Is(err, domain.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds maximum allowed size"
	case errors.Is(err, domain.ErrUploadFailed):
		return http.StatusInternalServerError, "UPLOAD_FAILED", "file upload to storage failed"
	case errors.Is(err, domain.ErrMissingFileID):
		return http.StatusBadRequest, "MISSING_FILE_ID", "fileId is required"
	case errors.Is(err, domain.ErrUnsupportedProvider):
		return http.StatusBadRequest, "UNSUPPORTED_MODEL", "unsupported model; allowed: gemini, groq"
	case errors.Is(err, domain.ErrEmptyText):
		return http.StatusBadRequest, "EMPTY_TEXT", "no text could be extracted from the PDF"
	case errors.Is(err, domain.ErrInvalidInvoiceData):
		return http.StatusBadRequest, "INVALID_INVOICE_DATA", "vendor name, invoice number, date and at least one line item are required; amounts must be non-negative"
	case errors.Is(err, domain.ErrStorageUnavailable):
		return http.StatusBadGateway, "STORAGE_UNAVAILABLE", "file could not be read from storage"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// HandleError maps a domain error and sends the appropriate error response.
// Details are only exposed for client errors.
func HandleError(c *gin.Context, err error) {
	status, code, msg := MapDomainError(err)
	if status >= 500 {
		requestID, _ := c.Get("request_id")
		log.Printf("[%s] internal error: %v", requestID, err)
		RespondError(c, status, code, msg)
		return
	}
	var de *domain.DetailError
	if errors.As(err, &de) {
		RespondErrorDetails(c, status, code, msg, de.Detail)
		return
	}
	RespondError(c, status, code, msg)
}

// queryInt parses an integer query parameter, returning def when it is
// absent or malformed.
func queryInt(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return def
	}
	return v
}
