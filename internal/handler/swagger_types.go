package handler

import (
	"github.com/google/uuid"

	"invoicepipe/internal/domain"
)

// Swagger type definitions for API documentation.
// These types are used by swag to generate OpenAPI documentation.

// --- Request Types ---

// ExtractRequest represents the extract request body.
type ExtractRequest struct {
	FileID string `json:"fileId" example:"3f1c2b7e-9d4a-4e61-8a0b-2c5d6e7f8a9b"`
	Model  string `json:"model" example:"gemini"`
}

// RetryRequest represents the retry request body.
type RetryRequest struct {
	Model string `json:"model" example:"groq"`
}

// CreateInvoiceRequest represents a manually entered invoice.
type CreateInvoiceRequest struct {
	FileName    string             `json:"fileName" example:"march-utilities"`
	Vendor      domain.Vendor      `json:"vendor"`
	InvoiceData domain.InvoiceData `json:"invoiceData"`
}

// UpdateInvoiceRequest represents a manual edit. Omitted fields are unchanged.
type UpdateInvoiceRequest struct {
	FileName    *string             `json:"fileName,omitempty" example:"acme-march.pdf"`
	Vendor      *domain.Vendor      `json:"vendor,omitempty"`
	InvoiceData *domain.InvoiceData `json:"invoiceData,omitempty"`
}

// --- Response Types ---

// UploadResponse is returned after a successful upload.
type UploadResponse struct {
	FileID    string    `json:"fileId" example:"3f1c2b7e-9d4a-4e61-8a0b-2c5d6e7f8a9b"`
	FileName  string    `json:"fileName" example:"acme-march.pdf"`
	FileURL   string    `json:"fileUrl" example:"https://invoicepipe-uploads.s3.amazonaws.com/invoices/3f1c.../acme-march.pdf"`
	InvoiceID uuid.UUID `json:"invoiceId" example:"550e8400-e29b-41d4-a716-446655440000"`
}

// InvoiceListResponse is one page of invoices.
type InvoiceListResponse struct {
	Invoices   []domain.Invoice `json:"invoices"`
	Pagination Pagination       `json:"pagination"`
}

// DeleteResponse confirms a deletion.
type DeleteResponse struct {
	Deleted bool      `json:"deleted" example:"true"`
	ID      uuid.UUID `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
	Error  string `json:"error,omitempty" example:"database not reachable"`
}

// --- Generic Response Wrappers ---

// Response wraps a successful response with data.
type Response struct {
	Success bool        `json:"success" example:"true"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponseBody wraps an error response.
type ErrorResponseBody struct {
	Success bool   `json:"success" example:"false"`
	Error   string `json:"error" example:"invoice not found"`
	Code    string `json:"code" example:"INVOICE_NOT_FOUND"`
	Details string `json:"details,omitempty" example:"id must be a UUID"`
}
