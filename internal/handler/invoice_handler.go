package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"invoicepipe/internal/domain"
	"invoicepipe/internal/service"
)

// InvoiceHandler handles upload and invoice record endpoints.
type InvoiceHandler struct {
	invoiceService service.InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler.
func NewInvoiceHandler(invoiceService service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

// Upload handles POST /api/v1/upload
// @Summary Upload an invoice PDF
// @Description Store a PDF and create a pending invoice record for it
// @Tags invoices
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "PDF file (max 25MB)"
// @Success 201 {object} Response{data=UploadResponse} "File uploaded"
// @Failure 400 {object} ErrorResponseBody "Missing file or not a PDF"
// @Failure 413 {object} ErrorResponseBody "File too large"
// @Failure 500 {object} ErrorResponseBody "Upload failed"
// @Router /upload [post]
func (h *InvoiceHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	inv, err := h.invoiceService.Upload(c.Request.Context(), service.UploadInput{
		FileName: header.Filename,
		Size:     header.Size,
		Body:     file,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, UploadResponse{
		FileID:    inv.FileID,
		FileName:  inv.FileName,
		FileURL:   inv.FileURL,
		InvoiceID: inv.ID,
	})
}

// Create handles POST /api/v1/invoices
// @Summary Create an invoice manually
// @Description Create a completed invoice record from human-entered data (no PDF, model "manual")
// @Tags invoices
// @Accept json
// @Produce json
// @Param request body CreateInvoiceRequest true "Invoice data"
// @Success 201 {object} Response{data=domain.Invoice} "Invoice created"
// @Failure 400 {object} ErrorResponseBody "Invalid invoice data"
// @Router /invoices [post]
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondErrorDetails(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body", err.Error())
		return
	}

	inv, err := h.invoiceService.CreateManual(c.Request.Context(), service.ManualInvoiceInput{
		FileName: req.FileName,
		Vendor:   req.Vendor,
		Invoice:  req.InvoiceData,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, inv)
}

// List handles GET /api/v1/invoices
// @Summary List invoices
// @Description List invoices with search, status filter, sorting and pagination
// @Tags invoices
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size (max 100)" default(20)
// @Param q query string false "Search vendor name, invoice number or file name"
// @Param status query string false "Extraction status" Enums(pending, processing, completed, failed)
// @Param sortBy query string false "Sort field" Enums(createdAt, updatedAt, fileName, vendorName, invoiceDate, total)
// @Param sortOrder query string false "Sort direction" Enums(asc, desc) default(desc)
// @Success 200 {object} Response{data=InvoiceListResponse} "Invoices"
// @Router /invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	filter := filterFromQuery(c)
	filter.Page = queryInt(c, "page", 1)
	filter.Limit = queryInt(c, "limit", domain.DefaultPageLimit)
	filter.Normalize()

	invoices, total, err := h.invoiceService.List(c.Request.Context(), filter)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, InvoiceListResponse{
		Invoices:   invoices,
		Pagination: NewPagination(filter.Page, filter.Limit, total),
	})
}

// GetByID handles GET /api/v1/invoices/:id
// @Summary Get invoice by ID
// @Tags invoices
// @Produce json
// @Param id path string true "Invoice ID (UUID)"
// @Success 200 {object} Response{data=domain.Invoice} "Invoice"
// @Failure 400 {object} ErrorResponseBody "Invalid ID"
// @Failure 404 {object} ErrorResponseBody "Invoice not found"
// @Router /invoices/{id} [get]
func (h *InvoiceHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	inv, err := h.invoiceService.GetByID(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, inv)
}

// Update handles PUT /api/v1/invoices/:id
// @Summary Edit an invoice
// @Description Apply a manual edit. Line totals are recomputed only for items whose unit price or quantity changed.
// @Tags invoices
// @Accept json
// @Produce json
// @Param id path string true "Invoice ID (UUID)"
// @Param request body UpdateInvoiceRequest true "Fields to change"
// @Success 200 {object} Response{data=domain.Invoice} "Updated invoice"
// @Failure 400 {object} ErrorResponseBody "Invalid ID or body"
// @Failure 404 {object} ErrorResponseBody "Invoice not found"
// @Router /invoices/{id} [put]
func (h *InvoiceHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req UpdateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondErrorDetails(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body", err.Error())
		return
	}

	inv, err := h.invoiceService.Update(c.Request.Context(), id, service.UpdateInvoiceInput{
		FileName: req.FileName,
		Vendor:   req.Vendor,
		Invoice:  req.InvoiceData,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, inv)
}

// Delete handles DELETE /api/v1/invoices/:id
// @Summary Delete an invoice
// @Description Delete the record; blob deletion is best-effort
// @Tags invoices
// @Produce json
// @Param id path string true "Invoice ID (UUID)"
// @Success 200 {object} Response{data=DeleteResponse} "Deleted"
// @Failure 400 {object} ErrorResponseBody "Invalid ID"
// @Failure 404 {object} ErrorResponseBody "Invoice not found"
// @Router /invoices/{id} [delete]
func (h *InvoiceHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.invoiceService.Delete(c.Request.Context(), id); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, DeleteResponse{Deleted: true, ID: id})
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondErrorDetails(c, http.StatusBadRequest, "INVALID_ID", "invalid invoice ID", "id must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

// filterFromQuery reads the search, status and sort parameters shared by
// list and export endpoints.
func filterFromQuery(c *gin.Context) domain.InvoiceFilter {
	return domain.InvoiceFilter{
		Query:     c.Query("q"),
		Status:    domain.ExtractionStatus(c.Query("status")),
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
	}
}
