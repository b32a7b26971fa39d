package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"invoicepipe/internal/service"
)

// ExtractionHandler handles the extraction pipeline endpoints.
type ExtractionHandler struct {
	extractionService service.ExtractionService
}

// NewExtractionHandler creates a new ExtractionHandler.
func NewExtractionHandler(extractionService service.ExtractionService) *ExtractionHandler {
	return &ExtractionHandler{extractionService: extractionService}
}

// Extract handles POST /api/v1/extract
// @Summary Extract invoice data
// @Description Extract text from an uploaded PDF and structure it with the requested provider, falling back to the other provider and finally to placeholder data (flagged by warning)
// @Tags extraction
// @Accept json
// @Produce json
// @Param request body ExtractRequest true "File and model"
// @Success 200 {object} Response{data=service.ExtractionOutcome} "Extraction completed"
// @Failure 400 {object} ErrorResponseBody "Missing fileId, unsupported model or no extractable text"
// @Failure 404 {object} ErrorResponseBody "Unknown fileId"
// @Failure 502 {object} ErrorResponseBody "File could not be read from storage"
// @Router /extract [post]
func (h *ExtractionHandler) Extract(c *gin.Context) {
	var req ExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		RespondErrorDetails(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body", err.Error())
		return
	}

	out, err := h.extractionService.Extract(c.Request.Context(), service.ExtractInput{
		FileID: req.FileID,
		Model:  req.Model,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, out)
}

// Retry handles POST /api/v1/extract/:fileId/retry
// @Summary Retry extraction
// @Description Re-run extraction for a file, optionally with a different model
// @Tags extraction
// @Accept json
// @Produce json
// @Param fileId path string true "File ID"
// @Param request body RetryRequest false "Model"
// @Success 200 {object} Response{data=service.ExtractionOutcome} "Extraction completed"
// @Failure 400 {object} ErrorResponseBody "Unsupported model or no extractable text"
// @Failure 404 {object} ErrorResponseBody "Unknown fileId"
// @Router /extract/{fileId}/retry [post]
func (h *ExtractionHandler) Retry(c *gin.Context) {
	var req RetryRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		RespondErrorDetails(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body", err.Error())
		return
	}

	out, err := h.extractionService.Retry(c.Request.Context(), service.ExtractInput{
		FileID: c.Param("fileId"),
		Model:  req.Model,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, out)
}

// Status handles GET /api/v1/extract/:fileId/status
// @Summary Get extraction status
// @Tags extraction
// @Produce json
// @Param fileId path string true "File ID"
// @Success 200 {object} Response{data=service.ExtractionStatusView} "Status"
// @Failure 404 {object} ErrorResponseBody "Unknown fileId"
// @Router /extract/{fileId}/status [get]
func (h *ExtractionHandler) Status(c *gin.Context) {
	view, err := h.extractionService.Status(c.Request.Context(), c.Param("fileId"))
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, view)
}
