package handler

import (
	"bytes"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"invoicepipe/internal/domain"
	"invoicepipe/internal/export"
	"invoicepipe/internal/service"
)

// ExportHandler streams invoice exports.
type ExportHandler struct {
	invoiceService service.InvoiceService
	now            func() time.Time
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(invoiceService service.InvoiceService) *ExportHandler {
	return &ExportHandler{invoiceService: invoiceService, now: time.Now}
}

// Invoices handles GET /api/v1/export/invoices
// @Summary Export invoices
// @Description Download every matching invoice as CSV (UTF-8 with BOM) or XLSX
// @Tags export
// @Produce text/csv
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param format query string false "Export format" Enums(csv, xlsx) default(csv)
// @Param status query string false "Extraction status"
// @Param q query string false "Search vendor name, invoice number or file name"
// @Success 200 {file} file "Export file"
// @Failure 400 {object} ErrorResponseBody "Unsupported format"
// @Router /export/invoices [get]
func (h *ExportHandler) Invoices(c *gin.Context) {
	format := strings.ToLower(c.DefaultQuery("format", "csv"))
	if format != "csv" && format != "xlsx" {
		RespondErrorDetails(c, http.StatusBadRequest, "INVALID_FORMAT", "unsupported export format", "format must be csv or xlsx")
		return
	}

	invoices, err := h.collect(c, filterFromQuery(c))
	if err != nil {
		HandleError(c, err)
		return
	}

	filename := export.BuildFilename("invoices", format, h.now())
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))

	if format == "xlsx" {
		var buf bytes.Buffer
		if err := export.WriteXLSX(&buf, invoices); err != nil {
			HandleError(c, err)
			return
		}
		c.Data(http.StatusOK, export.ContentTypeXLSX, buf.Bytes())
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Status(http.StatusOK)
	_, _ = c.Writer.Write(export.BOM)

	w := export.NewWriter(c.Writer)
	if err := w.WriteHeader(); err != nil {
		log.Printf("exportHandler.Invoices: writing header: %v", err)
		return
	}
	if err := w.WriteInvoices(invoices); err != nil {
		log.Printf("exportHandler.Invoices: writing rows: %v", err)
		return
	}
	w.Flush()
	if err := w.Error(); err != nil {
		log.Printf("exportHandler.Invoices: flushing csv: %v", err)
	}
}

// collect pages through every invoice matching filter.
func (h *ExportHandler) collect(c *gin.Context, filter domain.InvoiceFilter) ([]domain.Invoice, error) {
	filter.Limit = domain.MaxPageLimit
	var all []domain.Invoice
	for page := 1; ; page++ {
		filter.Page = page
		batch, total, err := h.invoiceService.List(c.Request.Context(), filter)
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if len(batch) == 0 || len(all) >= total {
			return all, nil
		}
	}
}
