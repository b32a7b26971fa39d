package textextract

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"invoicepipe/internal/port"
)

// pdfcpuConfig is built on first use only.
var pdfcpuConfig = sync.OnceValue(func() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
})

// Inspector reads page structure from uploaded PDFs.
type Inspector struct{}

var _ port.PDFInspector = Inspector{}

// NewInspector creates an Inspector.
func NewInspector() Inspector { return Inspector{} }

// Inspect validates data as a PDF and returns its page count.
func (Inspector) Inspect(data []byte) (info *port.PDFInfo, err error) {
	defer func() {
		if r := recover(); r != nil {
			info, err = nil, fmt.Errorf("inspecting PDF: panic: %v", r)
		}
	}()
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), pdfcpuConfig())
	if err != nil {
		return nil, fmt.Errorf("inspecting PDF: %w", err)
	}
	return &port.PDFInfo{PageCount: ctx.PageCount}, nil
}
