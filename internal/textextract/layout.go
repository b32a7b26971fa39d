package textextract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"math"
	"strings"

	"github.com/ledongthuc/pdf"
)

// LayoutStrategy walks each page's content stream and joins its text runs.
// Pages that fail are logged and skipped.
type LayoutStrategy struct{}

func (LayoutStrategy) Name() string { return "layout" }

func (LayoutStrategy) Extract(ctx context.Context, doc *Document) (string, error) {
	r, err := openPDF(doc.Data)
	if err != nil {
		return "", err
	}

	n := r.NumPage()
	pages := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		text, err := pageRuns(r, i)
		if err != nil {
			log.Printf("textextract.LayoutStrategy: skipping page %d: %v", i, err)
			continue
		}
		if text != "" {
			pages = append(pages, text)
		}
	}
	return strings.Join(pages, "\n\n"), nil
}

// pageRuns groups a page's glyphs into runs and joins the runs with spaces.
// A run breaks on a baseline change or a horizontal gap wider than a space.
func pageRuns(r *pdf.Reader, i int) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			text, err = "", fmt.Errorf("panic: %v", rec)
		}
	}()

	p := r.Page(i)
	if p.V.IsNull() {
		return "", errNullPage
	}

	var runs []string
	var cur strings.Builder
	var prev *pdf.Text
	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			runs = append(runs, s)
		}
		cur.Reset()
	}
	glyphs := p.Content().Text
	for j := range glyphs {
		g := &glyphs[j]
		if prev != nil && breaksRun(prev, g) {
			flush()
		}
		cur.WriteString(g.S)
		prev = g
	}
	flush()
	return collapseSpaces(strings.Join(runs, " ")), nil
}

func breaksRun(prev, g *pdf.Text) bool {
	tol := math.Max(prev.FontSize, 1) * 0.3
	if math.Abs(g.Y-prev.Y) > tol {
		return true
	}
	gap := g.X - (prev.X + prev.W)
	return gap > tol || gap < -tol*10
}

// PlainTextStrategy asks the PDF library for the whole document text in one call.
type PlainTextStrategy struct{}

func (PlainTextStrategy) Name() string { return "plaintext" }

func (PlainTextStrategy) Extract(ctx context.Context, doc *Document) (string, error) {
	r, err := openPDF(doc.Data)
	if err != nil {
		return "", err
	}
	rd, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("reading plain text: %w", err)
	}
	b, err := io.ReadAll(rd)
	if err != nil {
		return "", fmt.Errorf("reading plain text: %w", err)
	}
	return string(b), nil
}

func openPDF(data []byte) (r *pdf.Reader, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r, err = nil, fmt.Errorf("opening PDF: panic: %v", rec)
		}
	}()
	if len(data) == 0 {
		return nil, fmt.Errorf("opening PDF: empty input")
	}
	r, err = pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	return r, nil
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
