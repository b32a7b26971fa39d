package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"invoicepipe/internal/config"
	"invoicepipe/internal/domain"
	"invoicepipe/internal/port"
)

// UploadInput is the DTO for a PDF upload.
type UploadInput struct {
	FileName string
	Size     int64
	Body     io.Reader
}

// ManualInvoiceInput is the DTO for a human-entered invoice without a PDF.
type ManualInvoiceInput struct {
	FileName string
	Vendor   domain.Vendor
	Invoice  domain.InvoiceData
}

// UpdateInvoiceInput carries a manual edit. Nil fields are left unchanged.
type UpdateInvoiceInput struct {
	FileName *string
	Vendor   *domain.Vendor
	Invoice  *domain.InvoiceData
}

// InvoiceService defines the invoice record contract.
type InvoiceService interface {
	Upload(ctx context.Context, input UploadInput) (*domain.Invoice, error)
	CreateManual(ctx context.Context, input ManualInvoiceInput) (*domain.Invoice, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error)
	List(ctx context.Context, filter domain.InvoiceFilter) ([]domain.Invoice, int, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInvoiceInput) (*domain.Invoice, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type invoiceService struct {
	repo      port.InvoiceRepository
	storage   port.ObjectStorage
	inspector port.PDFInspector
	bucket    string
	maxBytes  int64
}

// NewInvoiceService creates a new InvoiceService implementation.
func NewInvoiceService(
	repo port.InvoiceRepository,
	storage port.ObjectStorage,
	inspector port.PDFInspector,
	cfg *config.Config,
) InvoiceService {
	return &invoiceService{
		repo:      repo,
		storage:   storage,
		inspector: inspector,
		bucket:    cfg.S3.Bucket,
		maxBytes:  cfg.Upload.MaxBytes(),
	}
}

func (s *invoiceService) Upload(ctx context.Context, input UploadInput) (*domain.Invoice, error) {
	fileName := filepath.Base(strings.TrimSpace(input.FileName))
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(fileName), "."))
	if _, ok := domain.AllowedExtensions[ext]; !ok {
		return nil, domain.ErrUnsupportedFileType
	}
	if input.Size > s.maxBytes {
		return nil, domain.ErrFileTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(input.Body, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, domain.ErrFileTooLarge
	}

	// Magic-byte check; the client-supplied content type is not trusted.
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	if _, ok := domain.AllowedContentTypes[http.DetectContentType(head)]; !ok {
		return nil, domain.ErrUnsupportedFileType
	}

	pageCount := 0
	if info, err := s.inspector.Inspect(data); err != nil {
		log.Printf("invoiceService.Upload: pdf inspection failed for %s: %v", fileName, err)
	} else {
		pageCount = info.PageCount
	}

	fileID := uuid.New().String()
	key := path.Join("invoices", fileID, fileName)
	size := int64(len(data))

	log.Printf("invoiceService.Upload: storing %s (%d bytes, %d pages) as file %s", fileName, size, pageCount, fileID)

	out, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.bucket,
		Key:         key,
		Body:        bytes.NewReader(data),
		ContentType: "application/pdf",
		Size:        size,
	})
	if err != nil {
		log.Printf("invoiceService.Upload: blob upload failed for file %s: %v", fileID, err)
		return nil, errors.Join(domain.ErrUploadFailed, err)
	}

	inv := &domain.Invoice{
		ID:               uuid.New(),
		FileID:           fileID,
		FileName:         fileName,
		FileURL:          out.Location,
		FilePath:         out.Path,
		StorageKey:       key,
		FileSize:         &size,
		PageCount:        pageCount,
		InvoiceData:      domain.InvoiceData{LineItems: []domain.LineItem{}},
		ExtractionStatus: domain.ExtractionStatusPending,
	}
	if err := s.repo.Create(ctx, inv); err != nil {
		log.Printf("invoiceService.Upload: record create failed for file %s, removing blob: %v", fileID, err)
		if delErr := s.storage.Delete(ctx, s.bucket, key); delErr != nil {
			log.Printf("invoiceService.Upload: blob cleanup failed for file %s: %v", fileID, delErr)
		}
		return nil, fmt.Errorf("creating invoice record: %w", err)
	}
	return inv, nil
}

func (s *invoiceService) CreateManual(ctx context.Context, input ManualInvoiceInput) (*domain.Invoice, error) {
	data := domain.ExtractedData{Vendor: input.Vendor, Invoice: input.Invoice}
	normalizeManual(&data.Invoice)
	domain.ApplyLineItemEdits(&domain.InvoiceData{}, &data.Invoice)
	if err := data.Validate(); err != nil {
		return nil, err
	}

	fileName := strings.TrimSpace(input.FileName)
	if fileName == "" {
		fileName = "manual-entry"
	}
	inv := &domain.Invoice{
		ID:       uuid.New(),
		FileID:   "manual-" + uuid.New().String(),
		FileName: fileName,
	}
	inv.MarkCompleted(data, domain.ExtractionModelManual)

	if err := s.repo.Create(ctx, inv); err != nil {
		return nil, fmt.Errorf("creating manual invoice: %w", err)
	}
	log.Printf("invoiceService.CreateManual: created invoice %s", inv.ID)
	return inv, nil
}

func (s *invoiceService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *invoiceService) List(ctx context.Context, filter domain.InvoiceFilter) ([]domain.Invoice, int, error) {
	filter.Normalize()
	return s.repo.List(ctx, filter)
}

func (s *invoiceService) Update(ctx context.Context, id uuid.UUID, input UpdateInvoiceInput) (*domain.Invoice, error) {
	inv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.FileName != nil && strings.TrimSpace(*input.FileName) != "" {
		inv.FileName = strings.TrimSpace(*input.FileName)
	}
	if input.Vendor != nil {
		inv.Vendor = *input.Vendor
	}
	if input.Invoice != nil {
		next := *input.Invoice
		normalizeManual(&next)
		domain.ApplyLineItemEdits(&inv.InvoiceData, &next)
		inv.InvoiceData = next
	}
	validate := inv.ExtractedData().ValidateDraft
	if inv.ExtractionStatus == domain.ExtractionStatusCompleted {
		validate = inv.ExtractedData().Validate
	}
	if err := validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *invoiceService) Delete(ctx context.Context, id uuid.UUID) error {
	inv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if inv.StorageKey != "" {
		if err := s.storage.Delete(ctx, s.bucket, inv.StorageKey); err != nil {
			log.Printf("invoiceService.Delete: blob delete failed for invoice %s: %v", id, err)
		}
	}

	log.Printf("invoiceService.Delete: deleting invoice %s (file %s)", id, inv.FileID)
	return s.repo.Delete(ctx, id)
}

// normalizeManual trims human-entered strings and fills the currency default.
func normalizeManual(d *domain.InvoiceData) {
	d.Number = strings.TrimSpace(d.Number)
	d.Date = strings.TrimSpace(d.Date)
	d.PONumber = strings.TrimSpace(d.PONumber)
	d.PODate = strings.TrimSpace(d.PODate)
	d.Currency = strings.TrimSpace(d.Currency)
	if d.Currency == "" {
		d.Currency = "USD"
	}
	if d.LineItems == nil {
		d.LineItems = []domain.LineItem{}
	}
	for i := range d.LineItems {
		d.LineItems[i].Description = strings.TrimSpace(d.LineItems[i].Description)
	}
}
