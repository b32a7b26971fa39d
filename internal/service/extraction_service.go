package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"invoicepipe/internal/config"
	"invoicepipe/internal/domain"
	"invoicepipe/internal/port"
)

// MockWarning is returned with placeholder data when no provider succeeded.
const MockWarning = "AI extraction failed for all providers; placeholder data was stored and should be reviewed manually"

// ExtractInput is the DTO for extract and retry requests.
type ExtractInput struct {
	FileID string
	Model  string
}

// ExtractionOutcome is the result of a completed extraction.
type ExtractionOutcome struct {
	FileID          string               `json:"fileId"`
	InvoiceID       uuid.UUID            `json:"invoiceId"`
	ExtractionModel string               `json:"extractionModel"`
	ExtractedData   domain.ExtractedData `json:"extractedData"`
	Status          string               `json:"status"`
	Warning         string               `json:"warning,omitempty"`
}

// ExtractionStatusView describes the extraction state of one file.
type ExtractionStatusView struct {
	Status        domain.ExtractionStatus `json:"status"`
	Model         *string                 `json:"model"`
	ExtractedData *domain.ExtractedData   `json:"extractedData"`
}

// ExtractionService defines the extraction pipeline contract.
type ExtractionService interface {
	Extract(ctx context.Context, input ExtractInput) (*ExtractionOutcome, error)
	Retry(ctx context.Context, input ExtractInput) (*ExtractionOutcome, error)
	Status(ctx context.Context, fileID string) (*ExtractionStatusView, error)
}

type extractionService struct {
	repo          port.InvoiceRepository
	storage       port.ObjectStorage
	text          port.TextExtractor
	orchestrator  port.ExtractionOrchestrator
	locks         *KeyedLock
	bucket        string
	presignExpiry int64
	defaultModel  string
}

// NewExtractionService creates a new ExtractionService implementation.
func NewExtractionService(
	repo port.InvoiceRepository,
	storage port.ObjectStorage,
	text port.TextExtractor,
	orchestrator port.ExtractionOrchestrator,
	cfg *config.Config,
) ExtractionService {
	defaultModel := strings.ToLower(cfg.Parser.Primary.Provider)
	if defaultModel == "" {
		defaultModel = domain.ProviderGemini
	}
	return &extractionService{
		repo:          repo,
		storage:       storage,
		text:          text,
		orchestrator:  orchestrator,
		locks:         NewKeyedLock(),
		bucket:        cfg.S3.Bucket,
		presignExpiry: cfg.S3.PresignExpiry,
		defaultModel:  defaultModel,
	}
}

var errBlankText = errors.New("extracted text is blank")

func (s *extractionService) Extract(ctx context.Context, input ExtractInput) (*ExtractionOutcome, error) {
	return s.run(ctx, "extractionService.Extract", input)
}

// Retry re-runs the pipeline for a file regardless of its current status.
func (s *extractionService) Retry(ctx context.Context, input ExtractInput) (*ExtractionOutcome, error) {
	return s.run(ctx, "extractionService.Retry", input)
}

func (s *extractionService) run(ctx context.Context, op string, input ExtractInput) (*ExtractionOutcome, error) {
	fileID := strings.TrimSpace(input.FileID)
	if fileID == "" {
		return nil, domain.ErrMissingFileID
	}
	model := strings.ToLower(strings.TrimSpace(input.Model))
	if model == "" {
		model = s.defaultModel
	}
	if !domain.SupportedProviders[model] {
		return nil, domain.WithDetail(domain.ErrUnsupportedProvider, fmt.Sprintf("model %q is not one of gemini, groq", model))
	}

	unlock, err := s.locks.Lock(ctx, fileID)
	if err != nil {
		return nil, fmt.Errorf("waiting for extraction lock: %w", err)
	}
	defer unlock()

	inv, err := s.repo.GetByFileID(ctx, fileID)
	if err != nil {
		return nil, err
	}

	data, err := s.storage.Download(ctx, s.bucket, inv.StorageKey)
	if err != nil {
		log.Printf("%s: download failed for file %s: %v", op, fileID, err)
		return nil, errors.Join(domain.ErrStorageUnavailable, err)
	}

	// The URL only feeds the remote strategy; extraction proceeds without it.
	url, err := s.storage.GetPresignedURL(ctx, s.bucket, inv.StorageKey, s.presignExpiry)
	if err != nil {
		log.Printf("%s: no presigned url for file %s: %v", op, fileID, err)
		url = ""
	}

	text, err := s.text.ExtractText(ctx, port.TextSource{Data: data, URL: url})
	if err != nil && ctx.Err() != nil {
		// The caller went away; the record stays as it was.
		return nil, fmt.Errorf("text extraction for file %s: %w", fileID, ctx.Err())
	}
	if err == nil && strings.TrimSpace(text) == "" {
		err = errBlankText
	}
	if err != nil {
		log.Printf("%s: text extraction failed for file %s: %v", op, fileID, err)
		inv.MarkFailed(err.Error())
		if saveErr := s.repo.UpdateExtraction(ctx, inv); saveErr != nil {
			log.Printf("%s: persisting failed status for file %s: %v", op, fileID, saveErr)
		}
		return nil, domain.WithDetail(domain.ErrEmptyText, err.Error())
	}

	log.Printf("%s: extracted %d chars from file %s, running %s", op, len(text), fileID, model)
	result := s.orchestrator.Run(ctx, text, model)

	extracted := result.Data
	domain.RecomputeTotals(&extracted.Invoice)

	outcome := &ExtractionOutcome{
		FileID:          fileID,
		InvoiceID:       inv.ID,
		ExtractedData:   extracted,
		Status:          string(domain.ExtractionStatusCompleted),
		ExtractionModel: result.Provider,
	}
	if result.Mock || domain.IsMockVendor(extracted.Vendor.Name) {
		outcome.ExtractionModel = domain.ExtractionModelMock
		outcome.Warning = MockWarning
	}

	inv.MarkCompleted(extracted, outcome.ExtractionModel)
	if outcome.Warning != "" {
		inv.ExtractionError = strings.Join(result.Failures, "; ")
		log.Printf("%s: stored placeholder data for file %s: %s", op, fileID, inv.ExtractionError)
	}
	if err := s.repo.UpdateExtraction(ctx, inv); err != nil {
		return nil, fmt.Errorf("saving extraction result: %w", err)
	}
	return outcome, nil
}

func (s *extractionService) Status(ctx context.Context, fileID string) (*ExtractionStatusView, error) {
	fileID = strings.TrimSpace(fileID)
	if fileID == "" {
		return nil, domain.ErrMissingFileID
	}
	inv, err := s.repo.GetByFileID(ctx, fileID)
	if err != nil {
		return nil, err
	}

	view := &ExtractionStatusView{Status: inv.ExtractionStatus, Model: inv.ExtractionModel}
	if inv.ExtractionStatus == domain.ExtractionStatusCompleted {
		data := inv.ExtractedData()
		view.ExtractedData = &data
	}
	return view, nil
}
