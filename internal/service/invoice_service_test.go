package service_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"invoicepipe/internal/config"
	"invoicepipe/internal/domain"
	"invoicepipe/internal/pdffixture"
	"invoicepipe/internal/port"
	"invoicepipe/internal/service"
	"invoicepipe/mocks"
)

func testConfig() *config.Config {
	return &config.Config{
		S3:     config.S3Config{Bucket: "test-bucket", PresignExpiry: 900},
		Upload: config.UploadConfig{MaxFileSizeMB: 1},
		Parser: config.ParserConfig{
			Primary:   config.ParserProviderConfig{Provider: "gemini"},
			Secondary: config.ParserProviderConfig{Provider: "groq"},
		},
	}
}

type invoiceDeps struct {
	repo      *mocks.MockInvoiceRepo
	storage   *mocks.MockObjectStorage
	inspector *mocks.MockPDFInspector
	svc       service.InvoiceService
}

func newInvoiceDeps() invoiceDeps {
	d := invoiceDeps{
		repo:      new(mocks.MockInvoiceRepo),
		storage:   new(mocks.MockObjectStorage),
		inspector: new(mocks.MockPDFInspector),
	}
	d.svc = service.NewInvoiceService(d.repo, d.storage, d.inspector, testConfig())
	return d
}

func ptr(f float64) *float64 { return &f }

func TestInvoiceService_Upload_Success(t *testing.T) {
	d := newInvoiceDeps()
	pdf := pdffixture.Build("Invoice 1", "Page two")

	d.inspector.On("Inspect", pdf).Return(&port.PDFInfo{PageCount: 2}, nil)
	d.storage.On("Upload", mock.Anything, mock.MatchedBy(func(in port.UploadInput) bool {
		return in.Bucket == "test-bucket" &&
			strings.HasPrefix(in.Key, "invoices/") &&
			strings.HasSuffix(in.Key, "/scan.pdf") &&
			in.ContentType == "application/pdf" &&
			in.Size == int64(len(pdf))
	})).Return(&port.UploadOutput{Location: "https://blob/scan.pdf"}, nil)
	d.repo.On("Create", mock.Anything, mock.MatchedBy(func(inv *domain.Invoice) bool {
		return inv.ExtractionStatus == domain.ExtractionStatusPending && inv.ExtractionModel == nil
	})).Return(nil)

	inv, err := d.svc.Upload(context.Background(), service.UploadInput{
		FileName: "scan.pdf",
		Size:     int64(len(pdf)),
		Body:     bytes.NewReader(pdf),
	})
	require.NoError(t, err)

	assert.NotEmpty(t, inv.FileID)
	assert.NotEqual(t, uuid.Nil, inv.ID)
	assert.Equal(t, "scan.pdf", inv.FileName)
	assert.Equal(t, "https://blob/scan.pdf", inv.FileURL)
	assert.Equal(t, "invoices/"+inv.FileID+"/scan.pdf", inv.StorageKey)
	assert.Equal(t, 2, inv.PageCount)
	require.NotNil(t, inv.FileSize)
	assert.Equal(t, int64(len(pdf)), *inv.FileSize)
	d.storage.AssertExpectations(t)
	d.repo.AssertExpectations(t)
}

func TestInvoiceService_Upload_InspectFailureIsNotFatal(t *testing.T) {
	d := newInvoiceDeps()
	pdf := pdffixture.Build("Invoice")

	d.inspector.On("Inspect", mock.Anything).Return(nil, errors.New("broken xref"))
	d.storage.On("Upload", mock.Anything, mock.Anything).Return(&port.UploadOutput{Location: "loc"}, nil)
	d.repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	inv, err := d.svc.Upload(context.Background(), service.UploadInput{FileName: "a.PDF", Body: bytes.NewReader(pdf)})
	require.NoError(t, err)
	assert.Equal(t, 0, inv.PageCount)
}

func TestInvoiceService_Upload_Rejections(t *testing.T) {
	pdf := pdffixture.Build("Invoice")
	png := append([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, bytes.Repeat([]byte{0}, 64)...)
	big := append([]byte("%PDF-1.4\n"), bytes.Repeat([]byte("a"), 1024*1024)...)

	tests := []struct {
		name    string
		input   service.UploadInput
		wantErr error
	}{
		{"wrong extension", service.UploadInput{FileName: "invoice.docx", Body: bytes.NewReader(pdf)}, domain.ErrUnsupportedFileType},
		{"no extension", service.UploadInput{FileName: "invoice", Body: bytes.NewReader(pdf)}, domain.ErrUnsupportedFileType},
		{"png bytes named pdf", service.UploadInput{FileName: "invoice.pdf", Body: bytes.NewReader(png)}, domain.ErrUnsupportedFileType},
		{"declared size too large", service.UploadInput{FileName: "invoice.pdf", Size: 2 * 1024 * 1024, Body: bytes.NewReader(pdf)}, domain.ErrFileTooLarge},
		{"body too large", service.UploadInput{FileName: "invoice.pdf", Body: bytes.NewReader(big)}, domain.ErrFileTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newInvoiceDeps()
			_, err := d.svc.Upload(context.Background(), tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
			d.storage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
			d.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestInvoiceService_Upload_StorageFailureCreatesNoRecord(t *testing.T) {
	d := newInvoiceDeps()
	pdf := pdffixture.Build("Invoice")

	d.inspector.On("Inspect", mock.Anything).Return(&port.PDFInfo{PageCount: 1}, nil)
	d.storage.On("Upload", mock.Anything, mock.Anything).Return(nil, errors.New("s3 down"))

	_, err := d.svc.Upload(context.Background(), service.UploadInput{FileName: "a.pdf", Body: bytes.NewReader(pdf)})
	assert.ErrorIs(t, err, domain.ErrUploadFailed)
	d.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestInvoiceService_Upload_RecordFailureRemovesBlob(t *testing.T) {
	d := newInvoiceDeps()
	pdf := pdffixture.Build("Invoice")

	var storedKey string
	d.inspector.On("Inspect", mock.Anything).Return(&port.PDFInfo{PageCount: 1}, nil)
	d.storage.On("Upload", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { storedKey = args.Get(1).(port.UploadInput).Key }).
		Return(&port.UploadOutput{Location: "loc"}, nil)
	d.repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("db down"))
	d.storage.On("Delete", mock.Anything, "test-bucket", mock.Anything).Return(errors.New("still down"))

	_, err := d.svc.Upload(context.Background(), service.UploadInput{FileName: "a.pdf", Body: bytes.NewReader(pdf)})
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrUploadFailed)
	d.storage.AssertCalled(t, "Delete", mock.Anything, "test-bucket", storedKey)
}

func TestInvoiceService_CreateManual(t *testing.T) {
	d := newInvoiceDeps()
	d.repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	inv, err := d.svc.CreateManual(context.Background(), service.ManualInvoiceInput{
		Vendor: domain.Vendor{Name: "Acme"},
		Invoice: domain.InvoiceData{
			Number: " INV-7 ",
			Date:   "2024-01-05",
			Total:  ptr(99),
			LineItems: []domain.LineItem{
				{Description: "Bolts", UnitPrice: 2.5, Quantity: 4},
				{Description: "Nuts", UnitPrice: 1, Quantity: 10},
			},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, domain.ExtractionStatusCompleted, inv.ExtractionStatus)
	require.NotNil(t, inv.ExtractionModel)
	assert.Equal(t, domain.ExtractionModelManual, *inv.ExtractionModel)
	assert.True(t, strings.HasPrefix(inv.FileID, "manual-"))
	assert.Equal(t, "manual-entry", inv.FileName)
	assert.Equal(t, "INV-7", inv.InvoiceData.Number)
	assert.Equal(t, "USD", inv.InvoiceData.Currency)
	assert.Equal(t, 10.0, inv.InvoiceData.LineItems[0].Total)
	assert.Equal(t, 20.0, *inv.InvoiceData.Subtotal)
	assert.Equal(t, 99.0, *inv.InvoiceData.Total)
}

func TestInvoiceService_CreateManual_Invalid(t *testing.T) {
	d := newInvoiceDeps()

	_, err := d.svc.CreateManual(context.Background(), service.ManualInvoiceInput{
		Invoice: domain.InvoiceData{Number: "1", Date: "2024-01-05", LineItems: []domain.LineItem{{Description: "x", Quantity: 1}}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInvoiceData)
	d.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestInvoiceService_CreateManual_RejectsNonISODates(t *testing.T) {
	tests := []struct {
		name   string
		date   string
		poDate string
	}{
		{"free-text date", "next tuesday", ""},
		{"day-first date", "05/01/2024", ""},
		{"malformed po date", "2024-01-05", "garbage"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newInvoiceDeps()

			_, err := d.svc.CreateManual(context.Background(), service.ManualInvoiceInput{
				Vendor: domain.Vendor{Name: "Acme"},
				Invoice: domain.InvoiceData{
					Number:    "INV-9",
					Date:      tt.date,
					PODate:    tt.poDate,
					LineItems: []domain.LineItem{{Description: "x", UnitPrice: 1, Quantity: 1}},
				},
			})
			assert.ErrorIs(t, err, domain.ErrInvalidInvoiceData)
			d.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestInvoiceService_CreateManual_TrimsPODate(t *testing.T) {
	d := newInvoiceDeps()
	d.repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	inv, err := d.svc.CreateManual(context.Background(), service.ManualInvoiceInput{
		Vendor: domain.Vendor{Name: "Acme"},
		Invoice: domain.InvoiceData{
			Number:    "INV-9",
			Date:      "2024-01-05",
			PODate:    " 2023-12-20 ",
			LineItems: []domain.LineItem{{Description: "x", UnitPrice: 1, Quantity: 1}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "2023-12-20", inv.InvoiceData.PODate)
}

func completedInvoice() *domain.Invoice {
	model := "gemini"
	return &domain.Invoice{
		ID:               uuid.New(),
		FileID:           "file-1",
		FileName:         "a.pdf",
		StorageKey:       "invoices/file-1/a.pdf",
		Vendor:           domain.Vendor{Name: "Acme"},
		ExtractionStatus: domain.ExtractionStatusCompleted,
		ExtractionModel:  &model,
		InvoiceData: domain.InvoiceData{
			Number:   "INV-1",
			Date:     "2024-01-01",
			Currency: "USD",
			Subtotal: ptr(25),
			Total:    ptr(27.5),
			LineItems: []domain.LineItem{
				{Description: "A", UnitPrice: 5, Quantity: 3, Total: 15},
				{Description: "B", UnitPrice: 10, Quantity: 1, Total: 10},
			},
		},
	}
}

func TestInvoiceService_Update_RecomputesEditedLineItems(t *testing.T) {
	d := newInvoiceDeps()
	inv := completedInvoice()
	d.repo.On("GetByID", mock.Anything, inv.ID).Return(inv, nil)
	d.repo.On("Update", mock.Anything, mock.Anything).Return(nil)

	edited := inv.InvoiceData
	edited.LineItems = []domain.LineItem{
		{Description: "A renamed", UnitPrice: 5, Quantity: 3, Total: 15},
		{Description: "B", UnitPrice: 10, Quantity: 2, Total: 10},
		{Description: "C", UnitPrice: 1, Quantity: 1},
	}
	edited.Total = ptr(40)

	got, err := d.svc.Update(context.Background(), inv.ID, service.UpdateInvoiceInput{Invoice: &edited})
	require.NoError(t, err)

	assert.Equal(t, 15.0, got.InvoiceData.LineItems[0].Total)
	assert.Equal(t, 20.0, got.InvoiceData.LineItems[1].Total)
	assert.Equal(t, 1.0, got.InvoiceData.LineItems[2].Total)
	assert.Equal(t, 36.0, *got.InvoiceData.Subtotal)
	assert.Equal(t, 40.0, *got.InvoiceData.Total)
	assert.Equal(t, domain.ExtractionStatusCompleted, got.ExtractionStatus)
}

func TestInvoiceService_Update_RejectsNegativeAmounts(t *testing.T) {
	d := newInvoiceDeps()
	inv := completedInvoice()
	d.repo.On("GetByID", mock.Anything, inv.ID).Return(inv, nil)

	edited := inv.InvoiceData
	edited.LineItems = []domain.LineItem{{Description: "A", UnitPrice: -5, Quantity: 1}}

	_, err := d.svc.Update(context.Background(), inv.ID, service.UpdateInvoiceInput{Invoice: &edited})
	assert.ErrorIs(t, err, domain.ErrInvalidInvoiceData)
	d.repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestInvoiceService_Update_RejectsNonISODates(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(d *domain.InvoiceData)
	}{
		{"date", func(d *domain.InvoiceData) { d.Date = "Jan 1 2024" }},
		{"po date", func(d *domain.InvoiceData) { d.PODate = "soon" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newInvoiceDeps()
			inv := completedInvoice()
			d.repo.On("GetByID", mock.Anything, inv.ID).Return(inv, nil)

			edited := inv.InvoiceData
			tt.mutate(&edited)

			_, err := d.svc.Update(context.Background(), inv.ID, service.UpdateInvoiceInput{Invoice: &edited})
			assert.ErrorIs(t, err, domain.ErrInvalidInvoiceData)
			d.repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		})
	}
}

func TestInvoiceService_Update_PendingRecordRejectsMalformedDate(t *testing.T) {
	d := newInvoiceDeps()
	inv := &domain.Invoice{ID: uuid.New(), FileID: "f", FileName: "a.pdf", ExtractionStatus: domain.ExtractionStatusPending}
	d.repo.On("GetByID", mock.Anything, inv.ID).Return(inv, nil)

	_, err := d.svc.Update(context.Background(), inv.ID, service.UpdateInvoiceInput{
		Invoice: &domain.InvoiceData{Date: "tomorrow"},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInvoiceData)
	d.repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestInvoiceService_Update_PendingRecordFileName(t *testing.T) {
	d := newInvoiceDeps()
	inv := &domain.Invoice{ID: uuid.New(), FileID: "f", FileName: "old.pdf", ExtractionStatus: domain.ExtractionStatusPending}
	d.repo.On("GetByID", mock.Anything, inv.ID).Return(inv, nil)
	d.repo.On("Update", mock.Anything, inv).Return(nil)

	name := "  new.pdf "
	got, err := d.svc.Update(context.Background(), inv.ID, service.UpdateInvoiceInput{FileName: &name})
	require.NoError(t, err)
	assert.Equal(t, "new.pdf", got.FileName)
	assert.Equal(t, domain.ExtractionStatusPending, got.ExtractionStatus)
}

func TestInvoiceService_Update_NotFound(t *testing.T) {
	d := newInvoiceDeps()
	id := uuid.New()
	d.repo.On("GetByID", mock.Anything, id).Return(nil, domain.ErrInvoiceNotFound)

	_, err := d.svc.Update(context.Background(), id, service.UpdateInvoiceInput{})
	assert.ErrorIs(t, err, domain.ErrInvoiceNotFound)
}

func TestInvoiceService_Delete_BlobFailureStillDeletesRecord(t *testing.T) {
	d := newInvoiceDeps()
	inv := completedInvoice()
	d.repo.On("GetByID", mock.Anything, inv.ID).Return(inv, nil)
	d.storage.On("Delete", mock.Anything, "test-bucket", inv.StorageKey).Return(errors.New("gone"))
	d.repo.On("Delete", mock.Anything, inv.ID).Return(nil)

	require.NoError(t, d.svc.Delete(context.Background(), inv.ID))
	d.repo.AssertExpectations(t)
	d.storage.AssertExpectations(t)
}

func TestInvoiceService_Delete_ManualRecordSkipsBlob(t *testing.T) {
	d := newInvoiceDeps()
	inv := &domain.Invoice{ID: uuid.New(), FileID: "manual-1"}
	d.repo.On("GetByID", mock.Anything, inv.ID).Return(inv, nil)
	d.repo.On("Delete", mock.Anything, inv.ID).Return(nil)

	require.NoError(t, d.svc.Delete(context.Background(), inv.ID))
	d.storage.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
}

func TestInvoiceService_List_NormalizesFilter(t *testing.T) {
	d := newInvoiceDeps()
	want := domain.InvoiceFilter{Page: 1, Limit: 100, SortBy: "createdAt", SortOrder: "asc", Query: "acme"}
	d.repo.On("List", mock.Anything, want).Return([]domain.Invoice{}, 0, nil)

	_, total, err := d.svc.List(context.Background(), domain.InvoiceFilter{
		Page: 0, Limit: 500, SortBy: "bogus", SortOrder: "ASC", Query: " acme ", Status: "archived",
	})
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	d.repo.AssertExpectations(t)
}
