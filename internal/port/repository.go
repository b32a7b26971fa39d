package port

import (
	"context"

	"github.com/google/uuid"

	"invoicepipe/internal/domain"
)

// InvoiceRepository defines the contract for invoice record persistence.
// Records are addressable both by internal id and by the unique file id.
type InvoiceRepository interface {
	Create(ctx context.Context, inv *domain.Invoice) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error)
	GetByFileID(ctx context.Context, fileID string) (*domain.Invoice, error)
	List(ctx context.Context, filter domain.InvoiceFilter) ([]domain.Invoice, int, error)
	// Update overwrites the editable fields (file name, vendor, invoice data).
	Update(ctx context.Context, inv *domain.Invoice) error
	// UpdateExtraction persists the extraction outcome of a record.
	UpdateExtraction(ctx context.Context, inv *domain.Invoice) error
	Delete(ctx context.Context, id uuid.UUID) error
}
