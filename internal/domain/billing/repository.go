package billing

import (
	"context"

	"github.com/google/uuid"
	"github.com/verone/backend/internal/domain/shared"
)

// DocumentRepository defines the persistence interface for financial documents
type DocumentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*FinancialDocument, error)
	FindByNumber(ctx context.Context, number string) (*FinancialDocument, error)
	FindAll(ctx context.Context, filter DocumentFilter) (*shared.Paginated[FinancialDocument], error)
	Save(ctx context.Context, doc *FinancialDocument) error
	// UpdateStatusFrom persists the document only if its stored status still
	// matches expectedStatus, returning shared.ErrConcurrencyConflict when the
	// conditional update touches no row.
	UpdateStatusFrom(ctx context.Context, doc *FinancialDocument, expectedStatus DocumentStatus) error
}

// DocumentFilter narrows document listings
type DocumentFilter struct {
	shared.Filter
	Type       *DocumentType
	Status     *DocumentStatus
	CustomerID *uuid.UUID
}

// DocumentNumberGenerator hands out provisional and permanent document numbers.
// Draft and final numbers come from separate sequences; a draft number is
// discarded at finalization.
type DocumentNumberGenerator interface {
	NextDraftNumber(ctx context.Context, docType DocumentType) (string, error)
	NextFinalNumber(ctx context.Context, docType DocumentType) (string, error)
}
