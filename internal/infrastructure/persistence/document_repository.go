package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/verone/backend/internal/domain/billing"
	"github.com/verone/backend/internal/domain/shared"
)

// GormDocumentRepository implements DocumentRepository using GORM
type GormDocumentRepository struct {
	db *gorm.DB
}

// NewGormDocumentRepository creates a new GormDocumentRepository
func NewGormDocumentRepository(db *gorm.DB) *GormDocumentRepository {
	return &GormDocumentRepository{db: db}
}

// FindByID finds a financial document by its ID
func (r *GormDocumentRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.FinancialDocument, error) {
	var doc billing.FinancialDocument
	if err := r.db.WithContext(ctx).
		First(&doc, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &doc, nil
}

// FindByNumber finds a financial document by its document number
func (r *GormDocumentRepository) FindByNumber(ctx context.Context, number string) (*billing.FinancialDocument, error) {
	var doc billing.FinancialDocument
	if err := r.db.WithContext(ctx).
		First(&doc, "document_number = ?", number).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &doc, nil
}

// FindAll finds financial documents with filtering and pagination
func (r *GormDocumentRepository) FindAll(ctx context.Context, filter billing.DocumentFilter) (*shared.Paginated[billing.FinancialDocument], error) {
	query := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&billing.FinancialDocument{}),
		filter,
	)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	query = r.applyPagination(query, filter.Filter)

	var docs []billing.FinancialDocument
	if err := query.Find(&docs).Error; err != nil {
		return nil, err
	}

	page := filter.Page
	pageSize := filter.PageSize
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	result := shared.NewPaginated(docs, total, page, pageSize)
	return &result, nil
}

// Save creates or updates a financial document
func (r *GormDocumentRepository) Save(ctx context.Context, doc *billing.FinancialDocument) error {
	return r.db.WithContext(ctx).Save(doc).Error
}

// UpdateStatusFrom persists a lifecycle move only if the stored status still
// matches expectedStatus. When the conditional update touches no row, another
// writer won the transition and shared.ErrConcurrencyConflict is returned.
func (r *GormDocumentRepository) UpdateStatusFrom(ctx context.Context, doc *billing.FinancialDocument, expectedStatus billing.DocumentStatus) error {
	doc.Touch()
	doc.IncrementVersion()

	result := r.db.WithContext(ctx).
		Model(&billing.FinancialDocument{}).
		Where("id = ? AND status = ?", doc.GetID(), expectedStatus).
		Updates(map[string]interface{}{
			"document_number": doc.DocumentNumber,
			"status":          doc.Status,
			"issued_at":       doc.IssuedAt,
			"sent_at":         doc.SentAt,
			"paid_at":         doc.PaidAt,
			"version":         doc.GetVersion(),
			"updated_at":      doc.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// applyPagination applies pagination and ordering to the query
func (r *GormDocumentRepository) applyPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderDir := "ASC"
		if strings.ToLower(filter.OrderDir) == "desc" {
			orderDir = "DESC"
		}
		query = query.Order(filter.OrderBy + " " + orderDir)
	} else {
		query = query.Order("created_at DESC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormDocumentRepository) applyFilterWithoutPagination(query *gorm.DB, filter billing.DocumentFilter) *gorm.DB {
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}

	if filter.Search != "" {
		query = query.Where("document_number LIKE ?", "%"+filter.Search+"%")
	}

	return query
}

// Ensure GormDocumentRepository implements DocumentRepository
var _ billing.DocumentRepository = (*GormDocumentRepository)(nil)
