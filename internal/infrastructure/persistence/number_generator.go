package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/verone/backend/internal/domain/billing"
)

// GormDocumentNumberGenerator hands out document numbers backed by the
// financial_documents table. Draft and final numbers come from separate
// sequences so finalized numbering stays gapless per prefix.
type GormDocumentNumberGenerator struct {
	db *gorm.DB
}

// NewGormDocumentNumberGenerator creates a new GormDocumentNumberGenerator
func NewGormDocumentNumberGenerator(db *gorm.DB) *GormDocumentNumberGenerator {
	return &GormDocumentNumberGenerator{db: db}
}

// NextDraftNumber generates a provisional number.
// Format: DRAFT-YYYY-NNNNN (e.g., DRAFT-2026-00001)
func (g *GormDocumentNumberGenerator) NextDraftNumber(ctx context.Context, docType billing.DocumentType) (string, error) {
	return g.nextNumber(ctx, "DRAFT")
}

// NextFinalNumber generates a permanent number for a finalized document.
// Format: FAC-YYYY-NNNNN for invoices, DEV-YYYY-NNNNN for quotes.
func (g *GormDocumentNumberGenerator) NextFinalNumber(ctx context.Context, docType billing.DocumentType) (string, error) {
	switch docType {
	case billing.DocumentTypeInvoice:
		return g.nextNumber(ctx, "FAC")
	case billing.DocumentTypeQuote:
		return g.nextNumber(ctx, "DEV")
	default:
		return "", fmt.Errorf("unknown document type: %s", docType)
	}
}

// nextNumber finds the highest existing number for the prefix and year and
// increments it, probing forward on collision.
func (g *GormDocumentNumberGenerator) nextNumber(ctx context.Context, kind string) (string, error) {
	year := time.Now().Year()
	prefix := fmt.Sprintf("%s-%d-", kind, year)

	var lastDoc billing.FinancialDocument
	err := g.db.WithContext(ctx).
		Model(&billing.FinancialDocument{}).
		Where("document_number LIKE ?", prefix+"%").
		Order("document_number DESC").
		First(&lastDoc).Error

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	var nextNum int64 = 1
	if err == nil && lastDoc.DocumentNumber != "" {
		parts := strings.Split(lastDoc.DocumentNumber, "-")
		if len(parts) == 3 {
			var num int64
			if _, parseErr := fmt.Sscanf(parts[2], "%d", &num); parseErr == nil {
				nextNum = num + 1
			}
		}
	}

	number := fmt.Sprintf("%s%05d", prefix, nextNum)

	exists, err := g.numberExists(ctx, number)
	if err != nil {
		return "", err
	}
	if exists {
		for i := 0; i < 100; i++ {
			nextNum++
			number = fmt.Sprintf("%s%05d", prefix, nextNum)
			exists, err = g.numberExists(ctx, number)
			if err != nil {
				return "", err
			}
			if !exists {
				break
			}
		}
	}

	return number, nil
}

func (g *GormDocumentNumberGenerator) numberExists(ctx context.Context, number string) (bool, error) {
	var count int64
	if err := g.db.WithContext(ctx).
		Model(&billing.FinancialDocument{}).
		Where("document_number = ?", number).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Ensure GormDocumentNumberGenerator implements DocumentNumberGenerator
var _ billing.DocumentNumberGenerator = (*GormDocumentNumberGenerator)(nil)
