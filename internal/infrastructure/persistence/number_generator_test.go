package persistence

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verone/backend/internal/domain/billing"
)

func TestGormDocumentNumberGenerator_NextDraftNumber(t *testing.T) {
	db := setupDocumentTestDB(t)
	repo := NewGormDocumentRepository(db)
	gen := NewGormDocumentNumberGenerator(db)
	ctx := context.Background()

	year := time.Now().Year()

	t.Run("starts at one", func(t *testing.T) {
		number, err := gen.NextDraftNumber(ctx, billing.DocumentTypeInvoice)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("DRAFT-%d-00001", year), number)
	})

	t.Run("increments past stored drafts", func(t *testing.T) {
		doc := newTestInvoice(t, fmt.Sprintf("DRAFT-%d-00007", year))
		require.NoError(t, repo.Save(ctx, doc))

		number, err := gen.NextDraftNumber(ctx, billing.DocumentTypeInvoice)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("DRAFT-%d-00008", year), number)
	})
}

func TestGormDocumentNumberGenerator_NextFinalNumber(t *testing.T) {
	db := setupDocumentTestDB(t)
	repo := NewGormDocumentRepository(db)
	gen := NewGormDocumentNumberGenerator(db)
	ctx := context.Background()

	year := time.Now().Year()

	t.Run("invoices use FAC prefix", func(t *testing.T) {
		number, err := gen.NextFinalNumber(ctx, billing.DocumentTypeInvoice)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("FAC-%d-00001", year), number)
	})

	t.Run("quotes use DEV prefix", func(t *testing.T) {
		number, err := gen.NextFinalNumber(ctx, billing.DocumentTypeQuote)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("DEV-%d-00001", year), number)
	})

	t.Run("sequences are independent of the draft sequence", func(t *testing.T) {
		draft := newTestInvoice(t, fmt.Sprintf("DRAFT-%d-00042", year))
		require.NoError(t, repo.Save(ctx, draft))

		number, err := gen.NextFinalNumber(ctx, billing.DocumentTypeInvoice)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("FAC-%d-00001", year), number)
	})

	t.Run("increments past stored finalized numbers", func(t *testing.T) {
		doc := newTestInvoice(t, fmt.Sprintf("DRAFT-%d-00050", year))
		require.NoError(t, repo.Save(ctx, doc))
		require.NoError(t, doc.ValidateDraft())
		require.NoError(t, doc.Finalize(fmt.Sprintf("FAC-%d-00003", year)))
		require.NoError(t, repo.Save(ctx, doc))

		number, err := gen.NextFinalNumber(ctx, billing.DocumentTypeInvoice)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("FAC-%d-00004", year), number)
	})

	t.Run("rejects unknown type", func(t *testing.T) {
		_, err := gen.NextFinalNumber(ctx, billing.DocumentType("RECEIPT"))
		assert.Error(t, err)
	})
}
