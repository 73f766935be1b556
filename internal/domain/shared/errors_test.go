package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError(t *testing.T) {
	t.Run("message carries the code", func(t *testing.T) {
		err := NewDomainError("NEGATIVE_LINE_VALUE", "Line quantity cannot be negative")

		assert.Equal(t, "NEGATIVE_LINE_VALUE: Line quantity cannot be negative", err.Error())
		assert.ErrorContains(t, err, "NEGATIVE_LINE_VALUE")
		assert.ErrorContains(t, err, "Line quantity cannot be negative")
	})

	t.Run("sentinels match through wrapping", func(t *testing.T) {
		wrapped := fmt.Errorf("saving document: %w", ErrConcurrencyConflict)

		assert.ErrorIs(t, wrapped, ErrConcurrencyConflict)
		assert.False(t, errors.Is(wrapped, ErrNotFound))
	})

	t.Run("code survives errors.As", func(t *testing.T) {
		wrapped := fmt.Errorf("lookup: %w", ErrNotFound)

		var domainErr *DomainError
		assert.ErrorAs(t, wrapped, &domainErr)
		assert.Equal(t, "NOT_FOUND", domainErr.Code)
	})
}
