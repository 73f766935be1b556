package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandlerRegistry_Register(t *testing.T) {
	registry := NewHandlerRegistry()

	handler := newTestHandler("invoice.created")
	registry.Register(handler, "invoice.created")

	handlers := registry.GetHandlers("invoice.created")
	assert.Len(t, handlers, 1)
}

func TestHandlerRegistry_Register_MultipleTypes(t *testing.T) {
	registry := NewHandlerRegistry()

	handler := newTestHandler("invoice.created", "invoice.finalized")
	registry.Register(handler, "invoice.created", "invoice.finalized")

	assert.Len(t, registry.GetHandlers("invoice.created"), 1)
	assert.Len(t, registry.GetHandlers("invoice.finalized"), 1)
	assert.Len(t, registry.GetHandlers("invoice.paid"), 0)
}

func TestHandlerRegistry_Register_Wildcard(t *testing.T) {
	registry := NewHandlerRegistry()

	handler := newTestHandler()
	registry.Register(handler)

	// Wildcard handlers are returned for every event type
	assert.Len(t, registry.GetHandlers("invoice.created"), 1)
	assert.Len(t, registry.GetHandlers("storage.event.recorded"), 1)
}

func TestHandlerRegistry_GetHandlers_CombinesTypedAndWildcard(t *testing.T) {
	registry := NewHandlerRegistry()

	typed := newTestHandler("quote.converted")
	wildcard := newTestHandler()
	registry.Register(typed, "quote.converted")
	registry.Register(wildcard)

	assert.Len(t, registry.GetHandlers("quote.converted"), 2)
	assert.Len(t, registry.GetHandlers("quote.sent"), 1)
}

func TestHandlerRegistry_Unregister(t *testing.T) {
	registry := NewHandlerRegistry()

	handler1 := newTestHandler("invoice.created")
	handler2 := newTestHandler("invoice.created")
	registry.Register(handler1, "invoice.created")
	registry.Register(handler2, "invoice.created")

	registry.Unregister(handler1)

	handlers := registry.GetHandlers("invoice.created")
	assert.Len(t, handlers, 1)
}

func TestHandlerRegistry_Unregister_Wildcard(t *testing.T) {
	registry := NewHandlerRegistry()

	handler := newTestHandler()
	registry.Register(handler)
	assert.Len(t, registry.GetHandlers("any.event"), 1)

	registry.Unregister(handler)
	assert.Len(t, registry.GetHandlers("any.event"), 0)
}

func TestHandlerRegistry_Unregister_Unknown(t *testing.T) {
	registry := NewHandlerRegistry()

	registry.Register(newTestHandler("invoice.created"), "invoice.created")

	// Unregistering a handler that was never registered is a no-op
	registry.Unregister(newTestHandler("invoice.created"))
	assert.Len(t, registry.GetHandlers("invoice.created"), 1)
}
