package handler

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	billingapp "github.com/verone/backend/internal/application/billing"
	"github.com/verone/backend/internal/domain/billing"
)

// DocumentHandler handles invoice and quote API endpoints. Each handler
// instance is bound to one document type so the same methods serve both the
// /invoices and /quotes route trees.
type DocumentHandler struct {
	BaseHandler
	docService *billingapp.DocumentService
	docType    billing.DocumentType
}

// NewInvoiceHandler creates a DocumentHandler serving invoices
func NewInvoiceHandler(docService *billingapp.DocumentService) *DocumentHandler {
	return &DocumentHandler{docService: docService, docType: billing.DocumentTypeInvoice}
}

// NewQuoteHandler creates a DocumentHandler serving quotes
func NewQuoteHandler(docService *billingapp.DocumentService) *DocumentHandler {
	return &DocumentHandler{docService: docService, docType: billing.DocumentTypeQuote}
}

// CreateFromOrderBody carries the optional extras when billing an order
type CreateFromOrderBody struct {
	CustomLines []billingapp.LineRequest `json:"custom_lines"`
	Notes       string                   `json:"notes"`
}

// listDocumentsQuery narrows document listings
type listDocumentsQuery struct {
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string `form:"order_by"`
	OrderDir   string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	Status     string `form:"status"`
	CustomerID string `form:"customer_id" binding:"omitempty,uuid"`
}

// CreateFromOrder builds a draft over a validated order's items and fees
func (h *DocumentHandler) CreateFromOrder(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("order_id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	// Body is optional: billing an order without extras is the common case
	var body CreateFromOrderBody
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			h.BadRequest(c, err.Error())
			return
		}
	}

	req := billingapp.CreateFromOrderRequest{
		OrderID:     orderID,
		CustomLines: body.CustomLines,
		Notes:       body.Notes,
	}

	var doc *billingapp.DocumentResponse
	if h.docType == billing.DocumentTypeInvoice {
		doc, err = h.docService.CreateInvoiceFromOrder(c.Request.Context(), req)
	} else {
		doc, err = h.docService.CreateQuoteFromOrder(c.Request.Context(), req)
	}
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, doc)
}

// Create builds a standalone draft from custom lines
func (h *DocumentHandler) Create(c *gin.Context) {
	var req billingapp.CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	doc, err := h.docService.CreateDocument(c.Request.Context(), h.docType, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, doc)
}

// Import registers a document synchronized from the external accounting
// ledger, keeping its external number
func (h *DocumentHandler) Import(c *gin.Context) {
	var req billingapp.ImportDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	doc, err := h.docService.ImportDocument(c.Request.Context(), h.docType, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, doc)
}

// List retrieves documents of this handler's type with filtering and pagination
func (h *DocumentHandler) List(c *gin.Context) {
	var query listDocumentsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.PageSize <= 0 {
		query.PageSize = 20
	}

	docType := h.docType
	filter := billingapp.DocumentListFilter{
		Page:     query.Page,
		PageSize: query.PageSize,
		OrderBy:  query.OrderBy,
		OrderDir: query.OrderDir,
		Type:     &docType,
	}

	if query.Status != "" {
		status := billing.DocumentStatus(strings.ToUpper(query.Status))
		if !status.IsValid() {
			h.BadRequest(c, "Invalid document status: "+query.Status)
			return
		}
		filter.Status = &status
	}
	if query.CustomerID != "" {
		customerID, err := uuid.Parse(query.CustomerID)
		if err != nil {
			h.BadRequest(c, "Invalid customer ID format")
			return
		}
		filter.CustomerID = &customerID
	}

	page, err := h.docService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// GetByID retrieves a document by ID
func (h *DocumentHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid document ID format")
		return
	}

	doc, err := h.docService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	if doc.Type != string(h.docType) {
		h.NotFound(c, "Document not found")
		return
	}

	h.Success(c, doc)
}

// GetByNumber retrieves a document by its number
func (h *DocumentHandler) GetByNumber(c *gin.Context) {
	number := c.Param("number")
	if number == "" {
		h.BadRequest(c, "Document number is required")
		return
	}

	doc, err := h.docService.GetByNumber(c.Request.Context(), number)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	if doc.Type != string(h.docType) {
		h.NotFound(c, "Document not found")
		return
	}

	h.Success(c, doc)
}

// Validate moves an invoice draft to validated
func (h *DocumentHandler) Validate(c *gin.Context) {
	h.lifecycle(c, h.docService.ValidateDraft)
}

// Finalize freezes the document and assigns its permanent number
func (h *DocumentHandler) Finalize(c *gin.Context) {
	h.lifecycle(c, h.docService.Finalize)
}

// Send marks a finalized invoice as sent
func (h *DocumentHandler) Send(c *gin.Context) {
	h.lifecycle(c, h.docService.Send)
}

// Pay records payment of a sent invoice
func (h *DocumentHandler) Pay(c *gin.Context) {
	h.lifecycle(c, h.docService.MarkPaid)
}

// Cancel voids a document
func (h *DocumentHandler) Cancel(c *gin.Context) {
	h.lifecycle(c, h.docService.Cancel)
}

// Convert turns a finalized quote into a fresh invoice draft
func (h *DocumentHandler) Convert(c *gin.Context) {
	h.lifecycle(c, h.docService.ConvertQuote)
}

// lifecycle parses the ID and applies one document lifecycle move
func (h *DocumentHandler) lifecycle(c *gin.Context, move func(ctx context.Context, id uuid.UUID) (*billingapp.DocumentResponse, error)) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid document ID format")
		return
	}

	doc, err := move(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, doc)
}
