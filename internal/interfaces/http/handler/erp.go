package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/erplink/backend/internal/domain/erp"
	"github.com/erplink/backend/internal/interfaces/http/dto"
)

// ERPHandler exposes the uniform backend contract over HTTP. Every operation
// returns 200 with a normalized result; backend failures have already been
// reported and surface as an empty result, so the facade never maps them to
// status codes.
type ERPHandler struct {
	BaseHandler
	backends erp.BackendRegistry
	log      *zap.Logger
}

// NewERPHandler creates a new ERPHandler
func NewERPHandler(backends erp.BackendRegistry, log *zap.Logger) *ERPHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ERPHandler{
		backends: backends,
		log:      log,
	}
}

// RegisterRoutes registers all ERP routes under the given group
func (h *ERPHandler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/erp")

	group.GET("/customers", h.GetCustomer)
	group.POST("/customers", h.CreateCustomer)
	group.GET("/shiptos", h.GetShipTos)
	group.POST("/shiptos", h.CreateShipTo)
	group.GET("/ar-summary", h.GetARSummary)

	group.GET("/price-availability", h.GetPriceAvailability)
	group.GET("/product-sync", h.GetProductSync)
	group.POST("/product-sync", h.SubmitProductSync)

	group.POST("/orders", h.CreateOrder)
	group.GET("/orders/:id", h.GetOrder)
	group.GET("/orders/:id/tracking", h.TrackShipment)
	group.POST("/orders/total", h.GetOrderTotal)
	group.GET("/quotations", h.GetQuotations)
	group.POST("/quotations", h.CreateQuotation)

	group.GET("/invoices", h.GetInvoices)
	group.GET("/invoices/:id", h.GetInvoiceDetail)
	group.GET("/documents/:id", h.GetDocument)
	group.POST("/payments", h.CreatePayment)

	group.GET("/contacts", h.GetContacts)
	group.POST("/contacts", h.CreateContact)
	group.PUT("/contacts/:id", h.UpdateContact)
	group.GET("/contacts/validate", h.ValidateContact)
	group.POST("/notes", h.CreateNote)
	group.PUT("/notes/:id", h.UpdateNote)
	group.GET("/campaigns", h.GetCampaigns)
	group.GET("/campaigns/:id", h.GetCampaignDetail)
}

// active resolves the configured backend, answering 503 when none is wired.
func (h *ERPHandler) active(c *gin.Context) (erp.Backend, bool) {
	backend, err := h.backends.Active()
	if err != nil {
		h.log.Warn("no active ERP backend", zap.Error(err))
		h.Unavailable(c, "no ERP backend configured")
		return nil, false
	}
	return backend, true
}

// customerFilter binds the shared customer-scoped query parameters.
func customerFilter(c *gin.Context) erp.CustomerFilter {
	limit, _ := strconv.Atoi(c.Query("limit"))
	return erp.CustomerFilter{
		CustomerID:  c.Query("customer_id"),
		ShipToID:    c.Query("ship_to_id"),
		StartDate:   c.Query("start_date"),
		EndDate:     c.Query("end_date"),
		RecordLimit: limit,
	}
}

func bindFields(c *gin.Context) (erp.Fields, bool) {
	var reqs []dto.FieldRequest
	if err := c.ShouldBindJSON(&reqs); err != nil {
		return nil, false
	}
	fields := make(erp.Fields, 0, len(reqs))
	for _, r := range reqs {
		fields = append(fields, erp.Field{Name: r.Name, Value: r.Value})
	}
	return fields, true
}

func orderDraft(req dto.OrderRequest) (erp.OrderDraft, error) {
	draft := erp.OrderDraft{
		CustomerID:   req.CustomerID,
		ShipToID:     req.ShipToID,
		PONumber:     req.PONumber,
		FreightTerms: req.FreightTerms,
		Carrier:      req.Carrier,
		Instructions: req.Instructions,
	}
	for _, line := range req.Lines {
		qty, err := decimal.NewFromString(line.Quantity)
		if err != nil {
			return erp.OrderDraft{}, err
		}
		price := decimal.Zero
		if line.UnitPrice != "" {
			if price, err = decimal.NewFromString(line.UnitPrice); err != nil {
				return erp.OrderDraft{}, err
			}
		}
		draft.Lines = append(draft.Lines, erp.OrderLine{
			ItemID:    line.ItemID,
			Warehouse: line.Warehouse,
			Quantity:  qty,
			UnitPrice: price,
		})
	}
	return draft, nil
}

// ---------------------------------------------------------------------------
// Customer Operations
// ---------------------------------------------------------------------------

// GetCustomer returns customer detail for the query or session customer.
func (h *ERPHandler) GetCustomer(c *gin.Context) {
	backend, ok := h.active(c)
	if !ok {
		return
	}
	h.Success(c, backend.GetCustomer(c.Request.Context(), session(c), customerFilter(c)))
}

// CreateCustomer creates a customer from an ordered attribute list.
func (h *ERPHandler) CreateCustomer(c *gin.Context) {
	backend, ok := h.active(c)
	if !ok {
		return
	}
	fields, ok := bindFields(c)
	if !ok {
		h.BadRequest(c, "request body must be a list of name/value fields")
		return
	}
	h.Success(c, backend.CreateCustomer(c.Request.Context(), session(c), fields))
}

// GetShipTos lists ship-to addresses for a customer.
func (h *ERPHandler) GetShipTos(c *gin.Context) {
	backend, ok := h.active(c)
	if !ok {
		return
	}
	h.Success(c, backend.GetShipTos(c.Request.Context(), session(c), customerFilter(c)))
}

// CreateShipTo creates a ship-to address from an ordered attribute list.
func (h *ERPHandler) CreateShipTo(c *gin.Context) {
	backend, ok := h.active(c)
	if !ok {
		return
	}
	fields, ok := bindFields(c)
	if !ok {
		h.BadRequest(c, "request body must be a list of name/value fields")
		return
	}
	h.Success(c, backend.CreateShipTo(c.Request.Context(), session(c), fields))
}

// GetARSummary returns the accounts-receivable summary for a customer.
func (h *ERPHandler) GetARSummary(c *gin.Context) {
	backend, ok := h.active(c)
	if !ok {
		return
	}
	h.Success(c, backend.GetARSummary(c.Request.Context(), session(c), customerFilter(c)))
}

// ---------------------------------------------------------------------------
// Product Operations
// ---------------------------------------------------------------------------

// GetPriceAvailability prices every item/warehouse pair from the query.
func (h *ERPHandler) GetPriceAvailability(c *gin.Context) {
	backend, ok := h.active(c)
	if !ok {
		return
	}
	items := splitList(c.Query("items"))
	warehouses := splitList(c.Query("warehouses"))
	if len(items) == 0 {
		h.BadRequest(c, "items is required")
		return
	}
	h.Success(c, backend.GetPriceAvailability(c.Request.Context(), session(c), items, warehouses))
}

// GetProductSync returns products changed since the given date.
func (h *ERPHandler) GetProductSync(c *gin.Context) {
	backend, ok := h.active(c)
	if !ok {
		return
	}
	h.Success(c, backend.GetProductSync(c.Request.Context(), session(c), c.Query("since")))
}

// SubmitProductSync pushes product rows to the backend.
func (h *ERPHandler) SubmitProductSync(c *gin.Context) {
	backend, ok := h.active(c)
	if !ok {
		return
	}
	fields, ok := bindFields(c)
	if !ok {
		h.BadRequest(c, "request body must be a list of name/value fields")
		return
	}
	h.Success(c, backend.SubmitProductSync(c.Request.Context(), session(c), fields))
}

// ---------------------------------------------------------------------------
// Order & Quotation Operations
// ---------------------------------------------------------------------------

// CreateOrder submits an order draft.
func (h *ERPHandler) CreateOrder(c *gin.Context) {
	h.submitDraft(c, func(backend erp.Backend, draft erp.OrderDraft) erp.Result {
		return backend.CreateOrder(c.Request.Context(), session(c), draft)
	})
}

// CreateQuotation submits a quotation draft.
func (h *ERPHandler) CreateQuotation(c *gin.Context) {
	h.submitDraft(c, func(backend erp.Backend, draft erp.OrderDraft) erp.Result {
		return backend.CreateQuotation(c.Request.Context(), session(c), draft)
	})
}

// GetOrderTotal prices a draft without persisting it.
func (h *ERPHandler) GetOrderTotal(c *gin.Context) {
	h.submitDraft(c, func(backend erp.Backend, draft erp.OrderDraft) erp.Result {
		return backend.GetOrderTotal(c.Request.Context(), session(c), draft)
	})
}

func (h *ERPHandler) submitDraft(c *gin.Context, call func(erp.Backend, erp.OrderDraft) erp.Result) {
	backend, ok := h.active(c)
	if !ok {
		return
	}
	var req dto.OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	draft, err := orderDraft(req)
	if err != nil {
		h.BadRequest(c, "invalid decimal value: "+err.Error())
		return
	}
	h.Success(c, call(backend, draft))
}

// GetOrder returns order detail.
func (h *ERPHandler) GetOrder(c *gin.Context) {
	backend, ok := h.active(c)
	if !ok {
		return
	}
	h.Success(c, backend.GetOrder(c.Request.Context(), session(c), c.Param("id")))
}

// GetQuotations lists quotations for a customer.
func (h *ERPHandler) GetQuotations(c *gin.Context) {
	backend, ok := h.active(c)
	if !ok {
		return
	}
	h.Success(c, backend.GetQuotations(c.Request.Context(), session(c), customerFilter(c)))
}

// TrackShipment returns tracking data for an order.
func (h *ERPHandler) TrackShipment(c *gin.Context) {
	backend, ok := h.active(c)
	if !ok {
		return
	}
	h.Success(c, backend.TrackShipment(c.Request.Context(), session(c), c.Param("id")))
}

// ---------------------------------------------------------------------------
// Invoice & Payment Operations
// ---------------------------------------------------------------------------

// GetInvoices lists invoices for a customer.
func (h *ERPHandler) GetInvoices(c *gin.Context) {
	backend, ok := h.active(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	filter := erp.InvoiceFilter{
		CustomerID:  c.Query("customer_id"),
		InvoiceID:   c.Query("invoice_id"),
		StartDate:   c.Query("start_date"),
		EndDate:     c.Query("end_date"),
		OpenOnly:    c.Query("open_only") == "true",
		RecordLimit: limit,
	}
	h.Success(c, backend.GetInvoices(c.Request.Context(), session(c), filter))
}

// GetInvoiceDetail returns one invoice with its lines.
func (h *ERPHandler) GetInvoiceDetail(c *gin.Context) {
	backend, ok := h.active(c)
	if !ok {
		return
	}
	h.Success(c, backend.GetInvoiceDetail(c.Request.Context(), session(c), c.Param("id")))
}

// GetDocument returns a stored document image.
func (h *ERPHandler) GetDocument(c *gin.Context) {
	backend, ok := h.active(c)
	if !ok {
		return
	}
	h.Success(c, backend.GetDocument(c.Request.Context(), session(c), c.Param("id")))
}

// CreatePayment applies a payment against open invoices.
func (h *ERPHandler) CreatePayment(c *gin.Context) {
	backend, ok := h.active(c)
	if !ok {
		return
	}
	var req dto.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		h.BadRequest(c, "invalid decimal value: "+err.Error())
		return
	}
	draft := erp.PaymentDraft{
		CustomerID: req.CustomerID,
		InvoiceIDs: req.InvoiceIDs,
		Amount:     amount,
		Method:     req.Method,
		Reference:  req.Reference,
	}
	h.Success(c, backend.CreatePayment(c.Request.Context(), session(c), draft))
}

// ---------------------------------------------------------------------------
// Contact, Note & Campaign Operations
// ---------------------------------------------------------------------------

// GetContacts lists contacts for a customer.
func (h *ERPHandler) GetContacts(c *gin.Context) {
	backend, ok := h.active(c)
	if !ok {
		return
	}
	h.Success(c, backend.GetContacts(c.Request.Context(), session(c), customerFilter(c)))
}

// CreateContact creates a customer contact.
func (h *ERPHandler) CreateContact(c *gin.Context) {
	backend, ok := h.active(c)
	if !ok {
		return
	}
	contact, ok := h.bindContact(c, "")
	if !ok {
		return
	}
	h.Success(c, backend.CreateContact(c.Request.Context(), session(c), contact))
}

// UpdateContact updates the contact addressed by the path.
func (h *ERPHandler) UpdateContact(c *gin.Context) {
	backend, ok := h.active(c)
	if !ok {
		return
	}
	contact, ok := h.bindContact(c, c.Param("id"))
	if !ok {
		return
	}
	h.Success(c, backend.UpdateContact(c.Request.Context(), session(c), contact))
}

func (h *ERPHandler) bindContact(c *gin.Context, contactID string) (erp.Contact, bool) {
	var req dto.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return erp.Contact{}, false
	}
	if contactID == "" {
		contactID = req.ContactID
	}
	return erp.Contact{
		ContactID:  contactID,
		CustomerID: req.CustomerID,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		Phone:      req.Phone,
		Title:      req.Title,
	}, true
}

// ValidateContact checks whether an email belongs to a known contact.
func (h *ERPHandler) ValidateContact(c *gin.Context) {
	backend, ok := h.active(c)
	if !ok {
		return
	}
	email := c.Query("email")
	if email == "" {
		h.BadRequest(c, "email is required")
		return
	}
	h.Success(c, backend.ValidateContact(c.Request.Context(), session(c), email))
}

// CreateNote attaches a note to a customer.
func (h *ERPHandler) CreateNote(c *gin.Context) {
	backend, ok := h.active(c)
	if !ok {
		return
	}
	note, ok := h.bindNote(c, "")
	if !ok {
		return
	}
	h.Success(c, backend.CreateNote(c.Request.Context(), session(c), note))
}

// UpdateNote updates the note addressed by the path.
func (h *ERPHandler) UpdateNote(c *gin.Context) {
	backend, ok := h.active(c)
	if !ok {
		return
	}
	note, ok := h.bindNote(c, c.Param("id"))
	if !ok {
		return
	}
	h.Success(c, backend.UpdateNote(c.Request.Context(), session(c), note))
}

func (h *ERPHandler) bindNote(c *gin.Context, noteID string) (erp.Note, bool) {
	var req dto.NoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return erp.Note{}, false
	}
	if noteID == "" {
		noteID = req.NoteID
	}
	return erp.Note{
		NoteID:     noteID,
		CustomerID: req.CustomerID,
		Topic:      req.Topic,
		Body:       req.Body,
	}, true
}

// GetCampaigns lists campaigns visible to a customer.
func (h *ERPHandler) GetCampaigns(c *gin.Context) {
	backend, ok := h.active(c)
	if !ok {
		return
	}
	h.Success(c, backend.GetCampaigns(c.Request.Context(), session(c), customerFilter(c)))
}

// GetCampaignDetail returns one campaign.
func (h *ERPHandler) GetCampaignDetail(c *gin.Context) {
	backend, ok := h.active(c)
	if !ok {
		return
	}
	h.Success(c, backend.GetCampaignDetail(c.Request.Context(), session(c), c.Param("id")))
}

// splitList parses a comma-separated query value, dropping empty entries.
func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
