package connector

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/erplink/backend/internal/domain/erp"
)

// P21Backend implements the erp.Backend interface against the Prophet 21
// middleware: JSON over HTTP POST authenticated by an OAuth-style bearer
// token, with table-maintenance payloads for record writes.
type P21Backend struct {
	config     *P21Config
	profile    *Profile
	tokens     *TokenManager
	reporter   erp.ErrorReporter
	httpClient *http.Client
	log        *zap.Logger
}

// NewP21Backend creates a Prophet 21 backend. The token check-and-refresh
// runs once here, not per call; refresh failures are reported and the backend
// is still returned so operations surface classified errors uniformly.
func NewP21Backend(ctx context.Context, config *P21Config, store SettingsStore, reporter erp.ErrorReporter, log *zap.Logger) (*P21Backend, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	timeout := time.Duration(config.TimeoutSeconds) * time.Second
	initial := TokenState{AccessToken: config.AccessToken, Expiry: config.TokenExpiry}
	if initial.AccessToken == "" && store != nil {
		// A previous process may have refreshed and persisted the token.
		initial = loadTokenState(store, log)
	}
	tokens := NewTokenManager(
		config.TokenURL,
		config.ClientID, config.ClientSecret,
		config.Username, config.Password,
		initial,
		store, timeout, log,
	)

	b := &P21Backend{
		config:     config,
		profile:    newP21Profile(),
		tokens:     tokens,
		reporter:   reporter,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}

	if config.Enabled {
		if verr := tokens.EnsureValid(ctx); verr != nil {
			reporter.Report(ctx, p21BackendName, verr)
		} else {
			config.AccessToken = tokens.Token()
			config.TokenExpiry = tokens.State().Expiry
		}
	}
	return b, nil
}

// Name returns the backend code this adapter handles
func (b *P21Backend) Name() string {
	return p21BackendName
}

// Enabled returns true if this backend is enabled by configuration
func (b *P21Backend) Enabled() bool {
	return b.config.Enabled
}

// ---------------------------------------------------------------------------
// Customer Operations
// ---------------------------------------------------------------------------

func (b *P21Backend) GetCustomer(ctx context.Context, session erp.Session, filter erp.CustomerFilter) erp.Result {
	customerID, verr := b.customerID(filter.CustomerID, session)
	if verr != nil {
		return b.fail(ctx, verr)
	}
	payload := b.basePayload()
	payload["CustomerNumber"] = customerID
	return b.call(ctx, "/api/customer/detail", payload)
}

func (b *P21Backend) CreateCustomer(ctx context.Context, _ erp.Session, fields erp.Fields) erp.Result {
	key := fields.Get("customer_id")
	payload := b.basePayload()
	payload["TableName"] = "customer"
	payload["TableList"] = BuildTableRows(1, key, "", MaintTypeAdd, fields)
	return b.call(ctx, "/api/customer/maintain", payload)
}

func (b *P21Backend) GetShipTos(ctx context.Context, session erp.Session, filter erp.CustomerFilter) erp.Result {
	customerID, verr := b.customerID(filter.CustomerID, session)
	if verr != nil {
		return b.fail(ctx, verr)
	}
	payload := b.basePayload()
	payload["CustomerNumber"] = customerID
	if filter.RecordLimit > 0 {
		// Non-positive limits mean "no limit"; the fallback is preserved.
		payload["RecordLimit"] = filter.RecordLimit
	}
	return b.call(ctx, "/api/customer/shiptos", payload)
}

func (b *P21Backend) CreateShipTo(ctx context.Context, session erp.Session, fields erp.Fields) erp.Result {
	customerID, verr := b.customerID(fields.Get("customer_id"), session)
	if verr != nil {
		return b.fail(ctx, verr)
	}
	payload := b.basePayload()
	payload["TableName"] = "shipto"
	payload["TableList"] = BuildTableRows(1, customerID, fields.Get("shipto_id"), MaintTypeAdd, fields)
	return b.call(ctx, "/api/customer/shipto/maintain", payload)
}

func (b *P21Backend) GetARSummary(ctx context.Context, session erp.Session, filter erp.CustomerFilter) erp.Result {
	customerID, verr := b.customerID(filter.CustomerID, session)
	if verr != nil {
		return b.fail(ctx, verr)
	}
	payload := b.basePayload()
	payload["CustomerNumber"] = customerID
	return b.call(ctx, "/api/customer/arsummary", payload)
}

// ---------------------------------------------------------------------------
// Product Operations
// ---------------------------------------------------------------------------

func (b *P21Backend) GetPriceAvailability(ctx context.Context, session erp.Session, items, warehouses []string) erp.Result {
	if len(items) == 0 {
		return b.fail(ctx, erp.NewMissingRequiredField("items"))
	}
	if len(warehouses) == 0 {
		warehouses = []string{b.config.CompanyNumber}
	}
	if !b.config.MultiWarehouse && len(warehouses) > 1 {
		warehouses = warehouses[:1]
	}
	payload := b.basePayload()
	if session.CustomerID != "" {
		payload["CustomerNumber"] = session.CustomerID
	}
	payload["Items"] = BuildItemWarehouseRows(items, warehouses)
	return b.call(ctx, "/api/item/priceavailability", payload)
}

func (b *P21Backend) GetProductSync(ctx context.Context, _ erp.Session, sinceDate string) erp.Result {
	if _, verr := parseSyncDate(sinceDate); verr != nil {
		return b.fail(ctx, verr)
	}
	payload := b.basePayload()
	if sinceDate != "" {
		payload["SinceDate"] = sinceDate
	}
	return b.call(ctx, "/api/item/sync", payload)
}

func (b *P21Backend) SubmitProductSync(ctx context.Context, _ erp.Session, items erp.Fields) erp.Result {
	payload := b.basePayload()
	payload["TableName"] = "item"
	payload["TableList"] = BuildTableRows(1, items.Get("item_id"), "", MaintTypeChange, items)
	return b.call(ctx, "/api/item/maintain", payload)
}

// ---------------------------------------------------------------------------
// Order & Quotation Operations
// ---------------------------------------------------------------------------

func (b *P21Backend) CreateOrder(ctx context.Context, session erp.Session, draft erp.OrderDraft) erp.Result {
	payload, verr := b.buildOrderPayload(session, draft, false)
	if verr != nil {
		return b.fail(ctx, verr)
	}
	return b.call(ctx, "/api/order/import", payload)
}

func (b *P21Backend) GetOrder(ctx context.Context, _ erp.Session, orderID string) erp.Result {
	if orderID == "" {
		return b.fail(ctx, erp.NewMissingRequiredField("order_id"))
	}
	payload := b.basePayload()
	payload["OrderNumber"] = orderID
	return b.call(ctx, "/api/order/detail", payload)
}

func (b *P21Backend) GetOrderTotal(ctx context.Context, session erp.Session, draft erp.OrderDraft) erp.Result {
	payload, verr := b.buildOrderPayload(session, draft, false)
	if verr != nil {
		return b.fail(ctx, verr)
	}
	return b.call(ctx, "/api/order/total", payload)
}

func (b *P21Backend) GetQuotations(ctx context.Context, session erp.Session, filter erp.CustomerFilter) erp.Result {
	customerID, verr := b.customerID(filter.CustomerID, session)
	if verr != nil {
		return b.fail(ctx, verr)
	}
	payload := b.basePayload()
	payload["CustomerNumber"] = customerID
	if filter.StartDate != "" {
		payload["StartDate"] = filter.StartDate
	}
	if filter.EndDate != "" {
		payload["EndDate"] = filter.EndDate
	}
	return b.call(ctx, "/api/quote/list", payload)
}

func (b *P21Backend) CreateQuotation(ctx context.Context, session erp.Session, draft erp.OrderDraft) erp.Result {
	payload, verr := b.buildOrderPayload(session, draft, true)
	if verr != nil {
		return b.fail(ctx, verr)
	}
	return b.call(ctx, "/api/quote/import", payload)
}

func (b *P21Backend) TrackShipment(ctx context.Context, _ erp.Session, orderID string) erp.Result {
	if orderID == "" {
		return b.fail(ctx, erp.NewMissingRequiredField("order_id"))
	}
	payload := b.basePayload()
	payload["OrderNumber"] = orderID
	return b.call(ctx, "/api/order/tracking", payload)
}

// ---------------------------------------------------------------------------
// Invoice & Payment Operations
// ---------------------------------------------------------------------------

func (b *P21Backend) GetInvoices(ctx context.Context, session erp.Session, filter erp.InvoiceFilter) erp.Result {
	customerID, verr := b.customerID(filter.CustomerID, session)
	if verr != nil {
		return b.fail(ctx, verr)
	}
	payload := b.basePayload()
	payload["CustomerNumber"] = customerID
	if filter.StartDate != "" {
		payload["StartDate"] = filter.StartDate
	}
	if filter.EndDate != "" {
		payload["EndDate"] = filter.EndDate
	}
	if filter.OpenOnly {
		payload["OpenOnly"] = "Y"
	}
	if filter.RecordLimit > 0 {
		payload["RecordLimit"] = filter.RecordLimit
	}
	return b.call(ctx, "/api/invoice/list", payload)
}

func (b *P21Backend) GetInvoiceDetail(ctx context.Context, _ erp.Session, invoiceID string) erp.Result {
	if invoiceID == "" {
		return b.fail(ctx, erp.NewMissingRequiredField("invoice_id"))
	}
	payload := b.basePayload()
	payload["InvoiceNumber"] = invoiceID
	return b.call(ctx, "/api/invoice/detail", payload)
}

func (b *P21Backend) GetDocument(ctx context.Context, _ erp.Session, documentID string) erp.Result {
	if documentID == "" {
		return b.fail(ctx, erp.NewMissingRequiredField("document_id"))
	}
	payload := b.basePayload()
	payload["DocumentNumber"] = documentID
	return b.call(ctx, "/api/document", payload)
}

func (b *P21Backend) CreatePayment(ctx context.Context, session erp.Session, draft erp.PaymentDraft) erp.Result {
	customerID, verr := b.customerID(draft.CustomerID, session)
	if verr != nil {
		return b.fail(ctx, verr)
	}
	payload := b.basePayload()
	payload["CustomerNumber"] = customerID
	payload["Invoices"] = draft.InvoiceIDs
	payload["Amount"] = draft.Amount.StringFixed(2)
	payload["Method"] = draft.Method
	payload["Reference"] = draft.Reference
	payload["TransactionID"] = uuid.NewString()
	return b.call(ctx, "/api/payment/create", payload)
}

// ---------------------------------------------------------------------------
// Contact, Note & Campaign Operations
// ---------------------------------------------------------------------------

func (b *P21Backend) GetContacts(ctx context.Context, session erp.Session, filter erp.CustomerFilter) erp.Result {
	customerID, verr := b.customerID(filter.CustomerID, session)
	if verr != nil {
		return b.fail(ctx, verr)
	}
	payload := b.basePayload()
	payload["CustomerNumber"] = customerID
	return b.call(ctx, "/api/contact/list", payload)
}

func (b *P21Backend) CreateContact(ctx context.Context, session erp.Session, contact erp.Contact) erp.Result {
	return b.maintainContact(ctx, session, contact, MaintTypeAdd)
}

func (b *P21Backend) UpdateContact(ctx context.Context, session erp.Session, contact erp.Contact) erp.Result {
	if contact.ContactID == "" {
		return b.fail(ctx, erp.NewMissingRequiredField("contact_id"))
	}
	return b.maintainContact(ctx, session, contact, MaintTypeChange)
}

func (b *P21Backend) ValidateContact(ctx context.Context, _ erp.Session, email string) erp.Result {
	if email == "" {
		return b.fail(ctx, erp.NewMissingRequiredField("email"))
	}
	payload := b.basePayload()
	payload["EmailAddress"] = email
	return b.call(ctx, "/api/contact/validate", payload)
}

func (b *P21Backend) CreateNote(ctx context.Context, session erp.Session, note erp.Note) erp.Result {
	return b.maintainNote(ctx, session, note, MaintTypeAdd)
}

func (b *P21Backend) UpdateNote(ctx context.Context, session erp.Session, note erp.Note) erp.Result {
	if note.NoteID == "" {
		return b.fail(ctx, erp.NewMissingRequiredField("note_id"))
	}
	return b.maintainNote(ctx, session, note, MaintTypeChange)
}

func (b *P21Backend) GetCampaigns(ctx context.Context, session erp.Session, filter erp.CustomerFilter) erp.Result {
	payload := b.basePayload()
	if customerID := filter.CustomerID; customerID != "" {
		payload["CustomerNumber"] = customerID
	} else if session.CustomerID != "" {
		payload["CustomerNumber"] = session.CustomerID
	}
	return b.call(ctx, "/api/campaign/list", payload)
}

func (b *P21Backend) GetCampaignDetail(ctx context.Context, _ erp.Session, campaignID string) erp.Result {
	if campaignID == "" {
		return b.fail(ctx, erp.NewMissingRequiredField("campaign_id"))
	}
	payload := b.basePayload()
	payload["CampaignNumber"] = campaignID
	return b.call(ctx, "/api/campaign/detail", payload)
}

// ---------------------------------------------------------------------------
// Internal Helpers
// ---------------------------------------------------------------------------

// customerID resolves the effective customer identifier and enforces the
// Prophet 21 shape rule on it.
func (b *P21Backend) customerID(explicit string, session erp.Session) (string, *erp.Error) {
	customerID, verr := resolveCustomerID(explicit, session)
	if verr != nil {
		return "", verr
	}
	if verr := checkCustomerIDShape(customerID); verr != nil {
		return "", verr
	}
	return customerID, nil
}

// basePayload carries the fields every Prophet 21 call includes.
func (b *P21Backend) basePayload() map[string]any {
	return map[string]any{
		"CompanyNumber": companyOrDefault(b.config.CompanyNumber),
		"Operator":      b.config.Operator,
	}
}

// buildOrderPayload assembles the order/quotation import body. Freight terms
// default silently when absent; existing callers depend on the fallback.
func (b *P21Backend) buildOrderPayload(session erp.Session, draft erp.OrderDraft, quote bool) (map[string]any, *erp.Error) {
	customerID, verr := b.customerID(draft.CustomerID, session)
	if verr != nil {
		return nil, verr
	}
	if len(draft.Lines) == 0 {
		return nil, erp.NewMissingRequiredField("lines")
	}

	freightTerms := draft.FreightTerms
	if freightTerms == "" {
		freightTerms = "PPD"
	}

	lines := make([]map[string]any, 0, len(draft.Lines))
	for i, line := range draft.Lines {
		lines = append(lines, map[string]any{
			"LineNumber": i + 1,
			"ItemID":     line.ItemID,
			"Warehouse":  line.Warehouse,
			"Quantity":   line.Quantity.String(),
			"UnitPrice":  line.UnitPrice.StringFixed(2),
		})
	}

	payload := b.basePayload()
	payload["CustomerNumber"] = customerID
	payload["ShipToNumber"] = draft.ShipToID
	payload["PONumber"] = draft.PONumber
	payload["FreightTerms"] = freightTerms
	payload["Carrier"] = draft.Carrier
	payload["Instructions"] = draft.Instructions
	payload["Lines"] = lines
	if quote {
		payload["QuoteFlag"] = "Y"
	}
	return payload, nil
}

// maintainContact writes a contact through the table-maintenance convention.
func (b *P21Backend) maintainContact(ctx context.Context, session erp.Session, contact erp.Contact, maintType string) erp.Result {
	customerID, verr := b.customerID(contact.CustomerID, session)
	if verr != nil {
		return b.fail(ctx, verr)
	}
	fields := erp.Fields{
		{Name: "first_name", Value: contact.FirstName},
		{Name: "last_name", Value: contact.LastName},
		{Name: "email_address", Value: contact.Email},
		{Name: "phone", Value: contact.Phone},
		{Name: "title", Value: contact.Title},
	}
	payload := b.basePayload()
	payload["TableName"] = "contacts"
	payload["TableList"] = BuildTableRows(1, customerID, contact.ContactID, maintType, fields)
	return b.call(ctx, "/api/contact/maintain", payload)
}

// maintainNote writes a note through the table-maintenance convention.
func (b *P21Backend) maintainNote(ctx context.Context, session erp.Session, note erp.Note, maintType string) erp.Result {
	customerID, verr := b.customerID(note.CustomerID, session)
	if verr != nil {
		return b.fail(ctx, verr)
	}
	fields := erp.Fields{
		{Name: "topic", Value: note.Topic},
		{Name: "note", Value: note.Body},
	}
	payload := b.basePayload()
	payload["TableName"] = "notes"
	payload["TableList"] = BuildTableRows(1, customerID, note.NoteID, maintType, fields)
	return b.call(ctx, "/api/note/maintain", payload)
}

// call executes build -> transport -> validate for one operation. Validation
// errors are reported inside this boundary; the caller always receives a
// normalized or empty result.
func (b *P21Backend) call(ctx context.Context, path string, payload map[string]any) erp.Result {
	if !b.config.Enabled {
		return b.fail(ctx, erp.NewServiceDisabled(p21BackendName))
	}
	body := b.doRequest(ctx, path, payload)
	return b.profile.Run(ctx, b.reporter, body)
}

// doRequest performs the HTTP POST. A transport failure yields an empty body
// so the validator classifies it as an empty response, mirroring how the
// other backends surface transport loss.
func (b *P21Backend) doRequest(ctx context.Context, path string, payload map[string]any) string {
	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		b.log.Debug("p21: failed to marshal payload", zap.Error(err))
		return ""
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.config.BaseURL+path, bytes.NewReader(bodyBytes))
	if err != nil {
		b.log.Debug("p21: failed to create request", zap.Error(err))
		return ""
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+b.tokens.Token())

	resp, err := b.httpClient.Do(req)
	if err != nil {
		b.log.Debug("p21: transport failure", zap.String("path", path), zap.Error(err))
		return ""
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		b.log.Debug("p21: failed to read response", zap.Error(err))
		return ""
	}
	return string(body)
}

// fail reports a classified error and substitutes the empty result.
func (b *P21Backend) fail(ctx context.Context, verr *erp.Error) erp.Result {
	b.reporter.Report(ctx, p21BackendName, verr)
	return erp.Empty()
}

// Ensure P21Backend implements the erp.Backend interface
var _ erp.Backend = (*P21Backend)(nil)
