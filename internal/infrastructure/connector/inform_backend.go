package connector

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/erplink/backend/internal/domain/erp"
)

// InformBackend implements the erp.Backend interface against the Inform XML
// gateway: request bodies are literal XML fragments, fixed per operation,
// carried on an HTTP GET; responses are XML classified by the shared
// validator.
type InformBackend struct {
	config     *InformConfig
	profile    *Profile
	reporter   erp.ErrorReporter
	httpClient *http.Client
	log        *zap.Logger
}

// NewInformBackend creates an Inform backend.
func NewInformBackend(config *InformConfig, reporter erp.ErrorReporter, log *zap.Logger) (*InformBackend, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &InformBackend{
		config:     config,
		profile:    newInformProfile(),
		reporter:   reporter,
		httpClient: &http.Client{Timeout: time.Duration(config.TimeoutSeconds) * time.Second},
		log:        log,
	}, nil
}

// Name returns the backend code this adapter handles
func (b *InformBackend) Name() string {
	return informBackendName
}

// Enabled returns true if this backend is enabled by configuration
func (b *InformBackend) Enabled() bool {
	return b.config.Enabled
}

// ---------------------------------------------------------------------------
// Customer Operations
// ---------------------------------------------------------------------------

func (b *InformBackend) GetCustomer(ctx context.Context, session erp.Session, filter erp.CustomerFilter) erp.Result {
	customerID, verr := resolveCustomerID(filter.CustomerID, session)
	if verr != nil {
		return b.fail(ctx, verr)
	}
	return b.call(ctx, "CustomerDetail", b.customerFragment(customerID))
}

func (b *InformBackend) CreateCustomer(ctx context.Context, _ erp.Session, fields erp.Fields) erp.Result {
	return b.call(ctx, "CustomerAdd", fieldsFragment(fields))
}

func (b *InformBackend) GetShipTos(ctx context.Context, session erp.Session, filter erp.CustomerFilter) erp.Result {
	customerID, verr := resolveCustomerID(filter.CustomerID, session)
	if verr != nil {
		return b.fail(ctx, verr)
	}
	return b.call(ctx, "ShipToList", b.customerFragment(customerID))
}

func (b *InformBackend) CreateShipTo(ctx context.Context, session erp.Session, fields erp.Fields) erp.Result {
	customerID, verr := resolveCustomerID(fields.Get("customer_id"), session)
	if verr != nil {
		return b.fail(ctx, verr)
	}
	return b.call(ctx, "ShipToAdd", b.customerFragment(customerID)+fieldsFragment(fields))
}

func (b *InformBackend) GetARSummary(ctx context.Context, session erp.Session, filter erp.CustomerFilter) erp.Result {
	customerID, verr := resolveCustomerID(filter.CustomerID, session)
	if verr != nil {
		return b.fail(ctx, verr)
	}
	return b.call(ctx, "ARSummary", b.customerFragment(customerID))
}

// ---------------------------------------------------------------------------
// Product Operations
// ---------------------------------------------------------------------------

func (b *InformBackend) GetPriceAvailability(ctx context.Context, session erp.Session, items, warehouses []string) erp.Result {
	if len(items) == 0 {
		return b.fail(ctx, erp.NewMissingRequiredField("items"))
	}
	if len(warehouses) == 0 {
		warehouses = []string{b.config.CompanyNumber}
	}
	if !b.config.MultiWarehouse && len(warehouses) > 1 {
		warehouses = warehouses[:1]
	}

	var sb strings.Builder
	if session.CustomerID != "" {
		sb.WriteString(b.customerFragment(session.CustomerID))
	}
	for _, row := range BuildItemWarehouseRows(items, warehouses) {
		sb.WriteString(fmt.Sprintf(informPriceLineXML, row.SeqNo, xmlEscape(row.ItemID), xmlEscape(row.Warehouse)))
	}
	return b.call(ctx, "PriceAvailability", sb.String())
}

func (b *InformBackend) GetProductSync(ctx context.Context, _ erp.Session, sinceDate string) erp.Result {
	if _, verr := parseSyncDate(sinceDate); verr != nil {
		return b.fail(ctx, verr)
	}
	fragment := ""
	if sinceDate != "" {
		fragment = fmt.Sprintf("<SinceDate>%s</SinceDate>", xmlEscape(sinceDate))
	}
	return b.call(ctx, "ProductSync", fragment)
}

func (b *InformBackend) SubmitProductSync(ctx context.Context, _ erp.Session, items erp.Fields) erp.Result {
	return b.call(ctx, "ProductSubmit", fieldsFragment(items))
}

// ---------------------------------------------------------------------------
// Order & Quotation Operations
// ---------------------------------------------------------------------------

func (b *InformBackend) CreateOrder(ctx context.Context, session erp.Session, draft erp.OrderDraft) erp.Result {
	fragment, verr := b.orderFragment(session, draft)
	if verr != nil {
		return b.fail(ctx, verr)
	}
	return b.call(ctx, "OrderAdd", fragment)
}

func (b *InformBackend) GetOrder(ctx context.Context, _ erp.Session, orderID string) erp.Result {
	if orderID == "" {
		return b.fail(ctx, erp.NewMissingRequiredField("order_id"))
	}
	return b.call(ctx, "OrderDetail", fmt.Sprintf("<OrderNumber>%s</OrderNumber>", xmlEscape(orderID)))
}

func (b *InformBackend) GetOrderTotal(ctx context.Context, session erp.Session, draft erp.OrderDraft) erp.Result {
	fragment, verr := b.orderFragment(session, draft)
	if verr != nil {
		return b.fail(ctx, verr)
	}
	return b.call(ctx, "OrderTotal", fragment)
}

func (b *InformBackend) GetQuotations(ctx context.Context, session erp.Session, filter erp.CustomerFilter) erp.Result {
	customerID, verr := resolveCustomerID(filter.CustomerID, session)
	if verr != nil {
		return b.fail(ctx, verr)
	}
	fragment := b.customerFragment(customerID)
	if filter.StartDate != "" {
		fragment += fmt.Sprintf("<StartDate>%s</StartDate>", xmlEscape(filter.StartDate))
	}
	if filter.EndDate != "" {
		fragment += fmt.Sprintf("<EndDate>%s</EndDate>", xmlEscape(filter.EndDate))
	}
	return b.call(ctx, "QuoteList", fragment)
}

func (b *InformBackend) CreateQuotation(ctx context.Context, session erp.Session, draft erp.OrderDraft) erp.Result {
	fragment, verr := b.orderFragment(session, draft)
	if verr != nil {
		return b.fail(ctx, verr)
	}
	return b.call(ctx, "QuoteAdd", fragment)
}

func (b *InformBackend) TrackShipment(ctx context.Context, _ erp.Session, orderID string) erp.Result {
	if orderID == "" {
		return b.fail(ctx, erp.NewMissingRequiredField("order_id"))
	}
	return b.call(ctx, "ShipmentTrack", fmt.Sprintf("<OrderNumber>%s</OrderNumber>", xmlEscape(orderID)))
}

// ---------------------------------------------------------------------------
// Invoice & Payment Operations
// ---------------------------------------------------------------------------

func (b *InformBackend) GetInvoices(ctx context.Context, session erp.Session, filter erp.InvoiceFilter) erp.Result {
	customerID, verr := resolveCustomerID(filter.CustomerID, session)
	if verr != nil {
		return b.fail(ctx, verr)
	}
	fragment := b.customerFragment(customerID)
	if filter.StartDate != "" {
		fragment += fmt.Sprintf("<StartDate>%s</StartDate>", xmlEscape(filter.StartDate))
	}
	if filter.EndDate != "" {
		fragment += fmt.Sprintf("<EndDate>%s</EndDate>", xmlEscape(filter.EndDate))
	}
	if filter.OpenOnly {
		fragment += "<OpenOnly>Y</OpenOnly>"
	}
	if filter.RecordLimit > 0 {
		fragment += fmt.Sprintf("<RecordLimit>%d</RecordLimit>", filter.RecordLimit)
	}
	return b.call(ctx, "InvoiceList", fragment)
}

func (b *InformBackend) GetInvoiceDetail(ctx context.Context, _ erp.Session, invoiceID string) erp.Result {
	if invoiceID == "" {
		return b.fail(ctx, erp.NewMissingRequiredField("invoice_id"))
	}
	return b.call(ctx, "InvoiceDetail", fmt.Sprintf("<InvoiceNumber>%s</InvoiceNumber>", xmlEscape(invoiceID)))
}

func (b *InformBackend) GetDocument(ctx context.Context, _ erp.Session, documentID string) erp.Result {
	if documentID == "" {
		return b.fail(ctx, erp.NewMissingRequiredField("document_id"))
	}
	return b.call(ctx, "DocumentGet", fmt.Sprintf("<DocumentNumber>%s</DocumentNumber>", xmlEscape(documentID)))
}

func (b *InformBackend) CreatePayment(ctx context.Context, session erp.Session, draft erp.PaymentDraft) erp.Result {
	customerID, verr := resolveCustomerID(draft.CustomerID, session)
	if verr != nil {
		return b.fail(ctx, verr)
	}
	var sb strings.Builder
	sb.WriteString(b.customerFragment(customerID))
	for _, invoiceID := range draft.InvoiceIDs {
		sb.WriteString(fmt.Sprintf("<Invoice>%s</Invoice>", xmlEscape(invoiceID)))
	}
	sb.WriteString(fmt.Sprintf("<Amount>%s</Amount>", draft.Amount.StringFixed(2)))
	sb.WriteString(fmt.Sprintf("<Method>%s</Method>", xmlEscape(draft.Method)))
	sb.WriteString(fmt.Sprintf("<Reference>%s</Reference>", xmlEscape(draft.Reference)))
	return b.call(ctx, "PaymentAdd", sb.String())
}

// ---------------------------------------------------------------------------
// Contact, Note & Campaign Operations
// ---------------------------------------------------------------------------

func (b *InformBackend) GetContacts(ctx context.Context, session erp.Session, filter erp.CustomerFilter) erp.Result {
	customerID, verr := resolveCustomerID(filter.CustomerID, session)
	if verr != nil {
		return b.fail(ctx, verr)
	}
	return b.call(ctx, "ContactList", b.customerFragment(customerID))
}

func (b *InformBackend) CreateContact(ctx context.Context, session erp.Session, contact erp.Contact) erp.Result {
	return b.maintainContact(ctx, session, contact, "ContactAdd")
}

func (b *InformBackend) UpdateContact(ctx context.Context, session erp.Session, contact erp.Contact) erp.Result {
	if contact.ContactID == "" {
		return b.fail(ctx, erp.NewMissingRequiredField("contact_id"))
	}
	return b.maintainContact(ctx, session, contact, "ContactChange")
}

func (b *InformBackend) ValidateContact(ctx context.Context, _ erp.Session, email string) erp.Result {
	if email == "" {
		return b.fail(ctx, erp.NewMissingRequiredField("email"))
	}
	return b.call(ctx, "ContactValidate", fmt.Sprintf("<EmailAddress>%s</EmailAddress>", xmlEscape(email)))
}

func (b *InformBackend) CreateNote(ctx context.Context, session erp.Session, note erp.Note) erp.Result {
	return b.maintainNote(ctx, session, note, "NoteAdd")
}

func (b *InformBackend) UpdateNote(ctx context.Context, session erp.Session, note erp.Note) erp.Result {
	if note.NoteID == "" {
		return b.fail(ctx, erp.NewMissingRequiredField("note_id"))
	}
	return b.maintainNote(ctx, session, note, "NoteChange")
}

func (b *InformBackend) GetCampaigns(ctx context.Context, session erp.Session, filter erp.CustomerFilter) erp.Result {
	fragment := ""
	if customerID := filter.CustomerID; customerID != "" {
		fragment = b.customerFragment(customerID)
	} else if session.CustomerID != "" {
		fragment = b.customerFragment(session.CustomerID)
	}
	return b.call(ctx, "CampaignList", fragment)
}

func (b *InformBackend) GetCampaignDetail(ctx context.Context, _ erp.Session, campaignID string) erp.Result {
	if campaignID == "" {
		return b.fail(ctx, erp.NewMissingRequiredField("campaign_id"))
	}
	return b.call(ctx, "CampaignDetail", fmt.Sprintf("<CampaignNumber>%s</CampaignNumber>", xmlEscape(campaignID)))
}

// ---------------------------------------------------------------------------
// Internal Helpers
// ---------------------------------------------------------------------------

// Fixed per-operation XML templates. Element order and nesting are part of
// the gateway contract and must not change.
const (
	informRequestXML   = `<Request><Operation>%s</Operation><Company>%s</Company><Operator>%s</Operator><Username>%s</Username><Password>%s</Password>%s%s</Request>`
	informPriceLineXML = `<Line><Seq>%d</Seq><Item>%s</Item><Warehouse>%s</Warehouse></Line>`
	informOrderLineXML = `<Line><Seq>%d</Seq><Item>%s</Item><Warehouse>%s</Warehouse><Quantity>%s</Quantity><Price>%s</Price></Line>`
)

// customerFragment builds the customer-number element, using the element
// name this deployment's client code selects.
func (b *InformBackend) customerFragment(customerID string) string {
	element := b.config.customerElement()
	return fmt.Sprintf("<%s>%s</%s>", element, xmlEscape(customerID), element)
}

// orderFragment builds the order body shared by OrderAdd, OrderTotal and
// QuoteAdd. Freight terms default silently when absent.
func (b *InformBackend) orderFragment(session erp.Session, draft erp.OrderDraft) (string, *erp.Error) {
	customerID, verr := resolveCustomerID(draft.CustomerID, session)
	if verr != nil {
		return "", verr
	}
	if len(draft.Lines) == 0 {
		return "", erp.NewMissingRequiredField("lines")
	}

	freightTerms := draft.FreightTerms
	if freightTerms == "" {
		freightTerms = "PPD"
	}

	var sb strings.Builder
	sb.WriteString(b.customerFragment(customerID))
	sb.WriteString(fmt.Sprintf("<ShipTo>%s</ShipTo>", xmlEscape(draft.ShipToID)))
	sb.WriteString(fmt.Sprintf("<PONumber>%s</PONumber>", xmlEscape(draft.PONumber)))
	sb.WriteString(fmt.Sprintf("<FreightTerms>%s</FreightTerms>", xmlEscape(freightTerms)))
	sb.WriteString(fmt.Sprintf("<Carrier>%s</Carrier>", xmlEscape(draft.Carrier)))
	sb.WriteString(fmt.Sprintf("<Instructions>%s</Instructions>", xmlEscape(draft.Instructions)))
	for i, line := range draft.Lines {
		sb.WriteString(fmt.Sprintf(informOrderLineXML,
			i+1, xmlEscape(line.ItemID), xmlEscape(line.Warehouse),
			line.Quantity.String(), line.UnitPrice.StringFixed(2)))
	}
	return sb.String(), nil
}

// maintainContact writes a contact through the fixed contact template.
func (b *InformBackend) maintainContact(ctx context.Context, session erp.Session, contact erp.Contact, operation string) erp.Result {
	customerID, verr := resolveCustomerID(contact.CustomerID, session)
	if verr != nil {
		return b.fail(ctx, verr)
	}
	var sb strings.Builder
	sb.WriteString(b.customerFragment(customerID))
	if contact.ContactID != "" {
		sb.WriteString(fmt.Sprintf("<ContactID>%s</ContactID>", xmlEscape(contact.ContactID)))
	}
	sb.WriteString(fmt.Sprintf("<FirstName>%s</FirstName>", xmlEscape(contact.FirstName)))
	sb.WriteString(fmt.Sprintf("<LastName>%s</LastName>", xmlEscape(contact.LastName)))
	sb.WriteString(fmt.Sprintf("<EmailAddress>%s</EmailAddress>", xmlEscape(contact.Email)))
	sb.WriteString(fmt.Sprintf("<Phone>%s</Phone>", xmlEscape(contact.Phone)))
	sb.WriteString(fmt.Sprintf("<Title>%s</Title>", xmlEscape(contact.Title)))
	return b.call(ctx, operation, sb.String())
}

// maintainNote writes a note through the fixed note template.
func (b *InformBackend) maintainNote(ctx context.Context, session erp.Session, note erp.Note, operation string) erp.Result {
	customerID, verr := resolveCustomerID(note.CustomerID, session)
	if verr != nil {
		return b.fail(ctx, verr)
	}
	var sb strings.Builder
	sb.WriteString(b.customerFragment(customerID))
	if note.NoteID != "" {
		sb.WriteString(fmt.Sprintf("<NoteID>%s</NoteID>", xmlEscape(note.NoteID)))
	}
	sb.WriteString(fmt.Sprintf("<Topic>%s</Topic>", xmlEscape(note.Topic)))
	sb.WriteString(fmt.Sprintf("<Note>%s</Note>", xmlEscape(note.Body)))
	return b.call(ctx, operation, sb.String())
}

// call executes build -> transport -> validate for one operation.
func (b *InformBackend) call(ctx context.Context, operation, fragment string) erp.Result {
	if !b.config.Enabled {
		return b.fail(ctx, erp.NewServiceDisabled(informBackendName))
	}

	clientCode := ""
	if b.config.ClientCode != "" {
		clientCode = fmt.Sprintf("<ClientCode>%s</ClientCode>", xmlEscape(b.config.ClientCode))
	}
	request := fmt.Sprintf(informRequestXML,
		xmlEscape(operation),
		xmlEscape(companyOrDefault(b.config.CompanyNumber)),
		xmlEscape(b.config.Operator),
		xmlEscape(b.config.Username),
		xmlEscape(b.config.Password),
		clientCode,
		fragment,
	)

	body := b.doRequest(ctx, request)
	return b.profile.Run(ctx, b.reporter, body)
}

// doRequest carries the XML request on an HTTP GET, the way the gateway
// expects it. Transport failure yields an empty body for the validator to
// classify.
func (b *InformBackend) doRequest(ctx context.Context, requestXML string) string {
	query := url.Values{}
	query.Set("xmlRequest", requestXML)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.config.requestURL()+"?"+query.Encode(), nil)
	if err != nil {
		b.log.Debug("inform: failed to create request", zap.Error(err))
		return ""
	}
	req.Header.Set("Accept", "text/xml")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		b.log.Debug("inform: transport failure", zap.Error(err))
		return ""
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		b.log.Debug("inform: failed to read response", zap.Error(err))
		return ""
	}
	return string(body)
}

// fail reports a classified error and substitutes the empty result.
func (b *InformBackend) fail(ctx context.Context, verr *erp.Error) erp.Result {
	b.reporter.Report(ctx, informBackendName, verr)
	return erp.Empty()
}

// fieldsFragment renders an ordered field list as sibling elements, caller
// order preserved.
func fieldsFragment(fields erp.Fields) string {
	var sb strings.Builder
	for _, field := range fields {
		name := exportedElementName(field.Name)
		sb.WriteString(fmt.Sprintf("<%s>%s</%s>", name, xmlEscape(field.Value), name))
	}
	return sb.String()
}

// exportedElementName converts snake_case field names into the gateway's
// PascalCase element names.
func exportedElementName(name string) string {
	parts := strings.Split(name, "_")
	for i, part := range parts {
		if part == "" {
			continue
		}
		parts[i] = strings.ToUpper(part[:1]) + part[1:]
	}
	return strings.Join(parts, "")
}

// xmlEscape escapes a value for element content.
func xmlEscape(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

// Ensure InformBackend implements the erp.Backend interface
var _ erp.Backend = (*InformBackend)(nil)
