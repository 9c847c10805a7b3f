package erp

import (
	"context"
	"errors"
)

// Registry errors
var (
	ErrBackendNotRegistered = errors.New("erp: backend not registered")
	ErrNoBackendConfigured  = errors.New("erp: no backend configured")
)

// Backend is the port interface every ERP vendor adapter implements.
//
// The uniform contract guarantees callers always receive a (possibly empty)
// normalized Result, never a propagated failure: each operation catches its
// own classified errors at its boundary, hands them to the ErrorReporter, and
// substitutes Empty(). Shaping the Result into typed value objects is the
// caller-side adapter's concern, not the backend's.
type Backend interface {
	// Name returns the backend code this adapter handles
	Name() string

	// Enabled returns true if this backend is enabled by configuration
	Enabled() bool

	// ---------------------------------------------------------------------------
	// Customer Operations
	// ---------------------------------------------------------------------------

	GetCustomer(ctx context.Context, session Session, filter CustomerFilter) Result
	CreateCustomer(ctx context.Context, session Session, fields Fields) Result
	GetShipTos(ctx context.Context, session Session, filter CustomerFilter) Result
	CreateShipTo(ctx context.Context, session Session, fields Fields) Result
	GetARSummary(ctx context.Context, session Session, filter CustomerFilter) Result

	// ---------------------------------------------------------------------------
	// Product Operations
	// ---------------------------------------------------------------------------

	// GetPriceAvailability prices one row per item/warehouse pair.
	GetPriceAvailability(ctx context.Context, session Session, items, warehouses []string) Result
	GetProductSync(ctx context.Context, session Session, sinceDate string) Result
	SubmitProductSync(ctx context.Context, session Session, items Fields) Result

	// ---------------------------------------------------------------------------
	// Order & Quotation Operations
	// ---------------------------------------------------------------------------

	CreateOrder(ctx context.Context, session Session, draft OrderDraft) Result
	GetOrder(ctx context.Context, session Session, orderID string) Result
	GetOrderTotal(ctx context.Context, session Session, draft OrderDraft) Result
	GetQuotations(ctx context.Context, session Session, filter CustomerFilter) Result
	CreateQuotation(ctx context.Context, session Session, draft OrderDraft) Result
	TrackShipment(ctx context.Context, session Session, orderID string) Result

	// ---------------------------------------------------------------------------
	// Invoice & Payment Operations
	// ---------------------------------------------------------------------------

	GetInvoices(ctx context.Context, session Session, filter InvoiceFilter) Result
	GetInvoiceDetail(ctx context.Context, session Session, invoiceID string) Result
	GetDocument(ctx context.Context, session Session, documentID string) Result
	CreatePayment(ctx context.Context, session Session, draft PaymentDraft) Result

	// ---------------------------------------------------------------------------
	// Contact, Note & Campaign Operations
	// ---------------------------------------------------------------------------

	GetContacts(ctx context.Context, session Session, filter CustomerFilter) Result
	CreateContact(ctx context.Context, session Session, contact Contact) Result
	UpdateContact(ctx context.Context, session Session, contact Contact) Result
	ValidateContact(ctx context.Context, session Session, email string) Result
	CreateNote(ctx context.Context, session Session, note Note) Result
	UpdateNote(ctx context.Context, session Session, note Note) Result
	GetCampaigns(ctx context.Context, session Session, filter CustomerFilter) Result
	GetCampaignDetail(ctx context.Context, session Session, campaignID string) Result
}

// BackendRegistry provides access to configured ERP backends. The active
// backend is selected once at startup from configuration, not per call.
type BackendRegistry interface {
	// GetBackend returns the backend adapter for the specified code
	GetBackend(name string) (Backend, error)

	// Active returns the backend selected by configuration
	Active() (Backend, error)

	// ListBackends returns all registered backend adapters
	ListBackends() []Backend
}
