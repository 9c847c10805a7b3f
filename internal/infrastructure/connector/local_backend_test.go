package connector

import (
	"context"
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/erplink/backend/internal/domain/erp"
)

// newTestLocalBackend builds a local backend over a fresh in-memory store.
// The DSN is unique per test and shared-cache so every pooled connection sees
// the same database.
func newTestLocalBackend(t *testing.T) (*LocalBackend, *captureReporter) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", url.PathEscape(t.Name()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	reporter := &captureReporter{}
	backend, err := NewLocalBackend(db, reporter, zap.NewNop())
	require.NoError(t, err)
	return backend, reporter
}

func TestLocalBackendAlwaysEnabled(t *testing.T) {
	backend, _ := newTestLocalBackend(t)
	assert.Equal(t, "local", backend.Name())
	assert.True(t, backend.Enabled())
}

func TestLocalCustomerLifecycle(t *testing.T) {
	backend, reporter := newTestLocalBackend(t)
	ctx := context.Background()

	fields := erp.Fields{
		{Name: "customer_id", Value: "100500"},
		{Name: "name", Value: "Acme Supply"},
		{Name: "city", Value: "Portland"},
		{Name: "email", Value: "orders@acme.example"},
	}
	created := backend.CreateCustomer(ctx, erp.Session{}, fields)
	require.Equal(t, 0, reporter.count())
	assert.Equal(t, "created", created.String("Status"))

	got := backend.GetCustomer(ctx, erp.Session{}, erp.CustomerFilter{CustomerID: "100500"})
	assert.Equal(t, "Acme Supply", got.String("Name"))
	assert.Equal(t, "Portland", got.String("City"))

	t.Run("unknown customer yields empty without report", func(t *testing.T) {
		before := reporter.count()
		missing := backend.GetCustomer(ctx, erp.Session{}, erp.CustomerFilter{CustomerID: "999999"})
		assert.True(t, missing.IsEmpty())
		assert.Equal(t, before, reporter.count())
	})

	t.Run("duplicate id reports vendor validation", func(t *testing.T) {
		dup := backend.CreateCustomer(ctx, erp.Session{}, fields)
		assert.True(t, dup.IsEmpty())
		assert.Equal(t, erp.CodeVendorValidation, reporter.last().Code)
	})

	t.Run("missing id reports before any write", func(t *testing.T) {
		res := backend.CreateCustomer(ctx, erp.Session{}, erp.Fields{{Name: "name", Value: "No ID"}})
		assert.True(t, res.IsEmpty())
		assert.Equal(t, erp.CodeMissingRequiredField, reporter.last().Code)
	})
}

func TestLocalShipTos(t *testing.T) {
	backend, reporter := newTestLocalBackend(t)
	ctx := context.Background()
	session := erp.Session{CustomerID: "100500"}

	for _, name := range []string{"Main Dock", "North Yard"} {
		res := backend.CreateShipTo(ctx, session, erp.Fields{
			{Name: "ship_to_id", Value: name[:4]},
			{Name: "name", Value: name},
		})
		assert.Equal(t, "created", res.String("Status"))
	}
	require.Equal(t, 0, reporter.count())

	result := backend.GetShipTos(ctx, session, erp.CustomerFilter{})
	rows := result.Rows("ShipTos")
	require.Len(t, rows, 2)

	limited := backend.GetShipTos(ctx, session, erp.CustomerFilter{RecordLimit: 1})
	assert.Len(t, limited.Rows("ShipTos"), 1)
}

func TestLocalOrderLifecycle(t *testing.T) {
	backend, reporter := newTestLocalBackend(t)
	ctx := context.Background()
	session := erp.Session{CustomerID: "100500"}

	draft := erp.OrderDraft{
		PONumber: "PO-1",
		Lines: []erp.OrderLine{
			{ItemID: "A-1", Warehouse: "W1", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.RequireFromString("9.99")},
			{ItemID: "B-2", Warehouse: "W1", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.RequireFromString("4.50")},
		},
	}

	created := backend.CreateOrder(ctx, session, draft)
	require.Equal(t, 0, reporter.count())
	orderID := created.String("OrderID")
	require.NotEmpty(t, orderID)
	assert.Equal(t, "24.48", created.String("Total"))

	got := backend.GetOrder(ctx, session, orderID)
	assert.Equal(t, "100500", got.String("CustomerID"))
	assert.Equal(t, "PPD", got.String("FreightTerms"), "freight terms default when absent")
	lines, ok := got["Lines"].([]any)
	require.True(t, ok)
	assert.Len(t, lines, 2)

	t.Run("duplicate PO rejected with friendly message", func(t *testing.T) {
		dup := backend.CreateOrder(ctx, session, draft)
		assert.True(t, dup.IsEmpty())
		verr := reporter.last()
		require.NotNil(t, verr)
		assert.Equal(t, erp.CodeVendorValidation, verr.Code)
		assert.Equal(t, "Purchase order number PO-1 has already been used on a previous order. Please enter a unique PO number.", verr.Message)
	})

	t.Run("same PO allowed on a quotation", func(t *testing.T) {
		before := reporter.count()
		quote := backend.CreateQuotation(ctx, session, draft)
		assert.Equal(t, before, reporter.count())
		assert.NotEmpty(t, quote.String("QuoteID"))
	})

	t.Run("order total without persistence", func(t *testing.T) {
		total := backend.GetOrderTotal(ctx, session, draft)
		assert.Equal(t, "24.48", total.String("Total"))
	})
}

func TestLocalOrderRequiresLines(t *testing.T) {
	backend, reporter := newTestLocalBackend(t)
	ctx := context.Background()
	session := erp.Session{CustomerID: "100500"}

	created := backend.CreateOrder(ctx, session, erp.OrderDraft{PONumber: "PO-9"})
	assert.True(t, created.IsEmpty())
	require.NotNil(t, reporter.last())
	assert.Equal(t, erp.CodeMissingRequiredField, reporter.last().Code)

	total := backend.GetOrderTotal(ctx, session, erp.OrderDraft{})
	assert.True(t, total.IsEmpty())
	assert.Equal(t, erp.CodeMissingRequiredField, reporter.last().Code)
	assert.Equal(t, 2, reporter.count())
}

func TestLocalQuotationsListed(t *testing.T) {
	backend, reporter := newTestLocalBackend(t)
	ctx := context.Background()
	session := erp.Session{CustomerID: "100500"}

	draft := erp.OrderDraft{
		Lines: []erp.OrderLine{{ItemID: "A-1", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(5)}},
	}
	backend.CreateQuotation(ctx, session, draft)
	backend.CreateQuotation(ctx, session, draft)
	backend.CreateOrder(ctx, session, draft)
	require.Equal(t, 0, reporter.count())

	result := backend.GetQuotations(ctx, session, erp.CustomerFilter{})
	assert.Len(t, result.Rows("Quotes"), 2, "orders must not appear among quotations")
}

func TestLocalPriceAvailability(t *testing.T) {
	backend, reporter := newTestLocalBackend(t)
	ctx := context.Background()

	require.NoError(t, backend.db.Create(&LocalProduct{
		ItemID:    "A-1",
		ListPrice: decimal.RequireFromString("9.99"),
		Stock: []LocalStock{
			{Warehouse: "W1", Available: decimal.NewFromInt(12)},
		},
	}).Error)

	result := backend.GetPriceAvailability(ctx, erp.Session{}, []string{"A-1", "UNKNOWN"}, []string{"W1", "W2"})
	require.Equal(t, 0, reporter.count())

	rows := result.Rows("Items")
	require.Len(t, rows, 4, "one row per item/warehouse pair")
	assert.Equal(t, "1", rows[0].String("SeqNo"))
	assert.Equal(t, "9.99", rows[0].String("UnitPrice"))
	assert.Equal(t, "12", rows[0].String("Available"))
	assert.Equal(t, "0", rows[1].String("Available"), "unstocked warehouse reads zero")
	assert.Equal(t, "0.00", rows[2].String("UnitPrice"), "unknown item prices at zero")
}

func TestLocalProductSync(t *testing.T) {
	backend, reporter := newTestLocalBackend(t)
	ctx := context.Background()

	submitted := backend.SubmitProductSync(ctx, erp.Session{}, erp.Fields{
		{Name: "A-1", Value: "9.99"},
		{Name: "B-2", Value: "4.50"},
	})
	require.Equal(t, 0, reporter.count())
	assert.Equal(t, "2", submitted.String("Submitted"))

	// Resubmitting updates in place instead of duplicating.
	backend.SubmitProductSync(ctx, erp.Session{}, erp.Fields{{Name: "A-1", Value: "10.99"}})

	result := backend.GetProductSync(ctx, erp.Session{}, "")
	rows := result.Rows("Products")
	require.Len(t, rows, 2)

	t.Run("bad since date reports invalid shape", func(t *testing.T) {
		res := backend.GetProductSync(ctx, erp.Session{}, "not-a-date")
		assert.True(t, res.IsEmpty())
		assert.Equal(t, erp.CodeInvalidFieldShape, reporter.last().Code)
	})
}

func TestLocalInvoicesAndPayments(t *testing.T) {
	backend, reporter := newTestLocalBackend(t)
	ctx := context.Background()
	session := erp.Session{CustomerID: "100500"}

	invoices := []LocalInvoice{
		{InvoiceID: "I-1", CustomerID: "100500", Amount: decimal.NewFromInt(100), Open: true, Document: "INVOICE I-1", IssuedAt: time.Now().AddDate(0, 0, -2)},
		{InvoiceID: "I-2", CustomerID: "100500", Amount: decimal.NewFromInt(50), Open: false, IssuedAt: time.Now().AddDate(0, 0, -1)},
	}
	for i := range invoices {
		require.NoError(t, backend.db.Create(&invoices[i]).Error)
	}

	all := backend.GetInvoices(ctx, session, erp.InvoiceFilter{})
	assert.Len(t, all.Rows("Invoices"), 2)

	open := backend.GetInvoices(ctx, session, erp.InvoiceFilter{OpenOnly: true})
	rows := open.Rows("Invoices")
	require.Len(t, rows, 1)
	assert.Equal(t, "I-1", rows[0].String("InvoiceID"))

	detail := backend.GetInvoiceDetail(ctx, session, "I-1")
	assert.Equal(t, "100.00", detail.String("Amount"))

	document := backend.GetDocument(ctx, session, "I-1")
	assert.Equal(t, "INVOICE I-1", document.String("Content"))

	t.Run("payment closes listed invoices", func(t *testing.T) {
		res := backend.CreatePayment(ctx, session, erp.PaymentDraft{
			InvoiceIDs: []string{"I-1"},
			Amount:     decimal.NewFromInt(100),
			Method:     "check",
		})
		require.Equal(t, 0, reporter.count())
		assert.Equal(t, "applied", res.String("Status"))
		assert.NotEmpty(t, res.String("TransactionID"))

		open := backend.GetInvoices(ctx, session, erp.InvoiceFilter{OpenOnly: true})
		assert.Empty(t, open.Rows("Invoices"))
	})

	t.Run("non-positive amount rejected", func(t *testing.T) {
		res := backend.CreatePayment(ctx, session, erp.PaymentDraft{Amount: decimal.Zero})
		assert.True(t, res.IsEmpty())
		assert.Equal(t, erp.CodeInvalidFieldShape, reporter.last().Code)
	})
}

func TestLocalContactsAndNotes(t *testing.T) {
	backend, reporter := newTestLocalBackend(t)
	ctx := context.Background()
	session := erp.Session{CustomerID: "100500"}

	created := backend.CreateContact(ctx, session, erp.Contact{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
	})
	require.Equal(t, 0, reporter.count())
	contactID := created.String("ContactID")
	require.NotEmpty(t, contactID)

	t.Run("validate known and unknown email", func(t *testing.T) {
		known := backend.ValidateContact(ctx, session, "ada@example.com")
		assert.Equal(t, "true", known.String("Valid"))
		assert.Equal(t, contactID, known.String("ContactID"))

		unknown := backend.ValidateContact(ctx, session, "nobody@example.com")
		assert.Equal(t, "false", unknown.String("Valid"))
	})

	t.Run("update existing contact", func(t *testing.T) {
		res := backend.UpdateContact(ctx, session, erp.Contact{
			ContactID: contactID,
			FirstName: "Ada",
			LastName:  "King",
			Email:     "ada@example.com",
		})
		assert.Equal(t, "updated", res.String("Status"))

		list := backend.GetContacts(ctx, session, erp.CustomerFilter{})
		rows := list.Rows("Contacts")
		require.Len(t, rows, 1)
		assert.Equal(t, "King", rows[0].String("LastName"))
	})

	t.Run("update unknown contact yields empty", func(t *testing.T) {
		before := reporter.count()
		res := backend.UpdateContact(ctx, session, erp.Contact{ContactID: "missing"})
		assert.True(t, res.IsEmpty())
		assert.Equal(t, before, reporter.count())
	})

	t.Run("contact without email rejected", func(t *testing.T) {
		res := backend.CreateContact(ctx, session, erp.Contact{FirstName: "No", LastName: "Email"})
		assert.True(t, res.IsEmpty())
		assert.Equal(t, erp.CodeMissingRequiredField, reporter.last().Code)
	})

	t.Run("note lifecycle", func(t *testing.T) {
		created := backend.CreateNote(ctx, session, erp.Note{Topic: "delivery", Body: "use rear entrance"})
		noteID := created.String("NoteID")
		require.NotEmpty(t, noteID)

		updated := backend.UpdateNote(ctx, session, erp.Note{NoteID: noteID, Topic: "delivery", Body: "front desk after 5pm"})
		assert.Equal(t, "updated", updated.String("Status"))
	})
}

func TestLocalCampaigns(t *testing.T) {
	backend, reporter := newTestLocalBackend(t)
	ctx := context.Background()

	campaigns := []LocalCampaign{
		{CampaignID: "C-1", Name: "Spring Promo", StartsAt: time.Now(), EndsAt: time.Now().AddDate(0, 1, 0)},
		{CampaignID: "C-2", CustomerID: "100500", Name: "Key Accounts", StartsAt: time.Now(), EndsAt: time.Now().AddDate(0, 2, 0)},
	}
	for i := range campaigns {
		require.NoError(t, backend.db.Create(&campaigns[i]).Error)
	}

	// A customer sees global campaigns plus their own.
	result := backend.GetCampaigns(ctx, erp.Session{}, erp.CustomerFilter{CustomerID: "100500"})
	require.Equal(t, 0, reporter.count())
	assert.Len(t, result.Rows("Campaigns"), 2)

	detail := backend.GetCampaignDetail(ctx, erp.Session{}, "C-2")
	assert.Equal(t, "Key Accounts", detail.String("Name"))

	missing := backend.GetCampaignDetail(ctx, erp.Session{}, "C-404")
	assert.True(t, missing.IsEmpty())
	assert.Equal(t, 0, reporter.count())
}
