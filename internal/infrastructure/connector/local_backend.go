package connector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/erplink/backend/internal/domain/erp"
)

const localBackendName = "local"

// LocalBackend serves the uniform operation contract from a local data store
// when no external ERP is configured. Results carry the same normalized keys
// the remote adapters produce, so callers cannot tell the difference.
type LocalBackend struct {
	db       *gorm.DB
	reporter erp.ErrorReporter
	log      *zap.Logger
	now      func() time.Time
}

// NewLocalBackend migrates the local schema and returns the adapter.
func NewLocalBackend(db *gorm.DB, reporter erp.ErrorReporter, log *zap.Logger) (*LocalBackend, error) {
	if db == nil {
		return nil, errors.New("connector: local backend requires a database")
	}
	if err := db.AutoMigrate(localModels()...); err != nil {
		return nil, fmt.Errorf("connector: migrate local store: %w", err)
	}
	return &LocalBackend{
		db:       db,
		reporter: reporter,
		log:      log.With(zap.String("backend", localBackendName)),
		now:      time.Now,
	}, nil
}

// Name returns the backend code.
func (b *LocalBackend) Name() string { return localBackendName }

// Enabled always reports true: the local store is the fallback when nothing
// else is configured, so it cannot be switched off.
func (b *LocalBackend) Enabled() bool { return true }

// fail reports the classified error and substitutes the empty result.
func (b *LocalBackend) fail(ctx context.Context, err *erp.Error) erp.Result {
	b.reporter.Report(ctx, localBackendName, err)
	return erp.Empty()
}

// dbFail wraps an unexpected database failure.
func (b *LocalBackend) dbFail(ctx context.Context, op string, err error) erp.Result {
	b.log.Debug("local store query failed", zap.String("op", op), zap.Error(err))
	return b.fail(ctx, erp.NewUnexpected(err.Error()))
}

func (b *LocalBackend) customerID(explicit string, session erp.Session) (string, *erp.Error) {
	customerID, err := resolveCustomerID(explicit, session)
	if err != nil {
		return "", err
	}
	return customerID, nil
}

// ---------------------------------------------------------------------------
// Customer Operations
// ---------------------------------------------------------------------------

func (b *LocalBackend) GetCustomer(ctx context.Context, session erp.Session, filter erp.CustomerFilter) erp.Result {
	customerID, verr := b.customerID(filter.CustomerID, session)
	if verr != nil {
		return b.fail(ctx, verr)
	}
	var customer LocalCustomer
	if err := b.db.WithContext(ctx).Where("customer_id = ?", customerID).First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return erp.Empty()
		}
		return b.dbFail(ctx, "GetCustomer", err)
	}
	return customerResult(customer)
}

func (b *LocalBackend) CreateCustomer(ctx context.Context, session erp.Session, fields erp.Fields) erp.Result {
	customerID := fields.Get("customer_id")
	if customerID == "" {
		return b.fail(ctx, erp.NewMissingRequiredField("customer_id"))
	}
	customer := LocalCustomer{
		CustomerID:    customerID,
		CompanyNumber: companyOrDefault(fields.Get("company_number")),
		Name:          fields.Get("name"),
		Address1:      fields.Get("address1"),
		Address2:      fields.Get("address2"),
		City:          fields.Get("city"),
		State:         fields.Get("state"),
		PostalCode:    fields.Get("postal_code"),
		Phone:         fields.Get("phone"),
		Email:         fields.Get("email"),
	}
	if err := b.db.WithContext(ctx).Create(&customer).Error; err != nil {
		return b.fail(ctx, erp.NewVendorValidation("customer already exists", err.Error(), 0))
	}
	return erp.Result{"CustomerID": customer.CustomerID, "Status": "created"}
}

func (b *LocalBackend) GetShipTos(ctx context.Context, session erp.Session, filter erp.CustomerFilter) erp.Result {
	customerID, verr := b.customerID(filter.CustomerID, session)
	if verr != nil {
		return b.fail(ctx, verr)
	}
	var shipTos []LocalShipTo
	q := b.db.WithContext(ctx).Where("customer_id = ?", customerID)
	if filter.RecordLimit > 0 {
		q = q.Limit(filter.RecordLimit)
	}
	if err := q.Find(&shipTos).Error; err != nil {
		return b.dbFail(ctx, "GetShipTos", err)
	}
	rows := make([]any, 0, len(shipTos))
	for _, s := range shipTos {
		rows = append(rows, map[string]any{
			"ShipToID":   s.ShipToID,
			"Name":       s.Name,
			"Address1":   s.Address1,
			"Address2":   s.Address2,
			"City":       s.City,
			"State":      s.State,
			"PostalCode": s.PostalCode,
		})
	}
	return erp.Result{"ShipTos": rows}
}

func (b *LocalBackend) CreateShipTo(ctx context.Context, session erp.Session, fields erp.Fields) erp.Result {
	customerID, verr := b.customerID(fields.Get("customer_id"), session)
	if verr != nil {
		return b.fail(ctx, verr)
	}
	shipTo := LocalShipTo{
		CustomerID: customerID,
		ShipToID:   fields.Get("ship_to_id"),
		Name:       fields.Get("name"),
		Address1:   fields.Get("address1"),
		Address2:   fields.Get("address2"),
		City:       fields.Get("city"),
		State:      fields.Get("state"),
		PostalCode: fields.Get("postal_code"),
	}
	if err := b.db.WithContext(ctx).Create(&shipTo).Error; err != nil {
		return b.dbFail(ctx, "CreateShipTo", err)
	}
	return erp.Result{"ShipToID": shipTo.ShipToID, "Status": "created"}
}

func (b *LocalBackend) GetARSummary(ctx context.Context, session erp.Session, filter erp.CustomerFilter) erp.Result {
	customerID, verr := b.customerID(filter.CustomerID, session)
	if verr != nil {
		return b.fail(ctx, verr)
	}
	var customer LocalCustomer
	if err := b.db.WithContext(ctx).Where("customer_id = ?", customerID).First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return erp.Empty()
		}
		return b.dbFail(ctx, "GetARSummary", err)
	}
	var open int64
	if err := b.db.WithContext(ctx).Model(&LocalInvoice{}).
		Where("customer_id = ? AND open = ?", customerID, true).Count(&open).Error; err != nil {
		return b.dbFail(ctx, "GetARSummary", err)
	}
	return erp.Result{
		"CustomerID":   customer.CustomerID,
		"CreditLimit":  customer.CreditLimit.StringFixed(2),
		"Balance":      customer.Balance.StringFixed(2),
		"OpenInvoices": fmt.Sprintf("%d", open),
	}
}

// ---------------------------------------------------------------------------
// Product Operations
// ---------------------------------------------------------------------------

func (b *LocalBackend) GetPriceAvailability(ctx context.Context, session erp.Session, items, warehouses []string) erp.Result {
	rows := make([]any, 0, len(items)*len(warehouses))
	for i, itemID := range items {
		var product LocalProduct
		err := b.db.WithContext(ctx).Preload("Stock").Where("item_id = ?", itemID).First(&product).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return b.dbFail(ctx, "GetPriceAvailability", err)
		}
		for j, warehouse := range warehouses {
			available := decimal.Zero
			for _, s := range product.Stock {
				if s.Warehouse == warehouse {
					available = s.Available
				}
			}
			rows = append(rows, map[string]any{
				"SeqNo":     fmt.Sprintf("%d", i*len(warehouses)+j+1),
				"ItemID":    itemID,
				"Warehouse": warehouse,
				"UnitPrice": product.ListPrice.StringFixed(2),
				"Available": available.String(),
			})
		}
	}
	return erp.Result{"Items": rows}
}

func (b *LocalBackend) GetProductSync(ctx context.Context, session erp.Session, sinceDate string) erp.Result {
	q := b.db.WithContext(ctx)
	if sinceDate != "" {
		since, verr := parseSyncDate(sinceDate)
		if verr != nil {
			return b.fail(ctx, verr)
		}
		q = q.Where("updated_at >= ?", since)
	}
	var products []LocalProduct
	if err := q.Find(&products).Error; err != nil {
		return b.dbFail(ctx, "GetProductSync", err)
	}
	rows := make([]any, 0, len(products))
	for _, p := range products {
		rows = append(rows, map[string]any{
			"ItemID":      p.ItemID,
			"Description": p.Description,
			"ListPrice":   p.ListPrice.StringFixed(2),
		})
	}
	return erp.Result{"Products": rows}
}

func (b *LocalBackend) SubmitProductSync(ctx context.Context, session erp.Session, items erp.Fields) erp.Result {
	count := 0
	err := b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, item := range items {
			price, perr := decimal.NewFromString(item.Value)
			if perr != nil {
				price = decimal.Zero
			}
			var product LocalProduct
			ferr := tx.Where("item_id = ?", item.Name).First(&product).Error
			switch {
			case errors.Is(ferr, gorm.ErrRecordNotFound):
				product = LocalProduct{ItemID: item.Name, ListPrice: price}
				if cerr := tx.Create(&product).Error; cerr != nil {
					return cerr
				}
			case ferr != nil:
				return ferr
			default:
				if uerr := tx.Model(&product).Update("list_price", price).Error; uerr != nil {
					return uerr
				}
			}
			count++
		}
		return nil
	})
	if err != nil {
		return b.dbFail(ctx, "SubmitProductSync", err)
	}
	return erp.Result{"Submitted": fmt.Sprintf("%d", count), "Status": "ok"}
}

// ---------------------------------------------------------------------------
// Order & Quotation Operations
// ---------------------------------------------------------------------------

func (b *LocalBackend) CreateOrder(ctx context.Context, session erp.Session, draft erp.OrderDraft) erp.Result {
	return b.createOrderKind(ctx, session, draft, "order")
}

func (b *LocalBackend) CreateQuotation(ctx context.Context, session erp.Session, draft erp.OrderDraft) erp.Result {
	return b.createOrderKind(ctx, session, draft, "quote")
}

func (b *LocalBackend) createOrderKind(ctx context.Context, session erp.Session, draft erp.OrderDraft, kind string) erp.Result {
	customerID, verr := b.customerID(draft.CustomerID, session)
	if verr != nil {
		return b.fail(ctx, verr)
	}
	if len(draft.Lines) == 0 {
		return b.fail(ctx, erp.NewMissingRequiredField("lines"))
	}
	freight := draft.FreightTerms
	if freight == "" {
		freight = "PPD"
	}
	order := LocalOrder{
		OrderID:      uuid.NewString()[:8],
		Kind:         kind,
		CustomerID:   customerID,
		ShipToID:     draft.ShipToID,
		PONumber:     draft.PONumber,
		FreightTerms: freight,
		Carrier:      draft.Carrier,
		Instructions: draft.Instructions,
		Total:        orderTotal(draft.Lines),
	}
	for i, line := range draft.Lines {
		order.Lines = append(order.Lines, LocalOrderLine{
			LineNumber: i + 1,
			ItemID:     line.ItemID,
			Warehouse:  line.Warehouse,
			Quantity:   line.Quantity,
			UnitPrice:  line.UnitPrice,
		})
	}
	if kind == "order" && draft.PONumber != "" {
		var existing int64
		if err := b.db.WithContext(ctx).Model(&LocalOrder{}).
			Where("customer_id = ? AND po_number = ? AND kind = ?", customerID, draft.PONumber, "order").
			Count(&existing).Error; err != nil {
			return b.dbFail(ctx, "CreateOrder", err)
		}
		if existing > 0 {
			msg := fmt.Sprintf("Purchase order number %s has already been used on a previous order. Please enter a unique PO number.", draft.PONumber)
			return b.fail(ctx, erp.NewVendorValidation(msg, msg, 0))
		}
	}
	if err := b.db.WithContext(ctx).Create(&order).Error; err != nil {
		return b.dbFail(ctx, "CreateOrder", err)
	}
	key := "OrderID"
	if kind == "quote" {
		key = "QuoteID"
	}
	return erp.Result{key: order.OrderID, "Total": order.Total.StringFixed(2), "Status": "created"}
}

func (b *LocalBackend) GetOrder(ctx context.Context, session erp.Session, orderID string) erp.Result {
	if orderID == "" {
		return b.fail(ctx, erp.NewMissingRequiredField("order_id"))
	}
	var order LocalOrder
	err := b.db.WithContext(ctx).Preload("Lines").Where("order_id = ?", orderID).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return erp.Empty()
		}
		return b.dbFail(ctx, "GetOrder", err)
	}
	lines := make([]any, 0, len(order.Lines))
	for _, l := range order.Lines {
		lines = append(lines, map[string]any{
			"LineNumber": fmt.Sprintf("%d", l.LineNumber),
			"ItemID":     l.ItemID,
			"Warehouse":  l.Warehouse,
			"Quantity":   l.Quantity.String(),
			"UnitPrice":  l.UnitPrice.StringFixed(2),
		})
	}
	return erp.Result{
		"OrderID":      order.OrderID,
		"CustomerID":   order.CustomerID,
		"PONumber":     order.PONumber,
		"FreightTerms": order.FreightTerms,
		"Carrier":      order.Carrier,
		"Total":        order.Total.StringFixed(2),
		"Lines":        lines,
	}
}

func (b *LocalBackend) GetOrderTotal(ctx context.Context, session erp.Session, draft erp.OrderDraft) erp.Result {
	if _, verr := b.customerID(draft.CustomerID, session); verr != nil {
		return b.fail(ctx, verr)
	}
	if len(draft.Lines) == 0 {
		return b.fail(ctx, erp.NewMissingRequiredField("lines"))
	}
	subtotal := orderTotal(draft.Lines)
	return erp.Result{
		"Subtotal": subtotal.StringFixed(2),
		"Freight":  "0.00",
		"Tax":      "0.00",
		"Total":    subtotal.StringFixed(2),
	}
}

func (b *LocalBackend) GetQuotations(ctx context.Context, session erp.Session, filter erp.CustomerFilter) erp.Result {
	customerID, verr := b.customerID(filter.CustomerID, session)
	if verr != nil {
		return b.fail(ctx, verr)
	}
	q := b.db.WithContext(ctx).Where("customer_id = ? AND kind = ?", customerID, "quote")
	if filter.StartDate != "" {
		q = q.Where("created_at >= ?", filter.StartDate)
	}
	if filter.EndDate != "" {
		q = q.Where("created_at <= ?", filter.EndDate)
	}
	if filter.RecordLimit > 0 {
		q = q.Limit(filter.RecordLimit)
	}
	var quotes []LocalOrder
	if err := q.Order("created_at DESC").Find(&quotes).Error; err != nil {
		return b.dbFail(ctx, "GetQuotations", err)
	}
	rows := make([]any, 0, len(quotes))
	for _, quote := range quotes {
		rows = append(rows, map[string]any{
			"QuoteID":  quote.OrderID,
			"PONumber": quote.PONumber,
			"Total":    quote.Total.StringFixed(2),
			"Date":     quote.CreatedAt.Format("2006-01-02"),
		})
	}
	return erp.Result{"Quotes": rows}
}

func (b *LocalBackend) TrackShipment(ctx context.Context, session erp.Session, orderID string) erp.Result {
	if orderID == "" {
		return b.fail(ctx, erp.NewMissingRequiredField("order_id"))
	}
	var order LocalOrder
	err := b.db.WithContext(ctx).Where("order_id = ?", orderID).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return erp.Empty()
		}
		return b.dbFail(ctx, "TrackShipment", err)
	}
	return erp.Result{
		"OrderID":    order.OrderID,
		"Carrier":    order.Carrier,
		"TrackingNo": order.TrackingNo,
	}
}

// ---------------------------------------------------------------------------
// Invoice & Payment Operations
// ---------------------------------------------------------------------------

func (b *LocalBackend) GetInvoices(ctx context.Context, session erp.Session, filter erp.InvoiceFilter) erp.Result {
	customerID := filter.CustomerID
	if customerID == "" {
		customerID = session.CustomerID
	}
	if customerID == "" {
		return b.fail(ctx, erp.NewMissingRequiredField("customer_id"))
	}
	q := b.db.WithContext(ctx).Where("customer_id = ?", customerID)
	if filter.OpenOnly {
		q = q.Where("open = ?", true)
	}
	if filter.StartDate != "" {
		q = q.Where("issued_at >= ?", filter.StartDate)
	}
	if filter.EndDate != "" {
		q = q.Where("issued_at <= ?", filter.EndDate)
	}
	if filter.RecordLimit > 0 {
		q = q.Limit(filter.RecordLimit)
	}
	var invoices []LocalInvoice
	if err := q.Order("issued_at DESC").Find(&invoices).Error; err != nil {
		return b.dbFail(ctx, "GetInvoices", err)
	}
	rows := make([]any, 0, len(invoices))
	for _, inv := range invoices {
		rows = append(rows, map[string]any{
			"InvoiceID": inv.InvoiceID,
			"OrderID":   inv.OrderID,
			"Amount":    inv.Amount.StringFixed(2),
			"Open":      fmt.Sprintf("%t", inv.Open),
			"Date":      inv.IssuedAt.Format("2006-01-02"),
		})
	}
	return erp.Result{"Invoices": rows}
}

func (b *LocalBackend) GetInvoiceDetail(ctx context.Context, session erp.Session, invoiceID string) erp.Result {
	if invoiceID == "" {
		return b.fail(ctx, erp.NewMissingRequiredField("invoice_id"))
	}
	var invoice LocalInvoice
	err := b.db.WithContext(ctx).Where("invoice_id = ?", invoiceID).First(&invoice).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return erp.Empty()
		}
		return b.dbFail(ctx, "GetInvoiceDetail", err)
	}
	return erp.Result{
		"InvoiceID":  invoice.InvoiceID,
		"CustomerID": invoice.CustomerID,
		"OrderID":    invoice.OrderID,
		"Amount":     invoice.Amount.StringFixed(2),
		"Open":       fmt.Sprintf("%t", invoice.Open),
		"Date":       invoice.IssuedAt.Format("2006-01-02"),
	}
}

func (b *LocalBackend) GetDocument(ctx context.Context, session erp.Session, documentID string) erp.Result {
	if documentID == "" {
		return b.fail(ctx, erp.NewMissingRequiredField("document_id"))
	}
	var invoice LocalInvoice
	err := b.db.WithContext(ctx).Where("invoice_id = ?", documentID).First(&invoice).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return erp.Empty()
		}
		return b.dbFail(ctx, "GetDocument", err)
	}
	return erp.Result{
		"DocumentID":  invoice.InvoiceID,
		"ContentType": "text/plain",
		"Content":     invoice.Document,
	}
}

func (b *LocalBackend) CreatePayment(ctx context.Context, session erp.Session, draft erp.PaymentDraft) erp.Result {
	customerID, verr := b.customerID(draft.CustomerID, session)
	if verr != nil {
		return b.fail(ctx, verr)
	}
	if draft.Amount.LessThanOrEqual(decimal.Zero) {
		return b.fail(ctx, erp.NewInvalidFieldShape("amount", draft.Amount.String()))
	}
	payment := LocalPayment{
		PaymentID:  uuid.NewString(),
		CustomerID: customerID,
		Amount:     draft.Amount,
		Method:     draft.Method,
		Reference:  draft.Reference,
	}
	err := b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if cerr := tx.Create(&payment).Error; cerr != nil {
			return cerr
		}
		for _, invoiceID := range draft.InvoiceIDs {
			if uerr := tx.Model(&LocalInvoice{}).
				Where("invoice_id = ? AND customer_id = ?", invoiceID, customerID).
				Update("open", false).Error; uerr != nil {
				return uerr
			}
		}
		return nil
	})
	if err != nil {
		return b.dbFail(ctx, "CreatePayment", err)
	}
	return erp.Result{
		"TransactionID": payment.PaymentID,
		"Amount":        payment.Amount.StringFixed(2),
		"Status":        "applied",
	}
}

// ---------------------------------------------------------------------------
// Contact, Note & Campaign Operations
// ---------------------------------------------------------------------------

func (b *LocalBackend) GetContacts(ctx context.Context, session erp.Session, filter erp.CustomerFilter) erp.Result {
	customerID, verr := b.customerID(filter.CustomerID, session)
	if verr != nil {
		return b.fail(ctx, verr)
	}
	q := b.db.WithContext(ctx).Where("customer_id = ?", customerID)
	if filter.RecordLimit > 0 {
		q = q.Limit(filter.RecordLimit)
	}
	var contacts []LocalContact
	if err := q.Find(&contacts).Error; err != nil {
		return b.dbFail(ctx, "GetContacts", err)
	}
	rows := make([]any, 0, len(contacts))
	for _, c := range contacts {
		rows = append(rows, contactRow(c))
	}
	return erp.Result{"Contacts": rows}
}

func (b *LocalBackend) CreateContact(ctx context.Context, session erp.Session, contact erp.Contact) erp.Result {
	customerID, verr := b.customerID(contact.CustomerID, session)
	if verr != nil {
		return b.fail(ctx, verr)
	}
	if contact.Email == "" {
		return b.fail(ctx, erp.NewMissingRequiredField("email"))
	}
	record := LocalContact{
		ContactID:  uuid.NewString()[:8],
		CustomerID: customerID,
		FirstName:  contact.FirstName,
		LastName:   contact.LastName,
		Email:      contact.Email,
		Phone:      contact.Phone,
		Title:      contact.Title,
	}
	if err := b.db.WithContext(ctx).Create(&record).Error; err != nil {
		return b.dbFail(ctx, "CreateContact", err)
	}
	return erp.Result{"ContactID": record.ContactID, "Status": "created"}
}

func (b *LocalBackend) UpdateContact(ctx context.Context, session erp.Session, contact erp.Contact) erp.Result {
	if contact.ContactID == "" {
		return b.fail(ctx, erp.NewMissingRequiredField("contact_id"))
	}
	updates := map[string]any{
		"first_name": contact.FirstName,
		"last_name":  contact.LastName,
		"email":      contact.Email,
		"phone":      contact.Phone,
		"title":      contact.Title,
	}
	res := b.db.WithContext(ctx).Model(&LocalContact{}).
		Where("contact_id = ?", contact.ContactID).Updates(updates)
	if res.Error != nil {
		return b.dbFail(ctx, "UpdateContact", res.Error)
	}
	if res.RowsAffected == 0 {
		return erp.Empty()
	}
	return erp.Result{"ContactID": contact.ContactID, "Status": "updated"}
}

func (b *LocalBackend) ValidateContact(ctx context.Context, session erp.Session, email string) erp.Result {
	if email == "" {
		return b.fail(ctx, erp.NewMissingRequiredField("email"))
	}
	var contact LocalContact
	err := b.db.WithContext(ctx).Where("email = ?", email).First(&contact).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return erp.Result{"Valid": "false"}
		}
		return b.dbFail(ctx, "ValidateContact", err)
	}
	return erp.Result{
		"Valid":      "true",
		"ContactID":  contact.ContactID,
		"CustomerID": contact.CustomerID,
	}
}

func (b *LocalBackend) CreateNote(ctx context.Context, session erp.Session, note erp.Note) erp.Result {
	customerID, verr := b.customerID(note.CustomerID, session)
	if verr != nil {
		return b.fail(ctx, verr)
	}
	record := LocalNote{
		NoteID:     uuid.NewString()[:8],
		CustomerID: customerID,
		Topic:      note.Topic,
		Body:       note.Body,
	}
	if err := b.db.WithContext(ctx).Create(&record).Error; err != nil {
		return b.dbFail(ctx, "CreateNote", err)
	}
	return erp.Result{"NoteID": record.NoteID, "Status": "created"}
}

func (b *LocalBackend) UpdateNote(ctx context.Context, session erp.Session, note erp.Note) erp.Result {
	if note.NoteID == "" {
		return b.fail(ctx, erp.NewMissingRequiredField("note_id"))
	}
	res := b.db.WithContext(ctx).Model(&LocalNote{}).
		Where("note_id = ?", note.NoteID).
		Updates(map[string]any{"topic": note.Topic, "body": note.Body})
	if res.Error != nil {
		return b.dbFail(ctx, "UpdateNote", res.Error)
	}
	if res.RowsAffected == 0 {
		return erp.Empty()
	}
	return erp.Result{"NoteID": note.NoteID, "Status": "updated"}
}

func (b *LocalBackend) GetCampaigns(ctx context.Context, session erp.Session, filter erp.CustomerFilter) erp.Result {
	q := b.db.WithContext(ctx)
	if filter.CustomerID != "" {
		q = q.Where("customer_id = ? OR customer_id = ''", filter.CustomerID)
	}
	if filter.RecordLimit > 0 {
		q = q.Limit(filter.RecordLimit)
	}
	var campaigns []LocalCampaign
	if err := q.Find(&campaigns).Error; err != nil {
		return b.dbFail(ctx, "GetCampaigns", err)
	}
	rows := make([]any, 0, len(campaigns))
	for _, c := range campaigns {
		rows = append(rows, map[string]any{
			"CampaignID": c.CampaignID,
			"Name":       c.Name,
			"StartDate":  c.StartsAt.Format("2006-01-02"),
			"EndDate":    c.EndsAt.Format("2006-01-02"),
		})
	}
	return erp.Result{"Campaigns": rows}
}

func (b *LocalBackend) GetCampaignDetail(ctx context.Context, session erp.Session, campaignID string) erp.Result {
	if campaignID == "" {
		return b.fail(ctx, erp.NewMissingRequiredField("campaign_id"))
	}
	var campaign LocalCampaign
	err := b.db.WithContext(ctx).Where("campaign_id = ?", campaignID).First(&campaign).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return erp.Empty()
		}
		return b.dbFail(ctx, "GetCampaignDetail", err)
	}
	return erp.Result{
		"CampaignID":  campaign.CampaignID,
		"Name":        campaign.Name,
		"Description": campaign.Description,
		"StartDate":   campaign.StartsAt.Format("2006-01-02"),
		"EndDate":     campaign.EndsAt.Format("2006-01-02"),
	}
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func orderTotal(lines []erp.OrderLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Quantity.Mul(line.UnitPrice))
	}
	return total
}

func customerResult(c LocalCustomer) erp.Result {
	return erp.Result{
		"CustomerID": c.CustomerID,
		"Name":       c.Name,
		"Address1":   c.Address1,
		"Address2":   c.Address2,
		"City":       c.City,
		"State":      c.State,
		"PostalCode": c.PostalCode,
		"Phone":      c.Phone,
		"Email":      c.Email,
	}
}

func contactRow(c LocalContact) map[string]any {
	return map[string]any{
		"ContactID": c.ContactID,
		"FirstName": c.FirstName,
		"LastName":  c.LastName,
		"Email":     c.Email,
		"Phone":     c.Phone,
		"Title":     c.Title,
	}
}

var _ erp.Backend = (*LocalBackend)(nil)
