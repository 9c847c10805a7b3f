package connector

import (
	"time"

	"github.com/shopspring/decimal"
)

// Local data-store models. These stand in for an ERP when none is
// configured, so column naming mirrors the normalized result keys the other
// backends produce.

// LocalCustomer is a customer record in the local store.
type LocalCustomer struct {
	ID            uint            `gorm:"primaryKey"`
	CustomerID    string          `gorm:"uniqueIndex;size:32"`
	CompanyNumber string          `gorm:"size:8"`
	Name          string          `gorm:"size:128"`
	Address1      string          `gorm:"size:128"`
	Address2      string          `gorm:"size:128"`
	City          string          `gorm:"size:64"`
	State         string          `gorm:"size:16"`
	PostalCode    string          `gorm:"size:16"`
	Phone         string          `gorm:"size:32"`
	Email         string          `gorm:"size:128"`
	CreditLimit   decimal.Decimal `gorm:"type:decimal(14,2)"`
	Balance       decimal.Decimal `gorm:"type:decimal(14,2)"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// LocalShipTo is a shipping location belonging to a customer.
type LocalShipTo struct {
	ID         uint   `gorm:"primaryKey"`
	CustomerID string `gorm:"index;size:32"`
	ShipToID   string `gorm:"size:32"`
	Name       string `gorm:"size:128"`
	Address1   string `gorm:"size:128"`
	Address2   string `gorm:"size:128"`
	City       string `gorm:"size:64"`
	State      string `gorm:"size:16"`
	PostalCode string `gorm:"size:16"`
	CreatedAt  time.Time
}

// LocalProduct is an item with per-warehouse stock rows.
type LocalProduct struct {
	ID          uint            `gorm:"primaryKey"`
	ItemID      string          `gorm:"uniqueIndex;size:64"`
	Description string          `gorm:"size:256"`
	ListPrice   decimal.Decimal `gorm:"type:decimal(14,2)"`
	UpdatedAt   time.Time
	Stock       []LocalStock `gorm:"foreignKey:ProductID"`
}

// LocalStock is the available quantity of one product in one warehouse.
type LocalStock struct {
	ID        uint            `gorm:"primaryKey"`
	ProductID uint            `gorm:"index"`
	Warehouse string          `gorm:"size:16"`
	Available decimal.Decimal `gorm:"type:decimal(14,3)"`
}

// LocalOrder is an order or quotation header; Kind separates the two.
type LocalOrder struct {
	ID           uint            `gorm:"primaryKey"`
	OrderID      string          `gorm:"uniqueIndex;size:32"`
	Kind         string          `gorm:"size:8;index"` // "order" or "quote"
	CustomerID   string          `gorm:"index;size:32"`
	ShipToID     string          `gorm:"size:32"`
	PONumber     string          `gorm:"size:64"`
	FreightTerms string          `gorm:"size:16"`
	Carrier      string          `gorm:"size:32"`
	Instructions string          `gorm:"size:256"`
	Total        decimal.Decimal `gorm:"type:decimal(14,2)"`
	TrackingNo   string          `gorm:"size:64"`
	CreatedAt    time.Time
	Lines        []LocalOrderLine `gorm:"foreignKey:OrderRef"`
}

// LocalOrderLine is one line of a local order.
type LocalOrderLine struct {
	ID         uint `gorm:"primaryKey"`
	OrderRef   uint `gorm:"index"`
	LineNumber int
	ItemID     string          `gorm:"size:64"`
	Warehouse  string          `gorm:"size:16"`
	Quantity   decimal.Decimal `gorm:"type:decimal(14,3)"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(14,2)"`
}

// LocalInvoice is an invoice header; Document holds the printable text.
type LocalInvoice struct {
	ID         uint            `gorm:"primaryKey"`
	InvoiceID  string          `gorm:"uniqueIndex;size:32"`
	CustomerID string          `gorm:"index;size:32"`
	OrderID    string          `gorm:"size:32"`
	Amount     decimal.Decimal `gorm:"type:decimal(14,2)"`
	Open       bool            `gorm:"index"`
	Document   string
	IssuedAt   time.Time
}

// LocalPayment is an applied accounts-receivable payment.
type LocalPayment struct {
	ID         uint            `gorm:"primaryKey"`
	PaymentID  string          `gorm:"uniqueIndex;size:40"`
	CustomerID string          `gorm:"index;size:32"`
	Amount     decimal.Decimal `gorm:"type:decimal(14,2)"`
	Method     string          `gorm:"size:32"`
	Reference  string          `gorm:"size:64"`
	CreatedAt  time.Time
}

// LocalContact is a customer contact.
type LocalContact struct {
	ID         uint   `gorm:"primaryKey"`
	ContactID  string `gorm:"uniqueIndex;size:32"`
	CustomerID string `gorm:"index;size:32"`
	FirstName  string `gorm:"size:64"`
	LastName   string `gorm:"size:64"`
	Email      string `gorm:"index;size:128"`
	Phone      string `gorm:"size:32"`
	Title      string `gorm:"size:64"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// LocalNote is a free-text annotation on a customer.
type LocalNote struct {
	ID         uint   `gorm:"primaryKey"`
	NoteID     string `gorm:"uniqueIndex;size:32"`
	CustomerID string `gorm:"index;size:32"`
	Topic      string `gorm:"size:128"`
	Body       string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// LocalCampaign is a marketing campaign record.
type LocalCampaign struct {
	ID          uint   `gorm:"primaryKey"`
	CampaignID  string `gorm:"uniqueIndex;size:32"`
	CustomerID  string `gorm:"index;size:32"`
	Name        string `gorm:"size:128"`
	Description string `gorm:"size:512"`
	StartsAt    time.Time
	EndsAt      time.Time
}

// localModels lists every model the local backend migrates.
func localModels() []any {
	return []any{
		&LocalCustomer{},
		&LocalShipTo{},
		&LocalProduct{},
		&LocalStock{},
		&LocalOrder{},
		&LocalOrderLine{},
		&LocalInvoice{},
		&LocalPayment{},
		&LocalContact{},
		&LocalNote{},
		&LocalCampaign{},
	}
}
