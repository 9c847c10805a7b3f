package erp

import (
	"github.com/shopspring/decimal"
)

// Result is the normalized associative structure every operation returns.
// Nested vendor structures become nested Results; repeated elements become
// []any of Results. An empty Result signals a reported failure.
type Result map[string]any

// Empty returns an empty normalized result, substituted after an error has
// been reported.
func Empty() Result {
	return Result{}
}

// IsEmpty returns true if the result carries no data.
func (r Result) IsEmpty() bool {
	return len(r) == 0
}

// String returns the string value at key, or "" when absent or non-string.
// Absent fields are tolerated, never an error.
func (r Result) String(key string) string {
	if v, ok := r[key].(string); ok {
		return v
	}
	return ""
}

// Rows returns the repeated-element slice at key, tolerating both a missing
// key and a single element the vendor did not wrap in a list.
func (r Result) Rows(key string) []Result {
	switch v := r[key].(type) {
	case []any:
		rows := make([]Result, 0, len(v))
		for _, item := range v {
			if m, ok := item.(map[string]any); ok {
				rows = append(rows, Result(m))
			}
		}
		return rows
	case map[string]any:
		return []Result{Result(v)}
	default:
		return nil
	}
}

// Field is one name/value pair of a caller-supplied attribute list. Fields
// are ordered: payload builders assign sequence numbers and emit XML elements
// in the order the caller listed them.
type Field struct {
	Name  string
	Value string
}

// Fields is an ordered attribute list.
type Fields []Field

// Get returns the value for name, or "" when absent.
func (f Fields) Get(name string) string {
	for _, field := range f {
		if field.Name == name {
			return field.Value
		}
	}
	return ""
}

// Session identifies the caller on whose behalf operations run. CustomerID is
// the fallback customer identifier when a filter omits one.
type Session struct {
	CustomerID string
	ContactID  string
	Operator   string
}

// CustomerFilter narrows customer-scoped lookups.
type CustomerFilter struct {
	CustomerID string
	ShipToID   string
	StartDate  string
	EndDate    string
	// RecordLimit caps returned rows. Zero or negative means no limit; the
	// fallback is preserved as-is because existing callers depend on it.
	RecordLimit int
}

// InvoiceFilter narrows invoice lookups.
type InvoiceFilter struct {
	CustomerID  string
	InvoiceID   string
	StartDate   string
	EndDate     string
	OpenOnly    bool
	RecordLimit int
}

// OrderLine is one item on an order or quotation draft.
type OrderLine struct {
	ItemID    string
	Warehouse string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
}

// OrderDraft carries everything needed to create an order or quotation.
type OrderDraft struct {
	CustomerID string
	ShipToID   string
	PONumber   string
	// FreightTerms defaults when blank; the default is applied silently.
	FreightTerms string
	Carrier      string
	Instructions string
	Lines        []OrderLine
}

// PaymentDraft carries an accounts-receivable payment application.
type PaymentDraft struct {
	CustomerID string
	InvoiceIDs []string
	Amount     decimal.Decimal
	Method     string
	Reference  string
}

// Contact is a customer contact record used by create/update operations.
type Contact struct {
	ContactID  string
	CustomerID string
	FirstName  string
	LastName   string
	Email      string
	Phone      string
	Title      string
}

// Note is a free-text annotation attached to a customer or order.
type Note struct {
	NoteID     string
	CustomerID string
	Topic      string
	Body       string
}
