package connector

import (
	"strconv"
	"time"

	"github.com/erplink/backend/internal/domain/erp"
)

// syncDateLayout is the only date shape the product-sync operations accept.
const syncDateLayout = "2006-01-02"

// Table-maintenance update modes.
const (
	MaintTypeAdd    = "add"
	MaintTypeChange = "chg"
)

// DefaultCompanyNumber is substituted when a backend configuration omits one.
const DefaultCompanyNumber = "01"

// TableRow is one row descriptor of a table-maintenance payload: field
// updates are expressed as (set/sequence/key/mode/field/value) rows rather
// than a flat object.
type TableRow struct {
	SetNo      int    `json:"SetNo"`
	SeqNo      int    `json:"SeqNo"`
	Key1       string `json:"Key1"`
	Key2       string `json:"Key2"`
	MaintType  string `json:"MaintType"`
	FieldName  string `json:"FieldName"`
	FieldValue string `json:"FieldValue"`
}

// BuildTableRows flattens an ordered field list into table-maintenance row
// descriptors. Sequence numbers increment monotonically from 1 in the order
// the caller listed the fields.
func BuildTableRows(setNo int, key1, key2, maintType string, fields erp.Fields) []TableRow {
	rows := make([]TableRow, 0, len(fields))
	for i, field := range fields {
		rows = append(rows, TableRow{
			SetNo:      setNo,
			SeqNo:      i + 1,
			Key1:       key1,
			Key2:       key2,
			MaintType:  maintType,
			FieldName:  field.Name,
			FieldValue: field.Value,
		})
	}
	return rows
}

// ItemWarehouseRow is one row of a pricing/availability lookup payload.
type ItemWarehouseRow struct {
	SeqNo     int    `json:"SeqNo"`
	ItemID    string `json:"ItemID"`
	Warehouse string `json:"Warehouse"`
}

// BuildItemWarehouseRows produces one row per item/warehouse pair. The
// sequence number is synthetic, derived from each value's position in its
// list, so row ordering is stable for identical inputs.
func BuildItemWarehouseRows(items, warehouses []string) []ItemWarehouseRow {
	rows := make([]ItemWarehouseRow, 0, len(items)*len(warehouses))
	for i, item := range items {
		for j, warehouse := range warehouses {
			rows = append(rows, ItemWarehouseRow{
				SeqNo:     i*len(warehouses) + j + 1,
				ItemID:    item,
				Warehouse: warehouse,
			})
		}
	}
	return rows
}

// resolveCustomerID applies the customer-identifier fallback chain: an
// explicit filter value wins, then the session's customer. An empty result
// classifies as a missing required field before any transport call happens.
func resolveCustomerID(explicit string, session erp.Session) (string, *erp.Error) {
	customerID := explicit
	if customerID == "" {
		customerID = session.CustomerID
	}
	if customerID == "" {
		return "", erp.NewMissingRequiredField("customer_id")
	}
	return customerID, nil
}

// checkCustomerIDShape enforces the basic shape rule where it applies: a
// customer identifier must be longer than 2 characters and numeric.
func checkCustomerIDShape(customerID string) *erp.Error {
	if len(customerID) <= 2 {
		return erp.NewInvalidFieldShape("customer_id", customerID)
	}
	if _, err := strconv.ParseInt(customerID, 10, 64); err != nil {
		return erp.NewInvalidFieldShape("customer_id", customerID)
	}
	return nil
}

// parseSyncDate enforces the product-sync date shape before any transport
// call. A blank date means "everything" and yields a zero time.
func parseSyncDate(sinceDate string) (time.Time, *erp.Error) {
	if sinceDate == "" {
		return time.Time{}, nil
	}
	since, err := time.Parse(syncDateLayout, sinceDate)
	if err != nil {
		return time.Time{}, erp.NewInvalidFieldShape("since_date", sinceDate)
	}
	return since, nil
}

// companyOrDefault substitutes the fixed default company code for a missing
// company number.
func companyOrDefault(company string) string {
	if company == "" {
		return DefaultCompanyNumber
	}
	return company
}
