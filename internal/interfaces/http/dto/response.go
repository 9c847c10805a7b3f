package dto

// Response represents a standard API response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
}

// ErrorInfo represents error details
type ErrorInfo struct {
	Code    string             `json:"code"`
	Message string             `json:"message"`
	Details []ValidationDetail `json:"details,omitempty"`
}

// ValidationDetail describes one field-level validation failure
type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// NewValidationErrorResponse creates an error response with field details
func NewValidationErrorResponse(message string, details []ValidationDetail) Response {
	return Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    "VALIDATION_ERROR",
			Message: message,
			Details: details,
		},
	}
}

// NewSuccessResponse creates a success response
func NewSuccessResponse(data interface{}) Response {
	return Response{
		Success: true,
		Data:    data,
	}
}

// NewErrorResponse creates an error response
func NewErrorResponse(code, message string) Response {
	return Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
		},
	}
}

// FieldRequest is one ordered name/value attribute in a request body. Order
// is preserved end to end because downstream payload builders assign sequence
// numbers from it.
type FieldRequest struct {
	Name  string `json:"name" binding:"required"`
	Value string `json:"value"`
}

// OrderLineRequest is one line on an order or quotation request.
type OrderLineRequest struct {
	ItemID    string `json:"item_id" binding:"required"`
	Warehouse string `json:"warehouse"`
	Quantity  string `json:"quantity" binding:"required"`
	UnitPrice string `json:"unit_price"`
}

// OrderRequest is the request body for creating an order or quotation or
// pricing an order total.
type OrderRequest struct {
	CustomerID   string             `json:"customer_id"`
	ShipToID     string             `json:"ship_to_id"`
	PONumber     string             `json:"po_number"`
	FreightTerms string             `json:"freight_terms"`
	Carrier      string             `json:"carrier"`
	Instructions string             `json:"instructions"`
	Lines        []OrderLineRequest `json:"lines"`
}

// PaymentRequest is the request body for applying a payment.
type PaymentRequest struct {
	CustomerID string   `json:"customer_id"`
	InvoiceIDs []string `json:"invoice_ids"`
	Amount     string   `json:"amount" binding:"required"`
	Method     string   `json:"method"`
	Reference  string   `json:"reference"`
}

// ContactRequest is the request body for creating or updating a contact.
type ContactRequest struct {
	ContactID  string `json:"contact_id"`
	CustomerID string `json:"customer_id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email" binding:"omitempty,email"`
	Phone      string `json:"phone"`
	Title      string `json:"title"`
}

// NoteRequest is the request body for creating or updating a note.
type NoteRequest struct {
	NoteID     string `json:"note_id"`
	CustomerID string `json:"customer_id"`
	Topic      string `json:"topic"`
	Body       string `json:"body" binding:"required"`
}
