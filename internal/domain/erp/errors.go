package erp

import "fmt"

// Error codes shared by every backend. Each raised error carries a stable
// numeric status alongside the code so callers surface consistent failures
// regardless of which vendor produced them.
const (
	CodeUnauthorized         = "UNAUTHORIZED"
	CodeInvalidCredentials   = "INVALID_CREDENTIALS"
	CodeEmptyResponse        = "EMPTY_RESPONSE"
	CodeMalformedResponse    = "MALFORMED_RESPONSE"
	CodeVendorValidation     = "VENDOR_VALIDATION"
	CodeServiceDisabled      = "SERVICE_DISABLED"
	CodeMissingRequiredField = "MISSING_REQUIRED_FIELD"
	CodeInvalidFieldShape    = "INVALID_FIELD_SHAPE"
	CodeUnexpected           = "UNEXPECTED"
)

// Error is a classified integration error. VendorMessage keeps the original
// vendor error text when a friendlier Message was substituted for display.
type Error struct {
	Code          string `json:"code"`
	Status        int    `json:"status"`
	Message       string `json:"message"`
	VendorMessage string `json:"vendor_message,omitempty"`
}

// Error implements the error interface
func (e *Error) Error() string {
	return fmt.Sprintf("erp: [%d %s] %s", e.Status, e.Code, e.Message)
}

// NewUnauthorized reports a rejected credential on an authenticated call.
func NewUnauthorized() *Error {
	return &Error{Code: CodeUnauthorized, Status: 403, Message: "Unauthorized"}
}

// NewInvalidCredentials reports a failed token grant. description is the
// vendor's error_description accompanying the invalid_grant envelope.
func NewInvalidCredentials(description string) *Error {
	msg := "Invalid credentials"
	if description != "" {
		msg = fmt.Sprintf("Invalid credentials: %s", description)
	}
	return &Error{Code: CodeInvalidCredentials, Status: 500, Message: msg}
}

// NewEmptyResponse reports a nil or zero-length response body. The raw value
// is embedded for diagnostics even though it is empty.
func NewEmptyResponse(raw string) *Error {
	return &Error{
		Code:    CodeEmptyResponse,
		Status:  500,
		Message: fmt.Sprintf("Empty response received from ERP: %q", raw),
	}
}

// NewMalformedResponse reports a body that could not be understood: an HTML
// error page, unparsable XML, or undecodable JSON.
func NewMalformedResponse(message string) *Error {
	if message == "" {
		message = "Invalid Response"
	}
	return &Error{Code: CodeMalformedResponse, Status: 500, Message: message}
}

// NewVendorValidation reports a business-rule rejection from the vendor.
// message may have been rewritten for friendliness; vendorMessage keeps the
// original text. A zero status defaults to 422.
func NewVendorValidation(message, vendorMessage string, status int) *Error {
	if status == 0 {
		status = 422
	}
	if message == "" {
		message = "Validation failed"
	}
	if vendorMessage == "" {
		vendorMessage = message
	}
	return &Error{
		Code:          CodeVendorValidation,
		Status:        status,
		Message:       message,
		VendorMessage: vendorMessage,
	}
}

// NewServiceDisabled reports an operation attempted against a backend whose
// configuration disables it.
func NewServiceDisabled(backend string) *Error {
	return &Error{
		Code:    CodeServiceDisabled,
		Status:  503,
		Message: fmt.Sprintf("ERP backend %q is disabled", backend),
	}
}

// NewMissingRequiredField reports an absent identifier required to build a
// payload, raised before any transport call is attempted.
func NewMissingRequiredField(field string) *Error {
	return &Error{
		Code:    CodeMissingRequiredField,
		Status:  422,
		Message: fmt.Sprintf("Required field %q is missing", field),
	}
}

// NewInvalidFieldShape reports an identifier that fails its basic shape check.
func NewInvalidFieldShape(field, value string) *Error {
	return &Error{
		Code:    CodeInvalidFieldShape,
		Status:  422,
		Message: fmt.Sprintf("Field %q has invalid value %q", field, value),
	}
}

// NewUnexpected reports an error value no classification rule matched. The
// raw value is embedded for diagnostics.
func NewUnexpected(raw string) *Error {
	return &Error{
		Code:    CodeUnexpected,
		Status:  500,
		Message: fmt.Sprintf("Unexpected ERP error: %s", raw),
	}
}
