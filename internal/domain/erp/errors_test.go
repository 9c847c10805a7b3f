package erp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *Error
		wantCode   string
		wantStatus int
	}{
		{"unauthorized", NewUnauthorized(), CodeUnauthorized, 403},
		{"invalid credentials", NewInvalidCredentials("bad password"), CodeInvalidCredentials, 500},
		{"empty response", NewEmptyResponse(""), CodeEmptyResponse, 500},
		{"malformed response", NewMalformedResponse("broken"), CodeMalformedResponse, 500},
		{"vendor validation default status", NewVendorValidation("nope", "", 0), CodeVendorValidation, 422},
		{"vendor validation explicit status", NewVendorValidation("nope", "", 409), CodeVendorValidation, 409},
		{"service disabled", NewServiceDisabled("p21"), CodeServiceDisabled, 503},
		{"missing field", NewMissingRequiredField("customer_id"), CodeMissingRequiredField, 422},
		{"invalid shape", NewInvalidFieldShape("customer_id", "ab"), CodeInvalidFieldShape, 422},
		{"unexpected", NewUnexpected("???"), CodeUnexpected, 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCode, tt.err.Code)
			assert.Equal(t, tt.wantStatus, tt.err.Status)
			assert.NotEmpty(t, tt.err.Message)
			assert.Contains(t, tt.err.Error(), tt.wantCode)
		})
	}
}

func TestNewInvalidCredentials_CarriesDescription(t *testing.T) {
	err := NewInvalidCredentials("The user name or password is incorrect")
	assert.Contains(t, err.Message, "The user name or password is incorrect")
}

func TestNewVendorValidation_KeepsOriginalVendorText(t *testing.T) {
	err := NewVendorValidation("friendly", "raw vendor text", 0)
	assert.Equal(t, "friendly", err.Message)
	assert.Equal(t, "raw vendor text", err.VendorMessage)

	// Vendor text defaults to the message when no rewrite happened.
	err = NewVendorValidation("verbatim", "", 0)
	assert.Equal(t, "verbatim", err.VendorMessage)
}

func TestNewMalformedResponse_DefaultMessage(t *testing.T) {
	assert.Equal(t, "Invalid Response", NewMalformedResponse("").Message)
}

func TestResultHelpers(t *testing.T) {
	r := Result{
		"name": "Acme",
		"lines": []any{
			map[string]any{"item": "A"},
			map[string]any{"item": "B"},
		},
		"single": map[string]any{"item": "C"},
	}

	assert.Equal(t, "Acme", r.String("name"))
	assert.Equal(t, "", r.String("missing"))
	assert.Len(t, r.Rows("lines"), 2)
	// A single element the vendor did not wrap in a list still counts as one row.
	assert.Len(t, r.Rows("single"), 1)
	assert.Nil(t, r.Rows("missing"))
	assert.True(t, Empty().IsEmpty())
}

func TestFieldsGet(t *testing.T) {
	f := Fields{{Name: "name", Value: "X"}, {Name: "city", Value: "Y"}}
	assert.Equal(t, "X", f.Get("name"))
	assert.Equal(t, "", f.Get("zip"))
}
