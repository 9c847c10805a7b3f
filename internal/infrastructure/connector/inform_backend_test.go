package connector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/erplink/backend/internal/domain/erp"
)

// newTestInformBackend wires an Inform backend against a mock gateway.
func newTestInformBackend(t *testing.T, clientCode string, handler http.HandlerFunc) (*InformBackend, *captureReporter, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	reporter := &captureReporter{}
	config := &InformConfig{
		BaseURL:    server.URL,
		Username:   "user",
		Password:   "pass",
		Enabled:    true,
		Operator:   "web",
		ClientCode: clientCode,
	}
	backend, err := NewInformBackend(config, reporter, zap.NewNop())
	require.NoError(t, err)
	return backend, reporter, server
}

func TestNewInformBackendConfigValidation(t *testing.T) {
	_, err := NewInformBackend(&InformConfig{}, erp.NopReporter{}, zap.NewNop())
	assert.ErrorIs(t, err, ErrInformConfigMissingBaseURL)

	_, err = NewInformBackend(&InformConfig{BaseURL: "http://gw.local"}, erp.NopReporter{}, zap.NewNop())
	assert.ErrorIs(t, err, ErrInformConfigMissingUsername)
}

func TestInformDeploymentRouting(t *testing.T) {
	tests := []struct {
		name        string
		clientCode  string
		wantLegacy  bool
		wantPath    string
		wantElement string
	}{
		{"hosted numeric code", "1042", false, "/api/xml/request", "CustomerNumber"},
		{"no code", "", false, "/api/xml/request", "CustomerNumber"},
		{"named on-premise code", "acme", true, "/informxml/request", "CustNo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := &InformConfig{BaseURL: "http://gw.local", ClientCode: tt.clientCode}
			assert.Equal(t, tt.wantLegacy, config.legacyDeployment())
			assert.Equal(t, "http://gw.local"+tt.wantPath, config.requestURL())
			assert.Equal(t, tt.wantElement, config.customerElement())
		})
	}
}

func TestInformGetCustomer(t *testing.T) {
	var capturedPath, capturedXML string
	backend, reporter, _ := newTestInformBackend(t, "1042", func(w http.ResponseWriter, r *http.Request) {
		capturedPath = r.URL.Path
		capturedXML = r.URL.Query().Get("xmlRequest")
		w.Write([]byte(`<Response><CustomerNumber>100500</CustomerNumber><Name>Acme Supply</Name></Response>`))
	})

	result := backend.GetCustomer(context.Background(), erp.Session{}, erp.CustomerFilter{CustomerID: "100500"})
	require.Equal(t, 0, reporter.count())
	assert.Equal(t, "Acme Supply", result.String("Name"))

	assert.Equal(t, "/api/xml/request", capturedPath)
	assert.Contains(t, capturedXML, "<Operation>CustomerDetail</Operation>")
	assert.Contains(t, capturedXML, "<CustomerNumber>100500</CustomerNumber>")
	assert.Contains(t, capturedXML, "<ClientCode>1042</ClientCode>")
	assert.Contains(t, capturedXML, "<Username>user</Username>")
}

func TestInformLegacyElementNames(t *testing.T) {
	var capturedPath, capturedXML string
	backend, _, _ := newTestInformBackend(t, "acme", func(w http.ResponseWriter, r *http.Request) {
		capturedPath = r.URL.Path
		capturedXML = r.URL.Query().Get("xmlRequest")
		w.Write([]byte(`<Response><Status>OK</Status></Response>`))
	})

	backend.GetCustomer(context.Background(), erp.Session{}, erp.CustomerFilter{CustomerID: "100500"})
	assert.Equal(t, "/informxml/request", capturedPath)
	assert.Contains(t, capturedXML, "<CustNo>100500</CustNo>")
	assert.NotContains(t, capturedXML, "<CustomerNumber>")
}

func TestInformVendorErrorMessage(t *testing.T) {
	backend, reporter, _ := newTestInformBackend(t, "1042", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<Response><ErrorMessage>Customer on credit hold</ErrorMessage></Response>`))
	})

	result := backend.GetARSummary(context.Background(), erp.Session{}, erp.CustomerFilter{CustomerID: "100500"})
	assert.True(t, result.IsEmpty())

	verr := reporter.last()
	require.NotNil(t, verr)
	assert.Equal(t, erp.CodeVendorValidation, verr.Code)
	assert.Equal(t, 422, verr.Status)
	assert.Equal(t, "Customer on credit hold", verr.Message)
}

func TestInformProductSyncBadDateBeforeTransport(t *testing.T) {
	backend, reporter, _ := newTestInformBackend(t, "1042", func(w http.ResponseWriter, r *http.Request) {
		t.Error("must not reach the wire")
	})

	result := backend.GetProductSync(context.Background(), erp.Session{}, "06/01/2026")
	assert.True(t, result.IsEmpty())
	assert.Equal(t, erp.CodeInvalidFieldShape, reporter.last().Code)
}

func TestInformServiceDisabled(t *testing.T) {
	requests := 0
	backend, reporter, _ := newTestInformBackend(t, "1042", func(w http.ResponseWriter, r *http.Request) {
		requests++
	})
	backend.config.Enabled = false

	result := backend.GetOrder(context.Background(), erp.Session{}, "889")
	assert.True(t, result.IsEmpty())
	assert.Equal(t, erp.CodeServiceDisabled, reporter.last().Code)
	assert.Equal(t, 0, requests)
}

func TestInformCreateOrderFragment(t *testing.T) {
	var capturedXML string
	backend, reporter, _ := newTestInformBackend(t, "1042", func(w http.ResponseWriter, r *http.Request) {
		capturedXML = r.URL.Query().Get("xmlRequest")
		w.Write([]byte(`<Response><OrderNumber>889</OrderNumber></Response>`))
	})

	draft := erp.OrderDraft{
		CustomerID: "100500",
		PONumber:   "PO-1 & Co",
		Lines: []erp.OrderLine{
			{ItemID: "A-1", Warehouse: "W1", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.RequireFromString("9.99")},
			{ItemID: "B-2", Warehouse: "W1", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.RequireFromString("4.50")},
		},
	}
	result := backend.CreateOrder(context.Background(), erp.Session{}, draft)
	require.Equal(t, 0, reporter.count())
	assert.Equal(t, "889", result.String("OrderNumber"))

	assert.Contains(t, capturedXML, "<Operation>OrderAdd</Operation>")
	assert.Contains(t, capturedXML, "<PONumber>PO-1 &amp; Co</PONumber>", "values must be XML-escaped")
	assert.Contains(t, capturedXML, "<FreightTerms>PPD</FreightTerms>")
	assert.Contains(t, capturedXML, "<Line><Seq>1</Seq><Item>A-1</Item><Warehouse>W1</Warehouse><Quantity>2</Quantity><Price>9.99</Price></Line>")
	assert.Contains(t, capturedXML, "<Seq>2</Seq><Item>B-2</Item>")
}

func TestInformCreateCustomerFieldOrder(t *testing.T) {
	var capturedXML string
	backend, _, _ := newTestInformBackend(t, "1042", func(w http.ResponseWriter, r *http.Request) {
		capturedXML = r.URL.Query().Get("xmlRequest")
		w.Write([]byte(`<Response><Status>OK</Status></Response>`))
	})

	fields := erp.Fields{
		{Name: "customer_id", Value: "100500"},
		{Name: "name", Value: "Acme Supply"},
		{Name: "postal_code", Value: "97201"},
	}
	backend.CreateCustomer(context.Background(), erp.Session{}, fields)

	// Caller order preserved, snake_case converted to the gateway's names.
	assert.Contains(t, capturedXML, "<CustomerId>100500</CustomerId><Name>Acme Supply</Name><PostalCode>97201</PostalCode>")
}

func TestInformPriceAvailabilityPairs(t *testing.T) {
	var capturedXML string
	backend, _, _ := newTestInformBackend(t, "1042", func(w http.ResponseWriter, r *http.Request) {
		capturedXML = r.URL.Query().Get("xmlRequest")
		w.Write([]byte(`<Response><Items></Items></Response>`))
	})
	backend.config.MultiWarehouse = true

	backend.GetPriceAvailability(context.Background(), erp.Session{}, []string{"A-1", "B-2"}, []string{"W1", "W2"})
	assert.Contains(t, capturedXML, "<Line><Seq>1</Seq><Item>A-1</Item><Warehouse>W1</Warehouse></Line>")
	assert.Contains(t, capturedXML, "<Line><Seq>2</Seq><Item>A-1</Item><Warehouse>W2</Warehouse></Line>")
	assert.Contains(t, capturedXML, "<Line><Seq>3</Seq><Item>B-2</Item><Warehouse>W1</Warehouse></Line>")
	assert.Contains(t, capturedXML, "<Line><Seq>4</Seq><Item>B-2</Item><Warehouse>W2</Warehouse></Line>")
}

func TestInformTransportFailureReportsEmptyResponse(t *testing.T) {
	backend, reporter, server := newTestInformBackend(t, "1042", func(w http.ResponseWriter, r *http.Request) {})
	server.Close()

	result := backend.TrackShipment(context.Background(), erp.Session{}, "889")
	assert.True(t, result.IsEmpty())
	require.Equal(t, 1, reporter.count())
	assert.Equal(t, erp.CodeEmptyResponse, reporter.last().Code)
}

func TestInformRepeatedLinesDecodeOrdered(t *testing.T) {
	backend, reporter, _ := newTestInformBackend(t, "1042", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<Response>
			<Invoice><Number>I-1</Number></Invoice>
			<Invoice><Number>I-2</Number></Invoice>
		</Response>`))
	})

	result := backend.GetInvoices(context.Background(), erp.Session{CustomerID: "100500"}, erp.InvoiceFilter{})
	require.Equal(t, 0, reporter.count())

	rows := result.Rows("Invoice")
	require.Len(t, rows, 2)
	assert.Equal(t, "I-1", rows[0].String("Number"))
	assert.Equal(t, "I-2", rows[1].String("Number"))
}
