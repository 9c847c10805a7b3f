package connector

import (
	"errors"
	"strconv"
)

// informBackendName is the backend code for Inform.
const informBackendName = "inform"

// Errors for Inform configuration
var (
	ErrInformConfigMissingBaseURL  = errors.New("inform: base URL is required")
	ErrInformConfigMissingUsername = errors.New("inform: username is required")
	ErrInformConfigMissingPassword = errors.New("inform: password is required")
)

// InformConfig holds configuration for the Inform backend.
type InformConfig struct {
	// BaseURL is the root of the Inform XML gateway
	BaseURL string
	// Username authenticates the integration account
	Username string
	// Password authenticates the integration account
	Password string
	// Enabled gates every operation
	Enabled bool
	// MultiWarehouse allows pricing lookups across more than one warehouse
	MultiWarehouse bool
	// CompanyNumber scopes calls to one company; defaults when blank
	CompanyNumber string
	// Operator is the identifier stamped on write requests
	Operator string
	// ClientCode identifies the deployment; named (non-numeric) codes run the
	// on-premise service with the older URL path and field names
	ClientCode string
	// TimeoutSeconds is the fixed per-call network timeout
	TimeoutSeconds int
}

// Validate validates the Inform configuration and applies defaults.
func (c *InformConfig) Validate() error {
	if c.BaseURL == "" {
		return ErrInformConfigMissingBaseURL
	}
	if c.Username == "" {
		return ErrInformConfigMissingUsername
	}
	if c.Password == "" {
		return ErrInformConfigMissingPassword
	}
	if c.CompanyNumber == "" {
		c.CompanyNumber = DefaultCompanyNumber
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	return nil
}

// legacyDeployment reports whether this client code routes to the on-premise
// service. Hosted deployments carry numeric client codes.
func (c *InformConfig) legacyDeployment() bool {
	if c.ClientCode == "" {
		return false
	}
	_, err := strconv.Atoi(c.ClientCode)
	return err != nil
}

// requestURL returns the gateway endpoint for this deployment.
func (c *InformConfig) requestURL() string {
	if c.legacyDeployment() {
		return c.BaseURL + "/informxml/request"
	}
	return c.BaseURL + "/api/xml/request"
}

// customerElement returns the customer-number element name this deployment
// expects.
func (c *InformConfig) customerElement() string {
	if c.legacyDeployment() {
		return "CustNo"
	}
	return "CustomerNumber"
}

// newInformProfile builds the declarative validator profile for Inform. The
// gateway reports business rejections in an ErrorMessage element inside the
// response; messages pass through verbatim, there are no rewrite rules.
func newInformProfile() *Profile {
	return &Profile{
		Backend:            informBackendName,
		Wire:               WireXML,
		VendorMessageField: "ErrorMessage",
	}
}
