package connector

import (
	"errors"
	"regexp"
)

// p21BackendName is the backend code for Prophet 21.
const p21BackendName = "p21"

// Errors for Prophet 21 configuration
var (
	ErrP21ConfigMissingBaseURL      = errors.New("p21: base URL is required")
	ErrP21ConfigMissingClientID     = errors.New("p21: client ID is required")
	ErrP21ConfigMissingClientSecret = errors.New("p21: client secret is required")
	ErrP21ConfigMissingUsername     = errors.New("p21: username is required")
	ErrP21ConfigMissingPassword     = errors.New("p21: password is required")
)

// P21Config holds configuration for the Prophet 21 backend. Token fields are
// mutated in place by the token manager when refreshed; everything else is
// read-only after construction.
type P21Config struct {
	// BaseURL is the API root of the Prophet 21 middleware
	BaseURL string
	// TokenURL is the password-grant endpoint; derived from BaseURL when blank
	TokenURL string
	// ClientID identifies the integration registration
	ClientID string
	// ClientSecret authenticates the integration registration
	ClientSecret string
	// Username is the resource-owner login
	Username string
	// Password is the resource-owner password
	Password string
	// Enabled gates every operation
	Enabled bool
	// MultiWarehouse allows pricing lookups across more than one warehouse
	MultiWarehouse bool
	// CompanyNumber scopes calls to one company; defaults when blank
	CompanyNumber string
	// Operator is the identifier stamped on maintenance payloads
	Operator string
	// AccessToken is the current bearer token, possibly stale
	AccessToken string
	// TokenExpiry is the unix expiry of AccessToken in seconds
	TokenExpiry int64
	// TimeoutSeconds is the fixed per-call network timeout
	TimeoutSeconds int
}

// Validate validates the Prophet 21 configuration and applies defaults.
func (c *P21Config) Validate() error {
	if c.BaseURL == "" {
		return ErrP21ConfigMissingBaseURL
	}
	if c.ClientID == "" {
		return ErrP21ConfigMissingClientID
	}
	if c.ClientSecret == "" {
		return ErrP21ConfigMissingClientSecret
	}
	if c.Username == "" {
		return ErrP21ConfigMissingUsername
	}
	if c.Password == "" {
		return ErrP21ConfigMissingPassword
	}
	if c.TokenURL == "" {
		c.TokenURL = c.BaseURL + "/oauth/token"
	}
	if c.CompanyNumber == "" {
		c.CompanyNumber = DefaultCompanyNumber
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	return nil
}

// p21PORewrite rewrites the duplicate-PO vendor message into the friendly
// templated one, echoing the rejected PO number.
var p21PORewrite = RewriteRule{
	Pattern:  regexp.MustCompile(`Customer PO# Already Exists.*RequestCustPo:\s*(\S+)`),
	Template: "Purchase order number $1 has already been used on a previous order. Please enter a unique PO number.",
}

// newP21Profile builds the declarative validator profile for Prophet 21.
func newP21Profile() *Profile {
	return &Profile{
		Backend:            p21BackendName,
		Wire:               WireJSON,
		ErrorField:         "error",
		DescriptionField:   "error_description",
		EnvelopeField:      "response",
		VendorMessageField: "cErrorMessage",
		Rewrites:           []RewriteRule{p21PORewrite},
	}
}
