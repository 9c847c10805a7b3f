package connector

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/erplink/backend/internal/domain/erp"
)

// WireFormat selects how a backend's raw responses arrive.
type WireFormat string

const (
	// WireXML means the transport returns raw XML text
	WireXML WireFormat = "xml"
	// WireJSON means the transport returns raw JSON text
	WireJSON WireFormat = "json"
	// WireDecoded means the transport already decoded the body
	WireDecoded WireFormat = "decoded"
)

// maxResponseSize is the maximum allowed ERP response size (10MB)
const maxResponseSize = 10 * 1024 * 1024

// htmlBodyPattern detects an HTML error page standing in for a real response.
var htmlBodyPattern = regexp.MustCompile(`(?i)<body[\s>]`)

// htmlHeadingPattern extracts the first <h2> heading of an HTML error page.
var htmlHeadingPattern = regexp.MustCompile(`(?is)<h2[^>]*>(.*?)</h2>`)

// RewriteRule rewrites a known vendor error message into a friendlier
// templated one. Template may reference capture groups ($1, $2, ...).
type RewriteRule struct {
	Pattern  *regexp.Regexp
	Template string
}

// Profile drives the generic response validator for one backend. The control
// flow is identical across vendors; the quirks (wire format, error-field
// names, rewrite rules, an optional override hook) live here declaratively.
type Profile struct {
	// Backend is the backend code reported with classified errors
	Backend string
	// Wire selects the raw response format
	Wire WireFormat
	// ErrorField is the top-level error key (typically "error")
	ErrorField string
	// DescriptionField accompanies ErrorField on token grants
	DescriptionField string
	// EnvelopeField names a nested response envelope to unwrap
	EnvelopeField string
	// VendorMessageField names the vendor error-message field inside the envelope
	VendorMessageField string
	// Rewrites are tried in order against the vendor message; first match wins
	Rewrites []RewriteRule
	// Hook runs backend-specific checks on the decoded structure before return
	Hook func(erp.Result) *erp.Error
}

// Validate classifies a raw wire response. It returns the normalized result
// or exactly one classified error; it never panics and never propagates a
// transport or parser error unclassified.
func (p *Profile) Validate(raw any) (erp.Result, *erp.Error) {
	var decoded map[string]any

	switch body := raw.(type) {
	case nil:
		return nil, erp.NewEmptyResponse("")
	case []byte:
		return p.Validate(string(body))
	case string:
		if strings.TrimSpace(body) == "" {
			return nil, erp.NewEmptyResponse(body)
		}
		if htmlBodyPattern.MatchString(body) {
			return nil, erp.NewMalformedResponse(extractHTMLHeading(body))
		}
		if p.Wire == WireXML {
			result, verr := decodeXML(body)
			if verr != nil {
				return nil, verr
			}
			decoded = result
		} else {
			if err := json.Unmarshal([]byte(body), &decoded); err != nil {
				return nil, erp.NewMalformedResponse(fmt.Sprintf("Unable to decode ERP response: %s", err.Error()))
			}
		}
	case map[string]any:
		if len(body) == 0 {
			return nil, erp.NewEmptyResponse("")
		}
		decoded = body
	case erp.Result:
		return p.Validate(map[string]any(body))
	default:
		return nil, erp.NewMalformedResponse(fmt.Sprintf("Unsupported response type %T", raw))
	}

	return p.classify(decoded)
}

// Run validates raw inside its own boundary: a classified error is handed to
// the reporter and the caller receives an empty result in its place.
func (p *Profile) Run(ctx context.Context, reporter erp.ErrorReporter, raw any) erp.Result {
	result, verr := p.Validate(raw)
	if verr != nil {
		reporter.Report(ctx, p.Backend, verr)
		return erp.Empty()
	}
	return result
}

// classify applies the error-field and envelope rules to a decoded structure.
func (p *Profile) classify(decoded map[string]any) (erp.Result, *erp.Error) {
	if p.ErrorField != "" {
		if verr := p.classifyErrorField(decoded); verr != nil {
			return nil, verr
		}
	}

	result := erp.Result(decoded)

	// Unwrap the nested response envelope when present.
	if p.EnvelopeField != "" {
		if envelope, ok := decoded[p.EnvelopeField].(map[string]any); ok {
			result = erp.Result(envelope)
		}
	}

	if p.VendorMessageField != "" {
		if msg, ok := result[p.VendorMessageField].(string); ok {
			if msg != "" {
				rewritten := p.rewrite(msg)
				return nil, erp.NewVendorValidation(rewritten, msg, 422)
			}
			// The empty error-message field is stripped from the success path.
			delete(result, p.VendorMessageField)
		}
	}

	if p.Hook != nil {
		if verr := p.Hook(result); verr != nil {
			return nil, verr
		}
	}

	return result, nil
}

// classifyErrorField inspects the top-level error field for the known
// failure shapes.
func (p *Profile) classifyErrorField(decoded map[string]any) *erp.Error {
	value, present := decoded[p.ErrorField]
	if !present {
		return nil
	}

	switch v := value.(type) {
	case string:
		switch v {
		case "Unauthorized":
			return erp.NewUnauthorized()
		case "invalid_grant":
			description, _ := decoded[p.DescriptionField].(string)
			return erp.NewInvalidCredentials(description)
		default:
			return erp.NewUnexpected(v)
		}
	case []any:
		if len(v) == 0 {
			return nil
		}
		entry, _ := v[0].(map[string]any)
		message, _ := entry["message"].(string)
		code := 422
		switch c := entry["code"].(type) {
		case float64:
			code = int(c)
		case int:
			code = c
		}
		return erp.NewVendorValidation(message, message, code)
	default:
		return erp.NewUnexpected(fmt.Sprintf("%v", v))
	}
}

// rewrite applies the first matching rewrite rule; an unmatched vendor
// message passes through verbatim.
func (p *Profile) rewrite(message string) string {
	for _, rule := range p.Rewrites {
		if m := rule.Pattern.FindStringSubmatchIndex(message); m != nil {
			return string(rule.Pattern.ExpandString(nil, rule.Template, message, m))
		}
	}
	return message
}

// extractHTMLHeading pulls the first <h2> text out of an HTML error page,
// defaulting to "Invalid Response" when the page has none.
func extractHTMLHeading(body string) string {
	if m := htmlHeadingPattern.FindStringSubmatch(body); m != nil {
		heading := strings.TrimSpace(m[1])
		if heading != "" {
			return heading
		}
	}
	return "Invalid Response"
}
