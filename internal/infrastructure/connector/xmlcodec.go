package connector

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"reflect"
	"sort"
	"strings"

	"github.com/erplink/backend/internal/domain/erp"
)

// xmlNode is the intermediate parse tree. Children keep document order so
// repeated sibling elements convert into ordered sequences.
type xmlNode struct {
	name     string
	text     string
	children []*xmlNode
}

// parseXML tokenizes the document, collecting every parser-reported error
// instead of aborting on the first. A nil node with a non-empty error list
// means the document was unusable.
func parseXML(body string) (*xmlNode, []string) {
	decoder := xml.NewDecoder(strings.NewReader(body))

	var parseErrors []string
	var root *xmlNode
	var stack []*xmlNode

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			parseErrors = append(parseErrors, err.Error())
			break
		}

		switch t := tok.(type) {
		case xml.StartElement:
			node := &xmlNode{name: t.Name.Local}
			if len(stack) == 0 {
				if root != nil {
					parseErrors = append(parseErrors, "multiple root elements")
				} else {
					root = node
				}
			} else {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, node)
			}
			stack = append(stack, node)
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text += string(t)
			}
		}
	}

	if root == nil && len(parseErrors) == 0 {
		parseErrors = append(parseErrors, "no root element")
	}
	if len(stack) > 0 {
		parseErrors = append(parseErrors, fmt.Sprintf("unclosed element %q", stack[len(stack)-1].name))
	}
	if len(parseErrors) > 0 {
		return nil, parseErrors
	}
	return root, nil
}

// nodeToValue converts a parse tree into the normalized nested structure:
// leaf elements become trimmed strings, containers become maps, and repeated
// sibling elements become []any in document order.
func nodeToValue(n *xmlNode) any {
	if len(n.children) == 0 {
		return strings.TrimSpace(n.text)
	}

	m := make(map[string]any)
	for _, child := range n.children {
		value := nodeToValue(child)
		existing, ok := m[child.name]
		if !ok {
			m[child.name] = value
			continue
		}
		if seq, isSeq := existing.([]any); isSeq {
			m[child.name] = append(seq, value)
		} else {
			m[child.name] = []any{existing, value}
		}
	}
	return m
}

// encodeValue re-encodes a normalized structure as XML. Map keys are emitted
// in sorted order so the encoding is deterministic; sequences are emitted as
// repeated siblings in order.
func encodeValue(buf *bytes.Buffer, name string, v any) {
	switch value := v.(type) {
	case map[string]any:
		buf.WriteString("<" + name + ">")
		keys := make([]string, 0, len(value))
		for k := range value {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			encodeValue(buf, k, value[k])
		}
		buf.WriteString("</" + name + ">")
	case []any:
		for _, item := range value {
			encodeValue(buf, name, item)
		}
	case string:
		buf.WriteString("<" + name + ">")
		_ = xml.EscapeText(buf, []byte(value))
		buf.WriteString("</" + name + ">")
	default:
		buf.WriteString("<" + name + ">")
		_ = xml.EscapeText(buf, []byte(fmt.Sprintf("%v", value)))
		buf.WriteString("</" + name + ">")
	}
}

// decodeXML parses an XML response body into the normalized nested map form
// and verifies the conversion by re-encoding and re-decoding it. Either
// failure classifies as a malformed response with every parser message
// space-joined and trimmed.
func decodeXML(body string) (erp.Result, *erp.Error) {
	root, parseErrors := parseXML(body)
	if len(parseErrors) > 0 {
		return nil, erp.NewMalformedResponse(strings.TrimSpace(strings.Join(parseErrors, " ")))
	}

	value := nodeToValue(root)
	m, ok := value.(map[string]any)
	if !ok {
		// Scalar root document: wrap under the root element name.
		m = map[string]any{root.name: value}
	}

	// Round-trip consistency check.
	var buf bytes.Buffer
	encodeValue(&buf, root.name, value)
	recheck, recheckErrors := parseXML(buf.String())
	if len(recheckErrors) > 0 {
		return nil, erp.NewMalformedResponse(strings.TrimSpace(strings.Join(recheckErrors, " ")))
	}
	if !reflect.DeepEqual(nodeToValue(recheck), value) {
		return nil, erp.NewMalformedResponse("XML response failed round-trip verification")
	}

	return erp.Result(m), nil
}
