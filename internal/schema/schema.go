package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// Violation codes carried by Issue.Code.
const (
	CodeInvalidJSON          = "invalid_json"
	CodeInvalidType          = "invalid_type"
	CodeRequired             = "required"
	CodeTooSmall             = "too_small"
	CodeInvalidString        = "invalid_string"
	CodeUnrecognizedKeys     = "unrecognized_keys"
	CodeInvalidDiscriminator = "invalid_union_discriminator"
	CodeInvalidLiteral       = "invalid_literal"
	CodeUnsafeContent        = "unsafe_content"
	CodeTooBig               = "too_big"
)

// maxIssuesPerPayload bounds the issue list returned for one payload.
const maxIssuesPerPayload = 100

// Issue is a single field-level violation.
type Issue struct {
	Path    string `json:"path"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	if i.Path == "" {
		return fmt.Sprintf("%s: %s", i.Code, i.Message)
	}
	return fmt.Sprintf("%s: %s: %s", i.Path, i.Code, i.Message)
}

// Type is a node of a schema. Implementations are provided by this package.
type Type interface {
	// check validates value at path and returns its normalized form.
	// The normalized value is only meaningful when no issues are returned.
	check(path []string, value any) (any, []Issue)

	// OpenAPI describes the type as an OpenAPI schema.
	OpenAPI() *openapi3.Schema
}

// Validate decodes raw JSON and validates it against t.
// The top-level payload must be a JSON object. On success the normalized
// object (defaults applied, unknown keys impossible) is returned with no issues.
// Numbers are kept as json.Number so no precision is lost.
func Validate(t Type, raw []byte) (map[string]any, []Issue) {
	var payload any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&payload); err != nil {
		return nil, []Issue{{Code: CodeInvalidJSON, Message: "payload is not valid JSON: " + err.Error()}}
	}
	if dec.More() {
		return nil, []Issue{{Code: CodeInvalidJSON, Message: "payload contains trailing data after the JSON value"}}
	}
	return ValidateValue(t, payload)
}

// ValidateValue validates an already decoded JSON value against t.
func ValidateValue(t Type, value any) (map[string]any, []Issue) {
	normalized, issues := t.check(nil, value)
	if len(issues) > 0 {
		return nil, capIssues(issues)
	}
	obj, ok := normalized.(map[string]any)
	if !ok {
		return nil, []Issue{{Code: CodeInvalidType, Message: "Expected object, received " + typeName(value)}}
	}
	return obj, nil
}

// capIssues bounds the issue list so a hostile payload cannot produce an
// unbounded error response.
func capIssues(issues []Issue) []Issue {
	if len(issues) <= maxIssuesPerPayload {
		return issues
	}
	capped := append([]Issue(nil), issues[:maxIssuesPerPayload]...)
	return append(capped, Issue{
		Code:    CodeTooBig,
		Message: fmt.Sprintf("%d more issues omitted", len(issues)-maxIssuesPerPayload),
	})
}

func joinPath(path []string) string {
	return strings.Join(path, ".")
}

func child(path []string, key string) []string {
	next := make([]string, len(path), len(path)+1)
	copy(next, path)
	return append(next, key)
}

func index(path []string, i int) []string {
	return child(path, strconv.Itoa(i))
}

// typeName reports JSON type names the way clients see them.
func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case float64, json.Number:
		return "number"
	case bool:
		return "boolean"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func invalidType(path []string, want string, got any) Issue {
	return Issue{
		Path:    joinPath(path),
		Code:    CodeInvalidType,
		Message: fmt.Sprintf("Expected %s, received %s", want, typeName(got)),
	}
}
