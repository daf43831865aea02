package schema

import (
	"fmt"
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/getkin/kin-openapi/openapi3"
)

// emailPattern accepts the common address shape: local part, "@", dotted
// domain with an alphabetic TLD. Leading dots and ".." are rejected separately.
var emailPattern = regexp.MustCompile(`^[A-Za-z0-9_'+\-.]*[A-Za-z0-9_+\-]@([A-Za-z0-9][A-Za-z0-9\-]*\.)+[A-Za-z]{2,}$`)

// unsafePattern matches constructs that introduce script execution or
// embedded browsing contexts when text is interpreted as markup.
var unsafePattern = regexp.MustCompile(`(?i)<\s*/?\s*(script|iframe|object|embed|frame|frameset|base|meta|link|style)\b|(javascript|vbscript|livescript)\s*:|data\s*:\s*text/html|<[^>]*[\s/]on[a-z]+\s*=`)

// obfuscation removes the characters browsers ignore inside URL schemes.
var obfuscation = strings.NewReplacer("\t", "", "\r", "", "\n", "")

// findUnsafe returns the first script-introducing construct in s, looking
// at the text as written and with entities decoded and tabs and newlines
// removed.
func findUnsafe(s string) string {
	if m := unsafePattern.FindString(s); m != "" {
		return m
	}
	return unsafePattern.FindString(obfuscation.Replace(html.UnescapeString(s)))
}

// StringType validates JSON strings.
type StringType struct {
	min   int
	email bool
	rich  bool
}

// String returns a string type with no constraints.
func String() *StringType {
	return &StringType{}
}

// Min requires at least n characters.
func (s *StringType) Min(n int) *StringType {
	c := *s
	c.min = n
	return &c
}

// Email requires an e-mail address.
func (s *StringType) Email() *StringType {
	c := *s
	c.email = true
	return &c
}

// Rich marks the string as pre-formatted rich content (Markdown). Rich content
// is rejected when it contains script-introducing constructs.
func (s *StringType) Rich() *StringType {
	c := *s
	c.rich = true
	return &c
}

// IsRich reports whether the string carries rich content.
func (s *StringType) IsRich() bool { return s.rich }

func (s *StringType) check(path []string, value any) (any, []Issue) {
	str, ok := value.(string)
	if !ok {
		return nil, []Issue{invalidType(path, "string", value)}
	}

	var issues []Issue
	if s.min > 0 && utf8.RuneCountInString(str) < s.min {
		issues = append(issues, Issue{
			Path:    joinPath(path),
			Code:    CodeTooSmall,
			Message: fmt.Sprintf("String must contain at least %d character(s)", s.min),
		})
	}
	if s.email && !isEmail(str) {
		issues = append(issues, Issue{
			Path:    joinPath(path),
			Code:    CodeInvalidString,
			Message: "Invalid email",
		})
	}
	if s.rich {
		if m := findUnsafe(str); m != "" {
			issues = append(issues, Issue{
				Path:    joinPath(path),
				Code:    CodeUnsafeContent,
				Message: fmt.Sprintf("Rich content must not contain script-introducing markup (found %q)", strings.TrimSpace(m)),
			})
		}
	}
	return str, issues
}

func isEmail(s string) bool {
	if strings.HasPrefix(s, ".") || strings.Contains(s, "..") {
		return false
	}
	return emailPattern.MatchString(s)
}

// OpenAPI implements Type.
func (s *StringType) OpenAPI() *openapi3.Schema {
	out := openapi3.NewStringSchema()
	if s.min > 0 {
		out.MinLength = uint64(s.min)
	}
	if s.email {
		out.Format = "email"
	}
	if s.rich {
		out.Format = "markdown"
		out.Description = "Markdown subset. Raw HTML is not rendered; script-introducing constructs are rejected."
	}
	return out
}

// LiteralType accepts exactly one string value.
type LiteralType struct {
	value string
}

// Literal returns a type matching only value.
func Literal(value string) *LiteralType {
	return &LiteralType{value: value}
}

// Value returns the accepted value.
func (l *LiteralType) Value() string { return l.value }

func (l *LiteralType) check(path []string, value any) (any, []Issue) {
	str, ok := value.(string)
	if !ok {
		return nil, []Issue{invalidType(path, "string", value)}
	}
	if str != l.value {
		return nil, []Issue{{
			Path:    joinPath(path),
			Code:    CodeInvalidLiteral,
			Message: fmt.Sprintf("Invalid literal value, expected %q", l.value),
		}}
	}
	return str, nil
}

// OpenAPI implements Type.
func (l *LiteralType) OpenAPI() *openapi3.Schema {
	out := openapi3.NewStringSchema()
	out.Enum = []any{l.value}
	return out
}

// ArrayType validates JSON arrays whose elements share one type.
type ArrayType struct {
	items Type
}

// Array returns an array of items.
func Array(items Type) *ArrayType {
	return &ArrayType{items: items}
}

func (a *ArrayType) check(path []string, value any) (any, []Issue) {
	list, ok := value.([]any)
	if !ok {
		return nil, []Issue{invalidType(path, "array", value)}
	}

	out := make([]any, 0, len(list))
	var issues []Issue
	for i, item := range list {
		v, errs := a.items.check(index(path, i), item)
		issues = append(issues, errs...)
		out = append(out, v)
	}
	return out, issues
}

// OpenAPI implements Type.
func (a *ArrayType) OpenAPI() *openapi3.Schema {
	out := openapi3.NewArraySchema()
	out.Items = openapi3.NewSchemaRef("", a.items.OpenAPI())
	return out
}
