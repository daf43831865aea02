// Package schema validates template payloads against strict, declarative schemas.
//
// A schema is built from a small set of types:
//
//	profile := schema.Object(
//	    schema.Required("name", schema.String().Min(1)),
//	    schema.Required("email", schema.String().Email()),
//	    schema.Optional("summary", schema.String().Rich()),
//	    schema.Default("skills", schema.Array(schema.String()), []any{}),
//	)
//
//	props, issues := schema.Validate(profile, payload)
//
// Objects are strict: keys that the schema does not declare are reported as
// violations instead of being dropped. Validation never stops at the first
// problem; every issue is returned with a dot-separated path, a machine
// readable code and a message, in schema field order.
//
// Discriminated unions pick an object variant from a tag field. A default tag
// can be configured; it is applied to elements that omit the tag before the
// discriminant is evaluated.
//
// Every type can describe itself as an OpenAPI schema (kin-openapi), which is
// how payload contracts are published to clients.
package schema
