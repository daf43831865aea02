package schema

import (
	"fmt"
	"sort"

	"github.com/getkin/kin-openapi/openapi3"
)

// Field declares one object key.
type Field struct {
	Name     string
	Type     Type
	Optional bool

	// Default is used when the key is absent. It is normalized through Type,
	// so every payload receives a fresh copy.
	Default    any
	hasDefault bool
}

// Required declares a key that must be present.
func Required(name string, t Type) Field {
	return Field{Name: name, Type: t}
}

// Optional declares a key that may be absent; absent keys stay absent.
func Optional(name string, t Type) Field {
	return Field{Name: name, Type: t, Optional: true}
}

// Default declares an optional key that takes def when absent.
func Default(name string, t Type, def any) Field {
	return Field{Name: name, Type: t, Optional: true, Default: def, hasDefault: true}
}

// ObjectType validates JSON objects. Objects are strict: undeclared keys are
// violations.
type ObjectType struct {
	fields []Field
	byName map[string]int
}

// Object returns a strict object type with the given fields. Field order is
// the order issues are reported in. Duplicate names panic.
func Object(fields ...Field) *ObjectType {
	o := &ObjectType{
		fields: fields,
		byName: make(map[string]int, len(fields)),
	}
	for i, f := range fields {
		if _, dup := o.byName[f.Name]; dup {
			panic(fmt.Sprintf("schema: duplicate field %q", f.Name))
		}
		o.byName[f.Name] = i
	}
	return o
}

// Fields returns the declared fields in order.
func (o *ObjectType) Fields() []Field {
	return append([]Field(nil), o.fields...)
}

// Field returns the declared field called name.
func (o *ObjectType) Field(name string) (Field, bool) {
	i, ok := o.byName[name]
	if !ok {
		return Field{}, false
	}
	return o.fields[i], true
}

func (o *ObjectType) check(path []string, value any) (any, []Issue) {
	obj, ok := value.(map[string]any)
	if !ok {
		return nil, []Issue{invalidType(path, "object", value)}
	}

	out := make(map[string]any, len(o.fields))
	var issues []Issue

	for _, f := range o.fields {
		fieldPath := child(path, f.Name)
		v, present := obj[f.Name]
		if !present {
			switch {
			case f.hasDefault:
				def, errs := f.Type.check(fieldPath, f.Default)
				if len(errs) > 0 {
					panic(fmt.Sprintf("schema: default for %q does not satisfy its type: %v", joinPath(fieldPath), errs))
				}
				out[f.Name] = def
			case !f.Optional:
				issues = append(issues, Issue{
					Path:    joinPath(fieldPath),
					Code:    CodeRequired,
					Message: "Required",
				})
			}
			continue
		}

		normalized, errs := f.Type.check(fieldPath, v)
		issues = append(issues, errs...)
		out[f.Name] = normalized
	}

	var unknown []string
	for key := range obj {
		if _, declared := o.byName[key]; !declared {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)
	for _, key := range unknown {
		issues = append(issues, Issue{
			Path:    joinPath(child(path, key)),
			Code:    CodeUnrecognizedKeys,
			Message: fmt.Sprintf("Unrecognized key in object: %q", key),
		})
	}

	return out, issues
}

// OpenAPI implements Type.
func (o *ObjectType) OpenAPI() *openapi3.Schema {
	out := openapi3.NewObjectSchema()
	out.Properties = make(openapi3.Schemas, len(o.fields))
	for _, f := range o.fields {
		prop := f.Type.OpenAPI()
		if f.hasDefault {
			prop.Default = f.Default
		}
		out.Properties[f.Name] = openapi3.NewSchemaRef("", prop)
		if !f.Optional {
			out.Required = append(out.Required, f.Name)
		}
	}
	out.AdditionalProperties = openapi3.AdditionalProperties{Has: openapi3.BoolPtr(false)}
	return out
}
