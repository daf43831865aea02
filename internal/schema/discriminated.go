package schema

import (
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// Variant is one branch of a discriminated union.
type Variant struct {
	Tag    string
	Object *ObjectType
}

// DiscriminatedType selects an object variant by the value of a tag key.
type DiscriminatedType struct {
	key        string
	defaultTag string
	variants   []Variant
	byTag      map[string]*ObjectType
}

// Discriminated returns a union keyed by key. Each variant object should
// declare key as a Literal of its tag.
func Discriminated(key string, variants ...Variant) *DiscriminatedType {
	d := &DiscriminatedType{
		key:      key,
		variants: variants,
		byTag:    make(map[string]*ObjectType, len(variants)),
	}
	for _, v := range variants {
		d.byTag[v.Tag] = v.Object
	}
	return d
}

// DefaultTag sets the tag assigned to elements that omit the key.
func (d *DiscriminatedType) DefaultTag(tag string) *DiscriminatedType {
	if _, ok := d.byTag[tag]; !ok {
		panic(fmt.Sprintf("schema: default tag %q has no variant", tag))
	}
	c := *d
	c.defaultTag = tag
	return &c
}

// Preprocess applies the default tag to an element that has none. It runs
// before discrimination and is idempotent. Non-object values are returned
// unchanged. The input map is never mutated.
func (d *DiscriminatedType) Preprocess(value any) any {
	obj, ok := value.(map[string]any)
	if !ok || d.defaultTag == "" {
		return value
	}
	if _, has := obj[d.key]; has {
		return value
	}
	tagged := make(map[string]any, len(obj)+1)
	for k, v := range obj {
		tagged[k] = v
	}
	tagged[d.key] = d.defaultTag
	return tagged
}

func (d *DiscriminatedType) check(path []string, value any) (any, []Issue) {
	value = d.Preprocess(value)

	obj, ok := value.(map[string]any)
	if !ok {
		return nil, []Issue{invalidType(path, "object", value)}
	}

	tag, _ := obj[d.key].(string)
	variant, ok := d.byTag[tag]
	if !ok {
		return nil, []Issue{{
			Path:    joinPath(child(path, d.key)),
			Code:    CodeInvalidDiscriminator,
			Message: "Invalid discriminator value. Expected " + d.expected(),
		}}
	}
	return variant.check(path, obj)
}

func (d *DiscriminatedType) expected() string {
	tags := make([]string, len(d.variants))
	for i, v := range d.variants {
		tags[i] = "'" + v.Tag + "'"
	}
	return strings.Join(tags, " | ")
}

// OpenAPI implements Type.
func (d *DiscriminatedType) OpenAPI() *openapi3.Schema {
	branches := make([]*openapi3.Schema, len(d.variants))
	for i, v := range d.variants {
		branches[i] = v.Object.OpenAPI()
	}
	out := openapi3.NewOneOfSchema(branches...)
	out.Discriminator = &openapi3.Discriminator{PropertyName: d.key}
	if d.defaultTag != "" {
		out.Description = fmt.Sprintf("Elements without %q are treated as %q.", d.key, d.defaultTag)
	}
	return out
}
