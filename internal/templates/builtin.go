package templates

import "github.com/alnah/go-tmpl2pdf/internal/schema"

// Built-in template names.
const (
	Lebenslauf0001 = "lebenslauf_0001"
	Lebenslauf0002 = "lebenslauf_0002"
	Lebenslauf0003 = "lebenslauf_0003"
)

// Section type tags for lebenslauf_0003.
const (
	SectionCustom     = "custom"
	SectionExperience = "experience"
	SectionEducation  = "education"
	SectionList       = "list"
)

// ResumeProps is the payload of lebenslauf_0001 and lebenslauf_0002.
type ResumeProps struct {
	Name     string   `json:"name"`
	Title    string   `json:"title"`
	Email    string   `json:"email"`
	Location string   `json:"location"`
	Summary  string   `json:"summary"`
	Skills   []string `json:"skills"`
}

// SectionedProps is the payload of lebenslauf_0003.
type SectionedProps struct {
	Name     string    `json:"name"`
	Title    string    `json:"title"`
	Email    string    `json:"email"`
	Location string    `json:"location"`
	Phone    string    `json:"phone"`
	Summary  string    `json:"summary"`
	Skills   []string  `json:"skills"`
	Sections []Section `json:"sections"`
}

// Section is one variant of the sections union. Only the fields of its
// Type are populated.
type Section struct {
	Type    string        `json:"type"`
	Title   string        `json:"title"`
	Body    string        `json:"body"`
	Items   []SectionItem `json:"items"`
	Entries []string      `json:"entries"`
}

// SectionItem is an experience or education entry.
type SectionItem struct {
	Role         string `json:"role"`
	Organization string `json:"organization"`
	Degree       string `json:"degree"`
	Institution  string `json:"institution"`
	Period       string `json:"period"`
	Description  string `json:"description"`
}

// resumeSchema is shared by the two original résumé layouts.
func resumeSchema() *schema.ObjectType {
	return schema.Object(
		schema.Required("name", schema.String().Min(1)),
		schema.Optional("title", schema.String()),
		schema.Required("email", schema.String().Email()),
		schema.Optional("location", schema.String()),
		schema.Optional("summary", schema.String()),
		schema.Default("skills", schema.Array(schema.String()), []any{}),
	)
}

// SectionSchema is the discriminated union of lebenslauf_0003 sections.
// Elements without "type" are custom sections.
func SectionSchema() *schema.DiscriminatedType {
	return schema.Discriminated("type",
		schema.Variant{Tag: SectionCustom, Object: schema.Object(
			schema.Required("type", schema.Literal(SectionCustom)),
			schema.Required("title", schema.String().Min(1)),
			schema.Required("body", schema.String().Min(1).Rich()),
		)},
		schema.Variant{Tag: SectionExperience, Object: schema.Object(
			schema.Required("type", schema.Literal(SectionExperience)),
			schema.Required("title", schema.String().Min(1)),
			schema.Required("items", schema.Array(schema.Object(
				schema.Required("role", schema.String().Min(1)),
				schema.Required("organization", schema.String().Min(1)),
				schema.Optional("period", schema.String()),
				schema.Optional("description", schema.String().Rich()),
			))),
		)},
		schema.Variant{Tag: SectionEducation, Object: schema.Object(
			schema.Required("type", schema.Literal(SectionEducation)),
			schema.Required("title", schema.String().Min(1)),
			schema.Required("items", schema.Array(schema.Object(
				schema.Required("degree", schema.String().Min(1)),
				schema.Required("institution", schema.String().Min(1)),
				schema.Optional("period", schema.String()),
			))),
		)},
		schema.Variant{Tag: SectionList, Object: schema.Object(
			schema.Required("type", schema.Literal(SectionList)),
			schema.Required("title", schema.String().Min(1)),
			schema.Required("entries", schema.Array(schema.String())),
		)},
	).DefaultTag(SectionCustom)
}

func sectionedSchema() *schema.ObjectType {
	return schema.Object(
		schema.Required("name", schema.String().Min(1)),
		schema.Required("email", schema.String().Email()),
		schema.Optional("title", schema.String()),
		schema.Optional("location", schema.String()),
		schema.Optional("phone", schema.String()),
		schema.Optional("summary", schema.String().Rich()),
		schema.Default("skills", schema.Array(schema.String()), []any{}),
		schema.Default("sections", schema.Array(SectionSchema()), []any{}),
	)
}

func builtins() []*Descriptor {
	return []*Descriptor{
		newDescriptor[ResumeProps](Lebenslauf0001, "Lebenslauf", resumeSchema()),
		newDescriptor[ResumeProps](Lebenslauf0002, "Lebenslauf", resumeSchema()),
		newDescriptor[SectionedProps](Lebenslauf0003, "Lebenslauf", sectionedSchema()),
	}
}
