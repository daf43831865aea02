// Package templates holds the compiled-in document templates and the
// registry that resolves them by name.
//
// Each Descriptor pairs a payload schema with an html/template body. The
// schema is the single source of truth for what a payload may contain;
// rendering decodes the validated payload into the template's typed props
// and executes the body with contextual escaping. Rich-content fields are
// rendered through the richtext package before they reach the template.
//
// The registry is built once and never mutated.
package templates
