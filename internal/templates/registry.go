package templates

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Sentinel errors for template lookup.
var (
	ErrNotFound  = errors.New("template not found")
	ErrEmptyName = errors.New("template name is required")
)

// Registry maps template names to descriptors. Read-only after construction.
type Registry struct {
	byName map[string]*Descriptor
	names  []string
}

// NewRegistry builds a registry from descriptors. Names must be unique and
// non-blank.
func NewRegistry(descs ...*Descriptor) (*Registry, error) {
	r := &Registry{byName: make(map[string]*Descriptor, len(descs))}
	for _, d := range descs {
		if strings.TrimSpace(d.Name) == "" {
			return nil, fmt.Errorf("%w: blank descriptor name", ErrEmptyName)
		}
		if _, dup := r.byName[d.Name]; dup {
			return nil, fmt.Errorf("duplicate template %q", d.Name)
		}
		r.byName[d.Name] = d
		r.names = append(r.names, d.Name)
	}
	sort.Strings(r.names)
	return r, nil
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the registry of built-in templates.
func Default() *Registry {
	defaultOnce.Do(func() {
		r, err := NewRegistry(builtins()...)
		if err != nil {
			panic(err)
		}
		defaultRegistry = r
	})
	return defaultRegistry
}

// Lookup resolves name. Only "" returns ErrEmptyName; any other unregistered
// name, whitespace included, returns ErrNotFound. Every call for the same name
// returns the same descriptor.
func (r *Registry) Lookup(name string) (*Descriptor, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	d, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return d, nil
}

// Names returns the registered names in ascending order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}
