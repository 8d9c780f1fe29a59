package template

import (
	"fmt"
	"strings"
)

// Registry is an insertion-ordered in-memory template store keyed by
// "category:id".
//
// Registry is not safe for concurrent mutation. Build it up front, then
// share it read-only.
type Registry struct {
	keys      []string
	templates map[string]*Template
	byID      map[string]string // id -> category
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		templates: make(map[string]*Template),
		byID:      make(map[string]string),
	}
}

// Register stores t and returns its id.
//
// Registering the same (category, id) again replaces the stored template
// but keeps its original position. Registering an id that already exists
// under another category fails with *DuplicateCategoryMismatchError.
func (r *Registry) Register(t *Template) (string, error) {
	if t == nil {
		return "", fmt.Errorf("register: nil template")
	}
	if t.ID == "" || t.Category == "" {
		return "", fmt.Errorf("register: template needs both id and category (got %q)", t.Key())
	}
	if existing, ok := r.byID[t.ID]; ok && existing != t.Category {
		return "", &DuplicateCategoryMismatchError{ID: t.ID, Existing: existing, Incoming: t.Category}
	}

	stored := *t
	key := stored.Key()
	if _, ok := r.templates[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.templates[key] = &stored
	r.byID[t.ID] = t.Category
	return t.ID, nil
}

// MustRegister is like Register but panics on error.
// Use only in tests or with built-in templates.
func (r *Registry) MustRegister(t *Template) {
	if _, err := r.Register(t); err != nil {
		panic(err)
	}
}

// Get returns the template registered as (category, id).
func (r *Registry) Get(category, id string) (*Template, error) {
	t, ok := r.templates[Key(category, id)]
	if !ok {
		return nil, fmt.Errorf("%s: %w", Key(category, id), ErrNotFound)
	}
	return t, nil
}

// Lookup finds a template by bare id or by "category:id".
func (r *Registry) Lookup(ref string) (*Template, error) {
	if category, id, ok := strings.Cut(ref, ":"); ok {
		return r.Get(category, id)
	}
	category, ok := r.byID[ref]
	if !ok {
		return nil, fmt.Errorf("%s: %w", ref, ErrNotFound)
	}
	return r.templates[Key(category, ref)], nil
}

// ByCategory returns the templates of a category in insertion order.
// The result is empty, never nil, when the category is unknown.
func (r *Registry) ByCategory(category string) []*Template {
	out := []*Template{}
	for _, key := range r.keys {
		if t := r.templates[key]; t.Category == category {
			out = append(out, t)
		}
	}
	return out
}

// ResolveSelector interprets a placement selector: an exact template id
// (bare or "category:id") wins; otherwise the selector names a category.
// An unknown selector yields an empty slice.
func (r *Registry) ResolveSelector(selector string) []*Template {
	if t, err := r.Lookup(selector); err == nil {
		return []*Template{t}
	}
	return r.ByCategory(selector)
}

// Categories returns categories in order of first registration.
func (r *Registry) Categories() []string {
	var out []string
	seen := make(map[string]bool)
	for _, key := range r.keys {
		c := r.templates[key].Category
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}

// All returns every template in insertion order.
func (r *Registry) All() []*Template {
	out := make([]*Template, len(r.keys))
	for i, key := range r.keys {
		out[i] = r.templates[key]
	}
	return out
}

// Len returns the number of registered templates.
func (r *Registry) Len() int {
	return len(r.keys)
}
