// Package tree discovers the transitive contents of a source folder.
package tree

import "github.com/lherron/gxcopy/internal/domain"

// ParentRef records one folder that references an item as a child.
// Path is the slash-joined chain of folder names from the walk root to the
// parent, for display only.
type ParentRef struct {
	ID       string `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	Path     string `json:"path" yaml:"path"`
	ViewLink string `json:"view_link,omitempty" yaml:"view_link,omitempty"`
}

// Entry is the single record kept for an item no matter how many folders
// reference it.
type Entry struct {
	Item    domain.Item
	Parents []ParentRef

	// Destination is the counterpart folder created during a migration run.
	Destination *domain.Item
}

// Registry maps item ids to entries and remembers first-discovery order.
type Registry struct {
	entries map[string]*Entry
	order   []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*Entry)}
}

// Get returns the entry for id.
func (r *Registry) Get(id string) (*Entry, bool) {
	e, ok := r.entries[id]
	return e, ok
}

// Len returns the number of distinct items.
func (r *Registry) Len() int {
	return len(r.order)
}

// Entries returns all entries in first-discovery order.
func (r *Registry) Entries() []*Entry {
	out := make([]*Entry, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.entries[id])
	}
	return out
}

// register inserts it unless already present. It reports whether the entry is new.
func (r *Registry) register(it domain.Item) (*Entry, bool) {
	if e, ok := r.entries[it.ID]; ok {
		return e, false
	}
	e := &Entry{Item: it}
	r.entries[it.ID] = e
	r.order = append(r.order, it.ID)
	return e, true
}
