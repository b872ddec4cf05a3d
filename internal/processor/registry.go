package processor

import (
	"fmt"
	"sort"
	"sync"
)

type Registry struct {
	processors   map[string]Processor
	contentTypes map[string][]Processor
	mu           sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{
		processors:   make(map[string]Processor),
		contentTypes: make(map[string][]Processor),
	}
}

// Register adds p under name. Registering a name twice replaces the
// earlier processor, including its content-type entries.
func (r *Registry) Register(name string, p Processor) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.processors[name]; ok {
		for _, ct := range old.SupportedTypes() {
			r.contentTypes[ct] = without(r.contentTypes[ct], old)
		}
	}

	r.processors[name] = p
	for _, ct := range p.SupportedTypes() {
		r.contentTypes[ct] = append(r.contentTypes[ct], p)
	}
}

func (r *Registry) Get(name string) (Processor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.processors[name]
	return p, ok
}

func (r *Registry) GetForContentType(contentType string) []Processor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]Processor(nil), r.contentTypes[contentType]...)
}

// Find returns the processor called name among those handling contentType.
func (r *Registry) Find(contentType, name string) (Processor, error) {
	for _, p := range r.GetForContentType(contentType) {
		if p.Name() == name {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: no %s processor for %s", ErrUnsupportedType, name, contentType)
}

// List returns the registered names in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.processors))
	for name := range r.processors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) GetOrError(name string) (Processor, error) {
	p, exists := r.Get(name)
	if !exists {
		return nil, fmt.Errorf("%w: processor not registered: %s", ErrInvalidConfig, name)
	}
	return p, nil
}

func without(list []Processor, p Processor) []Processor {
	out := list[:0]
	for _, item := range list {
		if item != p {
			out = append(out, item)
		}
	}
	return out
}

var DefaultRegistry = NewRegistry()
