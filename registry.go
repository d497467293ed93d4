package structema

import (
	"reflect"
	"sync"
)

// Registry caches one Schema per record type and publishes it under the
// record's name so forward references ("Person" before Person is resolved)
// and recursive record graphs terminate. A process normally uses the package
// default registry; independent registries exist for tests and isolation.
type Registry struct {
	mu     sync.RWMutex
	byType map[reflect.Type]*Schema
	byName map[string]*Schema
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byType: map[reflect.Type]*Schema{},
		byName: map[string]*Schema{},
	}
}

var defaultRegistry = NewRegistry()

// DefaultRegistry returns the process-wide registry used by derive.
func DefaultRegistry() *Registry { return defaultRegistry }

// Lookup returns the schema registered under name, if any.
func (r *Registry) Lookup(name string) (*Schema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byName[name]
	return s, ok
}

// LookupType returns the schema cached for a record type, if any.
func (r *Registry) LookupType(t reflect.Type) (*Schema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byType[t]
	return s, ok
}

// Publish stores a schema under both its record type and name. Only bare
// derivations publish this way; the per-type entry is what later SchemaOf
// calls return, so it must stay the default-configured schema.
func (r *Registry) Publish(t reflect.Type, s *Schema) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byType[t] = s
	if s.Name() != "" {
		r.byName[s.Name()] = s
	}
}

// PublishNamed stores a schema under its name only, leaving the per-type
// cache untouched. Customized derivations register this way so by-name
// forward references resolve without their options leaking into bare
// derivation.
func (r *Registry) PublishNamed(s *Schema) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.Name() != "" {
		r.byName[s.Name()] = s
	}
}

// Lookup returns the schema registered under name in the default registry.
func Lookup(name string) (*Schema, bool) { return defaultRegistry.Lookup(name) }
