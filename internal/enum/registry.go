package enum

import (
	"reflect"
	"sort"
	"sync"
)

// Registry maps Go types to their descriptors so codecs can recognise enum
// types they meet through reflection.
type Registry struct {
	mu     sync.RWMutex
	byType map[reflect.Type]Descriptor
}

func NewRegistry() *Registry {
	return &Registry{byType: make(map[reflect.Type]Descriptor)}
}

// Register adds or replaces the descriptor for d.Type.
func (r *Registry) Register(d Descriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byType[d.Type] = d
}

func (r *Registry) Lookup(t reflect.Type) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.byType[t]
	return d, ok
}

// Types lists the registered types sorted by name.
func (r *Registry) Types() []reflect.Type {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]reflect.Type, 0, len(r.byType))
	for t := range r.byType {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i].String() < types[j].String() })
	return types
}
