package signal

import (
	"fmt"
	"sort"
	"sync"
)

// Registry resolves device paths such as "ION_Pump_PS.I_I" to signals.
type Registry struct {
	mu      sync.RWMutex
	signals map[string]Signal
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{signals: make(map[string]Signal)}
}

// Add registers a signal under its path.
func (r *Registry) Add(path string, s Signal) error {
	if s == nil {
		return fmt.Errorf("signal for %q is nil", path)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.signals[path]; exists {
		return fmt.Errorf("signal %q already registered", path)
	}
	r.signals[path] = s
	return nil
}

// Lookup returns the signal registered at path.
func (r *Registry) Lookup(path string) (Signal, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.signals[path]
	return s, ok
}

// Paths lists registered paths in sorted order.
func (r *Registry) Paths() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	paths := make([]string, 0, len(r.signals))
	for p := range r.signals {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
