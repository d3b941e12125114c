package provider

import "sync"

// Registry manages history provider plugins
type Registry struct {
	mu        sync.RWMutex
	providers map[string]History
}

// NewRegistry creates a new provider registry
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]History),
	}
}

// Register adds a provider to the registry
func (r *Registry) Register(p History) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.Name()] = p
}

// Get retrieves a provider by name
func (r *Registry) Get(name string) (History, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[name]
	return p, ok
}

// GetAll returns all registered providers
func (r *Registry) GetAll() []History {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]History, 0, len(r.providers))
	for _, p := range r.providers {
		result = append(result, p)
	}
	return result
}
