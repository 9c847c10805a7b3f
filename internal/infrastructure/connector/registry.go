package connector

import (
	"sync"

	"github.com/erplink/backend/internal/domain/erp"
)

// Registry selects ERP backend adapters by name. The active backend is fixed
// at startup from configuration; there is no per-call dispatch.
type Registry struct {
	mu       sync.RWMutex
	backends map[string]erp.Backend
	active   string
}

// NewRegistry creates an empty registry with the given active backend name.
func NewRegistry(active string) *Registry {
	return &Registry{
		backends: make(map[string]erp.Backend),
		active:   active,
	}
}

// Register associates a backend adapter with its name.
func (r *Registry) Register(backend erp.Backend) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backends[backend.Name()] = backend
}

// GetBackend returns the backend adapter for the specified code
func (r *Registry) GetBackend(name string) (erp.Backend, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	backend, ok := r.backends[name]
	if !ok {
		return nil, erp.ErrBackendNotRegistered
	}
	return backend, nil
}

// Active returns the backend selected by configuration
func (r *Registry) Active() (erp.Backend, error) {
	if r.active == "" {
		return nil, erp.ErrNoBackendConfigured
	}
	return r.GetBackend(r.active)
}

// ListBackends returns all registered backend adapters
func (r *Registry) ListBackends() []erp.Backend {
	r.mu.RLock()
	defer r.mu.RUnlock()
	backends := make([]erp.Backend, 0, len(r.backends))
	for _, backend := range r.backends {
		backends = append(backends, backend)
	}
	return backends
}

var _ erp.BackendRegistry = (*Registry)(nil)
