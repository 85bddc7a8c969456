package adapter

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Factory constructs a backend adapter from options.
type Factory func(opts Options) (Adapter, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{
		"default": func(opts Options) (Adapter, error) {
			return newHTTPAdapter("default", newDefaultTransport(), opts), nil
		},
		"http1": func(opts Options) (Adapter, error) {
			return newHTTPAdapter("http1", newHTTP1Transport(), opts), nil
		},
		"http2": func(opts Options) (Adapter, error) {
			return newHTTPAdapter("http2", newHTTP2Transport(opts.H2C), opts), nil
		},
	}
)

// Register adds a backend factory under the given name, replacing any
// existing registration.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// Build constructs the named backend.
func Build(name string, opts Options) (Adapter, error) {
	registryMu.RLock()
	factory, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown backend %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	return factory(opts)
}

// Names returns the registered backend names in sorted order.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
