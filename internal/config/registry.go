package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/kahani-engine/narrative/pkg/embedprovider"
	"github.com/kahani-engine/narrative/pkg/llmprovider"
)

// ErrProviderNotRegistered is returned by Create* methods when no factory
// has been registered under the requested provider entry's backend name.
var ErrProviderNotRegistered = errors.New("config: provider not registered")

// Registry maps backend names to their constructor functions for each
// provider kind. It is safe for concurrent use and is typically populated
// once at startup with every adapter the binary links in (openai, anyllm,
// mock) before the Config's ProviderEntry values are resolved.
type Registry struct {
	mu   sync.RWMutex
	llm  map[string]func(ProviderEntry) (llmprovider.Provider, error)
	embd map[string]func(ProviderEntry) (embedprovider.Provider, error)
}

// NewRegistry returns an empty, ready-to-use [Registry].
func NewRegistry() *Registry {
	return &Registry{
		llm:  make(map[string]func(ProviderEntry) (llmprovider.Provider, error)),
		embd: make(map[string]func(ProviderEntry) (embedprovider.Provider, error)),
	}
}

// RegisterLLM registers an LLM provider factory under name. Subsequent
// calls with the same name overwrite the previous registration.
func (r *Registry) RegisterLLM(name string, factory func(ProviderEntry) (llmprovider.Provider, error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.llm[name] = factory
}

// RegisterEmbeddings registers an embeddings provider factory under name.
func (r *Registry) RegisterEmbeddings(name string, factory func(ProviderEntry) (embedprovider.Provider, error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.embd[name] = factory
}

// CreateLLM instantiates an LLM provider using the factory registered
// under entry.Backend.
func (r *Registry) CreateLLM(entry ProviderEntry) (llmprovider.Provider, error) {
	r.mu.RLock()
	factory, ok := r.llm[entry.Backend]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: llm/%q", ErrProviderNotRegistered, entry.Backend)
	}
	return factory(entry)
}

// CreateEmbeddings instantiates an embeddings provider using the factory
// registered under entry.Backend.
func (r *Registry) CreateEmbeddings(entry ProviderEntry) (embedprovider.Provider, error) {
	r.mu.RLock()
	factory, ok := r.embd[entry.Backend]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: embeddings/%q", ErrProviderNotRegistered, entry.Backend)
	}
	return factory(entry)
}
