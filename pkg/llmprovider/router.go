package llmprovider

import (
	"context"

	"github.com/kahani-engine/narrative/internal/resilience"
)

// Router dispatches completions to a primary Provider with ordered
// fallbacks, each protected by its own circuit breaker. The narrative
// engine registers one Router per logical role (main story model,
// extraction model, recall agent model) so that a failing primary degrades
// to a secondary backend rather than failing the whole turn.
type Router struct {
	group *resilience.FallbackGroup[Provider]
}

// NewRouter creates a Router with primary as the first entry.
func NewRouter(primaryName string, primary Provider, cfg resilience.FallbackConfig) *Router {
	return &Router{group: resilience.NewFallbackGroup(primary, primaryName, cfg)}
}

// AddFallback registers an additional backend, tried after all previously
// registered entries in order.
func (r *Router) AddFallback(name string, p Provider) {
	r.group.AddFallback(name, p)
}

// Complete tries each registered provider in order until one succeeds.
func (r *Router) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	return resilience.ExecuteWithResult(ctx, r.group, func(p Provider) (*CompletionResponse, error) {
		return p.Complete(ctx, req)
	})
}

// BackendStates reports the circuit breaker state of every registered
// backend, primary first, for surfacing on an operator status endpoint.
func (r *Router) BackendStates() []resilience.BackendState {
	return r.group.States()
}
