package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/irislabs/agentshell/internal/shared/types"
)

// Provider is the capability interface every tool provider implements.
type Provider interface {
	Definition() types.Service
	Execute(ctx context.Context, toolID string, params map[string]interface{}, appCtx *types.Context) (*types.Result, error)
}

// StatusReporter is implemented by providers that expose a status block for
// the status/dashboard surface.
type StatusReporter interface {
	Status() map[string]interface{}
}

// Registry manages tool discovery and execution.
//
// Tool ids are flat names (shell_run, fs_read); the registry keeps an index
// from tool id to owning provider so dispatch needs no naming convention.
type Registry struct {
	mu        sync.RWMutex
	services  map[string]Provider
	toolIndex map[string]Provider
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		services:  make(map[string]Provider),
		toolIndex: make(map[string]Provider),
	}
}

// Register adds a provider and indexes its tools.
func (r *Registry) Register(provider Provider) error {
	def := provider.Definition()
	if def.ID == "" {
		return fmt.Errorf("service ID cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, tool := range def.Tools {
		if owner, exists := r.toolIndex[tool.ID]; exists {
			return fmt.Errorf("tool %q already registered by service %q", tool.ID, owner.Definition().ID)
		}
	}
	r.services[def.ID] = provider
	for _, tool := range def.Tools {
		r.toolIndex[tool.ID] = provider
	}
	return nil
}

// Get retrieves a provider by service id.
func (r *Registry) Get(serviceID string) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.services[serviceID]
	return p, ok
}

// List returns all registered service definitions, sorted by id.
func (r *Registry) List() []types.Service {
	r.mu.RLock()
	defer r.mu.RUnlock()

	services := make([]types.Service, 0, len(r.services))
	for _, p := range r.services {
		services = append(services, p.Definition())
	}
	sort.Slice(services, func(i, j int) bool { return services[i].ID < services[j].ID })
	return services
}

// Tools returns every registered tool definition, sorted by id. This is the
// list handed to the agent loop.
func (r *Registry) Tools() []types.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tools := make([]types.Tool, 0, len(r.toolIndex))
	for _, p := range r.services {
		tools = append(tools, p.Definition().Tools...)
	}
	sort.Slice(tools, func(i, j int) bool { return tools[i].ID < tools[j].ID })
	return tools
}

// Execute runs a tool by id. Unknown tools and provider panics become
// structured failures; a misbehaving tool never takes the registry down.
func (r *Registry) Execute(ctx context.Context, toolID string, params map[string]interface{}, appCtx *types.Context) (result *types.Result, err error) {
	r.mu.RLock()
	provider, ok := r.toolIndex[toolID]
	r.mu.RUnlock()

	if !ok {
		return types.Failure(fmt.Sprintf("tool not found: %s", toolID)), fmt.Errorf("tool not found: %s", toolID)
	}

	defer func() {
		if rec := recover(); rec != nil {
			result = types.Failure(fmt.Sprintf("tool %s panicked: %v", toolID, rec))
			err = fmt.Errorf("tool %s panicked: %v", toolID, rec)
		}
	}()

	return provider.Execute(ctx, toolID, params, appCtx)
}

// Statuses collects the status blocks of every provider that reports one.
func (r *Registry) Statuses() []map[string]interface{} {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.services))
	for id := range r.services {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	statuses := make([]map[string]interface{}, 0, len(ids))
	for _, id := range ids {
		if reporter, ok := r.services[id].(StatusReporter); ok {
			statuses = append(statuses, reporter.Status())
		}
	}
	return statuses
}

// Stats returns registry statistics.
func (r *Registry) Stats() map[string]interface{} {
	r.mu.RLock()
	defer r.mu.RUnlock()

	categories := make(map[string]int)
	for _, p := range r.services {
		categories[string(p.Definition().Category)]++
	}

	return map[string]interface{}{
		"total_services": len(r.services),
		"total_tools":    len(r.toolIndex),
		"categories":     categories,
	}
}
