package content

import (
	"fmt"
	"strings"
	"sync"

	"github.com/KCuppens/bedrock-cms/pkg/interfaces"
)

// Registry maps target type identifiers to resolvers so the lifecycle engine
// and the task executor can act on any registered content type without
// knowing its concrete model.
type Registry struct {
	mu        sync.RWMutex
	resolvers map[string]interfaces.TargetResolver
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		resolvers: make(map[string]interfaces.TargetResolver),
	}
}

// Register installs a resolver under the supplied type identifier, replacing
// any previous registration.
func (r *Registry) Register(targetType string, resolver interfaces.TargetResolver) error {
	key := strings.ToLower(strings.TrimSpace(targetType))
	if key == "" {
		return fmt.Errorf("content: target type required")
	}
	if resolver == nil {
		return fmt.Errorf("content: resolver required for %s", key)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resolvers[key] = resolver
	return nil
}

// Resolve returns the resolver for the supplied type identifier.
func (r *Registry) Resolve(targetType string) (interfaces.TargetResolver, error) {
	key := strings.ToLower(strings.TrimSpace(targetType))
	r.mu.RLock()
	resolver, ok := r.resolvers[key]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", interfaces.ErrTargetTypeUnknown, targetType)
	}
	return resolver, nil
}

// Types lists the registered type identifiers.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.resolvers))
	for key := range r.resolvers {
		out = append(out, key)
	}
	return out
}
