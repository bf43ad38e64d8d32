package engine

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/regweaver/regweaver/internal/script"
)

// HandlerFunc executes one action. Handlers communicate only through the
// execution context and their return value; the returned output is attached
// to the step's outcome.
type HandlerFunc func(ctx context.Context, ec *ExecutionContext, params script.Params) (any, error)

// Action pairs a handler with its declared parameter contract.
type Action struct {
	Name           string
	RequiredParams []string
	Handler        HandlerFunc
}

// Registry is the closed mapping from action name to Action used by
// declarative scripts. Adding an action is a registration, not a branch in
// the interpreter.
type Registry struct {
	mu      sync.RWMutex
	actions map[string]Action
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{actions: make(map[string]Action)}
}

// Register adds an action. Registering the same name twice is a programming
// error and is rejected.
func (r *Registry) Register(a Action) error {
	if a.Name == "" {
		return fmt.Errorf("action name is required")
	}
	if a.Handler == nil {
		return fmt.Errorf("action %s has no handler", a.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.actions[a.Name]; exists {
		return fmt.Errorf("action %s already registered", a.Name)
	}
	r.actions[a.Name] = a
	return nil
}

// Get looks up an action by name.
func (r *Registry) Get(name string) (Action, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.actions[name]
	return a, ok
}

// Names returns the registered action names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.actions))
	for name := range r.actions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
