package role

import (
	"fmt"
	"sort"
	"sync"

	"github.com/opaline-dev/troupe/internal/llm"
	"github.com/opaline-dev/troupe/internal/skill"
)

// Factory lazily constructs a role instance.
type Factory func() (Role, error)

// Registry looks up role instances by name. It serves pre-built instances
// first, then registered factories (memoizing the result), then the default
// constructors for the core role names.
type Registry struct {
	provider llm.Provider
	skills   *skill.Registry

	mu        sync.Mutex
	roles     map[string]Role
	factories map[string]Factory
}

// NewRegistry returns an empty registry. Provider and skills feed the
// default constructors; either may be nil when defaults are not used.
func NewRegistry(provider llm.Provider, skills *skill.Registry) *Registry {
	return &Registry{
		provider:  provider,
		skills:    skills,
		roles:     map[string]Role{},
		factories: map[string]Factory{},
	}
}

// Default builds a registry preloaded with all six core roles.
func Default(provider llm.Provider, skills *skill.Registry) *Registry {
	r := NewRegistry(provider, skills)
	r.Register(NewCoder(provider))
	r.Register(NewReviewer(provider))
	r.Register(NewTester(provider))
	r.Register(NewOrchestrator(provider))
	r.Register(NewApprover())
	r.Register(NewExecutor(skills))
	return r
}

// Register installs a role instance under its own name.
func (r *Registry) Register(role Role) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.roles[role.Name()] = role
}

// RegisterFactory installs a lazy constructor for a role name.
func (r *Registry) RegisterFactory(name string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Get resolves a role by name: instance, then factory, then default
// construction for the core names.
func (r *Registry) Get(name string) (Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if role, ok := r.roles[name]; ok {
		return role, nil
	}
	if factory, ok := r.factories[name]; ok {
		role, err := factory()
		if err != nil {
			return nil, fmt.Errorf("role: factory %s: %w", name, err)
		}
		r.roles[name] = role
		return role, nil
	}
	if role := r.defaultFor(name); role != nil {
		r.roles[name] = role
		return role, nil
	}
	return nil, fmt.Errorf("role: no role registered with name %s", name)
}

// Has reports whether the name resolves to an instance, a factory, or a
// default constructor.
func (r *Registry) Has(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.roles[name]; ok {
		return true
	}
	if _, ok := r.factories[name]; ok {
		return true
	}
	return r.defaultFor(name) != nil
}

// Names lists the currently materialized role names, sorted.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.roles))
	for name := range r.roles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) defaultFor(name string) Role {
	switch name {
	case Coder:
		return NewCoder(r.provider)
	case Reviewer:
		return NewReviewer(r.provider)
	case Tester:
		return NewTester(r.provider)
	case Orchestrator:
		return NewOrchestrator(r.provider)
	case Approver:
		return NewApprover()
	case Executor:
		if r.skills == nil {
			return nil
		}
		return NewExecutor(r.skills)
	default:
		return nil
	}
}
