// Package skill loads, invokes, and hot-reloads named code units. Sources
// are plain Go files evaluated with yaegi, so a unit can be rewritten on
// disk and swapped in place without restarting the process.
package skill

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
)

// Unit is a loaded skill: a name bound to a callable value plus the source
// location it was evaluated from.
type Unit struct {
	Name   string
	Path   string
	Symbol string
	fn     reflect.Value
}

// Invoke calls the skill function with the given arguments. Panics inside
// the interpreted code are recovered and surfaced as errors.
func (u *Unit) Invoke(args ...any) (result any, err error) {
	if u == nil || !u.fn.IsValid() {
		return nil, fmt.Errorf("skill: unit not loaded")
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("skill: %s panicked: %v", u.Name, r)
		}
	}()
	fnType := u.fn.Type()
	if fnType.Kind() != reflect.Func {
		return nil, fmt.Errorf("skill: %s symbol %s is not a function", u.Name, u.Symbol)
	}
	if fnType.NumIn() != len(args) {
		return nil, fmt.Errorf("skill: %s expects %d arguments, got %d", u.Name, fnType.NumIn(), len(args))
	}
	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		value := reflect.ValueOf(arg)
		if !value.Type().AssignableTo(fnType.In(i)) {
			if !value.Type().ConvertibleTo(fnType.In(i)) {
				return nil, fmt.Errorf("skill: %s argument %d: cannot use %T", u.Name, i, arg)
			}
			value = value.Convert(fnType.In(i))
		}
		in[i] = value
	}
	out := u.fn.Call(in)
	if len(out) == 0 {
		return nil, nil
	}
	// A trailing error return is unwrapped; anything else is the result.
	last := out[len(out)-1]
	if last.Type().Implements(reflect.TypeOf((*error)(nil)).Elem()) {
		if !last.IsNil() {
			return nil, last.Interface().(error)
		}
		out = out[:len(out)-1]
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0].Interface(), nil
}

// InvokeInts calls the skill with integer arguments and coerces the result
// back to an int.
func (u *Unit) InvokeInts(args ...int) (int, error) {
	boxed := make([]any, len(args))
	for i, arg := range args {
		boxed[i] = arg
	}
	result, err := u.Invoke(boxed...)
	if err != nil {
		return 0, err
	}
	value := reflect.ValueOf(result)
	if !value.IsValid() || !value.CanInt() {
		return 0, fmt.Errorf("skill: %s returned non-integer %v", u.Name, result)
	}
	return int(value.Int()), nil
}

// Registry maps skill names to loaded units. Reload replaces a unit
// wholesale; it is the single place the system swaps rather than merges
// state, and the mutex keeps it single-writer.
type Registry struct {
	store *Store

	mu    sync.RWMutex
	units map[string]*Unit
}

// NewRegistry creates a registry backed by the given source store.
func NewRegistry(store *Store) *Registry {
	return &Registry{store: store, units: map[string]*Unit{}}
}

// Store exposes the backing source store (the repair path writes it).
func (r *Registry) Store() *Store {
	return r.store
}

// Register evaluates the named source unit and records the loaded skill.
func (r *Registry) Register(name string) (*Unit, error) {
	unit, err := r.load(name)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.units[name] = unit
	r.mu.Unlock()
	return unit, nil
}

// Get returns the loaded unit for a name.
func (r *Registry) Get(name string) (*Unit, error) {
	r.mu.RLock()
	unit, ok := r.units[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("skill: %s not registered", name)
	}
	return unit, nil
}

// Reload re-reads the source and replaces the in-memory unit, discarding
// the previous one.
func (r *Registry) Reload(name string) (*Unit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.units[name]; !ok {
		return nil, fmt.Errorf("skill: %s not registered", name)
	}
	unit, err := r.load(name)
	if err != nil {
		return nil, err
	}
	r.units[name] = unit
	return unit, nil
}

// Has reports whether a unit is currently loaded for the name.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.units[name]
	return ok
}

// Names lists registered skills.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.units))
	for name := range r.units {
		names = append(names, name)
	}
	return names
}

func (r *Registry) load(name string) (*Unit, error) {
	source, err := r.store.Read(name)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(source) == "" {
		return nil, fmt.Errorf("skill: %s source is empty", name)
	}
	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("skill: interpreter symbols: %w", err)
	}
	if _, err := i.Eval(source); err != nil {
		return nil, fmt.Errorf("skill: interpret %s: %w", name, err)
	}
	symbol := symbolFor(name)
	value, err := i.Eval(symbol)
	if err != nil {
		return nil, fmt.Errorf("skill: %s must define %s: %w", name, symbol, err)
	}
	return &Unit{Name: name, Path: r.store.Path(name), Symbol: symbol, fn: value}, nil
}

// symbolFor maps a skill name to its exported entry point, e.g. "add"
// resolves to "skill.Add".
func symbolFor(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "skill.Run"
	}
	return "skill." + strings.ToUpper(trimmed[:1]) + trimmed[1:]
}
