package internal

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/atomic"
	"go.uber.org/multierr"
)

// Registry is the database of libraries available to VMs. A registry is
// built during an initialization phase and then frozen, after which it is
// read-only and may be shared by any number of VMs.
type Registry struct {
	// Integral holds the builtin types and functions.
	Integral *Integral

	libraries map[string]*Library
	order     []string
	frozen    bool
}

// NewRegistry creates a registry holding the integral library and every
// registered core extension. Panics if a core extension fails to install.
func NewRegistry() *Registry {
	haveRegistry.Store(true)
	r := &Registry{libraries: map[string]*Library{}}
	r.Integral = newIntegral()
	if err := r.AddLibrary(r.Integral.Library); err != nil {
		panic(fmt.Errorf("reflex: error installing integral library: %w", err))
	}
	for _, ext := range coreExt {
		if err := ext(r); err != nil {
			panic(fmt.Errorf("reflex: error installing core extension: %w", err))
		}
	}
	return r
}

// AddLibrary validates and installs a library. Every problem found is
// reported, combined into a single error.
func (r *Registry) AddLibrary(l *Library) error {
	if r.frozen {
		return NewError(ReadOnly, "cannot add library %s to a frozen registry", l.Name())
	}
	if err := r.validate(l); err != nil {
		return fmt.Errorf("library %s: %w", l.Name(), err)
	}
	key := strings.ToLower(l.Name())
	r.libraries[key] = l
	r.order = append(r.order, key)
	return nil
}

// validate checks a library before it is installed: its name must be new,
// and every type its members mention must be reachable from the registry or
// the library itself.
func (r *Registry) validate(l *Library) error {
	var err error
	if l.Name() == "" {
		err = multierr.Append(err, NewError(ParameterError, "library has no name"))
	}
	if _, ok := r.libraries[strings.ToLower(l.Name())]; ok {
		err = multierr.Append(err, NewError(AmbiguousSymbol, "library %s is already registered", l.Name()))
	}
	known := map[*Type]bool{}
	for _, lib := range r.libraries {
		collectTypes(&lib.Namespace, known)
	}
	collectTypes(&l.Namespace, known)
	check := func(where string, t *Type) {
		if t != nil && !known[t] {
			err = multierr.Append(err, NewError(SymbolNotFound, "%s uses unregistered type %s", where, t.Name()))
		}
	}
	checkFn := func(f *Function) {
		for _, set := range [][]*Overload{f.overloads, f.methods} {
			for _, o := range set {
				check(o.String(), o.ReturnType)
				for _, p := range o.Params {
					check(o.String(), p.Type)
				}
			}
		}
	}
	var walk func(n *Namespace)
	walk = func(n *Namespace) {
		for _, m := range n.Members() {
			switch m := m.(type) {
			case *Function:
				checkFn(m)
			case *Namespace:
				walk(m)
			case *Library:
				walk(&m.Namespace)
			case *Type:
				checkFn(m.constructor)
				for _, im := range m.Members() {
					check(m.Name()+":"+im.Name(), im.Type())
				}
				for _, p := range m.parentOrder {
					check(m.Name(), p)
				}
				walk(&m.Namespace)
			case *Constant:
				check(m.Name(), m.Value().Type())
			}
		}
	}
	walk(&l.Namespace)
	return err
}

// collectTypes adds every type reachable from n to known.
func collectTypes(n *Namespace, known map[*Type]bool) {
	for _, m := range n.Members() {
		switch m := m.(type) {
		case *Type:
			if !known[m] {
				known[m] = true
				collectTypes(&m.Namespace, known)
			}
		case *Namespace:
			collectTypes(m, known)
		case *Library:
			collectTypes(&m.Namespace, known)
		}
	}
}

// Library returns the library with the given name.
func (r *Registry) Library(name string) (*Library, bool) {
	l, ok := r.libraries[strings.ToLower(name)]
	return l, ok
}

// Libraries returns the names of all libraries in registration order.
func (r *Registry) Libraries() []string {
	names := make([]string, len(r.order))
	for i, key := range r.order {
		names[i] = r.libraries[key].Name()
	}
	return names
}

// Lookup finds a top-level symbol: a library by name, or otherwise a member of
// exactly one library.
func (r *Registry) Lookup(name string) (StaticMember, error) {
	if l, ok := r.Library(name); ok {
		return l, nil
	}
	var found StaticMember
	var where []string
	for _, key := range r.order {
		l := r.libraries[key]
		if m, ok := l.Member(name); ok {
			if found == nil {
				found = m
			}
			where = append(where, l.Name())
		}
	}
	switch len(where) {
	case 0:
		return nil, NewError(SymbolNotFound, "%s is not defined", name)
	case 1:
		return found, nil
	default:
		sort.Strings(where)
		return nil, NewError(AmbiguousSymbol, "%s is defined in libraries %s", name, strings.Join(where, ", "))
	}
}

// Freeze ends the initialization phase. Afterward, the registry and all of its
// libraries, types, and functions are read-only. Freeze is idempotent.
func (r *Registry) Freeze() {
	if r.frozen {
		return
	}
	r.frozen = true
	for _, l := range r.libraries {
		l.seal()
	}
}

// Frozen returns whether the registry has been frozen.
func (r *Registry) Frozen() bool {
	return r.frozen
}

// Register registers a core extension. Each function is called in the order it
// is registered by every subsequent NewRegistry; extensions that depend on
// other extensions need only import them. Register should be called from
// within init funcs. Panics if NewRegistry has been called.
func Register(f func(*Registry) error) {
	if haveRegistry.Load() {
		panic("reflex/internal: Register must be called before any Registry is created")
	}
	coreExt = append(coreExt, f)
}

// coreExt is a list of core extensions that have been registered.
var coreExt = make([]func(*Registry) error, 0, 4)

// haveRegistry becomes true once NewRegistry has been called. Registries may
// be created concurrently.
var haveRegistry atomic.Bool
