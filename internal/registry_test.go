package internal_test

import (
	"errors"
	"sync"
	"testing"

	"go.uber.org/multierr"

	"github.com/zephyrtronium/reflex/internal"
)

func TestLibrariesOrder(t *testing.T) {
	r := internal.NewRegistry()
	z := newZoo(r.Integral)
	if err := z.install(r); err != nil {
		t.Fatal(err)
	}
	if err := r.AddLibrary(internal.NewLibrary("Extra", "")); err != nil {
		t.Fatal(err)
	}
	names := r.Libraries()
	if len(names) < 3 {
		t.Fatalf("too few libraries: %v", names)
	}
	if names[0] != internal.IntegralName {
		t.Errorf("first library is %s, not %s", names[0], internal.IntegralName)
	}
	if names[len(names)-2] != "Zoo" || names[len(names)-1] != "Extra" {
		t.Errorf("wrong order: %v", names)
	}
	if l, ok := r.Library("zoo"); !ok || l.Name() != "Zoo" {
		t.Errorf("case-insensitive library lookup failed")
	}
}

func TestAddLibraryErrors(t *testing.T) {
	r := internal.NewRegistry()
	if err := newZoo(r.Integral).install(r); err != nil {
		t.Fatal(err)
	}
	stray := internal.NewType("Stray", "", (*pet)(nil), true, internal.TypeOps{})
	strayFn := func() *internal.Function {
		f := internal.NewFunction("Adopt", "")
		must(f.AddOverload(internal.NewOverload(constFn(internal.Data{}), stray)))
		return f
	}
	cases := map[string]struct {
		lib   func() *internal.Library
		kinds []internal.ErrorKind
	}{
		"Duplicate": {
			lib:   func() *internal.Library { return internal.NewLibrary("ZOO", "") },
			kinds: []internal.ErrorKind{internal.AmbiguousSymbol},
		},
		"Unnamed": {
			lib:   func() *internal.Library { return internal.NewLibrary("", "") },
			kinds: []internal.ErrorKind{internal.ParameterError},
		},
		"Unregistered": {
			lib: func() *internal.Library {
				l := internal.NewLibrary("Shelter", "")
				must(l.AddFunctions(strayFn()))
				return l
			},
			kinds: []internal.ErrorKind{internal.SymbolNotFound},
		},
		"All": {
			lib: func() *internal.Library {
				l := internal.NewLibrary("Zoo", "")
				must(l.AddFunctions(strayFn()))
				return l
			},
			kinds: []internal.ErrorKind{internal.AmbiguousSymbol, internal.SymbolNotFound},
		},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			err := r.AddLibrary(c.lib())
			if err == nil {
				t.Fatal("no error")
			}
			errs := multierr.Errors(errors.Unwrap(err))
			if len(errs) != len(c.kinds) {
				t.Fatalf("wrong number of errors: want %d, got %d: %v", len(c.kinds), len(errs), err)
			}
			for i, k := range c.kinds {
				if !internal.IsKind(errs[i], k) {
					t.Errorf("error %d: want %v, got %v", i, k, errs[i])
				}
			}
		})
	}
	// Libraries containing their own types are fine.
	l := internal.NewLibrary("Shelter", "")
	must(l.AddTypes(stray))
	must(l.AddFunctions(strayFn()))
	if err := r.AddLibrary(l); err != nil {
		t.Errorf("self-contained library rejected: %v", err)
	}
}

func TestFrozen(t *testing.T) {
	r := internal.NewRegistry()
	z := newZoo(r.Integral)
	must(z.install(r))
	r.Freeze()
	r.Freeze()
	if !r.Frozen() {
		t.Fatal("registry not frozen")
	}
	x := r.Integral
	echo, err := x.Library.Lookup("Echo")
	if err != nil {
		t.Fatal(err)
	}
	cases := map[string]func() error{
		"Library": func() error { return r.AddLibrary(internal.NewLibrary("Late", "")) },
		"Overload": func() error {
			return echo.(*internal.Function).AddOverload(internal.NewOverload(constFn(internal.Data{}), x.Int))
		},
		"Namespace": func() error {
			return x.Library.Add(internal.NewNamedConstant("E", "", internal.NewData(x.Float, 2.718)))
		},
		"Inheritance": func() error { return z.Animal.AddInheritance(x.Namespace, same, same) },
		"Constructor": func() error {
			return z.Dog.AddConstructor(internal.NewOverload(constFn(internal.Data{}), nil))
		},
		"Member": func() error {
			return z.Dog.AddMember(internal.NewFieldMember("Species", "", x.String, "Species"))
		},
		"TypeFunction": func() error { return z.Dog.AddFunction(internal.NewFunction("Fetch", "")) },
	}
	for name, add := range cases {
		t.Run(name, func(t *testing.T) {
			if err := add(); !internal.IsKind(err, internal.ReadOnly) {
				t.Errorf("wrong error: want read only, got %v", err)
			}
		})
	}
}

func TestRegistryLookup(t *testing.T) {
	r := internal.NewRegistry()
	must(greeters(r))
	if _, err := r.Lookup("greet"); !internal.IsKind(err, internal.AmbiguousSymbol) {
		t.Errorf("wrong error: want ambiguous symbol, got %v", err)
	}
	m, err := r.Lookup("a")
	if err != nil {
		t.Fatal(err)
	}
	if m.Kind() != internal.NamespaceMember || m.Name() != "A" {
		t.Errorf("found %v %s", m.Kind(), m.Name())
	}
	m, err = r.Lookup("echo")
	if err != nil {
		t.Fatal(err)
	}
	if m.Name() != "Echo" {
		t.Errorf("found %s", m.Name())
	}
	if _, err := r.Lookup("nope"); !internal.IsKind(err, internal.SymbolNotFound) {
		t.Errorf("wrong error: want symbol not found, got %v", err)
	}
}

func TestRegisterAfterRegistry(t *testing.T) {
	internal.NewRegistry()
	defer func() {
		if recover() == nil {
			t.Error("Register after NewRegistry did not panic")
		}
	}()
	internal.Register(func(r *internal.Registry) error { return nil })
}

// TestNewRegistryConcurrent tests that independent registries can be created
// from separate goroutines.
func TestNewRegistryConcurrent(t *testing.T) {
	var wg sync.WaitGroup
	regs := make([]*internal.Registry, 8)
	for i := range regs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			regs[i] = internal.NewRegistry()
		}(i)
	}
	wg.Wait()
	for i, r := range regs {
		if r == nil || r.Integral == nil {
			t.Errorf("registry %d was not created", i)
			continue
		}
		if i > 0 && r.Integral == regs[0].Integral {
			t.Errorf("registry %d shares integral types with registry 0", i)
		}
	}
}
