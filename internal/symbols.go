package internal

import (
	"strings"
	"unicode/utf8"
)

// FindSymbol resolves a colon-separated symbol path. The first segment is
// looked up among the running scope's variables, the namespaces it uses, the
// root scope's variables, the namespaces the VM uses, and finally the
// registry. Each further segment is looked up in the namespace the path so far
// refers to. A path beginning with the VM's sigil is resolved entirely by the
// VM's Resolver.
func (vm *VM) FindSymbol(path string) (Data, error) {
	if path == "" {
		return Data{}, NewError(SymbolNotFound, "empty symbol")
	}
	if vm.Sigil != 0 {
		if r, n := utf8.DecodeRuneInString(path); r == vm.Sigil {
			if vm.Resolver == nil {
				return Data{}, NewError(SymbolNotFound, "%s is not defined: no resolver for %c", path, vm.Sigil)
			}
			return vm.Resolver(vm, path[n:])
		}
	}
	segs := strings.Split(path, ":")
	d, err := vm.findFirst(segs[0])
	if err != nil {
		return Data{}, err
	}
	for i, seg := range segs[1:] {
		ns, err := vm.asNamespace(d)
		if err != nil {
			return Data{}, NewError(SymbolNotFound, "%s is not a namespace", strings.Join(segs[:i+1], ":"))
		}
		m, err := ns.Lookup(seg)
		if err != nil {
			return Data{}, err
		}
		d = vm.Registry.Integral.MemberValue(m)
	}
	return d, nil
}

// FindType resolves a symbol path which must name a type.
func (vm *VM) FindType(path string) (*Type, error) {
	d, err := vm.FindSymbol(path)
	if err != nil {
		return nil, err
	}
	d = unwrapVariant(d)
	if d.typ != vm.Registry.Integral.Type {
		return nil, NewError(SymbolNotFound, "%s is a %s, not a type", path, d.typ.Name())
	}
	t := d.Value().(*Type)
	if t == nil {
		return nil, NewError(NullValue, "%s is an empty type", path)
	}
	return t, nil
}

// asNamespace converts a value to a namespace.
func (vm *VM) asNamespace(d Data) (*Namespace, error) {
	n, err := Morph(vm, d, vm.Registry.Integral.Namespace, false)
	if err != nil {
		return nil, err
	}
	ns := n.Value().(*Namespace)
	if ns == nil {
		return nil, NewError(NullValue, "empty namespace")
	}
	return ns, nil
}

// findFirst resolves the first segment of a symbol path.
func (vm *VM) findFirst(name string) (Data, error) {
	s := vm.top()
	if s != nil {
		if v, ok := s.local(name); ok {
			return v.d, nil
		}
		d, ok, err := vm.findUsing(s.usings, name)
		if ok || err != nil {
			return d, err
		}
		if root := vm.scopes[0]; root != s {
			if v, ok := root.local(name); ok {
				return v.d, nil
			}
		}
	}
	d, ok, err := vm.findUsing(vm.usings, name)
	if ok || err != nil {
		return d, err
	}
	m, err := vm.Registry.Lookup(name)
	if err != nil {
		return Data{}, err
	}
	return vm.Registry.Integral.MemberValue(m), nil
}

// findUsing looks for name among the own members of imported namespaces. A
// name found in more than one of them is ambiguous.
func (vm *VM) findUsing(usings []*Namespace, name string) (Data, bool, error) {
	var found StaticMember
	var from *Namespace
	for _, ns := range usings {
		m, ok := ns.Member(name)
		if !ok {
			continue
		}
		if found != nil && m != found {
			return Data{}, false, NewError(AmbiguousSymbol, "%s is defined in both %s and %s", name, from.Name(), ns.Name())
		}
		found, from = m, ns
	}
	if found == nil {
		return Data{}, false, nil
	}
	return vm.Registry.Integral.MemberValue(found), true, nil
}

// UsingNamespace imports the members of ns into the running scope, or into
// every scope if none is running. Importing a namespace more than once has no
// further effect.
func (vm *VM) UsingNamespace(ns *Namespace) error {
	if ns == nil {
		return NewError(NullValue, "cannot use an empty namespace")
	}
	usings := &vm.usings
	if s := vm.top(); s != nil {
		usings = &s.usings
	}
	for _, u := range *usings {
		if u == ns {
			return nil
		}
	}
	*usings = append(*usings, ns)
	return nil
}

// Use imports ns for every scope of the VM.
func (vm *VM) Use(ns *Namespace) {
	for _, u := range vm.usings {
		if u == ns {
			return
		}
	}
	vm.usings = append(vm.usings, ns)
}
