package internal

import (
	"sort"
	"strings"
)

// MemberKind identifies the kind of a StaticMember.
type MemberKind int

// Static member kinds.
const (
	NamespaceMember MemberKind = iota
	TypeMember
	FunctionMember
	ConstantMember
)

var memberKindNames = [...]string{"namespace", "type", "function", "constant"}

// String returns the name of the kind.
func (k MemberKind) String() string {
	if k < NamespaceMember || k > ConstantMember {
		return "unknown"
	}
	return memberKindNames[k]
}

// StaticMember is a named symbol held by a namespace: a nested namespace or
// library, a type, a function, or a constant.
type StaticMember interface {
	Name() string
	Help() string
	Kind() MemberKind
}

// Namespace is a case-insensitive table of static members. Each Type embeds a
// Namespace holding its member functions, constants, and nested types.
type Namespace struct {
	name string
	help string
	// members maps lower-cased names to members.
	members map[string]StaticMember
	// order records insertion order of lower-cased names.
	order []string
	// typ is the type whose static member table this is, if any.
	typ *Type
	// sealed prevents further additions once the registry is frozen.
	sealed bool
}

// NewNamespace creates an empty namespace.
func NewNamespace(name, help string) *Namespace {
	return &Namespace{name: name, help: help, members: map[string]StaticMember{}}
}

// Name returns the namespace's name.
func (n *Namespace) Name() string {
	return n.name
}

// Help returns the namespace's help text.
func (n *Namespace) Help() string {
	return n.help
}

// Kind returns NamespaceMember.
func (n *Namespace) Kind() MemberKind {
	return NamespaceMember
}

// OwnerType returns the type whose static members this namespace holds, or nil
// for a plain namespace.
func (n *Namespace) OwnerType() *Type {
	return n.typ
}

func (n *Namespace) init(name, help string) {
	n.name = name
	n.help = help
	n.members = map[string]StaticMember{}
}

// Add adds a member to the namespace. Names are unique regardless of case.
func (n *Namespace) Add(m StaticMember) error {
	if n.sealed {
		return NewError(ReadOnly, "cannot add %s to %s after registration", m.Name(), n.name)
	}
	key := strings.ToLower(m.Name())
	if n.typ != nil {
		if _, ok := n.typ.members[key]; ok {
			return NewError(AmbiguousSymbol, "%s already has an instance member named %s", n.name, m.Name())
		}
	}
	if _, ok := n.members[key]; ok {
		return NewError(AmbiguousSymbol, "%s already has a member named %s", n.name, m.Name())
	}
	n.members[key] = m
	n.order = append(n.order, key)
	return nil
}

// Member returns the member of this namespace with the given name, without
// considering inherited symbols.
func (n *Namespace) Member(name string) (StaticMember, bool) {
	m, ok := n.members[strings.ToLower(name)]
	return m, ok
}

// Lookup finds a static member by name, first among the namespace's own
// members and then through the inherited symbol index of its owner type.
func (n *Namespace) Lookup(name string) (StaticMember, error) {
	if m, ok := n.Member(name); ok {
		return m, nil
	}
	if n.typ != nil {
		if def, ok := n.typ.inherited[strings.ToLower(name)]; ok {
			if m, ok := def.Namespace.Member(name); ok {
				return m, nil
			}
			return nil, NewError(SymbolNotFound, "%s:%s is an instance member, not a static member", n.name, name)
		}
	}
	return nil, NewError(SymbolNotFound, "%s has no member named %s", n.name, name)
}

// Members returns the namespace's own members in insertion order.
func (n *Namespace) Members() []StaticMember {
	r := make([]StaticMember, len(n.order))
	for i, key := range n.order {
		r[i] = n.members[key]
	}
	return r
}

// Names returns the sorted names of the namespace's own members.
func (n *Namespace) Names() []string {
	r := make([]string, 0, len(n.members))
	for _, m := range n.members {
		r = append(r, m.Name())
	}
	sort.Strings(r)
	return r
}

// seal prevents further modification of the namespace and its nested
// namespaces, types, and functions.
func (n *Namespace) seal() {
	if n.sealed {
		return
	}
	n.sealed = true
	for _, m := range n.members {
		switch m := m.(type) {
		case *Namespace:
			m.seal()
		case *Library:
			m.seal()
		case *Type:
			m.seal()
		case *Function:
			m.sealed = true
		}
	}
}

// Library is a top-level namespace installed into a Registry.
type Library struct {
	Namespace
}

// NewLibrary creates an empty library.
func NewLibrary(name, help string) *Library {
	l := &Library{}
	l.Namespace.init(name, help)
	return l
}

// AddTypes adds each type to the library, stopping at the first error.
func (l *Library) AddTypes(types ...*Type) error {
	for _, t := range types {
		if err := l.Add(t); err != nil {
			return err
		}
	}
	return nil
}

// AddFunctions adds each function to the library, stopping at the first
// error.
func (l *Library) AddFunctions(fns ...*Function) error {
	for _, f := range fns {
		if err := l.Add(f); err != nil {
			return err
		}
	}
	return nil
}

// Constant is a named constant value.
type Constant struct {
	name  string
	help  string
	value Data
}

// NewNamedConstant creates a named constant. The value is made constant.
func NewNamedConstant(name, help string, value Data) *Constant {
	return &Constant{name: name, help: help, value: value.MakeConstant()}
}

// Name returns the constant's name.
func (c *Constant) Name() string {
	return c.name
}

// Help returns the constant's help text.
func (c *Constant) Help() string {
	return c.help
}

// Kind returns ConstantMember.
func (c *Constant) Kind() MemberKind {
	return ConstantMember
}

// Value returns the constant's value.
func (c *Constant) Value() Data {
	return c.value
}
