package internal

import (
	"fmt"
	"reflect"
	"strings"
	"sync/atomic"

	"github.com/zephyrtronium/contains"
)

// ConversionFn converts a value between a type and one of its parents.
type ConversionFn func(d Data) (Data, error)

// Inheritance is an edge from a type to one of its direct parents.
type Inheritance struct {
	// Target is the parent type.
	Target *Type
	// ToParent converts a value of the child type to the parent type. It
	// should not fail.
	ToParent ConversionFn
	// FromParent converts a value of the parent type to the child type. It
	// fails with a CastError if the value is not actually a child.
	FromParent ConversionFn
}

// TypeOps holds the host behavior behind a Type. Any nil function is
// replaced by a default.
type TypeOps struct {
	// String formats a value of the type. The default uses fmt.Sprint.
	String func(d Data) string
	// Parse creates a value of the type from text. By default, types cannot
	// be parsed.
	Parse func(s string) (interface{}, error)
	// Assign copies the state of src into the object dst, for reference
	// types. By default, reference types cannot be assigned through.
	Assign func(dst, src interface{}) error
	// Delete releases an object of a reference type once its reference count
	// reaches zero. The default does nothing.
	Delete func(obj interface{})
	// Equal compares two payloads. By default, reference types compare by
	// identity and value types by reflect.DeepEqual.
	Equal func(l, r interface{}) bool
}

// Type is a registered runtime type. Types are built during registration and
// are read-only once their registry is frozen.
type Type struct {
	// Namespace holds the type's static members: member functions,
	// constants, and nested types.
	Namespace

	// id is the type's unique ID.
	id uintptr
	// defaultValue is the value of a default-constructed instance.
	defaultValue Data
	// isRef is true for types whose values are always held by pointer.
	isRef bool
	// isAny is true for the universal type that accepts every value.
	isAny bool
	// goType is the Go type of the payload of a value of this type.
	goType reflect.Type
	ops    TypeOps

	// constructor is the type's constructor overload set.
	constructor *Function

	// members maps lower-cased names to instance members.
	members     map[string]*InstanceMember
	memberOrder []string

	// parents maps direct parents to their conversion functions.
	parents     map[*Type]Inheritance
	parentOrder []*Type
	// ancestors maps every transitive ancestor to the direct parent through
	// which it is reached.
	ancestors map[*Type]*Type
	// inherited maps lower-cased names introduced by ancestors to the
	// ancestor which defines them.
	inherited map[string]*Type
}

// typecounter is the global counter for type IDs. All accesses to this must
// be atomic.
var typecounter uintptr

// nextType increments the type counter and returns its value as a unique ID
// for a new type.
func nextType() uintptr {
	return atomic.AddUintptr(&typecounter, 1)
}

// NewType creates a type. def is the payload of the default value: the zero
// value for value types, or typically nil for reference types. The Go shape of
// values of the type is taken from def; use SetGoType when def is nil.
func NewType(name, help string, def interface{}, isRef bool, ops TypeOps) *Type {
	t := &Type{
		id:        nextType(),
		isRef:     isRef,
		ops:       ops,
		members:   map[string]*InstanceMember{},
		parents:   map[*Type]Inheritance{},
		ancestors: map[*Type]*Type{},
		inherited: map[string]*Type{},
	}
	t.Namespace.init(name, help)
	t.Namespace.typ = t
	t.constructor = NewFunction(name, "Constructs a "+name)
	t.constructor.owner = t
	t.constructor.constructs = true
	if def != nil {
		t.goType = reflect.TypeOf(def)
	}
	t.defaultValue = Data{typ: t, value: def, isRef: isRef}
	return t
}

// Kind returns TypeMember.
func (t *Type) Kind() MemberKind {
	return TypeMember
}

// UniqueID returns the type's unique ID.
func (t *Type) UniqueID() uintptr {
	return t.id
}

// IsReferenceType returns whether values of the type are held by pointer.
func (t *Type) IsReferenceType() bool {
	return t.isRef
}

// IsAny returns whether this is the universal type.
func (t *Type) IsAny() bool {
	return t.isAny
}

// SetGoType sets the Go type of payloads of the type.
func (t *Type) SetGoType(gt reflect.Type) {
	t.goType = gt
}

// GoType returns the Go type of payloads of the type, or nil if unknown.
func (t *Type) GoType() reflect.Type {
	return t.goType
}

// DefaultValue returns the value of a default-constructed instance.
func (t *Type) DefaultValue() Data {
	return t.defaultValue
}

// Constructor returns the type's constructor overload set.
func (t *Type) Constructor() *Function {
	return t.constructor
}

// String returns the type's name.
func (t *Type) String() string {
	return t.name
}

// AddConstructor adds a constructor overload. Constructors always return a
// value of the type.
func (t *Type) AddConstructor(o *Overload) error {
	if t.sealed {
		return NewError(ReadOnly, "cannot add a constructor to %s after registration", t.name)
	}
	if o.ReturnType == nil {
		o.ReturnType = t
	}
	if o.ReturnType != t {
		return NewError(ParameterError, "constructor of %s must return %s, not %s", t.name, t.name, o.ReturnType.name)
	}
	return t.constructor.AddOverload(o)
}

// AddFunction adds a member function. The function's owner becomes t, and
// each of its overloads receives the object as an implicit first parameter.
func (t *Type) AddFunction(f *Function) error {
	if f.owner != nil && f.owner != t {
		return NewError(AmbiguousSymbol, "function %s already belongs to %s", f.name, f.owner.name)
	}
	if err := t.Namespace.Add(f); err != nil {
		return err
	}
	f.owner = t
	return nil
}

// AddStaticFunction adds a function to the type's namespace. Unlike AddFunction,
// the function has no implicit object parameter.
func (t *Type) AddStaticFunction(f *Function) error {
	f.static = true
	return t.AddFunction(f)
}

// Define adds o to the member function of t with the same name as f. If t
// does not yet define such a function, f is added first.
func (t *Type) Define(f *Function, o *Overload) error {
	if m, ok := t.Namespace.Member(f.name); ok {
		g, ok := m.(*Function)
		if !ok {
			return NewError(AmbiguousSymbol, "%s:%s is a %v, not a function", t.name, f.name, m.Kind())
		}
		f = g
	} else if err := t.AddFunction(f); err != nil {
		return err
	}
	return f.AddOverload(o)
}

// AddConstant adds a static constant.
func (t *Type) AddConstant(c *Constant) error {
	return t.Namespace.Add(c)
}

// AddMember adds an instance member. Names are unique across instance and
// static members regardless of case.
func (t *Type) AddMember(m *InstanceMember) error {
	if t.sealed {
		return NewError(ReadOnly, "cannot add %s to %s after registration", m.name, t.name)
	}
	key := strings.ToLower(m.name)
	if _, ok := t.members[key]; ok {
		return NewError(AmbiguousSymbol, "%s already has an instance member named %s", t.name, m.name)
	}
	if _, ok := t.Namespace.members[key]; ok {
		return NewError(AmbiguousSymbol, "%s already has a member named %s", t.name, m.name)
	}
	t.members[key] = m
	t.memberOrder = append(t.memberOrder, key)
	return nil
}

// Member returns an instance member defined directly on t.
func (t *Type) Member(name string) (*InstanceMember, bool) {
	m, ok := t.members[strings.ToLower(name)]
	return m, ok
}

// Members returns the instance members defined directly on t in insertion
// order.
func (t *Type) Members() []*InstanceMember {
	r := make([]*InstanceMember, len(t.memberOrder))
	for i, key := range t.memberOrder {
		r[i] = t.members[key]
	}
	return r
}

// LookupMember finds an instance member on t or, through the inherited symbol
// index, on one of its ancestors. The second result is the type which defines
// the member.
func (t *Type) LookupMember(name string) (*InstanceMember, *Type, error) {
	if m, ok := t.Member(name); ok {
		return m, t, nil
	}
	if def, ok := t.inherited[strings.ToLower(name)]; ok {
		if m, ok := def.Member(name); ok {
			return m, def, nil
		}
		return nil, nil, NewError(SymbolNotFound, "%s:%s is not an instance member", t.name, name)
	}
	return nil, nil, NewError(SymbolNotFound, "%s has no member named %s", t.name, name)
}

// LookupFunction finds a member function on t or one of its ancestors.
func (t *Type) LookupFunction(name string) (*Function, error) {
	m, err := t.Namespace.Lookup(name)
	if err != nil {
		return nil, err
	}
	f, ok := m.(*Function)
	if !ok {
		return nil, NewError(SymbolNotFound, "%s:%s is a %v, not a function", t.name, name, m.Kind())
	}
	return f, nil
}

// InheritedFrom returns the ancestor which defines an inherited name, if any.
func (t *Type) InheritedFrom(name string) (*Type, bool) {
	def, ok := t.inherited[strings.ToLower(name)]
	return def, ok
}

// hasOwn returns whether t itself defines a symbol with the lower-cased name.
func (t *Type) hasOwn(key string) bool {
	if _, ok := t.members[key]; ok {
		return true
	}
	_, ok := t.Namespace.members[key]
	return ok
}

// AddInheritance records parent as a direct parent of t with the given
// conversion functions. The parent's ancestors and symbols are merged into t.
// If an inherited name would be introduced by two unrelated ancestors, the
// inheritance is rejected with an AmbiguousSymbol error and t is unchanged.
//
// Inheritance must be registered from the root of a hierarchy downward:
// symbols and ancestors added to parent afterward are not seen by t.
func (t *Type) AddInheritance(parent *Type, toParent, fromParent ConversionFn) error {
	if t.sealed {
		return NewError(ReadOnly, "cannot add inheritance to %s after registration", t.name)
	}
	if parent == nil || toParent == nil || fromParent == nil {
		return NewError(ParameterError, "inheritance of %s requires a parent and both conversion functions", t.name)
	}
	if parent == t || parent.IsKindOf(t) {
		return NewError(ParameterError, "%s cannot inherit from %s: inheritance cycle", t.name, parent.name)
	}
	if _, ok := t.parents[parent]; ok {
		return NewError(AmbiguousSymbol, "%s already inherits from %s", t.name, parent.name)
	}

	merged := make(map[string]*Type, len(t.inherited)+len(parent.members)+len(parent.Namespace.members))
	for k, v := range t.inherited {
		merged[k] = v
	}
	add := func(key string, def *Type) error {
		if t.hasOwn(key) {
			// Own symbols hide inherited ones.
			return nil
		}
		prev, ok := merged[key]
		switch {
		case !ok, prev == def, prev.IsKindOf(def):
			if !ok {
				merged[key] = def
			}
		case def.IsKindOf(prev):
			merged[key] = def
		default:
			return NewError(AmbiguousSymbol, "%s inherits %s from both %s and %s", t.name, key, prev.name, def.name)
		}
		return nil
	}
	for key := range parent.members {
		if err := add(key, parent); err != nil {
			return err
		}
	}
	for key := range parent.Namespace.members {
		if err := add(key, parent); err != nil {
			return err
		}
	}
	for key, def := range parent.inherited {
		if err := add(key, def); err != nil {
			return err
		}
	}

	t.inherited = merged
	t.parents[parent] = Inheritance{Target: parent, ToParent: toParent, FromParent: fromParent}
	t.parentOrder = append(t.parentOrder, parent)
	if _, ok := t.ancestors[parent]; !ok {
		t.ancestors[parent] = parent
	}
	for a := range parent.ancestors {
		if _, ok := t.ancestors[a]; !ok {
			t.ancestors[a] = parent
		}
	}
	return nil
}

// Parents returns t's direct parents in registration order.
func (t *Type) Parents() []*Type {
	return append([]*Type(nil), t.parentOrder...)
}

// Ancestors returns every transitive ancestor of t in depth-first order
// without duplicates.
func (t *Type) Ancestors() []*Type {
	var r []*Type
	set := contains.Set{}
	set.Add(t.id)
	stack := []*Type{t}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur != t {
			r = append(r, cur)
		}
		// Push in reverse so that the first parent is visited first.
		for i := len(cur.parentOrder) - 1; i >= 0; i-- {
			p := cur.parentOrder[i]
			if set.Add(p.id) {
				stack = append(stack, p)
			}
		}
	}
	return r
}

// IsKindOf returns whether t is kind or has kind as an ancestor.
func (t *Type) IsKindOf(kind *Type) bool {
	if t == nil || kind == nil {
		return false
	}
	if t == kind {
		return true
	}
	_, ok := t.ancestors[kind]
	return ok
}

// IsDerivedFrom returns whether other is a transitive ancestor of t.
func (t *Type) IsDerivedFrom(other *Type) bool {
	_, ok := t.ancestors[other]
	return ok
}

// GetTypeCastingFrom returns the constructor overload of t which accepts a
// single value of type other, or nil if there is none. If implicitOnly is
// true, only constructors marked implicit are considered.
func (t *Type) GetTypeCastingFrom(other *Type, implicitOnly bool) *Overload {
	for _, o := range t.constructor.overloads {
		if implicitOnly && !o.Implicit {
			continue
		}
		if o.RepeatLast || len(o.Params) == 0 || o.Params[0].Type != other {
			continue
		}
		single := true
		for _, p := range o.Params[1:] {
			if !p.Optional {
				single = false
				break
			}
		}
		if single {
			return o
		}
	}
	return nil
}

// ToString formats a value of the type.
func (t *Type) ToString(d Data) string {
	if d.IsNull() {
		return "null"
	}
	if t.ops.String != nil {
		return t.ops.String(d)
	}
	if s, ok := d.Value().(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprint(d.Value())
}

// Parse creates a value of the type from text.
func (t *Type) Parse(s string) (Data, error) {
	if t.ops.Parse == nil {
		return Data{}, NewError(InvalidLiteral, "%s cannot be parsed from text", t.name)
	}
	v, err := t.ops.Parse(s)
	if err != nil {
		return Data{}, WrapError(InvalidLiteral, err, "cannot parse %q as %s", s, t.name)
	}
	return NewData(t, v), nil
}

// Assign writes the value of src into the reference dst. src must already be
// of type t.
func (t *Type) Assign(dst, src Data) error {
	if !dst.isRef {
		return NewError(ReadOnly, "cannot assign to a %s value which is not a reference", t.name)
	}
	if dst.isConst {
		return NewError(ConstantViolation, "cannot assign to a constant %s", t.name)
	}
	if dst.IsNull() {
		return NewError(NullValue, "cannot assign to a null %s", t.name)
	}
	if src.typ != t {
		return NewError(CastError, "cannot assign %s to %s", src.typ.Name(), t.name)
	}
	if t.isRef {
		if t.ops.Assign == nil {
			return NewError(ReadOnly, "objects of %s cannot be assigned to", t.name)
		}
		if src.IsNull() {
			return NewError(NullValue, "cannot assign a null %s", t.name)
		}
		return t.ops.Assign(dst.value, src.value)
	}
	cell := reflect.ValueOf(dst.value).Elem()
	v := src.Value()
	if v == nil {
		cell.Set(reflect.Zero(cell.Type()))
		return nil
	}
	rv := reflect.ValueOf(v)
	if !rv.Type().AssignableTo(cell.Type()) {
		return NewError(CastError, "cannot store %T in a %s", v, t.name)
	}
	cell.Set(rv)
	return nil
}

// Compare returns whether two values of the type are equal.
func (t *Type) Compare(l, r Data) bool {
	if l.IsNull() || r.IsNull() {
		return l.IsNull() && r.IsNull()
	}
	if t.ops.Equal != nil {
		return t.ops.Equal(l.Value(), r.Value())
	}
	if t.isRef {
		return l.value == r.value
	}
	return reflect.DeepEqual(l.Value(), r.Value())
}

// deleteObject calls the type's delete hook.
func (t *Type) deleteObject(obj interface{}) {
	if t.ops.Delete != nil {
		t.ops.Delete(obj)
	}
}

// newCell allocates a storage cell holding v.
func (t *Type) newCell(v interface{}) interface{} {
	gt := t.goType
	if gt == nil {
		if v == nil {
			panic("reflex: cannot make a reference to a nil " + t.name)
		}
		gt = reflect.TypeOf(v)
	}
	cell := reflect.New(gt)
	if v != nil {
		cell.Elem().Set(reflect.ValueOf(v))
	}
	return cell.Interface()
}

// seal makes the type read-only.
func (t *Type) seal() {
	t.Namespace.seal()
	t.constructor.sealed = true
}
