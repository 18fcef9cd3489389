package internal

import "reflect"

// MemberGetter reads an instance member. self is a reference to the object or
// value cell which owns the member. The result should be a reference when the
// member is addressable.
type MemberGetter func(vm *VM, self Data) (Data, error)

// MemberSetter writes an instance member. value has already been morphed to
// the member's type.
type MemberSetter func(vm *VM, self Data, value Data) error

// InstanceMember is a named field-like accessor on values of a type.
type InstanceMember struct {
	name string
	help string
	typ  *Type
	// ReadOnly prevents Set. Getting a read-only member yields a constant.
	ReadOnly bool

	get MemberGetter
	set MemberSetter
}

// NewInstanceMember creates an instance member from accessor functions. If set
// is nil, the member is read-only.
func NewInstanceMember(name, help string, typ *Type, get MemberGetter, set MemberSetter) *InstanceMember {
	if get == nil {
		panic("reflex: instance member " + name + " has no getter")
	}
	return &InstanceMember{name: name, help: help, typ: typ, ReadOnly: set == nil, get: get, set: set}
}

// NewFieldMember creates an instance member which projects a struct field of
// the owner's payload. The owner type's Go shape must be a struct or a pointer
// to a struct with the named field. Getting the member yields a reference into
// the field that keeps its owner alive.
func NewFieldMember(name, help string, typ *Type, field string) *InstanceMember {
	m := &InstanceMember{name: name, help: help, typ: typ}
	m.get = func(vm *VM, self Data) (Data, error) {
		f, err := fieldOf(self, field)
		if err != nil {
			return Data{}, err
		}
		var d Data
		if typ.IsReferenceType() {
			d = NewReference(typ, f.Interface(), self.isConst)
		} else {
			d = NewReference(typ, f.Addr().Interface(), self.isConst)
		}
		if self.isCounted() {
			d = d.WithOwner(self)
		}
		return d, nil
	}
	m.set = func(vm *VM, self Data, value Data) error {
		f, err := fieldOf(self, field)
		if err != nil {
			return err
		}
		v := value.Value()
		if v == nil {
			f.Set(reflect.Zero(f.Type()))
			return nil
		}
		rv := reflect.ValueOf(v)
		if !rv.Type().AssignableTo(f.Type()) {
			return NewError(CastError, "cannot store %T in field %s", v, field)
		}
		f.Set(rv)
		return nil
	}
	return m
}

// fieldOf finds the addressable struct field of self's payload.
func fieldOf(self Data, field string) (reflect.Value, error) {
	if self.IsNull() {
		return reflect.Value{}, NewError(NullValue, "cannot access %s of a null %s", field, self.typ.Name())
	}
	if !self.isRef {
		return reflect.Value{}, NewError(ParameterError, "cannot access %s of a %s which is not a reference", field, self.typ.Name())
	}
	v := reflect.ValueOf(self.value)
	for v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return reflect.Value{}, NewError(ParameterError, "%s has no fields", self.typ.Name())
	}
	f := v.FieldByName(field)
	if !f.IsValid() || !f.CanSet() {
		return reflect.Value{}, NewError(SymbolNotFound, "%s has no settable field %s", self.typ.Name(), field)
	}
	return f, nil
}

// Name returns the member's name.
func (m *InstanceMember) Name() string {
	return m.name
}

// Help returns the member's help text.
func (m *InstanceMember) Help() string {
	return m.help
}

// Type returns the member's type.
func (m *InstanceMember) Type() *Type {
	return m.typ
}

// Get reads the member of self.
func (m *InstanceMember) Get(vm *VM, self Data) (Data, error) {
	d, err := m.get(vm, self)
	if err != nil {
		return Data{}, err
	}
	if d.typ != m.typ && !m.typ.isAny {
		panic("reflex: member " + m.name + " produced " + d.typ.Name() + " instead of " + m.typ.Name())
	}
	if m.ReadOnly || self.isConst {
		d = d.MakeConstant()
	}
	return d, nil
}

// Set writes value to the member of self, morphing it to the member's type.
func (m *InstanceMember) Set(vm *VM, self Data, value Data) error {
	if m.ReadOnly || m.set == nil {
		return NewError(ReadOnly, "member %s is read-only", m.name)
	}
	if self.isConst {
		return NewError(ConstantViolation, "cannot set %s of a constant %s", m.name, self.typ.Name())
	}
	v, err := Morph(vm, value, m.typ, true)
	if err != nil {
		return err
	}
	return m.set(vm, self, v)
}
