package internal

import (
	"fmt"
	"reflect"
)

// Data is a boxed runtime value: a type handle paired with an erased payload.
//
// The payload's Go shape is determined by the type and the reference flag.
// Values of value types hold the value itself, and references to them hold a
// pointer to a storage cell, so that writing through the reference changes the
// variable it was taken from. Values of reference types always hold the
// object pointer and are always references. The constant flag does not change
// the shape.
//
// Copying a Data with Go assignment moves it; use Retain to copy it with
// reference counting and Release to drop it.
type Data struct {
	typ     *Type
	value   interface{}
	isRef   bool
	isConst bool
	// owner keeps an aggregate alive while this Data, typically a member
	// projection, refers into it.
	owner *Data
}

// Invalid returns the zero Data, which has no type.
func Invalid() Data {
	return Data{}
}

// NewData boxes value as a non-constant Data of typ. If typ is a reference
// type, value must be the object pointer and the result is a reference.
func NewData(typ *Type, value interface{}) Data {
	if typ == nil {
		panic("reflex: NewData with nil type")
	}
	return Data{typ: typ, value: value, isRef: typ.IsReferenceType()}
}

// NewConstant boxes value as a constant Data of typ.
func NewConstant(typ *Type, value interface{}) Data {
	d := NewData(typ, value)
	d.isConst = true
	return d
}

// NewReference boxes a reference. For value types, ptr must be a pointer to a
// storage cell holding a value of the type's Go shape.
func NewReference(typ *Type, ptr interface{}, constant bool) Data {
	if typ == nil {
		panic("reflex: NewReference with nil type")
	}
	if !typ.IsReferenceType() && ptr != nil && reflect.TypeOf(ptr).Kind() != reflect.Ptr {
		panic(fmt.Sprintf("reflex: reference to %s must be a pointer, not %T", typ.Name(), ptr))
	}
	return Data{typ: typ, value: ptr, isRef: true, isConst: constant}
}

// IsValid returns whether the Data has a type.
func (d Data) IsValid() bool {
	return d.typ != nil
}

// Type returns the Data's type, or nil if it is invalid.
func (d Data) Type() *Type {
	return d.typ
}

// IsReference returns whether the Data is a reference.
func (d Data) IsReference() bool {
	return d.isRef
}

// IsConstant returns whether the Data is constant.
func (d Data) IsConstant() bool {
	return d.isConst
}

// IsNull returns whether the Data is an invalid value or a reference to no
// object.
func (d Data) IsNull() bool {
	if d.typ == nil {
		return true
	}
	if !d.isRef {
		return false
	}
	if d.value == nil {
		return true
	}
	v := reflect.ValueOf(d.value)
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}

// Payload returns the raw payload: the value, the storage cell pointer, or
// the object pointer.
func (d Data) Payload() interface{} {
	return d.value
}

// Value returns the value held by the Data. References to value types are
// dereferenced; reference types return the object pointer.
func (d Data) Value() interface{} {
	if d.isRef && d.typ != nil && !d.typ.IsReferenceType() && d.value != nil {
		return reflect.ValueOf(d.value).Elem().Interface()
	}
	return d.value
}

// Owner returns the aggregate this Data refers into, if any.
func (d Data) Owner() *Data {
	return d.owner
}

// WithOwner returns a copy of d linked to owner.
func (d Data) WithOwner(owner Data) Data {
	d.owner = &owner
	return d
}

// MakeConstant returns a constant copy of d.
func (d Data) MakeConstant() Data {
	d.isConst = true
	return d
}

// DeReference returns a non-reference copy of the value held by d. For
// reference types, the result still refers to the same object, so only the
// constant flag is cleared.
func (d Data) DeReference() Data {
	if d.typ == nil {
		return d
	}
	if d.typ.IsReferenceType() {
		return Data{typ: d.typ, value: d.value, isRef: true}
	}
	return Data{typ: d.typ, value: d.Value()}
}

// MakeReference returns a reference to a fresh storage cell holding a copy of
// d's value. References to reference types are returned unchanged.
func (d Data) MakeReference() Data {
	if d.typ == nil || d.typ.IsReferenceType() {
		return d
	}
	cell := d.typ.newCell(d.Value())
	return Data{typ: d.typ, value: cell, isRef: true, isConst: d.isConst}
}

// isCounted returns whether the payload participates in reference counting.
func (d Data) isCounted() bool {
	return d.isRef && d.typ != nil && d.typ.IsReferenceType()
}

// Retain increments the reference count of the object d refers to, along with
// its owner, and returns d. Panics if d is not a reference.
func (d Data) Retain(c *RefCounter) Data {
	if !d.isRef {
		panic("reflex: Retain on a non-reference Data of type " + d.typ.Name())
	}
	c.Increase(d.value)
	if d.owner != nil && d.owner.isRef {
		d.owner.Retain(c)
	}
	return d
}

// Release decrements the reference count of the object d refers to, along
// with its owner. Panics if d is not a reference.
func (d Data) Release(c *RefCounter) {
	if !d.isRef {
		panic("reflex: Release on a non-reference Data of type " + d.typ.Name())
	}
	c.Decrease(d.value)
	if d.owner != nil && d.owner.isRef {
		d.owner.Release(c)
	}
}

// String returns the type's string form of the value.
func (d Data) String() string {
	if d.typ == nil {
		return "<invalid>"
	}
	return d.typ.ToString(d)
}

// GoString describes the Data for debugging.
func (d Data) GoString() string {
	if d.typ == nil {
		return "Data{invalid}"
	}
	return fmt.Sprintf("Data{%s %#v ref=%v const=%v}", d.typ.Name(), d.value, d.isRef, d.isConst)
}
