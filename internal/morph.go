package internal

import "fmt"

// MorphKind classifies how a value of one type can be converted to another.
type MorphKind int

// Morph kinds.
const (
	// NotPossible means there is no conversion.
	NotPossible MorphKind = iota
	// Identical means the value is used as-is, either because the types are
	// the same or because the target is the universal type.
	Identical
	// UpCasting converts to an ancestor through inheritance edges.
	UpCasting
	// DownCasting converts to a descendant through inheritance edges. It
	// requires a reference and can fail at run time.
	DownCasting
	// TypeCasting calls an implicit single-argument constructor of the
	// target type.
	TypeCasting
)

var morphKindNames = [...]string{"not possible", "identical", "upcasting", "downcasting", "typecasting"}

// String returns the name of the kind.
func (k MorphKind) String() string {
	if k < NotPossible || k > TypeCasting {
		return fmt.Sprintf("MorphKind(%d)", int(k))
	}
	return morphKindNames[k]
}

// CanMorphTo classifies the conversion of a value of t to target without
// performing it.
func (t *Type) CanMorphTo(target *Type) MorphKind {
	switch {
	case t == nil || target == nil:
		return NotPossible
	case t == target, target.isAny:
		return Identical
	case t.IsDerivedFrom(target):
		return UpCasting
	case target.IsDerivedFrom(t):
		return DownCasting
	case target.GetTypeCastingFrom(t, true) != nil:
		return TypeCasting
	}
	return NotPossible
}

// unwrapVariant returns the value held by a value of the universal type.
func unwrapVariant(d Data) Data {
	for d.typ != nil && d.typ.isAny {
		inner, ok := d.Value().(Data)
		if !ok || !inner.IsValid() {
			return d
		}
		if d.isConst {
			inner = inner.MakeConstant()
		}
		d = inner
	}
	return d
}

// Unwrap returns the value held by d if it is of the universal type, or d
// itself otherwise.
func Unwrap(d Data) Data {
	return unwrapVariant(d)
}

// Morph converts d to target. Values of the universal type are unwrapped
// first. If allowTypeCast is true, implicit constructors of target may be
// used.
func Morph(vm *VM, d Data, target *Type, allowTypeCast bool) (Data, error) {
	if !d.IsValid() {
		return Data{}, NewError(NullValue, "cannot convert an invalid value to %s", target.Name())
	}
	if !target.isAny {
		d = unwrapVariant(d)
	}
	return d.typ.MorphTo(vm, target, d, allowTypeCast)
}

// MorphTo converts d, which must be a value of t, to target. The result is
// always exactly of type target.
func (t *Type) MorphTo(vm *VM, target *Type, d Data, allowTypeCast bool) (Data, error) {
	if d.typ != t {
		panic(fmt.Sprintf("reflex: MorphTo on %s with a %s", t.Name(), d.typ.Name()))
	}
	r, err := t.morph(vm, target, d, allowTypeCast)
	if err != nil {
		return Data{}, err
	}
	if r.typ != target {
		panic(fmt.Sprintf("reflex: converting %s to %s produced %s", t.Name(), target.Name(), r.typ.Name()))
	}
	return r, nil
}

func (t *Type) morph(vm *VM, target *Type, d Data, allowTypeCast bool) (Data, error) {
	if target == t {
		return d, nil
	}
	if target.isAny {
		r := NewData(target, d)
		r.isConst = d.isConst
		return r, nil
	}
	if t.isAny {
		inner := unwrapVariant(d)
		if inner.typ == t {
			return Data{}, NewError(NullValue, "cannot convert an empty %s to %s", t.name, target.name)
		}
		return inner.typ.MorphTo(vm, target, inner, allowTypeCast)
	}

	if edge, ok := t.parents[target]; ok {
		return edge.ToParent(d)
	}
	if via, ok := t.ancestors[target]; ok {
		mid, err := t.MorphTo(vm, via, d, false)
		if err != nil {
			return Data{}, err
		}
		return via.MorphTo(vm, target, mid, false)
	}
	if via, ok := target.ancestors[t]; ok {
		if !d.isRef && !(t.isRef && target.isRef) {
			return Data{}, NewError(CastError, "cannot convert %s to %s: source type is not derived from destination and the data is not a reference", t.name, target.name)
		}
		// via is the parent of target through which t is reached. Convert
		// down to via first, then across the last edge.
		if via != t {
			mid, err := t.MorphTo(vm, via, d, false)
			if err != nil {
				return Data{}, err
			}
			d = mid
		}
		return target.parents[via].FromParent(d)
	}
	if allowTypeCast {
		if o := target.GetTypeCastingFrom(t, true); o != nil {
			return castWith(vm, o, d)
		}
	}
	return Data{}, NewError(CastError, "cannot convert %s to %s", t.name, target.name)
}

// Cast converts d to target like Morph, but may use any single-argument
// constructor of target rather than only implicit ones.
func Cast(vm *VM, d Data, target *Type) (Data, error) {
	if !d.IsValid() {
		return Data{}, NewError(NullValue, "cannot convert an invalid value to %s", target.Name())
	}
	d = unwrapVariant(d)
	if k := d.typ.CanMorphTo(target); k != NotPossible {
		return Morph(vm, d, target, true)
	}
	if o := target.GetTypeCastingFrom(d.typ, false); o != nil {
		r, err := castWith(vm, o, d)
		if err != nil {
			return Data{}, err
		}
		if r.typ != target {
			panic(fmt.Sprintf("reflex: casting %s to %s produced %s", d.typ.Name(), target.Name(), r.typ.Name()))
		}
		return r, nil
	}
	return Data{}, NewError(CastError, "cannot convert %s to %s", d.typ.Name(), target.Name())
}

// castWith calls a single-argument constructor overload.
func castWith(vm *VM, o *Overload, d Data) (Data, error) {
	args, err := Bind(vm, o, []Argument{{Data: d}})
	if err != nil {
		return Data{}, err
	}
	return o.Call(vm, false, args)
}
