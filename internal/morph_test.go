package internal_test

import (
	"math"
	"strings"
	"testing"

	"github.com/zephyrtronium/reflex/internal"
	"github.com/zephyrtronium/reflex/testutils"
)

func TestCanMorphTo(t *testing.T) {
	vm, z := zooVM(nil)
	x := vm.Integral()
	cases := map[string]struct {
		from, to *internal.Type
		want     internal.MorphKind
	}{
		"Same":             {x.Int, x.Int, internal.Identical},
		"Variant":          {z.Dog, x.Variant, internal.Identical},
		"IntFloat":         {x.Int, x.Float, internal.TypeCasting},
		"FloatInt":         {x.Float, x.Int, internal.NotPossible},
		"StringInt":        {x.String, x.Int, internal.NotPossible},
		"Upcast":           {z.Dog, z.Animal, internal.UpCasting},
		"Downcast":         {z.Animal, z.Dog, internal.DownCasting},
		"TypeNamespace":    {x.Type, x.Namespace, internal.UpCasting},
		"NamespaceType":    {x.Namespace, x.Type, internal.DownCasting},
		"Unrelated":        {z.Dog, x.Int, internal.NotPossible},
		"NilTarget":        {x.Int, nil, internal.NotPossible},
		"FunctionToString": {x.Function, x.String, internal.NotPossible},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			if got := c.from.CanMorphTo(c.to); got != c.want {
				t.Errorf("wrong kind: want %v, got %v", c.want, got)
			}
		})
	}
}

// TestMorphRoundTrip tests that converting a reference up and back down
// produces the same object.
func TestMorphRoundTrip(t *testing.T) {
	vm, z := zooVM(nil)
	p := &pet{Name: "rex", Species: "dog"}
	d := internal.NewData(z.Dog, p)
	up, err := z.Dog.MorphTo(vm, z.Animal, d, false)
	if err != nil {
		t.Fatal(err)
	}
	if up.Type() != z.Animal {
		t.Errorf("upcast produced %v", up.Type())
	}
	down, err := z.Animal.MorphTo(vm, z.Dog, up, false)
	if err != nil {
		t.Fatal(err)
	}
	if down.Type() != z.Dog {
		t.Errorf("downcast produced %v", down.Type())
	}
	if down.Payload() != interface{}(p) {
		t.Errorf("round trip produced a different object: %p vs %p", down.Payload(), p)
	}
}

func TestMorphDowncastWrongObject(t *testing.T) {
	vm, z := zooVM(nil)
	cat := internal.NewData(z.Animal, &pet{Name: "tom", Species: "cat"})
	_, err := z.Animal.MorphTo(vm, z.Dog, cat, false)
	if !internal.IsKind(err, internal.CastError) {
		t.Errorf("wrong error: want cast error, got %v", err)
	}
}

// valueAnimals creates a value-type hierarchy, where values are copies.
func valueAnimals() (animal, dog *internal.Type) {
	animal = internal.NewType("Animal", "A creature by value.", pet{}, false, internal.TypeOps{})
	dog = internal.NewType("Dog", "A good creature by value.", pet{}, false, internal.TypeOps{})
	must(dog.AddInheritance(animal,
		func(d internal.Data) (internal.Data, error) {
			return internal.NewData(animal, d.Value()), nil
		},
		func(d internal.Data) (internal.Data, error) {
			if d.Value().(pet).Species != "dog" {
				return internal.Data{}, internal.NewError(internal.CastError, "not a dog")
			}
			return internal.NewReference(dog, d.Payload(), d.IsConstant()), nil
		},
	))
	return animal, dog
}

func TestMorphDowncastNeedsReference(t *testing.T) {
	vm := testutils.VM()
	animal, dog := valueAnimals()
	v := internal.NewData(animal, pet{Name: "rex", Species: "dog"})
	_, err := animal.MorphTo(vm, dog, v, false)
	if !internal.IsKind(err, internal.CastError) {
		t.Fatalf("wrong error: want cast error, got %v", err)
	}
	if !strings.Contains(err.Error(), "source type is not derived from destination and the data is not a reference") {
		t.Errorf("wrong message: %v", err)
	}
	r, err := animal.MorphTo(vm, dog, v.MakeReference(), false)
	if err != nil {
		t.Fatal(err)
	}
	if r.Type() != dog || r.Value().(pet).Name != "rex" {
		t.Errorf("wrong result %#v", r)
	}
}

func TestMorphTypeCast(t *testing.T) {
	vm := testutils.VM()
	x := vm.Integral()
	one := vm.NewInt(1)
	if _, err := internal.Morph(vm, one, x.Float, false); !internal.IsKind(err, internal.CastError) {
		t.Errorf("typecast without permission: want cast error, got %v", err)
	}
	r, err := internal.Morph(vm, one, x.Float, true)
	if err != nil {
		t.Fatal(err)
	}
	if r.Type() != x.Float || r.Value().(float64) != 1 {
		t.Errorf("wrong result %#v", r)
	}
	// Int(Float) is not implicit.
	if _, err := internal.Morph(vm, vm.NewFloat(2.5), x.Int, true); !internal.IsKind(err, internal.CastError) {
		t.Errorf("explicit constructor used implicitly: got %v", err)
	}
}

func TestCast(t *testing.T) {
	vm := testutils.VM()
	x := vm.Integral()
	cases := map[string]struct {
		d    internal.Data
		to   *internal.Type
		want internal.Data
		kind internal.ErrorKind
		fail bool
	}{
		"Implicit":     {d: vm.NewInt(3), to: x.Float, want: vm.NewFloat(3)},
		"Explicit":     {d: vm.NewFloat(2.5), to: x.Int, want: vm.NewInt(2)},
		"ParseInt":     {d: vm.NewString("12"), to: x.Int, want: vm.NewInt(12)},
		"BadParse":     {d: vm.NewString("twelve"), to: x.Int, kind: internal.InvalidLiteral, fail: true},
		"ToString":     {d: vm.NewBool(true), to: x.String, want: vm.NewString("true")},
		"NoConversion": {d: vm.NewBool(true), to: x.Int, kind: internal.CastError, fail: true},
		"Infinite":     {d: vm.NewFloat(math.Inf(1)), to: x.Int, kind: internal.OutOfBounds, fail: true},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			r, err := internal.Cast(vm, c.d, c.to)
			if c.fail {
				if !internal.IsKind(err, c.kind) {
					t.Errorf("wrong error: want %v, got %v", c.kind, err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if r.Type() != c.want.Type() || !r.Type().Compare(r, c.want) {
				t.Errorf("wrong result: want %v, got %v", c.want, r)
			}
		})
	}
}

func TestMorphVariant(t *testing.T) {
	vm := testutils.VM()
	x := vm.Integral()
	v, err := internal.Morph(vm, vm.NewInt(3), x.Variant, false)
	if err != nil {
		t.Fatal(err)
	}
	if v.Type() != x.Variant {
		t.Fatalf("wrapping produced %v", v.Type())
	}
	if u := internal.Unwrap(v); u.Type() != x.Int || u.Value().(int) != 3 {
		t.Errorf("unwrapping produced %#v", u)
	}
	f, err := internal.Morph(vm, v, x.Float, true)
	if err != nil {
		t.Fatal(err)
	}
	if f.Value().(float64) != 3 {
		t.Errorf("converting a variant produced %#v", f)
	}
	if _, err := internal.Morph(vm, internal.Invalid(), x.Int, true); !internal.IsKind(err, internal.NullValue) {
		t.Errorf("converting an invalid value: want null value, got %v", err)
	}
}

// TestMorphNamespace tests the inheritance edge from Type to Namespace.
func TestMorphNamespace(t *testing.T) {
	vm := testutils.VM()
	x := vm.Integral()
	ns, err := internal.Morph(vm, x.TypeValue(x.Int), x.Namespace, false)
	if err != nil {
		t.Fatal(err)
	}
	if got := ns.Value().(*internal.Namespace); got.OwnerType() != x.Int {
		t.Errorf("namespace of Int is owned by %v", got.OwnerType())
	}
	if !ns.IsConstant() {
		t.Error("converting a constant type produced a mutable namespace")
	}
	back, err := internal.Morph(vm, ns.MakeReference(), x.Type, false)
	if err != nil {
		t.Fatal(err)
	}
	if back.Value().(*internal.Type) != x.Int {
		t.Errorf("round trip produced %v", back)
	}
	lib := x.NamespaceValue(&x.Library.Namespace).MakeReference()
	if _, err := internal.Morph(vm, lib, x.Type, false); !internal.IsKind(err, internal.CastError) {
		t.Errorf("library converted to a type: %v", err)
	}
}
