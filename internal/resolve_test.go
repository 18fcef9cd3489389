package internal_test

import (
	"testing"

	"github.com/zephyrtronium/reflex/internal"
	"github.com/zephyrtronium/reflex/testutils"
)

func constFn(r internal.Data) internal.Fn {
	return func(vm *internal.VM, args []internal.Data) (internal.Data, error) {
		return r, nil
	}
}

func TestResolveDeterministic(t *testing.T) {
	vm := testutils.VM()
	x := vm.Integral()
	f := internal.NewFunction("Pick", "")
	ints := internal.NewOverload(constFn(vm.NewInt(0)), x.Int, internal.Param("v", x.Int))
	floats := internal.NewOverload(constFn(vm.NewInt(1)), x.Int, internal.Param("v", x.Float))
	strs := internal.NewOverload(constFn(vm.NewInt(2)), x.Int, internal.Param("v", x.String))
	for _, o := range []*internal.Overload{ints, floats, strs} {
		if err := f.AddOverload(o); err != nil {
			t.Fatal(err)
		}
	}
	cases := map[string]struct {
		arg  internal.Data
		want *internal.Overload
	}{
		"Int":     {vm.NewInt(1), ints},
		"Float":   {vm.NewFloat(1), floats},
		"String":  {vm.NewString("1"), strs},
		"IntRef":  {vm.NewInt(1).MakeReference(), ints},
		"Variant": {internal.NewData(x.Variant, vm.NewFloat(1)), floats},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			args := internal.Args(c.arg)
			first, _, err := internal.Resolve(f, args, false)
			if err != nil {
				t.Fatal(err)
			}
			second, _, err := internal.Resolve(f, args, false)
			if err != nil {
				t.Fatal(err)
			}
			if first != c.want || second != c.want {
				t.Errorf("wrong overloads: want %v twice, got %v and %v", c.want, first, second)
			}
		})
	}
}

func TestResolveAmbiguous(t *testing.T) {
	vm := testutils.VM()
	x := vm.Integral()
	f := internal.NewFunction("Pair", "")
	must(f.AddOverload(internal.NewOverload(constFn(vm.NewInt(0)), x.Int, internal.Param("a", x.Int), internal.Param("b", x.Float))))
	must(f.AddOverload(internal.NewOverload(constFn(vm.NewInt(1)), x.Int, internal.Param("a", x.Float), internal.Param("b", x.Int))))
	_, _, err := internal.Resolve(f, internal.Args(vm.NewInt(1), vm.NewInt(2)), false)
	if !internal.IsKind(err, internal.AmbiguousSymbol) {
		t.Errorf("wrong error: want ambiguous symbol, got %v", err)
	}
	// An exact match breaks the tie.
	o, _, err := internal.Resolve(f, internal.Args(vm.NewInt(1), vm.NewFloat(2)), false)
	if err != nil {
		t.Fatal(err)
	}
	if o.Params[0].Type != x.Int {
		t.Errorf("wrong overload %v", o)
	}
}

func TestResolveNoMatch(t *testing.T) {
	vm := testutils.VM()
	x := vm.Integral()
	f := internal.NewFunction("Pick", "")
	must(f.AddOverload(internal.NewOverload(constFn(vm.NewInt(0)), x.Int, internal.Param("v", x.Int))))
	must(f.AddOverload(internal.NewOverload(constFn(vm.NewInt(1)), x.Int, internal.Param("v", x.String))))
	cases := map[string]struct {
		args []internal.Argument
		want internal.ErrorKind
	}{
		"Type":    {internal.Args(vm.NewBool(true)), internal.ParameterError},
		"Count":   {internal.Args(vm.NewInt(1), vm.NewInt(2)), internal.ParameterError},
		"Unbound": {[]internal.Argument{{Name: "ghost", Unbound: true}}, internal.SymbolNotFound},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := internal.Resolve(f, c.args, false)
			if !internal.IsKind(err, c.want) {
				t.Errorf("wrong error: want %v, got %v", c.want, err)
			}
		})
	}
}

// TestResolveMethods tests that statements prefer methods and expressions
// prefer overloads, falling back to the other set.
func TestResolveMethods(t *testing.T) {
	vm := testutils.VM()
	x := vm.Integral()
	f := internal.NewFunction("Show", "")
	over := internal.NewOverload(constFn(vm.NewInt(0)), x.Int, internal.Param("v", x.Int))
	meth := internal.NewOverload(constFn(internal.Data{}), nil, internal.Param("v", x.Int))
	must(f.AddOverload(over))
	must(f.AddMethod(meth))
	args := internal.Args(vm.NewInt(1))
	if o, isMethod, err := internal.Resolve(f, args, true); err != nil || o != meth || !isMethod {
		t.Errorf("statement chose %v (method %v), %v", o, isMethod, err)
	}
	if o, isMethod, err := internal.Resolve(f, args, false); err != nil || o != over || isMethod {
		t.Errorf("expression chose %v (method %v), %v", o, isMethod, err)
	}
	g := internal.NewFunction("Log", "")
	log := internal.NewOverload(constFn(internal.Data{}), nil, internal.Param("v", x.Int))
	must(g.AddMethod(log))
	if o, isMethod, err := internal.Resolve(g, args, false); err != nil || o != log || !isMethod {
		t.Errorf("expression did not fall back to the method: %v (method %v), %v", o, isMethod, err)
	}
	if !meth.IsMethod() || over.IsMethod() {
		t.Error("IsMethod is wrong")
	}
}

// TestResolveOperator tests that operators prefer the overload taking the
// owner type.
func TestResolveOperator(t *testing.T) {
	vm := testutils.VM()
	x := vm.Integral()
	plus, err := x.Int.LookupFunction("+")
	if err != nil {
		t.Fatal(err)
	}
	cases := map[string]struct {
		r    internal.Data
		want *internal.Type
	}{
		"Int":   {vm.NewInt(2), x.Int},
		"Float": {vm.NewFloat(2), x.Float},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			o, _, err := internal.Resolve(plus, internal.Args(vm.NewInt(1), c.r), false)
			if err != nil {
				t.Fatal(err)
			}
			if o.Params[0].Type != c.want {
				t.Errorf("wrong overload %v", o)
			}
		})
	}
}

// TestScoreUpcastReference tests that a Dog reference passed to an Animal
// reference parameter scores as an upcast and passes the same object.
func TestScoreUpcastReference(t *testing.T) {
	vm, z := zooVM(nil)
	d, err := vm.FindSymbol("Describe")
	if err != nil {
		t.Fatal(err)
	}
	describe := d.Value().(*internal.Function)
	o := describe.Overloads()[0]
	p := &pet{Name: "rex", Species: "dog"}
	args := internal.Args(internal.NewData(z.Dog, p))
	score, ok := internal.ScoreOverload(o, args)
	if !ok || score != 2 {
		t.Errorf("wrong score: want 2 true, got %d %v", score, ok)
	}
	r, err := internal.Call(vm, describe, args, false)
	if err != nil {
		t.Fatal(err)
	}
	if r.Value().(string) != "rex" {
		t.Errorf("wrong result %v", r)
	}
	if z.seen != p {
		t.Errorf("Describe received a different object: %p vs %p", z.seen, p)
	}
}

func TestScoreParameters(t *testing.T) {
	vm := testutils.VM()
	x := vm.Integral()
	one := vm.NewInt(1)
	deleted := 0
	box := boxType(&deleted)
	cases := map[string]struct {
		p    *internal.Parameter
		arg  internal.Data
		want int
		ok   bool
	}{
		"Identical":          {internal.Param("v", x.Int), one, 0, true},
		"RefToValue":         {internal.Param("v", x.Int), one.MakeReference(), 1, true},
		"TypeCast":           {internal.Param("v", x.Float), one, 10, true},
		"Variant":            {internal.Param("v", x.Variant), one, 0, true},
		"RefParam":           {&internal.Parameter{Type: x.Int, Reference: true}, one.MakeReference(), 0, true},
		"RefParamValue":      {&internal.Parameter{Type: x.Int, Reference: true}, one, 0, false},
		"ConstRefParamValue": {&internal.Parameter{Type: x.Int, Reference: true, Constant: true}, one, 1, true},
		"ConstRefParam":      {&internal.Parameter{Type: x.Int, Reference: true, Constant: true}, one.MakeReference(), 1, true},
		"ConstArg":           {&internal.Parameter{Type: x.Int, Reference: true}, one.MakeConstant().MakeReference(), 0, false},
		"Null":               {internal.Param("v", box), internal.NewData(box, (*pet)(nil)), 0, false},
		"AllowNull":          {&internal.Parameter{Type: box, AllowNull: true}, internal.NewData(box, (*pet)(nil)), 0, true},
		"Options":            {&internal.Parameter{Type: x.String, Options: []internal.Data{vm.NewString("Yes"), vm.NewString("No")}}, vm.NewString("yes"), 0, true},
		"NotAnOption":        {&internal.Parameter{Type: x.String, Options: []internal.Data{vm.NewString("Yes"), vm.NewString("No")}}, vm.NewString("maybe"), 0, false},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			o := internal.NewOverload(constFn(internal.Data{}), nil, c.p)
			score, ok := internal.ScoreOverload(o, internal.Args(c.arg))
			if ok != c.ok || ok && score != c.want {
				t.Errorf("wrong score: want %d %v, got %d %v", c.want, c.ok, score, ok)
			}
		})
	}
}

func TestBindErrors(t *testing.T) {
	vm, z := zooVM(nil)
	x := vm.Integral()
	one := internal.NewOverload(constFn(internal.Data{}), nil, internal.Param("v", x.Int))
	ref := internal.NewOverload(constFn(internal.Data{}), nil, &internal.Parameter{Name: "v", Type: x.Int, Reference: true})
	animal := internal.NewOverload(constFn(internal.Data{}), nil, &internal.Parameter{Name: "a", Type: z.Animal, Reference: true})
	cases := map[string]struct {
		o    *internal.Overload
		args []internal.Argument
		want internal.ErrorKind
	}{
		"Missing":  {one, nil, internal.MissingParameter},
		"TooMany":  {one, internal.Args(vm.NewInt(1), vm.NewInt(2)), internal.TooManyParameters},
		"Unbound":  {one, []internal.Argument{{Name: "ghost", Unbound: true}}, internal.SymbolNotFound},
		"Null":     {animal, internal.Args(internal.NewData(z.Animal, (*pet)(nil))), internal.NullValue},
		"Constant": {ref, internal.Args(vm.NewInt(1).MakeConstant().MakeReference()), internal.ConstantViolation},
		"NotRef":   {ref, internal.Args(vm.NewInt(1)), internal.ParameterError},
		"Cast":     {one, internal.Args(vm.NewString("1")), internal.CastError},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := internal.Bind(vm, c.o, c.args)
			if !internal.IsKind(err, c.want) {
				t.Errorf("wrong error: want %v, got %v", c.want, err)
			}
		})
	}
}

// TestBindDefaults tests that missing optional arguments receive defaults.
func TestBindDefaults(t *testing.T) {
	vm := testutils.VM()
	x := vm.Integral()
	o := internal.NewOverload(constFn(internal.Data{}), nil,
		internal.Param("a", x.Int),
		&internal.Parameter{Name: "b", Type: x.Int, Optional: true, Default: vm.NewInt(7)},
		&internal.Parameter{Name: "c", Type: x.String, Optional: true},
	)
	args, err := internal.Bind(vm, o, internal.Args(vm.NewInt(1)))
	if err != nil {
		t.Fatal(err)
	}
	if len(args) != 3 {
		t.Fatalf("wrong number of arguments: want 3, got %d", len(args))
	}
	if args[1].Value().(int) != 7 || args[2].Value().(string) != "" {
		t.Errorf("wrong defaults %v, %v", args[1], args[2])
	}
}

// TestRepeatLast tests that a repeating last parameter with no arguments is
// accepted only when it is optional.
func TestRepeatLast(t *testing.T) {
	vm, z := zooVM(nil)
	label := lit(vm.NewString("x"))
	cases := map[string]struct {
		prog internal.InstructionList
		want int
		kind internal.ErrorKind
		fail bool
	}{
		"RequiredNone": {internal.InstructionList{call("Tag", 1, label), ret(tmp(1))}, 0, internal.MissingParameter, true},
		"RequiredSome": {internal.InstructionList{call("Tag", 1, label, lit(vm.NewInt(1)), lit(vm.NewInt(2)), lit(vm.NewInt(3))), ret(tmp(1))}, 3, 0, false},
		"OptionalNone": {internal.InstructionList{call("TagOpt", 1, label), ret(tmp(1))}, 0, 0, false},
		"OptionalSome": {internal.InstructionList{call("TagOpt", 1, label, lit(vm.NewInt(1))), ret(tmp(1))}, 1, 0, false},
		"WrongExtra":   {internal.InstructionList{call("Tag", 1, label, lit(vm.NewInt(1)), lit(vm.NewString("2"))), ret(tmp(1))}, 0, internal.CastError, true},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			r, err := vm.Execute(c.prog)
			if c.fail {
				if !internal.IsKind(err, c.kind) {
					t.Errorf("wrong error: want %v, got %v", c.kind, err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if r.Value().(int) != c.want || z.tags != c.want {
				t.Errorf("wrong count: want %d, got %v (%d)", c.want, r, z.tags)
			}
		})
	}
}

func TestConstruct(t *testing.T) {
	vm := testutils.VM()
	x := vm.Integral()
	cases := map[string]struct {
		typ  *internal.Type
		args []internal.Argument
		want internal.Data
	}{
		"IntDefault":    {x.Int, nil, vm.NewInt(0)},
		"StringDefault": {x.String, nil, vm.NewString("")},
		"IntFromFloat":  {x.Int, internal.Args(vm.NewFloat(2.7)), vm.NewInt(2)},
		"IntFromString": {x.Int, internal.Args(vm.NewString("41")), vm.NewInt(41)},
		"StringFromInt": {x.String, internal.Args(vm.NewInt(5)), vm.NewString("5")},
		"FloatFromInt":  {x.Float, internal.Args(vm.NewInt(5)), vm.NewFloat(5)},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			r, err := c.typ.Construct(vm, c.args)
			if err != nil {
				t.Fatal(err)
			}
			if r.Type() != c.want.Type() || !r.Type().Compare(r, c.want) {
				t.Errorf("wrong result: want %v, got %v", c.want, r)
			}
		})
	}
}

func TestConstructTies(t *testing.T) {
	vm := testutils.VM()
	x := vm.Integral()
	ctor := func(t *internal.Type, params ...*internal.Parameter) *internal.Overload {
		return internal.NewOverload(constFn(internal.NewData(t, 0)), nil, params...)
	}
	exact := internal.NewType("Exact", "", 0, false, internal.TypeOps{})
	must(exact.AddConstructor(ctor(exact, internal.Param("a", x.Int))))
	must(exact.AddConstructor(ctor(exact, internal.Param("a", x.Int), &internal.Parameter{Name: "b", Type: x.String, Optional: true})))
	loose := internal.NewType("Loose", "", 0, false, internal.TypeOps{})
	must(loose.AddConstructor(ctor(loose, internal.Param("a", x.Float))))
	must(loose.AddConstructor(ctor(loose, internal.Param("a", x.Float), &internal.Parameter{Name: "b", Type: x.String, Optional: true})))
	cases := map[string]struct {
		typ  *internal.Type
		want internal.ErrorKind
	}{
		"Exact": {exact, internal.AmbiguousSymbol},
		"Loose": {loose, internal.SymbolNotFound},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := c.typ.Construct(vm, internal.Args(vm.NewInt(1)))
			if !internal.IsKind(err, c.want) {
				t.Errorf("wrong error: want %v, got %v", c.want, err)
			}
		})
	}
	if _, err := x.Int.Construct(vm, internal.Args(vm.NewBool(true))); !internal.IsKind(err, internal.ParameterError) {
		t.Errorf("constructing Int from Bool: want parameter error, got %v", err)
	}
}
