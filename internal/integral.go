package internal

import (
	"fmt"
	"math"
	"strconv"
	"unicode/utf8"
)

// Integral holds the builtin types and functions which every registry
// contains.
type Integral struct {
	Library *Library

	// Variant is the universal type. A Variant holds any other value.
	Variant *Type
	Int     *Type
	Float   *Type
	Bool    *Type
	Char    *Type
	String  *Type
	// Type, Function, and Namespace are the types of registry objects used as
	// values. Type inherits Namespace.
	Type      *Type
	Function  *Type
	Namespace *Type
	// OverloadTemplate is the type of DeclOverload operands.
	OverloadTemplate *Type
}

// IntegralName is the name of the integral library.
const IntegralName = "Integral"

// newIntegral creates the integral library. It panics if the library is
// inconsistent, as that is a programming error.
func newIntegral() *Integral {
	x := &Integral{Library: NewLibrary(IntegralName, "Builtin types and functions.")}
	x.Variant = NewType("Variant", "Holds a value of any type.", Data{}, false, TypeOps{
		String: func(d Data) string {
			inner, _ := d.Value().(Data)
			return inner.String()
		},
		Equal: func(l, r interface{}) bool {
			ld, rd := l.(Data), r.(Data)
			return ld.typ == rd.typ && ld.typ != nil && ld.typ.Compare(ld, rd)
		},
	})
	x.Variant.isAny = true
	x.Int = NewType("Int", "A signed integer.", 0, false, TypeOps{
		Parse: func(s string) (interface{}, error) {
			return strconv.Atoi(s)
		},
	})
	x.Float = NewType("Float", "A double-precision floating-point number.", 0.0, false, TypeOps{
		String: func(d Data) string {
			return strconv.FormatFloat(d.Value().(float64), 'g', -1, 64)
		},
		Parse: func(s string) (interface{}, error) {
			return strconv.ParseFloat(s, 64)
		},
	})
	x.Bool = NewType("Bool", "A truth value.", false, false, TypeOps{
		Parse: func(s string) (interface{}, error) {
			return strconv.ParseBool(s)
		},
	})
	x.Char = NewType("Char", "A single Unicode code point.", rune(0), false, TypeOps{
		String: func(d Data) string {
			return string(d.Value().(rune))
		},
		Parse: func(s string) (interface{}, error) {
			r, n := utf8.DecodeRuneInString(s)
			if n == 0 || n != len(s) {
				return nil, fmt.Errorf("%q is not a single character", s)
			}
			return r, nil
		},
	})
	x.String = NewType("String", "A sequence of characters.", "", false, TypeOps{
		Parse: func(s string) (interface{}, error) {
			return s, nil
		},
	})
	x.Namespace = NewType("Namespace", "A table of named symbols.", (*Namespace)(nil), false, TypeOps{
		String: func(d Data) string {
			if ns := d.Value().(*Namespace); ns != nil {
				return "namespace " + ns.Name()
			}
			return "namespace"
		},
	})
	x.Type = NewType("Type", "A registered type.", (*Type)(nil), false, TypeOps{
		String: func(d Data) string {
			if t := d.Value().(*Type); t != nil {
				return "type " + t.Name()
			}
			return "type"
		},
	})
	x.Function = NewType("Function", "A function with its overloads.", (*Function)(nil), false, TypeOps{
		String: func(d Data) string {
			if f := d.Value().(*Function); f != nil {
				return "function " + f.String()
			}
			return "function"
		},
	})
	x.OverloadTemplate = NewType("OverloadTemplate", "The body and signature of a function declared at run time.", (*OverloadTemplate)(nil), false, TypeOps{})

	must := func(err error) {
		if err != nil {
			panic(fmt.Errorf("reflex: integral library: %w", err))
		}
	}
	must(x.Type.AddInheritance(x.Namespace,
		func(d Data) (Data, error) {
			r := NewData(x.Namespace, &d.Value().(*Type).Namespace)
			r.isConst = d.isConst
			return r, nil
		},
		func(d Data) (Data, error) {
			ns := d.Value().(*Namespace)
			if ns == nil || ns.OwnerType() == nil {
				return Data{}, NewError(CastError, "namespace is not a type")
			}
			r := NewData(x.Type, ns.OwnerType())
			r.isConst = d.isConst
			return r, nil
		},
	))
	must(x.Library.AddTypes(x.Variant, x.Int, x.Float, x.Bool, x.Char, x.String, x.Type, x.Function, x.Namespace, x.OverloadTemplate))
	must(x.addConstructors())
	must(x.addOperators())
	must(x.addFunctions())
	must(x.Library.Add(NewNamedConstant("True", "The true value.", NewData(x.Bool, true))))
	must(x.Library.Add(NewNamedConstant("False", "The false value.", NewData(x.Bool, false))))
	must(x.Library.Add(NewNamedConstant("Pi", "The ratio of a circle's circumference to its diameter.", NewData(x.Float, math.Pi))))
	return x
}

// Param creates a by-value parameter.
func Param(name string, typ *Type) *Parameter {
	return &Parameter{Name: name, Type: typ}
}

// TypeValue boxes a type as a value of the Type type.
func (x *Integral) TypeValue(t *Type) Data {
	return NewConstant(x.Type, t)
}

// FunctionValue boxes a function as a value of the Function type.
func (x *Integral) FunctionValue(f *Function) Data {
	return NewConstant(x.Function, f)
}

// NamespaceValue boxes a namespace as a value of the Namespace type.
func (x *Integral) NamespaceValue(n *Namespace) Data {
	return NewConstant(x.Namespace, n)
}

// MemberValue boxes a static member as a value.
func (x *Integral) MemberValue(m StaticMember) Data {
	switch m := m.(type) {
	case *Type:
		return x.TypeValue(m)
	case *Function:
		return x.FunctionValue(m)
	case *Namespace:
		return x.NamespaceValue(m)
	case *Library:
		return x.NamespaceValue(&m.Namespace)
	case *Constant:
		return m.Value()
	}
	panic(fmt.Sprintf("reflex: unknown static member %T", m))
}

func (x *Integral) addConstructors() error {
	toFloat := &Overload{
		Params:   []*Parameter{Param("value", x.Int)},
		Implicit: true,
		Body: Fn(func(vm *VM, args []Data) (Data, error) {
			return NewData(x.Float, float64(args[0].Value().(int))), nil
		}),
	}
	toInt := NewOverload(func(vm *VM, args []Data) (Data, error) {
		f := args[0].Value().(float64)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return Data{}, NewError(OutOfBounds, "%v cannot be converted to Int", f)
		}
		return NewData(x.Int, int(f)), nil
	}, nil, Param("value", x.Float))
	parseInt := NewOverload(func(vm *VM, args []Data) (Data, error) {
		return x.Int.Parse(args[0].Value().(string))
	}, nil, Param("text", x.String))
	if err := x.Float.AddConstructor(toFloat); err != nil {
		return err
	}
	if err := x.Int.AddConstructor(toInt); err != nil {
		return err
	}
	if err := x.Int.AddConstructor(parseInt); err != nil {
		return err
	}
	for _, t := range []*Type{x.Int, x.Float, x.Bool, x.Char} {
		t := t
		o := NewOverload(func(vm *VM, args []Data) (Data, error) {
			return NewData(x.String, t.ToString(args[0])), nil
		}, nil, Param("value", t))
		if err := x.String.AddConstructor(o); err != nil {
			return err
		}
	}
	return nil
}

func (x *Integral) addFunctions() error {
	write := func(newline bool) Fn {
		return func(vm *VM, args []Data) (Data, error) {
			for _, a := range args {
				if _, err := fmt.Fprint(vm.Out, a.String()); err != nil {
					return Data{}, err
				}
			}
			if newline {
				if _, err := fmt.Fprintln(vm.Out); err != nil {
					return Data{}, err
				}
			}
			return Data{}, nil
		}
	}
	variadic := func() *Parameter {
		return &Parameter{Name: "values", Type: x.Variant, Optional: true, AllowNull: true}
	}
	printFn := NewFunction("Print", "Writes values to the output.")
	if err := printFn.AddMethod(&Overload{Params: []*Parameter{variadic()}, RepeatLast: true, StretchLast: true, Body: write(false)}); err != nil {
		return err
	}
	printlnFn := NewFunction("Println", "Writes values to the output followed by a newline.")
	if err := printlnFn.AddMethod(&Overload{Params: []*Parameter{variadic()}, RepeatLast: true, StretchLast: true, Body: write(true)}); err != nil {
		return err
	}

	echo := NewFunction("Echo", "Returns its argument.")
	if err := echo.AddOverload(NewOverload(func(vm *VM, args []Data) (Data, error) {
		return args[0], nil
	}, x.Variant, &Parameter{Name: "value", Type: x.Variant, AllowNull: true})); err != nil {
		return err
	}

	typeOf := NewFunction("TypeOf", "Returns the type of a value.")
	if err := typeOf.AddOverload(NewOverload(func(vm *VM, args []Data) (Data, error) {
		return x.TypeValue(args[0].Type()), nil
	}, x.Type, &Parameter{Name: "value", Type: x.Variant, AllowNull: true})); err != nil {
		return err
	}

	isNull := NewFunction("IsNull", "Returns whether a value is a null reference.")
	if err := isNull.AddOverload(NewOverload(func(vm *VM, args []Data) (Data, error) {
		return NewData(x.Bool, args[0].IsNull()), nil
	}, x.Bool, &Parameter{Name: "value", Type: x.Variant, AllowNull: true})); err != nil {
		return err
	}

	using := NewFunction("Using", "Imports the members of a namespace into the current scope.")
	if err := using.AddMethod(&Overload{
		Params: []*Parameter{Param("namespace", x.Namespace)},
		Body: Fn(func(vm *VM, args []Data) (Data, error) {
			return Data{}, vm.UsingNamespace(args[0].Value().(*Namespace))
		}),
	}); err != nil {
		return err
	}

	length := NewFunction("Length", "Returns the number of characters in a string.")
	if err := length.AddOverload(NewOverload(func(vm *VM, args []Data) (Data, error) {
		return NewData(x.Int, utf8.RuneCountInString(args[0].Value().(string))), nil
	}, x.Int, Param("text", x.String))); err != nil {
		return err
	}

	isDefined := NewFunction("IsDefined", "Returns whether a name refers to a symbol.")
	if err := isDefined.AddOverload(NewOverload(func(vm *VM, args []Data) (Data, error) {
		_, err := vm.FindSymbol(args[0].Value().(string))
		return NewData(x.Bool, err == nil), nil
	}, x.Bool, &Parameter{Name: "name", Variable: true})); err != nil {
		return err
	}

	parse := NewFunction("Parse", "Creates a value of a type from text.")
	if err := parse.AddOverload(NewOverload(func(vm *VM, args []Data) (Data, error) {
		t := args[0].Value().(*Type)
		d, err := t.Parse(args[1].Value().(string))
		if err != nil {
			return Data{}, err
		}
		return d, nil
	}, x.Variant, Param("type", x.Type), Param("text", x.String))); err != nil {
		return err
	}

	cast := NewFunction("Cast", "Converts a value to a type, using any single-argument constructor.")
	if err := cast.AddOverload(NewOverload(func(vm *VM, args []Data) (Data, error) {
		return Cast(vm, args[1], args[0].Value().(*Type))
	}, x.Variant, Param("type", x.Type), Param("value", x.Variant))); err != nil {
		return err
	}

	return x.Library.AddFunctions(printFn, printlnFn, echo, typeOf, isNull, using, length, isDefined, parse, cast)
}
