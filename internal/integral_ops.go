package internal

import (
	"math"
	"strings"
)

// binop adds a const instance overload of an operator taking one argument.
func binop(t *Type, name string, arg, ret *Type, fn func(l, r interface{}) (interface{}, error)) error {
	return t.Define(NewOperator(name, "The "+name+" operator."), &Overload{
		Params:     []*Parameter{{Name: "other", Type: arg, Constant: true}},
		ReturnType: ret,
		Const:      true,
		Body: Fn(func(vm *VM, args []Data) (Data, error) {
			v, err := fn(args[0].Value(), args[1].Value())
			if err != nil {
				return Data{}, err
			}
			return NewData(ret, v), nil
		}),
	})
}

// opTable lists the overloads of a family of operators.
type opTable []struct {
	name string
	arg  *Type
	ret  *Type
	fn   func(l, r interface{}) (interface{}, error)
}

func (tab opTable) install(t *Type) error {
	for _, op := range tab {
		if err := binop(t, op.name, op.arg, op.ret, op.fn); err != nil {
			return err
		}
	}
	return nil
}

func divisionByZero() error {
	return NewError(ParameterError, "division by zero")
}

func (x *Integral) addOperators() error {
	ints := opTable{
		{"+", x.Int, x.Int, func(l, r interface{}) (interface{}, error) { return l.(int) + r.(int), nil }},
		{"-", x.Int, x.Int, func(l, r interface{}) (interface{}, error) { return l.(int) - r.(int), nil }},
		{"*", x.Int, x.Int, func(l, r interface{}) (interface{}, error) { return l.(int) * r.(int), nil }},
		{"/", x.Int, x.Int, func(l, r interface{}) (interface{}, error) {
			if r.(int) == 0 {
				return nil, divisionByZero()
			}
			return l.(int) / r.(int), nil
		}},
		{"%", x.Int, x.Int, func(l, r interface{}) (interface{}, error) {
			if r.(int) == 0 {
				return nil, divisionByZero()
			}
			return l.(int) % r.(int), nil
		}},
		{"==", x.Int, x.Bool, func(l, r interface{}) (interface{}, error) { return l.(int) == r.(int), nil }},
		{"!=", x.Int, x.Bool, func(l, r interface{}) (interface{}, error) { return l.(int) != r.(int), nil }},
		{"<", x.Int, x.Bool, func(l, r interface{}) (interface{}, error) { return l.(int) < r.(int), nil }},
		{">", x.Int, x.Bool, func(l, r interface{}) (interface{}, error) { return l.(int) > r.(int), nil }},
		{"<=", x.Int, x.Bool, func(l, r interface{}) (interface{}, error) { return l.(int) <= r.(int), nil }},
		{">=", x.Int, x.Bool, func(l, r interface{}) (interface{}, error) { return l.(int) >= r.(int), nil }},
		// Mixed arithmetic promotes to Float.
		{"+", x.Float, x.Float, func(l, r interface{}) (interface{}, error) { return float64(l.(int)) + r.(float64), nil }},
		{"-", x.Float, x.Float, func(l, r interface{}) (interface{}, error) { return float64(l.(int)) - r.(float64), nil }},
		{"*", x.Float, x.Float, func(l, r interface{}) (interface{}, error) { return float64(l.(int)) * r.(float64), nil }},
		{"/", x.Float, x.Float, func(l, r interface{}) (interface{}, error) { return float64(l.(int)) / r.(float64), nil }},
	}
	floats := opTable{
		{"+", x.Float, x.Float, func(l, r interface{}) (interface{}, error) { return l.(float64) + r.(float64), nil }},
		{"-", x.Float, x.Float, func(l, r interface{}) (interface{}, error) { return l.(float64) - r.(float64), nil }},
		{"*", x.Float, x.Float, func(l, r interface{}) (interface{}, error) { return l.(float64) * r.(float64), nil }},
		{"/", x.Float, x.Float, func(l, r interface{}) (interface{}, error) { return l.(float64) / r.(float64), nil }},
		{"%", x.Float, x.Float, func(l, r interface{}) (interface{}, error) { return math.Mod(l.(float64), r.(float64)), nil }},
		{"==", x.Float, x.Bool, func(l, r interface{}) (interface{}, error) { return l.(float64) == r.(float64), nil }},
		{"!=", x.Float, x.Bool, func(l, r interface{}) (interface{}, error) { return l.(float64) != r.(float64), nil }},
		{"<", x.Float, x.Bool, func(l, r interface{}) (interface{}, error) { return l.(float64) < r.(float64), nil }},
		{">", x.Float, x.Bool, func(l, r interface{}) (interface{}, error) { return l.(float64) > r.(float64), nil }},
		{"<=", x.Float, x.Bool, func(l, r interface{}) (interface{}, error) { return l.(float64) <= r.(float64), nil }},
		{">=", x.Float, x.Bool, func(l, r interface{}) (interface{}, error) { return l.(float64) >= r.(float64), nil }},
	}
	strs := opTable{
		{"+", x.String, x.String, func(l, r interface{}) (interface{}, error) { return l.(string) + r.(string), nil }},
		{"==", x.String, x.Bool, func(l, r interface{}) (interface{}, error) { return l.(string) == r.(string), nil }},
		{"!=", x.String, x.Bool, func(l, r interface{}) (interface{}, error) { return l.(string) != r.(string), nil }},
		{"<", x.String, x.Bool, func(l, r interface{}) (interface{}, error) { return l.(string) < r.(string), nil }},
		{">", x.String, x.Bool, func(l, r interface{}) (interface{}, error) { return l.(string) > r.(string), nil }},
	}
	bools := opTable{
		{"and", x.Bool, x.Bool, func(l, r interface{}) (interface{}, error) { return l.(bool) && r.(bool), nil }},
		{"or", x.Bool, x.Bool, func(l, r interface{}) (interface{}, error) { return l.(bool) || r.(bool), nil }},
		{"==", x.Bool, x.Bool, func(l, r interface{}) (interface{}, error) { return l.(bool) == r.(bool), nil }},
		{"!=", x.Bool, x.Bool, func(l, r interface{}) (interface{}, error) { return l.(bool) != r.(bool), nil }},
	}
	chars := opTable{
		{"==", x.Char, x.Bool, func(l, r interface{}) (interface{}, error) { return l.(rune) == r.(rune), nil }},
		{"!=", x.Char, x.Bool, func(l, r interface{}) (interface{}, error) { return l.(rune) != r.(rune), nil }},
	}
	for _, tab := range []struct {
		t   *Type
		ops opTable
	}{{x.Int, ints}, {x.Float, floats}, {x.String, strs}, {x.Bool, bools}, {x.Char, chars}} {
		if err := tab.ops.install(tab.t); err != nil {
			return err
		}
	}

	// String concatenation with any other value uses its string form. The
	// exact String overload takes precedence through the operator tie-break.
	concat, err := x.String.LookupFunction("+")
	if err != nil {
		return err
	}
	if err := concat.AddOverload(&Overload{
		Params:     []*Parameter{{Name: "other", Type: x.Variant, Constant: true, AllowNull: true}},
		ReturnType: x.String,
		Const:      true,
		Body: Fn(func(vm *VM, args []Data) (Data, error) {
			return NewData(x.String, args[0].Value().(string)+args[1].String()), nil
		}),
	}); err != nil {
		return err
	}

	not := NewOperator("not", "Logical negation.")
	if err := not.AddOverload(&Overload{
		ReturnType: x.Bool,
		Const:      true,
		Body: Fn(func(vm *VM, args []Data) (Data, error) {
			return NewData(x.Bool, !args[0].Value().(bool)), nil
		}),
	}); err != nil {
		return err
	}
	if err := x.Bool.AddFunction(not); err != nil {
		return err
	}

	upper := NewFunction("Upper", "Returns the string in upper case.")
	if err := upper.AddOverload(&Overload{
		ReturnType: x.String,
		Const:      true,
		Body: Fn(func(vm *VM, args []Data) (Data, error) {
			return NewData(x.String, strings.ToUpper(args[0].Value().(string))), nil
		}),
	}); err != nil {
		return err
	}
	return x.String.AddFunction(upper)
}
