package internal

import (
	"fmt"
	"strings"
)

// Callable is the body of an overload.
type Callable interface {
	// Call executes the body. args are already bound to the overload's
	// parameters, with the object first for instance functions. Bodies called
	// as methods return an invalid Data.
	Call(vm *VM, o *Overload, isMethod bool, args []Data) (Data, error)
}

// Fn is a native overload body.
type Fn func(vm *VM, args []Data) (Data, error)

// Call calls f.
func (f Fn) Call(vm *VM, o *Overload, isMethod bool, args []Data) (Data, error) {
	return f(vm, args)
}

// Function is a named overload set. Overloads are called for their results,
// and Methods are called as statements which write any output to the VM's
// output writer instead of returning it.
type Function struct {
	name string
	help string
	// owner is the type the function belongs to, if any.
	owner *Type
	// static is true for functions in a type's namespace which take no
	// implicit object parameter.
	static bool
	// constructs is true for the constructor set of a type.
	constructs bool
	// IsOperator marks operator functions, which prefer overloads whose
	// parameter type is exactly the owner type.
	IsOperator bool

	overloads []*Overload
	methods   []*Overload
	sealed    bool
}

// NewFunction creates a function with no overloads.
func NewFunction(name, help string) *Function {
	return &Function{name: name, help: help}
}

// NewOperator creates an operator function with no overloads.
func NewOperator(name, help string) *Function {
	return &Function{name: name, help: help, IsOperator: true}
}

// Name returns the function's name.
func (f *Function) Name() string {
	return f.name
}

// Help returns the function's help text.
func (f *Function) Help() string {
	return f.help
}

// Kind returns FunctionMember.
func (f *Function) Kind() MemberKind {
	return FunctionMember
}

// Owner returns the type the function belongs to, or nil for free functions.
func (f *Function) Owner() *Type {
	return f.owner
}

// IsInstance returns whether overloads of the function take the object they
// are called on as an implicit first argument.
func (f *Function) IsInstance() bool {
	return f.owner != nil && !f.static && !f.constructs
}

// Overloads returns the function's value-style overloads.
func (f *Function) Overloads() []*Overload {
	return f.overloads
}

// Methods returns the function's statement-style overloads.
func (f *Function) Methods() []*Overload {
	return f.methods
}

// thisParam returns the implicit object parameter for an overload of an
// instance function.
func (f *Function) thisParam(o *Overload) *Parameter {
	return &Parameter{Name: "this", Type: f.owner, Reference: true, Constant: o.Const}
}

// AddOverload adds a value-style overload.
func (f *Function) AddOverload(o *Overload) error {
	if err := f.checkOverload(o); err != nil {
		return err
	}
	o.Parent = f
	f.overloads = append(f.overloads, o)
	return nil
}

// AddMethod adds a statement-style overload. Methods cannot declare a return
// type.
func (f *Function) AddMethod(o *Overload) error {
	if o.ReturnType != nil {
		return NewError(ParameterError, "method %s cannot return %s", f.name, o.ReturnType.Name())
	}
	if f.constructs {
		return NewError(ParameterError, "constructor of %s cannot be a method", f.owner.Name())
	}
	if err := f.checkOverload(o); err != nil {
		return err
	}
	o.Parent = f
	f.methods = append(f.methods, o)
	return nil
}

// checkOverload validates the shape of an overload.
func (f *Function) checkOverload(o *Overload) error {
	if f.sealed {
		return NewError(ReadOnly, "cannot add an overload to %s after registration", f.name)
	}
	if o.Body == nil {
		return NewError(ParameterError, "overload of %s has no body", f.name)
	}
	if o.RepeatLast && len(o.Params) == 0 {
		return NewError(ParameterError, "overload of %s repeats its last parameter but has none", f.name)
	}
	optional := false
	for i, p := range o.Params {
		if p == nil || (p.Type == nil && !p.Variable) {
			return NewError(ParameterError, "parameter %d of %s has no type", i+1, f.name)
		}
		if p.Optional {
			optional = true
		} else if optional {
			return NewError(ParameterError, "parameter %s of %s follows an optional parameter", p.Name, f.name)
		}
		for _, opt := range p.Options {
			if opt.typ != p.Type {
				return NewError(ParameterError, "option %v of parameter %s is not a %s", opt, p.Name, p.Type.Name())
			}
		}
	}
	if o.Implicit && !f.constructs {
		return NewError(ParameterError, "only constructors can be implicit, not %s", f.name)
	}
	return nil
}

// String returns the qualified name of the function.
func (f *Function) String() string {
	if f.owner != nil && !f.constructs {
		return f.owner.Name() + ":" + f.name
	}
	return f.name
}

// Overload is one signature of a function.
type Overload struct {
	// Parent is the function the overload belongs to.
	Parent *Function
	// Help is documentation specific to this overload.
	Help string
	// Params are the declared parameters, excluding the implicit object
	// parameter of instance functions.
	Params []*Parameter
	// ReturnType is the type of the result, or nil if there is none.
	ReturnType *Type
	// Const marks instance overloads which do not modify the object.
	Const bool
	// ReturnsRef and ReturnsConst describe the result.
	ReturnsRef   bool
	ReturnsConst bool
	// RepeatLast allows any number of extra arguments, each bound to the
	// type of the last parameter.
	RepeatLast bool
	// StretchLast hints that console callers join trailing words into the
	// last argument. It has no effect on typed calls.
	StretchLast bool
	// Implicit marks single-argument constructors used for automatic type
	// casting.
	Implicit bool
	// Body executes the overload.
	Body Callable
}

// NewOverload creates an overload with a native body.
func NewOverload(fn Fn, ret *Type, params ...*Parameter) *Overload {
	return &Overload{Params: params, ReturnType: ret, Body: fn}
}

// IsMethod returns whether the overload is in its function's method set.
func (o *Overload) IsMethod() bool {
	if o.Parent == nil {
		return false
	}
	for _, m := range o.Parent.methods {
		if m == o {
			return true
		}
	}
	return false
}

// Call calls the overload's body with already bound arguments and shapes the
// result according to the overload's return flags.
func (o *Overload) Call(vm *VM, isMethod bool, args []Data) (Data, error) {
	r, err := o.Body.Call(vm, o, isMethod, args)
	if err != nil {
		return Data{}, err
	}
	if o.ReturnType == nil {
		return Data{}, nil
	}
	if !r.IsValid() {
		return Data{}, NewError(NoReturn, "%v did not return a %s", o, o.ReturnType.Name())
	}
	if r.typ != o.ReturnType && !o.ReturnType.isAny {
		r, err = Morph(vm, r, o.ReturnType, false)
		if err != nil {
			return Data{}, err
		}
	}
	if !o.ReturnsRef && r.isRef {
		r = r.DeReference()
	}
	if o.ReturnsConst {
		r = r.MakeConstant()
	}
	return r, nil
}

// String formats the overload's signature.
func (o *Overload) String() string {
	var b strings.Builder
	if o.Parent != nil {
		b.WriteString(o.Parent.String())
	}
	b.WriteByte('(')
	for i, p := range o.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.String())
	}
	if o.RepeatLast {
		b.WriteString("...")
	}
	b.WriteByte(')')
	if o.Const {
		b.WriteString(" const")
	}
	if o.ReturnType != nil {
		b.WriteString(" ")
		b.WriteString(o.ReturnType.Name())
	}
	return b.String()
}

// Parameter describes one parameter of an overload.
type Parameter struct {
	Name string
	Help string
	Type *Type
	// Default is used for a missing optional argument. If it is invalid, the
	// type's default value is used instead.
	Default Data
	// Options, if not empty, lists the only values the parameter accepts.
	// Textual options are compared without regard to case.
	Options []Data

	Optional  bool
	Reference bool
	Constant  bool
	// Variable parameters accept the name of a variable, which need not be
	// defined, and receive it as a String.
	Variable  bool
	AllowNull bool
}

// String formats the parameter.
func (p *Parameter) String() string {
	var b strings.Builder
	if p.Constant {
		b.WriteString("const ")
	}
	switch {
	case p.Variable:
		b.WriteString("name")
	case p.Type != nil:
		b.WriteString(p.Type.Name())
	}
	if p.Reference {
		b.WriteString(" ref")
	}
	if p.Name != "" {
		fmt.Fprintf(&b, " %s", p.Name)
	}
	if p.Optional {
		b.WriteString("?")
	}
	return b.String()
}
