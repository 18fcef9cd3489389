/*
Package reflex implements an embeddable runtime for programs whose values
carry Go types.

A host program describes its types to a Registry: each Type wraps a Go type
and knows how to format, parse, assign, and delete its values, and it carries
member functions, constants, and instance members. Types may inherit from one
or more parents through explicit conversion functions. Libraries group the
types and free functions a program can see. The integral library, holding Int,
Float, Bool, Char, String, and the other built-in types, is present in every
registry, along with any core extension imported for side effects:

	import _ "github.com/zephyrtronium/reflex/coreext"

Once a registry is frozen, any number of VMs can run on it. A VM executes
already-decoded instructions from an InstructionSource: fixed lists, or an
InteractiveSource that grows as a host reads statements, such as in a REPL.
Package asm decodes instruction files written as YAML.

Values

Every value is a Data, which pairs a Type with a payload. Values of value
types are copied when stored; values of reference types share one object,
and the VM counts references to each object so that the type's delete hook
runs exactly once when the last reference goes away. Variables always hold
references, so assigning to a variable of a value type writes through to its
storage.

Calls

A call names a function, which may have many overloads. The overload resolver
scores each candidate against the arguments: identical types cost nothing,
conversions through inheritance or implicit constructors cost more, and the
cheapest candidate wins. Ties are reported as ambiguous. Member function calls
look up the function on the type of the first argument, which binds to the
implicit object parameter.

Programs can declare their own functions at run time with DeclOverload. The
body of such an overload runs in a new scope whose locals are its parameters.

Embedding

A minimal host looks like this:

	r := reflex.NewRegistry()
	r.Freeze()
	vm := reflex.NewVM(r)
	x := r.Integral
	result, err := vm.Execute(reflex.InstructionList{
		{Kind: reflex.MemberFunctionCall, Name: reflex.IdentifierValue("+"),
			Parameters: []reflex.Value{
				reflex.LiteralValue(vm.NewInt(1)),
				reflex.LiteralValue(reflex.NewData(x.Int, 2)),
			},
			Store: 1},
		{Kind: reflex.FunctionCall, Name: reflex.IdentifierValue("return"),
			Parameters: []reflex.Value{reflex.TempValue(1)}},
	})

An object returned by Execute is not held by the VM. It stays counted, and
its type's Delete hook does not run, until the host passes it to
vm.Discard.

Native functions receive the VM explicitly, so a function body can allocate
values, write to vm.Out, log to vm.Log, or inspect the call stack.
*/
package reflex

import "github.com/zephyrtronium/reflex/internal"

type (
	// Registry holds the libraries available to VMs.
	Registry = internal.Registry
	// Integral holds the built-in types of a registry.
	Integral = internal.Integral
	// VM executes instructions.
	VM = internal.VM
	// Data is a typed value.
	Data = internal.Data
	// Type is a runtime type.
	Type = internal.Type
	// TypeOps is the host behavior behind a Type.
	TypeOps = internal.TypeOps
	// Function is a set of overloads sharing a name.
	Function = internal.Function
	// Overload is one signature of a function.
	Overload = internal.Overload
	// Parameter describes one parameter of an overload.
	Parameter = internal.Parameter
	// Fn is a native overload body.
	Fn = internal.Fn
	// Callable is any overload body.
	Callable = internal.Callable
	// InstanceMember is a per-object property of a type.
	InstanceMember = internal.InstanceMember
	// Namespace is a named set of static members.
	Namespace = internal.Namespace
	// Library is a top-level namespace.
	Library = internal.Library
	// Constant is a named constant.
	Constant = internal.Constant
	// RefCounter counts references to objects.
	RefCounter = internal.RefCounter
	// Error is a runtime error.
	Error = internal.Error
	// ErrorKind classifies runtime errors.
	ErrorKind = internal.ErrorKind
	// Instruction is a single decoded instruction.
	Instruction = internal.Instruction
	// InstructionKind identifies what an instruction does.
	InstructionKind = internal.InstructionKind
	// Value is an instruction operand.
	Value = internal.Value
	// InstructionSource provides instructions to a scope.
	InstructionSource = internal.InstructionSource
	// InstructionList is a fixed instruction sequence.
	InstructionList = internal.InstructionList
	// InteractiveSource is an appendable instruction sequence.
	InteractiveSource = internal.InteractiveSource
	// OverloadTemplate describes a function declared at run time.
	OverloadTemplate = internal.OverloadTemplate
	// TemplateParam describes a parameter of an OverloadTemplate.
	TemplateParam = internal.TemplateParam
	// Frame describes a running scope.
	Frame = internal.Frame
	// DebugMessage is sent to a VM's debugger before each instruction.
	DebugMessage = internal.DebugMessage
)

// Error kinds.
const (
	OutOfBounds           = internal.OutOfBounds
	AmbiguousSymbol       = internal.AmbiguousSymbol
	SymbolNotFound        = internal.SymbolNotFound
	NullValue             = internal.NullValue
	UnexpectedKeyword     = internal.UnexpectedKeyword
	FlowError             = internal.FlowError
	MissingParameter      = internal.MissingParameter
	TooManyParameters     = internal.TooManyParameters
	ParameterError        = internal.ParameterError
	NoReturn              = internal.NoReturn
	CastError             = internal.CastError
	InstructionError      = internal.InstructionError
	MismatchedParenthesis = internal.MismatchedParenthesis
	UnexpectedToken       = internal.UnexpectedToken
	ConstantViolation     = internal.ConstantViolation
	InvalidLiteral        = internal.InvalidLiteral
	FileNotFound          = internal.FileNotFound
	ReadOnly              = internal.ReadOnly
)

// Instruction kinds.
const (
	NoOperation        = internal.NoOperation
	Assignment         = internal.Assignment
	SaveToTemp         = internal.SaveToTemp
	RemoveTemp         = internal.RemoveTemp
	FunctionCall       = internal.FunctionCall
	MemberFunctionCall = internal.MemberFunctionCall
	MethodCall         = internal.MethodCall
	MemberMethodCall   = internal.MemberMethodCall
	MemberToTemp       = internal.MemberToTemp
	MemberToVariable   = internal.MemberToVariable
	MemberAssignment   = internal.MemberAssignment
	Jump               = internal.Jump
	JumpTrue           = internal.JumpTrue
	JumpFalse          = internal.JumpFalse
	DeclOverload       = internal.DeclOverload
)

var (
	// NewRegistry creates a registry holding the integral library and every
	// registered extension.
	NewRegistry = internal.NewRegistry
	// NewVM creates a VM on a registry, freezing it.
	NewVM = internal.NewVM
	// Register adds an extension installer for future registries.
	Register = internal.Register

	NewType              = internal.NewType
	NewFunction          = internal.NewFunction
	NewOperator          = internal.NewOperator
	NewOverload          = internal.NewOverload
	Param                = internal.Param
	NewLibrary           = internal.NewLibrary
	NewNamespace         = internal.NewNamespace
	NewNamedConstant     = internal.NewNamedConstant
	NewInstanceMember    = internal.NewInstanceMember
	NewFieldMember       = internal.NewFieldMember
	NewData              = internal.NewData
	NewConstant          = internal.NewConstant
	NewReference         = internal.NewReference
	NewInteractiveSource = internal.NewInteractiveSource

	LiteralValue    = internal.LiteralValue
	TempValue       = internal.TempValue
	VariableValue   = internal.VariableValue
	IdentifierValue = internal.IdentifierValue

	// Morph converts a value to a type, optionally allowing implicit
	// constructors.
	Morph = internal.Morph
	// Cast converts a value to a type using any conversion.
	Cast = internal.Cast
	// Unwrap removes Variant wrappers.
	Unwrap = internal.Unwrap

	NewError  = internal.NewError
	WrapError = internal.WrapError
	IsKind    = internal.IsKind
	AsError   = internal.AsError
)
