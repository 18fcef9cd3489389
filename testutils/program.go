package testutils

import "github.com/zephyrtronium/reflex/internal"

// Lit creates a literal operand.
func Lit(d internal.Data) internal.Value { return internal.LiteralValue(d) }

// Temp creates a temporary slot operand.
func Temp(slot int) internal.Value { return internal.TempValue(slot) }

// Var creates a variable operand.
func Var(name string) internal.Value { return internal.VariableValue(name) }

// Call creates a FunctionCall instruction storing into slot store.
func Call(name string, store int, params ...internal.Value) *internal.Instruction {
	return &internal.Instruction{Kind: internal.FunctionCall, Name: internal.IdentifierValue(name), Parameters: params, Store: store}
}

// Method creates a MethodCall instruction.
func Method(name string, params ...internal.Value) *internal.Instruction {
	return &internal.Instruction{Kind: internal.MethodCall, Name: internal.IdentifierValue(name), Parameters: params}
}

// MemberCall creates a MemberFunctionCall instruction on the first parameter.
func MemberCall(name string, store int, params ...internal.Value) *internal.Instruction {
	return &internal.Instruction{Kind: internal.MemberFunctionCall, Name: internal.IdentifierValue(name), Parameters: params, Store: store}
}

// Get creates a MemberToTemp instruction.
func Get(obj internal.Value, member string, store int) *internal.Instruction {
	return &internal.Instruction{Kind: internal.MemberToTemp, Name: internal.IdentifierValue(member), Parameters: []internal.Value{obj}, Store: store}
}

// SetMember creates a MemberAssignment instruction.
func SetMember(obj internal.Value, member string, v internal.Value) *internal.Instruction {
	return &internal.Instruction{Kind: internal.MemberAssignment, Name: internal.IdentifierValue(member), Parameters: []internal.Value{obj}, RHS: v}
}

// Set creates an Assignment instruction.
func Set(name string, v internal.Value) *internal.Instruction {
	return &internal.Instruction{Kind: internal.Assignment, Name: internal.VariableValue(name), RHS: v}
}

// Return creates a call to return.
func Return(v ...internal.Value) *internal.Instruction {
	return Call("return", 0, v...)
}

// MemberMethod creates a MemberMethodCall instruction on the first parameter.
func MemberMethod(name string, params ...internal.Value) *internal.Instruction {
	return &internal.Instruction{Kind: internal.MemberMethodCall, Name: internal.IdentifierValue(name), Parameters: params}
}
