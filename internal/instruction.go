package internal

import (
	"fmt"
	"strings"
)

// InstructionKind identifies what an instruction does.
type InstructionKind int

// Instruction kinds.
const (
	// NoOperation does nothing.
	NoOperation InstructionKind = iota
	// Assignment stores RHS into the variable named by Name, creating it in
	// the current scope if it does not exist. If Reference is set, the
	// variable becomes an alias of RHS.
	Assignment
	// SaveToTemp stores RHS into temporary slot Store.
	SaveToTemp
	// RemoveTemp ends the lifetime of temporary slot Store.
	RemoveTemp
	// FunctionCall calls the function, type, or function-valued variable
	// named by Name with Parameters and stores the result into Store if it
	// is nonzero.
	FunctionCall
	// MemberFunctionCall calls the member function named by Name on the type
	// of the first parameter.
	MemberFunctionCall
	// MethodCall is a statement-style FunctionCall.
	MethodCall
	// MemberMethodCall is a statement-style MemberFunctionCall.
	MemberMethodCall
	// MemberToTemp reads the instance member named by Name from the first
	// parameter into temporary slot Store.
	MemberToTemp
	// MemberToVariable reads the instance member named by Name from the first
	// parameter into the variable named by RHS.
	MemberToVariable
	// MemberAssignment writes RHS to the instance member named by Name of the
	// first parameter.
	MemberAssignment
	// Jump moves execution by JumpOffset instructions relative to itself.
	Jump
	// JumpTrue jumps if RHS converts to true.
	JumpTrue
	// JumpFalse jumps if RHS converts to false.
	JumpFalse
	// DeclOverload adds the overload template held by RHS to the function
	// variable named by Name, creating the function if it does not exist.
	DeclOverload
)

var instructionNames = [...]string{
	"NoOperation",
	"Assignment",
	"SaveToTemp",
	"RemoveTemp",
	"FunctionCall",
	"MemberFunctionCall",
	"MethodCall",
	"MemberMethodCall",
	"MemberToTemp",
	"MemberToVariable",
	"MemberAssignment",
	"Jump",
	"JumpTrue",
	"JumpFalse",
	"DeclOverload",
}

// String returns the name of the kind.
func (k InstructionKind) String() string {
	if k < NoOperation || k > DeclOverload {
		return fmt.Sprintf("InstructionKind(%d)", int(k))
	}
	return instructionNames[k]
}

// ParseInstructionKind finds an instruction kind by name, ignoring case.
func ParseInstructionKind(s string) (InstructionKind, error) {
	for i, name := range instructionNames {
		if strings.EqualFold(name, s) {
			return InstructionKind(i), nil
		}
	}
	return 0, NewError(InstructionError, "unknown instruction kind %q", s)
}

// ValueKind identifies where an instruction operand comes from.
type ValueKind int

// Value kinds.
const (
	// NoValue is an absent operand.
	NoValue ValueKind = iota
	// Literal is an embedded Data.
	Literal
	// Temp is a temporary slot, 1-based relative to the scope's window.
	Temp
	// Variable is a local variable of the current or root scope.
	Variable
	// Identifier is a colon-separated symbol path.
	Identifier
)

var valueKindNames = [...]string{"none", "literal", "temp", "variable", "identifier"}

// String returns the name of the kind.
func (k ValueKind) String() string {
	if k < NoValue || k > Identifier {
		return fmt.Sprintf("ValueKind(%d)", int(k))
	}
	return valueKindNames[k]
}

// Value is an instruction operand.
type Value struct {
	Kind    ValueKind
	Literal Data
	Temp    int
	Name    string
}

// LiteralValue creates a literal operand.
func LiteralValue(d Data) Value {
	return Value{Kind: Literal, Literal: d}
}

// TempValue creates a temporary slot operand.
func TempValue(slot int) Value {
	return Value{Kind: Temp, Temp: slot}
}

// VariableValue creates a variable operand.
func VariableValue(name string) Value {
	return Value{Kind: Variable, Name: name}
}

// IdentifierValue creates a symbol path operand.
func IdentifierValue(path string) Value {
	return Value{Kind: Identifier, Name: path}
}

// String formats the operand.
func (v Value) String() string {
	switch v.Kind {
	case Literal:
		return v.Literal.String()
	case Temp:
		return fmt.Sprintf("$%d", v.Temp)
	case Variable, Identifier:
		return v.Name
	}
	return "_"
}

// Instruction is a single decoded instruction.
type Instruction struct {
	Kind       InstructionKind
	Name       Value
	RHS        Value
	Parameters []Value
	// Store is a 1-based temporary slot. Zero means the result is discarded.
	Store int
	// Reference requests that RHS be evaluated as a reference.
	Reference bool
	// JumpOffset is relative to the jump instruction's own index.
	JumpOffset int
	// Line is the physical source line, or 0 if unknown.
	Line int
}

// String formats the instruction for logs.
func (ins *Instruction) String() string {
	var b strings.Builder
	b.WriteString(ins.Kind.String())
	if ins.Name.Kind != NoValue {
		b.WriteByte(' ')
		b.WriteString(ins.Name.String())
	}
	if len(ins.Parameters) > 0 {
		b.WriteByte('(')
		for i, p := range ins.Parameters {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(p.String())
		}
		b.WriteByte(')')
	}
	if ins.RHS.Kind != NoValue {
		b.WriteString(" = ")
		b.WriteString(ins.RHS.String())
	}
	if ins.Store != 0 {
		fmt.Fprintf(&b, " -> $%d", ins.Store)
	}
	if ins.JumpOffset != 0 {
		fmt.Fprintf(&b, " %+d", ins.JumpOffset)
	}
	return b.String()
}

// InstructionSource supplies instructions to a scope.
type InstructionSource interface {
	// ReadInstruction returns the instruction at index i, or nil if there is
	// none.
	ReadInstruction(i int) *Instruction
	// ReadyInstructionCount returns the number of instructions available.
	ReadyInstructionCount() int
	// IsInteractive returns whether the source can grow. Scopes running
	// interactive sources suspend instead of ending when they run out of
	// instructions, and they survive errors.
	IsInteractive() bool
}

// LineMapper is implemented by instruction sources which know the physical
// lines of instructions that do not record their own.
type LineMapper interface {
	PhysicalLine(i int) int
}

// InstructionList is a fixed instruction sequence.
type InstructionList []*Instruction

// ReadInstruction returns the instruction at i.
func (l InstructionList) ReadInstruction(i int) *Instruction {
	if i < 0 || i >= len(l) {
		return nil
	}
	return l[i]
}

// ReadyInstructionCount returns the length of the list.
func (l InstructionList) ReadyInstructionCount() int {
	return len(l)
}

// IsInteractive returns false.
func (l InstructionList) IsInteractive() bool {
	return false
}

// InteractiveSource is an instruction source which grows as a host appends to
// it, such as the statements of a REPL session.
type InteractiveSource struct {
	list  []*Instruction
	lines []int
}

// NewInteractiveSource creates an empty interactive source.
func NewInteractiveSource() *InteractiveSource {
	return &InteractiveSource{}
}

// Append adds instructions read from the given physical line.
func (s *InteractiveSource) Append(line int, ins ...*Instruction) {
	for _, in := range ins {
		s.list = append(s.list, in)
		s.lines = append(s.lines, line)
	}
}

// ReadInstruction returns the instruction at i.
func (s *InteractiveSource) ReadInstruction(i int) *Instruction {
	if i < 0 || i >= len(s.list) {
		return nil
	}
	return s.list[i]
}

// ReadyInstructionCount returns the number of instructions appended so far.
func (s *InteractiveSource) ReadyInstructionCount() int {
	return len(s.list)
}

// IsInteractive returns true.
func (s *InteractiveSource) IsInteractive() bool {
	return true
}

// PhysicalLine returns the line passed to Append for instruction i.
func (s *InteractiveSource) PhysicalLine(i int) int {
	if i < 0 || i >= len(s.lines) {
		return 0
	}
	return s.lines[i]
}

// TemplateParam describes a parameter of a runtime-declared overload.
type TemplateParam struct {
	Name      string
	Type      string
	Reference bool
	Constant  bool
	Optional  bool
}

// OverloadTemplate is the literal operand of DeclOverload: a captured body
// with descriptors for its parameters and result. Type names are resolved
// when the overload is declared.
type OverloadTemplate struct {
	Params       []TemplateParam
	ReturnType   string
	ReturnsRef   bool
	ReturnsConst bool
	IsMethod     bool
	Help         string
	Body         []*Instruction
}

// String summarizes the template.
func (t *OverloadTemplate) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for i, p := range t.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.Type)
		if p.Reference {
			b.WriteString(" ref")
		}
		b.WriteByte(' ')
		b.WriteString(p.Name)
	}
	b.WriteByte(')')
	if t.ReturnType != "" {
		b.WriteByte(' ')
		b.WriteString(t.ReturnType)
	}
	fmt.Fprintf(&b, " {%d instructions}", len(t.Body))
	return b.String()
}
