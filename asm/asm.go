// Package asm decodes instruction streams written as YAML.
//
// A program is a sequence of instructions. Each instruction is a mapping:
//
//	- op: FunctionCall     # instruction kind, case-insensitive
//	  name: Println        # callee, member, or variable name
//	  params: [{string: "n = "}, {var: n}]
//	  rhs: {temp: 1}       # right-hand operand
//	  store: 1             # temporary slot receiving the result
//	  ref: true            # evaluate rhs as a reference
//	  jump: -3             # jump offset
//	  line: 7              # physical source line
//
// Operands are mappings with one of the keys int, float, bool, char, string,
// temp, var, or id. A literal of any parseable type is written as
// {type: Date, text: "2019-08-14 00:00:00 UTC"}. Bare scalars are shorthand:
// numbers and booleans are literals, and other text is an identifier.
//
// DeclOverload instructions take a template instead of rhs:
//
//	- op: DeclOverload
//	  name: Double
//	  template:
//	    params: [{name: x, type: Int}]
//	    returns: Int
//	    body:
//	      - {op: MemberFunctionCall, name: "*", params: [{var: x}, 2], store: 1}
//	      - {op: FunctionCall, name: return, params: [{temp: 1}]}
package asm

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v2"

	"github.com/zephyrtronium/reflex/internal"
)

// Operand is the YAML form of an instruction operand.
type Operand struct {
	Int    *int     `yaml:"int"`
	Float  *float64 `yaml:"float"`
	Bool   *bool    `yaml:"bool"`
	Char   *string  `yaml:"char"`
	String *string  `yaml:"string"`
	Temp   int      `yaml:"temp"`
	Var    string   `yaml:"var"`
	ID     string   `yaml:"id"`
	Type   string   `yaml:"type"`
	Text   string   `yaml:"text"`
}

// UnmarshalYAML decodes either an operand mapping or a scalar shorthand.
func (o *Operand) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var v interface{}
	if err := unmarshal(&v); err != nil {
		return err
	}
	switch v := v.(type) {
	case int:
		o.Int = &v
		return nil
	case float64:
		o.Float = &v
		return nil
	case bool:
		o.Bool = &v
		return nil
	case string:
		o.ID = v
		return nil
	}
	type plain Operand
	return unmarshal((*plain)(o))
}

// Param is the YAML form of a template parameter.
type Param struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Ref      bool   `yaml:"ref"`
	Const    bool   `yaml:"const"`
	Optional bool   `yaml:"optional"`
}

// Template is the YAML form of an overload template.
type Template struct {
	Params       []Param       `yaml:"params"`
	Returns      string        `yaml:"returns"`
	ReturnsRef   bool          `yaml:"returnsRef"`
	ReturnsConst bool          `yaml:"returnsConst"`
	Method       bool          `yaml:"method"`
	Help         string        `yaml:"help"`
	Body         []Instruction `yaml:"body"`
}

// Instruction is the YAML form of an instruction.
type Instruction struct {
	Op       string    `yaml:"op"`
	Name     string    `yaml:"name"`
	Params   []Operand `yaml:"params"`
	RHS      *Operand  `yaml:"rhs"`
	Store    int       `yaml:"store"`
	Ref      bool      `yaml:"ref"`
	Jump     int       `yaml:"jump"`
	Line     int       `yaml:"line"`
	Template *Template `yaml:"template"`
}

// Decode parses a YAML program into instructions, creating literals with the
// types of r. Every malformed instruction is reported.
func Decode(r *internal.Registry, b []byte) ([]*internal.Instruction, error) {
	var prog []Instruction
	if err := yaml.UnmarshalStrict(b, &prog); err != nil {
		return nil, internal.WrapError(internal.InstructionError, err, "malformed instruction file")
	}
	return Assemble(r, prog)
}

// DecodeFile decodes the program in a file.
func DecodeFile(r *internal.Registry, path string) ([]*internal.Instruction, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, internal.WrapError(internal.FileNotFound, err, "cannot read %s", path)
	}
	return Decode(r, b)
}

// Assemble converts decoded instructions.
func Assemble(r *internal.Registry, prog []Instruction) ([]*internal.Instruction, error) {
	a := assembler{r: r}
	return a.list(prog, "")
}

type assembler struct {
	r *internal.Registry
}

func (a assembler) list(prog []Instruction, prefix string) ([]*internal.Instruction, error) {
	var errs error
	r := make([]*internal.Instruction, 0, len(prog))
	for i := range prog {
		ins, err := a.instruction(&prog[i], prefix+strconv.Itoa(i))
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		r = append(r, ins)
	}
	if errs != nil {
		return nil, errs
	}
	return r, nil
}

func (a assembler) instruction(in *Instruction, where string) (*internal.Instruction, error) {
	fail := func(format string, args ...interface{}) error {
		e := internal.NewError(internal.InstructionError, "instruction %s: %s", where, fmt.Sprintf(format, args...))
		e.Line = in.Line
		return e
	}
	kind, err := internal.ParseInstructionKind(in.Op)
	if err != nil {
		return nil, fail("%v", err)
	}
	ins := &internal.Instruction{
		Kind:       kind,
		Store:      in.Store,
		Reference:  in.Ref,
		JumpOffset: in.Jump,
		Line:       in.Line,
	}
	switch kind {
	case internal.Assignment, internal.DeclOverload:
		if in.Name == "" {
			return nil, fail("%v needs a variable name", kind)
		}
		ins.Name = internal.VariableValue(in.Name)
	case internal.FunctionCall, internal.MemberFunctionCall, internal.MethodCall, internal.MemberMethodCall,
		internal.MemberToTemp, internal.MemberToVariable, internal.MemberAssignment:
		if in.Name == "" {
			return nil, fail("%v needs a name", kind)
		}
		ins.Name = internal.IdentifierValue(in.Name)
	}
	for j := range in.Params {
		v, err := a.operand(&in.Params[j])
		if err != nil {
			return nil, fail("parameter %d: %v", j, err)
		}
		ins.Parameters = append(ins.Parameters, v)
	}
	if in.RHS != nil {
		if ins.RHS, err = a.operand(in.RHS); err != nil {
			return nil, fail("rhs: %v", err)
		}
	}
	if in.Template != nil {
		if kind != internal.DeclOverload {
			return nil, fail("only DeclOverload takes a template")
		}
		t, err := a.template(in.Template, where+".")
		if err != nil {
			return nil, err
		}
		ins.RHS = internal.LiteralValue(internal.NewData(a.r.Integral.OverloadTemplate, t))
	}
	return ins, nil
}

func (a assembler) template(t *Template, prefix string) (*internal.OverloadTemplate, error) {
	body, err := a.list(t.Body, prefix)
	if err != nil {
		return nil, err
	}
	r := &internal.OverloadTemplate{
		ReturnType:   t.Returns,
		ReturnsRef:   t.ReturnsRef,
		ReturnsConst: t.ReturnsConst,
		IsMethod:     t.Method,
		Help:         t.Help,
		Body:         body,
	}
	for _, p := range t.Params {
		r.Params = append(r.Params, internal.TemplateParam{
			Name:      p.Name,
			Type:      p.Type,
			Reference: p.Ref,
			Constant:  p.Const,
			Optional:  p.Optional,
		})
	}
	return r, nil
}

func (a assembler) operand(o *Operand) (internal.Value, error) {
	x := a.r.Integral
	switch {
	case o.Int != nil:
		return internal.LiteralValue(internal.NewData(x.Int, *o.Int)), nil
	case o.Float != nil:
		return internal.LiteralValue(internal.NewData(x.Float, *o.Float)), nil
	case o.Bool != nil:
		return internal.LiteralValue(internal.NewData(x.Bool, *o.Bool)), nil
	case o.Char != nil:
		c, n := utf8.DecodeRuneInString(*o.Char)
		if n == 0 || n != len(*o.Char) {
			return internal.Value{}, fmt.Errorf("char literal %q is not exactly one character", *o.Char)
		}
		return internal.LiteralValue(internal.NewData(x.Char, c)), nil
	case o.String != nil:
		return internal.LiteralValue(internal.NewData(x.String, *o.String)), nil
	case o.Temp != 0:
		if o.Temp < 0 {
			return internal.Value{}, fmt.Errorf("temporary slot %d is not positive", o.Temp)
		}
		return internal.TempValue(o.Temp), nil
	case o.Var != "":
		return internal.VariableValue(o.Var), nil
	case o.ID != "":
		return internal.IdentifierValue(o.ID), nil
	case o.Type != "":
		m, err := a.r.Lookup(o.Type)
		if err != nil {
			return internal.Value{}, err
		}
		t, ok := m.(*internal.Type)
		if !ok {
			return internal.Value{}, fmt.Errorf("%s is a %v, not a type", o.Type, m.Kind())
		}
		d, err := t.Parse(o.Text)
		if err != nil {
			return internal.Value{}, err
		}
		return internal.LiteralValue(d), nil
	}
	return internal.Value{}, fmt.Errorf("empty operand")
}

// DecodeStatement decodes a single line of input, which may be either one
// instruction mapping or a sequence of them. Blank input produces no
// instructions.
func DecodeStatement(r *internal.Registry, s string) ([]*internal.Instruction, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var one Instruction
	if err := yaml.UnmarshalStrict([]byte(s), &one); err == nil {
		return Assemble(r, []Instruction{one})
	}
	return Decode(r, []byte(s))
}
