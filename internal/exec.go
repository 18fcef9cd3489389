package internal

import (
	"strings"
)

// returnName is the pseudo-function which ends the running scope.
const returnName = "return"

// exec executes a single instruction in s.
func (vm *VM) exec(s *scope, ins *Instruction) error {
	switch ins.Kind {
	case NoOperation:
		return nil
	case Assignment:
		d, err := vm.eval(s, ins.RHS, ins.Reference)
		if err != nil {
			return err
		}
		return vm.assign(s, ins.Name.Name, d, ins.Reference)
	case SaveToTemp:
		d, err := vm.eval(s, ins.RHS, ins.Reference)
		if err != nil {
			return err
		}
		return vm.setTemp(s, ins.Store, d)
	case RemoveTemp:
		return vm.removeTemp(s, ins.Store)
	case FunctionCall, MethodCall:
		return vm.call(s, ins, ins.Kind == MethodCall)
	case MemberFunctionCall, MemberMethodCall:
		return vm.memberCall(s, ins, ins.Kind == MemberMethodCall)
	case MemberToTemp:
		d, err := vm.getMember(s, ins)
		if err != nil {
			return err
		}
		return vm.setTemp(s, ins.Store, d)
	case MemberToVariable:
		d, err := vm.getMember(s, ins)
		if err != nil {
			return err
		}
		return vm.assign(s, ins.RHS.Name, d, ins.Reference)
	case MemberAssignment:
		return vm.setMember(s, ins)
	case Jump:
		return vm.jump(s, ins.JumpOffset)
	case JumpTrue, JumpFalse:
		c, err := vm.eval(s, ins.RHS, false)
		if err != nil {
			return err
		}
		b, err := vm.AsBool(c)
		if err != nil {
			return err
		}
		if b == (ins.Kind == JumpTrue) {
			return vm.jump(s, ins.JumpOffset)
		}
		return nil
	case DeclOverload:
		return vm.declOverload(s, ins)
	}
	return NewError(InstructionError, "unknown instruction kind %v", ins.Kind)
}

// jump moves the cursor of s relative to the instruction being executed.
func (vm *VM) jump(s *scope, offset int) error {
	to := s.cursor - 1 + offset
	if to < 0 || to > s.source.ReadyInstructionCount() {
		return NewError(OutOfBounds, "jump to instruction %d is outside the scope", to)
	}
	s.cursor = to
	return nil
}

// eval evaluates an operand. If asRef is false, values of value types are
// copies.
func (vm *VM) eval(s *scope, v Value, asRef bool) (Data, error) {
	var d Data
	switch v.Kind {
	case Literal:
		d = v.Literal
		if asRef {
			d = d.MakeReference()
		}
		return d, nil
	case Temp:
		var err error
		d, err = vm.temp(s, v.Temp)
		if err != nil {
			return Data{}, err
		}
	case Variable:
		x, ok := vm.lookupVar(v.Name)
		if !ok {
			return Data{}, NewError(SymbolNotFound, "variable %s is not defined", v.Name)
		}
		d = x.d
	case Identifier:
		var err error
		d, err = vm.FindSymbol(v.Name)
		if err != nil {
			return Data{}, err
		}
	default:
		return Data{}, NewError(InstructionError, "missing operand")
	}
	if asRef {
		if !d.isRef {
			d = d.MakeReference()
		}
		return d, nil
	}
	if d.isRef && !d.typ.isRef {
		d = d.DeReference()
	}
	return d, nil
}

// evalArgs evaluates call arguments. Variables and identifiers are passed by
// reference with their names, and undefined names become unbound arguments.
func (vm *VM) evalArgs(s *scope, vs []Value) ([]Argument, error) {
	args := make([]Argument, len(vs))
	for i, v := range vs {
		switch v.Kind {
		case Variable, Identifier:
			args[i].Name = v.Name
			var d Data
			var err error
			if v.Kind == Variable {
				d, err = vm.eval(s, v, true)
			} else {
				d, err = vm.FindSymbol(v.Name)
			}
			if err != nil {
				if IsKind(err, SymbolNotFound) {
					args[i].Unbound = true
					continue
				}
				return nil, err
			}
			args[i].Data = d
		case Temp:
			// Temporaries are passed as they were stored, so references
			// saved with SaveToTemp stay references.
			d, err := vm.temp(s, v.Temp)
			if err != nil {
				return nil, err
			}
			args[i].Data = d
		default:
			d, err := vm.eval(s, v, false)
			if err != nil {
				return nil, err
			}
			args[i].Data = d
		}
	}
	return args, nil
}

// assign stores d into the variable name of s, creating it if needed. Values
// assigned to an existing variable of the same value type are written through
// its storage, so references to the variable see the new value.
func (vm *VM) assign(s *scope, name string, d Data, alias bool) error {
	if name == "" {
		return NewError(InstructionError, "assignment has no variable name")
	}
	if !d.IsValid() {
		return NewError(NullValue, "cannot assign an invalid value to %s", name)
	}
	if old, ok := s.local(name); ok {
		if old.d.isConst {
			return NewError(ConstantViolation, "%s is constant", name)
		}
		if !alias && old.d.typ == d.typ && !d.typ.isRef {
			return d.typ.Assign(old.d, d.DeReference())
		}
	}
	vm.define(s, name, d, alias)
	return nil
}

// call executes FunctionCall and MethodCall.
func (vm *VM) call(s *scope, ins *Instruction, isMethod bool) error {
	if ins.Name.Kind == Identifier && strings.EqualFold(ins.Name.Name, returnName) {
		return vm.doReturn(s, ins)
	}
	callee, err := vm.eval(s, ins.Name, false)
	if err != nil {
		return err
	}
	callee = unwrapVariant(callee)
	args, err := vm.evalArgs(s, ins.Parameters)
	if err != nil {
		return err
	}
	var r Data
	switch callee.typ {
	case vm.Registry.Integral.Function:
		f := callee.Value().(*Function)
		if f == nil {
			return NewError(NullValue, "%s is an empty function", ins.Name)
		}
		r, err = Call(vm, f, args, isMethod)
	case vm.Registry.Integral.Type:
		t := callee.Value().(*Type)
		if t == nil {
			return NewError(NullValue, "%s is an empty type", ins.Name)
		}
		r, err = t.Construct(vm, args)
	default:
		return NewError(ParameterError, "%s is a %s, which cannot be called", ins.Name, callee.typ.Name())
	}
	if err != nil {
		return err
	}
	return vm.storeResult(s, ins, r)
}

// storeResult stores the result of a call if the instruction asks for it.
// Otherwise the result is discarded.
func (vm *VM) storeResult(s *scope, ins *Instruction, r Data) error {
	if ins.Store == 0 {
		vm.Discard(r)
		return nil
	}
	if !r.IsValid() {
		return NewError(NoReturn, "%s produced no value", ins.Name)
	}
	return vm.setTemp(s, ins.Store, r)
}

// object evaluates the first parameter of a member instruction.
func (vm *VM) object(s *scope, ins *Instruction) (Argument, *Type, error) {
	if len(ins.Parameters) == 0 {
		return Argument{}, nil, NewError(MissingParameter, "%v needs an object", ins.Kind)
	}
	args, err := vm.evalArgs(s, ins.Parameters[:1])
	if err != nil {
		return Argument{}, nil, err
	}
	a := args[0]
	if a.Unbound {
		return Argument{}, nil, NewError(SymbolNotFound, "%s is not defined", a.Name)
	}
	a.Data = unwrapVariant(a.Data)
	if a.Data.IsNull() {
		return Argument{}, nil, NewError(NullValue, "cannot access %s of a null value", ins.Name.Name)
	}
	return a, a.Data.typ, nil
}

// memberCall executes MemberFunctionCall and MemberMethodCall.
func (vm *VM) memberCall(s *scope, ins *Instruction, isMethod bool) error {
	obj, t, err := vm.object(s, ins)
	if err != nil {
		return err
	}
	f, err := t.LookupFunction(ins.Name.Name)
	if err != nil {
		return err
	}
	rest, err := vm.evalArgs(s, ins.Parameters[1:])
	if err != nil {
		return err
	}
	var args []Argument
	if f.IsInstance() {
		args = append([]Argument{obj}, rest...)
	} else {
		args = rest
	}
	r, err := Call(vm, f, args, isMethod)
	if err != nil {
		return err
	}
	return vm.storeResult(s, ins, r)
}

// member finds an instance member for a member instruction, along with the
// object converted to the type which defines it.
func (vm *VM) member(s *scope, ins *Instruction) (*InstanceMember, Data, error) {
	obj, t, err := vm.object(s, ins)
	if err != nil {
		return nil, Data{}, err
	}
	m, def, err := t.LookupMember(ins.Name.Name)
	if err != nil {
		return nil, Data{}, err
	}
	self := obj.Data
	if def != t {
		self, err = Morph(vm, self, def, false)
		if err != nil {
			return nil, Data{}, err
		}
	}
	return m, self, nil
}

func (vm *VM) getMember(s *scope, ins *Instruction) (Data, error) {
	m, self, err := vm.member(s, ins)
	if err != nil {
		return Data{}, err
	}
	return m.Get(vm, self)
}

func (vm *VM) setMember(s *scope, ins *Instruction) error {
	m, self, err := vm.member(s, ins)
	if err != nil {
		return err
	}
	v, err := vm.eval(s, ins.RHS, false)
	if err != nil {
		return err
	}
	return m.Set(vm, self, v)
}

// doReturn executes the return pseudo-call. The value is converted to the
// running overload's return type, and the dispatch loop pops the scope before
// executing anything else.
func (vm *VM) doReturn(s *scope, ins *Instruction) error {
	if s.interactive {
		return NewError(FlowError, "cannot return from an interactive scope")
	}
	if len(ins.Parameters) > 1 {
		return NewError(TooManyParameters, "return takes at most one value, not %d", len(ins.Parameters))
	}
	o := s.overload
	var r Data
	if len(ins.Parameters) == 1 {
		var err error
		r, err = vm.eval(s, ins.Parameters[0], o != nil && o.ReturnsRef)
		if err != nil {
			return err
		}
	}
	if o != nil {
		switch {
		case o.ReturnType == nil && r.IsValid():
			return NewError(ParameterError, "%v does not return a value", o)
		case o.ReturnType != nil && !r.IsValid():
			return NewError(NoReturn, "%v must return a %s", o, o.ReturnType.Name())
		case o.ReturnType != nil:
			if r.typ != o.ReturnType && !o.ReturnType.isAny {
				var err error
				if r, err = Morph(vm, r, o.ReturnType, true); err != nil {
					return err
				}
			}
			if !o.ReturnsRef {
				r = r.DeReference()
			}
			if o.ReturnsConst {
				r = r.MakeConstant()
			}
		}
	}
	vm.retain(r)
	vm.release(vm.returnValue)
	vm.returnValue = r
	vm.returnImmediately = true
	return nil
}
