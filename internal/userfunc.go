package internal

// ScopeOverload is the body of an overload declared at run time. Calling it
// runs its instructions in a new scope whose locals are the parameters.
type ScopeOverload struct {
	Body InstructionList
}

// Call runs the body to completion by re-entering the dispatch loop with the
// new scope's depth as its target.
func (u *ScopeOverload) Call(vm *VM, o *Overload, isMethod bool, args []Data) (Data, error) {
	depth := len(vm.scopes)
	s := vm.push(u.Body, o)
	for i, p := range o.Params {
		if i >= len(args) {
			break
		}
		vm.define(s, p.Name, args[i], p.Reference)
	}
	if err := vm.Run(depth); err != nil {
		return Data{}, err
	}
	r := vm.takeReturn()
	if !r.IsValid() && o.ReturnType != nil {
		return Data{}, NewError(NoReturn, "%v ended without returning a %s", o, o.ReturnType.Name())
	}
	vm.disown(r)
	return r, nil
}

// NewScopeOverload creates an overload from a template, resolving the names
// of its types through the VM's symbols.
func (vm *VM) NewScopeOverload(t *OverloadTemplate) (*Overload, error) {
	o := &Overload{
		Help:         t.Help,
		ReturnsRef:   t.ReturnsRef,
		ReturnsConst: t.ReturnsConst,
		Body:         &ScopeOverload{Body: InstructionList(t.Body)},
	}
	for _, tp := range t.Params {
		if tp.Name == "" {
			return nil, NewError(ParameterError, "parameter of type %s has no name", tp.Type)
		}
		typ, err := vm.FindType(tp.Type)
		if err != nil {
			return nil, err
		}
		o.Params = append(o.Params, &Parameter{
			Name:      tp.Name,
			Type:      typ,
			Reference: tp.Reference,
			Constant:  tp.Constant,
			Optional:  tp.Optional,
		})
	}
	if t.ReturnType != "" {
		if t.IsMethod {
			return nil, NewError(ParameterError, "method cannot return %s", t.ReturnType)
		}
		typ, err := vm.FindType(t.ReturnType)
		if err != nil {
			return nil, err
		}
		o.ReturnType = typ
	}
	return o, nil
}

// declOverload executes DeclOverload.
func (vm *VM) declOverload(s *scope, ins *Instruction) error {
	lit, err := vm.eval(s, ins.RHS, false)
	if err != nil {
		return err
	}
	lit = unwrapVariant(lit)
	if lit.typ != vm.Registry.Integral.OverloadTemplate {
		return NewError(InstructionError, "DeclOverload needs an overload template, not a %s", lit.typ.Name())
	}
	t := lit.Value().(*OverloadTemplate)
	if t == nil {
		return NewError(NullValue, "DeclOverload with an empty template")
	}
	o, err := vm.NewScopeOverload(t)
	if err != nil {
		return err
	}
	name := ins.Name.Name
	var f *Function
	if v, ok := s.local(name); ok {
		if v.d.typ != vm.Registry.Integral.Function {
			return NewError(AmbiguousSymbol, "%s is already a %s", name, v.d.typ.Name())
		}
		f = v.d.Value().(*Function)
	} else {
		f = NewFunction(name, t.Help)
		vm.define(s, name, NewData(vm.Registry.Integral.Function, f), false)
	}
	if t.IsMethod {
		return f.AddMethod(o)
	}
	return f.AddOverload(o)
}
