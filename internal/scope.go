package internal

import (
	"strings"

	"go.uber.org/zap"
)

// scope is a running instance of an instruction source.
type scope struct {
	source InstructionSource
	// cursor is the index of the next instruction.
	cursor int
	// locals maps lower-cased names to variables.
	locals map[string]*variable
	// usings are namespaces imported into this scope.
	usings []*Namespace
	// tempbase is the index in the VM's temporaries of this scope's slot 1.
	tempbase int
	// temptop is the highest slot this scope has used.
	temptop int
	// overload is the runtime-declared overload this scope is running, if
	// any.
	overload    *Overload
	interactive bool
}

// variable is a local variable. d is always a reference: a storage cell for
// value types, or the object for reference types.
type variable struct {
	name string
	d    Data
}

// Frame describes a running scope.
type Frame struct {
	// Depth is the number of scopes below this one.
	Depth int
	// TempBase is the index in the VM's temporaries of the scope's slot 1.
	TempBase int
	// TempTop is the highest temporary slot the scope has used.
	TempTop int
	// Instruction is the index of the instruction being executed.
	Instruction int
	// Line is the physical line of that instruction.
	Line        int
	Interactive bool
}

// push starts a scope running source on top of the stack. Its temporaries
// begin after those used by the scope below it.
func (vm *VM) push(source InstructionSource, o *Overload) *scope {
	base := 0
	if n := len(vm.scopes); n > 0 {
		caller := vm.scopes[n-1]
		base = caller.tempbase + caller.temptop
	}
	for len(vm.temps) < base {
		vm.temps = append(vm.temps, Data{})
	}
	s := &scope{
		source:      source,
		locals:      map[string]*variable{},
		tempbase:    base,
		overload:    o,
		interactive: source.IsInteractive(),
	}
	vm.scopes = append(vm.scopes, s)
	vm.Log.Debug("push scope", zap.Int("depth", len(vm.scopes)), zap.Int("tempbase", base), zap.Bool("interactive", s.interactive))
	return s
}

// pop ends the top scope, releasing its locals and temporaries.
func (vm *VM) pop() {
	n := len(vm.scopes)
	s := vm.scopes[n-1]
	for _, v := range s.locals {
		vm.release(v.d)
	}
	for i := s.tempbase; i < len(vm.temps); i++ {
		vm.release(vm.temps[i])
		vm.temps[i] = Data{}
	}
	vm.temps = vm.temps[:s.tempbase]
	vm.scopes[n-1] = nil
	vm.scopes = vm.scopes[:n-1]
	vm.Log.Debug("pop scope", zap.Int("depth", n-1))
}

// top returns the running scope, or nil if there is none.
func (vm *VM) top() *scope {
	if len(vm.scopes) == 0 {
		return nil
	}
	return vm.scopes[len(vm.scopes)-1]
}

// Depth returns the number of running scopes.
func (vm *VM) Depth() int {
	return len(vm.scopes)
}

// Frames describes the running scopes from the bottom of the stack up.
func (vm *VM) Frames() []Frame {
	r := make([]Frame, len(vm.scopes))
	for i, s := range vm.scopes {
		r[i] = s.frame(i)
	}
	return r
}

// frame describes s at the given depth.
func (s *scope) frame(depth int) Frame {
	return Frame{
		Depth:       depth,
		TempBase:    s.tempbase,
		TempTop:     s.temptop,
		Instruction: s.cursor - 1,
		Line:        s.line(s.cursor - 1),
		Interactive: s.interactive,
	}
}

// line returns the physical line of instruction i.
func (s *scope) line(i int) int {
	if ins := s.source.ReadInstruction(i); ins != nil && ins.Line > 0 {
		return ins.Line
	}
	if m, ok := s.source.(LineMapper); ok {
		if l := m.PhysicalLine(i); l > 0 {
			return l
		}
	}
	return i + 1
}

// local finds a variable of the scope.
func (s *scope) local(name string) (*variable, bool) {
	v, ok := s.locals[strings.ToLower(name)]
	return v, ok
}

// lookupVar finds a variable in the current scope or the root scope.
func (vm *VM) lookupVar(name string) (*variable, bool) {
	s := vm.top()
	if s == nil {
		return nil, false
	}
	if v, ok := s.local(name); ok {
		return v, true
	}
	if root := vm.scopes[0]; root != s {
		return root.local(name)
	}
	return nil, false
}

// define creates or replaces a variable of s. If alias is true, the variable
// refers to the same storage as d; otherwise it holds a copy.
func (vm *VM) define(s *scope, name string, d Data, alias bool) {
	switch {
	case !alias:
		d = d.DeReference().MakeReference()
	case !d.isRef:
		d = d.MakeReference()
	}
	key := strings.ToLower(name)
	vm.retain(d)
	if old, ok := s.locals[key]; ok {
		vm.release(old.d)
		old.d = d
		return
	}
	s.locals[key] = &variable{name: name, d: d}
}

// Locals returns the names of the running scope's variables.
func (vm *VM) Locals() []string {
	s := vm.top()
	if s == nil {
		return nil
	}
	r := make([]string, 0, len(s.locals))
	for _, v := range s.locals {
		r = append(r, v.name)
	}
	return r
}

// Variable returns the value of a variable in the running scope or the root
// scope.
func (vm *VM) Variable(name string) (Data, bool) {
	v, ok := vm.lookupVar(name)
	if !ok {
		return Data{}, false
	}
	return v.d, true
}

// SetVariable defines a variable holding a copy of d in the running scope.
// Panics if no scope is running.
func (vm *VM) SetVariable(name string, d Data) {
	s := vm.top()
	if s == nil {
		panic("reflex: SetVariable with no running scope")
	}
	vm.define(s, name, d, false)
}

// TempBase returns the temporaries base of the running scope.
func (vm *VM) TempBase() int {
	if s := vm.top(); s != nil {
		return s.tempbase
	}
	return 0
}

// slot returns the index in the temporaries of a 1-based slot of s.
func (vm *VM) slot(s *scope, slot int) (int, error) {
	if slot < 1 {
		return 0, NewError(InstructionError, "invalid temporary slot %d", slot)
	}
	return s.tempbase + slot - 1, nil
}

// setTemp stores d into a temporary slot of s.
func (vm *VM) setTemp(s *scope, slot int, d Data) error {
	i, err := vm.slot(s, slot)
	if err != nil {
		return err
	}
	for len(vm.temps) <= i {
		vm.temps = append(vm.temps, Data{})
	}
	vm.retain(d)
	vm.release(vm.temps[i])
	vm.temps[i] = d
	if slot > s.temptop {
		s.temptop = slot
	}
	return nil
}

// temp reads a temporary slot of s.
func (vm *VM) temp(s *scope, slot int) (Data, error) {
	i, err := vm.slot(s, slot)
	if err != nil {
		return Data{}, err
	}
	if slot > s.temptop || i >= len(vm.temps) {
		return Data{}, NewError(OutOfBounds, "temporary %d has not been set", slot)
	}
	d := vm.temps[i]
	if !d.IsValid() {
		return Data{}, NewError(InstructionError, "temporary %d has been removed", slot)
	}
	return d, nil
}

// removeTemp ends the lifetime of a temporary slot of s.
func (vm *VM) removeTemp(s *scope, slot int) error {
	i, err := vm.slot(s, slot)
	if err != nil {
		return err
	}
	if slot > s.temptop || i >= len(vm.temps) {
		return NewError(OutOfBounds, "temporary %d has not been set", slot)
	}
	vm.release(vm.temps[i])
	vm.temps[i] = Data{}
	return nil
}
