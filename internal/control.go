package internal

import (
	"go.uber.org/zap"
)

// Start pushes a scope running source. The scope does not execute until Run
// is called. Interactive sources are typically started once as the root scope
// and resumed with Run(0) as instructions are appended.
func (vm *VM) Start(source InstructionSource) {
	vm.push(source, nil)
}

// Execute runs source to completion in a new scope and returns the value of
// its return statement, if any. The VM holds no reference to the result; an
// object returned this way stays counted until the host passes it to Discard.
func (vm *VM) Execute(source InstructionSource) (Data, error) {
	depth := len(vm.scopes)
	vm.push(source, nil)
	if err := vm.Run(depth); err != nil {
		return Data{}, err
	}
	r := vm.takeReturn()
	vm.disown(r)
	return r, nil
}

// Run dispatches instructions until the number of running scopes falls to
// target, an interactive scope runs out of instructions, or an error occurs.
// Scopes end when their sources are exhausted. A host may call Run again to
// resume a suspended interactive scope.
func (vm *VM) Run(target int) error {
	for len(vm.scopes) > target {
		if vm.returnImmediately {
			vm.returnImmediately = false
			vm.pop()
			continue
		}
		select {
		case err := <-vm.Control:
			return vm.unwind(err, target)
		default: // do nothing
		}
		s := vm.scopes[len(vm.scopes)-1]
		if s.cursor >= s.source.ReadyInstructionCount() {
			if s.interactive {
				return nil
			}
			vm.pop()
			continue
		}
		ins := s.source.ReadInstruction(s.cursor)
		s.cursor++
		if ins == nil {
			return vm.unwind(NewError(InstructionError, "no instruction at index %d", s.cursor-1), target)
		}
		vm.debugInstruction(s, ins)
		if err := vm.exec(s, ins); err != nil {
			return vm.unwind(err, target)
		}
	}
	return nil
}

// unwind resolves the line of an error raised by the running scope, then pops
// scopes until reaching an interactive scope or target.
func (vm *VM) unwind(err error, target int) error {
	e := AsError(err)
	if s := vm.top(); s != nil && e.Line <= 0 {
		e.Line += s.line(s.cursor - 1)
	}
	for len(vm.scopes) > target && !vm.top().interactive {
		vm.pop()
	}
	vm.returnImmediately = false
	vm.release(vm.returnValue)
	vm.returnValue = Data{}
	vm.Log.Debug("unwound", zap.Error(e), zap.Int("depth", len(vm.scopes)))
	return e
}

// Interrupt asks the VM to unwind with err before its next instruction.
// It is safe to call from any goroutine. Returns false if an interrupt is
// already pending.
func (vm *VM) Interrupt(err error) bool {
	select {
	case vm.Control <- err:
		return true
	default:
		return false
	}
}

// takeReturn removes the value recorded by the last return. The caller holds
// the reference taken when it was recorded.
func (vm *VM) takeReturn() Data {
	r := vm.returnValue
	vm.returnValue = Data{}
	return r
}
