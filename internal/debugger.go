package internal

import (
	"sync/atomic"

	"go.uber.org/zap"
)

// DebugMessage holds an instruction about to be executed and a channel to
// indicate the debugger has handled it.
type DebugMessage struct {
	Instruction *Instruction
	Frame       Frame
	Dbg         chan struct{}
}

// SetDebugger attaches a debugger channel to the VM. While debugging is
// enabled, each dispatched instruction is sent to msgs, and execution waits
// until the debugger closes or sends on the message's Dbg channel. A nil
// channel detaches the debugger.
func (vm *VM) SetDebugger(msgs chan<- DebugMessage) {
	vm.debugger = msgs
}

// SetDebug enables or disables debugging.
func (vm *VM) SetDebug(on bool) {
	var v uint32
	if on {
		v = 1
	}
	atomic.StoreUint32(&vm.Debug, v)
}

// debugInstruction does nothing if debugging is disabled for the VM;
// otherwise, it logs the instruction and sends it to the debugger, waiting for
// it to be handled.
func (vm *VM) debugInstruction(s *scope, ins *Instruction) {
	if atomic.LoadUint32(&vm.Debug) != 0 {
		vm.debugInstructionSlow(s, ins)
	}
}

// debugInstructionSlow is an outlined path of debugInstruction.
func (vm *VM) debugInstructionSlow(s *scope, ins *Instruction) {
	frame := s.frame(len(vm.scopes) - 1)
	vm.Log.Debug("dispatch",
		zap.Stringer("instruction", ins),
		zap.Int("line", frame.Line),
		zap.Int("depth", frame.Depth),
		zap.Int("tempbase", frame.TempBase),
	)
	if vm.debugger == nil {
		return
	}
	done := make(chan struct{})
	vm.debugger <- DebugMessage{Instruction: ins, Frame: frame, Dbg: done}
	<-done
}
