package internal

import (
	"io"
	"os"
	"time"

	"go.uber.org/zap"
)

// Version is the runtime version.
const Version = "1"

// VM is an object for executing instruction streams against a registry.
//
// A VM is driven by one goroutine at a time. Every native function receives
// the VM which called it, so there is no notion of an active VM.
type VM struct {
	// Registry holds the libraries available to the VM. It is frozen when
	// the VM is created.
	Registry *Registry
	// Refs counts references to objects of reference types.
	Refs *RefCounter

	// Out is where methods write their output.
	Out io.Writer
	// Log receives execution events. The default discards everything.
	Log *zap.Logger

	// Sigil is the first character of identifiers which Resolver resolves.
	// Zero disables the sigil.
	Sigil rune
	// Resolver resolves sigil identifiers, without the sigil.
	Resolver func(vm *VM, name string) (Data, error)

	// Control is a buffered channel for remote control of the VM. The
	// dispatch loop checks it between each instruction and unwinds with any
	// error received.
	Control chan error

	// StartTime is the time at which the VM was created.
	StartTime time.Time

	// Debug is an atomic flag controlling whether instructions are logged and
	// sent to the debugger as they are dispatched.
	Debug uint32
	// debugger receives dispatched instructions while debugging is enabled.
	debugger chan<- DebugMessage

	// scopes is the stack of running scopes.
	scopes []*scope
	// temps is the temporaries array shared by all scopes.
	temps []Data
	// usings are namespaces imported for every scope.
	usings []*Namespace

	// returnValue is the value recorded by the last return.
	returnValue Data
	// returnImmediately tells the dispatch loop to pop the current scope.
	returnImmediately bool
}

// NewVM prepares a new VM to execute instructions. The registry is frozen.
func NewVM(r *Registry) *VM {
	r.Freeze()
	return &VM{
		Registry:  r,
		Refs:      NewRefCounter(),
		Out:       os.Stdout,
		Log:       zap.NewNop(),
		Sigil:     '$',
		Control:   make(chan error, 1),
		StartTime: time.Now(),
	}
}

// Integral returns the builtin types of the VM's registry.
func (vm *VM) Integral() *Integral {
	return vm.Registry.Integral
}

// NewInt creates an Int value.
func (vm *VM) NewInt(v int) Data {
	return NewData(vm.Registry.Integral.Int, v)
}

// NewFloat creates a Float value.
func (vm *VM) NewFloat(v float64) Data {
	return NewData(vm.Registry.Integral.Float, v)
}

// NewBool creates a Bool value.
func (vm *VM) NewBool(v bool) Data {
	return NewData(vm.Registry.Integral.Bool, v)
}

// NewString creates a String value.
func (vm *VM) NewString(v string) Data {
	return NewData(vm.Registry.Integral.String, v)
}

// AsBool converts a value to a bool through the type morphing engine, using
// implicit constructors of Bool if necessary.
func (vm *VM) AsBool(d Data) (bool, error) {
	b, err := Morph(vm, d, vm.Registry.Integral.Bool, true)
	if err != nil {
		return false, err
	}
	return b.Value().(bool), nil
}

// retain records a new holder of d. Objects of reference types are
// registered with the VM's counter the first time they are held.
func (vm *VM) retain(d Data) {
	if !d.isRef {
		return
	}
	for o := &d; o != nil; o = o.owner {
		if o.isCounted() && !o.IsNull() {
			vm.Refs.Register(o.value, o.typ)
		}
	}
	d.Retain(vm.Refs)
}

// release drops a holder of d.
func (vm *VM) release(d Data) {
	if !d.isRef {
		return
	}
	d.Release(vm.Refs)
}

// Discard drops a value that no one holds, such as the result of Execute once
// the host is finished with it. An object is deleted unless something in the
// VM still refers to it. Discarding a value which is not a reference does
// nothing.
func (vm *VM) Discard(d Data) {
	if !d.isRef {
		return
	}
	vm.retain(d)
	vm.release(d)
}

// disown gives up a hold on d taken by retain without deleting it, so that d
// can be handed to a caller which may or may not keep it.
func (vm *VM) disown(d Data) {
	if !d.isRef {
		return
	}
	for o := &d; o != nil; o = o.owner {
		if !o.isRef {
			continue
		}
		if n, ok := vm.Refs.Count(o.value); ok && n <= 1 {
			vm.Refs.Reset(o.value)
		} else {
			vm.Refs.Decrease(o.value)
		}
	}
}
