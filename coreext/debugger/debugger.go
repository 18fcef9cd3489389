// Package debugger lets programs inspect and trace the VM running them.
package debugger

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/zephyrtronium/reflex/internal"
)

// Name is the name of the Debugger library.
const Name = "Debugger"

func init() {
	internal.Register(install)
}

func install(r *internal.Registry) error {
	x := r.Integral
	trace := internal.NewFunction("Trace", "Enables or disables instruction tracing.")
	depth := internal.NewFunction("Depth", "Returns the number of running scopes.")
	locals := internal.NewFunction("Locals", "Returns the names of the caller's variables.")
	stack := internal.NewFunction("Stack", "Describes the running scopes from the outermost in.")
	logFn := internal.NewFunction("Log", "Writes a message to the VM's log.")

	var err error
	err = multierr.Append(err, trace.AddMethod(internal.NewOverload(func(vm *internal.VM, args []internal.Data) (internal.Data, error) {
		on := args[0].Value().(bool)
		vm.Log.Info("trace", zap.Bool("enabled", on))
		vm.SetDebug(on)
		return internal.Data{}, nil
	}, nil, internal.Param("enabled", x.Bool))))
	err = multierr.Append(err, depth.AddOverload(internal.NewOverload(func(vm *internal.VM, args []internal.Data) (internal.Data, error) {
		return vm.NewInt(vm.Depth()), nil
	}, x.Int)))
	err = multierr.Append(err, locals.AddOverload(internal.NewOverload(func(vm *internal.VM, args []internal.Data) (internal.Data, error) {
		names := vm.Locals()
		sort.Strings(names)
		return vm.NewString(strings.Join(names, ", ")), nil
	}, x.String)))
	err = multierr.Append(err, stack.AddOverload(internal.NewOverload(func(vm *internal.VM, args []internal.Data) (internal.Data, error) {
		return vm.NewString(Stack(vm.Frames())), nil
	}, x.String)))
	err = multierr.Append(err, logFn.AddMethod(&internal.Overload{
		Params:     []*internal.Parameter{{Name: "message", Type: x.Variant, AllowNull: true}},
		RepeatLast: true,
		Body: internal.Fn(func(vm *internal.VM, args []internal.Data) (internal.Data, error) {
			var b strings.Builder
			for _, arg := range args {
				b.WriteString(internal.Unwrap(arg).String())
			}
			line := 0
			if f := vm.Frames(); len(f) > 0 {
				line = f[len(f)-1].Line
			}
			vm.Log.Info(b.String(), zap.Int("line", line), zap.Int("depth", vm.Depth()))
			return internal.Data{}, nil
		}),
	}))
	if err != nil {
		return err
	}
	lib := internal.NewLibrary(Name, "Inspection of the running VM.")
	if err := lib.AddFunctions(trace, depth, locals, stack, logFn); err != nil {
		return err
	}
	return r.AddLibrary(lib)
}

// Stack formats call frames one per line.
func Stack(frames []internal.Frame) string {
	var b strings.Builder
	for i, f := range frames {
		if i > 0 {
			b.WriteByte('\n')
		}
		kind := "scope"
		if f.Interactive {
			kind = "interactive"
		}
		fmt.Fprintf(&b, "%d: %s at line %d (instruction %d, temps %d+%d)", f.Depth, kind, f.Line, f.Instruction, f.TempBase, f.TempTop)
	}
	return b.String()
}
