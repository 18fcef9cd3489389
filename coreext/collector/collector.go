// Package collector exposes a VM's reference counter and the Go garbage
// collector's statistics.
package collector

import (
	"fmt"
	"runtime"
	"time"

	"go.uber.org/multierr"

	"github.com/zephyrtronium/reflex/internal"
)

// Objects are deleted deterministically by the VM's reference counter, so the
// Collector library mostly reports on it. The Go collector still owns the
// memory, and its statistics remain available.

// Name is the name of the Collector library.
const Name = "Collector"

func init() {
	internal.Register(install)
}

func install(r *internal.Registry) error {
	x := r.Integral
	object := func() *internal.Parameter {
		return &internal.Parameter{Name: "object", Type: x.Variant, AllowNull: true}
	}
	count := internal.NewFunction("Count", "Returns the number of references to an object.")
	live := internal.NewFunction("Live", "Returns the number of objects the VM is counting.")
	reset := internal.NewFunction("Reset", "Abandons every reference to an object without deleting it.")
	collect := internal.NewFunction("Collect", "Runs the Go garbage collector and returns the number of allocations it freed.")
	timeUsed := internal.NewFunction("TimeUsed", "Returns the seconds spent in stop-the-world garbage collection.")
	showStats := internal.NewFunction("ShowStats", "Writes garbage collector statistics to the output.")
	var err error
	err = multierr.Append(err, count.AddOverload(internal.NewOverload(collectorCount, x.Int, object())))
	err = multierr.Append(err, live.AddOverload(internal.NewOverload(collectorLive, x.Int)))
	err = multierr.Append(err, reset.AddMethod(internal.NewOverload(collectorReset, nil, object())))
	err = multierr.Append(err, collect.AddOverload(internal.NewOverload(collectorCollect, x.Int)))
	err = multierr.Append(err, timeUsed.AddOverload(internal.NewOverload(collectorTimeUsed, x.Float)))
	err = multierr.Append(err, showStats.AddMethod(internal.NewOverload(collectorShowStats, nil)))
	if err != nil {
		return err
	}
	lib := internal.NewLibrary(Name, "Reports on object lifetimes.")
	if err := lib.AddFunctions(count, live, reset, collect, timeUsed, showStats); err != nil {
		return err
	}
	return r.AddLibrary(lib)
}

// collectorCount is a Collector function.
//
// Count returns the number of references to an object. Values which are not
// objects of reference types are never counted and report zero.
func collectorCount(vm *internal.VM, args []internal.Data) (internal.Data, error) {
	n, _ := vm.Refs.Count(internal.Unwrap(args[0]).Payload())
	return vm.NewInt(n), nil
}

// collectorLive is a Collector function.
//
// Live returns the number of objects with a registered reference count.
func collectorLive(vm *internal.VM, args []internal.Data) (internal.Data, error) {
	return vm.NewInt(vm.Refs.Len()), nil
}

// collectorReset is a Collector method.
//
// Reset sets the count of an object to zero. The object is not deleted, and it
// is deleted later only if the count rises and falls again.
func collectorReset(vm *internal.VM, args []internal.Data) (internal.Data, error) {
	vm.Refs.Reset(internal.Unwrap(args[0]).Payload())
	return internal.Data{}, nil
}

// collectorCollect is a Collector function.
//
// Collect triggers a Go garbage collection cycle and returns the number of
// allocations freed program-wide, not only those of the VM.
func collectorCollect(vm *internal.VM, args []internal.Data) (internal.Data, error) {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	old := stats.Frees
	runtime.GC()
	runtime.ReadMemStats(&stats)
	return vm.NewInt(int(stats.Frees - old)), nil
}

// collectorTimeUsed is a Collector function.
func collectorTimeUsed(vm *internal.VM, args []internal.Data) (internal.Data, error) {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	return vm.NewFloat(float64(stats.PauseTotalNs) / 1e9), nil
}

// collectorShowStats is a Collector method.
//
// ShowStats writes the VM's reference counts and detailed Go garbage
// collector information to the VM's output.
func collectorShowStats(vm *internal.VM, args []internal.Data) (internal.Data, error) {
	var s runtime.MemStats
	runtime.ReadMemStats(&s)
	fmt.Fprintf(vm.Out, "%v\n", vm.Refs)
	if s.NumGC > 0 {
		last := time.Unix(0, int64(s.LastGC))
		fmt.Fprintf(vm.Out, "Last GC at %v (%v ago)", last, time.Since(last))
	} else {
		fmt.Fprint(vm.Out, "GC has not run")
	}
	_, err := fmt.Fprintf(vm.Out, showStatsFormat,
		s.TotalAlloc, s.Mallocs,
		s.HeapAlloc, s.Mallocs-s.Frees,
		s.NextGC,
		s.Frees,
		s.NumGC,
		s.GCCPUFraction*100,
		s.HeapInuse,
		s.StackInuse)
	return internal.Data{}, err
}

const showStatsFormat = `
Lifetime allocated: %d B (%d objects)
Live heap: %d B (%d objects)
Next GC target: %d B
Freed objects: %d
Completed cycles: %d
GC CPU usage: %.6f%%
In-use heap spans: %d B
Stack spans: %d B
`
