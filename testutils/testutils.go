// Package testutils provides utilities for testing reflex programs in Go.
package testutils

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/zephyrtronium/reflex/internal"
)

// testRegistry is the registry used for all tests.
var testRegistry *internal.Registry

var testRegistryInit sync.Once

// TestingRegistry returns a frozen registry holding the integral library and
// every registered core extension. The registry is shared by all tests that
// use this package.
func TestingRegistry() *internal.Registry {
	testRegistryInit.Do(func() {
		testRegistry = internal.NewRegistry()
		testRegistry.Freeze()
	})
	return testRegistry
}

// VM returns a new VM on the testing registry. Its output is collected in a
// bytes.Buffer, available as vm.Out.(*bytes.Buffer).
func VM() *internal.VM {
	vm := internal.NewVM(TestingRegistry())
	vm.Out = &bytes.Buffer{}
	return vm
}

// Output returns everything a VM created by VM has written.
func Output(vm *internal.VM) string {
	return vm.Out.(*bytes.Buffer).String()
}

// NewRegistryWith creates a registry, calls build to add libraries to it, and
// returns it unfrozen. It fails the test if build returns an error.
func NewRegistryWith(t *testing.T, build func(r *internal.Registry) error) *internal.Registry {
	t.Helper()
	r := internal.NewRegistry()
	if err := build(r); err != nil {
		t.Fatalf("could not build registry: %v", err)
	}
	return r
}

// VMWith creates a VM on a registry built by build.
func VMWith(t *testing.T, build func(r *internal.Registry) error) *internal.VM {
	t.Helper()
	vm := internal.NewVM(NewRegistryWith(t, build))
	vm.Out = &bytes.Buffer{}
	return vm
}

// A ProgramTestCase is a test case containing an instruction stream and a
// predicate to check the result.
type ProgramTestCase struct {
	// Program is the instruction stream to execute.
	Program []*internal.Instruction
	// Pass is a predicate taking the result of executing Program. If Pass
	// returns false, then the test fails.
	Pass func(result internal.Data, err error) bool
}

// TestFunc returns a test function for the test case. Each test case runs on
// a fresh VM from VM.
func (c ProgramTestCase) TestFunc(name string) func(*testing.T) {
	return func(t *testing.T) {
		vm := VM()
		r, err := vm.Execute(internal.InstructionList(c.Program))
		if !c.Pass(r, err) {
			w := strings.Builder{}
			for i, ins := range c.Program {
				w.WriteString("\t")
				w.WriteString(ins.String())
				if i == len(c.Program)-1 {
					break
				}
				w.WriteString("\n")
			}
			if err != nil {
				t.Errorf("%s produced wrong result; an error occurred: %v\n%s", name, err, w.String())
			} else {
				t.Errorf("%s produced wrong result; got %#v\n%s", name, r, w.String())
			}
		}
	}
}

// PassEqual returns a Pass function for a ProgramTestCase that predicates on
// equality of type and value. If an error occurred, then the predicate returns
// false.
func PassEqual(want internal.Data) func(internal.Data, error) bool {
	return func(result internal.Data, err error) bool {
		if err != nil {
			return false
		}
		result = internal.Unwrap(result)
		if result.Type() != want.Type() {
			return false
		}
		return want.Type().Compare(want, result)
	}
}

// PassIdentical returns a Pass function for a ProgramTestCase that predicates
// on identity of the payload, i.e. the result must refer to exactly the given
// object. If an error occurred, then the predicate returns false.
func PassIdentical(want interface{}) func(internal.Data, error) bool {
	return func(result internal.Data, err error) bool {
		if err != nil {
			return false
		}
		return internal.Unwrap(result).Payload() == want
	}
}

// PassType returns a Pass function for a ProgramTestCase that predicates on
// the type of the result. If an error occurred, then the predicate returns
// false.
func PassType(want *internal.Type) func(internal.Data, error) bool {
	return func(result internal.Data, err error) bool {
		if err != nil {
			return false
		}
		return internal.Unwrap(result).Type() == want
	}
}

// PassFailure returns a Pass function for a ProgramTestCase that returns true
// iff the program failed with an error of the given kind.
func PassFailure(kind internal.ErrorKind) func(internal.Data, error) bool {
	return func(result internal.Data, err error) bool {
		return internal.IsKind(err, kind)
	}
}

// PassSuccess returns a Pass function for a ProgramTestCase that returns true
// iff the program completed without error.
func PassSuccess() func(internal.Data, error) bool {
	return func(result internal.Data, err error) bool {
		return err == nil
	}
}

// CheckMembers is a testing helper to check whether a namespace has exactly
// the members we expect.
func CheckMembers(t *testing.T, ns *internal.Namespace, names []string) {
	t.Helper()
	checked := make(map[string]bool, len(names))
	for _, name := range names {
		checked[strings.ToLower(name)] = true
		t.Run("Have_"+name, func(t *testing.T) {
			if _, ok := ns.Member(name); !ok {
				t.Fatal("no member", name)
			}
		})
	}
	for _, m := range ns.Members() {
		name := m.Name()
		t.Run("Want_"+name, func(t *testing.T) {
			if !checked[strings.ToLower(name)] {
				t.Fatal("unexpected member", name)
			}
		})
	}
}

// CheckLibrary is a testing helper to check that the testing registry has a
// library with exactly the members we expect.
func CheckLibrary(t *testing.T, name string, members []string) {
	t.Helper()
	l, ok := TestingRegistry().Library(name)
	if !ok {
		t.Fatalf("no library %s", name)
	}
	CheckMembers(t, &l.Namespace, members)
}
