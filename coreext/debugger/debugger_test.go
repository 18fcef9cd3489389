package debugger_test

import (
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/zephyrtronium/reflex/coreext/debugger"
	"github.com/zephyrtronium/reflex/internal"
	"github.com/zephyrtronium/reflex/testutils"
)

func TestRegister(t *testing.T) {
	testutils.CheckLibrary(t, debugger.Name, []string{"Trace", "Depth", "Locals", "Stack", "Log"})
}

func TestInspect(t *testing.T) {
	x := testutils.TestingRegistry().Integral
	i := func(v int) internal.Data { return internal.NewData(x.Int, v) }
	s := func(v string) internal.Data { return internal.NewData(x.String, v) }
	lit := testutils.Lit
	tmp := testutils.Temp
	cases := map[string]testutils.ProgramTestCase{
		"Depth": {
			Program: []*internal.Instruction{
				testutils.Call("Depth", 1),
				testutils.Return(tmp(1)),
			},
			Pass: testutils.PassEqual(i(1)),
		},
		"Locals": {
			Program: []*internal.Instruction{
				testutils.Set("b", lit(i(1))),
				testutils.Set("a", lit(i(2))),
				testutils.Call("Debugger:Locals", 1),
				testutils.Return(tmp(1)),
			},
			Pass: testutils.PassEqual(s("a, b")),
		},
		"Stack": {
			Program: []*internal.Instruction{
				testutils.Call("Stack", 1),
				testutils.Return(tmp(1)),
			},
			Pass: func(r internal.Data, err error) bool {
				return err == nil && strings.HasPrefix(internal.Unwrap(r).Value().(string), "0: scope at line 1")
			},
		},
	}
	for name, c := range cases {
		t.Run(name, c.TestFunc(name))
	}
}

func TestTrace(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	vm := testutils.VM()
	vm.Log = zap.New(core)
	x := vm.Registry.Integral
	prog := internal.InstructionList{
		testutils.Method("Trace", testutils.Lit(internal.NewData(x.Bool, true))),
		testutils.Set("a", testutils.Lit(internal.NewData(x.Int, 1))),
		testutils.Method("Trace", testutils.Lit(internal.NewData(x.Bool, false))),
		testutils.Method("Log", testutils.Lit(internal.NewData(x.String, "a = ")), testutils.Var("a")),
	}
	if _, err := vm.Execute(prog); err != nil {
		t.Fatal(err)
	}
	if n := logs.FilterMessage("dispatch").Len(); n != 2 {
		t.Errorf("wrong number of traced instructions: want 2, got %d", n)
	}
	if n := logs.FilterMessage("a = 1").Len(); n != 1 {
		t.Errorf("log message not written: %v", logs.All())
	}
	if atomicDebug := vm.Debug; atomicDebug != 0 {
		t.Errorf("tracing still enabled")
	}
}

func TestStack(t *testing.T) {
	frames := []internal.Frame{
		{Depth: 0, Line: 3, Instruction: 2, Interactive: true},
		{Depth: 1, Line: 7, Instruction: 0, TempBase: 4, TempTop: 2},
	}
	want := "0: interactive at line 3 (instruction 2, temps 0+0)\n1: scope at line 7 (instruction 0, temps 4+2)"
	if got := debugger.Stack(frames); got != want {
		t.Errorf("wrong stack:\nwant %q\ngot  %q", want, got)
	}
}
