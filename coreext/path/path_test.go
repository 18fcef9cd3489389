package path_test

import (
	"path/filepath"
	"testing"

	"github.com/zephyrtronium/reflex/coreext/path"
	"github.com/zephyrtronium/reflex/internal"
	"github.com/zephyrtronium/reflex/testutils"
)

func TestRegister(t *testing.T) {
	testutils.CheckLibrary(t, path.Name, []string{
		"Absolute",
		"IsAbsolute",
		"Join",
		"Base",
		"Dir",
		"Ext",
		"Separator",
		"ListSeparator",
		"HasDriveLetters",
	})
}

func TestPaths(t *testing.T) {
	x := testutils.TestingRegistry().Integral
	s := func(v string) internal.Data { return internal.NewData(x.String, v) }
	lit := testutils.Lit
	tmp := testutils.Temp
	abs, err := filepath.Abs("a")
	if err != nil {
		t.Fatal(err)
	}
	cases := map[string]testutils.ProgramTestCase{
		"Join": {
			Program: []*internal.Instruction{
				testutils.Call("Join", 1, lit(s("a")), lit(s("b/")), lit(s("../c"))),
				testutils.Return(tmp(1)),
			},
			Pass: testutils.PassEqual(s("a/c")),
		},
		"Base": {
			Program: []*internal.Instruction{
				testutils.Call("Path:Base", 1, lit(s("a/b.txt"))),
				testutils.Return(tmp(1)),
			},
			Pass: testutils.PassEqual(s("b.txt")),
		},
		"Dir": {
			Program: []*internal.Instruction{
				testutils.Call("Dir", 1, lit(s("a/b/c"))),
				testutils.Return(tmp(1)),
			},
			Pass: testutils.PassEqual(s("a/b")),
		},
		"Ext": {
			Program: []*internal.Instruction{
				testutils.Call("Ext", 1, lit(s("a/b.txt"))),
				testutils.Return(tmp(1)),
			},
			Pass: testutils.PassEqual(s(".txt")),
		},
		"Absolute": {
			Program: []*internal.Instruction{
				testutils.Call("Absolute", 1, lit(s("a"))),
				testutils.Return(tmp(1)),
			},
			Pass: testutils.PassEqual(s(filepath.ToSlash(abs))),
		},
		"IsAbsolute": {
			Program: []*internal.Instruction{
				testutils.Call("IsAbsolute", 1, lit(s("a/b"))),
				testutils.Return(tmp(1)),
			},
			Pass: testutils.PassEqual(internal.NewData(x.Bool, false)),
		},
		"Separator": {
			Program: []*internal.Instruction{
				testutils.Return(internal.IdentifierValue("Path:Separator")),
			},
			Pass: testutils.PassEqual(s(string(filepath.Separator))),
		},
	}
	for name, c := range cases {
		t.Run(name, c.TestFunc(name))
	}
}
