package main

import (
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"regexp"
	"strings"
	"testing"
)

const src = `package p

type VM struct{}
type Data struct{}
type Fn func(vm *VM, args []Data) (Data, error)

func collectorCount(vm *VM, args []Data) (Data, error) { return Data{}, nil }
func collectorLive(vm *VM, args []Data) (Data, error) { return Data{}, nil }
func helper(vm *VM) {}
var bound = collectorCount
const notAFunction = 1
`

func check(t *testing.T) *types.Package {
	t.Helper()
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "p.go", src, 0)
	if err != nil {
		t.Fatal(err)
	}
	conf := types.Config{Importer: importer.Default()}
	pkg, err := conf.Check("p", fset, []*ast.File{f}, nil)
	if err != nil {
		t.Fatal(err)
	}
	return pkg
}

func TestFind(t *testing.T) {
	pkg := check(t)
	fn, err := getFn(pkg)
	if err != nil {
		t.Fatal(err)
	}
	cases := map[string]struct {
		match, ignore string
		want          []string
	}{
		"All":    {".", "$^", []string{"bound", "collectorCount", "collectorLive"}},
		"Prefix": {"^collector", "$^", []string{"collectorCount", "collectorLive"}},
		"Ignore": {"^collector", "Live$", []string{"collectorCount"}},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			got := find(pkg.Scope(), fn, regexp.MustCompile(c.match), regexp.MustCompile(c.ignore))
			if strings.Join(got, ",") != strings.Join(c.want, ",") {
				t.Errorf("wrong functions: want %v, got %v", c.want, got)
			}
		})
	}
}

func TestGetFnMissing(t *testing.T) {
	if _, err := getFn(types.NewPackage("q", "q")); err == nil {
		t.Error("found Fn in an empty package")
	}
}

func TestWrite(t *testing.T) {
	var b strings.Builder
	write(&b, []string{"collectorCount", "collectorLive"}, regexp.MustCompile("^collector"))
	want := "\t\"Count\": collectorCount,\n\t\"Live\": collectorLive,\n"
	if b.String() != want {
		t.Errorf("wrong table:\nwant %q\ngot  %q", want, b.String())
	}
}
