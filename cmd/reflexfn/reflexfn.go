// Command reflexfn lists the functions in Go packages which can serve as
// native overload bodies, formatted as a binding table for the package's
// installer. Functions match when they are assignable to the runtime's Fn
// type. The first package named must define Fn.
package main

import (
	"flag"
	"fmt"
	"go/token"
	"go/types"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/tools/go/packages"
)

func main() {
	var match, ignore string
	var runtime string
	flag.StringVar(&match, "match", ".", "include only functions matching this regular expression")
	flag.StringVar(&ignore, "ignore", "$^", "exclude functions matching this regular expression")
	flag.StringVar(&runtime, "runtime", "github.com/zephyrtronium/reflex/internal", "import path of the package defining Fn")
	flag.Parse()
	mre, err := regexp.Compile(match)
	if err != nil {
		fail("error compiling match:", err)
	}
	ire, err := regexp.Compile(ignore)
	if err != nil {
		fail("error compiling ignore:", err)
	}

	fset := token.NewFileSet()
	config := packages.Config{Mode: packages.NeedName | packages.NeedTypes | packages.NeedSyntax | packages.NeedImports, Fset: fset}
	pkgs, err := packages.Load(&config, append([]string{runtime}, flag.Args()...)...)
	if err != nil {
		fail("error loading packages:", err)
	}
	fn, err := getFn(pkgs[0].Types)
	if err != nil {
		fail(err)
	}
	var results []string
	for _, pkg := range pkgs[1:] {
		results = append(results, find(pkg.Types.Scope(), fn, mre, ire)...)
	}
	sort.Strings(results)
	write(os.Stdout, results, mre)
}

func fail(args ...interface{}) {
	fmt.Fprintln(os.Stderr, args...)
	os.Exit(1)
}

// getFn finds the underlying signature of the Fn type in pkg.
func getFn(pkg *types.Package) (types.Type, error) {
	r := pkg.Scope().Lookup("Fn")
	if r == nil {
		return nil, fmt.Errorf("%s has no definition of Fn", pkg.Name())
	}
	t, ok := r.(*types.TypeName)
	if !ok {
		return nil, fmt.Errorf("%s has incorrect definition of Fn: %v", pkg.Name(), r)
	}
	return t.Type().Underlying(), nil
}

// find lists the names in a scope which match mre, do not match ire, and
// have types assignable to fn.
func find(scope *types.Scope, fn types.Type, mre, ire *regexp.Regexp) []string {
	var r []string
	for _, name := range scope.Names() {
		if !mre.MatchString(name) || ire.MatchString(name) {
			continue
		}
		obj := scope.Lookup(name)
		if _, ok := obj.(*types.Func); !ok {
			if _, ok := obj.(*types.Var); !ok {
				continue
			}
		}
		if types.AssignableTo(obj.Type(), fn) {
			r = append(r, name)
		}
	}
	return r
}

// write prints a binding table entry for each function.
func write(w io.Writer, names []string, mre *regexp.Regexp) {
	for _, name := range names {
		fmt.Fprintf(w, "\t%q: %s,\n", trimMatch(name, mre), name)
	}
}

// trimMatch removes the matched prefix from a function name and capitalizes
// the rest, producing the name the function is registered under.
func trimMatch(name string, mre *regexp.Regexp) string {
	if mre.String() != "." {
		k := mre.FindStringIndex(name)
		name = name[k[1]:]
	}
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}
