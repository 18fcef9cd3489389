// Package path provides operations on slash-separated file paths.
package path

import (
	"path/filepath"
	"runtime"

	"go.uber.org/multierr"

	"github.com/zephyrtronium/reflex/internal"
)

// Name is the name of the Path library.
const Name = "Path"

func init() {
	internal.Register(install)
}

func install(r *internal.Registry) error {
	x := r.Integral
	str := func(args []internal.Data, i int) string { return args[i].Value().(string) }

	absolute := internal.NewFunction("Absolute", "Returns an absolute version of a path.")
	isAbs := internal.NewFunction("IsAbsolute", "Returns whether a path is absolute. The path may be slash- or system-separated.")
	join := internal.NewFunction("Join", "Joins path elements with slashes.")
	base := internal.NewFunction("Base", "Returns the last element of a path.")
	dir := internal.NewFunction("Dir", "Returns all but the last element of a path.")
	ext := internal.NewFunction("Ext", "Returns the extension of a path, including its dot.")

	var err error
	err = multierr.Append(err, absolute.AddOverload(internal.NewOverload(func(vm *internal.VM, args []internal.Data) (internal.Data, error) {
		abs, err := filepath.Abs(filepath.FromSlash(str(args, 0)))
		if err != nil {
			return internal.Data{}, internal.WrapError(internal.ParameterError, err, "cannot make %q absolute", str(args, 0))
		}
		return vm.NewString(filepath.ToSlash(abs)), nil
	}, x.String, internal.Param("path", x.String))))
	err = multierr.Append(err, isAbs.AddOverload(internal.NewOverload(func(vm *internal.VM, args []internal.Data) (internal.Data, error) {
		return vm.NewBool(filepath.IsAbs(filepath.FromSlash(str(args, 0)))), nil
	}, x.Bool, internal.Param("path", x.String))))
	err = multierr.Append(err, join.AddOverload(&internal.Overload{
		Params:     []*internal.Parameter{internal.Param("elem", x.String)},
		ReturnType: x.String,
		RepeatLast: true,
		Body: internal.Fn(func(vm *internal.VM, args []internal.Data) (internal.Data, error) {
			elems := make([]string, len(args))
			for i := range args {
				elems[i] = filepath.FromSlash(str(args, i))
			}
			return vm.NewString(filepath.ToSlash(filepath.Join(elems...))), nil
		}),
	}))
	for _, f := range []struct {
		fn *internal.Function
		op func(string) string
	}{{base, filepath.Base}, {dir, filepath.Dir}, {ext, filepath.Ext}} {
		op := f.op
		err = multierr.Append(err, f.fn.AddOverload(internal.NewOverload(func(vm *internal.VM, args []internal.Data) (internal.Data, error) {
			return vm.NewString(filepath.ToSlash(op(filepath.FromSlash(str(args, 0))))), nil
		}, x.String, internal.Param("path", x.String))))
	}
	if err != nil {
		return err
	}

	lib := internal.NewLibrary(Name, "Slash-separated file paths.")
	if err := lib.AddFunctions(absolute, isAbs, join, base, dir, ext); err != nil {
		return err
	}
	for _, c := range []*internal.Constant{
		internal.NewNamedConstant("Separator", "The system path separator.", internal.NewConstant(x.String, string(filepath.Separator))),
		internal.NewNamedConstant("ListSeparator", "The system path list separator.", internal.NewConstant(x.String, string(filepath.ListSeparator))),
		internal.NewNamedConstant("HasDriveLetters", "Whether absolute paths begin with drive letters.", internal.NewConstant(x.Bool, runtime.GOOS == "windows")),
	} {
		if err := lib.Add(c); err != nil {
			return err
		}
	}
	return r.AddLibrary(lib)
}
