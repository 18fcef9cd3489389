// Package file provides access to files and directories.
package file

import (
	"bufio"
	"errors"
	"io"
	"io/fs"
	"os"
	"sort"
	"strings"

	"go.uber.org/multierr"

	"github.com/zephyrtronium/reflex/internal"
)

// Name is the name of the Files library.
const Name = "Files"

// File is the object behind File values.
type File struct {
	// Path is the path the file was created with.
	Path string

	f *os.File
	r *bufio.Reader
}

// Close closes the file if it is open.
func (f *File) Close() error {
	if f.f == nil {
		return nil
	}
	err := f.f.Close()
	f.f, f.r = nil, nil
	return err
}

// ReadLine reads a line from the file without its line ending. eof is true
// when no more lines remain.
func (f *File) ReadLine() (line string, eof bool, err error) {
	if f.r == nil {
		f.r = bufio.NewReader(f.f)
	}
	line, err = f.r.ReadString('\n')
	if err == io.EOF {
		return line, line == "", nil
	}
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r"), false, err
}

// AtEnd returns whether reading the file would produce no more data.
func (f *File) AtEnd() bool {
	if f.r == nil {
		f.r = bufio.NewReader(f.f)
	}
	_, err := f.r.Peek(1)
	return err != nil
}

// modes maps open modes to flags.
var modes = map[string]int{
	"read":   os.O_RDONLY,
	"write":  os.O_WRONLY | os.O_CREATE | os.O_TRUNC,
	"append": os.O_WRONLY | os.O_CREATE | os.O_APPEND,
	"update": os.O_RDWR | os.O_CREATE,
}

// fsError converts an error from the os package.
func fsError(err error, op, path string) error {
	if errors.Is(err, fs.ErrNotExist) {
		return internal.WrapError(internal.FileNotFound, err, "cannot %s %s", op, path)
	}
	return internal.WrapError(internal.ParameterError, err, "cannot %s %s", op, path)
}

func init() {
	internal.Register(install)
}

type files struct {
	x *internal.Integral
	t *internal.Type
}

func install(r *internal.Registry) error {
	x := r.Integral
	fl := files{
		x: x,
		t: internal.NewType("File", "A file on disk.", (*File)(nil), true, internal.TypeOps{
			String: func(d internal.Data) string {
				return "File(" + d.Value().(*File).Path + ")"
			},
			Delete: func(obj interface{}) {
				obj.(*File).Close()
			},
		}),
	}
	if err := fl.buildType(); err != nil {
		return err
	}
	fns, err := fl.functions()
	if err != nil {
		return err
	}
	lib := internal.NewLibrary(Name, "Files and directories.")
	if err := lib.AddTypes(fl.t); err != nil {
		return err
	}
	if err := lib.AddFunctions(fns...); err != nil {
		return err
	}
	return r.AddLibrary(lib)
}

func self(args []internal.Data) (*File, error) {
	f, _ := args[0].Value().(*File)
	if f == nil {
		return nil, internal.NewError(internal.NullValue, "file is null")
	}
	return f, nil
}

// open returns the open os.File of a File value.
func open(args []internal.Data) (*File, error) {
	f, err := self(args)
	if err != nil {
		return nil, err
	}
	if f.f == nil {
		return nil, internal.NewError(internal.FlowError, "%s is not open", f.Path)
	}
	return f, nil
}

func (fl files) buildType() error {
	x, t := fl.x, fl.t
	modeOptions := make([]internal.Data, 0, len(modes))
	for m := range modes {
		modeOptions = append(modeOptions, internal.NewData(x.String, m))
	}
	sort.Slice(modeOptions, func(i, j int) bool { return modeOptions[i].Value().(string) < modeOptions[j].Value().(string) })

	var err error
	err = multierr.Append(err, t.AddConstructor(internal.NewOverload(func(vm *internal.VM, args []internal.Data) (internal.Data, error) {
		return internal.NewData(t, &File{Path: args[0].Value().(string)}), nil
	}, nil, internal.Param("path", x.String))))
	path := internal.NewFieldMember("Path", "The path of the file.", x.String, "Path")
	path.ReadOnly = true
	err = multierr.Append(err, t.AddMember(path))
	err = multierr.Append(err, t.AddMember(internal.NewInstanceMember("IsOpen", "Whether the file is open.", x.Bool,
		func(vm *internal.VM, self internal.Data) (internal.Data, error) {
			f, _ := self.Value().(*File)
			return vm.NewBool(f != nil && f.f != nil), nil
		}, nil)))

	openFn := internal.NewFunction("Open", "Opens the file for reading, writing, appending, or updating.")
	err = multierr.Append(err, t.AddFunction(openFn))
	err = multierr.Append(err, openFn.AddMethod(&internal.Overload{
		Params: []*internal.Parameter{{
			Name:     "mode",
			Type:     x.String,
			Optional: true,
			Default:  internal.NewData(x.String, "read"),
			Options:  modeOptions,
		}},
		Body: internal.Fn(func(vm *internal.VM, args []internal.Data) (internal.Data, error) {
			f, err := self(args)
			if err != nil {
				return internal.Data{}, err
			}
			if err := f.Close(); err != nil {
				return internal.Data{}, fsError(err, "close", f.Path)
			}
			h, err := os.OpenFile(f.Path, modes[strings.ToLower(args[1].Value().(string))], 0666)
			if err != nil {
				return internal.Data{}, fsError(err, "open", f.Path)
			}
			f.f = h
			return internal.Data{}, nil
		}),
	}))
	closeFn := internal.NewFunction("Close", "Closes the file.")
	err = multierr.Append(err, t.AddFunction(closeFn))
	err = multierr.Append(err, closeFn.AddMethod(&internal.Overload{
		Body: internal.Fn(func(vm *internal.VM, args []internal.Data) (internal.Data, error) {
			f, err := self(args)
			if err != nil {
				return internal.Data{}, err
			}
			if err := f.Close(); err != nil {
				return internal.Data{}, fsError(err, "close", f.Path)
			}
			return internal.Data{}, nil
		}),
	}))
	write := internal.NewFunction("Write", "Writes text to the open file.")
	err = multierr.Append(err, t.AddFunction(write))
	err = multierr.Append(err, write.AddMethod(&internal.Overload{
		Params:     []*internal.Parameter{internal.Param("text", x.Variant)},
		RepeatLast: true,
		Body: internal.Fn(func(vm *internal.VM, args []internal.Data) (internal.Data, error) {
			f, err := open(args)
			if err != nil {
				return internal.Data{}, err
			}
			for _, arg := range args[1:] {
				if _, err := io.WriteString(f.f, internal.Unwrap(arg).String()); err != nil {
					return internal.Data{}, fsError(err, "write", f.Path)
				}
			}
			return internal.Data{}, nil
		}),
	}))
	err = multierr.Append(err, t.Define(internal.NewFunction("ReadLine", "Reads the next line of the open file. At the end of the file, the result is empty."), &internal.Overload{
		ReturnType: x.String,
		Body: internal.Fn(func(vm *internal.VM, args []internal.Data) (internal.Data, error) {
			f, err := open(args)
			if err != nil {
				return internal.Data{}, err
			}
			line, _, err := f.ReadLine()
			if err != nil {
				return internal.Data{}, fsError(err, "read", f.Path)
			}
			return vm.NewString(line), nil
		}),
	}))
	err = multierr.Append(err, t.Define(internal.NewFunction("AtEnd", "Returns whether no data remains in the open file."), &internal.Overload{
		ReturnType: x.Bool,
		Body: internal.Fn(func(vm *internal.VM, args []internal.Data) (internal.Data, error) {
			f, err := open(args)
			if err != nil {
				return internal.Data{}, err
			}
			return vm.NewBool(f.AtEnd()), nil
		}),
	}))
	err = multierr.Append(err, t.Define(internal.NewFunction("ReadToEnd", "Reads the rest of the open file."), &internal.Overload{
		ReturnType: x.String,
		Body: internal.Fn(func(vm *internal.VM, args []internal.Data) (internal.Data, error) {
			f, err := open(args)
			if err != nil {
				return internal.Data{}, err
			}
			var r io.Reader = f.f
			if f.r != nil {
				r = f.r
			}
			b, err := io.ReadAll(r)
			if err != nil {
				return internal.Data{}, fsError(err, "read", f.Path)
			}
			return vm.NewString(string(b)), nil
		}),
	}))
	err = multierr.Append(err, t.Define(internal.NewFunction("Size", "Returns the size of the file in bytes."), &internal.Overload{
		ReturnType: x.Int,
		Const:      true,
		Body: internal.Fn(func(vm *internal.VM, args []internal.Data) (internal.Data, error) {
			f, err := self(args)
			if err != nil {
				return internal.Data{}, err
			}
			info, err := os.Stat(f.Path)
			if err != nil {
				return internal.Data{}, fsError(err, "stat", f.Path)
			}
			return vm.NewInt(int(info.Size())), nil
		}),
	}))
	return err
}

func (fl files) functions() ([]*internal.Function, error) {
	x := fl.x
	path := func() *internal.Parameter { return internal.Param("path", x.String) }
	str := func(args []internal.Data, i int) string { return args[i].Value().(string) }

	exists := internal.NewFunction("Exists", "Returns whether a file or directory exists.")
	isDir := internal.NewFunction("IsDirectory", "Returns whether a path names a directory.")
	readText := internal.NewFunction("ReadText", "Returns the contents of a file.")
	writeText := internal.NewFunction("WriteText", "Replaces the contents of a file.")
	remove := internal.NewFunction("Remove", "Removes a file or empty directory.")
	list := internal.NewFunction("List", "Returns the names of the items in a directory, one per line.")
	makeDir := internal.NewFunction("MakeDir", "Creates a directory and any missing parents.")
	wd := internal.NewFunction("WorkingDirectory", "Returns the current working directory.")

	var err error
	err = multierr.Append(err, exists.AddOverload(internal.NewOverload(func(vm *internal.VM, args []internal.Data) (internal.Data, error) {
		_, err := os.Stat(str(args, 0))
		return vm.NewBool(err == nil), nil
	}, x.Bool, path())))
	err = multierr.Append(err, isDir.AddOverload(internal.NewOverload(func(vm *internal.VM, args []internal.Data) (internal.Data, error) {
		info, err := os.Stat(str(args, 0))
		return vm.NewBool(err == nil && info.IsDir()), nil
	}, x.Bool, path())))
	err = multierr.Append(err, readText.AddOverload(internal.NewOverload(func(vm *internal.VM, args []internal.Data) (internal.Data, error) {
		b, err := os.ReadFile(str(args, 0))
		if err != nil {
			return internal.Data{}, fsError(err, "read", str(args, 0))
		}
		return vm.NewString(string(b)), nil
	}, x.String, path())))
	err = multierr.Append(err, writeText.AddMethod(internal.NewOverload(func(vm *internal.VM, args []internal.Data) (internal.Data, error) {
		if err := os.WriteFile(str(args, 0), []byte(str(args, 1)), 0666); err != nil {
			return internal.Data{}, fsError(err, "write", str(args, 0))
		}
		return internal.Data{}, nil
	}, nil, path(), internal.Param("text", x.String))))
	err = multierr.Append(err, remove.AddMethod(internal.NewOverload(func(vm *internal.VM, args []internal.Data) (internal.Data, error) {
		if err := os.Remove(str(args, 0)); err != nil {
			return internal.Data{}, fsError(err, "remove", str(args, 0))
		}
		return internal.Data{}, nil
	}, nil, path())))
	err = multierr.Append(err, list.AddOverload(internal.NewOverload(func(vm *internal.VM, args []internal.Data) (internal.Data, error) {
		items, err := os.ReadDir(str(args, 0))
		if err != nil {
			return internal.Data{}, fsError(err, "list", str(args, 0))
		}
		names := make([]string, len(items))
		for i, item := range items {
			names[i] = item.Name()
		}
		return vm.NewString(strings.Join(names, "\n")), nil
	}, x.String, path())))
	err = multierr.Append(err, makeDir.AddMethod(internal.NewOverload(func(vm *internal.VM, args []internal.Data) (internal.Data, error) {
		if err := os.MkdirAll(str(args, 0), 0777); err != nil {
			return internal.Data{}, fsError(err, "create", str(args, 0))
		}
		return internal.Data{}, nil
	}, nil, path())))
	err = multierr.Append(err, wd.AddOverload(internal.NewOverload(func(vm *internal.VM, args []internal.Data) (internal.Data, error) {
		d, err := os.Getwd()
		if err != nil {
			return internal.Data{}, fsError(err, "find", "working directory")
		}
		return vm.NewString(d), nil
	}, x.String)))
	return []*internal.Function{exists, isDir, readText, writeText, remove, list, makeDir, wd}, err
}
