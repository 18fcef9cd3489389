// Package text converts between strings and encoded bytes.
package text

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/multierr"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"

	"github.com/zephyrtronium/reflex/internal"
)

// Name is the name of the Text library.
const Name = "Text"

// Encodings maps the names of supported encodings to their codecs.
var Encodings = map[string]encoding.Encoding{
	"utf8":    unicode.UTF8,
	"latin1":  charmap.Windows1252,
	"utf16le": unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM),
	"utf16be": unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM),
	"utf32le": utf32.UTF32(utf32.LittleEndian, utf32.IgnoreBOM),
	"utf32be": utf32.UTF32(utf32.BigEndian, utf32.IgnoreBOM),
}

// Encode encodes s with the named encoding.
func Encode(s, enc string) ([]byte, error) {
	e, ok := Encodings[strings.ToLower(enc)]
	if !ok {
		return nil, internal.NewError(internal.ParameterError, "unknown encoding %q", enc)
	}
	b, err := e.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, internal.WrapError(internal.ParameterError, err, "cannot encode as %s", enc)
	}
	return b, nil
}

// Decode decodes b from the named encoding.
func Decode(b []byte, enc string) (string, error) {
	e, ok := Encodings[strings.ToLower(enc)]
	if !ok {
		return "", internal.NewError(internal.ParameterError, "unknown encoding %q", enc)
	}
	r, err := e.NewDecoder().Bytes(b)
	if err != nil {
		return "", internal.WrapError(internal.ParameterError, err, "cannot decode from %s", enc)
	}
	return string(r), nil
}

func init() {
	internal.Register(install)
}

func install(r *internal.Registry) error {
	x := r.Integral
	t := internal.NewType("Bytes", "A sequence of bytes.", []byte(nil), false, internal.TypeOps{
		String: func(d internal.Data) string {
			return fmt.Sprintf("% x", d.Value().([]byte))
		},
		Equal: func(l, r interface{}) bool {
			return bytes.Equal(l.([]byte), r.([]byte))
		},
	})
	names := make([]string, 0, len(Encodings))
	for name := range Encodings {
		names = append(names, name)
	}
	sort.Strings(names)
	options := make([]internal.Data, len(names))
	for i, name := range names {
		options[i] = internal.NewData(x.String, name)
	}
	encodingParam := func() *internal.Parameter {
		return &internal.Parameter{
			Name:     "encoding",
			Type:     x.String,
			Optional: true,
			Default:  internal.NewData(x.String, "utf8"),
			Options:  options,
		}
	}

	var err error
	err = multierr.Append(err, t.AddConstructor(internal.NewOverload(func(vm *internal.VM, args []internal.Data) (internal.Data, error) {
		return internal.NewData(t, []byte(args[0].Value().(string))), nil
	}, nil, internal.Param("text", x.String))))
	err = multierr.Append(err, t.AddMember(internal.NewInstanceMember("Length", "The number of bytes.", x.Int,
		func(vm *internal.VM, self internal.Data) (internal.Data, error) {
			return vm.NewInt(len(self.Value().([]byte))), nil
		}, nil)))
	err = multierr.Append(err, t.Define(internal.NewOperator("+", "Concatenates bytes."), &internal.Overload{
		Params:     []*internal.Parameter{{Name: "other", Type: t, Constant: true}},
		ReturnType: t,
		Const:      true,
		Body: internal.Fn(func(vm *internal.VM, args []internal.Data) (internal.Data, error) {
			l, r := args[0].Value().([]byte), args[1].Value().([]byte)
			b := make([]byte, 0, len(l)+len(r))
			return internal.NewData(t, append(append(b, l...), r...)), nil
		}),
	}))
	err = multierr.Append(err, t.Define(internal.NewOperator("==", "Compares bytes."), &internal.Overload{
		Params:     []*internal.Parameter{{Name: "other", Type: t, Constant: true}},
		ReturnType: x.Bool,
		Const:      true,
		Body: internal.Fn(func(vm *internal.VM, args []internal.Data) (internal.Data, error) {
			return vm.NewBool(bytes.Equal(args[0].Value().([]byte), args[1].Value().([]byte))), nil
		}),
	}))

	encode := internal.NewFunction("Encode", "Encodes text as bytes.")
	decode := internal.NewFunction("Decode", "Decodes bytes as text.")
	err = multierr.Append(err, encode.AddOverload(internal.NewOverload(func(vm *internal.VM, args []internal.Data) (internal.Data, error) {
		b, err := Encode(args[0].Value().(string), args[1].Value().(string))
		if err != nil {
			return internal.Data{}, err
		}
		return internal.NewData(t, b), nil
	}, t, internal.Param("text", x.String), encodingParam())))
	err = multierr.Append(err, decode.AddOverload(internal.NewOverload(func(vm *internal.VM, args []internal.Data) (internal.Data, error) {
		s, err := Decode(args[0].Value().([]byte), args[1].Value().(string))
		if err != nil {
			return internal.Data{}, err
		}
		return vm.NewString(s), nil
	}, x.String, &internal.Parameter{Name: "data", Type: t, Constant: true}, encodingParam())))
	if err != nil {
		return err
	}

	lib := internal.NewLibrary(Name, "Text encodings.")
	if err := lib.AddTypes(t); err != nil {
		return err
	}
	if err := lib.AddFunctions(encode, decode); err != nil {
		return err
	}
	return r.AddLibrary(lib)
}
