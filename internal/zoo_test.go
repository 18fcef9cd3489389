package internal_test

import (
	"bytes"

	"github.com/zephyrtronium/reflex/internal"
)

// pet is the object behind both Animal and Dog values, so that converting
// between them keeps the same pointer.
type pet struct {
	Name    string
	Species string
	Legs    int
}

// zoo is a library of reference types with an inheritance edge, plus probes
// that let tests observe the VM from inside native calls.
type zoo struct {
	lib    *internal.Library
	Animal *internal.Type
	Dog    *internal.Type

	// deleted counts deletions of each pet.
	deleted map[*pet]int
	// seen is the last pet passed to Describe.
	seen *pet
	// frames is the call stack observed by the last Probe.
	frames []internal.Frame
	// tags is the number of Int arguments received by the last Tag call.
	tags int
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

func newZoo(x *internal.Integral) *zoo {
	z := &zoo{deleted: map[*pet]int{}}
	ops := internal.TypeOps{
		String: func(d internal.Data) string {
			p := d.Value().(*pet)
			return p.Species + " " + p.Name
		},
		Assign: func(dst, src interface{}) error {
			*dst.(*pet) = *src.(*pet)
			return nil
		},
		Delete: func(obj interface{}) {
			z.deleted[obj.(*pet)]++
		},
	}
	z.Animal = internal.NewType("Animal", "A creature.", (*pet)(nil), true, ops)
	z.Dog = internal.NewType("Dog", "A good creature.", (*pet)(nil), true, ops)

	must(z.Animal.AddConstructor(internal.NewOverload(func(vm *internal.VM, args []internal.Data) (internal.Data, error) {
		p := &pet{Name: args[0].Value().(string), Species: args[1].Value().(string), Legs: 4}
		return internal.NewData(z.Animal, p), nil
	}, nil, internal.Param("name", x.String), internal.Param("species", x.String))))
	must(z.Dog.AddConstructor(internal.NewOverload(func(vm *internal.VM, args []internal.Data) (internal.Data, error) {
		return internal.NewData(z.Dog, &pet{Name: args[0].Value().(string), Species: "dog", Legs: 4}), nil
	}, nil, internal.Param("name", x.String))))

	must(z.Animal.AddMember(internal.NewFieldMember("Name", "The creature's name.", x.String, "Name")))
	must(z.Animal.AddMember(internal.NewInstanceMember("Legs", "The number of legs.", x.Int,
		func(vm *internal.VM, self internal.Data) (internal.Data, error) {
			return vm.NewInt(self.Value().(*pet).Legs), nil
		}, nil)))

	speak := func(t *internal.Type, sound string) {
		f := internal.NewFunction("Speak", "Makes a sound.")
		must(t.AddFunction(f))
		must(f.AddOverload(&internal.Overload{
			ReturnType: x.String,
			Const:      true,
			Body: internal.Fn(func(vm *internal.VM, args []internal.Data) (internal.Data, error) {
				return vm.NewString(sound), nil
			}),
		}))
	}
	speak(z.Animal, "...")
	speak(z.Dog, "woof")

	rename := internal.NewFunction("Rename", "Changes the creature's name.")
	must(z.Animal.AddFunction(rename))
	must(rename.AddMethod(&internal.Overload{
		Params: []*internal.Parameter{internal.Param("name", x.String)},
		Body: internal.Fn(func(vm *internal.VM, args []internal.Data) (internal.Data, error) {
			args[0].Value().(*pet).Name = args[1].Value().(string)
			return internal.Data{}, nil
		}),
	}))

	must(z.Dog.AddInheritance(z.Animal,
		func(d internal.Data) (internal.Data, error) {
			return internal.NewReference(z.Animal, d.Payload(), d.IsConstant()), nil
		},
		func(d internal.Data) (internal.Data, error) {
			p, _ := d.Value().(*pet)
			if p == nil || p.Species != "dog" {
				return internal.Data{}, internal.NewError(internal.CastError, "%v is not a dog", d)
			}
			return internal.NewReference(z.Dog, p, d.IsConstant()), nil
		},
	))

	describe := internal.NewFunction("Describe", "Returns the name of a creature.")
	must(describe.AddOverload(internal.NewOverload(func(vm *internal.VM, args []internal.Data) (internal.Data, error) {
		z.seen = args[0].Payload().(*pet)
		return vm.NewString(z.seen.Name), nil
	}, x.String, &internal.Parameter{Name: "a", Type: z.Animal, Reference: true})))

	probe := internal.NewFunction("Probe", "Records the call stack.")
	must(probe.AddMethod(internal.NewOverload(func(vm *internal.VM, args []internal.Data) (internal.Data, error) {
		z.frames = vm.Frames()
		return internal.Data{}, nil
	}, nil)))

	deletions := internal.NewFunction("Deletions", "Returns the number of creatures deleted so far.")
	must(deletions.AddOverload(internal.NewOverload(func(vm *internal.VM, args []internal.Data) (internal.Data, error) {
		n := 0
		for _, c := range z.deleted {
			n += c
		}
		return vm.NewInt(n), nil
	}, x.Int)))

	fail := internal.NewFunction("Fail", "Fails one line above the caller.")
	must(fail.AddMethod(internal.NewOverload(func(vm *internal.VM, args []internal.Data) (internal.Data, error) {
		return internal.Data{}, &internal.Error{Kind: internal.FlowError, Message: "failed", Line: -1}
	}, nil)))

	countInts := func(vm *internal.VM, args []internal.Data) (internal.Data, error) {
		z.tags = len(args) - 1
		return vm.NewInt(z.tags), nil
	}
	tag := internal.NewFunction("Tag", "Counts trailing integers.")
	must(tag.AddOverload(&internal.Overload{
		Params:     []*internal.Parameter{internal.Param("label", x.String), internal.Param("n", x.Int)},
		ReturnType: x.Int,
		RepeatLast: true,
		Body:       internal.Fn(countInts),
	}))
	tagOpt := internal.NewFunction("TagOpt", "Counts trailing integers, which may be absent.")
	must(tagOpt.AddOverload(&internal.Overload{
		Params:     []*internal.Parameter{internal.Param("label", x.String), {Name: "n", Type: x.Int, Optional: true}},
		ReturnType: x.Int,
		RepeatLast: true,
		Body:       internal.Fn(countInts),
	}))

	z.lib = internal.NewLibrary("Zoo", "Creatures for testing.")
	must(z.lib.AddTypes(z.Animal, z.Dog))
	must(z.lib.AddFunctions(describe, probe, deletions, fail, tag, tagOpt))
	return z
}

// install adds the zoo to a registry.
func (z *zoo) install(r *internal.Registry) error {
	return r.AddLibrary(z.lib)
}

// zooVM creates a VM with a zoo library.
func zooVM(build func(r *internal.Registry) error) (*internal.VM, *zoo) {
	r := internal.NewRegistry()
	z := newZoo(r.Integral)
	must(z.install(r))
	if build != nil {
		must(build(r))
	}
	vm := internal.NewVM(r)
	vm.Out = &bytes.Buffer{}
	return vm, z
}

// Instruction shorthands.

func lit(d internal.Data) internal.Value { return internal.LiteralValue(d) }

func tmp(slot int) internal.Value { return internal.TempValue(slot) }

func vr(name string) internal.Value { return internal.VariableValue(name) }

func id(path string) internal.Value { return internal.IdentifierValue(path) }

func call(name string, store int, params ...internal.Value) *internal.Instruction {
	return &internal.Instruction{Kind: internal.FunctionCall, Name: id(name), Parameters: params, Store: store}
}

func method(name string, params ...internal.Value) *internal.Instruction {
	return &internal.Instruction{Kind: internal.MethodCall, Name: id(name), Parameters: params}
}

func memberCall(name string, store int, params ...internal.Value) *internal.Instruction {
	return &internal.Instruction{Kind: internal.MemberFunctionCall, Name: id(name), Parameters: params, Store: store}
}

func save(slot int, v internal.Value) *internal.Instruction {
	return &internal.Instruction{Kind: internal.SaveToTemp, RHS: v, Store: slot}
}

func set(name string, v internal.Value) *internal.Instruction {
	return &internal.Instruction{Kind: internal.Assignment, Name: vr(name), RHS: v}
}

func ret(v ...internal.Value) *internal.Instruction {
	return call("return", 0, v...)
}
