// Package duration provides the Duration type, a span of time.
package duration

import (
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/multierr"

	"github.com/zephyrtronium/reflex/internal"
)

// Name is the name of the library holding the Duration type.
const Name = "Durations"

const (
	year = 365 * 24 * time.Hour
	day  = 24 * time.Hour
)

// DefaultFormat is the format used for the string form of durations.
const DefaultFormat = "%Y years %d days %H:%M:%S"

func init() {
	internal.Register(install)
}

// Type finds the Duration type installed in a registry.
func Type(r *internal.Registry) (*internal.Type, error) {
	l, ok := r.Library(Name)
	if !ok {
		return nil, internal.NewError(internal.SymbolNotFound, "library %s is not registered", Name)
	}
	m, err := l.Lookup("Duration")
	if err != nil {
		return nil, err
	}
	t, ok := m.(*internal.Type)
	if !ok {
		return nil, internal.NewError(internal.SymbolNotFound, "%s:Duration is a %v, not a type", Name, m.Kind())
	}
	return t, nil
}

// New creates a Duration value.
func New(t *internal.Type, d time.Duration) internal.Data {
	return internal.NewData(t, d)
}

func install(r *internal.Registry) error {
	x := r.Integral
	t := internal.NewType("Duration", "A span of time.", time.Duration(0), false, internal.TypeOps{
		String: func(d internal.Data) string {
			return Format(d.Value().(time.Duration), DefaultFormat)
		},
		Parse: func(s string) (interface{}, error) {
			return time.ParseDuration(s)
		},
	})
	this := func(args []internal.Data) time.Duration {
		return args[0].Value().(time.Duration)
	}
	other := func() *internal.Parameter {
		return &internal.Parameter{Name: "other", Type: t, Constant: true}
	}

	var err error
	err = multierr.Append(err, t.AddConstructor(internal.NewOverload(func(vm *internal.VM, args []internal.Data) (internal.Data, error) {
		s := args[0].Value().(float64)
		if math.IsNaN(s) || math.Abs(s) > math.MaxInt64/float64(time.Second) {
			return internal.Data{}, internal.NewError(internal.OutOfBounds, "%v seconds cannot be a Duration", s)
		}
		return New(t, time.Duration(s*float64(time.Second))), nil
	}, nil, internal.Param("seconds", x.Float))))
	err = multierr.Append(err, t.AddConstructor(internal.NewOverload(func(vm *internal.VM, args []internal.Data) (internal.Data, error) {
		return t.Parse(args[0].Value().(string))
	}, nil, internal.Param("text", x.String))))

	err = multierr.Append(err, t.AddMember(unit(t, x.Int, "Years", "The number of whole years, with a year defined as 365 days.", year, 0)))
	err = multierr.Append(err, t.AddMember(unit(t, x.Int, "Days", "The number of days, not including multiples of 365.", day, 365)))
	err = multierr.Append(err, t.AddMember(unit(t, x.Int, "Hours", "The number of whole hours, modulo 24.", time.Hour, 24)))
	err = multierr.Append(err, t.AddMember(unit(t, x.Int, "Minutes", "The number of whole minutes, modulo 60.", time.Minute, 60)))
	err = multierr.Append(err, t.AddMember(internal.NewInstanceMember("Seconds", "The fractional number of seconds, modulo 60.", x.Float,
		func(vm *internal.VM, self internal.Data) (internal.Data, error) {
			return vm.NewFloat(math.Mod(self.Value().(time.Duration).Seconds(), 60)), nil
		},
		func(vm *internal.VM, self internal.Data, value internal.Data) error {
			d := self.Value().(time.Duration)
			d -= d % time.Minute
			return t.Assign(self, New(t, d+time.Duration(value.Value().(float64)*float64(time.Second))))
		},
	)))
	err = multierr.Append(err, t.AddMember(internal.NewInstanceMember("TotalSeconds", "The duration in seconds.", x.Float,
		func(vm *internal.VM, self internal.Data) (internal.Data, error) {
			return vm.NewFloat(self.Value().(time.Duration).Seconds()), nil
		}, nil,
	)))

	err = multierr.Append(err, t.Define(internal.NewFunction("Format", "Formats the duration."), &internal.Overload{
		Params:     []*internal.Parameter{{Name: "format", Type: x.String, Optional: true, Default: internal.NewData(x.String, DefaultFormat)}},
		ReturnType: x.String,
		Const:      true,
		Body: internal.Fn(func(vm *internal.VM, args []internal.Data) (internal.Data, error) {
			return vm.NewString(Format(this(args), args[1].Value().(string))), nil
		}),
	}))
	arith := func(name string, op func(l, r time.Duration) time.Duration) error {
		return t.Define(internal.NewOperator(name, "The "+name+" operator."), &internal.Overload{
			Params:     []*internal.Parameter{other()},
			ReturnType: t,
			Const:      true,
			Body: internal.Fn(func(vm *internal.VM, args []internal.Data) (internal.Data, error) {
				return New(t, op(this(args), args[1].Value().(time.Duration))), nil
			}),
		})
	}
	compare := func(name string, op func(l, r time.Duration) bool) error {
		return t.Define(internal.NewOperator(name, "The "+name+" operator."), &internal.Overload{
			Params:     []*internal.Parameter{other()},
			ReturnType: x.Bool,
			Const:      true,
			Body: internal.Fn(func(vm *internal.VM, args []internal.Data) (internal.Data, error) {
				return vm.NewBool(op(this(args), args[1].Value().(time.Duration))), nil
			}),
		})
	}
	err = multierr.Append(err, arith("+", func(l, r time.Duration) time.Duration { return l + r }))
	err = multierr.Append(err, arith("-", func(l, r time.Duration) time.Duration { return l - r }))
	err = multierr.Append(err, compare("==", func(l, r time.Duration) bool { return l == r }))
	err = multierr.Append(err, compare("!=", func(l, r time.Duration) bool { return l != r }))
	err = multierr.Append(err, compare("<", func(l, r time.Duration) bool { return l < r }))
	err = multierr.Append(err, compare(">", func(l, r time.Duration) bool { return l > r }))
	if err != nil {
		return err
	}

	lib := internal.NewLibrary(Name, "Spans of time.")
	if err := lib.AddTypes(t); err != nil {
		return err
	}
	return r.AddLibrary(lib)
}

// unit creates a member reading and writing a whole number of some unit of a
// duration. If mod is nonzero, the member is the count of the unit modulo mod,
// and writing it adjusts only that part of the duration. Overflow into the
// next unit is allowed.
func unit(t, integer *internal.Type, name, help string, size time.Duration, mod int64) *internal.InstanceMember {
	part := func(d time.Duration) int64 {
		n := int64(d / size)
		if mod != 0 {
			n %= mod
		}
		return n
	}
	return internal.NewInstanceMember(name, help, integer,
		func(vm *internal.VM, self internal.Data) (internal.Data, error) {
			return vm.NewInt(int(part(self.Value().(time.Duration)))), nil
		},
		func(vm *internal.VM, self internal.Data, value internal.Data) error {
			d := self.Value().(time.Duration)
			delta := int64(value.Value().(int)) - part(d)
			return t.Assign(self, New(t, d+time.Duration(delta)*size))
		},
	)
}

// Format formats a duration. The format may use the following directives:
//
// 	%Y - Years, with a year defined as 60*60*24*365 seconds.
// 	%y - Four digit years.
// 	%d - Days, with a day defined as 60*60*24 seconds.
// 	%H - Hours.
// 	%M - Minutes.
// 	%S - Seconds, with six-digit fraction.
//
// The definitions of years and days never account for leap years or leap
// seconds.
func Format(d time.Duration, format string) string {
	rep := strings.NewReplacer(
		"%Y", fmt.Sprintf("%d", d/year),
		"%y", fmt.Sprintf("%04d", d/year),
		"%d", fmt.Sprintf("%02d", d%year/day),
		"%H", fmt.Sprintf("%02d", d%day/time.Hour),
		"%M", fmt.Sprintf("%02d", d%time.Hour/time.Minute),
		"%S", fmt.Sprintf("%09.6f", float64(d%time.Minute)/float64(time.Second)))
	return rep.Replace(format)
}
