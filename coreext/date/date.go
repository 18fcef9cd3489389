// Package date provides the Date type, an instant in time.
package date

import (
	"math"
	"time"

	"gitlab.com/variadico/lctime"
	"go.uber.org/multierr"

	"github.com/zephyrtronium/reflex/coreext/duration"
	"github.com/zephyrtronium/reflex/internal"
)

// Name is the name of the library holding the Date type.
const Name = "Dates"

// DefaultFormat is the strftime format used for the string form of dates.
const DefaultFormat = "%Y-%m-%d %H:%M:%S %Z"

func init() {
	internal.Register(install)
}

// New creates a Date value.
func New(t *internal.Type, d time.Time) internal.Data {
	return internal.NewData(t, d)
}

// Parse parses text according to a strftime format. See
// https://godoc.org/github.com/variadico/lctime for the supported directives.
func Parse(s, format string) (time.Time, error) {
	ref := time.Date(2006, time.January, 2, 15, 4, 5, 0, time.FixedZone("MST", -7*60*60))
	return time.Parse(lctime.Strftime(format, ref), s)
}

type dates struct {
	x   *internal.Integral
	t   *internal.Type
	dur *internal.Type
}

func install(r *internal.Registry) error {
	dur, err := duration.Type(r)
	if err != nil {
		return err
	}
	x := r.Integral
	d := dates{
		x: x,
		t: internal.NewType("Date", "An instant in time.", time.Time{}, false, internal.TypeOps{
			String: func(d internal.Data) string {
				return lctime.Strftime(DefaultFormat, d.Value().(time.Time))
			},
			Parse: func(s string) (interface{}, error) {
				return Parse(s, DefaultFormat)
			},
			Equal: func(l, r interface{}) bool {
				return l.(time.Time).Equal(r.(time.Time))
			},
		}),
		dur: dur,
	}
	if err := d.build(); err != nil {
		return err
	}
	lib := internal.NewLibrary(Name, "Instants in time.")
	if err := lib.AddTypes(d.t); err != nil {
		return err
	}
	return r.AddLibrary(lib)
}

func (d dates) new(v time.Time) internal.Data {
	return New(d.t, v)
}

func this(args []internal.Data) time.Time {
	return args[0].Value().(time.Time)
}

// fn creates a const instance overload.
func fn(ret *internal.Type, body internal.Fn, params ...*internal.Parameter) *internal.Overload {
	return &internal.Overload{Params: params, ReturnType: ret, Const: true, Body: body}
}

func optional(name string, typ *internal.Type) *internal.Parameter {
	return &internal.Parameter{Name: name, Type: typ, Optional: true}
}

func (d dates) build() error {
	x, t := d.x, d.t
	var err error
	err = multierr.Append(err, t.AddConstructor(internal.NewOverload(d.construct, nil,
		internal.Param("year", x.Int), internal.Param("month", x.Int), internal.Param("day", x.Int),
		optional("hour", x.Int), optional("minute", x.Int), optional("second", x.Float),
	)))
	err = multierr.Append(err, t.AddConstructor(internal.NewOverload(func(vm *internal.VM, args []internal.Data) (internal.Data, error) {
		s := args[0].Value().(float64)
		if math.IsNaN(s) || math.IsInf(s, 0) {
			return internal.Data{}, internal.NewError(internal.OutOfBounds, "%v is not a valid time", s)
		}
		sec, frac := math.Modf(s)
		return d.new(time.Unix(int64(sec), int64(frac*1e9)).UTC()), nil
	}, nil, internal.Param("unix", x.Float))))
	err = multierr.Append(err, t.AddConstructor(internal.NewOverload(func(vm *internal.VM, args []internal.Data) (internal.Data, error) {
		v, err := Parse(args[0].Value().(string), args[1].Value().(string))
		if err != nil {
			return internal.Data{}, internal.WrapError(internal.InvalidLiteral, err, "%q does not match the format %q", args[0].Value(), args[1].Value())
		}
		return d.new(v), nil
	}, nil, internal.Param("text", x.String), internal.Param("format", x.String))))

	now := internal.NewFunction("Now", "Returns the current time.")
	err = multierr.Append(err, t.AddStaticFunction(now))
	err = multierr.Append(err, now.AddOverload(internal.NewOverload(func(vm *internal.VM, args []internal.Data) (internal.Data, error) {
		return d.new(time.Now()), nil
	}, t)))
	clock := internal.NewFunction("Clock", "Returns the seconds elapsed since the VM started.")
	err = multierr.Append(err, t.AddStaticFunction(clock))
	err = multierr.Append(err, clock.AddOverload(internal.NewOverload(func(vm *internal.VM, args []internal.Data) (internal.Data, error) {
		return vm.NewFloat(time.Since(vm.StartTime).Seconds()), nil
	}, x.Float)))

	err = multierr.Append(err, t.AddMember(d.field("Year", "The year.", func(v time.Time) int { return v.Year() },
		func(v time.Time, n int) time.Time { return v.AddDate(n-v.Year(), 0, 0) })))
	err = multierr.Append(err, t.AddMember(d.field("Month", "The month, from 1 to 12.", func(v time.Time) int { return int(v.Month()) },
		func(v time.Time, n int) time.Time { return v.AddDate(0, n-int(v.Month()), 0) })))
	err = multierr.Append(err, t.AddMember(d.field("Day", "The day of the month.", func(v time.Time) int { return v.Day() },
		func(v time.Time, n int) time.Time { return v.AddDate(0, 0, n-v.Day()) })))
	err = multierr.Append(err, t.AddMember(d.field("Hour", "The hour, from 0 to 23.", func(v time.Time) int { return v.Hour() },
		func(v time.Time, n int) time.Time { return v.Add(time.Duration(n-v.Hour()) * time.Hour) })))
	err = multierr.Append(err, t.AddMember(d.field("Minute", "The minute, from 0 to 59.", func(v time.Time) int { return v.Minute() },
		func(v time.Time, n int) time.Time { return v.Add(time.Duration(n-v.Minute()) * time.Minute) })))
	err = multierr.Append(err, t.AddMember(internal.NewInstanceMember("Second", "The second with its fraction.", x.Float,
		func(vm *internal.VM, self internal.Data) (internal.Data, error) {
			v := self.Value().(time.Time)
			return vm.NewFloat(float64(v.Second()) + float64(v.Nanosecond())/1e9), nil
		},
		func(vm *internal.VM, self internal.Data, value internal.Data) error {
			v := self.Value().(time.Time)
			v = v.Truncate(time.Minute).Add(time.Duration(value.Value().(float64) * float64(time.Second)))
			return t.Assign(self, d.new(v))
		},
	)))

	err = multierr.Append(err, t.Define(internal.NewFunction("Format", "Formats the date with strftime directives."),
		fn(x.String, func(vm *internal.VM, args []internal.Data) (internal.Data, error) {
			return vm.NewString(lctime.Strftime(args[1].Value().(string), this(args))), nil
		}, &internal.Parameter{Name: "format", Type: x.String, Optional: true, Default: internal.NewData(x.String, DefaultFormat)})))
	err = multierr.Append(err, t.Define(internal.NewFunction("Unix", "Returns the seconds since 1970-01-01 00:00:00 UTC."),
		fn(x.Float, func(vm *internal.VM, args []internal.Data) (internal.Data, error) {
			return vm.NewFloat(float64(this(args).UnixNano()) / 1e9), nil
		})))
	err = multierr.Append(err, t.Define(internal.NewFunction("UTC", "Returns the same instant in UTC."),
		fn(t, func(vm *internal.VM, args []internal.Data) (internal.Data, error) {
			return d.new(this(args).UTC()), nil
		})))
	err = multierr.Append(err, t.Define(internal.NewFunction("Local", "Returns the same instant in the local time zone."),
		fn(t, func(vm *internal.VM, args []internal.Data) (internal.Data, error) {
			return d.new(this(args).Local()), nil
		})))
	err = multierr.Append(err, t.Define(internal.NewFunction("In", "Returns the same instant in a named IANA time zone."),
		fn(t, func(vm *internal.VM, args []internal.Data) (internal.Data, error) {
			loc, err := time.LoadLocation(args[1].Value().(string))
			if err != nil {
				return internal.Data{}, internal.WrapError(internal.ParameterError, err, "unknown location %q", args[1].Value())
			}
			return d.new(this(args).In(loc)), nil
		}, internal.Param("location", x.String))))
	err = multierr.Append(err, t.Define(internal.NewFunction("Zone", "Returns the name of the date's time zone."),
		fn(x.String, func(vm *internal.VM, args []internal.Data) (internal.Data, error) {
			name, _ := this(args).Zone()
			return vm.NewString(name), nil
		})))
	err = multierr.Append(err, t.Define(internal.NewFunction("Offset", "Returns the offset of the date's time zone from UTC in seconds."),
		fn(x.Int, func(vm *internal.VM, args []internal.Data) (internal.Data, error) {
			_, off := this(args).Zone()
			return vm.NewInt(off), nil
		})))
	err = multierr.Append(err, t.Define(internal.NewFunction("IsDST", "Returns whether the date is in daylight savings time."),
		fn(x.Bool, func(vm *internal.VM, args []internal.Data) (internal.Data, error) {
			return vm.NewBool(this(args).IsDST()), nil
		})))
	err = multierr.Append(err, t.Define(internal.NewFunction("IsPast", "Returns whether the date is before the current time."),
		fn(x.Bool, func(vm *internal.VM, args []internal.Data) (internal.Data, error) {
			return vm.NewBool(this(args).Before(time.Now())), nil
		})))

	other := func(typ *internal.Type) *internal.Parameter {
		return &internal.Parameter{Name: "other", Type: typ, Constant: true}
	}
	err = multierr.Append(err, t.Define(internal.NewOperator("-", "Returns the time between two dates or the date some duration earlier."),
		fn(d.dur, func(vm *internal.VM, args []internal.Data) (internal.Data, error) {
			return duration.New(d.dur, this(args).Sub(args[1].Value().(time.Time))), nil
		}, other(t))))
	err = multierr.Append(err, t.Define(internal.NewOperator("-", ""),
		fn(t, func(vm *internal.VM, args []internal.Data) (internal.Data, error) {
			return d.new(this(args).Add(-args[1].Value().(time.Duration))), nil
		}, other(d.dur))))
	err = multierr.Append(err, t.Define(internal.NewOperator("+", "Returns the date some duration later."),
		fn(t, func(vm *internal.VM, args []internal.Data) (internal.Data, error) {
			return d.new(this(args).Add(args[1].Value().(time.Duration))), nil
		}, other(d.dur))))
	for _, c := range []struct {
		name string
		op   func(l, r time.Time) bool
	}{
		{"==", func(l, r time.Time) bool { return l.Equal(r) }},
		{"!=", func(l, r time.Time) bool { return !l.Equal(r) }},
		{"<", func(l, r time.Time) bool { return l.Before(r) }},
		{">", func(l, r time.Time) bool { return l.After(r) }},
	} {
		op := c.op
		err = multierr.Append(err, t.Define(internal.NewOperator(c.name, "The "+c.name+" operator."),
			fn(x.Bool, func(vm *internal.VM, args []internal.Data) (internal.Data, error) {
				return vm.NewBool(op(this(args), args[1].Value().(time.Time))), nil
			}, other(t))))
	}
	return err
}

// construct is a Date constructor.
//
// Date(year, month, day, [hour, minute, second]) creates a date in UTC.
// Components out of their usual ranges are normalized.
func (d dates) construct(vm *internal.VM, args []internal.Data) (internal.Data, error) {
	n := func(i int) int { return args[i].Value().(int) }
	sec, frac := math.Modf(args[5].Value().(float64))
	v := time.Date(n(0), time.Month(n(1)), n(2), n(3), n(4), int(sec), int(frac*1e9), time.UTC)
	return d.new(v), nil
}

// field creates a member reading and writing an integer component of a date.
func (d dates) field(name, help string, get func(time.Time) int, set func(time.Time, int) time.Time) *internal.InstanceMember {
	return internal.NewInstanceMember(name, help, d.x.Int,
		func(vm *internal.VM, self internal.Data) (internal.Data, error) {
			return vm.NewInt(get(self.Value().(time.Time))), nil
		},
		func(vm *internal.VM, self internal.Data, value internal.Data) error {
			return d.t.Assign(self, d.new(set(self.Value().(time.Time), value.Value().(int))))
		},
	)
}
