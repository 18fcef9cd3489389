package date_test

import (
	"testing"
	"time"

	"github.com/zephyrtronium/reflex/coreext/date"
	"github.com/zephyrtronium/reflex/coreext/duration"
	"github.com/zephyrtronium/reflex/internal"
	"github.com/zephyrtronium/reflex/testutils"
)

func TestRegister(t *testing.T) {
	testutils.CheckLibrary(t, date.Name, []string{"Date"})
}

func TestParse(t *testing.T) {
	cases := map[string]struct {
		text   string
		format string
		want   time.Time
	}{
		"Default": {"2019-08-14 03:04:05 UTC", date.DefaultFormat, time.Date(2019, 8, 14, 3, 4, 5, 0, time.UTC)},
		"DayOnly": {"14/08/2019", "%d/%m/%Y", time.Date(2019, 8, 14, 0, 0, 0, 0, time.UTC)},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := date.Parse(c.text, c.format)
			if err != nil {
				t.Fatal(err)
			}
			if !got.Equal(c.want) {
				t.Errorf("wrong time: want %v, got %v", c.want, got)
			}
		})
	}
}

func dateType(t *testing.T) (*internal.Type, *internal.Type) {
	t.Helper()
	r := testutils.TestingRegistry()
	m, err := r.Lookup("Date")
	if err != nil {
		t.Fatal(err)
	}
	dur, err := duration.Type(r)
	if err != nil {
		t.Fatal(err)
	}
	return m.(*internal.Type), dur
}

func TestDates(t *testing.T) {
	typ, dur := dateType(t)
	x := testutils.TestingRegistry().Integral
	when := time.Date(2019, 8, 14, 3, 4, 5, 0, time.UTC)
	d := func(v time.Time) internal.Data { return date.New(typ, v) }
	i := func(v int) internal.Data { return internal.NewData(x.Int, v) }
	f := func(v float64) internal.Data { return internal.NewData(x.Float, v) }
	s := func(v string) internal.Data { return internal.NewData(x.String, v) }
	lit := testutils.Lit
	tmp := testutils.Temp
	cases := map[string]testutils.ProgramTestCase{
		"Components": {
			Program: []*internal.Instruction{
				testutils.Call("Date", 1, lit(i(2019)), lit(i(8)), lit(i(14)), lit(i(3)), lit(i(4)), lit(f(5))),
				testutils.Return(tmp(1)),
			},
			Pass: testutils.PassEqual(d(when)),
		},
		"DayOnly": {
			Program: []*internal.Instruction{
				testutils.Call("Date", 1, lit(i(2019)), lit(i(8)), lit(i(14))),
				testutils.Return(tmp(1)),
			},
			Pass: testutils.PassEqual(d(time.Date(2019, 8, 14, 0, 0, 0, 0, time.UTC))),
		},
		"Unix": {
			Program: []*internal.Instruction{
				testutils.Call("Date", 1, lit(f(float64(when.Unix())))),
				testutils.Return(tmp(1)),
			},
			Pass: testutils.PassEqual(d(when)),
		},
		"FromText": {
			Program: []*internal.Instruction{
				testutils.Call("Date", 1, lit(s("2019-08-14")), lit(s("%Y-%m-%d"))),
				testutils.Return(tmp(1)),
			},
			Pass: testutils.PassEqual(d(time.Date(2019, 8, 14, 0, 0, 0, 0, time.UTC))),
		},
		"BadText": {
			Program: []*internal.Instruction{
				testutils.Call("Date", 1, lit(s("yesterday")), lit(s("%Y-%m-%d"))),
			},
			Pass: testutils.PassFailure(internal.InvalidLiteral),
		},
		"Now": {
			Program: []*internal.Instruction{
				testutils.Call("Date:Now", 1),
				testutils.Return(tmp(1)),
			},
			Pass: testutils.PassType(typ),
		},
		"Clock": {
			Program: []*internal.Instruction{
				testutils.Call("Date:Clock", 1),
				testutils.Return(tmp(1)),
			},
			Pass: testutils.PassType(x.Float),
		},
		"Month": {
			Program: []*internal.Instruction{
				testutils.Get(lit(d(when)), "Month", 1),
				testutils.Return(tmp(1)),
			},
			Pass: testutils.PassEqual(i(8)),
		},
		"SetYear": {
			Program: []*internal.Instruction{
				testutils.Set("d", lit(d(when))),
				testutils.SetMember(testutils.Var("d"), "Year", lit(i(2020))),
				testutils.Return(testutils.Var("d")),
			},
			Pass: testutils.PassEqual(d(when.AddDate(1, 0, 0))),
		},
		"SetSecond": {
			Program: []*internal.Instruction{
				testutils.Set("d", lit(d(when))),
				testutils.SetMember(testutils.Var("d"), "Second", lit(f(30.5))),
				testutils.Return(testutils.Var("d")),
			},
			Pass: testutils.PassEqual(d(time.Date(2019, 8, 14, 3, 4, 30, 5e8, time.UTC))),
		},
		"Format": {
			Program: []*internal.Instruction{
				testutils.MemberCall("Format", 1, lit(d(when)), lit(s("%d.%m.%Y"))),
				testutils.Return(tmp(1)),
			},
			Pass: testutils.PassEqual(s("14.08.2019")),
		},
		"Difference": {
			Program: []*internal.Instruction{
				testutils.MemberCall("-", 1, lit(d(when.Add(time.Hour))), lit(d(when))),
				testutils.Return(tmp(1)),
			},
			Pass: testutils.PassEqual(duration.New(dur, time.Hour)),
		},
		"AddDuration": {
			Program: []*internal.Instruction{
				testutils.MemberCall("+", 1, lit(d(when)), lit(duration.New(dur, time.Minute))),
				testutils.Return(tmp(1)),
			},
			Pass: testutils.PassEqual(d(when.Add(time.Minute))),
		},
		"SubtractDuration": {
			Program: []*internal.Instruction{
				testutils.MemberCall("-", 1, lit(d(when)), lit(duration.New(dur, time.Minute))),
				testutils.Return(tmp(1)),
			},
			Pass: testutils.PassEqual(d(when.Add(-time.Minute))),
		},
		"Before": {
			Program: []*internal.Instruction{
				testutils.MemberCall("<", 1, lit(d(when)), lit(d(when.Add(time.Second)))),
				testutils.Return(tmp(1)),
			},
			Pass: testutils.PassEqual(internal.NewData(x.Bool, true)),
		},
		"IsPast": {
			Program: []*internal.Instruction{
				testutils.MemberCall("IsPast", 1, lit(d(when))),
				testutils.Return(tmp(1)),
			},
			Pass: testutils.PassEqual(internal.NewData(x.Bool, true)),
		},
		"UnknownZone": {
			Program: []*internal.Instruction{
				testutils.MemberCall("In", 1, lit(d(when)), lit(s("Nowhere/Special"))),
			},
			Pass: testutils.PassFailure(internal.ParameterError),
		},
	}
	for name, c := range cases {
		t.Run(name, c.TestFunc(name))
	}
}

func TestDateString(t *testing.T) {
	typ, _ := dateType(t)
	v := date.New(typ, time.Date(2019, 8, 14, 3, 4, 5, 0, time.UTC))
	if got := v.String(); got != "2019-08-14 03:04:05 UTC" {
		t.Errorf("wrong string: %q", got)
	}
}
