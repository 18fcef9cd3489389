package internal

import (
	"strconv"
	"strings"
)

// Argument is a call-site argument. Arguments read from variables and
// identifiers carry the name they were read from, so that they can bind to
// variable parameters.
type Argument struct {
	Data Data
	// Name is the variable or identifier the argument was read from, if any.
	Name string
	// Unbound is true when Name did not resolve to any symbol. Data is then
	// invalid.
	Unbound bool
}

// Args makes a list of arguments from values.
func Args(ds ...Data) []Argument {
	r := make([]Argument, len(ds))
	for i, d := range ds {
		r[i] = Argument{Data: d}
	}
	return r
}

// Score penalties used by the overload resolver.
const (
	scoreUpcast      = 2
	scoreDowncast    = 3
	scoreTypeCast    = 10
	scoreMismatch    = 1
	scoreRepeat      = 5
	scoreFallbackSet = 1 << 20
)

// candidate is an overload accepted by the resolver with its score.
type candidate struct {
	o      *Overload
	score  int
	method bool
}

// Resolve chooses the overload of f to call with args. isMethod selects
// whether the call is a statement, which prefers f's methods, or an
// expression, which prefers its overloads; the other set is considered only
// when nothing in the preferred set matches as well. The second result reports
// whether the chosen overload is a method.
//
// Resolve neither converts nor retains its arguments, and it chooses the same
// overload given the same argument shapes.
func Resolve(f *Function, args []Argument, isMethod bool) (*Overload, bool, error) {
	prefer, fallback := f.overloads, f.methods
	if isMethod {
		prefer, fallback = fallback, prefer
	}
	switch {
	case len(prefer) == 1:
		return prefer[0], isMethod, nil
	case len(prefer) == 0 && len(fallback) == 1:
		return fallback[0], !isMethod, nil
	case len(prefer) == 0 && len(fallback) == 0:
		return nil, false, NewError(SymbolNotFound, "%v has no overloads", f)
	}

	var best []candidate
	consider := func(set []*Overload, offset int, method bool) {
		for _, o := range set {
			score, ok := ScoreOverload(o, args)
			if !ok {
				continue
			}
			score += offset
			if f.IsOperator && f.owner != nil && len(o.Params) == 1 && o.Params[0].Type == f.owner {
				score--
			}
			switch {
			case len(best) == 0 || score < best[0].score:
				best = append(best[:0], candidate{o, score, method})
			case score == best[0].score:
				best = append(best, candidate{o, score, method})
			}
		}
	}
	consider(prefer, 0, isMethod)
	consider(fallback, scoreFallbackSet, !isMethod)

	switch len(best) {
	case 0:
		return nil, false, noMatch(f, args)
	case 1:
		return best[0].o, best[0].method, nil
	default:
		return nil, false, NewError(AmbiguousSymbol, "call to %v with %s is ambiguous between %v and %v", f, argTypes(args), best[0].o, best[1].o)
	}
}

// noMatch creates the error for a call which no overload accepts. Undefined
// names are reported in preference to type mismatches.
func noMatch(f *Function, args []Argument) error {
	for _, a := range args {
		if a.Unbound {
			return NewError(SymbolNotFound, "%s is not defined", a.Name)
		}
	}
	return NewError(ParameterError, "no overload of %v accepts %s", f, argTypes(args))
}

// argTypes formats the types of a list of arguments.
func argTypes(args []Argument) string {
	if len(args) == 0 {
		return "no arguments"
	}
	var b strings.Builder
	b.WriteByte('(')
	for i, a := range args {
		if i > 0 {
			b.WriteString(", ")
		}
		switch {
		case a.Unbound:
			b.WriteString(a.Name)
		case !a.Data.IsValid():
			b.WriteString("invalid")
		default:
			d := unwrapVariant(a.Data)
			if d.isConst {
				b.WriteString("const ")
			}
			b.WriteString(d.typ.Name())
			if d.isRef && !d.typ.isRef {
				b.WriteString(" ref")
			}
		}
	}
	b.WriteByte(')')
	return b.String()
}

// ScoreOverload scores a call of o with args. Lower scores are better matches.
// The second result is false if o cannot accept args at all. For instance
// functions, args begins with the object.
func ScoreOverload(o *Overload, args []Argument) (int, bool) {
	total := 0
	if o.Parent != nil && o.Parent.IsInstance() {
		if len(args) == 0 {
			return 0, false
		}
		s, ok := scoreParam(o.Parent.thisParam(o), args[0])
		if !ok {
			return 0, false
		}
		total += s
		args = args[1:]
	}
	n := len(o.Params)
	for i, p := range o.Params {
		if i >= len(args) {
			if !p.Optional {
				return 0, false
			}
			continue
		}
		s, ok := scoreParam(p, args[i])
		if !ok {
			return 0, false
		}
		total += s
	}
	if len(args) > n {
		if !o.RepeatLast {
			return 0, false
		}
		last := o.Params[n-1]
		for _, a := range args[n:] {
			s, ok := scoreParam(last, a)
			if !ok {
				return 0, false
			}
			total += scoreRepeat + s
		}
	}
	return total, true
}

// scoreParam scores binding a single argument to a parameter.
func scoreParam(p *Parameter, a Argument) (int, bool) {
	if p.Variable {
		return 0, a.Name != ""
	}
	if a.Unbound || !a.Data.IsValid() {
		return 0, false
	}
	d := unwrapVariant(a.Data)
	if d.IsNull() && !p.AllowNull {
		return 0, false
	}
	score := 0
	identical := false
	switch d.typ.CanMorphTo(p.Type) {
	case Identical:
		identical = true
	case UpCasting:
		score = scoreUpcast
	case DownCasting:
		if !d.isRef {
			return 0, false
		}
		score = scoreDowncast
	case TypeCasting:
		score = scoreTypeCast
	default:
		return 0, false
	}
	if identical && len(p.Options) > 0 && !matchesOption(p, d) {
		return 0, false
	}

	// Conversions of value types produce new values, and conversions of
	// reference types produce references to the same object.
	isRef := p.Type.isRef || p.Type.isAny && d.isRef || identical && d.isRef
	if p.Reference {
		switch {
		case !isRef && !p.Constant:
			return 0, false
		case !isRef:
			score += scoreMismatch
		case d.isConst && !p.Constant:
			return 0, false
		case !d.isConst && p.Constant:
			score += scoreMismatch
		}
	} else if isRef && !p.Type.isRef && !p.Type.isAny {
		score += scoreMismatch
	}
	return score, true
}

// matchesOption returns whether d is one of p's options.
func matchesOption(p *Parameter, d Data) bool {
	for _, opt := range p.Options {
		if ls, ok := opt.Value().(string); ok {
			if rs, ok := d.Value().(string); ok && strings.EqualFold(ls, rs) {
				return true
			}
			continue
		}
		if p.Type.Compare(opt, d) {
			return true
		}
	}
	return false
}

// Bind converts args to the parameters of o, producing the argument list for
// its body. Missing optional arguments receive their defaults. Bind reports
// precisely why an argument cannot bind.
func Bind(vm *VM, o *Overload, args []Argument) ([]Data, error) {
	r := make([]Data, 0, len(o.Params)+1)
	if o.Parent != nil && o.Parent.IsInstance() {
		if len(args) == 0 {
			return nil, NewError(MissingParameter, "%v needs an object to call on", o.Parent)
		}
		d, err := bindParam(vm, o.Parent.thisParam(o), args[0])
		if err != nil {
			return nil, err
		}
		r = append(r, d)
		args = args[1:]
	}
	n := len(o.Params)
	if len(args) > n && !o.RepeatLast {
		return nil, NewError(TooManyParameters, "%v takes %d arguments, not %d", o, n, len(args))
	}
	for i, p := range o.Params {
		if i >= len(args) {
			if !p.Optional {
				return nil, NewError(MissingParameter, "%v is missing parameter %s", o, paramName(p, i))
			}
			if o.RepeatLast && i == n-1 {
				break
			}
			if p.Default.IsValid() {
				r = append(r, p.Default)
			} else {
				r = append(r, p.Type.DefaultValue())
			}
			continue
		}
		d, err := bindParam(vm, p, args[i])
		if err != nil {
			return nil, err
		}
		r = append(r, d)
	}
	if len(args) > n {
		last := o.Params[n-1]
		for _, a := range args[n:] {
			d, err := bindParam(vm, last, a)
			if err != nil {
				return nil, err
			}
			r = append(r, d)
		}
	}
	return r, nil
}

// paramName names a parameter for error messages.
func paramName(p *Parameter, i int) string {
	if p.Name != "" {
		return p.Name
	}
	return "#" + strconv.Itoa(i+1)
}

// bindParam converts a single argument for a parameter.
func bindParam(vm *VM, p *Parameter, a Argument) (Data, error) {
	if p.Variable {
		if a.Name == "" {
			return Data{}, NewError(ParameterError, "parameter %s needs a name, not a value", p.Name)
		}
		return NewData(vm.Registry.Integral.String, a.Name), nil
	}
	if a.Unbound {
		return Data{}, NewError(SymbolNotFound, "%s is not defined", a.Name)
	}
	if !a.Data.IsValid() {
		return Data{}, NewError(ParameterError, "parameter %s received no value", p.Name)
	}
	d := unwrapVariant(a.Data)
	if d.IsNull() && !p.AllowNull {
		return Data{}, NewError(NullValue, "parameter %s cannot be null", p.Name)
	}
	if p.Type.isAny {
		if !p.Reference {
			d = d.DeReference()
		} else if !d.isRef {
			if !p.Constant {
				return Data{}, NewError(ParameterError, "parameter %s requires a reference", p.Name)
			}
			d = d.MakeReference()
		}
		if p.Constant {
			d = d.MakeConstant()
		}
		return d, nil
	}
	wasConst := d.isConst
	if d.typ != p.Type {
		var err error
		d, err = Morph(vm, d, p.Type, true)
		if err != nil {
			return Data{}, err
		}
		// Morphing a value type loses the reference, but the result still
		// carries the argument's constness.
		if wasConst {
			d = d.MakeConstant()
		}
	} else if len(p.Options) > 0 && !matchesOption(p, d) {
		return Data{}, NewError(ParameterError, "%v is not a valid value for parameter %s", d, p.Name)
	}
	if p.Reference {
		switch {
		case !d.isRef && !p.Constant:
			return Data{}, NewError(ParameterError, "parameter %s requires a reference", p.Name)
		case !d.isRef:
			d = d.MakeReference()
		case wasConst && !p.Constant:
			return Data{}, NewError(ConstantViolation, "cannot pass a constant %s to parameter %s", d.typ.Name(), p.Name)
		}
	} else {
		d = d.DeReference()
	}
	if p.Constant {
		d = d.MakeConstant()
	}
	return d, nil
}

// Call resolves, binds, and calls f with args.
func Call(vm *VM, f *Function, args []Argument, isMethod bool) (Data, error) {
	o, method, err := Resolve(f, args, isMethod)
	if err != nil {
		return Data{}, err
	}
	bound, err := Bind(vm, o, args)
	if err != nil {
		return Data{}, err
	}
	return o.Call(vm, method, bound)
}

// Construct creates a value of t by calling the constructor overload which
// best matches args. Constructing from no arguments yields the type's default
// value unless some constructor accepts no arguments.
func (t *Type) Construct(vm *VM, args []Argument) (Data, error) {
	set := t.constructor.overloads
	if len(args) == 0 && !acceptsNone(set) {
		return t.defaultValue, nil
	}
	if len(set) == 0 {
		return Data{}, NewError(SymbolNotFound, "%s has no constructors", t.name)
	}
	var o *Overload
	if len(set) == 1 {
		o = set[0]
	} else {
		var best []*Overload
		bestScore := 0
		for _, c := range set {
			score, ok := ScoreOverload(c, args)
			if !ok {
				continue
			}
			switch {
			case len(best) == 0 || score < bestScore:
				best, bestScore = append(best[:0], c), score
			case score == bestScore:
				best = append(best, c)
			}
		}
		switch {
		case len(best) == 0:
			return Data{}, noMatch(t.constructor, args)
		case len(best) > 1 && bestScore == 0:
			return Data{}, NewError(AmbiguousSymbol, "construction of %s with %s is ambiguous between %v and %v", t.name, argTypes(args), best[0], best[1])
		case len(best) > 1:
			return Data{}, NewError(SymbolNotFound, "no matching constructor for %s with %s", t.name, argTypes(args))
		}
		o = best[0]
	}
	bound, err := Bind(vm, o, args)
	if err != nil {
		return Data{}, err
	}
	return o.Call(vm, false, bound)
}

// acceptsNone returns whether any overload in set can be called with no
// arguments.
func acceptsNone(set []*Overload) bool {
	for _, o := range set {
		if _, ok := ScoreOverload(o, nil); ok {
			return true
		}
	}
	return false
}
