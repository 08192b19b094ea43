package dtcalc

import (
	"io"
	"math/big"
	"strconv"
	"strings"
	"time"
)

// Context is a context for evaluating expressions. It is not safe to use a
// Context concurrently, but a single parsed expression may be evaluated by
// any number of contexts at once.
type Context struct {
	stack []Value
	nums  map[string]*big.Float
	times map[string]time.Time
	names map[string]time.Time
	prec  uint
	err   error
}

// ContextOption is an option used when creating a context.
type ContextOption interface {
	ctxOption()
}

type (
	varopt struct {
		name string
		val  time.Time
	}
	varsopt map[string]time.Time
	precopt uint
)

func (varopt) ctxOption()  {}
func (varsopt) ctxOption() {}
func (precopt) ctxOption() {}

// SetVar binds an identifier to an instant in the context.
func SetVar(name string, val time.Time) ContextOption {
	return varopt{name, val}
}

// SetVars binds any number of identifiers to instants in the context.
func SetVars(vars map[string]time.Time) ContextOption {
	return varsopt(vars)
}

// Prec sets the precision of calculations.
func Prec(prec uint) ContextOption {
	return precopt(prec)
}

// NewContext creates a new evaluation context. If no precision is given, the
// default is 64.
func NewContext(opts ...ContextOption) *Context {
	ctx := Context{
		nums:  make(map[string]*big.Float),
		times: make(map[string]time.Time),
		prec:  64,
	}
	return ctx.Clone(opts...)
}

// Eval evaluates an expression and returns the result. If an error occurs,
// e.g. a missing identifier binding or a dimensionally invalid operation,
// then the result is nil and ctx.Err returns the error.
func (ctx *Context) Eval(e *Expr) *Value {
	switch len(ctx.stack) {
	case 0: // do nothing
	case 1:
		ctx.stack[0] = Value{}
		ctx.stack = ctx.stack[:0]
	default:
		panic("dtcalc: Eval during Eval")
	}
	err := e.n.eval(ctx)
	ctx.err = err
	if err != nil {
		ctx.stack = ctx.stack[:0]
		return nil
	}
	return ctx.Result()
}

// Result returns the result obtained after evaluating an expression. Panics
// if ctx has not been used to evaluate an expression. Returns nil if an
// error occurred during evaluation.
func (ctx *Context) Result() *Value {
	if ctx.err != nil {
		return nil
	}
	switch len(ctx.stack) {
	case 0:
		panic("dtcalc: Context.Result called before evaluating any expression")
	case 1:
		v := ctx.stack[0]
		return &v
	default:
		panic("dtcalc: inconsistent stack: " + strconv.Itoa(len(ctx.stack)) + " items (bad AST?)")
	}
}

// Err returns the first error that occurred while evaluating an expression
// with ctx, if any.
func (ctx *Context) Err() error {
	return ctx.err
}

// Set binds an identifier to an instant. Returns ctx for chaining. Calling
// Set while the context is being used to evaluate an expression panics.
func (ctx *Context) Set(name string, value time.Time) *Context {
	if len(ctx.stack) > 1 {
		panic("dtcalc: Set on in-use context")
	}
	if ctx.names == nil {
		ctx.names = make(map[string]time.Time)
	}
	ctx.names[name] = value
	return ctx
}

// Lookup returns the instant bound to an identifier. The second result is
// false if there is no such binding in the context.
func (ctx *Context) Lookup(name string) (time.Time, bool) {
	v, ok := ctx.names[name]
	return v, ok
}

// Prec returns the precision to which values are computed in the context.
func (ctx *Context) Prec() uint {
	return ctx.prec
}

// Clone creates a copy of a context and applies options to it. The returned
// context has no Result and is safe to use to evaluate an expression.
func (ctx *Context) Clone(opts ...ContextOption) *Context {
	n := Context{
		stack: make([]Value, 0, cap(ctx.stack)),
		nums:  make(map[string]*big.Float, len(ctx.nums)),
		times: make(map[string]time.Time, len(ctx.times)),
		names: make(map[string]time.Time, len(ctx.names)),
		prec:  ctx.prec,
	}
	// First, check for a precision setting. Loop backward so we apply the last
	// precision.
	for i := len(opts) - 1; i >= 0; i-- {
		if p, ok := opts[i].(precopt); ok {
			n.prec = uint(p)
			break
		}
	}
	// Copy cached magnitudes only if the new precision is no higher than the
	// old, so that we always use the precision we need. Timestamps and
	// bindings are exact, so they always copy.
	if n.prec <= ctx.prec {
		for k, v := range ctx.nums {
			n.nums[k] = new(big.Float).SetPrec(n.prec).Set(v)
		}
	}
	for k, v := range ctx.times {
		n.times[k] = v
	}
	for name, val := range ctx.names {
		n.names[name] = val
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		switch opt := opt.(type) {
		case varopt:
			n.names[opt.name] = opt.val
		case varsopt:
			for k, v := range opt {
				n.names[k] = v
			}
		case precopt:
			// Already done. Do nothing.
		default:
			panic("dtcalc: unknown option type")
		}
	}
	return &n
}

// push ensures a settable value on the stack.
func (ctx *Context) push() *Value {
	if len(ctx.stack) < cap(ctx.stack) {
		ctx.stack = ctx.stack[:len(ctx.stack)+1]
	} else {
		ctx.stack = append(ctx.stack, Value{})
	}
	v := &ctx.stack[len(ctx.stack)-1]
	if v.f == nil {
		v.f = new(big.Float).SetPrec(ctx.prec)
	}
	return v
}

// pop removes the top from the stack and returns it. The returned value may
// be modified by future node evaluations.
func (ctx *Context) pop() Value {
	v := ctx.stack[len(ctx.stack)-1]
	ctx.stack = ctx.stack[:len(ctx.stack)-1]
	return v
}

// top is a shortcut to get the top element of the stack.
func (ctx *Context) top() *Value {
	return &ctx.stack[len(ctx.stack)-1]
}

// num gets a possibly cached number literal magnitude from its text.
func (ctx *Context) num(s string) *big.Float {
	if r := ctx.nums[s]; r != nil {
		return r
	}
	r, _, err := new(big.Float).SetPrec(ctx.prec).Parse(s, 10)
	if err != nil {
		panic("dtcalc: invalid number: " + s + " (" + err.Error() + ")")
	}
	ctx.nums[s] = r
	return r
}

// dur gets a possibly cached duration literal magnitude, in seconds, from
// its text.
func (ctx *Context) dur(s string) *big.Float {
	if r := ctx.nums[s]; r != nil {
		return r
	}
	r, _, err := new(big.Float).SetPrec(ctx.prec).Parse(s[:len(s)-1], 10)
	if err != nil {
		panic("dtcalc: invalid duration: " + s + " (" + err.Error() + ")")
	}
	r.Mul(r, new(big.Float).SetInt64(unitSeconds[s[len(s)-1]]))
	ctx.nums[s] = r
	return r
}

// instant gets a possibly cached timestamp literal from its text.
func (ctx *Context) instant(s string) time.Time {
	if t, ok := ctx.times[s]; ok {
		return t
	}
	t, err := parseTime(s)
	if err != nil {
		panic("dtcalc: invalid timestamp: " + s + " (" + err.Error() + ")")
	}
	ctx.times[s] = t
	return t
}

// eval pushes the node's value to the context's stack.
func (n *node) eval(ctx *Context) error {
	switch n.kind {
	case nodeNum:
		v := ctx.push()
		v.dim = Number
		v.f.Set(ctx.num(n.name))
	case nodeDur:
		v := ctx.push()
		v.dim = Duration
		v.f.Set(ctx.dur(n.name))
	case nodeTime:
		v := ctx.push()
		v.dim = Instant
		v.t = ctx.instant(n.name)
	case nodeName:
		t, ok := ctx.names[n.name]
		if !ok {
			// "now" is reserved: with no explicit binding it resolves to
			// the wall clock at the moment of evaluation.
			if n.name != "now" {
				return &NameError{Name: n.name}
			}
			t = time.Now().UTC()
		}
		v := ctx.push()
		v.dim = Instant
		v.t = t
	case nodeNeg:
		if err := n.left.eval(ctx); err != nil {
			return err
		}
		v := ctx.top()
		if v.dim == Instant {
			return &DimensionError{Op: "-", Left: Instant, Unary: true}
		}
		v.f.Neg(v.f)
	case nodeNop:
		if err := n.left.eval(ctx); err != nil {
			return err
		}
		if v := ctx.top(); v.dim == Instant {
			return &DimensionError{Op: "+", Left: Instant, Unary: true}
		}
	case nodeAdd, nodeSub, nodeMul, nodeDiv:
		if err := n.left.eval(ctx); err != nil {
			return err
		}
		if err := n.right.eval(ctx); err != nil {
			return err
		}
		r := ctx.pop()
		l := ctx.top()
		dim, ok := binDims[opKey{n.kind, l.dim, r.dim}]
		if !ok {
			return &DimensionError{Op: opText(n.kind), Left: l.dim, Right: r.dim}
		}
		if err := binApply(n.kind, l, r); err != nil {
			return err
		}
		l.dim = dim
	default:
		panic("dtcalc: invalid AST node " + n.kind.String())
	}
	return nil
}

// binApply performs a binary operation already vetted against the dimension
// table, leaving the result in l. The result dimension is set by the caller.
func binApply(kind nodeKind, l *Value, r Value) error {
	switch kind {
	case nodeAdd:
		switch {
		case l.dim == Instant:
			t, ok := addSeconds(l.t, r.f)
			if !ok {
				return &RangeError{Op: opText(kind)}
			}
			l.t = t
		case r.dim == Instant:
			t, ok := addSeconds(r.t, l.f)
			if !ok {
				return &RangeError{Op: opText(kind)}
			}
			l.t = t
		default:
			l.f.Add(l.f, r.f)
		}
	case nodeSub:
		switch {
		case l.dim == Instant && r.dim == Instant:
			subInstants(l.f, l.t, r.t)
		case l.dim == Instant:
			t, ok := addSeconds(l.t, r.f.Neg(r.f))
			if !ok {
				return &RangeError{Op: opText(kind)}
			}
			l.t = t
		default:
			l.f.Sub(l.f, r.f)
		}
	case nodeMul:
		l.f.Mul(l.f, r.f)
	case nodeDiv:
		if r.f.Sign() == 0 {
			return &DomainError{Op: "/"}
		}
		l.f.Quo(l.f, r.f)
	default:
		panic("dtcalc: binApply on " + kind.String())
	}
	return nil
}

// Eval evaluates the expression in ctx. It is equivalent to ctx.Eval(e).
func (e *Expr) Eval(ctx *Context) *Value {
	return ctx.Eval(e)
}

// Eval is a shortcut to parse an expression and return its result.
func Eval(src io.RuneScanner, opts ...ContextOption) (*Value, error) {
	ctx := NewContext(opts...)
	a, err := Parse(src)
	if err != nil {
		return nil, err
	}
	ctx.Eval(a)
	return ctx.Result(), ctx.Err()
}

// EvalString is a shortcut to parse and evaluate a string expression.
func EvalString(src string, opts ...ContextOption) (*Value, error) {
	return Eval(strings.NewReader(src), opts...)
}

// NameError is an error from a lookup for an identifier that is missing from
// the evaluation context.
type NameError struct {
	// Name is the name that was missing.
	Name string
}

func (err *NameError) Error() string {
	return "undefined identifier: " + strconv.Quote(err.Name)
}

// DimensionError is an error from applying an operator to operands of
// incompatible dimensions, e.g. adding two instants.
type DimensionError struct {
	// Op is the operator that was applied.
	Op string
	// Left and Right are the operand dimensions. Right is unset when the
	// operator was unary.
	Left, Right Dim
	// Unary is whether the operator was applied as a prefix.
	Unary bool
}

func (err *DimensionError) Error() string {
	if err.Unary {
		return "operator " + err.Op + " undefined for " + err.Left.String()
	}
	return "operator " + err.Op + " undefined for " + err.Left.String() + " and " + err.Right.String()
}

// RangeError is an error from shifting an instant by a duration too large
// to represent.
type RangeError struct {
	// Op is the operator whose result was out of range.
	Op string
}

func (err *RangeError) Error() string {
	return "operator " + err.Op + ": result out of range"
}

// DomainError is an error from a division by a zero magnitude.
type DomainError struct {
	// Op is the operator whose operand was outside its domain.
	Op string
}

func (err *DomainError) Error() string {
	return "operator " + err.Op + ": division by zero"
}
