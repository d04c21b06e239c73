package eval

import (
	"fmt"
	"sync"

	"src.crush.sh/pkg/eval/errs"
	"src.crush.sh/pkg/eval/scope"
	"src.crush.sh/pkg/eval/vals"
)

// Context carries everything a command invocation may access: its
// arguments, the receiver it is bound to, its input and output and the scope
// it runs in.
type Context struct {
	Arguments Arguments
	// The receiver. It is nil when the command is not invoked as a method.
	This   any
	Input  <-chan any
	Output Output
	Scope  *scope.Scope
}

// NewContext returns a Context with the given arguments and output, no
// receiver and a closed input.
func NewContext(sc *scope.Scope, args Arguments, out Output) *Context {
	return &Context{Arguments: args, Input: ClosedChan, Output: out, Scope: sc}
}

// ThisDict returns the receiver as a dict.
func (ctx *Context) ThisDict() (*vals.Dict, error) {
	if d, ok := ctx.This.(*vals.Dict); ok {
		return d, nil
	}
	return nil, errs.BadValue{What: "this", Valid: "dict", Actual: thisKind(ctx.This)}
}

// ThisType returns the receiver as a type.
func (ctx *Context) ThisType() (vals.Type, error) {
	if t, ok := ctx.This.(vals.Type); ok {
		return t, nil
	}
	return vals.Type{}, errs.BadValue{What: "this", Valid: "type", Actual: thisKind(ctx.This)}
}

func thisKind(v any) string {
	if v == nil {
		return "absent"
	}
	return vals.TypeOf(v).String()
}

// Argument is one argument of an invocation. Name is empty for positional
// arguments.
type Argument struct {
	Name  string
	Value any
}

// Arguments is the ordered argument list of an invocation.
type Arguments []Argument

// Positional builds an argument list from positional values.
func Positional(vs ...any) Arguments {
	args := make(Arguments, len(vs))
	for i, v := range vs {
		args[i] = Argument{Value: v}
	}
	return args
}

// CheckLen returns an arity error unless there are exactly n arguments.
func (a Arguments) CheckLen(n int) error {
	if len(a) != n {
		return errs.ArityMismatch{What: "arguments", ValidLow: n, ValidHigh: n, Actual: len(a)}
	}
	return nil
}

// Value returns the i-th argument.
func (a Arguments) Value(i int) (any, error) {
	if i < 0 || i >= len(a) {
		return nil, errs.ArityMismatch{What: "arguments", ValidLow: i + 1, ValidHigh: -1, Actual: len(a)}
	}
	return a[i].Value, nil
}

// Type returns the i-th argument, which must be a type.
func (a Arguments) Type(i int) (vals.Type, error) {
	v, err := a.Value(i)
	if err != nil {
		return vals.Type{}, err
	}
	t, ok := v.(vals.Type)
	if !ok {
		return vals.Type{}, badArg(i, "type", v)
	}
	return t, nil
}

// String returns the i-th argument, which must be a string.
func (a Arguments) String(i int) (string, error) {
	v, err := a.Value(i)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", badArg(i, "string", v)
	}
	return s, nil
}

// Integer returns the i-th argument, which must be an integer.
func (a Arguments) Integer(i int) (int, error) {
	v, err := a.Value(i)
	if err != nil {
		return 0, err
	}
	n, ok := v.(int)
	if !ok {
		return 0, badArg(i, "integer", v)
	}
	return n, nil
}

// Bool returns the i-th argument, which must be a bool.
func (a Arguments) Bool(i int) (bool, error) {
	v, err := a.Value(i)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, badArg(i, "bool", v)
	}
	return b, nil
}

// Command returns the i-th argument, which must be a command.
func (a Arguments) Command(i int) (Command, error) {
	v, err := a.Value(i)
	if err != nil {
		return nil, err
	}
	c, ok := v.(Command)
	if !ok {
		return nil, badArg(i, "command", v)
	}
	return c, nil
}

func badArg(i int, want string, v any) error {
	return errs.BadValue{
		What: fmt.Sprintf("argument %d", i+1), Valid: want, Actual: vals.TypeOf(v).String()}
}

// Output receives the values a command produces.
type Output interface {
	Send(v any) error
}

// ChanOutput is an Output writing to a channel.
type ChanOutput chan<- any

// Send writes v to the channel.
func (ch ChanOutput) Send(v any) error {
	ch <- v
	return nil
}

// BlackholeOutput is an Output that discards all values.
var BlackholeOutput Output = blackhole{}

type blackhole struct{}

func (blackhole) Send(any) error { return nil }

// ClosedChan is a closed channel, suitable as an empty input.
var ClosedChan = getClosedChan()

func getClosedChan() chan any {
	ch := make(chan any)
	close(ch)
	return ch
}

type captureOutput struct {
	mu sync.Mutex
	vs []any
}

func (c *captureOutput) Send(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vs = append(c.vs, v)
	return nil
}

// CaptureOutput calls f with an Output that collects every value sent to it,
// and returns the collected values together with the error returned by f.
func CaptureOutput(f func(Output) error) ([]any, error) {
	c := &captureOutput{}
	err := f(c)
	return c.vs, err
}
