package eval

import (
	"strings"
	"sync"

	"src.crush.sh/pkg/eval/errs"
	"src.crush.sh/pkg/eval/scope"
	"src.crush.sh/pkg/eval/vals"
)

// Buffer size of the channels connecting the stages of a pipeline.
const pipelineChanBufferSize = 32

// CompileContext gives static queries, like Command.CanBlock, access to the
// scope the queried code will run in.
type CompileContext struct {
	Scope *scope.Scope
}

// ArgumentDefinition is an argument expression of an invocation. Name is
// empty for positional arguments.
type ArgumentDefinition struct {
	Name  string
	Value ValueDefinition
}

func (a ArgumentDefinition) String() string {
	if a.Name == "" {
		return a.Value.String()
	}
	return a.Name + "=" + a.Value.String()
}

// Invocation is a single stage of a pipeline: an expression evaluating to the
// command to run, and its argument expressions.
type Invocation struct {
	Command   ValueDefinition
	Arguments []ArgumentDefinition
}

// Resolves the command statically, without evaluating anything that could
// have side effects. It returns nil when that is not possible.
func (inv Invocation) staticCommand(cc *CompileContext) Command {
	if cc == nil || cc.Scope == nil {
		if lit, ok := inv.Command.(Literal); ok {
			c, _ := lit.Value.(Command)
			return c
		}
		return nil
	}
	v, ok := staticValue(inv.Command, cc.Scope)
	if !ok {
		return nil
	}
	c, err := commandOf(cc.Scope, v)
	if err != nil {
		return nil
	}
	return c
}

func staticValue(def ValueDefinition, sc *scope.Scope) (any, bool) {
	switch def := def.(type) {
	case Literal:
		return def.Value, true
	case Lookup:
		return sc.Get(def.Name)
	case GetAttr:
		parent, ok := staticValue(def.Parent, sc)
		if !ok {
			return nil, false
		}
		v, err := getAttr(sc, parent, def.Name)
		return v, err == nil
	}
	return nil, false
}

// CanBlock reports whether running the invocation may block. Invocations
// whose command cannot be resolved statically are assumed to block.
func (inv Invocation) CanBlock(cc *CompileContext) bool {
	c := inv.staticCommand(cc)
	if c == nil {
		return true
	}
	if c.CanBlock(inv.Arguments, cc) {
		return true
	}
	for _, arg := range inv.Arguments {
		if arg.Value.CanBlock(inv.Arguments, cc) {
			return true
		}
	}
	return false
}

// Output resolves the output type of the invocation, given the output type
// of the previous stage.
func (inv Invocation) Output(input OutputType, cc *CompileContext) (vals.Type, bool) {
	c := inv.staticCommand(cc)
	if c == nil {
		return vals.Type{}, false
	}
	return c.Output(input)
}

func (inv Invocation) invoke(sc *scope.Scope, input <-chan any, output Output) error {
	v, err := inv.Command.Eval(sc)
	if err != nil {
		return err
	}
	c, err := commandOf(sc, v)
	if err != nil {
		return err
	}
	args := make(Arguments, len(inv.Arguments))
	for i, arg := range inv.Arguments {
		v, err := arg.Value.Eval(sc)
		if err != nil {
			return err
		}
		args[i] = Argument{Name: arg.Name, Value: v}
	}
	return c.Invoke(&Context{Arguments: args, Input: input, Output: output, Scope: sc})
}

func (inv Invocation) String() string {
	parts := []string{inv.Command.String()}
	for _, arg := range inv.Arguments {
		parts = append(parts, arg.String())
	}
	return strings.Join(parts, " ")
}

// Job is a pipeline: a sequence of invocations, each reading the output of
// the previous one.
type Job struct {
	Invocations []Invocation
}

// NewJob builds a Job from invocations.
func NewJob(invs ...Invocation) Job { return Job{Invocations: invs} }

// CanBlock reports whether running the job may block. Pipelines of more than
// one stage always may.
func (j Job) CanBlock(cc *CompileContext) bool {
	switch len(j.Invocations) {
	case 0:
		return false
	case 1:
		return j.Invocations[0].CanBlock(cc)
	default:
		return true
	}
}

// Output resolves the output type of the last stage by feeding each stage's
// resolved output type to the next stage.
func (j Job) Output(cc *CompileContext) (vals.Type, bool) {
	t, ok := vals.Type{}, false
	for _, inv := range j.Invocations {
		t, ok = inv.Output(resolvedOutput(t, ok), cc)
	}
	return t, ok
}

// Invoke runs the job in a scope. The first stage reads input and the last
// stage writes to output. Stages of a pipeline run concurrently; the first
// error in stage order is returned after all stages have finished.
func (j Job) Invoke(sc *scope.Scope, input <-chan any, output Output) error {
	switch len(j.Invocations) {
	case 0:
		return nil
	case 1:
		return j.Invocations[0].invoke(sc, input, output)
	}

	n := len(j.Invocations)
	stageErrs := make([]error, n)
	var wg sync.WaitGroup
	wg.Add(n)
	in := input
	for i, inv := range j.Invocations {
		var next chan any
		out := output
		if i < n-1 {
			next = make(chan any, pipelineChanBufferSize)
			out = ChanOutput(next)
		}
		go func(i int, inv Invocation, in <-chan any, next chan any, out Output) {
			defer wg.Done()
			stageErrs[i] = inv.invoke(sc, in, out)
			if next != nil {
				close(next)
			}
			if i > 0 {
				// Unblock the previous stage if this one stopped reading early.
				for range in {
				}
			}
		}(i, inv, in, next, out)
		if next != nil {
			in = next
		}
	}
	wg.Wait()
	for _, err := range stageErrs {
		if err != nil {
			return err
		}
	}
	return nil
}

func (j Job) String() string {
	parts := make([]string, len(j.Invocations))
	for i, inv := range j.Invocations {
		parts[i] = inv.String()
	}
	return strings.Join(parts, " | ")
}

// ValueDefinition is an expression that evaluates to a value.
type ValueDefinition interface {
	// Eval evaluates the expression in a scope.
	Eval(sc *scope.Scope) (any, error)
	// CanBlock reports whether evaluating the expression may block.
	CanBlock(args []ArgumentDefinition, cc *CompileContext) bool
	String() string
	serialize(st *SerializationState) (int, error)
}

// Literal is a constant value.
type Literal struct {
	Value any
}

func (l Literal) Eval(*scope.Scope) (any, error) { return l.Value, nil }

func (l Literal) CanBlock([]ArgumentDefinition, *CompileContext) bool { return false }

func (l Literal) String() string { return vals.ReprPlain(l.Value) }

// Lookup is a reference to a variable.
type Lookup struct {
	Name string
}

func (l Lookup) Eval(sc *scope.Scope) (any, error) {
	v, ok := sc.Get(l.Name)
	if !ok {
		return nil, errs.NoSuchPath{Path: l.Name}
	}
	return v, nil
}

func (l Lookup) CanBlock([]ArgumentDefinition, *CompileContext) bool { return false }

func (l Lookup) String() string { return l.Name }

// GetAttr is a member access, like "$d:len". On scopes it finds a binding;
// on other values it finds a method and binds it to the value.
type GetAttr struct {
	Parent ValueDefinition
	Name   string
}

func (g GetAttr) Eval(sc *scope.Scope) (any, error) {
	parent, err := g.Parent.Eval(sc)
	if err != nil {
		return nil, err
	}
	return getAttr(sc, parent, g.Name)
}

func (g GetAttr) CanBlock(args []ArgumentDefinition, cc *CompileContext) bool {
	return g.Parent.CanBlock(args, cc)
}

func (g GetAttr) String() string { return g.Parent.String() + ":" + g.Name }

// Substitution runs a job and evaluates to its output: the empty value if
// there is none, the value itself if there is exactly one, and a list
// otherwise.
type Substitution struct {
	Job Job
}

func (s Substitution) Eval(sc *scope.Scope) (any, error) {
	vs, err := CaptureOutput(func(out Output) error {
		return s.Job.Invoke(sc, ClosedChan, out)
	})
	if err != nil {
		return nil, err
	}
	switch len(vs) {
	case 0:
		return nil, nil
	case 1:
		return vs[0], nil
	default:
		return vals.MakeList(vs...), nil
	}
}

func (s Substitution) CanBlock(_ []ArgumentDefinition, cc *CompileContext) bool {
	return s.Job.CanBlock(cc)
}

func (s Substitution) String() string { return "(" + s.Job.String() + ")" }

// ClosureDefinition is a closure literal. Evaluating it creates a closure
// capturing the scope it is evaluated in.
type ClosureDefinition struct {
	Name string
	// Nil when the closure declares no parameter list.
	Params []Parameter
	Jobs   []Job
}

func (d ClosureDefinition) Eval(sc *scope.Scope) (any, error) {
	return NewClosure(d.Name, d.Params, d.Jobs, sc), nil
}

func (d ClosureDefinition) CanBlock([]ArgumentDefinition, *CompileContext) bool { return false }

func (d ClosureDefinition) String() string {
	return closureSource(d.Params, d.Jobs)
}

func closureSource(params []Parameter, jobs []Job) string {
	var b strings.Builder
	b.WriteString("{")
	if params != nil {
		b.WriteString("|")
		for i, p := range params {
			if i > 0 {
				b.WriteString(" ")
			}
			b.WriteString(p.String())
		}
		b.WriteString("|")
	}
	for i, j := range jobs {
		if i > 0 {
			b.WriteString(";")
		}
		b.WriteString(" " + j.String())
	}
	b.WriteString(" }")
	return b.String()
}
