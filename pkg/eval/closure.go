package eval

import (
	"unsafe"

	"src.crush.sh/pkg/eval/errs"
	"src.crush.sh/pkg/eval/scope"
	"src.crush.sh/pkg/eval/vals"
	"src.crush.sh/pkg/persistent/hash"
)

// Closure is a command defined in the language: a sequence of jobs run in a
// child of the scope it was created in.
type Closure struct {
	name string
	// Nil when the closure has no signature. Such closures take no positional
	// arguments, and named arguments become local variables.
	params []Parameter
	jobs   []Job
	// Shared with the defining code, never copied.
	env *scope.Scope
}

// NewClosure creates a closure capturing env.
func NewClosure(name string, params []Parameter, jobs []Job, env *scope.Scope) Command {
	return &Closure{name: name, params: params, jobs: jobs, env: env}
}

// Env returns the captured scope.
func (c *Closure) Env() *scope.Scope { return c.env }

// Params returns the signature, or nil if there is none.
func (c *Closure) Params() []Parameter { return c.params }

// Jobs returns the body.
func (c *Closure) Jobs() []Job { return c.jobs }

// Invoke binds the arguments in a fresh child of the captured scope and runs
// the body there. The first job reads the input of the invocation, the last
// one writes its output; output of the jobs in between is discarded.
func (c *Closure) Invoke(ctx *Context) error {
	local := c.env.NewChild()
	if ctx.This != nil {
		local.Declare("this", ctx.This)
	}
	if err := c.bindArguments(ctx.Arguments, local); err != nil {
		return err
	}
	input := ctx.Input
	if input == nil {
		input = ClosedChan
	}
	for i, job := range c.jobs {
		in, out := (<-chan any)(ClosedChan), BlackholeOutput
		if i == 0 {
			in = input
		}
		if i == len(c.jobs)-1 {
			out = ctx.Output
		}
		if err := job.Invoke(local, in, out); err != nil {
			return err
		}
	}
	return nil
}

func (c *Closure) bindArguments(args Arguments, local *scope.Scope) error {
	if c.params == nil {
		for _, arg := range args {
			if arg.Name == "" {
				return errs.UnexpectedArgument{}
			}
			local.Declare(arg.Name, arg.Value)
		}
		return nil
	}

	var namedRest, unnamedRest string
	normal := make(map[string]Parameter)
	for _, p := range c.params {
		switch p.Kind {
		case NamedRestParameter:
			namedRest = p.Name
		case UnnamedRestParameter:
			unnamedRest = p.Name
		default:
			normal[p.Name] = p
		}
	}

	bound := make(map[string]bool)
	var positional []any
	var extraNamed *vals.Dict
	for _, arg := range args {
		if arg.Name == "" {
			positional = append(positional, arg.Value)
			continue
		}
		if p, ok := normal[arg.Name]; ok {
			if bound[arg.Name] {
				return errs.DuplicateArgument{Name: arg.Name}
			}
			if err := bindParam(local, p, arg.Value); err != nil {
				return err
			}
			bound[arg.Name] = true
			continue
		}
		if namedRest == "" {
			return errs.UnexpectedArgument{Name: arg.Name}
		}
		if extraNamed == nil {
			extraNamed, _ = vals.NewDict(vals.String, vals.Any)
		}
		if err := extraNamed.Insert(arg.Name, arg.Value); err != nil {
			return err
		}
	}

	next := 0
	for _, p := range c.params {
		if p.Kind != NormalParameter || bound[p.Name] || next >= len(positional) {
			continue
		}
		if err := bindParam(local, p, positional[next]); err != nil {
			return err
		}
		bound[p.Name] = true
		next++
	}
	if next < len(positional) {
		if unnamedRest == "" {
			return errs.UnexpectedArgument{}
		}
		local.Declare(unnamedRest, vals.MakeList(positional[next:]...))
	} else if unnamedRest != "" {
		local.Declare(unnamedRest, vals.EmptyList)
	}
	if namedRest != "" {
		if extraNamed == nil {
			extraNamed, _ = vals.NewDict(vals.String, vals.Any)
		}
		local.Declare(namedRest, extraNamed)
	}

	// Defaults are evaluated in order in the local scope, so they see the
	// captured scope and the parameters before them.
	for _, p := range c.params {
		if p.Kind != NormalParameter || bound[p.Name] {
			continue
		}
		if p.Default == nil {
			return errs.MissingArgument{Name: p.Name}
		}
		v, err := p.Default.Eval(local)
		if err != nil {
			return err
		}
		if err := bindParam(local, p, v); err != nil {
			return err
		}
		bound[p.Name] = true
	}
	return nil
}

func bindParam(local *scope.Scope, p Parameter, v any) error {
	if p.Type != nil {
		tv, err := p.Type.Eval(local)
		if err != nil {
			return err
		}
		t, ok := tv.(vals.Type)
		if !ok {
			return errs.TypeMismatch{
				What: "type of parameter " + p.Name, Want: "type", Actual: vals.TypeOf(tv).String()}
		}
		if !t.Is(v) {
			return errs.BadValue{
				What: "argument " + p.Name, Valid: t.String(), Actual: vals.TypeOf(v).String()}
		}
	}
	local.Declare(p.Name, v)
	return nil
}

// CanBlock reports whether any job of the body may block, resolving commands
// in the captured scope.
func (c *Closure) CanBlock([]ArgumentDefinition, *CompileContext) bool {
	cc := &CompileContext{Scope: c.env}
	for _, job := range c.jobs {
		if job.CanBlock(cc) {
			return true
		}
	}
	return false
}

func (c *Closure) Name() string { return "closure" }

func (c *Closure) Copy() Command {
	// A nil signature and an empty one behave differently.
	var params []Parameter
	if c.params != nil {
		params = append(make([]Parameter, 0, len(c.params)), c.params...)
	}
	return &Closure{
		name:   c.name,
		params: params,
		jobs:   append([]Job(nil), c.jobs...),
		env:    c.env,
	}
}

func (c *Closure) Help() Help { return closureHelp{c} }

func (c *Closure) Serialize(st *SerializationState) (int, error) {
	return st.memoize(c, func() (int, error) {
		env, err := st.serializeScope(c.env)
		if err != nil {
			return 0, err
		}
		signature, err := serializeParams(c.params, st)
		if err != nil {
			return 0, err
		}
		jobs, err := serializeJobs(c.jobs, st)
		if err != nil {
			return 0, err
		}
		return st.push(Element{Closure: &ClosureElement{
			Name:         c.name,
			Env:          env,
			HasSignature: c.params != nil,
			Signature:    signature,
			Jobs:         jobs,
		}}), nil
	})
}

func (c *Closure) Bind(this any) Command { return bind(c, this) }

func (c *Closure) Output(OutputType) (vals.Type, bool) { return vals.Type{}, false }

// Equal compares identity.
func (c *Closure) Equal(other any) bool { return c == other }

// Hash hashes the address.
func (c *Closure) Hash() uint32 { return hash.Pointer(unsafe.Pointer(c)) }

// Type returns vals.Command.
func (c *Closure) Type() vals.Type { return vals.Command }

func (c *Closure) Repr(int) string {
	if c.name == "" {
		return "<closure " + closureSource(c.params, c.jobs) + ">"
	}
	return "<closure " + c.name + ">"
}

type closureHelp struct{ c *Closure }

func (h closureHelp) Signature() string {
	s := h.c.name
	if s == "" {
		s = "<anonymous>"
	}
	for _, p := range h.c.params {
		s += " " + p.String()
	}
	return s
}

func (h closureHelp) ShortHelp() string { return "" }

func (h closureHelp) LongHelp() (string, bool) { return "", false }
