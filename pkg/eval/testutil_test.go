package eval

import (
	"errors"
	"testing"

	"src.crush.sh/pkg/eval/scope"
	"src.crush.sh/pkg/eval/vals"
)

// Commands of the test namespace, declared under global:test.
var testCommands = NewTypeMap()

func init() {
	declare := func(name string, call Func, canBlock bool, output OutputType) {
		testCommands.Declare([]string{scope.RootName, "test", name}, call, canBlock,
			"test:"+name, "Test command "+name, "", output)
	}
	declare("echo", echo, false, UnknownOutput)
	declare("collect", collect, false, PassthroughOutput)
	declare("this", emitThis, false, UnknownOutput)
	declare("count", count, false, KnownOutput(vals.Integer))
	declare("blocking", echo, true, UnknownOutput)
	declare("fail", fail, false, UnknownOutput)
}

var errTestFail = errors.New("test failure")

// Outputs the values of all arguments.
func echo(ctx *Context) error {
	for _, arg := range ctx.Arguments {
		if err := ctx.Output.Send(arg.Value); err != nil {
			return err
		}
	}
	return nil
}

// Outputs every input value.
func collect(ctx *Context) error {
	for v := range ctx.Input {
		if err := ctx.Output.Send(v); err != nil {
			return err
		}
	}
	return nil
}

func emitThis(ctx *Context) error { return ctx.Output.Send(ctx.This) }

// Outputs the number of input values.
func count(ctx *Context) error {
	n := 0
	for range ctx.Input {
		n++
	}
	return ctx.Output.Send(n)
}

func fail(*Context) error { return errTestFail }

// Returns a root scope with the test namespace, and the types namespace with
// an integer:double method and an integer:__call__ method.
func newTestGlobal() *scope.Scope {
	root := scope.NewRoot()
	testCommands.Install(root.NewNamespace("test"))

	integer := root.NewNamespace(TypesNsName).NewNamespace(vals.IntegerKind.String())
	methods := NewTypeMap()
	methods.Declare(MethodPath(vals.IntegerKind, "double"), func(ctx *Context) error {
		n, ok := ctx.This.(int)
		if !ok {
			return errTestFail
		}
		return ctx.Output.Send(2 * n)
	}, false, "integer:double", "Double the integer", "", KnownOutput(vals.Integer))
	methods.Declare(MethodPath(vals.IntegerKind, "__call__"), func(ctx *Context) error {
		return ctx.Output.Send("called")
	}, false, "integer", "Call the integer type", "", UnknownOutput)
	methods.Install(integer)
	return root
}

func testCommand(t *testing.T, sc *scope.Scope, name string) Command {
	t.Helper()
	v, err := sc.GlobalValue([]string{scope.RootName, "test", name})
	if err != nil {
		t.Fatal(err)
	}
	return v.(Command)
}

// An expression referring to a command of the test namespace.
func testCmd(name string) ValueDefinition {
	return GetAttr{Parent: Lookup{Name: "test"}, Name: name}
}

func call(name string, args ...ValueDefinition) Invocation {
	inv := Invocation{Command: testCmd(name)}
	for _, arg := range args {
		inv.Arguments = append(inv.Arguments, ArgumentDefinition{Value: arg})
	}
	return inv
}

func invoke(c Command, ctx *Context) ([]any, error) {
	return CaptureOutput(func(out Output) error {
		ctx.Output = out
		return c.Invoke(ctx)
	})
}

func namedArg(name string, v any) Argument { return Argument{Name: name, Value: v} }
