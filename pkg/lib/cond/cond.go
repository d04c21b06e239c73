// Package cond declares the short-circuiting conditions "and" and "or".
package cond

import (
	"fmt"

	"src.crush.sh/pkg/eval"
	"src.crush.sh/pkg/eval/errs"
	"src.crush.sh/pkg/eval/scope"
	"src.crush.sh/pkg/eval/vals"
)

// Conditions holds the condition commands.
var Conditions = eval.NewTypeMap()

func init() {
	Conditions.DeclareCondition([]string{scope.RootName, "and"}, and,
		"and @condition:(bool|command)",
		"True if all arguments are true",
		"    Every argument is either a boolean or a command that outputs a\n"+
			"    boolean. Commands are only run until one of them outputs false.")
	Conditions.DeclareCondition([]string{scope.RootName, "or"}, or,
		"or @condition:(bool|command)",
		"True if any argument is true",
		"    Every argument is either a boolean or a command that outputs a\n"+
			"    boolean. Commands are only run until one of them outputs true.")
}

// Declare binds the conditions in root.
func Declare(root *scope.Scope) {
	Conditions.Install(root)
}

func and(ctx *eval.Context) error {
	for i := range ctx.Arguments {
		b, err := condition(ctx, i)
		if err != nil {
			return err
		}
		if !b {
			return ctx.Output.Send(false)
		}
	}
	return ctx.Output.Send(true)
}

func or(ctx *eval.Context) error {
	for i := range ctx.Arguments {
		b, err := condition(ctx, i)
		if err != nil {
			return err
		}
		if b {
			return ctx.Output.Send(true)
		}
	}
	return ctx.Output.Send(false)
}

// Evaluates the i-th argument, running it if it is a command.
func condition(ctx *eval.Context, i int) (bool, error) {
	switch v := ctx.Arguments[i].Value.(type) {
	case bool:
		return v, nil
	case eval.Command:
		outs, err := eval.CaptureOutput(func(out eval.Output) error {
			return v.Invoke(eval.NewContext(ctx.Scope, nil, out))
		})
		if err != nil {
			return false, err
		}
		if len(outs) != 1 {
			return false, errs.ArityMismatch{
				What: fmt.Sprintf("outputs of argument %d", i+1), ValidLow: 1, ValidHigh: 1, Actual: len(outs)}
		}
		b, ok := outs[0].(bool)
		if !ok {
			return false, errs.BadValue{
				What: fmt.Sprintf("output of argument %d", i+1), Valid: "bool", Actual: vals.TypeOf(outs[0]).String()}
		}
		return b, nil
	default:
		return false, errs.BadValue{
			What: fmt.Sprintf("argument %d", i+1), Valid: "bool or command", Actual: vals.TypeOf(v).String()}
	}
}
