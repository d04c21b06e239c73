package eval

import (
	"testing"

	"src.crush.sh/pkg/eval/vals"
	"src.crush.sh/pkg/tt"
)

var (
	known      = KnownOutput(vals.Integer)
	otherKnown = KnownOutput(vals.String)
)

func TestOutputType_Calculate(t *testing.T) {
	tt.Test(t, tt.Fn("Calculate", OutputType.Calculate), tt.Table{
		tt.Args(known, UnknownOutput).Rets(vals.Integer, true),
		tt.Args(known, otherKnown).Rets(vals.Integer, true),
		tt.Args(known, PassthroughOutput).Rets(vals.Integer, true),

		tt.Args(UnknownOutput, UnknownOutput).Rets(vals.Type{}, false),
		tt.Args(UnknownOutput, known).Rets(vals.Type{}, false),

		tt.Args(PassthroughOutput, otherKnown).Rets(vals.String, true),
		tt.Args(PassthroughOutput, UnknownOutput).Rets(vals.Type{}, false),
		// Resolving against another passthrough type stops there.
		tt.Args(PassthroughOutput, PassthroughOutput).Rets(vals.Type{}, false),
	})
}

func TestOutputType_Format(t *testing.T) {
	tt.Test(t, tt.Fn("Format", OutputType.Format), tt.Table{
		tt.Args(UnknownOutput).Rets("", false),
		tt.Args(KnownOutput(vals.DictOf(vals.String, vals.Integer))).
			Rets("    Output: dict string integer", true),
		tt.Args(PassthroughOutput).
			Rets("    Output: A stream with the same columns as the input", true),
	})
}

func TestJob_Output(t *testing.T) {
	cc := &CompileContext{Scope: newTestGlobal()}
	pipe := func(names ...string) Job {
		var job Job
		for _, name := range names {
			job.Invocations = append(job.Invocations, call(name))
		}
		return job
	}
	tt.Test(t, tt.Fn("Output", Job.Output), tt.Table{
		tt.Args(pipe(), cc).Rets(vals.Type{}, false),
		tt.Args(pipe("count"), cc).Rets(vals.Integer, true),
		tt.Args(pipe("count", "collect"), cc).Rets(vals.Integer, true),
		tt.Args(pipe("count", "collect", "collect"), cc).Rets(vals.Integer, true),
		tt.Args(pipe("echo", "collect"), cc).Rets(vals.Type{}, false),
		tt.Args(pipe("collect", "collect"), cc).Rets(vals.Type{}, false),
		tt.Args(pipe("collect", "count"), cc).Rets(vals.Integer, true),
		// Stages that cannot be resolved have an unknown output type.
		tt.Args(Job{[]Invocation{{Command: Lookup{Name: "nope"}}}}, cc).Rets(vals.Type{}, false),
	})
}
