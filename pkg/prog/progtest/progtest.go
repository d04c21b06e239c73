// Package progtest runs a prog.Program the way main does, capturing its exit
// status and output.
package progtest

import (
	"os"
	"testing"

	"src.crush.sh/pkg/must"
	"src.crush.sh/pkg/prog"
)

// Result is the outcome of one run.
type Result struct {
	Exit           int
	Stdout, Stderr string
}

// Run runs p with the given arguments, not including the program name. Stdin
// is empty and stdout and stderr are pipes, so output is never considered to
// be written to a terminal.
func Run(p prog.Program, args ...string) Result {
	r0, w0 := must.Pipe()
	w0.Close()
	defer r0.Close()
	r1, w1 := must.Pipe()
	r2, w2 := must.Pipe()

	// Read concurrently so that programs writing a lot do not block on a full
	// pipe.
	stdout, stderr := make(chan string, 1), make(chan string, 1)
	go func() { stdout <- string(must.ReadAllAndClose(r1)) }()
	go func() { stderr <- string(must.ReadAllAndClose(r2)) }()

	exit := prog.Run([3]*os.File{r0, w1, w2}, append([]string{"crush-graph"}, args...), p)
	w1.Close()
	w2.Close()
	return Result{exit, <-stdout, <-stderr}
}

// SetDBEnv points the database environment variable at path for the duration
// of a test.
func SetDBEnv(t *testing.T, path string) {
	t.Helper()
	t.Setenv(prog.DBEnvName, path)
}
