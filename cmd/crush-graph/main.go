// Crush-graph inspects the command graphs saved by crush: it lists them,
// dumps them and deletes them.
package main

import (
	"os"

	"src.crush.sh/pkg/buildinfo"
	"src.crush.sh/pkg/graphtool"
	"src.crush.sh/pkg/prog"
)

func main() {
	os.Exit(prog.Run(
		[3]*os.File{os.Stdin, os.Stdout, os.Stderr}, os.Args,
		prog.Composite(append(graphtool.Programs(), buildinfo.Program{})...)))
}
