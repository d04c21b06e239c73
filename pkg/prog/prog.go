// Package prog provides the entry point of the crush-graph tool. The tool's
// subcommands are Programs, tried in turn by Composite.
package prog

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"

	"src.crush.sh/pkg/logutil"
)

// DBEnvName is the environment variable overriding the default database path.
const DBEnvName = "CRUSH_GRAPH_DB"

// Settings read from the environment.
type envConfig struct {
	DB string `env:"CRUSH_GRAPH_DB"`
}

// Flags keeps command-line flags.
type Flags struct {
	Log, DB string

	Help, YAML bool
}

func newFlagSet(f *Flags) *flag.FlagSet {
	fs := flag.NewFlagSet("crush-graph", flag.ContinueOnError)
	// Error and usage will be printed explicitly.
	fs.SetOutput(io.Discard)

	fs.StringVar(&f.Log, "log", "", "a file to write debug log to")
	fs.StringVar(&f.DB, "db", "",
		"path to the graph database; defaults to $"+DBEnvName+
			" or ~/.local/state/crush/graphs.db")
	fs.BoolVar(&f.Help, "help", false, "show usage help and quit")
	fs.BoolVar(&f.YAML, "yaml", false, "always dump graphs as YAML")
	return fs
}

func usage(out io.Writer, fs *flag.FlagSet) {
	fmt.Fprintln(out, "Usage: crush-graph [flags] list|dump name|del name...|version")
	fmt.Fprintln(out, "Supported flags:")
	fs.SetOutput(out)
	fs.PrintDefaults()
}

// DBPath returns the database path: the -db flag if given, then the
// environment variable, then a file under the user's state directory.
func (f *Flags) DBPath() (string, error) {
	if f.DB != "" {
		return f.DB, nil
	}
	var cfg envConfig
	if err := env.Parse(&cfg); err != nil {
		return "", fmt.Errorf("parse env: %w", err)
	}
	if cfg.DB != "" {
		return cfg.DB, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine database path: %w", err)
	}
	return filepath.Join(home, ".local", "state", "crush", "graphs.db"), nil
}

// Run parses command-line flags and runs the first applicable subprogram. It
// returns the exit status of the program.
func Run(fds [3]*os.File, args []string, p Program) int {
	f := &Flags{}
	fs := newFlagSet(f)
	err := fs.Parse(args[1:])
	if err != nil {
		if err == flag.ErrHelp {
			// -help is defined but -h is not; treat -h like any other unknown
			// flag.
			fmt.Fprintln(fds[2], "flag provided but not defined: -h")
		} else {
			fmt.Fprintln(fds[2], err)
		}
		usage(fds[2], fs)
		return 2
	}

	if f.Log != "" {
		err = logutil.SetOutputFile(f.Log)
		if err != nil {
			fmt.Fprintln(fds[2], err)
		}
	}

	if f.Help {
		usage(fds[1], fs)
		return 0
	}

	err = p.Run(fds, f, fs.Args())
	if err == nil {
		return 0
	}
	if err == ErrNotSuitable {
		fmt.Fprintln(fds[2], "unknown subcommand")
		usage(fds[2], fs)
		return 2
	}
	fmt.Fprintln(fds[2], err)
	if _, ok := err.(badUsageError); ok {
		usage(fds[2], fs)
	}
	return 2
}

// Composite returns a Program that tries each of the given programs,
// terminating at the first one that doesn't return ErrNotSuitable.
func Composite(programs ...Program) Program {
	return compositeProgram(programs)
}

type compositeProgram []Program

func (cp compositeProgram) Run(fds [3]*os.File, f *Flags, args []string) error {
	for _, p := range cp {
		err := p.Run(fds, f, args)
		if err != ErrNotSuitable {
			return err
		}
	}
	return ErrNotSuitable
}

// ErrNotSuitable may be returned by Program.Run to signify that the Program
// does not handle the arguments.
var ErrNotSuitable = errors.New("no suitable subprogram")

// BadUsage returns an error that causes Run to print the message followed by
// the usage, and exit with 2.
func BadUsage(msg string) error { return badUsageError{msg} }

type badUsageError struct{ msg string }

func (e badUsageError) Error() string { return e.msg }

// Program represents a subprogram.
type Program interface {
	Run(fds [3]*os.File, f *Flags, args []string) error
}
