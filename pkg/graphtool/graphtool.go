// Package graphtool implements the subcommands of crush-graph, which inspect
// the command graphs saved in a graph database.
package graphtool

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"src.crush.sh/pkg/eval"
	"src.crush.sh/pkg/eval/vals"
	"src.crush.sh/pkg/lib"
	"src.crush.sh/pkg/logutil"
	"src.crush.sh/pkg/prog"
	"src.crush.sh/pkg/store"
)

var logger = logutil.GetLogger("[graphtool] ")

// Programs returns the subcommands, to be combined with prog.Composite.
func Programs() []prog.Program {
	return []prog.Program{List{}, Dump{}, Del{}}
}

// List prints the names of all stored graphs, one per line.
type List struct{}

func (List) Run(fds [3]*os.File, f *prog.Flags, args []string) error {
	if len(args) == 0 || args[0] != "list" {
		return prog.ErrNotSuitable
	}
	if len(args) != 1 {
		return prog.BadUsage("list takes no arguments")
	}
	return withStore(f, func(st store.DBStore) error {
		names, err := st.GraphNames()
		if err != nil {
			return err
		}
		for _, name := range names {
			fmt.Fprintln(fds[1], name)
		}
		return nil
	})
}

// Dump prints a stored graph. On a terminal, it lists the nodes and the
// command the graph decodes to; otherwise, or with -yaml, it writes the
// stored YAML unchanged.
type Dump struct{}

func (Dump) Run(fds [3]*os.File, f *prog.Flags, args []string) error {
	if len(args) == 0 || args[0] != "dump" {
		return prog.ErrNotSuitable
	}
	if len(args) != 2 {
		return prog.BadUsage("dump takes exactly one graph name")
	}
	return withStore(f, func(st store.DBStore) error {
		data, err := st.Graph(args[1])
		if err != nil {
			return fmt.Errorf("%s: %w", args[1], err)
		}
		if f.YAML || !isatty.IsTerminal(fds[1].Fd()) {
			_, err := fds[1].Write(data)
			return err
		}
		g, err := eval.DecodeGraph(data)
		if err != nil {
			return err
		}
		return WriteListing(fds[1], g, true)
	})
}

// Del deletes stored graphs.
type Del struct{}

func (Del) Run(fds [3]*os.File, f *prog.Flags, args []string) error {
	if len(args) == 0 || args[0] != "del" {
		return prog.ErrNotSuitable
	}
	if len(args) < 2 {
		return prog.BadUsage("del takes at least one graph name")
	}
	return withStore(f, func(st store.DBStore) error {
		for _, name := range args[1:] {
			if err := st.DelGraph(name); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
		}
		return nil
	})
}

func withStore(f *prog.Flags, fn func(store.DBStore) error) error {
	path, err := f.DBPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	logger.Println("opening", path)
	st, err := store.NewStore(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer st.Close()
	return fn(st)
}

// WriteListing writes one line per node, followed by the value of the root
// node as found in a scope holding all builtins. A graph that does not
// deserialize is still listed. Kinds, the root and errors are highlighted if
// colored is true.
func WriteListing(w io.Writer, g *eval.Graph, colored bool) error {
	kindColor := newColor(colored, color.FgCyan)
	rootColor := newColor(colored, color.FgGreen, color.Bold)
	errColor := newColor(colored, color.FgRed)
	for i, e := range g.Elements {
		marker := " "
		if i == g.Root {
			marker = rootColor.Sprint("*")
		}
		_, err := fmt.Fprintf(w, "%s%4d %s %s\n",
			marker, i, kindColor.Sprintf("%-16s", e.Kind()), describe(e))
		if err != nil {
			return err
		}
	}
	v, err := eval.DeserializeGraph(g, lib.NewGlobal())
	if err != nil {
		_, werr := fmt.Fprintln(w, errColor.Sprint("root does not deserialize:"), err)
		return werr
	}
	_, err = fmt.Fprintln(w, rootColor.Sprint("root:"), vals.Repr(v, 0))
	return err
}

func newColor(enabled bool, attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if enabled {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

func describe(e eval.Element) string {
	switch {
	case e.Command != nil:
		return strings.Join(e.Command.Elements, ":")
	case e.ScopePath != nil:
		return strings.Join(e.ScopePath.Elements, ":")
	case e.BoundCommand != nil:
		return fmt.Sprintf("this=%d command=%d", e.BoundCommand.This, e.BoundCommand.Command)
	case e.Closure != nil:
		name := e.Closure.Name
		if name == "" {
			name = "<anonymous>"
		}
		return fmt.Sprintf("%s env=%d params=%d jobs=%v",
			name, e.Closure.Env, len(e.Closure.Signature), e.Closure.Jobs)
	case e.Bool != nil:
		return fmt.Sprint(*e.Bool)
	case e.Integer != nil:
		return fmt.Sprint(*e.Integer)
	case e.String != nil:
		return vals.ReprPlain(*e.String)
	case e.Type != nil:
		return describeType(*e.Type)
	case e.Dict != nil:
		return fmt.Sprintf("%s keys=%v values=%v",
			describeType(eval.TypeElement{Kind: "dict", Key: &e.Dict.KeyType, Elem: &e.Dict.ValueType}),
			e.Dict.Keys, e.Dict.Values)
	case e.List != nil:
		return fmt.Sprint(e.List.Values)
	case e.Scope != nil:
		if e.Scope.Parent == nil {
			return "no parent"
		}
		return fmt.Sprintf("parent=%d", *e.Scope.Parent)
	case e.ScopeMembers != nil:
		var b strings.Builder
		fmt.Fprintf(&b, "scope=%d", e.ScopeMembers.Scope)
		for i, name := range e.ScopeMembers.Names {
			if i < len(e.ScopeMembers.Values) {
				fmt.Fprintf(&b, " %s=%d", name, e.ScopeMembers.Values[i])
			}
		}
		return b.String()
	case e.Job != nil:
		commands := make([]string, len(e.Job.Invocations))
		for i, inv := range e.Job.Invocations {
			commands[i] = fmt.Sprint(inv.Command)
		}
		return "commands=" + strings.Join(commands, "|")
	}
	return ""
}

func describeType(t eval.TypeElement) string {
	s := t.Kind
	for _, param := range []*eval.TypeElement{t.Key, t.Elem} {
		if param != nil && param.Kind != "empty" {
			s += " " + describeType(*param)
		}
	}
	return s
}
