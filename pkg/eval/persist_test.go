package eval

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"src.crush.sh/pkg/eval/errs"
	"src.crush.sh/pkg/eval/vals"
	"src.crush.sh/pkg/store"
	"src.crush.sh/pkg/store/storedefs"
)

func TestSaveAndLoadCommand(t *testing.T) {
	st, cleanup := store.MustGetTempStore()
	defer cleanup()

	sc := newTestGlobal().NewChild()
	sc.Declare("greeting", "hello")
	c := NewClosure("greet", []Parameter{Param("name", Lookup{Name: "string"}, nil)},
		[]Job{NewJob(call("echo", Lookup{Name: "greeting"}, Lookup{Name: "name"}))}, sc)
	sc.Declare("string", vals.String)

	if err := SaveCommand(st, "greet", c); err != nil {
		t.Fatal(err)
	}
	names, err := st.GraphNames()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"greet"}, names); diff != "" {
		t.Errorf("graph names (-want +got):\n%s", diff)
	}

	loaded, err := LoadCommand(st, "greet", newTestGlobal())
	if err != nil {
		t.Fatal(err)
	}
	outs, err := invoke(loaded, NewContext(nil, Positional("world"), nil))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]any{"hello", "world"}, outs); diff != "" {
		t.Errorf("outputs (-want +got):\n%s", diff)
	}
}

func TestLoadCommand_Errors(t *testing.T) {
	st, cleanup := store.MustGetTempStore()
	defer cleanup()

	if _, err := LoadCommand(st, "missing", newTestGlobal()); !errors.Is(err, storedefs.ErrNoGraph) {
		t.Errorf("loading a missing graph -> error %v, want ErrNoGraph", err)
	}

	if err := st.PutGraph("garbage", []byte("root: [")); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadCommand(st, "garbage", newTestGlobal()); err == nil {
		t.Errorf("loading a malformed graph succeeded")
	}

	// A graph whose root is not a command.
	g, err := SerializeGraph(1)
	if err != nil {
		t.Fatal(err)
	}
	data, err := g.Encode()
	if err != nil {
		t.Fatal(err)
	}
	if err := st.PutGraph("integer", data); err != nil {
		t.Fatal(err)
	}
	_, err = LoadCommand(st, "integer", newTestGlobal())
	var mismatch errs.TypeMismatch
	if !errors.As(err, &mismatch) || mismatch.Want != "command" {
		t.Errorf("loading a non-command graph -> error %v", err)
	}
}

func TestSaveCommand_Unserializable(t *testing.T) {
	st, cleanup := store.MustGetTempStore()
	defer cleanup()

	sc := newTestGlobal().NewChild()
	sc.Declare("f", 1.5)
	c := NewClosure("f", nil, nil, sc)
	if err := SaveCommand(st, "f", c); err == nil {
		t.Errorf("saving a closure capturing a float succeeded")
	}
	if _, err := st.Graph("f"); err != storedefs.ErrNoGraph {
		t.Errorf("a failed save stored a graph; Graph(f) -> error %v", err)
	}
}
