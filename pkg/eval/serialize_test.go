package eval

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"src.crush.sh/pkg/eval/errs"
	"src.crush.sh/pkg/eval/scope"
	"src.crush.sh/pkg/eval/vals"
)

// Serializes c, encodes and decodes the graph, and deserializes it in env.
func roundTrip(t *testing.T, c Command, env *scope.Scope) Command {
	t.Helper()
	g, err := SerializeCommand(c)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	data, err := g.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	g, err = DecodeGraph(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	d, err := DeserializeCommand(g.Root, g.Elements, NewDeserializationState(env))
	if err != nil {
		t.Fatalf("deserialize: %v", err)
	}
	return d
}

func TestSerialize_NativeCommand(t *testing.T) {
	c := testCommand(t, newTestGlobal(), "echo")
	g, err := SerializeCommand(c)
	if err != nil {
		t.Fatal(err)
	}
	want := &Graph{Root: 0, Elements: []Element{
		{Command: &Strings{Elements: []string{"global", "test", "echo"}}}}}
	if diff := cmp.Diff(want, g); diff != "" {
		t.Errorf("graph (-want +got):\n%s", diff)
	}

	env := newTestGlobal()
	d := roundTrip(t, c, env)
	if d != testCommand(t, env, "echo") {
		t.Errorf("deserialized command is not the one in the target scope")
	}
	if d.Name() != c.Name() || HelpText(d) != HelpText(c) {
		t.Errorf("deserialized command has name %q and help %q", d.Name(), HelpText(d))
	}
}

func TestDeserialize_MissingPath(t *testing.T) {
	g, err := SerializeCommand(testCommand(t, newTestGlobal(), "echo"))
	if err != nil {
		t.Fatal(err)
	}
	_, err = DeserializeCommand(g.Root, g.Elements, NewDeserializationState(scope.NewRoot()))
	if err != (errs.NoSuchPath{Path: "global:test:echo"}) {
		t.Errorf("got error %v, want NoSuchPath", err)
	}
}

func TestDeserialize_PathToNonCommand(t *testing.T) {
	env := scope.NewRoot()
	env.Declare("x", 1)
	elements := []Element{{Command: &Strings{Elements: []string{"global", "x"}}}}
	_, err := DeserializeCommand(0, elements, NewDeserializationState(env))
	want := errs.TypeMismatch{What: "global:x", Want: "command", Actual: "integer"}
	if err != want {
		t.Errorf("got error %v, want %v", err, want)
	}
}

func TestDeserialize_NonCommandNode(t *testing.T) {
	n := 1
	elements := []Element{{Integer: &n}}
	_, err := DeserializeCommand(0, elements, NewDeserializationState(scope.NewRoot()))
	want := errs.TypeMismatch{What: "node 0", Want: "command", Actual: "integer"}
	if err != want {
		t.Errorf("got error %v, want %v", err, want)
	}
}

func TestDeserialize_BadGraphs(t *testing.T) {
	n := 1
	hijacked := "hijacked"
	path := &Strings{Elements: []string{"global", "test", "echo"}}
	tests := []struct {
		name     string
		elements []Element
		want     error
	}{
		{"forward reference",
			[]Element{{BoundCommand: &BoundCommand{This: 1, Command: 2}}, {Integer: &n}, {Command: path}},
			GraphError{0, "reference to node 1"}},
		{"self reference",
			[]Element{{Command: path}, {BoundCommand: &BoundCommand{This: 1, Command: 0}}},
			GraphError{1, "reference to node 1"}},
		{"empty node", []Element{{}}, GraphError{0, "empty node"}},
		{"unknown kind", []Element{{Type: &TypeElement{Kind: "float"}}}, GraphError{0, "unknown kind float"}},
		{"out of range", []Element{{Integer: &n}}, GraphError{3, "no such node"}},
		{"members of a named scope",
			[]Element{
				{ScopePath: &Strings{Elements: []string{"global", "test"}}},
				{String: &hijacked},
				{ScopeMembers: &ScopeMembersElement{Scope: 0, Names: []string{"echo"}, Values: []int{1}}}},
			GraphError{2, "node 0 is not an anonymous scope"}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			id := len(test.elements) - 1
			if test.name == "out of range" {
				id = 3
			}
			env := newTestGlobal()
			_, err := DeserializeValue(id, test.elements, NewDeserializationState(env))
			if err != test.want {
				t.Errorf("got error %v, want %v", err, test.want)
			}
			if v, err := env.GlobalValue(path.Elements); err != nil {
				t.Errorf("echo is gone from the target scope: %v", err)
			} else if _, ok := v.(Command); !ok {
				t.Errorf("echo in the target scope is now %v", v)
			}
		})
	}
}

func TestSerialize_BoundCommand(t *testing.T) {
	d, err := vals.NewDict(vals.String, vals.Integer)
	if err != nil {
		t.Fatal(err)
	}
	d.Insert("a", 1)
	c := testCommand(t, newTestGlobal(), "this").Bind(d)

	env := newTestGlobal()
	restored := roundTrip(t, c, env)
	out, err := invoke(restored, NewContext(env, nil, nil))
	if err != nil || len(out) != 1 {
		t.Fatalf("got (%v, %v)", out, err)
	}
	this, ok := out[0].(*vals.Dict)
	if !ok {
		t.Fatalf("receiver is %T", out[0])
	}
	if v, _ := this.Get("a"); this.Len() != 1 || v != 1 || !this.Type().Equal(d.Type()) {
		t.Errorf("receiver is %s, want %s", vals.ReprPlain(this), vals.ReprPlain(d))
	}
}

func TestSerialize_Values(t *testing.T) {
	d, _ := vals.NewDict(vals.String, vals.ListOf(vals.Integer))
	d.Insert("k", vals.MakeList(1, 2))
	values := []any{
		nil, true, false, 0, -7, "", "str",
		vals.Integer, vals.DictOf(vals.String, vals.ListOf(vals.Any)), vals.Type{Kind: vals.DictKind},
		vals.MakeList(), vals.MakeList(1, "a", vals.MakeList(true)),
	}
	for _, v := range values {
		g, err := SerializeGraph(v)
		if err != nil {
			t.Errorf("serialize %s: %v", vals.ReprPlain(v), err)
			continue
		}
		got, err := DeserializeGraph(g, scope.NewRoot())
		if err != nil || !vals.Equal(got, v) {
			t.Errorf("%s round trips to (%s, %v)", vals.ReprPlain(v), vals.ReprPlain(got), err)
		}
	}

	g, err := SerializeGraph(d)
	if err != nil {
		t.Fatal(err)
	}
	got, err := DeserializeGraph(g, scope.NewRoot())
	if err != nil {
		t.Fatal(err)
	}
	if vals.ReprPlain(got) != vals.ReprPlain(d) {
		t.Errorf("dict round trips to %s", vals.ReprPlain(got))
	}
}

func TestSerialize_UnsupportedValue(t *testing.T) {
	if _, err := SerializeGraph(1.5); err == nil {
		t.Errorf("serializing a float succeeded")
	}
}

func TestSerialize_CyclicDict(t *testing.T) {
	d, _ := vals.NewDict(vals.String, vals.Any)
	d.Insert("self", d)
	if _, err := SerializeGraph(d); !errors.Is(err, ErrCyclicValue) {
		t.Errorf("got error %v, want ErrCyclicValue", err)
	}
}

func TestSerialize_RecursiveClosure(t *testing.T) {
	env := newTestGlobal().NewChild()
	f := NewClosure("f", []Parameter{Param("n", Literal{vals.Integer}, Literal{0})},
		echoJob(Lookup{"n"}, Lookup{"greeting"}), env)
	env.Declare("f", f)
	env.Declare("greeting", "hi")

	g, err := SerializeCommand(f)
	if err != nil {
		t.Fatal(err)
	}
	for i, e := range g.Elements {
		if e.Kind() == "" {
			t.Errorf("node %d is empty", i)
		}
	}

	target := newTestGlobal()
	restored, ok := roundTrip(t, f, target).(*Closure)
	if !ok {
		t.Fatalf("deserialized a %T", restored)
	}
	if self, _ := restored.Env().Local("f"); self != Command(restored) {
		t.Errorf("captured scope does not refer to the closure itself")
	}
	if restored.Env().Parent() != target {
		t.Errorf("captured scope is not a child of the target root")
	}

	out, err := invoke(restored, NewContext(target, Positional(5), nil))
	if diff := cmp.Diff([]any{5, "hi"}, out); diff != "" || err != nil {
		t.Errorf("output (-want +got):\n%s\nerror: %v", diff, err)
	}
	out, err = invoke(restored, NewContext(target, nil, nil))
	if diff := cmp.Diff([]any{0, "hi"}, out); diff != "" || err != nil {
		t.Errorf("output with default (-want +got):\n%s\nerror: %v", diff, err)
	}
	_, err = invoke(restored, NewContext(target, Positional("x"), nil))
	if _, ok := err.(errs.BadValue); !ok {
		t.Errorf("got error %v, want BadValue", err)
	}
}

func TestSerialize_ClosureBody(t *testing.T) {
	root := newTestGlobal()
	c := NewClosure("", []Parameter{
		Param("a", nil, Literal{1}),
		UnnamedRest("rest"),
		NamedRest("opts"),
	}, []Job{
		NewJob(Invocation{
			Command: testCmd("echo"),
			Arguments: []ArgumentDefinition{
				{Value: Substitution{NewJob(Invocation{
					Command:   testCmd("echo"),
					Arguments: []ArgumentDefinition{{Name: "k", Value: Literal{"v"}}},
				})}},
				{Value: ClosureDefinition{Jobs: []Job{NewJob(Invocation{Command: Lookup{"a"}})}}},
			},
		}, call("collect")),
	}, root)

	restored := roundTrip(t, c, newTestGlobal())
	if got, want := vals.ReprPlain(restored), vals.ReprPlain(c); got != want {
		t.Errorf("restored closure is %s, want %s", got, want)
	}
	if got, want := restored.Help().Signature(), c.Help().Signature(); got != want {
		t.Errorf("restored signature is %q, want %q", got, want)
	}
	out, err := invoke(restored, NewContext(root, nil, nil))
	if err != nil || len(out) != 2 || out[0] != "v" {
		t.Errorf("got (%v, %v)", out, err)
	}
	if _, ok := out[1].(*Closure); !ok {
		t.Errorf("closure literal evaluated to %T", out[1])
	}
}

func TestSerialize_SharedScopeIsWrittenOnce(t *testing.T) {
	env := newTestGlobal().NewChild()
	env.Declare("x", 1)
	f1 := NewClosure("f1", []Parameter{}, echoJob(Lookup{"x"}), env)
	f2 := NewClosure("f2", []Parameter{}, echoJob(Lookup{"x"}), env)

	g, err := SerializeGraph(vals.MakeList(f1, f2, f1))
	if err != nil {
		t.Fatal(err)
	}
	kinds := make(map[string]int)
	for _, e := range g.Elements {
		kinds[e.Kind()]++
	}
	if kinds["scope"] != 1 || kinds["scope_members"] != 1 || kinds["closure"] != 2 {
		t.Errorf("node kinds: %v", kinds)
	}

	v, err := DeserializeGraph(g, newTestGlobal())
	if err != nil {
		t.Fatal(err)
	}
	elems := vals.ListElems(v.(vals.List))
	c1, c2, c3 := elems[0].(*Closure), elems[1].(*Closure), elems[2].(*Closure)
	if c1.Env() != c2.Env() {
		t.Errorf("closures do not share their scope after deserialization")
	}
	if c1 != c3 {
		t.Errorf("the same closure is deserialized twice")
	}
	if x, _ := c1.Env().Local("x"); x != 1 {
		t.Errorf("x = %v, want 1", x)
	}
}

func TestSerialize_NamespaceScope(t *testing.T) {
	root := newTestGlobal()
	ns, _ := root.GlobalValue([]string{"global", "test"})
	g, err := SerializeGraph(ns)
	if err != nil {
		t.Fatal(err)
	}
	if len(g.Elements) != 1 || g.Elements[0].Kind() != "scope_path" {
		t.Errorf("namespace serialized as %v", g.Elements)
	}
	target := newTestGlobal()
	got, err := DeserializeGraph(g, target)
	want, _ := target.GlobalValue([]string{"global", "test"})
	if got != want || err != nil {
		t.Errorf("namespace deserialized to (%v, %v)", got, err)
	}
}
