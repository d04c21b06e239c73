package eval

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"src.crush.sh/pkg/eval/vals"
	"src.crush.sh/pkg/tt"
)

func TestNativeCommand_CopyBehavesLikeOriginal(t *testing.T) {
	root := newTestGlobal()
	c := testCommand(t, root, "echo")
	cp := c.Copy()

	args := Positional(1, "two")
	want, wantErr := invoke(c, NewContext(root, args, nil))
	got, err := invoke(cp, NewContext(root, args, nil))
	if diff := cmp.Diff(want, got); diff != "" || err != wantErr {
		t.Errorf("copy behaves differently (-original +copy):\n%s", diff)
	}
	if HelpText(c) != HelpText(cp) {
		t.Errorf("copy has help %q, want %q", HelpText(cp), HelpText(c))
	}
}

func TestNativeCommand_NeverEqual(t *testing.T) {
	root := newTestGlobal()
	for _, name := range []string{"echo", "blocking"} {
		c := testCommand(t, root, name)
		if vals.Equal(c, c.Copy()) {
			t.Errorf("%s is equal to its copy", name)
		}
		if vals.Equal(c, c) {
			t.Errorf("%s is equal to itself", name)
		}
	}
	cond := NewCondition(echo, []string{"global", "c"}, "c", "", "")
	if vals.Equal(cond, cond.Copy()) {
		t.Errorf("condition is equal to its copy")
	}
}

func TestNativeCommand_Basics(t *testing.T) {
	root := newTestGlobal()
	c := testCommand(t, root, "echo")
	if name := c.Name(); name != "command" {
		t.Errorf("Name() -> %q, want command", name)
	}
	if c.CanBlock(nil, nil) {
		t.Errorf("echo can block")
	}
	if !testCommand(t, root, "blocking").CanBlock(nil, nil) {
		t.Errorf("blocking cannot block")
	}
	if repr := vals.ReprPlain(c); repr != "<command global:test:echo>" {
		t.Errorf("Repr -> %q", repr)
	}
	if typ := vals.TypeOf(c); !typ.Equal(vals.Command) {
		t.Errorf("TypeOf -> %v, want command", typ)
	}
}

func TestNativeCommand_LongHelp(t *testing.T) {
	longHelp := func(output OutputType, text string) (string, bool) {
		return NewCommand(echo, false, []string{"global", "x"}, "x", "short", text, output).
			Help().LongHelp()
	}
	tt.Test(t, tt.Fn("LongHelp", longHelp), tt.Table{
		tt.Args(UnknownOutput, "").Rets("", false),
		tt.Args(UnknownOutput, "Details").Rets("Details", true),
		tt.Args(KnownOutput(vals.Integer), "").Rets("    Output: integer", true),
		tt.Args(KnownOutput(vals.Integer), "Details").
			Rets("    Output: integer\n\nDetails", true),
		tt.Args(PassthroughOutput, "Details").
			Rets("    Output: A stream with the same columns as the input\n\nDetails", true),
	})
}

func TestHelpText(t *testing.T) {
	c := NewCommand(echo, false, []string{"global", "x"}, "x a:integer", "Do x", "Details", UnknownOutput)
	want := "x a:integer\n\nDo x\n\nDetails"
	if got := HelpText(c); got != want {
		t.Errorf("HelpText -> %q, want %q", got, want)
	}
	c = NewCommand(echo, false, []string{"global", "x"}, "x", "Do x", "", UnknownOutput)
	if got := HelpText(c); got != "x\n\nDo x" {
		t.Errorf("HelpText -> %q", got)
	}
}

func TestConditionCommand(t *testing.T) {
	root := newTestGlobal()
	cc := &CompileContext{Scope: root}
	cond := NewCondition(echo, []string{"global", "cond"}, "cond @c", "Test condition", "")

	blockingSub := Substitution{NewJob(call("blocking"))}
	tt.Test(t, tt.Fn("CanBlock", cond.CanBlock), tt.Table{
		tt.Args([]ArgumentDefinition(nil), cc).Rets(false),
		tt.Args([]ArgumentDefinition{{Value: Literal{true}}, {Value: Lookup{"x"}}}, cc).Rets(false),
		tt.Args([]ArgumentDefinition{{Value: Substitution{NewJob(call("echo"))}}}, cc).Rets(false),
		tt.Args([]ArgumentDefinition{{Value: Literal{true}}, {Value: blockingSub}}, cc).Rets(true),
		tt.Args([]ArgumentDefinition{{Value: GetAttr{blockingSub, "x"}}}, cc).Rets(true),
	})

	if name := cond.Name(); name != "conditional command" {
		t.Errorf("Name() -> %q", name)
	}
	if _, ok := cond.Output(KnownOutput(vals.Integer)); ok {
		t.Errorf("condition has an output type")
	}
	if _, ok := cond.Help().LongHelp(); ok {
		t.Errorf("condition without long help has long help")
	}
}

func TestBind_SetsReceiver(t *testing.T) {
	root := newTestGlobal()
	inner := testCommand(t, root, "this")

	bound, err := invoke(inner.Bind("receiver"), NewContext(root, nil, nil))
	ctx := NewContext(root, nil, nil)
	ctx.This = "receiver"
	direct, directErr := invoke(inner, ctx)
	if diff := cmp.Diff(direct, bound); diff != "" || err != directErr {
		t.Errorf("bound invocation differs from setting the receiver (-direct +bound):\n%s", diff)
	}
	if diff := cmp.Diff([]any{"receiver"}, bound); diff != "" {
		t.Errorf("bound invocation (-want +got):\n%s", diff)
	}
}

func TestBind_DoesNotMutate(t *testing.T) {
	root := newTestGlobal()
	inner := testCommand(t, root, "this")
	_ = inner.Bind("receiver")
	got, _ := invoke(inner, NewContext(root, nil, nil))
	if diff := cmp.Diff([]any{nil}, got); diff != "" {
		t.Errorf("Bind changed the original command (-want +got):\n%s", diff)
	}
}

func TestBind_Rebind(t *testing.T) {
	root := newTestGlobal()
	inner := testCommand(t, root, "this")
	rebound := inner.Bind("first").Bind("second")

	got, err := invoke(rebound, NewContext(root, nil, nil))
	if diff := cmp.Diff([]any{"second"}, got); diff != "" || err != nil {
		t.Errorf("rebound invocation (-want +got):\n%s", diff)
	}
	b, ok := rebound.(*boundCommand)
	if !ok {
		t.Fatalf("Bind returned %T", rebound)
	}
	if _, nested := b.command.(*boundCommand); nested {
		t.Errorf("bindings stack")
	}
}

func TestBind_Delegates(t *testing.T) {
	root := newTestGlobal()
	inner := testCommand(t, root, "count")
	bound := inner.Bind(1)
	if bound.Name() != inner.Name() {
		t.Errorf("Name() -> %q, want %q", bound.Name(), inner.Name())
	}
	if HelpText(bound) != HelpText(inner) {
		t.Errorf("help differs")
	}
	if typ, ok := bound.Output(UnknownOutput); !ok || !typ.Equal(vals.Integer) {
		t.Errorf("Output -> (%v, %v), want (integer, true)", typ, ok)
	}
	if !testCommand(t, root, "blocking").Bind(1).CanBlock(nil, nil) {
		t.Errorf("binding a blocking command makes it nonblocking")
	}
	cp := bound.Copy()
	if got, _ := invoke(cp, NewContext(root, nil, nil)); !cmp.Equal(got, []any{0}) {
		t.Errorf("copy of bound command outputs %v", got)
	}
	if vals.Equal(bound, cp) {
		t.Errorf("bound command is equal to its copy")
	}
}
