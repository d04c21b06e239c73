package scope

import (
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"src.crush.sh/pkg/eval/errs"
)

func TestScope_ParentChain(t *testing.T) {
	root := NewRoot()
	root.Declare("x", 1)
	child := root.NewChild()
	child.Declare("y", 2)

	if v, ok := child.Get("x"); !ok || v != 1 {
		t.Errorf("child.Get(x) -> (%v, %v), want (1, true)", v, ok)
	}
	if _, ok := root.Get("y"); ok {
		t.Errorf("parent sees a binding of its child")
	}
	if _, ok := child.Local("x"); ok {
		t.Errorf("Local follows the parent chain")
	}
	if child.Root() != root {
		t.Errorf("Root() of child is not the root")
	}
}

func TestScope_SetIsVisibleThroughSharedScope(t *testing.T) {
	root := NewRoot()
	root.Declare("counter", 0)
	a := root.NewChild()
	b := root.NewChild()

	if err := a.Set("counter", 5); err != nil {
		t.Fatal(err)
	}
	if v, _ := b.Get("counter"); v != 5 {
		t.Errorf("sibling scope sees counter = %v, want 5", v)
	}
	if err := a.Set("nope", 1); err != (errs.NoSuchPath{Path: "nope"}) {
		t.Errorf("Set of an unbound name returned %v", err)
	}
}

func TestScope_GlobalValue(t *testing.T) {
	root := NewRoot()
	types := root.NewNamespace("types")
	dict := types.NewNamespace("dict")
	dict.Declare("len", "the len command")

	if diff := cmp.Diff([]string{"global", "types", "dict"}, dict.Path()); diff != "" {
		t.Errorf("namespace path (-want +got):\n%s", diff)
	}

	child := root.NewChild().NewChild()
	v, err := child.GlobalValue([]string{"global", "types", "dict", "len"})
	if err != nil || v != "the len command" {
		t.Errorf("GlobalValue -> (%v, %v)", v, err)
	}
	if v, _ := child.GlobalValue([]string{"global"}); v != root {
		t.Errorf("GlobalValue(global) is not the root")
	}

	for _, path := range [][]string{
		nil,
		{"types"},
		{"global", "types", "list", "len"},
		{"global", "types", "dict", "len", "deeper"},
	} {
		_, err := child.GlobalValue(path)
		if err != errs.NoSuchPathOf(path) {
			t.Errorf("GlobalValue(%q) -> %v, want NoSuchPath", path, err)
		}
	}
}

func TestScope_Names(t *testing.T) {
	s := NewRoot().NewChild()
	s.Declare("b", 1)
	s.Declare("a", 2)
	if diff := cmp.Diff([]string{"a", "b"}, s.Names()); diff != "" {
		t.Errorf("Names (-want +got):\n%s", diff)
	}
	if s.Path() != nil {
		t.Errorf("anonymous scope has a path")
	}
	if s.Repr(0) != "<scope>" || NewRoot().Repr(0) != "<scope global>" {
		t.Errorf("unexpected Repr")
	}
}

func TestScope_ConcurrentDeclare(t *testing.T) {
	s := NewRoot()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Declare(string(rune('a'+i)), i)
			s.Get("a")
		}(i)
	}
	wg.Wait()
	if len(s.Names()) != 20 {
		t.Errorf("got %d names, want 20", len(s.Names()))
	}
}
