package vals

import (
	"sync"
	"testing"

	"src.crush.sh/pkg/eval/errs"
)

func TestNewDict_RejectsUnhashableKeyType(t *testing.T) {
	_, err := NewDict(ListOf(String), Integer)
	want := errs.BadValue{What: "key type", Valid: "hashable type", Actual: "list string"}
	if err != want {
		t.Errorf("got err %v, want %v", err, want)
	}
}

func TestDict(t *testing.T) {
	d, err := NewDict(String, Integer)
	if err != nil {
		t.Fatal(err)
	}
	mustInsert(t, d, "a", 1)
	mustInsert(t, d, "b", 2)
	mustInsert(t, d, "a", 3)

	if d.Len() != 2 {
		t.Errorf("Len() -> %d, want 2", d.Len())
	}
	if v, ok := d.Get("a"); !ok || v != 3 {
		t.Errorf("Get(a) -> (%v, %v), want (3, true)", v, ok)
	}
	if err := d.Insert(1, 1); err == nil {
		t.Errorf("Insert with a key of the wrong type succeeded")
	}
	if err := d.Insert("c", "x"); err == nil {
		t.Errorf("Insert with a value of the wrong type succeeded")
	}

	c := d.Copy()
	if v, ok := d.Remove("b"); !ok || v != 2 {
		t.Errorf("Remove(b) -> (%v, %v), want (2, true)", v, ok)
	}
	if _, ok := d.Remove("b"); ok {
		t.Errorf("Remove(b) succeeded twice")
	}
	if c.Len() != 2 {
		t.Errorf("copy observed a mutation of the original")
	}
	if Equal(c, d) {
		t.Errorf("copy is equal to the original")
	}

	d.Clear()
	if d.Len() != 0 {
		t.Errorf("Len() after Clear -> %d, want 0", d.Len())
	}
}

func TestDict_Repr(t *testing.T) {
	d, _ := NewDict(String, Integer)
	if got := d.Repr(0); got != "[&]" {
		t.Errorf("Repr of empty dict -> %q", got)
	}
	mustInsert(t, d, "a", 1)
	if got := d.Repr(0); got != `[&"a"=1]` {
		t.Errorf("Repr -> %q", got)
	}
}

func TestDict_ConcurrentInsert(t *testing.T) {
	d, _ := NewDict(Integer, Integer)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			d.Insert(i, i*i)
		}(i)
	}
	wg.Wait()
	if d.Len() != 50 {
		t.Errorf("Len() -> %d, want 50", d.Len())
	}
}

func mustInsert(t *testing.T, d *Dict, k, v any) {
	t.Helper()
	if err := d.Insert(k, v); err != nil {
		t.Fatal(err)
	}
}
