// Package scope implements lexical environments.
//
// A Scope maps names to values and may have a parent, consulted when a name
// is not found locally. Children point to their parents but parents never
// point to their children, so a scope stays alive exactly as long as some
// child, closure or namespace binding refers to it.
//
// Scopes are shared: closures keep a reference to the scope they were
// defined in, and observe later changes made through that scope. All methods
// are safe for concurrent use.
package scope

import (
	"sort"
	"strings"
	"sync"
	"unsafe"

	"src.crush.sh/pkg/eval/errs"
	"src.crush.sh/pkg/eval/vals"
	"src.crush.sh/pkg/persistent/hash"
)

// RootName is the first segment of every global path.
const RootName = "global"

// Scope is a lexical environment.
type Scope struct {
	parent *Scope
	// Path from the root for namespaces reachable from it; nil for anonymous
	// scopes such as the ones created for closure invocations.
	path []string

	mu    sync.RWMutex
	names map[string]any
}

// NewRoot creates a root scope.
func NewRoot() *Scope {
	return &Scope{path: []string{RootName}, names: make(map[string]any)}
}

// New creates an anonymous scope without a parent.
func New() *Scope {
	return &Scope{names: make(map[string]any)}
}

// NewChild creates an anonymous scope whose parent is s.
func (s *Scope) NewChild() *Scope {
	return &Scope{parent: s, names: make(map[string]any)}
}

// NewNamespace creates a scope without a parent and declares it in s under
// the given name. If s has a path, the namespace's path is that path followed
// by name.
func (s *Scope) NewNamespace(name string) *Scope {
	ns := &Scope{names: make(map[string]any)}
	if s.path != nil {
		ns.path = append(append([]string(nil), s.path...), name)
	}
	s.Declare(name, ns)
	return ns
}

// Parent returns the parent scope, or nil.
func (s *Scope) Parent() *Scope { return s.parent }

// Root follows the parent chain to its end.
func (s *Scope) Root() *Scope {
	for s.parent != nil {
		s = s.parent
	}
	return s
}

// Path returns the path of a namespace scope, or nil for anonymous scopes.
func (s *Scope) Path() []string { return s.path }

// Declare binds a name in this scope, replacing any previous local binding.
func (s *Scope) Declare(name string, v any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.names[name] = v
}

// Set assigns to an existing binding, found by following the parent chain.
func (s *Scope) Set(name string, v any) error {
	for cur := s; cur != nil; cur = cur.parent {
		cur.mu.Lock()
		if _, ok := cur.names[name]; ok {
			cur.names[name] = v
			cur.mu.Unlock()
			return nil
		}
		cur.mu.Unlock()
	}
	return errs.NoSuchPath{Path: name}
}

// Get looks up a name, following the parent chain.
func (s *Scope) Get(name string) (any, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if v, ok := cur.Local(name); ok {
			return v, true
		}
	}
	return nil, false
}

// Local looks up a name in this scope only.
func (s *Scope) Local(name string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.names[name]
	return v, ok
}

// Names returns the locally bound names in sorted order.
func (s *Scope) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.names))
	for name := range s.names {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GlobalValue resolves a path starting at the root of s. The first element
// must be RootName; each following element names a binding in the namespace
// found so far.
func (s *Scope) GlobalValue(path []string) (any, error) {
	if len(path) == 0 || path[0] != RootName {
		return nil, errs.NoSuchPathOf(path)
	}
	var cur any = s.Root()
	for _, name := range path[1:] {
		ns, ok := cur.(*Scope)
		if !ok {
			return nil, errs.NoSuchPathOf(path)
		}
		cur, ok = ns.Local(name)
		if !ok {
			return nil, errs.NoSuchPathOf(path)
		}
	}
	return cur, nil
}

// Type returns vals.Scope.
func (s *Scope) Type() vals.Type { return vals.Scope }

// Hash hashes the address.
func (s *Scope) Hash() uint32 { return hash.Pointer(unsafe.Pointer(s)) }

// Repr returns "<scope path>" for namespaces and "<scope>" otherwise.
func (s *Scope) Repr(int) string {
	if s.path == nil {
		return "<scope>"
	}
	return "<scope " + strings.Join(s.path, ":") + ">"
}
