package vals

import (
	"src.crush.sh/pkg/persistent/vector"
)

// List is an alias for the underlying type used for lists.
type List = vector.Vector

// EmptyList is an empty list.
var EmptyList = vector.Empty

// MakeList creates a new List from values.
func MakeList(vs ...any) List {
	vec := vector.Empty
	for _, v := range vs {
		vec = vec.Conj(v)
	}
	return vec
}

// ListElems returns the elements of a list as a slice.
func ListElems(l List) []any {
	vs := make([]any, 0, l.Len())
	for it := l.Iterator(); it.HasElem(); it.Next() {
		vs = append(vs, it.Elem())
	}
	return vs
}
