package vals

import (
	"src.crush.sh/pkg/persistent/hash"
)

// Equaler wraps the Equal method.
type Equaler interface {
	// Equal compares the receiver to another value. Two equal values must have
	// the same hash code.
	Equal(other any) bool
}

// Hasher wraps the Hash method.
type Hasher interface {
	// Hash computes the hash code of the receiver.
	Hash() uint32
}

// Equal returns whether two values are equal. It is implemented for nil, bool,
// int, string, List, and types satisfying the Equaler interface. Other values
// are compared with ==, which means identity for pointers.
func Equal(x, y any) bool {
	switch x := x.(type) {
	case nil:
		return y == nil
	case bool:
		return x == y
	case int:
		return x == y
	case string:
		return x == y
	case Equaler:
		return x.Equal(y)
	case List:
		if yy, ok := y.(List); ok {
			return equalList(x, yy)
		}
		return false
	default:
		return x == y
	}
}

func equalList(x, y List) bool {
	if x.Len() != y.Len() {
		return false
	}
	ix := x.Iterator()
	iy := y.Iterator()
	for ix.HasElem() && iy.HasElem() {
		if !Equal(ix.Elem(), iy.Elem()) {
			return false
		}
		ix.Next()
		iy.Next()
	}
	return true
}

// Hash returns the 32-bit hash of a value. It is implemented for nil, bool,
// int, string, Type, List and types satisfying the Hasher interface. For other
// values, it returns 0, which is correct but slow.
func Hash(v any) uint32 {
	switch v := v.(type) {
	case nil:
		return 0
	case bool:
		if v {
			return 1
		}
		return 0
	case int:
		return hash.DJB(uint32(v), uint32(uint64(v)>>32))
	case string:
		return hash.String(v)
	case Type:
		return hash.DJB(uint32(v.Kind), hashParam(v.Key), hashParam(v.Elem))
	case Hasher:
		return v.Hash()
	case List:
		h := hash.DJBInit
		for it := v.Iterator(); it.HasElem(); it.Next() {
			h = hash.DJBCombine(h, Hash(it.Elem()))
		}
		return h
	default:
		return 0
	}
}

func hashParam(t *Type) uint32 {
	if t == nil || (t.Kind == EmptyKind && t.Key == nil && t.Elem == nil) {
		return 0
	}
	return Hash(*t)
}
