package vals

import (
	"fmt"
	"strings"
)

// Kind classifies values. A Type is a Kind plus, for the container kinds,
// the types of their elements.
type Kind int

// Possible values of Kind.
const (
	EmptyKind Kind = iota
	BoolKind
	IntegerKind
	StringKind
	TypeKind
	DictKind
	ListKind
	CommandKind
	ScopeKind
	AnyKind
)

var kindNames = [...]string{
	EmptyKind:   "empty",
	BoolKind:    "bool",
	IntegerKind: "integer",
	StringKind:  "string",
	TypeKind:    "type",
	DictKind:    "dict",
	ListKind:    "list",
	CommandKind: "command",
	ScopeKind:   "scope",
	AnyKind:     "any",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("!!kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, bool) {
	for i, name := range kindNames {
		if name == s {
			return Kind(i), true
		}
	}
	return 0, false
}

// Type describes the type of a value. The zero value is the empty type.
//
// For DictKind, Key and Elem hold the key and value types; for ListKind, Elem
// holds the element type. A nil or empty parameter means the container type
// has not been parameterized yet.
type Type struct {
	Kind Kind
	Key  *Type
	Elem *Type
}

// Commonly used types.
var (
	Empty   = Type{Kind: EmptyKind}
	Bool    = Type{Kind: BoolKind}
	Integer = Type{Kind: IntegerKind}
	String  = Type{Kind: StringKind}
	TypeT   = Type{Kind: TypeKind}
	Command = Type{Kind: CommandKind}
	Scope   = Type{Kind: ScopeKind}
	Any     = Type{Kind: AnyKind}
)

// DictOf returns a dict type with the given key and value types.
func DictOf(key, value Type) Type {
	return Type{Kind: DictKind, Key: &key, Elem: &value}
}

// ListOf returns a list type with the given element type.
func ListOf(elem Type) Type {
	return Type{Kind: ListKind, Elem: &elem}
}

// DictParams returns the key and value types of a dict type. Missing
// parameters are reported as the empty type.
func (t Type) DictParams() (Type, Type) {
	return deref(t.Key), deref(t.Elem)
}

// ElemType returns the element type of a list type, or the empty type.
func (t Type) ElemType() Type {
	return deref(t.Elem)
}

// IsParameterized reports whether a container type carries element types. A
// dict type whose key and value types are both empty is unparameterized.
func (t Type) IsParameterized() bool {
	return deref(t.Key).Kind != EmptyKind || deref(t.Elem).Kind != EmptyKind
}

func deref(t *Type) Type {
	if t == nil {
		return Empty
	}
	return *t
}

// IsHashable reports whether values of the type may be used as dict keys.
func (t Type) IsHashable() bool {
	switch t.Kind {
	case EmptyKind, BoolKind, IntegerKind, StringKind, TypeKind:
		return true
	default:
		return false
	}
}

// Equal reports whether two types are structurally the same.
func (t Type) Equal(other any) bool {
	o, ok := other.(Type)
	if !ok || t.Kind != o.Kind {
		return false
	}
	return paramEqual(t.Key, o.Key) && paramEqual(t.Elem, o.Elem)
}

func paramEqual(a, b *Type) bool {
	if a == nil && b == nil {
		return true
	}
	return deref(a).Equal(deref(b))
}

// Is reports whether v is a value of this type. The any type matches every
// value, and an unparameterized container type matches every container of
// that kind.
func (t Type) Is(v any) bool {
	if t.Kind == AnyKind {
		return true
	}
	vt := TypeOf(v)
	if vt.Kind != t.Kind {
		return false
	}
	switch t.Kind {
	case DictKind:
		if !t.IsParameterized() {
			return true
		}
		return t.Equal(vt)
	case ListKind:
		if !t.IsParameterized() {
			return true
		}
		for it := v.(List).Iterator(); it.HasElem(); it.Next() {
			if !t.ElemType().Is(it.Elem()) {
				return false
			}
		}
	}
	return true
}

// String returns the name of the type, with parameters in the same syntax
// used to construct them, e.g. "dict string integer".
func (t Type) String() string {
	switch t.Kind {
	case DictKind:
		if !t.IsParameterized() {
			return "dict"
		}
		return fmt.Sprintf("dict %s %s", paren(deref(t.Key)), paren(deref(t.Elem)))
	case ListKind:
		if !t.IsParameterized() {
			return "list"
		}
		return "list " + paren(t.ElemType())
	}
	return t.Kind.String()
}

func paren(t Type) string {
	s := t.String()
	if strings.Contains(s, " ") {
		return "(" + s + ")"
	}
	return s
}

// Repr returns the same as String.
func (t Type) Repr(int) string { return t.String() }

// Typer is implemented by values that know their own type, most notably
// commands and scopes.
type Typer interface {
	Type() Type
}

// TypeOf classifies a value. It is implemented for nil, bool, int, string,
// Type, *Dict, List and values implementing Typer. Other values are reported
// as the any type.
func TypeOf(v any) Type {
	switch v := v.(type) {
	case nil:
		return Empty
	case bool:
		return Bool
	case int:
		return Integer
	case string:
		return String
	case Type:
		return TypeT
	case *Dict:
		return DictOf(v.KeyType(), v.ValueType())
	case List:
		return Type{Kind: ListKind}
	case Typer:
		return v.Type()
	default:
		return Any
	}
}
