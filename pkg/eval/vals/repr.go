package vals

import (
	"fmt"
	"strconv"
	"strings"
)

// Reprer wraps the Repr method.
type Reprer interface {
	// Repr returns a string that represents a value, either a literal of the
	// value or a string enclosed in "<>" containing its kind and identity.
	Repr(indent int) string
}

// Repr returns the representation of a value. The indent argument is passed
// on to Reprer implementations; the builtin types ignore it.
func Repr(v any, indent int) string {
	switch v := v.(type) {
	case nil:
		return "$empty"
	case bool:
		if v {
			return "$true"
		}
		return "$false"
	case int:
		return strconv.Itoa(v)
	case string:
		return strconv.Quote(v)
	case Reprer:
		return v.Repr(indent)
	case List:
		var b strings.Builder
		b.WriteString("[")
		for it := v.Iterator(); it.HasElem(); it.Next() {
			if b.Len() > 1 {
				b.WriteString(" ")
			}
			b.WriteString(Repr(it.Elem(), indent+1))
		}
		b.WriteString("]")
		return b.String()
	default:
		return fmt.Sprintf("<unknown %v>", v)
	}
}

// ReprPlain is like Repr, but without pretty-printing.
func ReprPlain(v any) string {
	return Repr(v, -1)
}
