package eval

import (
	"src.crush.sh/pkg/eval/errs"
	"src.crush.sh/pkg/eval/scope"
	"src.crush.sh/pkg/eval/vals"
)

// TypesNsName is the name of the namespace, directly under the root scope,
// holding one namespace of methods per value kind.
const TypesNsName = "types"

// MethodPath returns the global path of the method with the given name for
// values of the given kind.
func MethodPath(kind vals.Kind, name string) []string {
	return []string{scope.RootName, TypesNsName, kind.String(), name}
}

// LookupMethod finds the method for a value. Methods of type values are the
// methods of the kind they describe, which is how constructors like
// "(dict string integer):new" are found.
func LookupMethod(sc *scope.Scope, v any, name string) (Command, error) {
	kind := vals.TypeOf(v).Kind
	if t, ok := v.(vals.Type); ok {
		kind = t.Kind
	}
	path := MethodPath(kind, name)
	m, err := sc.GlobalValue(path)
	if err != nil {
		return nil, err
	}
	c, ok := m.(Command)
	if !ok {
		return nil, errs.TypeMismatch{
			What: "method " + name, Want: "command", Actual: vals.TypeOf(m).String()}
	}
	return c, nil
}

func getAttr(sc *scope.Scope, v any, name string) (any, error) {
	if ns, ok := v.(*scope.Scope); ok {
		member, ok := ns.Local(name)
		if !ok {
			return nil, errs.NoSuchPath{Path: name}
		}
		return member, nil
	}
	m, err := LookupMethod(sc, v, name)
	if err != nil {
		return nil, err
	}
	return m.Bind(v), nil
}

// Converts a value found in command position to a command. Type values are
// invoked through their __call__ method.
func commandOf(sc *scope.Scope, v any) (Command, error) {
	switch v := v.(type) {
	case Command:
		return v, nil
	case vals.Type:
		m, err := LookupMethod(sc, v, "__call__")
		if err != nil {
			return nil, err
		}
		return m.Bind(v), nil
	default:
		return nil, errs.TypeMismatch{
			What: "invoked value", Want: "command", Actual: vals.TypeOf(v).String()}
	}
}
