package eval

// ParameterKind distinguishes ordinary parameters from rest collectors.
type ParameterKind int8

const (
	// NormalParameter is a named parameter, optionally typed and with an
	// optional default.
	NormalParameter ParameterKind = iota
	// NamedRestParameter collects named arguments that match no parameter
	// into a dict.
	NamedRestParameter
	// UnnamedRestParameter collects positional arguments left over after
	// binding into a list.
	UnnamedRestParameter
)

var parameterKindNames = [...]string{"normal", "named_rest", "unnamed_rest"}

func (k ParameterKind) String() string {
	if int(k) < len(parameterKindNames) {
		return parameterKindNames[k]
	}
	return "unknown"
}

func parseParameterKind(s string) (ParameterKind, bool) {
	for i, name := range parameterKindNames {
		if s == name {
			return ParameterKind(i), true
		}
	}
	return 0, false
}

// Parameter is one entry of a closure signature. Type and Default are
// expressions evaluated when the closure is invoked; both may be nil. They
// are only meaningful for NormalParameter.
type Parameter struct {
	Kind    ParameterKind
	Name    string
	Type    ValueDefinition
	Default ValueDefinition
}

// Param returns a normal parameter.
func Param(name string, typ, def ValueDefinition) Parameter {
	return Parameter{Kind: NormalParameter, Name: name, Type: typ, Default: def}
}

// NamedRest returns a parameter collecting extra named arguments.
func NamedRest(name string) Parameter {
	return Parameter{Kind: NamedRestParameter, Name: name}
}

// UnnamedRest returns a parameter collecting extra positional arguments.
func UnnamedRest(name string) Parameter {
	return Parameter{Kind: UnnamedRestParameter, Name: name}
}

// String renders the parameter as it appears in a signature: "name:type=default",
// "@@name" or "@name".
func (p Parameter) String() string {
	switch p.Kind {
	case NamedRestParameter:
		return "@@" + p.Name
	case UnnamedRestParameter:
		return "@" + p.Name
	}
	s := p.Name
	if p.Type != nil {
		s += ":" + p.Type.String()
	}
	if p.Default != nil {
		s += "=" + p.Default.String()
	}
	return s
}
