package eval

// Element is a node of a serialized graph. Exactly one field is set. Fields
// holding integers other than literal values are indices of earlier nodes in
// the same graph.
type Element struct {
	Command      *Strings             `yaml:"command,omitempty"`
	BoundCommand *BoundCommand        `yaml:"bound_command,omitempty"`
	Closure      *ClosureElement      `yaml:"closure,omitempty"`
	Empty        bool                 `yaml:"empty,omitempty"`
	Bool         *bool                `yaml:"bool,omitempty"`
	Integer      *int                 `yaml:"integer,omitempty"`
	String       *string              `yaml:"string,omitempty"`
	Type         *TypeElement         `yaml:"type,omitempty"`
	Dict         *DictElement         `yaml:"dict,omitempty"`
	List         *ListElement         `yaml:"list,omitempty"`
	Scope        *ScopeElement        `yaml:"scope,omitempty"`
	ScopePath    *Strings             `yaml:"scope_path,omitempty"`
	ScopeMembers *ScopeMembersElement `yaml:"scope_members,omitempty"`
	Job          *JobElement          `yaml:"job,omitempty"`
	// Expressions inside closure bodies.
	ValueDefinition *ValueDefinitionElement `yaml:"value_definition,omitempty"`
}

// Kind returns the name of the field that is set, or "" for an empty node.
func (e Element) Kind() string {
	switch {
	case e.Command != nil:
		return "command"
	case e.BoundCommand != nil:
		return "bound_command"
	case e.Closure != nil:
		return "closure"
	case e.Empty:
		return "empty"
	case e.Bool != nil:
		return "bool"
	case e.Integer != nil:
		return "integer"
	case e.String != nil:
		return "string"
	case e.Type != nil:
		return "type"
	case e.Dict != nil:
		return "dict"
	case e.List != nil:
		return "list"
	case e.Scope != nil:
		return "scope"
	case e.ScopePath != nil:
		return "scope_path"
	case e.ScopeMembers != nil:
		return "scope_members"
	case e.Job != nil:
		return "job"
	case e.ValueDefinition != nil:
		return "value_definition"
	default:
		return ""
	}
}

// Strings is a path of names.
type Strings struct {
	Elements []string `yaml:"elements,flow"`
}

// BoundCommand binds the command at node Command to the value at node This.
type BoundCommand struct {
	This    int `yaml:"this"`
	Command int `yaml:"command"`
}

// ClosureElement is a closure value. Env is the captured scope.
type ClosureElement struct {
	Name         string             `yaml:"name,omitempty"`
	Env          int                `yaml:"env"`
	HasSignature bool               `yaml:"has_signature,omitempty"`
	Signature    []ParameterElement `yaml:"signature,omitempty"`
	Jobs         []int              `yaml:"jobs,flow"`
}

// ParameterElement is a closure parameter. Type and Default point to
// value_definition nodes.
type ParameterElement struct {
	Kind    string `yaml:"kind"`
	Name    string `yaml:"name"`
	Type    *int   `yaml:"type,omitempty"`
	Default *int   `yaml:"default,omitempty"`
}

// TypeElement is a type, written inline rather than as separate nodes.
type TypeElement struct {
	Kind string       `yaml:"kind"`
	Key  *TypeElement `yaml:"key,omitempty"`
	Elem *TypeElement `yaml:"elem,omitempty"`
}

// DictElement is a dict; Keys and Values are parallel.
type DictElement struct {
	KeyType   TypeElement `yaml:"key_type"`
	ValueType TypeElement `yaml:"value_type"`
	Keys      []int       `yaml:"keys,flow"`
	Values    []int       `yaml:"values,flow"`
}

// ListElement is a list.
type ListElement struct {
	Values []int `yaml:"values,flow"`
}

// ScopeElement is an anonymous scope without bindings. Its bindings are
// added by a later scope_members node.
type ScopeElement struct {
	Parent *int `yaml:"parent,omitempty"`
}

// ScopeMembersElement declares bindings in the scope at node Scope.
type ScopeMembersElement struct {
	Scope  int      `yaml:"scope"`
	Names  []string `yaml:"names,flow"`
	Values []int    `yaml:"values,flow"`
}

// JobElement is a pipeline.
type JobElement struct {
	Invocations []InvocationElement `yaml:"invocations"`
}

// InvocationElement is a pipeline stage. Command and the argument values
// point to value_definition nodes.
type InvocationElement struct {
	Command   int               `yaml:"command"`
	Arguments []ArgumentElement `yaml:"arguments,omitempty"`
}

// ArgumentElement is an argument expression.
type ArgumentElement struct {
	Name  string `yaml:"name,omitempty"`
	Value int    `yaml:"value"`
}

// ValueDefinitionElement is an expression. Exactly one field is set.
type ValueDefinitionElement struct {
	Literal      *int                      `yaml:"literal,omitempty"`
	Lookup       *string                   `yaml:"lookup,omitempty"`
	GetAttr      *GetAttrElement           `yaml:"get_attr,omitempty"`
	Substitution *int                      `yaml:"substitution,omitempty"`
	Closure      *ClosureDefinitionElement `yaml:"closure,omitempty"`
}

// GetAttrElement is a member access on the expression at node Parent.
type GetAttrElement struct {
	Parent int    `yaml:"parent"`
	Name   string `yaml:"name"`
}

// ClosureDefinitionElement is a closure literal.
type ClosureDefinitionElement struct {
	Name         string             `yaml:"name,omitempty"`
	HasSignature bool               `yaml:"has_signature,omitempty"`
	Signature    []ParameterElement `yaml:"signature,omitempty"`
	Jobs         []int              `yaml:"jobs,flow"`
}
