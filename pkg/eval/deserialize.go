package eval

import (
	"fmt"
	"strings"

	"src.crush.sh/pkg/eval/errs"
	"src.crush.sh/pkg/eval/scope"
	"src.crush.sh/pkg/eval/vals"
)

// GraphError is returned when a serialized graph is malformed.
type GraphError struct {
	Index  int
	Reason string
}

func (e GraphError) Error() string {
	return fmt.Sprintf("bad graph node %d: %s", e.Index, e.Reason)
}

// DeserializationState is threaded through the deserialization of one
// element sequence. Native commands and namespaces are looked up by path in
// Env.
//
// Nodes are reconstructed in order, once each, so shared structure in the
// graph is shared in the result. A DeserializationState must not be used
// concurrently or with more than one element sequence.
type DeserializationState struct {
	Env *scope.Scope

	values []any
	// Indices of scope nodes created in this pass. Only these take
	// scope_members nodes; scopes found by path belong to Env.
	shells map[int]bool
}

// NewDeserializationState returns a state resolving paths in env.
func NewDeserializationState(env *scope.Scope) *DeserializationState {
	return &DeserializationState{Env: env, shells: make(map[int]bool)}
}

// DeserializeValue reconstructs the value at node id. All nodes of the
// sequence are reconstructed the first time it is called, so that bindings
// written after the node are in place.
func DeserializeValue(id int, elements []Element, st *DeserializationState) (any, error) {
	if err := st.decode(elements); err != nil {
		return nil, err
	}
	if id < 0 || id >= len(st.values) {
		return nil, GraphError{id, "no such node"}
	}
	return st.values[id], nil
}

// DeserializeCommand reconstructs the command at node id. A node that does
// not describe a command, or a path that resolves to something other than a
// command, is an error.
func DeserializeCommand(id int, elements []Element, st *DeserializationState) (Command, error) {
	if id < 0 || id >= len(elements) {
		return nil, GraphError{id, "no such node"}
	}
	switch kind := elements[id].Kind(); kind {
	case "command", "bound_command", "closure":
	default:
		return nil, errs.TypeMismatch{What: fmt.Sprintf("node %d", id), Want: "command", Actual: kind}
	}
	v, err := DeserializeValue(id, elements, st)
	if err != nil {
		return nil, err
	}
	return v.(Command), nil
}

// DeserializeGraph reconstructs the root value of a graph.
func DeserializeGraph(g *Graph, env *scope.Scope) (any, error) {
	return DeserializeValue(g.Root, g.Elements, NewDeserializationState(env))
}

func (st *DeserializationState) decode(elements []Element) error {
	if len(st.values) == len(elements) {
		return nil
	}
	for i := len(st.values); i < len(elements); i++ {
		v, err := st.decodeNode(i, elements[i])
		if err != nil {
			return err
		}
		st.values = append(st.values, v)
	}
	logger.Printf("deserialized %d nodes", len(elements))
	return nil
}

// Returns the value of node j, which must come before node i.
func (st *DeserializationState) ref(i, j int) (any, error) {
	if j < 0 || j >= i {
		return nil, GraphError{i, fmt.Sprintf("reference to node %d", j)}
	}
	return st.values[j], nil
}

func (st *DeserializationState) refCommand(i, j int) (Command, error) {
	v, err := st.ref(i, j)
	if err != nil {
		return nil, err
	}
	c, ok := v.(Command)
	if !ok {
		return nil, errs.TypeMismatch{
			What: fmt.Sprintf("node %d", j), Want: "command", Actual: vals.TypeOf(v).String()}
	}
	return c, nil
}

func (st *DeserializationState) refScope(i, j int) (*scope.Scope, error) {
	v, err := st.ref(i, j)
	if err != nil {
		return nil, err
	}
	sc, ok := v.(*scope.Scope)
	if !ok {
		return nil, errs.TypeMismatch{
			What: fmt.Sprintf("node %d", j), Want: "scope", Actual: vals.TypeOf(v).String()}
	}
	return sc, nil
}

func (st *DeserializationState) refJob(i, j int) (Job, error) {
	v, err := st.ref(i, j)
	if err != nil {
		return Job{}, err
	}
	job, ok := v.(Job)
	if !ok {
		return Job{}, GraphError{i, fmt.Sprintf("node %d is not a job", j)}
	}
	return job, nil
}

func (st *DeserializationState) refValueDefinition(i, j int) (ValueDefinition, error) {
	v, err := st.ref(i, j)
	if err != nil {
		return nil, err
	}
	def, ok := v.(ValueDefinition)
	if !ok {
		return nil, GraphError{i, fmt.Sprintf("node %d is not a value definition", j)}
	}
	return def, nil
}

func (st *DeserializationState) decodeNode(i int, e Element) (any, error) {
	switch {
	case e.Command != nil:
		path := e.Command.Elements
		v, err := st.Env.GlobalValue(path)
		if err != nil {
			return nil, err
		}
		c, ok := v.(Command)
		if !ok {
			return nil, errs.TypeMismatch{
				What: strings.Join(path, ":"), Want: "command", Actual: vals.TypeOf(v).String()}
		}
		return c, nil
	case e.BoundCommand != nil:
		this, err := st.ref(i, e.BoundCommand.This)
		if err != nil {
			return nil, err
		}
		c, err := st.refCommand(i, e.BoundCommand.Command)
		if err != nil {
			return nil, err
		}
		return c.Bind(this), nil
	case e.Closure != nil:
		return st.decodeClosure(i, e.Closure)
	case e.Empty:
		return nil, nil
	case e.Bool != nil:
		return *e.Bool, nil
	case e.Integer != nil:
		return *e.Integer, nil
	case e.String != nil:
		return *e.String, nil
	case e.Type != nil:
		return parseTypeElement(i, *e.Type)
	case e.Dict != nil:
		return st.decodeDict(i, e.Dict)
	case e.List != nil:
		vs := make([]any, len(e.List.Values))
		for k, j := range e.List.Values {
			v, err := st.ref(i, j)
			if err != nil {
				return nil, err
			}
			vs[k] = v
		}
		return vals.MakeList(vs...), nil
	case e.Scope != nil:
		if e.Scope.Parent == nil {
			st.shells[i] = true
			return scope.New(), nil
		}
		parent, err := st.refScope(i, *e.Scope.Parent)
		if err != nil {
			return nil, err
		}
		st.shells[i] = true
		return parent.NewChild(), nil
	case e.ScopePath != nil:
		return st.decodeScopePath(e.ScopePath.Elements)
	case e.ScopeMembers != nil:
		m := e.ScopeMembers
		if len(m.Names) != len(m.Values) {
			return nil, GraphError{i, "names and values differ in length"}
		}
		sc, err := st.refScope(i, m.Scope)
		if err != nil {
			return nil, err
		}
		if !st.shells[m.Scope] {
			return nil, GraphError{i, fmt.Sprintf("node %d is not an anonymous scope", m.Scope)}
		}
		for k, name := range m.Names {
			v, err := st.ref(i, m.Values[k])
			if err != nil {
				return nil, err
			}
			sc.Declare(name, v)
		}
		return sc, nil
	case e.Job != nil:
		return st.decodeJob(i, e.Job)
	case e.ValueDefinition != nil:
		return st.decodeValueDefinition(i, e.ValueDefinition)
	default:
		return nil, GraphError{i, "empty node"}
	}
}

func (st *DeserializationState) decodeScopePath(path []string) (*scope.Scope, error) {
	if len(path) == 1 && path[0] == scope.RootName {
		return st.Env.Root(), nil
	}
	v, err := st.Env.GlobalValue(path)
	if err != nil {
		return nil, err
	}
	sc, ok := v.(*scope.Scope)
	if !ok {
		return nil, errs.TypeMismatch{
			What: strings.Join(path, ":"), Want: "scope", Actual: vals.TypeOf(v).String()}
	}
	return sc, nil
}

func parseTypeElement(i int, e TypeElement) (vals.Type, error) {
	kind, ok := vals.ParseKind(e.Kind)
	if !ok {
		return vals.Type{}, GraphError{i, "unknown kind " + e.Kind}
	}
	t := vals.Type{Kind: kind}
	if e.Key != nil {
		key, err := parseTypeElement(i, *e.Key)
		if err != nil {
			return vals.Type{}, err
		}
		t.Key = &key
	}
	if e.Elem != nil {
		elem, err := parseTypeElement(i, *e.Elem)
		if err != nil {
			return vals.Type{}, err
		}
		t.Elem = &elem
	}
	return t, nil
}

func (st *DeserializationState) decodeDict(i int, e *DictElement) (*vals.Dict, error) {
	if len(e.Keys) != len(e.Values) {
		return nil, GraphError{i, "keys and values differ in length"}
	}
	kt, err := parseTypeElement(i, e.KeyType)
	if err != nil {
		return nil, err
	}
	vt, err := parseTypeElement(i, e.ValueType)
	if err != nil {
		return nil, err
	}
	d, err := vals.NewDict(kt, vt)
	if err != nil {
		return nil, err
	}
	for k := range e.Keys {
		key, err := st.ref(i, e.Keys[k])
		if err != nil {
			return nil, err
		}
		value, err := st.ref(i, e.Values[k])
		if err != nil {
			return nil, err
		}
		if err := d.Insert(key, value); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func (st *DeserializationState) decodeClosure(i int, e *ClosureElement) (Command, error) {
	env, err := st.refScope(i, e.Env)
	if err != nil {
		return nil, err
	}
	params, err := st.decodeParams(i, e.HasSignature, e.Signature)
	if err != nil {
		return nil, err
	}
	jobs, err := st.decodeJobs(i, e.Jobs)
	if err != nil {
		return nil, err
	}
	return NewClosure(e.Name, params, jobs, env), nil
}

func (st *DeserializationState) decodeParams(i int, hasSignature bool, elements []ParameterElement) ([]Parameter, error) {
	if !hasSignature {
		return nil, nil
	}
	params := make([]Parameter, len(elements))
	for k, e := range elements {
		kind, ok := parseParameterKind(e.Kind)
		if !ok {
			return nil, GraphError{i, "unknown parameter kind " + e.Kind}
		}
		p := Parameter{Kind: kind, Name: e.Name}
		if e.Type != nil {
			def, err := st.refValueDefinition(i, *e.Type)
			if err != nil {
				return nil, err
			}
			p.Type = def
		}
		if e.Default != nil {
			def, err := st.refValueDefinition(i, *e.Default)
			if err != nil {
				return nil, err
			}
			p.Default = def
		}
		params[k] = p
	}
	return params, nil
}

func (st *DeserializationState) decodeJobs(i int, indices []int) ([]Job, error) {
	jobs := make([]Job, len(indices))
	for k, j := range indices {
		job, err := st.refJob(i, j)
		if err != nil {
			return nil, err
		}
		jobs[k] = job
	}
	return jobs, nil
}

func (st *DeserializationState) decodeJob(i int, e *JobElement) (Job, error) {
	var job Job
	for _, ie := range e.Invocations {
		cmd, err := st.refValueDefinition(i, ie.Command)
		if err != nil {
			return Job{}, err
		}
		inv := Invocation{Command: cmd}
		for _, ae := range ie.Arguments {
			def, err := st.refValueDefinition(i, ae.Value)
			if err != nil {
				return Job{}, err
			}
			inv.Arguments = append(inv.Arguments, ArgumentDefinition{Name: ae.Name, Value: def})
		}
		job.Invocations = append(job.Invocations, inv)
	}
	return job, nil
}

func (st *DeserializationState) decodeValueDefinition(i int, e *ValueDefinitionElement) (ValueDefinition, error) {
	switch {
	case e.Literal != nil:
		v, err := st.ref(i, *e.Literal)
		if err != nil {
			return nil, err
		}
		return Literal{Value: v}, nil
	case e.Lookup != nil:
		return Lookup{Name: *e.Lookup}, nil
	case e.GetAttr != nil:
		parent, err := st.refValueDefinition(i, e.GetAttr.Parent)
		if err != nil {
			return nil, err
		}
		return GetAttr{Parent: parent, Name: e.GetAttr.Name}, nil
	case e.Substitution != nil:
		job, err := st.refJob(i, *e.Substitution)
		if err != nil {
			return nil, err
		}
		return Substitution{Job: job}, nil
	case e.Closure != nil:
		params, err := st.decodeParams(i, e.Closure.HasSignature, e.Closure.Signature)
		if err != nil {
			return nil, err
		}
		jobs, err := st.decodeJobs(i, e.Closure.Jobs)
		if err != nil {
			return nil, err
		}
		return ClosureDefinition{Name: e.Closure.Name, Params: params, Jobs: jobs}, nil
	default:
		return nil, GraphError{i, "empty value definition"}
	}
}
