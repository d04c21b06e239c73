package eval

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"src.crush.sh/pkg/eval/scope"
	"src.crush.sh/pkg/eval/vals"
	"src.crush.sh/pkg/logutil"
)

var logger = logutil.GetLogger("[eval] ")

// ErrCyclicValue is returned when serializing a value that contains itself
// through something other than a scope.
var ErrCyclicValue = errors.New("cannot serialize a value that contains itself")

// SerializationState is threaded through one serialization pass. Nodes are
// appended to Elements and only ever refer to earlier nodes.
//
// Anonymous scopes, closures and dicts are serialized once per pass and
// referred to by index afterwards. The bindings of anonymous scopes are
// written by Flush, after every node that may be among their values.
//
// A SerializationState must not be used concurrently.
type SerializationState struct {
	Elements []Element

	memo          map[any]int
	inProgress    map[any]bool
	pendingScopes []*scope.Scope
}

// NewSerializationState returns an empty state.
func NewSerializationState() *SerializationState {
	return &SerializationState{memo: make(map[any]int), inProgress: make(map[any]bool)}
}

func (st *SerializationState) push(e Element) int {
	st.Elements = append(st.Elements, e)
	return len(st.Elements) - 1
}

// Calls f to serialize the value identified by key, unless it has already
// been serialized in this pass.
func (st *SerializationState) memoize(key any, f func() (int, error)) (int, error) {
	if i, ok := st.memo[key]; ok {
		return i, nil
	}
	if st.inProgress[key] {
		return 0, ErrCyclicValue
	}
	st.inProgress[key] = true
	i, err := f()
	delete(st.inProgress, key)
	if err != nil {
		return 0, err
	}
	st.memo[key] = i
	return i, nil
}

// Flush writes the bindings of all anonymous scopes serialized so far,
// including the ones reached while doing so.
func (st *SerializationState) Flush() error {
	for len(st.pendingScopes) > 0 {
		sc := st.pendingScopes[0]
		st.pendingScopes = st.pendingScopes[1:]
		members := &ScopeMembersElement{Scope: st.memo[sc]}
		for _, name := range sc.Names() {
			v, _ := sc.Local(name)
			i, err := SerializeValue(v, st)
			if err != nil {
				return fmt.Errorf("serialize %s: %w", name, err)
			}
			members.Names = append(members.Names, name)
			members.Values = append(members.Values, i)
		}
		st.push(Element{ScopeMembers: members})
	}
	return nil
}

func (st *SerializationState) serializeScope(sc *scope.Scope) (int, error) {
	if path := sc.Path(); path != nil {
		return st.memoize(sc, func() (int, error) {
			return st.push(Element{ScopePath: &Strings{Elements: path}}), nil
		})
	}
	return st.memoize(sc, func() (int, error) {
		e := &ScopeElement{}
		if parent := sc.Parent(); parent != nil {
			i, err := st.serializeScope(parent)
			if err != nil {
				return 0, err
			}
			e.Parent = &i
		}
		st.pendingScopes = append(st.pendingScopes, sc)
		return st.push(Element{Scope: e}), nil
	})
}

// SerializeValue appends the nodes representing v and returns the index of
// the node for v itself.
func SerializeValue(v any, st *SerializationState) (int, error) {
	switch v := v.(type) {
	case nil:
		return st.push(Element{Empty: true}), nil
	case bool:
		return st.push(Element{Bool: &v}), nil
	case int:
		return st.push(Element{Integer: &v}), nil
	case string:
		return st.push(Element{String: &v}), nil
	case vals.Type:
		e := typeElement(v)
		return st.push(Element{Type: &e}), nil
	case *vals.Dict:
		return st.memoize(v, func() (int, error) {
			e := &DictElement{KeyType: typeElement(v.KeyType()), ValueType: typeElement(v.ValueType())}
			var err error
			v.Iterate(func(key, value any) bool {
				var k, i int
				if k, err = SerializeValue(key, st); err != nil {
					return false
				}
				if i, err = SerializeValue(value, st); err != nil {
					return false
				}
				e.Keys = append(e.Keys, k)
				e.Values = append(e.Values, i)
				return true
			})
			if err != nil {
				return 0, err
			}
			return st.push(Element{Dict: e}), nil
		})
	case vals.List:
		e := &ListElement{}
		for _, elem := range vals.ListElems(v) {
			i, err := SerializeValue(elem, st)
			if err != nil {
				return 0, err
			}
			e.Values = append(e.Values, i)
		}
		return st.push(Element{List: e}), nil
	case *scope.Scope:
		return st.serializeScope(v)
	case Command:
		return v.Serialize(st)
	default:
		return 0, fmt.Errorf("cannot serialize value of Go type %T", v)
	}
}

func typeElement(t vals.Type) TypeElement {
	e := TypeElement{Kind: t.Kind.String()}
	if t.Key != nil {
		key := typeElement(*t.Key)
		e.Key = &key
	}
	if t.Elem != nil {
		elem := typeElement(*t.Elem)
		e.Elem = &elem
	}
	return e
}

func (j Job) serialize(st *SerializationState) (int, error) {
	e := &JobElement{}
	for _, inv := range j.Invocations {
		cmd, err := inv.Command.serialize(st)
		if err != nil {
			return 0, err
		}
		ie := InvocationElement{Command: cmd}
		for _, arg := range inv.Arguments {
			i, err := arg.Value.serialize(st)
			if err != nil {
				return 0, err
			}
			ie.Arguments = append(ie.Arguments, ArgumentElement{Name: arg.Name, Value: i})
		}
		e.Invocations = append(e.Invocations, ie)
	}
	return st.push(Element{Job: e}), nil
}

func serializeJobs(jobs []Job, st *SerializationState) ([]int, error) {
	indices := make([]int, len(jobs))
	for i, job := range jobs {
		var err error
		if indices[i], err = job.serialize(st); err != nil {
			return nil, err
		}
	}
	return indices, nil
}

func serializeParams(params []Parameter, st *SerializationState) ([]ParameterElement, error) {
	var elements []ParameterElement
	for _, p := range params {
		e := ParameterElement{Kind: p.Kind.String(), Name: p.Name}
		if p.Type != nil {
			i, err := p.Type.serialize(st)
			if err != nil {
				return nil, err
			}
			e.Type = &i
		}
		if p.Default != nil {
			i, err := p.Default.serialize(st)
			if err != nil {
				return nil, err
			}
			e.Default = &i
		}
		elements = append(elements, e)
	}
	return elements, nil
}

func pushValueDefinition(st *SerializationState, e ValueDefinitionElement) int {
	return st.push(Element{ValueDefinition: &e})
}

func (l Literal) serialize(st *SerializationState) (int, error) {
	i, err := SerializeValue(l.Value, st)
	if err != nil {
		return 0, err
	}
	return pushValueDefinition(st, ValueDefinitionElement{Literal: &i}), nil
}

func (l Lookup) serialize(st *SerializationState) (int, error) {
	name := l.Name
	return pushValueDefinition(st, ValueDefinitionElement{Lookup: &name}), nil
}

func (g GetAttr) serialize(st *SerializationState) (int, error) {
	parent, err := g.Parent.serialize(st)
	if err != nil {
		return 0, err
	}
	return pushValueDefinition(st, ValueDefinitionElement{
		GetAttr: &GetAttrElement{Parent: parent, Name: g.Name}}), nil
}

func (s Substitution) serialize(st *SerializationState) (int, error) {
	job, err := s.Job.serialize(st)
	if err != nil {
		return 0, err
	}
	return pushValueDefinition(st, ValueDefinitionElement{Substitution: &job}), nil
}

func (d ClosureDefinition) serialize(st *SerializationState) (int, error) {
	signature, err := serializeParams(d.Params, st)
	if err != nil {
		return 0, err
	}
	jobs, err := serializeJobs(d.Jobs, st)
	if err != nil {
		return 0, err
	}
	return pushValueDefinition(st, ValueDefinitionElement{Closure: &ClosureDefinitionElement{
		Name:         d.Name,
		HasSignature: d.Params != nil,
		Signature:    signature,
		Jobs:         jobs,
	}}), nil
}

// Graph is a complete serialized value: its nodes and the index of the node
// for the value itself.
type Graph struct {
	Root     int       `yaml:"root"`
	Elements []Element `yaml:"elements"`
}

// SerializeGraph serializes a value in a pass of its own.
func SerializeGraph(v any) (*Graph, error) {
	st := NewSerializationState()
	root, err := SerializeValue(v, st)
	if err != nil {
		return nil, err
	}
	if err := st.Flush(); err != nil {
		return nil, err
	}
	logger.Printf("serialized %s into %d nodes", vals.TypeOf(v), len(st.Elements))
	return &Graph{Root: root, Elements: st.Elements}, nil
}

// SerializeCommand serializes a command in a pass of its own.
func SerializeCommand(c Command) (*Graph, error) {
	return SerializeGraph(c)
}

// Encode encodes the graph as YAML.
func (g *Graph) Encode() ([]byte, error) {
	return yaml.Marshal(g)
}

// DecodeGraph decodes a graph encoded with Graph.Encode. Indices are checked
// when the graph is deserialized, not here.
func DecodeGraph(data []byte) (*Graph, error) {
	var g Graph
	if err := yaml.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("decode graph: %w", err)
	}
	return &g, nil
}
