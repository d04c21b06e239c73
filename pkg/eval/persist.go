package eval

import (
	"fmt"

	"src.crush.sh/pkg/eval/scope"
	"src.crush.sh/pkg/store/storedefs"
)

// SaveCommand serializes a command and stores it under a name.
func SaveCommand(st storedefs.Store, name string, c Command) error {
	g, err := SerializeCommand(c)
	if err != nil {
		return fmt.Errorf("serialize %s: %w", name, err)
	}
	data, err := g.Encode()
	if err != nil {
		return err
	}
	logger.Printf("saving %s: %d nodes, %d bytes", name, len(g.Elements), len(data))
	return st.PutGraph(name, data)
}

// LoadCommand loads the command stored under a name, resolving native
// commands in env.
func LoadCommand(st storedefs.Store, name string, env *scope.Scope) (Command, error) {
	data, err := st.Graph(name)
	if err != nil {
		return nil, err
	}
	g, err := DecodeGraph(data)
	if err != nil {
		return nil, err
	}
	c, err := DeserializeCommand(g.Root, g.Elements, NewDeserializationState(env))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	return c, nil
}
