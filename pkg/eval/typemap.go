package eval

import (
	"src.crush.sh/pkg/eval/scope"
)

// TypeMap holds a family of native commands, such as the methods of a type,
// keyed by the last segment of their paths. Declaring a name again replaces
// the earlier command but keeps its position.
type TypeMap struct {
	names    []string
	commands map[string]Command
}

// NewTypeMap returns an empty TypeMap.
func NewTypeMap() *TypeMap {
	return &TypeMap{commands: make(map[string]Command)}
}

// Declare creates a native command with the given full path and adds it
// under the last segment of the path. Segments before the last one are only
// recorded as part of the path. It panics if path is empty.
func (m *TypeMap) Declare(path []string, call Func, canBlock bool, signature, shortHelp, longHelp string, output OutputType) {
	m.Add(lastSegment(path), NewCommand(call, canBlock, path, signature, shortHelp, longHelp, output))
}

// DeclareCondition is like Declare, but creates a conditional command.
func (m *TypeMap) DeclareCondition(path []string, call Func, signature, shortHelp, longHelp string) {
	m.Add(lastSegment(path), NewCondition(call, path, signature, shortHelp, longHelp))
}

func lastSegment(path []string) string {
	if len(path) == 0 {
		panic("eval: command declared with an empty path")
	}
	return path[len(path)-1]
}

// Add adds a command under a name.
func (m *TypeMap) Add(name string, c Command) {
	if _, ok := m.commands[name]; !ok {
		m.names = append(m.names, name)
	}
	m.commands[name] = c
}

// Get returns the command with the given name.
func (m *TypeMap) Get(name string) (Command, bool) {
	c, ok := m.commands[name]
	return c, ok
}

// Len returns the number of commands.
func (m *TypeMap) Len() int { return len(m.names) }

// Names returns the names in the order they were first declared.
func (m *TypeMap) Names() []string {
	return append([]string(nil), m.names...)
}

// Install declares every command in ns.
func (m *TypeMap) Install(ns *scope.Scope) {
	for _, name := range m.names {
		ns.Declare(name, m.commands[name])
	}
}
