package eval

import (
	"unsafe"

	"src.crush.sh/pkg/eval/vals"
	"src.crush.sh/pkg/persistent/hash"
)

// A command bound to a receiver, the result of method lookup. Everything
// except invocation and serialization is delegated to the inner command.
type boundCommand struct {
	command Command
	this    any
}

func (c *boundCommand) Invoke(ctx *Context) error {
	bound := *ctx
	bound.This = c.this
	return c.command.Invoke(&bound)
}

func (c *boundCommand) CanBlock(args []ArgumentDefinition, cc *CompileContext) bool {
	return c.command.CanBlock(args, cc)
}

func (c *boundCommand) Name() string { return c.command.Name() }

func (c *boundCommand) Copy() Command {
	return &boundCommand{command: c.command.Copy(), this: c.this}
}

func (c *boundCommand) Help() Help { return c.command.Help() }

// Serialize writes the receiver, then the inner command, then the node
// binding the two.
func (c *boundCommand) Serialize(st *SerializationState) (int, error) {
	this, err := SerializeValue(c.this, st)
	if err != nil {
		return 0, err
	}
	command, err := c.command.Serialize(st)
	if err != nil {
		return 0, err
	}
	return st.push(Element{BoundCommand: &BoundCommand{This: this, Command: command}}), nil
}

// Bind replaces the receiver; bindings do not stack.
func (c *boundCommand) Bind(this any) Command {
	return &boundCommand{command: c.command.Copy(), this: this}
}

func (c *boundCommand) Output(input OutputType) (vals.Type, bool) {
	return c.command.Output(input)
}

// This returns the receiver.
func (c *boundCommand) This() any { return c.this }

// Equal compares identity.
func (c *boundCommand) Equal(other any) bool { return c == other }

// Hash hashes the address.
func (c *boundCommand) Hash() uint32 { return hash.Pointer(unsafe.Pointer(c)) }

// Type returns vals.Command.
func (c *boundCommand) Type() vals.Type { return vals.Command }

// Repr returns "<bound $receiver $command>".
func (c *boundCommand) Repr(indent int) string {
	return "<bound " + vals.Repr(c.this, indent+1) + " " + vals.Repr(c.command, indent+1) + ">"
}
