package eval

import (
	"strings"
	"unsafe"

	"src.crush.sh/pkg/eval/vals"
	"src.crush.sh/pkg/persistent/hash"
)

// A command implemented by a Go function.
type simpleCommand struct {
	call      Func
	canBlock  bool
	fullName  []string
	signature string
	shortHelp string
	longHelp  string
	output    OutputType
}

// NewCommand creates a native command. The full name is the path under which
// the command is registered, and is what serialization records. An empty
// longHelp means there is no long help.
func NewCommand(call Func, canBlock bool, fullName []string, signature, shortHelp, longHelp string, output OutputType) Command {
	return &simpleCommand{
		call:      call,
		canBlock:  canBlock,
		fullName:  fullName,
		signature: signature,
		shortHelp: shortHelp,
		longHelp:  longHelp,
		output:    output,
	}
}

func (c *simpleCommand) Invoke(ctx *Context) error { return c.call(ctx) }

func (c *simpleCommand) CanBlock([]ArgumentDefinition, *CompileContext) bool {
	return c.canBlock
}

func (c *simpleCommand) Name() string { return "command" }

func (c *simpleCommand) Copy() Command {
	return &simpleCommand{
		call:      c.call,
		canBlock:  c.canBlock,
		fullName:  append([]string(nil), c.fullName...),
		signature: c.signature,
		shortHelp: c.shortHelp,
		longHelp:  c.longHelp,
		output:    c.output,
	}
}

func (c *simpleCommand) Help() Help { return c }

func (c *simpleCommand) Serialize(st *SerializationState) (int, error) {
	return st.push(Element{Command: &Strings{Elements: c.fullName}}), nil
}

func (c *simpleCommand) Bind(this any) Command { return bind(c, this) }

func (c *simpleCommand) Output(input OutputType) (vals.Type, bool) {
	return c.output.Calculate(input)
}

func (c *simpleCommand) Signature() string { return c.signature }

func (c *simpleCommand) ShortHelp() string { return c.shortHelp }

// LongHelp joins the formatted output type and the long help text, either of
// which may be absent.
func (c *simpleCommand) LongHelp() (string, bool) {
	output, hasOutput := c.output.Format()
	switch {
	case hasOutput && c.longHelp != "":
		return output + "\n\n" + c.longHelp, true
	case hasOutput:
		return output, true
	case c.longHelp != "":
		return c.longHelp, true
	default:
		return "", false
	}
}

// FullName returns the path the command is registered under.
func (c *simpleCommand) FullName() []string { return c.fullName }

// Equal always returns false. Native commands are identified by their path,
// never by comparing values.
func (c *simpleCommand) Equal(any) bool { return false }

// Hash hashes the address.
func (c *simpleCommand) Hash() uint32 { return hash.Pointer(unsafe.Pointer(c)) }

// Type returns vals.Command.
func (c *simpleCommand) Type() vals.Type { return vals.Command }

// Repr returns "<command $path>".
func (c *simpleCommand) Repr(int) string {
	return "<command " + strings.Join(c.fullName, ":") + ">"
}

// A native command whose blocking behavior depends on its arguments, used for
// control flow forms like "and" and "or". It never declares an output type.
type conditionCommand struct {
	call      Func
	fullName  []string
	signature string
	shortHelp string
	longHelp  string
}

// NewCondition creates a conditional command. It may block iff any of its
// argument expressions may block.
func NewCondition(call Func, fullName []string, signature, shortHelp, longHelp string) Command {
	return &conditionCommand{
		call:      call,
		fullName:  fullName,
		signature: signature,
		shortHelp: shortHelp,
		longHelp:  longHelp,
	}
}

func (c *conditionCommand) Invoke(ctx *Context) error { return c.call(ctx) }

func (c *conditionCommand) CanBlock(args []ArgumentDefinition, cc *CompileContext) bool {
	for _, arg := range args {
		if arg.Value.CanBlock(args, cc) {
			return true
		}
	}
	return false
}

func (c *conditionCommand) Name() string { return "conditional command" }

func (c *conditionCommand) Copy() Command {
	return &conditionCommand{
		call:      c.call,
		fullName:  append([]string(nil), c.fullName...),
		signature: c.signature,
		shortHelp: c.shortHelp,
		longHelp:  c.longHelp,
	}
}

func (c *conditionCommand) Help() Help { return c }

func (c *conditionCommand) Serialize(st *SerializationState) (int, error) {
	return st.push(Element{Command: &Strings{Elements: c.fullName}}), nil
}

func (c *conditionCommand) Bind(this any) Command { return bind(c, this) }

func (c *conditionCommand) Output(OutputType) (vals.Type, bool) { return vals.Type{}, false }

func (c *conditionCommand) Signature() string { return c.signature }

func (c *conditionCommand) ShortHelp() string { return c.shortHelp }

func (c *conditionCommand) LongHelp() (string, bool) { return c.longHelp, c.longHelp != "" }

// FullName returns the path the command is registered under.
func (c *conditionCommand) FullName() []string { return c.fullName }

// Equal always returns false, like for other native commands.
func (c *conditionCommand) Equal(any) bool { return false }

// Hash hashes the address.
func (c *conditionCommand) Hash() uint32 { return hash.Pointer(unsafe.Pointer(c)) }

// Type returns vals.Command.
func (c *conditionCommand) Type() vals.Type { return vals.Command }

// Repr returns "<command $path>".
func (c *conditionCommand) Repr(int) string {
	return "<command " + strings.Join(c.fullName, ":") + ">"
}
