package eval

import (
	"src.crush.sh/pkg/eval/vals"
)

// Command is a callable value. Native Go functions, conditional forms,
// closures and commands bound to a receiver all implement it.
//
// Commands are immutable values: Bind and Copy always return new commands.
type Command interface {
	// Invoke runs the command. Results are sent to ctx.Output; the returned
	// error is the only other result.
	Invoke(ctx *Context) error
	// CanBlock reports whether an invocation with the given argument
	// expressions may block, which lets a scheduler decide whether it
	// deserves a goroutine of its own.
	CanBlock(args []ArgumentDefinition, cc *CompileContext) bool
	// Name returns a label for the kind of command, used in diagnostics.
	Name() string
	// Copy returns an independent duplicate. Captured scopes are shared with
	// the duplicate, not copied.
	Copy() Command
	// Help returns the help texts of the command.
	Help() Help
	// Serialize appends the nodes representing the command to the state and
	// returns the index of the node for the command itself.
	Serialize(st *SerializationState) (int, error)
	// Bind returns a new command that invokes this one with the given
	// receiver.
	Bind(this any) Command
	// Output resolves the output type of the command, given the output type
	// of the upstream command.
	Output(input OutputType) (vals.Type, bool)
}

// Help provides the help texts of a command.
type Help interface {
	Signature() string
	ShortHelp() string
	// LongHelp returns the expanded help, or false if there is none.
	LongHelp() (string, bool)
}

// Func is the signature of Go functions implementing native commands.
type Func func(ctx *Context) error

func bind(c Command, this any) Command {
	return &boundCommand{command: c.Copy(), this: this}
}

// HelpText renders all the help of a command: the signature, the short help
// and, if present, the long help, separated by blank lines.
func HelpText(c Command) string {
	h := c.Help()
	text := h.Signature() + "\n\n" + h.ShortHelp()
	if long, ok := h.LongHelp(); ok {
		text += "\n\n" + long
	}
	return text
}
