package eval

import (
	"src.crush.sh/pkg/eval/vals"
)

type outputKind int8

const (
	unknownOutput outputKind = iota
	knownOutput
	passthroughOutput
)

// OutputType statically describes the values a command outputs. It is either
// unknown, a known type, or "passthrough", meaning the output has the same
// shape as the input.
type OutputType struct {
	kind outputKind
	t    vals.Type
}

var (
	// UnknownOutput is the output type of commands that declare nothing.
	UnknownOutput = OutputType{}
	// PassthroughOutput is the output type of commands whose output has the
	// same shape as their input.
	PassthroughOutput = OutputType{kind: passthroughOutput}
)

// KnownOutput returns an OutputType declaring a fixed output type.
func KnownOutput(t vals.Type) OutputType {
	return OutputType{kind: knownOutput, t: t}
}

// Calculate resolves o against the output type of the upstream command.
//
// A passthrough type asks the input for its own resolution against an unknown
// input, so a chain of passthrough types never recurses more than once.
func (o OutputType) Calculate(input OutputType) (vals.Type, bool) {
	switch o.kind {
	case knownOutput:
		return o.t, true
	case passthroughOutput:
		return input.Calculate(UnknownOutput)
	default:
		return vals.Type{}, false
	}
}

// Format returns the line shown in help texts, or false for unknown output
// types.
func (o OutputType) Format() (string, bool) {
	switch o.kind {
	case knownOutput:
		return "    Output: " + o.t.String(), true
	case passthroughOutput:
		return "    Output: A stream with the same columns as the input", true
	default:
		return "", false
	}
}

func (o OutputType) String() string {
	switch o.kind {
	case knownOutput:
		return "known " + o.t.String()
	case passthroughOutput:
		return "passthrough"
	default:
		return "unknown"
	}
}

// Returns the OutputType downstream commands see after a command resolved
// its output to (t, ok).
func resolvedOutput(t vals.Type, ok bool) OutputType {
	if !ok {
		return UnknownOutput
	}
	return KnownOutput(t)
}
