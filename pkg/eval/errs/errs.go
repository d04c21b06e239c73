// Package errs declares error types used as exception causes.
package errs

import (
	"fmt"
	"strconv"
	"strings"
)

// ArgumentError is implemented by errors caused by the arguments passed to a
// command, including its receiver.
type ArgumentError interface {
	error
	argumentError()
}

// ArityMismatch encodes an error where the expected number of values is out
// of the valid range.
type ArityMismatch struct {
	What      string
	ValidLow  int
	ValidHigh int
	Actual    int
}

func (e ArityMismatch) Error() string {
	switch {
	case e.ValidHigh == e.ValidLow:
		return fmt.Sprintf("arity mismatch: %v must be %v, but is %v",
			e.What, nValues(e.ValidLow), nValues(e.Actual))
	case e.ValidHigh == -1:
		return fmt.Sprintf("arity mismatch: %v must be %v or more values, but is %v",
			e.What, e.ValidLow, nValues(e.Actual))
	default:
		return fmt.Sprintf("arity mismatch: %v must be %v to %v values, but is %v",
			e.What, e.ValidLow, e.ValidHigh, nValues(e.Actual))
	}
}

func (ArityMismatch) argumentError() {}

func nValues(n int) string {
	if n == 1 {
		return "1 value"
	}
	return strconv.Itoa(n) + " values"
}

// BadValue encodes an error where a value does not meet a requirement.
type BadValue struct {
	What   string
	Valid  string
	Actual string
}

func (e BadValue) Error() string {
	return fmt.Sprintf("bad value: %v must be %v, but is %v", e.What, e.Valid, e.Actual)
}

func (BadValue) argumentError() {}

// MissingArgument is returned when a required parameter gets no argument and
// has no default value.
type MissingArgument struct {
	Name string
}

func (e MissingArgument) Error() string {
	return "missing argument: " + e.Name
}

func (MissingArgument) argumentError() {}

// UnexpectedArgument is returned when an argument matches no parameter and
// there is no rest parameter to collect it. Name is empty for positional
// arguments.
type UnexpectedArgument struct {
	Name string
}

func (e UnexpectedArgument) Error() string {
	if e.Name == "" {
		return "unexpected positional argument"
	}
	return "unexpected named argument: " + e.Name
}

func (UnexpectedArgument) argumentError() {}

// DuplicateArgument is returned when a parameter is passed more than once by
// name.
type DuplicateArgument struct {
	Name string
}

func (e DuplicateArgument) Error() string {
	return "duplicate argument: " + e.Name
}

func (DuplicateArgument) argumentError() {}

// TypeMismatch is returned when a value is found where a value of another
// kind is required, for example a non-command where a command is expected.
type TypeMismatch struct {
	What   string
	Want   string
	Actual string
}

func (e TypeMismatch) Error() string {
	return fmt.Sprintf("type mismatch: expected %v to be a %v, but is a %v", e.What, e.Want, e.Actual)
}

// NoSuchPath is returned when a symbolic path does not resolve to any value.
// Path holds the segments joined by colons.
type NoSuchPath struct {
	Path string
}

// NoSuchPathOf builds a NoSuchPath from path segments.
func NoSuchPathOf(path []string) NoSuchPath {
	return NoSuchPath{Path: strings.Join(path, ":")}
}

func (e NoSuchPath) Error() string {
	return "no such path: " + e.Path
}
