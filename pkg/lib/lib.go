// Package lib assembles the builtin commands.
package lib

import (
	"src.crush.sh/pkg/eval/scope"
	"src.crush.sh/pkg/lib/cond"
	"src.crush.sh/pkg/lib/types"
)

// NewGlobal returns a root scope with every builtin declared.
func NewGlobal() *scope.Scope {
	root := scope.NewRoot()
	types.Declare(root)
	cond.Declare(root)
	return root
}
