// Package types declares the types namespace, holding the methods of each
// kind of value, and the global values naming types.
package types

import (
	"src.crush.sh/pkg/eval"
	"src.crush.sh/pkg/eval/scope"
	"src.crush.sh/pkg/eval/vals"
)

// Values bound in the root scope to the types they name.
var globalTypes = []vals.Type{
	vals.Empty, vals.Bool, vals.Integer, vals.String, vals.TypeT,
	vals.Command, vals.Scope, vals.Any,
	{Kind: vals.ListKind}, {Kind: vals.DictKind},
}

// Declare creates the types namespace in root and binds the type names.
func Declare(root *scope.Scope) {
	ns := root.NewNamespace(eval.TypesNsName)
	DictMethods.Install(ns.NewNamespace(vals.DictKind.String()))
	for _, t := range globalTypes {
		root.Declare(t.Kind.String(), t)
	}
}
