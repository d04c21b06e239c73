// Package storedefs contains definitions of the store API.
//
// It is a separate package so that packages that only depend on the store API
// does not need to depend on the concrete implementation.
package storedefs

import "errors"

// ErrNoGraph is returned when there is no graph with the requested name.
var ErrNoGraph = errors.New("no such graph")

// Store is an interface satisfied by the storage service. Graphs are stored
// in their encoded form.
type Store interface {
	PutGraph(name string, data []byte) error
	Graph(name string) ([]byte, error)
	DelGraph(name string) error
	GraphNames() ([]string, error)
}
