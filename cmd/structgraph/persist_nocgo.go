//go:build !cgo

package main

import (
	"context"
	"errors"

	"github.com/dusk-indust/structgraph/internal/graph"
)

var errNoGraphDB = errors.New("graph database support requires a cgo build")

func persistGraph(_ context.Context, _ string, _ graph.Store) error {
	return errNoGraphDB
}

func openGraph(_ string) (graph.Store, error) {
	return nil, errNoGraphDB
}
