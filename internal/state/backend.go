// Package state implements the engine's State Store: loading and saving
// the persisted actual state as canonical pretty-printed JSON, an
// advisory sibling-file lock, and ".drft/"-prefixed path resolution
// against the nearest ancestor package manifest.
package state

import (
	"context"

	"github.com/drft-io/drft/internal/resource"
)

// Backend is the seam a state store operates through. FileBackend (local
// disk) is the only implementation shipped: remote/distributed backends
// are out of scope, but callers that need to substitute a fake for tests
// depend on this interface rather than on FileBackend directly.
type Backend interface {
	Load(ctx context.Context) (*resource.State, error)
	Save(ctx context.Context, st *resource.State) error
	Lock(ctx context.Context) error
	Unlock() error
}
