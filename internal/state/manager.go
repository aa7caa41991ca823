package state

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/drft-io/drft/internal/errs"
	"github.com/drft-io/drft/internal/resource"
	"github.com/drft-io/drft/internal/serializer"
)

// FileBackend is the local-disk implementation of Backend: the state
// blob is stored as one canonical pretty-printed JSON file, with an
// advisory sibling lock file serializing access across cooperating
// processes.
type FileBackend struct {
	path string
	reg  *serializer.Registry
}

// NewFileBackend returns a FileBackend writing to path (already resolved
// via ResolvePath), decoding and encoding resources through reg.
func NewFileBackend(path string, reg *serializer.Registry) *FileBackend {
	return &FileBackend{path: path, reg: reg}
}

// Load reads and decodes the state file, returning an empty State named
// "default" if it does not exist. A malformed file is a hard StateError.
func (b *FileBackend) Load(ctx context.Context) (*resource.State, error) {
	raw, err := os.ReadFile(b.path)
	if err != nil {
		if os.IsNotExist(err) {
			return resource.NewState("default"), nil
		}
		return nil, errs.State("load", fmt.Errorf("read %s: %w", b.path, err))
	}

	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, errs.State("load", fmt.Errorf("parse %s: %w", b.path, err))
	}

	st, err := resource.DecodePersistedState(b.reg, doc)
	if err != nil {
		return nil, errs.State("load", fmt.Errorf("decode %s: %w", b.path, err))
	}
	return st, nil
}

// Save encodes st as canonical pretty-printed JSON and writes it to the
// state file, creating any missing parent directories first.
func (b *FileBackend) Save(ctx context.Context, st *resource.State) error {
	doc, err := resource.EncodePersistedState(b.reg, st)
	if err != nil {
		return errs.State("save", fmt.Errorf("encode state: %w", err))
	}

	if err := os.MkdirAll(filepath.Dir(b.path), 0o755); err != nil {
		return errs.State("save", fmt.Errorf("create state directory: %w", err))
	}

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errs.State("save", fmt.Errorf("marshal state: %w", err))
	}
	if err := os.WriteFile(b.path, out, 0o644); err != nil {
		return errs.State("save", fmt.Errorf("write %s: %w", b.path, err))
	}
	return nil
}

// Lock acquires the advisory sibling lock file, retrying per the
// package's lock policy.
func (b *FileBackend) Lock(ctx context.Context) error {
	return acquireLock(ctx, b.path)
}

// Unlock removes the advisory sibling lock file, best-effort.
func (b *FileBackend) Unlock() error {
	return releaseLock(b.path)
}
