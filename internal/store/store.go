// Package store persists the single menu document. Every backend keeps exactly
// one record, addressed by a fixed key, and reads or writes it as a whole.
package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"sweetyshop/internal/menu"
)

var (
	// ErrNotConfigured is returned by every operation of a backend that was
	// selected without the settings it needs.
	ErrNotConfigured = errors.New("storage not configured")
	// ErrConflict is returned by Save when the stored document changed since
	// the revision the caller loaded.
	ErrConflict = errors.New("menu document was modified concurrently")
)

// Revision identifies the stored version of the document. The zero value
// means the record does not exist yet.
type Revision string

// Snapshot is the result of a Load.
type Snapshot struct {
	Document menu.Document
	Revision Revision
	Found    bool
}

type Store interface {
	// Load returns the current document, or an empty one with Found unset
	// when nothing was ever written.
	Load(ctx context.Context) (Snapshot, error)
	// Save replaces the document. expected is the revision returned by the
	// Load the new document was derived from.
	Save(ctx context.Context, doc menu.Document, expected Revision) error
	Name() string
	Close() error
}

func emptySnapshot() Snapshot {
	return Snapshot{Document: menu.Empty()}
}

func contentRevision(data []byte) Revision {
	sum := sha256.Sum256(data)
	return Revision(hex.EncodeToString(sum[:]))
}

type unconfigured struct {
	backend string
}

// Unconfigured returns a store that fails every call with ErrNotConfigured.
func Unconfigured(backend string) Store {
	return unconfigured{backend: backend}
}

func (u unconfigured) Load(context.Context) (Snapshot, error) {
	return Snapshot{}, fmt.Errorf("%s: %w", u.backend, ErrNotConfigured)
}

func (u unconfigured) Save(context.Context, menu.Document, Revision) error {
	return fmt.Errorf("%s: %w", u.backend, ErrNotConfigured)
}

func (u unconfigured) Name() string { return u.backend }

func (u unconfigured) Close() error { return nil }
