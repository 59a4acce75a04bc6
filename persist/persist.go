/*
Package persist defines the key-value persistence port.

PURPOSE:
  The calendar store and the imputation ledger keep their authoritative state
  in memory and mirror it into an external key-value store through this port.
  The port is deliberately dumb: opaque bytes under string keys. Concrete
  implementations live in persist/memory (tests, dev) and store/sqlite
  (production).

CONTRACT:
  - Load on a missing key returns (nil, false, nil), never an error
  - Save overwrites: last writer wins at key granularity
  - List returns every key with the given prefix, for warm-up scans
  - Failures are wrapped in *Error and satisfy errors.Is(err, ErrPersistence)

FAILURE SEMANTICS:
  Callers treat their in-memory state as authoritative for the session even
  when a Save fails; the error is surfaced, not retried.
*/
package persist

import (
	"context"
	"errors"
	"fmt"
)

// Port is the boundary to the external key-value store.
type Port interface {
	// Load returns the value for key, or found=false if the key is absent.
	Load(ctx context.Context, key string) (value []byte, found bool, err error)

	// Save writes the value under key, overwriting any previous value.
	Save(ctx context.Context, key string, value []byte) error

	// Delete removes the key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// List returns all keys starting with prefix.
	List(ctx context.Context, prefix string) ([]string, error)
}

// ErrPersistence is the sentinel for all storage I/O failures.
var ErrPersistence = errors.New("persistence failure")

// Error wraps a storage failure with the operation and key involved.
type Error struct {
	Op  string
	Key string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("persist %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool { return target == ErrPersistence }

// Wrap builds an *Error unless err is nil.
func Wrap(op, key string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Key: key, Err: err}
}
