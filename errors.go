package atomicconfig

import (
	"errors"
	"fmt"
)

// ErrNotOpen is returned by Store accessors when the store has not been
// created or loaded yet, or has already been closed.
var ErrNotOpen = errors.New("atomicconfig: store not open")

// ErrAlreadyExists is returned by Create when a catalog already exists at
// the given location. Accessors that merely *skip* a duplicate (such as
// adding an index engine with a name already in use) log a warning
// instead of returning this error — see AddIndexEngine in configfacade.go.
var ErrAlreadyExists = errors.New("atomicconfig: catalog already exists")

// CorruptValueError reports that a stored value's bytes do not match the
// fixed layout its key family requires.
type CorruptValueError struct {
	Key    string
	Offset int
	Reason string
}

func corruptf(key string, off int, format string, args ...any) error {
	return &CorruptValueError{Key: key, Offset: off, Reason: fmt.Sprintf(format, args...)}
}

func (e *CorruptValueError) Error() string {
	return fmt.Sprintf("atomicconfig: corrupt value for key %q at offset %d: %s", e.Key, e.Offset, e.Reason)
}

// StorageError wraps a failure from the underlying IndexMap or RecordCluster.
type StorageError struct {
	Op  string
	Key string
	Err error
}

func storageErrf(op, key string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Key: key, Err: err}
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("atomicconfig: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("atomicconfig: %s %q: %v", e.Op, e.Key, e.Err)
}

// InvalidArgumentError reports a caller-supplied value that violates a
// catalog invariant (a negative cluster id, an empty property name, ...).
type InvalidArgumentError struct {
	Arg    string
	Reason string
}

func invalidArgf(arg, format string, args ...any) error {
	return &InvalidArgumentError{Arg: arg, Reason: fmt.Sprintf(format, args...)}
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("atomicconfig: invalid %s: %s", e.Arg, e.Reason)
}
