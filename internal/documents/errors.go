package documents

import "fmt"

// ValidationError rejects a single upload before any bytes are written
// (empty file, unknown document type). It never aborts sibling uploads in a
// batch.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid upload %q: %s", e.Field, e.Reason)
}

// StorageError marks a byte-write failure for a single file. The metadata
// row is never written when the byte write fails.
type StorageError struct {
	Filename string
	Err      error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("failed to store %q: %v", e.Filename, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
