package cacheaside

import (
	"errors"
	"fmt"
)

var (
	ErrStoreRequired    = errors.New("cacheaside: store is required")
	ErrInvalidWindow    = errors.New("cacheaside: window must not be negative")
	ErrNilComputation   = errors.New("cacheaside: nil computation")
	ErrNamespaceMissing = errors.New("cacheaside: namespace is required")
	ErrInvalidNamespace = errors.New("cacheaside: namespace too long or contains whitespace/control bytes")
	ErrProviderRequired = errors.New("cacheaside: provider is required")
	ErrCodecRequired    = errors.New("cacheaside: codec is required")
)

// ComputeError wraps a failure returned by Computation.Compute.
// Key is empty for uncached computations. Refresh is true when the failure
// happened while recomputing an expired entry.
type ComputeError struct {
	Key     string
	Refresh bool
	Err     error
}

func (e *ComputeError) Error() string {
	switch {
	case e.Key == "":
		return fmt.Sprintf("compute: %v", e.Err)
	case e.Refresh:
		return fmt.Sprintf("compute %q (refresh of expired entry): %v", e.Key, e.Err)
	default:
		return fmt.Sprintf("compute %q: %v", e.Key, e.Err)
	}
}

func (e *ComputeError) Unwrap() error { return e.Err }

// StoreError wraps a Store failure. Op is "read", "write" or "delete".
type StoreError struct {
	Op  string
	Key string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }
