package nsmap

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is returned before any store call for empty tokens,
	// empty hosts and out-of-range ports.
	ErrInvalidArgument = errors.New("nsmap: invalid argument")
	// ErrStoreUnavailable matches every *StoreError.
	ErrStoreUnavailable = errors.New("nsmap: store unavailable")
	ErrClosed           = errors.New("nsmap: map closed")
)

// StoreError reports a failed store call. Err is the store's error as
// returned; nothing is retried.
type StoreError struct {
	Op  string // dial, get, set, del, scan, close
	Key string // physical key, if the call had one
	Err error
}

func (e *StoreError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("nsmap: store %s %q: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("nsmap: store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func (e *StoreError) Is(target error) bool { return target == ErrStoreUnavailable }

func storeErr(op, key string, err error) error {
	return &StoreError{Op: op, Key: key, Err: err}
}

func invalidArg(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidArgument}, args...)...)
}
