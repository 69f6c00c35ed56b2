package redisbasic

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedValue is returned by Store for anything other than
	// string, []byte, integers and floats.
	ErrUnsupportedValue = errors.New("redisbasic: unsupported value type")
	ErrNilProvider      = errors.New("redisbasic: provider is required")
)

// DecodeError reports a stored value that the caller's decode function
// rejected. The key was found; only the conversion failed.
type DecodeError struct {
	Key string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("redisbasic: decode %q: %v", e.Key, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// BookkeepingError is returned when a recorded operation could not update its
// counter or history. Stage is one of "count", "inputs", "outputs".
type BookkeepingError struct {
	Op    string
	Stage string
	Err   error
}

func (e *BookkeepingError) Error() string {
	return fmt.Sprintf("redisbasic: record %s %s: %v", e.Op, e.Stage, e.Err)
}

func (e *BookkeepingError) Unwrap() error { return e.Err }
