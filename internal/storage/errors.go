package storage

import (
	"errors"
	"fmt"
)

// ErrObjectNotFound indicates that the requested object does not exist.
var ErrObjectNotFound = errors.New("object not found")

// Error carries the operation and object location of a failed store call.
type Error struct {
	Op     string
	Bucket string
	Key    string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("storage.%s %s/%s: %v", e.Op, e.Bucket, e.Key, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

func newError(op, bucket, key string, err error) *Error {
	return &Error{Op: op, Bucket: bucket, Key: key, Err: err}
}
