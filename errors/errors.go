// Package errors provides error types and handling for s3task operations.
package errors

import (
	"errors"
	"fmt"
)

// Error represents a task operation error with context about what failed.
// It wraps the underlying AWS SDK, filesystem, or validation error so that
// callers can still match with errors.Is/errors.As.
type Error struct {
	// Op is the operation that failed (e.g., "download", "upload", "delete")
	Op string

	// Bucket is the S3 bucket name (if applicable)
	Bucket string

	// Key is the S3 object key (if applicable)
	Key string

	// Err is the underlying error
	Err error
}

// Error implements the error interface by providing a formatted error message.
func (e *Error) Error() string {
	if e.Bucket != "" && e.Key != "" {
		return fmt.Sprintf("s3task.%s %s/%s: %v", e.Op, e.Bucket, e.Key, e.Err)
	}
	if e.Bucket != "" {
		return fmt.Sprintf("s3task.%s bucket %s: %v", e.Op, e.Bucket, e.Err)
	}
	if e.Key != "" {
		return fmt.Sprintf("s3task.%s object %s: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("s3task.%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error chaining support.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithBucket adds bucket context to an existing error.
func (e *Error) WithBucket(bucket string) *Error {
	e.Bucket = bucket
	return e
}

// WithKey adds object key context to an existing error.
func (e *Error) WithKey(key string) *Error {
	e.Key = key
	return e
}

// WithMessage wraps the underlying error with a custom message.
func (e *Error) WithMessage(message string) *Error {
	e.Err = fmt.Errorf("%s: %w", message, e.Err)
	return e
}

// NewError creates a new Error with the given operation and underlying error.
func NewError(op string, err error) *Error {
	return &Error{
		Op:  op,
		Err: err,
	}
}

// NewConfigError creates a configuration error for the given operation.
// The message names the violated parameter rule.
func NewConfigError(op, message string) *Error {
	return &Error{
		Op:  op,
		Err: fmt.Errorf("%s: %w", message, ErrConfig),
	}
}

// Sentinel errors for common task failures.
// These can be used with errors.Is() for error checking.
var (
	// ErrConfig indicates that the task parameters violate a configuration rule
	ErrConfig = errors.New("s3task: invalid task configuration")

	// ErrObjectNotFound indicates that the requested object does not exist
	ErrObjectNotFound = errors.New("s3task: object not found")

	// ErrBucketNotFound indicates that the requested bucket does not exist
	ErrBucketNotFound = errors.New("s3task: bucket not found")

	// ErrAccessDenied indicates that access to the resource is denied
	ErrAccessDenied = errors.New("s3task: access denied")

	// ErrInvalidBucketName indicates that the bucket name is invalid
	ErrInvalidBucketName = errors.New("s3task: invalid bucket name")

	// ErrInvalidObjectKey indicates that the object key is invalid
	ErrInvalidObjectKey = errors.New("s3task: invalid object key")
)

// IsConfig checks if an error is a task configuration error.
// Configuration errors abort the build step before any transfer starts.
func IsConfig(err error) bool {
	return errors.Is(err, ErrConfig)
}

// IsObjectNotFound checks if an error indicates that an object was not found.
func IsObjectNotFound(err error) bool {
	return errors.Is(err, ErrObjectNotFound)
}

// IsBucketNotFound checks if an error indicates that a bucket was not found.
func IsBucketNotFound(err error) bool {
	return errors.Is(err, ErrBucketNotFound)
}
