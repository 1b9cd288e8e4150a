// Package storage provides the artifact object store backed by Amazon S3.
// This is part of the Imperative Shell - handles I/O with the storage API.
package storage

import (
	"errors"
	"fmt"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	// ErrBucketNotFound is returned when the bucket does not exist.
	ErrBucketNotFound = errors.New("bucket not found")

	// ErrAccessDenied is returned when the credentials lack permission.
	ErrAccessDenied = errors.New("access denied")

	// ErrInvalidInput is returned for empty bucket names, keys or paths.
	ErrInvalidInput = errors.New("invalid input")
)

// StorageError wraps errors with the bucket and key they concern.
type StorageError struct {
	Op     string // Operation that failed (e.g., "HeadBucket")
	Bucket string
	Key    string
	Err    error
}

func (e *StorageError) Error() string {
	if e.Bucket != "" && e.Key != "" {
		return fmt.Sprintf("%s %s/%s: %v", e.Op, e.Bucket, e.Key, e.Err)
	}
	if e.Bucket != "" {
		return fmt.Sprintf("%s bucket %s: %v", e.Op, e.Bucket, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// NewStorageError creates a new StorageError.
func NewStorageError(op, bucket, key string, err error) *StorageError {
	return &StorageError{
		Op:     op,
		Bucket: bucket,
		Key:    key,
		Err:    err,
	}
}
