// Package errors defines all exported error sentinels for the memtab library.
//
// This is the single source of truth for error values. Both the top-level
// memtab package and internal packages import from here, ensuring errors.Is
// checks work across package boundaries.
package errors

import "errors"

// Construction errors
var (
	ErrAllocationFailure  = errors.New("memtab: cannot obtain memory for store")
	ErrInvalidBucketCount = errors.New("memtab: index bucket count must be a power of two")
	ErrInvalidArenaSize   = errors.New("memtab: initial arena size must be positive")
	ErrInvalidHash        = errors.New("memtab: unknown hash algorithm")
)

// Mutation errors
var (
	ErrCapacityExceeded = errors.New("memtab: hash index is full")
	ErrArenaExhausted   = errors.New("memtab: arena exceeds 32-bit offset space")
)

// Query errors
var (
	ErrNotFound   = errors.New("memtab: id not found")
	ErrOutOfRange = errors.New("memtab: ordinal out of range")
	ErrNoTagIndex = errors.New("memtab: store was created without a tag index")
)

// Ingestion errors
var (
	ErrMalformedInput = errors.New("memtab: JSON input truncated mid-object")
)

// Lifecycle errors
var (
	ErrStoreClosed = errors.New("memtab: store is closed")
)
