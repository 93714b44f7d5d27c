package database

import "errors"

// ErrDuplicateEntry is returned when a queue entry with the same
// idempotency key already exists (any status).
var ErrDuplicateEntry = errors.New("duplicate queue entry")

// ErrQueueEmpty is returned when no pending queue entry exists.
var ErrQueueEmpty = errors.New("queue is empty")

// ErrPendingNotFound is returned when no pending submission matches.
var ErrPendingNotFound = errors.New("pending submission not found")

// ErrPostNotFound is returned when no published post matches.
var ErrPostNotFound = errors.New("published post not found")

// ErrBrandNotFound is returned when a brand mapping is missing.
var ErrBrandNotFound = errors.New("brand mapping not found")

// ErrDestinationNotFound is returned when a destination group is not configured.
var ErrDestinationNotFound = errors.New("destination group not found")

// ErrTopicNotFound is returned when a topic thread id is not configured.
var ErrTopicNotFound = errors.New("destination topic not found")
