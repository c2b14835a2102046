// Package broker defines the external queue/KV contract the worker
// depends on: a blocking pop off a named queue, and TTL'd key/value
// storage for job results. The worker owns one Client and never talks
// to a concrete backend directly.
package broker

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable wraps any failure reaching the broker backend itself
// (as opposed to the queue being empty, which is not an error).
var ErrUnavailable = errors.New("broker: unavailable")

// Client is the minimal capability the worker needs from a broker: a
// blocking queue pop with a bounded wait (so shutdown stays
// responsive), and a KV store with TTL for publishing results.
type Client interface {
	// Pop blocks up to timeout for an element on queue, returning
	// (nil, false, nil) on timeout with no error. ctx cancellation
	// returns promptly.
	Pop(ctx context.Context, queue string, timeout time.Duration) ([]byte, bool, error)

	// Push enqueues value onto queue. priority, if non-zero, orders
	// higher values ahead of lower ones within the queue.
	Push(ctx context.Context, queue string, value []byte, priority int) error

	// Set stores value under key with the given TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Get retrieves the value under key; ok is false if absent or expired.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)

	// Close releases any resources the client holds.
	Close() error
}
