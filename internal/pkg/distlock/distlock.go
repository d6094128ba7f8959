// Package distlock provides a Redis-backed distributed lock so that at
// most one replica runs a data sync at a time. Without Redis configured
// callers fall back to an in-process no-op lock; single-instance
// deployments are already serialized by the orchestrator's own mutex.
package distlock

import (
	"context"
	"time"
)

// DistLock is the interface for distributed locking.
// Implementations must be safe for use from a single goroutine;
// concurrent use across goroutines requires separate lock instances.
type DistLock interface {
	// Acquire tries to acquire the lock. Returns true if successful.
	Acquire(ctx context.Context) (bool, error)
	// Release releases the lock if we still own it.
	Release(ctx context.Context) error
}

// NoopLock always acquires. Used when no Redis client is configured.
type NoopLock struct{}

// Acquire always succeeds.
func (NoopLock) Acquire(ctx context.Context) (bool, error) { return true, nil }

// Release is a no-op.
func (NoopLock) Release(ctx context.Context) error { return nil }

// TTL applied to sync locks; a crashed holder frees the lock after this.
const DefaultSyncTTL = 5 * time.Minute
