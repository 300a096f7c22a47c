package lock

import (
	"errors"
	"time"
)

const (
	// LockExpire bounds how long a crashed holder can starve
	// other attempts at the same task.
	LockExpire = 10 * time.Second
	// DoneExpire keeps completion markers long enough to reject
	// late duplicate deliveries without a storage round-trip.
	DoneExpire = 24 * time.Hour
)

// ErrBusy is returned by Acquire when another holder owns the key.
var ErrBusy = errors.New("lock is held by another owner")

// Lock - per-task mutual exclusion plus completion markers.
type Lock interface {
	Acquire(key string) (token string, err error)
	Release(key, token string) error
	MarkDone(key string) error
	IsDone(key string) (bool, error)
}
