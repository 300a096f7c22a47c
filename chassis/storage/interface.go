package storage

import (
	"time"
)

// Config - ...
type Config struct {
	DSN string
}

// TaskStore - durable task record storage. Save and BulkUpsert are
// upserts keyed by record id; FindByTaskID returns nil without error
// when the record does not exist. The Mark* methods are the only
// mutations the workflow performs after dispatch.
type TaskStore interface {
	Save(*TaskRecord) error
	BulkUpsert([]*TaskRecord) error
	FindByTaskID(id string) (*TaskRecord, error)
	MarkStarted(id string, at time.Time) error
	MarkSuccess(id string, result Result, retries int, at time.Time) error
	MarkFailure(id string, traceback string, retries int, at time.Time) error
	DeleteOlderThan(age time.Duration) (int, error)
}
