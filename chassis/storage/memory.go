package storage

import (
	"sync"
	"time"
)

// MemoryTaskStore - process-local TaskStore for tests and single-node runs.
type MemoryTaskStore struct {
	mu      sync.Mutex
	records map[string]*TaskRecord
}

// InitMemoryTaskStore - ...
func InitMemoryTaskStore() *MemoryTaskStore {
	return &MemoryTaskStore{
		records: map[string]*TaskRecord{},
	}
}

func (store *MemoryTaskStore) put(record *TaskRecord) {
	clone := *record
	store.records[record.ID] = &clone
}

// Save - ...
func (store *MemoryTaskStore) Save(record *TaskRecord) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.put(record)
	return nil
}

// BulkUpsert - ...
func (store *MemoryTaskStore) BulkUpsert(records []*TaskRecord) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	for _, record := range records {
		store.put(record)
	}
	return nil
}

// FindByTaskID - ...
func (store *MemoryTaskStore) FindByTaskID(id string) (*TaskRecord, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	record, ok := store.records[id]
	if !ok {
		return nil, nil
	}
	clone := *record
	return &clone, nil
}

// MarkStarted - ...
func (store *MemoryTaskStore) MarkStarted(id string, at time.Time) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	record, ok := store.records[id]
	if !ok || record.Status != PENDING {
		return nil
	}
	record.Status = STARTED
	record.DateStarted = &at
	record.DateDone = nil
	return nil
}

// MarkSuccess - ...
func (store *MemoryTaskStore) MarkSuccess(id string, result Result, retries int, at time.Time) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	record, ok := store.records[id]
	if !ok {
		return nil
	}
	record.Status = SUCCESS
	record.Result = result
	record.Retries = retries
	record.DateDone = &at
	return nil
}

// MarkFailure - ...
func (store *MemoryTaskStore) MarkFailure(id string, traceback string, retries int, at time.Time) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	record, ok := store.records[id]
	if !ok {
		return nil
	}
	record.Status = FAILURE
	record.Traceback = traceback
	record.Retries = retries
	record.DateDone = &at
	return nil
}

// DeleteOlderThan - ...
func (store *MemoryTaskStore) DeleteOlderThan(age time.Duration) (int, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	cutoff := time.Now().Add(-age)
	deleted := 0
	for id, record := range store.records {
		if record.Status != SUCCESS && record.Status != FAILURE {
			continue
		}
		if record.DateDone != nil && record.DateDone.Before(cutoff) {
			delete(store.records, id)
			deleted++
		}
	}
	return deleted, nil
}
