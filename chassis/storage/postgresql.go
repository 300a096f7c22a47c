package storage

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// PGTaskStore - ...
type PGTaskStore struct {
	pool *pgxpool.Pool
}

// InitPGTaskStore - ...
func InitPGTaskStore(cfg Config) (TaskStore, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.ConnectConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, err
	}
	return &PGTaskStore{
		pool: pool,
	}, nil
}

const upsertQuery = `
	insert into t_task_record(id, task_name, status, result, date_created, date_started, date_done, traceback, retries)
	values ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	on conflict (id) do update set
		task_name = excluded.task_name,
		status = excluded.status,
		result = excluded.result,
		date_started = excluded.date_started,
		date_done = excluded.date_done,
		traceback = excluded.traceback,
		retries = excluded.retries
	`

// Save - ...
func (store *PGTaskStore) Save(record *TaskRecord) error {
	_, err := store.pool.Exec(context.Background(), upsertQuery,
		record.ID,
		record.TaskName,
		record.Status,
		record.Result,
		record.DateCreated,
		record.DateStarted,
		record.DateDone,
		record.Traceback,
		record.Retries,
	)
	return err
}

// BulkUpsert - single round-trip pre-registration of PENDING records.
func (store *PGTaskStore) BulkUpsert(records []*TaskRecord) error {
	if len(records) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, record := range records {
		batch.Queue(upsertQuery,
			record.ID,
			record.TaskName,
			record.Status,
			record.Result,
			record.DateCreated,
			record.DateStarted,
			record.DateDone,
			record.Traceback,
			record.Retries,
		)
	}
	results := store.pool.SendBatch(context.Background(), batch)
	defer results.Close()
	for range records {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// FindByTaskID - ...
func (store *PGTaskStore) FindByTaskID(id string) (*TaskRecord, error) {
	var record TaskRecord
	query := `
	select id, task_name, status, result, date_created, date_started, date_done, traceback, retries
	from t_task_record where id = $1
	`
	err := store.pool.QueryRow(context.Background(), query, id).Scan(
		&record.ID,
		&record.TaskName,
		&record.Status,
		&record.Result,
		&record.DateCreated,
		&record.DateStarted,
		&record.DateDone,
		&record.Traceback,
		&record.Retries,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// MarkStarted - PENDING -> STARTED transition at execution entry.
func (store *PGTaskStore) MarkStarted(id string, at time.Time) error {
	query := `
	update t_task_record
	set status = 'STARTED', date_started = $2, date_done = null
	where id = $1 and status = 'PENDING'
	`
	_, err := store.pool.Exec(context.Background(), query, id, at)
	return err
}

// MarkSuccess - ...
func (store *PGTaskStore) MarkSuccess(id string, result Result, retries int, at time.Time) error {
	query := `
	update t_task_record
	set status = 'SUCCESS', result = $2, retries = $3, date_done = $4
	where id = $1
	`
	_, err := store.pool.Exec(context.Background(), query, id, result, retries, at)
	return err
}

// MarkFailure - ...
func (store *PGTaskStore) MarkFailure(id string, traceback string, retries int, at time.Time) error {
	query := `
	update t_task_record
	set status = 'FAILURE', traceback = $2, retries = $3, date_done = $4
	where id = $1
	`
	_, err := store.pool.Exec(context.Background(), query, id, traceback, retries, at)
	return err
}

// DeleteOlderThan - housekeeping for terminal records, never called by
// the workflow itself.
func (store *PGTaskStore) DeleteOlderThan(age time.Duration) (int, error) {
	query := `
	delete from t_task_record
	where
		status in ('SUCCESS', 'FAILURE') and
		date_done < localtimestamp - concat($1::int, ' seconds')::INTERVAL
	`
	cmdTag, err := store.pool.Exec(context.Background(), query, int(age/time.Second))
	if err != nil {
		return 0, err
	}
	return int(cmdTag.RowsAffected()), nil
}
