package provision

import (
	"time"

	"github.com/gmyun1999/MY-LOG-BE/chassis/lock"
	log "github.com/gmyun1999/MY-LOG-BE/chassis/logging"
	"github.com/gmyun1999/MY-LOG-BE/chassis/storage"
)

// Outcome - what the envelope decided about one delivery.
type Outcome string

const (
	// Completed - the step succeeded, either by running the body now or
	// on an earlier delivery; the chain may advance past it.
	Completed Outcome = "completed"
	// Dropped - delivery without a task record; acknowledge and do
	// nothing.
	Dropped Outcome = "dropped"
	// Rescheduled - lock contention or a lock-store hiccup; redeliver
	// the same attempt without charging the retry budget.
	Rescheduled Outcome = "rescheduled"
	// Retrying - transient body failure inside the retry budget.
	Retrying Outcome = "retrying"
	// Failed - retry budget spent, a zero-budget step failed, or a
	// redelivery of a step already recorded FAILURE; the error link
	// must run.
	Failed Outcome = "failed"
)

// RunResult - ...
type RunResult struct {
	Outcome Outcome
	Delay   time.Duration
	Err     error
}

const rescheduleDelay = time.Second

// Runner - the execution envelope every task runs inside:
// completion-marker check, lock acquire, pre-run record transition,
// body, result recording, token-checked release.
type Runner struct {
	Lock  lock.Lock
	Store storage.TaskStore
	Units *Units
	Now   func() time.Time
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// Run executes one step delivery. attempt is zero-based and counts only
// body failures, never lock contention.
func (r *Runner) Run(step *Step, attempt int) (result RunResult) {
	taskID := step.TaskID

	done, err := r.Lock.IsDone(taskID)
	if err != nil {
		log.WithFields(log.Fields{
			"event":  "done_check_failed",
			"taskID": taskID,
		}).Error(err)
		return RunResult{Outcome: Rescheduled, Delay: rescheduleDelay, Err: err}
	}
	if done {
		// The step succeeded on an earlier delivery. Reporting it as
		// completed lets the chain advance even when the advanced
		// envelope was lost after the first success.
		log.WithFields(log.Fields{
			"event":  "task_already_processed",
			"taskID": taskID,
		}).Info("duplicate delivery of a finished step")
		return RunResult{Outcome: Completed}
	}

	token, err := r.Lock.Acquire(taskID)
	if err == lock.ErrBusy {
		log.WithFields(log.Fields{
			"event":  "task_already_running",
			"taskID": taskID,
		}).Info("lock held by another attempt")
		return RunResult{Outcome: Rescheduled, Delay: rescheduleDelay}
	}
	if err != nil {
		log.WithFields(log.Fields{
			"event":  "lock_acquire_failed",
			"taskID": taskID,
		}).Error(err)
		return RunResult{Outcome: Rescheduled, Delay: rescheduleDelay, Err: err}
	}
	defer func() {
		// Release only while the stored token is still ours; a lock
		// reclaimed after TTL expiry belongs to a newer attempt.
		if releaseErr := r.Lock.Release(taskID, token); releaseErr != nil {
			log.WithFields(log.Fields{
				"event":  "lock_release_failed",
				"taskID": taskID,
			}).Error(releaseErr)
			if result.Outcome == Completed || result.Outcome == Dropped {
				result = RunResult{Outcome: Rescheduled, Delay: rescheduleDelay, Err: releaseErr}
			}
		}
	}()

	outcome, proceed := r.preRun(step)
	if !proceed {
		return RunResult{Outcome: outcome}
	}

	body, err := r.Units.Execute(step)
	if err == nil {
		if markErr := r.Lock.MarkDone(taskID); markErr != nil {
			log.WithFields(log.Fields{
				"event":  "mark_done_failed",
				"taskID": taskID,
			}).Error(markErr)
		}
		if saveErr := r.Store.MarkSuccess(taskID, body, attempt, r.now()); saveErr != nil {
			log.WithFields(log.Fields{
				"event":  "record_success_failed",
				"taskID": taskID,
			}).Error(saveErr)
		}
		log.WithFields(log.Fields{
			"event":  "task_succeeded",
			"taskID": taskID,
			"task":   step.Name,
		}).Info("task completed")
		return RunResult{Outcome: Completed}
	}

	if attempt < MaxRetries(step.Name) {
		log.WithFields(log.Fields{
			"event":   "task_retry_scheduled",
			"taskID":  taskID,
			"task":    step.Name,
			"attempt": attempt,
		}).Warn(err)
		return RunResult{Outcome: Retrying, Delay: NextRetryDelay(attempt), Err: err}
	}

	if saveErr := r.Store.MarkFailure(taskID, err.Error(), attempt, r.now()); saveErr != nil {
		log.WithFields(log.Fields{
			"event":  "record_failure_failed",
			"taskID": taskID,
		}).Error(saveErr)
	}
	log.WithFields(log.Fields{
		"event":   "task_failed",
		"taskID":  taskID,
		"task":    step.Name,
		"attempt": attempt,
	}).Error(err)
	return RunResult{Outcome: Failed, Err: err}
}

// preRun loads the task record and applies the entry transition. When
// the body must not run, the returned outcome routes the delivery so a
// terminal record still moves the chain: SUCCESS advances, FAILURE
// re-fires the error link, a missing record drops.
func (r *Runner) preRun(step *Step) (Outcome, bool) {
	record, err := r.Store.FindByTaskID(step.TaskID)
	if err != nil {
		log.WithFields(log.Fields{
			"event":  "record_lookup_failed",
			"taskID": step.TaskID,
		}).Error(err)
		return "", true
	}
	if record == nil {
		log.WithFields(log.Fields{
			"event":  "record_missing",
			"taskID": step.TaskID,
		}).Warn("no task record, dropping delivery")
		return Dropped, false
	}
	switch record.Status {
	case storage.SUCCESS:
		log.WithFields(log.Fields{
			"event":  "record_already_succeeded",
			"taskID": step.TaskID,
		}).Info("duplicate delivery of a finished step")
		return Completed, false
	case storage.FAILURE:
		log.WithFields(log.Fields{
			"event":  "record_already_failed",
			"taskID": step.TaskID,
		}).Info("re-routing to the error link")
		return Failed, false
	case storage.PENDING:
		if err := r.Store.MarkStarted(step.TaskID, r.now()); err != nil {
			log.WithFields(log.Fields{
				"event":  "record_start_failed",
				"taskID": step.TaskID,
			}).Error(err)
		}
		return "", true
	default: // STARTED - resumed or retried execution
		return "", true
	}
}
