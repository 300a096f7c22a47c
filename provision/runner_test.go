package provision

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gmyun1999/MY-LOG-BE/chassis/lock"
	"github.com/gmyun1999/MY-LOG-BE/chassis/storage"
)

func folderStep(t *testing.T, taskID string) *Step {
	t.Helper()
	args, err := json.Marshal(&CreateUserFolderDTO{
		TaskID:     taskID,
		UserID:     "u1",
		FolderName: "User_u1_jane's Folder",
	})
	require.NoError(t, err)
	return &Step{TaskID: taskID, Name: storage.CreateUserFolder, Args: args}
}

func pendingRecord(t *testing.T, env *testEnv, taskID string, name storage.TaskName) {
	t.Helper()
	require.NoError(t, env.store.Save(&storage.TaskRecord{
		ID:          taskID,
		TaskName:    name,
		Status:      storage.PENDING,
		DateCreated: env.runner.now(),
	}))
}

func TestRunnerDropsDeliveryWithoutRecord(t *testing.T) {
	env := newTestEnv()
	res := env.runner.Run(folderStep(t, "t-missing"), 0)
	require.Equal(t, Dropped, res.Outcome)
	require.Equal(t, 0, env.platform.callCount("CreateFolder"))
}

func TestRunnerReportsSucceededRecordAsCompleted(t *testing.T) {
	env := newTestEnv()
	done := env.runner.now()
	require.NoError(t, env.store.Save(&storage.TaskRecord{
		ID:          "t-done",
		TaskName:    storage.CreateUserFolder,
		Status:      storage.SUCCESS,
		DateCreated: done,
		DateDone:    &done,
	}))

	// A finished step must report completion so the chain can advance,
	// without re-running the body.
	res := env.runner.Run(folderStep(t, "t-done"), 0)
	require.Equal(t, Completed, res.Outcome)
	require.Equal(t, 0, env.platform.callCount("CreateFolder"))
}

func TestRunnerRoutesFailedRecordBackToErrorLink(t *testing.T) {
	env := newTestEnv()
	done := env.runner.now()
	require.NoError(t, env.store.Save(&storage.TaskRecord{
		ID:          "t-failed",
		TaskName:    storage.CreateUserFolder,
		Status:      storage.FAILURE,
		DateCreated: done,
		DateDone:    &done,
		Traceback:   "boom",
		Retries:     DefaultMaxRetries,
	}))

	res := env.runner.Run(folderStep(t, "t-failed"), 0)
	require.Equal(t, Failed, res.Outcome)
	require.Equal(t, 0, env.platform.callCount("CreateFolder"))

	// The record keeps its original trace, no re-marking happened.
	record, err := env.store.FindByTaskID("t-failed")
	require.NoError(t, err)
	require.Equal(t, "boom", record.Traceback)
	require.Equal(t, DefaultMaxRetries, record.Retries)
}

func TestRunnerTransitionsPendingThroughStartedToSuccess(t *testing.T) {
	env := newTestEnv()
	pendingRecord(t, env, "t1", storage.CreateUserFolder)

	res := env.runner.Run(folderStep(t, "t1"), 0)
	require.Equal(t, Completed, res.Outcome)

	record, err := env.store.FindByTaskID("t1")
	require.NoError(t, err)
	require.Equal(t, storage.SUCCESS, record.Status)
	require.NotNil(t, record.DateStarted)
	require.NotNil(t, record.DateDone)
	require.Equal(t, "folder-uid", record.Result["uid"])

	done, err := env.lock.IsDone("t1")
	require.NoError(t, err)
	require.True(t, done)
}

func TestRunnerRetriesWithGrowingDelay(t *testing.T) {
	env := newTestEnv()
	pendingRecord(t, env, "t1", storage.CreateUserFolder)
	env.platform.failFirst("CreateFolder", alwaysFail)

	first := env.runner.Run(folderStep(t, "t1"), 0)
	require.Equal(t, Retrying, first.Outcome)
	require.Equal(t, RetryDelay, first.Delay)

	second := env.runner.Run(folderStep(t, "t1"), 1)
	require.Equal(t, Retrying, second.Outcome)
	require.Equal(t, 2*RetryDelay, second.Delay)

	last := env.runner.Run(folderStep(t, "t1"), DefaultMaxRetries)
	require.Equal(t, Failed, last.Outcome)

	record, err := env.store.FindByTaskID("t1")
	require.NoError(t, err)
	require.Equal(t, storage.FAILURE, record.Status)
	require.Equal(t, DefaultMaxRetries, record.Retries)
}

func TestRunnerZeroBudgetStepFailsImmediately(t *testing.T) {
	env := newTestEnv()
	pendingRecord(t, env, "t-final", storage.FinalizeProject)

	args, err := json.Marshal(&FinalizeProjectDTO{
		TaskID:    "t-final",
		UserID:    "u1",
		ProjectID: "ghost",
	})
	require.NoError(t, err)
	step := &Step{TaskID: "t-final", Name: storage.FinalizeProject, Args: args}

	res := env.runner.Run(step, 0)
	require.Equal(t, Failed, res.Outcome)

	record, findErr := env.store.FindByTaskID("t-final")
	require.NoError(t, findErr)
	require.Equal(t, storage.FAILURE, record.Status)
}

// failingReleaseLock wraps the memory lock and refuses to release, the
// way a lock store outage would.
type failingReleaseLock struct {
	*lock.MemoryLock
}

func (l *failingReleaseLock) Release(key, token string) error {
	return errors.New("lock store unavailable")
}

func TestRunnerDowngradesCompletionWhenReleaseFails(t *testing.T) {
	env := newTestEnv()
	env.runner.Lock = &failingReleaseLock{MemoryLock: env.lock}
	pendingRecord(t, env, "t1", storage.CreateUserFolder)

	res := env.runner.Run(folderStep(t, "t1"), 0)
	require.Equal(t, Rescheduled, res.Outcome)
	require.Error(t, res.Err)

	// The redelivered attempt hits the completion marker and reports
	// success without running the body twice.
	require.Equal(t, 1, env.platform.callCount("CreateFolder"))
	replay := env.runner.Run(folderStep(t, "t1"), 0)
	require.Equal(t, Completed, replay.Outcome)
	require.Equal(t, 1, env.platform.callCount("CreateFolder"))
}

func TestRunnerReschedulesOnLockContention(t *testing.T) {
	env := newTestEnv()
	pendingRecord(t, env, "t1", storage.CreateUserFolder)

	_, err := env.lock.Acquire("t1")
	require.NoError(t, err)

	res := env.runner.Run(folderStep(t, "t1"), 2)
	require.Equal(t, Rescheduled, res.Outcome)
	require.Equal(t, time.Second, res.Delay)
	require.Equal(t, 0, env.platform.callCount("CreateFolder"))
}
