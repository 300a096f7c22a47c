package lock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireRejectsSecondHolder(t *testing.T) {
	l := InitMemoryLock()

	token, err := l.Acquire("task-1")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	_, err = l.Acquire("task-1")
	assert.ErrorIs(t, err, ErrBusy)

	require.NoError(t, l.Release("task-1", token))
	_, err = l.Acquire("task-1")
	assert.NoError(t, err)
}

func TestReleaseWithStaleTokenIsNoop(t *testing.T) {
	l := InitMemoryLock()

	staleToken, err := l.Acquire("task-1")
	require.NoError(t, err)

	// TTL lapses, another worker grabs the key.
	l.ForceExpire("task-1")
	freshToken, err := l.Acquire("task-1")
	require.NoError(t, err)
	require.NotEqual(t, staleToken, freshToken)

	require.NoError(t, l.Release("task-1", staleToken))
	_, err = l.Acquire("task-1")
	assert.ErrorIs(t, err, ErrBusy, "fresh holder must keep the lock")
}

func TestDoneMarker(t *testing.T) {
	l := InitMemoryLock()

	done, err := l.IsDone("task-1")
	require.NoError(t, err)
	assert.False(t, done)

	require.NoError(t, l.MarkDone("task-1"))
	done, err = l.IsDone("task-1")
	require.NoError(t, err)
	assert.True(t, done)
}
