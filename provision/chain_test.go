package provision

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gmyun1999/MY-LOG-BE/chassis/queue"
)

func TestDispatchWithNoStepsIsNoop(t *testing.T) {
	memQueue := queue.InitMemoryQueue()
	dispatcher := &Dispatcher{Queue: memQueue}

	projectID, err := dispatcher.DispatchProvisioningWorkflow(&WorkflowDTOs{
		Failure: ProvisionFailureDTO{TaskID: "t-fail", ProjectID: "p9"},
	})
	require.NoError(t, err)
	require.Equal(t, "p9", projectID)
	require.Equal(t, 0, memQueue.Len())
}

func TestDispatchCarriesArgsThroughTheWire(t *testing.T) {
	memQueue := queue.InitMemoryQueue()
	dispatcher := &Dispatcher{Queue: memQueue}

	_, err := dispatcher.DispatchProvisioningWorkflow(&WorkflowDTOs{
		UserFolder: &CreateUserFolderDTO{
			TaskID:     "t1",
			UserID:     "u1",
			FolderName: "User_u1_jane's Folder",
		},
		Failure: ProvisionFailureDTO{TaskID: "t-fail", ProjectID: "p1"},
	})
	require.NoError(t, err)
	require.Equal(t, 1, memQueue.Len())

	msg, err := memQueue.ReceiveMessage()
	require.NoError(t, err)
	envelope := &Envelope{}
	require.NoError(t, envelope.FromJSON(msg.Body))

	require.Equal(t, 0, envelope.Position)
	require.Equal(t, 0, envelope.Attempt)
	require.Len(t, envelope.Steps, 1)

	var args CreateUserFolderDTO
	require.NoError(t, json.Unmarshal(envelope.Steps[0].Args, &args))
	require.Equal(t, "User_u1_jane's Folder", args.FolderName)
	require.NotNil(t, envelope.Failure)
	require.Equal(t, "t-fail", envelope.Failure.TaskID)
}
