package provision

import (
	"encoding/json"

	log "github.com/gmyun1999/MY-LOG-BE/chassis/logging"
	"github.com/gmyun1999/MY-LOG-BE/chassis/queue"
	"github.com/gmyun1999/MY-LOG-BE/chassis/storage"
)

// WorkflowDTOs - one optional parameter bundle per step kind, in no
// particular order; the dispatcher fixes the execution order itself.
// A nil DTO marks its step as already satisfied. Failure is mandatory.
type WorkflowDTOs struct {
	UserFolder      *CreateUserFolderDTO
	ServiceAccount  *CreateServiceAccountDTO
	ServiceToken    *CreateServiceTokenDTO
	Permissions     *SetFolderPermissionsDTO
	Dashboard       *CreateDashboardDTO
	PublicDashboard *CreatePublicDashboardDTO
	Finalize        *FinalizeProjectDTO
	Failure         ProvisionFailureDTO
}

// Dispatcher assembles the ordered provisioning chain and submits it to
// the queue for asynchronous execution.
type Dispatcher struct {
	Queue queue.Client
}

func makeStep(taskID string, name storage.TaskName, args interface{}) (Step, error) {
	raw, err := json.Marshal(args)
	if err != nil {
		return Step{}, err
	}
	return Step{TaskID: taskID, Name: name, Args: raw}, nil
}

// assemble walks the step kinds in dependency order and appends a step
// for every populated DTO. Later steps read resources the earlier ones
// create, so the order is fixed: folder, account, token, permissions,
// dashboard, public dashboard, finalize.
func (d *Dispatcher) assemble(dtos *WorkflowDTOs) ([]Step, error) {
	var steps []Step
	appendStep := func(taskID string, name storage.TaskName, args interface{}) error {
		step, err := makeStep(taskID, name, args)
		if err != nil {
			return err
		}
		steps = append(steps, step)
		return nil
	}

	if dto := dtos.UserFolder; dto != nil {
		if err := appendStep(dto.TaskID, storage.CreateUserFolder, dto); err != nil {
			return nil, err
		}
	}
	if dto := dtos.ServiceAccount; dto != nil {
		if err := appendStep(dto.TaskID, storage.CreateServiceAccount, dto); err != nil {
			return nil, err
		}
	}
	if dto := dtos.ServiceToken; dto != nil {
		if err := appendStep(dto.TaskID, storage.CreateServiceToken, dto); err != nil {
			return nil, err
		}
	}
	if dto := dtos.Permissions; dto != nil {
		if err := appendStep(dto.TaskID, storage.SetFolderPermissions, dto); err != nil {
			return nil, err
		}
	}
	if dto := dtos.Dashboard; dto != nil {
		if err := appendStep(dto.TaskID, storage.CreateDashboard, dto); err != nil {
			return nil, err
		}
	}
	if dto := dtos.PublicDashboard; dto != nil {
		if err := appendStep(dto.TaskID, storage.CreatePublicDashboard, dto); err != nil {
			return nil, err
		}
	}
	if dto := dtos.Finalize; dto != nil {
		if err := appendStep(dto.TaskID, storage.FinalizeProject, dto); err != nil {
			return nil, err
		}
	}
	return steps, nil
}

// DispatchProvisioningWorkflow submits the assembled chain with the
// FailProject error link attached. When every DTO is absent nothing is
// enqueued; all resources pre-exist and the dispatch is a no-op.
// Returns the project id the workflow works for.
func (d *Dispatcher) DispatchProvisioningWorkflow(dtos *WorkflowDTOs) (string, error) {
	steps, err := d.assemble(dtos)
	if err != nil {
		return "", err
	}
	if len(steps) == 0 {
		log.WithFields(log.Fields{
			"event":     "workflow_noop",
			"projectID": dtos.Failure.ProjectID,
		}).Info("all resources already provisioned")
		return dtos.Failure.ProjectID, nil
	}

	failure, err := makeStep(dtos.Failure.TaskID, storage.FailProject, &dtos.Failure)
	if err != nil {
		return "", err
	}
	envelope := &Envelope{
		Steps:   steps,
		Failure: &failure,
	}
	message, err := envelope.JSON()
	if err != nil {
		return "", err
	}
	if err := d.Queue.SendMessage(message, 0); err != nil {
		return "", err
	}
	workflowsDispatched.Inc()
	log.WithFields(log.Fields{
		"event":     "workflow_dispatched",
		"projectID": dtos.Failure.ProjectID,
		"steps":     len(steps),
	}).Info("provisioning chain submitted")
	return dtos.Failure.ProjectID, nil
}
