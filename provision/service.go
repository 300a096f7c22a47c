package provision

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gmyun1999/MY-LOG-BE/chassis/storage"
	"github.com/gmyun1999/MY-LOG-BE/domain"
)

// Service decides which provisioning steps are still missing for a
// project, records a PENDING row for each one and hands the chain to
// the dispatcher. Every decision is a repository lookup, so a repeated
// call after a partial run only schedules the remaining steps.
type Service struct {
	Store            storage.TaskStore
	Folders          domain.FolderRepo
	Accounts         domain.ServiceAccountRepo
	Permissions      domain.FolderPermissionRepo
	Dashboards       domain.DashboardRepo
	PublicDashboards domain.PublicDashboardRepo
	Dispatcher       *Dispatcher
	Now              func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func makeFolderName(userID, userName string) string {
	return fmt.Sprintf("User_%s_%s's Folder", userID, userName)
}

func makeAccountName(userID, projectID string) string {
	return fmt.Sprintf("service-%s-%s", userID, projectID)
}

func makeTokenName(userID, projectID string) string {
	return fmt.Sprintf("token-%s-%s", userID, projectID)
}

func makeDashboardTitle(userName, projectName string) string {
	return fmt.Sprintf("%s's Logs Dashboard for %s", userName, projectName)
}

// ProvisionLogDashboard assembles the workflow for one log monitoring
// project. Steps whose resource already exists are skipped; the rest
// get a fresh task id, a PENDING record and a place in the chain.
// Returns the project id the chain was dispatched for.
func (s *Service) ProvisionLogDashboard(user *domain.User, project *domain.MonitoringProject) (string, error) {
	projectID := project.ID

	var userFolderDTO *CreateUserFolderDTO
	folder, err := s.Folders.FindByUserID(user.ID)
	if err != nil {
		return "", err
	}
	if folder == nil {
		userFolderDTO = &CreateUserFolderDTO{
			TaskID:     uuid.New().String(),
			UserID:     user.ID,
			FolderName: makeFolderName(user.ID, user.Name),
		}
	}

	account, err := s.Accounts.FindByProjectID(projectID)
	if err != nil {
		return "", err
	}
	var accountDTO *CreateServiceAccountDTO
	if account == nil {
		accountDTO = &CreateServiceAccountDTO{
			TaskID:      uuid.New().String(),
			ProjectID:   projectID,
			AccountName: makeAccountName(user.ID, projectID),
			UserID:      user.ID,
			Role:        "Viewer",
		}
	}

	// The token step makes sense only when an account exists or is
	// about to, and only when no token has been issued yet.
	var tokenDTO *CreateServiceTokenDTO
	hasToken := account != nil && account.Token != ""
	if (accountDTO != nil || account != nil) && !hasToken {
		tokenDTO = &CreateServiceTokenDTO{
			TaskID:    uuid.New().String(),
			ProjectID: projectID,
			TokenName: makeTokenName(user.ID, projectID),
		}
	}

	var existingPerm *domain.FolderPermission
	if account != nil {
		existingPerm, err = s.Permissions.FindByServiceAccountID(account.AccountID)
		if err != nil {
			return "", err
		}
	}
	var permissionsDTO *SetFolderPermissionsDTO
	if existingPerm == nil {
		permissionsDTO = &SetFolderPermissionsDTO{
			TaskID:    uuid.New().String(),
			UserID:    user.ID,
			ProjectID: projectID,
		}
	}

	dashboard, err := s.Dashboards.FindByProjectID(projectID)
	if err != nil {
		return "", err
	}
	var dashboardDTO *CreateDashboardDTO
	if dashboard == nil {
		title := makeDashboardTitle(user.Name, project.Name)
		dashboardDTO = &CreateDashboardDTO{
			TaskID:          uuid.New().String(),
			UserID:          user.ID,
			ProjectID:       projectID,
			DashboardTitle:  title,
			DashboardConfig: LogsDashboardConfig(user.ID, projectID, title, uuid.New().String()),
		}
	}

	public, err := s.PublicDashboards.FindByProjectID(projectID)
	if err != nil {
		return "", err
	}
	var publicDTO *CreatePublicDashboardDTO
	if public == nil {
		publicDTO = &CreatePublicDashboardDTO{
			TaskID:    uuid.New().String(),
			ProjectID: projectID,
		}
	}

	finalizeDTO := &FinalizeProjectDTO{
		TaskID:    uuid.New().String(),
		UserID:    user.ID,
		ProjectID: projectID,
	}
	failureDTO := ProvisionFailureDTO{
		TaskID:    uuid.New().String(),
		ProjectID: projectID,
	}

	now := s.now()
	var pending []*storage.TaskRecord
	appendPending := func(taskID string, name storage.TaskName) {
		pending = append(pending, &storage.TaskRecord{
			ID:          taskID,
			TaskName:    name,
			Status:      storage.PENDING,
			DateCreated: now,
		})
	}
	if userFolderDTO != nil {
		appendPending(userFolderDTO.TaskID, storage.CreateUserFolder)
	}
	if accountDTO != nil {
		appendPending(accountDTO.TaskID, storage.CreateServiceAccount)
	}
	if tokenDTO != nil {
		appendPending(tokenDTO.TaskID, storage.CreateServiceToken)
	}
	if permissionsDTO != nil {
		appendPending(permissionsDTO.TaskID, storage.SetFolderPermissions)
	}
	if dashboardDTO != nil {
		appendPending(dashboardDTO.TaskID, storage.CreateDashboard)
	}
	if publicDTO != nil {
		appendPending(publicDTO.TaskID, storage.CreatePublicDashboard)
	}
	appendPending(finalizeDTO.TaskID, storage.FinalizeProject)
	appendPending(failureDTO.TaskID, storage.FailProject)
	if err := s.Store.BulkUpsert(pending); err != nil {
		return "", err
	}

	return s.Dispatcher.DispatchProvisioningWorkflow(&WorkflowDTOs{
		UserFolder:      userFolderDTO,
		ServiceAccount:  accountDTO,
		ServiceToken:    tokenDTO,
		Permissions:     permissionsDTO,
		Dashboard:       dashboardDTO,
		PublicDashboard: publicDTO,
		Finalize:        finalizeDTO,
		Failure:         failureDTO,
	})
}
