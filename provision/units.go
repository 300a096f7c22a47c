package provision

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/gmyun1999/MY-LOG-BE/chassis/storage"
	"github.com/gmyun1999/MY-LOG-BE/domain"
	"github.com/gmyun1999/MY-LOG-BE/grafana"
)

const (
	// DefaultMaxRetries for side-effecting platform steps.
	DefaultMaxRetries = 3
	// RetryDelay base; the effective delay grows with the attempt count.
	RetryDelay = 2 * time.Second
)

// MaxRetries - retry budget per task kind. Finalize and failure steps
// must surface immediately, so their budget is zero.
func MaxRetries(name storage.TaskName) int {
	switch name {
	case storage.FinalizeProject, storage.FailProject:
		return 0
	default:
		return DefaultMaxRetries
	}
}

// NextRetryDelay - ...
func NextRetryDelay(attempt int) time.Duration {
	return RetryDelay * time.Duration(attempt+1)
}

// Units executes provisioning steps against the platform and the
// resource repositories. Units never catch platform or repository
// errors; the runner owns every retry-vs-fail decision.
type Units struct {
	Platform         grafana.Client
	Folders          domain.FolderRepo
	Accounts         domain.ServiceAccountRepo
	Permissions      domain.FolderPermissionRepo
	Dashboards       domain.DashboardRepo
	PublicDashboards domain.PublicDashboardRepo
	Projects         domain.ProjectRepo
}

// Execute runs the step body for the given kind. Task kinds are a
// closed set; an unknown kind is a programming error, not a retryable
// condition.
func (u *Units) Execute(step *Step) (storage.Result, error) {
	switch step.Name {
	case storage.CreateUserFolder:
		var args CreateUserFolderDTO
		if err := json.Unmarshal(step.Args, &args); err != nil {
			return nil, err
		}
		return u.createUserFolder(step.TaskID, &args)
	case storage.CreateServiceAccount:
		var args CreateServiceAccountDTO
		if err := json.Unmarshal(step.Args, &args); err != nil {
			return nil, err
		}
		return u.createServiceAccount(&args)
	case storage.CreateServiceToken:
		var args CreateServiceTokenDTO
		if err := json.Unmarshal(step.Args, &args); err != nil {
			return nil, err
		}
		return u.createServiceToken(&args)
	case storage.SetFolderPermissions:
		var args SetFolderPermissionsDTO
		if err := json.Unmarshal(step.Args, &args); err != nil {
			return nil, err
		}
		return u.setFolderPermissions(&args)
	case storage.CreateDashboard:
		var args CreateDashboardDTO
		if err := json.Unmarshal(step.Args, &args); err != nil {
			return nil, err
		}
		return u.createDashboard(&args)
	case storage.CreatePublicDashboard:
		var args CreatePublicDashboardDTO
		if err := json.Unmarshal(step.Args, &args); err != nil {
			return nil, err
		}
		return u.createPublicDashboard(&args)
	case storage.FinalizeProject:
		var args FinalizeProjectDTO
		if err := json.Unmarshal(step.Args, &args); err != nil {
			return nil, err
		}
		return u.finalizeProject(&args)
	case storage.FailProject:
		var args ProvisionFailureDTO
		if err := json.Unmarshal(step.Args, &args); err != nil {
			return nil, err
		}
		return u.failProject(&args)
	default:
		return nil, fmt.Errorf("unknown task kind: %s", step.Name)
	}
}

func (u *Units) createUserFolder(taskID string, args *CreateUserFolderDTO) (storage.Result, error) {
	folder, err := u.Platform.CreateFolder(args.FolderName)
	if err != nil {
		return nil, err
	}
	err = u.Folders.Save(&domain.UserFolder{
		ID:            uuid.NewString(),
		UID:           folder.UID,
		UserID:        args.UserID,
		Name:          folder.Title,
		OrgID:         strconv.FormatInt(folder.OrgID, 10),
		CreatedByTask: taskID,
	})
	if err != nil {
		return nil, err
	}
	return storage.Result{
		"uid":   folder.UID,
		"title": folder.Title,
		"orgId": folder.OrgID,
	}, nil
}

func (u *Units) createServiceAccount(args *CreateServiceAccountDTO) (storage.Result, error) {
	role := args.Role
	if role == "" {
		role = "Viewer"
	}
	account, err := u.Platform.CreateServiceAccount(args.AccountName, role)
	if err != nil {
		return nil, err
	}
	err = u.Accounts.Save(&domain.ServiceAccount{
		ID:         uuid.NewString(),
		AccountID:  strconv.FormatInt(account.ID, 10),
		ProjectID:  args.ProjectID,
		UserID:     args.UserID,
		Name:       account.Name,
		Role:       account.Role,
		IsDisabled: account.IsDisabled,
	})
	if err != nil {
		return nil, err
	}
	return storage.Result{
		"id":         account.ID,
		"name":       account.Name,
		"role":       account.Role,
		"isDisabled": account.IsDisabled,
	}, nil
}

func (u *Units) createServiceToken(args *CreateServiceTokenDTO) (storage.Result, error) {
	account, err := u.Accounts.FindByProjectID(args.ProjectID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		// Ordering guarantees the account exists by now; a miss means
		// its write is not visible yet and a retry will see it.
		return nil, fmt.Errorf("no service account for project %s", args.ProjectID)
	}
	accountID, err := strconv.ParseInt(account.AccountID, 10, 64)
	if err != nil {
		return nil, err
	}
	token, err := u.Platform.CreateServiceToken(accountID, args.TokenName)
	if err != nil {
		return nil, err
	}
	if err := u.Accounts.UpdateToken(account.AccountID, token.Key); err != nil {
		return nil, err
	}
	return storage.Result{
		"id":   token.ID,
		"name": token.Name,
		"key":  token.Key,
	}, nil
}

func (u *Units) setFolderPermissions(args *SetFolderPermissionsDTO) (storage.Result, error) {
	folder, err := u.Folders.FindByUserID(args.UserID)
	if err != nil {
		return nil, err
	}
	if folder == nil {
		return nil, fmt.Errorf("no user folder for user %s", args.UserID)
	}
	account, err := u.Accounts.FindByProjectID(args.ProjectID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, fmt.Errorf("no service account for project %s", args.ProjectID)
	}
	accountID, err := strconv.ParseInt(account.AccountID, 10, 64)
	if err != nil {
		return nil, err
	}
	ack, err := u.Platform.SetFolderPermissions(folder.UID, accountID, int(domain.PermissionView))
	if err != nil {
		return nil, err
	}
	err = u.Permissions.Save(&domain.FolderPermission{
		ID:               uuid.NewString(),
		ServiceAccountID: account.AccountID,
		FolderUID:        folder.UID,
		Permission:       domain.PermissionView,
	})
	if err != nil {
		return nil, err
	}
	return storage.Result{"message": ack.Message}, nil
}

func (u *Units) createDashboard(args *CreateDashboardDTO) (storage.Result, error) {
	folder, err := u.Folders.FindByUserID(args.UserID)
	if err != nil {
		return nil, err
	}
	if folder == nil {
		return nil, fmt.Errorf("no user folder for user %s", args.UserID)
	}
	meta, err := u.Platform.CreateDashboard(args.DashboardConfig, folder.UID)
	if err != nil {
		return nil, err
	}
	err = u.Dashboards.Save(&domain.Dashboard{
		ID:         uuid.NewString(),
		UID:        meta.UID,
		Title:      args.DashboardTitle,
		UserID:     args.UserID,
		ProjectID:  args.ProjectID,
		OrgID:      folder.OrgID,
		FolderUID:  folder.UID,
		URL:        meta.URL,
		ConfigJSON: args.DashboardConfig,
	})
	if err != nil {
		return nil, err
	}
	return storage.Result{
		"uid": meta.UID,
		"url": meta.URL,
	}, nil
}

func (u *Units) createPublicDashboard(args *CreatePublicDashboardDTO) (storage.Result, error) {
	dashboard, err := u.Dashboards.FindByProjectID(args.ProjectID)
	if err != nil {
		return nil, err
	}
	if dashboard == nil {
		return nil, fmt.Errorf("no dashboard for project %s", args.ProjectID)
	}
	public, err := u.Platform.CreatePublicDashboard(dashboard.UID)
	if err != nil {
		return nil, err
	}
	err = u.PublicDashboards.Save(&domain.PublicDashboard{
		ID:          uuid.NewString(),
		UID:         public.UID,
		ProjectID:   args.ProjectID,
		DashboardID: dashboard.ID,
		PublicURL:   public.PublicURL,
		AccessToken: public.AccessToken,
	})
	if err != nil {
		return nil, err
	}
	return storage.Result{
		"uid":         public.UID,
		"publicUrl":   public.PublicURL,
		"accessToken": public.AccessToken,
	}, nil
}

func (u *Units) finalizeProject(args *FinalizeProjectDTO) (storage.Result, error) {
	folder, err := u.Folders.FindByUserID(args.UserID)
	if err != nil {
		return nil, err
	}
	userFolderID := ""
	if folder != nil {
		userFolderID = folder.ID
	}
	if err := u.Projects.MarkReady(args.ProjectID, userFolderID); err != nil {
		return nil, err
	}
	return storage.Result{"status": string(domain.Ready)}, nil
}

func (u *Units) failProject(args *ProvisionFailureDTO) (storage.Result, error) {
	if err := u.Projects.MarkFailed(args.ProjectID); err != nil {
		return nil, err
	}
	return storage.Result{"status": string(domain.Failed)}, nil
}
