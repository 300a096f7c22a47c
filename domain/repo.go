package domain

// Repositories persist one row per external platform object. Every Save
// is an upsert keyed by the external identifier, so re-running a step
// after a crash converges instead of duplicating rows. Find methods
// return nil without error when nothing matches.

// FolderRepo - ...
type FolderRepo interface {
	Save(*UserFolder) error
	FindByUserID(userID string) (*UserFolder, error)
}

// ServiceAccountRepo - ...
type ServiceAccountRepo interface {
	Save(*ServiceAccount) error
	FindByProjectID(projectID string) (*ServiceAccount, error)
	UpdateToken(accountID, token string) error
}

// FolderPermissionRepo - ...
type FolderPermissionRepo interface {
	Save(*FolderPermission) error
	FindByServiceAccountID(accountID string) (*FolderPermission, error)
}

// DashboardRepo - ...
type DashboardRepo interface {
	Save(*Dashboard) error
	FindByProjectID(projectID string) (*Dashboard, error)
}

// PublicDashboardRepo - ...
type PublicDashboardRepo interface {
	Save(*PublicDashboard) error
	FindByProjectID(projectID string) (*PublicDashboard, error)
}

// ProjectRepo - ...
type ProjectRepo interface {
	Save(*MonitoringProject) error
	FindByID(id string) (*MonitoringProject, error)
	UpdateStatus(id string, status ProjectStatus) error
	MarkReady(id, userFolderID string) error
	MarkFailed(id string) error
}
