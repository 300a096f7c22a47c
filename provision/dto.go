package provision

// Step parameter bundles. Each one exists only to carry the arguments
// for a single task signature; a nil DTO in WorkflowDTOs means the step
// is already satisfied and must be skipped.

// CreateUserFolderDTO - ...
type CreateUserFolderDTO struct {
	TaskID     string `json:"task_id"`
	UserID     string `json:"user_id"`
	FolderName string `json:"folder_name"`
}

// CreateServiceAccountDTO - ...
type CreateServiceAccountDTO struct {
	TaskID      string `json:"task_id"`
	ProjectID   string `json:"project_id"`
	AccountName string `json:"account_name"`
	UserID      string `json:"user_id"`
	Role        string `json:"role"`
}

// CreateServiceTokenDTO - ...
type CreateServiceTokenDTO struct {
	TaskID    string `json:"task_id"`
	ProjectID string `json:"project_id"`
	TokenName string `json:"token_name"`
}

// SetFolderPermissionsDTO - ...
type SetFolderPermissionsDTO struct {
	TaskID    string `json:"task_id"`
	UserID    string `json:"user_id"`
	ProjectID string `json:"project_id"`
}

// CreateDashboardDTO - ...
type CreateDashboardDTO struct {
	TaskID          string                 `json:"task_id"`
	UserID          string                 `json:"user_id"`
	ProjectID       string                 `json:"project_id"`
	DashboardTitle  string                 `json:"dashboard_title"`
	DashboardConfig map[string]interface{} `json:"dashboard_config"`
}

// CreatePublicDashboardDTO - ...
type CreatePublicDashboardDTO struct {
	TaskID    string `json:"task_id"`
	ProjectID string `json:"project_id"`
}

// FinalizeProjectDTO - ...
type FinalizeProjectDTO struct {
	TaskID    string `json:"task_id"`
	UserID    string `json:"user_id"`
	ProjectID string `json:"project_id"`
}

// ProvisionFailureDTO - error link arguments; always present.
type ProvisionFailureDTO struct {
	TaskID    string `json:"task_id"`
	ProjectID string `json:"project_id"`
}
