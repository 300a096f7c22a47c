package domain

// PermissionLevel - visualization platform folder permission
type PermissionLevel int

const (
	PermissionView  PermissionLevel = 1
	PermissionEdit  PermissionLevel = 2
	PermissionAdmin PermissionLevel = 4
)

// UserFolder - platform folder mirrored locally, one per user.
type UserFolder struct {
	ID            string
	UID           string // platform folder uid, dedup key
	UserID        string
	Name          string
	OrgID         string
	CreatedByTask string
}

// ServiceAccount - platform service account, one per project.
type ServiceAccount struct {
	ID         string
	AccountID  string // platform account id, dedup key
	ProjectID  string
	UserID     string
	Name       string
	Role       string
	IsDisabled bool
	Token      string
}

// FolderPermission links a service account to a folder.
type FolderPermission struct {
	ID               string
	ServiceAccountID string
	FolderUID        string
	Permission       PermissionLevel
}

// Dashboard - platform dashboard mirrored locally.
type Dashboard struct {
	ID         string
	UID        string // platform dashboard uid, dedup key
	Title      string
	UserID     string
	ProjectID  string
	OrgID      string
	FolderUID  string
	URL        string
	ConfigJSON map[string]interface{}
}

// PublicDashboard - published version of a dashboard.
type PublicDashboard struct {
	ID          string
	UID         string // platform public dashboard uid, dedup key
	ProjectID   string
	DashboardID string
	PublicURL   string
	AccessToken string
}
