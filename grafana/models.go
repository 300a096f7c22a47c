package grafana

// Folder - platform response for folder creation.
type Folder struct {
	UID   string `json:"uid"`
	Title string `json:"title"`
	OrgID int64  `json:"orgId"`
}

// ServiceAccount - platform response for service account creation.
type ServiceAccount struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	IsDisabled bool   `json:"isDisabled"`
}

// ServiceToken - platform response for token creation.
type ServiceToken struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Key  string `json:"key"`
}

// PermissionAck - platform response for permission updates.
type PermissionAck struct {
	Message string `json:"message"`
}

// DashboardMeta - platform response for dashboard creation.
type DashboardMeta struct {
	ID      int64  `json:"id"`
	UID     string `json:"uid"`
	URL     string `json:"url"`
	Status  string `json:"status"`
	Version int64  `json:"version"`
}

// PublicDashboard - platform response for public dashboard creation.
type PublicDashboard struct {
	UID          string `json:"uid"`
	DashboardUID string `json:"dashboardUid"`
	AccessToken  string `json:"accessToken"`
	PublicURL    string `json:"publicUrl"`
	IsEnabled    bool   `json:"isEnabled"`
}
