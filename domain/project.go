package domain

// MonitoringType - ...
type MonitoringType string

const (
	LogMonitoring    MonitoringType = "LOG"
	MetricMonitoring MonitoringType = "METRIC"
)

// ProjectStatus - monitoring project's possible states
type ProjectStatus string

const (
	// Initiated - creation request accepted, no provisioning dispatched yet.
	Initiated ProjectStatus = "INITIATED"
	// InProgress - provisioning chain dispatched and running.
	InProgress ProjectStatus = "IN_PROGRESS"
	// Ready - every provisioning step finished, project usable.
	Ready ProjectStatus = "READY"
	// Failed - at least one step failed terminally.
	Failed ProjectStatus = "FAILED"
)

// PlatformType - target OS for the agent bootstrap script
type PlatformType string

const (
	PlatformWindows PlatformType = "WINDOWS"
	PlatformLinux   PlatformType = "LINUX"
)

// AgentContext - where a project's generated agent artifacts live.
type AgentContext struct {
	BaseStaticURL      string       `json:"base_static_url"`
	CollectorConfigURL string       `json:"collector_config_url"`
	RouterConfigURL    string       `json:"router_config_url"`
	SetUpScriptURL     string       `json:"set_up_script_url"`
	Timestamp          int64        `json:"timestamp"`
	Platform           PlatformType `json:"platform"`
}

// MonitoringProject - the aggregate the provisioning workflow works for.
// Status becomes Ready only through the finalize task and Failed only
// through the failure handler task.
type MonitoringProject struct {
	ID               string
	UserID           string
	Name             string
	ProjectType      MonitoringType
	Status           ProjectStatus
	Description      string
	DashboardID      string
	UserFolderID     string
	ServiceAccountID string
	AgentContext     *AgentContext
}

// User - the owner a dashboard is provisioned for.
type User struct {
	ID   string
	Name string
}
