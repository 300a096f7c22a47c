package storage

import (
	"time"
)

// TaskStatus - dispatched task's possible states
type TaskStatus string

const (
	PENDING TaskStatus = "PENDING"
	STARTED TaskStatus = "STARTED"
	SUCCESS TaskStatus = "SUCCESS"
	FAILURE TaskStatus = "FAILURE"
)

// TaskName - provisioning step's possible kinds
type TaskName string

const (
	CreateUserFolder      TaskName = "create_dashboard_user_folder"
	CreateServiceAccount  TaskName = "create_dashboard_service_account"
	CreateServiceToken    TaskName = "create_dashboard_service_token"
	SetFolderPermissions  TaskName = "set_folder_permissions"
	CreateDashboard       TaskName = "create_dashboard"
	CreatePublicDashboard TaskName = "create_public_dashboard"
	FinalizeProject       TaskName = "finalize_monitoring_project"
	FailProject           TaskName = "handle_monitoring_project_failure"
)

// Result - opaque structured payload a task body returns.
type Result map[string]interface{}

// TaskRecord - durable record of one dispatched task.
// Status moves PENDING -> STARTED -> {SUCCESS | FAILURE}; the two
// terminal states must never re-execute the task body.
type TaskRecord struct {
	ID          string
	TaskName    TaskName
	Status      TaskStatus
	Result      Result
	DateCreated time.Time
	DateStarted *time.Time
	DateDone    *time.Time
	Traceback   string
	Retries     int
}
