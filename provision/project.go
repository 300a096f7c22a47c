package provision

import (
	"errors"

	"github.com/google/uuid"

	"github.com/gmyun1999/MY-LOG-BE/agent"
	log "github.com/gmyun1999/MY-LOG-BE/chassis/logging"
	"github.com/gmyun1999/MY-LOG-BE/domain"
)

var (
	// ErrProjectNotFound ...
	ErrProjectNotFound = errors.New("monitoring project does not exist")
	// ErrNotOwner - the caller does not own the project.
	ErrNotOwner = errors.New("project belongs to another user")
	// ErrAlreadyReady - provisioning already finished.
	ErrAlreadyReady = errors.New("project is already provisioned")
	// ErrAlreadyProvisioning - a chain is already in flight.
	ErrAlreadyProvisioning = errors.New("project is already being provisioned")
	// ErrProjectFailed - previous chain ended in FAILED; needs operator
	// attention before another run.
	ErrProjectFailed = errors.New("project provisioning previously failed")
)

// ProjectService drives the two-step start flow: first the agent
// artifacts are generated and the project row is created, then the
// dashboard chain is dispatched.
type ProjectService struct {
	Projects  domain.ProjectRepo
	Agent     *agent.Service
	Provision *Service
}

// CreateProject persists a fresh project in the INITIATED state.
func (s *ProjectService) CreateProject(project *domain.MonitoringProject) error {
	if project.Status == "" {
		project.Status = domain.Initiated
	}
	return s.Projects.Save(project)
}

// StartLogProject creates the project and publishes its agent
// artifacts. The dashboard chain is not dispatched yet; the caller
// confirms with DispatchDashboard once the agent is installed.
func (s *ProjectService) StartLogProject(
	user *domain.User,
	name, description string,
	collectorCtx *agent.CollectorContext,
	routerCtx *agent.RouterContext,
	platform domain.PlatformType,
) (*domain.MonitoringProject, error) {
	projectID := uuid.New().String()
	collectorCtx.ProjectID = projectID
	routerCtx.ProjectID = projectID

	agentCtx, err := s.Agent.ProvisionArtifacts(projectID, collectorCtx, routerCtx, platform)
	if err != nil {
		return nil, err
	}

	project := &domain.MonitoringProject{
		ID:           projectID,
		UserID:       user.ID,
		Name:         name,
		ProjectType:  domain.LogMonitoring,
		Status:       domain.Initiated,
		Description:  description,
		AgentContext: agentCtx,
	}
	if err := s.CreateProject(project); err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{
		"event":     "log_project_created",
		"projectID": projectID,
		"userID":    user.ID,
	}).Info("agent artifacts ready")
	return project, nil
}

// checkOwnership ...
func (s *ProjectService) checkOwnership(user *domain.User, project *domain.MonitoringProject) error {
	if project.UserID != user.ID {
		return ErrNotOwner
	}
	return nil
}

// DispatchDashboard validates the project state and hands it to the
// provisioning service. Only INITIATED projects may enter the chain.
func (s *ProjectService) DispatchDashboard(user *domain.User, projectID string) error {
	project, err := s.Projects.FindByID(projectID)
	if err != nil {
		return err
	}
	if project == nil {
		return ErrProjectNotFound
	}
	if err := s.checkOwnership(user, project); err != nil {
		return err
	}
	switch project.Status {
	case domain.Failed:
		return ErrProjectFailed
	case domain.Ready:
		return ErrAlreadyReady
	case domain.InProgress:
		return ErrAlreadyProvisioning
	}

	if _, err := s.Provision.ProvisionLogDashboard(user, project); err != nil {
		return err
	}
	if err := s.Projects.UpdateStatus(projectID, domain.InProgress); err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"event":     "dashboard_dispatch",
		"projectID": projectID,
	}).Info("provisioning chain in progress")
	return nil
}
