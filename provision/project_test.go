package provision

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gmyun1999/MY-LOG-BE/agent"
	"github.com/gmyun1999/MY-LOG-BE/domain"
)

func newProjectService(env *testEnv) (*ProjectService, *agent.MemoryStorage) {
	storage := agent.InitMemoryStorage()
	return &ProjectService{
		Projects:  env.repos.Projects,
		Agent:     &agent.Service{Storage: storage},
		Provision: env.service,
	}, storage
}

func collectorFixture() *agent.CollectorContext {
	return &agent.CollectorContext{
		Hosts:            []string{"router.internal:5044"},
		LogPaths:         []string{"/var/log/app/*.log"},
		InputType:        agent.InputPlain,
		MultilinePattern: `^\d{4}-\d{2}-\d{2}`,
	}
}

func routerFixture() *agent.RouterContext {
	return &agent.RouterContext{
		MQHost:         "mq.internal",
		MQPort:         5672,
		MQUser:         "agent",
		MQPassword:     "secret",
		MQVHost:        "/",
		MQExchange:     "logs",
		MQExchangeType: "topic",
		MQRoutingKey:   "logs.app",
	}
}

func TestStartLogProjectPublishesArtifacts(t *testing.T) {
	env := newTestEnv()
	svc, _ := newProjectService(env)
	user := &domain.User{ID: "u1", Name: "jane"}

	project, err := svc.StartLogProject(user, "payments", "payment service logs",
		collectorFixture(), routerFixture(), domain.PlatformLinux)
	require.NoError(t, err)

	require.Equal(t, domain.Initiated, project.Status)
	require.Equal(t, domain.LogMonitoring, project.ProjectType)
	require.NotNil(t, project.AgentContext)
	require.Contains(t, project.AgentContext.CollectorConfigURL, project.ID)
	require.Contains(t, project.AgentContext.SetUpScriptURL, "setup-agent.sh")
	require.Equal(t, domain.PlatformLinux, project.AgentContext.Platform)

	stored, err := env.repos.Projects.FindByID(project.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.Equal(t, domain.Initiated, stored.Status)

	// Nothing enters the queue until the dashboard dispatch step.
	require.Equal(t, 0, env.queue.Len())
}

func TestDispatchDashboardMovesProjectInProgress(t *testing.T) {
	env := newTestEnv()
	svc, _ := newProjectService(env)
	user := &domain.User{ID: "u1", Name: "jane"}

	project, err := svc.StartLogProject(user, "payments", "",
		collectorFixture(), routerFixture(), domain.PlatformLinux)
	require.NoError(t, err)

	require.NoError(t, svc.DispatchDashboard(user, project.ID))

	stored, err := env.repos.Projects.FindByID(project.ID)
	require.NoError(t, err)
	require.Equal(t, domain.InProgress, stored.Status)
	require.Equal(t, 1, env.queue.Len())
}

func TestDispatchDashboardStateGates(t *testing.T) {
	env := newTestEnv()
	svc, _ := newProjectService(env)
	owner := &domain.User{ID: "u1", Name: "jane"}
	stranger := &domain.User{ID: "u2", Name: "mallory"}

	require.Error(t, svc.DispatchDashboard(owner, "missing"))
	require.ErrorIs(t, svc.DispatchDashboard(owner, "missing"), ErrProjectNotFound)

	project, err := svc.StartLogProject(owner, "payments", "",
		collectorFixture(), routerFixture(), domain.PlatformWindows)
	require.NoError(t, err)

	require.ErrorIs(t, svc.DispatchDashboard(stranger, project.ID), ErrNotOwner)

	require.NoError(t, env.repos.Projects.UpdateStatus(project.ID, domain.InProgress))
	require.ErrorIs(t, svc.DispatchDashboard(owner, project.ID), ErrAlreadyProvisioning)

	require.NoError(t, env.repos.Projects.UpdateStatus(project.ID, domain.Ready))
	require.ErrorIs(t, svc.DispatchDashboard(owner, project.ID), ErrAlreadyReady)

	require.NoError(t, env.repos.Projects.UpdateStatus(project.ID, domain.Failed))
	require.ErrorIs(t, svc.DispatchDashboard(owner, project.ID), ErrProjectFailed)
}
