package provision

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gmyun1999/MY-LOG-BE/chassis/lock"
	"github.com/gmyun1999/MY-LOG-BE/chassis/queue"
	"github.com/gmyun1999/MY-LOG-BE/chassis/storage"
	"github.com/gmyun1999/MY-LOG-BE/grafana"
	"github.com/gmyun1999/MY-LOG-BE/repo"
)

const alwaysFail = -1

// fakePlatform counts calls per operation and can be told to fail the
// first N calls of one operation, or every call.
type fakePlatform struct {
	mu       sync.Mutex
	calls    map[string]int
	failures map[string]int
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		calls:    map[string]int{},
		failures: map[string]int{},
	}
}

func (p *fakePlatform) failFirst(op string, times int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failures[op] = times
}

func (p *fakePlatform) callCount(op string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[op]
}

func (p *fakePlatform) record(op string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls[op]++
	remaining := p.failures[op]
	if remaining == alwaysFail {
		return errors.New(op + ": injected failure")
	}
	if remaining > 0 {
		p.failures[op] = remaining - 1
		return errors.New(op + ": injected failure")
	}
	return nil
}

func (p *fakePlatform) CreateFolder(title string) (*grafana.Folder, error) {
	if err := p.record("CreateFolder"); err != nil {
		return nil, err
	}
	return &grafana.Folder{UID: "folder-uid", Title: title, OrgID: 1}, nil
}

func (p *fakePlatform) CreateServiceAccount(name, role string) (*grafana.ServiceAccount, error) {
	if err := p.record("CreateServiceAccount"); err != nil {
		return nil, err
	}
	return &grafana.ServiceAccount{ID: 42, Name: name, Role: role}, nil
}

func (p *fakePlatform) CreateServiceToken(accountID int64, tokenName string) (*grafana.ServiceToken, error) {
	if err := p.record("CreateServiceToken"); err != nil {
		return nil, err
	}
	return &grafana.ServiceToken{ID: 7, Name: tokenName, Key: "glsa_secret"}, nil
}

func (p *fakePlatform) SetFolderPermissions(folderUID string, accountID int64, permission int) (*grafana.PermissionAck, error) {
	if err := p.record("SetFolderPermissions"); err != nil {
		return nil, err
	}
	return &grafana.PermissionAck{Message: "Folder permissions updated"}, nil
}

func (p *fakePlatform) CreateDashboard(dashboard map[string]interface{}, folderUID string) (*grafana.DashboardMeta, error) {
	if err := p.record("CreateDashboard"); err != nil {
		return nil, err
	}
	return &grafana.DashboardMeta{ID: 9, UID: "dash-uid", URL: "/d/dash-uid", Status: "success"}, nil
}

func (p *fakePlatform) CreatePublicDashboard(dashboardUID string) (*grafana.PublicDashboard, error) {
	if err := p.record("CreatePublicDashboard"); err != nil {
		return nil, err
	}
	return &grafana.PublicDashboard{
		UID:          "pub-uid",
		DashboardUID: dashboardUID,
		AccessToken:  "pub-token",
		PublicURL:    "/public-dashboards/pub-token",
		IsEnabled:    true,
	}, nil
}

func (p *fakePlatform) GetFolders() ([]grafana.Folder, error) {
	if err := p.record("GetFolders"); err != nil {
		return nil, err
	}
	return nil, nil
}

func (p *fakePlatform) GetDashboard(uid string) (map[string]interface{}, error) {
	if err := p.record("GetDashboard"); err != nil {
		return nil, err
	}
	return map[string]interface{}{"uid": uid}, nil
}

// flakySendQueue delegates to the memory queue but fails the next N
// sends, the way a transient broker outage would.
type flakySendQueue struct {
	*queue.MemoryQueue
	mu       sync.Mutex
	failNext int
}

func (q *flakySendQueue) SendMessage(message string, delay time.Duration) error {
	q.mu.Lock()
	if q.failNext > 0 {
		q.failNext--
		q.mu.Unlock()
		return errors.New("queue unavailable")
	}
	q.mu.Unlock()
	return q.MemoryQueue.SendMessage(message, delay)
}

func (q *flakySendQueue) failNextSend() {
	q.mu.Lock()
	q.failNext++
	q.mu.Unlock()
}

// testEnv wires the whole workflow on in-process infrastructure.
type testEnv struct {
	platform *fakePlatform
	lock     *lock.MemoryLock
	store    *storage.MemoryTaskStore
	repos    *repo.MemoryRepositories
	queue    *queue.MemoryQueue
	runner   *Runner
	worker   *Config
	service  *Service
}

func newTestEnv() *testEnv {
	platform := newFakePlatform()
	memLock := lock.InitMemoryLock()
	store := storage.InitMemoryTaskStore()
	repos := repo.InitMemoryRepositories()
	memQueue := queue.InitMemoryQueue()
	units := &Units{
		Platform:         platform,
		Folders:          repos.Folders,
		Accounts:         repos.ServiceAccounts,
		Permissions:      repos.FolderPermissions,
		Dashboards:       repos.Dashboards,
		PublicDashboards: repos.PublicDashboards,
		Projects:         repos.Projects,
	}
	runner := &Runner{
		Lock:  memLock,
		Store: store,
		Units: units,
		Now:   func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) },
	}
	return &testEnv{
		platform: platform,
		lock:     memLock,
		store:    store,
		repos:    repos,
		queue:    memQueue,
		runner:   runner,
		worker:   &Config{Queue: memQueue, Runner: runner},
		service: &Service{
			Store:            store,
			Folders:          repos.Folders,
			Accounts:         repos.ServiceAccounts,
			Permissions:      repos.FolderPermissions,
			Dashboards:       repos.Dashboards,
			PublicDashboards: repos.PublicDashboards,
			Dispatcher:       &Dispatcher{Queue: memQueue},
		},
	}
}

// drain consumes deliveries until the queue is empty. The iteration cap
// guards against an envelope bouncing forever.
func (env *testEnv) drain(t *testing.T) {
	t.Helper()
	for i := 0; i < 200; i++ {
		if env.queue.Len() == 0 {
			return
		}
		msg, err := env.queue.ReceiveMessage()
		require.NoError(t, err)
		envelope := &Envelope{}
		require.NoError(t, envelope.FromJSON(msg.Body))
		require.NoError(t, process(env.worker, envelope))
		require.NoError(t, env.queue.Acknowledge(msg))
	}
	t.Fatal("queue did not drain")
}

func (env *testEnv) requireRecordStatus(t *testing.T, taskID string, want storage.TaskStatus) {
	t.Helper()
	record, err := env.store.FindByTaskID(taskID)
	require.NoError(t, err)
	require.NotNil(t, record, fmt.Sprintf("no record for task %s", taskID))
	require.Equal(t, want, record.Status)
}
