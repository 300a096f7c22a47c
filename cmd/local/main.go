package main

import (
	"context"
	"sync"
	"time"

	log "github.com/gmyun1999/MY-LOG-BE/chassis/logging"

	"github.com/gmyun1999/MY-LOG-BE/agent"
	"github.com/gmyun1999/MY-LOG-BE/chassis/config"
	"github.com/gmyun1999/MY-LOG-BE/chassis/lock"
	"github.com/gmyun1999/MY-LOG-BE/chassis/queue"
	"github.com/gmyun1999/MY-LOG-BE/chassis/storage"
	"github.com/gmyun1999/MY-LOG-BE/domain"
	"github.com/gmyun1999/MY-LOG-BE/grafana"
	"github.com/gmyun1999/MY-LOG-BE/provision"
	"github.com/gmyun1999/MY-LOG-BE/repo"
)

// Single-process run against a real Grafana instance: in-memory queue,
// lock, stores and agent storage, so nothing but Grafana is required.
func main() {
	appCfg, err := config.Read()
	if err != nil {
		log.WithFields(log.Fields{
			"event": "config_read_failed",
		}).Fatal(err)
	}
	log.Init("local", "debug")

	memQueue := queue.InitMemoryQueue()
	memLock := lock.InitMemoryLock()
	store := storage.InitMemoryTaskStore()
	repos := repo.InitMemoryRepositories()
	platform := grafana.InitHTTPClient(grafana.Config{
		URL:         appCfg.Grafana.URL,
		AdminAPIKey: appCfg.Grafana.AdminAPIKey,
	})

	provisionSvc := &provision.Service{
		Store:            store,
		Folders:          repos.Folders,
		Accounts:         repos.ServiceAccounts,
		Permissions:      repos.FolderPermissions,
		Dashboards:       repos.Dashboards,
		PublicDashboards: repos.PublicDashboards,
		Dispatcher:       &provision.Dispatcher{Queue: memQueue},
	}
	projectSvc := &provision.ProjectService{
		Projects:  repos.Projects,
		Agent:     &agent.Service{Storage: agent.InitMemoryStorage()},
		Provision: provisionSvc,
	}
	cfg := &provision.Config{
		Queue: memQueue,
		Runner: &provision.Runner{
			Lock:  memLock,
			Store: store,
			Units: &provision.Units{
				Platform:         platform,
				Folders:          repos.Folders,
				Accounts:         repos.ServiceAccounts,
				Permissions:      repos.FolderPermissions,
				Dashboards:       repos.Dashboards,
				PublicDashboards: repos.PublicDashboards,
				Projects:         repos.Projects,
			},
		},
		Workers: 2,
	}

	var group sync.WaitGroup
	ctx, cancel := context.WithCancel(context.Background())
	provision.Run(ctx, cfg, &group)

	user := &domain.User{ID: "local-user", Name: "local"}
	project, err := projectSvc.StartLogProject(user, "local-demo", "local smoke run",
		&agent.CollectorContext{
			Hosts:            []string{"localhost:5044"},
			LogPaths:         []string{"/var/log/demo/*.log"},
			InputType:        agent.InputPlain,
			MultilinePattern: `^\d{4}-\d{2}-\d{2}`,
		},
		&agent.RouterContext{
			MQHost:         "localhost",
			MQPort:         5672,
			MQUser:         "guest",
			MQPassword:     "guest",
			MQVHost:        "/",
			MQExchange:     "logs",
			MQExchangeType: "topic",
			MQRoutingKey:   "logs.demo",
		},
		domain.PlatformLinux,
	)
	if err != nil {
		log.WithFields(log.Fields{
			"event": "start_project_failed",
		}).Fatal(err)
	}
	if err := projectSvc.DispatchDashboard(user, project.ID); err != nil {
		log.WithFields(log.Fields{
			"event": "dispatch_failed",
		}).Fatal(err)
	}

	// Poll until the chain settles one way or the other.
	for i := 0; i < 120; i++ {
		time.Sleep(time.Second)
		current, err := repos.Projects.FindByID(project.ID)
		if err != nil || current == nil {
			continue
		}
		if current.Status == domain.Ready || current.Status == domain.Failed {
			log.WithFields(log.Fields{
				"event":     "chain_settled",
				"projectID": project.ID,
				"status":    current.Status,
			}).Info("local run finished")
			break
		}
	}
	cancel()
	group.Wait()
}
