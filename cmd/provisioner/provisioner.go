package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	log "github.com/gmyun1999/MY-LOG-BE/chassis/logging"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gmyun1999/MY-LOG-BE/agent"
	"github.com/gmyun1999/MY-LOG-BE/chassis/config"
	"github.com/gmyun1999/MY-LOG-BE/chassis/lock"
	"github.com/gmyun1999/MY-LOG-BE/chassis/queue"
	"github.com/gmyun1999/MY-LOG-BE/chassis/storage"
	"github.com/gmyun1999/MY-LOG-BE/grafana"
	"github.com/gmyun1999/MY-LOG-BE/provision"
	"github.com/gmyun1999/MY-LOG-BE/repo"
)

func main() {
	appCfg, err := config.Read()
	if err != nil {
		log.WithFields(log.Fields{
			"event": "config_read_failed",
		}).Fatal(err)
	}
	log.Init("provisioner", appCfg.Provisioner.LogLevel)
	log.WithFields(log.Fields{
		"event": "init_service",
	}).Info("service initialized")

	store, err := storage.InitPGTaskStore(storage.Config{
		DSN: appCfg.Storage.DSN,
	})
	if err != nil {
		log.WithFields(log.Fields{
			"event": "storage_init_failed",
		}).Fatal(err)
	}
	repos, err := repo.InitPGRepositories(repo.Config{
		DSN: appCfg.Storage.DSN,
	})
	if err != nil {
		log.WithFields(log.Fields{
			"event": "repo_init_failed",
		}).Fatal(err)
	}
	taskLock, err := lock.InitRedisLock(lock.Config{
		Addr:     appCfg.Redis.Addr,
		Password: appCfg.Redis.Password,
		DB:       appCfg.Redis.DB,
	})
	if err != nil {
		log.WithFields(log.Fields{
			"event": "lock_init_failed",
		}).Fatal(err)
	}
	queueClient := queue.InitAWSQueue(queue.Config{
		Name:    appCfg.Provisioner.Queue.Name,
		URL:     appCfg.Provisioner.Queue.URL,
		Retries: appCfg.Provisioner.Queue.Retries,

		//AWS specific
		Region:             appCfg.AWS.Region,
		CredentialsFile:    appCfg.AWS.CredentialsFile,
		CredentialsProfile: appCfg.AWS.CredentialsProfile,
	})
	platform := grafana.InitHTTPClient(grafana.Config{
		URL:         appCfg.Grafana.URL,
		AdminAPIKey: appCfg.Grafana.AdminAPIKey,
	})

	cfg := &provision.Config{
		Queue: queueClient,
		Runner: &provision.Runner{
			Lock:  taskLock,
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
		Workers: appCfg.Provisioner.Workers,
	}

	agentStorage := agent.InitS3Storage(agent.StorageConfig{
		Bucket: appCfg.AgentStorage.Bucket,
		Region: appCfg.AgentStorage.Region,
	})
	api := &provision.API{
		Projects: &provision.ProjectService{
			Projects: repos.Projects,
			Agent:    &agent.Service{Storage: agentStorage},
			Provision: &provision.Service{
				Store:            store,
				Folders:          repos.Folders,
				Accounts:         repos.ServiceAccounts,
				Permissions:      repos.FolderPermissions,
				Dashboards:       repos.Dashboards,
				PublicDashboards: repos.PublicDashboards,
				Dispatcher:       &provision.Dispatcher{Queue: queueClient},
			},
		},
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	var group sync.WaitGroup
	ctx, cancel := context.WithCancel(context.Background())

	provision.Run(ctx, cfg, &group)
	retention := 24 * time.Hour
	if appCfg.Provisioner.RetentionHours > 0 {
		retention = time.Duration(appCfg.Provisioner.RetentionHours) * time.Hour
	}
	provision.RunJanitor(ctx, &provision.JanitorConfig{
		Store:     store,
		Interval:  time.Minute,
		Retention: retention,
	}, &group)
	router := mux.NewRouter()
	router.Handle("/metrics", promhttp.Handler())
	api.Register(router)

	srv := &http.Server{
		Addr:    ":2112",
		Handler: router,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(fmt.Sprintf("listen: %s\n", err))
		}
	}()
	<-done
	log.WithFields(log.Fields{
		"event": "ctx_cancel",
	}).Info("received syscall")
	cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error(fmt.Sprintf("Server Shutdown Failed:%+v", err))
	}
	group.Wait()
}
