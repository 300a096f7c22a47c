package provision

import (
	"context"
	"sync"
	"time"

	log "github.com/gmyun1999/MY-LOG-BE/chassis/logging"
	"github.com/gmyun1999/MY-LOG-BE/chassis/storage"
)

// JanitorConfig ...
type JanitorConfig struct {
	Store     storage.TaskStore
	Interval  time.Duration
	Retention time.Duration
}

// RunJanitor periodically prunes terminal task records older than the
// retention window. Records still PENDING or STARTED are never touched.
func RunJanitor(ctx context.Context, cfg *JanitorConfig, group *sync.WaitGroup) {
	log.WithFields(log.Fields{
		"event": "start_janitor",
	}).Info("pruning task records older than ", cfg.Retention)
	group.Add(1)
	go func() {
		for {
			select {
			case <-ctx.Done():
				log.WithFields(log.Fields{
					"event":  "ctx_canceled",
					"worker": "janitor",
				}).Info("exit goroutine")
				group.Done()
				return
			case <-time.After(cfg.Interval):
				cleaned, err := cfg.Store.DeleteOlderThan(cfg.Retention)
				if err != nil {
					log.WithFields(log.Fields{
						"event":  "clean_table_failed",
						"worker": "janitor",
					}).Error(err)
					continue
				}
				log.WithFields(log.Fields{
					"event":  "clean_table",
					"worker": "janitor",
				}).Info("cleaned rows:", cleaned)
			}
		}
	}()
}
