package provision

import (
	"context"
	"sync"

	log "github.com/gmyun1999/MY-LOG-BE/chassis/logging"
	"github.com/gmyun1999/MY-LOG-BE/chassis/queue"
)

// Config ...
type Config struct {
	Queue   queue.Client
	Runner  *Runner
	Workers int
}

// process runs the current step of one delivered envelope and routes
// the outcome: advance the chain, redeliver, or fire the error link.
func process(cfg *Config, envelope *Envelope) error {
	step := envelope.Current()
	if step == nil {
		log.WithFields(log.Fields{
			"event": "empty_envelope",
		}).Warn("nothing left to execute")
		return nil
	}

	result := cfg.Runner.Run(step, envelope.Attempt)
	stepOutcomes.WithLabelValues(string(step.Name), string(result.Outcome)).Inc()

	switch result.Outcome {
	case Completed:
		envelope.Position++
		envelope.Attempt = 0
		next := envelope.Current()
		if next == nil {
			log.WithFields(log.Fields{
				"event":  "chain_finished",
				"taskID": step.TaskID,
			}).Info("all steps executed")
			return nil
		}
		message, err := envelope.JSON()
		if err != nil {
			return err
		}
		return cfg.Queue.SendMessage(message, 0)
	case Dropped:
		// No task record backs this delivery; nothing to advance.
		return nil
	case Rescheduled:
		message, err := envelope.JSON()
		if err != nil {
			return err
		}
		return cfg.Queue.SendMessage(message, result.Delay)
	case Retrying:
		envelope.Attempt++
		message, err := envelope.JSON()
		if err != nil {
			return err
		}
		return cfg.Queue.SendMessage(message, result.Delay)
	case Failed:
		if envelope.Failure == nil {
			// The error link itself failed. There is nothing left to
			// invoke, the FAILURE record is the terminal trace.
			log.WithFields(log.Fields{
				"event":  "error_link_exhausted",
				"taskID": step.TaskID,
			}).Error(result.Err)
			return nil
		}
		log.WithFields(log.Fields{
			"event":  "chain_aborted",
			"taskID": step.TaskID,
			"task":   step.Name,
		}).Error(result.Err)
		failureEnvelope := &Envelope{Steps: []Step{*envelope.Failure}}
		message, err := failureEnvelope.JSON()
		if err != nil {
			return err
		}
		if err := cfg.Queue.SendMessage(message, 0); err != nil {
			return err
		}
		failureChainsDispatched.Inc()
		return nil
	}
	return nil
}

func worker(ctx context.Context, cfg *Config, workerID int, group *sync.WaitGroup) {
	cli := cfg.Queue
	for {
		select {
		case <-ctx.Done():
			log.WithFields(log.Fields{
				"event":  "ctx_canceled",
				"worker": workerID,
			}).Info("exit goroutine")
			group.Done()
			return
		default:
			msg, err := cli.ReceiveMessage()
			if err != nil {
				log.WithFields(log.Fields{
					"event":  "receive_failed",
					"worker": workerID,
				}).Error(err)
				continue
			}
			envelope := &Envelope{}
			if err := envelope.FromJSON(msg.Body); err != nil {
				log.WithFields(log.Fields{
					"event":  "receive_broken_message",
					"worker": workerID,
				}).Error(err)
				continue
			}
			log.WithFields(log.Fields{
				"event":    "receive_message",
				"worker":   workerID,
				"position": envelope.Position,
				"attempt":  envelope.Attempt,
			}).Info(envelope)
			if err := process(cfg, envelope); err != nil {
				log.WithFields(log.Fields{
					"event":  "process_failed",
					"worker": workerID,
				}).Error(err)
				continue
			}
			if err := cli.Acknowledge(msg); err != nil {
				log.WithFields(log.Fields{
					"event":  "ack_message_failed",
					"worker": workerID,
				}).Error(err)
				continue
			}
		}
	}
}

// Run ...
func Run(ctx context.Context, cfg *Config, group *sync.WaitGroup) {
	log.WithFields(log.Fields{
		"event": "start_service",
	}).Info("starting ", cfg.Workers, " workers")
	for wrk := 1; wrk <= cfg.Workers; wrk++ {
		group.Add(1)
		go worker(ctx, cfg, wrk, group)
	}
}
