package provision

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	stepOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mylog",
		Subsystem: "provision",
		Name:      "step_outcomes_total",
		Help:      "Provisioning step results by task name and outcome.",
	}, []string{"task_name", "outcome"})

	workflowsDispatched = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "mylog",
		Subsystem: "provision",
		Name:      "workflows_dispatched_total",
		Help:      "Provisioning chains submitted to the queue.",
	})

	failureChainsDispatched = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "mylog",
		Subsystem: "provision",
		Name:      "failure_chains_dispatched_total",
		Help:      "Error handler envelopes dispatched after a terminal step failure.",
	})
)
