package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	registrationRunsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "registration",
			Name:      "runs_total",
			Help:      "Total number of registration workflow runs.",
		},
		[]string{"entry_point", "outcome"}, // e.g. entry_point="automated_verification", outcome="success"
	)

	pipelineOutcomesCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "registration",
			Name:      "pipeline_outcomes_total",
			Help:      "Terminal outcomes per registration pipeline.",
		},
		[]string{"pipeline", "outcome"}, // pipeline="brand"|"campaign"|"toll_free"
	)

	approvalWaitDurationHist = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "registration",
			Name:      "approval_wait_duration_seconds",
			Help:      "Duration of bounded approval waits.",
			Buckets:   []float64{1, 5, 10, 20, 30, 45, 60, 90, 120},
		},
		[]string{"pipeline"},
	)

	numbersAttachedCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "registration",
			Name:      "numbers_attached_total",
			Help:      "Phone number attach attempts by result.",
		},
		[]string{"result"}, // "success" or "failure"
	)

	natsJobsReceivedCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "registration",
			Name:      "nats_jobs_received_total",
			Help:      "Total number of registration jobs received over NATS.",
		},
		[]string{"subject"},
	)
)
