package app

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/fieldstack/messaging-registration/internal/platform/messagebroker"
	"github.com/google/uuid"
)

const (
	// NATSRegistrationJobSubject carries registration job requests
	// enqueued by the HTTP API.
	NATSRegistrationJobSubject = "registration.jobs.submit.v1"
	// NATSRegistrationCompletedSubject carries workflow results for
	// interested consumers (dashboards, audit).
	NATSRegistrationCompletedSubject = "registration.events.completed.v1"
	// NATSRegistrationQueueGroup ensures one consumer instance handles
	// each job.
	NATSRegistrationQueueGroup = "registration-workers"
)

// RegistrationJobEvent is the payload of a registration job request.
type RegistrationJobEvent struct {
	JobID     uuid.UUID `json:"job_id"`
	CompanyID uuid.UUID `json:"company_id"`
}

// RegistrationCompletedEvent is published after a workflow run finishes.
type RegistrationCompletedEvent struct {
	JobID     uuid.UUID           `json:"job_id"`
	CompanyID uuid.UUID           `json:"company_id"`
	Result    *RegistrationResult `json:"result"`
}

// NATSConsumer receives registration jobs from NATS and runs the
// orchestration. The approval waits block for up to two polling windows,
// which is why the workflow runs here and not on the HTTP request path.
type NATSConsumer struct {
	orchestrator *Orchestrator
	natsClient   messagebroker.Client
	logger       *slog.Logger
}

// NewNATSConsumer creates a NATSConsumer.
func NewNATSConsumer(orchestrator *Orchestrator, natsClient messagebroker.Client, logger *slog.Logger) *NATSConsumer {
	return &NATSConsumer{
		orchestrator: orchestrator,
		natsClient:   natsClient,
		logger:       logger.With("component", "nats_consumer"),
	}
}

// HandleRegistrationJob processes one registration job request.
func (c *NATSConsumer) HandleRegistrationJob(ctx context.Context, subject string, data []byte) {
	natsJobsReceivedCounter.WithLabelValues(subject).Inc()

	var job RegistrationJobEvent
	if err := json.Unmarshal(data, &job); err != nil {
		c.logger.ErrorContext(ctx, "Failed to unmarshal registration job event", "error", err, "data", string(data))
		return
	}

	jobLogger := c.logger.With("job_id", job.JobID, "company_id", job.CompanyID)
	jobLogger.InfoContext(ctx, "Processing registration job")

	result := c.orchestrator.SubmitAutomatedVerification(ctx, job.CompanyID)
	jobLogger.InfoContext(ctx, "Registration job finished", "success", result.Success, "message", result.Message)

	completed := RegistrationCompletedEvent{
		JobID:     job.JobID,
		CompanyID: job.CompanyID,
		Result:    result,
	}
	payload, err := json.Marshal(completed)
	if err != nil {
		jobLogger.ErrorContext(ctx, "Failed to marshal registration completed event", "error", err)
		return
	}
	if err := c.natsClient.Publish(ctx, NATSRegistrationCompletedSubject, payload); err != nil {
		jobLogger.ErrorContext(ctx, "Failed to publish registration completed event", "error", err)
	}
}
