package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fieldstack/messaging-registration/internal/registration_service/domain"
)

const (
	// FailureReasonFetchFailed is returned when the status fetch itself
	// errors. Transport failures are not retried; the first one ends the
	// wait.
	FailureReasonFetchFailed = "Failed to fetch status"
	// FailureReasonTimeout is returned when no terminal status was
	// observed inside the polling window.
	FailureReasonTimeout = "Timeout waiting for approval"
)

// ApprovalStatus is one observation of a remote registration's state.
type ApprovalStatus struct {
	Status         domain.RegistrationStatus
	FailureReasons []domain.FailureReason
}

// StatusFetcher retrieves the current approval state of a registration.
type StatusFetcher func(ctx context.Context) (*ApprovalStatus, error)

// PollResult is the outcome of one bounded approval wait.
type PollResult struct {
	Approved      bool
	TimedOut      bool
	FailureReason string
}

// ApprovalPoller waits for a remote registration to reach a terminal
// state, checking at a fixed interval up to a deadline. Shared by the
// brand and campaign registrars.
type ApprovalPoller struct {
	interval time.Duration
	logger   *slog.Logger
}

// NewApprovalPoller creates an ApprovalPoller. A non-positive interval
// defaults to 5 seconds.
func NewApprovalPoller(interval time.Duration, logger *slog.Logger) *ApprovalPoller {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &ApprovalPoller{
		interval: interval,
		logger:   logger.With("component", "approval_poller"),
	}
}

// Wait polls fetch until a terminal status, a fetch failure, or the
// timeout elapses. The sleep between attempts is cooperative: context
// cancellation ends the wait as a timeout.
func (p *ApprovalPoller) Wait(ctx context.Context, fetch StatusFetcher, timeout time.Duration) PollResult {
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		status, err := fetch(ctx)
		if err != nil || status == nil {
			p.logger.WarnContext(ctx, "Approval status fetch failed, ending wait", "error", err)
			return PollResult{Approved: false, FailureReason: FailureReasonFetchFailed}
		}

		if status.Status.IsApproved() {
			return PollResult{Approved: true}
		}

		if status.Status.IsFailure() {
			return PollResult{Approved: false, FailureReason: extractFailureReason(status)}
		}

		p.logger.DebugContext(ctx, "Registration not terminal yet, sleeping", "status", status.Status, "interval", p.interval)
		select {
		case <-time.After(p.interval):
		case <-ctx.Done():
			return PollResult{Approved: false, TimedOut: true, FailureReason: FailureReasonTimeout}
		}
	}

	return PollResult{Approved: false, TimedOut: true, FailureReason: FailureReasonTimeout}
}

// extractFailureReason takes the first structured failure reason, or a
// generic "Registration <status>" string when the carrier sent none.
func extractFailureReason(status *ApprovalStatus) string {
	if len(status.FailureReasons) > 0 && status.FailureReasons[0].Description != "" {
		return status.FailureReasons[0].Description
	}
	return fmt.Sprintf("Registration %s", status.Status)
}
