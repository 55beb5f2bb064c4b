package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/fieldstack/messaging-registration/internal/platform/messagebroker"
	"github.com/fieldstack/messaging-registration/internal/registration_service/domain"
	"github.com/google/uuid"
)

// NATSVerificationSubmittedSubject carries the "verification submitted"
// email event consumed by the notification service.
const NATSVerificationSubmittedSubject = "notifications.email.verification_submitted.v1"

// VerificationSubmittedEvent is the payload published for the notification
// service to render and send.
type VerificationSubmittedEvent struct {
	CompanyID uuid.UUID                  `json:"company_id"`
	Email     string                     `json:"email"`
	Summary   domain.VerificationSummary `json:"summary"`
}

// NATSNotifier publishes notification events to NATS. Delivery is handled
// by a separate email service.
type NATSNotifier struct {
	natsClient messagebroker.Client
	logger     *slog.Logger
}

// NewNATSNotifier creates a NATSNotifier.
func NewNATSNotifier(natsClient messagebroker.Client, logger *slog.Logger) *NATSNotifier {
	return &NATSNotifier{
		natsClient: natsClient,
		logger:     logger.With("adapter", "notifier"),
	}
}

// SendVerificationSubmitted publishes the verification-submitted event.
func (n *NATSNotifier) SendVerificationSubmitted(ctx context.Context, companyID uuid.UUID, email string, summary domain.VerificationSummary) error {
	event := VerificationSubmittedEvent{
		CompanyID: companyID,
		Email:     email,
		Summary:   summary,
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal verification submitted event: %w", err)
	}
	if err := n.natsClient.Publish(ctx, NATSVerificationSubmittedSubject, payload); err != nil {
		return fmt.Errorf("failed to publish verification submitted event: %w", err)
	}
	n.logger.InfoContext(ctx, "Published verification submitted notification", "company_id", companyID, "email", email)
	return nil
}
