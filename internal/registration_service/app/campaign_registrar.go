package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fieldstack/messaging-registration/internal/registration_service/adapters/carrier"
	"github.com/fieldstack/messaging-registration/internal/registration_service/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// CampaignOutcome is the result of one campaign registration attempt.
// CampaignID is set whenever the create call succeeded.
type CampaignOutcome struct {
	CampaignID      string
	Approved        bool
	PendingApproval bool
}

// CampaignRegistrar creates a messaging campaign under an approved brand,
// waits for its approval, and attaches phone numbers to it.
type CampaignRegistrar struct {
	campaignAPI carrier.CampaignAPI
	poller      *ApprovalPoller
	timeout     time.Duration
	logger      *slog.Logger
}

// NewCampaignRegistrar creates a CampaignRegistrar.
func NewCampaignRegistrar(campaignAPI carrier.CampaignAPI, poller *ApprovalPoller, timeout time.Duration, logger *slog.Logger) *CampaignRegistrar {
	return &CampaignRegistrar{
		campaignAPI: campaignAPI,
		poller:      poller,
		timeout:     timeout,
		logger:      logger.With("component", "campaign_registrar"),
	}
}

// Register submits the campaign and waits for a terminal approval state,
// with the same terminal-state and timeout rules as the brand wait.
func (r *CampaignRegistrar) Register(ctx context.Context, brandID string, company *domain.Company) (*CampaignOutcome, error) {
	profile := carrier.CampaignProfile{
		Description:    fmt.Sprintf("Customer service notifications for %s: appointment scheduling, reminders, and invoicing updates.", company.LegalName),
		Vertical:       domain.VerticalForIndustry(company.Industry),
		UseCase:        "customer_care",
		SampleMessages: defaultSampleMessages(company.LegalName),
		OptInKeywords:  defaultOptInKeywords(),
		OptOutKeywords: defaultOptOutKeywords(),
	}

	campaignID, err := r.campaignAPI.CreateCampaign(ctx, brandID, profile)
	if err != nil {
		if errors.Is(err, domain.ErrAccountVerificationRequired) {
			r.logger.WarnContext(ctx, "Campaign creation blocked by platform account verification", "brand_id", brandID)
			pipelineOutcomesCounter.WithLabelValues("campaign", "account_verification_required").Inc()
			return nil, err
		}
		pipelineOutcomesCounter.WithLabelValues("campaign", "create_failed").Inc()
		return nil, fmt.Errorf("campaign creation failed: %w", err)
	}
	r.logger.InfoContext(ctx, "Campaign created, waiting for approval", "campaign_id", campaignID, "brand_id", brandID)

	timer := prometheus.NewTimer(approvalWaitDurationHist.WithLabelValues("campaign"))
	result := r.poller.Wait(ctx, func(ctx context.Context) (*ApprovalStatus, error) {
		campaign, err := r.campaignAPI.GetCampaign(ctx, campaignID)
		if err != nil {
			return nil, err
		}
		return &ApprovalStatus{Status: campaign.Status, FailureReasons: campaign.FailureReasons}, nil
	}, r.timeout)
	timer.ObserveDuration()

	outcome := &CampaignOutcome{CampaignID: campaignID}

	switch {
	case result.Approved:
		outcome.Approved = true
		pipelineOutcomesCounter.WithLabelValues("campaign", "approved").Inc()
		return outcome, nil
	case result.TimedOut:
		r.logger.WarnContext(ctx, "Campaign approval wait timed out, keeping id", "campaign_id", campaignID)
		outcome.PendingApproval = true
		pipelineOutcomesCounter.WithLabelValues("campaign", "timed_out").Inc()
		return outcome, nil
	default:
		pipelineOutcomesCounter.WithLabelValues("campaign", "rejected").Inc()
		return outcome, &domain.RegistrationFailure{Stage: "campaign", ID: campaignID, Reason: result.FailureReason}
	}
}

// AttachNumbers attaches each number to the campaign in turn. Attaches are
// independent: a failure is recorded and the batch continues. Returns the
// count of successful attaches and every attempt for the trace log.
func (r *CampaignRegistrar) AttachNumbers(ctx context.Context, campaignID string, numbers []string) (int, []domain.AttachAttempt) {
	attached := 0
	attempts := make([]domain.AttachAttempt, 0, len(numbers))

	for _, number := range numbers {
		if err := r.campaignAPI.AttachNumber(ctx, campaignID, number); err != nil {
			r.logger.WarnContext(ctx, "Failed to attach number to campaign", "campaign_id", campaignID, "number", number, "error", err)
			numbersAttachedCounter.WithLabelValues("failure").Inc()
			attempts = append(attempts, domain.AttachAttempt{Number: number, Success: false, Error: err.Error()})
			continue
		}
		attached++
		numbersAttachedCounter.WithLabelValues("success").Inc()
		attempts = append(attempts, domain.AttachAttempt{Number: number, Success: true})
	}

	r.logger.InfoContext(ctx, "Number attachment batch finished", "campaign_id", campaignID, "attached", attached, "total", len(numbers))
	return attached, attempts
}

func defaultSampleMessages(legalName string) []string {
	return []string{
		fmt.Sprintf("%s: Your technician is on the way and will arrive within the hour. Reply STOP to opt out.", legalName),
		fmt.Sprintf("%s: Reminder, your service appointment is scheduled for tomorrow at 9:00 AM. Reply STOP to opt out.", legalName),
		fmt.Sprintf("%s: Your invoice is ready. View and pay online at the link we emailed you. Reply STOP to opt out.", legalName),
	}
}

func defaultOptInKeywords() []string {
	return []string{"START", "YES", "UNSTOP"}
}

func defaultOptOutKeywords() []string {
	return []string{"STOP", "STOPALL", "UNSUBSCRIBE", "CANCEL", "END", "QUIT"}
}
