package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fieldstack/messaging-registration/internal/registration_service/adapters/carrier"
	"github.com/fieldstack/messaging-registration/internal/registration_service/domain"
)

// TollFreeRegistrar submits toll-free verification requests. Carrier
// review is multi-day and out-of-band; there is no polling here, only
// submission and recording of the request id.
type TollFreeRegistrar struct {
	tollFreeAPI carrier.TollFreeAPI
	logger      *slog.Logger
}

// NewTollFreeRegistrar creates a TollFreeRegistrar.
func NewTollFreeRegistrar(tollFreeAPI carrier.TollFreeAPI, logger *slog.Logger) *TollFreeRegistrar {
	return &TollFreeRegistrar{
		tollFreeAPI: tollFreeAPI,
		logger:      logger.With("component", "tollfree_registrar"),
	}
}

// Submit builds the verification payload from the company profile and
// submits it for the given toll-free numbers.
func (r *TollFreeRegistrar) Submit(ctx context.Context, company *domain.Company, numbers []string) (*domain.TollFreeVerificationRequest, error) {
	profile := carrier.TollFreeProfile{
		BusinessName:     company.LegalName,
		EIN:              domain.SanitizeEIN(company.EIN),
		ContactEmail:     company.ContactEmail,
		OptInWorkflowURL: deriveOptInURL(company.Website),
		SampleMessages:   defaultSampleMessages(company.LegalName),
		OptInKeywords:    defaultOptInKeywords(),
		OptOutKeywords:   defaultOptOutKeywords(),
		PhoneNumbers:     numbers,
		MonthlyVolume:    1000,
	}

	requestID, err := r.tollFreeAPI.SubmitVerification(ctx, profile)
	if err != nil {
		pipelineOutcomesCounter.WithLabelValues("toll_free", "submit_failed").Inc()
		return nil, fmt.Errorf("toll-free verification submission failed: %w", err)
	}

	pipelineOutcomesCounter.WithLabelValues("toll_free", "submitted").Inc()
	r.logger.InfoContext(ctx, "Toll-free verification submitted", "request_id", requestID, "company_id", company.ID, "number_count", len(numbers))

	return &domain.TollFreeVerificationRequest{
		ID:          requestID,
		SubmittedAt: time.Now().UTC(),
		Status:      domain.TollFreeStatusPending,
	}, nil
}

// deriveOptInURL points the carrier reviewer at the company's opt-in
// evidence page.
func deriveOptInURL(website string) string {
	if website == "" {
		return ""
	}
	if !strings.HasPrefix(website, "http://") && !strings.HasPrefix(website, "https://") {
		website = "https://" + website
	}
	return strings.TrimSuffix(website, "/") + "/contact"
}
