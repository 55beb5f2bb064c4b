package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fieldstack/messaging-registration/internal/registration_service/adapters/carrier"
	"github.com/fieldstack/messaging-registration/internal/registration_service/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// BrandOutcome is the result of one brand registration attempt. BrandID is
// set whenever the create call succeeded, even if approval later failed or
// timed out, so the caller can persist it for cheaper retries.
type BrandOutcome struct {
	BrandID         string
	Approved        bool
	PendingApproval bool
}

// BrandRegistrar creates a legal-entity brand with the vetting body and
// waits for its approval.
type BrandRegistrar struct {
	brandAPI carrier.BrandAPI
	poller   *ApprovalPoller
	timeout  time.Duration
	logger   *slog.Logger
}

// NewBrandRegistrar creates a BrandRegistrar.
func NewBrandRegistrar(brandAPI carrier.BrandAPI, poller *ApprovalPoller, timeout time.Duration, logger *slog.Logger) *BrandRegistrar {
	return &BrandRegistrar{
		brandAPI: brandAPI,
		poller:   poller,
		timeout:  timeout,
		logger:   logger.With("component", "brand_registrar"),
	}
}

// Register submits the brand and waits for a terminal approval state.
// A timed-out wait is reported as PendingApproval, not an error: the id is
// kept and a later run resumes past creation.
func (r *BrandRegistrar) Register(ctx context.Context, company *domain.Company) (*BrandOutcome, error) {
	profile := carrier.BrandProfile{
		LegalName:    company.LegalName,
		EIN:          domain.SanitizeEIN(company.EIN),
		Vertical:     domain.VerticalForIndustry(company.Industry),
		Website:      company.Website,
		AddressLine1: company.AddressLine1,
		City:         company.City,
		State:        company.State,
		PostalCode:   company.PostalCode,
		Country:      company.Country,
		ContactEmail: company.ContactEmail,
		ContactPhone: domain.NormalizePhoneNumber(company.ContactPhone),
	}

	brandID, err := r.brandAPI.CreateBrand(ctx, profile)
	if err != nil {
		if errors.Is(err, domain.ErrAccountVerificationRequired) {
			r.logger.WarnContext(ctx, "Brand creation blocked by platform account verification", "company_id", company.ID)
			pipelineOutcomesCounter.WithLabelValues("brand", "account_verification_required").Inc()
			return nil, err
		}
		pipelineOutcomesCounter.WithLabelValues("brand", "create_failed").Inc()
		return nil, fmt.Errorf("brand creation failed: %w", err)
	}
	r.logger.InfoContext(ctx, "Brand created, waiting for approval", "brand_id", brandID, "company_id", company.ID)

	return r.awaitApproval(ctx, brandID)
}

// Resume picks up a brand created by an earlier run and waits for its
// approval. No create call is made; at most one live brand exists per
// company.
func (r *BrandRegistrar) Resume(ctx context.Context, brandID string) (*BrandOutcome, error) {
	r.logger.InfoContext(ctx, "Resuming approval wait for existing brand", "brand_id", brandID)
	return r.awaitApproval(ctx, brandID)
}

func (r *BrandRegistrar) awaitApproval(ctx context.Context, brandID string) (*BrandOutcome, error) {
	timer := prometheus.NewTimer(approvalWaitDurationHist.WithLabelValues("brand"))
	result := r.poller.Wait(ctx, func(ctx context.Context) (*ApprovalStatus, error) {
		brand, err := r.brandAPI.GetBrand(ctx, brandID)
		if err != nil {
			return nil, err
		}
		return &ApprovalStatus{Status: brand.Status, FailureReasons: brand.FailureReasons}, nil
	}, r.timeout)
	timer.ObserveDuration()

	outcome := &BrandOutcome{BrandID: brandID}

	switch {
	case result.Approved:
		outcome.Approved = true
		pipelineOutcomesCounter.WithLabelValues("brand", "approved").Inc()
		return outcome, nil
	case result.TimedOut:
		// Non-fatal: the brand may still be approved out-of-band.
		r.logger.WarnContext(ctx, "Brand approval wait timed out, keeping id", "brand_id", brandID)
		outcome.PendingApproval = true
		pipelineOutcomesCounter.WithLabelValues("brand", "timed_out").Inc()
		return outcome, nil
	default:
		pipelineOutcomesCounter.WithLabelValues("brand", "rejected").Inc()
		if strings.Contains(strings.ToLower(result.FailureReason), "email") {
			return outcome, &domain.EmailValidationRejection{BrandID: brandID, Reason: result.FailureReason}
		}
		return outcome, &domain.RegistrationFailure{Stage: "brand", ID: brandID, Reason: result.FailureReason}
	}
}
