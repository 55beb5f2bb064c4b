package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/fieldstack/messaging-registration/internal/registration_service/domain"
	"github.com/google/uuid"
)

// RegistrationResult is the structured outcome of one workflow run, with
// an ordered human-readable trace for operator debugging.
type RegistrationResult struct {
	Success               bool     `json:"success"`
	BrandID               string   `json:"brand_id,omitempty"`
	CampaignID            string   `json:"campaign_id,omitempty"`
	TollFreeRequestID     string   `json:"toll_free_request_id,omitempty"`
	AttachedCount         int      `json:"attached_count,omitempty"`
	RequiresPlatformSetup bool     `json:"requires_platform_setup,omitempty"`
	Error                 string   `json:"error,omitempty"`
	Message               string   `json:"message,omitempty"`
	Log                   []string `json:"log"`
}

// Orchestrator drives a company through the 10DLC and toll-free
// registration pipelines, persisting partial progress and applying the
// cross-pipeline fallback policy.
type Orchestrator struct {
	directory    domain.CompanyDirectory
	settingsRepo domain.RegistrationSettingsRepository
	brands       *BrandRegistrar
	campaigns    *CampaignRegistrar
	tollFree     *TollFreeRegistrar
	notifier     domain.VerificationNotifier
	logger       *slog.Logger
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(
	directory domain.CompanyDirectory,
	settingsRepo domain.RegistrationSettingsRepository,
	brands *BrandRegistrar,
	campaigns *CampaignRegistrar,
	tollFree *TollFreeRegistrar,
	notifier domain.VerificationNotifier,
	logger *slog.Logger,
) *Orchestrator {
	return &Orchestrator{
		directory:    directory,
		settingsRepo: settingsRepo,
		brands:       brands,
		campaigns:    campaigns,
		tollFree:     tollFree,
		notifier:     notifier,
		logger:       logger.With("component", "orchestrator"),
	}
}

// trace accumulates the ordered log lines returned with every result.
type trace struct {
	lines  []string
	logger *slog.Logger
}

func (t *trace) addf(ctx context.Context, format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	t.lines = append(t.lines, line)
	t.logger.InfoContext(ctx, line)
}

// RegisterCompanyFor10DLC runs the 10DLC-only leg: brand, campaign, and
// number attachment for the company's local numbers. No toll-free
// fallback applies.
func (o *Orchestrator) RegisterCompanyFor10DLC(ctx context.Context, companyID uuid.UUID) *RegistrationResult {
	tr := &trace{logger: o.logger.With("company_id", companyID, "entry_point", "10dlc")}
	res := &RegistrationResult{}
	defer func() { res.Log = tr.lines }()

	release, err := o.settingsRepo.AcquireCompanyLock(ctx, companyID)
	if err != nil {
		return o.fail(ctx, res, tr, "10dlc", err)
	}
	defer release()

	company, verr := o.loadCompany(ctx, companyID, tr)
	if verr != nil {
		return o.fail(ctx, res, tr, "10dlc", verr)
	}

	done, err := o.checkAlreadyRegistered(ctx, companyID, res, tr)
	if err != nil {
		return o.fail(ctx, res, tr, "10dlc", err)
	}
	if done {
		registrationRunsCounter.WithLabelValues("10dlc", "idempotent").Inc()
		return res
	}

	if msg := o.check10DLCPrecondition(ctx, companyID, tr); msg != "" {
		return o.fail(ctx, res, tr, "10dlc", fmt.Errorf("%w: %s", domain.ErrDomainNotVerified, msg))
	}

	numbers, err := o.directory.ListActivePhoneNumbers(ctx, companyID)
	if err != nil {
		return o.fail(ctx, res, tr, "10dlc", fmt.Errorf("failed to load phone numbers: %w", err))
	}
	local, _ := domain.PartitionPhoneNumbers(numbers)
	if len(local) == 0 {
		return o.fail(ctx, res, tr, "10dlc", errors.New("no active local phone numbers to register"))
	}

	attached, err := o.run10DLC(ctx, company, local, res, tr)
	if err != nil {
		res.RequiresPlatformSetup = errors.Is(err, domain.ErrAccountVerificationRequired)
		return o.fail(ctx, res, tr, "10dlc", err)
	}

	res.Success = true
	res.AttachedCount = attached
	res.Message = fmt.Sprintf("10DLC registration approved; %d of %d local numbers attached", attached, len(local))
	registrationRunsCounter.WithLabelValues("10dlc", "success").Inc()
	return res
}

// SubmitAutomatedVerification runs the full orchestration: the 10DLC
// pipeline for local numbers, toll-free verification for toll-free
// numbers, and the fallback policy between them.
func (o *Orchestrator) SubmitAutomatedVerification(ctx context.Context, companyID uuid.UUID) *RegistrationResult {
	tr := &trace{logger: o.logger.With("company_id", companyID, "entry_point", "automated_verification")}
	res := &RegistrationResult{}
	defer func() { res.Log = tr.lines }()

	release, err := o.settingsRepo.AcquireCompanyLock(ctx, companyID)
	if err != nil {
		return o.fail(ctx, res, tr, "automated_verification", err)
	}
	defer release()

	company, verr := o.loadCompany(ctx, companyID, tr)
	if verr != nil {
		return o.fail(ctx, res, tr, "automated_verification", verr)
	}

	done, err := o.checkAlreadyRegistered(ctx, companyID, res, tr)
	if err != nil {
		return o.fail(ctx, res, tr, "automated_verification", err)
	}
	if done {
		registrationRunsCounter.WithLabelValues("automated_verification", "idempotent").Inc()
		return res
	}

	tenDLCBlockedMsg := o.check10DLCPrecondition(ctx, companyID, tr)

	numbers, err := o.directory.ListActivePhoneNumbers(ctx, companyID)
	if err != nil {
		return o.fail(ctx, res, tr, "automated_verification", fmt.Errorf("failed to load phone numbers: %w", err))
	}
	local, tollFreeNumbers := domain.PartitionPhoneNumbers(numbers)
	tr.addf(ctx, "Found %d active local and %d active toll-free numbers", len(local), len(tollFreeNumbers))

	if len(local) == 0 && len(tollFreeNumbers) == 0 {
		return o.fail(ctx, res, tr, "automated_verification", errors.New("no active phone numbers to register"))
	}

	var successes, warnings []string
	summary := domain.VerificationSummary{
		LocalNumberCount: len(local),
		TollFreeCount:    len(tollFreeNumbers),
	}

	// 10DLC branch.
	if len(local) > 0 {
		switch {
		case tenDLCBlockedMsg != "":
			if len(tollFreeNumbers) == 0 {
				return o.fail(ctx, res, tr, "automated_verification",
					fmt.Errorf("%w: %s", domain.ErrDomainNotVerified, tenDLCBlockedMsg))
			}
			warnings = append(warnings, "Warning: 10DLC registration skipped: "+tenDLCBlockedMsg)
			tr.addf(ctx, "10DLC branch refused: %s", tenDLCBlockedMsg)
		default:
			attached, err := o.run10DLC(ctx, company, local, res, tr)
			if err != nil {
				if errors.Is(err, domain.ErrAccountVerificationRequired) {
					if len(tollFreeNumbers) == 0 {
						res.RequiresPlatformSetup = true
						return o.fail(ctx, res, tr, "automated_verification", err)
					}
					warnings = append(warnings, "Warning: 10DLC registration requires platform account verification; continuing with toll-free numbers only")
					tr.addf(ctx, "10DLC branch downgraded to warning: %v", err)
				} else {
					if len(tollFreeNumbers) == 0 {
						return o.fail(ctx, res, tr, "automated_verification", err)
					}
					warnings = append(warnings, fmt.Sprintf("Warning: 10DLC registration did not complete: %v", err))
					tr.addf(ctx, "10DLC branch downgraded to warning: %v", err)
				}
			} else {
				res.AttachedCount = attached
				summary.Has10DLC = true
				summary.AttachedCount = attached
				successes = append(successes, fmt.Sprintf("10DLC registration approved; %d of %d local numbers attached", attached, len(local)))
			}
		}
	}

	// Toll-free branch runs independently of the 10DLC outcome.
	var branchErr error
	if len(tollFreeNumbers) > 0 {
		if company.ContactEmail == "" {
			branchErr = &domain.ValidationError{Field: "contact email"}
			warnings = append(warnings, "Warning: toll-free verification skipped: contact email missing")
			tr.addf(ctx, "Toll-free branch refused: contact email missing")
		} else if req, err := o.tollFree.Submit(ctx, company, tollFreeNumbers); err != nil {
			branchErr = err
			warnings = append(warnings, fmt.Sprintf("Warning: toll-free verification failed: %v", err))
			tr.addf(ctx, "Toll-free submission failed: %v", err)
		} else {
			if perr := o.settingsRepo.Upsert(ctx, companyID, domain.RegistrationSettingsPatch{
				TollFreeRequestID:   &req.ID,
				TollFreeStatus:      &req.Status,
				TollFreeSubmittedAt: &req.SubmittedAt,
			}); perr != nil {
				tr.addf(ctx, "Failed to persist toll-free request id %s: %v", req.ID, perr)
			}
			res.TollFreeRequestID = req.ID
			summary.HasTollFree = true
			successes = append(successes, fmt.Sprintf("Toll-free verification submitted for %d numbers (request %s)", len(tollFreeNumbers), req.ID))
		}
	}

	if len(successes) == 0 {
		err := branchErr
		if err == nil {
			err = errors.New("no registration branch completed")
		}
		return o.fail(ctx, res, tr, "automated_verification", err)
	}

	// Best-effort notification; never flips the result.
	if nerr := o.notifier.SendVerificationSubmitted(ctx, companyID, company.ContactEmail, summary); nerr != nil {
		o.logger.WarnContext(ctx, "Failed to send verification submitted notification", "company_id", companyID, "error", nerr)
		tr.addf(ctx, "Notification send failed (ignored): %v", nerr)
	} else {
		tr.addf(ctx, "Verification submitted notification sent to %s", company.ContactEmail)
	}

	res.Success = true
	res.Message = strings.Join(append(successes, warnings...), "; ")
	registrationRunsCounter.WithLabelValues("automated_verification", "success").Inc()
	return res
}

// run10DLC executes the brand then campaign pipeline for the local
// numbers, persisting each carrier-assigned id as soon as it exists so a
// later retry resumes past creation. Returns the count of attached
// numbers on success.
func (o *Orchestrator) run10DLC(ctx context.Context, company *domain.Company, local []string, res *RegistrationResult, tr *trace) (int, error) {
	tr.addf(ctx, "Starting 10DLC registration for %d local numbers", len(local))

	// A brand id persisted by an earlier run is reused, never re-created:
	// at most one live brand may exist per company.
	stored, err := o.settingsRepo.Get(ctx, company.ID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return 0, fmt.Errorf("failed to load registration settings: %w", err)
	}

	var brandOutcome *BrandOutcome
	if stored != nil && stored.BrandID != nil && *stored.BrandID != "" {
		tr.addf(ctx, "Reusing previously created brand %s", *stored.BrandID)
		brandOutcome, err = o.brands.Resume(ctx, *stored.BrandID)
	} else {
		brandOutcome, err = o.brands.Register(ctx, company)
	}
	if brandOutcome != nil && brandOutcome.BrandID != "" {
		res.BrandID = brandOutcome.BrandID
		if perr := o.settingsRepo.Upsert(ctx, company.ID, domain.RegistrationSettingsPatch{BrandID: &brandOutcome.BrandID}); perr != nil {
			tr.addf(ctx, "Failed to persist brand id %s: %v", brandOutcome.BrandID, perr)
		} else {
			tr.addf(ctx, "Recorded brand id %s", brandOutcome.BrandID)
		}
	}
	if err != nil {
		return 0, err
	}
	if brandOutcome.PendingApproval {
		return 0, &domain.TimeoutError{Stage: "brand", ID: brandOutcome.BrandID}
	}
	tr.addf(ctx, "Brand %s approved", brandOutcome.BrandID)

	campaignOutcome, err := o.campaigns.Register(ctx, brandOutcome.BrandID, company)
	if campaignOutcome != nil && campaignOutcome.CampaignID != "" {
		res.CampaignID = campaignOutcome.CampaignID
		if perr := o.settingsRepo.Upsert(ctx, company.ID, domain.RegistrationSettingsPatch{CampaignID: &campaignOutcome.CampaignID}); perr != nil {
			tr.addf(ctx, "Failed to persist campaign id %s: %v", campaignOutcome.CampaignID, perr)
		} else {
			tr.addf(ctx, "Recorded campaign id %s", campaignOutcome.CampaignID)
		}
	}
	if err != nil {
		return 0, err
	}
	if campaignOutcome.PendingApproval {
		return 0, &domain.TimeoutError{Stage: "campaign", ID: campaignOutcome.CampaignID}
	}
	tr.addf(ctx, "Campaign %s approved", campaignOutcome.CampaignID)

	attached, attempts := o.campaigns.AttachNumbers(ctx, campaignOutcome.CampaignID, local)
	for _, attempt := range attempts {
		if !attempt.Success {
			tr.addf(ctx, "Failed to attach %s: %s", attempt.Number, attempt.Error)
		}
	}
	tr.addf(ctx, "Attached %d of %d numbers to campaign %s", attached, len(local), campaignOutcome.CampaignID)
	return attached, nil
}

// loadCompany fetches the profile and fails fast, before any carrier
// call, if required fields are missing.
func (o *Orchestrator) loadCompany(ctx context.Context, companyID uuid.UUID, tr *trace) (*domain.Company, error) {
	company, err := o.directory.GetCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load company: %w", err)
	}
	if domain.SanitizeEIN(company.EIN) == "" {
		return nil, &domain.ValidationError{Field: "EIN"}
	}
	if !company.HasFullAddress() {
		return nil, &domain.ValidationError{Field: "address"}
	}
	if company.ContactEmail == "" && company.ContactPhone == "" {
		return nil, &domain.ValidationError{Field: "contact email or phone"}
	}
	tr.addf(ctx, "Loaded company %s (%s)", company.LegalName, companyID)
	return company, nil
}

// checkAlreadyRegistered applies the idempotency rule: both ids recorded
// means the workflow already ran to completion. A state-store failure is
// an error, not "not registered": re-running the pipeline on a transient
// read failure would create duplicate carrier registrations.
func (o *Orchestrator) checkAlreadyRegistered(ctx context.Context, companyID uuid.UUID, res *RegistrationResult, tr *trace) (bool, error) {
	completed, err := o.settingsRepo.HasCompletedRegistration(ctx, companyID)
	if err != nil {
		return false, fmt.Errorf("failed to check registration state: %w", err)
	}
	if !completed {
		return false, nil
	}
	settings, err := o.settingsRepo.Get(ctx, companyID)
	if err != nil {
		return false, fmt.Errorf("failed to load registration settings: %w", err)
	}
	if settings.BrandID != nil {
		res.BrandID = *settings.BrandID
	}
	if settings.CampaignID != nil {
		res.CampaignID = *settings.CampaignID
	}
	if settings.TollFreeRequestID != nil {
		res.TollFreeRequestID = *settings.TollFreeRequestID
	}
	res.Success = true
	res.Message = "Messaging registration already completed"
	tr.addf(ctx, "Registration already completed (brand %s, campaign %s); skipping", res.BrandID, res.CampaignID)
	return true, nil
}

// check10DLCPrecondition returns a remediation message when the email
// domain verification gate blocks the 10DLC pipeline, empty otherwise.
func (o *Orchestrator) check10DLCPrecondition(ctx context.Context, companyID uuid.UUID, tr *trace) string {
	verification, err := o.directory.GetEmailDomainVerification(ctx, companyID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "email domain is not verified; verify domain ownership in settings before registering local numbers"
		}
		return fmt.Sprintf("could not confirm email domain verification: %v", err)
	}
	if !verification.Verified() {
		return fmt.Sprintf("email domain %s is not verified (status %s); verify domain ownership in settings before registering local numbers",
			verification.Domain, verification.Status)
	}
	tr.addf(ctx, "Email domain %s verified", verification.Domain)
	return ""
}

func (o *Orchestrator) fail(ctx context.Context, res *RegistrationResult, tr *trace, entryPoint string, err error) *RegistrationResult {
	res.Success = false
	res.Error = err.Error()
	res.Message = err.Error()
	tr.addf(ctx, "Registration failed: %v", err)
	registrationRunsCounter.WithLabelValues(entryPoint, "failure").Inc()
	return res
}
