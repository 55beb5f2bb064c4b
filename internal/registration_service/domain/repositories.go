package domain

import (
	"context"

	"github.com/google/uuid"
)

// CompanyDirectory is the read-only view of company data owned by other
// subsystems.
type CompanyDirectory interface {
	GetCompany(ctx context.Context, companyID uuid.UUID) (*Company, error)
	GetEmailDomainVerification(ctx context.Context, companyID uuid.UUID) (*EmailDomainVerification, error)
	ListActivePhoneNumbers(ctx context.Context, companyID uuid.UUID) ([]PhoneNumber, error)
}

// RegistrationSettingsRepository persists per-company registration
// progress with merge semantics.
type RegistrationSettingsRepository interface {
	// Get returns the settings row for a company, or ErrNotFound.
	Get(ctx context.Context, companyID uuid.UUID) (*RegistrationSettings, error)
	// Upsert merges the supplied fields into the company's row; nil patch
	// fields leave previously stored values untouched.
	Upsert(ctx context.Context, companyID uuid.UUID, patch RegistrationSettingsPatch) error
	// HasCompletedRegistration reports whether both a brand id and a
	// campaign id are recorded for the company.
	HasCompletedRegistration(ctx context.Context, companyID uuid.UUID) (bool, error)
	// AcquireCompanyLock takes the per-company advisory lock guarding the
	// orchestration. Returns ErrRegistrationInProgress if already held; the
	// release func must be called when the workflow finishes.
	AcquireCompanyLock(ctx context.Context, companyID uuid.UUID) (release func(), err error)
}

// VerificationNotifier delivers the best-effort "verification submitted"
// notification. Failures are logged by the caller and never propagated.
type VerificationNotifier interface {
	SendVerificationSubmitted(ctx context.Context, companyID uuid.UUID, email string, summary VerificationSummary) error
}

// VerificationSummary describes what was submitted, for the notification
// email.
type VerificationSummary struct {
	HasTollFree      bool `json:"has_toll_free"`
	Has10DLC         bool `json:"has_10dlc"`
	TollFreeCount    int  `json:"toll_free_count"`
	LocalNumberCount int  `json:"local_number_count"`
	AttachedCount    int  `json:"attached_count"`
}
