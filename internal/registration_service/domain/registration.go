package domain

import (
	"time"

	"github.com/google/uuid"
)

// RegistrationStatus is the shared state shape of brand and campaign
// registrations as reported by the vetting body.
type RegistrationStatus string

const (
	RegistrationStatusCreating RegistrationStatus = "creating"
	RegistrationStatusPending  RegistrationStatus = "pending"
	RegistrationStatusApproved RegistrationStatus = "approved"
	RegistrationStatusActive   RegistrationStatus = "active"
	RegistrationStatusRejected RegistrationStatus = "rejected"
	RegistrationStatusFailed   RegistrationStatus = "failed"
	// RegistrationStatusRegistrationFailed is a distinct terminal failure
	// some vetting bodies report separately from a plain rejection.
	RegistrationStatusRegistrationFailed RegistrationStatus = "registration_failed"
	RegistrationStatusTimedOut           RegistrationStatus = "timed_out"
)

// IsApproved reports whether the status is a success terminal.
func (s RegistrationStatus) IsApproved() bool {
	return s == RegistrationStatusApproved || s == RegistrationStatusActive
}

// IsFailure reports whether the status is a failure terminal.
func (s RegistrationStatus) IsFailure() bool {
	switch s {
	case RegistrationStatusRejected, RegistrationStatusFailed, RegistrationStatusRegistrationFailed:
		return true
	}
	return false
}

// FailureReason is a structured rejection reason from the vetting body.
type FailureReason struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// Brand is a registered legal-entity profile.
type Brand struct {
	ID             string
	Status         RegistrationStatus
	FailureReasons []FailureReason
}

// AttachAttempt records one phone number attach call against a campaign.
type AttachAttempt struct {
	Number  string
	Success bool
	Error   string
}

// Campaign is a registered messaging use case under a brand. Numbers gain
// sending rights by being attached to it.
type Campaign struct {
	ID             string
	BrandID        string
	Status         RegistrationStatus
	FailureReasons []FailureReason
	AttachAttempts []AttachAttempt
}

// TollFreeStatus is the review state of a toll-free verification request.
// Terminal states arrive out-of-band, days after submission.
type TollFreeStatus string

const (
	TollFreeStatusPending  TollFreeStatus = "pending"
	TollFreeStatusVerified TollFreeStatus = "verified"
	TollFreeStatusRejected TollFreeStatus = "rejected"
)

// TollFreeVerificationRequest is a submitted toll-free review request.
type TollFreeVerificationRequest struct {
	ID          string
	SubmittedAt time.Time
	Status      TollFreeStatus
}

// RegistrationSettings is the durable per-company checkpoint of workflow
// progress. It is the only entity this workflow creates or mutates, and it
// is never deleted. All fields are optional: a failed campaign step must
// not erase a previously recorded brand id.
type RegistrationSettings struct {
	CompanyID           uuid.UUID
	BrandID             *string
	CampaignID          *string
	TollFreeRequestID   *string
	TollFreeStatus      *TollFreeStatus
	TollFreeSubmittedAt *time.Time
	UpdatedAt           time.Time
}

// Completed reports whether both 10DLC ids are recorded. Note this equates
// "ids recorded" with "registered": an id can still be pending approval.
func (s *RegistrationSettings) Completed() bool {
	return s != nil && s.BrandID != nil && *s.BrandID != "" && s.CampaignID != nil && *s.CampaignID != ""
}

// RegistrationSettingsPatch carries the fields to merge into a company's
// settings row. Nil fields are left untouched by the upsert.
type RegistrationSettingsPatch struct {
	BrandID             *string
	CampaignID          *string
	TollFreeRequestID   *string
	TollFreeStatus      *TollFreeStatus
	TollFreeSubmittedAt *time.Time
}
