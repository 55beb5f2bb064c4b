package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates that a requested resource was not found.
	ErrNotFound = errors.New("resource not found")
	// ErrDomainNotVerified indicates the company's email domain has not
	// passed verification, a hard precondition for the 10DLC pipeline.
	ErrDomainNotVerified = errors.New("email domain not verified")
	// ErrAccountVerificationRequired indicates a platform-level
	// authorization gap (the carrier account itself needs elevated
	// verification), not a problem with the company's data.
	ErrAccountVerificationRequired = errors.New("carrier account requires elevated verification")
	// ErrRegistrationInProgress indicates another invocation already holds
	// the per-company registration lock.
	ErrRegistrationInProgress = errors.New("registration already in progress for company")
)

// ValidationError indicates required company profile data is missing.
// Returned before any external call is made.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("company profile is missing required field: %s", e.Field)
}

// EmailValidationRejection is a brand rejection whose failure reason points
// at email domain quality. It carries remediation guidance and keeps the
// brand id so the operator can see what was created.
type EmailValidationRejection struct {
	BrandID string
	Reason  string
}

func (e *EmailValidationRejection) Error() string {
	return fmt.Sprintf("brand registration rejected over email domain quality: %s. "+
		"Alternatives: use toll-free numbers for messaging, or provision a company domain email address and retry", e.Reason)
}

// TimeoutError indicates an approval wait ended without observing a
// terminal state. Non-fatal: the carrier-assigned id is retained and a
// later run may re-attempt.
type TimeoutError struct {
	Stage string // "brand" or "campaign"
	ID    string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s approval timed out; id %s retained for retry", e.Stage, e.ID)
}

// RegistrationFailure is any other carrier rejection of a brand or
// campaign, carrying the extracted failure reason.
type RegistrationFailure struct {
	Stage  string // "brand" or "campaign"
	ID     string // carrier-assigned id, if one was obtained
	Reason string
}

func (e *RegistrationFailure) Error() string {
	return fmt.Sprintf("%s registration failed: %s", e.Stage, e.Reason)
}
