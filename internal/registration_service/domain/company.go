package domain

import "github.com/google/uuid"

// Company is the read-only business profile used to build registration
// payloads. Owned by the company directory; never mutated here.
type Company struct {
	ID           uuid.UUID
	LegalName    string
	EIN          string
	AddressLine1 string
	City         string
	State        string
	PostalCode   string
	Country      string
	Industry     string
	Website      string
	ContactEmail string
	ContactPhone string
}

// HasFullAddress reports whether every address field needed by the vetting
// body is present.
func (c *Company) HasFullAddress() bool {
	return c.AddressLine1 != "" && c.City != "" && c.State != "" && c.PostalCode != ""
}

// DomainVerificationStatus is the state of a company's email domain
// verification record.
type DomainVerificationStatus string

const (
	DomainVerificationStatusPending  DomainVerificationStatus = "pending"
	DomainVerificationStatusVerified DomainVerificationStatus = "verified"
	DomainVerificationStatusFailed   DomainVerificationStatus = "failed"
)

// EmailDomainVerification is the per-company domain ownership record.
// Owned by a separate subsystem; read-only precondition gate for 10DLC.
type EmailDomainVerification struct {
	CompanyID uuid.UUID
	Domain    string
	Status    DomainVerificationStatus
}

// Verified reports whether the domain has passed verification.
func (v *EmailDomainVerification) Verified() bool {
	return v != nil && v.Status == DomainVerificationStatusVerified
}
