package carrier

import (
	"context"

	"github.com/fieldstack/messaging-registration/internal/registration_service/domain"
)

// BrandProfile is the payload for registering a legal-entity brand with
// the vetting body.
type BrandProfile struct {
	LegalName    string          `json:"legal_name"`
	EIN          string          `json:"ein"`
	Vertical     domain.Vertical `json:"vertical"`
	Website      string          `json:"website,omitempty"`
	AddressLine1 string          `json:"address_line_1"`
	City         string          `json:"city"`
	State        string          `json:"state"`
	PostalCode   string          `json:"postal_code"`
	Country      string          `json:"country"`
	ContactEmail string          `json:"contact_email"`
	ContactPhone string          `json:"contact_phone"`
}

// CampaignProfile is the payload for registering a messaging use case
// under an approved brand.
type CampaignProfile struct {
	Description    string          `json:"description"`
	Vertical       domain.Vertical `json:"vertical"`
	UseCase        string          `json:"use_case"`
	SampleMessages []string        `json:"sample_messages"`
	OptInKeywords  []string        `json:"opt_in_keywords"`
	OptOutKeywords []string        `json:"opt_out_keywords"`
}

// TollFreeProfile is the payload for a toll-free verification request.
type TollFreeProfile struct {
	BusinessName     string   `json:"business_name"`
	EIN              string   `json:"ein"`
	ContactEmail     string   `json:"contact_email"`
	OptInWorkflowURL string   `json:"opt_in_workflow_url"`
	SampleMessages   []string `json:"sample_messages"`
	OptInKeywords    []string `json:"opt_in_keywords"`
	OptOutKeywords   []string `json:"opt_out_keywords"`
	PhoneNumbers     []string `json:"phone_numbers"`
	MonthlyVolume    int      `json:"monthly_volume"`
}

// BrandAPI is the vetting body's brand registration surface.
type BrandAPI interface {
	CreateBrand(ctx context.Context, profile BrandProfile) (brandID string, err error)
	GetBrand(ctx context.Context, brandID string) (*domain.Brand, error)
}

// CampaignAPI is the vetting body's campaign registration surface.
type CampaignAPI interface {
	CreateCampaign(ctx context.Context, brandID string, profile CampaignProfile) (campaignID string, err error)
	GetCampaign(ctx context.Context, campaignID string) (*domain.Campaign, error)
	AttachNumber(ctx context.Context, campaignID string, e164 string) error
}

// TollFreeAPI is the carrier's toll-free verification surface. Review is
// multi-day and out-of-band; submission is the only operation.
type TollFreeAPI interface {
	SubmitVerification(ctx context.Context, profile TollFreeProfile) (requestID string, err error)
}
