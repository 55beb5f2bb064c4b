package app

import (
	"context"

	"github.com/fieldstack/messaging-registration/internal/registration_service/adapters/carrier"
	"github.com/fieldstack/messaging-registration/internal/registration_service/domain"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/mock"
)

// --- Mocks ---

type MockBrandAPI struct {
	mock.Mock
}

func (m *MockBrandAPI) CreateBrand(ctx context.Context, profile carrier.BrandProfile) (string, error) {
	args := m.Called(ctx, profile)
	return args.String(0), args.Error(1)
}

func (m *MockBrandAPI) GetBrand(ctx context.Context, brandID string) (*domain.Brand, error) {
	args := m.Called(ctx, brandID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Brand), args.Error(1)
}

type MockCampaignAPI struct {
	mock.Mock
}

func (m *MockCampaignAPI) CreateCampaign(ctx context.Context, brandID string, profile carrier.CampaignProfile) (string, error) {
	args := m.Called(ctx, brandID, profile)
	return args.String(0), args.Error(1)
}

func (m *MockCampaignAPI) GetCampaign(ctx context.Context, campaignID string) (*domain.Campaign, error) {
	args := m.Called(ctx, campaignID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Campaign), args.Error(1)
}

func (m *MockCampaignAPI) AttachNumber(ctx context.Context, campaignID string, e164 string) error {
	args := m.Called(ctx, campaignID, e164)
	return args.Error(0)
}

type MockTollFreeAPI struct {
	mock.Mock
}

func (m *MockTollFreeAPI) SubmitVerification(ctx context.Context, profile carrier.TollFreeProfile) (string, error) {
	args := m.Called(ctx, profile)
	return args.String(0), args.Error(1)
}

type MockCompanyDirectory struct {
	mock.Mock
}

func (m *MockCompanyDirectory) GetCompany(ctx context.Context, companyID uuid.UUID) (*domain.Company, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Company), args.Error(1)
}

func (m *MockCompanyDirectory) GetEmailDomainVerification(ctx context.Context, companyID uuid.UUID) (*domain.EmailDomainVerification, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EmailDomainVerification), args.Error(1)
}

func (m *MockCompanyDirectory) ListActivePhoneNumbers(ctx context.Context, companyID uuid.UUID) ([]domain.PhoneNumber, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PhoneNumber), args.Error(1)
}

type MockSettingsRepository struct {
	mock.Mock
}

func (m *MockSettingsRepository) Get(ctx context.Context, companyID uuid.UUID) (*domain.RegistrationSettings, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RegistrationSettings), args.Error(1)
}

func (m *MockSettingsRepository) Upsert(ctx context.Context, companyID uuid.UUID, patch domain.RegistrationSettingsPatch) error {
	args := m.Called(ctx, companyID, patch)
	return args.Error(0)
}

func (m *MockSettingsRepository) HasCompletedRegistration(ctx context.Context, companyID uuid.UUID) (bool, error) {
	args := m.Called(ctx, companyID)
	return args.Bool(0), args.Error(1)
}

func (m *MockSettingsRepository) AcquireCompanyLock(ctx context.Context, companyID uuid.UUID) (func(), error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(func()), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendVerificationSubmitted(ctx context.Context, companyID uuid.UUID, email string, summary domain.VerificationSummary) error {
	args := m.Called(ctx, companyID, email, summary)
	return args.Error(0)
}

type MockNatsClient struct {
	mock.Mock
}

func (m *MockNatsClient) Publish(ctx context.Context, subject string, data []byte) error {
	args := m.Called(ctx, subject, data)
	return args.Error(0)
}

func (m *MockNatsClient) QueueSubscribe(subject string, queueGroup string, handler func(msg *nats.Msg)) (*nats.Subscription, error) {
	args := m.Called(subject, queueGroup, handler)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*nats.Subscription), args.Error(1)
}
