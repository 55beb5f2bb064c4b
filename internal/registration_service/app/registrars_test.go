package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/fieldstack/messaging-registration/internal/registration_service/adapters/carrier"
	"github.com/fieldstack/messaging-registration/internal/registration_service/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testCompany() *domain.Company {
	return &domain.Company{
		ID:           uuid.New(),
		LegalName:    "Acme HVAC LLC",
		EIN:          "12-3456789",
		AddressLine1: "100 Main St",
		City:         "Salinas",
		State:        "CA",
		PostalCode:   "93901",
		Country:      "US",
		Industry:     "hvac",
		Website:      "acme-hvac.com",
		ContactEmail: "office@acme-hvac.com",
		ContactPhone: "8315550199",
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBrandRegistrar_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("ApprovedWithinWindow", func(t *testing.T) {
		brandAPI := new(MockBrandAPI)
		registrar := NewBrandRegistrar(brandAPI, testPoller(time.Millisecond), 100*time.Millisecond, discardLogger())

		brandAPI.On("CreateBrand", ctx, mock.AnythingOfType("carrier.BrandProfile")).Return("brand-1", nil).Once()
		brandAPI.On("GetBrand", mock.Anything, "brand-1").Return(&domain.Brand{ID: "brand-1", Status: domain.RegistrationStatusApproved}, nil).Once()

		outcome, err := registrar.Register(ctx, testCompany())
		require.NoError(t, err)
		assert.True(t, outcome.Approved)
		assert.Equal(t, "brand-1", outcome.BrandID)
		brandAPI.AssertExpectations(t)
	})

	t.Run("PayloadIsSanitizedAndMapped", func(t *testing.T) {
		brandAPI := new(MockBrandAPI)
		registrar := NewBrandRegistrar(brandAPI, testPoller(time.Millisecond), 100*time.Millisecond, discardLogger())

		brandAPI.On("CreateBrand", ctx, mock.AnythingOfType("carrier.BrandProfile")).Return("brand-1", nil).Once()
		brandAPI.On("GetBrand", mock.Anything, "brand-1").Return(&domain.Brand{ID: "brand-1", Status: domain.RegistrationStatusActive}, nil)

		outcome, err := registrar.Register(ctx, testCompany())
		require.NoError(t, err)
		assert.True(t, outcome.Approved)

		profile, ok := brandAPI.Calls[0].Arguments[1].(carrier.BrandProfile)
		require.True(t, ok)
		assert.Equal(t, "123456789", profile.EIN, "EIN is sanitized to digits")
		assert.Equal(t, domain.VerticalConstruction, profile.Vertical, "hvac maps to the construction vertical")
		assert.Equal(t, "+18315550199", profile.ContactPhone, "contact phone is normalized to E.164")
		assert.Equal(t, "Acme HVAC LLC", profile.LegalName)
	})

	t.Run("TimeoutIsNonFatalPending", func(t *testing.T) {
		brandAPI := new(MockBrandAPI)
		registrar := NewBrandRegistrar(brandAPI, testPoller(5*time.Millisecond), 20*time.Millisecond, discardLogger())

		brandAPI.On("CreateBrand", ctx, mock.AnythingOfType("carrier.BrandProfile")).Return("brand-2", nil).Once()
		brandAPI.On("GetBrand", mock.Anything, "brand-2").Return(&domain.Brand{ID: "brand-2", Status: domain.RegistrationStatusPending}, nil)

		outcome, err := registrar.Register(ctx, testCompany())
		require.NoError(t, err)
		assert.False(t, outcome.Approved)
		assert.True(t, outcome.PendingApproval)
		assert.Equal(t, "brand-2", outcome.BrandID, "brand id must survive a timed-out wait")
	})

	t.Run("EmailReasonClassifiedDistinctly", func(t *testing.T) {
		brandAPI := new(MockBrandAPI)
		registrar := NewBrandRegistrar(brandAPI, testPoller(time.Millisecond), 100*time.Millisecond, discardLogger())

		brandAPI.On("CreateBrand", ctx, mock.AnythingOfType("carrier.BrandProfile")).Return("brand-3", nil).Once()
		brandAPI.On("GetBrand", mock.Anything, "brand-3").Return(&domain.Brand{
			ID:             "brand-3",
			Status:         domain.RegistrationStatusRejected,
			FailureReasons: []domain.FailureReason{{Code: "E-205", Description: "Business email domain could not be validated"}},
		}, nil).Once()

		outcome, err := registrar.Register(ctx, testCompany())
		require.Error(t, err)

		var emailErr *domain.EmailValidationRejection
		require.ErrorAs(t, err, &emailErr)
		assert.Equal(t, "brand-3", emailErr.BrandID)
		assert.Contains(t, err.Error(), "toll-free")
		assert.Equal(t, "brand-3", outcome.BrandID, "brand id is returned even on rejection")
	})

	t.Run("GenericRejection", func(t *testing.T) {
		brandAPI := new(MockBrandAPI)
		registrar := NewBrandRegistrar(brandAPI, testPoller(time.Millisecond), 100*time.Millisecond, discardLogger())

		brandAPI.On("CreateBrand", ctx, mock.AnythingOfType("carrier.BrandProfile")).Return("brand-4", nil).Once()
		brandAPI.On("GetBrand", mock.Anything, "brand-4").Return(&domain.Brand{
			ID:     "brand-4",
			Status: domain.RegistrationStatusRejected,
		}, nil).Once()

		_, err := registrar.Register(ctx, testCompany())
		require.Error(t, err)

		var failure *domain.RegistrationFailure
		require.ErrorAs(t, err, &failure)
		assert.Equal(t, "brand", failure.Stage)
		assert.Equal(t, "Registration rejected", failure.Reason)
	})

	t.Run("AccountVerificationErrorPassesThrough", func(t *testing.T) {
		brandAPI := new(MockBrandAPI)
		registrar := NewBrandRegistrar(brandAPI, testPoller(time.Millisecond), 100*time.Millisecond, discardLogger())

		brandAPI.On("CreateBrand", ctx, mock.AnythingOfType("carrier.BrandProfile")).
			Return("", domain.ErrAccountVerificationRequired).Once()

		outcome, err := registrar.Register(ctx, testCompany())
		assert.Nil(t, outcome)
		assert.ErrorIs(t, err, domain.ErrAccountVerificationRequired)
	})
}

func TestBrandRegistrar_Resume(t *testing.T) {
	ctx := context.Background()

	t.Run("WaitsForApprovalWithoutCreating", func(t *testing.T) {
		brandAPI := new(MockBrandAPI)
		registrar := NewBrandRegistrar(brandAPI, testPoller(time.Millisecond), 100*time.Millisecond, discardLogger())

		brandAPI.On("GetBrand", mock.Anything, "brand-stored").Return(&domain.Brand{ID: "brand-stored", Status: domain.RegistrationStatusApproved}, nil).Once()

		outcome, err := registrar.Resume(ctx, "brand-stored")
		require.NoError(t, err)
		assert.True(t, outcome.Approved)
		assert.Equal(t, "brand-stored", outcome.BrandID)
		brandAPI.AssertNotCalled(t, "CreateBrand", mock.Anything, mock.Anything)
	})

	t.Run("TimeoutStaysPending", func(t *testing.T) {
		brandAPI := new(MockBrandAPI)
		registrar := NewBrandRegistrar(brandAPI, testPoller(5*time.Millisecond), 20*time.Millisecond, discardLogger())

		brandAPI.On("GetBrand", mock.Anything, "brand-stored").Return(&domain.Brand{ID: "brand-stored", Status: domain.RegistrationStatusPending}, nil)

		outcome, err := registrar.Resume(ctx, "brand-stored")
		require.NoError(t, err)
		assert.True(t, outcome.PendingApproval)
		assert.Equal(t, "brand-stored", outcome.BrandID)
	})
}

func TestCampaignRegistrar_AttachNumbers(t *testing.T) {
	ctx := context.Background()

	t.Run("PartialFailureDoesNotAbortBatch", func(t *testing.T) {
		campaignAPI := new(MockCampaignAPI)
		registrar := NewCampaignRegistrar(campaignAPI, testPoller(time.Millisecond), 100*time.Millisecond, discardLogger())

		campaignAPI.On("AttachNumber", ctx, "camp-1", "+18315550101").Return(nil).Once()
		campaignAPI.On("AttachNumber", ctx, "camp-1", "+18315550102").Return(errors.New("number already attached elsewhere")).Once()
		campaignAPI.On("AttachNumber", ctx, "camp-1", "+18315550103").Return(nil).Once()

		attached, attempts := registrar.AttachNumbers(ctx, "camp-1", []string{"+18315550101", "+18315550102", "+18315550103"})

		assert.Equal(t, 2, attached)
		require.Len(t, attempts, 3)
		assert.True(t, attempts[0].Success)
		assert.False(t, attempts[1].Success)
		assert.Contains(t, attempts[1].Error, "already attached")
		assert.True(t, attempts[2].Success)
		campaignAPI.AssertExpectations(t)
	})

	t.Run("AllFailuresStillReturnEveryAttempt", func(t *testing.T) {
		campaignAPI := new(MockCampaignAPI)
		registrar := NewCampaignRegistrar(campaignAPI, testPoller(time.Millisecond), 100*time.Millisecond, discardLogger())

		campaignAPI.On("AttachNumber", ctx, "camp-2", mock.AnythingOfType("string")).Return(errors.New("forbidden")).Twice()

		attached, attempts := registrar.AttachNumbers(ctx, "camp-2", []string{"+18315550101", "+18315550102"})
		assert.Equal(t, 0, attached)
		assert.Len(t, attempts, 2)
	})
}

func TestCampaignRegistrar_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("ApprovedAfterPending", func(t *testing.T) {
		campaignAPI := new(MockCampaignAPI)
		registrar := NewCampaignRegistrar(campaignAPI, testPoller(time.Millisecond), 100*time.Millisecond, discardLogger())

		campaignAPI.On("CreateCampaign", ctx, "brand-1", mock.AnythingOfType("carrier.CampaignProfile")).Return("camp-1", nil).Once()
		campaignAPI.On("GetCampaign", mock.Anything, "camp-1").Return(&domain.Campaign{ID: "camp-1", BrandID: "brand-1", Status: domain.RegistrationStatusPending}, nil).Once()
		campaignAPI.On("GetCampaign", mock.Anything, "camp-1").Return(&domain.Campaign{ID: "camp-1", BrandID: "brand-1", Status: domain.RegistrationStatusApproved}, nil).Once()

		outcome, err := registrar.Register(ctx, "brand-1", testCompany())
		require.NoError(t, err)
		assert.True(t, outcome.Approved)
		assert.Equal(t, "camp-1", outcome.CampaignID)
		campaignAPI.AssertExpectations(t)
	})

	t.Run("RejectionKeepsCampaignID", func(t *testing.T) {
		campaignAPI := new(MockCampaignAPI)
		registrar := NewCampaignRegistrar(campaignAPI, testPoller(time.Millisecond), 100*time.Millisecond, discardLogger())

		campaignAPI.On("CreateCampaign", ctx, "brand-1", mock.AnythingOfType("carrier.CampaignProfile")).Return("camp-2", nil).Once()
		campaignAPI.On("GetCampaign", mock.Anything, "camp-2").Return(&domain.Campaign{
			ID:             "camp-2",
			Status:         domain.RegistrationStatusFailed,
			FailureReasons: []domain.FailureReason{{Description: "Use case not permitted for vertical"}},
		}, nil).Once()

		outcome, err := registrar.Register(ctx, "brand-1", testCompany())
		require.Error(t, err)
		assert.Equal(t, "camp-2", outcome.CampaignID)

		var failure *domain.RegistrationFailure
		require.ErrorAs(t, err, &failure)
		assert.Equal(t, "campaign", failure.Stage)
	})
}

func TestTollFreeRegistrar_Submit(t *testing.T) {
	ctx := context.Background()

	t.Run("BuildsPayloadFromCompanyProfile", func(t *testing.T) {
		tollFreeAPI := new(MockTollFreeAPI)
		registrar := NewTollFreeRegistrar(tollFreeAPI, discardLogger())

		tollFreeAPI.On("SubmitVerification", ctx, mock.AnythingOfType("carrier.TollFreeProfile")).Return("tfv-1", nil).Once()

		req, err := registrar.Submit(ctx, testCompany(), []string{"+18335550100"})
		require.NoError(t, err)
		assert.Equal(t, "tfv-1", req.ID)
		assert.Equal(t, domain.TollFreeStatusPending, req.Status)
		assert.WithinDuration(t, time.Now().UTC(), req.SubmittedAt, 5*time.Second)

		profile, ok := tollFreeAPI.Calls[0].Arguments[1].(carrier.TollFreeProfile)
		require.True(t, ok)
		assert.Equal(t, "Acme HVAC LLC", profile.BusinessName)
		assert.Equal(t, "123456789", profile.EIN)
		assert.Equal(t, "https://acme-hvac.com/contact", profile.OptInWorkflowURL)
		assert.Equal(t, []string{"+18335550100"}, profile.PhoneNumbers)
		assert.Contains(t, profile.OptOutKeywords, "STOP")
		tollFreeAPI.AssertExpectations(t)
	})

	t.Run("SubmitFailurePropagates", func(t *testing.T) {
		tollFreeAPI := new(MockTollFreeAPI)
		registrar := NewTollFreeRegistrar(tollFreeAPI, discardLogger())

		tollFreeAPI.On("SubmitVerification", ctx, mock.AnythingOfType("carrier.TollFreeProfile")).Return("", errors.New("bad gateway")).Once()

		req, err := registrar.Submit(ctx, testCompany(), []string{"+18335550100"})
		assert.Nil(t, req)
		assert.ErrorContains(t, err, "toll-free verification submission failed")
	})
}

func TestDeriveOptInURL(t *testing.T) {
	assert.Equal(t, "https://acme-hvac.com/contact", deriveOptInURL("acme-hvac.com"))
	assert.Equal(t, "https://acme-hvac.com/contact", deriveOptInURL("https://acme-hvac.com/"))
	assert.Equal(t, "http://acme-hvac.com/contact", deriveOptInURL("http://acme-hvac.com"))
	assert.Equal(t, "", deriveOptInURL(""))
}
