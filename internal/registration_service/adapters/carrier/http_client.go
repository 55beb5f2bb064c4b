package carrier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/fieldstack/messaging-registration/internal/registration_service/domain"
)

// HTTPClient talks to the carrier's registration API over HTTP. It
// implements BrandAPI, CampaignAPI and TollFreeAPI.
type HTTPClient struct {
	logger     *slog.Logger
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewHTTPClient creates a carrier API client. A nil httpClient gets a
// default with a 30s timeout.
func NewHTTPClient(logger *slog.Logger, baseURL, apiKey string, httpClient *http.Client) *HTTPClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPClient{
		logger:     logger.With("adapter", "carrier"),
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     apiKey,
	}
}

type registrationData struct {
	ID             string                 `json:"id"`
	BrandID        string                 `json:"brand_id,omitempty"`
	Status         string                 `json:"status"`
	FailureReasons []domain.FailureReason `json:"failure_reasons,omitempty"`
}

type registrationResponse struct {
	Data registrationData `json:"data"`
}

type attachNumberRequest struct {
	PhoneNumber string `json:"phone_number"`
}

type errorResponse struct {
	Errors []struct {
		Code   string `json:"code"`
		Detail string `json:"detail"`
	} `json:"errors"`
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		reqBytes, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal carrier request: %w", err)
		}
		reqBody = bytes.NewBuffer(reqBytes)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create carrier HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.ErrorContext(ctx, "Carrier API request failed", "method", method, "path", path, "error", err)
		return fmt.Errorf("carrier API request failed: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read carrier response body: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		// The platform account itself lacks registration rights; this is
		// an authorization gap, not a company-data problem.
		c.logger.WarnContext(ctx, "Carrier API rejected credentials", "status", resp.StatusCode, "path", path)
		return fmt.Errorf("carrier returned %d: %w", resp.StatusCode, domain.ErrAccountVerificationRequired)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp errorResponse
		detail := resp.Status
		if unmarshalErr := json.Unmarshal(respBytes, &errResp); unmarshalErr == nil && len(errResp.Errors) > 0 {
			detail = errResp.Errors[0].Detail
		}
		c.logger.ErrorContext(ctx, "Carrier API error", "status", resp.StatusCode, "detail", detail, "path", path)
		return fmt.Errorf("carrier returned %d: %s", resp.StatusCode, detail)
	}

	if out != nil {
		if err := json.Unmarshal(respBytes, out); err != nil {
			return fmt.Errorf("failed to decode carrier response: %w", err)
		}
	}
	return nil
}

// CreateBrand submits a brand registration and returns the carrier id.
func (c *HTTPClient) CreateBrand(ctx context.Context, profile BrandProfile) (string, error) {
	c.logger.InfoContext(ctx, "Creating brand registration", "legal_name", profile.LegalName)
	var resp registrationResponse
	if err := c.do(ctx, http.MethodPost, "/10dlc/brands", profile, &resp); err != nil {
		return "", err
	}
	return resp.Data.ID, nil
}

// GetBrand fetches the current state of a brand registration.
func (c *HTTPClient) GetBrand(ctx context.Context, brandID string) (*domain.Brand, error) {
	var resp registrationResponse
	if err := c.do(ctx, http.MethodGet, "/10dlc/brands/"+brandID, nil, &resp); err != nil {
		return nil, err
	}
	return &domain.Brand{
		ID:             resp.Data.ID,
		Status:         domain.RegistrationStatus(resp.Data.Status),
		FailureReasons: resp.Data.FailureReasons,
	}, nil
}

// CreateCampaign submits a campaign registration under a brand.
func (c *HTTPClient) CreateCampaign(ctx context.Context, brandID string, profile CampaignProfile) (string, error) {
	c.logger.InfoContext(ctx, "Creating campaign registration", "brand_id", brandID)
	body := struct {
		BrandID string `json:"brand_id"`
		CampaignProfile
	}{BrandID: brandID, CampaignProfile: profile}

	var resp registrationResponse
	if err := c.do(ctx, http.MethodPost, "/10dlc/campaigns", body, &resp); err != nil {
		return "", err
	}
	return resp.Data.ID, nil
}

// GetCampaign fetches the current state of a campaign registration.
func (c *HTTPClient) GetCampaign(ctx context.Context, campaignID string) (*domain.Campaign, error) {
	var resp registrationResponse
	if err := c.do(ctx, http.MethodGet, "/10dlc/campaigns/"+campaignID, nil, &resp); err != nil {
		return nil, err
	}
	return &domain.Campaign{
		ID:             resp.Data.ID,
		BrandID:        resp.Data.BrandID,
		Status:         domain.RegistrationStatus(resp.Data.Status),
		FailureReasons: resp.Data.FailureReasons,
	}, nil
}

// AttachNumber attaches a phone number to a campaign to grant it sending
// rights.
func (c *HTTPClient) AttachNumber(ctx context.Context, campaignID string, e164 string) error {
	return c.do(ctx, http.MethodPost, "/10dlc/campaigns/"+campaignID+"/phone_numbers", attachNumberRequest{PhoneNumber: e164}, nil)
}

// SubmitVerification submits a toll-free verification request and returns
// the carrier request id. Review happens out-of-band.
func (c *HTTPClient) SubmitVerification(ctx context.Context, profile TollFreeProfile) (string, error) {
	c.logger.InfoContext(ctx, "Submitting toll-free verification", "business_name", profile.BusinessName, "number_count", len(profile.PhoneNumbers))
	var resp registrationResponse
	if err := c.do(ctx, http.MethodPost, "/messaging_tollfree/verification/requests", profile, &resp); err != nil {
		return "", err
	}
	return resp.Data.ID, nil
}
