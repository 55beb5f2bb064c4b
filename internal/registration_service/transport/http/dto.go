package http

import "github.com/fieldstack/messaging-registration/internal/registration_service/domain"

// SubmitRegistrationRequest is the body of POST /companies/{id}/registrations.
type SubmitRegistrationRequest struct {
	// RequestedBy is the operator email recorded with the job, for audit.
	RequestedBy string `json:"requested_by" validate:"omitempty,email"`
}

// SubmitRegistrationResponse acknowledges an enqueued registration job.
// The workflow itself runs off the request path; callers follow up via
// the settings endpoint or the completion event.
type SubmitRegistrationResponse struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

// RegistrationSettingsResponse is the persisted registration progress for
// a company.
type RegistrationSettingsResponse struct {
	CompanyID           string  `json:"company_id"`
	BrandID             *string `json:"brand_id,omitempty"`
	CampaignID          *string `json:"campaign_id,omitempty"`
	TollFreeRequestID   *string `json:"toll_free_request_id,omitempty"`
	TollFreeStatus      *string `json:"toll_free_status,omitempty"`
	TollFreeSubmittedAt *string `json:"toll_free_submitted_at,omitempty"`
	Completed           bool    `json:"completed"`
}

// ErrorResponse is the generic error body.
type ErrorResponse struct {
	Error string `json:"error"`
}

func settingsToResponse(s *domain.RegistrationSettings) RegistrationSettingsResponse {
	resp := RegistrationSettingsResponse{
		CompanyID:  s.CompanyID.String(),
		BrandID:    s.BrandID,
		CampaignID: s.CampaignID,
		Completed:  s.Completed(),
	}
	resp.TollFreeRequestID = s.TollFreeRequestID
	if s.TollFreeStatus != nil {
		status := string(*s.TollFreeStatus)
		resp.TollFreeStatus = &status
	}
	if s.TollFreeSubmittedAt != nil {
		formatted := s.TollFreeSubmittedAt.UTC().Format("2006-01-02T15:04:05Z07:00")
		resp.TollFreeSubmittedAt = &formatted
	}
	return resp
}
