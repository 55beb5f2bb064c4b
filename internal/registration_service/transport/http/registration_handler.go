package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/fieldstack/messaging-registration/internal/platform/messagebroker"
	"github.com/fieldstack/messaging-registration/internal/registration_service/app"
	"github.com/fieldstack/messaging-registration/internal/registration_service/domain"
	"github.com/go-chi/chi/v5"
	chi_middleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// RegistrationHandler exposes the registration workflow over HTTP. Jobs
// are enqueued to NATS and acknowledged with 202; the approval waits are
// too long for an interactive request budget.
type RegistrationHandler struct {
	natsClient   messagebroker.Client
	settingsRepo domain.RegistrationSettingsRepository
	validate     *validator.Validate
	logger       *slog.Logger
}

// NewRegistrationHandler creates a RegistrationHandler.
func NewRegistrationHandler(natsClient messagebroker.Client, settingsRepo domain.RegistrationSettingsRepository, logger *slog.Logger) *RegistrationHandler {
	return &RegistrationHandler{
		natsClient:   natsClient,
		settingsRepo: settingsRepo,
		validate:     validator.New(),
		logger:       logger.With("handler", "registration"),
	}
}

// RegisterRoutes registers registration routes with the given router.
func (h *RegistrationHandler) RegisterRoutes(r chi.Router) {
	r.Post("/companies/{companyID}/registrations", h.handleSubmitRegistration)
	r.Get("/companies/{companyID}/registrations", h.handleGetRegistration)
}

func (h *RegistrationHandler) handleSubmitRegistration(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.logger.With("request_id", chi_middleware.GetReqID(ctx))

	companyID, err := uuid.Parse(chi.URLParam(r, "companyID"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid company id")
		return
	}

	var req SubmitRegistrationRequest
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "failed to read request body")
		return
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := h.validate.Struct(&req); err != nil {
			writeJSONError(w, http.StatusBadRequest, "validation failed: "+err.Error())
			return
		}
	}

	job := app.RegistrationJobEvent{
		JobID:     uuid.New(),
		CompanyID: companyID,
	}
	payload, err := json.Marshal(job)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to marshal registration job", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if err := h.natsClient.Publish(ctx, app.NATSRegistrationJobSubject, payload); err != nil {
		logger.ErrorContext(ctx, "Failed to enqueue registration job", "company_id", companyID, "error", err)
		writeJSONError(w, http.StatusServiceUnavailable, "failed to enqueue registration job")
		return
	}

	logger.InfoContext(ctx, "Registration job enqueued", "job_id", job.JobID, "company_id", companyID, "requested_by", req.RequestedBy)
	writeJSON(w, http.StatusAccepted, SubmitRegistrationResponse{
		JobID:  job.JobID.String(),
		Status: "accepted",
	})
}

func (h *RegistrationHandler) handleGetRegistration(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	companyID, err := uuid.Parse(chi.URLParam(r, "companyID"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid company id")
		return
	}

	settings, err := h.settingsRepo.Get(ctx, companyID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeJSONError(w, http.StatusNotFound, "no registration found for company")
			return
		}
		h.logger.ErrorContext(ctx, "Failed to load registration settings", "company_id", companyID, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, settingsToResponse(settings))
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// HealthzHandler reports liveness.
func HealthzHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
