package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/mockmate/interview-runtime/internal/entity"
	"github.com/mockmate/interview-runtime/internal/pkg/logger"
	"github.com/mockmate/interview-runtime/internal/pkg/response"
	"github.com/mockmate/interview-runtime/internal/pkg/validator"
	"go.uber.org/zap"
)

type Handler struct {
	usecase   InterviewUsecase
	validator *validator.Validator
}

func NewHandler(
	usecase InterviewUsecase,
	validator *validator.Validator,
) *Handler {
	return &Handler{
		usecase:   usecase,
		validator: validator,
	}
}

// StartSession handles POST /interview-session - Start new session
func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "StartSession")

	var req entity.StartSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctxzap.Error(ctx, "failed to decode request body", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validator.ValidateStartSession(&req); err != nil {
		ctxzap.Error(ctx, "failed to validate request", zap.Error(err))
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	ctxzap.Info(ctx, "starting interview session",
		zap.String("domain", req.Domain),
		zap.String("level", req.Level),
	)

	snapshot, err := h.usecase.StartSession(ctx, &req)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Created(w, snapshot)
}

// GetState handles GET /interview-session/{id} - Runtime state snapshot
func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	ctx, sessionID := h.sessionContext(r, "GetState")

	snapshot, err := h.usecase.GetState(ctx, sessionID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, snapshot)
}

// SetMode handles POST /interview-session/{id}/mode - Toggle capture mode
func (h *Handler) SetMode(w http.ResponseWriter, r *http.Request) {
	ctx, sessionID := h.sessionContext(r, "SetMode")

	var req entity.SetModeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.ValidateSetMode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	snapshot, err := h.usecase.SetMode(ctx, sessionID, req.Mode)
	if err != nil && !errors.Is(err, entity.ErrDeviceUnavailable) {
		h.handleUsecaseError(ctx, w, err)
		return
	}
	if err != nil {
		// Device denial is surfaced in the snapshot, not as a failure:
		// the session continues in text mode.
		ctxzap.Warn(ctx, "device re-acquisition failed", zap.Error(err))
	}

	response.Success(w, snapshot)
}

// SetText handles POST /interview-session/{id}/text - Update transcript buffer
func (h *Handler) SetText(w http.ResponseWriter, r *http.Request) {
	ctx, sessionID := h.sessionContext(r, "SetText")

	var req entity.SetTextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.ValidateSetText(&req); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	snapshot, err := h.usecase.SetText(ctx, sessionID, req.Text)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, snapshot)
}

// StartRecording handles POST /interview-session/{id}/recording
func (h *Handler) StartRecording(w http.ResponseWriter, r *http.Request) {
	ctx, sessionID := h.sessionContext(r, "StartRecording")

	snapshot, err := h.usecase.StartRecording(ctx, sessionID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, snapshot)
}

// Submit handles POST /interview-session/{id}/submit - Manual submit
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx, sessionID := h.sessionContext(r, "Submit")

	snapshot, err := h.usecase.Submit(ctx, sessionID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, snapshot)
}

// NextQuestion handles POST /interview-session/{id}/next
func (h *Handler) NextQuestion(w http.ResponseWriter, r *http.Request) {
	ctx, sessionID := h.sessionContext(r, "NextQuestion")

	snapshot, err := h.usecase.NextQuestion(ctx, sessionID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, snapshot)
}

// ReportVisibility handles POST /interview-session/{id}/visibility
func (h *Handler) ReportVisibility(w http.ResponseWriter, r *http.Request) {
	ctx, sessionID := h.sessionContext(r, "ReportVisibility")

	var req entity.VisibilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.usecase.ReportVisibility(ctx, sessionID, req.Hidden); err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.NoContent(w)
}

// AbandonSession handles DELETE /interview-session/{id}
func (h *Handler) AbandonSession(w http.ResponseWriter, r *http.Request) {
	ctx, sessionID := h.sessionContext(r, "AbandonSession")

	if err := h.usecase.AbandonSession(ctx, sessionID); err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "session abandoned")
	response.NoContent(w)
}

// GetDomains handles GET /domains - Available interview domains
func (h *Handler) GetDomains(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "GetDomains")

	domains, err := h.usecase.GetDomains(ctx)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, domains)
}

func (h *Handler) sessionContext(r *http.Request, action string) (context.Context, string) {
	sessionID := chi.URLParam(r, "id")
	ctx := logger.AddFields(r.Context(),
		zap.String("session_id", sessionID),
		zap.String("action", action),
	)
	return ctx, sessionID
}

func (h *Handler) handleUsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	ctxzap.Error(ctx, "request failed", zap.Error(err))

	switch {
	case errors.Is(err, entity.ErrSessionNotFound):
		response.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, entity.ErrEmptyInput),
		errors.Is(err, entity.ErrMissingField),
		errors.Is(err, entity.ErrInvalidParameter):
		response.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, entity.ErrInvalidAction),
		errors.Is(err, entity.ErrSessionCompleted),
		errors.Is(err, entity.ErrNotRecording),
		errors.Is(err, entity.ErrRecorderBusy),
		errors.Is(err, entity.ErrNoStream):
		response.Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, entity.ErrInitializationFailed),
		errors.Is(err, entity.ErrSubmissionFailed):
		response.Error(w, http.StatusBadGateway, err.Error())
	default:
		response.Error(w, http.StatusInternalServerError, "internal server error")
	}
}
