package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"neuroease/internal/screening/models"
	"neuroease/internal/screening/service"
	id "neuroease/pkg/domain"
	dErrors "neuroease/pkg/domain-errors"
	"neuroease/pkg/platform/httputil"
	"neuroease/pkg/requestcontext"
)

// SessionHeader echoes the session id on answer submissions so clients that
// did not send one can continue the session.
const SessionHeader = "X-Session-ID"

// Service defines the screening operations exposed over HTTP.
type Service interface {
	StartSession(ctx context.Context, userID id.UserID) (*models.Session, error)
	SubmitAnswer(ctx context.Context, req service.SubmitAnswerRequest) (*service.SubmitAnswerResult, error)
	GetNextQuestion(ctx context.Context, userID id.UserID, sessionID id.SessionID) (*service.NextQuestion, error)
	ListDiagnoses(ctx context.Context, userID id.UserID, sessionID id.SessionID) ([]*models.Diagnosis, error)
	ReloadCatalog(ctx context.Context) (int, error)
	SessionIdleTimeout() time.Duration
}

// Handler wires screening endpoints to the screening service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the questionnaire endpoints. The caller applies
// authentication.
func (h *Handler) Register(r chi.Router) {
	r.Post("/screening/sessions", h.HandleStartSession)
	r.Post("/screening/answers", h.HandleSubmitAnswer)
	r.Get("/screening/sessions/{sessionID}/next", h.HandleNextQuestion)
	r.Get("/screening/sessions/{sessionID}/diagnoses", h.HandleListDiagnoses)
}

// RegisterAdmin mounts operator endpoints. The caller applies the admin
// token check.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/admin/catalog/reload", h.HandleReloadCatalog)
}

func (h *Handler) requireUser(w http.ResponseWriter, ctx context.Context) (id.UserID, bool) {
	userID := requestcontext.UserID(ctx)
	if userID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return id.UserID{}, false
	}
	return userID, true
}

func sessionFromPath(r *http.Request) (id.SessionID, error) {
	return id.ParseSessionID(chi.URLParam(r, "sessionID"))
}

// HandleStartSession handles POST /screening/sessions.
func (h *Handler) HandleStartSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	userID, ok := h.requireUser(w, ctx)
	if !ok {
		return
	}

	session, err := h.service.StartSession(ctx, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to start screening session",
			"request_id", requestID,
			"user_id", userID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, StartSessionResponse{
		SessionID:        session.ID.String(),
		ExpiresInSeconds: int64(h.service.SessionIdleTimeout().Seconds()),
	})
}

// HandleSubmitAnswer handles POST /screening/answers.
func (h *Handler) HandleSubmitAnswer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()
	userID, ok := h.requireUser(w, ctx)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[SubmitAnswerRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.SubmitAnswer(ctx, req.toService(userID))
	if err != nil {
		h.logFailure(ctx, "answer submission failed", err,
			"request_id", requestID,
			"user_id", userID.String(),
			"question_id", req.QuestionID,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "answer submitted",
		"request_id", requestID,
		"user_id", userID.String(),
		"session_id", result.SessionID.String(),
		"question_id", req.QuestionID,
		"matched", len(result.Matched),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	w.Header().Set(SessionHeader, result.SessionID.String())
	httputil.WriteJSON(w, http.StatusOK, fromSubmitResult(result))
}

// HandleNextQuestion handles GET /screening/sessions/{sessionID}/next.
func (h *Handler) HandleNextQuestion(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	userID, ok := h.requireUser(w, ctx)
	if !ok {
		return
	}
	sessionID, err := sessionFromPath(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	next, err := h.service.GetNextQuestion(ctx, userID, sessionID)
	if err != nil {
		h.logFailure(ctx, "next question lookup failed", err,
			"request_id", requestID,
			"session_id", sessionID.String(),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromNextQuestion(next))
}

// HandleListDiagnoses handles GET /screening/sessions/{sessionID}/diagnoses.
func (h *Handler) HandleListDiagnoses(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	userID, ok := h.requireUser(w, ctx)
	if !ok {
		return
	}
	sessionID, err := sessionFromPath(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	list, err := h.service.ListDiagnoses(ctx, userID, sessionID)
	if err != nil {
		h.logFailure(ctx, "listing diagnoses failed", err,
			"request_id", requestID,
			"session_id", sessionID.String(),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromDiagnoses(list))
}

// HandleReloadCatalog handles POST /admin/catalog/reload.
func (h *Handler) HandleReloadCatalog(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	n, err := h.service.ReloadCatalog(ctx)
	if err != nil {
		h.logFailure(ctx, "catalog reload failed", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, "catalog reloaded", "request_id", requestID, "rules", n)
	httputil.WriteJSON(w, http.StatusOK, ReloadCatalogResponse{Rules: n})
}

// logFailure logs client errors at warn and everything else at error.
func (h *Handler) logFailure(ctx context.Context, msg string, err error, attrs ...any) {
	attrs = append(attrs, "error", err, "client_ip", requestcontext.ClientIP(ctx))
	if status := dErrors.ToHTTPStatus(dErrors.CodeOf(err)); status < http.StatusInternalServerError {
		h.logger.WarnContext(ctx, msg, attrs...)
		return
	}
	h.logger.ErrorContext(ctx, msg, attrs...)
}
