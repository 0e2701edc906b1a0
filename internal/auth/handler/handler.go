// Package handler exposes the auth service over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"medigate/internal/auth"
	"medigate/internal/auth/device"
	"medigate/internal/platform/middleware"
	dErrors "medigate/pkg/domain-errors"
	"medigate/pkg/platform/httputil"
)

// Service is the auth operations surface the handler depends on.
type Service interface {
	Login(ctx context.Context, username, password string) (string, error)
	Validate(authHeader string) error
}

// Handler handles login and validation endpoints.
type Handler struct {
	auth   Service
	logger *slog.Logger
}

// New creates an auth Handler.
func New(auth Service, logger *slog.Logger) *Handler {
	return &Handler{auth: auth, logger: logger}
}

// Register mounts the auth routes with their middleware chain.
func (h *Handler) Register(r chi.Router) {
	authRouter := chi.NewRouter()
	authRouter.Use(middleware.Recovery(h.logger))
	authRouter.Use(middleware.RequestID)
	authRouter.Use(middleware.Logger(h.logger))
	authRouter.Use(middleware.Timeout(10 * time.Second))
	authRouter.Use(middleware.ContentTypeJSON)
	authRouter.Post("/login", h.handleLogin)
	authRouter.Get("/validate", h.handleValidate)

	r.Mount("/", authRouter)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	var req auth.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if req.Username == "" || req.Password == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "username and password are required"))
		return
	}

	tok, err := h.auth.Login(ctx, req.Username, req.Password)
	if err != nil {
		dev := device.Parse(r.UserAgent())
		h.logger.WarnContext(ctx, "login rejected",
			"request_id", requestID,
			"browser", dev.Browser,
			"os", dev.OS,
			"mobile", dev.Mobile,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, auth.LoginResponse{Token: tok})
}

// handleValidate is the single source of truth the gateway defers to. It
// is idempotent and side-effect free per call.
func (h *Handler) handleValidate(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Validate(r.Header.Get("Authorization")); err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	w.WriteHeader(http.StatusOK)
}
