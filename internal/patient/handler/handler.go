// Package handler exposes the patient service over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"medigate/internal/patient"
	"medigate/internal/platform/middleware"
	dErrors "medigate/pkg/domain-errors"
	"medigate/pkg/platform/httputil"
)

// Service is the patient operations surface the handler depends on.
type Service interface {
	Create(ctx context.Context, req patient.Request) (*patient.Patient, error)
	Update(ctx context.Context, id uuid.UUID, req patient.Request) (*patient.Patient, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*patient.Patient, error)
	List(ctx context.Context) ([]*patient.Patient, error)
}

// Handler handles the patient CRUD endpoints.
type Handler struct {
	patients Service
	logger   *slog.Logger
}

// New creates a patient Handler.
func New(patients Service, logger *slog.Logger) *Handler {
	return &Handler{patients: patients, logger: logger}
}

// Register mounts the patient routes with their middleware chain.
func (h *Handler) Register(r chi.Router) {
	pr := chi.NewRouter()
	pr.Use(middleware.Recovery(h.logger))
	pr.Use(middleware.RequestID)
	pr.Use(middleware.Logger(h.logger))
	pr.Use(middleware.Timeout(15 * time.Second))
	pr.Use(middleware.ContentTypeJSON)
	pr.Get("/", h.handleList)
	pr.Post("/", h.handleCreate)
	pr.Get("/{id}", h.handleGet)
	pr.Put("/{id}", h.handleUpdate)
	pr.Delete("/{id}", h.handleDelete)

	r.Mount("/patients", pr)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	all, err := h.patients.List(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]patient.Response, 0, len(all))
	for _, p := range all {
		out = append(out, patient.ToResponse(p))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req patient.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	p, err := h.patients.Create(r.Context(), req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, patient.ToResponse(p))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	p, err := h.patients.Get(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, patient.ToResponse(p))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req patient.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	p, err := h.patients.Update(r.Context(), id, req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, patient.ToResponse(p))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.patients.Delete(r.Context(), id); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid patient id"))
		return uuid.Nil, false
	}
	return id, true
}
