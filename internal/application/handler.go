package application

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-mfo-admin/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-mfo-admin/internal/application/entity"
	"github.com/ovaphlow/pitchfork/service-mfo-admin/internal/httpx"
)

type Handler struct {
	mgr    *Manager
	logger *zap.SugaredLogger
}

func NewHandler(mgr *Manager, logger *zap.SugaredLogger) *Handler {
	return &Handler{mgr: mgr, logger: logger}
}

// List accepts an optional ?status= filter.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	var f entity.Filter
	if raw := r.URL.Query().Get("status"); raw != "" {
		st, err := entity.ParseStatus(raw)
		if err != nil {
			httpx.WriteError(w, r, h.logger, err)
			return
		}
		f.Status = &st
	}
	list, err := h.mgr.List(r.Context(), f)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, list)
}

// Create is the bot-facing submission endpoint.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in CreateInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	a, err := h.mgr.Create(r.Context(), in)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, a)
}

// SetStatus handles PUT /api/applications/{id}/status?status=X. The value is
// parsed here so unknown statuses never reach the manager.
func (h *Handler) SetStatus(w http.ResponseWriter, r *http.Request) {
	admin, ok := httpx.AdminFrom(r.Context())
	if !ok {
		httpx.WriteError(w, r, h.logger, apperr.ErrUnauthorized)
		return
	}
	st, err := entity.ParseStatus(r.URL.Query().Get("status"))
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	a, err := h.mgr.SetStatus(r.Context(), admin.ID, r.PathValue("id"), st)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, a)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	a, err := h.mgr.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, a)
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	changes, err := h.mgr.History(r.Context(), r.PathValue("id"))
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, changes)
}
