package mfo

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-mfo-admin/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-mfo-admin/internal/httpx"
	"github.com/ovaphlow/pitchfork/service-mfo-admin/internal/mfo/entity"
)

type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger

	// OnClick, if set, runs after each tracked click.
	OnClick func()
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.List(r.Context())
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, list)
}

func (h *Handler) ListPublic(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListPublic(r.Context())
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, list)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	m, err := h.svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, m)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var p entity.Patch
	if err := httpx.DecodeJSON(r, &p); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	m, err := h.svc.Create(r.Context(), p)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, m)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var p entity.Patch
	if err := httpx.DecodeJSON(r, &p); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	m, err := h.svc.Update(r.Context(), r.PathValue("id"), p)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, m)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), r.PathValue("id")); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Click is called by the bot; telegram_id is optional.
func (h *Handler) Click(w http.ResponseWriter, r *http.Request) {
	var tid *int64
	if raw := r.URL.Query().Get("telegram_id"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			httpx.WriteError(w, r, h.logger, apperr.Invalid("telegram_id must be an integer"))
			return
		}
		tid = &v
	}
	if _, err := h.svc.TrackClick(r.Context(), r.PathValue("id"), tid); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	if h.OnClick != nil {
		h.OnClick()
	}
	httpx.WriteJSON(w, http.StatusOK, httpx.MessageBody{Message: "Click tracked"})
}
