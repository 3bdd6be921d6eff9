package admin

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-mfo-admin/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-mfo-admin/internal/httpx"
)

// Handler exposes HTTP endpoints for admin auth (register / login / me).
type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterInput
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	sess, err := h.svc.Register(r.Context(), req)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, sess)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginInput
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	sess, err := h.svc.Login(r.Context(), req)
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, sess)
}

// Me returns the admin resolved by the auth middleware.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	a, ok := httpx.AdminFrom(r.Context())
	if !ok {
		httpx.WriteError(w, r, h.logger, apperr.ErrUnauthorized)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, a)
}
