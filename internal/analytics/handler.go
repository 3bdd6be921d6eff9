package analytics

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-mfo-admin/internal/httpx"
)

type Handler struct {
	p      Provider
	logger *zap.SugaredLogger
}

func NewHandler(p Provider, logger *zap.SugaredLogger) *Handler {
	return &Handler{p: p, logger: logger}
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.p.Stats(r.Context())
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, st)
}

func (h *Handler) Analytics(w http.ResponseWriter, r *http.Request) {
	rep, err := h.p.Analytics(r.Context())
	if err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, rep)
}
