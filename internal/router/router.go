package router

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-mfo-admin/internal/admin"
	"github.com/ovaphlow/pitchfork/service-mfo-admin/internal/analytics"
	"github.com/ovaphlow/pitchfork/service-mfo-admin/internal/application"
	"github.com/ovaphlow/pitchfork/service-mfo-admin/internal/botuser"
	"github.com/ovaphlow/pitchfork/service-mfo-admin/internal/content"
	"github.com/ovaphlow/pitchfork/service-mfo-admin/internal/httpx"
	"github.com/ovaphlow/pitchfork/service-mfo-admin/internal/metrics"
	"github.com/ovaphlow/pitchfork/service-mfo-admin/internal/mfo"
)

// Pinger reports backing store health for /health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the services the gateway dispatches to.
type Deps struct {
	Logger       *zap.SugaredLogger
	Store        Pinger
	Admins       *admin.Service
	MFOs         *mfo.Service
	Users        *botuser.Service
	Content      *content.Service
	Applications *application.Manager
	Analytics    analytics.Provider
	Metrics      *metrics.Metrics

	CORSOrigins []string
	AuthRate    float64
	AuthBurst   int
}

// RegisterRoutes mounts every endpoint on a stdlib http.ServeMux and wraps
// it with the shared middleware chain.
func RegisterRoutes(d Deps) http.Handler {
	logger := d.Logger
	mux := http.NewServeMux()

	auth := AuthMiddleware(d.Admins, logger)
	protected := func(h http.HandlerFunc) http.Handler { return auth(h) }
	limiter := NewRateLimiter(d.AuthRate, d.AuthBurst, logger)

	// ops
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := d.Store.Ping(ctx); err != nil {
			logger.Warnw("health check failed", "err", err)
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("GET /metrics", d.Metrics.Handler())
	mux.HandleFunc("GET /api/{$}", func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, httpx.MessageBody{Message: "MFO Bot Admin API"})
	})

	// auth
	adminHandler := admin.NewHandler(d.Admins, logger)
	mux.Handle("POST /api/auth/register", limiter.Wrap(adminHandler.Register))
	mux.Handle("POST /api/auth/login", limiter.Wrap(adminHandler.Login))
	mux.Handle("GET /api/auth/me", protected(adminHandler.Me))

	// mfos
	mfoHandler := mfo.NewHandler(d.MFOs, logger)
	mfoHandler.OnClick = d.Metrics.ClickTracked
	mux.HandleFunc("GET /api/mfos/public", mfoHandler.ListPublic)
	mux.HandleFunc("POST /api/mfos/{id}/click", mfoHandler.Click)
	mux.Handle("GET /api/mfos", protected(mfoHandler.List))
	mux.Handle("POST /api/mfos", protected(mfoHandler.Create))
	mux.Handle("GET /api/mfos/{id}", protected(mfoHandler.Get))
	mux.Handle("PUT /api/mfos/{id}", protected(mfoHandler.Update))
	mux.Handle("DELETE /api/mfos/{id}", protected(mfoHandler.Delete))

	// applications
	appHandler := application.NewHandler(d.Applications, logger)
	mux.HandleFunc("POST /api/applications", appHandler.Create)
	mux.Handle("GET /api/applications", protected(appHandler.List))
	mux.Handle("GET /api/applications/{id}", protected(appHandler.Get))
	mux.Handle("PUT /api/applications/{id}/status", protected(appHandler.SetStatus))
	mux.Handle("GET /api/applications/{id}/history", protected(appHandler.History))

	// bot users
	userHandler := botuser.NewHandler(d.Users, logger)
	mux.HandleFunc("POST /api/bot/users", userHandler.Touch)
	mux.Handle("GET /api/users", protected(userHandler.List))

	// content
	contentHandler := content.NewHandler(d.Content, logger)
	mux.Handle("GET /api/content", protected(contentHandler.List))
	mux.Handle("GET /api/content/{key}", protected(contentHandler.GetByKey))
	mux.Handle("POST /api/content", protected(contentHandler.Create))
	mux.Handle("PUT /api/content/{id}", protected(contentHandler.Update))
	mux.Handle("DELETE /api/content/{id}", protected(contentHandler.Delete))

	// analytics
	analyticsHandler := analytics.NewHandler(d.Analytics, logger)
	mux.Handle("GET /api/stats", protected(analyticsHandler.Stats))
	mux.Handle("GET /api/analytics", protected(analyticsHandler.Analytics))

	var h http.Handler = d.Metrics.Instrument(mux)
	h = CORSMiddleware(d.CORSOrigins)(h)
	h = SecurityHeadersMiddleware()(h)
	h = LoggingMiddleware(logger)(h)
	h = RequestIDMiddleware()(h)
	return h
}
