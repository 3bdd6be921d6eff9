package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-mfo-admin/internal/admin"
	"github.com/ovaphlow/pitchfork/service-mfo-admin/internal/analytics"
	"github.com/ovaphlow/pitchfork/service-mfo-admin/internal/application"
	"github.com/ovaphlow/pitchfork/service-mfo-admin/internal/botuser"
	"github.com/ovaphlow/pitchfork/service-mfo-admin/internal/cache"
	"github.com/ovaphlow/pitchfork/service-mfo-admin/internal/config"
	"github.com/ovaphlow/pitchfork/service-mfo-admin/internal/content"
	"github.com/ovaphlow/pitchfork/service-mfo-admin/internal/metrics"
	"github.com/ovaphlow/pitchfork/service-mfo-admin/internal/mfo"
	"github.com/ovaphlow/pitchfork/service-mfo-admin/internal/router"
	"github.com/ovaphlow/pitchfork/service-mfo-admin/internal/store"
	"github.com/ovaphlow/pitchfork/service-mfo-admin/internal/store/memory"
	"github.com/ovaphlow/pitchfork/service-mfo-admin/internal/store/sqlstore"
	"github.com/ovaphlow/pitchfork/service-mfo-admin/internal/token"
	"github.com/ovaphlow/pitchfork/service-mfo-admin/migrations"
	"github.com/ovaphlow/pitchfork/service-mfo-admin/pkg/database"
	"github.com/ovaphlow/pitchfork/service-mfo-admin/pkg/utilities"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	lg, err := utilities.Init(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer lg.Sync()

	sugar := lg.Sugar()
	if err := utilities.SetNode(cfg.SnowflakeNode); err != nil {
		sugar.Fatalf("ids: %v", err)
	}
	sugar.Infow("starting service-mfo-admin", "addr", cfg.HTTPAddr, "driver", cfg.Database.Driver, "env", cfg.Env)
	if cfg.Development() {
		sugar.Warn("APP_ENV=development: tokens may be signed with the built-in secret")
	}

	// graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg, sugar)
	if err != nil {
		sugar.Fatalf("store: %v", err)
	}
	defer st.Close()

	issuer, err := token.NewIssuer(cfg.JWTSecret, token.WithTTL(cfg.JWTTTL), token.WithIssuer(cfg.JWTIssuer))
	if err != nil {
		sugar.Fatalf("token issuer: %v", err)
	}

	loc, err := cfg.Location()
	if err != nil {
		sugar.Fatalf("analytics: %v", err)
	}
	var stats analytics.Provider = analytics.NewEngine(st, analytics.WithLocation(loc))
	if cfg.Redis.Enabled() && cfg.AnalyticsCacheTTL > 0 {
		rc := cache.New(cfg.Redis, sugar)
		defer rc.Close()
		if err := rc.Ping(ctx); err != nil {
			sugar.Warnw("redis unavailable, analytics cache will fall through", "err", err)
		}
		stats = analytics.NewCached(stats, rc, cfg.AnalyticsCacheTTL, sugar)
		sugar.Infow("analytics cache enabled", "ttl", cfg.AnalyticsCacheTTL)
	}

	handler := router.RegisterRoutes(router.Deps{
		Logger:       sugar,
		Store:        st,
		Admins:       admin.NewService(st, issuer, admin.BcryptHasher{Cost: cfg.BcryptCost}, nil, sugar),
		MFOs:         mfo.NewService(st, nil, sugar),
		Users:        botuser.NewService(st, nil, sugar),
		Content:      content.NewService(st, nil, sugar),
		Applications: application.NewManager(st, nil, sugar),
		Analytics:    stats,
		Metrics:      metrics.New(cfg.MetricsNamespace),
		CORSOrigins:  cfg.Origins(),
		AuthRate:     cfg.AuthRate,
		AuthBurst:    cfg.AuthRateBurst,
	})
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// run server in background
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugar.Fatalf("http server failed: %v", err)
		}
	}()

	<-ctx.Done()

	sugar.Info("shutting down")

	doneCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(doneCtx); err != nil {
		sugar.Warnf("http server shutdown failed: %v", err)
	}

	sugar.Info("goodbye")
}

// openStore picks the repository backend from DATABASE_DRIVER.
func openStore(ctx context.Context, cfg *config.Config, logger *zap.SugaredLogger) (store.Store, error) {
	if cfg.Database.Driver == database.DriverMemory {
		logger.Warn("using in-memory store; data is lost on restart")
		return memory.New(), nil
	}

	sqlDB, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	db := sqlx.NewDb(sqlDB, cfg.Database.Driver)

	if cfg.MigrateOnStart {
		fsys, err := migrations.For(cfg.Database.Driver)
		if err != nil {
			db.Close()
			return nil, err
		}
		if err := sqlstore.Migrate(ctx, db, fsys, logger); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}
	return sqlstore.New(db), nil
}
