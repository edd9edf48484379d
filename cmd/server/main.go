package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/agrovista/fermops/internal/config"
	"github.com/agrovista/fermops/internal/identity"
	"github.com/agrovista/fermops/internal/repository/mongodb"
	"github.com/agrovista/fermops/internal/repository/postgres"
	"github.com/agrovista/fermops/internal/scheduler"
	"github.com/agrovista/fermops/internal/server/handlers"
	"github.com/agrovista/fermops/internal/server/router"
	alertsvc "github.com/agrovista/fermops/internal/service/alerts"
	dismissalsvc "github.com/agrovista/fermops/internal/service/dismissals"
	reportingsvc "github.com/agrovista/fermops/internal/service/reporting"
	"github.com/agrovista/fermops/pkg/clients/notify"
	"github.com/agrovista/fermops/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New())
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	mongoRepo, err := mongodb.NewMongoDBRepository(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName)
	if err != nil {
		baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
	}
	defer func() {
		if err := mongoRepo.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()

	db, err := postgres.NewConnection(cfg.Postgres.DSN)
	if err != nil {
		baseLogger.Fatal("failed to init postgres connection", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			baseLogger.Error("failed to close postgres connection", zap.Error(err))
		}
	}()

	resolver := identity.NewCachingResolver(
		postgres.SessionLookup(db, cfg.Session.Token),
		baseLogger.Named("identity"))

	engine := alertsvc.NewEngine(baseLogger.Named("svc.alerts"))
	reportingSvc := reportingsvc.NewService(mongoRepo, engine, baseLogger.Named("svc.reporting"))
	dismissalSvc := dismissalsvc.NewService(
		postgres.NewDismissalRepository(db), resolver, baseLogger.Named("svc.dismissals"))

	alertsHandler := handlers.NewAlertsHandler(reportingSvc, dismissalSvc, baseLogger.Named("handlers.alerts"))
	ginEngine := router.New(alertsHandler, baseLogger.Named("router"))

	notifier := notify.NewClient(cfg.Notify)
	sched := scheduler.NewScheduler(cfg.Digest, reportingSvc, notifier, baseLogger.Named("scheduler"))
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      ginEngine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
