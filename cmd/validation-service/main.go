package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/leadvalidator/platform/pkg/common/config"
	"github.com/leadvalidator/platform/pkg/common/database"
	"github.com/leadvalidator/platform/pkg/common/httpclient"
	"github.com/leadvalidator/platform/pkg/common/kafka"
	"github.com/leadvalidator/platform/pkg/common/logger"
	"github.com/leadvalidator/platform/pkg/common/middleware"
	"github.com/leadvalidator/platform/pkg/leads"
	"github.com/leadvalidator/platform/pkg/normalizer"
	"github.com/leadvalidator/platform/pkg/projects"
	"github.com/leadvalidator/platform/pkg/scoring"
	"github.com/leadvalidator/platform/pkg/webhook"
)

func main() {
	logger.Init()
	cfg := config.Load()

	db, err := database.GetPostgres()
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to connect to postgres")
	}

	leadRepo := leads.NewRepository(db)
	if err := leadRepo.AutoMigrate(); err != nil {
		logger.Log.WithError(err).Fatal("failed to migrate lead tables")
	}

	projectRepo := projects.NewRepository(db)
	if err := projectRepo.AutoMigrate(); err != nil {
		logger.Log.WithError(err).Fatal("failed to migrate project tables")
	}

	rules, err := scoring.LoadRules(cfg.ScoringRulesPath)
	if err != nil {
		logger.Log.WithError(err).Warn("falling back to default scoring rules")
	}
	scorer, err := scoring.NewScorer(rules, cfg.DefaultPhoneRegion)
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to build scorer")
	}

	producer := kafka.NewProducer(cfg.LeadEventTopic)
	defer producer.Close()

	deliverer := webhook.NewDeliverer(
		httpclient.New(cfg.WebhookTimeout),
		cfg.WebhookMaxAttempts,
		cfg.WebhookBackoffBase,
	)

	projectSvc := projects.NewService(projectRepo, database.GetRedis(), cfg.ProjectCacheTTL, cfg.DefaultMinScore)
	leadSvc := leads.NewService(
		normalizer.New(nil),
		scorer,
		leadRepo,
		deliverer,
		producer,
		cfg.DefaultMinScore,
	)

	leadHandler := leads.NewHTTPHandler(leadSvc, leadRepo, projectSvc)
	projectHandler := projects.NewHandler(projectSvc)

	router := mux.NewRouter()
	router.Use(middleware.Recovery, middleware.Logging, middleware.CORS)
	router.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
	router.Use(middleware.BodyLimit(cfg.MaxRequestBody))

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	}).Methods(http.MethodGet)

	router.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ready"}`))
	}).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	leadHandler.Register(api)
	projectHandler.Register(api)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		logger.Log.WithFields(map[string]interface{}{
			"host": cfg.ServerHost,
			"port": cfg.ServerPort,
		}).Info("Validation Service started")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("failed to start server")
		}
	}()

	if cfg.LeadRetention > 0 {
		go func() {
			ticker := time.NewTicker(12 * time.Hour)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					if err := leadRepo.CleanupExpired(context.Background(), cfg.LeadRetention); err != nil {
						logger.Log.WithError(err).Warn("lead retention cleanup failed")
					}
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down Validation Service...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("server forced to shutdown")
	}

	// Let in-flight webhook deliveries finish; abandon only at the deadline
	leadSvc.Close(shutdownCtx)

	if err := database.CloseRedis(); err != nil {
		logger.Log.WithError(err).Error("failed to close redis client")
	}
	if err := database.ClosePostgres(); err != nil {
		logger.Log.WithError(err).Error("failed to close postgres connection")
	}

	logger.Log.Info("Validation Service stopped")
}
