package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/leadvalidator/platform/pkg/common/config"
	"github.com/leadvalidator/platform/pkg/common/database"
	"github.com/leadvalidator/platform/pkg/common/kafka"
	"github.com/leadvalidator/platform/pkg/common/logger"
	"github.com/leadvalidator/platform/pkg/notifier"
	"github.com/leadvalidator/platform/pkg/projects"
)

func main() {
	logger.Init()
	cfg := config.Load()

	db, err := database.GetPostgres()
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to connect to postgres")
	}

	notifRepo := notifier.NewRepository(db)
	if err := notifRepo.AutoMigrate(); err != nil {
		logger.Log.WithError(err).Fatal("failed to migrate notification tables")
	}

	projectRepo := projects.NewRepository(db)

	svc := notifier.NewService(projectRepo, notifRepo)

	consumer := kafka.NewConsumer(cfg.LeadEventTopic, "lead-notifier")
	defer consumer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Log.Info("Shutting down Notifier Service...")
		cancel()
	}()

	logger.Log.WithField("topic", cfg.LeadEventTopic).Info("Notifier Service started")

	if err := consumer.Consume(ctx, svc.HandleEvent); err != nil && err != context.Canceled {
		logger.Log.WithError(err).Error("consumer stopped")
	}

	if err := database.ClosePostgres(); err != nil {
		logger.Log.WithError(err).Error("failed to close postgres connection")
	}

	logger.Log.Info("Notifier Service stopped")
}
