package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"smartdiagnosis/internal/catalog"
	"smartdiagnosis/internal/classifier"
	"smartdiagnosis/internal/config"
	"smartdiagnosis/internal/events"
	"smartdiagnosis/internal/handler"
	"smartdiagnosis/internal/logger"
	"smartdiagnosis/internal/model"
	"smartdiagnosis/internal/nlp"
	"smartdiagnosis/internal/repository"
	"smartdiagnosis/internal/service"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	log := logger.New(cfg.Logging)
	log.WithFields(logrus.Fields{
		"version":    Version,
		"build_time": BuildTime,
		"git_commit": GitCommit,
	}).Info("Smart Diagnosis API")

	if err := run(cfg, log); err != nil {
		log.WithError(err).Fatal("Server failed")
	}
}

func run(cfg *config.Config, log *logrus.Logger) error {
	ctx := context.Background()
	gin.SetMode(cfg.Server.GinMode)

	predictor, err := classifier.NewPredictorFromConfig(ctx, cfg, logger.Component(log, "classifier"))
	if err != nil {
		return err
	}
	if err := classifier.Bootstrap(ctx, predictor, cfg.Model.CorpusPath); err != nil {
		return fmt.Errorf("failed to initialize model: %w", err)
	}

	vocab, err := nlp.DefaultVocabulary(predictor.Normalizer())
	if err != nil {
		return err
	}
	diseases, err := catalog.Default()
	if err != nil {
		return err
	}

	repo, err := repository.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open %s store: %w", cfg.Store.Backend, err)
	}
	defer repo.Close()
	log.WithField("backend", cfg.Store.Backend).Info("Symptom store connected")

	publisher := events.New(cfg.Events)
	defer publisher.Close()

	svc := service.NewPredictionService(
		predictor.Normalizer(),
		nlp.NewExtractor(vocab),
		predictor,
		diseases,
		repo,
		publisher,
		service.OptionsFromConfig(cfg),
		logger.Component(log, "service"),
	)
	defer svc.Wait()

	predictionHandler := handler.NewPredictionHandler(svc, logger.Component(log, "handler"))
	healthHandler := handler.NewHealthHandler(svc, model.VersionResponse{
		Version:   Version,
		GitCommit: GitCommit,
		BuildTime: BuildTime,
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: newRouter(cfg.Server, predictionHandler, healthHandler),
	}

	serveErr := make(chan error, 1)
	go func() {
		log.WithField("addr", srv.Addr).Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
	case sig := <-quit:
		log.WithField("signal", sig.String()).Info("Shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
