package builder

import (
	"fmt"
	"net/http"
	"time"

	"github.com/mockmate/interview-runtime/internal/api"
	sessionapi "github.com/mockmate/interview-runtime/internal/api/session"
	"github.com/mockmate/interview-runtime/internal/capture"
	"github.com/mockmate/interview-runtime/internal/config"
	"github.com/mockmate/interview-runtime/internal/integration/evaluator"
	"github.com/mockmate/interview-runtime/internal/integration/media"
	"github.com/mockmate/interview-runtime/internal/integration/navigator"
	"github.com/mockmate/interview-runtime/internal/integration/results"
	"github.com/mockmate/interview-runtime/internal/pkg/validator"
	"github.com/mockmate/interview-runtime/internal/runtime"
	"github.com/mockmate/interview-runtime/internal/submission"
	"github.com/mockmate/interview-runtime/internal/usecase/interview"
	"go.uber.org/zap"
)

func Build() (*App, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	logger.Info("Building application",
		zap.String("environment", cfg.Environment),
		zap.String("server_addr", cfg.ServerAddr),
	)

	// Initialize external service connectors (with mock support)
	var evaluatorConnector interface {
		interview.EvaluatorConnector
		submission.EvaluatorConnector
	}
	var resultsConnector submission.ResultsConnector
	var navigatorConnector runtime.Navigator
	var device capture.Device

	if cfg.EnableMocks {
		logger.Info("Using mock connectors for external services")
		evaluatorConnector = evaluator.NewMockConnector(logger)
		resultsConnector = results.NewMockConnector(logger)
		navigatorConnector = navigator.NewMockConnector(logger)
		device = media.NewMockDevice(logger)
	} else {
		logger.Info("Using real connectors for external services")
		evaluatorConnector = evaluator.NewConnector(cfg.EvaluatorConnectorCfg, logger)
		resultsConnector = results.NewConnector(cfg.ResultsConnectorCfg, logger)
		navigatorConnector = navigator.NewConnector(cfg.NavigatorConnectorCfg, logger)
		device = media.NewDevice(cfg.MediaConnectorCfg, logger)
	}

	// Initialize the submission pipeline and the session registry
	pipeline := submission.NewPipeline(evaluatorConnector, resultsConnector, logger)
	registry := runtime.NewRegistry(cfg.SessionCfg.IdleTTL, cfg.SessionCfg.MaxActiveSessions, logger)
	logger.Info("Session registry initialized",
		zap.Duration("idle_ttl", cfg.SessionCfg.IdleTTL),
		zap.Int("max_active_sessions", cfg.SessionCfg.MaxActiveSessions),
	)

	runtimeCfg := runtime.Config{
		QuestionTime:          cfg.SessionCfg.QuestionTime,
		FeedbackRedirectDelay: cfg.SessionCfg.FeedbackRedirectDelay,
	}

	// Initialize use cases
	interviewUC := interview.NewUsecase(
		evaluatorConnector,
		registry,
		device,
		pipeline,
		navigatorConnector,
		runtimeCfg,
		logger,
	)
	logger.Info("Use cases initialized")

	// Initialize validators
	sessionValidator := validator.NewValidator()

	// Setup API handlers
	sessionHandler := sessionapi.NewHandler(interviewUC, sessionValidator)
	logger.Info("API handlers initialized")

	// Setup router
	router := api.SetupRouter(sessionHandler, logger)
	logger.Info("HTTP router configured")

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("Application built successfully",
		zap.String("environment", cfg.Environment),
	)

	return &App{
		server:   server,
		registry: registry,
		logger:   logger,
	}, nil
}
