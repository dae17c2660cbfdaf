package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"database/sql"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/finwell-io/wellness-service/internal/alert"
	"github.com/finwell-io/wellness-service/internal/config"
	"github.com/finwell-io/wellness-service/internal/costs"
	"github.com/finwell-io/wellness-service/internal/detector"
	"github.com/finwell-io/wellness-service/internal/handler"
	"github.com/finwell-io/wellness-service/internal/integrations/rates"
	"github.com/finwell-io/wellness-service/internal/interpreter"
	"github.com/finwell-io/wellness-service/internal/middleware"
	"github.com/finwell-io/wellness-service/internal/monitor"
	"github.com/finwell-io/wellness-service/internal/recommend"
	"github.com/finwell-io/wellness-service/internal/repository"
	"github.com/finwell-io/wellness-service/internal/service"
	"github.com/finwell-io/wellness-service/internal/sqlgen"
)

const version = "1.0.0"

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	// Initialize database
	db, err := sql.Open("postgres", cfg.DBConn)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}

	// Initialize layers
	repo := repository.NewRepository(db)
	det := detector.New(detector.DefaultConfig())
	tracker := costs.NewTracker(repo, costs.DefaultPricing(), logger)

	var gen interpreter.Generator
	if cfg.SQLGenEnabled {
		gen = sqlgen.New(cfg.AnthropicAPIKey, cfg.AnthropicModel, cfg.SQLGenMaxTokens,
			repository.SchemaDescription(), repo, tracker, logger)
		logger.WithField("model", cfg.AnthropicModel).Info("AI SQL fallback enabled")
	} else {
		logger.Info("AI SQL fallback disabled")
	}
	interp := interpreter.New(repo, det, gen, cfg.SQLGenTimeout, logger)

	var rateSource recommend.RateSource
	if cfg.RatesURL != "" {
		ratesClient, err := rates.NewClient(cfg.RatesURL, cfg.RatesCacheTTL, logger)
		if err != nil {
			logger.Fatalf("Failed to init rates client: %v", err)
		}
		rateSource = ratesClient
	}
	rec := recommend.NewEngine(repo, det, rateSource, logger)
	svc := service.NewService(repo, logger, cfg.JWTSecret)

	// Alert fan-out
	alertCfg, err := alert.LoadFileConfig(cfg.AlertConfigPath)
	if err != nil {
		logger.Fatalf("Failed to load alert config: %v", err)
	}
	dispatcher := alert.NewDispatcher(alertCfg, logger)
	dispatcher.RegisterChannel("console", alert.NewConsoleNotifier(logger))
	if cfg.SlackWebhookURL != "" {
		dispatcher.RegisterChannel("slack", alert.NewSlackNotifier(cfg.SlackWebhookURL))
	}
	if cfg.PagerWebhookURL != "" {
		dispatcher.RegisterChannel("pager", alert.NewPagerNotifier(cfg.PagerWebhookURL))
	}
	if cfg.SMTPHost != "" {
		recipients := alertCfg.Channels["email"].Recipients
		dispatcher.RegisterChannel("email", alert.NewEmailNotifier(cfg, recipients, logger))
	}

	// Scheduled checks
	mon := monitor.New(repo, dispatcher, monitor.Config{
		Schedule:         cfg.MonitorSchedule,
		OverdueThreshold: cfg.OverdueThreshold,
	}, logger)
	if err := mon.Start(); err != nil {
		logger.Fatalf("Failed to start monitor: %v", err)
	}
	defer mon.Stop()

	h := handler.NewHandler(svc, interp, rec, repo, det, version, logger)

	// Setup router
	r := mux.NewRouter()
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logging(logger))
	// Public routes
	r.HandleFunc("/register", h.Register).Methods("POST")
	r.HandleFunc("/login", h.Login).Methods("POST")
	r.HandleFunc("/health", h.Health).Methods("GET")
	// Protected routes
	authRouter := r.PathPrefix("/").Subrouter()
	authRouter.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	authRouter.HandleFunc("/query", h.Query).Methods("POST")
	authRouter.HandleFunc("/ws", h.Chat).Methods("GET")
	authRouter.HandleFunc("/customers/{id}/subscriptions", h.Subscriptions).Methods("GET")
	authRouter.HandleFunc("/customers/{id}/recommendations", h.Recommendations).Methods("GET")
	authRouter.HandleFunc("/costs/summary", h.CostSummary).Methods("GET")

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	logger.Infof("Starting server on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("Server failed: %v", err)
	}
}
