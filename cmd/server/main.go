package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"

	httpapi "rentacar-escrow-backend/internal/api/http"
	"rentacar-escrow-backend/internal/config"
	"rentacar-escrow-backend/internal/domain"
	"rentacar-escrow-backend/internal/escrow"
	"rentacar-escrow-backend/internal/jobs"
	"rentacar-escrow-backend/internal/logger"
	"rentacar-escrow-backend/internal/notify"
	"rentacar-escrow-backend/internal/scheduler"
	"rentacar-escrow-backend/internal/security"
	"rentacar-escrow-backend/internal/statestore"
	"rentacar-escrow-backend/internal/transfer"
)

func main() {
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting escrow backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())

	// Initialize state store
	var backend statestore.Backend
	switch cfg.Database.Store {
	case "memory":
		logger.Warn("Using in-memory state store; state will not survive restarts")
		backend = statestore.NewMemoryBackend()
	default:
		logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database)
		db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		if err := db.Ping(); err != nil {
			log.Fatalf("Failed to ping database: %v", err)
		}
		pg := statestore.NewPostgresBackend(db)
		if err := pg.EnsureSchema(context.Background()); err != nil {
			log.Fatalf("Failed to ensure schema: %v", err)
		}
		logger.Info("Database connection established")
		backend = pg
	}
	store := statestore.New(backend)

	// Initialize security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, time.Duration(cfg.JWT.TokenExpiryMinutes)*time.Minute)
	gate := security.NewTokenGate(tokenManager)
	operator := security.NewOperatorCredential(cfg.Escrow.OperatorSecretHash)

	// Initialize collaborators
	ledger := transfer.NewHTTPLedger(cfg.Ledger.BaseURL, time.Duration(cfg.Ledger.TimeoutSeconds)*time.Second)
	notifiers := []notify.Notifier{notify.NewLogNotifier()}
	if cfg.Alert.Enabled {
		notifiers = append(notifiers, notify.NewEmailAlerter(cfg.Alert.SendGridAPIKey, cfg.Alert.FromEmail, cfg.Alert.ToEmail))
	}
	notifier := notify.NewFanout(notifiers...)

	// Initialize the engine
	svc := escrow.NewService(store, gate, ledger, notifier, domain.Principal(cfg.Escrow.EscrowAccount))

	// One-time bootstrap of admin identity and payment asset
	err = svc.Initialize(context.Background(), domain.Principal(cfg.Escrow.AdminAddress), cfg.Escrow.PaymentAsset)
	switch {
	case err == nil:
		logger.Info("Escrow engine initialized", "admin", cfg.Escrow.AdminAddress, "payment_asset", cfg.Escrow.PaymentAsset)
	case errors.Is(err, domain.ErrAlreadyInitialized):
		logger.Info("Escrow engine already initialized")
	default:
		log.Fatalf("Failed to initialize escrow engine: %v", err)
	}

	// Start the conservation audit scheduler
	jobRunner := jobs.NewJobRunner(store, notifier)
	sched := scheduler.NewScheduler(jobRunner, cfg.Scheduler)
	sched.Start()
	defer sched.Stop()

	// Set up HTTP server
	router := mux.NewRouter()
	httpapi.RegisterRoutes(router, svc, tokenManager, operator)

	logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
	if err := http.ListenAndServe(cfg.GetServerAddress(), router); err != nil {
		log.Fatalf("Failed to serve: %v", err)
	}
}
