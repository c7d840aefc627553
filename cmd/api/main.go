package main

import (
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/barakabank/bank-service/internal/config"
	"github.com/barakabank/bank-service/internal/decision"
	"github.com/barakabank/bank-service/internal/events/kafka"
	"github.com/barakabank/bank-service/internal/handler"
	"github.com/barakabank/bank-service/internal/integrations/keyrate"
	"github.com/barakabank/bank-service/internal/ledger"
	"github.com/barakabank/bank-service/internal/middleware"
	"github.com/barakabank/bank-service/internal/models"
	"github.com/barakabank/bank-service/internal/repository"
	"github.com/barakabank/bank-service/internal/scheduler"
	"github.com/barakabank/bank-service/internal/service"
	"github.com/barakabank/bank-service/internal/utils/email"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

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
	godotenv.Load()
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
	ldg := ledger.NewLedger(repo, logger)

	var source decision.Source
	switch cfg.DecisionSource {
	case "rules":
		source = decision.NewRuleBased(cfg.ApprovalThreshold)
	default:
		source = decision.NewManualReview()
	}

	var publisher service.Publisher
	if cfg.KafkaBrokers != "" {
		kafkaPublisher := kafka.NewPublisher(strings.Split(cfg.KafkaBrokers, ","))
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	}

	var notifier service.Notifier
	var sender *email.Sender
	if cfg.SMTPHost != "" {
		sender = email.NewSender(cfg, logger)
		notifier = sender
	}

	svc := service.NewService(repo, ldg, cfg, logger, source, publisher, notifier)
	h := handler.NewHandler(svc)
	rateClient := keyrate.NewClient(cfg.KeyRateURL, logger)

	// Setup router
	r := mux.NewRouter()
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	// Public routes
	api.HandleFunc("/auth/register", h.Register).Methods("POST")
	api.HandleFunc("/auth/login", h.Login).Methods("POST")

	// Client routes
	client := api.PathPrefix("/client").Subrouter()
	client.Use(middleware.AuthMiddleware(cfg), middleware.RequireRole(models.RoleClient))
	client.HandleFunc("/profile", h.Profile).Methods("GET")
	client.HandleFunc("/operations", h.ClientOperations).Methods("GET")
	client.HandleFunc("/operations/deposit", h.CreateDeposit).Methods("POST")
	client.HandleFunc("/operations/withdrawal", h.CreateWithdrawal).Methods("POST")
	client.HandleFunc("/operations/transfer", h.CreateTransfer).Methods("POST")

	// Agent routes
	agent := api.PathPrefix("/agent").Subrouter()
	agent.Use(middleware.AuthMiddleware(cfg), middleware.RequireRole(models.RoleAgent))
	agent.HandleFunc("/operations", h.AllOperations).Methods("GET")
	agent.HandleFunc("/operations/pending", h.PendingOperations).Methods("GET")
	agent.HandleFunc("/operations/{id}/approve", h.ApproveOperation).Methods("PUT")
	agent.HandleFunc("/operations/{id}/reject", h.RejectOperation).Methods("PUT")
	agent.HandleFunc("/operations/{id}/analyze", h.AnalyzeOperation).Methods("POST")
	agent.HandleFunc("/operations/{id}/validation", h.OperationValidationResult).Methods("GET")
	agent.HandleFunc("/validations/stats", h.ValidationStats).Methods("GET")

	// Admin routes
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.AuthMiddleware(cfg), middleware.RequireRole(models.RoleAdmin))
	admin.HandleFunc("/users", h.Users).Methods("GET")
	admin.HandleFunc("/users/{id}/activate", h.ActivateUser).Methods("PUT")
	admin.HandleFunc("/users/{id}/deactivate", h.DeactivateUser).Methods("PUT")
	admin.HandleFunc("/operations", h.AllOperations).Methods("GET")
	admin.HandleFunc("/key-rate", func(w http.ResponseWriter, r *http.Request) {
		rate, err := rateClient.Latest()
		if err != nil {
			http.Error(w, fmt.Sprintf("Failed to get key rate: %v", err), http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"key_rate":%q,"date":%q}`, rate.Value, rate.Date.Format("2006-01-02"))
	}).Methods("GET")

	// Document routes, available to any authenticated user
	docs := api.NewRoute().Subrouter()
	docs.Use(middleware.AuthMiddleware(cfg))
	docs.HandleFunc("/operations/{id}/documents", h.UploadDocument).Methods("POST")
	docs.HandleFunc("/operations/{id}/documents", h.OperationDocuments).Methods("GET")
	docs.HandleFunc("/documents/{id}", h.DownloadDocument).Methods("GET")
	docs.HandleFunc("/documents/{id}", h.DeleteDocument).Methods("DELETE")

	// Start pending-review reminders when email is configured
	if sender != nil {
		sched := scheduler.NewScheduler(repo, sender, cfg, logger)
		if err := sched.Start(); err != nil {
			logger.Fatalf("Failed to start scheduler: %v", err)
		}
		defer sched.Stop()
	}

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	logger.Infof("Starting server on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("Server failed: %v", err)
	}
}
