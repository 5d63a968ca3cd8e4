package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/aalrashed/divvy/docs" // swagger docs
	"github.com/aalrashed/divvy/internal/config"
	"github.com/aalrashed/divvy/internal/database"
	"github.com/aalrashed/divvy/internal/expense"
	"github.com/aalrashed/divvy/internal/expense/split"
	"github.com/aalrashed/divvy/internal/ledger"
	mw "github.com/aalrashed/divvy/pkg/middleware"
)

// @title           Divvy API
// @version         1.0
// @description     Shared-expense tracking: split calculation, balance ledger, payments, and debt simplification
// @BasePath        /api/v1
func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using environment variables")
	}

	cfg := config.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	db, err := database.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	if err := database.RunMigrations(db); err != nil {
		log.WithError(err).Fatal("Failed to run migrations")
	}
	log.Info("Connected to database, schema up to date")

	// Split strategy factory
	splitFactory := split.NewFactory()

	// Ledger feature: balances, payments, simplification
	ledgerStore := ledger.NewPostgresStore(db)
	ledgerService := ledger.NewService(ledgerStore, log)
	ledgerHandler := ledger.NewHandler(ledgerService)

	// Expense feature (split factory and ledger injected)
	expenseRepo := expense.NewRepository(db)
	expenseService := expense.NewService(expenseRepo, ledgerService, splitFactory, log)
	expenseHandler := expense.NewHandler(expenseService)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(mw.TestUserMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/swagger/*", httpSwagger.Handler())

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/expenses", expenseHandler.Routes())
		r.Mount("/payments", ledgerHandler.Routes())
	})

	log.WithField("port", cfg.Port).Info("Server starting")
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.WithError(err).Fatal("Server failed to start")
	}
}
