package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/hrops/staff-loan-ledger/internal/config"
	"github.com/hrops/staff-loan-ledger/internal/handler"
	"github.com/hrops/staff-loan-ledger/internal/repository"
	"github.com/hrops/staff-loan-ledger/internal/service"
	"github.com/hrops/staff-loan-ledger/pkg/response"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := initLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	db, err := initDB(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	redisClient := initRedis(cfg)
	defer redisClient.Close()

	// Repositories
	staffRepo := repository.NewStaffRepository(db)
	loanRepo := repository.NewLoanRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)

	// Services
	staffService := service.NewStaffService(staffRepo, loanRepo, paymentRepo)
	ledgerService := service.NewLedgerService(staffRepo, loanRepo, paymentRepo)
	reportService := service.NewReportService(staffRepo, loanRepo, paymentRepo, redisClient, cfg.Redis.DashboardCacheTTL)

	// Handlers
	staffHandler := handler.NewStaffHandler(staffService, logger)
	loanHandler := handler.NewLoanHandler(ledgerService, logger)
	reportHandler := handler.NewReportHandler(reportService, logger)
	healthHandler := handler.NewHealthHandler(db, redisClient)

	router := setupRoutes(staffHandler, loanHandler, reportHandler, healthHandler, logger)

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("Server starting", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

func initLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsDevelopment() {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func initDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	return db, nil
}

func initRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func setupRoutes(
	staffHandler *handler.StaffHandler,
	loanHandler *handler.LoanHandler,
	reportHandler *handler.ReportHandler,
	healthHandler *handler.HealthHandler,
	logger *zap.Logger,
) *mux.Router {
	router := mux.NewRouter()
	router.Use(response.LoggingMiddleware(logger))
	router.Use(response.CORSMiddleware)

	// Health checks
	router.HandleFunc("/health", healthHandler.Health).Methods("GET")
	router.HandleFunc("/health/ready", healthHandler.Ready).Methods("GET")

	// API routes
	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/staff", staffHandler.Create).Methods("POST")
	api.HandleFunc("/staff", staffHandler.List).Methods("GET")

	api.HandleFunc("/loans", loanHandler.Create).Methods("POST")
	api.HandleFunc("/loans", loanHandler.List).Methods("GET")
	api.HandleFunc("/loans/{loanId}", loanHandler.Get).Methods("GET")
	api.HandleFunc("/loans/{loanId}", loanHandler.Update).Methods("PUT")
	api.HandleFunc("/loans/{loanId}", loanHandler.Delete).Methods("DELETE")
	api.HandleFunc("/loans/{loanId}/payments", loanHandler.RecordPayment).Methods("POST")
	api.HandleFunc("/loans/{loanId}/payments", loanHandler.ListPayments).Methods("GET")

	api.HandleFunc("/dashboard/stats", reportHandler.DashboardStats).Methods("GET")
	api.HandleFunc("/reports/monthly", reportHandler.MonthlyReport).Methods("GET")

	return router
}
