package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/hrops/staff-loan-ledger/internal/config"
	"github.com/hrops/staff-loan-ledger/internal/domain"
	"github.com/hrops/staff-loan-ledger/internal/repository"
	"github.com/hrops/staff-loan-ledger/internal/service"
	"github.com/hrops/staff-loan-ledger/pkg/loancalc"
)

const overdueSetKey = "loans:overdue"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := zap.NewProduction()
	if cfg.IsDevelopment() {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	staffRepo := repository.NewStaffRepository(db)
	loanRepo := repository.NewLoanRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	reportService := service.NewReportService(staffRepo, loanRepo, paymentRepo, redisClient, cfg.Redis.DashboardCacheTTL)

	location, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		logger.Fatal("Invalid scheduler timezone", zap.Error(err))
	}

	c := cron.New(cron.WithSeconds(), cron.WithLocation(location))

	// Daily overdue scan at midnight. Read-only over ledger state: the
	// resulting loan-id set is cached in Redis for dashboards and alerts.
	_, err = c.AddFunc("0 0 0 * * *", func() {
		if err := scanOverdueLoans(context.Background(), loanRepo, redisClient, logger); err != nil {
			logger.Error("Overdue scan failed", zap.Error(err))
		}
	})
	if err != nil {
		logger.Fatal("Failed to schedule overdue scan", zap.Error(err))
	}

	// Hourly dashboard cache refresh so the first request after a quiet
	// period does not pay the aggregation cost.
	_, err = c.AddFunc("0 0 * * * *", func() {
		if err := refreshDashboardCache(context.Background(), reportService); err != nil {
			logger.Error("Dashboard cache refresh failed", zap.Error(err))
		}
	})
	if err != nil {
		logger.Fatal("Failed to schedule dashboard refresh", zap.Error(err))
	}

	c.Start()
	logger.Info("Scheduler started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down scheduler...")
	<-c.Stop().Done()
	logger.Info("Scheduler stopped")
}

// scanOverdueLoans checks every active loan's repayment pace against its
// monthly payment and rewrites the overdue loan-id set in Redis.
func scanOverdueLoans(
	ctx context.Context,
	loanRepo repository.LoanRepository,
	redisClient *redis.Client,
	logger *zap.Logger,
) error {
	loans, err := loanRepo.List(ctx, domain.LoanFilter{Status: domain.LoanStatusActive})
	if err != nil {
		return err
	}

	now := time.Now()
	overdue := []interface{}{}
	for _, loan := range loans {
		totalPaid := loancalc.TotalPaid(loan.LoanAmount, loan.OutstandingBalance)
		if loancalc.IsOverdue(loan.StartDate, loan.MonthlyPayment, totalPaid, now) {
			overdue = append(overdue, loan.ID.String())
		}
	}

	pipe := redisClient.TxPipeline()
	pipe.Del(ctx, overdueSetKey)
	if len(overdue) > 0 {
		pipe.SAdd(ctx, overdueSetKey, overdue...)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}

	logger.Info("Overdue scan complete",
		zap.Int("active_loans", len(loans)),
		zap.Int("overdue", len(overdue)),
	)
	return nil
}

func refreshDashboardCache(ctx context.Context, reportService *service.ReportService) error {
	return reportService.RefreshDashboardStats(ctx)
}
