package service

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/hrops/staff-loan-ledger/internal/domain"
	"github.com/hrops/staff-loan-ledger/internal/repository"
	customError "github.com/hrops/staff-loan-ledger/pkg/errors"
)

const (
	dashboardCacheKey = "dashboard:stats"
	recentLimit       = 5
	topBorrowersLimit = 10
)

// ReportService derives dashboard and monthly-report statistics by folding
// over committed loan/payment state. Reports are best-effort point-in-time
// views; they are not transactionally consistent with the ledger.
type ReportService struct {
	StaffRepo   repository.StaffRepository
	LoanRepo    repository.LoanRepository
	PaymentRepo repository.PaymentRepository

	redis    *redis.Client
	cacheTTL time.Duration
}

func NewReportService(
	staffRepo repository.StaffRepository,
	loanRepo repository.LoanRepository,
	paymentRepo repository.PaymentRepository,
	redisClient *redis.Client,
	cacheTTL time.Duration,
) *ReportService {
	return &ReportService{
		StaffRepo:   staffRepo,
		LoanRepo:    loanRepo,
		PaymentRepo: paymentRepo,
		redis:       redisClient,
		cacheTTL:    cacheTTL,
	}
}

// DashboardStats returns the aggregate dashboard view, served from the Redis
// cache when a fresh copy exists. Cache failures degrade to a direct read.
func (s *ReportService) DashboardStats(ctx context.Context) (*domain.DashboardStats, error) {
	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, dashboardCacheKey).Result(); err == nil {
			var stats domain.DashboardStats
			if err := json.Unmarshal([]byte(cached), &stats); err == nil {
				return &stats, nil
			}
		}
	}

	stats, err := s.ComputeDashboardStats(ctx)
	if err != nil {
		return nil, err
	}

	if s.redis != nil {
		if payload, err := json.Marshal(stats); err == nil {
			s.redis.Set(ctx, dashboardCacheKey, payload, s.cacheTTL)
		}
	}

	return stats, nil
}

// RefreshDashboardStats recomputes the dashboard view and rewrites the cache
// unconditionally. Used by the scheduler.
func (s *ReportService) RefreshDashboardStats(ctx context.Context) error {
	stats, err := s.ComputeDashboardStats(ctx)
	if err != nil {
		return err
	}

	if s.redis == nil {
		return nil
	}
	payload, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	if err := s.redis.Set(ctx, dashboardCacheKey, payload, s.cacheTTL).Err(); err != nil {
		return customError.WrapCacheError(err)
	}
	return nil
}

// ComputeDashboardStats folds over all loans and payments, bypassing the cache.
func (s *ReportService) ComputeDashboardStats(ctx context.Context) (*domain.DashboardStats, error) {
	loans, err := s.LoanRepo.List(ctx, domain.LoanFilter{})
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	payments, err := s.PaymentRepo.ListAll(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	stats := &domain.DashboardStats{
		TotalLoansGiven:      len(loans),
		TotalOutstanding:     decimal.Zero,
		TotalAmountRepaid:    decimal.Zero,
		TotalLoanAmountGiven: decimal.Zero,
	}

	for _, loan := range loans {
		switch loan.Status {
		case domain.LoanStatusActive:
			stats.TotalActiveLoans++
		case domain.LoanStatusSuspended:
			stats.TotalSuspendedLoans++
		case domain.LoanStatusBadDebt:
			stats.TotalBadDebtLoans++
		case domain.LoanStatusFullyPaid:
			stats.TotalFullyPaidLoans++
		}

		// Outstanding counts only collectible exposure.
		if loan.Status == domain.LoanStatusActive || loan.Status == domain.LoanStatusSuspended {
			stats.TotalOutstanding = stats.TotalOutstanding.Add(loan.OutstandingBalance)
		}
		stats.TotalLoanAmountGiven = stats.TotalLoanAmountGiven.Add(loan.LoanAmount)
	}

	for _, payment := range payments {
		stats.TotalAmountRepaid = stats.TotalAmountRepaid.Add(payment.Amount)
	}

	recentLoans, err := s.LoanRepo.ListRecent(ctx, recentLimit)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	for _, loan := range recentLoans {
		staff, err := s.StaffRepo.GetByID(ctx, loan.StaffID)
		if err == nil {
			loan.Staff = staff
		}
	}
	stats.RecentLoans = recentLoans

	recentPayments, err := s.PaymentRepo.ListRecent(ctx, recentLimit)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	stats.RecentPayments = recentPayments

	stats.MonthlyStats = monthlyBuckets(loans, payments, time.Now().Year())

	return stats, nil
}

// monthlyBuckets distributes loans (by creation) and payments (by payment
// date) into the twelve months of the given year.
func monthlyBuckets(loans []*domain.Loan, payments []*domain.Payment, year int) []*domain.MonthlyStat {
	buckets := make([]*domain.MonthlyStat, 12)
	for m := 0; m < 12; m++ {
		buckets[m] = &domain.MonthlyStat{
			Month:           m + 1,
			MonthName:       time.Month(m + 1).String(),
			TotalPayments:   decimal.Zero,
			TotalLoansGiven: decimal.Zero,
		}
	}

	for _, loan := range loans {
		if loan.CreatedAt.Year() != year {
			continue
		}
		b := buckets[int(loan.CreatedAt.Month())-1]
		b.TotalLoansGiven = b.TotalLoansGiven.Add(loan.LoanAmount)
		b.LoanCount++
	}

	for _, payment := range payments {
		if payment.PaymentDate.Year() != year {
			continue
		}
		b := buckets[int(payment.PaymentDate.Month())-1]
		b.TotalPayments = b.TotalPayments.Add(payment.Amount)
		b.PaymentCount++
	}

	return buckets
}

// MonthlyReport builds the per-staff, per-department roll-up for one calendar
// month. Month defaults handled by the caller; ranges validated here.
func (s *ReportService) MonthlyReport(ctx context.Context, month, year int) (*domain.MonthlyReport, error) {
	if month < 1 || month > 12 {
		return nil, customError.NewBusinessError(
			customError.ErrCodeInvalidPeriod, "Month must be between 1 and 12", nil)
	}
	if year < 2000 || year > 2100 {
		return nil, customError.NewBusinessError(
			customError.ErrCodeInvalidPeriod, "Year must be between 2000 and 2100", nil)
	}

	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.Local)
	to := from.AddDate(0, 1, 0).Add(-time.Second)

	staffMembers, err := s.StaffRepo.List(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	loans, err := s.LoanRepo.List(ctx, domain.LoanFilter{})
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	loansByStaff := make(map[string][]*domain.Loan)
	for _, loan := range loans {
		loansByStaff[loan.StaffID.String()] = append(loansByStaff[loan.StaffID.String()], loan)
	}

	details, err := s.PaymentRepo.ListDetailsByDateRange(ctx, from, to)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	paymentsByLoan := make(map[string][]*domain.PaymentDetail)
	for _, d := range details {
		paymentsByLoan[d.LoanID.String()] = append(paymentsByLoan[d.LoanID.String()], d)
	}

	staffReports := make([]*domain.StaffReport, 0, len(staffMembers))
	for _, member := range staffMembers {
		report := &domain.StaffReport{
			StaffID:               member.ID,
			StaffName:             member.Name,
			EmployeeID:            member.EmployeeID,
			Department:            member.Department,
			OutstandingBalance:    decimal.Zero,
			AmountRepaidThisMonth: decimal.Zero,
			LoanHistory:           []*domain.LoanHistory{},
		}

		for _, loan := range loansByStaff[member.ID.String()] {
			report.TotalLoans++
			if loan.Status == domain.LoanStatusActive || loan.Status == domain.LoanStatusSuspended {
				report.ActiveLoans++
				report.OutstandingBalance = report.OutstandingBalance.Add(loan.OutstandingBalance)
			}

			history := &domain.LoanHistory{
				LoanID:              loan.ID,
				LoanAmount:          loan.LoanAmount,
				MonthlyPayment:      loan.MonthlyPayment,
				OutstandingBalance:  loan.OutstandingBalance,
				Status:              loan.Status,
				StartDate:           loan.StartDate,
				EndDate:             loan.EndDate,
				AmountPaidThisMonth: decimal.Zero,
			}
			for _, d := range paymentsByLoan[loan.ID.String()] {
				history.PaymentsThisMonth++
				history.AmountPaidThisMonth = history.AmountPaidThisMonth.Add(d.Amount)
			}
			report.AmountRepaidThisMonth = report.AmountRepaidThisMonth.Add(history.AmountPaidThisMonth)
			report.LoanHistory = append(report.LoanHistory, history)
		}

		staffReports = append(staffReports, report)
	}

	totalOutstanding := decimal.Zero
	for _, report := range staffReports {
		totalOutstanding = totalOutstanding.Add(report.OutstandingBalance)
	}

	totalRepaid := decimal.Zero
	for _, d := range details {
		totalRepaid = totalRepaid.Add(d.Amount)
	}

	averagePerStaff := decimal.Zero
	if len(staffMembers) > 0 {
		averagePerStaff = totalOutstanding.Div(decimal.NewFromInt(int64(len(staffMembers)))).Round(2)
	}

	// Top borrowers: outstanding desc, ties keep the staff-name query order.
	borrowers := make([]*domain.StaffReport, 0, len(staffReports))
	for _, report := range staffReports {
		if report.OutstandingBalance.IsPositive() {
			borrowers = append(borrowers, report)
		}
	}
	sort.SliceStable(borrowers, func(i, j int) bool {
		return borrowers[i].OutstandingBalance.GreaterThan(borrowers[j].OutstandingBalance)
	})
	if len(borrowers) > topBorrowersLimit {
		borrowers = borrowers[:topBorrowersLimit]
	}

	// Department summaries keep first-seen order; map iteration is unordered.
	deptOrder := []string{}
	deptSummary := make(map[string]*domain.DepartmentSummary)
	for _, report := range staffReports {
		summary, ok := deptSummary[report.Department]
		if !ok {
			summary = &domain.DepartmentSummary{
				Department:           report.Department,
				TotalOutstanding:     decimal.Zero,
				TotalRepaidThisMonth: decimal.Zero,
			}
			deptSummary[report.Department] = summary
			deptOrder = append(deptOrder, report.Department)
		}
		summary.StaffCount++
		summary.TotalOutstanding = summary.TotalOutstanding.Add(report.OutstandingBalance)
		summary.TotalRepaidThisMonth = summary.TotalRepaidThisMonth.Add(report.AmountRepaidThisMonth)
		summary.ActiveLoansCount += report.ActiveLoans
	}
	departments := make([]*domain.DepartmentSummary, 0, len(deptOrder))
	for _, name := range deptOrder {
		departments = append(departments, deptSummary[name])
	}

	return &domain.MonthlyReport{
		Month:        month,
		Year:         year,
		MonthName:    time.Month(month).String(),
		ReportDate:   time.Now(),
		StaffReports: staffReports,
		Summary: &domain.ReportSummary{
			TotalStaff:                 len(staffMembers),
			TotalOutstanding:           totalOutstanding,
			TotalRepaidThisMonth:       totalRepaid,
			TotalPayments:              len(details),
			AverageOutstandingPerStaff: averagePerStaff,
		},
		TopBorrowers:      borrowers,
		DepartmentSummary: departments,
		PaymentDetails:    details,
	}, nil
}
