package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DashboardStats is the aggregate view over all committed ledger state.
// It is a best-effort snapshot, not transactionally consistent with writes.
type DashboardStats struct {
	TotalLoansGiven      int             `json:"total_loans_given"`
	TotalActiveLoans     int             `json:"total_active_loans"`
	TotalSuspendedLoans  int             `json:"total_suspended_loans"`
	TotalBadDebtLoans    int             `json:"total_bad_debt_loans"`
	TotalFullyPaidLoans  int             `json:"total_fully_paid_loans"`
	TotalOutstanding     decimal.Decimal `json:"total_outstanding_balance"`
	TotalAmountRepaid    decimal.Decimal `json:"total_amount_repaid"`
	TotalLoanAmountGiven decimal.Decimal `json:"total_loan_amount_given"`
	RecentLoans          []*Loan         `json:"recent_loans"`
	RecentPayments       []*Payment      `json:"recent_payments"`
	MonthlyStats         []*MonthlyStat  `json:"monthly_stats"`
}

// MonthlyStat is one calendar-month bucket of the current year.
type MonthlyStat struct {
	Month           int             `json:"month"`
	MonthName       string          `json:"month_name"`
	TotalPayments   decimal.Decimal `json:"total_payments"`
	TotalLoansGiven decimal.Decimal `json:"total_loans_given"`
	LoanCount       int             `json:"loan_count"`
	PaymentCount    int             `json:"payment_count"`
}

// MonthlyReport is the per-period roll-up for a single calendar month.
type MonthlyReport struct {
	Month             int                  `json:"month"`
	Year              int                  `json:"year"`
	MonthName         string               `json:"month_name"`
	ReportDate        time.Time            `json:"report_date"`
	StaffReports      []*StaffReport       `json:"staff_reports"`
	Summary           *ReportSummary       `json:"summary"`
	TopBorrowers      []*StaffReport       `json:"top_borrowers"`
	DepartmentSummary []*DepartmentSummary `json:"department_summary"`
	PaymentDetails    []*PaymentDetail     `json:"payment_details"`
}

type StaffReport struct {
	StaffID               uuid.UUID       `json:"staff_id"`
	StaffName             string          `json:"staff_name"`
	EmployeeID            string          `json:"employee_id"`
	Department            string          `json:"department"`
	OutstandingBalance    decimal.Decimal `json:"outstanding_balance"`
	AmountRepaidThisMonth decimal.Decimal `json:"amount_repaid_this_month"`
	TotalLoans            int             `json:"total_loans"`
	ActiveLoans           int             `json:"active_loans"`
	LoanHistory           []*LoanHistory  `json:"loan_history"`
}

type LoanHistory struct {
	LoanID              uuid.UUID       `json:"loan_id"`
	LoanAmount          decimal.Decimal `json:"loan_amount"`
	MonthlyPayment      decimal.Decimal `json:"monthly_payment"`
	OutstandingBalance  decimal.Decimal `json:"outstanding_balance"`
	Status              LoanStatus      `json:"status"`
	StartDate           time.Time       `json:"start_date"`
	EndDate             *time.Time      `json:"end_date,omitempty"`
	PaymentsThisMonth   int             `json:"payments_this_month"`
	AmountPaidThisMonth decimal.Decimal `json:"amount_paid_this_month"`
}

type ReportSummary struct {
	TotalStaff                 int             `json:"total_staff"`
	TotalOutstanding           decimal.Decimal `json:"total_outstanding"`
	TotalRepaidThisMonth       decimal.Decimal `json:"total_repaid_this_month"`
	TotalPayments              int             `json:"total_payments"`
	AverageOutstandingPerStaff decimal.Decimal `json:"average_outstanding_per_staff"`
}

type DepartmentSummary struct {
	Department           string          `json:"department"`
	StaffCount           int             `json:"staff_count"`
	TotalOutstanding     decimal.Decimal `json:"total_outstanding"`
	TotalRepaidThisMonth decimal.Decimal `json:"total_repaid_this_month"`
	ActiveLoansCount     int             `json:"active_loans_count"`
}

// PaymentDetail is a payment joined with its loan's staff identity, used in
// the monthly report detail list.
type PaymentDetail struct {
	ID               uuid.UUID       `json:"id" db:"id"`
	LoanID           uuid.UUID       `json:"loan_id" db:"loan_id"`
	Amount           decimal.Decimal `json:"amount" db:"amount"`
	PaymentDate      time.Time       `json:"payment_date" db:"payment_date"`
	RemainingBalance decimal.Decimal `json:"remaining_balance" db:"remaining_balance"`
	Notes            string          `json:"notes,omitempty" db:"notes"`
	StaffName        string          `json:"staff_name" db:"staff_name"`
	EmployeeID       string          `json:"employee_id" db:"employee_id"`
	Department       string          `json:"department" db:"department"`
}
