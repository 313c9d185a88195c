package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LoanStatus governs whether a loan accepts payments.
type LoanStatus string

const (
	LoanStatusActive    LoanStatus = "ACTIVE"
	LoanStatusSuspended LoanStatus = "SUSPENDED"
	LoanStatusFullyPaid LoanStatus = "FULLY_PAID"
	LoanStatusBadDebt   LoanStatus = "BAD_DEBT"
)

// Valid reports whether s is one of the four known statuses.
func (s LoanStatus) Valid() bool {
	switch s {
	case LoanStatusActive, LoanStatusSuspended, LoanStatusFullyPaid, LoanStatusBadDebt:
		return true
	}
	return false
}

// Loan is the ledger unit: a fixed-principal, interest-free obligation.
// Version is an optimistic lock counter bumped on every row update; payment
// commits are guarded by it so two writers can never apply against the same
// snapshot.
type Loan struct {
	ID                 uuid.UUID       `json:"id" db:"id"`
	StaffID            uuid.UUID       `json:"staff_id" db:"staff_id"`
	LoanAmount         decimal.Decimal `json:"loan_amount" db:"loan_amount"`
	DurationMonths     int             `json:"duration_months" db:"duration_months"`
	MonthlyPayment     decimal.Decimal `json:"monthly_payment" db:"monthly_payment"`
	OutstandingBalance decimal.Decimal `json:"outstanding_balance" db:"outstanding_balance"`
	Status             LoanStatus      `json:"status" db:"status"`
	StartDate          time.Time       `json:"start_date" db:"start_date"`
	EndDate            *time.Time      `json:"end_date,omitempty" db:"end_date"`
	Notes              string          `json:"notes,omitempty" db:"notes"`
	Version            int64           `json:"-" db:"version"`
	CreatedAt          time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at" db:"updated_at"`

	Staff    *Staff     `json:"staff,omitempty" db:"-"`
	Payments []*Payment `json:"payments,omitempty" db:"-"`
}

// DTOs for requests and responses

type CreateLoanRequest struct {
	StaffID        uuid.UUID       `json:"staff_id" validate:"required"`
	LoanAmount     decimal.Decimal `json:"loan_amount"`
	DurationMonths int             `json:"duration_months" validate:"required,gt=0"`
	Notes          string          `json:"notes"`
}

type UpdateLoanRequest struct {
	Status *LoanStatus `json:"status,omitempty"`
	Notes  *string     `json:"notes,omitempty"`
}

// LoanFilter narrows loan listings; zero values mean no filtering.
type LoanFilter struct {
	Status  LoanStatus
	StaffID uuid.UUID
}
