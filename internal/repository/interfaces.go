package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hrops/staff-loan-ledger/internal/domain"
)

// StaffRepository defines the interface for staff data operations
type StaffRepository interface {
	// Create creates a new staff member
	Create(ctx context.Context, staff *domain.Staff) error

	// GetByID retrieves a staff member by id
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Staff, error)

	// ExistsByEmailOrEmployeeID reports whether a staff member already uses
	// the given email or employee id
	ExistsByEmailOrEmployeeID(ctx context.Context, email, employeeID string) (bool, error)

	// List retrieves all staff members ordered by name
	List(ctx context.Context) ([]*domain.Staff, error)
}

// LoanRepository defines the interface for loan data operations
type LoanRepository interface {
	// Create creates a new loan
	Create(ctx context.Context, loan *domain.Loan) error

	// GetByID retrieves a loan by id
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error)

	// List retrieves loans matching the filter, newest first
	List(ctx context.Context, filter domain.LoanFilter) ([]*domain.Loan, error)

	// ListRecent retrieves the most recently created loans
	ListRecent(ctx context.Context, limit int) ([]*domain.Loan, error)

	// Update persists status/notes changes to a loan. The write is guarded by
	// the loan's version; ErrNoRows-style misses surface as a conflict.
	Update(ctx context.Context, loan *domain.Loan) error

	// Delete removes a loan row
	Delete(ctx context.Context, id uuid.UUID) error

	// ApplyPayment atomically inserts the payment and updates the loan's
	// balance/status/endDate, guarded by expectedVersion. Returns
	// pkg/errors.ErrVersionConflict (wrapped) when the loan row changed
	// underneath the caller; nothing is written in that case.
	ApplyPayment(ctx context.Context, loan *domain.Loan, payment *domain.Payment, expectedVersion int64) error
}

// PaymentRepository defines the interface for payment data operations
type PaymentRepository interface {
	// ListByLoanID retrieves all payments for a loan, newest first
	ListByLoanID(ctx context.Context, loanID uuid.UUID) ([]*domain.Payment, error)

	// CountByLoanID returns the number of committed payments for a loan
	CountByLoanID(ctx context.Context, loanID uuid.UUID) (int, error)

	// ListRecent retrieves the most recent payments across all loans
	ListRecent(ctx context.Context, limit int) ([]*domain.Payment, error)

	// ListAll retrieves every payment, newest first
	ListAll(ctx context.Context) ([]*domain.Payment, error)

	// ListDetailsByDateRange retrieves payments within [from, to] joined with
	// the owning loan's staff identity, newest first
	ListDetailsByDateRange(ctx context.Context, from, to time.Time) ([]*domain.PaymentDetail, error)
}
