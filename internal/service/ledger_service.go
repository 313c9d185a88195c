package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hrops/staff-loan-ledger/internal/domain"
	"github.com/hrops/staff-loan-ledger/internal/repository"
	customError "github.com/hrops/staff-loan-ledger/pkg/errors"
	"github.com/hrops/staff-loan-ledger/pkg/loancalc"
)

// How often a payment commit is retried after losing a version race before
// the conflict is surfaced to the caller.
const maxPaymentRetries = 3

// LedgerService owns the loan ledger state machine: loan issuance, payment
// application, administrative status changes and deletion.
type LedgerService struct {
	StaffRepo   repository.StaffRepository
	LoanRepo    repository.LoanRepository
	PaymentRepo repository.PaymentRepository
}

func NewLedgerService(
	staffRepo repository.StaffRepository,
	loanRepo repository.LoanRepository,
	paymentRepo repository.PaymentRepository,
) *LedgerService {
	return &LedgerService{
		StaffRepo:   staffRepo,
		LoanRepo:    loanRepo,
		PaymentRepo: paymentRepo,
	}
}

// CreateLoan issues a new loan. The monthly payment is fixed at creation as
// principal / months and the outstanding balance starts at the full principal.
func (s *LedgerService) CreateLoan(ctx context.Context, request *domain.CreateLoanRequest) (*domain.Loan, error) {
	if !request.LoanAmount.IsPositive() || request.DurationMonths <= 0 {
		return nil, customError.WrapInvalidLoanTerms()
	}

	staff, err := s.StaffRepo.GetByID(ctx, request.StaffID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapStaffNotFound(request.StaffID.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}

	monthlyPayment, err := loancalc.MonthlyPayment(request.LoanAmount, request.DurationMonths)
	if err != nil {
		return nil, customError.WrapInvalidLoanTerms()
	}

	now := time.Now()
	loan := &domain.Loan{
		ID:                 uuid.New(),
		StaffID:            staff.ID,
		LoanAmount:         request.LoanAmount,
		DurationMonths:     request.DurationMonths,
		MonthlyPayment:     monthlyPayment,
		OutstandingBalance: request.LoanAmount,
		Status:             domain.LoanStatusActive,
		StartDate:          now,
		Notes:              request.Notes,
		Version:            1,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.LoanRepo.Create(ctx, loan); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	loan.Staff = staff
	loan.Payments = []*domain.Payment{}
	return loan, nil
}

// GetLoan returns a loan with its staff member and payment history attached.
func (s *LedgerService) GetLoan(ctx context.Context, id uuid.UUID) (*domain.Loan, error) {
	loan, err := s.LoanRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapLoanNotFound(id.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}

	if err := s.attach(ctx, loan); err != nil {
		return nil, err
	}

	return loan, nil
}

// ListLoans returns loans matching the filter, newest first, each with staff
// and payment history attached.
func (s *LedgerService) ListLoans(ctx context.Context, filter domain.LoanFilter) ([]*domain.Loan, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, customError.WrapInvalidStatus(string(filter.Status))
	}

	loans, err := s.LoanRepo.List(ctx, filter)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	for _, loan := range loans {
		if err := s.attach(ctx, loan); err != nil {
			return nil, err
		}
	}

	return loans, nil
}

// UpdateLoan applies an administrative status change and/or notes edit. It
// never touches the outstanding balance and never sets endDate; only the
// balance-reaches-zero path in RecordPayment closes a loan.
func (s *LedgerService) UpdateLoan(ctx context.Context, id uuid.UUID, request *domain.UpdateLoanRequest) (*domain.Loan, error) {
	if request.Status != nil && !request.Status.Valid() {
		return nil, customError.WrapInvalidStatus(string(*request.Status))
	}

	loan, err := s.LoanRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapLoanNotFound(id.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}

	if request.Status != nil {
		loan.Status = *request.Status
	}
	if request.Notes != nil {
		loan.Notes = *request.Notes
	}

	if err := s.LoanRepo.Update(ctx, loan); err != nil {
		if errors.Is(err, customError.ErrVersionConflict) {
			return nil, customError.WrapVersionConflict(id.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}

	if err := s.attach(ctx, loan); err != nil {
		return nil, err
	}

	return loan, nil
}

// DeleteLoan removes a loan. Funded loans are append-only history: any loan
// with at least one committed payment cannot be deleted.
func (s *LedgerService) DeleteLoan(ctx context.Context, id uuid.UUID) error {
	if _, err := s.LoanRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return customError.WrapLoanNotFound(id.String())
		}
		return customError.WrapDatabaseError(err)
	}

	count, err := s.PaymentRepo.CountByLoanID(ctx, id)
	if err != nil {
		return customError.WrapDatabaseError(err)
	}
	if count > 0 {
		return customError.WrapLoanHasPayments(id.String())
	}

	if err := s.LoanRepo.Delete(ctx, id); err != nil {
		return customError.WrapDatabaseError(err)
	}

	return nil
}

// RecordPayment applies a payment to a loan. Transitions:
//
//	ACTIVE, amount <= 0                 -> rejected, INVALID_PAYMENT
//	ACTIVE, amount > balance            -> rejected, PAYMENT_EXCEEDS_BALANCE
//	ACTIVE, 0 < amount < balance        -> balance -= amount, stays ACTIVE
//	ACTIVE, amount == balance           -> balance = 0, FULLY_PAID, endDate set
//	SUSPENDED / FULLY_PAID / BAD_DEBT   -> rejected, LOAN_NOT_ACTIVE
//
// The commit is atomic: payment row and loan update land together, guarded by
// the loan's version. Losing the version race triggers a re-read and
// re-validation against the fresh balance, so concurrent payments can never
// both apply against the same snapshot.
func (s *LedgerService) RecordPayment(ctx context.Context, loanID uuid.UUID, request *domain.RecordPaymentRequest) (*domain.RecordPaymentResponse, error) {
	if !request.Amount.IsPositive() {
		return nil, customError.WrapInvalidPayment()
	}

	var conflictErr error
	for attempt := 0; attempt < maxPaymentRetries; attempt++ {
		loan, err := s.LoanRepo.GetByID(ctx, loanID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, customError.WrapLoanNotFound(loanID.String())
			}
			return nil, customError.WrapDatabaseError(err)
		}

		if loan.Status != domain.LoanStatusActive {
			return nil, customError.WrapLoanNotActive(loanID.String())
		}

		if request.Amount.GreaterThan(loan.OutstandingBalance) {
			return nil, customError.WrapExceedsBalance(
				request.Amount.String(), loan.OutstandingBalance.String())
		}

		now := time.Now()
		newBalance := loancalc.ApplyPayment(loan.OutstandingBalance, request.Amount)

		expectedVersion := loan.Version
		loan.OutstandingBalance = newBalance
		loan.UpdatedAt = now
		if newBalance.Equal(decimal.Zero) {
			loan.Status = domain.LoanStatusFullyPaid
			endDate := now
			loan.EndDate = &endDate
		}

		paymentDate := now
		if request.PaymentDate != nil {
			paymentDate = *request.PaymentDate
		}

		payment := &domain.Payment{
			ID:               uuid.New(),
			LoanID:           loan.ID,
			Amount:           request.Amount,
			PaymentDate:      paymentDate,
			RemainingBalance: newBalance,
			Notes:            request.Notes,
			CreatedAt:        now,
		}

		err = s.LoanRepo.ApplyPayment(ctx, loan, payment, expectedVersion)
		if err == nil {
			if err := s.attach(ctx, loan); err != nil {
				return nil, err
			}
			return &domain.RecordPaymentResponse{Payment: payment, Loan: loan}, nil
		}
		if !errors.Is(err, customError.ErrVersionConflict) {
			return nil, customError.WrapDatabaseError(err)
		}

		// Lost the race; loop re-reads the loan and re-validates the
		// amount against whatever balance the winner left behind.
		conflictErr = customError.WrapVersionConflict(loanID.String())
	}

	return nil, conflictErr
}

// ListPayments returns a loan's payments, newest first.
func (s *LedgerService) ListPayments(ctx context.Context, loanID uuid.UUID) ([]*domain.Payment, error) {
	if _, err := s.LoanRepo.GetByID(ctx, loanID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapLoanNotFound(loanID.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}

	payments, err := s.PaymentRepo.ListByLoanID(ctx, loanID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return payments, nil
}

func (s *LedgerService) attach(ctx context.Context, loan *domain.Loan) error {
	staff, err := s.StaffRepo.GetByID(ctx, loan.StaffID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return customError.WrapDatabaseError(err)
	}
	loan.Staff = staff

	payments, err := s.PaymentRepo.ListByLoanID(ctx, loan.ID)
	if err != nil {
		return customError.WrapDatabaseError(err)
	}
	loan.Payments = payments

	return nil
}
