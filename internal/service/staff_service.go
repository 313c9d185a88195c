package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/hrops/staff-loan-ledger/internal/domain"
	"github.com/hrops/staff-loan-ledger/internal/repository"
	customError "github.com/hrops/staff-loan-ledger/pkg/errors"
)

// StaffService manages the staff registry.
type StaffService struct {
	StaffRepo   repository.StaffRepository
	LoanRepo    repository.LoanRepository
	PaymentRepo repository.PaymentRepository
}

func NewStaffService(
	staffRepo repository.StaffRepository,
	loanRepo repository.LoanRepository,
	paymentRepo repository.PaymentRepository,
) *StaffService {
	return &StaffService{
		StaffRepo:   staffRepo,
		LoanRepo:    loanRepo,
		PaymentRepo: paymentRepo,
	}
}

// CreateStaff registers a new staff member. Email and employee id must be
// unique across the registry.
func (s *StaffService) CreateStaff(ctx context.Context, request *domain.CreateStaffRequest) (*domain.Staff, error) {
	exists, err := s.StaffRepo.ExistsByEmailOrEmployeeID(ctx, request.Email, request.EmployeeID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	if exists {
		return nil, customError.WrapDuplicateStaff()
	}

	now := time.Now()
	staff := &domain.Staff{
		ID:         uuid.New(),
		Name:       request.Name,
		Email:      request.Email,
		Department: request.Department,
		EmployeeID: request.EmployeeID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.StaffRepo.Create(ctx, staff); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return staff, nil
}

// ListStaff returns all staff members ordered by name. When includeLoans is
// set, each member carries their loans with payment history attached.
func (s *StaffService) ListStaff(ctx context.Context, includeLoans bool) ([]*domain.Staff, error) {
	staff, err := s.StaffRepo.List(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	if !includeLoans {
		return staff, nil
	}

	for _, member := range staff {
		loans, err := s.LoanRepo.List(ctx, domain.LoanFilter{StaffID: member.ID})
		if err != nil {
			return nil, customError.WrapDatabaseError(err)
		}
		for _, loan := range loans {
			payments, err := s.PaymentRepo.ListByLoanID(ctx, loan.ID)
			if err != nil {
				return nil, customError.WrapDatabaseError(err)
			}
			loan.Payments = payments
		}
		member.Loans = loans
	}

	return staff, nil
}

// GetStaff returns one staff member by id.
func (s *StaffService) GetStaff(ctx context.Context, id uuid.UUID) (*domain.Staff, error) {
	staff, err := s.StaffRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapStaffNotFound(id.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}
	return staff, nil
}
