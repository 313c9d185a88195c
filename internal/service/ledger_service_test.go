package service_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hrops/staff-loan-ledger/internal/domain"
	"github.com/hrops/staff-loan-ledger/internal/service"
	customError "github.com/hrops/staff-loan-ledger/pkg/errors"
	"github.com/hrops/staff-loan-ledger/tests/mocks"
)

func newLedgerService() (*service.LedgerService, *mocks.MockStaffRepository, *mocks.MockLoanRepository, *mocks.MockPaymentRepository) {
	staffRepo := &mocks.MockStaffRepository{}
	loanRepo := &mocks.MockLoanRepository{}
	paymentRepo := &mocks.MockPaymentRepository{}
	return service.NewLedgerService(staffRepo, loanRepo, paymentRepo), staffRepo, loanRepo, paymentRepo
}

func activeLoan(id uuid.UUID, balance int64) *domain.Loan {
	return &domain.Loan{
		ID:                 id,
		StaffID:            uuid.New(),
		LoanAmount:         decimal.NewFromInt(1200),
		DurationMonths:     12,
		MonthlyPayment:     decimal.NewFromInt(100),
		OutstandingBalance: decimal.NewFromInt(balance),
		Status:             domain.LoanStatusActive,
		StartDate:          time.Now().AddDate(0, -1, 0),
		Version:            1,
	}
}

func TestCreateLoan(t *testing.T) {
	staffID := uuid.New()

	tests := []struct {
		name           string
		request        *domain.CreateLoanRequest
		setupMocks     func(*mocks.MockStaffRepository, *mocks.MockLoanRepository)
		expectedError  string
		validateResult func(*testing.T, *domain.Loan)
	}{
		{
			name: "Success - computes monthly payment and starts active",
			request: &domain.CreateLoanRequest{
				StaffID:        staffID,
				LoanAmount:     decimal.NewFromInt(1200),
				DurationMonths: 12,
			},
			setupMocks: func(staffRepo *mocks.MockStaffRepository, loanRepo *mocks.MockLoanRepository) {
				staffRepo.On("GetByID", mock.Anything, staffID).Return(&domain.Staff{ID: staffID}, nil)
				loanRepo.On("Create", mock.Anything, mock.MatchedBy(func(loan *domain.Loan) bool {
					return loan.StaffID == staffID
				})).Return(nil)
			},
			validateResult: func(t *testing.T, loan *domain.Loan) {
				assert.True(t, loan.MonthlyPayment.Equal(decimal.NewFromInt(100)))
				assert.True(t, loan.OutstandingBalance.Equal(decimal.NewFromInt(1200)))
				assert.Equal(t, domain.LoanStatusActive, loan.Status)
				assert.Nil(t, loan.EndDate)
				assert.Equal(t, int64(1), loan.Version)
			},
		},
		{
			name: "Failure - non-positive amount",
			request: &domain.CreateLoanRequest{
				StaffID:        staffID,
				LoanAmount:     decimal.Zero,
				DurationMonths: 12,
			},
			setupMocks:    func(*mocks.MockStaffRepository, *mocks.MockLoanRepository) {},
			expectedError: "positive",
		},
		{
			name: "Failure - non-positive duration",
			request: &domain.CreateLoanRequest{
				StaffID:        staffID,
				LoanAmount:     decimal.NewFromInt(1200),
				DurationMonths: 0,
			},
			setupMocks:    func(*mocks.MockStaffRepository, *mocks.MockLoanRepository) {},
			expectedError: "positive",
		},
		{
			name: "Failure - staff not found",
			request: &domain.CreateLoanRequest{
				StaffID:        staffID,
				LoanAmount:     decimal.NewFromInt(1200),
				DurationMonths: 12,
			},
			setupMocks: func(staffRepo *mocks.MockStaffRepository, loanRepo *mocks.MockLoanRepository) {
				staffRepo.On("GetByID", mock.Anything, staffID).Return(nil, sql.ErrNoRows)
			},
			expectedError: "not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, staffRepo, loanRepo, _ := newLedgerService()
			tt.setupMocks(staffRepo, loanRepo)

			loan, err := svc.CreateLoan(context.Background(), tt.request)

			if tt.expectedError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError)
				assert.Nil(t, loan)
			} else {
				require.NoError(t, err)
				tt.validateResult(t, loan)
			}
			staffRepo.AssertExpectations(t)
			loanRepo.AssertExpectations(t)
		})
	}
}

func TestRecordPayment(t *testing.T) {
	loanID := uuid.New()

	tests := []struct {
		name           string
		amount         decimal.Decimal
		setupMocks     func(*mocks.MockLoanRepository, *mocks.MockPaymentRepository, *mocks.MockStaffRepository)
		expectedErr    error
		validateResult func(*testing.T, *domain.RecordPaymentResponse)
	}{
		{
			name:   "Success - partial payment keeps loan active",
			amount: decimal.NewFromInt(100),
			setupMocks: func(loanRepo *mocks.MockLoanRepository, paymentRepo *mocks.MockPaymentRepository, staffRepo *mocks.MockStaffRepository) {
				loan := activeLoan(loanID, 1200)
				loanRepo.On("GetByID", mock.Anything, loanID).Return(loan, nil)
				loanRepo.On("ApplyPayment", mock.Anything, loan, mock.MatchedBy(func(p *domain.Payment) bool {
					return p.Amount.Equal(decimal.NewFromInt(100)) &&
						p.RemainingBalance.Equal(decimal.NewFromInt(1100))
				}), int64(1)).Return(nil)
				staffRepo.On("GetByID", mock.Anything, loan.StaffID).Return(&domain.Staff{ID: loan.StaffID}, nil)
				paymentRepo.On("ListByLoanID", mock.Anything, loanID).Return([]*domain.Payment{}, nil)
			},
			validateResult: func(t *testing.T, result *domain.RecordPaymentResponse) {
				assert.True(t, result.Loan.OutstandingBalance.Equal(decimal.NewFromInt(1100)))
				assert.Equal(t, domain.LoanStatusActive, result.Loan.Status)
				assert.Nil(t, result.Loan.EndDate)
				assert.True(t, result.Payment.RemainingBalance.Equal(decimal.NewFromInt(1100)))
			},
		},
		{
			name:   "Success - exact payoff transitions to fully paid",
			amount: decimal.NewFromInt(1200),
			setupMocks: func(loanRepo *mocks.MockLoanRepository, paymentRepo *mocks.MockPaymentRepository, staffRepo *mocks.MockStaffRepository) {
				loan := activeLoan(loanID, 1200)
				loanRepo.On("GetByID", mock.Anything, loanID).Return(loan, nil)
				loanRepo.On("ApplyPayment", mock.Anything, loan, mock.MatchedBy(func(p *domain.Payment) bool {
					return p.RemainingBalance.Equal(decimal.Zero)
				}), int64(1)).Return(nil)
				staffRepo.On("GetByID", mock.Anything, loan.StaffID).Return(&domain.Staff{ID: loan.StaffID}, nil)
				paymentRepo.On("ListByLoanID", mock.Anything, loanID).Return([]*domain.Payment{}, nil)
			},
			validateResult: func(t *testing.T, result *domain.RecordPaymentResponse) {
				assert.True(t, result.Loan.OutstandingBalance.Equal(decimal.Zero))
				assert.Equal(t, domain.LoanStatusFullyPaid, result.Loan.Status)
				require.NotNil(t, result.Loan.EndDate)
			},
		},
		{
			name:        "Failure - zero amount rejected before any read",
			amount:      decimal.Zero,
			setupMocks:  func(*mocks.MockLoanRepository, *mocks.MockPaymentRepository, *mocks.MockStaffRepository) {},
			expectedErr: customError.ErrInvalidPayment,
		},
		{
			name:        "Failure - negative amount rejected before any read",
			amount:      decimal.NewFromInt(-50),
			setupMocks:  func(*mocks.MockLoanRepository, *mocks.MockPaymentRepository, *mocks.MockStaffRepository) {},
			expectedErr: customError.ErrInvalidPayment,
		},
		{
			name:   "Failure - amount exceeds outstanding balance",
			amount: decimal.NewFromInt(1300),
			setupMocks: func(loanRepo *mocks.MockLoanRepository, paymentRepo *mocks.MockPaymentRepository, staffRepo *mocks.MockStaffRepository) {
				loanRepo.On("GetByID", mock.Anything, loanID).Return(activeLoan(loanID, 1200), nil)
			},
			expectedErr: customError.ErrExceedsBalance,
		},
		{
			name:   "Failure - suspended loan rejects payments",
			amount: decimal.NewFromInt(100),
			setupMocks: func(loanRepo *mocks.MockLoanRepository, paymentRepo *mocks.MockPaymentRepository, staffRepo *mocks.MockStaffRepository) {
				loan := activeLoan(loanID, 1200)
				loan.Status = domain.LoanStatusSuspended
				loanRepo.On("GetByID", mock.Anything, loanID).Return(loan, nil)
			},
			expectedErr: customError.ErrLoanNotActive,
		},
		{
			name:   "Failure - fully paid loan rejects payments",
			amount: decimal.NewFromInt(100),
			setupMocks: func(loanRepo *mocks.MockLoanRepository, paymentRepo *mocks.MockPaymentRepository, staffRepo *mocks.MockStaffRepository) {
				loan := activeLoan(loanID, 0)
				loan.Status = domain.LoanStatusFullyPaid
				loanRepo.On("GetByID", mock.Anything, loanID).Return(loan, nil)
			},
			expectedErr: customError.ErrLoanNotActive,
		},
		{
			name:   "Failure - bad debt loan rejects payments",
			amount: decimal.NewFromInt(100),
			setupMocks: func(loanRepo *mocks.MockLoanRepository, paymentRepo *mocks.MockPaymentRepository, staffRepo *mocks.MockStaffRepository) {
				loan := activeLoan(loanID, 1200)
				loan.Status = domain.LoanStatusBadDebt
				loanRepo.On("GetByID", mock.Anything, loanID).Return(loan, nil)
			},
			expectedErr: customError.ErrLoanNotActive,
		},
		{
			name:   "Failure - loan not found",
			amount: decimal.NewFromInt(100),
			setupMocks: func(loanRepo *mocks.MockLoanRepository, paymentRepo *mocks.MockPaymentRepository, staffRepo *mocks.MockStaffRepository) {
				loanRepo.On("GetByID", mock.Anything, loanID).Return(nil, sql.ErrNoRows)
			},
			expectedErr: customError.ErrLoanNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, staffRepo, loanRepo, paymentRepo := newLedgerService()
			tt.setupMocks(loanRepo, paymentRepo, staffRepo)

			result, err := svc.RecordPayment(context.Background(), loanID, &domain.RecordPaymentRequest{
				Amount: tt.amount,
			})

			if tt.expectedErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Nil(t, result)
			} else {
				require.NoError(t, err)
				tt.validateResult(t, result)
			}
			loanRepo.AssertExpectations(t)
			paymentRepo.AssertExpectations(t)
		})
	}
}

// Two payments of 700 race against a balance of 1000: the loser of the version
// race must re-read the winner's balance (300) and be rejected as exceeding
// it, never applied on the stale snapshot.
func TestRecordPayment_ConcurrentLoserRejectedAfterRetry(t *testing.T) {
	svc, _, loanRepo, _ := newLedgerService()
	loanID := uuid.New()

	stale := activeLoan(loanID, 1000)
	fresh := activeLoan(loanID, 300)
	fresh.Version = 2

	loanRepo.On("GetByID", mock.Anything, loanID).Return(stale, nil).Once()
	loanRepo.On("ApplyPayment", mock.Anything, stale, mock.Anything, int64(1)).
		Return(customError.ErrVersionConflict).Once()
	loanRepo.On("GetByID", mock.Anything, loanID).Return(fresh, nil).Once()

	result, err := svc.RecordPayment(context.Background(), loanID, &domain.RecordPaymentRequest{
		Amount: decimal.NewFromInt(700),
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, customError.ErrExceedsBalance)
	assert.Nil(t, result)
	loanRepo.AssertExpectations(t)
}

func TestRecordPayment_PersistentConflictSurfaces(t *testing.T) {
	svc, _, loanRepo, _ := newLedgerService()
	loanID := uuid.New()

	loanRepo.On("GetByID", mock.Anything, loanID).
		Return(activeLoan(loanID, 1000), nil).Times(3)
	loanRepo.On("ApplyPayment", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(customError.ErrVersionConflict).Times(3)

	result, err := svc.RecordPayment(context.Background(), loanID, &domain.RecordPaymentRequest{
		Amount: decimal.NewFromInt(100),
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, customError.ErrVersionConflict)
	assert.Nil(t, result)
	loanRepo.AssertExpectations(t)
}

func TestUpdateLoan(t *testing.T) {
	loanID := uuid.New()
	suspended := domain.LoanStatusSuspended
	badDebt := domain.LoanStatusBadDebt
	bogus := domain.LoanStatus("WRITTEN_OFF")
	notes := "payroll deduction agreed"

	t.Run("administrative status change leaves balance and endDate alone", func(t *testing.T) {
		svc, staffRepo, loanRepo, paymentRepo := newLedgerService()
		loan := activeLoan(loanID, 800)

		loanRepo.On("GetByID", mock.Anything, loanID).Return(loan, nil)
		loanRepo.On("Update", mock.Anything, mock.MatchedBy(func(l *domain.Loan) bool {
			return l.Status == domain.LoanStatusSuspended && l.EndDate == nil &&
				l.OutstandingBalance.Equal(decimal.NewFromInt(800))
		})).Return(nil)
		staffRepo.On("GetByID", mock.Anything, loan.StaffID).Return(&domain.Staff{ID: loan.StaffID}, nil)
		paymentRepo.On("ListByLoanID", mock.Anything, loanID).Return([]*domain.Payment{}, nil)

		updated, err := svc.UpdateLoan(context.Background(), loanID, &domain.UpdateLoanRequest{Status: &suspended})

		require.NoError(t, err)
		assert.Equal(t, domain.LoanStatusSuspended, updated.Status)
		assert.Nil(t, updated.EndDate)
	})

	t.Run("bad debt write-off does not set endDate", func(t *testing.T) {
		svc, staffRepo, loanRepo, paymentRepo := newLedgerService()
		loan := activeLoan(loanID, 800)

		loanRepo.On("GetByID", mock.Anything, loanID).Return(loan, nil)
		loanRepo.On("Update", mock.Anything, mock.MatchedBy(func(l *domain.Loan) bool {
			return l.Status == domain.LoanStatusBadDebt && l.EndDate == nil
		})).Return(nil)
		staffRepo.On("GetByID", mock.Anything, loan.StaffID).Return(&domain.Staff{ID: loan.StaffID}, nil)
		paymentRepo.On("ListByLoanID", mock.Anything, loanID).Return([]*domain.Payment{}, nil)

		updated, err := svc.UpdateLoan(context.Background(), loanID, &domain.UpdateLoanRequest{
			Status: &badDebt,
			Notes:  &notes,
		})

		require.NoError(t, err)
		assert.Equal(t, domain.LoanStatusBadDebt, updated.Status)
		assert.Equal(t, notes, updated.Notes)
		assert.Nil(t, updated.EndDate)
	})

	t.Run("unknown status rejected", func(t *testing.T) {
		svc, _, loanRepo, _ := newLedgerService()

		updated, err := svc.UpdateLoan(context.Background(), loanID, &domain.UpdateLoanRequest{Status: &bogus})

		require.Error(t, err)
		assert.ErrorIs(t, err, customError.ErrInvalidStatus)
		assert.Nil(t, updated)
		loanRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("missing loan", func(t *testing.T) {
		svc, _, loanRepo, _ := newLedgerService()
		loanRepo.On("GetByID", mock.Anything, loanID).Return(nil, sql.ErrNoRows)

		updated, err := svc.UpdateLoan(context.Background(), loanID, &domain.UpdateLoanRequest{Status: &suspended})

		require.Error(t, err)
		assert.ErrorIs(t, err, customError.ErrLoanNotFound)
		assert.Nil(t, updated)
	})
}

func TestDeleteLoan(t *testing.T) {
	loanID := uuid.New()

	t.Run("succeeds with zero payments", func(t *testing.T) {
		svc, _, loanRepo, paymentRepo := newLedgerService()
		loanRepo.On("GetByID", mock.Anything, loanID).Return(activeLoan(loanID, 1200), nil)
		paymentRepo.On("CountByLoanID", mock.Anything, loanID).Return(0, nil)
		loanRepo.On("Delete", mock.Anything, loanID).Return(nil)

		err := svc.DeleteLoan(context.Background(), loanID)

		require.NoError(t, err)
		loanRepo.AssertExpectations(t)
	})

	t.Run("rejected when payments exist", func(t *testing.T) {
		svc, _, loanRepo, paymentRepo := newLedgerService()
		loanRepo.On("GetByID", mock.Anything, loanID).Return(activeLoan(loanID, 1100), nil)
		paymentRepo.On("CountByLoanID", mock.Anything, loanID).Return(1, nil)

		err := svc.DeleteLoan(context.Background(), loanID)

		require.Error(t, err)
		assert.ErrorIs(t, err, customError.ErrLoanHasPayments)
		loanRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("missing loan", func(t *testing.T) {
		svc, _, loanRepo, _ := newLedgerService()
		loanRepo.On("GetByID", mock.Anything, loanID).Return(nil, sql.ErrNoRows)

		err := svc.DeleteLoan(context.Background(), loanID)

		require.Error(t, err)
		assert.ErrorIs(t, err, customError.ErrLoanNotFound)
	})
}
