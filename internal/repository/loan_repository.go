package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/hrops/staff-loan-ledger/internal/domain"
	customError "github.com/hrops/staff-loan-ledger/pkg/errors"
)

type loanRepository struct {
	db *sqlx.DB
}

func NewLoanRepository(db *sqlx.DB) LoanRepository {
	return &loanRepository{db: db}
}

const loanColumns = `id, staff_id, loan_amount, duration_months, monthly_payment,
	outstanding_balance, status, start_date, end_date, notes, version, created_at, updated_at`

func (r *loanRepository) Create(ctx context.Context, loan *domain.Loan) error {
	query := `
		INSERT INTO loans (id, staff_id, loan_amount, duration_months, monthly_payment,
			outstanding_balance, status, start_date, end_date, notes, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.db.ExecContext(ctx, query,
		loan.ID,
		loan.StaffID,
		loan.LoanAmount,
		loan.DurationMonths,
		loan.MonthlyPayment,
		loan.OutstandingBalance,
		loan.Status,
		loan.StartDate,
		loan.EndDate,
		loan.Notes,
		loan.Version,
		loan.CreatedAt,
		loan.UpdatedAt,
	)

	return err
}

func (r *loanRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1`

	var loan domain.Loan
	if err := r.db.GetContext(ctx, &loan, query, id); err != nil {
		return nil, err
	}

	return &loan, nil
}

func (r *loanRepository) List(ctx context.Context, filter domain.LoanFilter) ([]*domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE 1=1`
	args := []interface{}{}

	if filter.Status != "" {
		args = append(args, filter.Status)
		query += ` AND status = $1`
	}
	if filter.StaffID != uuid.Nil {
		args = append(args, filter.StaffID)
		if len(args) == 1 {
			query += ` AND staff_id = $1`
		} else {
			query += ` AND staff_id = $2`
		}
	}
	query += ` ORDER BY created_at DESC`

	var loans []*domain.Loan
	if err := r.db.SelectContext(ctx, &loans, query, args...); err != nil {
		return nil, err
	}

	return loans, nil
}

func (r *loanRepository) ListRecent(ctx context.Context, limit int) ([]*domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans ORDER BY created_at DESC LIMIT $1`

	var loans []*domain.Loan
	if err := r.db.SelectContext(ctx, &loans, query, limit); err != nil {
		return nil, err
	}

	return loans, nil
}

// Update writes status/notes for a loan and bumps its version so concurrent
// payment commits against the stale snapshot fail their version guard.
func (r *loanRepository) Update(ctx context.Context, loan *domain.Loan) error {
	query := `
		UPDATE loans
		SET status = $2, notes = $3, version = version + 1, updated_at = $4
		WHERE id = $1 AND version = $5
	`

	result, err := r.db.ExecContext(ctx, query,
		loan.ID,
		loan.Status,
		loan.Notes,
		time.Now(),
		loan.Version,
	)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return customError.ErrVersionConflict
	}

	loan.Version++
	return nil
}

func (r *loanRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM loans WHERE id = $1`, id)
	return err
}

// ApplyPayment is the single transactional boundary of the ledger: the payment
// row and the loan's balance/status/end_date land together or not at all. The
// version guard rejects the write when the loan changed since the caller read it.
func (r *loanRepository) ApplyPayment(ctx context.Context, loan *domain.Loan, payment *domain.Payment, expectedVersion int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	updateQuery := `
		UPDATE loans
		SET outstanding_balance = $2, status = $3, end_date = $4, version = version + 1, updated_at = $5
		WHERE id = $1 AND version = $6
	`

	result, err := tx.ExecContext(ctx, updateQuery,
		loan.ID,
		loan.OutstandingBalance,
		loan.Status,
		loan.EndDate,
		loan.UpdatedAt,
		expectedVersion,
	)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return customError.ErrVersionConflict
	}

	insertQuery := `
		INSERT INTO payments (id, loan_id, amount, payment_date, remaining_balance, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err = tx.ExecContext(ctx, insertQuery,
		payment.ID,
		payment.LoanID,
		payment.Amount,
		payment.PaymentDate,
		payment.RemainingBalance,
		payment.Notes,
		payment.CreatedAt,
	)
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	loan.Version = expectedVersion + 1
	return nil
}
