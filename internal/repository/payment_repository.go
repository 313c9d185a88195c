package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/hrops/staff-loan-ledger/internal/domain"
)

type paymentRepository struct {
	db *sqlx.DB
}

func NewPaymentRepository(db *sqlx.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

const paymentColumns = `id, loan_id, amount, payment_date, remaining_balance, notes, created_at`

func (r *paymentRepository) ListByLoanID(ctx context.Context, loanID uuid.UUID) ([]*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE loan_id = $1 ORDER BY payment_date DESC`

	var payments []*domain.Payment
	if err := r.db.SelectContext(ctx, &payments, query, loanID); err != nil {
		return nil, err
	}

	return payments, nil
}

func (r *paymentRepository) CountByLoanID(ctx context.Context, loanID uuid.UUID) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM payments WHERE loan_id = $1`, loanID); err != nil {
		return 0, err
	}

	return count, nil
}

func (r *paymentRepository) ListRecent(ctx context.Context, limit int) ([]*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments ORDER BY payment_date DESC LIMIT $1`

	var payments []*domain.Payment
	if err := r.db.SelectContext(ctx, &payments, query, limit); err != nil {
		return nil, err
	}

	return payments, nil
}

func (r *paymentRepository) ListAll(ctx context.Context) ([]*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments ORDER BY payment_date DESC`

	var payments []*domain.Payment
	if err := r.db.SelectContext(ctx, &payments, query); err != nil {
		return nil, err
	}

	return payments, nil
}

func (r *paymentRepository) ListDetailsByDateRange(ctx context.Context, from, to time.Time) ([]*domain.PaymentDetail, error) {
	query := `
		SELECT p.id, p.loan_id, p.amount, p.payment_date, p.remaining_balance, p.notes,
			s.name AS staff_name, s.employee_id, s.department
		FROM payments p
		JOIN loans l ON l.id = p.loan_id
		JOIN staff s ON s.id = l.staff_id
		WHERE p.payment_date >= $1 AND p.payment_date <= $2
		ORDER BY p.payment_date DESC
	`

	var details []*domain.PaymentDetail
	if err := r.db.SelectContext(ctx, &details, query, from, to); err != nil {
		return nil, err
	}

	return details, nil
}
