package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/hrops/staff-loan-ledger/internal/domain"
)

type staffRepository struct {
	db *sqlx.DB
}

func NewStaffRepository(db *sqlx.DB) StaffRepository {
	return &staffRepository{db: db}
}

func (r *staffRepository) Create(ctx context.Context, staff *domain.Staff) error {
	query := `
		INSERT INTO staff (id, name, email, department, employee_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		staff.ID,
		staff.Name,
		staff.Email,
		staff.Department,
		staff.EmployeeID,
		staff.CreatedAt,
		staff.UpdatedAt,
	)

	return err
}

func (r *staffRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Staff, error) {
	query := `
		SELECT id, name, email, department, employee_id, created_at, updated_at
		FROM staff
		WHERE id = $1
	`

	var staff domain.Staff
	if err := r.db.GetContext(ctx, &staff, query, id); err != nil {
		return nil, err
	}

	return &staff, nil
}

func (r *staffRepository) ExistsByEmailOrEmployeeID(ctx context.Context, email, employeeID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM staff WHERE email = $1 OR employee_id = $2
		)
	`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, email, employeeID); err != nil {
		return false, err
	}

	return exists, nil
}

func (r *staffRepository) List(ctx context.Context) ([]*domain.Staff, error) {
	query := `
		SELECT id, name, email, department, employee_id, created_at, updated_at
		FROM staff
		ORDER BY name
	`

	var staff []*domain.Staff
	if err := r.db.SelectContext(ctx, &staff, query); err != nil {
		return nil, err
	}

	return staff, nil
}
