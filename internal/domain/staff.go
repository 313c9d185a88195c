package domain

import (
	"time"

	"github.com/google/uuid"
)

// Staff represents an employee who can hold loans.
type Staff struct {
	ID         uuid.UUID `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	Email      string    `json:"email" db:"email"`
	Department string    `json:"department" db:"department"`
	EmployeeID string    `json:"employee_id" db:"employee_id"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`

	// Loans is populated only when the caller asks for them.
	Loans []*Loan `json:"loans,omitempty" db:"-"`
}

type CreateStaffRequest struct {
	Name       string `json:"name" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Department string `json:"department" validate:"required"`
	EmployeeID string `json:"employee_id" validate:"required"`
}
