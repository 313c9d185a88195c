package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment is an immutable ledger entry. RemainingBalance is the loan's
// outstanding balance immediately after this payment was applied; it is a
// point-in-time audit value and is never recomputed.
type Payment struct {
	ID               uuid.UUID       `json:"id" db:"id"`
	LoanID           uuid.UUID       `json:"loan_id" db:"loan_id"`
	Amount           decimal.Decimal `json:"amount" db:"amount"`
	PaymentDate      time.Time       `json:"payment_date" db:"payment_date"`
	RemainingBalance decimal.Decimal `json:"remaining_balance" db:"remaining_balance"`
	Notes            string          `json:"notes,omitempty" db:"notes"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
}

type RecordPaymentRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	PaymentDate *time.Time      `json:"payment_date,omitempty"`
	Notes       string          `json:"notes"`
}

type RecordPaymentResponse struct {
	Payment *Payment `json:"payment"`
	Loan    *Loan    `json:"loan"`
}
