// Package loancalc contains the pure arithmetic behind loan terms. Nothing
// here touches storage; callers validate business rules before applying.
package loancalc

import (
	"time"

	"github.com/hrops/staff-loan-ledger/pkg/errors"
	"github.com/shopspring/decimal"
)

// Average days per calendar month, used for elapsed-month estimation.
const avgDaysPerMonth = 30.44

// MonthlyPayment calculates the flat monthly payment for an interest-free
// loan: principal / months, rounded to 2 decimal places.
func MonthlyPayment(principal decimal.Decimal, months int) (decimal.Decimal, error) {
	if months <= 0 {
		return decimal.Zero, errors.ErrInvalidLoanTerms
	}
	return principal.Div(decimal.NewFromInt(int64(months))).Round(2), nil
}

// ApplyPayment returns the balance after a payment, floored at zero. It does
// not enforce any business rule beyond the clamp.
func ApplyPayment(balance, amount decimal.Decimal) decimal.Decimal {
	newBalance := balance.Sub(amount)
	if newBalance.IsNegative() {
		return decimal.Zero
	}
	return newBalance
}

// TotalPaid returns how much of the principal has been repaid so far.
func TotalPaid(principal, balance decimal.Decimal) decimal.Decimal {
	return principal.Sub(balance)
}

// Progress returns the repayment percentage, clamped to [0,100].
// A non-positive principal yields 0.
func Progress(principal, balance decimal.Decimal) decimal.Decimal {
	if !principal.IsPositive() {
		return decimal.Zero
	}
	hundred := decimal.NewFromInt(100)
	progress := principal.Sub(balance).Div(principal).Mul(hundred)
	if progress.IsNegative() {
		return decimal.Zero
	}
	if progress.GreaterThan(hundred) {
		return hundred
	}
	return progress
}

// ExpectedEndDate adds the loan duration to the start date using calendar
// month addition. Month-end overflow normalizes forward (Jan 31 + 1 month
// lands in early March), matching time.Time.AddDate.
func ExpectedEndDate(start time.Time, months int) time.Time {
	return start.AddDate(0, months, 0)
}

// MonthsRemaining estimates the number of monthly payments left:
// ceil(balance / monthlyPayment), or 0 when the payment is non-positive.
func MonthsRemaining(balance, monthlyPayment decimal.Decimal) int {
	if !monthlyPayment.IsPositive() {
		return 0
	}
	months := balance.Div(monthlyPayment).Ceil()
	if months.IsNegative() {
		return 0
	}
	return int(months.IntPart())
}

// IsOverdue reports whether total repayments lag behind the expected pace of
// one monthly payment per elapsed month. Elapsed months are estimated with an
// average 30.44-day month; anything under one full month is never overdue.
func IsOverdue(start time.Time, monthlyPayment, totalPaid decimal.Decimal, now time.Time) bool {
	elapsedDays := now.Sub(start).Hours() / 24
	monthsElapsed := int(elapsedDays / avgDaysPerMonth)
	if monthsElapsed <= 0 {
		return false
	}
	expected := monthlyPayment.Mul(decimal.NewFromInt(int64(monthsElapsed)))
	return totalPaid.LessThan(expected)
}
