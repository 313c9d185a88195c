package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Domain errors
var (
	ErrStaffNotFound    = errors.New("staff member not found")
	ErrDuplicateStaff   = errors.New("staff member with this email or employee ID already exists")
	ErrLoanNotFound     = errors.New("loan not found")
	ErrInvalidLoanTerms = errors.New("loan amount and duration must be positive")
	ErrInvalidPayment   = errors.New("payment amount must be positive")
	ErrExceedsBalance   = errors.New("payment amount cannot exceed outstanding balance")
	ErrLoanNotActive    = errors.New("cannot record payment for inactive loan")
	ErrLoanHasPayments  = errors.New("cannot delete loan with existing payments")
	ErrInvalidStatus    = errors.New("invalid loan status")
	ErrVersionConflict  = errors.New("loan was concurrently modified")
)

// BusinessError represents a classified business or infrastructure failure.
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeStaffNotFound    = "STAFF_NOT_FOUND"
	ErrCodeDuplicateStaff   = "DUPLICATE_STAFF"
	ErrCodeLoanNotFound     = "LOAN_NOT_FOUND"
	ErrCodeInvalidLoanTerms = "INVALID_LOAN_TERMS"
	ErrCodeInvalidPayment   = "INVALID_PAYMENT"
	ErrCodeExceedsBalance   = "PAYMENT_EXCEEDS_BALANCE"
	ErrCodeLoanNotActive    = "LOAN_NOT_ACTIVE"
	ErrCodeLoanHasPayments  = "LOAN_HAS_PAYMENTS"
	ErrCodeInvalidStatus    = "INVALID_STATUS"
	ErrCodeInvalidPeriod    = "INVALID_REPORT_PERIOD"
	ErrCodeVersionConflict  = "VERSION_CONFLICT"
	ErrCodeDatabaseError    = "DATABASE_ERROR"
	ErrCodeCacheError       = "CACHE_ERROR"
)

// HTTPStatus maps an error to the status code the API surfaces it with.
// Infrastructure failures and unknown errors fall through to 500.
func HTTPStatus(err error) int {
	var be *BusinessError
	if !errors.As(err, &be) {
		return http.StatusInternalServerError
	}
	switch be.Code {
	case ErrCodeStaffNotFound, ErrCodeLoanNotFound:
		return http.StatusNotFound
	case ErrCodeDuplicateStaff:
		return http.StatusConflict
	case ErrCodeInvalidLoanTerms, ErrCodeInvalidPayment, ErrCodeExceedsBalance,
		ErrCodeLoanNotActive, ErrCodeLoanHasPayments, ErrCodeInvalidStatus, ErrCodeInvalidPeriod:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Wrap common errors with business context

func WrapStaffNotFound(staffID string) *BusinessError {
	return NewBusinessError(
		ErrCodeStaffNotFound,
		fmt.Sprintf("Staff member %s not found", staffID),
		ErrStaffNotFound,
	)
}

func WrapDuplicateStaff() *BusinessError {
	return NewBusinessError(
		ErrCodeDuplicateStaff,
		"Staff member with this email or employee ID already exists",
		ErrDuplicateStaff,
	)
}

func WrapLoanNotFound(loanID string) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanNotFound,
		fmt.Sprintf("Loan %s not found", loanID),
		ErrLoanNotFound,
	)
}

func WrapInvalidLoanTerms() *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidLoanTerms,
		"Loan amount and duration must be positive numbers",
		ErrInvalidLoanTerms,
	)
}

func WrapInvalidPayment() *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidPayment,
		"Payment amount must be positive",
		ErrInvalidPayment,
	)
}

func WrapExceedsBalance(amount, balance string) *BusinessError {
	return NewBusinessError(
		ErrCodeExceedsBalance,
		fmt.Sprintf("Payment amount %s exceeds outstanding balance %s", amount, balance),
		ErrExceedsBalance,
	)
}

func WrapLoanNotActive(loanID string) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanNotActive,
		fmt.Sprintf("Loan %s is not active and cannot accept payments", loanID),
		ErrLoanNotActive,
	)
}

func WrapLoanHasPayments(loanID string) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanHasPayments,
		fmt.Sprintf("Loan %s has recorded payments and cannot be deleted", loanID),
		ErrLoanHasPayments,
	)
}

func WrapInvalidStatus(status string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidStatus,
		fmt.Sprintf("Invalid status %q. Must be one of: ACTIVE, SUSPENDED, FULLY_PAID, BAD_DEBT", status),
		ErrInvalidStatus,
	)
}

func WrapVersionConflict(loanID string) *BusinessError {
	return NewBusinessError(
		ErrCodeVersionConflict,
		fmt.Sprintf("Loan %s was concurrently modified", loanID),
		ErrVersionConflict,
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}

func WrapCacheError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeCacheError,
		"cache operation failed",
		err,
	)
}
