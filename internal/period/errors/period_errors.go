package perioderrors

import (
	"fmt"
	"net/http"

	"go-payroll/internal/shared/apperror"
)

var (
	ErrInvalidCompanyID = apperror.New(
		apperror.CodeValidation,
		"invalid company id",
		http.StatusBadRequest,
	)
	ErrInvalidActorID = apperror.New(
		apperror.CodeValidation,
		"invalid actor id",
		http.StatusBadRequest,
	)
	ErrInvalidPeriodID = apperror.New(
		apperror.CodeValidation,
		"invalid period id",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeValidation,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrEndBeforeStart = apperror.New(
		apperror.CodeValidation,
		"end_date must be on or after start_date",
		http.StatusBadRequest,
	)
	ErrPayDateBeforeEnd = apperror.New(
		apperror.CodeValidation,
		"pay_date must be on or after end_date",
		http.StatusBadRequest,
	)
	ErrPeriodNotFound = apperror.New(
		apperror.CodeNotFound,
		"payroll period not found",
		http.StatusNotFound,
	)
)

// InvalidTransition reports an illegal period status change. The message
// carries both the current and the attempted state.
func InvalidTransition(current, attempted string) *apperror.AppError {
	return apperror.New(
		apperror.CodeInvalidState,
		fmt.Sprintf("cannot transition period from %s to %s", current, attempted),
		http.StatusConflict,
	)
}

// NotReady reports a close attempt on a period that still holds unresolved
// ledgers.
func NotReady(unresolved int64) *apperror.AppError {
	return apperror.New(
		apperror.CodePeriodNotReady,
		fmt.Sprintf("period cannot be closed: %d ledgers are still pending or awaiting approval", unresolved),
		http.StatusConflict,
	)
}
