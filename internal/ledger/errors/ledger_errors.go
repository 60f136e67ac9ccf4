package ledgererrors

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
	ErrInvalidLedgerID = apperror.New(
		apperror.CodeValidation,
		"invalid ledger id",
		http.StatusBadRequest,
	)
	ErrInvalidPeriodID = apperror.New(
		apperror.CodeValidation,
		"invalid period id",
		http.StatusBadRequest,
	)
	ErrInvalidStatusFilter = apperror.New(
		apperror.CodeValidation,
		"invalid ledger status filter",
		http.StatusBadRequest,
	)
	ErrLedgerNotFound = apperror.New(
		apperror.CodeNotFound,
		"payroll ledger not found",
		http.StatusNotFound,
	)
	ErrComponentLineNotFound = apperror.New(
		apperror.CodeNotFound,
		"ledger component not found",
		http.StatusNotFound,
	)
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"employee not found in this company",
		http.StatusNotFound,
	)
	ErrDuplicateLedger = apperror.New(
		apperror.CodeDuplicateLedger,
		"employee already has a ledger for this period",
		http.StatusConflict,
	)
	ErrMissingHours = apperror.New(
		apperror.CodeCalculation,
		"hourly employee has no hours recorded for this run",
		http.StatusUnprocessableEntity,
	)
	ErrUnknownPayType = apperror.New(
		apperror.CodeCalculation,
		"employee has an unknown pay type",
		http.StatusUnprocessableEntity,
	)
	ErrNegativeHours = apperror.New(
		apperror.CodeValidation,
		"hours and bonus values cannot be negative",
		http.StatusBadRequest,
	)
	ErrOverrideReasonRequired = apperror.New(
		apperror.CodeValidation,
		"an override requires a reason",
		http.StatusBadRequest,
	)
	ErrRejectReasonRequired = apperror.New(
		apperror.CodeValidation,
		"a rejection or cancellation requires a reason",
		http.StatusBadRequest,
	)
	ErrOverrideOnlyCalculated = apperror.New(
		apperror.CodeInvalidState,
		"components can only be overridden while the ledger is CALCULATED",
		http.StatusConflict,
	)
)

// InvalidTransition reports an illegal ledger status change, naming the
// current and the attempted state.
func InvalidTransition(current, attempted string) *apperror.AppError {
	return apperror.New(
		apperror.CodeInvalidState,
		fmt.Sprintf("cannot transition ledger from %s to %s", current, attempted),
		http.StatusConflict,
	)
}

// NegativeNetPay reports a calculation whose deductions and taxes exceed
// gross pay.
func NegativeNetPay(net int64) *apperror.AppError {
	return apperror.New(
		apperror.CodeCalculation,
		fmt.Sprintf("calculation produced a negative net pay (%d)", net),
		http.StatusUnprocessableEntity,
	)
}
