package componenterrors

import (
	"net/http"

	"go-payroll/internal/shared/apperror"
)

var (
	ErrExclusiveBasis = apperror.New(
		apperror.CodeValidation,
		"exactly one of amount and percent must be positive",
		http.StatusBadRequest,
	)
	ErrPercentOutOfRange = apperror.New(
		apperror.CodeValidation,
		"percent must be greater than 0 and at most 100",
		http.StatusBadRequest,
	)
	ErrNegativeAmount = apperror.New(
		apperror.CodeValidation,
		"amount must be positive",
		http.StatusBadRequest,
	)
	ErrDuplicateName = apperror.New(
		apperror.CodeConflict,
		"a salary component with this name already exists",
		http.StatusConflict,
	)
	ErrComponentNotFound = apperror.New(
		apperror.CodeNotFound,
		"salary component not found",
		http.StatusNotFound,
	)
	ErrInvalidComponentID = apperror.New(
		apperror.CodeValidation,
		"invalid salary component id",
		http.StatusBadRequest,
	)
	ErrInvalidCompanyID = apperror.New(
		apperror.CodeValidation,
		"invalid company id",
		http.StatusBadRequest,
	)
)
