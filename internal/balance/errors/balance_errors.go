package balanceerrors

import (
	"net/http"

	"go-timeoff/internal/shared/apperror"
)

var (
	ErrInvalidCompanyID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid company id",
		http.StatusBadRequest,
	)
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid employee id",
		http.StatusBadRequest,
	)
	ErrBalanceNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave balance not found",
		http.StatusNotFound,
	)
	ErrBalanceAlreadyAllocated = apperror.New(
		apperror.CodeConflict,
		"balance already allocated for this employee, type and year",
		http.StatusConflict,
	)
	ErrAllowanceBelowUsage = apperror.New(
		apperror.CodeInvalidState,
		"total_allowed cannot be reduced below days already used",
		http.StatusConflict,
	)
)
