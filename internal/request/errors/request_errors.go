package requesterrors

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
	ErrInvalidActorID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid actor id",
		http.StatusBadRequest,
	)
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid employee id",
		http.StatusBadRequest,
	)
	ErrInvalidTimestamp = apperror.New(
		apperror.CodeInvalidInput,
		"invalid timestamp, expected YYYY-MM-DD or RFC3339",
		http.StatusBadRequest,
	)
	ErrInvalidInterval = apperror.New(
		apperror.CodeInvalidInput,
		"start_at must be before end_at",
		http.StatusBadRequest,
	)
	ErrLeaveNotWholeDays = apperror.New(
		apperror.CodeInvalidInput,
		"leave intervals must start and end at midnight UTC",
		http.StatusBadRequest,
	)
	ErrEmployeeNotInCompany = apperror.New(
		apperror.CodeInvalidInput,
		"employee does not belong to this company",
		http.StatusBadRequest,
	)
	ErrTypeNotFound = apperror.New(
		apperror.CodeInvalidInput,
		"unknown leave type",
		http.StatusBadRequest,
	)
	ErrTypeInactive = apperror.New(
		apperror.CodeInvalidInput,
		"leave type is inactive",
		http.StatusBadRequest,
	)
	ErrEvidenceRequired = apperror.New(
		apperror.CodeInvalidInput,
		"this type requires an evidence note",
		http.StatusBadRequest,
	)
	ErrRequestOverlap = apperror.New(
		apperror.CodeConflict,
		"an open request already covers part of this interval",
		http.StatusConflict,
	)
	ErrInsufficientBalance = apperror.New(
		apperror.CodeInsufficientBalance,
		"insufficient remaining allowance for this request",
		http.StatusConflict,
	)
	ErrBalanceNotAllocated = apperror.New(
		apperror.CodeInvalidInput,
		"no balance allocated for this employee, type and year",
		http.StatusBadRequest,
	)
	ErrRequestNotFound = apperror.New(
		apperror.CodeNotFound,
		"request not found",
		http.StatusNotFound,
	)
	ErrInvalidStatusTransition = apperror.New(
		apperror.CodeInvalidState,
		"request is not pending",
		http.StatusConflict,
	)
	ErrRejectionReasonRequired = apperror.New(
		apperror.CodeInvalidInput,
		"rejection_reason is required when rejecting",
		http.StatusBadRequest,
	)
)
