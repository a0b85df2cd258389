package leavetypeerrors

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
	ErrInvalidTypeID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid leave type id",
		http.StatusBadRequest,
	)
	ErrTypeNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave type not found",
		http.StatusNotFound,
	)
	ErrTypeNameTaken = apperror.New(
		apperror.CodeConflict,
		"a leave type with this name already exists",
		http.StatusConflict,
	)
	ErrMonthlyLimitRequired = apperror.New(
		apperror.CodeInvalidInput,
		"monthly_hour_limit is required for PERMISSION types",
		http.StatusBadRequest,
	)
	ErrMaxDaysRequired = apperror.New(
		apperror.CodeInvalidInput,
		"max_days is required for LEAVE types",
		http.StatusBadRequest,
	)
)
