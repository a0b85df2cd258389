package autherrors

import (
	"go-timeoff/internal/shared/apperror"
	"net/http"
)

var (
	ErrInvalidCredentials    = apperror.New(apperror.CodeUnauthorized, "Invalid email or password", http.StatusUnauthorized)
	ErrInvalidToken          = apperror.New("INVALID_TOKEN", "Invalid or malformed token", http.StatusUnauthorized)
	ErrTokenExpired          = apperror.New("TOKEN_EXPIRED", "Token has expired", http.StatusUnauthorized)
	ErrInvalidRefreshToken   = apperror.New("INVALID_REFRESH_TOKEN", "Invalid refresh token", http.StatusUnauthorized)
	ErrInvalidUserID         = apperror.New(apperror.CodeInvalidInput, "Invalid user id", http.StatusBadRequest)
	ErrUserNotFound          = apperror.New(apperror.CodeNotFound, "User not found", http.StatusNotFound)
	ErrUserInactive          = apperror.New(apperror.CodeForbidden, "User account is inactive", http.StatusForbidden)
	ErrTokenGenerationFailed = apperror.New(apperror.CodeInternalError, "Failed to generate token", http.StatusInternalServerError)
	ErrEmailAlreadyUsed      = apperror.New(apperror.CodeConflict, "Email is already registered", http.StatusConflict)
	ErrForbidden             = apperror.New(apperror.CodeForbidden, "You do not have access to this resource", http.StatusForbidden)
)
