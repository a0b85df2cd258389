package rbac

import (
	"go-timeoff/internal/shared/apperror"
	"net/http"
)

var (
	ErrRoleNotFound  = apperror.New(apperror.CodeNotFound, "Role not found", http.StatusNotFound)
	ErrRoleNameTaken = apperror.New(apperror.CodeConflict, "A role with this name already exists", http.StatusConflict)
)
