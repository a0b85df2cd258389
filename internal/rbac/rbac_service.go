package rbac

import (
	"go-timeoff/internal/domain"
	"sync"

	"github.com/casbin/casbin/v2"
	"go.uber.org/zap"
)

//go:generate mockgen -source=rbac_service.go -destination=mock/rbac_service_mock.go -package=mock
type Service interface {
	LoadCompanyPolicy(companyID string) error
	Enforce(req domain.EnforceRequest) (bool, error)

	ListRoles(companyID string) ([]domain.RoleResponse, error)
	CreateRole(companyID string, req domain.CreateRoleRequest) (*domain.RoleResponse, error)
	UpdateRolePermissions(companyID, roleID string, permIDs []string) error
	ListPermissions() ([]domain.PermissionResponse, error)
	AssignEmployeeRole(employeeID, roleID string) error
}

type service struct {
	repo     Repository
	enforcer *casbin.Enforcer
	logger   *zap.Logger
	mu       sync.Mutex
}

func NewService(repo Repository, enforcer *casbin.Enforcer, logger ...*zap.Logger) Service {
	l := zap.L().Named("rbac.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0]
	}

	return &service{
		repo:     repo,
		enforcer: enforcer,
		logger:   l,
	}
}

func (s *service) LoadCompanyPolicy(companyID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.loadCompanyPolicyUnlocked(companyID)
}

// loadCompanyPolicyUnlocked rebuilds the in-memory enforcer from the company's
// rows. Callers must hold s.mu.
func (s *service) loadCompanyPolicyUnlocked(companyID string) error {
	s.enforcer.ClearPolicy()

	employeeRoles, err := s.repo.GetEmployeeRoles(companyID)
	if err != nil {
		return err
	}

	for _, er := range employeeRoles {
		if _, err := s.enforcer.AddGroupingPolicy(er.EmployeeID, er.RoleID, companyID); err != nil {
			return err
		}
	}

	rolePerms, err := s.repo.GetRolePermissions(companyID)
	if err != nil {
		return err
	}

	for _, rp := range rolePerms {
		if _, err := s.enforcer.AddPolicy(rp.RoleID, companyID, rp.Resource, rp.Action); err != nil {
			return err
		}
	}

	s.logger.Debug("rbac policy loaded",
		zap.String("company_id", companyID),
		zap.Int("employee_roles", len(employeeRoles)),
		zap.Int("role_permissions", len(rolePerms)),
	)

	return nil
}

func (s *service) Enforce(req domain.EnforceRequest) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadCompanyPolicyUnlocked(req.CompanyID); err != nil {
		return false, err
	}

	allowed, err := s.enforcer.Enforce(req.EmployeeID, req.CompanyID, req.Resource, req.Action)
	if err != nil {
		return false, err
	}

	s.logger.Debug("rbac enforce",
		zap.String("employee_id", req.EmployeeID),
		zap.String("company_id", req.CompanyID),
		zap.String("resource", req.Resource),
		zap.String("action", req.Action),
		zap.Bool("allowed", allowed),
	)

	return allowed, nil
}

func (s *service) ListRoles(companyID string) ([]domain.RoleResponse, error) {
	rows, err := s.repo.ListRoles(companyID)
	if err != nil {
		return nil, err
	}

	roles := make([]domain.RoleResponse, 0, len(rows))
	for _, row := range rows {
		perms, err := s.repo.GetPermissionsByRoleID(row.ID)
		if err != nil {
			return nil, err
		}

		permNames := make([]string, 0, len(perms))
		for _, p := range perms {
			permNames = append(permNames, p.Resource+":"+p.Action)
		}

		roles = append(roles, domain.RoleResponse{
			ID:          row.ID,
			Name:        row.Name,
			Description: row.Description,
			Permissions: permNames,
		})
	}

	return roles, nil
}

func (s *service) CreateRole(companyID string, req domain.CreateRoleRequest) (*domain.RoleResponse, error) {
	if existing, err := s.repo.GetRoleByName(companyID, req.Name); err == nil && existing != nil {
		return nil, ErrRoleNameTaken
	}

	role := &RoleRow{
		CompanyID:   companyID,
		Name:        req.Name,
		Description: req.Description,
	}
	if err := s.repo.CreateRole(role); err != nil {
		return nil, err
	}

	if len(req.Permissions) > 0 {
		if err := s.repo.UpdateRolePermissions(role.ID, req.Permissions); err != nil {
			return nil, err
		}
	}

	return &domain.RoleResponse{
		ID:          role.ID,
		Name:        role.Name,
		Description: role.Description,
		Permissions: req.Permissions,
	}, nil
}

func (s *service) UpdateRolePermissions(companyID, roleID string, permIDs []string) error {
	role, err := s.repo.GetRoleByID(roleID)
	if err != nil {
		return ErrRoleNotFound
	}
	if role.CompanyID != companyID {
		return ErrRoleNotFound
	}

	return s.repo.UpdateRolePermissions(roleID, permIDs)
}

func (s *service) ListPermissions() ([]domain.PermissionResponse, error) {
	rows, err := s.repo.ListPermissions()
	if err != nil {
		return nil, err
	}

	perms := make([]domain.PermissionResponse, 0, len(rows))
	for _, row := range rows {
		perms = append(perms, domain.PermissionResponse{
			ID:       row.ID,
			Resource: row.Resource,
			Action:   row.Action,
			Label:    row.Label,
			Category: row.Category,
		})
	}

	return perms, nil
}

func (s *service) AssignEmployeeRole(employeeID, roleID string) error {
	if _, err := s.repo.GetRoleByID(roleID); err != nil {
		return ErrRoleNotFound
	}
	return s.repo.AssignEmployeeRole(employeeID, roleID)
}
