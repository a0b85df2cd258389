package rbac

import (
	"errors"
	"testing"

	"go-timeoff/internal/domain"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/stretchr/testify/assert"
)

type fakeRepo struct {
	policyCompanyID  string
	employeeRoles    []EmployeeRoleRow
	rolePermissions  []RolePermissionRow
	roles            map[string]*RoleRow
	rolePermsByRole  map[string][]PermissionRow
	permissions      []PermissionRow
	assignedRoles    map[string]string
	updatedRolePerms map[string][]string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		roles:            map[string]*RoleRow{},
		rolePermsByRole:  map[string][]PermissionRow{},
		assignedRoles:    map[string]string{},
		updatedRolePerms: map[string][]string{},
	}
}

func (m *fakeRepo) GetEmployeeRoles(companyID string) ([]EmployeeRoleRow, error) {
	if m.policyCompanyID != "" && companyID != m.policyCompanyID {
		return nil, nil
	}
	return m.employeeRoles, nil
}

func (m *fakeRepo) GetRolePermissions(companyID string) ([]RolePermissionRow, error) {
	if m.policyCompanyID != "" && companyID != m.policyCompanyID {
		return nil, nil
	}
	return m.rolePermissions, nil
}

func (m *fakeRepo) ListRoles(companyID string) ([]RoleRow, error) {
	var rows []RoleRow
	for _, r := range m.roles {
		if r.CompanyID == companyID {
			rows = append(rows, *r)
		}
	}
	return rows, nil
}

func (m *fakeRepo) GetRoleByID(id string) (*RoleRow, error) {
	if r, ok := m.roles[id]; ok {
		return r, nil
	}
	return nil, errors.New("record not found")
}

func (m *fakeRepo) GetRoleByName(companyID, name string) (*RoleRow, error) {
	for _, r := range m.roles {
		if r.CompanyID == companyID && r.Name == name {
			return r, nil
		}
	}
	return nil, errors.New("record not found")
}

func (m *fakeRepo) CreateRole(role *RoleRow) error {
	if role.ID == "" {
		role.ID = "role-" + role.Name
	}
	m.roles[role.ID] = role
	return nil
}

func (m *fakeRepo) UpdateRole(role *RoleRow) error {
	m.roles[role.ID] = role
	return nil
}

func (m *fakeRepo) DeleteRole(id string) error {
	delete(m.roles, id)
	return nil
}

func (m *fakeRepo) ListPermissions() ([]PermissionRow, error) {
	return m.permissions, nil
}

func (m *fakeRepo) GetPermissionsByRoleID(roleID string) ([]PermissionRow, error) {
	return m.rolePermsByRole[roleID], nil
}

func (m *fakeRepo) UpdateRolePermissions(roleID string, permIDs []string) error {
	m.updatedRolePerms[roleID] = permIDs
	return nil
}

func (m *fakeRepo) AssignEmployeeRole(employeeID, roleID string) error {
	m.assignedRoles[employeeID] = roleID
	return nil
}

func newTestEnforcer(t *testing.T) *casbin.Enforcer {
	modelText := `[request_definition]
r = sub, dom, obj, act

[policy_definition]
p = sub, dom, obj, act

[role_definition]
g = _, _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub, r.dom) && r.dom == p.dom && r.obj == p.obj && r.act == p.act
`

	m, err := model.NewModelFromString(modelText)
	assert.NoError(t, err)

	e, err := casbin.NewEnforcer(m)
	assert.NoError(t, err)

	return e
}

func TestRBACService_Enforce(t *testing.T) {
	repo := newFakeRepo()
	repo.employeeRoles = []EmployeeRoleRow{
		{EmployeeID: "emp-1", RoleID: "role-hr"},
	}
	repo.rolePermissions = []RolePermissionRow{
		{RoleID: "role-hr", Resource: "request", Action: "decide"},
	}

	service := NewService(repo, newTestEnforcer(t))

	err := service.LoadCompanyPolicy("company-1")
	assert.NoError(t, err)

	allowed, err := service.Enforce(domain.EnforceRequest{
		EmployeeID: "emp-1",
		CompanyID:  "company-1",
		Resource:   "request",
		Action:     "decide",
	})
	assert.NoError(t, err)
	assert.True(t, allowed)

	// Same employee, action the role does not have.
	allowed, err = service.Enforce(domain.EnforceRequest{
		EmployeeID: "emp-1",
		CompanyID:  "company-1",
		Resource:   "request",
		Action:     "manage",
	})
	assert.NoError(t, err)
	assert.False(t, allowed)

	// Employee with no role at all.
	allowed, err = service.Enforce(domain.EnforceRequest{
		EmployeeID: "emp-2",
		CompanyID:  "company-1",
		Resource:   "request",
		Action:     "decide",
	})
	assert.NoError(t, err)
	assert.False(t, allowed)
}

func TestRBACService_EnforceIsDomainScoped(t *testing.T) {
	repo := newFakeRepo()
	repo.policyCompanyID = "company-1"
	repo.employeeRoles = []EmployeeRoleRow{
		{EmployeeID: "emp-1", RoleID: "role-hr"},
	}
	repo.rolePermissions = []RolePermissionRow{
		{RoleID: "role-hr", Resource: "request", Action: "decide"},
	}

	service := NewService(repo, newTestEnforcer(t))

	allowed, err := service.Enforce(domain.EnforceRequest{
		EmployeeID: "emp-1",
		CompanyID:  "company-1",
		Resource:   "request",
		Action:     "decide",
	})
	assert.NoError(t, err)
	assert.True(t, allowed)

	// Same employee and role in a company where no rows exist.
	allowed, err = service.Enforce(domain.EnforceRequest{
		EmployeeID: "emp-1",
		CompanyID:  "company-2",
		Resource:   "request",
		Action:     "decide",
	})
	assert.NoError(t, err)
	assert.False(t, allowed)
}

func TestRBACService_CreateRole(t *testing.T) {
	t.Run("success with permissions", func(t *testing.T) {
		repo := newFakeRepo()
		service := NewService(repo, newTestEnforcer(t))

		resp, err := service.CreateRole("company-1", domain.CreateRoleRequest{
			Name:        "Approvers",
			Description: "Can decide requests",
			Permissions: []string{"perm-1", "perm-2"},
		})

		assert.NoError(t, err)
		assert.NotNil(t, resp)
		assert.Equal(t, "Approvers", resp.Name)
		assert.Equal(t, []string{"perm-1", "perm-2"}, repo.updatedRolePerms[resp.ID])
	})

	t.Run("negative duplicate name", func(t *testing.T) {
		repo := newFakeRepo()
		repo.roles["role-1"] = &RoleRow{ID: "role-1", CompanyID: "company-1", Name: "Approvers"}
		service := NewService(repo, newTestEnforcer(t))

		_, err := service.CreateRole("company-1", domain.CreateRoleRequest{Name: "Approvers"})

		assert.ErrorIs(t, err, ErrRoleNameTaken)
	})
}

func TestRBACService_UpdateRolePermissions(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		repo := newFakeRepo()
		repo.roles["role-1"] = &RoleRow{ID: "role-1", CompanyID: "company-1", Name: "Approvers"}
		service := NewService(repo, newTestEnforcer(t))

		err := service.UpdateRolePermissions("company-1", "role-1", []string{"perm-9"})

		assert.NoError(t, err)
		assert.Equal(t, []string{"perm-9"}, repo.updatedRolePerms["role-1"])
	})

	t.Run("negative role from another company", func(t *testing.T) {
		repo := newFakeRepo()
		repo.roles["role-1"] = &RoleRow{ID: "role-1", CompanyID: "company-2", Name: "Approvers"}
		service := NewService(repo, newTestEnforcer(t))

		err := service.UpdateRolePermissions("company-1", "role-1", []string{"perm-9"})

		assert.ErrorIs(t, err, ErrRoleNotFound)
	})

	t.Run("negative unknown role", func(t *testing.T) {
		service := NewService(newFakeRepo(), newTestEnforcer(t))

		err := service.UpdateRolePermissions("company-1", "missing", nil)

		assert.ErrorIs(t, err, ErrRoleNotFound)
	})
}

func TestRBACService_AssignEmployeeRole(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		repo := newFakeRepo()
		repo.roles["role-1"] = &RoleRow{ID: "role-1", CompanyID: "company-1", Name: "Approvers"}
		service := NewService(repo, newTestEnforcer(t))

		err := service.AssignEmployeeRole("emp-1", "role-1")

		assert.NoError(t, err)
		assert.Equal(t, "role-1", repo.assignedRoles["emp-1"])
	})

	t.Run("negative unknown role", func(t *testing.T) {
		service := NewService(newFakeRepo(), newTestEnforcer(t))

		err := service.AssignEmployeeRole("emp-1", "missing")

		assert.ErrorIs(t, err, ErrRoleNotFound)
	})
}
