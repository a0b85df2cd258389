package employee_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"go-timeoff/internal/employee"
	employeeerrors "go-timeoff/internal/employee/errors"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeEmployeeRepository struct {
	createFn             func(ctx context.Context, empl *employee.Employee) error
	findAllByCompanyFn   func(ctx context.Context, companyID string) ([]employee.Employee, error)
	findByIDAndCompanyFn func(ctx context.Context, companyID, id string) (*employee.Employee, error)
	findByIDFn           func(ctx context.Context, id string) (*employee.Employee, error)
	updateFn             func(ctx context.Context, empl *employee.Employee) error
	deleteFn             func(ctx context.Context, companyID, id string) error
}

func (f *fakeEmployeeRepository) Create(ctx context.Context, empl *employee.Employee) error {
	if f.createFn != nil {
		return f.createFn(ctx, empl)
	}
	return nil
}

func (f *fakeEmployeeRepository) FindAllByCompany(ctx context.Context, companyID string) ([]employee.Employee, error) {
	if f.findAllByCompanyFn != nil {
		return f.findAllByCompanyFn(ctx, companyID)
	}
	return nil, nil
}

func (f *fakeEmployeeRepository) FindByIDAndCompany(ctx context.Context, companyID string, id string) (*employee.Employee, error) {
	if f.findByIDAndCompanyFn != nil {
		return f.findByIDAndCompanyFn(ctx, companyID, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeEmployeeRepository) FindByID(ctx context.Context, id string) (*employee.Employee, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeEmployeeRepository) Update(ctx context.Context, empl *employee.Employee) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, empl)
	}
	return nil
}

func (f *fakeEmployeeRepository) Delete(ctx context.Context, companyID string, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, companyID, id)
	}
	return nil
}

type fakeCounterRepository struct {
	getNextValueFn func(ctx context.Context, companyID, counterType string) (int64, error)
}

func (f *fakeCounterRepository) GetNextValue(ctx context.Context, companyID, counterType string) (int64, error) {
	if f.getNextValueFn != nil {
		return f.getNextValueFn(ctx, companyID, counterType)
	}
	return 1, nil
}

type employeeServiceDeps struct {
	service   employee.Service
	repo      *fakeEmployeeRepository
	counter   *fakeCounterRepository
	redisMock redismock.ClientMock
}

func setupEmployeeServiceTest(t *testing.T) *employeeServiceDeps {
	t.Helper()

	rdb, redisMock := redismock.NewClientMock()
	repo := &fakeEmployeeRepository{}
	counterRepo := &fakeCounterRepository{}

	svc := employee.NewService(repo, counterRepo, rdb)

	return &employeeServiceDeps{
		service:   svc,
		repo:      repo,
		counter:   counterRepo,
		redisMock: redisMock,
	}
}

func TestEmployeeService_Create(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()

	t.Run("auto-generates the employee number", func(t *testing.T) {
		deps := setupEmployeeServiceTest(t)

		deps.counter.getNextValueFn = func(ctx context.Context, cid, counterType string) (int64, error) {
			assert.Equal(t, companyID, cid)
			assert.Equal(t, "employee_number", counterType)
			return 7, nil
		}

		var created *employee.Employee
		deps.repo.createFn = func(ctx context.Context, empl *employee.Employee) error {
			created = empl
			return nil
		}

		deps.redisMock.ExpectDel(employee.OptionsKey(companyID)).SetVal(1)

		resp, err := deps.service.Create(ctx, companyID, employee.CreateEmployeeRequest{
			FullName: "Ana Silva",
			Email:    "ana@example.com",
			HireDate: "2024-05-01",
		})

		assert.NoError(t, err)
		assert.NotNil(t, created)
		assert.Equal(t, "EMP-000007", created.EmployeeNumber)
		assert.Equal(t, "ACTIVE", created.EmploymentStatus)
		assert.Equal(t, "EMP-000007", resp.EmployeeNumber)
		assert.NoError(t, deps.redisMock.ExpectationsWereMet())
	})

	t.Run("keeps an explicit employee number", func(t *testing.T) {
		deps := setupEmployeeServiceTest(t)

		var counterCalled bool
		deps.counter.getNextValueFn = func(ctx context.Context, cid, counterType string) (int64, error) {
			counterCalled = true
			return 1, nil
		}

		deps.redisMock.ExpectDel(employee.OptionsKey(companyID)).SetVal(1)

		resp, err := deps.service.Create(ctx, companyID, employee.CreateEmployeeRequest{
			FullName:       "Ana Silva",
			Email:          "ana@example.com",
			EmployeeNumber: "EXT-42",
			HireDate:       "2024-05-01",
		})

		assert.NoError(t, err)
		assert.False(t, counterCalled)
		assert.Equal(t, "EXT-42", resp.EmployeeNumber)
	})

	t.Run("negative invalid hire date", func(t *testing.T) {
		deps := setupEmployeeServiceTest(t)

		_, err := deps.service.Create(ctx, companyID, employee.CreateEmployeeRequest{
			FullName: "Ana Silva",
			Email:    "ana@example.com",
			HireDate: "01/05/2024",
		})

		assert.ErrorIs(t, err, employeeerrors.ErrInvalidHireDate)
	})

	t.Run("negative manager not found", func(t *testing.T) {
		deps := setupEmployeeServiceTest(t)

		_, err := deps.service.Create(ctx, companyID, employee.CreateEmployeeRequest{
			FullName:  "Ana Silva",
			Email:     "ana@example.com",
			HireDate:  "2024-05-01",
			ManagerID: uuid.New().String(),
		})

		assert.ErrorIs(t, err, employeeerrors.ErrManagerNotFound)
	})

	t.Run("negative duplicate email maps to conflict", func(t *testing.T) {
		deps := setupEmployeeServiceTest(t)

		deps.repo.createFn = func(ctx context.Context, empl *employee.Employee) error {
			return &pgconn.PgError{Code: "23505", ConstraintName: "uq_employee_email"}
		}

		_, err := deps.service.Create(ctx, companyID, employee.CreateEmployeeRequest{
			FullName: "Ana Silva",
			Email:    "ana@example.com",
			HireDate: "2024-05-01",
		})

		assert.ErrorIs(t, err, employeeerrors.ErrEmployeeAlreadyExists)
	})

	t.Run("negative duplicate number maps to conflict", func(t *testing.T) {
		deps := setupEmployeeServiceTest(t)

		deps.repo.createFn = func(ctx context.Context, empl *employee.Employee) error {
			return errors.New(`ERROR: duplicate key value violates unique constraint "uq_employee_number" (SQLSTATE 23505)`)
		}

		_, err := deps.service.Create(ctx, companyID, employee.CreateEmployeeRequest{
			FullName: "Ana Silva",
			Email:    "ana@example.com",
			HireDate: "2024-05-01",
		})

		assert.ErrorIs(t, err, employeeerrors.ErrEmployeeNumberAlreadyExists)
	})
}

func TestEmployeeService_GetOptions(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	cacheKey := employee.OptionsKey(companyID)

	t.Run("cache hit skips the repository", func(t *testing.T) {
		deps := setupEmployeeServiceTest(t)

		cached := []employee.EmployeeResponse{{ID: uuid.New().String(), FullName: "Ana Silva"}}
		payload, err := json.Marshal(cached)
		assert.NoError(t, err)
		deps.redisMock.ExpectGet(cacheKey).SetVal(string(payload))

		var repoCalled bool
		deps.repo.findAllByCompanyFn = func(ctx context.Context, cid string) ([]employee.Employee, error) {
			repoCalled = true
			return nil, nil
		}

		resp, err := deps.service.GetOptions(ctx, companyID)

		assert.NoError(t, err)
		assert.Len(t, resp, 1)
		assert.Equal(t, "Ana Silva", resp[0].FullName)
		assert.False(t, repoCalled)
		assert.NoError(t, deps.redisMock.ExpectationsWereMet())
	})

	t.Run("cache miss loads from the repository and refills", func(t *testing.T) {
		deps := setupEmployeeServiceTest(t)

		deps.redisMock.ExpectGet(cacheKey).RedisNil()

		rows := []employee.Employee{
			{
				ID:               uuid.New(),
				CompanyID:        uuid.MustParse(companyID),
				FullName:         "Bruno Costa",
				Email:            "bruno@example.com",
				EmployeeNumber:   "EMP-000002",
				HireDate:         time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
				EmploymentStatus: "ACTIVE",
			},
		}
		deps.repo.findAllByCompanyFn = func(ctx context.Context, cid string) ([]employee.Employee, error) {
			return rows, nil
		}

		deps.redisMock.Regexp().ExpectSet(cacheKey, `.*`, time.Hour).SetVal("OK")

		resp, err := deps.service.GetOptions(ctx, companyID)

		assert.NoError(t, err)
		assert.Len(t, resp, 1)
		assert.Equal(t, "Bruno Costa", resp[0].FullName)
		assert.Equal(t, "2024-05-01", resp[0].HireDate)
	})
}

func TestEmployeeService_Update(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	employeeID := uuid.New().String()

	existing := func() *employee.Employee {
		return &employee.Employee{
			ID:               uuid.MustParse(employeeID),
			CompanyID:        uuid.MustParse(companyID),
			FullName:         "Ana Silva",
			Email:            "ana@example.com",
			EmployeeNumber:   "EMP-000001",
			HireDate:         time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
			EmploymentStatus: "ACTIVE",
		}
	}

	t.Run("success", func(t *testing.T) {
		deps := setupEmployeeServiceTest(t)

		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*employee.Employee, error) {
			return existing(), nil
		}

		deps.redisMock.ExpectDel(employee.OptionsKey(companyID)).SetVal(1)

		resp, err := deps.service.Update(ctx, companyID, employeeID, employee.UpdateEmployeeRequest{
			FullName: "Ana Souza",
			Email:    "ana@example.com",
			HireDate: "2024-05-01",
		})

		assert.NoError(t, err)
		assert.Equal(t, "Ana Souza", resp.FullName)
	})

	t.Run("negative employee cannot manage themselves", func(t *testing.T) {
		deps := setupEmployeeServiceTest(t)

		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*employee.Employee, error) {
			return existing(), nil
		}

		_, err := deps.service.Update(ctx, companyID, employeeID, employee.UpdateEmployeeRequest{
			FullName:  "Ana Silva",
			Email:     "ana@example.com",
			HireDate:  "2024-05-01",
			ManagerID: employeeID,
		})

		assert.ErrorIs(t, err, employeeerrors.ErrManagerNotFound)
	})

	t.Run("negative not found", func(t *testing.T) {
		deps := setupEmployeeServiceTest(t)

		_, err := deps.service.Update(ctx, companyID, employeeID, employee.UpdateEmployeeRequest{
			FullName: "Ana Silva",
			Email:    "ana@example.com",
			HireDate: "2024-05-01",
		})

		assert.ErrorIs(t, err, employeeerrors.ErrEmployeeNotFound)
	})
}

func TestEmployeeService_Delete(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()

	t.Run("success invalidates the options cache", func(t *testing.T) {
		deps := setupEmployeeServiceTest(t)

		var deleted string
		deps.repo.deleteFn = func(ctx context.Context, cid, id string) error {
			deleted = id
			return nil
		}
		deps.redisMock.ExpectDel(employee.OptionsKey(companyID)).SetVal(1)

		id := uuid.New().String()
		err := deps.service.Delete(ctx, companyID, id)

		assert.NoError(t, err)
		assert.Equal(t, id, deleted)
		assert.NoError(t, deps.redisMock.ExpectationsWereMet())
	})

	t.Run("negative not found", func(t *testing.T) {
		deps := setupEmployeeServiceTest(t)

		deps.repo.deleteFn = func(ctx context.Context, cid, id string) error {
			return gorm.ErrRecordNotFound
		}

		err := deps.service.Delete(ctx, companyID, uuid.New().String())

		assert.ErrorIs(t, err, employeeerrors.ErrEmployeeNotFound)
	})
}
