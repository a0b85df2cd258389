package request_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"go-timeoff/internal/balance"
	"go-timeoff/internal/leavetype"
	"go-timeoff/internal/request"
	requesterrors "go-timeoff/internal/request/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeRequestRepository struct {
	withTxFn                 func(tx *sql.Tx) request.Repository
	createFn                 func(ctx context.Context, r *request.Request) error
	findAllByCompanyFn       func(ctx context.Context, companyID string) ([]request.Request, error)
	findByIDAndCompanyFn     func(ctx context.Context, companyID, id string) (*request.Request, error)
	employeeBelongsToCompany func(ctx context.Context, companyID, employeeID string) (bool, error)
	hasOverlappingIntervalFn func(ctx context.Context, companyID, employeeID string, startAt, endAt time.Time, statuses []string) (bool, error)
	updateStatusFn           func(ctx context.Context, id, newStatus, decidedBy string, rejectionReason *string, expectedStatus string) (bool, error)
	sumHoursInMonthFn        func(ctx context.Context, companyID, employeeID, typeID string, monthStart, monthEnd time.Time, statuses []string) (float64, error)
}

func (f *fakeRequestRepository) WithTx(tx *sql.Tx) request.Repository {
	if f.withTxFn != nil {
		return f.withTxFn(tx)
	}
	return f
}

func (f *fakeRequestRepository) Create(ctx context.Context, r *request.Request) error {
	if f.createFn != nil {
		return f.createFn(ctx, r)
	}
	return nil
}

func (f *fakeRequestRepository) FindAllByCompany(ctx context.Context, companyID string) ([]request.Request, error) {
	if f.findAllByCompanyFn != nil {
		return f.findAllByCompanyFn(ctx, companyID)
	}
	return nil, nil
}

func (f *fakeRequestRepository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*request.Request, error) {
	if f.findByIDAndCompanyFn != nil {
		return f.findByIDAndCompanyFn(ctx, companyID, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRequestRepository) EmployeeBelongsToCompany(ctx context.Context, companyID, employeeID string) (bool, error) {
	if f.employeeBelongsToCompany != nil {
		return f.employeeBelongsToCompany(ctx, companyID, employeeID)
	}
	return true, nil
}

func (f *fakeRequestRepository) HasOverlappingInterval(ctx context.Context, companyID, employeeID string, startAt, endAt time.Time, statuses []string) (bool, error) {
	if f.hasOverlappingIntervalFn != nil {
		return f.hasOverlappingIntervalFn(ctx, companyID, employeeID, startAt, endAt, statuses)
	}
	return false, nil
}

func (f *fakeRequestRepository) UpdateStatus(ctx context.Context, id, newStatus, decidedBy string, rejectionReason *string, expectedStatus string) (bool, error) {
	if f.updateStatusFn != nil {
		return f.updateStatusFn(ctx, id, newStatus, decidedBy, rejectionReason, expectedStatus)
	}
	return true, nil
}

func (f *fakeRequestRepository) SumHoursInMonth(ctx context.Context, companyID, employeeID, typeID string, monthStart, monthEnd time.Time, statuses []string) (float64, error) {
	if f.sumHoursInMonthFn != nil {
		return f.sumHoursInMonthFn(ctx, companyID, employeeID, typeID, monthStart, monthEnd, statuses)
	}
	return 0, nil
}

type fakeLeaveTypeRepository struct {
	findByIDAndCompanyFn func(ctx context.Context, companyID, id string) (*leavetype.LeaveType, error)
}

func (f *fakeLeaveTypeRepository) Create(context.Context, *leavetype.LeaveType) error { return nil }

func (f *fakeLeaveTypeRepository) FindAllByCompany(context.Context, string) ([]leavetype.LeaveType, error) {
	return nil, nil
}

func (f *fakeLeaveTypeRepository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*leavetype.LeaveType, error) {
	if f.findByIDAndCompanyFn != nil {
		return f.findByIDAndCompanyFn(ctx, companyID, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeLeaveTypeRepository) FindByNameAndCompany(context.Context, string, string) (*leavetype.LeaveType, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeLeaveTypeRepository) Update(context.Context, *leavetype.LeaveType) error { return nil }

func (f *fakeLeaveTypeRepository) Delete(context.Context, string, string) error { return nil }

type fakeBalanceRepository struct {
	findFn         func(ctx context.Context, companyID, employeeID, typeID string, year int) (*balance.LeaveBalance, error)
	tryDecrementFn func(ctx context.Context, companyID, employeeID, typeID string, year, days int) (bool, error)
}

func (f *fakeBalanceRepository) WithTx(tx *sql.Tx) balance.Repository { return f }

func (f *fakeBalanceRepository) Create(context.Context, *balance.LeaveBalance) error { return nil }

func (f *fakeBalanceRepository) Find(ctx context.Context, companyID, employeeID, typeID string, year int) (*balance.LeaveBalance, error) {
	if f.findFn != nil {
		return f.findFn(ctx, companyID, employeeID, typeID, year)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeBalanceRepository) FindAllByEmployee(context.Context, string, string) ([]balance.LeaveBalance, error) {
	return nil, nil
}

func (f *fakeBalanceRepository) TryDecrement(ctx context.Context, companyID, employeeID, typeID string, year, days int) (bool, error) {
	if f.tryDecrementFn != nil {
		return f.tryDecrementFn(ctx, companyID, employeeID, typeID, year, days)
	}
	return true, nil
}

func (f *fakeBalanceRepository) SetAllowance(context.Context, string, string, int) (bool, error) {
	return true, nil
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

type requestServiceDeps struct {
	db       *sql.DB
	sqlMock  sqlmock.Sqlmock
	service  request.Service
	repo     *fakeRequestRepository
	types    *fakeLeaveTypeRepository
	balances *fakeBalanceRepository
	counter  *fakeCounterRepository
}

func setupRequestServiceTest(t *testing.T) *requestServiceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)

	repo := &fakeRequestRepository{}
	types := &fakeLeaveTypeRepository{}
	balances := &fakeBalanceRepository{}
	counterRepo := &fakeCounterRepository{}

	svc := request.NewService(db, repo, types, balances, counterRepo)

	return &requestServiceDeps{
		db:       db,
		sqlMock:  sqlMock,
		service:  svc,
		repo:     repo,
		types:    types,
		balances: balances,
		counter:  counterRepo,
	}
}

func leaveType(companyID string, opts ...func(*leavetype.LeaveType)) *leavetype.LeaveType {
	t := &leavetype.LeaveType{
		ID:             uuid.New(),
		CompanyID:      uuid.MustParse(companyID),
		Name:           "Annual Leave",
		Category:       leavetype.CategoryLeave,
		MaxDays:        12,
		DeductsBalance: true,
		IsActive:       true,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func pendingRequest(companyID, employeeID, typeID string, startAt, endAt time.Time) *request.Request {
	return &request.Request{
		ID:            uuid.New(),
		CompanyID:     uuid.MustParse(companyID),
		EmployeeID:    uuid.MustParse(employeeID),
		TypeID:        uuid.MustParse(typeID),
		RequestNumber: "REQ-00001",
		StartAt:       startAt,
		EndAt:         endAt,
		Status:        request.StatusPending,
		CreatedBy:     uuid.MustParse(employeeID),
	}
}

func TestRequestService_Submit(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	actorID := uuid.New().String()
	employeeID := uuid.New().String()

	t.Run("success for leave type with sufficient balance", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		lt := leaveType(companyID)
		deps.types.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*leavetype.LeaveType, error) {
			assert.Equal(t, companyID, cid)
			return lt, nil
		}
		deps.balances.findFn = func(ctx context.Context, cid, eid, tid string, year int) (*balance.LeaveBalance, error) {
			assert.Equal(t, 2026, year)
			return &balance.LeaveBalance{TotalAllowed: 5, UsedDays: 0}, nil
		}

		var created *request.Request
		deps.repo.createFn = func(ctx context.Context, r *request.Request) error {
			created = r
			return nil
		}

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()

		resp, err := deps.service.Submit(ctx, companyID, actorID, request.SubmitRequestRequest{
			EmployeeID: employeeID,
			TypeID:     lt.ID.String(),
			StartAt:    "2026-01-10",
			EndAt:      "2026-01-12",
			Reason:     "Family trip",
		})

		assert.NoError(t, err)
		assert.NotNil(t, created)
		assert.Equal(t, request.StatusPending, created.Status)
		assert.Equal(t, "REQ-00001", created.RequestNumber)
		assert.Equal(t, request.StatusPending, resp.Status)
		assert.Nil(t, resp.DecidedBy)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("rejects inverted interval", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.Submit(ctx, companyID, actorID, request.SubmitRequestRequest{
			EmployeeID: employeeID,
			TypeID:     uuid.New().String(),
			StartAt:    "2026-01-12",
			EndAt:      "2026-01-10",
		})

		assert.ErrorIs(t, err, requesterrors.ErrInvalidInterval)
	})

	t.Run("rejects zero-length interval", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.Submit(ctx, companyID, actorID, request.SubmitRequestRequest{
			EmployeeID: employeeID,
			TypeID:     uuid.New().String(),
			StartAt:    "2026-01-10",
			EndAt:      "2026-01-10",
		})

		assert.ErrorIs(t, err, requesterrors.ErrInvalidInterval)
	})

	t.Run("rejects overlapping open request", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		lt := leaveType(companyID)
		deps.types.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*leavetype.LeaveType, error) {
			return lt, nil
		}
		deps.repo.hasOverlappingIntervalFn = func(ctx context.Context, cid, eid string, startAt, endAt time.Time, statuses []string) (bool, error) {
			assert.ElementsMatch(t, []string{request.StatusPending, request.StatusApproved}, statuses)
			assert.Equal(t, "2026-01-11", startAt.Format("2006-01-02"))
			assert.Equal(t, "2026-01-13", endAt.Format("2006-01-02"))
			return true, nil
		}

		_, err := deps.service.Submit(ctx, companyID, actorID, request.SubmitRequestRequest{
			EmployeeID: employeeID,
			TypeID:     lt.ID.String(),
			StartAt:    "2026-01-11",
			EndAt:      "2026-01-13",
		})

		assert.ErrorIs(t, err, requesterrors.ErrRequestOverlap)
	})

	t.Run("advisory balance check refuses oversized leave", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		lt := leaveType(companyID)
		deps.types.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*leavetype.LeaveType, error) {
			return lt, nil
		}
		deps.balances.findFn = func(ctx context.Context, cid, eid, tid string, year int) (*balance.LeaveBalance, error) {
			return &balance.LeaveBalance{TotalAllowed: 5, UsedDays: 3}, nil
		}

		_, err := deps.service.Submit(ctx, companyID, actorID, request.SubmitRequestRequest{
			EmployeeID: employeeID,
			TypeID:     lt.ID.String(),
			StartAt:    "2026-02-01",
			EndAt:      "2026-02-09",
		})

		assert.ErrorIs(t, err, requesterrors.ErrInsufficientBalance)
	})

	t.Run("leave without allocated balance", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		lt := leaveType(companyID)
		deps.types.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*leavetype.LeaveType, error) {
			return lt, nil
		}
		deps.balances.findFn = func(ctx context.Context, cid, eid, tid string, year int) (*balance.LeaveBalance, error) {
			return nil, gorm.ErrRecordNotFound
		}

		_, err := deps.service.Submit(ctx, companyID, actorID, request.SubmitRequestRequest{
			EmployeeID: employeeID,
			TypeID:     lt.ID.String(),
			StartAt:    "2026-02-01",
			EndAt:      "2026-02-03",
		})

		assert.ErrorIs(t, err, requesterrors.ErrBalanceNotAllocated)
	})

	t.Run("leave must cover whole days", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		lt := leaveType(companyID)
		deps.types.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*leavetype.LeaveType, error) {
			return lt, nil
		}

		_, err := deps.service.Submit(ctx, companyID, actorID, request.SubmitRequestRequest{
			EmployeeID: employeeID,
			TypeID:     lt.ID.String(),
			StartAt:    "2026-01-10T09:00:00Z",
			EndAt:      "2026-01-12T00:00:00Z",
		})

		assert.ErrorIs(t, err, requesterrors.ErrLeaveNotWholeDays)
	})

	t.Run("evidence required by type", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		lt := leaveType(companyID, func(lt *leavetype.LeaveType) {
			lt.RequiresEvidence = true
		})
		deps.types.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*leavetype.LeaveType, error) {
			return lt, nil
		}

		_, err := deps.service.Submit(ctx, companyID, actorID, request.SubmitRequestRequest{
			EmployeeID: employeeID,
			TypeID:     lt.ID.String(),
			StartAt:    "2026-01-10",
			EndAt:      "2026-01-11",
		})

		assert.ErrorIs(t, err, requesterrors.ErrEvidenceRequired)
	})

	t.Run("inactive type", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		lt := leaveType(companyID, func(lt *leavetype.LeaveType) {
			lt.IsActive = false
		})
		deps.types.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*leavetype.LeaveType, error) {
			return lt, nil
		}

		_, err := deps.service.Submit(ctx, companyID, actorID, request.SubmitRequestRequest{
			EmployeeID: employeeID,
			TypeID:     lt.ID.String(),
			StartAt:    "2026-01-10",
			EndAt:      "2026-01-11",
		})

		assert.ErrorIs(t, err, requesterrors.ErrTypeInactive)
	})

	t.Run("employee outside company", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		lt := leaveType(companyID)
		deps.types.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*leavetype.LeaveType, error) {
			return lt, nil
		}
		deps.repo.employeeBelongsToCompany = func(ctx context.Context, cid, eid string) (bool, error) {
			return false, nil
		}

		_, err := deps.service.Submit(ctx, companyID, actorID, request.SubmitRequestRequest{
			EmployeeID: employeeID,
			TypeID:     lt.ID.String(),
			StartAt:    "2026-01-10",
			EndAt:      "2026-01-11",
		})

		assert.ErrorIs(t, err, requesterrors.ErrEmployeeNotInCompany)
	})

	t.Run("permission over monthly hour cap", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		lt := leaveType(companyID, func(lt *leavetype.LeaveType) {
			lt.Category = leavetype.CategoryPermission
			lt.MonthlyHourLimit = 10
			lt.DeductsBalance = false
		})
		deps.types.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*leavetype.LeaveType, error) {
			return lt, nil
		}
		deps.repo.sumHoursInMonthFn = func(ctx context.Context, cid, eid, tid string, monthStart, monthEnd time.Time, statuses []string) (float64, error) {
			assert.Equal(t, "2026-03-01", monthStart.Format("2006-01-02"))
			assert.Equal(t, "2026-04-01", monthEnd.Format("2006-01-02"))
			return 8, nil
		}

		// 3 more hours on top of 8 used breaks the 10 hour cap.
		_, err := deps.service.Submit(ctx, companyID, actorID, request.SubmitRequestRequest{
			EmployeeID: employeeID,
			TypeID:     lt.ID.String(),
			StartAt:    "2026-03-05T09:00:00Z",
			EndAt:      "2026-03-05T12:00:00Z",
		})

		assert.ErrorIs(t, err, requesterrors.ErrInsufficientBalance)
	})

	t.Run("permission within monthly hour cap", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		lt := leaveType(companyID, func(lt *leavetype.LeaveType) {
			lt.Category = leavetype.CategoryPermission
			lt.MonthlyHourLimit = 10
			lt.DeductsBalance = false
		})
		deps.types.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*leavetype.LeaveType, error) {
			return lt, nil
		}
		deps.repo.sumHoursInMonthFn = func(ctx context.Context, cid, eid, tid string, monthStart, monthEnd time.Time, statuses []string) (float64, error) {
			return 6, nil
		}

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()

		resp, err := deps.service.Submit(ctx, companyID, actorID, request.SubmitRequestRequest{
			EmployeeID: employeeID,
			TypeID:     lt.ID.String(),
			StartAt:    "2026-03-05T09:00:00Z",
			EndAt:      "2026-03-05T12:00:00Z",
		})

		assert.NoError(t, err)
		assert.Equal(t, request.StatusPending, resp.Status)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestRequestService_Approve(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	approverID := uuid.New().String()
	employeeID := uuid.New().String()

	start := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 13, 0, 0, 0, 0, time.UTC)

	t.Run("approves and decrements exactly the requested days", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		lt := leaveType(companyID)
		r := pendingRequest(companyID, employeeID, lt.ID.String(), start, end)

		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*request.Request, error) {
			return r, nil
		}
		deps.types.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*leavetype.LeaveType, error) {
			return lt, nil
		}

		var updateCalled bool
		deps.repo.updateStatusFn = func(ctx context.Context, id, newStatus, decidedBy string, rejectionReason *string, expectedStatus string) (bool, error) {
			updateCalled = true
			assert.Equal(t, r.ID.String(), id)
			assert.Equal(t, request.StatusApproved, newStatus)
			assert.Equal(t, approverID, decidedBy)
			assert.Nil(t, rejectionReason)
			assert.Equal(t, request.StatusPending, expectedStatus)
			return true, nil
		}

		var decrementedDays int
		deps.balances.tryDecrementFn = func(ctx context.Context, cid, eid, tid string, year, days int) (bool, error) {
			decrementedDays = days
			assert.Equal(t, employeeID, eid)
			assert.Equal(t, 2026, year)
			return true, nil
		}

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()

		resp, err := deps.service.Approve(ctx, companyID, approverID, r.ID.String())

		assert.NoError(t, err)
		assert.True(t, updateCalled)
		assert.Equal(t, 3, decrementedDays)
		assert.Equal(t, request.StatusApproved, resp.Status)
		assert.NotNil(t, resp.DecidedBy)
		assert.Equal(t, approverID, *resp.DecidedBy)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("insufficient balance rolls the approval back", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		lt := leaveType(companyID)
		longEnd := start.AddDate(0, 0, 8)
		r := pendingRequest(companyID, employeeID, lt.ID.String(), start, longEnd)

		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*request.Request, error) {
			return r, nil
		}
		deps.types.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*leavetype.LeaveType, error) {
			return lt, nil
		}
		deps.balances.tryDecrementFn = func(ctx context.Context, cid, eid, tid string, year, days int) (bool, error) {
			assert.Equal(t, 8, days)
			return false, nil
		}

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectRollback()

		_, err := deps.service.Approve(ctx, companyID, approverID, r.ID.String())

		assert.ErrorIs(t, err, requesterrors.ErrInsufficientBalance)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("already rejected request", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		lt := leaveType(companyID)
		r := pendingRequest(companyID, employeeID, lt.ID.String(), start, end)
		r.Status = request.StatusRejected

		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*request.Request, error) {
			return r, nil
		}

		_, err := deps.service.Approve(ctx, companyID, approverID, r.ID.String())

		assert.ErrorIs(t, err, requesterrors.ErrInvalidStatusTransition)
	})

	t.Run("concurrent decision loses the conditional update", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		lt := leaveType(companyID)
		r := pendingRequest(companyID, employeeID, lt.ID.String(), start, end)

		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*request.Request, error) {
			return r, nil
		}
		deps.types.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*leavetype.LeaveType, error) {
			return lt, nil
		}
		// Another approver flipped the row between the read and the write.
		deps.repo.updateStatusFn = func(ctx context.Context, id, newStatus, decidedBy string, rejectionReason *string, expectedStatus string) (bool, error) {
			return false, nil
		}

		var decrementCalled bool
		deps.balances.tryDecrementFn = func(ctx context.Context, cid, eid, tid string, year, days int) (bool, error) {
			decrementCalled = true
			return true, nil
		}

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectRollback()

		_, err := deps.service.Approve(ctx, companyID, approverID, r.ID.String())

		assert.ErrorIs(t, err, requesterrors.ErrInvalidStatusTransition)
		assert.False(t, decrementCalled)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("permission approval re-checks the monthly cap in the transaction", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		lt := leaveType(companyID, func(lt *leavetype.LeaveType) {
			lt.Category = leavetype.CategoryPermission
			lt.MonthlyHourLimit = 10
			lt.DeductsBalance = false
		})
		permStart := time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC)
		permEnd := time.Date(2026, 3, 5, 12, 0, 0, 0, time.UTC)
		r := pendingRequest(companyID, employeeID, lt.ID.String(), permStart, permEnd)

		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*request.Request, error) {
			return r, nil
		}
		deps.types.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*leavetype.LeaveType, error) {
			return lt, nil
		}
		deps.repo.sumHoursInMonthFn = func(ctx context.Context, cid, eid, tid string, monthStart, monthEnd time.Time, statuses []string) (float64, error) {
			assert.Equal(t, []string{request.StatusApproved}, statuses)
			return 12, nil
		}

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectRollback()

		_, err := deps.service.Approve(ctx, companyID, approverID, r.ID.String())

		assert.ErrorIs(t, err, requesterrors.ErrInsufficientBalance)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("request not found", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.Approve(ctx, companyID, approverID, uuid.New().String())

		assert.ErrorIs(t, err, requesterrors.ErrRequestNotFound)
	})
}

func TestRequestService_Reject(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	approverID := uuid.New().String()
	employeeID := uuid.New().String()

	start := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 13, 0, 0, 0, 0, time.UTC)

	t.Run("rejects with reason and touches no balance", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		lt := leaveType(companyID)
		r := pendingRequest(companyID, employeeID, lt.ID.String(), start, end)

		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*request.Request, error) {
			return r, nil
		}

		var gotReason string
		deps.repo.updateStatusFn = func(ctx context.Context, id, newStatus, decidedBy string, rejectionReason *string, expectedStatus string) (bool, error) {
			assert.Equal(t, request.StatusRejected, newStatus)
			assert.Equal(t, request.StatusPending, expectedStatus)
			if assert.NotNil(t, rejectionReason) {
				gotReason = *rejectionReason
			}
			return true, nil
		}

		var decrementCalled bool
		deps.balances.tryDecrementFn = func(ctx context.Context, cid, eid, tid string, year, days int) (bool, error) {
			decrementCalled = true
			return true, nil
		}

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectCommit()

		resp, err := deps.service.Reject(ctx, companyID, approverID, r.ID.String(), "Team is at capacity")

		assert.NoError(t, err)
		assert.Equal(t, request.StatusRejected, resp.Status)
		assert.Equal(t, "Team is at capacity", gotReason)
		assert.NotNil(t, resp.DecidedBy)
		assert.False(t, decrementCalled)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("requires a rejection reason", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.Reject(ctx, companyID, approverID, uuid.New().String(), "   ")

		assert.ErrorIs(t, err, requesterrors.ErrRejectionReasonRequired)
	})

	t.Run("already approved request", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		lt := leaveType(companyID)
		r := pendingRequest(companyID, employeeID, lt.ID.String(), start, end)
		r.Status = request.StatusApproved

		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*request.Request, error) {
			return r, nil
		}

		_, err := deps.service.Reject(ctx, companyID, approverID, r.ID.String(), "Too late")

		assert.ErrorIs(t, err, requesterrors.ErrInvalidStatusTransition)
	})
}

func TestRequestService_GetByID(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	employeeID := uuid.New().String()

	t.Run("not found", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.GetByID(ctx, companyID, uuid.New().String())

		assert.ErrorIs(t, err, requesterrors.ErrRequestNotFound)
	})

	t.Run("found", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		r := pendingRequest(companyID, employeeID, uuid.New().String(),
			time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
			time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC),
		)
		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*request.Request, error) {
			assert.Equal(t, r.ID.String(), id)
			return r, nil
		}

		resp, err := deps.service.GetByID(ctx, companyID, r.ID.String())

		assert.NoError(t, err)
		assert.Equal(t, r.ID.String(), resp.ID)
		assert.Equal(t, request.StatusPending, resp.Status)
	})
}
