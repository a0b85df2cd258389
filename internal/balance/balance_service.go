package balance

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	balanceerrors "go-timeoff/internal/balance/errors"
	leavetypeerrors "go-timeoff/internal/leavetype/errors"

	"go-timeoff/internal/leavetype"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const SummaryKeyPrefix = "balances:summary:"

// SummaryKey is shared with the request workflow so an approval can
// invalidate the cached summary after it decrements a balance.
func SummaryKey(companyID, employeeID string) string {
	return SummaryKeyPrefix + companyID + ":" + employeeID
}

const summaryTTL = 5 * time.Minute

//go:generate mockgen -source=balance_service.go -destination=mock/balance_service_mock.go -package=mock
type Service interface {
	Allocate(ctx context.Context, companyID string, req AllocateBalanceRequest) (BalanceResponse, error)
	Adjust(ctx context.Context, companyID, id string, req AdjustBalanceRequest) error
	GetSummary(ctx context.Context, companyID, employeeID string) ([]BalanceResponse, error)
}

type service struct {
	repo   Repository
	types  leavetype.Repository
	rdb    *redis.Client
	sf     *singleflight.Group
	logger *zap.Logger
}

func NewService(repo Repository, types leavetype.Repository, rdb *redis.Client, logger ...*zap.Logger) Service {
	l := zap.L().Named("balance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("balance.service")
	}
	return &service{
		repo:   repo,
		types:  types,
		rdb:    rdb,
		sf:     &singleflight.Group{},
		logger: l,
	}
}

func (s *service) Allocate(ctx context.Context, companyID string, req AllocateBalanceRequest) (BalanceResponse, error) {
	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return BalanceResponse{}, balanceerrors.ErrInvalidCompanyID
	}
	employeeUUID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		return BalanceResponse{}, balanceerrors.ErrInvalidEmployeeID
	}
	typeUUID, err := uuid.Parse(req.TypeID)
	if err != nil {
		return BalanceResponse{}, leavetypeerrors.ErrInvalidTypeID
	}

	t, err := s.types.FindByIDAndCompany(ctx, companyID, req.TypeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return BalanceResponse{}, leavetypeerrors.ErrTypeNotFound
		}
		return BalanceResponse{}, err
	}

	if _, err := s.repo.Find(ctx, companyID, req.EmployeeID, req.TypeID, req.Year); err == nil {
		return BalanceResponse{}, balanceerrors.ErrBalanceAlreadyAllocated
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return BalanceResponse{}, err
	}

	totalAllowed := req.TotalAllowed
	if totalAllowed == 0 {
		// Default to the type's annual allowance.
		totalAllowed = t.MaxDays
	}

	b := &LeaveBalance{
		ID:           uuid.New(),
		CompanyID:    companyUUID,
		EmployeeID:   employeeUUID,
		TypeID:       typeUUID,
		Year:         req.Year,
		TotalAllowed: totalAllowed,
		UsedDays:     0,
	}

	if err := s.repo.Create(ctx, b); err != nil {
		s.logger.Error("allocate balance persist failed", zap.Error(err))
		return BalanceResponse{}, err
	}

	s.invalidateSummary(ctx, companyID, req.EmployeeID)

	s.logger.Info("balance allocated",
		zap.String("company_id", companyID),
		zap.String("employee_id", req.EmployeeID),
		zap.String("type_id", req.TypeID),
		zap.Int("year", req.Year),
		zap.Int("total_allowed", totalAllowed),
	)
	return mapToResponse(*b), nil
}

func (s *service) Adjust(ctx context.Context, companyID, id string, req AdjustBalanceRequest) error {
	ok, err := s.repo.SetAllowance(ctx, companyID, id, req.TotalAllowed)
	if err != nil {
		s.logger.Error("adjust balance failed", zap.String("balance_id", id), zap.Error(err))
		return err
	}
	if !ok {
		return balanceerrors.ErrAllowanceBelowUsage
	}

	// Summary caches expire via TTL; direct invalidation happens on the
	// allocate/approve paths where the employee id is at hand.
	s.logger.Info("balance adjusted",
		zap.String("company_id", companyID),
		zap.String("balance_id", id),
		zap.Int("total_allowed", req.TotalAllowed),
	)
	return nil
}

func (s *service) GetSummary(ctx context.Context, companyID, employeeID string) ([]BalanceResponse, error) {
	cacheKey := SummaryKey(companyID, employeeID)

	if s.rdb != nil {
		cached, err := s.rdb.Get(ctx, cacheKey).Result()
		if err == nil {
			var resp []BalanceResponse
			if err := json.Unmarshal([]byte(cached), &resp); err == nil {
				return resp, nil
			}
		}
	}

	v, err, _ := s.sf.Do(cacheKey, func() (interface{}, error) {
		balances, err := s.repo.FindAllByEmployee(ctx, companyID, employeeID)
		if err != nil {
			return nil, err
		}

		resp := make([]BalanceResponse, len(balances))
		for i, b := range balances {
			resp[i] = mapToResponse(b)
		}

		if s.rdb != nil {
			if payload, err := json.Marshal(resp); err == nil {
				if err := s.rdb.Set(ctx, cacheKey, payload, summaryTTL).Err(); err != nil {
					s.logger.Warn("cache balance summary failed", zap.Error(err))
				}
			}
		}

		return resp, nil
	})
	if err != nil {
		return nil, err
	}

	return v.([]BalanceResponse), nil
}

func (s *service) invalidateSummary(ctx context.Context, companyID, employeeID string) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, SummaryKey(companyID, employeeID)).Err(); err != nil {
		s.logger.Warn("invalidate balance summary failed",
			zap.String("employee_id", employeeID),
			zap.Error(err),
		)
	}
}

func mapToResponse(b LeaveBalance) BalanceResponse {
	return BalanceResponse{
		ID:           b.ID.String(),
		CompanyID:    b.CompanyID.String(),
		EmployeeID:   b.EmployeeID.String(),
		TypeID:       b.TypeID.String(),
		Year:         b.Year,
		TotalAllowed: b.TotalAllowed,
		UsedDays:     b.UsedDays,
		Remaining:    b.TotalAllowed - b.UsedDays,
	}
}
