package leavetype

import (
	"context"
	"errors"

	leavetypeerrors "go-timeoff/internal/leavetype/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=leavetype_service.go -destination=mock/leavetype_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, companyID string, req CreateLeaveTypeRequest) (LeaveTypeResponse, error)
	GetAll(ctx context.Context, companyID string) ([]LeaveTypeResponse, error)
	GetByID(ctx context.Context, companyID, id string) (LeaveTypeResponse, error)
	Update(ctx context.Context, companyID, id string, req UpdateLeaveTypeRequest) (LeaveTypeResponse, error)
	Delete(ctx context.Context, companyID, id string) error
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("leavetype.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leavetype.service")
	}
	return &service{repo: repo, logger: l}
}

func (s *service) Create(ctx context.Context, companyID string, req CreateLeaveTypeRequest) (LeaveTypeResponse, error) {
	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return LeaveTypeResponse{}, leavetypeerrors.ErrInvalidCompanyID
	}

	if err := validateCategoryRules(req.Category, req.MaxDays, req.MonthlyHourLimit); err != nil {
		return LeaveTypeResponse{}, err
	}

	if existing, err := s.repo.FindByNameAndCompany(ctx, companyID, req.Name); err == nil && existing != nil {
		return LeaveTypeResponse{}, leavetypeerrors.ErrTypeNameTaken
	}

	deducts := req.Category == CategoryLeave
	if req.DeductsBalance != nil {
		deducts = *req.DeductsBalance
	}

	t := &LeaveType{
		ID:               uuid.New(),
		CompanyID:        companyUUID,
		Name:             req.Name,
		Category:         req.Category,
		MaxDays:          req.MaxDays,
		MonthlyHourLimit: req.MonthlyHourLimit,
		DeductsBalance:   deducts,
		RequiresEvidence: req.RequiresEvidence,
		IsActive:         true,
	}

	if err := s.repo.Create(ctx, t); err != nil {
		s.logger.Error("create leave type persist failed", zap.Error(err))
		return LeaveTypeResponse{}, err
	}

	s.logger.Info("leave type created",
		zap.String("type_id", t.ID.String()),
		zap.String("company_id", companyID),
		zap.String("category", t.Category),
	)
	return mapToResponse(*t), nil
}

func (s *service) GetAll(ctx context.Context, companyID string) ([]LeaveTypeResponse, error) {
	types, err := s.repo.FindAllByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}

	resp := make([]LeaveTypeResponse, len(types))
	for i, t := range types {
		resp[i] = mapToResponse(t)
	}
	return resp, nil
}

func (s *service) GetByID(ctx context.Context, companyID, id string) (LeaveTypeResponse, error) {
	t, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveTypeResponse{}, leavetypeerrors.ErrTypeNotFound
		}
		return LeaveTypeResponse{}, err
	}
	return mapToResponse(*t), nil
}

func (s *service) Update(ctx context.Context, companyID, id string, req UpdateLeaveTypeRequest) (LeaveTypeResponse, error) {
	t, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveTypeResponse{}, leavetypeerrors.ErrTypeNotFound
		}
		return LeaveTypeResponse{}, err
	}

	if err := validateCategoryRules(t.Category, req.MaxDays, req.MonthlyHourLimit); err != nil {
		return LeaveTypeResponse{}, err
	}

	t.Name = req.Name
	t.MaxDays = req.MaxDays
	t.MonthlyHourLimit = req.MonthlyHourLimit
	t.RequiresEvidence = req.RequiresEvidence
	if req.DeductsBalance != nil {
		t.DeductsBalance = *req.DeductsBalance
	}
	if req.IsActive != nil {
		t.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, t); err != nil {
		s.logger.Error("update leave type persist failed",
			zap.String("type_id", id),
			zap.Error(err),
		)
		return LeaveTypeResponse{}, err
	}

	return mapToResponse(*t), nil
}

func (s *service) Delete(ctx context.Context, companyID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return leavetypeerrors.ErrInvalidTypeID
	}
	return s.repo.Delete(ctx, companyID, id)
}

func validateCategoryRules(category string, maxDays int, monthlyHourLimit float64) error {
	switch category {
	case CategoryLeave:
		if maxDays <= 0 {
			return leavetypeerrors.ErrMaxDaysRequired
		}
	case CategoryPermission:
		if monthlyHourLimit <= 0 {
			return leavetypeerrors.ErrMonthlyLimitRequired
		}
	}
	return nil
}

func mapToResponse(t LeaveType) LeaveTypeResponse {
	return LeaveTypeResponse{
		ID:               t.ID.String(),
		CompanyID:        t.CompanyID.String(),
		Name:             t.Name,
		Category:         t.Category,
		MaxDays:          t.MaxDays,
		MonthlyHourLimit: t.MonthlyHourLimit,
		DeductsBalance:   t.DeductsBalance,
		RequiresEvidence: t.RequiresEvidence,
		IsActive:         t.IsActive,
	}
}
