package request

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-timeoff/internal/balance"
	"go-timeoff/internal/events"
	"go-timeoff/internal/leavetype"
	"go-timeoff/internal/messaging/kafka"
	requesterrors "go-timeoff/internal/request/errors"
	"go-timeoff/internal/shared/contextutil"
	"go-timeoff/internal/shared/counter"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// openStatuses are the states that block new overlapping requests and count
// toward advisory usage sums. Rejected requests block nothing.
var openStatuses = []string{StatusPending, StatusApproved}

//go:generate mockgen -source=request_service.go -destination=mock/request_service_mock.go -package=mock
type Service interface {
	Submit(ctx context.Context, companyID, actorID string, req SubmitRequestRequest) (RequestResponse, error)
	GetAll(ctx context.Context, companyID string) ([]RequestResponse, error)
	GetByID(ctx context.Context, companyID, id string) (RequestResponse, error)
	Approve(ctx context.Context, companyID, actorID, id string) (RequestResponse, error)
	Reject(ctx context.Context, companyID, actorID, id, rejectionReason string) (RequestResponse, error)
}

type service struct {
	db       *sql.DB
	repo     Repository
	types    leavetype.Repository
	balances balance.Repository
	counter  counter.Repository
	outbox   kafka.OutboxRepository
	rdb      *redis.Client
	logger   *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	types leavetype.Repository,
	balances balance.Repository,
	counterRepo counter.Repository,
	logger ...*zap.Logger,
) Service {
	return NewServiceWithOutbox(db, repo, types, balances, counterRepo, nil, nil, logger...)
}

func NewServiceWithOutbox(
	db *sql.DB,
	repo Repository,
	types leavetype.Repository,
	balances balance.Repository,
	counterRepo counter.Repository,
	outboxRepo kafka.OutboxRepository,
	rdb *redis.Client,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("request.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("request.service")
	}
	return &service{
		db:       db,
		repo:     repo,
		types:    types,
		balances: balances,
		counter:  counterRepo,
		outbox:   outboxRepo,
		rdb:      rdb,
		logger:   l,
	}
}

func (s *service) Submit(ctx context.Context, companyID, actorID string, req SubmitRequestRequest) (RequestResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("submit request requested",
		zap.String("request_id", rid),
		zap.String("company_id", companyID),
		zap.String("actor_id", actorID),
		zap.String("employee_id", req.EmployeeID),
		zap.String("type_id", req.TypeID),
	)

	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return RequestResponse{}, requesterrors.ErrInvalidCompanyID
	}
	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return RequestResponse{}, requesterrors.ErrInvalidActorID
	}
	employeeUUID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		return RequestResponse{}, requesterrors.ErrInvalidEmployeeID
	}
	typeUUID, err := uuid.Parse(req.TypeID)
	if err != nil {
		return RequestResponse{}, requesterrors.ErrTypeNotFound
	}

	startAt, err := parseTimestamp(req.StartAt)
	if err != nil {
		return RequestResponse{}, err
	}
	endAt, err := parseTimestamp(req.EndAt)
	if err != nil {
		return RequestResponse{}, err
	}
	if !startAt.Before(endAt) {
		return RequestResponse{}, requesterrors.ErrInvalidInterval
	}

	t, err := s.types.FindByIDAndCompany(ctx, companyID, req.TypeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return RequestResponse{}, requesterrors.ErrTypeNotFound
		}
		return RequestResponse{}, err
	}
	if !t.IsActive {
		return RequestResponse{}, requesterrors.ErrTypeInactive
	}

	if t.Category == leavetype.CategoryLeave && (!isMidnightUTC(startAt) || !isMidnightUTC(endAt)) {
		return RequestResponse{}, requesterrors.ErrLeaveNotWholeDays
	}

	evidence := strings.TrimSpace(req.EvidenceNote)
	if t.RequiresEvidence && evidence == "" {
		return RequestResponse{}, requesterrors.ErrEvidenceRequired
	}

	belongs, err := s.repo.EmployeeBelongsToCompany(ctx, companyID, req.EmployeeID)
	if err != nil {
		s.logger.Error("submit request employee company check failed", zap.Error(err))
		return RequestResponse{}, err
	}
	if !belongs {
		return RequestResponse{}, requesterrors.ErrEmployeeNotInCompany
	}

	overlap, err := s.repo.HasOverlappingInterval(ctx, companyID, req.EmployeeID, startAt, endAt, openStatuses)
	if err != nil {
		s.logger.Error("submit request overlap check failed", zap.Error(err))
		return RequestResponse{}, err
	}
	if overlap {
		s.logger.Warn("submit request overlap detected",
			zap.String("company_id", companyID),
			zap.String("employee_id", req.EmployeeID),
			zap.Time("start_at", startAt),
			zap.Time("end_at", endAt),
		)
		return RequestResponse{}, requesterrors.ErrRequestOverlap
	}

	// Advisory allowance check. Nothing is reserved here: the authoritative
	// enforcement is the conditional decrement at approval time.
	if err := s.checkAllowance(ctx, companyID, req.EmployeeID, req.TypeID, t, startAt, endAt); err != nil {
		return RequestResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("submit request begin tx failed", zap.Error(err))
		return RequestResponse{}, err
	}
	defer tx.Rollback()

	nextVal, err := s.counter.GetNextValue(ctx, companyID, "request_number")
	if err != nil {
		s.logger.Error("submit request generate number failed", zap.Error(err))
		return RequestResponse{}, err
	}

	var evidencePtr *string
	if evidence != "" {
		evidencePtr = &evidence
	}

	r := &Request{
		ID:            uuid.New(),
		CompanyID:     companyUUID,
		EmployeeID:    employeeUUID,
		TypeID:        typeUUID,
		RequestNumber: fmt.Sprintf("REQ-%05d", nextVal),
		StartAt:       startAt,
		EndAt:         endAt,
		Reason:        req.Reason,
		EvidenceNote:  evidencePtr,
		Status:        StatusPending,
		CreatedBy:     actorUUID,
	}

	qtx := s.repo.WithTx(tx)
	if err := qtx.Create(ctx, r); err != nil {
		s.logger.Error("submit request persist failed", zap.Error(err))
		return RequestResponse{}, err
	}

	if err := s.writeSubmittedEvent(ctx, tx, r); err != nil {
		s.logger.Error("submit request outbox write failed", zap.Error(err))
		return RequestResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("submit request commit failed", zap.Error(err))
		return RequestResponse{}, err
	}

	s.logger.Info("request submitted",
		zap.String("request_id", rid),
		zap.String("id", r.ID.String()),
		zap.String("request_number", r.RequestNumber),
		zap.String("company_id", companyID),
		zap.String("employee_id", req.EmployeeID),
	)
	return mapToResponse(*r), nil
}

func (s *service) checkAllowance(
	ctx context.Context,
	companyID, employeeID, typeID string,
	t *leavetype.LeaveType,
	startAt, endAt time.Time,
) error {
	switch t.Category {
	case leavetype.CategoryLeave:
		if !t.DeductsBalance {
			return nil
		}
		bal, err := s.balances.Find(ctx, companyID, employeeID, typeID, startAt.Year())
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return requesterrors.ErrBalanceNotAllocated
			}
			return err
		}
		days := leaveDays(startAt, endAt)
		if bal.UsedDays+days > bal.TotalAllowed {
			return requesterrors.ErrInsufficientBalance
		}
	case leavetype.CategoryPermission:
		if t.MonthlyHourLimit <= 0 {
			return nil
		}
		monthStart, monthEnd := monthBounds(startAt)
		used, err := s.repo.SumHoursInMonth(ctx, companyID, employeeID, typeID, monthStart, monthEnd, openStatuses)
		if err != nil {
			return err
		}
		if used+endAt.Sub(startAt).Hours() > t.MonthlyHourLimit {
			return requesterrors.ErrInsufficientBalance
		}
	}
	return nil
}

func (s *service) GetAll(ctx context.Context, companyID string) ([]RequestResponse, error) {
	requests, err := s.repo.FindAllByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}

	resp := make([]RequestResponse, len(requests))
	for i, r := range requests {
		resp[i] = mapToResponse(r)
	}
	return resp, nil
}

func (s *service) GetByID(ctx context.Context, companyID, id string) (RequestResponse, error) {
	r, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return RequestResponse{}, requesterrors.ErrRequestNotFound
		}
		return RequestResponse{}, err
	}
	return mapToResponse(*r), nil
}

func (s *service) Approve(ctx context.Context, companyID, actorID, id string) (RequestResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("approve request requested",
		zap.String("request_id", rid),
		zap.String("id", id),
		zap.String("company_id", companyID),
		zap.String("actor_id", actorID),
	)

	if _, err := uuid.Parse(companyID); err != nil {
		return RequestResponse{}, requesterrors.ErrInvalidCompanyID
	}
	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return RequestResponse{}, requesterrors.ErrInvalidActorID
	}

	r, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return RequestResponse{}, requesterrors.ErrRequestNotFound
		}
		return RequestResponse{}, err
	}
	if !IsAllowedStatusTransition(r.Status, StatusApproved) {
		return RequestResponse{}, requesterrors.ErrInvalidStatusTransition
	}

	t, err := s.types.FindByIDAndCompany(ctx, companyID, r.TypeID.String())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return RequestResponse{}, requesterrors.ErrTypeNotFound
		}
		return RequestResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("approve request begin tx failed", zap.Error(err))
		return RequestResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	// The status flip and its precondition are one conditional write; a
	// concurrent approver loses here, not at the earlier read.
	ok, err := qtx.UpdateStatus(ctx, id, StatusApproved, actorID, nil, StatusPending)
	if err != nil {
		s.logger.Error("approve request status update failed", zap.Error(err))
		return RequestResponse{}, err
	}
	if !ok {
		s.logger.Warn("approve request lost transition race",
			zap.String("id", id),
			zap.String("company_id", companyID),
		)
		return RequestResponse{}, requesterrors.ErrInvalidStatusTransition
	}

	deductedBalance := false
	switch t.Category {
	case leavetype.CategoryLeave:
		if t.DeductsBalance {
			days := leaveDays(r.StartAt, r.EndAt)
			ok, err := s.balances.WithTx(tx).TryDecrement(ctx, companyID, r.EmployeeID.String(), r.TypeID.String(), r.StartAt.Year(), days)
			if err != nil {
				s.logger.Error("approve request balance decrement failed", zap.Error(err))
				return RequestResponse{}, err
			}
			if !ok {
				// Rolling back leaves the request PENDING; approvals that
				// consumed the balance meanwhile win.
				s.logger.Warn("approve request insufficient balance",
					zap.String("id", id),
					zap.Int("days", days),
				)
				return RequestResponse{}, requesterrors.ErrInsufficientBalance
			}
			deductedBalance = true
		}
	case leavetype.CategoryPermission:
		if t.MonthlyHourLimit > 0 {
			monthStart, monthEnd := monthBounds(r.StartAt)
			total, err := qtx.SumHoursInMonth(ctx, companyID, r.EmployeeID.String(), r.TypeID.String(), monthStart, monthEnd, []string{StatusApproved})
			if err != nil {
				s.logger.Error("approve request monthly usage sum failed", zap.Error(err))
				return RequestResponse{}, err
			}
			// The sum runs inside this transaction and therefore already
			// includes the request approved above.
			if total > t.MonthlyHourLimit {
				s.logger.Warn("approve request monthly hour cap exceeded",
					zap.String("id", id),
					zap.Float64("total_hours", total),
					zap.Float64("limit", t.MonthlyHourLimit),
				)
				return RequestResponse{}, requesterrors.ErrInsufficientBalance
			}
		}
	}

	if err := s.writeDecidedEvent(ctx, tx, r, StatusApproved, actorID); err != nil {
		s.logger.Error("approve request outbox write failed", zap.Error(err))
		return RequestResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("approve request commit failed", zap.Error(err))
		return RequestResponse{}, err
	}

	if deductedBalance {
		s.invalidateBalanceSummary(ctx, companyID, r.EmployeeID.String())
	}

	now := time.Now().UTC()
	r.Status = StatusApproved
	r.DecidedBy = &actorUUID
	r.DecidedAt = &now

	s.logger.Info("request approved",
		zap.String("id", id),
		zap.String("company_id", companyID),
		zap.String("decided_by", actorID),
	)
	return mapToResponse(*r), nil
}

func (s *service) Reject(ctx context.Context, companyID, actorID, id, rejectionReason string) (RequestResponse, error) {
	if _, err := uuid.Parse(companyID); err != nil {
		return RequestResponse{}, requesterrors.ErrInvalidCompanyID
	}
	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return RequestResponse{}, requesterrors.ErrInvalidActorID
	}
	if strings.TrimSpace(rejectionReason) == "" {
		return RequestResponse{}, requesterrors.ErrRejectionReasonRequired
	}

	r, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return RequestResponse{}, requesterrors.ErrRequestNotFound
		}
		return RequestResponse{}, err
	}
	if !IsAllowedStatusTransition(r.Status, StatusRejected) {
		return RequestResponse{}, requesterrors.ErrInvalidStatusTransition
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("reject request begin tx failed", zap.Error(err))
		return RequestResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	ok, err := qtx.UpdateStatus(ctx, id, StatusRejected, actorID, &rejectionReason, StatusPending)
	if err != nil {
		s.logger.Error("reject request status update failed", zap.Error(err))
		return RequestResponse{}, err
	}
	if !ok {
		return RequestResponse{}, requesterrors.ErrInvalidStatusTransition
	}

	if err := s.writeDecidedEvent(ctx, tx, r, StatusRejected, actorID); err != nil {
		s.logger.Error("reject request outbox write failed", zap.Error(err))
		return RequestResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("reject request commit failed", zap.Error(err))
		return RequestResponse{}, err
	}

	now := time.Now().UTC()
	r.Status = StatusRejected
	r.DecidedBy = &actorUUID
	r.DecidedAt = &now
	r.RejectionReason = &rejectionReason

	s.logger.Info("request rejected",
		zap.String("id", id),
		zap.String("company_id", companyID),
		zap.String("decided_by", actorID),
	)
	return mapToResponse(*r), nil
}

func (s *service) writeSubmittedEvent(ctx context.Context, tx *sql.Tx, r *Request) error {
	if s.outbox == nil {
		return nil
	}

	payload, err := json.Marshal(events.RequestSubmittedEvent{
		EventType:  "request.submitted",
		RequestID:  r.ID.String(),
		CompanyID:  r.CompanyID.String(),
		EmployeeID: r.EmployeeID.String(),
		TypeID:     r.TypeID.String(),
		StartAt:    r.StartAt,
		EndAt:      r.EndAt,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	return s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     contextutil.GetRequestID(ctx),
		AggregateType: "request",
		AggregateID:   r.ID.String(),
		EventType:     "request.submitted",
		Topic:         events.RequestSubmittedTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	})
}

func (s *service) writeDecidedEvent(ctx context.Context, tx *sql.Tx, r *Request, status, actorID string) error {
	if s.outbox == nil {
		return nil
	}

	payload, err := json.Marshal(events.RequestDecidedEvent{
		EventType:  "request.decided",
		RequestID:  r.ID.String(),
		CompanyID:  r.CompanyID.String(),
		EmployeeID: r.EmployeeID.String(),
		Status:     status,
		DecidedBy:  actorID,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	return s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     contextutil.GetRequestID(ctx),
		AggregateType: "request",
		AggregateID:   r.ID.String(),
		EventType:     "request.decided",
		Topic:         events.RequestDecidedTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	})
}

func (s *service) invalidateBalanceSummary(ctx context.Context, companyID, employeeID string) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, balance.SummaryKey(companyID, employeeID)).Err(); err != nil {
		s.logger.Warn("invalidate balance summary failed",
			zap.String("employee_id", employeeID),
			zap.Error(err),
		)
	}
}

func parseTimestamp(v string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", v); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, requesterrors.ErrInvalidTimestamp
}

func isMidnightUTC(t time.Time) bool {
	u := t.UTC()
	return u.Hour() == 0 && u.Minute() == 0 && u.Second() == 0 && u.Nanosecond() == 0
}

// leaveDays counts whole days in a half-open interval.
func leaveDays(startAt, endAt time.Time) int {
	return int(endAt.Sub(startAt).Hours() / 24)
}

func monthBounds(t time.Time) (time.Time, time.Time) {
	u := t.UTC()
	monthStart := time.Date(u.Year(), u.Month(), 1, 0, 0, 0, 0, time.UTC)
	return monthStart, monthStart.AddDate(0, 1, 0)
}

func mapToResponse(r Request) RequestResponse {
	resp := RequestResponse{
		ID:            r.ID.String(),
		CompanyID:     r.CompanyID.String(),
		EmployeeID:    r.EmployeeID.String(),
		TypeID:        r.TypeID.String(),
		RequestNumber: r.RequestNumber,
		StartAt:       r.StartAt.Format(time.RFC3339),
		EndAt:         r.EndAt.Format(time.RFC3339),
		Reason:        r.Reason,
		EvidenceNote:  r.EvidenceNote,
		Status:        r.Status,
		CreatedBy:     r.CreatedBy.String(),
	}
	if r.DecidedBy != nil {
		v := r.DecidedBy.String()
		resp.DecidedBy = &v
	}
	if r.DecidedAt != nil {
		v := r.DecidedAt.Format(time.RFC3339)
		resp.DecidedAt = &v
	}
	resp.RejectionReason = r.RejectionReason
	return resp
}
