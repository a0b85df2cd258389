package request

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"go-timeoff/internal/tenant"

	"gorm.io/gorm"
)

//go:generate mockgen -source=request_repo.go -destination=mock/request_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, r *Request) error
	FindAllByCompany(ctx context.Context, companyID string) ([]Request, error)
	FindByIDAndCompany(ctx context.Context, companyID, id string) (*Request, error)
	EmployeeBelongsToCompany(ctx context.Context, companyID, employeeID string) (bool, error)

	// HasOverlappingInterval reports whether the employee already has a
	// request in any of the given statuses intersecting [startAt, endAt)
	// under half-open semantics.
	HasOverlappingInterval(ctx context.Context, companyID, employeeID string, startAt, endAt time.Time, statuses []string) (bool, error)

	// UpdateStatus performs the terminal transition as one conditional
	// write guarded by expectedStatus. Returns false when the guard fails,
	// i.e. another caller already decided the request.
	UpdateStatus(ctx context.Context, id, newStatus, decidedBy string, rejectionReason *string, expectedStatus string) (bool, error)

	// SumHoursInMonth totals request hours for the employee and type whose
	// start falls in [monthStart, monthEnd), restricted to statuses.
	SumHoursInMonth(ctx context.Context, companyID, employeeID, typeID string, monthStart, monthEnd time.Time, statuses []string) (float64, error)
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

func (r *repository) Create(ctx context.Context, req *Request) error {
	// Raw insert through the execer so the row and its outbox event share
	// one transaction.
	query := `
INSERT INTO requests (
	id, company_id, employee_id, type_id, request_number,
	start_at, end_at, reason, evidence_note,
	status, created_by, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
`

	_, err := r.execer().ExecContext(ctx, query,
		req.ID, req.CompanyID, req.EmployeeID, req.TypeID, req.RequestNumber,
		req.StartAt, req.EndAt, req.Reason, req.EvidenceNote,
		req.Status, req.CreatedBy,
	)
	return err
}

func (r *repository) FindAllByCompany(ctx context.Context, companyID string) ([]Request, error) {
	var requests []Request
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Order("start_at DESC").
		Find(&requests).Error
	return requests, err
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*Request, error) {
	var req Request
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&req, "id = ?", id).Error
	return &req, err
}

func (r *repository) EmployeeBelongsToCompany(ctx context.Context, companyID, employeeID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("employees").
		Where("id = ?", employeeID).
		Where("company_id = ?", companyID).
		Where("deleted_at IS NULL").
		Count(&count).Error
	return count > 0, err
}

func (r *repository) HasOverlappingInterval(ctx context.Context, companyID, employeeID string, startAt, endAt time.Time, statuses []string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Request{}).
		Scopes(tenant.Scope(companyID)).
		Where("employee_id = ?", employeeID).
		Where("status IN ?", statuses).
		Where("start_at < ? AND end_at > ?", endAt, startAt).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) UpdateStatus(ctx context.Context, id, newStatus, decidedBy string, rejectionReason *string, expectedStatus string) (bool, error) {
	query := `
UPDATE requests
SET status = $2,
	decided_by = $3,
	rejection_reason = $4,
	decided_at = NOW(),
	updated_at = NOW()
WHERE id = $1
	AND status = $5
`

	res, err := r.execer().ExecContext(ctx, query, id, newStatus, decidedBy, rejectionReason, expectedStatus)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *repository) SumHoursInMonth(ctx context.Context, companyID, employeeID, typeID string, monthStart, monthEnd time.Time, statuses []string) (float64, error) {
	placeholders := make([]string, len(statuses))
	args := []any{companyID, employeeID, typeID, monthStart, monthEnd}
	for i, st := range statuses {
		placeholders[i] = fmt.Sprintf("$%d", len(args)+1)
		args = append(args, st)
	}

	query := fmt.Sprintf(`
SELECT COALESCE(SUM(EXTRACT(EPOCH FROM (end_at - start_at)) / 3600), 0)
FROM requests
WHERE company_id = $1
	AND employee_id = $2
	AND type_id = $3
	AND start_at >= $4
	AND start_at < $5
	AND status IN (%s)
`, strings.Join(placeholders, ", "))

	var querier interface {
		QueryRowContext(context.Context, string, ...any) *sql.Row
	}
	if r.tx != nil {
		querier = r.tx
	} else {
		db, err := r.db.DB()
		if err != nil {
			return 0, err
		}
		querier = db
	}

	var total float64
	if err := querier.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *repository) execer() interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
} {
	if r.tx != nil {
		return r.tx
	}

	db, err := r.db.DB()
	if err != nil {
		return errExecer{err: err}
	}
	return db
}

type errExecer struct{ err error }

func (e errExecer) ExecContext(context.Context, string, ...any) (sql.Result, error) {
	return nil, e.err
}
