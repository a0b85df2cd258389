package balance

import (
	"context"
	"database/sql"

	"go-timeoff/internal/tenant"

	"gorm.io/gorm"
)

//go:generate mockgen -source=balance_repo.go -destination=mock/balance_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, b *LeaveBalance) error
	Find(ctx context.Context, companyID, employeeID, typeID string, year int) (*LeaveBalance, error)
	FindAllByEmployee(ctx context.Context, companyID, employeeID string) ([]LeaveBalance, error)

	// TryDecrement atomically adds days to used_days, refusing the write if
	// the result would exceed total_allowed. Returns false when the guard
	// rejects the update. Runs on the transaction when one is attached.
	TryDecrement(ctx context.Context, companyID, employeeID, typeID string, year, days int) (bool, error)

	// SetAllowance conditionally updates total_allowed, refusing a value
	// below the days already used.
	SetAllowance(ctx context.Context, companyID, id string, totalAllowed int) (bool, error)
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

func (r *repository) Create(ctx context.Context, b *LeaveBalance) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *repository) Find(ctx context.Context, companyID, employeeID, typeID string, year int) (*LeaveBalance, error) {
	var b LeaveBalance
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("employee_id = ?", employeeID).
		Where("type_id = ?", typeID).
		Where("year = ?", year).
		First(&b).Error
	return &b, err
}

func (r *repository) FindAllByEmployee(ctx context.Context, companyID, employeeID string) ([]LeaveBalance, error) {
	var balances []LeaveBalance
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("employee_id = ?", employeeID).
		Order("year DESC").
		Find(&balances).Error
	return balances, err
}

func (r *repository) TryDecrement(ctx context.Context, companyID, employeeID, typeID string, year, days int) (bool, error) {
	// Conditional update: the allowance check and the write are one
	// statement, so concurrent approvals serialize on the row and the
	// loser sees zero rows affected.
	query := `
UPDATE leave_balances
SET used_days = used_days + $5, updated_at = NOW()
WHERE company_id = $1
	AND employee_id = $2
	AND type_id = $3
	AND year = $4
	AND used_days + $5 <= total_allowed
`

	res, err := r.execer().ExecContext(ctx, query, companyID, employeeID, typeID, year, days)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *repository) SetAllowance(ctx context.Context, companyID, id string, totalAllowed int) (bool, error) {
	query := `
UPDATE leave_balances
SET total_allowed = $3, updated_at = NOW()
WHERE company_id = $1
	AND id = $2
	AND used_days <= $3
`

	res, err := r.execer().ExecContext(ctx, query, companyID, id, totalAllowed)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
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
