package balance

import (
	"time"

	"github.com/google/uuid"
)

// LeaveBalance is the allowance of one leave type for one employee in one
// year. UsedDays is mutated only through Repository.TryDecrement and admin
// adjustments, never written directly by API consumers.
type LeaveBalance struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_balance_employee_type_year"`
	EmployeeID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_balance_employee_type_year"`
	TypeID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_balance_employee_type_year"`
	Year       int       `gorm:"type:int;not null;uniqueIndex:uq_balance_employee_type_year"`

	TotalAllowed int `gorm:"type:int;not null"`
	UsedDays     int `gorm:"type:int;not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
