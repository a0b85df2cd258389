package leavetype

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	CategoryLeave      = "LEAVE"
	CategoryPermission = "PERMISSION"
)

// LeaveType holds the administrator-defined rules governing a leave or
// permission type. The workflow engine only ever reads these.
type LeaveType struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index:idx_leave_types_company"`

	Name     string `gorm:"type:varchar(100);not null"`
	Category string `gorm:"type:varchar(20);not null;default:'LEAVE'"`

	// MaxDays is the default annual allowance for LEAVE types.
	MaxDays int `gorm:"type:int;not null;default:0"`
	// MonthlyHourLimit caps PERMISSION usage per calendar month.
	MonthlyHourLimit float64 `gorm:"type:numeric(6,2);not null;default:0"`

	DeductsBalance   bool `gorm:"not null;default:true"`
	RequiresEvidence bool `gorm:"not null;default:false"`
	IsActive         bool `gorm:"not null;default:true"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}
