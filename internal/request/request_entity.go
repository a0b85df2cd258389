package request

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
)

// Request is a leave or permission application. The interval is half-open,
// [StartAt, EndAt): a request ending exactly when another starts does not
// overlap it. DecidedBy is null exactly while the request is PENDING.
type Request struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID  uuid.UUID `gorm:"type:uuid;not null;index:idx_requests_company_status;uniqueIndex:uq_request_number_company"`
	EmployeeID uuid.UUID `gorm:"type:uuid;not null;index:idx_requests_employee_interval"`
	TypeID     uuid.UUID `gorm:"type:uuid;not null"`

	RequestNumber string `gorm:"type:varchar(30);not null;uniqueIndex:uq_request_number_company"`

	StartAt time.Time `gorm:"not null;index:idx_requests_employee_interval"`
	EndAt   time.Time `gorm:"not null;index:idx_requests_employee_interval"`

	Reason       string  `gorm:"type:text"`
	EvidenceNote *string `gorm:"type:text"`

	Status          string     `gorm:"type:varchar(20);not null;default:'PENDING';index:idx_requests_company_status"`
	CreatedBy       uuid.UUID  `gorm:"type:uuid;not null"`
	DecidedBy       *uuid.UUID `gorm:"type:uuid"`
	RejectionReason *string    `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DecidedAt *time.Time
}

// IsAllowedStatusTransition reports whether a request may move from
// currentStatus to targetStatus. PENDING is the only non-terminal state.
func IsAllowedStatusTransition(currentStatus, targetStatus string) bool {
	if currentStatus != StatusPending {
		return false
	}
	return targetStatus == StatusApproved || targetStatus == StatusRejected
}
