package employee

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Employee struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey"`
	CompanyID        uuid.UUID  `gorm:"type:uuid;index"`
	ManagerID        *uuid.UUID `gorm:"type:uuid"`
	FullName         string
	Email            string `gorm:"uniqueIndex:uq_employee_email"`
	EmployeeNumber   string `gorm:"uniqueIndex:uq_employee_number"`
	Phone            string
	HireDate         time.Time
	EmploymentStatus string `gorm:"type:varchar(50);default:'ACTIVE'"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
	DeletedAt        gorm.DeletedAt `gorm:"index"`
}
