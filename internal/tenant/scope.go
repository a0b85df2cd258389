package tenant

import "gorm.io/gorm"

// Scope restricts a query to one company's rows. Repository queries on
// tenant-owned tables apply it instead of filtering company_id by hand.
func Scope(companyID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("company_id = ?", companyID)
	}
}
