package leavetype

type CreateLeaveTypeRequest struct {
	Name             string  `json:"name" binding:"required"`
	Category         string  `json:"category" binding:"required,oneof=LEAVE PERMISSION"`
	MaxDays          int     `json:"max_days" binding:"min=0"`
	MonthlyHourLimit float64 `json:"monthly_hour_limit" binding:"min=0"`
	DeductsBalance   *bool   `json:"deducts_balance"`
	RequiresEvidence bool    `json:"requires_evidence"`
}

type UpdateLeaveTypeRequest struct {
	Name             string  `json:"name" binding:"required"`
	MaxDays          int     `json:"max_days" binding:"min=0"`
	MonthlyHourLimit float64 `json:"monthly_hour_limit" binding:"min=0"`
	DeductsBalance   *bool   `json:"deducts_balance"`
	RequiresEvidence bool    `json:"requires_evidence"`
	IsActive         *bool   `json:"is_active"`
}

type LeaveTypeResponse struct {
	ID               string  `json:"id"`
	CompanyID        string  `json:"company_id"`
	Name             string  `json:"name"`
	Category         string  `json:"category"`
	MaxDays          int     `json:"max_days"`
	MonthlyHourLimit float64 `json:"monthly_hour_limit"`
	DeductsBalance   bool    `json:"deducts_balance"`
	RequiresEvidence bool    `json:"requires_evidence"`
	IsActive         bool    `json:"is_active"`
}
