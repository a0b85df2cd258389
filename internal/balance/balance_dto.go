package balance

type AllocateBalanceRequest struct {
	EmployeeID   string `json:"employee_id" binding:"required,uuid"`
	TypeID       string `json:"type_id" binding:"required,uuid"`
	Year         int    `json:"year" binding:"required,min=2000"`
	TotalAllowed int    `json:"total_allowed" binding:"min=0"`
}

type AdjustBalanceRequest struct {
	TotalAllowed int `json:"total_allowed" binding:"required,min=0"`
}

type BalanceResponse struct {
	ID           string `json:"id"`
	CompanyID    string `json:"company_id"`
	EmployeeID   string `json:"employee_id"`
	TypeID       string `json:"type_id"`
	Year         int    `json:"year"`
	TotalAllowed int    `json:"total_allowed"`
	UsedDays     int    `json:"used_days"`
	Remaining    int    `json:"remaining"`
}
