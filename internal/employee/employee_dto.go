package employee

type CreateEmployeeRequest struct {
	FullName       string `json:"full_name" binding:"required"`
	Email          string `json:"email" binding:"required,email"`
	EmployeeNumber string `json:"employee_number"`
	Phone          string `json:"phone"`
	HireDate       string `json:"hire_date" binding:"required"`
	ManagerID      string `json:"manager_id" binding:"omitempty,uuid"`
}

type UpdateEmployeeRequest struct {
	FullName       string `json:"full_name" binding:"required"`
	Email          string `json:"email" binding:"required,email"`
	EmployeeNumber string `json:"employee_number"`
	Phone          string `json:"phone"`
	HireDate       string `json:"hire_date" binding:"required"`
	ManagerID      string `json:"manager_id" binding:"omitempty,uuid"`
}

type EmployeeResponse struct {
	ID               string `json:"id"`
	FullName         string `json:"full_name"`
	Email            string `json:"email"`
	EmployeeNumber   string `json:"employee_number"`
	Phone            string `json:"phone,omitempty"`
	HireDate         string `json:"hire_date"`
	EmploymentStatus string `json:"employment_status"`
	CompanyID        string `json:"company_id"`
	ManagerID        string `json:"manager_id,omitempty"`
}
