package request

type SubmitRequestRequest struct {
	EmployeeID   string `json:"employee_id" binding:"required,uuid"`
	TypeID       string `json:"type_id" binding:"required,uuid"`
	StartAt      string `json:"start_at" binding:"required"`
	EndAt        string `json:"end_at" binding:"required"`
	Reason       string `json:"reason"`
	EvidenceNote string `json:"evidence_note"`
}

type RejectRequestRequest struct {
	RejectionReason string `json:"rejection_reason" binding:"required"`
}

type RequestResponse struct {
	ID              string  `json:"id"`
	CompanyID       string  `json:"company_id"`
	EmployeeID      string  `json:"employee_id"`
	TypeID          string  `json:"type_id"`
	RequestNumber   string  `json:"request_number"`
	StartAt         string  `json:"start_at"`
	EndAt           string  `json:"end_at"`
	Reason          string  `json:"reason"`
	EvidenceNote    *string `json:"evidence_note,omitempty"`
	Status          string  `json:"status"`
	CreatedBy       string  `json:"created_by"`
	DecidedBy       *string `json:"decided_by,omitempty"`
	DecidedAt       *string `json:"decided_at,omitempty"`
	RejectionReason *string `json:"rejection_reason,omitempty"`
}
