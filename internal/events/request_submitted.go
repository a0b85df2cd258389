package events

import "time"

const RequestSubmittedTopic = "hr.timeoff.request.submitted.v1"

type RequestSubmittedEvent struct {
	EventType  string    `json:"event_type"`
	RequestID  string    `json:"request_id"`
	CompanyID  string    `json:"company_id"`
	EmployeeID string    `json:"employee_id"`
	TypeID     string    `json:"type_id"`
	StartAt    time.Time `json:"start_at"`
	EndAt      time.Time `json:"end_at"`
	OccurredAt time.Time `json:"occurred_at"`
}
