package events

import "time"

const LedgerStatusChangedTopic = "hr.payroll.ledger.status.v1"

// LedgerStatusChangedEvent is published through the transactional outbox
// whenever a ledger changes state, so downstream consumers (payslip
// delivery, finance exports) see exactly the transitions the audit trail
// recorded.
type LedgerStatusChangedEvent struct {
	EventType  string    `json:"event_type"`
	LedgerID   string    `json:"ledger_id"`
	CompanyID  string    `json:"company_id"`
	PeriodID   string    `json:"period_id"`
	EmployeeID string    `json:"employee_id"`
	OldStatus  string    `json:"old_status"`
	NewStatus  string    `json:"new_status"`
	ActorID    string    `json:"actor_id"`
	OccurredAt time.Time `json:"occurred_at"`
}
