package audit

import "time"

const (
	ActionCreated    = "CREATED"
	ActionCalculated = "CALCULATED"
	ActionApproved   = "APPROVED"
	ActionPaid       = "PAID"
	ActionRejected   = "REJECTED"
	ActionCancelled  = "CANCELLED"
	ActionUpdated    = "UPDATED"
)

// Record is one immutable row of the ledger provenance log. Rows are only
// ever appended, always inside the transaction of the ledger mutation they
// describe.
type Record struct {
	ID          string
	LedgerID    string
	Action      string
	OldStatus   string
	NewStatus   string
	Changes     []byte // JSON snapshot of what changed
	Reason      string
	PerformedBy string
	CreatedAt   time.Time
}
