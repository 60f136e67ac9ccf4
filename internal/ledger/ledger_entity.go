package ledger

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusPending    = "PENDING"
	StatusCalculated = "CALCULATED"
	StatusApproved   = "APPROVED"
	StatusPaid       = "PAID"
	StatusRejected   = "REJECTED"
	StatusCancelled  = "CANCELLED"
)

// Value sources for a ledger component line. OVERRIDDEN lines carry the
// override amount and a mandatory reason; CALCULATED lines carry neither.
const (
	SourceCalculated = "CALCULATED"
	SourceOverridden = "OVERRIDDEN"
)

// IsTerminal reports whether a ledger status admits no further transition.
func IsTerminal(status string) bool {
	switch status {
	case StatusPaid, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

// IsKnownStatus reports whether status names one of the ledger states.
func IsKnownStatus(status string) bool {
	switch status {
	case StatusPending, StatusCalculated, StatusApproved, StatusPaid, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

// PayrollLedger is one employee's payroll record for one period. Uniqueness
// on (employee_id, period_id) is enforced by the database and is the only
// concurrency control the batch run needs. Money is in minor currency units.
type PayrollLedger struct {
	ID           uuid.UUID
	CompanyID    uuid.UUID
	EmployeeID   uuid.UUID
	PeriodID     uuid.UUID
	LedgerNumber string

	// BaseSalary is a snapshot taken at calculation time, not a live
	// reference to the employee record.
	BaseSalary      int64
	OvertimeHours   int64
	OvertimePay     int64
	BonusAmount     int64
	GrossPay        int64
	TotalDeductions int64
	TotalTaxes      int64
	NetPay          int64

	Status           string
	PaymentMethod    *string
	PaymentReference *string
	PayDate          *time.Time
	ApprovedBy       *uuid.UUID
	ApprovedAt       *time.Time
	PaidBy           *uuid.UUID
	PaidAt           *time.Time
	Notes            *string

	CreatedAt time.Time
	UpdatedAt time.Time

	Components []LedgerComponent
}

// LedgerComponent is one line of a ledger's breakdown. Configured amount and
// percentage are snapshots of the salary component at calculation time, so
// later registry edits never change history.
type LedgerComponent struct {
	ID            uuid.UUID
	LedgerID      uuid.UUID
	ComponentID   uuid.UUID
	Name          string
	ComponentType string

	CalculationOrder int
	ConfiguredAmount int64
	PercentBps       int64
	CalculatedAmount int64

	ValueSource    string
	OverrideAmount int64
	OverrideReason string

	CreatedAt time.Time
}

// EffectiveAmount is the value the totals are derived from: the override if
// a human stepped in, the calculated amount otherwise.
func (c LedgerComponent) EffectiveAmount() int64 {
	if c.ValueSource == SourceOverridden {
		return c.OverrideAmount
	}
	return c.CalculatedAmount
}

// DeriveTotals recomputes gross, deductions, taxes and net from the base
// figures plus the effective value of every line. It is the single place
// the net-pay identity lives, used both after calculation and after an
// override mixes manual values into the set.
func DeriveTotals(baseSalary, overtimePay, bonus int64, lines []LedgerComponent) (gross, deductions, taxes, net int64) {
	gross = baseSalary + overtimePay + bonus
	for _, line := range lines {
		amount := line.EffectiveAmount()
		switch line.ComponentType {
		case "EARNING":
			gross += amount
		case "DEDUCTION":
			deductions += amount
		case "TAX":
			taxes += amount
		}
	}
	net = gross - deductions - taxes
	return gross, deductions, taxes, net
}
