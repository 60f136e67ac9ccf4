package ledger

import (
	"encoding/json"
	"time"

	"go-payroll/internal/audit"
)

type CalculatePeriodRequest struct {
	Entries []EmployeeCalcEntry `json:"entries" binding:"omitempty,dive"`
}

// EmployeeCalcEntry supplies the per-run inputs the employee record does
// not carry: worked hours for hourly staff and a one-off bonus.
type EmployeeCalcEntry struct {
	EmployeeID    string `json:"employee_id" binding:"required,uuid"`
	RegularHours  int64  `json:"regular_hours"`
	OvertimeHours int64  `json:"overtime_hours"`
	Bonus         int64  `json:"bonus"`
}

type RecalculateRequest struct {
	RegularHours  *int64 `json:"regular_hours"`
	OvertimeHours *int64 `json:"overtime_hours"`
	Bonus         *int64 `json:"bonus"`
}

type MarkPaidRequest struct {
	PaymentMethod    string `json:"payment_method" binding:"required,max=40"`
	PaymentReference string `json:"payment_reference" binding:"required,max=120"`
}

type ReasonRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type OverrideComponentRequest struct {
	Amount int64  `json:"amount" binding:"min=0"`
	Reason string `json:"reason" binding:"required"`
}

type ListLedgersFilter struct {
	PeriodID string `form:"period_id" binding:"required,uuid"`
	Status   string `form:"status" binding:"omitempty,oneof=PENDING CALCULATED APPROVED PAID REJECTED CANCELLED"`
}

type BatchFailure struct {
	EmployeeID string `json:"employee_id"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

type BatchResult struct {
	PeriodID  string           `json:"period_id"`
	Succeeded []LedgerResponse `json:"succeeded"`
	Failed    []BatchFailure   `json:"failed"`
}

type LedgerResponse struct {
	ID               string  `json:"id"`
	LedgerNumber     string  `json:"ledger_number"`
	CompanyID        string  `json:"company_id"`
	EmployeeID       string  `json:"employee_id"`
	PeriodID         string  `json:"period_id"`
	BaseSalary       int64   `json:"base_salary"`
	OvertimeHours    int64   `json:"overtime_hours"`
	OvertimePay      int64   `json:"overtime_pay"`
	BonusAmount      int64   `json:"bonus_amount"`
	GrossPay         int64   `json:"gross_pay"`
	TotalDeductions  int64   `json:"total_deductions"`
	TotalTaxes       int64   `json:"total_taxes"`
	NetPay           int64   `json:"net_pay"`
	Status           string  `json:"status"`
	PaymentMethod    *string `json:"payment_method,omitempty"`
	PaymentReference *string `json:"payment_reference,omitempty"`
	PayDate          *string `json:"pay_date,omitempty"`
	ApprovedBy       *string `json:"approved_by,omitempty"`
	ApprovedAt       *string `json:"approved_at,omitempty"`
	PaidBy           *string `json:"paid_by,omitempty"`
	PaidAt           *string `json:"paid_at,omitempty"`
	Notes            *string `json:"notes,omitempty"`
}

type LedgerComponentResponse struct {
	ID               string  `json:"id"`
	ComponentID      string  `json:"component_id"`
	Name             string  `json:"name"`
	ComponentType    string  `json:"component_type"`
	CalculationOrder int     `json:"calculation_order"`
	ConfiguredAmount int64   `json:"configured_amount"`
	Percent          float64 `json:"percent"`
	CalculatedAmount int64   `json:"calculated_amount"`
	ValueSource      string  `json:"value_source"`
	OverrideAmount   *int64  `json:"override_amount,omitempty"`
	OverrideReason   *string `json:"override_reason,omitempty"`
	EffectiveAmount  int64   `json:"effective_amount"`
}

type LedgerBreakdownResponse struct {
	Ledger     LedgerResponse            `json:"ledger"`
	Components []LedgerComponentResponse `json:"components"`
}

type AuditEntryResponse struct {
	ID          string          `json:"id"`
	Action      string          `json:"action"`
	OldStatus   string          `json:"old_status"`
	NewStatus   string          `json:"new_status"`
	Changes     json.RawMessage `json:"changes,omitempty"`
	Reason      string          `json:"reason,omitempty"`
	PerformedBy string          `json:"performed_by"`
	CreatedAt   string          `json:"created_at"`
}

func mapToResponse(ledger PayrollLedger) LedgerResponse {
	resp := LedgerResponse{
		ID:              ledger.ID.String(),
		LedgerNumber:    ledger.LedgerNumber,
		CompanyID:       ledger.CompanyID.String(),
		EmployeeID:      ledger.EmployeeID.String(),
		PeriodID:        ledger.PeriodID.String(),
		BaseSalary:      ledger.BaseSalary,
		OvertimeHours:   ledger.OvertimeHours,
		OvertimePay:     ledger.OvertimePay,
		BonusAmount:     ledger.BonusAmount,
		GrossPay:        ledger.GrossPay,
		TotalDeductions: ledger.TotalDeductions,
		TotalTaxes:      ledger.TotalTaxes,
		NetPay:          ledger.NetPay,
		Status:          ledger.Status,
		PaymentMethod:   ledger.PaymentMethod,
		Notes:           ledger.Notes,
	}

	resp.PaymentReference = ledger.PaymentReference
	if ledger.PayDate != nil {
		v := ledger.PayDate.Format("2006-01-02")
		resp.PayDate = &v
	}
	if ledger.ApprovedBy != nil {
		v := ledger.ApprovedBy.String()
		resp.ApprovedBy = &v
	}
	if ledger.ApprovedAt != nil {
		v := ledger.ApprovedAt.Format(time.RFC3339)
		resp.ApprovedAt = &v
	}
	if ledger.PaidBy != nil {
		v := ledger.PaidBy.String()
		resp.PaidBy = &v
	}
	if ledger.PaidAt != nil {
		v := ledger.PaidAt.Format(time.RFC3339)
		resp.PaidAt = &v
	}

	return resp
}

func mapToListResponse(ledgers []PayrollLedger) []LedgerResponse {
	resp := make([]LedgerResponse, len(ledgers))
	for i, ledger := range ledgers {
		resp[i] = mapToResponse(ledger)
	}
	return resp
}

func mapComponentToResponse(line LedgerComponent) LedgerComponentResponse {
	resp := LedgerComponentResponse{
		ID:               line.ID.String(),
		ComponentID:      line.ComponentID.String(),
		Name:             line.Name,
		ComponentType:    line.ComponentType,
		CalculationOrder: line.CalculationOrder,
		ConfiguredAmount: line.ConfiguredAmount,
		Percent:          float64(line.PercentBps) / 100,
		CalculatedAmount: line.CalculatedAmount,
		ValueSource:      line.ValueSource,
		EffectiveAmount:  line.EffectiveAmount(),
	}

	if line.ValueSource == SourceOverridden {
		amount := line.OverrideAmount
		reason := line.OverrideReason
		resp.OverrideAmount = &amount
		resp.OverrideReason = &reason
	}

	return resp
}

func mapAuditToResponse(records []audit.Record) []AuditEntryResponse {
	resp := make([]AuditEntryResponse, len(records))
	for i, rec := range records {
		resp[i] = AuditEntryResponse{
			ID:          rec.ID,
			Action:      rec.Action,
			OldStatus:   rec.OldStatus,
			NewStatus:   rec.NewStatus,
			Changes:     json.RawMessage(rec.Changes),
			Reason:      rec.Reason,
			PerformedBy: rec.PerformedBy,
			CreatedAt:   rec.CreatedAt.UTC().Format(time.RFC3339),
		}
	}
	return resp
}
