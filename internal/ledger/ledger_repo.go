package ledger

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"
)

// Repository persists ledgers and their component breakdown with raw SQL so
// every write can ride the caller's *sql.Tx. A ledger row is never inserted
// without its full component set in the same transaction.
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, ledger *PayrollLedger) error
	InsertComponents(ctx context.Context, ledgerID string, lines []LedgerComponent) error
	DeleteComponents(ctx context.Context, ledgerID string) error
	FindByIDAndCompany(ctx context.Context, companyID string, id string) (*PayrollLedger, error)
	// FindForUpdate locks the ledger row for the lifetime of the
	// transaction. Only meaningful through WithTx.
	FindForUpdate(ctx context.Context, companyID string, id string) (*PayrollLedger, error)
	FindComponents(ctx context.Context, ledgerID string) ([]LedgerComponent, error)
	Update(ctx context.Context, ledger *PayrollLedger) error
	OverrideComponent(ctx context.Context, lineID string, amount int64, reason string) error
	ListByPeriod(ctx context.Context, companyID string, periodID string, status string) ([]PayrollLedger, error)
}

type repository struct {
	db *sql.DB
	tx *sql.Tx
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

const ledgerColumns = `
	id::text,
	company_id::text,
	employee_id::text,
	period_id::text,
	ledger_number,
	base_salary,
	overtime_hours,
	overtime_pay,
	bonus_amount,
	gross_pay,
	total_deductions,
	total_taxes,
	net_pay,
	status,
	payment_method,
	payment_reference,
	pay_date,
	approved_by::text,
	approved_at,
	paid_by::text,
	paid_at,
	notes,
	created_at,
	updated_at
`

func (r *repository) Create(ctx context.Context, ledger *PayrollLedger) error {
	query := `
        INSERT INTO payroll_ledgers (
            id, company_id, employee_id, period_id, ledger_number,
            base_salary, overtime_hours, overtime_pay, bonus_amount,
            gross_pay, total_deductions, total_taxes, net_pay, status
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
    `

	_, err := r.execer().ExecContext(
		ctx, query,
		ledger.ID, ledger.CompanyID, ledger.EmployeeID, ledger.PeriodID, ledger.LedgerNumber,
		ledger.BaseSalary, ledger.OvertimeHours, ledger.OvertimePay, ledger.BonusAmount,
		ledger.GrossPay, ledger.TotalDeductions, ledger.TotalTaxes, ledger.NetPay, ledger.Status,
	)
	return err
}

func (r *repository) InsertComponents(ctx context.Context, ledgerID string, lines []LedgerComponent) error {
	if len(lines) == 0 {
		return nil
	}

	query := `
        INSERT INTO payroll_ledger_components (
            id, ledger_id, component_id, name, component_type, calculation_order,
            configured_amount, percent_bps, calculated_amount,
            value_source, override_amount, override_reason
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
    `

	exec := r.execer()
	for _, line := range lines {
		_, err := exec.ExecContext(
			ctx, query,
			line.ID, ledgerID, line.ComponentID, line.Name, line.ComponentType, line.CalculationOrder,
			line.ConfiguredAmount, line.PercentBps, line.CalculatedAmount,
			line.ValueSource, line.OverrideAmount, nullableString(line.OverrideReason),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *repository) DeleteComponents(ctx context.Context, ledgerID string) error {
	_, err := r.execer().ExecContext(ctx,
		`DELETE FROM payroll_ledger_components WHERE ledger_id = $1`, ledgerID)
	return err
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID string, id string) (*PayrollLedger, error) {
	query := `SELECT ` + ledgerColumns + ` FROM payroll_ledgers WHERE company_id = $1 AND id = $2`
	return r.scanOne(r.queryer().QueryRowContext(ctx, query, companyID, id))
}

func (r *repository) FindForUpdate(ctx context.Context, companyID string, id string) (*PayrollLedger, error) {
	query := `SELECT ` + ledgerColumns + ` FROM payroll_ledgers WHERE company_id = $1 AND id = $2 FOR UPDATE`
	return r.scanOne(r.queryer().QueryRowContext(ctx, query, companyID, id))
}

func (r *repository) FindComponents(ctx context.Context, ledgerID string) ([]LedgerComponent, error) {
	query := `
SELECT
	id::text,
	ledger_id::text,
	component_id::text,
	name,
	component_type,
	calculation_order,
	configured_amount,
	percent_bps,
	calculated_amount,
	value_source,
	override_amount,
	COALESCE(override_reason, ''),
	created_at
FROM payroll_ledger_components
WHERE ledger_id = $1
ORDER BY calculation_order ASC, id ASC
`

	rows, err := r.queryer().QueryContext(ctx, query, ledgerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []LedgerComponent
	for rows.Next() {
		var line LedgerComponent
		var id, ledgerRef, componentRef string
		if err := rows.Scan(
			&id,
			&ledgerRef,
			&componentRef,
			&line.Name,
			&line.ComponentType,
			&line.CalculationOrder,
			&line.ConfiguredAmount,
			&line.PercentBps,
			&line.CalculatedAmount,
			&line.ValueSource,
			&line.OverrideAmount,
			&line.OverrideReason,
			&line.CreatedAt,
		); err != nil {
			return nil, err
		}
		line.ID = mustUUID(id)
		line.LedgerID = mustUUID(ledgerRef)
		line.ComponentID = mustUUID(componentRef)
		lines = append(lines, line)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return lines, nil
}

func (r *repository) Update(ctx context.Context, ledger *PayrollLedger) error {
	query := `
UPDATE payroll_ledgers
SET
	base_salary = $2,
	overtime_hours = $3,
	overtime_pay = $4,
	bonus_amount = $5,
	gross_pay = $6,
	total_deductions = $7,
	total_taxes = $8,
	net_pay = $9,
	status = $10,
	payment_method = $11,
	payment_reference = $12,
	pay_date = $13,
	approved_by = $14,
	approved_at = $15,
	paid_by = $16,
	paid_at = $17,
	notes = $18,
	updated_at = NOW()
WHERE id = $1
`

	_, err := r.execer().ExecContext(
		ctx, query,
		ledger.ID,
		ledger.BaseSalary, ledger.OvertimeHours, ledger.OvertimePay, ledger.BonusAmount,
		ledger.GrossPay, ledger.TotalDeductions, ledger.TotalTaxes, ledger.NetPay,
		ledger.Status,
		ledger.PaymentMethod, ledger.PaymentReference, ledger.PayDate,
		ledger.ApprovedBy, ledger.ApprovedAt,
		ledger.PaidBy, ledger.PaidAt,
		ledger.Notes,
	)
	return err
}

func (r *repository) OverrideComponent(ctx context.Context, lineID string, amount int64, reason string) error {
	query := `
UPDATE payroll_ledger_components
SET
	value_source = $2,
	override_amount = $3,
	override_reason = $4
WHERE id = $1
`
	_, err := r.execer().ExecContext(ctx, query, lineID, SourceOverridden, amount, reason)
	return err
}

func (r *repository) ListByPeriod(ctx context.Context, companyID string, periodID string, status string) ([]PayrollLedger, error) {
	query := `SELECT ` + ledgerColumns + ` FROM payroll_ledgers WHERE company_id = $1 AND period_id = $2`
	args := []any{companyID, periodID}
	if status != "" {
		query += ` AND status = $3`
		args = append(args, status)
	}
	query += ` ORDER BY employee_id ASC`

	rows, err := r.queryer().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ledgers []PayrollLedger
	for rows.Next() {
		ledger, err := scanLedger(rows)
		if err != nil {
			return nil, err
		}
		ledgers = append(ledgers, *ledger)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ledgers, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *repository) scanOne(row *sql.Row) (*PayrollLedger, error) {
	return scanLedger(row)
}

func scanLedger(row rowScanner) (*PayrollLedger, error) {
	var ledger PayrollLedger
	var id, companyID, employeeID, periodID string
	var approvedBy, paidBy sql.NullString

	err := row.Scan(
		&id,
		&companyID,
		&employeeID,
		&periodID,
		&ledger.LedgerNumber,
		&ledger.BaseSalary,
		&ledger.OvertimeHours,
		&ledger.OvertimePay,
		&ledger.BonusAmount,
		&ledger.GrossPay,
		&ledger.TotalDeductions,
		&ledger.TotalTaxes,
		&ledger.NetPay,
		&ledger.Status,
		&ledger.PaymentMethod,
		&ledger.PaymentReference,
		&ledger.PayDate,
		&approvedBy,
		&ledger.ApprovedAt,
		&paidBy,
		&ledger.PaidAt,
		&ledger.Notes,
		&ledger.CreatedAt,
		&ledger.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	ledger.ID = mustUUID(id)
	ledger.CompanyID = mustUUID(companyID)
	ledger.EmployeeID = mustUUID(employeeID)
	ledger.PeriodID = mustUUID(periodID)
	if approvedBy.Valid {
		v := mustUUID(approvedBy.String)
		ledger.ApprovedBy = &v
	}
	if paidBy.Valid {
		v := mustUUID(paidBy.String)
		ledger.PaidBy = &v
	}

	return &ledger, nil
}

func (r *repository) execer() interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
} {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

func (r *repository) queryer() interface {
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
} {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// mustUUID parses ids coming back from the database, which are trusted.
func mustUUID(v string) uuid.UUID {
	return uuid.MustParse(v)
}

func nullableString(v string) any {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return v
}
