package audit

import (
	"context"
	"database/sql"
)

// Repository is append-only on purpose: there is no update or delete for
// audit rows, here or anywhere else.
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Append(ctx context.Context, record Record) error
	History(ctx context.Context, ledgerID string) ([]Record, error)
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

func (r *repository) Append(ctx context.Context, record Record) error {
	query := `
        INSERT INTO payroll_audits (
            id, ledger_id, action, old_status, new_status, changes, reason, performed_by
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `

	exec := r.execer()
	_, err := exec.ExecContext(
		ctx, query,
		record.ID, record.LedgerID, record.Action,
		record.OldStatus, record.NewStatus, record.Changes,
		record.Reason, record.PerformedBy,
	)
	return err
}

func (r *repository) History(ctx context.Context, ledgerID string) ([]Record, error) {
	query := `
SELECT
	id::text,
	ledger_id::text,
	action,
	old_status,
	new_status,
	changes,
	reason,
	performed_by::text,
	created_at
FROM payroll_audits
WHERE ledger_id = $1
ORDER BY created_at ASC, id ASC
`

	rows, err := r.db.QueryContext(ctx, query, ledgerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(
			&rec.ID,
			&rec.LedgerID,
			&rec.Action,
			&rec.OldStatus,
			&rec.NewStatus,
			&rec.Changes,
			&rec.Reason,
			&rec.PerformedBy,
			&rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

func (r *repository) execer() interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
} {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}
