package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"go-payroll/internal/audit"
	"go-payroll/internal/component"
	"go-payroll/internal/employee"
	ledgererrors "go-payroll/internal/ledger/errors"
	"go-payroll/internal/events"
	"go-payroll/internal/messaging/kafka"
	"go-payroll/internal/period"
	"go-payroll/internal/shared/contextutil"
	"go-payroll/internal/shared/counter"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type Service interface {
	CalculatePeriod(ctx context.Context, companyID, actorID, periodID string, req CalculatePeriodRequest) (BatchResult, error)
	Recalculate(ctx context.Context, companyID, actorID, id string, req RecalculateRequest) (LedgerResponse, error)
	GetByID(ctx context.Context, companyID, id string) (LedgerResponse, error)
	GetBreakdown(ctx context.Context, companyID, id string) (LedgerBreakdownResponse, error)
	List(ctx context.Context, companyID string, filter ListLedgersFilter) ([]LedgerResponse, error)
	History(ctx context.Context, companyID, id string) ([]AuditEntryResponse, error)
	Approve(ctx context.Context, companyID, actorID, id string) (LedgerResponse, error)
	MarkPaid(ctx context.Context, companyID, actorID, id string, req MarkPaidRequest) (LedgerResponse, error)
	Reject(ctx context.Context, companyID, actorID, id string, reason string) (LedgerResponse, error)
	Cancel(ctx context.Context, companyID, actorID, id string, reason string) (LedgerResponse, error)
	OverrideComponent(ctx context.Context, companyID, actorID, ledgerID, lineID string, req OverrideComponentRequest) (LedgerBreakdownResponse, error)
}

type Config struct {
	OvertimeMultiplierBps int64
	CalcWorkers           int
}

// Dependencies are the collaborators the ledger workflow reads from. The
// employee directory and the period/component repositories are owned by
// their own modules; this service never writes through them.
type Dependencies struct {
	Periods    period.Repository
	Employees  employee.Directory
	Components component.Service
	Counters   counter.Repository
}

type service struct {
	db        *sql.DB
	repo      Repository
	auditRepo audit.Repository
	outbox    kafka.OutboxRepository
	deps      Dependencies
	cfg       Config
}

func NewService(db *sql.DB, repo Repository, auditRepo audit.Repository, deps Dependencies, cfg Config) Service {
	return &service{db: db, repo: repo, auditRepo: auditRepo, deps: deps, cfg: cfg}
}

func NewServiceWithOutbox(
	db *sql.DB,
	repo Repository,
	auditRepo audit.Repository,
	outbox kafka.OutboxRepository,
	deps Dependencies,
	cfg Config,
) Service {
	return &service{db: db, repo: repo, auditRepo: auditRepo, outbox: outbox, deps: deps, cfg: cfg}
}

func (s *service) GetByID(ctx context.Context, companyID, id string) (LedgerResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return LedgerResponse{}, ledgererrors.ErrInvalidLedgerID
	}

	ledger, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return LedgerResponse{}, mapRepositoryError(err)
	}

	return mapToResponse(*ledger), nil
}

func (s *service) GetBreakdown(ctx context.Context, companyID, id string) (LedgerBreakdownResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return LedgerBreakdownResponse{}, ledgererrors.ErrInvalidLedgerID
	}

	ledger, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return LedgerBreakdownResponse{}, mapRepositoryError(err)
	}

	lines, err := s.repo.FindComponents(ctx, id)
	if err != nil {
		return LedgerBreakdownResponse{}, mapRepositoryError(err)
	}

	return buildBreakdown(*ledger, lines), nil
}

func (s *service) List(ctx context.Context, companyID string, filter ListLedgersFilter) ([]LedgerResponse, error) {
	if _, err := uuid.Parse(filter.PeriodID); err != nil {
		return nil, ledgererrors.ErrInvalidPeriodID
	}
	if filter.Status != "" && !IsKnownStatus(filter.Status) {
		return nil, ledgererrors.ErrInvalidStatusFilter
	}

	ledgers, err := s.repo.ListByPeriod(ctx, companyID, filter.PeriodID, filter.Status)
	if err != nil {
		return nil, mapRepositoryError(err)
	}

	return mapToListResponse(ledgers), nil
}

func (s *service) History(ctx context.Context, companyID, id string) ([]AuditEntryResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ledgererrors.ErrInvalidLedgerID
	}

	// The audit table is keyed by ledger only; the company scope check
	// happens through the ledger lookup.
	if _, err := s.repo.FindByIDAndCompany(ctx, companyID, id); err != nil {
		return nil, mapRepositoryError(err)
	}

	records, err := s.auditRepo.History(ctx, id)
	if err != nil {
		return nil, err
	}

	return mapAuditToResponse(records), nil
}

func (s *service) Approve(ctx context.Context, companyID, actorID, id string) (LedgerResponse, error) {
	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return LedgerResponse{}, ledgererrors.ErrInvalidActorID
	}
	if _, err := uuid.Parse(id); err != nil {
		return LedgerResponse{}, ledgererrors.ErrInvalidLedgerID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return LedgerResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	ledger, err := qtx.FindForUpdate(ctx, companyID, id)
	if err != nil {
		return LedgerResponse{}, mapRepositoryError(err)
	}

	if ledger.Status != StatusCalculated {
		return LedgerResponse{}, ledgererrors.InvalidTransition(ledger.Status, StatusApproved)
	}

	oldStatus := ledger.Status
	now := time.Now().UTC()
	ledger.Status = StatusApproved
	ledger.ApprovedBy = &actorUUID
	ledger.ApprovedAt = &now

	if err := qtx.Update(ctx, ledger); err != nil {
		return LedgerResponse{}, err
	}

	changes := mustJSON(map[string]any{
		"approved_by": actorID,
		"approved_at": now.Format(time.RFC3339),
	})
	if err := s.appendAudit(ctx, tx, ledger.ID.String(), audit.ActionApproved, oldStatus, ledger.Status, changes, "", actorID); err != nil {
		return LedgerResponse{}, err
	}
	if err := s.enqueueStatusEvent(ctx, tx, ledger, oldStatus, actorID); err != nil {
		return LedgerResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return LedgerResponse{}, err
	}

	return mapToResponse(*ledger), nil
}

func (s *service) MarkPaid(ctx context.Context, companyID, actorID, id string, req MarkPaidRequest) (LedgerResponse, error) {
	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return LedgerResponse{}, ledgererrors.ErrInvalidActorID
	}
	if _, err := uuid.Parse(id); err != nil {
		return LedgerResponse{}, ledgererrors.ErrInvalidLedgerID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return LedgerResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	ledger, err := qtx.FindForUpdate(ctx, companyID, id)
	if err != nil {
		return LedgerResponse{}, mapRepositoryError(err)
	}

	if ledger.Status != StatusApproved {
		return LedgerResponse{}, ledgererrors.InvalidTransition(ledger.Status, StatusPaid)
	}

	oldStatus := ledger.Status
	now := time.Now().UTC()
	payDate := now.Truncate(24 * time.Hour)
	ledger.Status = StatusPaid
	ledger.PaymentMethod = &req.PaymentMethod
	ledger.PaymentReference = &req.PaymentReference
	ledger.PayDate = &payDate
	ledger.PaidBy = &actorUUID
	ledger.PaidAt = &now

	if err := qtx.Update(ctx, ledger); err != nil {
		return LedgerResponse{}, err
	}

	changes := mustJSON(map[string]any{
		"payment_method":    req.PaymentMethod,
		"payment_reference": req.PaymentReference,
		"paid_by":           actorID,
		"paid_at":           now.Format(time.RFC3339),
	})
	if err := s.appendAudit(ctx, tx, ledger.ID.String(), audit.ActionPaid, oldStatus, ledger.Status, changes, "", actorID); err != nil {
		return LedgerResponse{}, err
	}
	if err := s.enqueueStatusEvent(ctx, tx, ledger, oldStatus, actorID); err != nil {
		return LedgerResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return LedgerResponse{}, err
	}

	return mapToResponse(*ledger), nil
}

func (s *service) Reject(ctx context.Context, companyID, actorID, id string, reason string) (LedgerResponse, error) {
	return s.terminate(ctx, companyID, actorID, id, reason, StatusRejected)
}

func (s *service) Cancel(ctx context.Context, companyID, actorID, id string, reason string) (LedgerResponse, error) {
	return s.terminate(ctx, companyID, actorID, id, reason, StatusCancelled)
}

// terminate handles the two reason-carrying terminal branches. REJECTED is
// reachable from CALCULATED and APPROVED; CANCELLED from any non-terminal
// state. Nothing ever leaves PAID.
func (s *service) terminate(ctx context.Context, companyID, actorID, id, reason, target string) (LedgerResponse, error) {
	if _, err := uuid.Parse(actorID); err != nil {
		return LedgerResponse{}, ledgererrors.ErrInvalidActorID
	}
	if _, err := uuid.Parse(id); err != nil {
		return LedgerResponse{}, ledgererrors.ErrInvalidLedgerID
	}
	if strings.TrimSpace(reason) == "" {
		return LedgerResponse{}, ledgererrors.ErrRejectReasonRequired
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return LedgerResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	ledger, err := qtx.FindForUpdate(ctx, companyID, id)
	if err != nil {
		return LedgerResponse{}, mapRepositoryError(err)
	}

	allowed := false
	switch target {
	case StatusRejected:
		allowed = ledger.Status == StatusCalculated || ledger.Status == StatusApproved
	case StatusCancelled:
		allowed = !IsTerminal(ledger.Status)
	}
	if !allowed {
		return LedgerResponse{}, ledgererrors.InvalidTransition(ledger.Status, target)
	}

	oldStatus := ledger.Status
	ledger.Status = target

	// Leaving APPROVED revokes the sign-off: only APPROVED and PAID ledgers
	// carry approver fields, so they move into the audit snapshot and come
	// off the row.
	changeSet := map[string]any{"reason": reason}
	if oldStatus == StatusApproved {
		if ledger.ApprovedBy != nil {
			changeSet["previous_approved_by"] = ledger.ApprovedBy.String()
		}
		if ledger.ApprovedAt != nil {
			changeSet["previous_approved_at"] = ledger.ApprovedAt.Format(time.RFC3339)
		}
		ledger.ApprovedBy = nil
		ledger.ApprovedAt = nil
	}

	if err := qtx.Update(ctx, ledger); err != nil {
		return LedgerResponse{}, err
	}

	action := audit.ActionRejected
	if target == StatusCancelled {
		action = audit.ActionCancelled
	}
	changes := mustJSON(changeSet)
	if err := s.appendAudit(ctx, tx, ledger.ID.String(), action, oldStatus, ledger.Status, changes, reason, actorID); err != nil {
		return LedgerResponse{}, err
	}
	if err := s.enqueueStatusEvent(ctx, tx, ledger, oldStatus, actorID); err != nil {
		return LedgerResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return LedgerResponse{}, err
	}

	return mapToResponse(*ledger), nil
}

func (s *service) OverrideComponent(
	ctx context.Context,
	companyID, actorID, ledgerID, lineID string,
	req OverrideComponentRequest,
) (LedgerBreakdownResponse, error) {
	if _, err := uuid.Parse(actorID); err != nil {
		return LedgerBreakdownResponse{}, ledgererrors.ErrInvalidActorID
	}
	if _, err := uuid.Parse(ledgerID); err != nil {
		return LedgerBreakdownResponse{}, ledgererrors.ErrInvalidLedgerID
	}
	if strings.TrimSpace(req.Reason) == "" {
		return LedgerBreakdownResponse{}, ledgererrors.ErrOverrideReasonRequired
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return LedgerBreakdownResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	ledger, err := qtx.FindForUpdate(ctx, companyID, ledgerID)
	if err != nil {
		return LedgerBreakdownResponse{}, mapRepositoryError(err)
	}

	if ledger.Status != StatusCalculated {
		return LedgerBreakdownResponse{}, ledgererrors.ErrOverrideOnlyCalculated
	}

	lines, err := qtx.FindComponents(ctx, ledgerID)
	if err != nil {
		return LedgerBreakdownResponse{}, mapRepositoryError(err)
	}

	idx := -1
	for i, line := range lines {
		if line.ID.String() == lineID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return LedgerBreakdownResponse{}, ledgererrors.ErrComponentLineNotFound
	}

	previous := lines[idx].EffectiveAmount()
	lines[idx].ValueSource = SourceOverridden
	lines[idx].OverrideAmount = req.Amount
	lines[idx].OverrideReason = req.Reason

	// An override does not re-run the cascade: every other line keeps its
	// calculated value, and the totals are re-derived from the mixed set.
	gross, deductions, taxes, net := DeriveTotals(ledger.BaseSalary, ledger.OvertimePay, ledger.BonusAmount, lines)
	if net < 0 {
		return LedgerBreakdownResponse{}, ledgererrors.NegativeNetPay(net)
	}

	if err := qtx.OverrideComponent(ctx, lineID, req.Amount, req.Reason); err != nil {
		return LedgerBreakdownResponse{}, err
	}

	ledger.GrossPay = gross
	ledger.TotalDeductions = deductions
	ledger.TotalTaxes = taxes
	ledger.NetPay = net

	if err := qtx.Update(ctx, ledger); err != nil {
		return LedgerBreakdownResponse{}, err
	}

	changes := mustJSON(map[string]any{
		"component_line":  lineID,
		"component_name":  lines[idx].Name,
		"previous_amount": previous,
		"override_amount": req.Amount,
		"net_pay":         net,
	})
	if err := s.appendAudit(ctx, tx, ledgerID, audit.ActionUpdated, ledger.Status, ledger.Status, changes, req.Reason, actorID); err != nil {
		return LedgerBreakdownResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return LedgerBreakdownResponse{}, err
	}

	return buildBreakdown(*ledger, lines), nil
}

func (s *service) Recalculate(ctx context.Context, companyID, actorID, id string, req RecalculateRequest) (LedgerResponse, error) {
	if _, err := uuid.Parse(actorID); err != nil {
		return LedgerResponse{}, ledgererrors.ErrInvalidActorID
	}
	if _, err := uuid.Parse(id); err != nil {
		return LedgerResponse{}, ledgererrors.ErrInvalidLedgerID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return LedgerResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	ledger, err := qtx.FindForUpdate(ctx, companyID, id)
	if err != nil {
		return LedgerResponse{}, mapRepositoryError(err)
	}

	// Recalculating an APPROVED or PAID ledger would silently invalidate
	// the sign-off, so only PENDING and CALCULATED ledgers qualify.
	if ledger.Status != StatusPending && ledger.Status != StatusCalculated {
		return LedgerResponse{}, ledgererrors.InvalidTransition(ledger.Status, StatusCalculated)
	}

	per, err := s.deps.Periods.FindByIDAndCompany(ctx, companyID, ledger.PeriodID.String())
	if err != nil {
		return LedgerResponse{}, mapRepositoryError(err)
	}

	profile, err := s.deps.Employees.FindByIDAndCompany(ctx, companyID, ledger.EmployeeID.String())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LedgerResponse{}, ledgererrors.ErrEmployeeNotFound
		}
		return LedgerResponse{}, err
	}

	components, err := s.deps.Components.ListActive(ctx, companyID)
	if err != nil {
		return LedgerResponse{}, err
	}

	input := CalcInput{
		Profile:    *profile,
		PeriodType: per.PeriodType,
		PeriodDays: per.Days(),
		Bonus:      ledger.BonusAmount,
		Components: components,
	}
	if req.Bonus != nil {
		input.Bonus = *req.Bonus
	}
	if profile.PayType == employee.PayTypeHourly {
		hours := HoursInput{OvertimeHours: ledger.OvertimeHours}
		if profile.HourlyRate > 0 {
			hours.RegularHours = ledger.BaseSalary / profile.HourlyRate
		}
		if req.RegularHours != nil {
			hours.RegularHours = *req.RegularHours
		}
		if req.OvertimeHours != nil {
			hours.OvertimeHours = *req.OvertimeHours
		}
		input.Hours = &hours
	}

	result, err := Calculate(s.engineConfig(), input)
	if err != nil {
		return LedgerResponse{}, err
	}

	// Replace the breakdown wholesale: delete-then-insert in the same tx,
	// so no reader ever sees a ledger without its full component set.
	if err := qtx.DeleteComponents(ctx, id); err != nil {
		return LedgerResponse{}, err
	}
	for i := range result.Lines {
		result.Lines[i].LedgerID = ledger.ID
	}
	if err := qtx.InsertComponents(ctx, id, result.Lines); err != nil {
		return LedgerResponse{}, err
	}

	oldStatus := ledger.Status
	applyResult(ledger, result)
	ledger.Status = StatusCalculated

	if err := qtx.Update(ctx, ledger); err != nil {
		return LedgerResponse{}, err
	}

	changes := mustJSON(map[string]any{
		"gross_pay":        result.GrossPay,
		"total_deductions": result.TotalDeductions,
		"total_taxes":      result.TotalTaxes,
		"net_pay":          result.NetPay,
		"components":       len(result.Lines),
	})
	if err := s.appendAudit(ctx, tx, id, audit.ActionCalculated, oldStatus, ledger.Status, changes, "", actorID); err != nil {
		return LedgerResponse{}, err
	}
	if err := s.enqueueStatusEvent(ctx, tx, ledger, oldStatus, actorID); err != nil {
		return LedgerResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return LedgerResponse{}, err
	}

	return mapToResponse(*ledger), nil
}

func (s *service) engineConfig() EngineConfig {
	return EngineConfig{OvertimeMultiplierBps: s.cfg.OvertimeMultiplierBps}
}

func (s *service) appendAudit(
	ctx context.Context,
	tx *sql.Tx,
	ledgerID, action, oldStatus, newStatus string,
	changes []byte,
	reason, actorID string,
) error {
	return s.auditRepo.WithTx(tx).Append(ctx, audit.Record{
		ID:          uuid.NewString(),
		LedgerID:    ledgerID,
		Action:      action,
		OldStatus:   oldStatus,
		NewStatus:   newStatus,
		Changes:     changes,
		Reason:      reason,
		PerformedBy: actorID,
	})
}

func (s *service) enqueueStatusEvent(ctx context.Context, tx *sql.Tx, ledger *PayrollLedger, oldStatus, actorID string) error {
	if s.outbox == nil {
		return nil
	}

	event := events.LedgerStatusChangedEvent{
		EventType:  "payroll.ledger." + strings.ToLower(ledger.Status),
		LedgerID:   ledger.ID.String(),
		CompanyID:  ledger.CompanyID.String(),
		PeriodID:   ledger.PeriodID.String(),
		EmployeeID: ledger.EmployeeID.String(),
		OldStatus:  oldStatus,
		NewStatus:  ledger.Status,
		ActorID:    actorID,
		OccurredAt: time.Now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     contextutil.GetRequestID(ctx),
		AggregateType: "payroll_ledger",
		AggregateID:   event.LedgerID,
		EventType:     event.EventType,
		Topic:         events.LedgerStatusChangedTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	})
}

func applyResult(ledger *PayrollLedger, result CalcResult) {
	ledger.BaseSalary = result.BaseSalary
	ledger.OvertimeHours = result.OvertimeHours
	ledger.OvertimePay = result.OvertimePay
	ledger.BonusAmount = result.BonusAmount
	ledger.GrossPay = result.GrossPay
	ledger.TotalDeductions = result.TotalDeductions
	ledger.TotalTaxes = result.TotalTaxes
	ledger.NetPay = result.NetPay
}

func buildBreakdown(ledger PayrollLedger, lines []LedgerComponent) LedgerBreakdownResponse {
	components := make([]LedgerComponentResponse, len(lines))
	for i, line := range lines {
		components[i] = mapComponentToResponse(line)
	}
	return LedgerBreakdownResponse{
		Ledger:     mapToResponse(ledger),
		Components: components,
	}
}

func mapRepositoryError(err error) error {
	if errors.Is(err, sql.ErrNoRows) || errors.Is(err, gorm.ErrRecordNotFound) {
		return ledgererrors.ErrLedgerNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ledgererrors.ErrDuplicateLedger
	}

	return err
}

func mustJSON(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		return []byte("{}")
	}
	return b
}
