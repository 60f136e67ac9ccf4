package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go-payroll/internal/audit"
	"go-payroll/internal/component"
	"go-payroll/internal/employee"
	ledgererrors "go-payroll/internal/ledger/errors"
	"go-payroll/internal/period"
	perioderrors "go-payroll/internal/period/errors"
	"go-payroll/internal/shared/apperror"
	"go-payroll/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultCalcWorkers = 4
	ledgerCounterType  = "payroll_ledger"
)

// CalculatePeriod runs the engine for every active employee of the company
// and persists one ledger per employee. The run claims an OPEN period by
// flipping it to PROCESSING first; a period already in PROCESSING may be
// run again, and employees who already have a ledger fail individually on
// the uniqueness constraint instead of aborting the batch.
func (s *service) CalculatePeriod(
	ctx context.Context,
	companyID, actorID, periodID string,
	req CalculatePeriodRequest,
) (BatchResult, error) {
	if _, err := uuid.Parse(companyID); err != nil {
		return BatchResult{}, ledgererrors.ErrInvalidCompanyID
	}
	if _, err := uuid.Parse(actorID); err != nil {
		return BatchResult{}, ledgererrors.ErrInvalidActorID
	}
	if _, err := uuid.Parse(periodID); err != nil {
		return BatchResult{}, ledgererrors.ErrInvalidPeriodID
	}

	entries := make(map[string]EmployeeCalcEntry, len(req.Entries))
	for _, entry := range req.Entries {
		if entry.RegularHours < 0 || entry.OvertimeHours < 0 || entry.Bonus < 0 {
			return BatchResult{}, ledgererrors.ErrNegativeHours
		}
		entries[entry.EmployeeID] = entry
	}

	per, err := s.claimPeriod(ctx, companyID, periodID)
	if err != nil {
		return BatchResult{}, err
	}

	profiles, err := s.deps.Employees.ListActiveByCompany(ctx, companyID)
	if err != nil {
		return BatchResult{}, err
	}

	components, err := s.deps.Components.ListActive(ctx, companyID)
	if err != nil {
		return BatchResult{}, err
	}

	workers := s.cfg.CalcWorkers
	if workers <= 0 {
		workers = defaultCalcWorkers
	}
	if workers > len(profiles) && len(profiles) > 0 {
		workers = len(profiles)
	}

	result := BatchResult{PeriodID: periodID}
	var mu sync.Mutex
	var wg sync.WaitGroup

	jobs := make(chan employee.PayProfile)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for profile := range jobs {
				entry, hasEntry := entries[profile.ID.String()]
				resp, err := s.calculateOne(ctx, companyID, actorID, per, profile, entry, hasEntry, components)

				mu.Lock()
				if err != nil {
					result.Failed = append(result.Failed, toBatchFailure(profile.ID.String(), err))
				} else {
					result.Succeeded = append(result.Succeeded, resp)
				}
				mu.Unlock()
			}
		}()
	}

	for _, profile := range profiles {
		jobs <- profile
	}
	close(jobs)
	wg.Wait()

	sort.Slice(result.Succeeded, func(i, j int) bool {
		return result.Succeeded[i].EmployeeID < result.Succeeded[j].EmployeeID
	})
	sort.Slice(result.Failed, func(i, j int) bool {
		return result.Failed[i].EmployeeID < result.Failed[j].EmployeeID
	})

	contextutil.GetLogger(ctx, zap.L()).Named("payroll.batch").Info("period calculation finished",
		zap.String("period_id", periodID),
		zap.Int("succeeded", len(result.Succeeded)),
		zap.Int("failed", len(result.Failed)),
	)

	return result, nil
}

// claimPeriod moves an OPEN period to PROCESSING via compare-and-swap, so
// two concurrent runs never both believe they claimed it. A period that is
// already PROCESSING passes through untouched.
func (s *service) claimPeriod(ctx context.Context, companyID, periodID string) (*period.PayrollPeriod, error) {
	per, err := s.deps.Periods.FindByIDAndCompany(ctx, companyID, periodID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, perioderrors.ErrPeriodNotFound
		}
		return nil, err
	}

	switch per.Status {
	case period.StatusProcessing:
		return per, nil
	case period.StatusOpen:
		affected, err := s.deps.Periods.CompareAndSwapStatus(ctx, companyID, periodID, period.StatusOpen, period.StatusProcessing)
		if err != nil {
			return nil, err
		}
		if affected == 0 {
			// Lost the race. Whoever won may have moved it anywhere, so
			// re-read and only continue if it landed in PROCESSING.
			per, err = s.deps.Periods.FindByIDAndCompany(ctx, companyID, periodID)
			if err != nil {
				return nil, err
			}
			if per.Status != period.StatusProcessing {
				return nil, perioderrors.InvalidTransition(per.Status, period.StatusProcessing)
			}
			return per, nil
		}
		per.Status = period.StatusProcessing
		return per, nil
	default:
		return nil, perioderrors.InvalidTransition(per.Status, period.StatusProcessing)
	}
}

// calculateOne evaluates a single employee and persists the ledger, its
// component lines and the provenance rows in one transaction.
func (s *service) calculateOne(
	ctx context.Context,
	companyID, actorID string,
	per *period.PayrollPeriod,
	profile employee.PayProfile,
	entry EmployeeCalcEntry,
	hasEntry bool,
	components []component.SalaryComponent,
) (LedgerResponse, error) {
	input := CalcInput{
		Profile:    profile,
		PeriodType: per.PeriodType,
		PeriodDays: per.Days(),
		Bonus:      entry.Bonus,
		Components: components,
	}
	if profile.PayType == employee.PayTypeHourly && hasEntry {
		input.Hours = &HoursInput{
			RegularHours:  entry.RegularHours,
			OvertimeHours: entry.OvertimeHours,
		}
	}

	result, err := Calculate(s.engineConfig(), input)
	if err != nil {
		return LedgerResponse{}, err
	}

	seq, err := s.deps.Counters.GetNextValue(ctx, companyID, ledgerCounterType)
	if err != nil {
		return LedgerResponse{}, err
	}
	ledgerNumber := fmt.Sprintf("PAY-%d-%05d", per.StartDate.Year(), seq)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return LedgerResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	ledger := &PayrollLedger{
		ID:           uuid.New(),
		CompanyID:    mustUUID(companyID),
		EmployeeID:   profile.ID,
		PeriodID:     per.ID,
		LedgerNumber: ledgerNumber,
		Status:       StatusCalculated,
	}
	applyResult(ledger, result)

	if err := qtx.Create(ctx, ledger); err != nil {
		return LedgerResponse{}, mapRepositoryError(err)
	}

	for i := range result.Lines {
		result.Lines[i].LedgerID = ledger.ID
	}
	if err := qtx.InsertComponents(ctx, ledger.ID.String(), result.Lines); err != nil {
		return LedgerResponse{}, err
	}

	created := mustJSON(map[string]any{
		"ledger_number": ledgerNumber,
		"employee_id":   profile.ID.String(),
		"period_id":     per.ID.String(),
	})
	if err := s.appendAudit(ctx, tx, ledger.ID.String(), audit.ActionCreated, "", StatusPending, created, "", actorID); err != nil {
		return LedgerResponse{}, err
	}

	calculated := mustJSON(map[string]any{
		"gross_pay":        result.GrossPay,
		"total_deductions": result.TotalDeductions,
		"total_taxes":      result.TotalTaxes,
		"net_pay":          result.NetPay,
		"components":       len(result.Lines),
	})
	if err := s.appendAudit(ctx, tx, ledger.ID.String(), audit.ActionCalculated, StatusPending, StatusCalculated, calculated, "", actorID); err != nil {
		return LedgerResponse{}, err
	}

	if err := s.enqueueStatusEvent(ctx, tx, ledger, StatusPending, actorID); err != nil {
		return LedgerResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return LedgerResponse{}, err
	}

	now := time.Now().UTC()
	ledger.CreatedAt = now
	ledger.UpdatedAt = now

	return mapToResponse(*ledger), nil
}

func toBatchFailure(employeeID string, err error) BatchFailure {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return BatchFailure{EmployeeID: employeeID, Code: appErr.Code, Message: appErr.Message}
	}

	return BatchFailure{EmployeeID: employeeID, Code: apperror.CodeInternalError, Message: err.Error()}
}
