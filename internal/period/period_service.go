package period

import (
	"context"
	"errors"

	perioderrors "go-payroll/internal/period/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service interface {
	Create(ctx context.Context, companyID, actorID string, req CreatePeriodRequest) (PeriodResponse, error)
	GetAll(ctx context.Context, companyID string) ([]PeriodResponse, error)
	GetByID(ctx context.Context, companyID, id string) (PeriodResponse, error)
	// StartProcessing claims the OPEN -> PROCESSING transition atomically.
	StartProcessing(ctx context.Context, companyID, id string) (PeriodResponse, error)
	Close(ctx context.Context, companyID, id string) (PeriodResponse, error)
	Cancel(ctx context.Context, companyID, id string, reason string) (PeriodResponse, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Create(
	ctx context.Context,
	companyID, actorID string,
	req CreatePeriodRequest,
) (PeriodResponse, error) {
	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return PeriodResponse{}, perioderrors.ErrInvalidCompanyID
	}
	createdByUUID, err := uuid.Parse(actorID)
	if err != nil {
		return PeriodResponse{}, perioderrors.ErrInvalidActorID
	}

	startDate, ok := parseDate(req.StartDate)
	if !ok {
		return PeriodResponse{}, perioderrors.ErrInvalidDateFormat
	}
	endDate, ok := parseDate(req.EndDate)
	if !ok {
		return PeriodResponse{}, perioderrors.ErrInvalidDateFormat
	}
	if endDate.Before(startDate) {
		return PeriodResponse{}, perioderrors.ErrEndBeforeStart
	}

	period := &PayrollPeriod{
		ID:         uuid.New(),
		CompanyID:  companyUUID,
		Name:       req.Name,
		PeriodType: req.PeriodType,
		StartDate:  startDate,
		EndDate:    endDate,
		Status:     StatusOpen,
		CreatedBy:  createdByUUID,
	}

	if req.PayDate != nil && *req.PayDate != "" {
		payDate, ok := parseDate(*req.PayDate)
		if !ok {
			return PeriodResponse{}, perioderrors.ErrInvalidDateFormat
		}
		if payDate.Before(endDate) {
			return PeriodResponse{}, perioderrors.ErrPayDateBeforeEnd
		}
		period.PayDate = &payDate
	}

	if err := s.repo.Create(ctx, period); err != nil {
		return PeriodResponse{}, err
	}

	return mapToResponse(*period), nil
}

func (s *service) GetAll(ctx context.Context, companyID string) ([]PeriodResponse, error) {
	periods, err := s.repo.FindAllByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}

	return mapToListResponse(periods), nil
}

func (s *service) GetByID(ctx context.Context, companyID, id string) (PeriodResponse, error) {
	period, err := s.findPeriod(ctx, companyID, id)
	if err != nil {
		return PeriodResponse{}, err
	}

	return mapToResponse(*period), nil
}

func (s *service) StartProcessing(ctx context.Context, companyID, id string) (PeriodResponse, error) {
	period, err := s.findPeriod(ctx, companyID, id)
	if err != nil {
		return PeriodResponse{}, err
	}

	affected, err := s.repo.CompareAndSwapStatus(ctx, companyID, id, StatusOpen, StatusProcessing)
	if err != nil {
		return PeriodResponse{}, err
	}
	if affected == 0 {
		// Either not OPEN, or another run won the swap between our read
		// and the update. Both cases are the same refusal.
		current, findErr := s.findPeriod(ctx, companyID, id)
		if findErr == nil {
			period = current
		}
		return PeriodResponse{}, perioderrors.InvalidTransition(period.Status, StatusProcessing)
	}

	period.Status = StatusProcessing
	zap.L().Info("payroll period processing started",
		zap.String("period_id", id),
		zap.String("company_id", companyID),
	)
	return mapToResponse(*period), nil
}

func (s *service) Close(ctx context.Context, companyID, id string) (PeriodResponse, error) {
	period, err := s.findPeriod(ctx, companyID, id)
	if err != nil {
		return PeriodResponse{}, err
	}

	if period.Status != StatusProcessing {
		return PeriodResponse{}, perioderrors.InvalidTransition(period.Status, StatusClosed)
	}

	unresolved, err := s.repo.CountUnresolvedLedgers(ctx, companyID, id)
	if err != nil {
		return PeriodResponse{}, err
	}
	if unresolved > 0 {
		return PeriodResponse{}, perioderrors.NotReady(unresolved)
	}

	affected, err := s.repo.CompareAndSwapStatus(ctx, companyID, id, StatusProcessing, StatusClosed)
	if err != nil {
		return PeriodResponse{}, err
	}
	if affected == 0 {
		return PeriodResponse{}, perioderrors.InvalidTransition(period.Status, StatusClosed)
	}

	period.Status = StatusClosed
	return mapToResponse(*period), nil
}

// Cancel marks the period CANCELLED from OPEN or PROCESSING. Ledgers of the
// period are never deleted; they stay behind for the audit trail.
func (s *service) Cancel(ctx context.Context, companyID, id string, reason string) (PeriodResponse, error) {
	period, err := s.findPeriod(ctx, companyID, id)
	if err != nil {
		return PeriodResponse{}, err
	}

	if period.Status != StatusOpen && period.Status != StatusProcessing {
		return PeriodResponse{}, perioderrors.InvalidTransition(period.Status, StatusCancelled)
	}

	affected, err := s.repo.CompareAndSwapStatus(ctx, companyID, id, period.Status, StatusCancelled)
	if err != nil {
		return PeriodResponse{}, err
	}
	if affected == 0 {
		return PeriodResponse{}, perioderrors.InvalidTransition(period.Status, StatusCancelled)
	}

	period.Status = StatusCancelled
	zap.L().Info("payroll period cancelled",
		zap.String("period_id", id),
		zap.String("company_id", companyID),
		zap.String("reason", reason),
	)
	return mapToResponse(*period), nil
}

func (s *service) findPeriod(ctx context.Context, companyID, id string) (*PayrollPeriod, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, perioderrors.ErrInvalidPeriodID
	}

	period, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, perioderrors.ErrPeriodNotFound
		}
		return nil, err
	}
	return period, nil
}
