package component

import (
	"context"
	"errors"

	componenterrors "go-payroll/internal/component/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// maxPercentBps caps percentage components at 100% (10000 basis points).
const maxPercentBps = 10000

type Service interface {
	Register(ctx context.Context, companyID string, req RegisterComponentRequest) (ComponentResponse, error)
	GetAll(ctx context.Context, companyID string) ([]ComponentResponse, error)
	ListActive(ctx context.Context, companyID string) ([]SalaryComponent, error)
	GetByID(ctx context.Context, companyID, id string) (ComponentResponse, error)
	Update(ctx context.Context, companyID, id string, req UpdateComponentRequest) (ComponentResponse, error)
	Deactivate(ctx context.Context, companyID, id string) error
}

type service struct {
	repo  Repository
	group singleflight.Group
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Register(
	ctx context.Context,
	companyID string,
	req RegisterComponentRequest,
) (ComponentResponse, error) {
	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return ComponentResponse{}, componenterrors.ErrInvalidCompanyID
	}

	percentBps, err := validateBasis(req.Amount, req.Percent)
	if err != nil {
		return ComponentResponse{}, err
	}

	component := &SalaryComponent{
		ID:               uuid.New(),
		CompanyID:        companyUUID,
		Name:             req.Name,
		ComponentType:    req.ComponentType,
		Amount:           req.Amount,
		PercentBps:       percentBps,
		IsTaxable:        req.IsTaxable,
		IsMandatory:      req.IsMandatory,
		CalculationOrder: req.CalculationOrder,
		Active:           true,
	}

	if err := s.repo.Create(ctx, component); err != nil {
		return ComponentResponse{}, mapRepositoryError(err)
	}

	return mapToResponse(*component), nil
}

func (s *service) GetAll(ctx context.Context, companyID string) ([]ComponentResponse, error) {
	components, err := s.repo.FindAllByCompany(ctx, companyID)
	if err != nil {
		return nil, mapRepositoryError(err)
	}

	return mapToListResponse(components), nil
}

// ListActive returns the active components in evaluation order. A batch run
// calls this once per worker start-up burst, so concurrent identical reads
// are collapsed through singleflight.
func (s *service) ListActive(ctx context.Context, companyID string) ([]SalaryComponent, error) {
	v, err, _ := s.group.Do("active:"+companyID, func() (interface{}, error) {
		return s.repo.FindActiveByCompany(ctx, companyID)
	})
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return v.([]SalaryComponent), nil
}

func (s *service) GetByID(ctx context.Context, companyID, id string) (ComponentResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return ComponentResponse{}, componenterrors.ErrInvalidComponentID
	}

	component, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return ComponentResponse{}, mapRepositoryError(err)
	}

	return mapToResponse(*component), nil
}

func (s *service) Update(
	ctx context.Context,
	companyID, id string,
	req UpdateComponentRequest,
) (ComponentResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return ComponentResponse{}, componenterrors.ErrInvalidComponentID
	}

	percentBps, err := validateBasis(req.Amount, req.Percent)
	if err != nil {
		return ComponentResponse{}, err
	}

	component, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return ComponentResponse{}, mapRepositoryError(err)
	}

	component.Name = req.Name
	component.ComponentType = req.ComponentType
	component.Amount = req.Amount
	component.PercentBps = percentBps
	component.IsTaxable = req.IsTaxable
	component.IsMandatory = req.IsMandatory
	component.CalculationOrder = req.CalculationOrder

	if err := s.repo.Update(ctx, component); err != nil {
		return ComponentResponse{}, mapRepositoryError(err)
	}

	return mapToResponse(*component), nil
}

// Deactivate is a soft toggle. Historical ledger components keep their own
// snapshot values, so nothing already calculated is affected.
func (s *service) Deactivate(ctx context.Context, companyID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return componenterrors.ErrInvalidComponentID
	}

	affected, err := s.repo.SetActive(ctx, companyID, id, false)
	if err != nil {
		return mapRepositoryError(err)
	}
	if affected == 0 {
		return componenterrors.ErrComponentNotFound
	}
	return nil
}

// validateBasis enforces the exactly-one-of rule between a fixed amount and
// a percentage, converting the percentage to basis points.
func validateBasis(amount int64, percent float64) (int64, error) {
	if amount < 0 {
		return 0, componenterrors.ErrNegativeAmount
	}
	if percent < 0 || percent > 100 {
		return 0, componenterrors.ErrPercentOutOfRange
	}

	percentBps := int64(percent*100 + 0.5)

	hasAmount := amount > 0
	hasPercent := percentBps > 0
	if hasAmount == hasPercent {
		return 0, componenterrors.ErrExclusiveBasis
	}
	if percentBps > maxPercentBps {
		return 0, componenterrors.ErrPercentOutOfRange
	}

	return percentBps, nil
}

func mapRepositoryError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return componenterrors.ErrComponentNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return componenterrors.ErrDuplicateName
	}

	return err
}

func mapToResponse(component SalaryComponent) ComponentResponse {
	return ComponentResponse{
		ID:               component.ID.String(),
		CompanyID:        component.CompanyID.String(),
		Name:             component.Name,
		ComponentType:    component.ComponentType,
		Amount:           component.Amount,
		Percent:          float64(component.PercentBps) / 100,
		IsTaxable:        component.IsTaxable,
		IsMandatory:      component.IsMandatory,
		CalculationOrder: component.CalculationOrder,
		Active:           component.Active,
	}
}

func mapToListResponse(components []SalaryComponent) []ComponentResponse {
	res := make([]ComponentResponse, len(components))
	for i, component := range components {
		res[i] = mapToResponse(component)
	}
	return res
}
