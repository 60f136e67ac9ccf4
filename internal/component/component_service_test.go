package component_test

import (
	"context"
	"errors"
	"testing"

	"go-payroll/internal/component"
	componenterrors "go-payroll/internal/component/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeComponentRepository struct {
	createFn       func(ctx context.Context, c *component.SalaryComponent) error
	findAllFn      func(ctx context.Context, companyID string) ([]component.SalaryComponent, error)
	findActiveFn   func(ctx context.Context, companyID string) ([]component.SalaryComponent, error)
	findByIDFn     func(ctx context.Context, companyID, id string) (*component.SalaryComponent, error)
	updateFn       func(ctx context.Context, c *component.SalaryComponent) error
	setActiveFn    func(ctx context.Context, companyID, id string, active bool) (int64, error)
	created        []component.SalaryComponent
	updated        []component.SalaryComponent
}

func (f *fakeComponentRepository) Create(ctx context.Context, c *component.SalaryComponent) error {
	if f.createFn != nil {
		if err := f.createFn(ctx, c); err != nil {
			return err
		}
	}
	f.created = append(f.created, *c)
	return nil
}

func (f *fakeComponentRepository) FindAllByCompany(ctx context.Context, companyID string) ([]component.SalaryComponent, error) {
	if f.findAllFn != nil {
		return f.findAllFn(ctx, companyID)
	}
	return nil, nil
}

func (f *fakeComponentRepository) FindActiveByCompany(ctx context.Context, companyID string) ([]component.SalaryComponent, error) {
	if f.findActiveFn != nil {
		return f.findActiveFn(ctx, companyID)
	}
	return nil, nil
}

func (f *fakeComponentRepository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*component.SalaryComponent, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, companyID, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeComponentRepository) Update(ctx context.Context, c *component.SalaryComponent) error {
	if f.updateFn != nil {
		if err := f.updateFn(ctx, c); err != nil {
			return err
		}
	}
	f.updated = append(f.updated, *c)
	return nil
}

func (f *fakeComponentRepository) SetActive(ctx context.Context, companyID, id string, active bool) (int64, error) {
	if f.setActiveFn != nil {
		return f.setActiveFn(ctx, companyID, id, active)
	}
	return 1, nil
}

func storedComponent(companyID string) *component.SalaryComponent {
	return &component.SalaryComponent{
		ID:               uuid.New(),
		CompanyID:        uuid.MustParse(companyID),
		Name:             "Base Salary",
		ComponentType:    "EARNING",
		Amount:           500000,
		IsTaxable:        true,
		CalculationOrder: 1,
		Active:           true,
	}
}

func TestComponentService_Register(t *testing.T) {
	companyID := uuid.New().String()

	t.Run("success with percent basis", func(t *testing.T) {
		repo := &fakeComponentRepository{}
		svc := component.NewService(repo)

		res, err := svc.Register(context.Background(), companyID, component.RegisterComponentRequest{
			Name:             "Housing Allowance",
			ComponentType:    "EARNING",
			Percent:          10,
			IsTaxable:        true,
			CalculationOrder: 2,
		})

		assert.NoError(t, err)
		assert.Len(t, repo.created, 1)
		assert.Equal(t, int64(1000), repo.created[0].PercentBps)
		assert.True(t, repo.created[0].Active)
		assert.Equal(t, 10.0, res.Percent)
		assert.Equal(t, companyID, res.CompanyID)
	})

	t.Run("fractional percent rounds to basis points", func(t *testing.T) {
		repo := &fakeComponentRepository{}
		svc := component.NewService(repo)

		_, err := svc.Register(context.Background(), companyID, component.RegisterComponentRequest{
			Name:          "Income Tax",
			ComponentType: "TAX",
			Percent:       12.755,
		})

		assert.NoError(t, err)
		assert.Equal(t, int64(1276), repo.created[0].PercentBps)
	})

	t.Run("invalid company id", func(t *testing.T) {
		svc := component.NewService(&fakeComponentRepository{})

		_, err := svc.Register(context.Background(), "not-a-uuid", component.RegisterComponentRequest{
			Name:          "Base Salary",
			ComponentType: "EARNING",
			Amount:        500000,
		})

		assert.ErrorIs(t, err, componenterrors.ErrInvalidCompanyID)
	})

	t.Run("amount and percent together refused", func(t *testing.T) {
		svc := component.NewService(&fakeComponentRepository{})

		_, err := svc.Register(context.Background(), companyID, component.RegisterComponentRequest{
			Name:          "Broken",
			ComponentType: "EARNING",
			Amount:        100000,
			Percent:       5,
		})

		assert.ErrorIs(t, err, componenterrors.ErrExclusiveBasis)
	})

	t.Run("neither amount nor percent refused", func(t *testing.T) {
		svc := component.NewService(&fakeComponentRepository{})

		_, err := svc.Register(context.Background(), companyID, component.RegisterComponentRequest{
			Name:          "Empty",
			ComponentType: "DEDUCTION",
		})

		assert.ErrorIs(t, err, componenterrors.ErrExclusiveBasis)
	})

	t.Run("negative amount refused", func(t *testing.T) {
		svc := component.NewService(&fakeComponentRepository{})

		_, err := svc.Register(context.Background(), companyID, component.RegisterComponentRequest{
			Name:          "Negative",
			ComponentType: "DEDUCTION",
			Amount:        -100,
		})

		assert.ErrorIs(t, err, componenterrors.ErrNegativeAmount)
	})

	t.Run("percent over 100 refused", func(t *testing.T) {
		svc := component.NewService(&fakeComponentRepository{})

		_, err := svc.Register(context.Background(), companyID, component.RegisterComponentRequest{
			Name:          "TooBig",
			ComponentType: "TAX",
			Percent:       101,
		})

		assert.ErrorIs(t, err, componenterrors.ErrPercentOutOfRange)
	})

	t.Run("duplicate name maps to conflict", func(t *testing.T) {
		repo := &fakeComponentRepository{
			createFn: func(ctx context.Context, c *component.SalaryComponent) error {
				return &pgconn.PgError{Code: "23505", ConstraintName: "uq_component_company_name"}
			},
		}
		svc := component.NewService(repo)

		_, err := svc.Register(context.Background(), companyID, component.RegisterComponentRequest{
			Name:          "Base Salary",
			ComponentType: "EARNING",
			Amount:        500000,
		})

		assert.ErrorIs(t, err, componenterrors.ErrDuplicateName)
	})
}

func TestComponentService_GetByID(t *testing.T) {
	companyID := uuid.New().String()

	t.Run("invalid id", func(t *testing.T) {
		svc := component.NewService(&fakeComponentRepository{})

		_, err := svc.GetByID(context.Background(), companyID, "nope")

		assert.ErrorIs(t, err, componenterrors.ErrInvalidComponentID)
	})

	t.Run("not found", func(t *testing.T) {
		svc := component.NewService(&fakeComponentRepository{})

		_, err := svc.GetByID(context.Background(), companyID, uuid.New().String())

		assert.ErrorIs(t, err, componenterrors.ErrComponentNotFound)
	})

	t.Run("success converts basis points back to percent", func(t *testing.T) {
		stored := storedComponent(companyID)
		stored.Amount = 0
		stored.PercentBps = 1500
		repo := &fakeComponentRepository{
			findByIDFn: func(ctx context.Context, gotCompany, id string) (*component.SalaryComponent, error) {
				assert.Equal(t, companyID, gotCompany)
				return stored, nil
			},
		}
		svc := component.NewService(repo)

		res, err := svc.GetByID(context.Background(), companyID, stored.ID.String())

		assert.NoError(t, err)
		assert.Equal(t, 15.0, res.Percent)
		assert.Equal(t, int64(0), res.Amount)
	})
}

func TestComponentService_Update(t *testing.T) {
	companyID := uuid.New().String()

	t.Run("success rewrites the basis", func(t *testing.T) {
		stored := storedComponent(companyID)
		repo := &fakeComponentRepository{
			findByIDFn: func(ctx context.Context, gotCompany, id string) (*component.SalaryComponent, error) {
				return stored, nil
			},
		}
		svc := component.NewService(repo)

		res, err := svc.Update(context.Background(), companyID, stored.ID.String(), component.UpdateComponentRequest{
			Name:             "Base Salary",
			ComponentType:    "EARNING",
			Percent:          20,
			IsTaxable:        true,
			CalculationOrder: 3,
		})

		assert.NoError(t, err)
		assert.Len(t, repo.updated, 1)
		assert.Equal(t, int64(0), repo.updated[0].Amount)
		assert.Equal(t, int64(2000), repo.updated[0].PercentBps)
		assert.Equal(t, 3, repo.updated[0].CalculationOrder)
		assert.Equal(t, 20.0, res.Percent)
	})

	t.Run("basis validated before the lookup", func(t *testing.T) {
		repo := &fakeComponentRepository{
			findByIDFn: func(ctx context.Context, companyID, id string) (*component.SalaryComponent, error) {
				t.Fatal("repository must not be read for an invalid basis")
				return nil, nil
			},
		}
		svc := component.NewService(repo)

		_, err := svc.Update(context.Background(), companyID, uuid.New().String(), component.UpdateComponentRequest{
			Name:          "Broken",
			ComponentType: "EARNING",
			Amount:        100,
			Percent:       5,
		})

		assert.ErrorIs(t, err, componenterrors.ErrExclusiveBasis)
	})

	t.Run("missing component", func(t *testing.T) {
		svc := component.NewService(&fakeComponentRepository{})

		_, err := svc.Update(context.Background(), companyID, uuid.New().String(), component.UpdateComponentRequest{
			Name:          "Gone",
			ComponentType: "EARNING",
			Amount:        100,
		})

		assert.ErrorIs(t, err, componenterrors.ErrComponentNotFound)
	})
}

func TestComponentService_Deactivate(t *testing.T) {
	companyID := uuid.New().String()

	t.Run("success", func(t *testing.T) {
		var gotActive *bool
		repo := &fakeComponentRepository{
			setActiveFn: func(ctx context.Context, gotCompany, id string, active bool) (int64, error) {
				gotActive = &active
				return 1, nil
			},
		}
		svc := component.NewService(repo)

		err := svc.Deactivate(context.Background(), companyID, uuid.New().String())

		assert.NoError(t, err)
		if assert.NotNil(t, gotActive) {
			assert.False(t, *gotActive)
		}
	})

	t.Run("no row toggled means not found", func(t *testing.T) {
		repo := &fakeComponentRepository{
			setActiveFn: func(ctx context.Context, companyID, id string, active bool) (int64, error) {
				return 0, nil
			},
		}
		svc := component.NewService(repo)

		err := svc.Deactivate(context.Background(), companyID, uuid.New().String())

		assert.ErrorIs(t, err, componenterrors.ErrComponentNotFound)
	})

	t.Run("invalid id", func(t *testing.T) {
		svc := component.NewService(&fakeComponentRepository{})

		err := svc.Deactivate(context.Background(), companyID, "nope")

		assert.ErrorIs(t, err, componenterrors.ErrInvalidComponentID)
	})
}

func TestComponentService_ListActive(t *testing.T) {
	companyID := uuid.New().String()

	t.Run("passes components through in repository order", func(t *testing.T) {
		first := *storedComponent(companyID)
		second := *storedComponent(companyID)
		second.Name = "Housing Allowance"
		second.CalculationOrder = 2
		repo := &fakeComponentRepository{
			findActiveFn: func(ctx context.Context, gotCompany string) ([]component.SalaryComponent, error) {
				assert.Equal(t, companyID, gotCompany)
				return []component.SalaryComponent{first, second}, nil
			},
		}
		svc := component.NewService(repo)

		got, err := svc.ListActive(context.Background(), companyID)

		assert.NoError(t, err)
		assert.Len(t, got, 2)
		assert.Equal(t, "Base Salary", got[0].Name)
		assert.Equal(t, "Housing Allowance", got[1].Name)
	})

	t.Run("repository failure surfaces", func(t *testing.T) {
		repo := &fakeComponentRepository{
			findActiveFn: func(ctx context.Context, companyID string) ([]component.SalaryComponent, error) {
				return nil, errors.New("connection reset")
			},
		}
		svc := component.NewService(repo)

		_, err := svc.ListActive(context.Background(), companyID)

		assert.EqualError(t, err, "connection reset")
	})
}
