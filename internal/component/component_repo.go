package component

import (
	"context"

	"go-payroll/internal/tenant"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, component *SalaryComponent) error
	FindAllByCompany(ctx context.Context, companyID string) ([]SalaryComponent, error)
	FindActiveByCompany(ctx context.Context, companyID string) ([]SalaryComponent, error)
	FindByIDAndCompany(ctx context.Context, companyID string, id string) (*SalaryComponent, error)
	Update(ctx context.Context, component *SalaryComponent) error
	SetActive(ctx context.Context, companyID string, id string, active bool) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, component *SalaryComponent) error {
	return r.db.WithContext(ctx).Create(component).Error
}

func (r *repository) FindAllByCompany(ctx context.Context, companyID string) ([]SalaryComponent, error) {
	var components []SalaryComponent
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Order("calculation_order ASC, id ASC").
		Find(&components).Error
	return components, err
}

func (r *repository) FindActiveByCompany(ctx context.Context, companyID string) ([]SalaryComponent, error) {
	var components []SalaryComponent
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("active = ?", true).
		Order("calculation_order ASC, id ASC").
		Find(&components).Error
	return components, err
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID string, id string) (*SalaryComponent, error) {
	var component SalaryComponent
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&component, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &component, nil
}

func (r *repository) Update(ctx context.Context, component *SalaryComponent) error {
	return r.db.WithContext(ctx).Save(component).Error
}

func (r *repository) SetActive(ctx context.Context, companyID string, id string, active bool) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&SalaryComponent{}).
		Scopes(tenant.Scope(companyID)).
		Where("id = ?", id).
		Update("active", active)
	return res.RowsAffected, res.Error
}
