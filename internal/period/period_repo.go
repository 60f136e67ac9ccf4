package period

import (
	"context"

	"go-payroll/internal/tenant"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, period *PayrollPeriod) error
	FindAllByCompany(ctx context.Context, companyID string) ([]PayrollPeriod, error)
	FindByIDAndCompany(ctx context.Context, companyID string, id string) (*PayrollPeriod, error)
	// CompareAndSwapStatus flips the period status only when the current
	// status matches. Returns the number of rows changed (0 or 1); the
	// single conditional UPDATE is what keeps two concurrent batch runs
	// from both claiming the same period.
	CompareAndSwapStatus(ctx context.Context, companyID string, id string, from, to string) (int64, error)
	CountUnresolvedLedgers(ctx context.Context, companyID string, periodID string) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, period *PayrollPeriod) error {
	return r.db.WithContext(ctx).Create(period).Error
}

func (r *repository) FindAllByCompany(ctx context.Context, companyID string) ([]PayrollPeriod, error) {
	var periods []PayrollPeriod
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Order("start_date DESC").
		Find(&periods).Error
	return periods, err
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID string, id string) (*PayrollPeriod, error) {
	var period PayrollPeriod
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&period, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &period, nil
}

func (r *repository) CompareAndSwapStatus(ctx context.Context, companyID string, id string, from, to string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&PayrollPeriod{}).
		Scopes(tenant.Scope(companyID)).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	return res.RowsAffected, res.Error
}

func (r *repository) CountUnresolvedLedgers(ctx context.Context, companyID string, periodID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("payroll_ledgers").
		Scopes(tenant.Scope(companyID)).
		Where("period_id = ?", periodID).
		Where("status IN ?", []string{"PENDING", "CALCULATED"}).
		Count(&count).Error
	return count, err
}
