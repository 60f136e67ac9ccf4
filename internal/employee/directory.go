package employee

import (
	"context"

	"go-payroll/internal/tenant"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	PayTypeSalaried = "SALARIED"
	PayTypeHourly   = "HOURLY"
)

// PayProfile is the slice of an employee this module is allowed to see.
// Employee data is owned by the platform's employee module; payroll only
// reads ids, activity and pay basis.
type PayProfile struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	CompanyID     uuid.UUID `gorm:"type:uuid"`
	FullName      string    `gorm:"column:full_name"`
	Active        bool      `gorm:"column:active"`
	PayType       string    `gorm:"column:pay_type"`
	MonthlySalary int64     `gorm:"column:monthly_salary"`
	HourlyRate    int64     `gorm:"column:hourly_rate"`
}

func (PayProfile) TableName() string {
	return "employees"
}

// Directory is the read-only view onto the employee collaborator.
type Directory interface {
	FindByIDAndCompany(ctx context.Context, companyID string, employeeID string) (*PayProfile, error)
	ListActiveByCompany(ctx context.Context, companyID string) ([]PayProfile, error)
}

type directory struct {
	db *gorm.DB
}

func NewDirectory(db *gorm.DB) Directory {
	return &directory{db: db}
}

func (d *directory) FindByIDAndCompany(ctx context.Context, companyID string, employeeID string) (*PayProfile, error) {
	var profile PayProfile
	err := d.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("deleted_at IS NULL").
		First(&profile, "id = ?", employeeID).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (d *directory) ListActiveByCompany(ctx context.Context, companyID string) ([]PayProfile, error) {
	var profiles []PayProfile
	err := d.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("active = ?", true).
		Where("deleted_at IS NULL").
		Order("id ASC").
		Find(&profiles).Error
	return profiles, err
}
