package component

import (
	"time"

	"github.com/google/uuid"
)

const (
	TypeEarning   = "EARNING"
	TypeDeduction = "DEDUCTION"
	TypeTax       = "TAX"
)

// SalaryComponent is a reusable calculation rule. Exactly one of Amount and
// PercentBps is positive: Amount is a fixed value in minor currency units,
// PercentBps is a percentage in basis points (100 bps = 1%).
type SalaryComponent struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID        uuid.UUID `gorm:"type:uuid;not null;index:idx_component_company_name,unique"`
	Name             string    `gorm:"type:varchar(120);not null;index:idx_component_company_name,unique"`
	ComponentType    string    `gorm:"type:varchar(20);not null"`
	Amount           int64     `gorm:"type:bigint;not null;default:0"`
	PercentBps       int64     `gorm:"type:bigint;not null;default:0"`
	IsTaxable        bool      `gorm:"not null;default:false"`
	IsMandatory      bool      `gorm:"not null;default:false"`
	CalculationOrder int       `gorm:"not null;default:0"`
	Active           bool      `gorm:"not null;default:true"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (SalaryComponent) TableName() string {
	return "salary_components"
}

// IsPercentage reports whether the component's basis is percentage-based.
func (c SalaryComponent) IsPercentage() bool {
	return c.PercentBps > 0
}
