package period

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusOpen       = "OPEN"
	StatusProcessing = "PROCESSING"
	StatusClosed     = "CLOSED"
	StatusCancelled  = "CANCELLED"
)

const (
	TypeMonthly  = "MONTHLY"
	TypeBiWeekly = "BI_WEEKLY"
	TypeWeekly   = "WEEKLY"
	TypeCustom   = "CUSTOM"
)

// PayrollPeriod batches the ledgers of one pay cycle. Periods are never
// physically deleted once ledgers reference them; cancellation only flips
// the status.
type PayrollPeriod struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Name       string    `gorm:"type:varchar(120);not null"`
	PeriodType string    `gorm:"type:varchar(20);not null"`
	StartDate  time.Time `gorm:"type:date;not null"`
	EndDate    time.Time `gorm:"type:date;not null"`
	PayDate    *time.Time `gorm:"type:date"`
	Status     string    `gorm:"type:varchar(20);not null;default:'OPEN';index"`
	CreatedBy  uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (PayrollPeriod) TableName() string {
	return "payroll_periods"
}

// Days returns the inclusive day count of the period, used for CUSTOM
// proration.
func (p PayrollPeriod) Days() int {
	return int(p.EndDate.Sub(p.StartDate).Hours()/24) + 1
}
