package ledger

import (
	"sort"

	"go-payroll/internal/component"
	"go-payroll/internal/employee"
	ledgererrors "go-payroll/internal/ledger/errors"

	"github.com/google/uuid"
)

// DefaultOvertimeMultiplierBps is 1.5x in basis points.
const DefaultOvertimeMultiplierBps = 15000

type EngineConfig struct {
	// OvertimeMultiplierBps is applied to the hourly rate for overtime
	// hours, in basis points (15000 = 1.5x).
	OvertimeMultiplierBps int64
}

// HoursInput carries the worked hours for one employee in one run. It is
// mandatory for HOURLY employees and ignored for SALARIED ones.
type HoursInput struct {
	RegularHours  int64
	OvertimeHours int64
}

type CalcInput struct {
	Profile    employee.PayProfile
	PeriodType string
	PeriodDays int
	Hours      *HoursInput
	Bonus      int64
	Components []component.SalaryComponent
}

type CalcResult struct {
	BaseSalary      int64
	OvertimeHours   int64
	OvertimePay     int64
	BonusAmount     int64
	GrossPay        int64
	TotalDeductions int64
	TotalTaxes      int64
	NetPay          int64
	Lines           []LedgerComponent
}

// Calculate evaluates the ordered component set against one employee's base
// pay. It is pure: same input, same output, no side effects, which is what
// makes a wholesale retry of a failed persist safe.
//
// Components are evaluated strictly in ascending (calculation_order, id).
// Percentage EARNING and DEDUCTION components apply to the gross accumulated
// so far; percentage TAX components apply to the running taxable subtotal
// (base pay, bonus, overtime and every taxable earning evaluated before
// them). Later components therefore see the output of earlier ones: the
// order is semantics, not presentation.
func Calculate(cfg EngineConfig, in CalcInput) (CalcResult, error) {
	basePay, overtimeHours, overtimePay, err := resolveBasePay(cfg, in)
	if err != nil {
		return CalcResult{}, err
	}

	gross := basePay + overtimePay + in.Bonus
	taxable := gross
	var deductions, taxes int64

	components := make([]component.SalaryComponent, len(in.Components))
	copy(components, in.Components)
	sort.SliceStable(components, func(i, j int) bool {
		if components[i].CalculationOrder != components[j].CalculationOrder {
			return components[i].CalculationOrder < components[j].CalculationOrder
		}
		return components[i].ID.String() < components[j].ID.String()
	})

	lines := make([]LedgerComponent, 0, len(components))
	for _, comp := range components {
		var calculated int64
		if comp.IsPercentage() {
			basis := gross
			if comp.ComponentType == component.TypeTax {
				basis = taxable
			}
			calculated = applyBps(basis, comp.PercentBps)
		} else {
			calculated = comp.Amount
		}

		switch comp.ComponentType {
		case component.TypeEarning:
			gross += calculated
			if comp.IsTaxable {
				taxable += calculated
			}
		case component.TypeDeduction:
			deductions += calculated
		case component.TypeTax:
			taxes += calculated
		}

		lines = append(lines, LedgerComponent{
			ID:               uuid.New(),
			ComponentID:      comp.ID,
			Name:             comp.Name,
			ComponentType:    comp.ComponentType,
			CalculationOrder: comp.CalculationOrder,
			ConfiguredAmount: comp.Amount,
			PercentBps:       comp.PercentBps,
			CalculatedAmount: calculated,
			ValueSource:      SourceCalculated,
		})
	}

	net := gross - deductions - taxes
	if net < 0 {
		return CalcResult{}, ledgererrors.NegativeNetPay(net)
	}

	return CalcResult{
		BaseSalary:      basePay,
		OvertimeHours:   overtimeHours,
		OvertimePay:     overtimePay,
		BonusAmount:     in.Bonus,
		GrossPay:        gross,
		TotalDeductions: deductions,
		TotalTaxes:      taxes,
		NetPay:          net,
		Lines:           lines,
	}, nil
}

func resolveBasePay(cfg EngineConfig, in CalcInput) (basePay, overtimeHours, overtimePay int64, err error) {
	switch in.Profile.PayType {
	case employee.PayTypeSalaried:
		return prorate(in.Profile.MonthlySalary, in.PeriodType, in.PeriodDays), 0, 0, nil

	case employee.PayTypeHourly:
		if in.Hours == nil {
			return 0, 0, 0, ledgererrors.ErrMissingHours
		}
		if in.Hours.RegularHours < 0 || in.Hours.OvertimeHours < 0 {
			return 0, 0, 0, ledgererrors.ErrNegativeHours
		}

		multiplier := cfg.OvertimeMultiplierBps
		if multiplier <= 0 {
			multiplier = DefaultOvertimeMultiplierBps
		}

		basePay = in.Profile.HourlyRate * in.Hours.RegularHours
		overtimePay = applyBps(in.Profile.HourlyRate*in.Hours.OvertimeHours, multiplier)
		return basePay, in.Hours.OvertimeHours, overtimePay, nil

	default:
		return 0, 0, 0, ledgererrors.ErrUnknownPayType
	}
}

// prorate converts a monthly salary into the pay figure for one period.
func prorate(monthly int64, periodType string, periodDays int) int64 {
	annual := monthly * 12
	switch periodType {
	case "BI_WEEKLY":
		return roundDiv(annual, 26)
	case "WEEKLY":
		return roundDiv(annual, 52)
	case "CUSTOM":
		return roundDiv(annual*int64(periodDays), 365)
	default: // MONTHLY
		return monthly
	}
}

// applyBps multiplies an amount by a basis-point factor, rounding half up.
func applyBps(amount, bps int64) int64 {
	return (amount*bps + 5000) / 10000
}

func roundDiv(a, b int64) int64 {
	return (a + b/2) / b
}
