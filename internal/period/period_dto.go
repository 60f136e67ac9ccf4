package period

import "time"

type CreatePeriodRequest struct {
	Name       string  `json:"name" binding:"required,max=120"`
	PeriodType string  `json:"period_type" binding:"required,oneof=MONTHLY BI_WEEKLY WEEKLY CUSTOM"`
	StartDate  string  `json:"start_date" binding:"required"`
	EndDate    string  `json:"end_date" binding:"required"`
	PayDate    *string `json:"pay_date"`
}

type CancelPeriodRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type PeriodResponse struct {
	ID         string  `json:"id"`
	CompanyID  string  `json:"company_id"`
	Name       string  `json:"name"`
	PeriodType string  `json:"period_type"`
	StartDate  string  `json:"start_date"`
	EndDate    string  `json:"end_date"`
	PayDate    *string `json:"pay_date,omitempty"`
	Status     string  `json:"status"`
	CreatedBy  string  `json:"created_by"`
}

func mapToResponse(period PayrollPeriod) PeriodResponse {
	resp := PeriodResponse{
		ID:         period.ID.String(),
		CompanyID:  period.CompanyID.String(),
		Name:       period.Name,
		PeriodType: period.PeriodType,
		StartDate:  period.StartDate.Format("2006-01-02"),
		EndDate:    period.EndDate.Format("2006-01-02"),
		Status:     period.Status,
		CreatedBy:  period.CreatedBy.String(),
	}

	if period.PayDate != nil {
		v := period.PayDate.Format("2006-01-02")
		resp.PayDate = &v
	}

	return resp
}

func mapToListResponse(periods []PayrollPeriod) []PeriodResponse {
	res := make([]PeriodResponse, len(periods))
	for i, period := range periods {
		res[i] = mapToResponse(period)
	}
	return res
}

func parseDate(v string) (time.Time, bool) {
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
