package component

type RegisterComponentRequest struct {
	Name             string  `json:"name" binding:"required,max=120"`
	ComponentType    string  `json:"component_type" binding:"required,oneof=EARNING DEDUCTION TAX"`
	Amount           int64   `json:"amount"`
	Percent          float64 `json:"percent"`
	IsTaxable        bool    `json:"is_taxable"`
	IsMandatory      bool    `json:"is_mandatory"`
	CalculationOrder int     `json:"calculation_order"`
}

type UpdateComponentRequest struct {
	Name             string  `json:"name" binding:"required,max=120"`
	ComponentType    string  `json:"component_type" binding:"required,oneof=EARNING DEDUCTION TAX"`
	Amount           int64   `json:"amount"`
	Percent          float64 `json:"percent"`
	IsTaxable        bool    `json:"is_taxable"`
	IsMandatory      bool    `json:"is_mandatory"`
	CalculationOrder int     `json:"calculation_order"`
}

type ComponentResponse struct {
	ID               string  `json:"id"`
	CompanyID        string  `json:"company_id"`
	Name             string  `json:"name"`
	ComponentType    string  `json:"component_type"`
	Amount           int64   `json:"amount"`
	Percent          float64 `json:"percent"`
	IsTaxable        bool    `json:"is_taxable"`
	IsMandatory      bool    `json:"is_mandatory"`
	CalculationOrder int     `json:"calculation_order"`
	Active           bool    `json:"active"`
}
