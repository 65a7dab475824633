package payroll

type CreateRunRequest struct {
	Period string `json:"period" validate:"required,len=7"`
}

type SetDeductionRequest struct {
	LineID int64   `json:"line_id" validate:"required,gt=0"`
	Amount float64 `json:"amount" validate:"gte=0"`
}
