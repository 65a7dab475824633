package employees

import "time"

type CreateEmployeeRequest struct {
	Name       string    `json:"name" validate:"required,max=200"`
	Rank       string    `json:"rank" validate:"required,max=100"`
	VesselID   *int64    `json:"vessel_id,omitempty" validate:"omitempty,gt=0"`
	BaseSalary float64   `json:"base_salary" validate:"required,gt=0"`
	Allowances float64   `json:"allowances" validate:"gte=0"`
	JoinedAt   time.Time `json:"joined_at" validate:"required"`
}

type UpdateEmployeeRequest struct {
	Name       *string  `json:"name,omitempty" validate:"omitempty,max=200"`
	Rank       *string  `json:"rank,omitempty" validate:"omitempty,max=100"`
	VesselID   *int64   `json:"vessel_id,omitempty" validate:"omitempty,gt=0"`
	BaseSalary *float64 `json:"base_salary,omitempty" validate:"omitempty,gt=0"`
	Allowances *float64 `json:"allowances,omitempty" validate:"omitempty,gte=0"`
}
