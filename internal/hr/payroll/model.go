// Package payroll turns employee records into monthly pay runs. A run
// snapshots the active workforce at creation; later salary changes never
// reprice an existing run.
package payroll

import "time"

type RunStatus string

const (
	RunStatusDraft    RunStatus = "draft"
	RunStatusApproved RunStatus = "approved"
	RunStatusPaid     RunStatus = "paid"
)

func (s RunStatus) Valid() bool {
	switch s {
	case RunStatusDraft, RunStatusApproved, RunStatusPaid:
		return true
	}
	return false
}

type Run struct {
	ID              int64      `json:"id" db:"id"`
	Number          string     `json:"number" db:"number"`
	Period          string     `json:"period" db:"period"`
	Status          RunStatus  `json:"status" db:"status"`
	TotalGross      float64    `json:"total_gross" db:"total_gross"`
	TotalDeductions float64    `json:"total_deductions" db:"total_deductions"`
	TotalNet        float64    `json:"total_net" db:"total_net"`
	CreatedBy       int64      `json:"created_by" db:"created_by"`
	ApprovedBy      *int64     `json:"approved_by,omitempty" db:"approved_by"`
	ApprovedAt      *time.Time `json:"approved_at,omitempty" db:"approved_at"`
	PaidAt          *time.Time `json:"paid_at,omitempty" db:"paid_at"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
	Lines           []RunLine  `json:"lines,omitempty" db:"-"`
}

// RunLine is one employee's pay for the period. Salary figures are copied in
// at run creation; gross and net are derived, never stored independently of
// their inputs.
type RunLine struct {
	ID           int64   `json:"id" db:"id"`
	RunID        int64   `json:"run_id" db:"run_id"`
	EmployeeID   int64   `json:"employee_id" db:"employee_id"`
	EmployeeCode string  `json:"employee_code" db:"employee_code"`
	EmployeeName string  `json:"employee_name" db:"employee_name"`
	Rank         string  `json:"rank" db:"rank"`
	BaseSalary   float64 `json:"base_salary" db:"base_salary"`
	Allowances   float64 `json:"allowances" db:"allowances"`
	Gross        float64 `json:"gross" db:"gross"`
	Deductions   float64 `json:"deductions" db:"deductions"`
	Net          float64 `json:"net" db:"net"`
}
