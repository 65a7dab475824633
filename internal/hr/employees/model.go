// Package employees holds crew and shore staff records used by payroll.
package employees

import "time"

type Employee struct {
	ID         int64      `json:"id" db:"id"`
	Code       string     `json:"code" db:"code"`
	Name       string     `json:"name" db:"name"`
	Rank       string     `json:"rank" db:"rank"`
	VesselID   *int64     `json:"vessel_id,omitempty" db:"vessel_id"`
	BaseSalary float64    `json:"base_salary" db:"base_salary"`
	Allowances float64    `json:"allowances" db:"allowances"`
	JoinedAt   time.Time  `json:"joined_at" db:"joined_at"`
	IsArchived bool       `json:"is_archived" db:"is_archived"`
	ArchivedAt *time.Time `json:"archived_at,omitempty" db:"archived_at"`
	CreatedBy  int64      `json:"created_by" db:"created_by"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" db:"updated_at"`
}
