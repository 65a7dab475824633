// Package projects tracks service jobs per customer, optionally tied to a
// vessel. Sales documents reference projects for reporting.
package projects

import "time"

type ProjectStatus string

const (
	ProjectStatusActive    ProjectStatus = "active"
	ProjectStatusOnHold    ProjectStatus = "on_hold"
	ProjectStatusCompleted ProjectStatus = "completed"
	ProjectStatusCancelled ProjectStatus = "cancelled"
)

func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectStatusActive, ProjectStatusOnHold, ProjectStatusCompleted, ProjectStatusCancelled:
		return true
	}
	return false
}

func (s ProjectStatus) Terminal() bool {
	return s == ProjectStatusCompleted || s == ProjectStatusCancelled
}

type Project struct {
	ID         int64         `json:"id" db:"id"`
	Code       string        `json:"code" db:"code"`
	Name       string        `json:"name" db:"name"`
	CustomerID int64         `json:"customer_id" db:"customer_id"`
	VesselID   *int64        `json:"vessel_id,omitempty" db:"vessel_id"`
	Status     ProjectStatus `json:"status" db:"status"`
	StartDate  time.Time     `json:"start_date" db:"start_date"`
	EndDate    *time.Time    `json:"end_date,omitempty" db:"end_date"`
	Budget     float64       `json:"budget" db:"budget"`
	Notes      *string       `json:"notes,omitempty" db:"notes"`
	IsArchived bool          `json:"is_archived" db:"is_archived"`
	ArchivedAt *time.Time    `json:"archived_at,omitempty" db:"archived_at"`
	CreatedBy  int64         `json:"created_by" db:"created_by"`
	CreatedAt  time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at" db:"updated_at"`
}
