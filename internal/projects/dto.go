package projects

import "time"

type CreateProjectRequest struct {
	Name       string    `json:"name" validate:"required,max=200"`
	CustomerID int64     `json:"customer_id" validate:"required,gt=0"`
	VesselID   *int64    `json:"vessel_id,omitempty" validate:"omitempty,gt=0"`
	StartDate  time.Time `json:"start_date" validate:"required"`
	Budget     float64   `json:"budget" validate:"gte=0"`
	Notes      *string   `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

type UpdateProjectRequest struct {
	Name      *string    `json:"name,omitempty" validate:"omitempty,max=200"`
	VesselID  *int64     `json:"vessel_id,omitempty" validate:"omitempty,gt=0"`
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	Budget    *float64   `json:"budget,omitempty" validate:"omitempty,gte=0"`
	Notes     *string    `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

type SetStatusRequest struct {
	Status ProjectStatus `json:"status" validate:"required,oneof=active on_hold completed cancelled"`
}
