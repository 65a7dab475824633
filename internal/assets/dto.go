package assets

import "time"

type CreateAssetRequest struct {
	Name      string  `json:"name" validate:"required,max=200"`
	Category  *string `json:"category,omitempty" validate:"omitempty,max=100"`
	DailyRate float64 `json:"daily_rate" validate:"required,gt=0"`
}

type UpdateAssetRequest struct {
	Name      *string  `json:"name,omitempty" validate:"omitempty,max=200"`
	Category  *string  `json:"category,omitempty" validate:"omitempty,max=100"`
	DailyRate *float64 `json:"daily_rate,omitempty" validate:"omitempty,gt=0"`
}

type CreateAgreementRequest struct {
	AssetID    int64     `json:"asset_id" validate:"required,gt=0"`
	CustomerID int64     `json:"customer_id" validate:"required,gt=0"`
	StartDate  time.Time `json:"start_date" validate:"required"`
	DueDate    time.Time `json:"due_date" validate:"required"`
	TaxRate    float64   `json:"tax_rate" validate:"gte=0"`
	Notes      *string   `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

type ReturnAssetRequest struct {
	ReturnedAt time.Time `json:"returned_at" validate:"required"`
}
