// Package assets manages rentable equipment and the rental agreements raised
// against it. The rental charge is settled when the asset comes back: whole
// days out multiplied by the daily rate, computed through the shared document
// arithmetic so tax handling matches sales documents.
package assets

import "time"

type AgreementStatus string

const (
	AgreementStatusActive   AgreementStatus = "active"
	AgreementStatusReturned AgreementStatus = "returned"
)

func (s AgreementStatus) Valid() bool {
	return s == AgreementStatusActive || s == AgreementStatusReturned
}

type Asset struct {
	ID         int64      `json:"id" db:"id"`
	Code       string     `json:"code" db:"code"`
	Name       string     `json:"name" db:"name"`
	Category   *string    `json:"category,omitempty" db:"category"`
	DailyRate  float64    `json:"daily_rate" db:"daily_rate"`
	IsArchived bool       `json:"is_archived" db:"is_archived"`
	ArchivedAt *time.Time `json:"archived_at,omitempty" db:"archived_at"`
	CreatedBy  int64      `json:"created_by" db:"created_by"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" db:"updated_at"`
}

type Agreement struct {
	ID           int64           `json:"id" db:"id"`
	Number       string          `json:"number" db:"number"`
	AssetID      int64           `json:"asset_id" db:"asset_id"`
	CustomerID   int64           `json:"customer_id" db:"customer_id"`
	Status       AgreementStatus `json:"status" db:"status"`
	DailyRate    float64         `json:"daily_rate" db:"daily_rate"`
	TaxRate      float64         `json:"tax_rate" db:"tax_rate"`
	StartDate    time.Time       `json:"start_date" db:"start_date"`
	DueDate      time.Time       `json:"due_date" db:"due_date"`
	ReturnedAt   *time.Time      `json:"returned_at,omitempty" db:"returned_at"`
	Days         *int            `json:"days,omitempty" db:"days"`
	ChargeAmount *float64        `json:"charge_amount,omitempty" db:"charge_amount"`
	Notes        *string         `json:"notes,omitempty" db:"notes"`
	CreatedBy    int64           `json:"created_by" db:"created_by"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at" db:"updated_at"`
}

// IsOverdue reports whether an active agreement has run past its due date.
// Overdue is an overlay on active, not a stored status.
func (a *Agreement) IsOverdue(now time.Time) bool {
	return a.Status == AgreementStatusActive && now.After(a.DueDate)
}
