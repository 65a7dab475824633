package customers

import "time"

// Customer is a sales-side business partner.
type Customer struct {
	ID               int64      `json:"id" db:"id"`
	Code             string     `json:"code" db:"code"`
	Name             string     `json:"name" db:"name"`
	Email            *string    `json:"email,omitempty" db:"email"`
	Phone            *string    `json:"phone,omitempty" db:"phone"`
	TRN              *string    `json:"trn,omitempty" db:"trn"`
	VATStatus        string     `json:"vat_status" db:"vat_status"`
	TaxTreatment     string     `json:"tax_treatment" db:"tax_treatment"`
	Category         string     `json:"category" db:"category"`
	PaymentTermsDays int        `json:"payment_terms_days" db:"payment_terms_days"`
	Currency         string     `json:"currency" db:"currency"`
	AddressLine1     *string    `json:"address_line1,omitempty" db:"address_line1"`
	AddressLine2     *string    `json:"address_line2,omitempty" db:"address_line2"`
	City             *string    `json:"city,omitempty" db:"city"`
	Country          string     `json:"country" db:"country"`
	Notes            *string    `json:"notes,omitempty" db:"notes"`
	IsArchived       bool       `json:"is_archived" db:"is_archived"`
	ArchivedAt       *time.Time `json:"archived_at,omitempty" db:"archived_at"`
	CreatedBy        int64      `json:"created_by" db:"created_by"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at" db:"updated_at"`
}
