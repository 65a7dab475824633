package suppliers

import "time"

// Supplier represents a purchasing-side business partner.
type Supplier struct {
	ID               int64      `json:"id"`
	Code             string     `json:"code"`
	Name             string     `json:"name"`
	Email            *string    `json:"email,omitempty"`
	Phone            *string    `json:"phone,omitempty"`
	TRN              *string    `json:"trn,omitempty"`
	VATStatus        string     `json:"vat_status"`
	TaxTreatment     string     `json:"tax_treatment"`
	Category         string     `json:"category"`
	PaymentTermsDays int        `json:"payment_terms_days"`
	Currency         string     `json:"currency"`
	Address          *string    `json:"address,omitempty"`
	Country          string     `json:"country"`
	IsArchived       bool       `json:"is_archived"`
	ArchivedAt       *time.Time `json:"archived_at,omitempty"`
	CreatedBy        int64      `json:"created_by"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}
