package quotations

import "time"

type QuotationStatus string

const (
	QuotationStatusDraft     QuotationStatus = "draft"
	QuotationStatusSent      QuotationStatus = "sent"
	QuotationStatusApproved  QuotationStatus = "approved"
	QuotationStatusRejected  QuotationStatus = "rejected"
	QuotationStatusConverted QuotationStatus = "converted"
)

// Valid reports whether s is one of the declared statuses.
func (s QuotationStatus) Valid() bool {
	switch s {
	case QuotationStatusDraft, QuotationStatusSent, QuotationStatusApproved,
		QuotationStatusRejected, QuotationStatusConverted:
		return true
	}
	return false
}

// Terminal reports whether no further lifecycle transition is possible.
// The archive flag stays orthogonal and can still be toggled.
func (s QuotationStatus) Terminal() bool {
	return s == QuotationStatusRejected || s == QuotationStatusConverted
}

type Quotation struct {
	ID              int64           `json:"id" db:"id"`
	Number          string          `json:"number" db:"number"`
	CustomerID      int64           `json:"customer_id" db:"customer_id"`
	ProjectID       *int64          `json:"project_id,omitempty" db:"project_id"`
	QuoteDate       time.Time       `json:"quote_date" db:"quote_date"`
	ValidUntil      time.Time       `json:"valid_until" db:"valid_until"`
	Status          QuotationStatus `json:"status" db:"status"`
	Currency        string          `json:"currency" db:"currency"`
	Subtotal        float64         `json:"subtotal" db:"subtotal"`
	TaxAmount       float64         `json:"tax_amount" db:"tax_amount"`
	Discount        float64         `json:"discount" db:"discount"`
	TotalAmount     float64         `json:"total_amount" db:"total_amount"`
	Notes           *string         `json:"notes,omitempty" db:"notes"`
	IsArchived      bool            `json:"is_archived" db:"is_archived"`
	CreatedBy       int64           `json:"created_by" db:"created_by"`
	ApprovedBy      *int64          `json:"approved_by,omitempty" db:"approved_by"`
	ApprovedAt      *time.Time      `json:"approved_at,omitempty" db:"approved_at"`
	RejectedBy      *int64          `json:"rejected_by,omitempty" db:"rejected_by"`
	RejectedAt      *time.Time      `json:"rejected_at,omitempty" db:"rejected_at"`
	RejectionReason *string         `json:"rejection_reason,omitempty" db:"rejection_reason"`
	ConvertedID     *int64          `json:"converted_invoice_id,omitempty" db:"converted_invoice_id"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
	Lines           []QuotationLine `json:"lines,omitempty" db:"-"`
}

type QuotationLine struct {
	ID          int64   `json:"id" db:"id"`
	QuotationID int64   `json:"quotation_id" db:"quotation_id"`
	Description string  `json:"description" db:"description"`
	Quantity    float64 `json:"quantity" db:"quantity"`
	UnitPrice   float64 `json:"unit_price" db:"unit_price"`
	TaxRate     float64 `json:"tax_rate" db:"tax_rate"`
	TaxAmount   float64 `json:"tax_amount" db:"tax_amount"`
	LineTotal   float64 `json:"line_total" db:"line_total"`
	LineOrder   int     `json:"line_order" db:"line_order"`
}

type QuotationWithCustomer struct {
	Quotation
	CustomerName string `json:"customer_name" db:"customer_name"`
}
