package creditnotes

import "time"

type CreditNoteStatus string

const (
	CreditNoteStatusDraft     CreditNoteStatus = "draft"
	CreditNoteStatusIssued    CreditNoteStatus = "issued"
	CreditNoteStatusApplied   CreditNoteStatus = "applied"
	CreditNoteStatusCancelled CreditNoteStatus = "cancelled"
)

func (s CreditNoteStatus) Valid() bool {
	switch s {
	case CreditNoteStatusDraft, CreditNoteStatusIssued, CreditNoteStatusApplied, CreditNoteStatusCancelled:
		return true
	}
	return false
}

type CreditNote struct {
	ID          int64            `json:"id" db:"id"`
	Number      *string          `json:"number,omitempty" db:"number"`
	InvoiceID   int64            `json:"invoice_id" db:"invoice_id"`
	CustomerID  int64            `json:"customer_id" db:"customer_id"`
	Status      CreditNoteStatus `json:"status" db:"status"`
	Currency    string           `json:"currency" db:"currency"`
	Subtotal    float64          `json:"subtotal" db:"subtotal"`
	TaxAmount   float64          `json:"tax_amount" db:"tax_amount"`
	Discount    float64          `json:"discount" db:"discount"`
	TotalAmount float64          `json:"total_amount" db:"total_amount"`
	Reason      string           `json:"reason" db:"reason"`
	IssuedBy    *int64           `json:"issued_by,omitempty" db:"issued_by"`
	IssuedAt    *time.Time       `json:"issued_at,omitempty" db:"issued_at"`
	AppliedAt   *time.Time       `json:"applied_at,omitempty" db:"applied_at"`
	CreatedBy   int64            `json:"created_by" db:"created_by"`
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at" db:"updated_at"`
	Lines       []CreditNoteLine `json:"lines,omitempty" db:"-"`
}

type CreditNoteLine struct {
	ID           int64   `json:"id" db:"id"`
	CreditNoteID int64   `json:"credit_note_id" db:"credit_note_id"`
	Description  string  `json:"description" db:"description"`
	Quantity     float64 `json:"quantity" db:"quantity"`
	UnitPrice    float64 `json:"unit_price" db:"unit_price"`
	TaxRate      float64 `json:"tax_rate" db:"tax_rate"`
	TaxAmount    float64 `json:"tax_amount" db:"tax_amount"`
	LineTotal    float64 `json:"line_total" db:"line_total"`
	LineOrder    int     `json:"line_order" db:"line_order"`
}
