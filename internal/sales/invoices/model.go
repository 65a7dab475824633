package invoices

import "time"

type InvoiceStatus string

const (
	InvoiceStatusDraft         InvoiceStatus = "draft"
	InvoiceStatusApproved      InvoiceStatus = "approved"
	InvoiceStatusUnpaid        InvoiceStatus = "unpaid"
	InvoiceStatusPartiallyPaid InvoiceStatus = "partially_paid"
	InvoiceStatusPaid          InvoiceStatus = "paid"
	// InvoiceStatusOverdue is a computed overlay, stored only by the nightly
	// scan for listing efficiency. Payments treat it like unpaid/partial.
	InvoiceStatusOverdue InvoiceStatus = "overdue"
)

func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusApproved, InvoiceStatusUnpaid,
		InvoiceStatusPartiallyPaid, InvoiceStatusPaid, InvoiceStatusOverdue:
		return true
	}
	return false
}

// Payable reports whether the invoice can accept a payment in this status.
func (s InvoiceStatus) Payable() bool {
	switch s {
	case InvoiceStatusUnpaid, InvoiceStatusPartiallyPaid, InvoiceStatusOverdue:
		return true
	}
	return false
}

type Invoice struct {
	ID          int64         `json:"id" db:"id"`
	Number      *string       `json:"number,omitempty" db:"number"`
	CustomerID  int64         `json:"customer_id" db:"customer_id"`
	ProjectID   *int64        `json:"project_id,omitempty" db:"project_id"`
	QuotationID *int64        `json:"quotation_id,omitempty" db:"quotation_id"`
	InvoiceDate time.Time     `json:"invoice_date" db:"invoice_date"`
	DueDate     time.Time     `json:"due_date" db:"due_date"`
	Status      InvoiceStatus `json:"status" db:"status"`
	IsProforma  bool          `json:"is_proforma" db:"is_proforma"`
	Currency    string        `json:"currency" db:"currency"`
	Subtotal    float64       `json:"subtotal" db:"subtotal"`
	TaxAmount   float64       `json:"tax_amount" db:"tax_amount"`
	Discount    float64       `json:"discount" db:"discount"`
	TotalAmount float64       `json:"total_amount" db:"total_amount"`
	PaidAmount  float64       `json:"paid_amount" db:"paid_amount"`
	Notes       *string       `json:"notes,omitempty" db:"notes"`
	IsArchived  bool          `json:"is_archived" db:"is_archived"`
	CreatedBy   int64         `json:"created_by" db:"created_by"`
	ApprovedBy  *int64        `json:"approved_by,omitempty" db:"approved_by"`
	ApprovedAt  *time.Time    `json:"approved_at,omitempty" db:"approved_at"`
	CreatedAt   time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at" db:"updated_at"`
	Lines       []InvoiceLine `json:"lines,omitempty" db:"-"`
}

// Outstanding is the unpaid remainder on the invoice total.
func (inv Invoice) Outstanding() float64 {
	return inv.TotalAmount - inv.PaidAmount
}

// IsOverdue reports the computed overlay: any invoice with an open balance
// past its due date, regardless of the stored status value.
func (inv Invoice) IsOverdue(now time.Time) bool {
	return inv.Status.Payable() && now.After(inv.DueDate)
}

type InvoiceLine struct {
	ID          int64   `json:"id" db:"id"`
	InvoiceID   int64   `json:"invoice_id" db:"invoice_id"`
	Description string  `json:"description" db:"description"`
	Quantity    float64 `json:"quantity" db:"quantity"`
	UnitPrice   float64 `json:"unit_price" db:"unit_price"`
	TaxRate     float64 `json:"tax_rate" db:"tax_rate"`
	TaxAmount   float64 `json:"tax_amount" db:"tax_amount"`
	LineTotal   float64 `json:"line_total" db:"line_total"`
	LineOrder   int     `json:"line_order" db:"line_order"`
}

// Payment rows are append-only; paidAmount is always the sum of these rows.
type Payment struct {
	ID          int64     `json:"id" db:"id"`
	InvoiceID   int64     `json:"invoice_id" db:"invoice_id"`
	Amount      float64   `json:"amount" db:"amount"`
	PaymentDate time.Time `json:"payment_date" db:"payment_date"`
	Method      string    `json:"method" db:"method"`
	Reference   *string   `json:"reference,omitempty" db:"reference"`
	RecordedBy  int64     `json:"recorded_by" db:"recorded_by"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

type InvoiceWithCustomer struct {
	Invoice
	CustomerName string `json:"customer_name" db:"customer_name"`
}

// Receivable is the open-balance view over non-draft, non-paid invoices.
type Receivable struct {
	InvoiceID         int64     `json:"invoice_id"`
	Number            string    `json:"number"`
	CustomerID        int64     `json:"customer_id"`
	CustomerName      string    `json:"customer_name"`
	Currency          string    `json:"currency"`
	TotalAmount       float64   `json:"total_amount"`
	PaidAmount        float64   `json:"paid_amount"`
	OutstandingAmount float64   `json:"outstanding_amount"`
	DueDate           time.Time `json:"due_date"`
	IsOverdue         bool      `json:"is_overdue"`
}

// AgingBucket groups outstanding balances by days past due.
type AgingBucket struct {
	Label       string  `json:"label"`
	Outstanding float64 `json:"outstanding"`
	Count       int     `json:"count"`
}

type AgingReport struct {
	GeneratedAt time.Time     `json:"generated_at"`
	Currency    string        `json:"currency"`
	Buckets     []AgingBucket `json:"buckets"`
	Total       float64       `json:"total"`
}
