// Package purchasing covers the procure-to-pay chain: purchase requests,
// purchase orders and the supplier (AP) invoices settled against them.
package purchasing

import "time"

type RequestStatus string

const (
	RequestStatusDraft     RequestStatus = "draft"
	RequestStatusSubmitted RequestStatus = "submitted"
	RequestStatusApproved  RequestStatus = "approved"
	RequestStatusRejected  RequestStatus = "rejected"
	RequestStatusOrdered   RequestStatus = "ordered"
)

func (s RequestStatus) Valid() bool {
	switch s {
	case RequestStatusDraft, RequestStatusSubmitted, RequestStatusApproved,
		RequestStatusRejected, RequestStatusOrdered:
		return true
	}
	return false
}

type OrderStatus string

const (
	OrderStatusDraft     OrderStatus = "draft"
	OrderStatusApproved  OrderStatus = "approved"
	OrderStatusReceived  OrderStatus = "received"
	OrderStatusClosed    OrderStatus = "closed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusDraft, OrderStatusApproved, OrderStatusReceived,
		OrderStatusClosed, OrderStatusCancelled:
		return true
	}
	return false
}

type APInvoiceStatus string

const (
	APInvoiceStatusDraft  APInvoiceStatus = "draft"
	APInvoiceStatusPosted APInvoiceStatus = "posted"
	APInvoiceStatusPaid   APInvoiceStatus = "paid"
)

func (s APInvoiceStatus) Valid() bool {
	switch s {
	case APInvoiceStatusDraft, APInvoiceStatusPosted, APInvoiceStatusPaid:
		return true
	}
	return false
}

type DocumentLine struct {
	ID          int64   `json:"id" db:"id"`
	ParentID    int64   `json:"-" db:"parent_id"`
	Description string  `json:"description" db:"description"`
	Quantity    float64 `json:"quantity" db:"quantity"`
	UnitPrice   float64 `json:"unit_price" db:"unit_price"`
	TaxRate     float64 `json:"tax_rate" db:"tax_rate"`
	TaxAmount   float64 `json:"tax_amount" db:"tax_amount"`
	LineTotal   float64 `json:"line_total" db:"line_total"`
	LineOrder   int     `json:"line_order" db:"line_order"`
}

type PurchaseRequest struct {
	ID          int64          `json:"id" db:"id"`
	Number      string         `json:"number" db:"number"`
	SupplierID  *int64         `json:"supplier_id,omitempty" db:"supplier_id"`
	ProjectID   *int64         `json:"project_id,omitempty" db:"project_id"`
	Status      RequestStatus  `json:"status" db:"status"`
	Currency    string         `json:"currency" db:"currency"`
	Subtotal    float64        `json:"subtotal" db:"subtotal"`
	TaxAmount   float64        `json:"tax_amount" db:"tax_amount"`
	Discount    float64        `json:"discount" db:"discount"`
	TotalAmount float64        `json:"total_amount" db:"total_amount"`
	Purpose     string         `json:"purpose" db:"purpose"`
	RequestedBy int64          `json:"requested_by" db:"requested_by"`
	ApprovedBy  *int64         `json:"approved_by,omitempty" db:"approved_by"`
	OrderID     *int64         `json:"order_id,omitempty" db:"order_id"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" db:"updated_at"`
	Lines       []DocumentLine `json:"lines,omitempty" db:"-"`
}

type PurchaseOrder struct {
	ID          int64          `json:"id" db:"id"`
	Number      string         `json:"number" db:"number"`
	SupplierID  int64          `json:"supplier_id" db:"supplier_id"`
	RequestID   *int64         `json:"request_id,omitempty" db:"request_id"`
	ProjectID   *int64         `json:"project_id,omitempty" db:"project_id"`
	Status      OrderStatus    `json:"status" db:"status"`
	Currency    string         `json:"currency" db:"currency"`
	Subtotal    float64        `json:"subtotal" db:"subtotal"`
	TaxAmount   float64        `json:"tax_amount" db:"tax_amount"`
	Discount    float64        `json:"discount" db:"discount"`
	TotalAmount float64        `json:"total_amount" db:"total_amount"`
	OrderDate   time.Time      `json:"order_date" db:"order_date"`
	ReceivedAt  *time.Time     `json:"received_at,omitempty" db:"received_at"`
	CreatedBy   int64          `json:"created_by" db:"created_by"`
	ApprovedBy  *int64         `json:"approved_by,omitempty" db:"approved_by"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" db:"updated_at"`
	Lines       []DocumentLine `json:"lines,omitempty" db:"-"`
}

type PurchaseInvoice struct {
	ID             int64           `json:"id" db:"id"`
	Number         string          `json:"number" db:"number"`
	SupplierRef    *string         `json:"supplier_ref,omitempty" db:"supplier_ref"`
	SupplierID     int64           `json:"supplier_id" db:"supplier_id"`
	OrderID        *int64          `json:"order_id,omitempty" db:"order_id"`
	Status         APInvoiceStatus `json:"status" db:"status"`
	Currency       string          `json:"currency" db:"currency"`
	Subtotal       float64         `json:"subtotal" db:"subtotal"`
	TaxAmount      float64         `json:"tax_amount" db:"tax_amount"`
	Discount       float64         `json:"discount" db:"discount"`
	TotalAmount    float64         `json:"total_amount" db:"total_amount"`
	PaidAmount     float64         `json:"paid_amount" db:"paid_amount"`
	InvoiceDate    time.Time       `json:"invoice_date" db:"invoice_date"`
	DueDate        time.Time       `json:"due_date" db:"due_date"`
	PostedBy       *int64          `json:"posted_by,omitempty" db:"posted_by"`
	PostedAt       *time.Time      `json:"posted_at,omitempty" db:"posted_at"`
	CreatedBy      int64           `json:"created_by" db:"created_by"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
	Lines          []DocumentLine  `json:"lines,omitempty" db:"-"`
}

func (inv PurchaseInvoice) Outstanding() float64 {
	return inv.TotalAmount - inv.PaidAmount
}

type SupplierPayment struct {
	ID          int64     `json:"id" db:"id"`
	InvoiceID   int64     `json:"invoice_id" db:"invoice_id"`
	Amount      float64   `json:"amount" db:"amount"`
	PaymentDate time.Time `json:"payment_date" db:"payment_date"`
	Method      string    `json:"method" db:"method"`
	Reference   *string   `json:"reference,omitempty" db:"reference"`
	RecordedBy  int64     `json:"recorded_by" db:"recorded_by"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
