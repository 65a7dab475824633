// Package inventory tracks stock items and their movement history. Quantity
// changes go through guarded adjustments so stock can never go negative.
package inventory

import "time"

type MovementType string

const (
	MovementReceive MovementType = "receive"
	MovementIssue   MovementType = "issue"
)

func (t MovementType) Valid() bool {
	return t == MovementReceive || t == MovementIssue
}

type Item struct {
	ID         int64      `json:"id" db:"id"`
	SKU        string     `json:"sku" db:"sku"`
	Name       string     `json:"name" db:"name"`
	Unit       string     `json:"unit" db:"unit"`
	UnitCost   float64    `json:"unit_cost" db:"unit_cost"`
	QtyOnHand  float64    `json:"qty_on_hand" db:"qty_on_hand"`
	IsArchived bool       `json:"is_archived" db:"is_archived"`
	ArchivedAt *time.Time `json:"archived_at,omitempty" db:"archived_at"`
	CreatedBy  int64      `json:"created_by" db:"created_by"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" db:"updated_at"`
}

// Movement is one append-only stock ledger row. Qty is always positive; the
// direction comes from Type.
type Movement struct {
	ID         int64        `json:"id" db:"id"`
	ItemID     int64        `json:"item_id" db:"item_id"`
	Type       MovementType `json:"type" db:"type"`
	Qty        float64      `json:"qty" db:"qty"`
	UnitCost   float64      `json:"unit_cost" db:"unit_cost"`
	Reference  *string      `json:"reference,omitempty" db:"reference"`
	RecordedBy int64        `json:"recorded_by" db:"recorded_by"`
	CreatedAt  time.Time    `json:"created_at" db:"created_at"`
}
