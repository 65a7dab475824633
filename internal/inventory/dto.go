package inventory

type CreateItemRequest struct {
	SKU      string  `json:"sku" validate:"required,max=40"`
	Name     string  `json:"name" validate:"required,max=200"`
	Unit     string  `json:"unit" validate:"required,max=20"`
	UnitCost float64 `json:"unit_cost" validate:"gte=0"`
}

type UpdateItemRequest struct {
	Name     *string  `json:"name,omitempty" validate:"omitempty,max=200"`
	Unit     *string  `json:"unit,omitempty" validate:"omitempty,max=20"`
	UnitCost *float64 `json:"unit_cost,omitempty" validate:"omitempty,gte=0"`
}

type AdjustStockRequest struct {
	Type      MovementType `json:"type" validate:"required,oneof=receive issue"`
	Qty       float64      `json:"qty" validate:"required,gt=0"`
	UnitCost  *float64     `json:"unit_cost,omitempty" validate:"omitempty,gte=0"`
	Reference *string      `json:"reference,omitempty" validate:"omitempty,max=200"`
}
