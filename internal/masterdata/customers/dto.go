package customers

// CreateCustomerRequest is the payload for creating a customer.
type CreateCustomerRequest struct {
	Name             string  `json:"name" validate:"required,max=200"`
	Email            *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone            *string `json:"phone,omitempty" validate:"omitempty,max=40"`
	TRN              *string `json:"trn,omitempty" validate:"omitempty,max=30"`
	VATStatus        string  `json:"vat_status" validate:"required"`
	TaxTreatment     string  `json:"tax_treatment" validate:"required"`
	Category         string  `json:"category" validate:"required"`
	PaymentTermsDays int     `json:"payment_terms_days" validate:"gte=0,lte=365"`
	Currency         string  `json:"currency" validate:"required,len=3"`
	AddressLine1     *string `json:"address_line1,omitempty"`
	AddressLine2     *string `json:"address_line2,omitempty"`
	City             *string `json:"city,omitempty"`
	Country          string  `json:"country" validate:"required,len=2"`
	Notes            *string `json:"notes,omitempty"`
}

// UpdateCustomerRequest carries partial updates; nil fields stay untouched.
type UpdateCustomerRequest struct {
	Name             *string `json:"name,omitempty" validate:"omitempty,max=200"`
	Email            *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone            *string `json:"phone,omitempty" validate:"omitempty,max=40"`
	TRN              *string `json:"trn,omitempty" validate:"omitempty,max=30"`
	VATStatus        *string `json:"vat_status,omitempty"`
	TaxTreatment     *string `json:"tax_treatment,omitempty"`
	Category         *string `json:"category,omitempty"`
	PaymentTermsDays *int    `json:"payment_terms_days,omitempty" validate:"omitempty,gte=0,lte=365"`
	Currency         *string `json:"currency,omitempty" validate:"omitempty,len=3"`
	AddressLine1     *string `json:"address_line1,omitempty"`
	AddressLine2     *string `json:"address_line2,omitempty"`
	City             *string `json:"city,omitempty"`
	Country          *string `json:"country,omitempty" validate:"omitempty,len=2"`
	Notes            *string `json:"notes,omitempty"`
}
