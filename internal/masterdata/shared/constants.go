package shared

const (
	// Default pagination
	DefaultPage  = 1
	DefaultLimit = 20

	// Sort directions
	SortAsc  = "asc"
	SortDesc = "desc"
)

// VAT registration statuses.
const (
	VATRegistered    = "registered"
	VATNotRegistered = "not_registered"
	VATExempt        = "exempt"
)

// Tax treatments.
const (
	TreatmentStandard    = "standard"
	TreatmentZeroRated   = "zero_rated"
	TreatmentOutOfScope  = "out_of_scope"
	TreatmentReverseCharge = "reverse_charge"
)

// Business categories used for customer/supplier classification.
const (
	CategoryShipOwner    = "ship_owner"
	CategoryShipManager  = "ship_manager"
	CategoryCharterer    = "charterer"
	CategoryPortAgent    = "port_agent"
	CategoryShipyard     = "shipyard"
	CategoryChandler     = "chandler"
	CategoryGeneral      = "general"
)

// ValidVATStatuses lists accepted VAT registration statuses.
func ValidVATStatuses() []string {
	return []string{VATRegistered, VATNotRegistered, VATExempt}
}

// ValidTreatments lists accepted tax treatments.
func ValidTreatments() []string {
	return []string{TreatmentStandard, TreatmentZeroRated, TreatmentOutOfScope, TreatmentReverseCharge}
}

// ValidCategories lists accepted business categories.
func ValidCategories() []string {
	return []string{
		CategoryShipOwner, CategoryShipManager, CategoryCharterer,
		CategoryPortAgent, CategoryShipyard, CategoryChandler, CategoryGeneral,
	}
}

// IsMember reports whether v is one of allowed.
func IsMember(v string, allowed []string) bool {
	for _, a := range allowed {
		if a == v {
			return true
		}
	}
	return false
}
