package vessels

import "time"

// Vessel is a ship referenced by projects and rental agreements.
type Vessel struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	IMONumber  *string    `json:"imo_number,omitempty"`
	Flag       *string    `json:"flag,omitempty"`
	VesselType string     `json:"vessel_type"`
	GrossTon   *float64   `json:"gross_tonnage,omitempty"`
	OwnerID    *int64     `json:"owner_customer_id,omitempty"`
	IsArchived bool       `json:"is_archived"`
	ArchivedAt *time.Time `json:"archived_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Vessel types seen across the fleet.
const (
	TypeTug      = "tug"
	TypeBarge    = "barge"
	TypeSupply   = "supply"
	TypeTanker   = "tanker"
	TypeCargo    = "cargo"
	TypeCrewBoat = "crew_boat"
	TypeOther    = "other"
)

// ValidTypes lists accepted vessel types.
func ValidTypes() []string {
	return []string{TypeTug, TypeBarge, TypeSupply, TypeTanker, TypeCargo, TypeCrewBoat, TypeOther}
}
