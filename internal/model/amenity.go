package model

import "time"

// AmenityKind classifies a shared facility.
type AmenityKind string

const (
	KindEventHall   AmenityKind = "EVENT_HALL"
	KindGym         AmenityKind = "GYM"
	KindPool        AmenityKind = "POOL"
	KindSportsCourt AmenityKind = "SPORTS_COURT"
	KindBBQArea     AmenityKind = "BBQ_AREA"
	KindGameRoom    AmenityKind = "GAME_ROOM"
	KindPlayground  AmenityKind = "PLAYGROUND"
	KindOther       AmenityKind = "OTHER"
)

// Valid reports whether k is one of the known kinds.
func (k AmenityKind) Valid() bool {
	switch k {
	case KindEventHall, KindGym, KindPool, KindSportsCourt, KindBBQArea, KindGameRoom, KindPlayground, KindOther:
		return true
	}
	return false
}

// AmenityStatus is the operational state of an amenity.
type AmenityStatus string

const (
	AmenityAvailable    AmenityStatus = "AVAILABLE"
	AmenityOccupied     AmenityStatus = "OCCUPIED"
	AmenityMaintenance  AmenityStatus = "MAINTENANCE"
	AmenityOutOfService AmenityStatus = "OUT_OF_SERVICE"
)

// Valid reports whether s is one of the known statuses.
func (s AmenityStatus) Valid() bool {
	switch s {
	case AmenityAvailable, AmenityOccupied, AmenityMaintenance, AmenityOutOfService:
		return true
	}
	return false
}

// Bookable reports whether the amenity accepts new reservations in this
// state. An occupied amenity is busy right now but may still be booked
// for another slot.
func (s AmenityStatus) Bookable() bool {
	return s == AmenityAvailable || s == AmenityOccupied
}

// Amenity represents a shared facility of the community (pool, gym,
// event hall).  It corresponds to a row in the `amenities` table and is
// managed by administrators; the reservation service only reads it.
//
// Fields:
//
//	ID                  – primary key identifier.
//	Name                – display name.
//	Description         – optional free text.
//	Kind                – facility category.
//	Location            – optional location inside the community.
//	Capacity            – maximum number of people (0 when unlimited).
//	Status              – operational state.
//	OpensAt / ClosesAt  – operating window (nil when unrestricted).
//	RequiresReservation – whether use must be booked in advance.
//	UsageFeeCents       – fee charged per reservation.
//	Rules               – optional usage rules.
//	ImageURL            – optional picture.
type Amenity struct {
	ID                  uint64        `json:"id"`
	Name                string        `json:"name"`
	Description         *string       `json:"description,omitempty"`
	Kind                AmenityKind   `json:"kind"`
	Location            *string       `json:"location,omitempty"`
	Capacity            uint32        `json:"capacity"`
	Status              AmenityStatus `json:"status"`
	OpensAt             *Clock        `json:"opens_at,omitempty"`
	ClosesAt            *Clock        `json:"closes_at,omitempty"`
	RequiresReservation bool          `json:"requires_reservation"`
	UsageFeeCents       uint32        `json:"usage_fee_cents"`
	Rules               *string       `json:"rules,omitempty"`
	ImageURL            *string       `json:"image_url,omitempty"`
	CreatedAt           time.Time     `json:"created_at"`
	UpdatedAt           time.Time     `json:"updated_at"`
}

// Within reports whether [start, end] lies inside the operating window.
// Amenities without a full window accept any time.
func (a *Amenity) Within(start, end Clock) bool {
	if a.OpensAt == nil || a.ClosesAt == nil {
		return true
	}
	return start >= *a.OpensAt && end <= *a.ClosesAt
}
