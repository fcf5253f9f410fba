package model

import "time"

// ReservationStatus is the lifecycle state of an amenity reservation.
type ReservationStatus string

const (
	StatusPending   ReservationStatus = "PENDING"
	StatusConfirmed ReservationStatus = "CONFIRMED"
	StatusCancelled ReservationStatus = "CANCELLED"
	StatusCompleted ReservationStatus = "COMPLETED"
)

// ActiveStatuses are the statuses that still hold a slot.
var ActiveStatuses = []ReservationStatus{StatusPending, StatusConfirmed}

// ParseReservationStatus reports whether s names a known status.
func ParseReservationStatus(s string) (ReservationStatus, bool) {
	st := ReservationStatus(s)
	switch st {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return st, true
	}
	return "", false
}

// Holds reports whether a reservation in this status occupies its slot.
func (s ReservationStatus) Holds() bool {
	return s == StatusPending || s == StatusConfirmed
}

// Terminal reports whether no further transitions are expected.
func (s ReservationStatus) Terminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

// Reservation records a resident's claim on an amenity for a time range
// on a calendar date.  Only Status changes after creation.
//
// Fields:
//
//	ID          – primary key identifier.
//	AmenityID   – amenity being reserved.
//	RequesterID – resident who made the reservation.
//	Date        – calendar date of the booking.
//	StartTime   – start of the slot (time of day).
//	EndTime     – end of the slot, after StartTime.
//	Status      – PENDING, CONFIRMED, CANCELLED or COMPLETED.
//	Reason      – optional free text supplied by the resident.
//	Attendees   – optional head count checked against amenity capacity.
//	CreatedAt   – creation timestamp.
//	UpdatedAt   – last update timestamp.
type Reservation struct {
	ID          uint64            `json:"id"`            // amenity_reservations.id
	AmenityID   uint64            `json:"amenity_id"`    // amenity_reservations.amenity_id
	RequesterID uint64            `json:"requester_id"`  // amenity_reservations.requester_id
	Date        Date              `json:"date"`          // amenity_reservations.reserved_on
	StartTime   Clock             `json:"start_time"`    // amenity_reservations.start_time
	EndTime     Clock             `json:"end_time"`      // amenity_reservations.end_time
	Status      ReservationStatus `json:"status"`        // amenity_reservations.status
	Reason      *string           `json:"reason,omitempty"`
	Attendees   *uint32           `json:"attendees,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// Collides reports whether r would conflict with a request for
// [start, end] on the same amenity and date.
func (r *Reservation) Collides(start, end Clock) bool {
	return r.Status.Holds() && Overlaps(start, end, r.StartTime, r.EndTime)
}

// Interval is an occupied slot returned by availability queries.
type Interval struct {
	ReservationID uint64            `json:"reservation_id"`
	StartTime     Clock             `json:"start_time"`
	EndTime       Clock             `json:"end_time"`
	Status        ReservationStatus `json:"status"`
}
