// Package queue defines message payloads exchanged over the message broker
// together with the RabbitMQ publisher and the log-writing consumer.
package queue

import (
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/community-amenities/internal/model"
)

// Event types carried in ReservationEvent.Type.
const (
	EventReservationCreated       = "reservation.created"
	EventReservationStatusChanged = "reservation.status_changed"
	EventReservationCancelled     = "reservation.cancelled"
)

// ReservationEvent is published whenever a reservation is admitted or its
// status changes.  It carries enough information for downstream consumers
// to log or notify without querying the primary database.
type ReservationEvent struct {
	EventID       string `json:"event_id"`
	Type          string `json:"type"`
	ReservationID uint64 `json:"reservation_id"`
	AmenityID     uint64 `json:"amenity_id"`
	AmenityName   string `json:"amenity_name,omitempty"`
	RequesterID   uint64 `json:"requester_id"`
	ActorID       uint64 `json:"actor_id"`
	Date          string `json:"date"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	Status        string `json:"status"`
	OccurredAt    string `json:"occurred_at"`
}

// NewReservationEvent builds an event of the given type for res, stamped
// with a fresh id and the current UTC time.
func NewReservationEvent(typ string, res *model.Reservation, amenityName string, actorID uint64) ReservationEvent {
	return ReservationEvent{
		EventID:       uuid.NewString(),
		Type:          typ,
		ReservationID: res.ID,
		AmenityID:     res.AmenityID,
		AmenityName:   amenityName,
		RequesterID:   res.RequesterID,
		ActorID:       actorID,
		Date:          res.Date.String(),
		StartTime:     res.StartTime.String(),
		EndTime:       res.EndTime.String(),
		Status:        string(res.Status),
		OccurredAt:    time.Now().UTC().Format(time.RFC3339),
	}
}
