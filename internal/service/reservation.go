// Package service holds the reservation admission rules: the overlap
// check, the eligibility of an amenity and the status lifecycle.
package service

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/iliyamo/community-amenities/internal/logger"
	"github.com/iliyamo/community-amenities/internal/model"
	"github.com/iliyamo/community-amenities/internal/queue"
	"github.com/iliyamo/community-amenities/internal/repository"
)

// AmenityDirectory is the read side of the amenity catalogue.
type AmenityDirectory interface {
	GetByID(ctx context.Context, id uint64) (*model.Amenity, error)
}

// ReservationStore persists reservations.  Admit must run fn so that no
// other admission for the same amenity interleaves with it.
type ReservationStore interface {
	Admit(ctx context.Context, amenityID uint64, date model.Date, fn func(context.Context, repository.Admission) error) error
	GetByID(ctx context.Context, id uint64) (*model.Reservation, error)
	UpdateStatus(ctx context.Context, id uint64, status model.ReservationStatus) (*model.Reservation, error)
	ListActive(ctx context.Context, amenityID uint64, date model.Date) ([]model.Reservation, error)
	List(ctx context.Context, f repository.ReservationFilter) ([]model.Reservation, int, error)
}

// EventPublisher receives reservation events.  Failures never fail the
// operation that produced the event.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.ReservationEvent) error
}

// ReservationRequest is a resident's ask for an amenity slot.
type ReservationRequest struct {
	AmenityID uint64
	Date      model.Date
	Start     model.Clock
	End       model.Clock
	Reason    *string
	Attendees *uint32
}

// ReservationPage is one page of List results.
type ReservationPage struct {
	Total        int                 `json:"total"`
	Pages        int                 `json:"pages"`
	CurrentPage  int                 `json:"currentPage"`
	Reservations []model.Reservation `json:"reservations"`
}

// ReservationService admits reservation requests and drives their status.
type ReservationService struct {
	amenities AmenityDirectory
	store     ReservationStore
	events    EventPublisher
	log       *logger.Logger

	publishTimeout time.Duration
}

// NewReservationService wires the service.  events may be nil.
func NewReservationService(amenities AmenityDirectory, store ReservationStore, events EventPublisher, log *logger.Logger) *ReservationService {
	if log == nil {
		log = logger.Discard()
	}
	return &ReservationService{
		amenities:      amenities,
		store:          store,
		events:         events,
		log:            log,
		publishTimeout: 3 * time.Second,
	}
}

// RequestReservation admits req for actor or explains why not.  On success
// the stored reservation is PENDING.  A conflict returns a
// *SlotConflictError carrying the earliest-starting reservation that
// collides with the request.
func (s *ReservationService) RequestReservation(ctx context.Context, req ReservationRequest, actor model.Actor) (*model.Reservation, error) {
	if !model.HasCapability(actor, model.ActionRequestReservation) {
		return nil, ErrForbidden
	}
	if req.Start >= req.End {
		return nil, ErrInvalidRange
	}

	amenity, err := s.amenity(ctx, req.AmenityID)
	if err != nil {
		return nil, err
	}
	if !amenity.RequiresReservation || !amenity.Status.Bookable() {
		return nil, ErrNotReservable
	}
	if !amenity.Within(req.Start, req.End) {
		return nil, ErrOutsideOperatingHours
	}
	if req.Attendees != nil && *req.Attendees > 0 && amenity.Capacity > 0 && *req.Attendees > amenity.Capacity {
		return nil, ErrCapacityExceeded
	}

	res := &model.Reservation{
		AmenityID:   req.AmenityID,
		RequesterID: actor.ID,
		Date:        req.Date,
		StartTime:   req.Start,
		EndTime:     req.End,
		Status:      model.StatusPending,
		Reason:      req.Reason,
		Attendees:   req.Attendees,
	}
	err = s.store.Admit(ctx, req.AmenityID, req.Date, func(ctx context.Context, tx repository.Admission) error {
		active, err := tx.ListActive(ctx)
		if err != nil {
			return err
		}
		for i := range active {
			if active[i].Collides(req.Start, req.End) {
				return &SlotConflictError{Conflicting: active[i]}
			}
		}
		return tx.Insert(ctx, res)
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAmenityNotFound
		}
		return nil, err
	}

	s.log.Info("reservation admitted",
		"reservation_id", res.ID, "amenity_id", res.AmenityID, "requester_id", res.RequesterID,
		"date", res.Date.String(), "start", res.StartTime.String(), "end", res.EndTime.String())
	s.publish(ctx, queue.EventReservationCreated, res, amenity.Name, actor.ID)
	return res, nil
}

// SetStatus assigns status to a reservation.  Only staff may do so.  The
// overlap invariant is not re-checked, so confirming a reservation never
// fails on a conflict.  Moving to CANCELLED follows the Cancel rules.
func (s *ReservationService) SetStatus(ctx context.Context, id uint64, status model.ReservationStatus, actor model.Actor) (*model.Reservation, error) {
	if !model.HasCapability(actor, model.ActionSetReservationStatus) {
		return nil, ErrForbidden
	}
	if _, ok := model.ParseReservationStatus(string(status)); !ok {
		return nil, ErrInvalidStatus
	}
	if status == model.StatusCancelled {
		return s.Cancel(ctx, id, actor)
	}

	current, err := s.reservation(ctx, id)
	if err != nil {
		return nil, err
	}
	updated, err := s.updateStatus(ctx, current.ID, status)
	if err != nil {
		return nil, err
	}
	s.log.Info("reservation status changed",
		"reservation_id", id, "from", string(current.Status), "to", string(status), "actor_id", actor.ID)
	s.publish(ctx, queue.EventReservationStatusChanged, updated, "", actor.ID)
	return updated, nil
}

// Cancel releases a reservation.  The requester may cancel their own;
// staff may cancel anyone's.  A cancelled or completed reservation
// cannot be cancelled again.
func (s *ReservationService) Cancel(ctx context.Context, id uint64, actor model.Actor) (*model.Reservation, error) {
	current, err := s.reservation(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.RequesterID != actor.ID && !model.HasCapability(actor, model.ActionCancelAnyReservation) {
		return nil, ErrForbidden
	}
	if current.Status.Terminal() {
		return nil, ErrAlreadyFinal
	}
	updated, err := s.updateStatus(ctx, id, model.StatusCancelled)
	if err != nil {
		return nil, err
	}
	s.log.Info("reservation cancelled", "reservation_id", id, "actor_id", actor.ID)
	s.publish(ctx, queue.EventReservationCancelled, updated, "", actor.ID)
	return updated, nil
}

// ListAvailability returns the slots held on (amenityID, date), earliest
// start first.  The result is empty, not nil, when nothing is held.
func (s *ReservationService) ListAvailability(ctx context.Context, amenityID uint64, date model.Date) ([]model.Interval, error) {
	if _, err := s.amenity(ctx, amenityID); err != nil {
		return nil, err
	}
	active, err := s.store.ListActive(ctx, amenityID, date)
	if err != nil {
		return nil, err
	}
	out := make([]model.Interval, 0, len(active))
	for _, r := range active {
		if !r.Status.Holds() {
			continue
		}
		out = append(out, model.Interval{ReservationID: r.ID, StartTime: r.StartTime, EndTime: r.EndTime, Status: r.Status})
	}
	return out, nil
}

// Get returns a reservation visible to actor.
func (s *ReservationService) Get(ctx context.Context, id uint64, actor model.Actor) (*model.Reservation, error) {
	res, err := s.reservation(ctx, id)
	if err != nil {
		return nil, err
	}
	if res.RequesterID != actor.ID && !model.HasCapability(actor, model.ActionViewAnyReservation) {
		return nil, ErrForbidden
	}
	return res, nil
}

// List pages through reservations.  Residents only ever see their own;
// staff may filter by any requester.
func (s *ReservationService) List(ctx context.Context, f repository.ReservationFilter, actor model.Actor) (*ReservationPage, error) {
	if !model.HasCapability(actor, model.ActionViewAnyReservation) {
		f.RequesterID = actor.ID
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit <= 0 {
		f.Limit = 10
	}
	if f.Limit > 100 {
		f.Limit = 100
	}
	items, total, err := s.store.List(ctx, f)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.Reservation{}
	}
	return &ReservationPage{
		Total:        total,
		Pages:        int(math.Ceil(float64(total) / float64(f.Limit))),
		CurrentPage:  f.Page,
		Reservations: items,
	}, nil
}

func (s *ReservationService) amenity(ctx context.Context, id uint64) (*model.Amenity, error) {
	a, err := s.amenities.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAmenityNotFound
		}
		return nil, err
	}
	return a, nil
}

func (s *ReservationService) reservation(ctx context.Context, id uint64) (*model.Reservation, error) {
	r, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	return r, nil
}

func (s *ReservationService) updateStatus(ctx context.Context, id uint64, status model.ReservationStatus) (*model.Reservation, error) {
	r, err := s.store.UpdateStatus(ctx, id, status)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	return r, nil
}

func (s *ReservationService) publish(ctx context.Context, typ string, res *model.Reservation, amenityName string, actorID uint64) {
	if s.events == nil {
		return
	}
	if amenityName == "" {
		if a, err := s.amenities.GetByID(ctx, res.AmenityID); err == nil {
			amenityName = a.Name
		}
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.publishTimeout)
	defer cancel()
	if err := s.events.Publish(ctx, queue.NewReservationEvent(typ, res, amenityName, actorID)); err != nil {
		s.log.Warn("reservation event not published", "error", err, "type", typ, "reservation_id", res.ID)
	}
}
