package service

import (
	"errors"
	"fmt"

	"github.com/iliyamo/community-amenities/internal/model"
)

var (
	// ErrNotFound is matched by every lookup failure of this package.
	ErrNotFound            = errors.New("not found")
	ErrAmenityNotFound     = fmt.Errorf("amenity %w", ErrNotFound)
	ErrReservationNotFound = fmt.Errorf("reservation %w", ErrNotFound)

	ErrInvalidRange          = errors.New("start time must be before end time")
	ErrInvalidStatus         = errors.New("unknown reservation status")
	ErrNotReservable         = errors.New("amenity does not accept reservations")
	ErrOutsideOperatingHours = errors.New("requested slot is outside the amenity operating hours")
	ErrCapacityExceeded      = errors.New("attendees exceed amenity capacity")
	ErrForbidden             = errors.New("forbidden")
	ErrSlotConflict          = errors.New("slot already reserved")
	ErrAlreadyFinal          = errors.New("reservation is already cancelled or completed")
)

// SlotConflictError reports the reservation that blocked an admission.
// errors.Is(err, ErrSlotConflict) holds for it.
type SlotConflictError struct {
	Conflicting model.Reservation
}

func (e *SlotConflictError) Error() string {
	return fmt.Sprintf("%s: reservation %d holds %s-%s",
		ErrSlotConflict, e.Conflicting.ID, e.Conflicting.StartTime, e.Conflicting.EndTime)
}

func (e *SlotConflictError) Is(target error) bool { return target == ErrSlotConflict }
