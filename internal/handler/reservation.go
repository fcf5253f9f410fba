package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/community-amenities/internal/logger"
	"github.com/iliyamo/community-amenities/internal/model"
	"github.com/iliyamo/community-amenities/internal/repository"
	"github.com/iliyamo/community-amenities/internal/service"
)

// ReservationService is the admission service as seen by the HTTP layer.
type ReservationService interface {
	RequestReservation(ctx context.Context, req service.ReservationRequest, actor model.Actor) (*model.Reservation, error)
	SetStatus(ctx context.Context, id uint64, status model.ReservationStatus, actor model.Actor) (*model.Reservation, error)
	Cancel(ctx context.Context, id uint64, actor model.Actor) (*model.Reservation, error)
	ListAvailability(ctx context.Context, amenityID uint64, date model.Date) ([]model.Interval, error)
	Get(ctx context.Context, id uint64, actor model.Actor) (*model.Reservation, error)
	List(ctx context.Context, f repository.ReservationFilter, actor model.Actor) (*service.ReservationPage, error)
}

// ReservationHandler serves /v1/amenities/reservations.
type ReservationHandler struct {
	Svc ReservationService
	Log *logger.Logger
}

func NewReservationHandler(svc ReservationService, log *logger.Logger) *ReservationHandler {
	return &ReservationHandler{Svc: svc, Log: log}
}

type createReservationReq struct {
	AmenityID uint64  `json:"amenity_id" validate:"required"`
	Date      string  `json:"date" validate:"required,isodate"`
	StartTime string  `json:"start_time" validate:"required,hhmm"`
	EndTime   string  `json:"end_time" validate:"required,hhmm"`
	Reason    *string `json:"reason" validate:"omitempty,max=1000"`
	Attendees *uint32 `json:"attendees" validate:"omitempty,min=1"`
}

type statusReq struct {
	Status string `json:"status" validate:"required,oneof=PENDING CONFIRMED CANCELLED COMPLETED"`
}

type availabilityQuery struct {
	AmenityID uint64 `query:"amenity_id" validate:"required"`
	Date      string `query:"date" validate:"required,isodate"`
}

type listReservationsQuery struct {
	AmenityID   uint64 `query:"amenity_id"`
	RequesterID uint64 `query:"requester_id"`
	Status      string `query:"status" validate:"omitempty,oneof=PENDING CONFIRMED CANCELLED COMPLETED"`
	Date        string `query:"date" validate:"omitempty,isodate"`
	Page        int    `query:"page" validate:"omitempty,min=1"`
	Limit       int    `query:"limit" validate:"omitempty,min=1,max=100"`
}

// Create: POST /v1/amenities/reservations
func (h *ReservationHandler) Create(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	var req createReservationReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	// Formats were checked by the validator.
	date, _ := model.ParseDate(req.Date)
	start, _ := model.ParseClock(req.StartTime)
	end, _ := model.ParseClock(req.EndTime)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, err := h.Svc.RequestReservation(ctx, service.ReservationRequest{
		AmenityID: req.AmenityID,
		Date:      date,
		Start:     start,
		End:       end,
		Reason:    req.Reason,
		Attendees: req.Attendees,
	}, actor)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "reservation created", "reservation": res})
}

// List: GET /v1/amenities/reservations
func (h *ReservationHandler) List(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	var q listReservationsQuery
	if ok, err := bindValid(c, &q); !ok {
		return err
	}
	page, err := h.Svc.List(c.Request().Context(), repository.ReservationFilter{
		AmenityID:   q.AmenityID,
		RequesterID: q.RequesterID,
		Status:      model.ReservationStatus(q.Status),
		Date:        model.Date(q.Date),
		Page:        q.Page,
		Limit:       q.Limit,
	}, actor)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, page)
}

// Availability: GET /v1/amenities/reservations/availability?amenity_id=&date=
func (h *ReservationHandler) Availability(c echo.Context) error {
	var q availabilityQuery
	if ok, err := bindValid(c, &q); !ok {
		return err
	}
	date, _ := model.ParseDate(q.Date)
	slots, err := h.Svc.ListAvailability(c.Request().Context(), q.AmenityID, date)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"amenity_id":     q.AmenityID,
		"date":           date,
		"reserved_slots": slots,
		"count":          len(slots),
	})
}

// Get: GET /v1/amenities/reservations/:id
func (h *ReservationHandler) Get(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	res, err := h.Svc.Get(c.Request().Context(), id, actor)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"reservation": res})
}

// SetStatus: PUT /v1/amenities/reservations/:id/status
func (h *ReservationHandler) SetStatus(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req statusReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	res, err := h.Svc.SetStatus(c.Request().Context(), id, model.ReservationStatus(req.Status), actor)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "reservation status updated", "reservation": res})
}

// Cancel: POST /v1/amenities/reservations/:id/cancel
func (h *ReservationHandler) Cancel(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	res, err := h.Svc.Cancel(c.Request().Context(), id, actor)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "reservation cancelled", "reservation": res})
}
