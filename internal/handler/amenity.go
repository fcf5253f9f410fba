package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/community-amenities/internal/logger"
	"github.com/iliyamo/community-amenities/internal/model"
	"github.com/iliyamo/community-amenities/internal/repository"
)

// AmenityStore is the amenity directory persistence used by the handler.
type AmenityStore interface {
	Create(ctx context.Context, a *model.Amenity) error
	GetByID(ctx context.Context, id uint64) (*model.Amenity, error)
	List(ctx context.Context, f repository.AmenityFilter) ([]model.Amenity, int, error)
	Update(ctx context.Context, a *model.Amenity) error
	Delete(ctx context.Context, id uint64) error
}

// CacheInvalidator drops cached directory responses after a write.
type CacheInvalidator interface {
	Invalidate(ctx context.Context)
}

// AmenityHandler serves the amenity directory.  Reads are open to every
// authenticated role; writes are gated by the router.
type AmenityHandler struct {
	Amenities AmenityStore
	Cache     CacheInvalidator
	Log       *logger.Logger
}

func NewAmenityHandler(store AmenityStore, cache CacheInvalidator, log *logger.Logger) *AmenityHandler {
	return &AmenityHandler{Amenities: store, Cache: cache, Log: log}
}

// amenityReq is shared by create and update.  On update, omitted fields
// keep their stored value.
type amenityReq struct {
	Name                *string `json:"name" validate:"omitempty,min=1,max=100"`
	Description         *string `json:"description" validate:"omitempty,max=2000"`
	Kind                *string `json:"kind" validate:"omitempty,oneof=EVENT_HALL GYM POOL SPORTS_COURT BBQ_AREA GAME_ROOM PLAYGROUND OTHER"`
	Location            *string `json:"location" validate:"omitempty,max=100"`
	Capacity            *uint32 `json:"capacity"`
	Status              *string `json:"status" validate:"omitempty,oneof=AVAILABLE OCCUPIED MAINTENANCE OUT_OF_SERVICE"`
	OpensAt             *string `json:"opens_at" validate:"omitempty,hhmm"`
	ClosesAt            *string `json:"closes_at" validate:"omitempty,hhmm"`
	RequiresReservation *bool   `json:"requires_reservation"`
	UsageFeeCents       *uint32 `json:"usage_fee_cents"`
	Rules               *string `json:"rules" validate:"omitempty,max=5000"`
	ImageURL            *string `json:"image_url" validate:"omitempty,url,max=255"`
}

type listAmenitiesQuery struct {
	Status              string `query:"status" validate:"omitempty,oneof=AVAILABLE OCCUPIED MAINTENANCE OUT_OF_SERVICE"`
	Kind                string `query:"kind" validate:"omitempty,oneof=EVENT_HALL GYM POOL SPORTS_COURT BBQ_AREA GAME_ROOM PLAYGROUND OTHER"`
	RequiresReservation string `query:"requires_reservation" validate:"omitempty,oneof=true false"`
	Search              string `query:"q" validate:"omitempty,max=100"`
	Page                int    `query:"page" validate:"omitempty,min=1"`
	Limit               int    `query:"limit" validate:"omitempty,min=1,max=100"`
}

// apply copies the supplied fields onto a.
func (r *amenityReq) apply(a *model.Amenity) {
	if r.Name != nil {
		a.Name = strings.TrimSpace(*r.Name)
	}
	if r.Description != nil {
		a.Description = r.Description
	}
	if r.Kind != nil {
		a.Kind = model.AmenityKind(*r.Kind)
	}
	if r.Location != nil {
		a.Location = r.Location
	}
	if r.Capacity != nil {
		a.Capacity = *r.Capacity
	}
	if r.Status != nil {
		a.Status = model.AmenityStatus(*r.Status)
	}
	if r.OpensAt != nil {
		c, _ := model.ParseClock(*r.OpensAt)
		a.OpensAt = &c
	}
	if r.ClosesAt != nil {
		c, _ := model.ParseClock(*r.ClosesAt)
		a.ClosesAt = &c
	}
	if r.RequiresReservation != nil {
		a.RequiresReservation = *r.RequiresReservation
	}
	if r.UsageFeeCents != nil {
		a.UsageFeeCents = *r.UsageFeeCents
	}
	if r.Rules != nil {
		a.Rules = r.Rules
	}
	if r.ImageURL != nil {
		a.ImageURL = r.ImageURL
	}
}

func checkWindow(a *model.Amenity) bool {
	return a.OpensAt == nil || a.ClosesAt == nil || *a.OpensAt < *a.ClosesAt
}

// List: GET /v1/amenities
func (h *AmenityHandler) List(c echo.Context) error {
	var q listAmenitiesQuery
	if ok, err := bindValid(c, &q); !ok {
		return err
	}
	f := repository.AmenityFilter{
		Status: model.AmenityStatus(q.Status),
		Kind:   model.AmenityKind(q.Kind),
		Search: q.Search,
		Page:   q.Page,
		Limit:  q.Limit,
	}
	if q.RequiresReservation != "" {
		v := q.RequiresReservation == "true"
		f.RequiresReservation = &v
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 10
	}
	items, total, err := h.Amenities.List(c.Request().Context(), f)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	if items == nil {
		items = []model.Amenity{}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"total":       total,
		"pages":       (total + f.Limit - 1) / f.Limit,
		"currentPage": f.Page,
		"amenities":   items,
	})
}

// Get: GET /v1/amenities/:id
func (h *AmenityHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	a, err := h.Amenities.GetByID(c.Request().Context(), id)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"amenity": a})
}

// Create: POST /v1/amenities
func (h *AmenityHandler) Create(c echo.Context) error {
	var req amenityReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": map[string]string{"name": "required"}})
	}
	a := &model.Amenity{Kind: model.KindOther, Status: model.AmenityAvailable}
	req.apply(a)
	if !checkWindow(a) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "opens_at must be before closes_at"})
	}
	if err := h.Amenities.Create(c.Request().Context(), a); err != nil {
		return writeError(c, h.Log, err)
	}
	h.invalidate(c)
	return c.JSON(http.StatusCreated, echo.Map{"message": "amenity created", "amenity": a})
}

// Update: PUT /v1/amenities/:id
func (h *AmenityHandler) Update(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req amenityReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	ctx := c.Request().Context()
	a, err := h.Amenities.GetByID(ctx, id)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	req.apply(a)
	if a.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": map[string]string{"name": "required"}})
	}
	if !checkWindow(a) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "opens_at must be before closes_at"})
	}
	if err := h.Amenities.Update(ctx, a); err != nil {
		return writeError(c, h.Log, err)
	}
	h.invalidate(c)
	return c.JSON(http.StatusOK, echo.Map{"message": "amenity updated", "amenity": a})
}

// Delete: DELETE /v1/amenities/:id
func (h *AmenityHandler) Delete(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Amenities.Delete(c.Request().Context(), id); err != nil {
		return writeError(c, h.Log, err)
	}
	h.invalidate(c)
	return c.JSON(http.StatusOK, echo.Map{"message": "amenity deleted"})
}

func (h *AmenityHandler) invalidate(c echo.Context) {
	if h.Cache != nil {
		h.Cache.Invalidate(c.Request().Context())
	}
}
