package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/community-amenities/internal/middleware"
	"github.com/iliyamo/community-amenities/internal/model"
)

// RegisterAmenities registers the amenity directory and reservation
// endpoints under /v1/amenities.  Every route requires a valid JWT.  Reads
// need the browse capability; writes to the directory and status changes
// are gated by their own.  Only the directory reads are cached.
func RegisterAmenities(e *echo.Echo, d Deps) {
	g := e.Group(
		"/v1/amenities",
		middleware.JWTAuth(d.JWTSecret),
		middleware.NewTokenBucket(d.RateLimit, d.Redis, d.Log),
	)
	cache := middleware.NewRedisCache(d.Cache, d.Redis)
	browse := middleware.RequireCapability(model.ActionBrowse)

	// ---- Reservations ----
	r := d.Reservations
	g.GET("/reservations", r.List, browse)
	g.POST("/reservations", r.Create)
	g.GET("/reservations/availability", r.Availability, browse)
	g.GET("/reservations/:id", r.Get, browse)
	g.PUT("/reservations/:id/status", r.SetStatus, middleware.RequireCapability(model.ActionSetReservationStatus))
	g.POST("/reservations/:id/cancel", r.Cancel)

	// ---- Directory ----
	a := d.Amenities
	g.GET("", a.List, browse, cache)
	g.GET("/:id", a.Get, browse, cache)
	g.POST("", a.Create, middleware.RequireCapability(model.ActionManageAmenities))
	g.PUT("/:id", a.Update, middleware.RequireCapability(model.ActionManageAmenities))
	g.DELETE("/:id", a.Delete, middleware.RequireCapability(model.ActionDeleteAmenity))
}
