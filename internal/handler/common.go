package handler // handler defines http handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/community-amenities/internal/logger"
	"github.com/iliyamo/community-amenities/internal/middleware"
	"github.com/iliyamo/community-amenities/internal/model"
	"github.com/iliyamo/community-amenities/internal/repository"
	"github.com/iliyamo/community-amenities/internal/service"
)

var errNoActor = errors.New("no authenticated actor in context")

// currentActor returns the actor set by the JWT middleware.
func currentActor(c echo.Context) (model.Actor, error) {
	a, ok := middleware.ActorFrom(c)
	if !ok {
		return model.Actor{}, errNoActor
	}
	return a, nil
}

// pathID parses a positive numeric path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// bindValid binds the request into dst and runs the registered validator.
// On failure it writes the 400 response and returns false.
func bindValid(c echo.Context, dst any) (bool, error) {
	if err := c.Bind(dst); err != nil {
		return false, c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(dst); err != nil {
		if fields := fieldErrors(err); fields != nil {
			return false, c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": fields})
		}
		return false, c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	return true, nil
}

// writeError maps domain errors onto HTTP responses.  Unknown errors are
// logged and answered with a generic 500.
func writeError(c echo.Context, log *logger.Logger, err error) error {
	var conflict *service.SlotConflictError
	switch {
	case errors.As(err, &conflict):
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":                   err.Error(),
			"conflicting_reservation": conflict.Conflicting,
		})
	case errors.Is(err, service.ErrInvalidRange),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrNotReservable),
		errors.Is(err, service.ErrOutsideOperatingHours),
		errors.Is(err, service.ErrCapacityExceeded):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound), errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, repository.ErrConflict), errors.Is(err, service.ErrAlreadyFinal):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, errNoActor):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	log.Error("request failed",
		"method", c.Request().Method, "path", c.Path(),
		"request_id", c.Response().Header().Get(echo.HeaderXRequestID), "error", err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
