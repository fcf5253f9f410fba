package middleware

// identity.go holds the context accessors shared by the middlewares and
// the handlers.

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/community-amenities/internal/model"
)

const actorKey = "actor"

// ActorFrom returns the actor stored by JWTAuth.
func ActorFrom(c echo.Context) (model.Actor, bool) {
	a, ok := c.Get(actorKey).(model.Actor)
	return a, ok && a.ID != 0
}

// userID returns the decimal id of the authenticated actor, or "anon".
func userID(c echo.Context) string {
	if a, ok := ActorFrom(c); ok {
		return strconv.FormatUint(a.ID, 10)
	}
	return "anon"
}
