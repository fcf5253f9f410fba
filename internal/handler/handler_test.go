package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/community-amenities/internal/logger"
	"github.com/iliyamo/community-amenities/internal/model"
	"github.com/iliyamo/community-amenities/internal/repository"
	"github.com/iliyamo/community-amenities/internal/service"
)

func TestValidatorTags(t *testing.T) {
	v := NewValidator()
	ok := createReservationReq{AmenityID: 1, Date: "2025-03-10", StartTime: "9:00", EndTime: "23:59"}
	assert.NoError(t, v.Validate(&ok))

	bad := createReservationReq{AmenityID: 1, Date: "2025-02-30", StartTime: "24:00", EndTime: "12:60"}
	err := v.Validate(&bad)
	require.Error(t, err)
	assert.Equal(t, map[string]string{
		"date":       "isodate",
		"start_time": "hhmm",
		"end_time":   "hhmm",
	}, fieldErrors(err))

	missing := createReservationReq{}
	fields := fieldErrors(v.Validate(&missing))
	assert.Equal(t, "required", fields["amenity_id"])
	assert.Equal(t, "required", fields["date"])
}

func TestWriteErrorMapping(t *testing.T) {
	conflict := &service.SlotConflictError{Conflicting: model.Reservation{ID: 42}}
	cases := []struct {
		err  error
		code int
	}{
		{service.ErrInvalidRange, http.StatusBadRequest},
		{service.ErrNotReservable, http.StatusBadRequest},
		{service.ErrOutsideOperatingHours, http.StatusBadRequest},
		{service.ErrCapacityExceeded, http.StatusBadRequest},
		{conflict, http.StatusBadRequest},
		{service.ErrAmenityNotFound, http.StatusNotFound},
		{service.ErrReservationNotFound, http.StatusNotFound},
		{repository.ErrNotFound, http.StatusNotFound},
		{service.ErrForbidden, http.StatusForbidden},
		{repository.ErrConflict, http.StatusConflict},
		{service.ErrAlreadyFinal, http.StatusConflict},
		{errNoActor, http.StatusUnauthorized},
		{fmt.Errorf("wrapped: %w", service.ErrForbidden), http.StatusForbidden},
		{errors.New("db exploded"), http.StatusInternalServerError},
	}
	e := echo.New()
	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
			require.NoError(t, writeError(c, logger.Discard(), tc.err))
			assert.Equal(t, tc.code, rec.Code)
		})
	}

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec)
	require.NoError(t, writeError(c, logger.Discard(), conflict))
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Contains(t, body, "conflicting_reservation")
	assert.EqualValues(t, 42, body["conflicting_reservation"].(map[string]any)["id"])

	rec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	require.NoError(t, writeError(c, logger.Discard(), errors.New("secret driver detail")))
	assert.NotContains(t, rec.Body.String(), "secret driver detail")
}

func TestAmenityReqApplyKeepsOmittedFields(t *testing.T) {
	opens := model.MustClock("08:00")
	a := &model.Amenity{Name: "Pool", Capacity: 20, OpensAt: &opens, RequiresReservation: true}
	name := " Lap Pool "
	closes := "21:00"
	req := amenityReq{Name: &name, ClosesAt: &closes}
	req.apply(a)

	assert.Equal(t, "Lap Pool", a.Name)
	assert.Equal(t, uint32(20), a.Capacity)
	assert.True(t, a.RequiresReservation)
	require.NotNil(t, a.ClosesAt)
	assert.Equal(t, model.MustClock("21:00"), *a.ClosesAt)
	assert.True(t, checkWindow(a))

	late := "07:00"
	(&amenityReq{ClosesAt: &late}).apply(a)
	assert.False(t, checkWindow(a))
}

func TestHealth(t *testing.T) {
	e := echo.New()
	e.GET("/ok", Health(nil))
	e.GET("/down", Health(failingPinger{}))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/down", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

type failingPinger struct{}

func (failingPinger) PingContext(context.Context) error { return errors.New("down") }
