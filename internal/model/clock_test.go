package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    Clock
		wantErr bool
	}{
		{in: "00:00", want: 0},
		{in: "9:05", want: 9*60 + 5},
		{in: "14:30", want: 14*60 + 30},
		{in: "23:59", want: 23*60 + 59},
		{in: "14:30:00", want: 14*60 + 30},
		{in: "24:00", wantErr: true},
		{in: "12:60", wantErr: true},
		{in: "1230", wantErr: true},
		{in: "", wantErr: true},
		{in: "7pm", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseClock(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidClock)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClockJSONAndDriver(t *testing.T) {
	c := MustClock("7:05")
	b, err := json.Marshal(c)
	require.NoError(t, err)
	assert.Equal(t, `"07:05"`, string(b))

	var back Clock
	require.NoError(t, json.Unmarshal([]byte(`"18:45"`), &back))
	assert.Equal(t, MustClock("18:45"), back)
	assert.Error(t, json.Unmarshal([]byte(`"25:00"`), &back))

	v, err := c.Value()
	require.NoError(t, err)
	assert.Equal(t, "07:05:00", v)

	var scanned Clock
	require.NoError(t, scanned.Scan([]byte("16:20:00")))
	assert.Equal(t, MustClock("16:20"), scanned)
}

func TestDate(t *testing.T) {
	d, err := ParseDate("2024-06-01")
	require.NoError(t, err)
	assert.Equal(t, Date("2024-06-01"), d)

	_, err = ParseDate("2024-13-01")
	assert.ErrorIs(t, err, ErrInvalidDate)
	_, err = ParseDate("01/06/2024")
	assert.ErrorIs(t, err, ErrInvalidDate)

	var scanned Date
	require.NoError(t, scanned.Scan(time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, Date("2024-06-02"), scanned)
}

func TestOverlaps(t *testing.T) {
	booked := [2]Clock{MustClock("14:00"), MustClock("15:00")}
	tests := []struct {
		name       string
		start, end string
		want       bool
	}{
		{name: "starts inside", start: "14:30", end: "15:30", want: true},
		{name: "ends inside", start: "13:30", end: "14:30", want: true},
		{name: "contains booking", start: "13:00", end: "16:00", want: true},
		{name: "inside booking", start: "14:10", end: "14:50", want: true},
		{name: "identical", start: "14:00", end: "15:00", want: true},
		{name: "starts when booking ends", start: "15:00", end: "16:00", want: true},
		{name: "ends when booking starts", start: "13:00", end: "14:00", want: true},
		{name: "earlier", start: "12:00", end: "13:59", want: false},
		{name: "later", start: "15:01", end: "16:00", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, e := MustClock(tt.start), MustClock(tt.end)
			assert.Equal(t, tt.want, Overlaps(s, e, booked[0], booked[1]))
			// the inclusive predicate is symmetric
			assert.Equal(t, tt.want, Overlaps(booked[0], booked[1], s, e))
		})
	}
}

func TestReservationCollidesIgnoresReleasedSlots(t *testing.T) {
	r := Reservation{StartTime: MustClock("10:00"), EndTime: MustClock("11:00")}
	for _, st := range []ReservationStatus{StatusPending, StatusConfirmed} {
		r.Status = st
		assert.True(t, r.Collides(MustClock("10:30"), MustClock("11:30")), st)
	}
	for _, st := range []ReservationStatus{StatusCancelled, StatusCompleted} {
		r.Status = st
		assert.False(t, r.Collides(MustClock("10:30"), MustClock("11:30")), st)
	}
}

func TestAmenityWithin(t *testing.T) {
	a := &Amenity{}
	assert.True(t, a.Within(MustClock("00:00"), MustClock("23:59")))

	opens, closes := MustClock("08:00"), MustClock("22:00")
	a.OpensAt, a.ClosesAt = &opens, &closes
	assert.True(t, a.Within(MustClock("08:00"), MustClock("22:00")))
	assert.False(t, a.Within(MustClock("07:30"), MustClock("09:00")))
	assert.False(t, a.Within(MustClock("21:00"), MustClock("22:30")))
}
