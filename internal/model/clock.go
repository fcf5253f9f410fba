package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// clockPattern accepts 24h wall-clock values such as 9:30, 09:30 and the
// HH:MM:SS form MySQL returns for TIME columns.
var clockPattern = regexp.MustCompile(`^([0-1]?[0-9]|2[0-3]):([0-5][0-9])(?::([0-5][0-9]))?$`)

// ErrInvalidClock is returned when a time-of-day string does not match the
// 24 hour HH:MM pattern.
var ErrInvalidClock = errors.New("invalid time of day, expected HH:MM (24h)")

// ErrInvalidDate is returned when a calendar date is not YYYY-MM-DD.
var ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")

// Clock is a wall-clock time of day expressed as minutes since midnight.
// Seconds are dropped; reservations are booked with minute precision.
type Clock int

// ParseClock parses "H:MM", "HH:MM" or "HH:MM:SS".
func ParseClock(s string) (Clock, error) {
	m := clockPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, ErrInvalidClock
	}
	h, _ := strconv.Atoi(m[1])
	min, _ := strconv.Atoi(m[2])
	return Clock(h*60 + min), nil
}

// MustClock is ParseClock for literals known to be valid.
func MustClock(s string) Clock {
	c, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return c
}

// String renders the clock as HH:MM.
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// MarshalJSON encodes the clock as an "HH:MM" string.
func (c Clock) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON decodes an "HH:MM" string.
func (c *Clock) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v, err := ParseClock(s)
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Value stores the clock in a MySQL TIME column.
func (c Clock) Value() (driver.Value, error) {
	return c.String() + ":00", nil
}

// Scan reads a MySQL TIME column. The driver hands TIME back as text even
// with parseTime enabled.
func (c *Clock) Scan(src any) error {
	switch v := src.(type) {
	case []byte:
		return c.scanString(string(v))
	case string:
		return c.scanString(v)
	case time.Time:
		*c = Clock(v.Hour()*60 + v.Minute())
		return nil
	case nil:
		*c = 0
		return nil
	}
	return fmt.Errorf("clock: unsupported scan type %T", src)
}

func (c *Clock) scanString(s string) error {
	v, err := ParseClock(s)
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Date is a calendar date in canonical YYYY-MM-DD form. It carries no time
// zone; two dates are equal when their strings are equal.
type Date string

const dateLayout = "2006-01-02"

// ParseDate validates and normalizes a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return "", ErrInvalidDate
	}
	return Date(t.Format(dateLayout)), nil
}

// String returns the canonical form.
func (d Date) String() string { return string(d) }

// Value stores the date in a MySQL DATE column.
func (d Date) Value() (driver.Value, error) {
	return string(d), nil
}

// Scan reads a MySQL DATE column. With parseTime=true the driver returns
// time.Time values; the wall-clock date is kept as-is.
func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*d = Date(v.Format(dateLayout))
		return nil
	case []byte:
		p, err := ParseDate(string(v))
		if err != nil {
			return err
		}
		*d = p
		return nil
	case string:
		p, err := ParseDate(v)
		if err != nil {
			return err
		}
		*d = p
		return nil
	}
	return fmt.Errorf("date: unsupported scan type %T", src)
}

// Overlaps reports whether the interval [start, end] collides with the
// booked interval [bookedStart, bookedEnd]. Boundaries are inclusive: a
// request that ends exactly when a booking begins, or begins exactly when
// one ends, still collides.
func Overlaps(start, end, bookedStart, bookedEnd Clock) bool {
	if start >= bookedStart && start <= bookedEnd {
		return true
	}
	if end >= bookedStart && end <= bookedEnd {
		return true
	}
	return start <= bookedStart && end >= bookedEnd
}
