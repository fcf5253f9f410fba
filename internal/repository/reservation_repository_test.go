package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/community-amenities/internal/model"
)

var resCols = []string{"id", "amenity_id", "requester_id", "reserved_on", "start_time", "end_time", "status", "reason", "attendees", "created_at", "updated_at"}

func newMock(t *testing.T) (*ReservationRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewReservationRepo(db), mock
}

func TestAdmitLocksAmenityAndCommits(t *testing.T) {
	repo, mock := newMock(t)
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM amenities WHERE id = ? FOR UPDATE`)).
		WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
	mock.ExpectQuery(`FROM amenity_reservations\s+WHERE amenity_id = \? AND reserved_on = \? AND status IN \(\?, \?\)\s+ORDER BY start_time ASC`).
		WithArgs(uint64(3), "2025-03-10", "PENDING", "CONFIRMED").
		WillReturnRows(sqlmock.NewRows(resCols).
			AddRow(1, 3, 8, day, "09:00:00", "10:00:00", "CONFIRMED", nil, nil, now, now))
	mock.ExpectExec(`INSERT INTO amenity_reservations`).
		WithArgs(uint64(3), uint64(9), "2025-03-10", "14:00:00", "15:00:00", "PENDING", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectQuery(`FROM amenity_reservations WHERE id = \?`).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows(resCols).
			AddRow(2, 3, 9, day, []byte("14:00:00"), []byte("15:00:00"), "PENDING", "birthday", 12, now, now))
	mock.ExpectCommit()

	res := &model.Reservation{
		AmenityID:   3,
		RequesterID: 9,
		Date:        "2025-03-10",
		StartTime:   model.MustClock("14:00"),
		EndTime:     model.MustClock("15:00"),
		Status:      model.StatusPending,
	}
	err := repo.Admit(context.Background(), 3, "2025-03-10", func(ctx context.Context, a Admission) error {
		active, err := a.ListActive(ctx)
		require.NoError(t, err)
		require.Len(t, active, 1)
		assert.Equal(t, model.MustClock("09:00"), active[0].StartTime)
		assert.Equal(t, model.Date("2025-03-10"), active[0].Date)
		return a.Insert(ctx, res)
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), res.ID)
	require.NotNil(t, res.Reason)
	assert.Equal(t, "birthday", *res.Reason)
	require.NotNil(t, res.Attendees)
	assert.Equal(t, uint32(12), *res.Attendees)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdmitRollsBackWhenCallbackFails(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
	mock.ExpectRollback()

	boom := errors.New("conflict")
	err := repo.Admit(context.Background(), 3, "2025-03-10", func(context.Context, Admission) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdmitMissingAmenity(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	called := false
	err := repo.Admit(context.Background(), 99, "2025-03-10", func(context.Context, Admission) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, called)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIDNotFound(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery(`FROM amenity_reservations WHERE id = \?`).WithArgs(uint64(5)).WillReturnRows(sqlmock.NewRows(resCols))
	_, err := repo.GetByID(context.Background(), 5)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListAppliesFiltersAndPaging(t *testing.T) {
	repo, mock := newMock(t)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM amenity_reservations WHERE amenity_id = ? AND status = ?`)).
		WithArgs(uint64(3), "CONFIRMED").
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(12))
	mock.ExpectQuery(`WHERE amenity_id = \? AND status = \? ORDER BY reserved_on DESC, start_time DESC, id DESC LIMIT \? OFFSET \?`).
		WithArgs(uint64(3), "CONFIRMED", 5, 5).
		WillReturnRows(sqlmock.NewRows(resCols).
			AddRow(7, 3, 8, now, "10:00:00", "11:00:00", "CONFIRMED", nil, nil, now, now))

	out, total, err := repo.List(context.Background(), ReservationFilter{AmenityID: 3, Status: model.StatusConfirmed, Page: 2, Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, 12, total)
	require.Len(t, out, 1)
	assert.Equal(t, uint64(7), out[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusReloads(t *testing.T) {
	repo, mock := newMock(t)
	now := time.Now().UTC()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE amenity_reservations SET status = ? WHERE id = ?`)).
		WithArgs("CANCELLED", uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`FROM amenity_reservations WHERE id = \?`).
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows(resCols).
			AddRow(7, 3, 8, now, "10:00:00", "11:00:00", "CANCELLED", nil, nil, now, now))

	res, err := repo.UpdateStatus(context.Background(), 7, model.StatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, res.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}
