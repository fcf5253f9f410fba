package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/community-amenities/internal/model"
)

var amenityCols = []string{"id", "name", "description", "kind", "location", "capacity", "status", "opens_at", "closes_at",
	"requires_reservation", "usage_fee_cents", "rules", "image_url", "created_at", "updated_at"}

func newAmenityMock(t *testing.T) (*AmenityRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewAmenityRepo(db), mock
}

func TestAmenityGetByIDScansNullableColumns(t *testing.T) {
	repo, mock := newAmenityMock(t)
	now := time.Now().UTC()
	mock.ExpectQuery(`FROM amenities WHERE id = \?`).WithArgs(uint64(1)).
		WillReturnRows(sqlmock.NewRows(amenityCols).
			AddRow(1, "Pool", nil, "POOL", "Block B", 20, "AVAILABLE", "08:00:00", []byte("20:00:00"), true, 500, nil, nil, now, now))

	a, err := repo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Pool", a.Name)
	assert.Nil(t, a.Description)
	require.NotNil(t, a.Location)
	assert.Equal(t, "Block B", *a.Location)
	require.NotNil(t, a.OpensAt)
	assert.Equal(t, model.MustClock("08:00"), *a.OpensAt)
	require.NotNil(t, a.ClosesAt)
	assert.Equal(t, model.MustClock("20:00"), *a.ClosesAt)
	assert.True(t, a.RequiresReservation)
}

func TestAmenityGetByIDNotFound(t *testing.T) {
	repo, mock := newAmenityMock(t)
	mock.ExpectQuery(`FROM amenities WHERE id = \?`).WillReturnRows(sqlmock.NewRows(amenityCols))
	_, err := repo.GetByID(context.Background(), 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAmenityListDefaultsPaging(t *testing.T) {
	repo, mock := newAmenityMock(t)
	yes := true
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM amenities WHERE status = ? AND requires_reservation = ?`)).
		WithArgs("AVAILABLE", true).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))
	mock.ExpectQuery(`ORDER BY name ASC, id ASC LIMIT \? OFFSET \?`).
		WithArgs("AVAILABLE", true, 10, 0).
		WillReturnRows(sqlmock.NewRows(amenityCols))

	out, total, err := repo.List(context.Background(), AmenityFilter{Status: model.AmenityAvailable, RequiresReservation: &yes})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, out)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAmenityDeleteRefusesActiveReservations(t *testing.T) {
	repo, mock := newAmenityMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM amenities WHERE id = \? FOR UPDATE`).WithArgs(uint64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(4))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM amenity_reservations`).WithArgs(uint64(4), "PENDING", "CONFIRMED").
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(2))
	mock.ExpectRollback()

	assert.ErrorIs(t, repo.Delete(context.Background(), 4), ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAmenityDelete(t *testing.T) {
	repo, mock := newAmenityMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(4))
	mock.ExpectQuery(`SELECT COUNT\(\*\)`).WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM amenities WHERE id = ?`)).WithArgs(uint64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	assert.NoError(t, repo.Delete(context.Background(), 4))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNormalizePage(t *testing.T) {
	p, l := normalizePage(0, 0)
	assert.Equal(t, 1, p)
	assert.Equal(t, 10, l)
	_, l = normalizePage(3, 1000)
	assert.Equal(t, 100, l)
}
