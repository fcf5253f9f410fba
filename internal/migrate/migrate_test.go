package migrate

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilesAreOrdered(t *testing.T) {
	files, err := Files()
	require.NoError(t, err)
	assert.Equal(t, []string{"0001_users.sql", "0002_amenities.sql", "0003_amenity_reservations.sql"}, files)
}

func TestUpSkipsApplied(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	count := regexp.QuoteMeta(`SELECT COUNT(*) FROM schema_migrations WHERE version = ?`)
	record := regexp.QuoteMeta(`INSERT INTO schema_migrations (version) VALUES (?)`)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(count).WithArgs("0001_users.sql").WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))
	mock.ExpectQuery(count).WithArgs("0002_amenities.sql").WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS amenities").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(record).WithArgs("0002_amenities.sql").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(count).WithArgs("0003_amenity_reservations.sql").WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS amenity_reservations").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(record).WithArgs("0003_amenity_reservations.sql").WillReturnResult(sqlmock.NewResult(1, 1))

	applied, err := Up(context.Background(), db)
	require.NoError(t, err)
	assert.Equal(t, []string{"0002_amenities.sql", "0003_amenity_reservations.sql"}, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpStopsOnFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT COUNT").WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS users").WillReturnError(errors.New("boom"))

	applied, err := Up(context.Background(), db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "apply 0001_users.sql")
	assert.Empty(t, applied)
}
