package main

import (
	"bytes"
	"context"
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/community-amenities/internal/config"
)

func withMockDB(t *testing.T) sqlmock.Sqlmock {
	t.Helper()
	t.Setenv("DB_USER", "u")
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_PORT", "3306")
	t.Setenv("DB_NAME", "community")
	t.Setenv("BCRYPT_COST", "4")

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	prev := openDB
	openDB = func(config.Config) (*sql.DB, error) { return db, nil }
	t.Cleanup(func() { openDB = prev })
	return mock
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestUserCreateRejectsBadInputBeforeConnecting(t *testing.T) {
	prev := openDB
	openDB = func(config.Config) (*sql.DB, error) {
		t.Fatal("database must not be opened")
		return nil, nil
	}
	t.Cleanup(func() { openDB = prev })

	_, err := run(t, "user", "create", "--email", "root@example.com", "--password", "longenough", "--role", "JANITOR")
	assert.ErrorContains(t, err, "unknown role")

	_, err = run(t, "user", "create", "--email", "root@example.com", "--password", "short")
	assert.ErrorContains(t, err, "at least 8")

	_, err = run(t, "user", "create", "--email", "nobody", "--password", "longenough")
	assert.ErrorContains(t, err, "invalid email")

	_, err = run(t, "user", "create", "--password", "longenough")
	assert.Error(t, err)
}

func TestUserCreateInsertsSuperAdmin(t *testing.T) {
	mock := withMockDB(t)
	mock.ExpectExec(`INSERT INTO users`).
		WithArgs("root@example.com", sqlmock.AnyArg(), "", "", nil, "SUPERADMIN").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectClose()

	out, err := run(t, "user", "create", "--email", "Root@Example.com", "--password", "longenough")
	require.NoError(t, err)
	assert.Contains(t, out, "created user 1 (root@example.com, SUPERADMIN)")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserCreatePromotesExisting(t *testing.T) {
	mock := withMockDB(t)
	mock.ExpectExec(`INSERT INTO users`).WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET role=? WHERE email=?`)).
		WithArgs("ADMINISTRATOR", "ana@example.com").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectClose()

	out, err := run(t, "user", "create", "--email", "ana@example.com", "--password", "longenough", "--role", "administrator")
	require.NoError(t, err)
	assert.Contains(t, out, "updated ana@example.com to role ADMINISTRATOR")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateList(t *testing.T) {
	out, err := run(t, "migrate", "list")
	require.NoError(t, err)
	assert.Equal(t, "0001_users.sql\n0002_amenities.sql\n0003_amenity_reservations.sql\n", out)
}
