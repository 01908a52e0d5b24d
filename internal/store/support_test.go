package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"application-workers/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresAuditLog_Record(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	at := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	mock.ExpectExec(`INSERT INTO audit_log`).
		WithArgs(AuditApplicationUpdated, "application", "app-1", sqlmock.AnyArg(), at).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = NewPostgresAuditLog(db).Record(context.Background(), AuditEntry{
		EventType:  AuditApplicationUpdated,
		ResourceID: "app-1",
		Details:    map[string]interface{}{"paths": []string{"location.city"}},
		CreatedAt:  at,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresAuditLog_RecordError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO audit_log`).WillReturnError(errors.New("disk full"))

	err = NewPostgresAuditLog(db).Record(context.Background(), AuditEntry{EventType: AuditApplicationCreated})
	assert.ErrorContains(t, err, "disk full")
}

func TestMemoryAuditLog(t *testing.T) {
	l := NewMemoryAuditLog()
	require.NoError(t, l.Record(context.Background(), AuditEntry{EventType: AuditApplicationNudged, ResourceID: "a"}))

	entries := l.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "a", entries[0].ResourceID)
}

func TestPostgresUserDirectory_GetUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT id, email, first_name FROM users WHERE id = \$1`).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "first_name"}).AddRow("user-1", "ada@example.com", "Ada"))
	mock.ExpectQuery(`SELECT id, email, first_name FROM users`).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "first_name"}))

	dir := NewPostgresUserDirectory(db)

	user, err := dir.GetUser(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.User{ID: "user-1", Email: "ada@example.com", FirstName: "Ada"}, *user)

	_, err = dir.GetUser(context.Background(), "ghost")
	assert.True(t, errors.Is(err, ErrUserNotFound))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemoryUserDirectory(t *testing.T) {
	dir := NewMemoryUserDirectory(models.User{ID: "u1", Email: "u1@example.com"})

	u, err := dir.GetUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1@example.com", u.Email)

	_, err = dir.GetUser(context.Background(), "u2")
	assert.True(t, errors.Is(err, ErrUserNotFound))
}

func TestEnsureSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	for range schemaStatements {
		mock.ExpectExec(`CREATE`).WillReturnResult(sqlmock.NewResult(0, 0))
	}

	require.NoError(t, EnsureSchema(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSchema_StopsOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS applications`).WillReturnError(errors.New("permission denied"))

	err = EnsureSchema(context.Background(), db)
	assert.ErrorContains(t, err, "schema statement 0")
	assert.NoError(t, mock.ExpectationsWereMet())
}
