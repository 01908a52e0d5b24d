package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"application-workers/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

var columns = []string{
	"id", "user_id", "biodata", "location", "professional", "intro", "social_link",
	"found_from", "role", "image_url", "status", "score", "created_at", "last_updated_at",
	"feedback", "reviewer_name", "nudge_count", "last_nudge_at",
}

func applicationRows(app *models.Application) *sqlmock.Rows {
	var lastNudge driver.Value
	if app.LastNudgeAt != nil {
		lastNudge = *app.LastNudgeAt
	}
	return sqlmock.NewRows(columns).AddRow(
		app.ID,
		app.UserID,
		`{"firstName":"Ada","lastName":"Lovelace"}`,
		`{"city":"London","state":"LDN","country":"UK"}`,
		`{"institution":"Analytical Society","skills":"maths"}`,
		`{"introduction":"hello","funFact":"","forFun":"","whyRds":"","numberOfHours":10}`,
		nil,
		app.FoundFrom,
		app.Role,
		app.ImageURL,
		app.Status,
		app.Score,
		app.CreatedAt,
		nil,
		nil,
		nil,
		app.NudgeCount,
		lastNudge,
	)
}

func newMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresStore(db), mock
}

// ==========================
// Core Functionality Tests
// ==========================

func TestPostgresStore_GetByID(t *testing.T) {
	s, mock := newMockStore(t)
	app := newTestApplication("app-1", "user-1", baseTime)

	mock.ExpectQuery(`FROM applications WHERE id = \$1`).
		WithArgs("app-1").
		WillReturnRows(applicationRows(app))

	got, err := s.GetByID(context.Background(), "app-1")
	require.NoError(t, err)
	assert.Equal(t, app, got)
	assert.Nil(t, got.SocialLink)
	assert.Nil(t, got.LastUpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetByID_NotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`FROM applications WHERE id = \$1`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(columns))

	_, err := s.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Create(t *testing.T) {
	s, mock := newMockStore(t)
	app := newTestApplication("app-1", "user-1", baseTime)

	mock.ExpectExec(`INSERT INTO applications`).
		WithArgs(
			"app-1",
			"user-1",
			`{"firstName":"Ada","lastName":"Lovelace"}`,
			`{"city":"London","state":"LDN","country":"UK"}`,
			`{"institution":"Analytical Society","skills":"maths"}`,
			sqlmock.AnyArg(), // intro
			nil,              // social link
			"twitter",
			models.RoleDeveloper,
			"https://example.com/ada.png",
			models.StatusPending,
			50,
			baseTime,
			nil,
			nil,
			nil,
			0,
			nil,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, s.Create(context.Background(), app))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Create_Error(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(`INSERT INTO applications`).
		WillReturnError(errors.New("duplicate key"))

	err := s.Create(context.Background(), newTestApplication("app-1", "user-1", baseTime))
	assert.ErrorContains(t, err, "insert application")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_MutateFlatColumns(t *testing.T) {
	s, mock := newMockStore(t)
	app := newTestApplication("app-1", "user-1", baseTime)
	nudgedAt := baseTime.Add(25 * time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM applications WHERE id = \$1 FOR UPDATE`).
		WithArgs("app-1").
		WillReturnRows(applicationRows(app))
	mock.ExpectExec(regexp.QuoteMeta(
		`UPDATE applications SET last_nudge_at = $1, nudge_count = $2, score = $3 WHERE id = $4`)).
		WithArgs(nudgedAt, 1, 60, "app-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	got, err := s.Mutate(context.Background(), "app-1", func(current *models.Application) models.Changes {
		return models.Changes{
			models.FieldNudgeCount:  current.NudgeCount + 1,
			models.FieldLastNudgeAt: nudgedAt,
			models.FieldScore:       current.Score + 10,
		}
	})

	require.NoError(t, err)
	assert.Equal(t, 1, got.NudgeCount)
	assert.Equal(t, 60, got.Score)
	assert.Equal(t, nudgedAt, *got.LastNudgeAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_MutateMergesNamespaces(t *testing.T) {
	s, mock := newMockStore(t)
	app := newTestApplication("app-1", "user-1", baseTime)
	editedAt := baseTime.Add(25 * time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).
		WithArgs("app-1").
		WillReturnRows(applicationRows(app))
	mock.ExpectExec(regexp.QuoteMeta(
		`UPDATE applications SET last_updated_at = $1, intro = COALESCE(intro, '{}'::jsonb) || $2::jsonb, `+
			`social_link = COALESCE(social_link, '{}'::jsonb) || $3::jsonb WHERE id = $4`)).
		WithArgs(editedAt, `{"introduction":"X"}`, `{"github":"https://github.com/ada"}`, "app-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	got, err := s.Mutate(context.Background(), "app-1", func(*models.Application) models.Changes {
		return models.Changes{
			models.FieldIntroduction:  "X",
			models.FieldGithub:        "https://github.com/ada",
			models.FieldLastUpdatedAt: editedAt,
		}
	})

	require.NoError(t, err)
	assert.Equal(t, "X", got.Intro.Introduction)
	assert.Equal(t, 10, got.Intro.NumberOfHours)
	assert.Equal(t, "https://github.com/ada", got.SocialLink.Github)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_MutateOptionalString(t *testing.T) {
	s, mock := newMockStore(t)
	app := newTestApplication("app-1", "user-1", baseTime)
	feedback := "Please expand your introduction"

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).
		WithArgs("app-1").
		WillReturnRows(applicationRows(app))
	mock.ExpectExec(regexp.QuoteMeta(
		`UPDATE applications SET feedback = $1, reviewer_name = $2, status = $3 WHERE id = $4`)).
		WithArgs(feedback, "Grace", models.StatusChangesRequested, "app-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	got, err := s.Mutate(context.Background(), "app-1", func(*models.Application) models.Changes {
		return models.Changes{
			models.FieldStatus:       models.StatusChangesRequested,
			models.FieldFeedback:     &feedback,
			models.FieldReviewerName: "Grace",
		}
	})

	require.NoError(t, err)
	assert.Equal(t, feedback, *got.Feedback)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_MutateNotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(columns))
	mock.ExpectRollback()

	var seen *models.Application
	got, err := s.Mutate(context.Background(), "missing", func(current *models.Application) models.Changes {
		seen = current
		return nil
	})

	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Nil(t, seen)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_MutateNoChangesRollsBack(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).
		WithArgs("app-1").
		WillReturnRows(applicationRows(newTestApplication("app-1", "user-1", baseTime)))
	mock.ExpectRollback()

	got, err := s.Mutate(context.Background(), "app-1", func(*models.Application) models.Changes {
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, "app-1", got.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_MutateUpdateFails(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).
		WithArgs("app-1").
		WillReturnRows(applicationRows(newTestApplication("app-1", "user-1", baseTime)))
	mock.ExpectExec(`UPDATE applications SET`).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	_, err := s.Mutate(context.Background(), "app-1", func(*models.Application) models.Changes {
		return models.Changes{models.FieldStatus: models.StatusAccepted}
	})

	assert.ErrorContains(t, err, "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_MutateBeginFails(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectBegin().WillReturnError(errors.New("too many connections"))

	called := false
	_, err := s.Mutate(context.Background(), "app-1", func(*models.Application) models.Changes {
		called = true
		return nil
	})

	assert.ErrorContains(t, err, "begin transaction")
	assert.False(t, called)
}

func TestPostgresStore_List(t *testing.T) {
	s, mock := newMockStore(t)
	newer := newTestApplication("b", "user-1", baseTime.Add(time.Hour))
	cursorAt := baseTime.Add(2 * time.Hour)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT created_at FROM applications WHERE id = $1`)).
		WithArgs("c").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(cursorAt))
	mock.ExpectQuery(regexp.QuoteMeta(
		`WHERE user_id = $1 AND (created_at, id) < ($2, $3) ORDER BY created_at DESC, id DESC LIMIT $4`)).
		WithArgs("user-1", cursorAt, "c", 2).
		WillReturnRows(applicationRows(newer))

	got, err := s.List(context.Background(), ListFilter{UserID: "user-1", After: "c", Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, ids(got))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_List_UnknownCursor(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT created_at FROM applications WHERE id = $1`)).
		WithArgs("gone").
		WillReturnError(sql.ErrNoRows)

	got, err := s.List(context.Background(), ListFilter{After: "gone"})
	assert.ErrorIs(t, err, ErrCursorNotFound)
	assert.Nil(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBuildListQuery_NoFilter(t *testing.T) {
	query, args := buildListQuery(ListFilter{}, time.Time{})
	assert.NotContains(t, query, "WHERE")
	assert.NotContains(t, query, "LIMIT")
	assert.Empty(t, args)
}

func TestPostgresStore_CreateUnique(t *testing.T) {
	s, mock := newMockStore(t)
	app := newTestApplication("app-2", "user-1", baseTime.Add(time.Hour))

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`SELECT pg_advisory_xact_lock(hashtext($1))`)).
		WithArgs("user-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`FROM applications WHERE user_id = \$1 ORDER BY`).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows(columns))
	mock.ExpectExec(`INSERT INTO applications`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	var seen []*models.Application
	blocking, err := s.CreateUnique(context.Background(), app, func(existing []*models.Application) *models.Application {
		seen = existing
		return nil
	})
	require.NoError(t, err)
	assert.Nil(t, blocking)
	assert.Empty(t, seen)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CreateUnique_Blocked(t *testing.T) {
	s, mock := newMockStore(t)
	existing := newTestApplication("app-1", "user-1", baseTime)
	app := newTestApplication("app-2", "user-1", baseTime.Add(time.Hour))

	mock.ExpectBegin()
	mock.ExpectExec(`pg_advisory_xact_lock`).
		WithArgs("user-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`FROM applications WHERE user_id = \$1 ORDER BY`).
		WithArgs("user-1").
		WillReturnRows(applicationRows(existing))
	mock.ExpectRollback()

	blocking, err := s.CreateUnique(context.Background(), app, func(apps []*models.Application) *models.Application {
		return apps[0]
	})
	require.NoError(t, err)
	require.NotNil(t, blocking)
	assert.Equal(t, "app-1", blocking.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CreateUnique_InsertFailsRollsBack(t *testing.T) {
	s, mock := newMockStore(t)
	app := newTestApplication("app-2", "user-1", baseTime)

	mock.ExpectBegin()
	mock.ExpectExec(`pg_advisory_xact_lock`).
		WithArgs("user-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`INSERT INTO applications`).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	_, err := s.CreateUnique(context.Background(), app, nil)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBuildUpdate_UnknownPath(t *testing.T) {
	_, _, err := buildUpdate("app-1", models.Changes{"secret.field": "x"})
	assert.ErrorContains(t, err, "unknown field path")
}
