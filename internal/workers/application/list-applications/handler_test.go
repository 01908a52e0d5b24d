// internal/workers/application/list-applications/handler_test.go
package listapplications

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	apperrors "application-workers/internal/common/errors"
	"application-workers/internal/common/logger"
	"application-workers/internal/lifecycle"
	"application-workers/internal/models"
	"application-workers/internal/store"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

var base = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

// seedStore creates n applications; app-0 is the oldest. Odd ones belong
// to user-2 and every third one is accepted.
func seedStore(t *testing.T, n int) *store.MemoryStore {
	t.Helper()
	st := store.NewMemoryStore()
	for i := 0; i < n; i++ {
		userID, status := "user-1", models.StatusPending
		if i%2 == 1 {
			userID = "user-2"
		}
		if i%3 == 0 {
			status = models.StatusAccepted
		}
		require.NoError(t, st.Create(context.Background(), &models.Application{
			ID:        fmt.Sprintf("app-%d", i),
			UserID:    userID,
			Status:    status,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}
	return st
}

func ids(apps []*models.Application) []string {
	out := make([]string, len(apps))
	for i, app := range apps {
		out[i] = app.ID
	}
	return out
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_DefaultPage(t *testing.T) {
	handler := NewHandler(LoadConfig(), seedStore(t, 30), logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{})

	require.NoError(t, err)
	assert.Len(t, output.Applications, DefaultPageSize)
	assert.Equal(t, "app-29", output.Applications[0].ID)
	assert.Equal(t, "app-5", output.Next)
	assert.Equal(t, lifecycle.MsgApplicationsListed, output.Message)
	assert.Equal(t, http.StatusOK, output.HTTPStatus)
	assert.Equal(t, DefaultPageSize, output.RowCount)
}

func TestHandler_Execute_FollowsCursor(t *testing.T) {
	handler := NewHandler(LoadConfig(), seedStore(t, 5), logger.NewTestLogger(t))

	first, err := handler.Execute(context.Background(), &Input{Size: "2"})
	require.NoError(t, err)
	assert.Equal(t, []string{"app-4", "app-3"}, ids(first.Applications))
	assert.Equal(t, "app-3", first.Next)

	second, err := handler.Execute(context.Background(), &Input{Size: "2", Next: first.Next})
	require.NoError(t, err)
	assert.Equal(t, []string{"app-2", "app-1"}, ids(second.Applications))

	last, err := handler.Execute(context.Background(), &Input{Size: "2", Next: second.Next})
	require.NoError(t, err)
	assert.Equal(t, []string{"app-0"}, ids(last.Applications))
	assert.Empty(t, last.Next)
}

func TestHandler_Execute_Filters(t *testing.T) {
	handler := NewHandler(LoadConfig(), seedStore(t, 6), logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{UserID: "user-1", Status: models.StatusPending})

	require.NoError(t, err)
	assert.Equal(t, []string{"app-4", "app-2"}, ids(output.Applications))
	assert.Empty(t, output.Next)
}

func TestHandler_Execute_EmptyResult(t *testing.T) {
	handler := NewHandler(LoadConfig(), store.NewMemoryStore(), logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{UserID: "nobody"})

	require.NoError(t, err)
	assert.NotNil(t, output.Applications)
	assert.Empty(t, output.Applications)
}

func TestHandler_Execute_CapsPageSize(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM applications ORDER BY created_at DESC, id DESC LIMIT \$1`).
		WithArgs(MaxPageSize + 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	handler := NewHandler(LoadConfig(), store.NewPostgresStore(db), logger.NewTestLogger(t))
	_, err = handler.Execute(context.Background(), &Input{Size: "500"})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM applications`).
		WillReturnError(errors.New("connection refused"))

	handler := NewHandler(LoadConfig(), store.NewPostgresStore(db), logger.NewTestLogger(t))
	output, err := handler.Execute(context.Background(), &Input{})

	assert.Nil(t, output)
	require.Error(t, err)
	stdErr := apperrors.Normalize(err)
	assert.Equal(t, apperrors.ErrCodeQueryExecutionFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)
}

func TestHandler_Execute_UnknownCursor(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectQuery(`SELECT created_at FROM applications WHERE id = \$1`).
		WithArgs("app-gone").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}))

	stores := map[string]store.Store{
		"memory":   seedStore(t, 3),
		"postgres": store.NewPostgresStore(db),
	}
	for name, st := range stores {
		t.Run(name, func(t *testing.T) {
			handler := NewHandler(LoadConfig(), st, logger.NewTestLogger(t))

			output, err := handler.Execute(context.Background(), &Input{Next: "app-gone"})

			assert.Nil(t, output)
			require.Error(t, err)
			stdErr := apperrors.Normalize(err)
			assert.Equal(t, apperrors.ErrCodeInvalidFilterFormat, stdErr.Code)
			assert.Equal(t, http.StatusBadRequest, stdErr.HTTPStatus())
			assert.Contains(t, stdErr.Details, "app-gone")
		})
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_InvalidFilters(t *testing.T) {
	tests := []struct {
		name  string
		input *Input
	}{
		{"unknown status", &Input{Status: "archived"}},
		{"non numeric size", &Input{Size: "ten"}},
		{"zero size", &Input{Size: "0"}},
		{"negative size", &Input{Size: "-3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHandler(LoadConfig(), store.NewMemoryStore(), logger.NewTestLogger(t))

			output, err := handler.Execute(context.Background(), tt.input)

			assert.Nil(t, output)
			require.Error(t, err)
			stdErr := apperrors.Normalize(err)
			assert.Equal(t, apperrors.ErrCodeInvalidFilterFormat, stdErr.Code)
			assert.Equal(t, http.StatusBadRequest, stdErr.HTTPStatus())
		})
	}
}
