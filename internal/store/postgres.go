// internal/store/postgres.go
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"application-workers/internal/models"
)

const applicationColumns = `id, user_id, biodata, location, professional, intro, social_link,
	found_from, role, image_url, status, score, created_at, last_updated_at,
	feedback, reviewer_name, nudge_count, last_nudge_at`

// topLevelColumns maps flat field paths to their column.
var topLevelColumns = map[string]string{
	models.FieldStatus:        "status",
	models.FieldScore:         "score",
	models.FieldLastUpdatedAt: "last_updated_at",
	models.FieldFeedback:      "feedback",
	models.FieldReviewerName:  "reviewer_name",
	models.FieldNudgeCount:    "nudge_count",
	models.FieldLastNudgeAt:   "last_nudge_at",
	models.FieldImageURL:      "image_url",
	models.FieldFoundFrom:     "found_from",
	models.FieldRole:          "role",
}

// namespaceColumns maps a dotted namespace to its JSONB column.
var namespaceColumns = map[string]string{
	"biodata":      "biodata",
	"location":     "location",
	"professional": "professional",
	"intro":        "intro",
	"socialLink":   "social_link",
}

// PostgresStore keeps applications in the applications table with the
// nested namespaces as JSONB columns.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// execer and queryer are satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

func (s *PostgresStore) Create(ctx context.Context, app *models.Application) error {
	return insertApplication(ctx, s.db, app)
}

// CreateUnique serializes creates per user with a transaction scoped
// advisory lock, so the duplicate check and the insert see the same rows.
func (s *PostgresStore) CreateUnique(ctx context.Context, app *models.Application, blocks BlockFunc) (*models.Application, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, app.UserID); err != nil {
		return nil, fmt.Errorf("lock user %s: %w", app.UserID, err)
	}

	if blocks != nil {
		query, args := buildListQuery(ListFilter{UserID: app.UserID}, time.Time{})
		existing, err := queryApplications(ctx, tx, query, args...)
		if err != nil {
			return nil, err
		}
		if blocking := blocks(existing); blocking != nil {
			return blocking, nil
		}
	}

	if err := insertApplication(ctx, tx, app); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit application %s: %w", app.ID, err)
	}
	return nil, nil
}

func insertApplication(ctx context.Context, db execer, app *models.Application) error {
	biodata, location, professional, intro, socialLink, err := encodeNamespaces(app)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO applications (`+applicationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		app.ID,
		app.UserID,
		biodata,
		location,
		professional,
		intro,
		socialLink,
		app.FoundFrom,
		app.Role,
		app.ImageURL,
		app.Status,
		app.Score,
		app.CreatedAt,
		nullTime(app.LastUpdatedAt),
		nullString(app.Feedback),
		nullString(app.ReviewerName),
		app.NudgeCount,
		nullTime(app.LastNudgeAt),
	)
	if err != nil {
		return fmt.Errorf("insert application: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetByID(ctx context.Context, id string) (*models.Application, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+applicationColumns+` FROM applications WHERE id = $1`, id)
	app, err := scanApplication(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select application %s: %w", id, err)
	}
	return app, nil
}

func (s *PostgresStore) ListByUser(ctx context.Context, userID string) ([]*models.Application, error) {
	return s.List(ctx, ListFilter{UserID: userID})
}

func (s *PostgresStore) List(ctx context.Context, filter ListFilter) ([]*models.Application, error) {
	var cursorAt time.Time
	if filter.After != "" {
		err := s.db.QueryRowContext(ctx, `SELECT created_at FROM applications WHERE id = $1`, filter.After).Scan(&cursorAt)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrCursorNotFound, filter.After)
		}
		if err != nil {
			return nil, fmt.Errorf("select list cursor: %w", err)
		}
	}

	query, args := buildListQuery(filter, cursorAt)
	return queryApplications(ctx, s.db, query, args...)
}

func queryApplications(ctx context.Context, db queryer, query string, args ...interface{}) ([]*models.Application, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	var apps []*models.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("scan application: %w", err)
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate applications: %w", err)
	}
	return apps, nil
}

// buildListQuery renders filter as a keyset query. cursorAt is the
// creation time of filter.After and is ignored when After is empty.
func buildListQuery(filter ListFilter, cursorAt time.Time) (string, []interface{}) {
	var (
		conditions []string
		args       []interface{}
	)
	if filter.UserID != "" {
		args = append(args, filter.UserID)
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.After != "" {
		args = append(args, cursorAt, filter.After)
		conditions = append(conditions, fmt.Sprintf("(created_at, id) < ($%d, $%d)", len(args)-1, len(args)))
	}

	query := `SELECT ` + applicationColumns + ` FROM applications`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	return query, args
}

// Mutate locks the row with SELECT ... FOR UPDATE for the duration of the
// callback and the write.
func (s *PostgresStore) Mutate(ctx context.Context, id string, fn MutateFunc) (*models.Application, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `SELECT `+applicationColumns+` FROM applications WHERE id = $1 FOR UPDATE`, id)
	current, err := scanApplication(row)
	if errors.Is(err, sql.ErrNoRows) {
		fn(nil)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select application %s for update: %w", id, err)
	}

	changes := fn(current.Clone())
	if len(changes) == 0 {
		return current, nil
	}

	next := current.Clone()
	if err := next.Apply(changes); err != nil {
		return nil, fmt.Errorf("apply changes to %s: %w", id, err)
	}

	query, args, err := buildUpdate(id, changes)
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("update application %s: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit application %s: %w", id, err)
	}
	return next, nil
}

// buildUpdate renders changes as a single UPDATE. Flat columns come first
// in path order, then one JSONB merge per namespace in namespace order.
func buildUpdate(id string, changes models.Changes) (string, []interface{}, error) {
	var (
		sets       []string
		args       []interface{}
		namespaces = make(map[string]map[string]interface{})
	)

	for _, path := range changes.Paths() {
		value := changes[path]
		if col, ok := topLevelColumns[path]; ok {
			args = append(args, columnValue(value))
			sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
			continue
		}

		ns, field, found := strings.Cut(path, ".")
		if _, ok := namespaceColumns[ns]; !found || !ok {
			return "", nil, fmt.Errorf("unknown field path %q", path)
		}
		if namespaces[ns] == nil {
			namespaces[ns] = make(map[string]interface{})
		}
		namespaces[ns][field] = value
	}

	names := make([]string, 0, len(namespaces))
	for ns := range namespaces {
		names = append(names, ns)
	}
	sort.Strings(names)

	for _, ns := range names {
		payload, err := json.Marshal(namespaces[ns])
		if err != nil {
			return "", nil, fmt.Errorf("encode %s changes: %w", ns, err)
		}
		col := namespaceColumns[ns]
		args = append(args, string(payload))
		sets = append(sets, fmt.Sprintf("%s = COALESCE(%s, '{}'::jsonb) || $%d::jsonb", col, col, len(args)))
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE applications SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))
	return query, args, nil
}

func columnValue(v interface{}) interface{} {
	if s, ok := v.(*string); ok {
		return nullString(s)
	}
	return v
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanApplication(row rowScanner) (*models.Application, error) {
	var (
		app                                    models.Application
		biodata, location, professional, intro []byte
		socialLink                             []byte
		lastUpdatedAt, lastNudgeAt             sql.NullTime
		feedback, reviewerName, role           sql.NullString
	)

	err := row.Scan(
		&app.ID,
		&app.UserID,
		&biodata,
		&location,
		&professional,
		&intro,
		&socialLink,
		&app.FoundFrom,
		&role,
		&app.ImageURL,
		&app.Status,
		&app.Score,
		&app.CreatedAt,
		&lastUpdatedAt,
		&feedback,
		&reviewerName,
		&app.NudgeCount,
		&lastNudgeAt,
	)
	if err != nil {
		return nil, err
	}

	if err := decodeJSON(biodata, &app.Biodata); err != nil {
		return nil, fmt.Errorf("decode biodata: %w", err)
	}
	if err := decodeJSON(location, &app.Location); err != nil {
		return nil, fmt.Errorf("decode location: %w", err)
	}
	if err := decodeJSON(professional, &app.Professional); err != nil {
		return nil, fmt.Errorf("decode professional: %w", err)
	}
	if err := decodeJSON(intro, &app.Intro); err != nil {
		return nil, fmt.Errorf("decode intro: %w", err)
	}
	if len(socialLink) > 0 && string(socialLink) != "null" {
		app.SocialLink = &models.SocialLink{}
		if err := json.Unmarshal(socialLink, app.SocialLink); err != nil {
			return nil, fmt.Errorf("decode social link: %w", err)
		}
	}

	app.Role = role.String
	app.CreatedAt = app.CreatedAt.UTC()
	if lastUpdatedAt.Valid {
		t := lastUpdatedAt.Time.UTC()
		app.LastUpdatedAt = &t
	}
	if lastNudgeAt.Valid {
		t := lastNudgeAt.Time.UTC()
		app.LastNudgeAt = &t
	}
	if feedback.Valid {
		app.Feedback = &feedback.String
	}
	if reviewerName.Valid {
		app.ReviewerName = &reviewerName.String
	}
	return &app, nil
}

func decodeJSON(data []byte, v interface{}) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}

func encodeNamespaces(app *models.Application) (biodata, location, professional, intro string, socialLink interface{}, err error) {
	parts := []struct {
		dst *string
		v   interface{}
	}{
		{&biodata, app.Biodata},
		{&location, app.Location},
		{&professional, app.Professional},
		{&intro, app.Intro},
	}
	for _, p := range parts {
		b, mErr := json.Marshal(p.v)
		if mErr != nil {
			return "", "", "", "", nil, fmt.Errorf("encode application: %w", mErr)
		}
		*p.dst = string(b)
	}

	if app.SocialLink != nil {
		b, mErr := json.Marshal(app.SocialLink)
		if mErr != nil {
			return "", "", "", "", nil, fmt.Errorf("encode social link: %w", mErr)
		}
		socialLink = string(b)
	}
	return biodata, location, professional, intro, socialLink, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
