// internal/store/audit.go
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// Audit event types.
const (
	AuditApplicationCreated  = "application_created"
	AuditApplicationUpdated  = "application_updated"
	AuditApplicationNudged   = "application_nudged"
	AuditApplicationReviewed = "application_reviewed"
)

type AuditEntry struct {
	EventType  string
	ResourceID string
	Details    map[string]interface{}
	CreatedAt  time.Time
}

// AuditLog records lifecycle events. Callers treat failures as non-fatal.
type AuditLog interface {
	Record(ctx context.Context, entry AuditEntry) error
}

type PostgresAuditLog struct {
	db *sql.DB
}

func NewPostgresAuditLog(db *sql.DB) *PostgresAuditLog {
	return &PostgresAuditLog{db: db}
}

func (l *PostgresAuditLog) Record(ctx context.Context, entry AuditEntry) error {
	details, err := json.Marshal(entry.Details)
	if err != nil {
		details = []byte("{}")
	}

	_, err = l.db.ExecContext(ctx, `
		INSERT INTO audit_log (event_type, resource_type, resource_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		entry.EventType,
		"application",
		entry.ResourceID,
		details,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}

// MemoryAuditLog keeps entries in process.
type MemoryAuditLog struct {
	mu      sync.Mutex
	entries []AuditEntry
}

func NewMemoryAuditLog() *MemoryAuditLog {
	return &MemoryAuditLog{}
}

func (l *MemoryAuditLog) Record(_ context.Context, entry AuditEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)
	return nil
}

func (l *MemoryAuditLog) Entries() []AuditEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]AuditEntry(nil), l.entries...)
}
