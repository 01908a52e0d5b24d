// internal/lifecycle/outcome.go
package lifecycle

import (
	"time"

	"application-workers/internal/models"
)

// Kind tags the result of a lifecycle operation.
type Kind int

const (
	KindSuccess Kind = iota
	KindNotFound
	KindUnauthorized
	KindTooSoon
	KindNotPending
	KindAlreadyReviewed
	KindDuplicate
)

func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindNotFound:
		return "notFound"
	case KindUnauthorized:
		return "unauthorized"
	case KindTooSoon:
		return "tooSoon"
	case KindNotPending:
		return "notPending"
	case KindAlreadyReviewed:
		return "alreadyReviewed"
	case KindDuplicate:
		return "duplicate"
	default:
		return "unknown"
	}
}

// Outcome is returned by every engine operation. Application holds the
// record after a successful write, the blocking application for
// KindDuplicate, and is nil otherwise. Nudge is set only by a successful
// nudge. At is the clock reading the operation was evaluated at.
type Outcome struct {
	Kind        Kind
	Application *models.Application
	Nudge       *NudgeResult
	At          time.Time
}

func (o Outcome) OK() bool {
	return o.Kind == KindSuccess
}

// NudgeResult carries the updated nudge counters. LastNudgeAt is an ISO
// 8601 UTC instant with millisecond precision.
type NudgeResult struct {
	NudgeCount  int    `json:"nudgeCount"`
	LastNudgeAt string `json:"lastNudgeAt"`
}

// TimestampLayout formats instants returned to callers.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"
