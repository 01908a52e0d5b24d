// internal/lifecycle/guard.go
package lifecycle

import (
	"time"

	"application-workers/internal/models"
)

// Guard checks one precondition and returns KindSuccess when it holds.
type Guard func(app *models.Application) Kind

// Evaluate runs guards in order against app and returns the first failing
// kind. A nil app is always KindNotFound.
func Evaluate(app *models.Application, guards ...Guard) Kind {
	if app == nil {
		return KindNotFound
	}
	for _, g := range guards {
		if k := g(app); k != KindSuccess {
			return k
		}
	}
	return KindSuccess
}

func OwnedBy(userID string) Guard {
	return func(app *models.Application) Kind {
		if app.UserID != userID {
			return KindUnauthorized
		}
		return KindSuccess
	}
}

// StillPending fails with kind when the application has left pending.
func StillPending(kind Kind) Guard {
	return func(app *models.Application) Kind {
		if models.IsReviewed(app.Status) {
			return kind
		}
		return KindSuccess
	}
}

// CooledDown fails with KindTooSoon while allowed reports false for the
// instant picked by last.
func CooledDown(last func(*models.Application) *time.Time, allowed func(*time.Time, time.Time) bool, now time.Time) Guard {
	return func(app *models.Application) Kind {
		if !allowed(last(app), now) {
			return KindTooSoon
		}
		return KindSuccess
	}
}

func lastEdit(app *models.Application) *time.Time {
	if app.LastUpdatedAt != nil {
		return app.LastUpdatedAt
	}
	created := app.CreatedAt
	return &created
}

func lastNudge(app *models.Application) *time.Time {
	return app.LastNudgeAt
}
