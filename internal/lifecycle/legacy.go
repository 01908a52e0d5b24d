// internal/lifecycle/legacy.go
package lifecycle

import (
	"time"

	"application-workers/internal/models"
)

// DefaultReviewCycleStart is the review-cycle cutover instant.
var DefaultReviewCycleStart = time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)

// IsResubmittableLegacy reports whether app predates the review-cycle
// cutover. Applications created at or after cutover never are.
func IsResubmittableLegacy(app *models.Application, cutover time.Time) bool {
	if app == nil {
		return false
	}
	return app.CreatedAt.Before(cutover)
}
