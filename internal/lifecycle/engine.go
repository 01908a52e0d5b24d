// internal/lifecycle/engine.go
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"application-workers/internal/common/logger"
	"application-workers/internal/common/metrics"
	"application-workers/internal/models"
	"application-workers/internal/store"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultInitialScore = 50
	DefaultNudgeBonus   = 10
)

// ErrStoreFailure wraps every persistence error returned by the engine.
var ErrStoreFailure = errors.New("store failure")

type Options struct {
	Policy       Policy
	InitialScore int
	NudgeBonus   int
}

func DefaultOptions() Options {
	return Options{
		Policy:       DefaultPolicy(),
		InitialScore: DefaultInitialScore,
		NudgeBonus:   DefaultNudgeBonus,
	}
}

// Review is a reviewer's decision on a pending application.
type Review struct {
	Status       string
	Feedback     *string
	ReviewerName string
}

// Engine applies the lifecycle rules. Every operation reads the clock once
// and runs its checks and write inside a single store.Mutate, or
// store.CreateUnique for creates.
type Engine struct {
	store  store.Store
	clock  Clock
	opts   Options
	logger logger.Logger
	tracer trace.Tracer
}

func NewEngine(st store.Store, clock Clock, opts Options, log logger.Logger) *Engine {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Engine{
		store:  st,
		clock:  clock,
		opts:   opts,
		logger: log.WithFields(map[string]interface{}{"component": "lifecycle"}),
		tracer: otel.Tracer("application-workers/lifecycle"),
	}
}

// Create stores a new pending application owned by draft.UserID. blocks
// runs against the owner's existing applications under the store's
// per-owner lock; when it returns one, nothing is stored and the outcome
// is KindDuplicate carrying that application.
func (e *Engine) Create(ctx context.Context, draft *models.Application, blocks store.BlockFunc) (Outcome, error) {
	ctx, finish := e.begin(ctx, OpCreate, draft.ID)
	now := e.clock.Now()

	app := draft.Clone()
	if app.ID == "" {
		app.ID = uuid.New().String()
	}
	app.Status = models.StatusPending
	app.Score = e.opts.InitialScore
	app.NudgeCount = 0
	app.LastNudgeAt = nil
	app.LastUpdatedAt = nil
	app.Feedback = nil
	app.ReviewerName = nil
	app.CreatedAt = now

	blocking, err := e.store.CreateUnique(ctx, app, blocks)
	if err != nil {
		return finish(Outcome{At: now}, e.storeFailure(OpCreate, app.ID, err))
	}
	if blocking != nil {
		return finish(Outcome{Kind: KindDuplicate, Application: blocking, At: now}, nil)
	}
	return finish(Outcome{Kind: KindSuccess, Application: app, At: now}, nil)
}

// Update applies a self-service edit by the owner once the edit cooldown
// has passed since the last edit or creation.
func (e *Engine) Update(ctx context.Context, applicationID, actingUserID string, patch Patch) (Outcome, error) {
	ctx, finish := e.begin(ctx, OpUpdate, applicationID)
	now := e.clock.Now()
	changes := patch.Flatten()

	var kind Kind
	app, err := e.store.Mutate(ctx, applicationID, func(current *models.Application) models.Changes {
		kind = Evaluate(current,
			OwnedBy(actingUserID),
			CooledDown(lastEdit, e.opts.Policy.CanEdit, now),
		)
		if kind != KindSuccess {
			return nil
		}
		out := make(models.Changes, len(changes)+1)
		for path, v := range changes {
			out[path] = v
		}
		out[models.FieldLastUpdatedAt] = now
		return out
	})
	if err != nil {
		return finish(Outcome{At: now}, e.storeFailure(OpUpdate, applicationID, err))
	}

	out := Outcome{Kind: kind, At: now}
	if kind == KindSuccess {
		out.Application = app
	}
	return finish(out, nil)
}

// Nudge records an owner's request for attention on a pending application
// and adds the nudge bonus to its score.
func (e *Engine) Nudge(ctx context.Context, applicationID, actingUserID string) (Outcome, error) {
	ctx, finish := e.begin(ctx, OpNudge, applicationID)
	now := e.clock.Now()

	var kind Kind
	app, err := e.store.Mutate(ctx, applicationID, func(current *models.Application) models.Changes {
		kind = Evaluate(current,
			OwnedBy(actingUserID),
			StillPending(KindNotPending),
			CooledDown(lastNudge, e.opts.Policy.CanNudge, now),
		)
		if kind != KindSuccess {
			return nil
		}
		return models.Changes{
			models.FieldNudgeCount:  current.NudgeCount + 1,
			models.FieldLastNudgeAt: now,
			models.FieldScore:       current.Score + e.opts.NudgeBonus,
		}
	})
	if err != nil {
		return finish(Outcome{At: now}, e.storeFailure(OpNudge, applicationID, err))
	}

	out := Outcome{Kind: kind, At: now}
	if kind == KindSuccess {
		out.Application = app
		out.Nudge = &NudgeResult{
			NudgeCount:  app.NudgeCount,
			LastNudgeAt: now.UTC().Format(TimestampLayout),
		}
	}
	return finish(out, nil)
}

// SubmitFeedback moves a pending application to the reviewer's status. A
// reviewed application is never reviewed again.
func (e *Engine) SubmitFeedback(ctx context.Context, applicationID string, review Review) (Outcome, error) {
	ctx, finish := e.begin(ctx, OpFeedback, applicationID)
	now := e.clock.Now()

	var kind Kind
	app, err := e.store.Mutate(ctx, applicationID, func(current *models.Application) models.Changes {
		kind = Evaluate(current, StillPending(KindAlreadyReviewed))
		if kind != KindSuccess {
			return nil
		}
		changes := models.Changes{
			models.FieldStatus:       review.Status,
			models.FieldReviewerName: review.ReviewerName,
		}
		if review.Feedback != nil {
			changes[models.FieldFeedback] = *review.Feedback
		}
		return changes
	})
	if err != nil {
		return finish(Outcome{At: now}, e.storeFailure(OpFeedback, applicationID, err))
	}

	out := Outcome{Kind: kind, At: now}
	if kind == KindSuccess {
		out.Application = app
	}
	return finish(out, nil)
}

func (e *Engine) storeFailure(op Operation, applicationID string, err error) error {
	e.logger.Error("application store failure", map[string]interface{}{
		"operation":     string(op),
		"applicationId": applicationID,
		"error":         err,
	})
	return fmt.Errorf("%w: %s %s: %w", ErrStoreFailure, op, applicationID, err)
}

// begin opens the span for op and returns a func that closes it and
// records the outcome.
func (e *Engine) begin(ctx context.Context, op Operation, applicationID string) (context.Context, func(Outcome, error) (Outcome, error)) {
	start := time.Now()
	ctx, span := e.tracer.Start(ctx, "lifecycle."+string(op),
		trace.WithAttributes(attribute.String("application.id", applicationID)))

	return ctx, func(out Outcome, err error) (Outcome, error) {
		label := out.Kind.String()
		if err != nil {
			label = "storeFailure"
			span.RecordError(err)
			span.SetStatus(codes.Error, "store failure")
		}
		span.SetAttributes(attribute.String("lifecycle.outcome", label))
		span.End()

		metrics.LifecycleOutcomes.WithLabelValues(string(op), label).Inc()
		metrics.LifecycleDuration.WithLabelValues(string(op)).Observe(time.Since(start).Seconds())
		return out, err
	}
}
