// internal/workers/application/nudge-application/handler.go
package nudgeapplication

import (
	"context"
	"encoding/json"

	apperrors "application-workers/internal/common/errors"
	"application-workers/internal/common/logger"
	"application-workers/internal/lifecycle"
	"application-workers/internal/models"
	"application-workers/internal/store"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "nudge-application"
)

type Indexer interface {
	Index(ctx context.Context, app *models.Application) error
}

type Handler struct {
	config       *Config
	engine       *lifecycle.Engine
	audit        store.AuditLog
	indexer      Indexer
	errorHandler *apperrors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, engine *lifecycle.Engine, audit store.AuditLog, indexer Indexer, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		engine:       engine,
		audit:        audit,
		indexer:      indexer,
		errorHandler: apperrors.NewErrorHandler(log),
		logger:       log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		return h.failJob(client, job, apperrors.NewParseError(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		return h.failJob(client, job, err)
	}

	return h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.ApplicationID == "" || input.UserID == "" {
		return nil, apperrors.NewApplicationValidationFailedError("applicationId and userId are required")
	}

	outcome, err := h.engine.Nudge(ctx, input.ApplicationID, input.UserID)
	if rejection := lifecycle.OutcomeError(lifecycle.OpNudge, outcome, err); rejection != nil {
		return nil, rejection
	}

	app := outcome.Application

	if err := h.audit.Record(ctx, store.AuditEntry{
		EventType:  store.AuditApplicationNudged,
		ResourceID: app.ID,
		Details: map[string]interface{}{
			"userId":     input.UserID,
			"nudgeCount": app.NudgeCount,
			"score":      app.Score,
		},
		CreatedAt: *app.LastNudgeAt,
	}); err != nil {
		h.logger.Warn("audit log insert failed", map[string]interface{}{
			"error":         err,
			"applicationId": app.ID,
		})
	}

	if err := h.indexer.Index(ctx, app); err != nil {
		h.logger.Warn("search index update failed", map[string]interface{}{
			"error":         err,
			"applicationId": app.ID,
		})
	}

	h.logger.Info("application nudged", map[string]interface{}{
		"applicationId": app.ID,
		"nudgeCount":    app.NudgeCount,
		"score":         app.Score,
	})

	resp := lifecycle.MapOutcome(lifecycle.OpNudge, outcome.Kind)
	return &Output{
		ApplicationID: app.ID,
		Status:        app.Status,
		Message:       resp.Message,
		HTTPStatus:    resp.HTTPStatus,
		NudgeCount:    outcome.Nudge.NudgeCount,
		LastNudgeAt:   outcome.Nudge.LastNudgeAt,
		Score:         app.Score,
	}, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) error {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return err
	}
	if _, err := cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
		return err
	}
	h.logger.Info("job completed successfully", map[string]interface{}{
		"jobKey": job.Key,
	})
	return nil
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error) error {
	h.errorHandler.HandleJobError(context.Background(), client, job, err)
	return err
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
