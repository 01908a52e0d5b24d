// internal/workers/application/submit-application-feedback/handler.go
package submitapplicationfeedback

import (
	"context"
	"encoding/json"

	apperrors "application-workers/internal/common/errors"
	"application-workers/internal/common/logger"
	"application-workers/internal/common/validation"
	"application-workers/internal/lifecycle"
	"application-workers/internal/models"
	"application-workers/internal/store"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "submit-application-feedback"
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
	if input.ApplicationID == "" {
		return nil, apperrors.NewApplicationValidationFailedError("applicationId is required")
	}
	if err := validateReview(input); err != nil {
		return nil, err
	}

	outcome, err := h.engine.SubmitFeedback(ctx, input.ApplicationID, lifecycle.Review{
		Status:       input.Status,
		Feedback:     input.Feedback,
		ReviewerName: input.ReviewerName,
	})
	if rejection := lifecycle.OutcomeError(lifecycle.OpFeedback, outcome, err); rejection != nil {
		return nil, rejection
	}

	app := outcome.Application

	if err := h.audit.Record(ctx, store.AuditEntry{
		EventType:  store.AuditApplicationReviewed,
		ResourceID: app.ID,
		Details: map[string]interface{}{
			"status":       app.Status,
			"reviewerName": input.ReviewerName,
		},
		CreatedAt: outcome.At,
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

	h.logger.Info("application reviewed", map[string]interface{}{
		"applicationId": app.ID,
		"status":        app.Status,
	})

	resp := lifecycle.MapOutcome(lifecycle.OpFeedback, outcome.Kind)
	output := &Output{
		ApplicationID:    app.ID,
		UserID:           app.UserID,
		Status:           app.Status,
		ReviewerName:     input.ReviewerName,
		Message:          resp.Message,
		HTTPStatus:       resp.HTTPStatus,
		NotificationType: models.NotificationApplicationReviewed,
	}
	if app.Feedback != nil {
		output.Feedback = *app.Feedback
	}
	return output, nil
}

func validateReview(input *Input) error {
	payload := map[string]interface{}{"status": input.Status}
	if input.Feedback != nil {
		payload["feedback"] = *input.Feedback
	}

	result, _, err := validation.Validate(validation.SchemaFeedback, payload)
	if err != nil {
		return err
	}
	if !result.Valid {
		return apperrors.NewApplicationValidationFailedError(result.Summary())
	}
	if input.ReviewerName == "" {
		return apperrors.NewApplicationValidationFailedError("reviewerName is required")
	}
	return nil
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
