// internal/workers/application/create-application-record/handler.go
package createapplicationrecord

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
	TaskType = "create-application-record"
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
	if input.UserID == "" {
		return nil, apperrors.NewApplicationValidationFailedError("userId is required")
	}

	result, prepared, err := validation.Validate(validation.SchemaCreate, input.Application)
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		return nil, apperrors.NewApplicationValidationFailedError(result.Summary())
	}

	var p payload
	raw, err := json.Marshal(prepared)
	if err == nil {
		err = json.Unmarshal(raw, &p)
	}
	if err != nil {
		return nil, apperrors.NewApplicationValidationFailedError(err.Error())
	}

	// Any application from the current review cycle blocks a new one
	var legacy int
	blocks := func(existing []*models.Application) *models.Application {
		legacy = 0
		for _, app := range existing {
			if !lifecycle.IsResubmittableLegacy(app, h.config.ReviewCycleStart) {
				return app
			}
			legacy++
		}
		return nil
	}

	out, err := h.engine.Create(ctx, p.toApplication(input.UserID), blocks)
	if err != nil {
		return nil, apperrors.NewDatabaseInsertFailedError(err)
	}
	if out.Kind == lifecycle.KindDuplicate {
		return nil, apperrors.NewDuplicateApplicationError(input.UserID, out.Application.ID)
	}
	app := out.Application

	// Audit and search indexing are non-critical
	if err := h.audit.Record(ctx, store.AuditEntry{
		EventType:  store.AuditApplicationCreated,
		ResourceID: app.ID,
		Details: map[string]interface{}{
			"userId":             input.UserID,
			"role":               app.Role,
			"legacyApplications": legacy,
		},
		CreatedAt: app.CreatedAt,
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

	h.logger.Info("application record created", map[string]interface{}{
		"applicationId": app.ID,
		"userId":        input.UserID,
		"role":          app.Role,
	})

	resp := lifecycle.MapOutcome(lifecycle.OpCreate, out.Kind)
	return &Output{
		ApplicationID:     app.ID,
		ApplicationStatus: app.Status,
		Score:             app.Score,
		Message:           resp.Message,
		HTTPStatus:        resp.HTTPStatus,
		CreatedAt:         app.CreatedAt.UTC().Format(lifecycle.TimestampLayout),
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
