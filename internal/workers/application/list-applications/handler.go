// internal/workers/application/list-applications/handler.go
package listapplications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

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
	TaskType = "list-applications"
)

var listableStatuses = map[string]bool{
	models.StatusPending:          true,
	models.StatusAccepted:         true,
	models.StatusRejected:         true,
	models.StatusChangesRequested: true,
}

type Handler struct {
	config       *Config
	store        store.Store
	errorHandler *apperrors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, st store.Store, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		store:        st,
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
	start := time.Now()

	filter, err := h.buildFilter(input)
	if err != nil {
		return nil, err
	}
	size := filter.Limit
	// one extra row tells whether another page exists
	filter.Limit = size + 1

	apps, err := h.store.List(ctx, filter)
	if errors.Is(err, store.ErrCursorNotFound) {
		return nil, apperrors.NewInvalidFilterFormatError(fmt.Sprintf("unknown next cursor %q", input.Next))
	}
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("list_applications", err)
	}

	output := &Output{
		Applications: apps,
		Message:      lifecycle.MsgApplicationsListed,
		HTTPStatus:   http.StatusOK,
	}
	if len(apps) > size {
		output.Applications = apps[:size]
		output.Next = apps[size-1].ID
	}
	if output.Applications == nil {
		output.Applications = []*models.Application{}
	}
	output.RowCount = len(output.Applications)
	output.QueryExecutionTime = time.Since(start).Milliseconds()

	h.logger.Info("applications listed", map[string]interface{}{
		"userId":   input.UserID,
		"status":   input.Status,
		"rowCount": output.RowCount,
		"hasNext":  output.Next != "",
	})

	return output, nil
}

func (h *Handler) buildFilter(input *Input) (store.ListFilter, error) {
	result, _, err := validation.Validate(validation.SchemaQuery, input.asQuery())
	if err != nil {
		return store.ListFilter{}, err
	}
	if !result.Valid {
		return store.ListFilter{}, apperrors.NewInvalidFilterFormatError(result.Summary())
	}

	if input.Status != "" && !listableStatuses[input.Status] {
		return store.ListFilter{}, apperrors.NewInvalidFilterFormatError(fmt.Sprintf("unknown status %q", input.Status))
	}

	size := h.config.DefaultPageSize
	if input.Size != "" {
		n, err := strconv.Atoi(input.Size)
		if err != nil || n < 1 {
			return store.ListFilter{}, apperrors.NewInvalidFilterFormatError(fmt.Sprintf("size must be a positive integer, got %q", input.Size))
		}
		size = n
	}
	if size > h.config.MaxPageSize {
		size = h.config.MaxPageSize
	}

	return store.ListFilter{
		UserID: input.UserID,
		Status: input.Status,
		Limit:  size,
		After:  input.Next,
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
