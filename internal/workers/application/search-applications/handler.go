// internal/workers/application/search-applications/handler.go
package searchapplications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	apperrors "application-workers/internal/common/errors"
	"application-workers/internal/common/logger"
	"application-workers/internal/lifecycle"
	"application-workers/internal/models"
	"application-workers/internal/search"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "search-applications"
)

const queryType = "search_applications"

type Searcher interface {
	Search(ctx context.Context, q search.Query) (*search.Result, error)
}

type Handler struct {
	config       *Config
	searcher     Searcher
	errorHandler *apperrors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, searcher Searcher, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		searcher:     searcher,
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
	if err := validateInput(input); err != nil {
		return nil, err
	}

	q := search.Query{
		Keywords: input.Keywords,
		Status:   input.Status,
		Role:     input.Role,
		UserID:   input.UserID,
		From:     input.From,
		Size:     search.NormalizeSize(input.Size),
	}

	result, err := h.searcher.Search(ctx, q)
	if err != nil {
		return nil, h.mapSearchError(ctx, err)
	}

	docs := result.Applications
	if docs == nil {
		docs = []search.Document{}
	}

	h.logger.Info("search completed", map[string]interface{}{
		"keywords":  input.Keywords,
		"totalHits": result.TotalHits,
		"returned":  len(docs),
		"took":      result.Took,
	})

	return &Output{
		Applications: docs,
		TotalHits:    result.TotalHits,
		MaxScore:     result.MaxScore,
		From:         q.From,
		Size:         q.Size,
		Message:      lifecycle.MsgApplicationsListed,
		HTTPStatus:   http.StatusOK,
		Took:         result.Took,
	}, nil
}

func validateInput(input *Input) error {
	if input.From < 0 {
		return apperrors.NewInvalidFilterFormatError(fmt.Sprintf("from must not be negative, got %d", input.From))
	}
	if input.Status != "" && input.Status != models.StatusPending && !contains(models.ReviewStatuses, input.Status) {
		return apperrors.NewInvalidFilterFormatError(fmt.Sprintf("unknown status %q", input.Status))
	}
	if input.Role != "" && !contains(models.Roles, input.Role) {
		return apperrors.NewInvalidFilterFormatError(fmt.Sprintf("unknown role %q", input.Role))
	}
	return nil
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}

func (h *Handler) mapSearchError(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, search.ErrIndexNotFound):
		return apperrors.NewIndexNotFoundError(h.config.Index)
	case errors.Is(err, search.ErrSearchTimeout),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(ctx.Err(), context.DeadlineExceeded):
		return apperrors.NewSearchTimeoutError(queryType)
	default:
		return apperrors.NewSearchQueryFailedError(queryType, err)
	}
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
