// internal/workers/application/send-notification/handler.go
package sendnotification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "application-workers/internal/common/errors"
	"application-workers/internal/common/logger"
	"application-workers/internal/common/metrics"
	"application-workers/internal/common/validation"
	"application-workers/internal/models"
	"application-workers/internal/store"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "send-notification"
)

// EmailSender is satisfied by *aws.SESClient.
type EmailSender interface {
	SendText(ctx context.Context, to, subject, body string) (string, error)
}

// TopicPublisher is satisfied by *aws.SNSClient.
type TopicPublisher interface {
	PublishToTopic(ctx context.Context, topicARN, subject, message string, attrs map[string]string) (string, error)
}

type Handler struct {
	config       *Config
	users        store.UserDirectory
	email        EmailSender
	topics       TopicPublisher
	errorHandler *apperrors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, users store.UserDirectory, email EmailSender, topics TopicPublisher, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		users:        users,
		email:        email,
		topics:       topics,
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
	tmpl, ok := templates[input.NotificationType]
	if !ok {
		return nil, apperrors.NewBusinessRuleError("Unknown notification type", input.NotificationType)
	}

	data := map[string]interface{}{
		"applicationId": input.ApplicationID,
		"status":        input.Status,
		"feedback":      input.Feedback,
		"reviewerName":  input.ReviewerName,
		"nudgeCount":    input.NudgeCount,
		"lastNudgeAt":   input.LastNudgeAt,
	}
	if input.Score != nil {
		data["score"] = *input.Score
	}
	subject := tmpl.Subject
	if input.Subject != nil && *input.Subject != "" {
		subject = *input.Subject
	}

	now := time.Now().UTC()
	output := &Output{Notification: models.Notification{
		ID:            uuid.New().String(),
		ApplicationID: input.ApplicationID,
		Type:          input.NotificationType,
		Status:        models.NotificationDisabled,
		Payload:       data,
		CreatedAt:     now.Format(time.RFC3339),
	}}

	var err error
	switch input.NotificationType {
	case models.NotificationApplicationReviewed:
		err = h.notifyApplicant(ctx, input, tmpl, subject, data, output)
	case models.NotificationApplicationNudged:
		err = h.notifyReviewers(ctx, input, tmpl, subject, data, output)
	}
	if err != nil {
		return nil, err
	}

	if output.Status == models.NotificationSent {
		output.SentAt = time.Now().UTC().Format(time.RFC3339)
	}
	metrics.NotificationsSent.WithLabelValues(output.Type, output.Channel, output.Status).Inc()

	h.logger.Info("notification processed", map[string]interface{}{
		"notificationId": output.ID,
		"type":           output.Type,
		"channel":        output.Channel,
		"status":         output.Status,
		"applicationId":  output.ApplicationID,
	})

	return output, nil
}

// notifyApplicant emails the review result. A missing recipient or a
// missing or malformed address disables the notification; a send error
// marks it failed.
func (h *Handler) notifyApplicant(ctx context.Context, input *Input, tmpl template, subject string, data map[string]interface{}, out *Output) error {
	out.Channel = ChannelEmail
	out.RecipientType = RecipientTypeApplicant
	out.RecipientID = input.UserID

	if !h.config.EmailEnabled {
		return nil
	}

	user, err := h.users.GetUser(ctx, input.UserID)
	if errors.Is(err, store.ErrUserNotFound) {
		h.logger.Warn("recipient not found", map[string]interface{}{
			"recipientId": input.UserID,
		})
		return nil
	}
	if err != nil {
		return apperrors.NewQueryExecutionFailedError("recipient_lookup", err)
	}
	if !validation.ValidateEmail(user.Email) {
		if user.Email != "" {
			h.logger.Warn("recipient email is invalid", map[string]interface{}{
				"recipientId": user.ID,
			})
		}
		return nil
	}

	data["firstName"] = user.FirstName
	body := renderTemplate(tmpl.Body, data)

	msgID, err := h.email.SendText(ctx, user.Email, subject, body)
	if err != nil {
		h.logger.Error("email send failed", map[string]interface{}{
			"error":       err,
			"recipientId": user.ID,
		})
		out.Status = models.NotificationFailed
		return nil
	}

	out.Status = models.NotificationSent
	out.MessageID = msgID
	return nil
}

// notifyReviewers publishes a nudge to the reviewer topic.
func (h *Handler) notifyReviewers(ctx context.Context, input *Input, tmpl template, subject string, data map[string]interface{}, out *Output) error {
	out.Channel = ChannelSMS
	out.RecipientType = RecipientTypeReviewer
	out.RecipientID = h.config.ReviewerTopicARN

	if !h.config.SMSEnabled || h.config.ReviewerTopicARN == "" {
		return nil
	}

	body := renderTemplate(tmpl.Body, data)
	msgID, err := h.topics.PublishToTopic(ctx, h.config.ReviewerTopicARN, subject, body, map[string]string{
		"notificationType": input.NotificationType,
		"applicationId":    input.ApplicationID,
	})
	if err != nil {
		h.logger.Error("topic publish failed", map[string]interface{}{
			"error":         err,
			"applicationId": input.ApplicationID,
		})
		out.Status = models.NotificationFailed
		return nil
	}

	out.Status = models.NotificationSent
	out.MessageID = msgID
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
	return nil
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error) error {
	h.errorHandler.HandleJobError(context.Background(), client, job, err)
	return err
}

// renderTemplate replaces {{key}} placeholders from data in one pass over
// tmpl and drops any placeholder left without a value. Substituted values
// are never rescanned.
func renderTemplate(tmpl string, data map[string]interface{}) string {
	var pairs []string
	for rest := tmpl; ; {
		start := strings.Index(rest, "{{")
		if start == -1 {
			break
		}
		end := strings.Index(rest[start:], "}}")
		if end == -1 {
			break
		}
		end += start + 2
		placeholder := rest[start:end]
		pairs = append(pairs, placeholder, templateValue(data[placeholder[2:len(placeholder)-2]]))
		rest = rest[end:]
	}
	return strings.TrimSpace(strings.NewReplacer(pairs...).Replace(tmpl))
}

func templateValue(v interface{}) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
