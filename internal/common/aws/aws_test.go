package aws

import (
	"context"
	"errors"
	"testing"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

type mockSES struct {
	SendEmailFunc func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

func (m *mockSES) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	return m.SendEmailFunc(ctx, params, optFns...)
}

type mockSNS struct {
	PublishFunc func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

func (m *mockSNS) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	return m.PublishFunc(ctx, params, optFns...)
}

// ==========================
// Core Functionality Tests
// ==========================

func TestSESClient_SendText(t *testing.T) {
	var captured *ses.SendEmailInput
	client := NewSESClientWithAPI(&mockSES{
		SendEmailFunc: func(_ context.Context, params *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			captured = params
			return &ses.SendEmailOutput{MessageId: awssdk.String("msg-1")}, nil
		},
	}, "noreply@example.com")

	id, err := client.SendText(context.Background(), "ada@example.com", "Subject", "Body")
	require.NoError(t, err)
	assert.Equal(t, "msg-1", id)

	require.NotNil(t, captured)
	assert.Equal(t, []string{"ada@example.com"}, captured.Destination.ToAddresses)
	assert.Equal(t, "noreply@example.com", awssdk.ToString(captured.Source))
	assert.Equal(t, "Subject", awssdk.ToString(captured.Message.Subject.Data))
	assert.Equal(t, "Body", awssdk.ToString(captured.Message.Body.Text.Data))
}

func TestSESClient_SendTextError(t *testing.T) {
	client := NewSESClientWithAPI(&mockSES{
		SendEmailFunc: func(context.Context, *ses.SendEmailInput, ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			return nil, errors.New("throttled")
		},
	}, "noreply@example.com")

	_, err := client.SendText(context.Background(), "ada@example.com", "s", "b")
	assert.ErrorContains(t, err, "throttled")
}

func TestSNSClient_PublishToTopic(t *testing.T) {
	var captured *sns.PublishInput
	client := NewSNSClientWithAPI(&mockSNS{
		PublishFunc: func(_ context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
			captured = params
			return &sns.PublishOutput{MessageId: awssdk.String("sns-1")}, nil
		},
	})

	id, err := client.PublishToTopic(context.Background(), "arn:aws:sns:us-east-1:1:reviewers", "Nudge", "body",
		map[string]string{"applicationId": "app-1"})
	require.NoError(t, err)
	assert.Equal(t, "sns-1", id)

	require.NotNil(t, captured)
	assert.Equal(t, "arn:aws:sns:us-east-1:1:reviewers", awssdk.ToString(captured.TopicArn))
	assert.Equal(t, "app-1", awssdk.ToString(captured.MessageAttributes["applicationId"].StringValue))
}

func TestSNSClient_PublishError(t *testing.T) {
	client := NewSNSClientWithAPI(&mockSNS{
		PublishFunc: func(context.Context, *sns.PublishInput, ...func(*sns.Options)) (*sns.PublishOutput, error) {
			return nil, errors.New("denied")
		},
	})

	_, err := client.PublishToTopic(context.Background(), "arn", "s", "m", nil)
	assert.ErrorContains(t, err, "denied")
}
