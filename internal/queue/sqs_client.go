package queue

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// Client hands a notification to whatever transport feeds the worker.
type Client interface {
	Send(ctx context.Context, msg Message) error
}

// fifoGroup orders all notifications on a FIFO queue as one stream.
const fifoGroup = "notifications"

type sqsAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SQSClient publishes notification messages to an SQS queue. Queues whose
// URL ends in .fifo get a group id and the message id as dedup id.
type SQSClient struct {
	api  sqsAPI
	url  string
	fifo bool
}

// NewSQSClient loads the default AWS config for region and targets queueURL.
func NewSQSClient(ctx context.Context, queueURL, region string) (*SQSClient, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region = strings.TrimSpace(region); region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return newSQSClient(sqs.NewFromConfig(cfg), queueURL)
}

func newSQSClient(api sqsAPI, queueURL string) (*SQSClient, error) {
	queueURL = strings.TrimSpace(queueURL)
	if queueURL == "" {
		return nil, errors.New("NOTIFY_SQS_QUEUE_URL is required")
	}
	return &SQSClient{api: api, url: queueURL, fifo: strings.HasSuffix(queueURL, ".fifo")}, nil
}

func (s *SQSClient) Send(ctx context.Context, msg Message) error {
	payload, err := EncodeMessage(msg)
	if err != nil {
		return fmt.Errorf("encode sqs message: %w", err)
	}

	in := &sqs.SendMessageInput{
		QueueUrl:    aws.String(s.url),
		MessageBody: aws.String(string(payload)),
	}
	if msg.RequestID != "" {
		in.MessageAttributes = map[string]sqstypes.MessageAttributeValue{
			"requestId": {DataType: aws.String("String"), StringValue: aws.String(msg.RequestID)},
		}
	}
	if s.fifo {
		in.MessageGroupId = aws.String(fifoGroup)
		if msg.ID != "" {
			in.MessageDeduplicationId = aws.String(msg.ID)
		}
	}

	if _, err := s.api.SendMessage(ctx, in); err != nil {
		return fmt.Errorf("sqs send %s: %w", msg.ID, err)
	}
	return nil
}

var _ Client = (*SQSClient)(nil)
