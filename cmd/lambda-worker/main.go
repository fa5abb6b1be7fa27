package main

// Build the Lambda handler binary:
//   GOOS=linux GOARCH=amd64 CGO_ENABLED=0 go build -o bootstrap ./cmd/lambda-worker

import (
	"context"
	"log"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"jobportal-backend/internal/notify"
	"jobportal-backend/internal/shared/config"
	"jobportal-backend/internal/shared/telemetry"
	"jobportal-backend/internal/workerproc"
)

var (
	initOnce sync.Once
	initErr  error
	sender   notify.Sender
)

func initSender() {
	sender, initErr = notify.DeliverySender(config.Load())
}

func handler(ctx context.Context, event events.SQSEvent) (events.SQSEventResponse, error) {
	initOnce.Do(initSender)
	if initErr != nil {
		log.Printf("sender init error: %v", initErr)
		failures := make([]events.SQSBatchItemFailure, 0, len(event.Records))
		for _, record := range event.Records {
			failures = append(failures, events.SQSBatchItemFailure{ItemIdentifier: record.MessageId})
		}
		return events.SQSEventResponse{BatchItemFailures: failures}, initErr
	}
	return process(ctx, sender, event), nil
}

func process(ctx context.Context, s notify.Sender, event events.SQSEvent) events.SQSEventResponse {
	failures := make([]events.SQSBatchItemFailure, 0)
	for _, record := range event.Records {
		err := workerproc.HandleMessage(ctx, s, record.Body)
		if err == nil {
			continue
		}
		fields := map[string]any{"sqs_message_id": record.MessageId, "error": err}
		if workerproc.Unrecoverable(err) {
			telemetry.Error("worker.notify.invalid", fields)
			continue
		}
		telemetry.Error("worker.notify.failed", fields)
		failures = append(failures, events.SQSBatchItemFailure{ItemIdentifier: record.MessageId})
	}
	return events.SQSEventResponse{BatchItemFailures: failures}
}

func main() {
	lambda.Start(handler)
}
