package main

// Long-polls the notification queue and delivers each message by email.

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"golang.org/x/sync/errgroup"

	"jobportal-backend/internal/notify"
	"jobportal-backend/internal/shared/config"
	"jobportal-backend/internal/shared/metrics"
	"jobportal-backend/internal/shared/telemetry"
	"jobportal-backend/internal/workerproc"
)

const (
	receiveBatch     = 10
	receiveWaitSecs  = 20
	receiveCountAttr = "ApproximateReceiveCount"
)

type sqsAPI interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

type worker struct {
	api        sqsAPI
	queueURL   string
	sender     notify.Sender
	visibility int32
	// retryDelay backs off after a failed receive.
	retryDelay time.Duration
}

func main() {
	cfg := config.Load()
	queueURL := strings.TrimSpace(cfg.NotifyQueueURL)
	if queueURL == "" {
		log.Fatal("NOTIFY_SQS_QUEUE_URL is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var opts []func(*awsconfig.LoadOptions) error
	if cfg.AWSRegion != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.AWSRegion))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		log.Fatalf("load aws config: %v", err)
	}
	sender, err := notify.DeliverySender(cfg)
	if err != nil {
		log.Fatalf("notification sender: %v", err)
	}

	w := &worker{
		api:        sqs.NewFromConfig(awsCfg),
		queueURL:   queueURL,
		sender:     sender,
		visibility: int32(envInt("NOTIFY_VISIBILITY_TIMEOUT_SECONDS", 120)),
		retryDelay: 2 * time.Second,
	}
	concurrency := max(1, envInt("NOTIFY_WORKER_CONCURRENCY", 4))
	grace := time.Duration(envInt("NOTIFY_SHUTDOWN_TIMEOUT_SECONDS", 30)) * time.Second

	telemetry.Info("worker.started", map[string]any{"queue": queueURL, "concurrency": concurrency})
	w.run(ctx, concurrency, grace)
	telemetry.Info("worker.stopped", nil)
}

// run polls until ctx is cancelled, then gives in-flight deliveries up to
// grace to finish.
func (w *worker) run(ctx context.Context, concurrency int, grace time.Duration) {
	var g errgroup.Group
	g.SetLimit(concurrency)

	for ctx.Err() == nil {
		out, err := w.api.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            aws.String(w.queueURL),
			MaxNumberOfMessages: receiveBatch,
			WaitTimeSeconds:     receiveWaitSecs,
			VisibilityTimeout:   w.visibility,
			AttributeNames:      []sqstypes.QueueAttributeName{receiveCountAttr},
		})
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				break
			}
			telemetry.Warn("worker.receive_failed", map[string]any{"error": err})
			sleep(ctx, w.retryDelay)
			continue
		}
		for _, m := range out.Messages {
			metrics.IncNotifyJobsReceived()
			g.Go(func() error {
				w.handle(context.WithoutCancel(ctx), m)
				return nil
			})
		}
	}

	done := make(chan struct{})
	go func() {
		_ = g.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(grace):
		telemetry.Warn("worker.shutdown_timeout", map[string]any{"grace": grace.String()})
	}
}

// handle delivers one message. Undeliverable payloads are deleted; failed
// deliveries stay on the queue to be retried after the visibility timeout.
func (w *worker) handle(ctx context.Context, m sqstypes.Message) {
	decoded, meta, err := workerproc.ParseMessage(aws.ToString(m.Body))
	fields := logFields(m, decoded.ID, decoded.RequestID)
	if err != nil {
		fields["body_len"] = meta.BodyLen
		if meta.BodySHA != "" {
			fields["body_sha256"] = meta.BodySHA
		}
		fields["error"] = err
		telemetry.Error("worker.notify.invalid", fields)
		if w.delete(ctx, m, fields) {
			metrics.IncNotifyJobsDropped()
		}
		return
	}

	start := time.Now()
	if err := workerproc.Deliver(ctx, w.sender, decoded); err != nil {
		fields["error"] = err
		telemetry.Error("worker.notify.failed", fields)
		metrics.IncNotificationsFailed()
		return
	}
	metrics.ObserveNotificationDurationMs(float64(time.Since(start).Milliseconds()))

	if w.delete(ctx, m, fields) {
		metrics.IncNotificationsSent()
		telemetry.Info("worker.notify.delivered", fields)
	}
}

func (w *worker) delete(ctx context.Context, m sqstypes.Message, fields map[string]any) bool {
	var err error
	if receipt := aws.ToString(m.ReceiptHandle); receipt == "" {
		err = errors.New("missing receipt handle")
	} else {
		_, err = w.api.DeleteMessage(ctx, &sqs.DeleteMessageInput{
			QueueUrl:      aws.String(w.queueURL),
			ReceiptHandle: aws.String(receipt),
		})
	}
	if err != nil {
		telemetry.Error("worker.notify.delete_failed", map[string]any{
			"sqs_message_id": aws.ToString(m.MessageId),
			"error":          err,
		})
		return false
	}
	return true
}

func logFields(m sqstypes.Message, notificationID, requestID string) map[string]any {
	fields := map[string]any{
		"notification_id": notificationID,
		"sqs_message_id":  aws.ToString(m.MessageId),
		"receive_count":   receiveCount(m),
	}
	if requestID = strings.TrimSpace(requestID); requestID != "" {
		fields["request_id"] = requestID
	}
	return fields
}

func receiveCount(m sqstypes.Message) int {
	n, err := strconv.Atoi(m.Attributes[receiveCountAttr])
	if err != nil {
		return 0
	}
	return n
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func envInt(key string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return def
	}
	return n
}
