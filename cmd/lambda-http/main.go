package main

// Build the Lambda handler binary:
//   GOOS=linux GOARCH=arm64 CGO_ENABLED=0 go build -o bootstrap ./cmd/lambda-http

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"

	"jobportal-backend/internal/bootstrap"
	"jobportal-backend/internal/shared/config"
	"jobportal-backend/internal/shared/server/respond"
	"jobportal-backend/internal/shared/telemetry"
)

const notifyFlushTimeout = 10 * time.Second

// gateway lazily builds the app on the first invocation and reuses it while
// the execution environment stays warm.
type gateway struct {
	build func() (*bootstrap.App, error)

	once  sync.Once
	err   error
	app   *bootstrap.App
	proxy *ginadapter.GinLambdaV2
}

func (g *gateway) init() {
	g.app, g.err = g.build()
	if g.err == nil {
		g.proxy = ginadapter.NewV2(g.app.Router)
	}
}

func (g *gateway) handle(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	g.once.Do(g.init)
	if g.err != nil {
		telemetry.Error("lambda.bootstrap_failed", map[string]any{"error": g.err})
		return failure("bootstrap_failed", "Service failed to start"), nil
	}

	resp, err := g.proxy.ProxyWithContext(ctx, req)

	// Queued notifications must go out before the environment is frozen.
	flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyFlushTimeout)
	defer cancel()
	if waitErr := g.app.Dispatcher.Wait(flushCtx); waitErr != nil {
		telemetry.Warn("lambda.notify_pending", map[string]any{
			"path":  req.RawPath,
			"error": waitErr,
		})
	}
	return resp, err
}

func failure(code, message string) events.APIGatewayV2HTTPResponse {
	body, _ := json.Marshal(respond.ErrorResponse{Error: respond.ErrorBody{Code: code, Message: message}})
	return events.APIGatewayV2HTTPResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       string(body),
		Headers:    map[string]string{"Content-Type": "application/json"},
	}
}

func main() {
	gw := &gateway{build: func() (*bootstrap.App, error) {
		return bootstrap.Build(config.Load())
	}}
	lambda.Start(gw.handle)
}
