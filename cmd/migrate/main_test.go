package main

import (
	"context"
	"testing"

	"jobportal-backend/internal/shared/config"
)

func TestRunValidatesBeforeConnecting(t *testing.T) {
	if err := run(context.Background(), config.Config{DatabaseURL: "postgres://unused"}, []string{"sideways"}); err == nil {
		t.Fatalf("expected unknown command error")
	}
	if err := run(context.Background(), config.Config{}, []string{"status"}); err == nil || err.Error() != "DATABASE_URL is required" {
		t.Fatalf("expected missing url error, got %v", err)
	}
}
