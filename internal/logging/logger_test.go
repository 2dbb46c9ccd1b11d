package logging_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"karaokeforge/internal/logging"
	"karaokeforge/internal/services"
)

func TestNewConsoleWritesSingleLine(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "info", Format: "console", Console: &buf})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logger.Info("stage started", logging.String("stage", "separation"))
	out := buf.String()
	if !strings.Contains(out, "stage started") || !strings.Contains(out, "stage=separation") {
		t.Fatalf("unexpected output: %q", out)
	}
	if strings.Count(out, "\n") != 1 {
		t.Fatalf("expected one line, got %q", out)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	if _, err := logging.New(logging.Options{Format: "xml", Console: &buf}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "warn", Format: "console", Console: &buf})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logger.Info("hidden")
	logger.Warn("visible")
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info record should be filtered: %q", out)
	}
	if !strings.Contains(out, "visible") {
		t.Fatalf("warn record missing: %q", out)
	}
}

func TestWithContextAddsJobFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "info", Format: "console", Console: &buf})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	ctx := services.WithJobID(context.Background(), "job-42")
	ctx = services.WithStage(ctx, "transcription")
	logging.WithContext(ctx, logger).Info("hello")
	out := buf.String()
	if !strings.Contains(out, "job_id=job-42") || !strings.Contains(out, "stage=transcription") {
		t.Fatalf("context fields missing: %q", out)
	}
}
