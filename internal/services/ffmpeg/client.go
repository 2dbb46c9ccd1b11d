package ffmpeg

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// CommandRunner executes an external command and returns its combined output.
// Tests substitute a fake to avoid shelling out.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

func defaultRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	return cmd.CombinedOutput()
}

// Client wraps ffmpeg/ffprobe invocations behind typed operations.
type Client struct {
	binary      string
	probeBinary string
	run         CommandRunner
}

// NewClient constructs a client using the given binary names.
func NewClient(binary, probeBinary string) *Client {
	return NewClientWithRunner(binary, probeBinary, defaultRunner)
}

// NewClientWithRunner constructs a client with an injected command runner
// (used in tests).
func NewClientWithRunner(binary, probeBinary string, run CommandRunner) *Client {
	if binary == "" {
		binary = "ffmpeg"
	}
	if probeBinary == "" {
		probeBinary = "ffprobe"
	}
	if run == nil {
		run = defaultRunner
	}
	return &Client{binary: binary, probeBinary: probeBinary, run: run}
}

func (c *Client) ffmpeg(ctx context.Context, args ...string) ([]byte, error) {
	full := append([]string{"-y", "-hide_banner"}, args...)
	output, err := c.run(ctx, c.binary, full...)
	if err != nil {
		return output, fmt.Errorf("ffmpeg: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return output, nil
}

func (c *Client) ffprobe(ctx context.Context, args ...string) (string, error) {
	output, err := c.run(ctx, c.probeBinary, args...)
	if err != nil {
		return "", fmt.Errorf("ffprobe: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return strings.TrimSpace(string(output)), nil
}
