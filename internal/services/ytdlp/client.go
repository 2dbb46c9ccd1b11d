package ytdlp

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Format preference handed to yt-dlp: best mp4 video+audio pair, falling
// back to the overall best.
const DefaultFormat = "bestvideo[ext=mp4]+bestaudio[ext=m4a]/best"

// CommandRunner executes an external command and returns its combined output.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

func defaultRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	return cmd.CombinedOutput()
}

// Client wraps the yt-dlp binary.
type Client struct {
	binary string
	format string
	run    CommandRunner
}

// NewClient constructs a downloader client for the given binary name.
func NewClient(binary string) *Client {
	return NewClientWithRunner(binary, defaultRunner)
}

// NewClientWithRunner constructs a client with an injected command runner
// (used in tests).
func NewClientWithRunner(binary string, run CommandRunner) *Client {
	if binary == "" {
		binary = "yt-dlp"
	}
	if run == nil {
		run = defaultRunner
	}
	return &Client{binary: binary, format: DefaultFormat, run: run}
}

// Download fetches the media behind url into dir. The output template pins
// the filename to the video id; the engine still picks the extension, so the
// resolved path is printed by yt-dlp itself and returned here.
func (c *Client) Download(ctx context.Context, url, dir string) (string, error) {
	template := dir + "/%(id)s.%(ext)s"
	output, err := c.run(ctx, c.binary,
		"--no-playlist",
		"-f", c.format,
		"-o", template,
		"--print", "after_move:filepath",
		"--no-simulate",
		url,
	)
	if err != nil {
		return "", fmt.Errorf("yt-dlp download: %w: %s", err, strings.TrimSpace(string(output)))
	}
	lines := strings.Split(strings.TrimSpace(string(output)), "\n")
	path := strings.TrimSpace(lines[len(lines)-1])
	if path == "" {
		return "", fmt.Errorf("yt-dlp download: no output path reported for %q", url)
	}
	return path, nil
}
