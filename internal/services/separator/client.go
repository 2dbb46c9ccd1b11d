package separator

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// CommandRunner executes an external command and returns its combined output.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

func defaultRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	return cmd.CombinedOutput()
}

// Stems are the two audio streams a separation model produces.
type Stems struct {
	Instrumental string
	Vocals       string
}

// Client wraps the audio-separator CLI. The engine writes stems under
// model-chosen filenames inside the requested output directory, so the
// client locates them afterwards by suffix pattern.
type Client struct {
	binary string
	run    CommandRunner
}

// NewClient constructs a separation client for the given binary name.
func NewClient(binary string) *Client {
	return NewClientWithRunner(binary, defaultRunner)
}

// NewClientWithRunner constructs a client with an injected command runner
// (used in tests).
func NewClientWithRunner(binary string, run CommandRunner) *Client {
	if binary == "" {
		binary = "audio-separator"
	}
	if run == nil {
		run = defaultRunner
	}
	return &Client{binary: binary, run: run}
}

// Separate runs the named model over input, writing stems into outDir, and
// returns the located stem paths. A model that emits only an instrumental
// stem yields an empty Vocals path.
func (c *Client) Separate(ctx context.Context, input, model, outDir string) (Stems, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return Stems{}, fmt.Errorf("separator: create output dir: %w", err)
	}
	output, err := c.run(ctx, c.binary,
		input,
		"-m", model,
		"--output_dir", outDir,
		"--output_format", "mp3",
	)
	if err != nil {
		return Stems{}, fmt.Errorf("separator: %w: %s", err, strings.TrimSpace(string(output)))
	}
	stems, err := locateStems(outDir)
	if err != nil {
		return Stems{}, err
	}
	return stems, nil
}

// locateStems searches the engine's output directory for stem files by the
// naming pattern the UVR model family uses: "..._(Instrumental)_x.mp3",
// "..._(Vocals)_x.mp3".
func locateStems(dir string) (Stems, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return Stems{}, fmt.Errorf("separator: read output dir: %w", err)
	}
	var stems Stems
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := strings.ToLower(entry.Name())
		full := filepath.Join(dir, entry.Name())
		switch {
		case strings.Contains(name, "instrumental"):
			stems.Instrumental = full
		case strings.Contains(name, "vocal"):
			stems.Vocals = full
		}
	}
	if stems.Instrumental == "" && stems.Vocals == "" {
		return Stems{}, fmt.Errorf("separator: no stems found in %s", dir)
	}
	return stems, nil
}
