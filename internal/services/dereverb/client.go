package dereverb

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"karaokeforge/internal/workset"
)

// Backend selects the inference runtime for the dereverberation model. Both
// produce functionally interchangeable output.
const (
	BackendPyTorch = "pytorch"
	BackendONNX    = "onnx"
)

// CommandRunner executes an external command and returns its combined output.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

func defaultRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	return cmd.CombinedOutput()
}

// Client wraps the dereverberation engine, invoked through uvx so the Python
// environment resolves on demand.
type Client struct {
	uvxBinary string
	backend   string
	model     string
	run       CommandRunner
}

// NewClient constructs a dereverberation client.
func NewClient(uvxBinary, backend, model string) *Client {
	return NewClientWithRunner(uvxBinary, backend, model, defaultRunner)
}

// NewClientWithRunner constructs a client with an injected command runner
// (used in tests).
func NewClientWithRunner(uvxBinary, backend, model string, run CommandRunner) *Client {
	if uvxBinary == "" {
		uvxBinary = "uvx"
	}
	if backend == "" {
		backend = BackendPyTorch
	}
	if run == nil {
		run = defaultRunner
	}
	return &Client{uvxBinary: uvxBinary, backend: backend, model: model, run: run}
}

// Process runs the model over input, writing results into outDir, and
// returns the cleaned vocal file. The engine names its output after the
// input stem; when that pattern is missing, any audio file it produced in
// outDir is accepted rather than failing outright.
func (c *Client) Process(ctx context.Context, input, outDir string) (string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("dereverb: create output dir: %w", err)
	}
	args := []string{
		"audio-dereverb",
		input,
		"--model", c.model,
		"--output-dir", outDir,
	}
	if c.backend == BackendONNX {
		args = append(args, "--runtime", "onnx")
	}
	output, err := c.run(ctx, c.uvxBinary, args...)
	if err != nil {
		return "", fmt.Errorf("dereverb: %w: %s", err, strings.TrimSpace(string(output)))
	}

	stem := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	expected := filepath.Join(outDir, stem+"_noreverb"+filepath.Ext(input))
	if _, err := os.Stat(expected); err == nil {
		return expected, nil
	}
	if fallback := anyAudioFile(outDir); fallback != "" {
		return fallback, nil
	}
	return "", fmt.Errorf("dereverb: no output produced in %s", outDir)
}

func anyAudioFile(dir string) string {
	files := workset.FindAudioFiles(dir)
	if len(files) == 0 {
		return ""
	}
	return files[0]
}
