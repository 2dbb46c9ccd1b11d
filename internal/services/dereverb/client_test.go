package dereverb_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"karaokeforge/internal/services/dereverb"
)

func TestProcessPrefersExpectedName(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "dereverb_vocals")
	runner := func(_ context.Context, _ string, _ ...string) ([]byte, error) {
		for _, name := range []string{"song.vocals_noreverb.mp3", "leftover.mp3"} {
			if err := os.WriteFile(filepath.Join(outDir, name), []byte("x"), 0o644); err != nil {
				return nil, err
			}
		}
		return nil, nil
	}
	client := dereverb.NewClientWithRunner("uvx", "pytorch", "deverb_bs_roformer", runner)
	got, err := client.Process(context.Background(), "/songs/song.vocals.mp3", outDir)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if filepath.Base(got) != "song.vocals_noreverb.mp3" {
		t.Fatalf("expected canonical engine output, got %s", got)
	}
}

func TestProcessFallsBackToAnyAudioFile(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "dereverb_vocals")
	runner := func(_ context.Context, _ string, _ ...string) ([]byte, error) {
		return nil, os.WriteFile(filepath.Join(outDir, "oddly_named_output.mp3"), []byte("x"), 0o644)
	}
	client := dereverb.NewClientWithRunner("uvx", "onnx", "deverb_bs_roformer", runner)
	got, err := client.Process(context.Background(), "/songs/song.vocals.mp3", outDir)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if filepath.Base(got) != "oddly_named_output.mp3" {
		t.Fatalf("fallback selection failed: %s", got)
	}
}

func TestProcessFailsWhenNothingProduced(t *testing.T) {
	runner := func(_ context.Context, _ string, _ ...string) ([]byte, error) {
		return nil, nil
	}
	client := dereverb.NewClientWithRunner("uvx", "pytorch", "m", runner)
	if _, err := client.Process(context.Background(), "in.mp3", filepath.Join(t.TempDir(), "out")); err == nil {
		t.Fatal("expected error for empty output dir")
	}
}

func TestONNXBackendSelectsRuntimeFlag(t *testing.T) {
	var gotArgs []string
	outDir := t.TempDir()
	runner := func(_ context.Context, _ string, args ...string) ([]byte, error) {
		gotArgs = args
		return nil, os.WriteFile(filepath.Join(outDir, "out.mp3"), []byte("x"), 0o644)
	}
	client := dereverb.NewClientWithRunner("uvx", "onnx", "m", runner)
	if _, err := client.Process(context.Background(), "in.mp3", outDir); err != nil {
		t.Fatalf("process: %v", err)
	}
	if !strings.Contains(strings.Join(gotArgs, " "), "--runtime onnx") {
		t.Fatalf("onnx runtime flag missing: %v", gotArgs)
	}
}
