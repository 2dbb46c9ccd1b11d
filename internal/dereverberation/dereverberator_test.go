package dereverberation_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"karaokeforge/internal/config"
	"karaokeforge/internal/dereverberation"
	"karaokeforge/internal/services"
	"karaokeforge/internal/workset"
)

type fakeEngine struct {
	inputs []string
	err    error
}

func (f *fakeEngine) Process(ctx context.Context, input, outDir string) (string, error) {
	f.inputs = append(f.inputs, input)
	if f.err != nil {
		return "", f.err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", err
	}
	out := filepath.Join(outDir, "result_noreverb.mp3")
	return out, os.WriteFile(out, []byte("dry"), 0o644)
}

type fakeTranscoder struct {
	peakErr error
	peaked  []string
}

func (f *fakeTranscoder) PeakNormalize(ctx context.Context, source, dest string) error {
	if f.peakErr != nil {
		return f.peakErr
	}
	f.peaked = append(f.peaked, source)
	return os.WriteFile(dest, []byte("peaked"), 0o644)
}

func newDescriptor(t *testing.T, files ...string) *workset.Descriptor {
	t.Helper()
	d, err := workset.New(t.TempDir(), "job", workset.ModeFile)
	if err != nil {
		t.Fatalf("descriptor: %v", err)
	}
	for _, name := range files {
		if err := os.WriteFile(filepath.Join(d.Path(), name), []byte("x"), 0o644); err != nil {
			t.Fatalf("seed file: %v", err)
		}
	}
	return d
}

func newStage(cfg config.Config, engine *fakeEngine, tc *fakeTranscoder) *dereverberation.Dereverberator {
	return dereverberation.NewDereverberatorWithDependencies(&cfg, nil, engine, tc)
}

func TestExecuteProducesDereverbedTemp(t *testing.T) {
	d := newDescriptor(t, "song.vocals.mp3")
	d.SetBase("song")
	engine := &fakeEngine{}
	tc := &fakeTranscoder{}
	if err := newStage(config.Default(), engine, tc).Execute(context.Background(), d); err != nil {
		t.Fatalf("execute: %v", err)
	}
	dest := filepath.Join(d.Path(), "song.dereverbed.mp3")
	if _, err := os.Stat(dest); err != nil {
		t.Fatalf("dereverbed artifact missing: %v", err)
	}
	inTemps, inKeeps := false, false
	for _, p := range d.Temps() {
		if p == dest {
			inTemps = true
		}
	}
	for _, p := range d.Keeps() {
		if p == dest {
			inKeeps = true
		}
	}
	if !inTemps || inKeeps {
		t.Fatalf("dereverbed file must be temp and never keep (temps=%v keeps=%v)", d.Temps(), d.Keeps())
	}
	if !d.StepCompleted("dereverberation") {
		t.Fatal("step not completed")
	}
	// The engine consumed the peak-normalized copy, not the raw vocal.
	if len(tc.peaked) != 1 {
		t.Fatalf("peak normalization calls = %v", tc.peaked)
	}
}

func TestExecuteRegistersScratchDirsAsTemp(t *testing.T) {
	d := newDescriptor(t, "song.vocals.mp3")
	d.SetBase("song")
	if err := newStage(config.Default(), &fakeEngine{}, &fakeTranscoder{}).Execute(context.Background(), d); err != nil {
		t.Fatalf("execute: %v", err)
	}
	want := map[string]bool{
		filepath.Join(d.Path(), "dereverb_vocals"): false,
		filepath.Join(d.Path(), "dereverb_others"): false,
	}
	for _, temp := range d.Temps() {
		if _, ok := want[temp]; ok {
			want[temp] = true
		}
	}
	for dir, seen := range want {
		if !seen {
			t.Errorf("scratch dir %s not registered temp", dir)
		}
	}
}

func TestExecutePeakNormalizeFailureFallsBackToRawInput(t *testing.T) {
	d := newDescriptor(t, "song.vocals.mp3")
	d.SetBase("song")
	engine := &fakeEngine{}
	tc := &fakeTranscoder{peakErr: errors.New("clipping")}
	if err := newStage(config.Default(), engine, tc).Execute(context.Background(), d); err != nil {
		t.Fatalf("execute: %v", err)
	}
	want := filepath.Join(d.Path(), "song.vocals.mp3")
	if len(engine.inputs) != 1 || engine.inputs[0] != want {
		t.Fatalf("engine inputs = %v, want %s", engine.inputs, want)
	}
}

func TestExecuteDisabledIsNoOp(t *testing.T) {
	cfg := config.Default()
	cfg.Dereverb.Enabled = false
	d := newDescriptor(t, "song.vocals.mp3")
	engine := &fakeEngine{}
	if err := newStage(cfg, engine, &fakeTranscoder{}).Execute(context.Background(), d); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(engine.inputs) != 0 {
		t.Fatalf("engine ran while disabled: %v", engine.inputs)
	}
	if !d.StepCompleted("dereverberation") {
		t.Fatal("disabled stage should still record completion")
	}
}

func TestExecuteEngineFailure(t *testing.T) {
	d := newDescriptor(t, "song.vocals.mp3")
	d.SetBase("song")
	engine := &fakeEngine{err: errors.New("cuda out of memory")}
	err := newStage(config.Default(), engine, &fakeTranscoder{}).Execute(context.Background(), d)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
	if !d.StepFailed("dereverberation") {
		t.Fatal("failure not recorded")
	}
}

func TestExecuteNoAudioIsNotFound(t *testing.T) {
	d := newDescriptor(t)
	err := newStage(config.Default(), &fakeEngine{}, &fakeTranscoder{}).Execute(context.Background(), d)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}
