package workset_test

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"karaokeforge/internal/workset"
)

func TestNewCreatesFolderEagerly(t *testing.T) {
	base := t.TempDir()
	d, err := workset.New(base, "Artist - Title", workset.ModeFile)
	if err != nil {
		t.Fatalf("new descriptor: %v", err)
	}
	if d.Path() != filepath.Join(base, "Artist - Title") {
		t.Fatalf("unexpected path: %s", d.Path())
	}
	info, err := os.Stat(d.Path())
	if err != nil || !info.IsDir() {
		t.Fatalf("folder should exist: %v", err)
	}
	if d.Status() != workset.StatusPending {
		t.Fatalf("unexpected initial status: %s", d.Status())
	}
}

func TestLedgerTempKeepDisjoint(t *testing.T) {
	d := newDescriptor(t)
	d.AddTemp("song.reduced.mp3")
	d.AddKeep("song.reduced.mp3")
	if got := d.Temps(); len(got) != 0 {
		t.Fatalf("keep should clear temp entry, temps=%v", got)
	}
	if got := d.Keeps(); !reflect.DeepEqual(got, []string{"song.reduced.mp3"}) {
		t.Fatalf("unexpected keeps: %v", got)
	}
	// Flip back.
	d.AddTemp("song.reduced.mp3")
	if got := d.Keeps(); len(got) != 0 {
		t.Fatalf("temp should clear keep entry, keeps=%v", got)
	}
	// Both markings leave exactly one output entry.
	if got := d.Outputs(); !reflect.DeepEqual(got, []string{"song.reduced.mp3"}) {
		t.Fatalf("unexpected outputs: %v", got)
	}
}

func TestLedgerInsertionOrderAndDedupe(t *testing.T) {
	d := newDescriptor(t)
	d.AddOutput("b.mp3")
	d.AddOutput("a.mp3")
	d.AddOutput("b.mp3")
	if got := d.Outputs(); !reflect.DeepEqual(got, []string{"b.mp3", "a.mp3"}) {
		t.Fatalf("unexpected outputs: %v", got)
	}
}

func TestStepSetsStayDisjoint(t *testing.T) {
	d := newDescriptor(t)
	d.MarkFailed("audio_separation")
	d.MarkCompleted("audio_separation")
	if d.StepFailed("audio_separation") {
		t.Fatal("completion should clear failure mark")
	}
	if !d.StepCompleted("audio_separation") {
		t.Fatal("step should be completed")
	}
	d.MarkFailed("audio_separation")
	if d.StepCompleted("audio_separation") {
		t.Fatal("failure should clear completion mark")
	}
	if got := d.FailedSteps(); !reflect.DeepEqual(got, []string{"audio_separation"}) {
		t.Fatalf("unexpected failed steps: %v", got)
	}
}

func TestSetBaseFirstValueWins(t *testing.T) {
	d := newDescriptor(t)
	d.SetBase("abc123")
	d.SetBase("other")
	if d.Base() != "abc123" {
		t.Fatalf("base changed after first set: %s", d.Base())
	}
	want := filepath.Join(d.Path(), "abc123.vocals.mp3")
	if got := d.CanonicalPath(workset.SuffixVocals, "mp3"); got != want {
		t.Fatalf("canonical path mismatch: %s", got)
	}
}

func newDescriptor(t *testing.T) *workset.Descriptor {
	t.Helper()
	d, err := workset.New(t.TempDir(), "song", workset.ModeFile)
	if err != nil {
		t.Fatalf("new descriptor: %v", err)
	}
	return d
}
