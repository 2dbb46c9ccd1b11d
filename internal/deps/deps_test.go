package deps_test

import (
	"testing"

	"karaokeforge/internal/config"
	"karaokeforge/internal/deps"
)

func TestDefaultRequirementsUseConfiguredNames(t *testing.T) {
	cfg := config.Default()
	cfg.Tools.FFmpeg = "ffmpeg-custom"
	reqs := deps.DefaultRequirements(&cfg)
	if len(reqs) != 5 {
		t.Fatalf("requirements = %d", len(reqs))
	}
	if reqs[0].Binary != "ffmpeg-custom" {
		t.Fatalf("first requirement binary = %q", reqs[0].Binary)
	}
}

func TestCheckReportsMissingBinary(t *testing.T) {
	statuses := deps.Check([]deps.Requirement{
		{Name: "missing", Binary: "definitely-not-a-real-binary-name"},
	})
	if len(statuses) != 1 {
		t.Fatalf("statuses = %d", len(statuses))
	}
	if statuses[0].Found {
		t.Fatal("nonexistent binary reported found")
	}
}
