package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeTestConfig(t *testing.T, libraryDir string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.toml")
	body := "[paths]\nlibrary_dir = \"" + libraryDir + "\"\nlog_dir = \"" + t.TempDir() + "\"\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	out, err := runCLI(t, "config", "init", "-c", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, target) {
		t.Fatalf("output does not mention %s: %q", target, out)
	}

	body, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(body), "[paths]") {
		t.Fatalf("sample config missing paths section:\n%s", body)
	}

	if _, err := runCLI(t, "config", "init", "-c", target); err == nil {
		t.Fatal("expected second init without --overwrite to fail")
	}
	if _, err := runCLI(t, "config", "init", "-c", target, "--overwrite"); err != nil {
		t.Fatalf("init --overwrite: %v", err)
	}
}

func TestConfigValidateReportsPath(t *testing.T) {
	path := writeTestConfig(t, t.TempDir())

	out, err := runCLI(t, "config", "validate", "-c", path)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	if !strings.Contains(out, "is valid") {
		t.Fatalf("unexpected validate output: %q", out)
	}
}

func TestConfigValidateRejectsBrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := "[logging]\nlevel = \"loud\"\n[paths]\nlibrary_dir = \"/tmp\"\nlog_dir = \"/tmp\"\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := runCLI(t, "config", "validate", "-c", path); err == nil {
		t.Fatal("expected validation failure for bad logging level")
	}
}

func TestQueueCommandReportsArtifacts(t *testing.T) {
	library := t.TempDir()
	done := filepath.Join(library, "Artist - Done")
	if err := os.MkdirAll(done, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"song.mp3", "song.normalized.mp3", "song.hp2.mp3", "song.vocals.mp3", "song.txt"} {
		if err := os.WriteFile(filepath.Join(done, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	fresh := filepath.Join(library, "Artist - Fresh")
	if err := os.MkdirAll(fresh, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(fresh, "raw.mp3"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	path := writeTestConfig(t, library)
	out, err := runCLI(t, "queue", "-c", path)
	if err != nil {
		t.Fatalf("queue: %v", err)
	}
	for _, folder := range []string{"Artist - Done", "Artist - Fresh"} {
		if !strings.Contains(out, folder) {
			t.Fatalf("output missing folder %q:\n%s", folder, out)
		}
	}
}

func TestQueueCommandEmptyLibrary(t *testing.T) {
	path := writeTestConfig(t, t.TempDir())

	out, err := runCLI(t, "queue", "-c", path)
	if err != nil {
		t.Fatalf("queue: %v", err)
	}
	if !strings.Contains(out, "library is empty") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestFolderRowMarksExistingArtifacts(t *testing.T) {
	library := t.TempDir()
	dir := filepath.Join(library, "folder")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"song.mp3", "song.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	row := folderRow(library, "folder")
	want := []string{"folder", "yes", "-", "-", "-", "yes"}
	for i, cell := range want {
		if row[i] != cell {
			t.Fatalf("row[%d] = %q, want %q (row %v)", i, row[i], cell, row)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := runCLI(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if strings.TrimSpace(out) == "" {
		t.Fatal("version output is empty")
	}
}
