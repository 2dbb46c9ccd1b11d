package fileutil_test

import (
	"os"
	"path/filepath"
	"testing"

	"karaokeforge/internal/fileutil"
)

func TestCopyFilePreservesContent(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.bin")
	dst := filepath.Join(dir, "dst.bin")
	if err := os.WriteFile(src, []byte("payload"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := fileutil.CopyFile(src, dst); err != nil {
		t.Fatalf("copy: %v", err)
	}
	data, err := os.ReadFile(dst)
	if err != nil || string(data) != "payload" {
		t.Fatalf("unexpected copy result: %q err=%v", data, err)
	}
}

func TestReplaceFileOverwritesDestination(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "new")
	dst := filepath.Join(dir, "old")
	if err := os.WriteFile(src, []byte("new"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(dst, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := fileutil.ReplaceFile(src, dst); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if fileutil.Exists(src) {
		t.Fatal("source should be gone after replace")
	}
	data, _ := os.ReadFile(dst)
	if string(data) != "new" {
		t.Fatalf("destination not replaced: %q", data)
	}
}

func TestCopyDirRecursive(t *testing.T) {
	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "backup")
	if err := os.MkdirAll(filepath.Join(src, "nested"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(src, "nested", "f.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := fileutil.CopyDir(src, dst); err != nil {
		t.Fatalf("copy dir: %v", err)
	}
	if !fileutil.Exists(filepath.Join(dst, "nested", "f.txt")) {
		t.Fatal("nested file missing from copy")
	}
}
