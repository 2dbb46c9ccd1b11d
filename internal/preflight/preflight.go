package preflight

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"karaokeforge/internal/config"
	"karaokeforge/internal/deps"
)

// MinFreeBytes is the free-space floor for the library filesystem. Source
// videos plus stems for one job routinely run into the gigabytes.
const MinFreeBytes = 2 << 30

// Result is one startup check outcome.
type Result struct {
	Name   string
	OK     bool
	Detail string
}

// Run executes every startup check. The daemon refuses to accept jobs when
// any required check fails.
func Run(cfg *config.Config) []Result {
	results := []Result{checkLibraryDir(cfg.Paths.LibraryDir)}
	results = append(results, checkDiskSpace(cfg.Paths.LibraryDir))
	for _, status := range deps.Check(deps.DefaultRequirements(cfg)) {
		detail := status.Path
		if !status.Found {
			detail = "not found in PATH"
		}
		results = append(results, Result{
			Name:   "binary " + status.Requirement.Binary,
			OK:     status.Found || status.Requirement.Optional,
			Detail: detail,
		})
	}
	return results
}

// Passed reports whether every check succeeded.
func Passed(results []Result) bool {
	for _, r := range results {
		if !r.OK {
			return false
		}
	}
	return true
}

func checkLibraryDir(dir string) Result {
	name := "library dir writable"
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	probe := filepath.Join(dir, ".preflight")
	if err := os.WriteFile(probe, []byte("probe"), 0o644); err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	os.Remove(probe)
	return Result{Name: name, OK: true, Detail: dir}
}

func checkDiskSpace(dir string) Result {
	name := "disk space"
	var stat unix.Statfs_t
	if err := unix.Statfs(dir, &stat); err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	free := stat.Bavail * uint64(stat.Bsize)
	detail := fmt.Sprintf("%.1f GiB free", float64(free)/float64(1<<30))
	if free < MinFreeBytes {
		return Result{Name: name, Detail: detail + " (below minimum)"}
	}
	return Result{Name: name, OK: true, Detail: detail}
}
