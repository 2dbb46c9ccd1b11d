package workset

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Mode enumerates how a job entered the pipeline. It determines which stages
// run and in what order.
type Mode string

const (
	ModeUSDB         Mode = "usdb"
	ModeMagicSong    Mode = "magic-song"
	ModeMagicVideo   Mode = "magic-video"
	ModeMagicYouTube Mode = "magic-youtube"
	ModeFile         Mode = "file"
	ModeCache        Mode = "cache"
	ModeServerVideo  Mode = "server-video"
)

var modeSet = map[Mode]struct{}{
	ModeUSDB:         {},
	ModeMagicSong:    {},
	ModeMagicVideo:   {},
	ModeMagicYouTube: {},
	ModeFile:         {},
	ModeCache:        {},
	ModeServerVideo:  {},
}

// ParseMode converts a string into a known Mode.
func ParseMode(value string) (Mode, bool) {
	normalized := Mode(strings.ToLower(strings.TrimSpace(value)))
	_, ok := modeSet[normalized]
	return normalized, ok
}

// RequiresVideo reports whether the mode needs a video file in the folder.
func (m Mode) RequiresVideo() bool {
	switch m {
	case ModeUSDB, ModeMagicVideo, ModeMagicYouTube, ModeServerVideo:
		return true
	default:
		return false
	}
}

// Status is the simple terminal/non-terminal flag each stage sets
// independently. It is not a state machine.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusSkipped    Status = "skipped"
)

// Descriptor is the per-job mutable record every stage reads and extends.
// It is owned by the single pipeline worker and never shared across
// goroutines.
type Descriptor struct {
	Artist    string
	Title     string
	Mode      Mode
	SourceURL string
	SongID    int

	baseDir string
	folder  string
	path    string

	status Status
	base   string

	inputs  []string
	outputs []string
	temps   []string
	keeps   []string

	completed map[string]struct{}
	failed    map[string]struct{}
	stepOrder []string

	meta map[string]string
}

// New constructs a Descriptor and eagerly creates the working folder so the
// folder-path invariant holds for every later stage.
func New(baseDir, folder string, mode Mode) (*Descriptor, error) {
	baseDir = strings.TrimSpace(baseDir)
	folder = strings.TrimSpace(folder)
	if baseDir == "" || folder == "" {
		return nil, fmt.Errorf("workset: base directory and folder are required")
	}
	path := filepath.Join(baseDir, folder)
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("workset: create folder: %w", err)
	}
	return &Descriptor{
		Mode:      mode,
		baseDir:   baseDir,
		folder:    folder,
		path:      path,
		status:    StatusPending,
		completed: make(map[string]struct{}),
		failed:    make(map[string]struct{}),
		meta:      make(map[string]string),
	}, nil
}

// Path returns the resolved working folder (baseDir/folder).
func (d *Descriptor) Path() string { return d.path }

// Folder returns the folder name relative to the base directory.
func (d *Descriptor) Folder() string { return d.folder }

// BaseDir returns the library base directory.
func (d *Descriptor) BaseDir() string { return d.baseDir }

// Status returns the current job status flag.
func (d *Descriptor) Status() Status { return d.status }

// SetStatus records the job status flag.
func (d *Descriptor) SetStatus(s Status) { d.status = s }

// SetBase fixes the canonical base filename all stage outputs derive from.
// The first non-empty value wins; later calls are ignored so the naming
// contract stays stable across stages.
func (d *Descriptor) SetBase(base string) {
	base = strings.TrimSpace(base)
	if base == "" || d.base != "" {
		return
	}
	d.base = base
}

// Base returns the canonical base filename, empty until a stage chooses one.
func (d *Descriptor) Base() string { return d.base }

// CanonicalPath builds the absolute path of a canonical stage artifact,
// e.g. CanonicalPath(SuffixVocals, "mp3").
func (d *Descriptor) CanonicalPath(suffix, ext string) string {
	return filepath.Join(d.path, CanonicalName(d.base, suffix, ext))
}

// AddInput records a pre-existing source the pipeline consumed.
func (d *Descriptor) AddInput(path string) {
	d.inputs = appendUnique(d.inputs, path)
}

// AddOutput records a file a stage wrote. Every temp and keep file is also an
// output; this list is the superset used for reporting and cleanup.
func (d *Descriptor) AddOutput(path string) {
	d.outputs = appendUnique(d.outputs, path)
}

// AddTemp marks an output as disposable. A file cannot be both temp and keep;
// marking temp removes any prior keep entry.
func (d *Descriptor) AddTemp(path string) {
	d.AddOutput(path)
	d.keeps = remove(d.keeps, path)
	d.temps = appendUnique(d.temps, path)
}

// AddKeep whitelists an output as permanent. Marking keep removes any prior
// temp entry.
func (d *Descriptor) AddKeep(path string) {
	d.AddOutput(path)
	d.temps = remove(d.temps, path)
	d.keeps = appendUnique(d.keeps, path)
}

// Inputs returns a copy of the input-file ledger in insertion order.
func (d *Descriptor) Inputs() []string { return copySlice(d.inputs) }

// Outputs returns a copy of the output-file ledger in insertion order.
func (d *Descriptor) Outputs() []string { return copySlice(d.outputs) }

// Temps returns a copy of the temp-file ledger in insertion order.
func (d *Descriptor) Temps() []string { return copySlice(d.temps) }

// Keeps returns a copy of the keep-file ledger in insertion order.
func (d *Descriptor) Keeps() []string { return copySlice(d.keeps) }

// MarkCompleted records a finished step, clearing any earlier failure mark for
// the same name. The completed and failed sets stay disjoint per step.
func (d *Descriptor) MarkCompleted(step string) {
	delete(d.failed, step)
	if _, seen := d.completed[step]; !seen {
		d.stepOrder = append(d.stepOrder, step)
	}
	d.completed[step] = struct{}{}
}

// MarkFailed records a failed step, clearing any earlier completion mark.
func (d *Descriptor) MarkFailed(step string) {
	delete(d.completed, step)
	if _, seen := d.failed[step]; !seen {
		d.stepOrder = append(d.stepOrder, step)
	}
	d.failed[step] = struct{}{}
}

// StepCompleted reports whether the named step completed.
func (d *Descriptor) StepCompleted(step string) bool {
	_, ok := d.completed[step]
	return ok
}

// StepFailed reports whether the named step failed.
func (d *Descriptor) StepFailed(step string) bool {
	_, ok := d.failed[step]
	return ok
}

// CompletedSteps returns completed step names in first-marked order.
func (d *Descriptor) CompletedSteps() []string {
	steps := make([]string, 0, len(d.completed))
	for _, step := range d.stepOrder {
		if _, ok := d.completed[step]; ok {
			steps = append(steps, step)
		}
	}
	return steps
}

// FailedSteps returns failed step names in first-marked order.
func (d *Descriptor) FailedSteps() []string {
	steps := make([]string, 0, len(d.failed))
	for _, step := range d.stepOrder {
		if _, ok := d.failed[step]; ok {
			steps = append(steps, step)
		}
	}
	return steps
}

// SetMeta stores a free-form key/value used for inter-stage signaling.
func (d *Descriptor) SetMeta(key, value string) {
	d.meta[key] = value
}

// Meta returns the value for key and whether it was set.
func (d *Descriptor) Meta(key string) (string, bool) {
	v, ok := d.meta[key]
	return v, ok
}

func appendUnique(list []string, value string) []string {
	value = strings.TrimSpace(value)
	if value == "" {
		return list
	}
	for _, existing := range list {
		if existing == value {
			return list
		}
	}
	return append(list, value)
}

func remove(list []string, value string) []string {
	out := list[:0]
	for _, existing := range list {
		if existing != value {
			out = append(out, existing)
		}
	}
	return out
}

func copySlice(list []string) []string {
	cp := make([]string, len(list))
	copy(cp, list)
	return cp
}
