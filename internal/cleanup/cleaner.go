package cleanup

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"karaokeforge/internal/config"
	"karaokeforge/internal/fileutil"
	"karaokeforge/internal/logging"
	"karaokeforge/internal/services"
	"karaokeforge/internal/stage"
	"karaokeforge/internal/workset"
)

// scratchDirs are engine working subfolders always removed, regardless of
// ledger state.
var scratchDirs = []string{"separated", "dereverb_vocals", "dereverb_others"}

// Cleaner deletes the files the pipeline created except the whitelisted
// final set, driven entirely by the descriptor's ledger. Files the pipeline
// never recorded are left untouched; users park covers and alternate mixes
// in job folders.
type Cleaner struct {
	cfg    *config.Config
	logger *slog.Logger
}

// NewCleaner creates the stage handler.
func NewCleaner(cfg *config.Config, logger *slog.Logger) *Cleaner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Cleaner{
		cfg:    cfg,
		logger: logger.With(logging.String(logging.FieldComponent, "cleanup")),
	}
}

func (c *Cleaner) Prepare(ctx context.Context, d *workset.Descriptor) error {
	if d == nil {
		return services.Wrap(services.ErrValidation, stage.StepCleanup, "prepare", "nil descriptor", nil)
	}
	return nil
}

func (c *Cleaner) Execute(ctx context.Context, d *workset.Descriptor) error {
	if err := c.run(ctx, d); err != nil {
		d.MarkFailed(stage.StepCleanup)
		return err
	}
	d.MarkCompleted(stage.StepCleanup)
	return nil
}

func (c *Cleaner) run(ctx context.Context, d *workset.Descriptor) error {
	if c.cfg.Cleanup.Backup && !c.cfg.Cleanup.DryRun {
		backup := d.Path() + "_backup"
		if err := fileutil.CopyDir(d.Path(), backup); err != nil {
			c.logger.Warn("pre-cleanup backup failed", logging.Error(err))
		}
	}

	keep := c.keepSet(d)
	var firstErr error

	for _, path := range c.removeSet(d, keep) {
		if c.cfg.Cleanup.DryRun {
			c.logger.Info("dry-run: would remove", logging.String("path", path))
			continue
		}
		if err := os.Remove(path); err != nil {
			c.logger.Warn("remove failed", logging.String("path", path), logging.Error(err))
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		c.logger.Debug("removed", logging.String("path", path))
	}

	for _, dir := range scratchDirs {
		full := filepath.Join(d.Path(), dir)
		if !fileutil.DirExists(full) {
			continue
		}
		if c.cfg.Cleanup.DryRun {
			c.logger.Info("dry-run: would remove scratch dir", logging.String("path", full))
			continue
		}
		if err := os.RemoveAll(full); err != nil {
			c.logger.Warn("scratch dir removal failed", logging.String("path", full), logging.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	c.removeResidualVocals(d, keep)

	if c.cfg.Cleanup.Reorganize && !c.cfg.Cleanup.DryRun {
		if err := c.reorganize(d); err != nil {
			c.logger.Warn("reorganization failed", logging.Error(err))
		}
	}

	if firstErr != nil {
		return services.Wrap(services.ErrTransient, stage.StepCleanup, "remove", "some removals failed", firstErr)
	}
	return nil
}

// keepSet is the whitelist: everything explicitly kept plus the canonical
// final artifacts that exist on disk.
func (c *Cleaner) keepSet(d *workset.Descriptor) map[string]struct{} {
	keep := make(map[string]struct{})
	for _, path := range d.Keeps() {
		keep[path] = struct{}{}
	}
	if d.Base() != "" {
		canonical := []string{
			d.CanonicalPath("", "mp3"),
			d.CanonicalPath(workset.SuffixNormalized, "mp3"),
			d.CanonicalPath(workset.SuffixHP2, "mp3"),
			d.CanonicalPath(workset.SuffixHP5, "mp3"),
			d.CanonicalPath("", "txt"),
		}
		for _, path := range canonical {
			if fileutil.Exists(path) {
				keep[path] = struct{}{}
			}
		}
	}
	return keep
}

// removeSet is (outputs ∪ temps) minus the keep set, existing regular files
// only. The ledger is the sole source; the folder is never scanned for
// victims.
func (c *Cleaner) removeSet(d *workset.Descriptor, keep map[string]struct{}) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, path := range append(d.Outputs(), d.Temps()...) {
		if _, dup := seen[path]; dup {
			continue
		}
		seen[path] = struct{}{}
		if _, kept := keep[path]; kept {
			continue
		}
		if !fileutil.Exists(path) {
			continue
		}
		out = append(out, path)
	}
	return out
}

// removeResidualVocals targets vocals-named leftovers outside the whitelist.
// The vocal stem is an intermediate unless a stage explicitly kept it.
func (c *Cleaner) removeResidualVocals(d *workset.Descriptor, keep map[string]struct{}) {
	entries, err := os.ReadDir(d.Path())
	if err != nil {
		return
	}
	documented := make(map[string]struct{})
	for _, path := range append(d.Outputs(), d.Temps()...) {
		documented[path] = struct{}{}
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".vocals.mp3") {
			continue
		}
		full := filepath.Join(d.Path(), entry.Name())
		if _, kept := keep[full]; kept {
			continue
		}
		if _, ok := documented[full]; !ok {
			continue
		}
		if c.cfg.Cleanup.DryRun {
			c.logger.Info("dry-run: would remove residual vocals", logging.String("path", full))
			continue
		}
		if err := os.Remove(full); err != nil {
			c.logger.Warn("residual vocals removal failed", logging.String("path", full), logging.Error(err))
		}
	}
}

// reorganize moves the surviving files into type subfolders.
func (c *Cleaner) reorganize(d *workset.Descriptor) error {
	entries, err := os.ReadDir(d.Path())
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		full := filepath.Join(d.Path(), entry.Name())
		var sub string
		switch {
		case workset.IsAudioFile(full):
			sub = "audio"
		case workset.IsVideoFile(full):
			sub = "video"
		case strings.EqualFold(filepath.Ext(full), ".txt"):
			sub = "lyrics"
		default:
			continue
		}
		target := filepath.Join(d.Path(), sub)
		if err := fileutil.EnsureDir(target); err != nil {
			return err
		}
		if err := os.Rename(full, filepath.Join(target, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

func (c *Cleaner) HealthCheck(ctx context.Context) stage.Health {
	return stage.Healthy(stage.StepCleanup)
}
