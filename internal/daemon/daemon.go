package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"karaokeforge/internal/config"
	"karaokeforge/internal/logging"
	"karaokeforge/internal/workflow"
)

// Daemon wraps the workflow manager with a single-instance file lock. Two
// daemons sharing a library directory would race on job folders.
type Daemon struct {
	cfg     *config.Config
	logger  *slog.Logger
	manager *workflow.Manager
	lock    *flock.Flock
}

// New creates the daemon around a constructed manager.
func New(cfg *config.Config, logger *slog.Logger, manager *workflow.Manager) *Daemon {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Daemon{
		cfg:     cfg,
		logger:  logger.With(logging.String(logging.FieldComponent, "daemon")),
		manager: manager,
		lock:    flock.New(lockPath(cfg)),
	}
}

func lockPath(cfg *config.Config) string {
	dir := cfg.Paths.LogDir
	if dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "karaokeforge.lock")
}

// Run acquires the instance lock, starts the worker, and blocks until the
// context ends.
func (d *Daemon) Run(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(d.lock.Path()), 0o755); err != nil {
		return fmt.Errorf("daemon: lock directory: %w", err)
	}
	locked, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("daemon: acquire lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("daemon: another instance holds %s", d.lock.Path())
	}
	defer func() {
		if err := d.lock.Unlock(); err != nil {
			d.logger.Warn("release lock failed", logging.Error(err))
		}
	}()

	d.logger.Info("daemon started", logging.String("lock", d.lock.Path()))
	d.manager.Start(ctx)
	<-ctx.Done()
	d.logger.Info("daemon stopping")
	d.manager.Stop()
	return nil
}
