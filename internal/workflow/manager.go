package workflow

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"

	"karaokeforge/internal/acquisition"
	"karaokeforge/internal/cleanup"
	"karaokeforge/internal/config"
	"karaokeforge/internal/dereverberation"
	"karaokeforge/internal/logging"
	"karaokeforge/internal/normalization"
	"karaokeforge/internal/notifications"
	"karaokeforge/internal/queue"
	"karaokeforge/internal/remux"
	"karaokeforge/internal/separation"
	"karaokeforge/internal/services"
	"karaokeforge/internal/stage"
	"karaokeforge/internal/transcription"
	"karaokeforge/internal/workset"
)

// Stages bundles the pipeline's stage handlers in execution order.
type Stages struct {
	Acquisition     stage.Handler
	Normalization   stage.Handler
	Separation      stage.Handler
	Dereverberation stage.Handler
	Transcription   stage.Handler
	Remux           stage.Handler
	Cleanup         stage.Handler
}

// DefaultStages wires the real stage handlers.
func DefaultStages(cfg *config.Config, logger *slog.Logger) Stages {
	return Stages{
		Acquisition:     acquisition.NewAcquirer(cfg, logger),
		Normalization:   normalization.NewNormalizer(cfg, logger),
		Separation:      separation.NewSeparator(cfg, logger),
		Dereverberation: dereverberation.NewDereverberator(cfg, logger),
		Transcription:   transcription.NewTranscriber(cfg, logger),
		Remux:           remux.NewRemuxer(cfg, logger),
		Cleanup:         cleanup.NewCleaner(cfg, logger),
	}
}

// Manager drains the job queue with exactly one worker goroutine and runs
// each job through the mode-specific stage sequence. One worker is a
// deliberate constraint: the separation and transcription models own the GPU
// and each job exclusively owns its working folder.
type Manager struct {
	cfg      *config.Config
	store    *queue.Store
	notifier notifications.Service
	logger   *slog.Logger
	stages   Stages

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewManager creates the orchestrator. The notifier may be nil.
func NewManager(cfg *config.Config, store *queue.Store, notifier notifications.Service, logger *slog.Logger, stages Stages) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	if notifier == nil {
		notifier = notifications.NewService(nil, logger)
	}
	return &Manager{
		cfg:      cfg,
		store:    store,
		notifier: notifier,
		logger:   logger.With(logging.String(logging.FieldComponent, "workflow")),
		stages:   stages,
	}
}

// Enqueue accepts a job and reports its pending status.
func (m *Manager) Enqueue(job queue.Job) (queue.Job, error) {
	accepted, err := m.store.Enqueue(job)
	if err != nil {
		return queue.Job{}, err
	}
	m.notify(accepted, queue.StatusPending)
	m.logger.Info("job enqueued",
		logging.String(logging.FieldJobID, accepted.ID.String()),
		logging.String("title", accepted.Title),
		logging.Int("position", m.store.Pending()),
	)
	return accepted, nil
}

// Start launches the worker. Stage health problems are logged, not fatal;
// a stage may recover by the time a job reaches it.
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		return
	}
	for _, health := range m.healthChecks(ctx) {
		if !health.Ready {
			m.logger.Warn("stage not ready",
				logging.String(logging.FieldStage, health.Name),
				logging.String("detail", health.Detail),
			)
		}
	}
	workerCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.wg.Add(1)
	go m.worker(workerCtx)
}

// Stop cancels the worker and waits for the in-flight job to finish its
// current stage sequence.
func (m *Manager) Stop() {
	m.mu.Lock()
	cancel := m.cancel
	m.cancel = nil
	m.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	m.wg.Wait()
}

func (m *Manager) healthChecks(ctx context.Context) []stage.Health {
	handlers := []stage.Handler{
		m.stages.Acquisition, m.stages.Normalization, m.stages.Separation,
		m.stages.Dereverberation, m.stages.Transcription, m.stages.Remux,
		m.stages.Cleanup,
	}
	out := make([]stage.Health, 0, len(handlers))
	for _, h := range handlers {
		if h != nil {
			out = append(out, h.HealthCheck(ctx))
		}
	}
	return out
}

func (m *Manager) worker(ctx context.Context) {
	defer m.wg.Done()
	for {
		job, ok := m.store.Dequeue(ctx)
		if !ok {
			return
		}
		m.process(ctx, job)
	}
}

// process runs one job to its terminal status. Acquisition is the only
// fatal gate; intermediate stage failures are recorded and the sequence
// continues, trusting each stage's fallback to leave the folder consumable.
func (m *Manager) process(ctx context.Context, job queue.Job) {
	ctx = services.WithJobID(ctx, job.ID.String())
	logger := m.logger.With(logging.String(logging.FieldJobID, job.ID.String()))

	d, err := m.buildDescriptor(job)
	if err != nil {
		logger.Error("descriptor construction failed", logging.Error(err))
		m.notifyFailure(job, err)
		return
	}

	m.notify(job, queue.StatusDownloading)
	if err := m.runStage(ctx, logger, m.stages.Acquisition, stage.StepAcquisition, d); err != nil {
		logger.Error("acquisition failed; abandoning job", logging.Error(err))
		m.notifyFailure(job, err)
		return
	}

	m.runTolerated(ctx, logger, m.stages.Normalization, stage.StepNormalization, d)

	m.notify(job, queue.StatusSeparating)
	m.runTolerated(ctx, logger, m.stages.Separation, stage.StepSeparation, d)

	m.notify(job, queue.StatusDereverbing)
	m.runTolerated(ctx, logger, m.stages.Dereverberation, stage.StepDereverberation, d)

	m.notify(job, queue.StatusTranscribing)
	m.runTolerated(ctx, logger, m.stages.Transcription, stage.StepTranscription, d)

	if m.shouldRemux(d) {
		m.runTolerated(ctx, logger, m.stages.Remux, stage.StepRemux, d)
	}

	m.runTolerated(ctx, logger, m.stages.Cleanup, stage.StepCleanup, d)

	m.finish(logger, job, d)
}

func (m *Manager) buildDescriptor(job queue.Job) (*workset.Descriptor, error) {
	baseDir, folder := m.cfg.Paths.LibraryDir, job.Folder
	if filepath.IsAbs(job.Folder) {
		baseDir, folder = filepath.Dir(job.Folder), filepath.Base(job.Folder)
	}
	d, err := workset.New(baseDir, folder, job.Mode)
	if err != nil {
		return nil, err
	}
	d.Artist = job.Artist
	d.Title = job.Title
	d.SourceURL = job.SourceURL
	d.SongID = job.SongID
	return d, nil
}

func (m *Manager) runStage(ctx context.Context, logger *slog.Logger, h stage.Handler, name string, d *workset.Descriptor) error {
	if h == nil {
		return nil
	}
	ctx = services.WithStage(ctx, name)
	stageLogger := logger.With(logging.String(logging.FieldStage, name))
	if err := h.Prepare(ctx, d); err != nil {
		return err
	}
	stageLogger.Info("stage starting")
	if err := h.Execute(ctx, d); err != nil {
		return err
	}
	stageLogger.Info("stage finished")
	return nil
}

// runTolerated records a failure and moves on.
func (m *Manager) runTolerated(ctx context.Context, logger *slog.Logger, h stage.Handler, name string, d *workset.Descriptor) {
	if err := m.runStage(ctx, logger, h, name, d); err != nil {
		logger.Error("stage failed; continuing pipeline",
			logging.String(logging.FieldStage, name),
			logging.Error(err),
		)
	}
}

// shouldRemux applies the mode rules: video-bearing modes always remux;
// audio modes remux only a freshly downloaded video.
func (m *Manager) shouldRemux(d *workset.Descriptor) bool {
	if len(workset.FindVideoFiles(d.Path())) == 0 {
		return false
	}
	if d.Mode.RequiresVideo() {
		return true
	}
	pre, _ := d.Meta(acquisition.MetaVideoPreexisting)
	return pre == "false"
}

// finish derives the externally addressable result path and reports the
// terminal status. Transcription failing means no karaoke asset exists, so
// the job is failed even though later stages ran.
func (m *Manager) finish(logger *slog.Logger, job queue.Job, d *workset.Descriptor) {
	result := d.Path()
	if d.Base() != "" {
		result = d.CanonicalPath("", "txt")
	}
	if d.StepFailed(stage.StepTranscription) || d.StepFailed(stage.StepAcquisition) {
		d.SetStatus(workset.StatusFailed)
		logger.Error("job failed",
			logging.String("result", result),
			logging.Any("failed_steps", d.FailedSteps()),
		)
		m.notify(job, queue.StatusFailed)
		return
	}
	d.SetStatus(workset.StatusCompleted)
	logger.Info("job finished",
		logging.String("result", result),
		logging.Any("completed_steps", d.CompletedSteps()),
	)
	m.notify(job, queue.StatusFinished)
}

func (m *Manager) notify(job queue.Job, status queue.Status) {
	m.store.SetStatus(job.ID, status)
	m.notifier.Publish(notifications.Event{
		Artist:     job.Artist,
		Title:      job.Title,
		Status:     status,
		ID:         job.ID.String(),
		YouTubeURL: job.SourceURL,
	})
}

// notifyFailure reports the terminal failure with the human-readable cause,
// stripped of the sentinel prefix.
func (m *Manager) notifyFailure(job queue.Job, err error) {
	m.store.SetStatus(job.ID, queue.StatusFailed)
	m.notifier.Publish(notifications.Event{
		Artist:     job.Artist,
		Title:      job.Title,
		Status:     queue.StatusFailed,
		ID:         job.ID.String(),
		YouTubeURL: job.SourceURL,
		Error:      services.Message(err),
	})
}
