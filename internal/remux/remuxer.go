package remux

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"karaokeforge/internal/config"
	"karaokeforge/internal/fileutil"
	"karaokeforge/internal/logging"
	"karaokeforge/internal/services"
	"karaokeforge/internal/services/ffmpeg"
	"karaokeforge/internal/stage"
	"karaokeforge/internal/workset"
)

// Transcoder covers the container operations remuxing needs.
type Transcoder interface {
	StripAudio(ctx context.Context, source, dest string) error
	ConvertContainer(ctx context.Context, source, dest string) error
}

// Remuxer mutes or re-containers every video in the job folder. Zero videos
// is a no-op success; with videos present at least one must succeed.
type Remuxer struct {
	cfg        *config.Config
	logger     *slog.Logger
	transcoder Transcoder
}

// NewRemuxer creates the stage handler with a real ffmpeg collaborator.
func NewRemuxer(cfg *config.Config, logger *slog.Logger) *Remuxer {
	return NewRemuxerWithDependencies(cfg, logger, ffmpeg.NewClient(cfg.Tools.FFmpeg, cfg.Tools.FFprobe))
}

// NewRemuxerWithDependencies allows injecting the transcoder (used in tests).
func NewRemuxerWithDependencies(cfg *config.Config, logger *slog.Logger, transcoder Transcoder) *Remuxer {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Remuxer{
		cfg:        cfg,
		logger:     logger.With(logging.String(logging.FieldComponent, "remux")),
		transcoder: transcoder,
	}
}

func (r *Remuxer) Prepare(ctx context.Context, d *workset.Descriptor) error {
	if d == nil {
		return services.Wrap(services.ErrValidation, stage.StepRemux, "prepare", "nil descriptor", nil)
	}
	return nil
}

func (r *Remuxer) Execute(ctx context.Context, d *workset.Descriptor) error {
	if err := r.run(ctx, d); err != nil {
		d.MarkFailed(stage.StepRemux)
		return err
	}
	d.MarkCompleted(stage.StepRemux)
	return nil
}

func (r *Remuxer) run(ctx context.Context, d *workset.Descriptor) error {
	videos := workset.FindVideoFiles(d.Path())
	if len(videos) == 0 {
		r.logger.Debug("no videos to remux", logging.String("folder", d.Path()))
		return nil
	}

	// With the audio side fully extracted and separated, videos get muted in
	// place. Before that point only the container is normalized.
	strip := d.StepCompleted(stage.StepSeparation) || len(workset.FindAudioFiles(d.Path())) > 0

	succeeded := 0
	var lastErr error
	for _, video := range videos {
		var err error
		if strip {
			err = r.stripInPlace(ctx, d, video)
		} else {
			err = r.convert(ctx, d, video)
		}
		if err != nil {
			r.logger.Warn("remux failed", logging.String("video", video), logging.Error(err))
			lastErr = err
			continue
		}
		succeeded++
	}
	if succeeded == 0 {
		return services.Wrap(services.ErrExternalTool, stage.StepRemux, "remux",
			"every video failed", lastErr)
	}
	return nil
}

// stripInPlace removes the audio track: strip into a temp file, then rename
// over the original so a crash never leaves a half-written video behind.
func (r *Remuxer) stripInPlace(ctx context.Context, d *workset.Descriptor, video string) error {
	if r.cfg.Remux.KeepOriginal {
		backup := video + ".bak"
		if err := fileutil.CopyFile(video, backup); err != nil {
			r.logger.Warn("backup copy failed", logging.String("video", video), logging.Error(err))
		} else {
			d.AddKeep(backup)
		}
	}
	tmp := video + ".muted.tmp" + filepath.Ext(video)
	if err := services.Bounded(ctx, r.cfg.Workflow.TranscodeTimeout, func(ctx context.Context) error {
		return r.transcoder.StripAudio(ctx, video, tmp)
	}); err != nil {
		return err
	}
	if err := fileutil.ReplaceFile(tmp, video); err != nil {
		return err
	}
	r.logger.Info("muted video", logging.String("video", video))
	d.AddKeep(video)
	return nil
}

// convert rewrites the container only, leaving audio intact, under a new
// name.
func (r *Remuxer) convert(ctx context.Context, d *workset.Descriptor, video string) error {
	dest := strings.TrimSuffix(video, filepath.Ext(video)) + ".remux.mp4"
	if err := services.Bounded(ctx, r.cfg.Workflow.TranscodeTimeout, func(ctx context.Context) error {
		return r.transcoder.ConvertContainer(ctx, video, dest)
	}); err != nil {
		return err
	}
	r.logger.Info("converted video container", logging.String("dest", dest))
	d.AddInput(video)
	d.AddKeep(dest)
	return nil
}

func (r *Remuxer) HealthCheck(ctx context.Context) stage.Health {
	if r.transcoder == nil {
		return stage.Unhealthy(stage.StepRemux, "transcoder not configured")
	}
	return stage.Healthy(stage.StepRemux)
}
