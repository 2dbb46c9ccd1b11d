package dereverberation

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"karaokeforge/internal/config"
	"karaokeforge/internal/fileutil"
	"karaokeforge/internal/logging"
	"karaokeforge/internal/services"
	"karaokeforge/internal/services/dereverb"
	"karaokeforge/internal/services/ffmpeg"
	"karaokeforge/internal/stage"
	"karaokeforge/internal/workset"
)

// Scratch subfolders the engine works in. Cleanup removes both
// unconditionally, so they are registered temp on every run.
const (
	ScratchVocals = "dereverb_vocals"
	ScratchOthers = "dereverb_others"
)

// Engine runs the dereverberation model over one vocal file.
type Engine interface {
	Process(ctx context.Context, input, outDir string) (string, error)
}

// Transcoder covers the pre-conditioning this stage needs.
type Transcoder interface {
	PeakNormalize(ctx context.Context, source, dest string) error
}

// Dereverberator cleans the isolated vocal track of reverb artifacts,
// producing {base}.dereverbed.mp3. The artifact is a disposable intermediate
// read directly from disk by transcription; it is output and temp, never
// keep.
type Dereverberator struct {
	cfg        *config.Config
	logger     *slog.Logger
	engine     Engine
	transcoder Transcoder
}

// NewDereverberator creates the stage handler with real collaborators.
func NewDereverberator(cfg *config.Config, logger *slog.Logger) *Dereverberator {
	return NewDereverberatorWithDependencies(cfg, logger,
		dereverb.NewClient(cfg.Tools.UVX, cfg.Dereverb.Backend, cfg.Dereverb.Model),
		ffmpeg.NewClient(cfg.Tools.FFmpeg, cfg.Tools.FFprobe),
	)
}

// NewDereverberatorWithDependencies allows injecting collaborators (used in tests).
func NewDereverberatorWithDependencies(cfg *config.Config, logger *slog.Logger, engine Engine, transcoder Transcoder) *Dereverberator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Dereverberator{
		cfg:        cfg,
		logger:     logger.With(logging.String(logging.FieldComponent, "dereverberation")),
		engine:     engine,
		transcoder: transcoder,
	}
}

func (r *Dereverberator) Prepare(ctx context.Context, d *workset.Descriptor) error {
	if d == nil {
		return services.Wrap(services.ErrValidation, stage.StepDereverberation, "prepare", "nil descriptor", nil)
	}
	return nil
}

func (r *Dereverberator) Execute(ctx context.Context, d *workset.Descriptor) error {
	if !r.cfg.Dereverb.Enabled {
		r.logger.Debug("dereverberation disabled")
		d.MarkCompleted(stage.StepDereverberation)
		return nil
	}
	if err := r.run(ctx, d); err != nil {
		d.MarkFailed(stage.StepDereverberation)
		return err
	}
	d.MarkCompleted(stage.StepDereverberation)
	return nil
}

func (r *Dereverberator) run(ctx context.Context, d *workset.Descriptor) error {
	input, err := r.resolveInput(d)
	if err != nil {
		return err
	}
	d.SetBase(workset.BaseFromPath(input))

	vocalScratch := filepath.Join(d.Path(), ScratchVocals)
	otherScratch := filepath.Join(d.Path(), ScratchOthers)
	d.AddTemp(vocalScratch)
	d.AddTemp(otherScratch)

	peaked := filepath.Join(d.Path(), ScratchOthers, "peaked.mp3")
	if err := fileutil.EnsureDir(otherScratch); err != nil {
		return services.Wrap(services.ErrTransient, stage.StepDereverberation, "scratch dir", otherScratch, err)
	}
	if err := services.Bounded(ctx, r.cfg.Workflow.TranscodeTimeout, func(ctx context.Context) error {
		return r.transcoder.PeakNormalize(ctx, input, peaked)
	}); err != nil {
		r.logger.Warn("peak normalization failed; using raw vocal input", logging.Error(err))
		peaked = input
	}

	var result string
	err = services.Bounded(ctx, r.cfg.Workflow.SeparationTimeout, func(ctx context.Context) error {
		var perr error
		result, perr = r.engine.Process(ctx, peaked, vocalScratch)
		return perr
	})
	if err != nil {
		return services.Wrap(services.ErrExternalTool, stage.StepDereverberation, "model", peaked, err)
	}

	dest := d.CanonicalPath(workset.SuffixDereverbed, "mp3")
	if err := fileutil.CopyFile(result, dest); err != nil {
		return services.Wrap(services.ErrTransient, stage.StepDereverberation, "copy result", result, err)
	}
	r.logger.Info("dereverberated vocal track", logging.String("dest", dest))
	d.AddOutput(dest)
	d.AddTemp(dest)
	return nil
}

// resolveInput prefers the canonical vocals artifact, then any vocals-named
// file, then any audio file.
func (r *Dereverberator) resolveInput(d *workset.Descriptor) (string, error) {
	if d.Base() != "" {
		if candidate := d.CanonicalPath(workset.SuffixVocals, "mp3"); fileutil.Exists(candidate) {
			return candidate, nil
		}
	}
	audio := workset.FindAudioFiles(d.Path())
	for _, path := range audio {
		if strings.HasSuffix(strings.ToLower(path), ".vocals.mp3") {
			return path, nil
		}
	}
	if len(audio) > 0 {
		return audio[0], nil
	}
	return "", services.Wrap(services.ErrNotFound, stage.StepDereverberation, "resolve input",
		"no vocal candidate in folder", nil)
}

func (r *Dereverberator) HealthCheck(ctx context.Context) stage.Health {
	if !r.cfg.Dereverb.Enabled {
		return stage.Healthy(stage.StepDereverberation)
	}
	if r.engine == nil || r.transcoder == nil {
		return stage.Unhealthy(stage.StepDereverberation, "collaborators not configured")
	}
	return stage.Healthy(stage.StepDereverberation)
}
