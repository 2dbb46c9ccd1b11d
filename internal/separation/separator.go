package separation

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
	sepsvc "karaokeforge/internal/services/separator"
	"karaokeforge/internal/stage"
	"karaokeforge/internal/workset"
)

// ScratchDir is the engine's working subfolder inside the job folder.
// Cleanup removes it unconditionally.
const ScratchDir = "separated"

// highpassFilter approximates vocal removal when the separation engine is
// unavailable. Crude, but it keeps the canonical artifact contract intact.
const highpassFilter = "highpass=f=300"

// Engine runs one separation model pass.
type Engine interface {
	Separate(ctx context.Context, input, model, outDir string) (sepsvc.Stems, error)
}

// Transcoder covers the ffmpeg operations separation needs around the engine.
type Transcoder interface {
	ReduceGain(ctx context.Context, source, dest string, db float64) error
	ExtractAudio(ctx context.Context, source, dest string) error
	ApplyFilter(ctx context.Context, source, dest, filter string) error
}

// Separator splits the best available audio into the three canonical
// artifacts: {base}.hp2.mp3 (alternate instrumental), {base}.hp5.mp3
// (primary instrumental), and {base}.vocals.mp3. The engine failing outright
// degrades to a highpass-filter approximation; downstream stages never need
// to know which path ran.
type Separator struct {
	cfg        *config.Config
	logger     *slog.Logger
	engine     Engine
	transcoder Transcoder
}

// NewSeparator creates the stage handler with real subprocess collaborators.
func NewSeparator(cfg *config.Config, logger *slog.Logger) *Separator {
	return NewSeparatorWithDependencies(cfg, logger,
		sepsvc.NewClient(cfg.Tools.Separator),
		ffmpeg.NewClient(cfg.Tools.FFmpeg, cfg.Tools.FFprobe),
	)
}

// NewSeparatorWithDependencies allows injecting collaborators (used in tests).
func NewSeparatorWithDependencies(cfg *config.Config, logger *slog.Logger, engine Engine, transcoder Transcoder) *Separator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Separator{
		cfg:        cfg,
		logger:     logger.With(logging.String(logging.FieldComponent, "separation")),
		engine:     engine,
		transcoder: transcoder,
	}
}

func (s *Separator) Prepare(ctx context.Context, d *workset.Descriptor) error {
	if d == nil {
		return services.Wrap(services.ErrValidation, stage.StepSeparation, "prepare", "nil descriptor", nil)
	}
	return nil
}

func (s *Separator) Execute(ctx context.Context, d *workset.Descriptor) error {
	if err := s.run(ctx, d); err != nil {
		d.MarkFailed(stage.StepSeparation)
		return err
	}
	d.MarkCompleted(stage.StepSeparation)
	return nil
}

func (s *Separator) run(ctx context.Context, d *workset.Descriptor) error {
	hp2 := d.CanonicalPath(workset.SuffixHP2, "mp3")
	hp5 := d.CanonicalPath(workset.SuffixHP5, "mp3")
	vocals := d.CanonicalPath(workset.SuffixVocals, "mp3")

	// Idempotence: all three targets existing short-circuits the models.
	if d.Base() != "" && fileutil.Exists(hp2) && fileutil.Exists(hp5) && fileutil.Exists(vocals) {
		s.logger.Info("separation artifacts already present", logging.String("base", d.Base()))
		d.AddKeep(hp2)
		d.AddKeep(hp5)
		d.AddKeep(vocals)
		return nil
	}

	input, err := s.resolveInput(ctx, d)
	if err != nil {
		return err
	}
	d.SetBase(workset.BaseFromPath(input))
	hp2 = d.CanonicalPath(workset.SuffixHP2, "mp3")
	hp5 = d.CanonicalPath(workset.SuffixHP5, "mp3")
	vocals = d.CanonicalPath(workset.SuffixVocals, "mp3")

	input = s.reduceGain(ctx, d, input)

	// Each model pass writes into its own scratch subfolder. The engine
	// names stems itself, and locating them must never see another pass's
	// files.
	scratch := filepath.Join(d.Path(), ScratchDir)
	if err := s.separate(ctx, input, s.cfg.Separation.InstrumentalModel, filepath.Join(scratch, workset.SuffixHP2), hp2, ""); err != nil {
		s.logger.Warn("separation engine failed; using filter fallback", logging.Error(err))
		return s.fallback(ctx, d, input, hp2, hp5)
	}
	if err := s.separate(ctx, input, s.cfg.Separation.VocalModel, filepath.Join(scratch, workset.SuffixHP5), hp5, vocals); err != nil {
		s.logger.Warn("separation engine failed; using filter fallback", logging.Error(err))
		return s.fallback(ctx, d, input, hp2, hp5)
	}

	d.AddKeep(hp2)
	d.AddKeep(hp5)
	d.AddKeep(vocals)
	return nil
}

// separate runs one model pass and copies its stems onto the canonical
// names. vocalsDest may be empty when only the instrumental is wanted.
func (s *Separator) separate(ctx context.Context, input, model, scratch, instrumentalDest, vocalsDest string) error {
	var stems sepsvc.Stems
	err := services.Bounded(ctx, s.cfg.Workflow.SeparationTimeout, func(ctx context.Context) error {
		var serr error
		stems, serr = s.engine.Separate(ctx, input, model, scratch)
		return serr
	})
	if err != nil {
		return err
	}
	if err := fileutil.CopyFile(stems.Instrumental, instrumentalDest); err != nil {
		return err
	}
	if vocalsDest != "" && stems.Vocals != "" {
		if err := fileutil.CopyFile(stems.Vocals, vocalsDest); err != nil {
			return err
		}
	}
	return nil
}

// fallback approximates both canonical instrumentals with a highpass filter.
// No vocal stem is produced on this path.
func (s *Separator) fallback(ctx context.Context, d *workset.Descriptor, input, hp2, hp5 string) error {
	err := services.Bounded(ctx, s.cfg.Workflow.TranscodeTimeout, func(ctx context.Context) error {
		return s.transcoder.ApplyFilter(ctx, input, hp5, highpassFilter)
	})
	if err != nil {
		return services.Wrap(services.ErrExternalTool, stage.StepSeparation, "filter fallback", input, err)
	}
	if err := fileutil.CopyFile(hp5, hp2); err != nil {
		return services.Wrap(services.ErrExternalTool, stage.StepSeparation, "filter fallback", hp2, err)
	}
	d.AddKeep(hp2)
	d.AddKeep(hp5)
	return nil
}

// reduceGain pre-conditions the input. The reduced file is temp only, never
// the target the canonical names derive from. Failure falls back to the
// unreduced input.
func (s *Separator) reduceGain(ctx context.Context, d *workset.Descriptor, input string) string {
	db := s.cfg.Separation.GainReductionDB
	if db <= 0 {
		return input
	}
	reduced := d.CanonicalPath(workset.SuffixReduced, "mp3")
	err := services.Bounded(ctx, s.cfg.Workflow.TranscodeTimeout, func(ctx context.Context) error {
		return s.transcoder.ReduceGain(ctx, input, reduced, db)
	})
	if err != nil {
		s.logger.Warn("gain reduction failed; separating unreduced input", logging.Error(err))
		return input
	}
	d.AddTemp(reduced)
	return reduced
}

// resolveInput picks the separation source in strict priority order:
// dereverbed > normalized > any other audio > audio extracted from a video.
func (s *Separator) resolveInput(ctx context.Context, d *workset.Descriptor) (string, error) {
	if d.Base() != "" {
		for _, suffix := range []string{workset.SuffixDereverbed, workset.SuffixNormalized} {
			if candidate := d.CanonicalPath(suffix, "mp3"); fileutil.Exists(candidate) {
				return candidate, nil
			}
		}
	}
	for _, path := range workset.FindAudioFiles(d.Path()) {
		if isArtifact(path) {
			continue
		}
		return path, nil
	}
	videos := workset.FindVideoFiles(d.Path())
	if len(videos) == 0 {
		return "", services.Wrap(services.ErrNotFound, stage.StepSeparation, "resolve input",
			"no audio or video in folder", nil)
	}
	d.SetBase(workset.BaseFromPath(videos[0]))
	dest := d.CanonicalPath(workset.SuffixExtracted, "mp3")
	err := services.Bounded(ctx, s.cfg.Workflow.TranscodeTimeout, func(ctx context.Context) error {
		return s.transcoder.ExtractAudio(ctx, videos[0], dest)
	})
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, stage.StepSeparation, "extract audio", videos[0], err)
	}
	d.AddTemp(dest)
	return dest, nil
}

// isArtifact reports whether the file is one of this stage's own outputs or
// pre-conditioning leftovers, which must never be picked as input.
func isArtifact(path string) bool {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	idx := strings.LastIndex(name, ".")
	if idx < 0 {
		return false
	}
	switch name[idx+1:] {
	case workset.SuffixHP2, workset.SuffixHP5, workset.SuffixVocals, workset.SuffixReduced:
		return true
	default:
		return false
	}
}

func (s *Separator) HealthCheck(ctx context.Context) stage.Health {
	if s.engine == nil || s.transcoder == nil {
		return stage.Unhealthy(stage.StepSeparation, "collaborators not configured")
	}
	return stage.Healthy(stage.StepSeparation)
}
