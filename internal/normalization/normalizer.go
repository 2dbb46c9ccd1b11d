package normalization

import (
	"context"
	"log/slog"
	"path/filepath"

	"karaokeforge/internal/config"
	"karaokeforge/internal/fileutil"
	"karaokeforge/internal/logging"
	"karaokeforge/internal/services"
	"karaokeforge/internal/services/ffmpeg"
	"karaokeforge/internal/stage"
	"karaokeforge/internal/workset"
)

// Profile selects the loudness-normalization variant.
type Profile string

const (
	// ProfileSimple is the default one-pass loudnorm filter.
	ProfileSimple Profile = "simple"
	// ProfileStrict pins target loudness, true peak, loudness range,
	// sample rate, and channel count.
	ProfileStrict Profile = "strict"
)

// Transcoder covers the loudness operations this stage needs.
type Transcoder interface {
	NormalizeSimple(ctx context.Context, source, dest string) error
	NormalizeStrict(ctx context.Context, source, dest string) error
}

// Normalizer loudness-normalizes the best available raw audio into the
// canonical {base}.normalized.mp3 keep file. A folder with no audio at all
// is a trivial success; there is nothing to normalize.
type Normalizer struct {
	cfg        *config.Config
	logger     *slog.Logger
	transcoder Transcoder
	profile    Profile
}

// NewNormalizer creates the stage handler with a real ffmpeg collaborator.
func NewNormalizer(cfg *config.Config, logger *slog.Logger) *Normalizer {
	return NewNormalizerWithDependencies(cfg, logger, ffmpeg.NewClient(cfg.Tools.FFmpeg, cfg.Tools.FFprobe), ProfileSimple)
}

// NewNormalizerWithDependencies allows injecting the transcoder and profile
// (used in tests).
func NewNormalizerWithDependencies(cfg *config.Config, logger *slog.Logger, transcoder Transcoder, profile Profile) *Normalizer {
	if logger == nil {
		logger = logging.NewNop()
	}
	if profile == "" {
		profile = ProfileSimple
	}
	return &Normalizer{
		cfg:        cfg,
		logger:     logger.With(logging.String(logging.FieldComponent, "normalization")),
		transcoder: transcoder,
		profile:    profile,
	}
}

func (n *Normalizer) Prepare(ctx context.Context, d *workset.Descriptor) error {
	if d == nil {
		return services.Wrap(services.ErrValidation, stage.StepNormalization, "prepare", "nil descriptor", nil)
	}
	return nil
}

func (n *Normalizer) Execute(ctx context.Context, d *workset.Descriptor) error {
	if err := n.run(ctx, d); err != nil {
		d.MarkFailed(stage.StepNormalization)
		return err
	}
	d.MarkCompleted(stage.StepNormalization)
	return nil
}

func (n *Normalizer) run(ctx context.Context, d *workset.Descriptor) error {
	candidates := n.candidates(d)
	if len(candidates) == 0 {
		n.logger.Debug("no audio to normalize", logging.String("folder", d.Path()))
		return nil
	}

	var lastErr error
	for _, src := range candidates {
		base := workset.BaseFromPath(src)
		dest := filepath.Join(d.Path(), workset.CanonicalName(base, workset.SuffixNormalized, "mp3"))
		if src == dest {
			// Already a normalized artifact from a prior run.
			d.SetBase(base)
			d.AddKeep(dest)
			return nil
		}
		if err := n.normalize(ctx, src, dest); err != nil {
			n.logger.Warn("normalization failed for candidate",
				logging.String("source", src),
				logging.Error(err),
			)
			lastErr = err
			continue
		}
		n.logger.Info("normalized audio", logging.String("source", src), logging.String("dest", dest))
		d.SetBase(base)
		d.AddInput(src)
		d.AddKeep(dest)
		return nil
	}
	return services.Wrap(services.ErrExternalTool, stage.StepNormalization, "normalize",
		"every candidate failed", lastErr)
}

// candidates lists normalization inputs in priority order: the descriptor's
// recorded inputs first, then any audio file found in the folder.
func (n *Normalizer) candidates(d *workset.Descriptor) []string {
	var out []string
	seen := make(map[string]struct{})
	add := func(path string) {
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		out = append(out, path)
	}
	for _, path := range d.Inputs() {
		if workset.IsAudioFile(path) && fileutil.Exists(path) {
			add(path)
		}
	}
	for _, path := range workset.FindAudioFiles(d.Path()) {
		if path == d.CanonicalPath(workset.SuffixNormalized, "mp3") {
			continue
		}
		add(path)
	}
	return out
}

func (n *Normalizer) normalize(ctx context.Context, src, dest string) error {
	return services.Bounded(ctx, n.cfg.Workflow.TranscodeTimeout, func(ctx context.Context) error {
		if n.profile == ProfileStrict {
			return n.transcoder.NormalizeStrict(ctx, src, dest)
		}
		return n.transcoder.NormalizeSimple(ctx, src, dest)
	})
}

func (n *Normalizer) HealthCheck(ctx context.Context) stage.Health {
	if n.transcoder == nil {
		return stage.Unhealthy(stage.StepNormalization, "transcoder not configured")
	}
	return stage.Healthy(stage.StepNormalization)
}
