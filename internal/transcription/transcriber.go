package transcription

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"karaokeforge/internal/config"
	"karaokeforge/internal/fileutil"
	"karaokeforge/internal/logging"
	"karaokeforge/internal/lyrics"
	"karaokeforge/internal/services"
	"karaokeforge/internal/services/ffmpeg"
	"karaokeforge/internal/services/whisper"
	"karaokeforge/internal/stage"
	"karaokeforge/internal/workset"
)

// Engine runs speech-to-text over one audio file.
type Engine interface {
	Transcribe(ctx context.Context, source, outputDir string) (whisper.Result, error)
}

// AudioProber measures the vocal track: mean volume of a window for the
// post-processing volume gate, and total duration for the trailing-segment
// cutoff.
type AudioProber interface {
	MeanVolume(ctx context.Context, source string, startSec, durationSec float64) (float64, error)
	Duration(ctx context.Context, source string) (float64, error)
}

// Transcriber turns the cleanest available vocal track into the synchronized
// lyrics file {base}.txt. No vocal input, a failed engine call, and empty
// post-processed output are each fatal for the job.
type Transcriber struct {
	cfg    *config.Config
	logger *slog.Logger
	engine Engine
	prober AudioProber
}

// NewTranscriber creates the stage handler with real collaborators.
func NewTranscriber(cfg *config.Config, logger *slog.Logger) *Transcriber {
	engine := whisper.NewService(whisper.Config{
		Model:       cfg.Transcription.Model,
		CUDAEnabled: cfg.Transcription.CUDAEnabled,
		Language:    cfg.Transcription.Language,
	}, cfg.Tools.UVX)
	return NewTranscriberWithDependencies(cfg, logger, engine, ffmpeg.NewClient(cfg.Tools.FFmpeg, cfg.Tools.FFprobe))
}

// NewTranscriberWithDependencies allows injecting collaborators (used in tests).
func NewTranscriberWithDependencies(cfg *config.Config, logger *slog.Logger, engine Engine, prober AudioProber) *Transcriber {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Transcriber{
		cfg:    cfg,
		logger: logger.With(logging.String(logging.FieldComponent, "transcription")),
		engine: engine,
		prober: prober,
	}
}

func (t *Transcriber) Prepare(ctx context.Context, d *workset.Descriptor) error {
	if d == nil {
		return services.Wrap(services.ErrValidation, stage.StepTranscription, "prepare", "nil descriptor", nil)
	}
	return nil
}

func (t *Transcriber) Execute(ctx context.Context, d *workset.Descriptor) error {
	if err := t.run(ctx, d); err != nil {
		d.MarkFailed(stage.StepTranscription)
		return err
	}
	d.MarkCompleted(stage.StepTranscription)
	return nil
}

func (t *Transcriber) run(ctx context.Context, d *workset.Descriptor) error {
	input, err := t.resolveInput(d)
	if err != nil {
		return err
	}
	d.SetBase(workset.BaseFromPath(input))
	logger := t.logger.With(logging.String("input", filepath.Base(input)))

	var result whisper.Result
	err = services.Bounded(ctx, t.cfg.Workflow.TranscriptionTimeout, func(ctx context.Context) error {
		var terr error
		result, terr = t.engine.Transcribe(ctx, input, d.Path())
		return terr
	})
	if err != nil {
		return services.Wrap(services.ErrExternalTool, stage.StepTranscription, "engine", input, err)
	}
	segments := t.trimTrailing(ctx, logger, input, result.Segments)
	// The engine drops its raw JSON next to the input; ledger it so cleanup
	// removes it.
	stem := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	d.AddTemp(filepath.Join(d.Path(), stem+".json"))

	language := result.Language
	if language == "" {
		language = t.cfg.Transcription.Language
	}
	meter := func(ctx context.Context, startSec, durationSec float64) (float64, error) {
		var db float64
		err := services.Bounded(ctx, t.cfg.Workflow.TranscodeTimeout, func(ctx context.Context) error {
			var merr error
			db, merr = t.prober.MeanVolume(ctx, input, startSec, durationSec)
			return merr
		})
		return db, err
	}
	processed := lyrics.Process(ctx, segments, lyrics.Options{
		MaxSegmentSeconds: t.cfg.Transcription.MaxSegmentSeconds,
		MaxLineChars:      t.cfg.Transcription.MaxLineChars,
		VolumeGateDB:      t.cfg.Transcription.VolumeGateDB,
		Language:          language,
	}, meter, logger)
	if len(processed) == 0 {
		return services.Wrap(services.ErrValidation, stage.StepTranscription, "post-process",
			"no segments survived filtering", nil)
	}

	dest := d.CanonicalPath("", "txt")
	meta := lyrics.Metadata{
		Title:     d.Title,
		Artist:    d.Artist,
		Language:  language,
		AudioFile: workset.CanonicalName(d.Base(), "", "mp3"),
	}
	if err := lyrics.WriteFile(dest, meta, processed); err != nil {
		return services.Wrap(services.ErrTransient, stage.StepTranscription, "write lyrics", dest, err)
	}
	logger.Info("wrote lyrics file",
		logging.String("dest", dest),
		logging.Int("segments", len(processed)),
	)
	d.AddKeep(dest)
	return nil
}

// trimTrailing drops segments that start at or past the end of the audio.
// The engine occasionally hallucinates lines beyond the media duration; a
// failed duration probe keeps all segments.
func (t *Transcriber) trimTrailing(ctx context.Context, logger *slog.Logger, input string, segments []whisper.Segment) []whisper.Segment {
	var duration float64
	err := services.Bounded(ctx, t.cfg.Workflow.TranscodeTimeout, func(ctx context.Context) error {
		var derr error
		duration, derr = t.prober.Duration(ctx, input)
		return derr
	})
	if err != nil || duration <= 0 {
		if err != nil {
			logger.Warn("duration probe failed; keeping all segments", logging.Error(err))
		}
		return segments
	}
	kept := segments[:0:0]
	for _, seg := range segments {
		if seg.Start >= duration {
			logger.Warn("dropped segment past end of audio",
				logging.Float64("start", seg.Start),
				logging.Float64("duration", duration),
			)
			continue
		}
		kept = append(kept, seg)
	}
	return kept
}

// resolveInput picks the vocal source by strict priority: dereverbed >
// isolated vocals > alternate-model instrumental source > any audio.
func (t *Transcriber) resolveInput(d *workset.Descriptor) (string, error) {
	if d.Base() != "" {
		for _, suffix := range []string{workset.SuffixDereverbed, workset.SuffixVocals, workset.SuffixHP5} {
			if candidate := d.CanonicalPath(suffix, "mp3"); fileutil.Exists(candidate) {
				return candidate, nil
			}
		}
	}
	if audio := workset.FindAudioFiles(d.Path()); len(audio) > 0 {
		return audio[0], nil
	}
	return "", services.Wrap(services.ErrNotFound, stage.StepTranscription, "resolve input",
		"no vocal file available", nil)
}

func (t *Transcriber) HealthCheck(ctx context.Context) stage.Health {
	if t.engine == nil || t.prober == nil {
		return stage.Unhealthy(stage.StepTranscription, "collaborators not configured")
	}
	return stage.Healthy(stage.StepTranscription)
}
