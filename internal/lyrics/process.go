package lyrics

import (
	"context"
	"log/slog"
	"strings"

	"karaokeforge/internal/services/whisper"
)

// Options bundles the post-processing thresholds. Defaults come from
// configuration; they are heuristics, not calibrated constants.
type Options struct {
	MaxSegmentSeconds float64
	MaxLineChars      int
	VolumeGateDB      float64
	// Language is the engine-detected language code; the capitalization
	// carry-over step only runs for English.
	Language string
}

// Process runs the deterministic post-processing pipeline over raw engine
// segments: hallucination filtering, duration and length splitting,
// capitalization carry-over, volume gating, a second hallucination pass
// (splitting can expose boilerplate fragments), and a final clean pass.
func Process(ctx context.Context, segments []whisper.Segment, opts Options, meter VolumeMeter, logger *slog.Logger) []whisper.Segment {
	segs := FilterHallucinations(segments, logger)
	segs = SplitLongSegments(segs, opts.MaxSegmentSeconds)
	segs = SplitByLength(segs, opts.MaxLineChars, logger)
	if isEnglish(opts.Language) {
		segs = CarryOverCapitalized(segs)
	}
	segs = FilterByVolume(ctx, segs, meter, opts.VolumeGateDB, logger)
	segs = FilterHallucinations(segs, logger)
	return CleanEmpty(segs)
}

func isEnglish(language string) bool {
	switch strings.ToLower(strings.TrimSpace(language)) {
	case "en", "eng", "english":
		return true
	default:
		return false
	}
}
