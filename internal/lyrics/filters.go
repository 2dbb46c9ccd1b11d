package lyrics

import (
	"context"
	"log/slog"
	"strings"

	"karaokeforge/internal/logging"
	"karaokeforge/internal/services/whisper"
)

// Exact lowercased phrases the engine is known to hallucinate on silence.
var hallucinationPhrases = map[string]struct{}{
	"thank you.":             {},
	"thank you":              {},
	"thanks for watching.":   {},
	"thanks for watching":    {},
	"you":                    {},
	"bye.":                   {},
	"bye bye.":               {},
	"please subscribe.":      {},
	"like and subscribe.":    {},
	"see you next time.":     {},
	"see you in the next video.": {},
}

// Substrings marking captioning boilerplate carried over from training data.
var hallucinationMarkers = []string{
	"subtitles by",
	"subtitled by",
	"captions by",
	"captioning by",
	"amara.org",
	"www.youtube.com",
	"copyright ©",
}

// FilterHallucinations drops segments whose text matches the phrase blacklist
// and segments whose word timings carry duplicate end-times, a corruption
// signal from the engine.
func FilterHallucinations(segments []whisper.Segment, logger *slog.Logger) []whisper.Segment {
	if logger == nil {
		logger = logging.NewNop()
	}
	kept := make([]whisper.Segment, 0, len(segments))
	for _, seg := range segments {
		normalized := strings.ToLower(strings.TrimSpace(seg.Text))
		if _, ok := hallucinationPhrases[normalized]; ok {
			logger.Debug("dropping hallucinated segment", logging.String("text", seg.Text))
			continue
		}
		if containsMarker(normalized) {
			logger.Debug("dropping boilerplate segment", logging.String("text", seg.Text))
			continue
		}
		if hasDuplicateEndTimes(seg.Words) {
			logger.Debug("dropping segment with corrupt word timings", logging.String("text", seg.Text))
			continue
		}
		kept = append(kept, seg)
	}
	return kept
}

// CleanEmpty drops segments left with no non-whitespace words after all
// filtering and splitting.
func CleanEmpty(segments []whisper.Segment) []whisper.Segment {
	kept := make([]whisper.Segment, 0, len(segments))
	for _, seg := range segments {
		if strings.TrimSpace(seg.Text) == "" {
			continue
		}
		if len(seg.Words) > 0 && allWordsBlank(seg.Words) {
			continue
		}
		kept = append(kept, seg)
	}
	return kept
}

// VolumeMeter measures the mean volume (dB) of a time window in the source
// vocal file.
type VolumeMeter func(ctx context.Context, startSec, durationSec float64) (float64, error)

// FilterByVolume drops segments whose time window in the vocal source falls
// below thresholdDB, a heuristic that removes transcribed noise and silence.
// A failed measurement keeps the segment; losing real lyrics is worse than
// keeping noise.
func FilterByVolume(ctx context.Context, segments []whisper.Segment, meter VolumeMeter, thresholdDB float64, logger *slog.Logger) []whisper.Segment {
	if meter == nil {
		return segments
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	kept := make([]whisper.Segment, 0, len(segments))
	for _, seg := range segments {
		duration := seg.End - seg.Start
		if duration <= 0 {
			kept = append(kept, seg)
			continue
		}
		mean, err := meter(ctx, seg.Start, duration)
		if err != nil {
			logger.Warn("volume measurement failed; keeping segment",
				logging.Float64("start", seg.Start),
				logging.Error(err),
			)
			kept = append(kept, seg)
			continue
		}
		if mean < thresholdDB {
			logger.Debug("dropping low-volume segment",
				logging.String("text", seg.Text),
				logging.Float64("mean_db", mean),
			)
			continue
		}
		kept = append(kept, seg)
	}
	return kept
}

func containsMarker(text string) bool {
	for _, marker := range hallucinationMarkers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}

func hasDuplicateEndTimes(words []whisper.Word) bool {
	for i := 1; i < len(words); i++ {
		if words[i].End == words[i-1].End {
			return true
		}
	}
	return false
}

func allWordsBlank(words []whisper.Word) bool {
	for _, w := range words {
		if strings.TrimSpace(w.Word) != "" {
			return false
		}
	}
	return true
}
