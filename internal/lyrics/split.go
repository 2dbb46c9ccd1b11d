package lyrics

import (
	"log/slog"
	"math"
	"strings"

	"karaokeforge/internal/logging"
	"karaokeforge/internal/services/whisper"
)

// SplitLongSegments splits any segment longer than maxSeconds into
// near-equal sub-segments. Word timings, when present, are distributed
// proportionally; otherwise the split is an even time split over the
// segment's text words.
func SplitLongSegments(segments []whisper.Segment, maxSeconds float64) []whisper.Segment {
	if maxSeconds <= 0 {
		return segments
	}
	out := make([]whisper.Segment, 0, len(segments))
	for _, seg := range segments {
		duration := seg.End - seg.Start
		if duration <= maxSeconds {
			out = append(out, seg)
			continue
		}
		count := int(math.Ceil(duration / maxSeconds))
		out = append(out, splitIntoParts(seg, count)...)
	}
	return out
}

func splitIntoParts(seg whisper.Segment, count int) []whisper.Segment {
	words := seg.Words
	if len(words) == 0 {
		words = synthesizeWords(seg)
	}
	if count <= 1 || len(words) == 0 {
		return []whisper.Segment{seg}
	}
	if count > len(words) {
		count = len(words)
	}

	parts := make([]whisper.Segment, 0, count)
	for i := 0; i < count; i++ {
		lo := i * len(words) / count
		hi := (i + 1) * len(words) / count
		if lo == hi {
			continue
		}
		parts = append(parts, segmentFromWords(words[lo:hi]))
	}
	if len(parts) == 0 {
		return []whisper.Segment{seg}
	}
	// The outer bounds stay anchored to the original segment.
	parts[0].Start = seg.Start
	parts[len(parts)-1].End = seg.End
	return parts
}

// SplitByLength applies the recursive length-bound bisection to every
// segment.
func SplitByLength(segments []whisper.Segment, maxChars int, logger *slog.Logger) []whisper.Segment {
	out := make([]whisper.Segment, 0, len(segments))
	for _, seg := range segments {
		out = append(out, RecursiveSplitByLength(seg, maxChars, logger)...)
	}
	return out
}

// RecursiveSplitByLength bisects a segment at its word midpoint until every
// leaf's text fits within maxChars. A single-word segment that still exceeds
// the bound is kept oversized and logged; content is never dropped.
func RecursiveSplitByLength(seg whisper.Segment, maxChars int, logger *slog.Logger) []whisper.Segment {
	if logger == nil {
		logger = logging.NewNop()
	}
	if maxChars <= 0 || len(strings.TrimSpace(seg.Text)) <= maxChars {
		return []whisper.Segment{seg}
	}
	words := seg.Words
	if len(words) == 0 {
		words = synthesizeWords(seg)
	}
	if len(words) <= 1 {
		logger.Warn("segment exceeds length bound but cannot be split further",
			logging.Int("chars", len(seg.Text)),
			logging.String("text", seg.Text),
		)
		return []whisper.Segment{seg}
	}

	mid := len(words) / 2
	left := segmentFromWords(words[:mid])
	right := segmentFromWords(words[mid:])
	left.Start = seg.Start
	right.End = seg.End

	result := RecursiveSplitByLength(left, maxChars, logger)
	return append(result, RecursiveSplitByLength(right, maxChars, logger)...)
}

// segmentFromWords builds a segment spanning the given words.
func segmentFromWords(words []whisper.Word) whisper.Segment {
	texts := make([]string, 0, len(words))
	for _, w := range words {
		if t := strings.TrimSpace(w.Word); t != "" {
			texts = append(texts, t)
		}
	}
	cp := make([]whisper.Word, len(words))
	copy(cp, words)
	return whisper.Segment{
		Start: words[0].Start,
		End:   words[len(words)-1].End,
		Text:  strings.Join(texts, " "),
		Words: cp,
	}
}

// synthesizeWords fabricates evenly timed words from a segment's text when
// the engine supplied no word-level timings.
func synthesizeWords(seg whisper.Segment) []whisper.Word {
	fields := strings.Fields(seg.Text)
	if len(fields) == 0 {
		return nil
	}
	duration := seg.End - seg.Start
	step := duration / float64(len(fields))
	words := make([]whisper.Word, len(fields))
	for i, field := range fields {
		words[i] = whisper.Word{
			Word:  field,
			Start: seg.Start + float64(i)*step,
			End:   seg.Start + float64(i+1)*step,
		}
	}
	words[len(words)-1].End = seg.End
	return words
}
