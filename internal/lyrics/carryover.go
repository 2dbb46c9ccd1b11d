package lyrics

import (
	"strings"
	"unicode"

	"karaokeforge/internal/services/whisper"
)

// CarryOverCapitalized fixes a common engine mis-split: a capitalized word at
// the end of a segment that starts the next sentence. Such a word (length > 1,
// no terminal punctuation, not in the final segment) is moved to the start of
// the following segment. Only meaningful for English transcripts; the caller
// gates on detected language.
func CarryOverCapitalized(segments []whisper.Segment) []whisper.Segment {
	out := make([]whisper.Segment, len(segments))
	copy(out, segments)

	for i := 0; i < len(out)-1; i++ {
		words := out[i].Words
		if len(words) == 0 {
			words = synthesizeWords(out[i])
		}
		if len(words) < 2 {
			continue
		}
		last := words[len(words)-1]
		text := strings.TrimSpace(last.Word)
		if !shouldCarryOver(text) {
			continue
		}

		remaining := words[:len(words)-1]
		out[i] = segmentFromWords(remaining)
		out[i].Start = segments[i].Start

		next := out[i+1]
		nextWords := next.Words
		if len(nextWords) == 0 {
			nextWords = synthesizeWords(next)
		}
		moved := append([]whisper.Word{last}, nextWords...)
		out[i+1] = segmentFromWords(moved)
		out[i+1].End = next.End
	}
	return out
}

func shouldCarryOver(word string) bool {
	runes := []rune(word)
	if len(runes) < 2 {
		return false
	}
	if !unicode.IsUpper(runes[0]) {
		return false
	}
	switch runes[len(runes)-1] {
	case '.', '!', '?', ',', ';', ':', '…':
		return false
	}
	return true
}
