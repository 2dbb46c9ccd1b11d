package lyrics

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"karaokeforge/internal/services/whisper"
)

// Tempo is the fixed beats-per-minute constant every generated file uses.
// Note timing is expressed in quarter-beat units: beats = seconds*Tempo/15.
const Tempo = 400.0

const (
	formatVersion      = "1.1.0"
	placeholderGenre   = "Unknown"
	placeholderYear    = "Unknown"
	defaultNotePitch   = 0
	minNoteLengthBeats = 1
)

// Metadata holds the header values of a generated lyrics file.
type Metadata struct {
	Title    string
	Artist   string
	Language string // engine-detected code, rendered as a display name
	// AudioFile is the audio filename referenced by the #MP3 header.
	AudioFile string
}

// SecondsToBeats converts seconds into the file's quarter-beat units.
func SecondsToBeats(seconds float64) int {
	return int(math.Round(seconds * Tempo / 15))
}

// WriteFile emits the UltraStar-style lyrics file at path.
func WriteFile(path string, meta Metadata, segments []whisper.Segment) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("lyrics: create %s: %w", path, err)
	}
	defer file.Close()
	if err := Write(file, meta, segments); err != nil {
		return err
	}
	return file.Close()
}

// Write emits the lyrics file to w: a tag header block, one note line per
// word, a separator line between segments, and a terminal end marker.
//
// The first note is pinned to beat 0 regardless of its real start time; all
// later beats are relative to that first note's original start. The lead-in
// is preserved in the #GAP header instead.
func Write(w io.Writer, meta Metadata, segments []whisper.Segment) error {
	if len(segments) == 0 {
		return fmt.Errorf("lyrics: no segments to write")
	}

	lines := make([][]whisper.Word, 0, len(segments))
	for _, seg := range segments {
		words := seg.Words
		if len(words) == 0 {
			words = synthesizeWords(seg)
		}
		if len(words) == 0 {
			continue
		}
		lines = append(lines, words)
	}
	if len(lines) == 0 {
		return fmt.Errorf("lyrics: no words to write")
	}

	origin := lines[0][0].Start
	gapMillis := int(math.Round(origin * 1000))

	buf := bufio.NewWriter(w)
	writeHeader(buf, meta, gapMillis)

	firstNote := true
	for i, words := range lines {
		for _, word := range words {
			text := strings.TrimSpace(word.Word)
			if text == "" {
				continue
			}
			beat := SecondsToBeats(word.Start - origin)
			if firstNote {
				beat = 0
				firstNote = false
			}
			length := SecondsToBeats(word.End - word.Start)
			if length < minNoteLengthBeats {
				length = minNoteLengthBeats
			}
			// Legacy spacing: beat-zero notes carry one leading space,
			// every other note two. Downstream players depend on it.
			prefix := "  "
			if beat == 0 {
				prefix = " "
			}
			fmt.Fprintf(buf, ": %d %d %d%s%s\n", beat, length, defaultNotePitch, prefix, text)
		}
		if i < len(lines)-1 {
			sepBeat := SecondsToBeats(words[len(words)-1].End - origin)
			fmt.Fprintf(buf, "- %d\n", sepBeat)
		}
	}
	fmt.Fprintln(buf, "E")
	return buf.Flush()
}

func writeHeader(w io.Writer, meta Metadata, gapMillis int) {
	fmt.Fprintf(w, "#VERSION:%s\n", formatVersion)
	fmt.Fprintf(w, "#TITLE:%s\n", meta.Title)
	fmt.Fprintf(w, "#ARTIST:%s\n", meta.Artist)
	fmt.Fprintf(w, "#LANGUAGE:%s\n", languageDisplayName(meta.Language))
	fmt.Fprintf(w, "#GENRE:%s\n", placeholderGenre)
	fmt.Fprintf(w, "#YEAR:%s\n", placeholderYear)
	fmt.Fprintf(w, "#MP3:%s\n", meta.AudioFile)
	fmt.Fprintf(w, "#BPM:%g\n", Tempo)
	fmt.Fprintf(w, "#GAP:%d\n", gapMillis)
}

// languageDisplayName renders an engine language code ("en") as an English
// display name ("English"); unparseable codes pass through unchanged.
func languageDisplayName(code string) string {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return "Unknown"
	}
	tag, err := language.Parse(trimmed)
	if err != nil {
		return trimmed
	}
	if name := display.English.Languages().Name(tag); name != "" {
		return name
	}
	return trimmed
}
