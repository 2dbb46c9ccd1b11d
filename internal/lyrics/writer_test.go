package lyrics_test

import (
	"strings"
	"testing"

	"karaokeforge/internal/lyrics"
	"karaokeforge/internal/services/whisper"
)

func sampleSegments() []whisper.Segment {
	return []whisper.Segment{
		{
			Start: 5.0, End: 6.0, Text: "Hello world",
			Words: []whisper.Word{
				{Word: "Hello", Start: 5.0, End: 5.5},
				{Word: "world", Start: 5.6, End: 6.0},
			},
		},
		{
			Start: 7.0, End: 7.5, Text: "again",
			Words: []whisper.Word{
				{Word: "again", Start: 7.0, End: 7.5},
			},
		},
	}
}

func TestWriteEmitsExpectedFormat(t *testing.T) {
	var sb strings.Builder
	meta := lyrics.Metadata{Title: "Song", Artist: "Band", Language: "en", AudioFile: "song.mp3"}
	if err := lyrics.Write(&sb, meta, sampleSegments()); err != nil {
		t.Fatalf("write: %v", err)
	}
	want := strings.Join([]string{
		"#VERSION:1.1.0",
		"#TITLE:Song",
		"#ARTIST:Band",
		"#LANGUAGE:English",
		"#GENRE:Unknown",
		"#YEAR:Unknown",
		"#MP3:song.mp3",
		"#BPM:400",
		"#GAP:5000",
		": 0 13 0 Hello",
		": 16 11 0  world",
		"- 27",
		": 53 13 0  again",
		"E",
		"",
	}, "\n")
	if sb.String() != want {
		t.Fatalf("unexpected output:\n%s\nwant:\n%s", sb.String(), want)
	}
}

func TestFirstNotePinnedToBeatZero(t *testing.T) {
	// Regardless of the engine's absolute start time, the first emitted note
	// sits at beat 0 and the lead-in lands in #GAP.
	for _, start := range []float64{0, 1.25, 42.7} {
		segs := []whisper.Segment{{
			Start: start, End: start + 1, Text: "la",
			Words: []whisper.Word{{Word: "la", Start: start, End: start + 1}},
		}}
		var sb strings.Builder
		if err := lyrics.Write(&sb, lyrics.Metadata{AudioFile: "x.mp3"}, segs); err != nil {
			t.Fatalf("write: %v", err)
		}
		if !strings.Contains(sb.String(), ": 0 27 0 la\n") {
			t.Fatalf("first note not pinned for start=%g:\n%s", start, sb.String())
		}
	}
}

func TestLeadingSpaceAsymmetry(t *testing.T) {
	var sb strings.Builder
	if err := lyrics.Write(&sb, lyrics.Metadata{}, sampleSegments()); err != nil {
		t.Fatalf("write: %v", err)
	}
	lines := strings.Split(sb.String(), "\n")
	var noteLines []string
	for _, line := range lines {
		if strings.HasPrefix(line, ": ") {
			noteLines = append(noteLines, line)
		}
	}
	if len(noteLines) != 3 {
		t.Fatalf("expected 3 note lines, got %v", noteLines)
	}
	// Beat-zero note: one leading space before the word.
	if !strings.HasSuffix(noteLines[0], "0 Hello") || strings.HasSuffix(noteLines[0], "0  Hello") {
		t.Fatalf("first note spacing wrong: %q", noteLines[0])
	}
	// Later notes: two leading spaces.
	if !strings.HasSuffix(noteLines[1], "0  world") {
		t.Fatalf("second note spacing wrong: %q", noteLines[1])
	}
}

func TestWriteRejectsEmptyInput(t *testing.T) {
	var sb strings.Builder
	if err := lyrics.Write(&sb, lyrics.Metadata{}, nil); err == nil {
		t.Fatal("expected error for empty segments")
	}
}

func TestSecondsToBeats(t *testing.T) {
	tests := []struct {
		seconds float64
		want    int
	}{
		{0, 0},
		{0.5, 13},
		{1, 27},
		{15, 400},
	}
	for _, tc := range tests {
		if got := lyrics.SecondsToBeats(tc.seconds); got != tc.want {
			t.Errorf("SecondsToBeats(%g) = %d, want %d", tc.seconds, got, tc.want)
		}
	}
}

func TestWordsSynthesizedWhenTimingsMissing(t *testing.T) {
	segs := []whisper.Segment{{Start: 0, End: 2, Text: "one two"}}
	var sb strings.Builder
	if err := lyrics.Write(&sb, lyrics.Metadata{}, segs); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := sb.String()
	if !strings.Contains(out, "0 one\n") || !strings.Contains(out, "0  two\n") {
		t.Fatalf("synthesized words missing:\n%s", out)
	}
}
