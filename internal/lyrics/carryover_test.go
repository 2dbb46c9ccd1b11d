package lyrics_test

import (
	"testing"

	"karaokeforge/internal/lyrics"
	"karaokeforge/internal/services/whisper"
)

func TestCarryOverCapitalizedMovesTrailingWord(t *testing.T) {
	segments := []whisper.Segment{
		{
			Start: 0, End: 3, Text: "the night is young Tomorrow",
			Words: wordsEvery("the night is young Tomorrow", 0, 0.6),
		},
		{
			Start: 3, End: 5, Text: "we rise again",
			Words: wordsEvery("we rise again", 3, 0.6),
		},
	}
	got := lyrics.CarryOverCapitalized(segments)
	if got[0].Text != "the night is young" {
		t.Fatalf("first segment text = %q", got[0].Text)
	}
	if got[1].Text != "Tomorrow we rise again" {
		t.Fatalf("second segment text = %q", got[1].Text)
	}
	if got[0].Start != 0 {
		t.Fatalf("first segment start changed: %g", got[0].Start)
	}
	if got[1].End != 5 {
		t.Fatalf("second segment end changed: %g", got[1].End)
	}
	// The moved word keeps its original timing.
	if got[1].Words[0].Word != "Tomorrow" {
		t.Fatalf("moved word missing from second segment: %v", got[1].Words)
	}
}

func TestCarryOverLeavesPunctuatedAndLowercaseWords(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"terminal punctuation", "see you soon Goodbye."},
		{"lowercase", "walking down the road tonight"},
		{"single letter", "this is plan A"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			segments := []whisper.Segment{
				{Start: 0, End: 2, Text: tc.text, Words: wordsEvery(tc.text, 0, 0.5)},
				{Start: 2, End: 4, Text: "next line", Words: wordsEvery("next line", 2, 1)},
			}
			got := lyrics.CarryOverCapitalized(segments)
			if got[0].Text != tc.text {
				t.Fatalf("segment modified: %q -> %q", tc.text, got[0].Text)
			}
		})
	}
}

func TestCarryOverNeverTouchesFinalSegment(t *testing.T) {
	segments := []whisper.Segment{
		{Start: 0, End: 2, Text: "only line ends with Capital",
			Words: wordsEvery("only line ends with Capital", 0, 0.4)},
	}
	got := lyrics.CarryOverCapitalized(segments)
	if got[0].Text != segments[0].Text {
		t.Fatalf("final segment modified: %q", got[0].Text)
	}
}
