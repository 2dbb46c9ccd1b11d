package lyrics_test

import (
	"context"
	"testing"

	"karaokeforge/internal/lyrics"
	"karaokeforge/internal/services/whisper"
)

func TestProcessPipeline(t *testing.T) {
	segments := []whisper.Segment{
		{Start: 0, End: 1, Text: "Thank you."},
		{Start: 2, End: 4, Text: "hold on to the light Never",
			Words: wordsEvery("hold on to the light Never", 2, 0.3)},
		{Start: 4, End: 6, Text: "let it fade away",
			Words: wordsEvery("let it fade away", 4, 0.5)},
		{Start: 20, End: 22, Text: "whisper noise",
			Words: wordsEvery("whisper noise", 20, 1)},
	}
	meter := func(ctx context.Context, start, duration float64) (float64, error) {
		if start >= 20 {
			return -70, nil
		}
		return -15, nil
	}
	opts := lyrics.Options{
		MaxSegmentSeconds: 30,
		MaxLineChars:      40,
		VolumeGateDB:      -45,
		Language:          "en",
	}
	got := lyrics.Process(context.Background(), segments, opts, meter, nil)
	if len(got) != 2 {
		t.Fatalf("expected 2 segments, got %d: %v", len(got), got)
	}
	if got[0].Text != "hold on to the light" {
		t.Fatalf("carry-over not applied: %q", got[0].Text)
	}
	if got[1].Text != "Never let it fade away" {
		t.Fatalf("carry-over target wrong: %q", got[1].Text)
	}
}

func TestProcessSkipsCarryOverForNonEnglish(t *testing.T) {
	segments := []whisper.Segment{
		{Start: 0, End: 2, Text: "la lumiere du soir Demain",
			Words: wordsEvery("la lumiere du soir Demain", 0, 0.4)},
		{Start: 2, End: 4, Text: "tout recommence",
			Words: wordsEvery("tout recommence", 2, 1)},
	}
	opts := lyrics.Options{MaxSegmentSeconds: 30, MaxLineChars: 40, Language: "fr"}
	got := lyrics.Process(context.Background(), segments, opts, nil, nil)
	if len(got) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(got))
	}
	if got[0].Text != "la lumiere du soir Demain" {
		t.Fatalf("carry-over ran for non-English transcript: %q", got[0].Text)
	}
}

func TestProcessEmptyInput(t *testing.T) {
	got := lyrics.Process(context.Background(), nil, lyrics.Options{}, nil, nil)
	if len(got) != 0 {
		t.Fatalf("expected no segments, got %v", got)
	}
}
