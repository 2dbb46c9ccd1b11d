package lyrics_test

import (
	"context"
	"errors"
	"testing"

	"karaokeforge/internal/lyrics"
	"karaokeforge/internal/services/whisper"
)

func seg(start, end float64, text string) whisper.Segment {
	return whisper.Segment{Start: start, End: end, Text: text}
}

func TestFilterHallucinationsDropsKnownPhrases(t *testing.T) {
	segments := []whisper.Segment{
		seg(0, 1, "Thank you."),
		seg(1, 2, "real lyrics here"),
		seg(2, 3, "Thanks for watching"),
		seg(3, 4, "Subtitles by the Amara.org community"),
		seg(4, 5, "more lyrics"),
	}
	got := lyrics.FilterHallucinations(segments, nil)
	if len(got) != 2 {
		t.Fatalf("expected 2 kept segments, got %d: %v", len(got), got)
	}
	if got[0].Text != "real lyrics here" || got[1].Text != "more lyrics" {
		t.Fatalf("wrong segments kept: %v", got)
	}
}

func TestFilterHallucinationsDropsDuplicateEndTimes(t *testing.T) {
	corrupt := whisper.Segment{
		Start: 0, End: 2, Text: "la la",
		Words: []whisper.Word{
			{Word: "la", Start: 0, End: 1},
			{Word: "la", Start: 1, End: 1},
		},
	}
	clean := whisper.Segment{
		Start: 2, End: 4, Text: "doo doo",
		Words: []whisper.Word{
			{Word: "doo", Start: 2, End: 3},
			{Word: "doo", Start: 3, End: 4},
		},
	}
	got := lyrics.FilterHallucinations([]whisper.Segment{corrupt, clean}, nil)
	if len(got) != 1 || got[0].Text != "doo doo" {
		t.Fatalf("expected only the clean segment, got %v", got)
	}
}

func TestCleanEmpty(t *testing.T) {
	segments := []whisper.Segment{
		seg(0, 1, "   "),
		seg(1, 2, "keep me"),
		{Start: 2, End: 3, Text: "x", Words: []whisper.Word{{Word: "  "}}},
	}
	got := lyrics.CleanEmpty(segments)
	if len(got) != 1 || got[0].Text != "keep me" {
		t.Fatalf("expected only non-empty segment, got %v", got)
	}
}

func TestFilterByVolumeDropsQuietSegments(t *testing.T) {
	var measured [][2]float64
	meter := func(ctx context.Context, start, duration float64) (float64, error) {
		measured = append(measured, [2]float64{start, duration})
		if start < 5 {
			return -60, nil
		}
		return -20, nil
	}
	segments := []whisper.Segment{
		seg(0, 2, "noise"),
		seg(10, 12, "sung line"),
	}
	got := lyrics.FilterByVolume(context.Background(), segments, meter, -45, nil)
	if len(got) != 1 || got[0].Text != "sung line" {
		t.Fatalf("expected only the loud segment, got %v", got)
	}
	if len(measured) != 2 {
		t.Fatalf("expected 2 measurements, got %d", len(measured))
	}
	if measured[0] != [2]float64{0, 2} || measured[1] != [2]float64{10, 2} {
		t.Fatalf("wrong windows measured: %v", measured)
	}
}

func TestFilterByVolumeKeepsSegmentOnMeterError(t *testing.T) {
	meter := func(ctx context.Context, start, duration float64) (float64, error) {
		return 0, errors.New("probe failed")
	}
	segments := []whisper.Segment{seg(0, 2, "keep despite error")}
	got := lyrics.FilterByVolume(context.Background(), segments, meter, -45, nil)
	if len(got) != 1 {
		t.Fatalf("segment dropped on meter error: %v", got)
	}
}

func TestFilterByVolumeNilMeterPassesThrough(t *testing.T) {
	segments := []whisper.Segment{seg(0, 2, "a"), seg(2, 4, "b")}
	got := lyrics.FilterByVolume(context.Background(), segments, nil, -45, nil)
	if len(got) != 2 {
		t.Fatalf("expected passthrough, got %v", got)
	}
}
