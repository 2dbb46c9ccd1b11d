package ffmpeg

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
)

// Loudnorm parameters for the strict normalization profile.
const (
	strictTargetLoudness = "-23"
	strictTruePeak       = "-2.0"
	strictLoudnessRange  = "7"
	strictSampleRate     = "48000"
	strictChannels       = "2"
)

// ExtractAudio pulls the audio stream out of a media file into an mp3.
func (c *Client) ExtractAudio(ctx context.Context, source, dest string) error {
	_, err := c.ffmpeg(ctx,
		"-loglevel", "error",
		"-i", source,
		"-vn",
		"-acodec", "libmp3lame",
		"-q:a", "2",
		dest,
	)
	return err
}

// NormalizeSimple applies the default one-pass loudness filter.
func (c *Client) NormalizeSimple(ctx context.Context, source, dest string) error {
	_, err := c.ffmpeg(ctx,
		"-loglevel", "error",
		"-i", source,
		"-af", "loudnorm",
		dest,
	)
	return err
}

// NormalizeStrict applies the strict loudness profile with explicit target
// loudness, true peak, loudness range, sample rate, and channel layout.
func (c *Client) NormalizeStrict(ctx context.Context, source, dest string) error {
	filter := fmt.Sprintf("loudnorm=I=%s:TP=%s:LRA=%s", strictTargetLoudness, strictTruePeak, strictLoudnessRange)
	_, err := c.ffmpeg(ctx,
		"-loglevel", "error",
		"-i", source,
		"-af", filter,
		"-ar", strictSampleRate,
		"-ac", strictChannels,
		dest,
	)
	return err
}

// ReduceGain lowers the signal by the given positive amount of decibels.
func (c *Client) ReduceGain(ctx context.Context, source, dest string, db float64) error {
	_, err := c.ffmpeg(ctx,
		"-loglevel", "error",
		"-i", source,
		"-af", fmt.Sprintf("volume=-%gdB", db),
		dest,
	)
	return err
}

// PeakNormalize raises the signal so the loudest sample sits at 0 dBFS. It
// measures the current peak first, then applies the inverse gain.
func (c *Client) PeakNormalize(ctx context.Context, source, dest string) error {
	peak, err := c.MaxVolume(ctx, source)
	if err != nil {
		return err
	}
	_, err = c.ffmpeg(ctx,
		"-loglevel", "error",
		"-i", source,
		"-af", fmt.Sprintf("volume=%gdB", -peak),
		dest,
	)
	return err
}

// ApplyFilter runs an arbitrary audio filtergraph over source into dest.
func (c *Client) ApplyFilter(ctx context.Context, source, dest, filter string) error {
	_, err := c.ffmpeg(ctx,
		"-loglevel", "error",
		"-i", source,
		"-af", filter,
		dest,
	)
	return err
}

var (
	meanVolumePattern = regexp.MustCompile(`mean_volume:\s*(-?\d+(?:\.\d+)?)\s*dB`)
	maxVolumePattern  = regexp.MustCompile(`max_volume:\s*(-?\d+(?:\.\d+)?)\s*dB`)
)

// MeanVolume measures the mean volume (dB) of the given time window.
func (c *Client) MeanVolume(ctx context.Context, source string, startSec, durationSec float64) (float64, error) {
	output, err := c.ffmpeg(ctx,
		"-ss", formatSeconds(startSec),
		"-t", formatSeconds(durationSec),
		"-i", source,
		"-af", "volumedetect",
		"-f", "null", "-",
	)
	if err != nil {
		return 0, err
	}
	return parseVolume(meanVolumePattern, output, "mean_volume")
}

// MaxVolume measures the peak volume (dB) of the whole file.
func (c *Client) MaxVolume(ctx context.Context, source string) (float64, error) {
	output, err := c.ffmpeg(ctx,
		"-i", source,
		"-af", "volumedetect",
		"-f", "null", "-",
	)
	if err != nil {
		return 0, err
	}
	return parseVolume(maxVolumePattern, output, "max_volume")
}

func parseVolume(pattern *regexp.Regexp, output []byte, label string) (float64, error) {
	match := pattern.FindSubmatch(output)
	if match == nil {
		return 0, fmt.Errorf("ffmpeg: %s not found in volumedetect output", label)
	}
	value, err := strconv.ParseFloat(string(match[1]), 64)
	if err != nil {
		return 0, fmt.Errorf("ffmpeg: parse %s: %w", label, err)
	}
	return value, nil
}

func formatSeconds(value float64) string {
	return strconv.FormatFloat(value, 'f', 3, 64)
}
