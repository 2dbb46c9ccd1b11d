package ffmpeg

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// HasAudioStream reports whether the media file carries at least one audio
// stream.
func (c *Client) HasAudioStream(ctx context.Context, source string) (bool, error) {
	output, err := c.ffprobe(ctx,
		"-v", "error",
		"-select_streams", "a",
		"-show_entries", "stream=codec_type",
		"-of", "csv=p=0",
		source,
	)
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(output) != "", nil
}

// Duration returns the container duration in seconds.
func (c *Client) Duration(ctx context.Context, source string) (float64, error) {
	output, err := c.ffprobe(ctx,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		source,
	)
	if err != nil {
		return 0, err
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(output), 64)
	if err != nil {
		return 0, fmt.Errorf("ffprobe: parse duration %q: %w", output, err)
	}
	return value, nil
}
