package ffmpeg

import "context"

// StripAudio writes a copy of the video with every audio track removed. The
// video stream is stream-copied, not re-encoded.
func (c *Client) StripAudio(ctx context.Context, source, dest string) error {
	_, err := c.ffmpeg(ctx,
		"-loglevel", "error",
		"-i", source,
		"-c:v", "copy",
		"-an",
		dest,
	)
	return err
}

// ConvertContainer rewraps source into the container implied by dest's
// extension without touching the streams.
func (c *Client) ConvertContainer(ctx context.Context, source, dest string) error {
	_, err := c.ffmpeg(ctx,
		"-loglevel", "error",
		"-i", source,
		"-c", "copy",
		dest,
	)
	return err
}

// TranscodeLegacy re-encodes a legacy-container video into H.264/AAC mp4.
// Stream copy is not reliable out of the old containers, so this is a full
// transcode.
func (c *Client) TranscodeLegacy(ctx context.Context, source, dest string) error {
	_, err := c.ffmpeg(ctx,
		"-loglevel", "error",
		"-i", source,
		"-c:v", "libx264",
		"-preset", "fast",
		"-c:a", "aac",
		dest,
	)
	return err
}
