// Package ffmpeg wraps the ffmpeg and ffprobe binaries behind typed
// operations the pipeline stages need: audio extraction, loudness
// normalization (simple and strict profiles), gain and filter application,
// volumedetect measurements, audio stripping, and container conversion.
//
// Every invocation goes through an injectable CommandRunner so stage tests
// can run without the binaries installed.
package ffmpeg
