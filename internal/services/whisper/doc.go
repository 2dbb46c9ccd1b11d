// Package whisper provides speech-to-text transcription for the lyrics
// pipeline. The engine is WhisperX run through uvx; output is parsed from
// its JSON result file into timed segments with optional word-level timings.
package whisper
