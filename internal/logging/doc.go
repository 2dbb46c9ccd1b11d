// Package logging builds the slog loggers used across the pipeline.
//
// Two sinks exist: a console handler that renders compact single-line output
// (colored when stdout is a terminal) and a JSON file sink rotated by
// lumberjack. Attr helpers and context carriage keep field names uniform so
// every stage logs job_id/stage the same way.
package logging
