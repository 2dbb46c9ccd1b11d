// Package config loads and validates the TOML configuration that drives the
// karaoke pipeline: directory layout, external tool names, engine models,
// post-processing thresholds, and daemon timing.
//
// Load resolves the config path (explicit flag or the default under
// ~/.config/karaokeforge), decodes TOML over the compiled-in defaults,
// expands ~ in path fields, and validates the result. The embedded
// sample_config.toml documents every knob and is written by "config init".
package config
