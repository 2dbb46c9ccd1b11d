package config

import (
	_ "embed"
	"fmt"
	"os"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	LibraryDir string `toml:"library_dir"`
	LogDir     string `toml:"log_dir"`
}

// Tools names the external binaries the pipeline shells out to.
type Tools struct {
	FFmpeg    string `toml:"ffmpeg"`
	FFprobe   string `toml:"ffprobe"`
	YtDlp     string `toml:"yt_dlp"`
	Separator string `toml:"separator"`
	UVX       string `toml:"uvx"`
}

// Notifications configures the outbound status sink.
type Notifications struct {
	// SinkURL is the HTTP endpoint that receives status events. Empty
	// disables notifications entirely.
	SinkURL        string `toml:"sink_url"`
	RequestTimeout int    `toml:"request_timeout"`
	BufferSize     int    `toml:"buffer_size"`
}

// USDB configures the lyrics-database client.
type USDB struct {
	BaseURL  string `toml:"base_url"`
	Username string `toml:"username"`
	Password string `toml:"password"`
}

// Separation configures the source-separation stage.
type Separation struct {
	// InstrumentalModel is the model producing the alternate instrumental (hp2).
	InstrumentalModel string `toml:"instrumental_model"`
	// VocalModel is the model producing the primary instrumental and vocals (hp5).
	VocalModel string `toml:"vocal_model"`
	// GainReductionDB is applied to the input before separation.
	GainReductionDB float64 `toml:"gain_reduction_db"`
}

// Dereverb configures the optional dereverberation stage.
type Dereverb struct {
	Enabled bool   `toml:"enabled"`
	Backend string `toml:"backend"` // "pytorch" or "onnx"
	Model   string `toml:"model"`
}

// Transcription configures the speech-to-text stage and lyrics post-processing.
type Transcription struct {
	Model             string  `toml:"model"`
	Language          string  `toml:"language"`
	CUDAEnabled       bool    `toml:"cuda_enabled"`
	VolumeGateDB      float64 `toml:"volume_gate_db"`
	MaxSegmentSeconds float64 `toml:"max_segment_seconds"`
	MaxLineChars      int     `toml:"max_line_chars"`
}

// Cleanup configures the final housekeeping stage.
type Cleanup struct {
	DryRun     bool `toml:"dry_run"`
	Backup     bool `toml:"backup"`
	Reorganize bool `toml:"reorganize"`
}

// Remux configures video remuxing.
type Remux struct {
	KeepOriginal bool `toml:"keep_original"`
}

// Workflow contains queue sizing and per-operation timeouts (seconds).
type Workflow struct {
	QueueCapacity        int `toml:"queue_capacity"`
	DownloadTimeout      int `toml:"download_timeout"`
	TranscodeTimeout     int `toml:"transcode_timeout"`
	SeparationTimeout    int `toml:"separation_timeout"`
	TranscriptionTimeout int `toml:"transcription_timeout"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format     string `toml:"format"`
	Level      string `toml:"level"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
}

// Config encapsulates all configuration values for Karaoke Forge.
type Config struct {
	Paths         Paths         `toml:"paths"`
	Tools         Tools         `toml:"tools"`
	Notifications Notifications `toml:"notifications"`
	USDB          USDB          `toml:"usdb"`
	Separation    Separation    `toml:"separation"`
	Dereverb      Dereverb      `toml:"dereverb"`
	Transcription Transcription `toml:"transcription"`
	Cleanup       Cleanup       `toml:"cleanup"`
	Remux         Remux         `toml:"remux"`
	Workflow      Workflow      `toml:"workflow"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/karaokeforge/config.toml")
}

// SampleConfig returns the embedded sample configuration content.
func SampleConfig() string {
	return sampleConfig
}

// WriteSample writes the embedded sample configuration to path, refusing to
// overwrite an existing file.
func WriteSample(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}
	return os.WriteFile(path, []byte(sampleConfig), 0o644)
}
