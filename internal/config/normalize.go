package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTools()
	c.normalizeNotifications()
	c.normalizeUSDB()
	c.normalizeSeparation()
	c.normalizeDereverb()
	c.normalizeTranscription()
	c.normalizeWorkflow()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.LibraryDir, err = expandPath(c.Paths.LibraryDir); err != nil {
		return fmt.Errorf("paths.library_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeTools() {
	setDefault := func(field *string, fallback string) {
		*field = strings.TrimSpace(*field)
		if *field == "" {
			*field = fallback
		}
	}
	setDefault(&c.Tools.FFmpeg, defaultFFmpeg)
	setDefault(&c.Tools.FFprobe, defaultFFprobe)
	setDefault(&c.Tools.YtDlp, defaultYtDlp)
	setDefault(&c.Tools.Separator, defaultSeparator)
	setDefault(&c.Tools.UVX, defaultUVX)
}

func (c *Config) normalizeNotifications() {
	c.Notifications.SinkURL = strings.TrimSpace(c.Notifications.SinkURL)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
	}
	if c.Notifications.BufferSize <= 0 {
		c.Notifications.BufferSize = defaultNotifyBufferSize
	}
}

func (c *Config) normalizeUSDB() {
	c.USDB.BaseURL = strings.TrimRight(strings.TrimSpace(c.USDB.BaseURL), "/")
	if c.USDB.BaseURL == "" {
		c.USDB.BaseURL = defaultUSDBBaseURL
	}
	if c.USDB.Username == "" {
		if value, ok := os.LookupEnv("USDB_USERNAME"); ok {
			c.USDB.Username = strings.TrimSpace(value)
		}
	}
	if c.USDB.Password == "" {
		if value, ok := os.LookupEnv("USDB_PASSWORD"); ok {
			c.USDB.Password = value
		}
	}
}

func (c *Config) normalizeSeparation() {
	c.Separation.InstrumentalModel = strings.TrimSpace(c.Separation.InstrumentalModel)
	if c.Separation.InstrumentalModel == "" {
		c.Separation.InstrumentalModel = defaultInstrumentalModel
	}
	c.Separation.VocalModel = strings.TrimSpace(c.Separation.VocalModel)
	if c.Separation.VocalModel == "" {
		c.Separation.VocalModel = defaultVocalModel
	}
	if c.Separation.GainReductionDB <= 0 {
		c.Separation.GainReductionDB = defaultGainReductionDB
	}
}

func (c *Config) normalizeDereverb() {
	c.Dereverb.Backend = strings.ToLower(strings.TrimSpace(c.Dereverb.Backend))
	if c.Dereverb.Backend == "" {
		c.Dereverb.Backend = defaultDereverbBackend
	}
	c.Dereverb.Model = strings.TrimSpace(c.Dereverb.Model)
	if c.Dereverb.Model == "" {
		c.Dereverb.Model = defaultDereverbModel
	}
}

func (c *Config) normalizeTranscription() {
	c.Transcription.Model = strings.TrimSpace(c.Transcription.Model)
	if c.Transcription.Model == "" {
		c.Transcription.Model = defaultWhisperModel
	}
	c.Transcription.Language = strings.ToLower(strings.TrimSpace(c.Transcription.Language))
	if c.Transcription.VolumeGateDB == 0 {
		c.Transcription.VolumeGateDB = defaultVolumeGateDB
	}
	if c.Transcription.MaxSegmentSeconds <= 0 {
		c.Transcription.MaxSegmentSeconds = defaultMaxSegmentSeconds
	}
	if c.Transcription.MaxLineChars <= 0 {
		c.Transcription.MaxLineChars = defaultMaxLineChars
	}
}

func (c *Config) normalizeWorkflow() {
	if c.Workflow.QueueCapacity <= 0 {
		c.Workflow.QueueCapacity = defaultQueueCapacity
	}
	if c.Workflow.DownloadTimeout <= 0 {
		c.Workflow.DownloadTimeout = defaultDownloadTimeout
	}
	if c.Workflow.TranscodeTimeout <= 0 {
		c.Workflow.TranscodeTimeout = defaultTranscodeTimeout
	}
	if c.Workflow.SeparationTimeout <= 0 {
		c.Workflow.SeparationTimeout = defaultSeparationTimeout
	}
	if c.Workflow.TranscriptionTimeout <= 0 {
		c.Workflow.TranscriptionTimeout = defaultTranscriptionTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.MaxSizeMB <= 0 {
		c.Logging.MaxSizeMB = defaultLogMaxSizeMB
	}
	if c.Logging.MaxBackups < 0 {
		c.Logging.MaxBackups = defaultLogMaxBackups
	}
	if c.Logging.MaxAgeDays <= 0 {
		c.Logging.MaxAgeDays = defaultLogMaxAgeDays
	}
}
