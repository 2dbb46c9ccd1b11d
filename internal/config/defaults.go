package config

const (
	defaultLibraryDir = "~/karaoke"
	defaultLogDir     = "~/.local/share/karaokeforge/logs"

	defaultFFmpeg    = "ffmpeg"
	defaultFFprobe   = "ffprobe"
	defaultYtDlp     = "yt-dlp"
	defaultSeparator = "audio-separator"
	defaultUVX       = "uvx"

	defaultNotifyTimeout    = 5
	defaultNotifyBufferSize = 64

	defaultUSDBBaseURL = "https://usdb.animux.de"

	defaultInstrumentalModel = "UVR-MDX-NET-Inst_HQ_3"
	defaultVocalModel        = "UVR_MDXNET_KARA_2"
	defaultGainReductionDB   = 2.0

	defaultDereverbBackend = "pytorch"
	defaultDereverbModel   = "deverb_bs_roformer"

	defaultWhisperModel      = "large-v3"
	defaultVolumeGateDB      = -45.0
	defaultMaxSegmentSeconds = 30.0
	defaultMaxLineChars      = 30

	defaultQueueCapacity        = 100
	defaultDownloadTimeout      = 600
	defaultTranscodeTimeout     = 300
	defaultSeparationTimeout    = 1800
	defaultTranscriptionTimeout = 1800

	defaultLogFormat     = "console"
	defaultLogLevel      = "info"
	defaultLogMaxSizeMB  = 50
	defaultLogMaxBackups = 5
	defaultLogMaxAgeDays = 30
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LibraryDir: defaultLibraryDir,
			LogDir:     defaultLogDir,
		},
		Tools: Tools{
			FFmpeg:    defaultFFmpeg,
			FFprobe:   defaultFFprobe,
			YtDlp:     defaultYtDlp,
			Separator: defaultSeparator,
			UVX:       defaultUVX,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			BufferSize:     defaultNotifyBufferSize,
		},
		USDB: USDB{
			BaseURL: defaultUSDBBaseURL,
		},
		Separation: Separation{
			InstrumentalModel: defaultInstrumentalModel,
			VocalModel:        defaultVocalModel,
			GainReductionDB:   defaultGainReductionDB,
		},
		Dereverb: Dereverb{
			Enabled: true,
			Backend: defaultDereverbBackend,
			Model:   defaultDereverbModel,
		},
		Transcription: Transcription{
			Model:             defaultWhisperModel,
			VolumeGateDB:      defaultVolumeGateDB,
			MaxSegmentSeconds: defaultMaxSegmentSeconds,
			MaxLineChars:      defaultMaxLineChars,
		},
		Workflow: Workflow{
			QueueCapacity:        defaultQueueCapacity,
			DownloadTimeout:      defaultDownloadTimeout,
			TranscodeTimeout:     defaultTranscodeTimeout,
			SeparationTimeout:    defaultSeparationTimeout,
			TranscriptionTimeout: defaultTranscriptionTimeout,
		},
		Logging: Logging{
			Format:     defaultLogFormat,
			Level:      defaultLogLevel,
			MaxSizeMB:  defaultLogMaxSizeMB,
			MaxBackups: defaultLogMaxBackups,
			MaxAgeDays: defaultLogMaxAgeDays,
		},
	}
}
