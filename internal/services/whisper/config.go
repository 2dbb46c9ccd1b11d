package whisper

// Config captures runtime settings for transcription.
type Config struct {
	// Model is the whisper model to use (e.g. "large-v3").
	Model string
	// CUDAEnabled enables GPU acceleration.
	CUDAEnabled bool
	// Language is an optional ISO 639-1 hint; empty lets the engine detect.
	Language string
}

// Engine invocation constants.
const (
	DefaultModel = "large-v3"
	CUDAIndexURL = "https://download.pytorch.org/whl/cu128"
	PypiIndexURL = "https://pypi.org/simple"
	BatchSize    = "4"
	OutputFormat = "json"
	CPUDevice    = "cpu"
	CUDADevice   = "cuda"
)
