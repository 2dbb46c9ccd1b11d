package stage

// Step names recorded into the descriptor's completed/failed sets. The
// separation step keeps its historical name for compatibility with callers
// that inspect the set.
const (
	StepAcquisition     = "acquisition"
	StepNormalization   = "normalization"
	StepSeparation      = "audio_separation"
	StepDereverberation = "dereverberation"
	StepTranscription   = "transcription"
	StepRemux           = "remux"
	StepCleanup         = "cleanup"
)
