package deps

import (
	"os/exec"

	"karaokeforge/internal/config"
)

// Requirement names one external binary the pipeline shells out to.
type Requirement struct {
	Name     string
	Binary   string
	Optional bool
}

// Status is the lookup result for one requirement.
type Status struct {
	Requirement Requirement
	Found       bool
	Path        string
}

// DefaultRequirements lists the binaries the pipeline needs, using the
// configured names.
func DefaultRequirements(cfg *config.Config) []Requirement {
	return []Requirement{
		{Name: "transcoder", Binary: cfg.Tools.FFmpeg},
		{Name: "media prober", Binary: cfg.Tools.FFprobe},
		{Name: "video downloader", Binary: cfg.Tools.YtDlp},
		{Name: "source separator", Binary: cfg.Tools.Separator},
		{Name: "python tool runner", Binary: cfg.Tools.UVX},
	}
}

// Check resolves each requirement against PATH.
func Check(requirements []Requirement) []Status {
	out := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		path, err := exec.LookPath(req.Binary)
		out = append(out, Status{
			Requirement: req,
			Found:       err == nil,
			Path:        path,
		})
	}
	return out
}
