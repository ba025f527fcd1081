package deps

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/dcschmid/melodymind-podcast-pipeline/internal/services/sadtalker"
)

// PipelineRequirements lists the binaries the render pipeline invokes.
func PipelineRequirements(ffmpegBin, ffprobeBin, pythonBin string) []Requirement {
	return []Requirement{
		{
			Name:        "FFmpeg",
			Command:     ffmpegBin,
			Description: "Audio conversion, clip composition, covers, concatenation",
		},
		{
			Name:        "FFprobe",
			Command:     ffprobeBin,
			Description: "Cover duration probing",
		},
		{
			Name:        "Python",
			Command:     pythonBin,
			Description: "Drives the talking-head generator",
		},
	}
}

// CheckGenerator reports whether the talking-head generator install looks
// usable: the python interpreter resolves and the install directory holds
// the inference entry point.
func CheckGenerator(dir, pythonBin string) Status {
	status := Status{
		Name:        "Generator",
		Command:     strings.TrimSpace(dir),
		Description: "Talking-head clip generator install",
	}
	if status.Command == "" {
		status.Detail = "install directory not configured"
		return status
	}

	python := strings.TrimSpace(pythonBin)
	if python == "" {
		python = sadtalker.DefaultPython
	}
	if _, err := exec.LookPath(python); err != nil {
		status.Detail = fmt.Sprintf("python binary %q not found", python)
		return status
	}

	script := filepath.Join(status.Command, sadtalker.InferenceScript)
	info, err := os.Stat(script)
	if err != nil {
		status.Detail = fmt.Sprintf("%s not found in %q", sadtalker.InferenceScript, status.Command)
		return status
	}
	if info.IsDir() {
		status.Detail = fmt.Sprintf("%s is a directory", script)
		return status
	}

	status.Available = true
	return status
}
