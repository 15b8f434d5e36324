package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"karaoke/internal/config"
)

// Requirement defines an external tool the pipeline relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Requirements lists the external tools the configured backend needs.
func Requirements(cfg *config.Config) []Requirement {
	if cfg == nil || cfg.Transcription.Backend != config.BackendWhisperX {
		return nil
	}
	reqs := []Requirement{{
		Name:        "uvx",
		Command:     cfg.Transcription.UVXCommand,
		Description: "Required to launch WhisperX",
	}}
	if cfg.Transcription.Device == config.DeviceAuto || cfg.Transcription.Device == "cuda" {
		reqs = append(reqs, Requirement{
			Name:        "nvidia-smi",
			Command:     "nvidia-smi",
			Description: "Detects an NVIDIA GPU; without it transcription runs on the CPU",
			Optional:    true,
		})
	}
	return reqs
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		resolved, err := exec.LookPath(cmd)
		if err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Command = resolved
		status.Available = true
		results = append(results, status)
	}
	return results
}
