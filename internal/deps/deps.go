package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// Requirement defines an external binary sessionprep relies on.
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
			status.Available = false
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Available = false
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}

// ResolveFFprobePath normalizes the configured ffprobe command, falling back
// to resolving "ffprobe" from PATH when nothing is configured.
func ResolveFFprobePath(configured string) string {
	binary := strings.TrimSpace(configured)
	if binary == "" {
		binary = "ffprobe"
	}
	if resolved, err := exec.LookPath(binary); err == nil {
		return resolved
	}
	return binary
}
