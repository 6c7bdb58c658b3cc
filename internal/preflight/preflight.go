package preflight

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"sessionprep/internal/config"
	"sessionprep/internal/deps"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
// Optional paths are only checked when configured.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Camera source", cfg.Paths.SourceDir, unix.R_OK|unix.X_OK),
		CheckDirectoryAccess("Destination", cfg.Paths.DestDir, unix.R_OK|unix.W_OK|unix.X_OK),
		CheckFileReadable("Trial log", cfg.TrialLog.File),
		CheckTimezone(cfg.Time.Zone),
	}

	if cfg.Paths.IntrinsicsDir != "" {
		results = append(results, CheckDirectoryAccess("Intrinsics footage", cfg.Paths.IntrinsicsDir, unix.R_OK|unix.X_OK))
	}
	if cfg.Paths.ArtifactFile != "" {
		results = append(results, CheckFileReadable("Pipeline artifact", cfg.Paths.ArtifactFile))
	}

	for _, status := range CheckSystemDeps(ctx, cfg) {
		result := Result{Name: status.Name, Passed: status.Available, Detail: status.Command}
		if !status.Available {
			result.Detail = status.Detail
		}
		results = append(results, result)
	}
	return results
}

// CheckDirectoryAccess verifies that the directory exists and grants the
// requested access bits.
func CheckDirectoryAccess(name, path string, mode uint32) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, mode); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: path}
}

// CheckFileReadable verifies that the path names a readable regular file.
func CheckFileReadable(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: path}
}

// CheckTimezone verifies that the configured IANA zone name resolves against
// the system tz database.
func CheckTimezone(zone string) Result {
	const name = "Timezone"
	if zone == "" {
		return Result{Name: name, Detail: "no zone configured"}
	}
	if _, err := time.LoadLocation(zone); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", zone, err)}
	}
	return Result{Name: name, Passed: true, Detail: zone}
}

// CheckSystemDeps evaluates the external binaries for the given config. Both
// the organize command and "sessionprep status" use this to avoid duplicating
// the requirements list.
func CheckSystemDeps(_ context.Context, cfg *config.Config) []deps.Status {
	requirements := []deps.Requirement{
		{
			Name:        "FFprobe",
			Command:     deps.ResolveFFprobePath(cfg.FFprobeBinary()),
			Description: "Required for reading video creation timestamps",
		},
	}
	return deps.CheckBinaries(requirements)
}
