package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type cliTestEnv struct {
	baseDir    string
	configPath string
	sourceDir  string
	destDir    string
	logFile    string
}

// setupCLITestEnv lays out a minimal working environment: a config file, a
// one-camera source tree, a trial log, and a stub ffprobe that reports a
// fixed creation time.
func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	env := &cliTestEnv{
		baseDir:    base,
		configPath: filepath.Join(base, "config.toml"),
		sourceDir:  filepath.Join(base, "source"),
		destDir:    filepath.Join(base, "dest"),
		logFile:    filepath.Join(base, "trial_log.csv"),
	}

	if err := os.MkdirAll(filepath.Join(env.sourceDir, "cam01"), 0o755); err != nil {
		t.Fatalf("mkdir source: %v", err)
	}
	if err := os.WriteFile(filepath.Join(env.sourceDir, "cam01", "a.mp4"), []byte("video"), 0o644); err != nil {
		t.Fatalf("write video: %v", err)
	}
	logContent := "Groups,Trials,Date,Time,Athlete ID\nG1,Calibration,2025-02-18,10:00:00,\n"
	if err := os.WriteFile(env.logFile, []byte(logContent), 0o644); err != nil {
		t.Fatalf("write trial log: %v", err)
	}

	ffprobePath := stubFFprobe(t, base, "2025-02-18T15:00:00.000000Z")
	content := fmt.Sprintf(`[paths]
source_dir = %q
dest_dir = %q
log_dir = %q

[trial_log]
file = %q

[video]
ffprobe_binary = %q

[journal]
enabled = false
`, env.sourceDir, env.destDir, filepath.Join(base, "logs"), env.logFile, ffprobePath)
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return env
}

// stubFFprobe writes a shell script that emits a fixed probe payload.
func stubFFprobe(t *testing.T, baseDir, creationTime string) string {
	t.Helper()
	path := filepath.Join(baseDir, "bin", "ffprobe")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir bin: %v", err)
	}
	script := fmt.Sprintf(`#!/bin/sh
cat <<'JSON'
{"format": {"tags": {"creation_time": %q}}, "streams": [{"codec_type": "video"}]}
JSON
`, creationTime)
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write ffprobe stub: %v", err)
	}
	return path
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	if configPath != "" {
		args = append([]string{"--config", configPath}, args...)
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, needle string) {
	t.Helper()
	if !strings.Contains(output, needle) {
		t.Fatalf("expected output to contain %q, got:\n%s", needle, output)
	}
}

func TestCLIOrganizePlacesVideos(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"organize"}, env.configPath)
	if err != nil {
		t.Fatalf("organize: %v", err)
	}
	requireContains(t, out, "1 batches")
	requireContains(t, out, "1 videos placed")

	placed := filepath.Join(env.destDir, "Session_2025-02-18", "BatchSession_1",
		"calibration", "extrinsics", "ext_cam01", "2025-02-18_10h00_BatchSession_1_cam01.mp4")
	if _, err := os.Stat(placed); err != nil {
		t.Fatalf("expected placed video at %s: %v", placed, err)
	}
}

func TestCLIOrganizeDryRunLeavesDestEmpty(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"organize", "--dry-run"}, env.configPath)
	if err != nil {
		t.Fatalf("organize --dry-run: %v", err)
	}
	requireContains(t, out, "cam01")

	session := filepath.Join(env.destDir, "Session_2025-02-18")
	if _, err := os.Stat(session); !os.IsNotExist(err) {
		t.Fatalf("expected dry run to leave destination untouched (err=%v)", err)
	}
}

func TestCLIPlanListsCandidates(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"plan"}, env.configPath)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	requireContains(t, out, "BatchSession_1")
	requireContains(t, out, "a.mp4")
}

func TestCLIStatusReportsChecks(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"status"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "Camera source")
	requireContains(t, out, "Trial log")
	requireContains(t, out, "Timezone")
}

func TestCLIProbeReadsCreationTime(t *testing.T) {
	env := setupCLITestEnv(t)

	video := filepath.Join(env.sourceDir, "cam01", "a.mp4")
	out, _, err := runCLI(t, []string{"probe", video}, env.configPath)
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	requireContains(t, out, "2025-02-18T15:00:00Z")
	requireContains(t, out, "America/Montreal")
}
