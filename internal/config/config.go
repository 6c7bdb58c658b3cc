package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	// SourceDir is the root holding one subdirectory per camera.
	SourceDir string `toml:"source_dir"`
	// DestDir receives the generated Session_*/BatchSession_* tree.
	DestDir string `toml:"dest_dir"`
	// IntrinsicsDir holds pre-captured intrinsics calibration footage that
	// is merged verbatim into every batch.
	IntrinsicsDir string `toml:"intrinsics_dir"`
	LogDir        string `toml:"log_dir"`
	// ArtifactFile is copied into each newly created batch and trial root.
	ArtifactFile string `toml:"artifact_file"`
}

// TrialLog contains configuration for the spreadsheet experiment log.
type TrialLog struct {
	File string `toml:"file"`
	// Sheet selects the worksheet by name; empty means the first sheet.
	Sheet string `toml:"sheet"`
}

// Time contains civil-time conversion settings.
type Time struct {
	// Zone is the IANA name of the timezone the log's wall-clock times are
	// authored in. Video creation times are converted into this zone before
	// comparison.
	Zone string `toml:"zone"`
}

// Video contains settings for the camera video pool.
type Video struct {
	Extension     string `toml:"extension"`
	FFprobeBinary string `toml:"ffprobe_binary"`
}

// Journal contains configuration for the run journal database.
type Journal struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for sessionprep.
type Config struct {
	Paths    Paths    `toml:"paths"`
	TrialLog TrialLog `toml:"trial_log"`
	Time     Time     `toml:"time"`
	Video    Video    `toml:"video"`
	Journal  Journal  `toml:"journal"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/sessionprep/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The boolean reports
// whether a file was actually found at the resolved path.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("sessionprep.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories a run writes into. The source
// tree is deliberately left alone; it is read-only to this tool.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DestDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// Location loads the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Time.Zone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Time.Zone, err)
	}
	return loc, nil
}

// FFprobeBinary returns the ffprobe executable used for media inspection.
func (c *Config) FFprobeBinary() string {
	if binary := strings.TrimSpace(c.Video.FFprobeBinary); binary != "" {
		return binary
	}
	return "ffprobe"
}

// JournalPath returns the resolved journal database location.
func (c *Config) JournalPath() string {
	if path := strings.TrimSpace(c.Journal.Path); path != "" {
		return path
	}
	return filepath.Join(c.Paths.LogDir, "journal.db")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
