package config

const (
	defaultLogDir       = "~/.local/share/sessionprep/logs"
	defaultArtifactFile = "~/.config/sessionprep/Config.toml"
	defaultTimezone     = "America/Montreal"
	defaultExtension    = ".mp4"
	defaultFFprobe      = "ffprobe"
	defaultLogFormat    = "console"
	defaultLogLevel     = "info"
)

// Default returns a Config populated with repository defaults. Source,
// destination, and trial log locations have no sensible defaults and must be
// provided by the user.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:       defaultLogDir,
			ArtifactFile: defaultArtifactFile,
		},
		Time: Time{
			Zone: defaultTimezone,
		},
		Video: Video{
			Extension:     defaultExtension,
			FFprobeBinary: defaultFFprobe,
		},
		Journal: Journal{
			Enabled: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
