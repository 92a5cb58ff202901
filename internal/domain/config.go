package domain

import "strings"

// ConfigFileName is the file looked up in the global config directory.
const ConfigFileName = "config.toml"

const (
	DefaultUnixLocation    = "/opt/Compuware/TopazCLI"
	DefaultWindowsLocation = `C:\Program Files\Compuware\Topaz Workbench CLI`
)

// Config holds ttrun settings that are not part of a single run request.
type Config struct {
	Tool        ToolConfig        `toml:"tool"`
	Target      TargetConfig      `toml:"target"`
	Credentials CredentialsConfig `toml:"credentials"`
	Output      OutputConfig      `toml:"output"`
	Log         LogConfig         `toml:"log"`
}

// ToolConfig locates the Total Test CLI installation per target OS family.
type ToolConfig struct {
	UnixLocation    string `toml:"unix_location"`
	WindowsLocation string `toml:"windows_location"`
}

// Location returns the install directory for family.
func (c ToolConfig) Location(family OSFamily) string {
	if family == OSWindows {
		return strings.TrimSpace(c.WindowsLocation)
	}
	return strings.TrimSpace(c.UnixLocation)
}

type TargetConfig struct {
	// OS is unix or windows; empty means the local machine.
	OS        string `toml:"os"`
	Separator string `toml:"separator"`
}

type CredentialsConfig struct {
	File string `toml:"file"`
}

type OutputConfig struct {
	Format OutputFormat `toml:"format"`
}

type LogConfig struct {
	Level       string `toml:"level"`
	JSON        bool   `toml:"json"`
	IncludeLine bool   `toml:"include_line"`
}

func NewDefaultConfig() *Config {
	return &Config{
		Tool: ToolConfig{
			UnixLocation:    DefaultUnixLocation,
			WindowsLocation: DefaultWindowsLocation,
		},
		Output: OutputConfig{Format: FormatRaw},
		Log:    LogConfig{Level: "warn"},
	}
}
