package domain

import (
	"fmt"
	"strings"
	"time"
)

type OutputFormat string
type OSFamily string

const (
	FormatTUI  OutputFormat = "tui"
	FormatJSON OutputFormat = "json"
	FormatRaw  OutputFormat = "raw"
)

const (
	OSUnix    OSFamily = "unix"
	OSWindows OSFamily = "windows"
)

// ParseOSFamily maps a user supplied OS name onto a family. Anything that is
// not Windows is treated as Unix-like.
func ParseOSFamily(s string) (OSFamily, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "windows", "win":
		return OSWindows, nil
	case "unix", "linux", "darwin", "macos", "aix", "zos", "freebsd":
		return OSUnix, nil
	default:
		return "", fmt.Errorf("unknown OS family %q (expected unix or windows)", s)
	}
}

// Platform describes the machine the external tool runs on. It may differ
// from the machine ttrun itself runs on.
type Platform struct {
	Family    OSFamily
	Separator string
}

// NewPlatform returns a platform with the conventional separator for family.
func NewPlatform(family OSFamily) Platform {
	if family == OSWindows {
		return Platform{Family: OSWindows, Separator: `\`}
	}
	return Platform{Family: OSUnix, Separator: "/"}
}

func (p Platform) IsUnix() bool {
	return p.Family != OSWindows
}

// Join appends name to dir using the target separator.
func (p Platform) Join(dir, name string) string {
	if dir == "" || strings.HasSuffix(dir, p.Separator) {
		return dir + name
	}
	return dir + p.Separator + name
}

// RunConfiguration is the set of parameters needed to invoke Total Test once.
type RunConfiguration struct {
	HostPort      string
	CredentialsID string
	ProjectFolder string
	TestSuite     string
	JCL           string
	// Context scopes credential lookup, e.g. the job or project name.
	Context string
}

// NewRunConfiguration builds a configuration with every field trimmed.
func NewRunConfiguration(hostPort, credentialsID, projectFolder, testSuite, jcl string) *RunConfiguration {
	return &RunConfiguration{
		HostPort:      strings.TrimSpace(hostPort),
		CredentialsID: strings.TrimSpace(credentialsID),
		ProjectFolder: strings.TrimSpace(projectFolder),
		TestSuite:     strings.TrimSpace(testSuite),
		JCL:           strings.TrimSpace(jcl),
	}
}

// Credential is a resolved username and secret.
type Credential struct {
	ID          string
	Username    string
	Password    string
	Description string
}

// Label is the text shown when listing credentials.
func (c Credential) Label() string {
	if d := strings.TrimSpace(c.Description); d != "" {
		return c.Username + " (" + d + ")"
	}
	return c.Username
}

type RunResult struct {
	ID         string
	ExitCode   int
	Duration   time.Duration
	StartedAt  time.Time
	FinishedAt time.Time
	Success    bool
	Error      error
}
