package app

import (
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/msaeedsaeedi/ttrun/internal/domain"
)

const (
	ScriptUnix    = "TotalTestCLI.sh"
	ScriptWindows = "TotalTestCLI.bat"

	// ScratchDirName is created under the workspace for the CLI's own data.
	ScratchDirName = "TopazCliWkspc"

	// ExternalToolsSource identifies the calling integration to the CLI.
	ExternalToolsSource = "jenkins"
)

const (
	commandParm         = "-cmd=runtest"
	hostParm            = "-host="
	portParm            = "-port="
	userParm            = "-user="
	passwordParm        = "-pw="
	projectParm         = "-project="
	testSuiteParm       = "-ts="
	jclParm             = "-jcl="
	externalToolsWSParm = "-externaltoolsws="
	externalToolsParm   = "-externaltools="
	dataParm            = "-data"
)

// ScriptName returns the CLI script for the target OS family.
func ScriptName(family domain.OSFamily) string {
	if family == domain.OSWindows {
		return ScriptWindows
	}
	return ScriptUnix
}

// LaunchParams is everything needed to build one CLI invocation.
type LaunchParams struct {
	Config     *domain.RunConfiguration
	Credential domain.Credential
	Platform   domain.Platform
	ToolDir    string
	Workspace  string
	Env        []string
}

// BuildInvocation assembles the argument vector. It does not touch the file
// system and its output depends only on p.
func BuildInvocation(p LaunchParams) *domain.CommandInvocation {
	family := p.Platform.Family
	script := ScriptName(family)
	executable := p.Platform.Join(p.ToolDir, script)
	scratch := p.Platform.Join(p.Workspace, ScratchDirName)
	host, port := domain.SplitHostPort(p.Config.HostPort)

	esc := func(s string) string {
		return domain.EscapeForScript(s, family)
	}

	args := []domain.Arg{
		{Value: executable},
		{Value: commandParm},
		{Value: esc(hostParm + host)},
		{Value: esc(portParm + port)},
		{Value: esc(userParm + p.Credential.Username)},
		{Value: esc(passwordParm + p.Credential.Password), Sensitive: true},
		{Value: esc(projectParm + p.Config.ProjectFolder)},
		{Value: esc(testSuiteParm + p.Config.TestSuite)},
		{Value: esc(jclParm + p.Config.JCL)},
		{Value: esc(externalToolsWSParm + p.Workspace)},
		{Value: esc(externalToolsParm + ExternalToolsSource)},
		{Value: dataParm},
		{Value: esc(scratch)},
	}

	return &domain.CommandInvocation{
		Name: script,
		Args: args,
		Dir:  p.Workspace,
		Env:  p.Env,
	}
}

// Launcher resolves the CLI on a target and prepares the invocation.
type Launcher struct {
	target domain.Target
	tool   domain.ToolConfig
	logger *zap.Logger
}

func NewLauncher(target domain.Target, tool domain.ToolConfig, logger *zap.Logger) *Launcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Launcher{
		target: target,
		tool:   tool,
		logger: logger.Named("launcher"),
	}
}

// Prepare locates the CLI script for the target platform, creates the scratch
// workspace and returns the invocation. Path notices are written to sink.
func (l *Launcher) Prepare(cfg *domain.RunConfiguration, cred domain.Credential, workspace string, env []string, sink io.Writer) (*domain.CommandInvocation, error) {
	platform := l.target.Platform()

	toolDir := l.tool.Location(platform.Family)
	if toolDir == "" {
		return nil, &domain.ToolResolutionError{
			Err: fmt.Errorf("no install location configured for %s targets", platform.Family),
		}
	}
	if workspace == "" {
		return nil, &domain.ToolResolutionError{Err: errors.New("workspace is not set")}
	}

	inv := BuildInvocation(LaunchParams{
		Config:     cfg,
		Credential: cred,
		Platform:   platform,
		ToolDir:    toolDir,
		Workspace:  workspace,
		Env:        env,
	})

	fmt.Fprintf(sink, "Topaz for Total Test CLI script file path: %s\n", inv.Program())
	if err := l.target.Stat(inv.Program()); err != nil {
		return nil, &domain.ToolResolutionError{Path: inv.Program(), Err: err}
	}

	scratch := platform.Join(workspace, ScratchDirName)
	fmt.Fprintf(sink, "Topaz for Total Test CLI workspace: %s\n", scratch)
	if err := l.target.MkdirAll(scratch); err != nil {
		return nil, &domain.ToolResolutionError{Path: scratch, Err: err}
	}

	l.logger.Debug("prepared invocation",
		zap.String("os_family", string(platform.Family)),
		zap.String("script", inv.Program()),
		zap.String("workspace", workspace),
	)
	return inv, nil
}
