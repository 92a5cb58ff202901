package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/msaeedsaeedi/ttrun/internal/app"
	"github.com/msaeedsaeedi/ttrun/internal/domain"
	"github.com/msaeedsaeedi/ttrun/internal/infra"
	"github.com/msaeedsaeedi/ttrun/internal/ui"
)

// version is set at build time using -ldflags.
var version = "0.1.0-beta"

// errCheckFailed is returned by check after the failures have been printed.
var errCheckFailed = errors.New("parameter check failed")

// newLoader is replaced in tests to keep the user's global config out.
var newLoader = infra.NewLoader

type globalOptions struct {
	configFile      string
	credentialsFile string
	context         string
}

type runOptions struct {
	globalOptions
	params      domain.Request
	requestFile string
	cliLocation string
	targetOS    string
	json        bool
	raw         bool
	tui         bool
	logLevel    string
}

type checkOptions struct {
	globalOptions
	params      domain.Request
	requestFile string
}

// settings is the resolved configuration shared by every subcommand.
type settings struct {
	loader *infra.Loader
	cfg    *domain.Config
}

func loadSettings(opts *globalOptions) (*settings, error) {
	loader := newLoader()
	cfg, err := loader.Load(opts.configFile)
	if err != nil {
		return nil, err
	}
	if opts.credentialsFile != "" {
		cfg.Credentials.File = opts.credentialsFile
	}
	if cfg.Credentials.File == "" {
		cfg.Credentials.File = loader.DefaultCredentialsPath()
	}
	return &settings{loader: loader, cfg: cfg}, nil
}

func (s *settings) credentialStore() *infra.CredentialStore {
	return infra.NewCredentialStore(s.cfg.Credentials.File)
}

func (s *settings) resolver() domain.CredentialResolver {
	return infra.ChainResolver{s.credentialStore(), infra.NewEnvResolver()}
}

// platform describes the target the CLI runs on. An unset target.os means
// this machine.
func (s *settings) platform() (domain.Platform, error) {
	var platform domain.Platform
	if s.cfg.Target.OS == "" {
		platform = infra.DetectPlatform()
	} else {
		family, err := domain.ParseOSFamily(s.cfg.Target.OS)
		if err != nil {
			return domain.Platform{}, err
		}
		platform = domain.NewPlatform(family)
	}
	if s.cfg.Target.Separator != "" {
		platform.Separator = s.cfg.Target.Separator
	}
	return platform, nil
}

// buildRequest layers the request file under the flag values.
func buildRequest(requestFile string, flags *domain.Request) (*domain.Request, error) {
	req := &domain.Request{}
	if requestFile != "" {
		fromFile, err := infra.LoadRequest(requestFile)
		if err != nil {
			return nil, err
		}
		req = fromFile
	}
	return req.Merge(flags), nil
}

// resolveWorkspace makes ws absolute, defaulting to the current directory.
func resolveWorkspace(ws string) (string, error) {
	if ws == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get current directory: %w", err)
		}
		return cwd, nil
	}
	abs, err := filepath.Abs(ws)
	if err != nil {
		return "", fmt.Errorf("workspace %q: %w", ws, err)
	}
	return abs, nil
}

func resolveFormat(opts *runOptions, cfg *domain.Config) domain.OutputFormat {
	switch {
	case opts.json:
		return domain.FormatJSON
	case opts.raw:
		return domain.FormatRaw
	case opts.tui:
		return domain.FormatTUI
	case cfg.Output.Format != "":
		return cfg.Output.Format
	default:
		return domain.FormatRaw
	}
}

func runTotalTest(cmd *cobra.Command, opts *runOptions) error {
	s, err := loadSettings(&opts.globalOptions)
	if err != nil {
		return err
	}
	if opts.targetOS != "" {
		s.cfg.Target.OS = opts.targetOS
	}
	if opts.logLevel != "" {
		s.cfg.Log.Level = opts.logLevel
	}

	platform, err := s.platform()
	if err != nil {
		return err
	}
	if opts.cliLocation != "" {
		if platform.Family == domain.OSWindows {
			s.cfg.Tool.WindowsLocation = opts.cliLocation
		} else {
			s.cfg.Tool.UnixLocation = opts.cliLocation
		}
	}

	logger, err := infra.NewZap(s.cfg.Log)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	req, err := buildRequest(opts.requestFile, &opts.params)
	if err != nil {
		return err
	}
	if req.Workspace, err = resolveWorkspace(req.Workspace); err != nil {
		return err
	}

	logger.Debug("resolved settings",
		zap.String("config", s.loader.GlobalConfigPath()),
		zap.String("credentials_file", s.cfg.Credentials.File),
		zap.String("target_os", string(platform.Family)),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	orchestrator := app.NewOrchestrator(app.Options{
		Target:      infra.NewLocalTarget(platform),
		Tool:        s.cfg.Tool,
		Credentials: s.resolver(),
		Runner:      infra.NewCommandRunner(logger),
		Logger:      logger,
		Stdout:      cmd.OutOrStdout(),
		Stderr:      cmd.ErrOrStderr(),
	})
	return orchestrator.Execute(ctx, req, resolveFormat(opts, s.cfg))
}

// checkParameters runs the field checks on every parameter that was given,
// the way an input form validates each field as it is filled in.
func checkParameters(ctx context.Context, out io.Writer, opts *checkOptions) error {
	req, err := buildRequest(opts.requestFile, &opts.params)
	if err != nil {
		return err
	}

	type fieldCheck struct {
		field domain.Field
		value string
		check func(string) error
	}
	checks := []fieldCheck{
		{domain.FieldHostPort, req.HostPort, domain.CheckHostPort},
		{domain.FieldProject, req.ProjectFolder, domain.CheckProjectFolder},
		{domain.FieldTestSuite, req.TestSuite, domain.CheckTestSuite},
		{domain.FieldJCL, req.JCL, domain.CheckJCL},
	}

	var rows []string
	failed := false
	report := func(field domain.Field, err error) {
		status := "ok"
		if err != nil {
			status = err.Error()
			failed = true
		}
		rows = append(rows, string(field)+"|"+status)
	}

	if strings.TrimSpace(req.CredentialsID) != "" {
		s, err := loadSettings(&opts.globalOptions)
		if err != nil {
			return err
		}
		contextRef := req.Context
		if opts.context != "" {
			contextRef = opts.context
		}
		_, err = s.resolver().Resolve(ctx, contextRef, strings.TrimSpace(req.CredentialsID))
		if err != nil {
			err = domain.ErrMissingCredential
		}
		report(domain.FieldCredentials, err)
	}
	for _, c := range checks {
		if c.value == "" {
			continue
		}
		report(c.field, c.check(c.value))
	}

	if len(rows) == 0 {
		return errors.New("nothing to check: pass at least one parameter")
	}
	fmt.Fprintln(out, ui.FormatKV(rows))
	if failed {
		return errCheckFailed
	}
	return nil
}

func listCredentials(ctx context.Context, out io.Writer, opts *globalOptions) error {
	s, err := loadSettings(opts)
	if err != nil {
		return err
	}
	creds, err := s.credentialStore().List(ctx, opts.context)
	if err != nil {
		return err
	}
	if len(creds) == 0 {
		fmt.Fprintln(out, "No credentials available")
		return nil
	}
	rows := []string{"Credential|ID"}
	for _, c := range creds {
		rows = append(rows, c.Label()+"|"+c.ID)
	}
	fmt.Fprintln(out, ui.FormatList(rows))
	return nil
}

func addGlobalFlags(cmd *cobra.Command, opts *globalOptions) {
	cmd.Flags().StringVar(&opts.configFile, "config", "", "Path to a config file (TOML)")
	cmd.Flags().StringVar(&opts.credentialsFile, "credentials-file", "", "Path to the credentials file (YAML)")
	cmd.Flags().StringVar(&opts.context, "context", "", "Context used to scope credential lookup")
}

func addParamFlags(cmd *cobra.Command, params *domain.Request, requestFile *string) {
	cmd.Flags().StringVar(&params.HostPort, "host-port", "", "Host and port of the Topaz host, as host:port")
	cmd.Flags().StringVar(&params.CredentialsID, "credentials-id", "", "ID of the login credentials")
	cmd.Flags().StringVar(&params.ProjectFolder, "project", "", "Total Test project folder")
	cmd.Flags().StringVar(&params.TestSuite, "test-suite", "", "Test suite or scenario (.testsuite or .testscenario)")
	cmd.Flags().StringVar(&params.JCL, "jcl", "", "JCL member used to run the tests")
	cmd.Flags().StringVar(requestFile, "request", "", "Read run parameters from a YAML or JSON file")
}

func newRunCmd() *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run [flags]",
		Short: "Run a Total Test suite through the Total Test CLI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.params.Context = opts.context
			return runTotalTest(cmd, opts)
		},
	}

	addParamFlags(cmd, &opts.params, &opts.requestFile)
	addGlobalFlags(cmd, &opts.globalOptions)
	cmd.Flags().StringVar(&opts.params.Workspace, "workspace", "", "Workspace the CLI runs in (default: current directory)")
	cmd.Flags().StringVar(&opts.cliLocation, "cli-location", "", "Total Test CLI install directory on the target")
	cmd.Flags().StringVar(&opts.targetOS, "target-os", "", "OS family of the target (unix|windows)")
	cmd.Flags().BoolVar(&opts.json, "json", false, "Output in JSON format")
	cmd.Flags().BoolVar(&opts.raw, "raw", false, "Output in raw format (default)")
	cmd.Flags().BoolVar(&opts.tui, "tui", false, "Output in TUI format")
	cmd.MarkFlagsMutuallyExclusive("json", "raw", "tui")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "", "Diagnostics log level (debug|info|warn|error)")

	return cmd
}

func newCheckCmd() *cobra.Command {
	opts := &checkOptions{}
	cmd := &cobra.Command{
		Use:   "check [flags]",
		Short: "Check run parameters without launching the CLI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return checkParameters(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}
	addParamFlags(cmd, &opts.params, &opts.requestFile)
	addGlobalFlags(cmd, &opts.globalOptions)
	return cmd
}

func newCredentialsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credentials",
		Short: "Inspect login credentials",
	}

	opts := &globalOptions{}
	list := &cobra.Command{
		Use:   "list",
		Short: "List the credentials available to a context",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listCredentials(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}
	addGlobalFlags(list, opts)
	cmd.AddCommand(list)
	return cmd
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "ttrun",
		Short:         "Run Topaz for Total Test suites",
		Long:          "ttrun - launch the Topaz for Total Test CLI from a build job",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.Version = version

	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newCheckCmd())
	cmd.AddCommand(newCredentialsCmd())
	return cmd
}

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		// already reported in the build log
		if errors.Is(err, app.ErrRunFailed) || errors.Is(err, errCheckFailed) {
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		fmt.Fprintln(os.Stderr)
		_ = rootCmd.Usage()
		os.Exit(1)
	}
}
