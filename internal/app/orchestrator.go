package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/msaeedsaeedi/ttrun/internal/domain"
	"github.com/msaeedsaeedi/ttrun/internal/ui"
)

const (
	DisplayName = "Topaz for Total Test"

	successLine = "Total Test run succeeded"
	failureLine = "Total Test run failed"
)

// ErrRunFailed wraps every failure that has already been reported in the
// build log.
var ErrRunFailed = errors.New("total test run failed")

type Options struct {
	Target      domain.Target
	Tool        domain.ToolConfig
	Credentials domain.CredentialResolver
	Runner      ProcessRunner
	Logger      *zap.Logger
	Stdout      io.Writer
	Stderr      io.Writer
	// Environ returns the environment forwarded to the CLI. Defaults to
	// os.Environ.
	Environ func() []string
}

type Orchestrator struct {
	validator *domain.ConfigValidator
	launcher  *Launcher
	executor  Executor
	creds     domain.CredentialResolver
	logger    *zap.Logger
	stdout    io.Writer
	stderr    io.Writer
	environ   func() []string
}

func NewOrchestrator(opts Options) *Orchestrator {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	o := &Orchestrator{
		validator: domain.NewConfigValidator(),
		launcher:  NewLauncher(opts.Target, opts.Tool, logger),
		executor:  NewSingleExecutor(opts.Runner, logger),
		creds:     opts.Credentials,
		logger:    logger.Named("orchestrator"),
		stdout:    opts.Stdout,
		stderr:    opts.Stderr,
		environ:   opts.Environ,
	}
	if o.stdout == nil {
		o.stdout = os.Stdout
	}
	if o.stderr == nil {
		o.stderr = os.Stderr
	}
	if o.environ == nil {
		o.environ = os.Environ
	}
	if o.creds == nil {
		o.creds = noCredentials{}
	}
	return o
}

// noCredentials is used when no store is configured; every lookup misses.
type noCredentials struct{}

func (noCredentials) Resolve(context.Context, string, string) (domain.Credential, error) {
	return domain.Credential{}, domain.ErrCredentialNotFound
}

// Execute validates req and, if it is valid, runs the Total Test CLI once,
// reporting through the formatter selected by format. Any failure is written
// to the build log and returned wrapped in ErrRunFailed.
func (o *Orchestrator) Execute(ctx context.Context, req *domain.Request, format domain.OutputFormat) error {
	handler := o.getFormatter(req, format)

	if format == domain.FormatTUI {
		tuiHandler, ok := handler.(*ui.TUIFormatter)
		if !ok {
			return fmt.Errorf("tui formatter not available")
		}
		return o.executeTUI(ctx, req, tuiHandler)
	}

	return o.run(ctx, req, handler)
}

func (o *Orchestrator) executeTUI(ctx context.Context, req *domain.Request, tui *ui.TUIFormatter) error {
	ctxRun, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctxRun)

	// Start TUI; when it exits (quit or finish), cancel to stop the run
	g.Go(func() error {
		defer cancel()
		return tui.Run(gctx)
	})

	// Ensure the TUI program is initialized before starting the run so streaming works
	if err := tui.WaitReady(gctx); err != nil {
		return err
	}

	var runErr error
	g.Go(func() error {
		runErr = o.run(gctx, req, tui)
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	if runErr != nil {
		// the alternate screen is gone, so repeat the outcome on stderr
		fmt.Fprintln(o.stderr, summaryLine(runErr))
	}
	return runErr
}

func (o *Orchestrator) run(ctx context.Context, req *domain.Request, handler ResultHandler) (err error) {
	runID := ulid.Make().String()
	logger := o.logger.With(zap.String("run_id", runID))
	defer func() { handler.OnFinish(err) }()

	sink, _ := handler.GetOutputWriters()
	if sink == nil {
		sink = io.Discard
	}
	fmt.Fprintln(sink, DisplayName)

	cfg := req.RunConfiguration()
	cred, err := o.validator.Validate(ctx, cfg, o.creds, sink)
	if err != nil {
		return o.fail(logger, sink, err)
	}

	inv, err := o.launcher.Prepare(cfg, cred, req.Workspace, mergeEnv(o.environ(), req.Env), sink)
	if err != nil {
		return o.fail(logger, sink, err)
	}

	secrets := domain.SecretForms(cred.Password, o.launcher.target.Platform().Family)
	if _, err := o.executor.Execute(ctx, runID, inv, secrets, handler); err != nil {
		return o.fail(logger, sink, err)
	}

	fmt.Fprintln(sink, successLine)
	logger.Info("total test run succeeded")
	return nil
}

func (o *Orchestrator) fail(logger *zap.Logger, sink io.Writer, err error) error {
	fmt.Fprintln(sink, summaryLine(err))
	logger.Info("total test run failed", zap.Error(err))
	return fmt.Errorf("%w: %w", ErrRunFailed, err)
}

// summaryLine is the one build log line explaining err. A non-zero exit has
// already been logged with its exit value.
func summaryLine(err error) string {
	var execErr *domain.ExecutionError
	if errors.As(err, &execErr) {
		return failureLine
	}
	if multi, ok := err.(interface{ Unwrap() []error }); ok && errors.Is(err, ErrRunFailed) {
		if errs := multi.Unwrap(); len(errs) > 1 {
			return summaryLine(errs[len(errs)-1])
		}
	}
	return err.Error()
}

// mergeEnv overlays extra onto base, in key order so the result is stable.
func mergeEnv(base []string, extra map[string]string) []string {
	if len(extra) == 0 {
		return base
	}
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	merged := make([]string, 0, len(base)+len(keys))
	merged = append(merged, base...)
	for _, k := range keys {
		merged = append(merged, k+"="+extra[k])
	}
	return merged
}

func (o *Orchestrator) getFormatter(req *domain.Request, format domain.OutputFormat) ResultHandler {
	switch format {
	case domain.FormatJSON:
		return ui.NewJSONFormatter(o.stdout)
	case domain.FormatTUI:
		return ui.NewTUIFormatter(req)
	default:
		return ui.NewRawFormatter(o.stdout, o.stderr)
	}
}
