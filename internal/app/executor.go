package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/msaeedsaeedi/ttrun/internal/domain"
)

type ResultHandler interface {
	OnStart(runID string, inv *domain.CommandInvocation)
	OnComplete(result domain.RunResult)
	OnFinish(err error)
	GetOutputWriters() (stdout, stderr io.Writer)
}

// ProcessRunner starts a process and blocks until it exits or ctx is done.
type ProcessRunner interface {
	Run(ctx context.Context, inv *domain.CommandInvocation, runID string, stdout, stderr io.Writer) domain.RunResult
}

type Executor interface {
	Execute(ctx context.Context, runID string, inv *domain.CommandInvocation, secrets []string, handler ResultHandler) (domain.RunResult, error)
}

// SingleExecutor runs an invocation exactly once. A failed run is never
// retried.
type SingleExecutor struct {
	runner ProcessRunner
	logger *zap.Logger
}

func NewSingleExecutor(runner ProcessRunner, logger *zap.Logger) *SingleExecutor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SingleExecutor{
		runner: runner,
		logger: logger.Named("executor"),
	}
}

// Execute echoes the masked command line, streams the process output through
// handler with secrets hidden, logs the exit value and maps the outcome to an
// error: nil on exit 0, *domain.ExecutionError on any other exit value,
// *domain.LaunchError if the process never started and domain.ErrCancelled if
// ctx ended first.
func (e *SingleExecutor) Execute(ctx context.Context, runID string, inv *domain.CommandInvocation, secrets []string, handler ResultHandler) (domain.RunResult, error) {
	stdoutWriter, stderrWriter := handler.GetOutputWriters()
	stdoutWriter = newMaskingWriter(stdoutWriter, secrets...)
	stderrWriter = newMaskingWriter(stderrWriter, secrets...)
	sink := stdoutWriter
	if sink == nil {
		sink = io.Discard
	}

	select {
	case <-ctx.Done():
		return domain.RunResult{ID: runID, ExitCode: -1}, fmt.Errorf("%w: %w", domain.ErrCancelled, ctx.Err())
	default:
	}

	handler.OnStart(runID, inv)
	fmt.Fprintf(sink, "$ %s\n", inv.Masked())

	result := e.runner.Run(ctx, inv, runID, stdoutWriter, stderrWriter)

	var launchErr *domain.LaunchError
	if !errors.As(result.Error, &launchErr) {
		fmt.Fprintf(sink, "%s exited with exit value = %d\n", inv.Name, result.ExitCode)
	}
	handler.OnComplete(result)

	e.logger.Info("run finished",
		zap.String("run_id", runID),
		zap.Int("exit_code", result.ExitCode),
		zap.Bool("success", result.Success),
	)

	switch {
	case result.Error != nil:
		return result, result.Error
	case result.ExitCode != 0:
		return result, &domain.ExecutionError{Executable: inv.Name, ExitCode: result.ExitCode}
	}
	return result, nil
}
