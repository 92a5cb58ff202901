package infra

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/msaeedsaeedi/ttrun/internal/domain"
)

const (
	// waitDelay bounds how long Wait blocks on output pipes held open by
	// grandchildren after the process itself has gone.
	waitDelay    = 5 * time.Second
	maxLineBytes = 1024 * 1024
)

type CommandRunner struct {
	logger *zap.Logger
}

func NewCommandRunner(logger *zap.Logger) *CommandRunner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommandRunner{
		logger: logger.Named("runner"),
	}
}

// Run starts inv in its own process group, copies stdout and stderr line by
// line to the given writers as the lines arrive, and waits for the process to
// exit. Cancelling ctx kills the whole group.
func (r *CommandRunner) Run(ctx context.Context, inv *domain.CommandInvocation, runID string, stdoutWriter, stderrWriter io.Writer) domain.RunResult {
	result := domain.RunResult{
		ID:        runID,
		ExitCode:  -1,
		StartedAt: time.Now(),
	}

	argv := inv.Argv()
	if len(argv) == 0 {
		result.FinishedAt = time.Now()
		result.Error = &domain.LaunchError{Err: errors.New("empty command")}
		return result
	}

	// #nosec G204 - argv is built by the launcher from validated parameters
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = inv.Dir
	cmd.Env = inv.Env
	cmd.WaitDelay = waitDelay
	setupProcessGroup(cmd)
	cmd.Cancel = func() error {
		r.logger.Info("cancelling process", zap.String("run_id", runID))
		return killProcess(cmd)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return r.launchFailed(result, argv[0], fmt.Errorf("stdout pipe: %w", err))
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return r.launchFailed(result, argv[0], fmt.Errorf("stderr pipe: %w", err))
	}

	if err := cmd.Start(); err != nil {
		return r.launchFailed(result, argv[0], err)
	}
	r.logger.Debug("process started",
		zap.String("run_id", runID),
		zap.Int("pid", cmd.Process.Pid),
		zap.String("dir", cmd.Dir),
	)

	// stdout and stderr share one build log, so writes are serialised.
	var mu sync.Mutex
	var g errgroup.Group
	g.Go(func() error { return streamLines(stdout, stdoutWriter, &mu) })
	g.Go(func() error { return streamLines(stderr, stderrWriter, &mu) })
	streamErr := g.Wait()

	waitErr := cmd.Wait()
	result.FinishedAt = time.Now()
	result.Duration = result.FinishedAt.Sub(result.StartedAt)
	if cmd.ProcessState != nil {
		result.ExitCode = cmd.ProcessState.ExitCode()
	}

	switch {
	case ctx.Err() != nil:
		result.Error = fmt.Errorf("%w: %w", domain.ErrCancelled, ctx.Err())
	case waitErr != nil:
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			result.Error = waitErr
		}
	case streamErr != nil:
		r.logger.Warn("reading process output", zap.String("run_id", runID), zap.Error(streamErr))
	}

	result.Success = result.Error == nil && result.ExitCode == 0

	r.logger.Debug("process exited",
		zap.String("run_id", runID),
		zap.Int("exit_code", result.ExitCode),
		zap.Duration("duration", result.Duration),
	)
	return result
}

func (r *CommandRunner) launchFailed(result domain.RunResult, program string, err error) domain.RunResult {
	r.logger.Error("failed to start process", zap.String("program", program), zap.Error(err))
	result.FinishedAt = time.Now()
	result.Error = &domain.LaunchError{Executable: program, Err: err}
	return result
}

// streamLines forwards r to w one line at a time. Lines longer than
// maxLineBytes are forwarded in maxLineBytes chunks with the newline on the
// last one, so nothing the tool prints is dropped.
func streamLines(r io.Reader, w io.Writer, mu *sync.Mutex) error {
	if w == nil {
		w = io.Discard
	}

	br := bufio.NewReaderSize(r, 64*1024)
	var pending []byte
	for {
		frag, isPrefix, err := br.ReadLine()
		if err != nil {
			if len(pending) > 0 {
				if werr := writeLocked(w, append(pending, '\n'), mu); werr != nil {
					return werr
				}
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		pending = append(pending, frag...)
		if isPrefix && len(pending) < maxLineBytes {
			continue
		}
		if !isPrefix {
			pending = append(pending, '\n')
		}
		if err := writeLocked(w, pending, mu); err != nil {
			// keep draining so the child never blocks on a full pipe
			_, _ = io.Copy(io.Discard, br)
			return err
		}
		pending = pending[:0]
	}
}

func writeLocked(w io.Writer, p []byte, mu *sync.Mutex) error {
	mu.Lock()
	defer mu.Unlock()
	_, err := w.Write(p)
	return err
}
