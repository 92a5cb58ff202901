package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/msaeedsaeedi/ttrun/internal/domain"
)

// RawFormatter writes the build log as plain text. Tool stdout and stderr
// share the one stream, like a CI console.
type RawFormatter struct {
	out io.Writer
}

func NewRawFormatter(stdout, _ io.Writer) *RawFormatter {
	return &RawFormatter{out: stdout}
}

func (f *RawFormatter) GetOutputWriters() (stdout, stderr io.Writer) {
	return f.out, f.out
}

func (f *RawFormatter) OnStart(runID string, inv *domain.CommandInvocation) {
	// The masked command line is already part of the build log.
}

func (f *RawFormatter) OnComplete(result domain.RunResult) {
	fmt.Fprintf(f.out, "Elapsed time: %v\n", result.Duration.Round(time.Millisecond))
}

func (f *RawFormatter) OnFinish(err error) {
	// No-op
}
