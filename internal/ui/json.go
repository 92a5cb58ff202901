package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/msaeedsaeedi/ttrun/internal/domain"
)

type ResultJSON struct {
	RunID    string   `json:"run_id,omitempty"`
	Command  string   `json:"command,omitempty"`
	ExitCode int      `json:"exit_code"`
	Success  bool     `json:"success"`
	Duration float64  `json:"duration_ms"`
	Log      []string `json:"log"`
	Error    string   `json:"error,omitempty"`
}

// JSONFormatter buffers the build log and prints a single JSON document when
// the run finishes.
type JSONFormatter struct {
	out    io.Writer
	result ResultJSON
	mu     sync.Mutex
}

type jsonLogWriter struct {
	f *JSONFormatter
}

func NewJSONFormatter(out io.Writer) *JSONFormatter {
	return &JSONFormatter{
		out: out,
		result: ResultJSON{
			ExitCode: -1,
			Log:      make([]string, 0),
		},
	}
}

func (f *JSONFormatter) GetOutputWriters() (stdout, stderr io.Writer) {
	w := &jsonLogWriter{f: f}
	return w, w
}

func (w *jsonLogWriter) Write(p []byte) (int, error) {
	text := strings.TrimSuffix(string(p), "\n")
	w.f.mu.Lock()
	defer w.f.mu.Unlock()
	w.f.result.Log = append(w.f.result.Log, strings.Split(text, "\n")...)
	return len(p), nil
}

func (f *JSONFormatter) OnStart(runID string, inv *domain.CommandInvocation) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.result.RunID = runID
	f.result.Command = inv.Masked()
}

func (f *JSONFormatter) OnComplete(result domain.RunResult) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.result.ExitCode = result.ExitCode
	f.result.Success = result.Success
	f.result.Duration = float64(result.Duration.Milliseconds())
}

func (f *JSONFormatter) OnFinish(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err != nil {
		f.result.Success = false
		f.result.Error = err.Error()
	}

	encoder := json.NewEncoder(f.out)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(f.result); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON output: %v\n", err)
	}
}
