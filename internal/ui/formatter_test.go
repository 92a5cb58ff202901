package ui

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msaeedsaeedi/ttrun/internal/domain"
)

func testInvocation() *domain.CommandInvocation {
	return &domain.CommandInvocation{
		Name: "TotalTestCLI.sh",
		Args: []domain.Arg{
			{Value: "/opt/cli/TotalTestCLI.sh"},
			{Value: "-user=alice"},
			{Value: "-pw=secret", Sensitive: true},
		},
	}
}

func TestRawFormatter(t *testing.T) {
	var out bytes.Buffer
	f := NewRawFormatter(&out, nil)

	stdout, stderr := f.GetOutputWriters()
	f.OnStart("01J", testInvocation())
	fmt.Fprintln(stdout, "line 1")
	fmt.Fprintln(stderr, "line 2")
	f.OnComplete(domain.RunResult{ExitCode: 0, Duration: 2*time.Second + 400*time.Microsecond})
	f.OnFinish(nil)

	assert.Equal(t, "line 1\nline 2\nElapsed time: 2s\n", out.String())
}

func TestJSONFormatter(t *testing.T) {
	var out bytes.Buffer
	f := NewJSONFormatter(&out)

	stdout, stderr := f.GetOutputWriters()
	f.OnStart("01J", testInvocation())
	fmt.Fprintln(stdout, "line 1")
	fmt.Fprint(stderr, "line 2\nline 3\n")
	f.OnComplete(domain.RunResult{ExitCode: 4, Duration: 1250 * time.Millisecond})
	f.OnFinish(errors.New("total test run failed"))

	var got ResultJSON
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, ResultJSON{
		RunID:    "01J",
		Command:  "/opt/cli/TotalTestCLI.sh -user=alice ********",
		ExitCode: 4,
		Success:  false,
		Duration: 1250,
		Log:      []string{"line 1", "line 2", "line 3"},
		Error:    "total test run failed",
	}, got)
}

func TestJSONFormatter_NoRun(t *testing.T) {
	var out bytes.Buffer
	f := NewJSONFormatter(&out)
	f.OnFinish(errors.New("missing login credentials"))

	var got ResultJSON
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, -1, got.ExitCode)
	assert.Empty(t, got.RunID)
	assert.NotNil(t, got.Log)
	assert.Equal(t, "missing login credentials", got.Error)
}

func TestFormatKV(t *testing.T) {
	out := FormatKV([]string{
		"host:port|ok",
		"test suite|test suite \"x\" must end with .testsuite or .testscenario",
		"JCL|",
	})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "host:port  = ok", strings.TrimSpace(lines[0]))
	assert.True(t, strings.HasPrefix(lines[1], "test suite = "))
	assert.Equal(t, "JCL"+strings.Repeat(" ", 8)+"= <none>", strings.TrimSpace(lines[2]))
}

func TestTUIModel_Updates(t *testing.T) {
	m := NewModel(&domain.Request{HostPort: "cw01:1", TestSuite: "A.testsuite"})

	m.Update(tea.WindowSizeMsg{Width: 160, Height: 50})
	m.Update(startMsg{runID: "01J", command: testInvocation().Masked()})
	assert.Equal(t, statusRunning, m.status)

	m.Update(streamMsg{text: "hello\nworld\n"})
	m.Update(streamMsg{text: "bad", isErr: true})
	require.Len(t, m.log.lines, 3)
	assert.True(t, m.log.lines[2].isErr)

	m.Update(completeMsg{result: domain.RunResult{ExitCode: 2, Duration: time.Second}})
	assert.Equal(t, statusFailed, m.status)
	assert.Equal(t, 2, m.exitCode)

	m.Update(finishMsg{err: errors.New("total test run failed")})
	assert.True(t, m.finished)

	view := m.View()
	assert.Contains(t, view, "cw01:1")
	assert.Contains(t, view, "Exit Code: 2")
	assert.NotContains(t, view, "secret")
}

func TestTUIModel_Cancelled(t *testing.T) {
	m := NewModel(&domain.Request{})
	m.Update(startMsg{runID: "01J"})
	m.Update(completeMsg{result: domain.RunResult{ExitCode: -1, Error: fmt.Errorf("%w: stop", domain.ErrCancelled)}})
	assert.Equal(t, statusCancelled, m.status)
}

func TestTUIModel_FinishWithoutRun(t *testing.T) {
	m := NewModel(&domain.Request{})
	m.Update(finishMsg{err: errors.New("host:port must be specified")})
	assert.Equal(t, statusFailed, m.status)
	assert.Equal(t, "host:port must be specified", m.errText)
}

func TestTUIModel_Keys(t *testing.T) {
	m := NewModel(&domain.Request{})

	m.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.False(t, m.log.follow)

	m.Update(tea.KeyMsg{Type: tea.KeyEnd})
	assert.True(t, m.log.follow)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.NotNil(t, cmd)
	assert.True(t, m.quit)
}

func TestLogView(t *testing.T) {
	v := newLogView()
	now := time.Now()
	for i := 0; i < 20; i++ {
		v.add(fmt.Sprintf("line %d\n", i), false, now)
	}

	out := v.render(5)
	assert.Contains(t, out, "line 19")
	assert.NotContains(t, out, "line 14\n")

	v.top()
	out = v.render(5)
	assert.Contains(t, out, "line 0\n")
	assert.Contains(t, out, "more below")

	v.scroll(-3)
	assert.Equal(t, 0, v.offset)
}
