package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/msaeedsaeedi/ttrun/internal/domain"
)

var (
	accent = lipgloss.Color("39")
	muted  = lipgloss.Color("240")
	green  = lipgloss.Color("42")
	red    = lipgloss.Color("196")
	amber  = lipgloss.Color("220")
	bright = lipgloss.Color("255")
	label  = lipgloss.Color("250")

	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(bright)
	dimStyle    = lipgloss.NewStyle().Foreground(muted)
	accentStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	okStyle     = lipgloss.NewStyle().Foreground(green)
	errStyle    = lipgloss.NewStyle().Foreground(red)
	busyStyle   = lipgloss.NewStyle().Foreground(amber)
	labelStyle  = lipgloss.NewStyle().Foreground(label)

	sidebarStyle = lipgloss.NewStyle().Padding(0, 1)
	panelStyle   = lipgloss.NewStyle().PaddingLeft(4)
	footerStyle  = lipgloss.NewStyle().Padding(1, 0, 1, 1)
	screenStyle  = lipgloss.NewStyle().Margin(1, 2)
)

type runStatus int

const (
	statusPending runStatus = iota
	statusRunning
	statusSuccess
	statusFailed
	statusCancelled
)

type startMsg struct {
	runID   string
	command string
}

type completeMsg struct{ result domain.RunResult }

type finishMsg struct{ err error }

type streamMsg struct {
	text  string
	isErr bool
}

type tickMsg time.Time

// Model is the bubbletea model for a single Total Test run.
type Model struct {
	mu sync.Mutex

	req      *domain.Request
	runID    string
	command  string
	status   runStatus
	exitCode int
	errText  string

	startedAt time.Time
	lastTick  time.Time
	duration  time.Duration

	finished bool
	quit     bool

	width, height int

	log     logView
	spinner spinner.Model
	keys    keyMap
}

func NewModel(req *domain.Request) *Model {
	s := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(busyStyle))
	return &Model{
		req:      req,
		exitCode: -1,
		log:      newLogView(),
		spinner:  s,
		keys:     defaultKeyMap(),
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(tick(), m.spinner.Tick)
}

func tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch msg := msg.(type) {
	case startMsg:
		m.runID = msg.runID
		m.command = msg.command
		m.status = statusRunning
		m.startedAt = time.Now()

	case streamMsg:
		m.log.add(msg.text, msg.isErr, time.Now())

	case completeMsg:
		m.exitCode = msg.result.ExitCode
		m.duration = msg.result.Duration
		m.status = statusFor(msg.result)

	case finishMsg:
		m.finished = true
		if msg.err != nil {
			m.errText = msg.err.Error()
			if m.status == statusPending || m.status == statusRunning {
				m.status = statusFailed
			}
		}

	case spinner.TickMsg:
		if m.finished {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tickMsg:
		m.lastTick = time.Time(msg)
		if !m.finished {
			return m, tick()
		}

	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	}

	return m, nil
}

func statusFor(result domain.RunResult) runStatus {
	switch {
	case errors.Is(result.Error, domain.ErrCancelled):
		return statusCancelled
	case result.Success:
		return statusSuccess
	default:
		return statusFailed
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quit = true
		return tea.Quit
	case key.Matches(msg, m.keys.Top):
		m.log.top()
	case key.Matches(msg, m.keys.Bottom):
		m.log.bottom()
	case key.Matches(msg, m.keys.Up):
		m.log.scroll(-1)
	case key.Matches(msg, m.keys.Down):
		m.log.scroll(1)
	case key.Matches(msg, m.keys.PageUp):
		m.log.scroll(-10)
	case key.Matches(msg, m.keys.PageDown):
		m.log.scroll(10)
	}
	return nil
}

func (m *Model) View() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.width == 0 {
		return "Initializing..."
	}

	width := max(20, m.width-4)
	height := max(10, m.height-2-3) // margins and footer
	side := max(30, width/4)

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		sidebarStyle.Width(side).MaxWidth(side).Height(height).Render(m.sidebar()),
		panelStyle.Width(width-side-1).Height(height).Render(m.panel(height)),
	)
	return screenStyle.Render(lipgloss.JoinVertical(lipgloss.Left, body, m.footer(width)))
}

func (m *Model) sidebar() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("PARAMETERS") + "\n\n")

	for _, p := range []struct{ name, value string }{
		{"Host:Port", m.req.HostPort},
		{"Credentials", m.req.CredentialsID},
		{"Project", m.req.ProjectFolder},
		{"Test suite", m.req.TestSuite},
		{"JCL", m.req.JCL},
		{"Workspace", m.req.Workspace},
	} {
		value := p.value
		if value == "" {
			value = "-"
		}
		fmt.Fprintf(&sb, "%s\n  %s\n", labelStyle.Render(p.name), value)
	}

	sb.WriteString("\n" + titleStyle.Render("RUN") + "\n\n")
	if m.runID != "" {
		sb.WriteString(accentStyle.Render("┃ "+m.runID) + "\n")
	}
	icon, text, style := m.badge()
	sb.WriteString(style.Render("  " + icon + " " + text))
	return sb.String()
}

// badge is the short status shown in the sidebar.
func (m *Model) badge() (icon, text string, style lipgloss.Style) {
	switch m.status {
	case statusRunning:
		return m.spinner.View(), "running", busyStyle
	case statusSuccess:
		return "✓", "exit 0", okStyle
	case statusCancelled:
		return "✗", "cancelled", errStyle
	case statusFailed:
		if m.exitCode >= 0 {
			return "✗", fmt.Sprintf("exit %d", m.exitCode), errStyle
		}
		return "✗", "failed", errStyle
	default:
		return "-", "pending", dimStyle
	}
}

func (m *Model) panel(height int) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("RUN DETAILS") + "\n\n")

	command := m.command
	if command == "" {
		command = "-"
	}
	fmt.Fprintf(&sb, "%s\n  > %s\n\n", titleStyle.Render("Command"), command)

	fmt.Fprintf(&sb, "%s\n  %s\n", titleStyle.Render("Status"), m.statusText())
	if m.errText != "" {
		sb.WriteString("  " + dimStyle.Render(m.errText) + "\n")
	}
	sb.WriteString("\n")

	elapsed := "-"
	if d := m.elapsed(); d > 0 {
		elapsed = d.Round(time.Millisecond).String()
	}
	fmt.Fprintf(&sb, "%s\n  %s\n\n", titleStyle.Render("Duration"), elapsed)

	sb.WriteString(titleStyle.Render("BUILD LOG") + "\n")
	// everything above the log takes roughly 15 rows
	sb.WriteString(m.log.render(max(5, height-15)))
	return sb.String()
}

func (m *Model) statusText() string {
	switch m.status {
	case statusRunning:
		return m.spinner.View() + busyStyle.Render(" Running...")
	case statusSuccess:
		return okStyle.Render("Success (Exit Code: 0)")
	case statusCancelled:
		return errStyle.Render("Cancelled")
	case statusFailed:
		if m.exitCode >= 0 {
			return errStyle.Render(fmt.Sprintf("Failed (Exit Code: %d)", m.exitCode))
		}
		return errStyle.Render("Failed")
	default:
		return "Pending"
	}
}

func (m *Model) elapsed() time.Duration {
	if m.duration > 0 || m.status != statusRunning {
		return m.duration
	}
	if !m.lastTick.IsZero() {
		return m.lastTick.Sub(m.startedAt)
	}
	return time.Since(m.startedAt)
}

func (m *Model) footer(width int) string {
	state := "Active"
	if m.finished {
		state = "Complete"
	}
	left := dimStyle.Render(fmt.Sprintf("%d lines  %s", len(m.log.lines), state))

	help := make([]string, 0, 4)
	for _, b := range m.keys.footerBindings() {
		h := b.Help()
		help = append(help, labelStyle.Render(h.Key)+dimStyle.Render(" "+h.Desc))
	}
	right := strings.Join(help, "   ")

	gap := max(2, width-lipgloss.Width(left)-lipgloss.Width(right)-4)
	return footerStyle.Width(width).Render(left + strings.Repeat(" ", gap) + right)
}

// TUIFormatter drives a Model from the run's handler callbacks.
type TUIFormatter struct {
	model   *Model
	program *tea.Program
	ready   chan struct{}
	once    sync.Once
}

func NewTUIFormatter(req *domain.Request) *TUIFormatter {
	return &TUIFormatter{model: NewModel(req), ready: make(chan struct{})}
}

// Run blocks until the user quits or ctx ends.
func (f *TUIFormatter) Run(ctx context.Context) error {
	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if ctx != nil {
		opts = append(opts, tea.WithContext(ctx))
	}
	f.program = tea.NewProgram(f.model, opts...)
	f.once.Do(func() { close(f.ready) })

	if _, err := f.program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

// WaitReady returns once Run has created the program, so messages sent
// afterwards are not lost.
func (f *TUIFormatter) WaitReady(ctx context.Context) error {
	select {
	case <-f.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *TUIFormatter) send(msg tea.Msg) {
	if f.program != nil {
		f.program.Send(msg)
	}
}

func (f *TUIFormatter) OnStart(runID string, inv *domain.CommandInvocation) {
	f.send(startMsg{runID: runID, command: inv.Masked()})
}

func (f *TUIFormatter) OnComplete(result domain.RunResult) {
	f.send(completeMsg{result: result})
}

func (f *TUIFormatter) OnFinish(err error) {
	f.send(finishMsg{err: err})
}

func (f *TUIFormatter) GetOutputWriters() (stdout, stderr io.Writer) {
	return tuiWriter{f: f}, tuiWriter{f: f, isErr: true}
}

type tuiWriter struct {
	f     *TUIFormatter
	isErr bool
}

func (w tuiWriter) Write(p []byte) (int, error) {
	if len(p) > 0 {
		w.f.send(streamMsg{text: string(p), isErr: w.isErr})
	}
	return len(p), nil
}
