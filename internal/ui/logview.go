package ui

import (
	"strings"
	"time"
)

const maxLogLines = 10000

type logLine struct {
	at    time.Time
	text  string
	isErr bool
}

// logView is the scrollable build log shown in the TUI. When follow is set
// the view sticks to the newest lines.
type logView struct {
	lines  []logLine
	offset int
	follow bool
}

func newLogView() logView {
	return logView{follow: true}
}

// add splits chunk into lines and appends the non-empty ones.
func (v *logView) add(chunk string, isErr bool, at time.Time) {
	for _, line := range strings.Split(strings.TrimRight(chunk, "\n"), "\n") {
		if line == "" {
			continue
		}
		v.lines = append(v.lines, logLine{at: at, text: line, isErr: isErr})
	}
	if n := len(v.lines); n > maxLogLines {
		v.lines = v.lines[n-maxLogLines:]
	}
}

func (v *logView) scroll(delta int) {
	v.offset = max(0, v.offset+delta)
	v.follow = false
}

func (v *logView) top() {
	v.offset = 0
	v.follow = false
}

func (v *logView) bottom() {
	v.offset = len(v.lines)
	v.follow = true
}

// render returns exactly height rows plus a trailing scroll hint row, so the
// layout does not jump while lines arrive.
func (v *logView) render(height int) string {
	total := len(v.lines)
	if v.follow {
		v.offset = total - height
	}
	v.offset = max(0, min(v.offset, total-height))
	end := min(total, v.offset+height)

	var sb strings.Builder
	for i := v.offset; i < end; i++ {
		l := v.lines[i]
		sb.WriteString(dimStyle.Render("[" + l.at.Format("15:04:05") + "] "))
		if l.isErr {
			sb.WriteString(errStyle.Render(l.text))
		} else {
			sb.WriteString(l.text)
		}
		sb.WriteString("\n")
	}
	for i := end - v.offset; i < height; i++ {
		sb.WriteString("\n")
	}

	if end < total {
		sb.WriteString(dimStyle.Render(strings.Repeat("·", 3) + " more below"))
	} else {
		sb.WriteString(" ")
	}
	return sb.String()
}
