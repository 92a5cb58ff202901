package app

import (
	"bytes"
	"io"

	"github.com/msaeedsaeedi/ttrun/internal/domain"
)

// maskingWriter hides secrets in anything written through it. Output from
// the runner arrives one line per Write, so a secret never spans two calls
// unless it contains a newline. Secrets are replaced in order, so list longer
// forms first.
type maskingWriter struct {
	w       io.Writer
	secrets [][]byte
}

func newMaskingWriter(w io.Writer, secrets ...string) io.Writer {
	if w == nil {
		return nil
	}
	m := &maskingWriter{w: w}
	for _, s := range secrets {
		if s != "" {
			m.secrets = append(m.secrets, []byte(s))
		}
	}
	if len(m.secrets) == 0 {
		return w
	}
	return m
}

func (m *maskingWriter) Write(p []byte) (int, error) {
	out := p
	for _, s := range m.secrets {
		if bytes.Contains(out, s) {
			out = bytes.ReplaceAll(out, s, []byte(domain.MaskedValue))
		}
	}
	if _, err := m.w.Write(out); err != nil {
		return 0, err
	}
	return len(p), nil
}
