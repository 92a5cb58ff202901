package app

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaskingWriter(t *testing.T) {
	var buf bytes.Buffer
	w := newMaskingWriter(&buf, "hunter2")

	n, err := io.WriteString(w, "login alice/hunter2 ok hunter2\n")
	require.NoError(t, err)
	assert.Equal(t, len("login alice/hunter2 ok hunter2\n"), n)

	_, err = io.WriteString(w, "nothing to hide\n")
	require.NoError(t, err)

	assert.Equal(t, "login alice/******** ok ********\nnothing to hide\n", buf.String())
}

func TestNewMaskingWriter_Passthrough(t *testing.T) {
	var buf bytes.Buffer
	assert.Same(t, &buf, newMaskingWriter(&buf, ""))
	assert.Same(t, &buf, newMaskingWriter(&buf))
	assert.Nil(t, newMaskingWriter(nil, "secret"))
}

func TestMaskingWriter_EscapedForms(t *testing.T) {
	var buf bytes.Buffer
	w := newMaskingWriter(&buf, `it'\''s`, "it's")

	_, err := io.WriteString(w, "args: -user=alice '-pw=it'\\''s' raw=it's\n")
	require.NoError(t, err)

	assert.Equal(t, "args: -user=alice '-pw=********' raw=********\n", buf.String())
}
