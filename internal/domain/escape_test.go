package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeForScript_Unix(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"-host=10.1.1.1", "-host=10.1.1.1"},
		{"-ts=Foo.testsuite", "-ts=Foo.testsuite"},
		{"-externaltoolsws=/ws/job_1", "-externaltoolsws=/ws/job_1"},
		{"-pw=p@ss%word", "-pw=p@ss%word"},
		{"-project=My Project", "'-project=My Project'"},
		{"-pw=it's", `'-pw=it'\''s'`},
		{"-pw=$HOME", "'-pw=$HOME'"},
		{"-pw=a;b|c", "'-pw=a;b|c'"},
		{"", "''"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, EscapeForScript(tt.in, OSUnix))
		})
	}
}

func TestEscapeForScript_Windows(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"-host=10.1.1.1", "-host=10.1.1.1"},
		{`-externaltoolsws=C:\ws\job`, `-externaltoolsws=C:\ws\job`},
		{"-pw=100%", "-pw=100%%"},
		{"-project=My Project", `"-project=My Project"`},
		{"-pw=a&b", `"-pw=a&b"`},
		{`-pw=say "hi"`, `"-pw=say ""hi"""`},
		{"-pw=50% off", `"-pw=50%% off"`},
		{"-pw=x^y", `"-pw=x^y"`},
		{"", `""`},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, EscapeForScript(tt.in, OSWindows))
		})
	}
}

func TestCommandInvocation_Masked(t *testing.T) {
	inv := &CommandInvocation{
		Name: "TotalTestCLI.sh",
		Args: []Arg{
			{Value: "/opt/cli/TotalTestCLI.sh"},
			{Value: "-user=alice"},
			{Value: "-pw=secret", Sensitive: true},
		},
	}

	assert.Equal(t, "/opt/cli/TotalTestCLI.sh -user=alice ********", inv.Masked())
	assert.Equal(t, []string{"/opt/cli/TotalTestCLI.sh", "-user=alice", "-pw=secret"}, inv.Argv())
	assert.Equal(t, "/opt/cli/TotalTestCLI.sh", inv.Program())
	assert.Empty(t, (&CommandInvocation{}).Program())
}

func TestPlatform(t *testing.T) {
	unix := NewPlatform(OSUnix)
	win := NewPlatform(OSWindows)

	assert.True(t, unix.IsUnix())
	assert.False(t, win.IsUnix())
	assert.Equal(t, "/opt/cli/TotalTestCLI.sh", unix.Join("/opt/cli", "TotalTestCLI.sh"))
	assert.Equal(t, "/opt/cli/TotalTestCLI.sh", unix.Join("/opt/cli/", "TotalTestCLI.sh"))
	assert.Equal(t, `C:\cli\TotalTestCLI.bat`, win.Join(`C:\cli`, "TotalTestCLI.bat"))
}

func TestParseOSFamily(t *testing.T) {
	for in, want := range map[string]OSFamily{
		"linux":   OSUnix,
		"Unix":    OSUnix,
		"darwin":  OSUnix,
		"windows": OSWindows,
		" WIN ":   OSWindows,
	} {
		got, err := ParseOSFamily(in)
		assert.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseOSFamily("plan9")
	assert.Error(t, err)
}

func TestSecretForms(t *testing.T) {
	tests := []struct {
		name   string
		secret string
		family OSFamily
		want   []string
	}{
		{"plain unix", "secret", OSUnix, []string{"secret"}},
		{"quote unix", "it's", OSUnix, []string{`it'\''s`, "it's"}},
		{"percent windows", "100%", OSWindows, []string{"100%%", "100%"}},
		{"quote windows", `a"b%`, OSWindows, []string{`a""b%%`, `a"b%`}},
		{"empty", "", OSUnix, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SecretForms(tt.secret, tt.family))
		})
	}
}
