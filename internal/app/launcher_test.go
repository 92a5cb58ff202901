package app

import (
	"bytes"
	"errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msaeedsaeedi/ttrun/internal/domain"
)

type fakeTarget struct {
	platform domain.Platform
	existing map[string]bool
	mkdirErr error
	made     []string
	statted  []string
}

func newFakeTarget(family domain.OSFamily, existing ...string) *fakeTarget {
	t := &fakeTarget{platform: domain.NewPlatform(family), existing: map[string]bool{}}
	for _, p := range existing {
		t.existing[p] = true
	}
	return t
}

func (t *fakeTarget) Platform() domain.Platform { return t.platform }

func (t *fakeTarget) MkdirAll(path string) error {
	t.made = append(t.made, path)
	return t.mkdirErr
}

func (t *fakeTarget) Stat(path string) error {
	t.statted = append(t.statted, path)
	if t.existing[path] {
		return nil
	}
	return fs.ErrNotExist
}

func exampleConfig() *domain.RunConfiguration {
	return domain.NewRunConfiguration("10.1.1.1:1234", "cred-1", "MyProj", "Foo.testsuite", "Bar.jcl")
}

func exampleCredential() domain.Credential {
	return domain.Credential{ID: "cred-1", Username: "alice", Password: "secret"}
}

func TestBuildInvocation_Unix(t *testing.T) {
	inv := BuildInvocation(LaunchParams{
		Config:     exampleConfig(),
		Credential: exampleCredential(),
		Platform:   domain.NewPlatform(domain.OSUnix),
		ToolDir:    "/opt/cli",
		Workspace:  "/ws",
	})

	assert.Equal(t, []string{
		"/opt/cli/TotalTestCLI.sh",
		"-cmd=runtest",
		"-host=10.1.1.1",
		"-port=1234",
		"-user=alice",
		"-pw=secret",
		"-project=MyProj",
		"-ts=Foo.testsuite",
		"-jcl=Bar.jcl",
		"-externaltoolsws=/ws",
		"-externaltools=jenkins",
		"-data",
		"/ws/TopazCliWkspc",
	}, inv.Argv())
	assert.Equal(t, "TotalTestCLI.sh", inv.Name)
	assert.Equal(t, "/ws", inv.Dir)
	assert.True(t, inv.Args[5].Sensitive)
	assert.NotContains(t, inv.Masked(), "secret")
	assert.Contains(t, inv.Masked(), "-user=alice ******** -project=MyProj")
}

func TestBuildInvocation_Windows(t *testing.T) {
	inv := BuildInvocation(LaunchParams{
		Config:     domain.NewRunConfiguration("host:23", "c", "My Proj", "A.testscenario", "J.jcl"),
		Credential: domain.Credential{Username: "bob", Password: "p%w"},
		Platform:   domain.NewPlatform(domain.OSWindows),
		ToolDir:    `C:\cli\`,
		Workspace:  `C:\ws`,
	})

	argv := inv.Argv()
	assert.Equal(t, `C:\cli\TotalTestCLI.bat`, argv[0])
	assert.Equal(t, "TotalTestCLI.bat", inv.Name)
	assert.Equal(t, "-pw=p%%w", argv[5])
	assert.Equal(t, `"-project=My Proj"`, argv[6])
	assert.Equal(t, "-data", argv[11])
	assert.Equal(t, `C:\ws\TopazCliWkspc`, argv[12])
}

func TestBuildInvocation_EscapesUnsafeValues(t *testing.T) {
	inv := BuildInvocation(LaunchParams{
		Config:     domain.NewRunConfiguration("h:1", "c", "it's here", "A.testsuite", "J.jcl"),
		Credential: domain.Credential{Username: "u", Password: "a b"},
		Platform:   domain.NewPlatform(domain.OSUnix),
		ToolDir:    "/opt/cli",
		Workspace:  "/ws",
	})

	argv := inv.Argv()
	assert.Equal(t, `'-pw=a b'`, argv[5])
	assert.Equal(t, `'-project=it'\''s here'`, argv[6])
}

func TestBuildInvocation_Deterministic(t *testing.T) {
	p := LaunchParams{
		Config:     exampleConfig(),
		Credential: exampleCredential(),
		Platform:   domain.NewPlatform(domain.OSUnix),
		ToolDir:    "/opt/cli",
		Workspace:  "/ws",
	}
	assert.Equal(t, BuildInvocation(p).Argv(), BuildInvocation(p).Argv())
}

func TestScriptName(t *testing.T) {
	assert.Equal(t, "TotalTestCLI.sh", ScriptName(domain.OSUnix))
	assert.Equal(t, "TotalTestCLI.bat", ScriptName(domain.OSWindows))
}

func TestLauncher_Prepare(t *testing.T) {
	target := newFakeTarget(domain.OSUnix, "/opt/cli/TotalTestCLI.sh")
	l := NewLauncher(target, domain.ToolConfig{UnixLocation: " /opt/cli "}, nil)

	var sink bytes.Buffer
	inv, err := l.Prepare(exampleConfig(), exampleCredential(), "/ws", []string{"A=1"}, &sink)
	require.NoError(t, err)

	assert.Equal(t, "/opt/cli/TotalTestCLI.sh", inv.Program())
	assert.Equal(t, []string{"A=1"}, inv.Env)
	assert.Equal(t, []string{"/ws/TopazCliWkspc"}, target.made)
	assert.Equal(t,
		"Topaz for Total Test CLI script file path: /opt/cli/TotalTestCLI.sh\n"+
			"Topaz for Total Test CLI workspace: /ws/TopazCliWkspc\n",
		sink.String())
}

func TestLauncher_Prepare_MissingScript(t *testing.T) {
	target := newFakeTarget(domain.OSUnix)
	l := NewLauncher(target, domain.ToolConfig{UnixLocation: "/opt/cli"}, nil)

	var sink bytes.Buffer
	_, err := l.Prepare(exampleConfig(), exampleCredential(), "/ws", nil, &sink)

	var resErr *domain.ToolResolutionError
	require.ErrorAs(t, err, &resErr)
	assert.Equal(t, "/opt/cli/TotalTestCLI.sh", resErr.Path)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.Empty(t, target.made)
}

func TestLauncher_Prepare_NoLocation(t *testing.T) {
	target := newFakeTarget(domain.OSWindows)
	l := NewLauncher(target, domain.ToolConfig{UnixLocation: "/opt/cli"}, nil)

	_, err := l.Prepare(exampleConfig(), exampleCredential(), `C:\ws`, nil, &bytes.Buffer{})

	var resErr *domain.ToolResolutionError
	require.ErrorAs(t, err, &resErr)
	assert.Empty(t, target.statted)
}

func TestLauncher_Prepare_ScratchDirFailure(t *testing.T) {
	target := newFakeTarget(domain.OSUnix, "/opt/cli/TotalTestCLI.sh")
	target.mkdirErr = errors.New("read-only file system")
	l := NewLauncher(target, domain.ToolConfig{UnixLocation: "/opt/cli"}, nil)

	_, err := l.Prepare(exampleConfig(), exampleCredential(), "/ws", nil, &bytes.Buffer{})

	var resErr *domain.ToolResolutionError
	require.ErrorAs(t, err, &resErr)
	assert.Equal(t, "/ws/TopazCliWkspc", resErr.Path)
}
