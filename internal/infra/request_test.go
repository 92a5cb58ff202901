package infra

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msaeedsaeedi/ttrun/internal/domain"
)

func TestLoadRequest_YAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "request.yaml", `
hostPort: cw01:30947
credentialsId: tso
projectFolder: Payroll
testSuite: Payroll.testsuite
jcl: Runner.jcl
env:
  JAVA_HOME: /opt/java
`)

	req, err := LoadRequest(path)
	require.NoError(t, err)
	assert.Equal(t, &domain.Request{
		HostPort:      "cw01:30947",
		CredentialsID: "tso",
		ProjectFolder: "Payroll",
		TestSuite:     "Payroll.testsuite",
		JCL:           "Runner.jcl",
		Env:           map[string]string{"JAVA_HOME": "/opt/java"},
	}, req)
}

func TestLoadRequest_JSON(t *testing.T) {
	path := writeFile(t, t.TempDir(), "request.json",
		`{"hostPort": "cw01:30947", "credentialsId": "tso", "workspace": "/ws"}`)

	req, err := LoadRequest(path)
	require.NoError(t, err)
	assert.Equal(t, "cw01:30947", req.HostPort)
	assert.Equal(t, "/ws", req.Workspace)
}

func TestLoadRequest_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadRequest(writeFile(t, dir, "typo.yaml", "hostport: cw01:1\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hostport")

	req, err := LoadRequest(writeFile(t, dir, "empty.yaml", ""))
	require.NoError(t, err)
	assert.Equal(t, &domain.Request{}, req)

	_, err = LoadRequest(dir + "/missing.yaml")
	assert.Error(t, err)
}
