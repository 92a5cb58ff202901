package infra

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/msaeedsaeedi/ttrun/internal/domain"
)

func TestLocalTarget(t *testing.T) {
	platform := domain.NewPlatform(domain.OSUnix)
	target := NewLocalTarget(platform)
	assert.Equal(t, platform, target.Platform())

	dir := filepath.Join(t.TempDir(), "ws", "TopazCliWkspc")
	require.NoError(t, target.MkdirAll(dir))
	require.NoError(t, target.MkdirAll(dir))
	assert.NoError(t, target.Stat(dir))
	assert.ErrorIs(t, target.Stat(filepath.Join(dir, "missing")), os.ErrNotExist)
}

func TestDetectPlatform(t *testing.T) {
	p := DetectPlatform()
	if runtime.GOOS == "windows" {
		assert.Equal(t, domain.OSWindows, p.Family)
	} else {
		assert.Equal(t, domain.OSUnix, p.Family)
	}
	assert.Equal(t, string(os.PathSeparator), p.Separator)
}

func TestNewZap(t *testing.T) {
	logger, err := NewZap(domain.LogConfig{})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zap.DebugLevel))
	assert.True(t, logger.Core().Enabled(zap.WarnLevel))

	logger, err = NewZap(domain.LogConfig{Level: "debug", JSON: true})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zap.DebugLevel))

	_, err = NewZap(domain.LogConfig{Level: "loud"})
	assert.Error(t, err)
}
