package infra

import (
	"os"
	"runtime"

	"github.com/msaeedsaeedi/ttrun/internal/domain"
)

// LocalTarget launches the CLI on this machine with an explicitly supplied
// platform description.
type LocalTarget struct {
	platform domain.Platform
}

var _ domain.Target = (*LocalTarget)(nil)

func NewLocalTarget(platform domain.Platform) *LocalTarget {
	return &LocalTarget{platform: platform}
}

// DetectPlatform describes the machine ttrun is running on.
func DetectPlatform() domain.Platform {
	family := domain.OSUnix
	if runtime.GOOS == "windows" {
		family = domain.OSWindows
	}
	return domain.Platform{Family: family, Separator: string(os.PathSeparator)}
}

func (t *LocalTarget) Platform() domain.Platform {
	return t.platform
}

func (t *LocalTarget) MkdirAll(path string) error {
	return os.MkdirAll(path, 0o755)
}

func (t *LocalTarget) Stat(path string) error {
	_, err := os.Stat(path)
	return err
}
