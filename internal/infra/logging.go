package infra

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/msaeedsaeedi/ttrun/internal/domain"
)

// NewZap builds the diagnostics logger. It writes to stderr and never to the
// build log.
func NewZap(cfg domain.LogConfig) (*zap.Logger, error) {
	level := cfg.Level
	if level == "" {
		level = zap.WarnLevel.String()
	}
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}

	enc := "console"
	ts := zapcore.ISO8601TimeEncoder

	if cfg.JSON {
		enc = "json"
		ts = zapcore.RFC3339NanoTimeEncoder
	}

	baseCfg := zap.NewProductionConfig()
	baseCfg.DisableStacktrace = true
	baseCfg.Level = lvl
	baseCfg.Encoding = enc
	baseCfg.DisableCaller = !cfg.IncludeLine
	baseCfg.OutputPaths = []string{"stderr"}
	baseCfg.ErrorOutputPaths = []string{"stderr"}
	baseCfg.EncoderConfig.NameKey = "component"
	baseCfg.EncoderConfig.TimeKey = "timestamp"
	baseCfg.EncoderConfig.EncodeTime = ts

	return baseCfg.Build()
}
