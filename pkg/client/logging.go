package client

import (
	"go.uber.org/zap"

	"github.com/DeBrosOfficial/chainclient/pkg/logging"
)

// newClientLogger creates a logger based on quiet mode preference.
// Quiet mode returns a production logger with Warn+ level and reduced noise.
// Non-quiet returns a development logger with debug/info output.
func newClientLogger(quiet bool) (*logging.ColoredLogger, error) {
	if quiet {
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
		cfg.DisableCaller = true
		cfg.DisableStacktrace = true
		logger, err := cfg.Build()
		if err != nil {
			return nil, err
		}
		return logging.Wrap(logger, false), nil
	}
	return logging.NewDefaultLogger(logging.ComponentClient)
}
