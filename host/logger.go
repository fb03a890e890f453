package host

import (
	"sync/atomic"

	"go.uber.org/zap"
)

var logger atomic.Pointer[zap.Logger]

func init() { logger.Store(zap.NewNop()) }

// Logger returns the host package's logger instance.
// It uses a no-op logger by default.
func Logger() *zap.Logger { return logger.Load() }

// SetLogger configures the host package's logger. Runtimes keep the logger
// they were created with. A nil logger is ignored.
func SetLogger(l *zap.Logger) {
	if l != nil {
		logger.Store(l)
	}
}
