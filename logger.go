package bind

import (
	"sync/atomic"

	"go.uber.org/zap"
)

var logger atomic.Pointer[zap.Logger]

func init() { logger.Store(zap.NewNop()) }

// Logger returns the package logger. It is a no-op logger unless SetLogger
// was called.
func Logger() *zap.Logger { return logger.Load() }

// SetLogger configures the package logger. Call it before binding classes;
// classes keep the logger they were created with. A nil logger is ignored.
func SetLogger(l *zap.Logger) {
	if l != nil {
		logger.Store(l)
	}
}
