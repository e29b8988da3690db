package nrf24sim

import (
	"go.uber.org/zap"
)

func init() {
	l, err := zap.NewDevelopment()
	if err != nil {
		// Fall back to the no-op logger rather than fail package init.
		return
	}
	globalLogger = &zapLogger{l.Sugar()}
}

// zapLogger adapts a zap.SugaredLogger to the package's minimal Logger
// interface. It is the default backend; embedders that want JSON output,
// sampling, or a different sink call SetLogger with their own zap
// configuration wrapped the same way.
type zapLogger struct {
	s *zap.SugaredLogger
}

func (l *zapLogger) Debug(msg string) { l.s.Debug(msg) }
func (l *zapLogger) Info(msg string)  { l.s.Info(msg) }
func (l *zapLogger) Warn(msg string)  { l.s.Warn(msg) }
func (l *zapLogger) Error(msg string) { l.s.Error(msg) }

// NewZapLogger wraps an existing *zap.Logger so an embedder that already
// runs zap (as EdgeFlow-style hosts do) can share its sinks and encoder
// configuration instead of taking this package's defaults.
func NewZapLogger(l *zap.Logger) Logger {
	return &zapLogger{l.Sugar()}
}
