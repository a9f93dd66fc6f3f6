package badger

import (
	"fmt"
	"log/slog"
	"strings"
)

// badgerLogger adapts badger.Logger to slog. Badger's info output is
// compaction chatter, so it is demoted to debug.
type badgerLogger struct {
	logger *slog.Logger
}

func newBadgerLogger(logger *slog.Logger) *badgerLogger {
	if logger == nil {
		logger = slog.Default()
	}

	return &badgerLogger{logger: logger.With(slog.String("component", "badger"))}
}

func (l *badgerLogger) Errorf(format string, args ...any) {
	l.logger.Error(formatBadgerLine(format, args))
}

func (l *badgerLogger) Warningf(format string, args ...any) {
	l.logger.Warn(formatBadgerLine(format, args))
}

func (l *badgerLogger) Infof(format string, args ...any) {
	l.logger.Debug(formatBadgerLine(format, args))
}

func (l *badgerLogger) Debugf(format string, args ...any) {
	l.logger.Debug(formatBadgerLine(format, args))
}

func formatBadgerLine(format string, args []any) string {
	return strings.TrimRight(fmt.Sprintf(format, args...), "\n")
}
