package migrate

import (
	"fmt"
	"os"
	"strings"

	"log/slog"
)

// gooseSlogLogger routes goose's printf-style output through slog so
// migration progress shares the service's log format.
type gooseSlogLogger struct {
	logger *slog.Logger
}

func (l gooseSlogLogger) Printf(format string, v ...any) {
	if l.logger == nil {
		return
	}
	l.logger.Info(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l gooseSlogLogger) Fatalf(format string, v ...any) {
	if l.logger != nil {
		l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, v...)))
	}
	os.Exit(1)
}
