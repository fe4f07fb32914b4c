package config

import (
	"fmt"
	"log/slog"
	"os"
)

// exit is swapped in tests.
var exit = os.Exit

// Exitf logs the formatted message at error level and exits with status 1.
// A nil logger uses slog.Default.
func Exitf(logger *slog.Logger, format string, args ...any) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Error(fmt.Sprintf(format, args...))
	exit(1)
}
