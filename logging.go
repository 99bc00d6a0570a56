package utmcsensors

import (
	"log/slog"

	"github.com/theoremus-urban-solutions/utmc-sensors/internal"
)

// InitLogging sets the process-wide logger. Debug enables per-way diagnostics.
func InitLogging(debug bool) *slog.Logger {
	return internal.InitLogging(debug)
}
