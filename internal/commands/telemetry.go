package commands

import (
	"context"
	"time"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-mdsite/internal/logging"
	"github.com/goliatone/go-mdsite/pkg/interfaces"
)

// TelemetryStatus is the outcome of one command execution.
type TelemetryStatus string

const (
	TelemetryStatusSuccess      TelemetryStatus = "success"
	TelemetryStatusFailed       TelemetryStatus = "failed"
	TelemetryStatusContextError TelemetryStatus = "context_error"
)

// TelemetryInfo is handed to telemetry callbacks after a command ran. Fields
// holds the command, operation and message fields (sources, dry_run, ...).
type TelemetryInfo struct {
	Command   string
	Operation string
	Fields    map[string]any
	Duration  time.Duration
	Error     error
	Status    TelemetryStatus
	Logger    interfaces.Logger
}

type Telemetry[T command.Message] func(ctx context.Context, msg T, info TelemetryInfo)

// DefaultTelemetry logs every outcome through logger.
func DefaultTelemetry[T command.Message](logger interfaces.Logger) Telemetry[T] {
	logger = EnsureLogger(logger)
	return func(_ context.Context, _ T, info TelemetryInfo) {
		info.Logger = logging.WithFields(logger, info.Fields)
		logTelemetry(info.Logger, info)
	}
}

// logTelemetry writes one command.execute.<status> entry. Cancellations are
// warnings since a caller asked for them; other failures are errors.
func logTelemetry(logger interfaces.Logger, info TelemetryInfo) {
	msg := "command.execute." + string(info.Status)
	args := []any{"duration_ms", info.Duration.Milliseconds()}
	if info.Error != nil {
		args = append(args, "error", info.Error)
	}
	switch info.Status {
	case TelemetryStatusSuccess:
		logger.Info(msg, args...)
	case TelemetryStatusContextError:
		logger.Warn(msg, args...)
	default:
		logger.Error(msg, args...)
	}
}
