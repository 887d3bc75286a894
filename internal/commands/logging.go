package commands

import (
	"strings"

	"github.com/goliatone/go-mdsite/internal/logging"
	"github.com/goliatone/go-mdsite/pkg/interfaces"
)

// CommandLogger returns a logger scoped to one command group, e.g. "site".
func CommandLogger(provider interfaces.LoggerProvider, group string) interfaces.Logger {
	name := strings.TrimSpace(group)
	if name == "" {
		name = "core"
	}
	logger := logging.ModuleLogger(provider, logging.CommandsModule+"."+name)
	return logging.WithFields(logger, map[string]any{
		"component":     "command",
		"command_group": name,
	})
}

// EnsureLogger returns a usable logger, defaulting to a no-op logger when nil.
func EnsureLogger(logger interfaces.Logger) interfaces.Logger {
	if logger == nil {
		return logging.NoOp()
	}
	return logger
}
