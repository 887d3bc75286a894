package sitecmd

import (
	"context"
	"errors"
	"time"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-mdsite/internal/commands"
	"github.com/goliatone/go-mdsite/internal/generator"
	"github.com/goliatone/go-mdsite/pkg/interfaces"
)

// CommandRegistry is the minimal registration contract expected when wiring command handlers.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// CronRegistrar matches the function signature used by go-command registries.
type CronRegistrar func(command.HandlerConfig, any) error

// HandlerSet groups the handlers built by RegisterSiteCommands.
type HandlerSet struct {
	Build  *BuildSiteHandler
	Diff   *DiffSiteHandler
	Clean  *CleanSiteHandler
	Render *RenderDocumentHandler
}

// RegisterSiteCommands builds the site handlers and registers them with reg
// when it is non-nil. A zero timeout keeps the handler default.
func RegisterSiteCommands(reg CommandRegistry, service generator.Service, provider interfaces.LoggerProvider, timeout time.Duration) (*HandlerSet, error) {
	if service == nil {
		return nil, errors.New("site command registration: generator service is nil")
	}

	logger := commands.CommandLogger(provider, "site")
	set := &HandlerSet{
		Build:  NewBuildSiteHandler(service, logger, timeoutOption[BuildSiteCommand](timeout)...),
		Diff:   NewDiffSiteHandler(service, logger, timeoutOption[DiffSiteCommand](timeout)...),
		Clean:  NewCleanSiteHandler(service, logger, timeoutOption[CleanSiteCommand](timeout)...),
		Render: NewRenderDocumentHandler(service, logger, timeoutOption[RenderDocumentCommand](timeout)...),
	}

	if reg != nil {
		for _, handler := range []any{set.Build, set.Diff, set.Clean, set.Render} {
			if err := reg.RegisterCommand(handler); err != nil {
				return nil, err
			}
		}
	}
	return set, nil
}

func timeoutOption[T command.Message](timeout time.Duration) []commands.HandlerOption[T] {
	if timeout <= 0 {
		return nil
	}
	return []commands.HandlerOption[T]{commands.WithTimeout[T](timeout)}
}

// RegisterSiteCron schedules periodic rebuilds through a go-command cron
// registrar. The handler runs with a background context.
func RegisterSiteCron(reg CronRegistrar, handler *BuildSiteHandler, cfg command.HandlerConfig, msg BuildSiteCommand) error {
	if reg == nil || handler == nil {
		return nil
	}
	return reg(cfg, func() error {
		return handler.Execute(context.Background(), msg)
	})
}
